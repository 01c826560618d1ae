package store

import (
	"fmt"

	"gorm.io/gorm"
)

// GetInventory returns every (resourceType, quantity) row for a user.
func (s *Store) GetInventory(userID uint64) ([]InventoryItem, error) {
	var items []InventoryItem
	if err := s.db.Where("user_id = ? AND quantity > 0", userID).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("store: get inventory: %w", err)
	}
	return items, nil
}

// InventoryTotal sums all quantities for a user (spec.md §3 invariant 2:
// sum(inventory.quantity) <= cargoMax(cargoTier)).
func (s *Store) InventoryTotal(userID uint64) (int64, error) {
	var total int64
	err := s.db.Model(&InventoryItem{}).Where("user_id = ?", userID).
		Select("COALESCE(SUM(quantity), 0)").Scan(&total).Error
	return total, err
}

// AddInventory credits qty units of resourceType to a user, upserting
// the row if it doesn't exist yet.
func (s *Store) AddInventory(userID uint64, resourceType string, qty int64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var item InventoryItem
		err := tx.First(&item, "user_id = ? AND resource_type = ?", userID, resourceType).Error
		if err == gorm.ErrRecordNotFound {
			return tx.Create(&InventoryItem{UserID: userID, ResourceType: resourceType, Quantity: qty}).Error
		}
		if err != nil {
			return err
		}
		return tx.Model(&item).Update("quantity", gorm.Expr("quantity + ?", qty)).Error
	})
}

// RemoveInventory debits qty units, failing if the user doesn't have
// enough.
func (s *Store) RemoveInventory(userID uint64, resourceType string, qty int64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var item InventoryItem
		if err := tx.First(&item, "user_id = ? AND resource_type = ?", userID, resourceType).Error; err != nil {
			return translateNotFound(err)
		}
		if item.Quantity < qty {
			return ErrInsufficientResources
		}
		return tx.Model(&item).Update("quantity", gorm.Expr("quantity - ?", qty)).Error
	})
}
