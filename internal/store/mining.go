package store

import "gorm.io/gorm"

// CompleteMining atomically credits qty units of resourceType to a
// user's inventory and marks objectID depleted (spec.md §4.7 mining
// completion), so a crash between the two never leaves a resource
// credited without depletion recorded or vice versa.
func (s *Store) CompleteMining(userID uint64, resourceType string, qty int64, objectID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var item InventoryItem
		err := tx.First(&item, "user_id = ? AND resource_type = ?", userID, resourceType).Error
		if err == gorm.ErrRecordNotFound {
			if err := tx.Create(&InventoryItem{UserID: userID, ResourceType: resourceType, Quantity: qty}).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		} else if err := tx.Model(&item).Update("quantity", gorm.Expr("quantity + ?", qty)).Error; err != nil {
			return err
		}
		return markDepletedTx(tx, objectID)
	})
}
