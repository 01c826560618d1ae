/*
File: internal/store/market.go
Description:
    Component C7's marketplace persistence: listItem, buyItem,
    cancelListing — each atomic per spec.md §4.3. Loosely grounded on the
    teacher's economy.go (mutate-under-lock, return the delta), replaced
    here with real ACID transactions since the domain is now a player
    marketplace rather than generated NPC contracts.
*/
package store

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ErrListingGone is returned by BuyItem/CancelListing when the listing
// no longer exists (another transaction won the race).
var ErrListingGone = errors.New("listing not found")

// ErrCargoFull is returned by BuyItem when the buyer's cargo can't fit
// the purchase. callers pass cargoMax/currentTotal so this package stays
// decoupled from internal/balance's tier tables.
var ErrCargoFull = errors.New("cargo hold full")

// ListItem atomically decrements the seller's inventory and inserts a
// new listing (spec.md §4.3).
func (s *Store) ListItem(sellerID uint64, sellerName, resourceType string, qty, pricePerUnit int64) (*MarketListing, error) {
	var listing MarketListing
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var item InventoryItem
		if err := tx.First(&item, "user_id = ? AND resource_type = ?", sellerID, resourceType).Error; err != nil {
			return translateNotFound(err)
		}
		if item.Quantity < qty {
			return ErrInsufficientResources
		}
		if err := tx.Model(&item).Update("quantity", gorm.Expr("quantity - ?", qty)).Error; err != nil {
			return err
		}
		listing = MarketListing{
			SellerID: sellerID, SellerName: sellerName, ResourceType: resourceType,
			Quantity: qty, PricePerUnit: pricePerUnit, ListedAt: time.Now(),
		}
		return tx.Create(&listing).Error
	})
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// BuyResult is returned by BuyItem.
type BuyResult struct {
	Listing       MarketListing // post-purchase state; Quantity 0 if fully consumed
	PurchasedQty  int64
	TotalCost     int64
	ListingDeleted bool
}

// BuyItem atomically verifies listing/credits/cargo room, debits the
// buyer, credits the seller, and reduces or deletes the listing
// (spec.md §4.3; supports partial fills).
func (s *Store) BuyItem(buyerID, listingID uint64, qty int64, buyerCargoMax, buyerCargoCurrent int64) (*BuyResult, error) {
	var out BuyResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var listing MarketListing
		if err := tx.First(&listing, "id = ?", listingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrListingGone
			}
			return err
		}
		if listing.Quantity <= 0 {
			return ErrListingGone
		}
		if qty > listing.Quantity {
			qty = listing.Quantity
		}
		if buyerCargoCurrent+qty > buyerCargoMax {
			return ErrCargoFull
		}

		cost := qty * listing.PricePerUnit

		var buyer Ship
		if err := tx.First(&buyer, "user_id = ?", buyerID).Error; err != nil {
			return translateNotFound(err)
		}
		if buyer.Credits < cost {
			return ErrInsufficientCredits
		}

		if err := tx.Model(&Ship{}).Where("user_id = ?", buyerID).
			Update("credits", gorm.Expr("credits - ?", cost)).Error; err != nil {
			return err
		}
		if err := tx.Model(&Ship{}).Where("user_id = ?", listing.SellerID).
			Update("credits", gorm.Expr("credits + ?", cost)).Error; err != nil {
			return err
		}

		var inv InventoryItem
		err := tx.First(&inv, "user_id = ? AND resource_type = ?", buyerID, listing.ResourceType).Error
		if err == gorm.ErrRecordNotFound {
			if err := tx.Create(&InventoryItem{UserID: buyerID, ResourceType: listing.ResourceType, Quantity: qty}).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		} else if err := tx.Model(&inv).Update("quantity", gorm.Expr("quantity + ?", qty)).Error; err != nil {
			return err
		}

		remaining := listing.Quantity - qty
		if remaining <= 0 {
			if err := tx.Delete(&MarketListing{}, "id = ?", listingID).Error; err != nil {
				return err
			}
			out.ListingDeleted = true
			listing.Quantity = 0
		} else {
			if err := tx.Model(&listing).Update("quantity", remaining).Error; err != nil {
				return err
			}
			listing.Quantity = remaining
		}

		out.Listing = listing
		out.PurchasedQty = qty
		out.TotalCost = cost
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CancelListing verifies ownership, returns the unsold quantity to the
// seller's inventory, and deletes the listing (spec.md §4.3).
func (s *Store) CancelListing(sellerID, listingID uint64) (*MarketListing, error) {
	var listing MarketListing
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&listing, "id = ?", listingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrListingGone
			}
			return err
		}
		if listing.SellerID != sellerID {
			return fmt.Errorf("store: %w: not the owner", ErrListingGone)
		}
		var inv InventoryItem
		err := tx.First(&inv, "user_id = ? AND resource_type = ?", sellerID, listing.ResourceType).Error
		if err == gorm.ErrRecordNotFound {
			if err := tx.Create(&InventoryItem{UserID: sellerID, ResourceType: listing.ResourceType, Quantity: listing.Quantity}).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		} else if err := tx.Model(&inv).Update("quantity", gorm.Expr("quantity + ?", listing.Quantity)).Error; err != nil {
			return err
		}
		return tx.Delete(&MarketListing{}, "id = ?", listingID).Error
	})
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// GetListings returns every active listing (market:getListings).
func (s *Store) GetListings() ([]MarketListing, error) {
	var listings []MarketListing
	err := s.db.Order("listed_at asc").Find(&listings).Error
	return listings, err
}

// GetMyListings returns a seller's own active listings.
func (s *Store) GetMyListings(sellerID uint64) ([]MarketListing, error) {
	var listings []MarketListing
	err := s.db.Where("seller_id = ?", sellerID).Order("listed_at asc").Find(&listings).Error
	return listings, err
}
