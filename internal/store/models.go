/*
Package store
File: internal/store/models.go
Description:
    Durable row types for component C3 — the tables named in spec.md §3
    and §4.3. Mapped through gorm.io/gorm, the ORM acdtunes-spacetraders
    carries as a direct dependency, giving the atomic multi-row
    transactions spec.md §4.3/§5 require without hand-rolled SQL.
*/
package store

import "time"

// User is spec.md §3's User entity. Never deleted (MVP).
type User struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"`
	Username     string `gorm:"uniqueIndex;size:20;not null"`
	PasswordHash string `gorm:"not null"`
	CreatedAt    time.Time
}

// Ship is the one-per-user vessel row.
type Ship struct {
	UserID uint64 `gorm:"primaryKey"`

	PosX, PosY   float64
	VelX, VelY   float64
	Rotation     float64
	LastSectorX  int
	LastSectorY  int

	HullCurrent   float64
	HullMax       float64
	ShieldCurrent float64
	ShieldMax     float64
	Credits       int64

	EngineTier     int
	WeaponTier     int
	ShieldTier     int
	MiningTier     int
	CargoTier      int
	RadarTier      int
	EnergyCoreTier int
	HullTier       int

	WeaponType string
	ColorID    int
	ProfileID  int

	UpdatedAt time.Time
}

// InventoryItem is the (userID, resourceType) -> quantity composite-key
// row from spec.md §3.
type InventoryItem struct {
	UserID       uint64 `gorm:"primaryKey"`
	ResourceType string `gorm:"primaryKey;size:32"`
	Quantity     int64  `gorm:"not null"`
}

// RelicInstance records that a user holds a named relic (presence grants
// abilities, e.g. WORMHOLE_GEM).
type RelicInstance struct {
	UserID   uint64 `gorm:"primaryKey"`
	RelicType string `gorm:"primaryKey;size:32"`
}

// MarketListing is a standing sell order.
type MarketListing struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"`
	SellerID     uint64 `gorm:"index;not null"`
	SellerName   string `gorm:"size:20;not null"`
	ResourceType string `gorm:"size:32;not null"`
	Quantity     int64  `gorm:"not null"`
	PricePerUnit int64  `gorm:"not null"`
	ListedAt     time.Time
}

// Fleet is a named party of up to 4 members.
type Fleet struct {
	ID       uint64 `gorm:"primaryKey;autoIncrement"`
	Name     string `gorm:"size:40;not null"`
	LeaderID uint64 `gorm:"not null"`
}

// FleetMember tracks membership; a user can belong to at most one fleet.
type FleetMember struct {
	FleetID uint64 `gorm:"primaryKey"`
	UserID  uint64 `gorm:"primaryKey"`
	JoinedAt time.Time
}

// DepletedObject records a procedural object id whose resources have been
// fully extracted; it stays depleted for the process lifetime
// (spec.md §3 invariant 5). Persisted so a restart doesn't un-deplete the
// galaxy mid-session; this table is the only depletion record, and
// internal/mining reads it through IsDepleted.
type DepletedObject struct {
	ObjectID string `gorm:"primaryKey;size:64"`
}
