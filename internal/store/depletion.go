package store

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IsDepleted reports whether a procedural object has already been mined
// out (spec.md §3 invariant 5: depletion is permanent for the process).
func (s *Store) IsDepleted(objectID string) (bool, error) {
	var count int64
	err := s.db.Model(&DepletedObject{}).Where("object_id = ?", objectID).Count(&count).Error
	return count > 0, err
}

// MarkDepleted records objectID as depleted; idempotent, since mining
// completion and a racing client retry could both race to call it.
func (s *Store) MarkDepleted(objectID string) error {
	return s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&DepletedObject{ObjectID: objectID}).Error
}

// markDepletedTx is MarkDepleted's transactional variant for callers
// that need depletion recorded atomically with other writes (mining
// completion: credit inventory, credit cargo, mark depleted).
func markDepletedTx(tx *gorm.DB, objectID string) error {
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&DepletedObject{ObjectID: objectID}).Error
}
