package store

// HasRelic reports whether a user holds a given relic (presence grants
// abilities, e.g. WORMHOLE_GEM unlocking wormhole entry).
func (s *Store) HasRelic(userID uint64, relicType string) (bool, error) {
	var count int64
	err := s.db.Model(&RelicInstance{}).
		Where("user_id = ? AND relic_type = ?", userID, relicType).
		Count(&count).Error
	return count > 0, err
}

// ListRelics returns every relic a user holds.
func (s *Store) ListRelics(userID uint64) ([]RelicInstance, error) {
	var relics []RelicInstance
	err := s.db.Where("user_id = ?", userID).Find(&relics).Error
	return relics, err
}

// GrantRelic adds a relic to a user's collection; idempotent.
func (s *Store) GrantRelic(userID uint64, relicType string) error {
	r := RelicInstance{UserID: userID, RelicType: relicType}
	return s.db.FirstOrCreate(&r, r).Error
}
