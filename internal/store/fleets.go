package store

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// MaxFleetMembers is spec.md §3's cap (members[<=4]).
const MaxFleetMembers = 4

var (
	ErrFleetFull       = errors.New("fleet is full")
	ErrAlreadyInFleet  = errors.New("already in a fleet")
	ErrNotFleetLeader  = errors.New("not the fleet leader")
	ErrNotFleetMember  = errors.New("not a fleet member")
)

// CreateFleet creates a new fleet with leaderID as its sole member.
func (s *Store) CreateFleet(name string, leaderID uint64) (*Fleet, error) {
	var fleet Fleet
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := fleetOf(tx, leaderID); err == nil {
			return ErrAlreadyInFleet
		}
		fleet = Fleet{Name: name, LeaderID: leaderID}
		if err := tx.Create(&fleet).Error; err != nil {
			return err
		}
		return tx.Create(&FleetMember{FleetID: fleet.ID, UserID: leaderID, JoinedAt: time.Now()}).Error
	})
	if err != nil {
		return nil, err
	}
	return &fleet, nil
}

// fleetOf finds the fleet a user currently belongs to, if any.
func fleetOf(tx *gorm.DB, userID uint64) (*Fleet, error) {
	var member FleetMember
	if err := tx.First(&member, "user_id = ?", userID).Error; err != nil {
		return nil, translateNotFound(err)
	}
	var fleet Fleet
	if err := tx.First(&fleet, "id = ?", member.FleetID).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &fleet, nil
}

// GetFleetOf returns the fleet a user belongs to.
func (s *Store) GetFleetOf(userID uint64) (*Fleet, error) {
	return fleetOf(s.db, userID)
}

// GetFleetByID looks up a fleet directly by id.
func (s *Store) GetFleetByID(fleetID uint64) (*Fleet, error) {
	var fleet Fleet
	if err := s.db.First(&fleet, "id = ?", fleetID).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &fleet, nil
}

// FleetMembers returns every membership row of a fleet.
func (s *Store) FleetMembers(fleetID uint64) ([]FleetMember, error) {
	var members []FleetMember
	err := s.db.Where("fleet_id = ?", fleetID).Find(&members).Error
	return members, err
}

// JoinFleet adds userID to fleetID, failing if the fleet is full or the
// user already belongs to a fleet (accepted invite, spec.md fleet:accept).
func (s *Store) JoinFleet(fleetID, userID uint64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := fleetOf(tx, userID); err == nil {
			return ErrAlreadyInFleet
		}
		var count int64
		if err := tx.Model(&FleetMember{}).Where("fleet_id = ?", fleetID).Count(&count).Error; err != nil {
			return err
		}
		if count >= MaxFleetMembers {
			return ErrFleetFull
		}
		return tx.Create(&FleetMember{FleetID: fleetID, UserID: userID, JoinedAt: time.Now()}).Error
	})
}

// LeaveFleet removes userID from its fleet; if the leader leaves, the
// fleet is disbanded entirely (teacher-style: simplest consistent rule).
func (s *Store) LeaveFleet(userID uint64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var member FleetMember
		if err := tx.First(&member, "user_id = ?", userID).Error; err != nil {
			return translateNotFound(err)
		}
		var fleet Fleet
		if err := tx.First(&fleet, "id = ?", member.FleetID).Error; err != nil {
			return translateNotFound(err)
		}
		if fleet.LeaderID == userID {
			if err := tx.Delete(&FleetMember{}, "fleet_id = ?", fleet.ID).Error; err != nil {
				return err
			}
			return tx.Delete(&Fleet{}, "id = ?", fleet.ID).Error
		}
		return tx.Delete(&FleetMember{}, "fleet_id = ? AND user_id = ?", fleet.ID, userID).Error
	})
}

// KickMember lets the leader remove a member (fleet:kick).
func (s *Store) KickMember(leaderID, targetID uint64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		fleet, err := fleetOf(tx, leaderID)
		if err != nil {
			return err
		}
		if fleet.LeaderID != leaderID {
			return ErrNotFleetLeader
		}
		return tx.Delete(&FleetMember{}, "fleet_id = ? AND user_id = ?", fleet.ID, targetID).Error
	})
}
