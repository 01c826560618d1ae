package store

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrDuplicateUsername is returned by CreateUser when the username is
// already taken (spec.md §3: username is unique).
var ErrDuplicateUsername = errors.New("username already taken")

// CreateUser inserts a new user row. Caller has already validated the
// username format and hashed the password (internal/auth does both).
func (s *Store) CreateUser(username, passwordHash string) (*User, error) {
	u := &User{Username: username, PasswordHash: passwordHash}
	if err := s.db.Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("store: create user: %w", err)
	}
	return u, nil
}

// GetUserByUsername looks up a user by username. Returns ErrNotFound if
// no such user exists.
func (s *Store) GetUserByUsername(username string) (*User, error) {
	var u User
	if err := s.db.Where("username = ?", username).First(&u).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &u, nil
}

// GetUserByID looks up a user by id.
func (s *Store) GetUserByID(id uint64) (*User, error) {
	var u User
	if err := s.db.First(&u, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &u, nil
}
