/*
Package fleet
File: internal/fleet/fleet.go
Description:
    Component C5's fleet command set — create/invite/accept/decline/
    kick/leave/chat/getData — as a thin layer over the already
    transactional internal/store fleet tables, the same "mutate, then
    announce" shape internal/market and internal/mining use. Invites
    are tracked in memory only: spec.md §3's data model has no Invite
    entity, just Fleet/FleetMember, so a pending invite is exactly as
    durable as the connection that issued it.
*/
package fleet

import (
	"sync"

	"github.com/voidreach/starforge/internal/apperr"
	"github.com/voidreach/starforge/internal/protocol"
	"github.com/voidreach/starforge/internal/sim"
	"github.com/voidreach/starforge/internal/store"
)

// Member is one row of a fleet:data payload.
type Member struct {
	UserID   uint64 `json:"userId"`
	Username string `json:"username"`
	IsLeader bool   `json:"isLeader"`
}

// Data is the fleet:data / fleet:getData response shape.
type Data struct {
	FleetID uint64   `json:"fleetId"`
	Name    string   `json:"name"`
	Members []Member `json:"members"`
}

// Manager tracks pending invites and wraps store fleet mutations with
// the notifications every member needs to see.
type Manager struct {
	mu      sync.Mutex
	invites map[uint64]uint64 // invited userID -> fleetID

	st     *store.Store
	engine *sim.Engine
}

// NewManager wires a fleet Manager bound to a store and sim engine.
func NewManager(st *store.Store, engine *sim.Engine) *Manager {
	return &Manager{invites: make(map[uint64]uint64), st: st, engine: engine}
}

// Create starts a new fleet led by userID (fleet:create).
func (m *Manager) Create(userID uint64, name string) (*Data, error) {
	f, err := m.st.CreateFleet(name, userID)
	if err != nil {
		return nil, translateErr(err)
	}
	return m.snapshot(f.ID)
}

// Invite lets a fleet's leader offer membership to another user by
// username (fleet:invite). The invite itself is never persisted or
// broadcast; only the invited user is told.
func (m *Manager) Invite(leaderID uint64, targetUsername string) error {
	fleet, err := m.st.GetFleetOf(leaderID)
	if err != nil {
		return translateErr(err)
	}
	if fleet.LeaderID != leaderID {
		return apperr.State("only the fleet leader can invite")
	}
	members, err := m.st.FleetMembers(fleet.ID)
	if err != nil {
		return apperr.Persistence("failed to load fleet members", err)
	}
	if len(members) >= store.MaxFleetMembers {
		return apperr.State("fleet is full")
	}

	target, err := m.st.GetUserByUsername(targetUsername)
	if err != nil {
		return apperr.Validation("no such user")
	}
	if _, err := m.st.GetFleetOf(target.ID); err == nil {
		return apperr.State("target is already in a fleet")
	}

	m.mu.Lock()
	m.invites[target.ID] = fleet.ID
	m.mu.Unlock()

	m.engine.EmitToPlayer(target.ID, protocol.EventFleetInvite, map[string]any{
		"fleetId": fleet.ID, "fleetName": fleet.Name,
	})
	return nil
}

// Accept joins a pending invite (fleet:accept).
func (m *Manager) Accept(userID uint64) (*Data, error) {
	fleetID, ok := m.takeInvite(userID)
	if !ok {
		return nil, apperr.State("no pending fleet invite")
	}
	if err := m.st.JoinFleet(fleetID, userID); err != nil {
		return nil, translateErr(err)
	}
	data, err := m.snapshot(fleetID)
	if err != nil {
		return nil, err
	}
	m.broadcast(data)
	return data, nil
}

// Decline discards a pending invite (fleet:decline).
func (m *Manager) Decline(userID uint64) error {
	if _, ok := m.takeInvite(userID); !ok {
		return apperr.State("no pending fleet invite")
	}
	return nil
}

func (m *Manager) takeInvite(userID uint64) (uint64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fleetID, ok := m.invites[userID]
	if ok {
		delete(m.invites, userID)
	}
	return fleetID, ok
}

// Kick removes targetID from leaderID's fleet (fleet:kick).
func (m *Manager) Kick(leaderID, targetID uint64) error {
	fleet, err := m.st.GetFleetOf(leaderID)
	if err != nil {
		return translateErr(err)
	}
	if err := m.st.KickMember(leaderID, targetID); err != nil {
		return translateErr(err)
	}
	if data, err := m.snapshot(fleet.ID); err == nil {
		m.broadcast(data)
	}
	m.engine.EmitToPlayer(targetID, protocol.EventFleetData, nil)
	return nil
}

// Leave removes userID from its fleet, disbanding it if the leader
// leaves (fleet:leave).
func (m *Manager) Leave(userID uint64) error {
	fleet, err := m.st.GetFleetOf(userID)
	if err != nil {
		return translateErr(err)
	}
	wasLeader := fleet.LeaderID == userID
	if err := m.st.LeaveFleet(userID); err != nil {
		return translateErr(err)
	}
	if !wasLeader {
		if data, err := m.snapshot(fleet.ID); err == nil {
			m.broadcast(data)
		}
	}
	return nil
}

// Chat relays a message to every other fleet member, ephemeral and
// unpersisted (fleet:chat, per the open design decision on fleet chat
// durability).
func (m *Manager) Chat(userID uint64, message string) error {
	fleet, err := m.st.GetFleetOf(userID)
	if err != nil {
		return translateErr(err)
	}
	members, err := m.st.FleetMembers(fleet.ID)
	if err != nil {
		return apperr.Persistence("failed to load fleet members", err)
	}
	sender, err := m.st.GetUserByID(userID)
	if err != nil {
		return apperr.Persistence("failed to load sender", err)
	}
	payload := map[string]any{"userId": userID, "username": sender.Username, "message": message}
	for _, mem := range members {
		if mem.UserID == userID {
			continue
		}
		m.engine.EmitToPlayer(mem.UserID, protocol.EventFleetChat, payload)
	}
	return nil
}

// GetData returns the requesting user's fleet roster (fleet:getData).
func (m *Manager) GetData(userID uint64) (*Data, error) {
	fleet, err := m.st.GetFleetOf(userID)
	if err != nil {
		return nil, translateErr(err)
	}
	return m.snapshot(fleet.ID)
}

func (m *Manager) snapshot(fleetID uint64) (*Data, error) {
	fleet, err := m.st.GetFleetByID(fleetID)
	if err != nil {
		return nil, translateErr(err)
	}
	members, err := m.st.FleetMembers(fleetID)
	if err != nil {
		return nil, apperr.Persistence("failed to load fleet members", err)
	}
	out := &Data{FleetID: fleetID, Name: fleet.Name}
	for _, mem := range members {
		u, err := m.st.GetUserByID(mem.UserID)
		if err != nil {
			continue
		}
		out.Members = append(out.Members, Member{
			UserID: mem.UserID, Username: u.Username,
			IsLeader: fleet.LeaderID == mem.UserID,
		})
	}
	return out, nil
}

func (m *Manager) broadcast(data *Data) {
	for _, mem := range data.Members {
		m.engine.EmitToPlayer(mem.UserID, protocol.EventFleetData, data)
	}
}

func translateErr(err error) error {
	switch err {
	case store.ErrFleetFull:
		return apperr.State("fleet is full")
	case store.ErrAlreadyInFleet:
		return apperr.State("already in a fleet")
	case store.ErrNotFleetLeader:
		return apperr.State("not the fleet leader")
	case store.ErrNotFleetMember:
		return apperr.State("not a fleet member")
	case store.ErrNotFound:
		return apperr.Validation("fleet not found")
	default:
		return apperr.Persistence("fleet operation failed", err)
	}
}
