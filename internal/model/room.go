package model

import (
	"slices"
	"time"
)

// Room is the per-session escrow of a game rule
type Room struct {
	Address    Address
	Owner      Address // game rule that created it
	GameID     string
	RoomNumber uint64
	Deadline   time.Time
	Ended      bool
	Closed     bool
	ClosedTo   Address
	Members    []string
	Tokens     []Address
	CreatedAt  time.Time
	EndedAt    time.Time
}

// IsJoined reports whether username is a member
func (r *Room) IsJoined(username string) bool {
	return slices.Contains(r.Members, username)
}

// HasToken reports whether asset has been registered
func (r *Room) HasToken(asset Address) bool {
	return slices.Contains(r.Tokens, asset)
}

// Clone returns a deep copy
func (r *Room) Clone() *Room {
	c := *r
	c.Members = slices.Clone(r.Members)
	c.Tokens = slices.Clone(r.Tokens)
	return &c
}
