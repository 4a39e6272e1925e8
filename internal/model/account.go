package model

import "time"

// AccountKind distinguishes the escrow identities that hold ledger balances
type AccountKind string

const (
	AccountKindMirror AccountKind = "mirror"
	AccountKindRoom   AccountKind = "room"
)

// Account is a materialized escrow identity. Balances are held by the ledger
// keyed by Address, so an address can be funded before its Account exists.
type Account struct {
	Address Address
	Owner   Address // component allowed to move funds out
	Kind    AccountKind
	// PrefundedNative is the native balance found at materialization
	PrefundedNative Amount
	CreatedAt       time.Time
}

// User binds a username to its mirror account within one directory
type User struct {
	Directory Address
	Username  string
	Mirror    Address
	Owner     Address // optional linked external owner
	Tier      uint8
	CreatedAt time.Time
}
