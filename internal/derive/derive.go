// Package derive computes deterministic identifiers for mirror accounts,
// game rooms and proxy deployments. Every function here is pure.
package derive

import (
	"encoding/binary"

	"golang.org/x/crypto/sha3"

	"github.com/mcoot/plyr-settlement/internal/model"
)

// Creation templates. Changing either string changes every derived address.
var (
	MirrorTemplate = Keccak256([]byte("plyr.mirror.v1"))
	RoomTemplate   = Keccak256([]byte("plyr.gameroom.v1"))
)

// Hash is a 32 byte keccak digest
type Hash [32]byte

// Keccak256 hashes the concatenation of parts
func Keccak256(parts ...[]byte) Hash {
	h := sha3.NewLegacyKeccak256()
	for _, p := range parts {
		h.Write(p)
	}
	var out Hash
	h.Sum(out[:0])
	return out
}

// Create2 derives an address from a deployer, a salt and a template hash:
// keccak256(0xff ‖ deployer ‖ salt ‖ template)[12:]
func Create2(deployer model.Address, salt Hash, template Hash) model.Address {
	digest := Keccak256([]byte{0xff}, deployer[:], salt[:], template[:])
	return model.BytesToAddress(digest[12:])
}

// Create derives the address of the nonce-th deployment made by deployer
func Create(deployer model.Address, nonce uint64) model.Address {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], nonce)
	digest := Keccak256(deployer[:], n[:])
	return model.BytesToAddress(digest[12:])
}

// MirrorSalt is the salt for a username's mirror account
func MirrorSalt(username, suffix string) Hash {
	return Keccak256([]byte(username + suffix))
}

// Mirror derives the mirror account address of username under directory
func Mirror(directory model.Address, username, suffix string) model.Address {
	return Create2(directory, MirrorSalt(username, suffix), MirrorTemplate)
}

// RoomSalt is the salt for a room; the separator keeps ("ab", n) and ("a", …) apart
func RoomSalt(gameID string, roomNumber uint64) Hash {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], roomNumber)
	return Keccak256([]byte(gameID), []byte{0x00}, n[:])
}

// Room derives the escrow address of roomNumber of gameID under a game rule
func Room(rule model.Address, gameID string, roomNumber uint64) model.Address {
	return Create2(rule, RoomSalt(gameID, roomNumber), RoomTemplate)
}
