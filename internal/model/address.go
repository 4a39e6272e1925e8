package model

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"
)

// AddressLength is the byte width of an Address
const AddressLength = 20

// Address is an opaque identifier naming a mirror account, room, component or asset
type Address [AddressLength]byte

// ZeroAddress is the null identifier
var ZeroAddress = Address{}

// NativeAsset addresses the native currency in asset-typed APIs
var NativeAsset = ZeroAddress

// ParseAddress decodes a 0x-prefixed (or bare) 40 character hex string
func ParseAddress(s string) (Address, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	if len(s) != AddressLength*2 {
		return Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	var a Address
	if _, err := hex.Decode(a[:], []byte(s)); err != nil {
		return Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	return a, nil
}

// MustParseAddress is ParseAddress for constants and tests
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// BytesToAddress takes the last AddressLength bytes of b
func BytesToAddress(b []byte) Address {
	var a Address
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
	return a
}

// IsZero reports whether a is the null identifier
func (a Address) IsZero() bool {
	return a == ZeroAddress
}

// Compare orders addresses bytewise
func (a Address) Compare(b Address) int {
	return bytes.Compare(a[:], b[:])
}

// String returns the lowercase 0x-prefixed hex form
func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// MarshalText implements encoding.TextMarshaler
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
