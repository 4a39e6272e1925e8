package redis

import (
	"github.com/mcoot/plyr-settlement/internal/model"
)

// keyspace builds every key under one prefix, so several deployments can
// share a Redis database
type keyspace struct {
	prefix string
}

func newKeyspace(prefix string) keyspace {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return keyspace{prefix: prefix}
}

func (k keyspace) join(parts ...string) string {
	key := k.prefix
	for _, p := range parts {
		key += ":" + p
	}
	return key
}

// balance is the hash of asset -> amount held by account
func (k keyspace) balance(account model.Address) string {
	return k.join("balance", account.String())
}

// assets is the hash of asset address -> asset record
func (k keyspace) assets() string {
	return k.join("assets")
}

func (k keyspace) account(addr model.Address) string {
	return k.join("account", addr.String())
}

// user scopes usernames to the directory that registered them
func (k keyspace) user(directory model.Address, username string) string {
	return k.join("user", directory.String(), username)
}

func (k keyspace) directory(addr model.Address) string {
	return k.join("directory", addr.String())
}

func (k keyspace) router(addr model.Address) string {
	return k.join("router", addr.String())
}

func (k keyspace) gameRule(addr model.Address) string {
	return k.join("gamerule", addr.String())
}

func (k keyspace) room(addr model.Address) string {
	return k.join("room", addr.String())
}

// roomMembers is the JSON member list of a room, the only room data that
// expires
func (k keyspace) roomMembers(addr model.Address) string {
	return k.join("room", addr.String(), "members")
}

func (k keyspace) slot(addr model.Address) string {
	return k.join("slot", addr.String())
}

// nonces is the hash of deployer -> next create nonce
func (k keyspace) nonces() string {
	return k.join("nonces")
}

// deployments is the hash of deployment name -> deployment record
func (k keyspace) deployments() string {
	return k.join("deployments")
}
