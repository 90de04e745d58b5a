// Package voterid establishes the durable pseudo-identity used for
// anonymous voting: a randomly generated voter token kept in the client's
// storage plus a device fingerprint as a secondary signal. The server
// treats a vote as a duplicate when either value matches, so clearing the
// token alone is not enough to vote twice from the same browser profile.
package voterid

import (
	"sync"

	"github.com/google/uuid"
)

// TokenKey is the slot name the voter token lives under in client storage.
const TokenKey = "voterToken"

// TokenStore is the durable key-value slot holding the voter token,
// typically backed by whatever the client platform offers.
type TokenStore interface {
	Get(key string) (string, error)
	Set(key string, value string) error
}

// Identity is the pair sent along with every anonymous vote.
type Identity struct {
	VoterToken  string `json:"voter_token"`
	Fingerprint string `json:"fingerprint"`
}

// GetOrCreateVoterToken reads the voter token from storage, minting and
// persisting a fresh UUID when none exists yet. When storage is missing or
// broken the token is still returned so the current session can vote; it
// just will not survive a restart.
func GetOrCreateVoterToken(store TokenStore) string {
	if store == nil {
		return ephemeralToken()
	}

	token, err := store.Get(TokenKey)
	if err != nil {
		return ephemeralToken()
	}
	if len(token) > 0 {
		return token
	}

	token = uuid.NewString()
	if err := store.Set(TokenKey, token); err != nil {
		return ephemeralToken()
	}
	return token
}

// ephemeralToken is the stand-in identity when storage is unusable: stable
// for the lifetime of the process, gone after a restart.
var ephemeralToken = sync.OnceValue(uuid.NewString)

// GetIdentity composes the voter token and the fingerprint into the
// identity object handed to the voting endpoints.
func GetIdentity(store TokenStore, provider Fingerprinter, signals Signals) Identity {
	return Identity{
		VoterToken:  GetOrCreateVoterToken(store),
		Fingerprint: ComputeFingerprint(provider, signals),
	}
}

// MemoryStore is an in-process TokenStore, handy for tests and for clients
// without durable storage.
type MemoryStore struct {
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (v *MemoryStore) Get(key string) (string, error) {
	return v.values[key], nil
}

func (v *MemoryStore) Set(key string, value string) error {
	v.values[key] = value
	return nil
}
