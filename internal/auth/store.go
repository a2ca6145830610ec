package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CredentialStore decides whether a username and password pair may log in.
type CredentialStore interface {
	Verify(username, password string) bool
}

// StaticStore maps Hash(username) to Hash(password).
type StaticStore struct {
	users map[string]string
}

// NewStaticStore builds a store from digest pairs keyed by username digest.
func NewStaticStore(users map[string]string) (*StaticStore, error) {
	s := &StaticStore{users: make(map[string]string, len(users))}
	for u, p := range users {
		userHash, err := normalizeDigest(u)
		if err != nil {
			return nil, fmt.Errorf("user hash %q: %w", u, err)
		}
		passHash, err := normalizeDigest(p)
		if err != nil {
			return nil, fmt.Errorf("password hash for %q: %w", u, err)
		}
		s.users[userHash] = passHash
	}
	return s, nil
}

// DefaultStore holds the built-in accounts.
func DefaultStore() *StaticStore {
	return &StaticStore{users: map[string]string{
		"835d6dc88b708bc646d6db82c853ef4182fabbd4a8de59c213f2b5ab3ae7d9be": "218d033a33e37ad0f4208cda5c28143aeac99bb9e234eda3c06b720134cc24c2",
		"2838901e9c6354dcbef7a8fd5134633465c67c1c353a24f2c84c65ee61f8fc10": "d0b26502e9ae93f461ee345bf11a405dcbcf82d066d5c93d49f67f91fa68e98b",
	}}
}

// Verify reports whether Hash(username) is known and Hash(password) matches it.
func (s *StaticStore) Verify(username, password string) bool {
	want, ok := s.users[Hash(username)]
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(want), []byte(Hash(password))) == 1
}

// Len returns the number of accounts.
func (s *StaticStore) Len() int {
	return len(s.users)
}

// credentialsFile is the YAML layout of a credentials file.
type credentialsFile struct {
	Users []struct {
		UserHash     string `yaml:"user_hash"`
		PasswordHash string `yaml:"password_hash"`
	} `yaml:"users"`
}

// LoadFileStore reads a YAML credentials file:
//
//	users:
//	  - user_hash: <sha256 hex of username>
//	    password_hash: <sha256 hex of password>
func LoadFileStore(path string) (*StaticStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}

	var f credentialsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse credentials file %s: %w", path, err)
	}
	if len(f.Users) == 0 {
		return nil, errors.New("credentials file has no users")
	}

	users := make(map[string]string, len(f.Users))
	for i, u := range f.Users {
		if _, dup := users[u.UserHash]; dup {
			return nil, fmt.Errorf("credentials file: user %d is a duplicate", i+1)
		}
		users[u.UserHash] = u.PasswordHash
	}
	return NewStaticStore(users)
}
