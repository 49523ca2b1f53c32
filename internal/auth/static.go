package auth

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// User is a configured account. Hash is a bcrypt hash of the password.
type User struct {
	Username string
	Role     string
	Hash     []byte
}

// StaticProvider authenticates against a fixed set of users.
type StaticProvider struct {
	users map[string]User
	dummy []byte
}

// NewStaticProvider builds a provider from users. Usernames are
// case-sensitive and must be unique.
func NewStaticProvider(users []User) (*StaticProvider, error) {
	if len(users) == 0 {
		return nil, fmt.Errorf("no users configured")
	}
	m := make(map[string]User, len(users))
	cost := bcrypt.DefaultCost
	for _, u := range users {
		if _, dup := m[u.Username]; dup {
			return nil, fmt.Errorf("duplicate user %q", u.Username)
		}
		c, err := bcrypt.Cost(u.Hash)
		if err != nil {
			return nil, fmt.Errorf("user %q: invalid bcrypt hash: %w", u.Username, err)
		}
		cost = c
		m[u.Username] = u
	}

	// Unknown users are compared against this hash.
	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cost)
	if err != nil {
		return nil, fmt.Errorf("generate dummy hash: %w", err)
	}
	return &StaticProvider{users: m, dummy: dummy}, nil
}

// Authenticate implements Provider.
func (p *StaticProvider) Authenticate(ctx context.Context, username, password string) (Identity, error) {
	if err := ctx.Err(); err != nil {
		return Identity{}, err
	}

	u, ok := p.users[username]
	hash := p.dummy
	if ok {
		hash = u.Hash
	}
	err := bcrypt.CompareHashAndPassword(hash, []byte(password))
	if !ok || err != nil {
		return Identity{}, ErrInvalidCredentials
	}
	return Identity{Username: u.Username, Role: u.Role}, nil
}

// Usernames returns the configured usernames (unordered).
func (p *StaticProvider) Usernames() []string {
	out := make([]string, 0, len(p.users))
	for name := range p.users {
		out = append(out, name)
	}
	return out
}

// ParseUsers parses a comma-separated list of "username:role:bcrypt-hash"
// entries. Bcrypt hashes contain '$' but no ':' so the split is unambiguous.
func ParseUsers(list string) ([]User, error) {
	var users []User
	for _, entry := range strings.Split(list, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, ":", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("user entry %q: want username:role:hash", redact(entry))
		}
		name, role, hash := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), strings.TrimSpace(parts[2])
		if name == "" {
			return nil, fmt.Errorf("user entry %q: empty username", redact(entry))
		}
		if role != RoleAdmin && role != RoleUser {
			return nil, fmt.Errorf("user %q: unknown role %q", name, role)
		}
		if !strings.HasPrefix(hash, "$2") {
			return nil, fmt.Errorf("user %q: password must be a bcrypt hash", name)
		}
		users = append(users, User{Username: name, Role: role, Hash: []byte(hash)})
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("no users in %q", list)
	}
	return users, nil
}

// redact keeps the username part of an entry for error messages.
func redact(entry string) string {
	name, _, _ := strings.Cut(entry, ":")
	return name + ":***"
}

// HashPassword returns a bcrypt hash suitable for ParseUsers.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
