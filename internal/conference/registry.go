package conference

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/skybi/session-broker/internal/hashmap"
)

// Session represents a snapshot of a registered conference session
type Session struct {
	Name   string
	Handle Handle
	Tokens []string
}

type entry struct {
	mtx      sync.Mutex
	name     string
	handle   Handle
	tokens   []string
	detached bool
}

// Registry keeps track of the conference sessions brokered by this service and the tokens issued for them.
// Every read-modify-write on a session name is serialized, including the platform calls it triggers; operations on
// different names never block each other.
type Registry struct {
	platform Platform
	entries  *hashmap.NormalMap[string, *entry]
}

// NewRegistry creates a new empty registry backed by the given platform
func NewRegistry(platform Platform) *Registry {
	return &Registry{
		platform: platform,
		entries:  hashmap.NewNormal[string, *entry](),
	}
}

// acquire returns the locked entry registered under name.
// If create is set, a pending entry is registered if none exists yet; otherwise nil is returned.
func (registry *Registry) acquire(name string, create bool) *entry {
	for {
		var obj *entry
		registry.entries.BootstrappedManipulation(func(raw map[string]*entry) {
			obj = raw[name]
			if obj == nil && create {
				obj = &entry{name: name}
				raw[name] = obj
			}
		})
		if obj == nil {
			return nil
		}

		obj.mtx.Lock()
		if !obj.detached {
			return obj
		}
		// The entry got removed while we were waiting for it
		obj.mtx.Unlock()
	}
}

// detach removes a locked entry from the registry
func (registry *Registry) detach(obj *entry) {
	registry.entries.BootstrappedManipulation(func(raw map[string]*entry) {
		if raw[obj.name] == obj {
			delete(raw, obj.name)
		}
	})
	obj.detached = true
}

// Issuance describes a token issued by a Registry
type Issuance struct {
	Token        string
	SessionID    string
	ConnectionID string

	// Created reports whether the remote session was created by this issuance
	Created bool
}

// IssueToken creates a new connection to the conference session registered under name and returns its token.
// If no session is registered under name yet, a new remote session is created first.
// Errors raised by the platform are wrapped in ErrUpstream. If the very first token of a new session could not be
// issued, the session is not registered. A context that ended while waiting for the session yields its error and
// leaves the session untouched.
func (registry *Registry) IssueToken(ctx context.Context, name string, properties *ConnectionProperties) (*Issuance, error) {
	obj := registry.acquire(name, true)
	defer obj.mtx.Unlock()

	if err := ctx.Err(); err != nil {
		if obj.handle == nil {
			registry.detach(obj)
		}
		return nil, err
	}

	created := false
	if obj.handle == nil {
		handle, err := registry.platform.CreateSession(ctx)
		if err != nil {
			registry.detach(obj)
			return nil, fmt.Errorf("%w: create session: %w", ErrUpstream, err)
		}
		obj.handle = handle
		created = true
	}

	connection, err := obj.handle.CreateConnection(ctx, properties)
	if err != nil {
		if len(obj.tokens) == 0 {
			registry.detach(obj)
		}
		return nil, fmt.Errorf("%w: create connection: %w", ErrUpstream, err)
	}

	obj.tokens = append(obj.tokens, connection.Token)
	return &Issuance{
		Token:        connection.Token,
		SessionID:    obj.handle.ID(),
		ConnectionID: connection.ID,
		Created:      created,
	}, nil
}

// RemoveToken removes a token from the conference session registered under name.
// If it was the last token of the session, the session itself is removed; deleted reports this case.
func (registry *Registry) RemoveToken(name, token string) (deleted bool, err error) {
	obj := registry.acquire(name, false)
	if obj == nil {
		return false, ErrSessionNotFound
	}
	defer obj.mtx.Unlock()

	index := slices.Index(obj.tokens, token)
	if index < 0 {
		return false, ErrTokenNotFound
	}
	obj.tokens = slices.Delete(obj.tokens, index, index+1)

	if len(obj.tokens) == 0 {
		registry.detach(obj)
		return true, nil
	}
	return false, nil
}

// Lookup returns a snapshot of the conference session registered under name
func (registry *Registry) Lookup(name string) (*Session, bool) {
	obj := registry.acquire(name, false)
	if obj == nil {
		return nil, false
	}
	defer obj.mtx.Unlock()

	return &Session{
		Name:   obj.name,
		Handle: obj.handle,
		Tokens: slices.Clone(obj.tokens),
	}, true
}

// Size returns the amount of registered conference sessions, including pending ones
func (registry *Registry) Size() int {
	return registry.entries.Size()
}
