package inmem

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"math"

	"github.com/hashicorp/go-memdb"
	"github.com/skybi/session-broker/internal/api/broker/session"
	"github.com/skybi/session-broker/internal/random"
)

var tokenLength = 64

const tableSessions = "sessions"

var dbSchema = &memdb.DBSchema{
	Tables: map[string]*memdb.TableSchema{
		tableSessions: {
			Name: tableSessions,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:         "id",
					Unique:       true,
					AllowMissing: false,
					Indexer:      &memdb.StringFieldIndex{Field: "Token"},
				},
				"expires": {
					Name:         "expires",
					Unique:       false,
					AllowMissing: false,
					Indexer:      expiresIndex{},
				},
			},
		},
	},
}

// Driver represents the in-memory session storage driver built using hashicorp/go-memdb
type Driver struct {
	db *memdb.MemDB
}

var _ session.Storage = (*Driver)(nil)

// New creates a new empty in-memory session storage driver
func New() (*Driver, error) {
	db, err := memdb.NewMemDB(dbSchema)
	if err != nil {
		return nil, err
	}
	return &Driver{db}, nil
}

// GetByRawToken retrieves a live session by its raw (prior hashing) token
func (driver *Driver) GetByRawToken(_ context.Context, rawToken string) (*session.Session, error) {
	txn := driver.db.Txn(false)
	obj, err := txn.First(tableSessions, "id", hashToken(rawToken))
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, nil
	}

	ses := obj.(*session.Session)
	if ses.IsExpired() {
		return nil, nil
	}
	cpy := *ses
	return &cpy, nil
}

// Create creates a new session
func (driver *Driver) Create(_ context.Context, username string, expires int64) (string, error) {
	rawToken := random.String(tokenLength, random.CharsetTokens)

	ses := &session.Session{
		Token:    hashToken(rawToken),
		Username: username,
		Expires:  expires,
	}

	txn := driver.db.Txn(true)
	defer txn.Abort()
	if err := txn.Insert(tableSessions, ses); err != nil {
		return "", err
	}
	txn.Commit()

	return rawToken, nil
}

// Terminate terminates a session by its raw token
func (driver *Driver) Terminate(_ context.Context, rawToken string) error {
	txn := driver.db.Txn(true)
	defer txn.Abort()
	if _, err := txn.DeleteAll(tableSessions, "id", hashToken(rawToken)); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

// TerminateExpired terminates all sessions that are expired
func (driver *Driver) TerminateExpired(_ context.Context) (int, error) {
	txn := driver.db.Txn(true)
	defer txn.Abort()

	it, err := txn.LowerBound(tableSessions, "expires", int64(math.MinInt64))
	if err != nil {
		return 0, err
	}

	// memdb iterators must not be used while the table is modified
	var expired []*session.Session
	for obj := it.Next(); obj != nil; obj = it.Next() {
		ses := obj.(*session.Session)
		if !ses.IsExpired() {
			break
		}
		expired = append(expired, ses)
	}
	for _, ses := range expired {
		if err := txn.Delete(tableSessions, ses); err != nil {
			return 0, err
		}
	}

	txn.Commit()
	return len(expired), nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
