package static

import (
	"context"
	"errors"
	"fmt"

	"github.com/skybi/session-broker/internal/user"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository implements the user.Repository interface using an immutable in-memory credential list
type UserRepository struct {
	users map[string]*user.User

	// dummyHash absorbs the comparison cost for unknown usernames
	dummyHash []byte
}

var _ user.Repository = (*UserRepository)(nil)

func newUserRepository(credentials []user.Credential, cost int) (*UserRepository, error) {
	users := make(map[string]*user.User, len(credentials))
	for _, credential := range credentials {
		if credential.Username == "" {
			return nil, errors.New("credential without a username")
		}
		if _, ok := users[credential.Username]; ok {
			return nil, fmt.Errorf("duplicate username '%s'", credential.Username)
		}
		role, err := user.ParseRole(credential.Role)
		if err != nil {
			return nil, fmt.Errorf("user '%s': %w", credential.Username, err)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(credential.Password), cost)
		if err != nil {
			return nil, fmt.Errorf("user '%s': %w", credential.Username, err)
		}
		users[credential.Username] = &user.User{
			Username:     credential.Username,
			PasswordHash: hash,
			Role:         role,
		}
	}
	dummyHash, err := bcrypt.GenerateFromPassword([]byte("dummy"), cost)
	if err != nil {
		return nil, err
	}
	return &UserRepository{users: users, dummyHash: dummyHash}, nil
}

// GetByUsername retrieves a user by their username
func (repo *UserRepository) GetByUsername(_ context.Context, username string) (*user.User, error) {
	obj, ok := repo.users[username]
	if !ok {
		return nil, nil
	}
	cpy := *obj
	return &cpy, nil
}

// Authenticate retrieves the user matching both the given username and password exactly
func (repo *UserRepository) Authenticate(ctx context.Context, username, password string) (*user.User, error) {
	obj, err := repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		_ = bcrypt.CompareHashAndPassword(repo.dummyHash, []byte(password))
		return nil, nil
	}
	if bcrypt.CompareHashAndPassword(obj.PasswordHash, []byte(password)) != nil {
		return nil, nil
	}
	return obj, nil
}
