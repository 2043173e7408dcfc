package static

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/skybi/session-broker/internal/storage"
	"github.com/skybi/session-broker/internal/user"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

var ErrNoCredentials = errors.New("the credential list is empty")

type credentialFile struct {
	Users []user.Credential `yaml:"users"`
}

// Driver represents the storage driver serving a fixed, in-memory credential list
type Driver struct {
	credentials []user.Credential
	hashCost    int
	users       *UserRepository
}

// Option configures a Driver
type Option func(driver *Driver)

// WithHashCost sets the bcrypt cost the passwords are hashed with
func WithHashCost(cost int) Option {
	return func(driver *Driver) {
		driver.hashCost = cost
	}
}

var _ storage.Driver = (*Driver)(nil)

// New creates a new static storage driver serving the given credentials.
// Use Initialize to hash the passwords and build the repository implementation.
func New(credentials []user.Credential, opts ...Option) *Driver {
	driver := &Driver{
		credentials: credentials,
		hashCost:    bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(driver)
	}
	return driver
}

// NewFromFile creates a new static storage driver serving the credentials defined in a YAML file of the form
//
//	users:
//	  - username: publisher1
//	    password: pass
//	    role: PUBLISHER
func NewFromFile(path string, opts ...Option) (*Driver, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read credential file: %w", err)
	}
	file := new(credentialFile)
	if err := yaml.Unmarshal(data, file); err != nil {
		return nil, fmt.Errorf("parse credential file: %w", err)
	}
	return New(file.Users, opts...), nil
}

// Initialize validates the credential list and builds the user repository
func (driver *Driver) Initialize(_ context.Context) error {
	if len(driver.credentials) == 0 {
		return ErrNoCredentials
	}
	users, err := newUserRepository(driver.credentials, driver.hashCost)
	if err != nil {
		return err
	}
	driver.users = users
	return nil
}

// Users provides the static user repository implementation
func (driver *Driver) Users() user.Repository {
	return driver.users
}

// Close discards the repository implementation
func (driver *Driver) Close() {
	driver.users = nil
}
