package user

// Credential represents a plain user definition used to seed a credential store
type Credential struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

// DefaultCredentials returns the credentials used when no credential file is configured
func DefaultCredentials() []Credential {
	return []Credential{
		{Username: "publisher1", Password: "pass", Role: string(RolePublisher)},
		{Username: "publisher2", Password: "pass", Role: string(RolePublisher)},
		{Username: "subscriber", Password: "pass", Role: string(RoleSubscriber)},
	}
}
