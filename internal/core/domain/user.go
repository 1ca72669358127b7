package domain

import "time"

// AuthProvider identifies how an account was provisioned.
type AuthProvider string

const (
	ProviderEmail  AuthProvider = "email"
	ProviderGoogle AuthProvider = "google"
)

// User represents a user of the application in the domain.
type User struct {
	UserID   string       `json:"userID"` // Primary Key (UUID)
	Name     string       `json:"name"`
	Username string       `json:"username"`
	Email    string       `json:"email"`
	Locale   string       `json:"locale"`
	Provider AuthProvider `json:"provider"`
	AuditFields

	// Secrets is the 1:1 credential record owned by this identity.
	// Never serialized.
	Secrets Secrets `json:"-"`
}

// Secrets holds the persisted credential state for a user.
// A nil PasswordHash means the account was provisioned by an OAuth provider
// and cannot log in or change passwords locally.
type Secrets struct {
	PasswordHash *string
	RefreshToken *string
	ResetToken   *string
	LastSignedIn *time.Time
}

// HasPassword reports whether the account has a local password set.
func (u *User) HasPassword() bool {
	return u.Secrets.PasswordHash != nil && *u.Secrets.PasswordHash != ""
}

func (u *User) GetUserID() string   { return u.UserID }
func (u *User) GetUsername() string { return u.Username }
func (u *User) GetName() string     { return u.Name }
func (u *User) GetEmail() string    { return u.Email }
