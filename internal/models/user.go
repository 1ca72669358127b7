package models

import (
	"database/sql"
	"time"
)

// User represents a user row joined with its user_secrets row.
type User struct {
	UserID   string `json:"userID"`
	Name     string `json:"name"`
	Username string `json:"username" db:"username"`
	Email    string `json:"email" db:"email"`
	Locale   string `json:"locale" db:"locale"`
	Provider string `json:"provider" db:"provider"`
	AuditFields

	// Credential secrets (user_secrets table, 1:1 by user_id)
	PasswordHash sql.NullString `json:"-" db:"password_hash"`
	RefreshToken sql.NullString `json:"-" db:"refresh_token"`
	ResetToken   sql.NullString `json:"-" db:"reset_token"`
	LastSignedIn sql.NullTime   `json:"-" db:"last_signed_in"`
}

// AuditFields holds standard audit columns.
type AuditFields struct {
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
