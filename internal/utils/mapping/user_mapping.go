package mapping

import (
	"database/sql"
	"time"

	"github.com/resumeforge/resumeforge_backend/internal/core/domain"
	"github.com/resumeforge/resumeforge_backend/internal/models"
)

// ToModelUser converts a domain User to a model User
func ToModelUser(d domain.User) models.User {
	return models.User{
		UserID:   d.UserID,
		Name:     d.Name,
		Username: d.Username,
		Email:    d.Email,
		Locale:   d.Locale,
		Provider: string(d.Provider),
		AuditFields: models.AuditFields{
			CreatedAt: d.CreatedAt,
			UpdatedAt: d.UpdatedAt,
		},
		PasswordHash: toNullString(d.Secrets.PasswordHash),
		RefreshToken: toNullString(d.Secrets.RefreshToken),
		ResetToken:   toNullString(d.Secrets.ResetToken),
		LastSignedIn: toNullTime(d.Secrets.LastSignedIn),
	}
}

// ToDomainUser converts a model User to a domain User
func ToDomainUser(m models.User) domain.User {
	return domain.User{
		UserID:   m.UserID,
		Name:     m.Name,
		Username: m.Username,
		Email:    m.Email,
		Locale:   m.Locale,
		Provider: domain.AuthProvider(m.Provider),
		AuditFields: domain.AuditFields{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		Secrets: domain.Secrets{
			PasswordHash: fromNullString(m.PasswordHash),
			RefreshToken: fromNullString(m.RefreshToken),
			ResetToken:   fromNullString(m.ResetToken),
			LastSignedIn: fromNullTime(m.LastSignedIn),
		},
	}
}

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func fromNullTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
