package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain errors surfaced to clients with a stable machine-readable code.

// ErrInvalidCredentials covers both "account not found" and "wrong password"
// so that login failures never reveal whether an identifier exists.
var ErrInvalidCredentials = errors.New("InvalidCredentials")

// ErrUserAlreadyExists indicates a registration conflict on email or username.
var ErrUserAlreadyExists = errors.New("UserAlreadyExists")

// ErrOAuthUser indicates the account was provisioned by an OAuth provider and
// has no local password to verify or change.
var ErrOAuthUser = errors.New("OAuthUser")

// ErrInvalidResetToken indicates the presented reset token matched no account.
var ErrInvalidResetToken = errors.New("InvalidResetToken")

// ErrForbidden indicates a refresh token that failed the stored-value match;
// the client must re-authenticate.
var ErrForbidden = errors.New("Forbidden")

// ErrSomethingWentWrong is the catch-all for unexpected internal failures.
// Details are logged server-side and never exposed to the client.
var ErrSomethingWentWrong = errors.New("SomethingWentWrong")

// Internal errors, never surfaced verbatim.

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrInvalidTokenPayload indicates a signed token was requested without a
// subject. This is a programming-contract violation, not a user error.
var ErrInvalidTokenPayload = errors.New("InvalidTokenPayload")

// ErrTokenVerification indicates a signed token failed signature or expiry
// checks. Kept distinct from ErrForbidden (stored-value mismatch) for
// diagnostics; both deny access.
var ErrTokenVerification = errors.New("token verification failed")

// AppError carries an HTTP status code alongside a client-safe message.
type AppError struct {
	Code    int    `json:"-"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}

func NewBadRequestError(message string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: message}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{Code: http.StatusUnauthorized, Message: message}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{Code: http.StatusForbidden, Message: message}
}

func NewInternalServerError(message string) *AppError {
	return &AppError{Code: http.StatusInternalServerError, Message: message}
}

// ToAppError maps a domain error to the AppError returned to the client.
// Anything outside the known taxonomy collapses into SomethingWentWrong.
func ToAppError(err error) *AppError {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return NewBadRequestError(ErrInvalidCredentials.Error())
	case errors.Is(err, ErrUserAlreadyExists):
		return NewBadRequestError(ErrUserAlreadyExists.Error())
	case errors.Is(err, ErrOAuthUser):
		return NewBadRequestError(ErrOAuthUser.Error())
	case errors.Is(err, ErrInvalidResetToken):
		return NewBadRequestError(ErrInvalidResetToken.Error())
	case errors.Is(err, ErrForbidden):
		return NewForbiddenError(ErrForbidden.Error())
	default:
		return NewInternalServerError(ErrSomethingWentWrong.Error())
	}
}
