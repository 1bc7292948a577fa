package token

import (
	"errors"

	"github.com/Sokol111/ecommerce-problem-json/pkg/failure"
)

var (
	// ErrMissingToken is returned when a request carries no bearer token.
	ErrMissingToken = errors.New("missing bearer token")
	// ErrInvalidToken is returned when the token cannot be parsed or verified.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when the token has expired.
	ErrExpiredToken = errors.New("token expired")
	// ErrInvalidPublicKey is returned when the public key is invalid.
	ErrInvalidPublicKey = errors.New("invalid public key")
	// ErrInsufficientPermissions is returned when the caller lacks every required permission.
	ErrInsufficientPermissions = errors.New("insufficient permissions")
)

// unauthenticated marks err as a 401 problem category.
func unauthenticated(err error) error {
	return failure.Wrap(failure.KindUnauthenticated, err, "bearer authentication failed")
}

func permissionDenied(err error) error {
	return failure.Wrap(failure.KindPermissionDenied, err, "access denied")
}
