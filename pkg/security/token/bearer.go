package token

import (
	"context"
	"errors"
	"fmt"
)

// Authorize validates tokenString and checks that the caller holds at least one
// of requiredPermissions. On success the claims are stored in the returned
// context.
//
// Errors are categorized for the problem mapper: token problems become 401
// and missing permissions 403. The sentinel errors of this package stay in the
// chain for errors.Is.
//
// Usage in an ogen security handler:
//
//	func (s *securityHandler) HandleBearerAuth(ctx context.Context, _ api.OperationName, t api.BearerAuth) (context.Context, error) {
//	    ctx, _, err := token.Authorize(ctx, s.validator, t.Token, t.Roles)
//	    return ctx, err
//	}
func Authorize(ctx context.Context, validator Validator, tokenString string, requiredPermissions []string) (context.Context, *Claims, error) {
	if tokenString == "" {
		return ctx, nil, unauthenticated(ErrMissingToken)
	}

	claims, err := validator.ValidateToken(tokenString)
	if err != nil {
		if !errors.Is(err, ErrExpiredToken) && !errors.Is(err, ErrInvalidToken) {
			err = fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
		return ctx, nil, unauthenticated(err)
	}

	if !claims.IsAccess() {
		return ctx, nil, unauthenticated(ErrInvalidToken)
	}

	if !claims.HasAnyPermission(requiredPermissions) {
		return ctx, nil, permissionDenied(ErrInsufficientPermissions)
	}

	return ContextWithClaims(ctx, claims), claims, nil
}
