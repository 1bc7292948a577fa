package token

import (
	"context"
	"errors"
	"testing"

	"github.com/Sokol111/ecommerce-problem-json/pkg/failure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubValidator struct {
	claims *Claims
	err    error
}

func (s stubValidator) ValidateToken(string) (*Claims, error) {
	return s.claims, s.err
}

func TestAuthorize(t *testing.T) {
	access := &Claims{UserID: "user-1", Type: TypeAccess, Permissions: []string{"product:read"}}

	tests := []struct {
		name      string
		validator Validator
		token     string
		required  []string
		wantKind  failure.Kind
		wantErr   error
	}{
		{name: "ok", validator: stubValidator{claims: access}, token: "t", required: []string{"product:read"}},
		{name: "ok without permissions", validator: stubValidator{claims: access}, token: "t"},
		{name: "missing token", validator: stubValidator{claims: access}, wantKind: failure.KindUnauthenticated, wantErr: ErrMissingToken},
		{name: "expired", validator: stubValidator{err: ErrExpiredToken}, token: "t", wantKind: failure.KindUnauthenticated, wantErr: ErrExpiredToken},
		{name: "foreign validator error", validator: stubValidator{err: errors.New("boom")}, token: "t", wantKind: failure.KindUnauthenticated, wantErr: ErrInvalidToken},
		{name: "refresh token", validator: stubValidator{claims: &Claims{Type: TypeRefresh}}, token: "t", wantKind: failure.KindUnauthenticated, wantErr: ErrInvalidToken},
		{name: "insufficient permissions", validator: stubValidator{claims: access}, token: "t", required: []string{"product:write"}, wantKind: failure.KindPermissionDenied, wantErr: ErrInsufficientPermissions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, claims, err := Authorize(context.Background(), tt.validator, tt.token, tt.required)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				var fe *failure.Error
				require.ErrorAs(t, err, &fe)
				assert.Equal(t, tt.wantKind, fe.Kind)
				assert.Nil(t, claims)
				assert.Nil(t, ClaimsFromContext(ctx))
				return
			}
			require.NoError(t, err)
			assert.Same(t, claims, ClaimsFromContext(ctx))
		})
	}
}
