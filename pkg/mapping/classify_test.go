package mapping

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"testing"

	"github.com/Sokol111/ecommerce-problem-json/pkg/failure"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/go-playground/validator/v10"
	"github.com/ogen-go/ogen/ogenerrors"
	"github.com/ogen-go/ogen/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Email    string `validate:"required,email"`
	Nickname string `validate:"min=3"`
	Address  struct {
		PostCode string `validate:"required"`
	}
}

func nilDereference() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err, _ = r.(runtime.Error)
		}
	}()
	var s *signup
	return fmt.Errorf("%s", s.Email)
}

func TestClassify(t *testing.T) {
	var syntaxErr error = json.Unmarshal([]byte("{"), &struct{}{})

	tests := []struct {
		name string
		err  error
		want failure.Kind
	}{
		{name: "nil", err: nil, want: failure.KindUnknown},
		{name: "plain", err: errors.New("boom"), want: failure.KindUnknown},
		{name: "failure error", err: failure.Conflict("taken"), want: failure.KindConflict},
		{name: "wrapped failure error", err: fmt.Errorf("save: %w", failure.NotFound("gone")), want: failure.KindNotFound},
		{name: "panic", err: &failure.PanicError{Value: "boom"}, want: failure.KindInternal},
		{name: "runtime error", err: nilDereference(), want: failure.KindInternal},
		{name: "ogen security", err: &ogenerrors.SecurityError{Security: "BearerAuth", Err: errors.New("no token")}, want: failure.KindUnauthenticated},
		{name: "ogen params", err: &ogenerrors.DecodeParamsError{Err: errors.New("bad id")}, want: failure.KindBadRequest},
		{name: "ogen request", err: &ogenerrors.DecodeRequestError{Err: errors.New("bad body")}, want: failure.KindBadRequest},
		{name: "max bytes", err: &http.MaxBytesError{Limit: 1}, want: failure.KindPayloadTooLarge},
		{name: "json syntax", err: syntaxErr, want: failure.KindBadRequest},
		{name: "deadline", err: fmt.Errorf("query: %w", context.DeadlineExceeded), want: failure.KindTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err).Kind)
		})
	}
}

func TestClassify_ValidatorErrors(t *testing.T) {
	err := validator.New().Struct(signup{Email: "not-an-email", Nickname: "ab"})
	require.Error(t, err)

	c := Classify(err)

	assert.Equal(t, failure.KindValidation, c.Kind)
	assert.Equal(t, []failure.Violation{
		{Field: "email", Message: "must be a valid email address"},
		{Field: "nickname", Message: "must be at least 3"},
		{Field: "address.postCode", Message: "is required"},
	}, c.Violations)
	assert.Equal(t, "email: must be a valid email address; nickname: must be at least 3; address.postCode: is required", c.Detail)
}

func TestClassify_OgenValidateError(t *testing.T) {
	err := &validate.Error{Fields: []validate.FieldError{
		{Name: "title", Error: errors.New("string: len 0 less than minimum 1")},
		{Name: "pages"},
	}}

	c := Classify(err)

	assert.Equal(t, failure.KindValidation, c.Kind)
	assert.Equal(t, []failure.Violation{
		{Field: "title", Message: "string: len 0 less than minimum 1"},
		{Field: "pages", Message: "is invalid"},
	}, c.Violations)
}

func TestClassify_OpenAPIErrors(t *testing.T) {
	idParam := &openapi3.Parameter{Name: "id", In: "path"}
	schemaErr := &openapi3.SchemaError{SchemaField: "minimum", Reason: "number must be at least 1"}

	tests := []struct {
		name           string
		err            error
		wantKind       failure.Kind
		wantViolations []failure.Violation
		wantPath       string
	}{
		{
			name:           "invalid parameter",
			err:            &openapi3filter.RequestError{Parameter: idParam, Reason: "doesn't match schema", Err: schemaErr},
			wantKind:       failure.KindValidation,
			wantViolations: []failure.Violation{{Field: "id", Message: "number must be at least 1"}},
			wantPath:       "id",
		},
		{
			name:           "invalid body",
			err:            &openapi3filter.RequestError{RequestBody: &openapi3.RequestBody{}, Reason: "doesn't match schema", Err: errors.New("value is required")},
			wantKind:       failure.KindValidation,
			wantViolations: []failure.Violation{{Field: "body", Message: "value is required"}},
			wantPath:       "body",
		},
		{
			name:     "unparsable body",
			err:      &openapi3filter.RequestError{RequestBody: &openapi3.RequestBody{}, Reason: "failed to decode request body", Err: &openapi3filter.ParseError{Kind: openapi3filter.KindInvalidFormat, Cause: errors.New("unexpected EOF")}},
			wantKind: failure.KindBadRequest,
		},
		{
			name:     "security requirements",
			err:      &openapi3filter.SecurityRequirementsError{Errors: []error{errors.New("missing bearer token")}},
			wantKind: failure.KindUnauthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classify(fmt.Errorf("validate request: %w", tt.err))

			assert.Equal(t, tt.wantKind, c.Kind)
			assert.Equal(t, tt.wantViolations, c.Violations)
			assert.Equal(t, tt.wantPath, c.Path)
		})
	}
}

func TestClassify_PanicKeepsStack(t *testing.T) {
	c := Classify(&failure.PanicError{Value: "boom", Stack: []byte("trace")})

	assert.Equal(t, []byte("trace"), c.Stack)
	assert.Equal(t, "panic: boom", c.Detail)
}

func TestFieldPath(t *testing.T) {
	tests := map[string]string{
		"signup.Email":            "email",
		"signup.Address.PostCode": "address.postCode",
		"Email":                   "email",
	}
	for in, want := range tests {
		assert.Equal(t, want, fieldPath(in), in)
	}
}
