package mapping

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"runtime"
	"strings"

	"github.com/Sokol111/ecommerce-problem-json/pkg/failure"
	"github.com/ettle/strcase"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/go-playground/validator/v10"
	"github.com/ogen-go/ogen/ogenerrors"
	"github.com/ogen-go/ogen/validate"
)

// Classification is the result of matching an error against the known categories.
type Classification struct {
	Kind       failure.Kind
	Detail     string
	Violations []failure.Violation
	// Path locates the offending input: a parameter name or a body field.
	Path  string
	Stack []byte
}

// Classify matches err against the closed set of recognized error shapes.
// Errors that match nothing are reported as failure.KindUnknown.
func Classify(err error) Classification {
	if err == nil {
		return Classification{Kind: failure.KindUnknown}
	}

	var (
		panicErr       *failure.PanicError
		appErr         *failure.Error
		fieldErrs      validator.ValidationErrors
		ogenValidate   *validate.Error
		securityErr    *ogenerrors.SecurityError
		paramsErr      *ogenerrors.DecodeParamsError
		requestErr     *ogenerrors.DecodeRequestError
		maxBytesErr    *http.MaxBytesError
		oasSecurityErr *openapi3filter.SecurityRequirementsError
		oasRequestErr  *openapi3filter.RequestError
		syntaxErr      *json.SyntaxError
		unmarshalErr   *json.UnmarshalTypeError
		runtimeErr     runtime.Error
	)

	switch {
	case errors.As(err, &panicErr):
		return Classification{Kind: failure.KindInternal, Detail: panicErr.Error(), Stack: panicErr.Stack}
	case errors.As(err, &appErr):
		return Classification{Kind: appErr.Kind, Detail: appErr.Error(), Violations: appErr.Violations, Path: singlePath(appErr.Violations)}
	case errors.As(err, &fieldErrs):
		return validation(fromValidator(fieldErrs))
	case errors.As(err, &ogenValidate):
		return validation(fromOgen(ogenValidate))
	case errors.As(err, &securityErr):
		return Classification{Kind: failure.KindUnauthenticated, Detail: securityErr.Error()}
	case errors.As(err, &paramsErr):
		c := Classification{Kind: failure.KindBadRequest, Detail: paramsErr.Error()}
		var paramErr *ogenerrors.DecodeParamError
		if errors.As(err, &paramErr) {
			c.Path = paramErr.Name
		}
		return c
	case errors.As(err, &requestErr):
		return Classification{Kind: failure.KindBadRequest, Detail: requestErr.Error()}
	case errors.As(err, &maxBytesErr):
		return Classification{Kind: failure.KindPayloadTooLarge, Detail: maxBytesErr.Error()}
	case errors.As(err, &oasSecurityErr):
		return Classification{Kind: failure.KindUnauthenticated, Detail: oasSecurityErr.Error()}
	case errors.As(err, &oasRequestErr):
		return fromOpenAPI(oasRequestErr)
	case errors.As(err, &unmarshalErr):
		return Classification{Kind: failure.KindBadRequest, Detail: "malformed request body: " + err.Error(), Path: unmarshalErr.Field}
	case errors.As(err, &syntaxErr):
		return Classification{Kind: failure.KindBadRequest, Detail: "malformed request body: " + err.Error()}
	case errors.Is(err, context.DeadlineExceeded):
		return Classification{Kind: failure.KindTimeout, Detail: "request took too long to process"}
	case errors.As(err, &runtimeErr):
		return Classification{Kind: failure.KindInternal, Detail: runtimeErr.Error()}
	default:
		return Classification{Kind: failure.KindUnknown, Detail: err.Error()}
	}
}

func validation(violations []failure.Violation) Classification {
	return Classification{
		Kind:       failure.KindValidation,
		Detail:     failure.Violations(violations...).Message,
		Violations: violations,
		Path:       singlePath(violations),
	}
}

// singlePath returns the field of the only violation, if there is exactly one.
func singlePath(violations []failure.Violation) string {
	if len(violations) != 1 {
		return ""
	}
	return violations[0].Field
}

// fromOpenAPI classifies a request that does not match its OpenAPI operation.
// A body that cannot be parsed at all is a bad request, anything else is a
// validation failure.
func fromOpenAPI(err *openapi3filter.RequestError) Classification {
	var parseErr *openapi3filter.ParseError
	if errors.As(err, &parseErr) {
		c := Classification{Kind: failure.KindBadRequest, Detail: err.Error()}
		if err.Parameter != nil {
			c.Path = err.Parameter.Name
		}
		return c
	}

	if err.Parameter != nil {
		return validation([]failure.Violation{{Field: err.Parameter.Name, Message: openAPIReason(err.Reason, err.Err)}})
	}

	var causes []error
	if multi, ok := err.Err.(openapi3.MultiError); ok {
		causes = multi
	} else if err.Err != nil {
		causes = []error{err.Err}
	}

	violations := make([]failure.Violation, 0, len(causes))
	for _, cause := range causes {
		var schemaErr *openapi3.SchemaError
		if errors.As(cause, &schemaErr) {
			field := strings.Join(schemaErr.JSONPointer(), ".")
			if field == "" {
				field = bodyField
			}
			violations = append(violations, failure.Violation{Field: field, Message: schemaErr.Reason})
			continue
		}
		violations = append(violations, failure.Violation{Field: bodyField, Message: cause.Error()})
	}
	if len(violations) == 0 {
		violations = append(violations, failure.Violation{Field: bodyField, Message: openAPIReason(err.Reason, nil)})
	}
	return validation(violations)
}

// bodyField names the request body as a whole in violations.
const bodyField = "body"

func openAPIReason(reason string, cause error) string {
	var schemaErr *openapi3.SchemaError
	switch {
	case errors.As(cause, &schemaErr) && schemaErr.Reason != "":
		return schemaErr.Reason
	case reason != "":
		return reason
	case cause != nil:
		return cause.Error()
	default:
		return "is invalid"
	}
}

func fromValidator(errs validator.ValidationErrors) []failure.Violation {
	violations := make([]failure.Violation, 0, len(errs))
	for _, fe := range errs {
		violations = append(violations, failure.Violation{
			Field:   fieldPath(fe.Namespace()),
			Message: constraintMessage(fe),
		})
	}
	return violations
}

func fromOgen(err *validate.Error) []failure.Violation {
	violations := make([]failure.Violation, 0, len(err.Fields))
	for _, f := range err.Fields {
		msg := "is invalid"
		if f.Error != nil {
			msg = f.Error.Error()
		}
		violations = append(violations, failure.Violation{Field: f.Name, Message: msg})
	}
	return violations
}

// fieldPath turns a validator namespace such as "Book.Author.LastName" into
// "author.lastName", dropping the root struct name.
func fieldPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		parts[i] = strcase.ToCamel(p)
	}
	return strings.Join(parts, ".")
}

func constraintMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "url":
		return "must be a valid URL"
	case "uuid":
		return "must be a valid UUID"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "is invalid"
	}
}
