package problem

import (
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"unicode"
)

const (
	// ContentType is the media type of a problem document.
	ContentType = "application/problem+json"

	// DefaultType is used when a problem has no explicit type.
	DefaultType = "about:blank"

	// MinStatus and MaxStatus bound the HTTP status codes a problem may carry.
	MinStatus = 100
	MaxStatus = 599
)

// Standard problem members. Extension keys must not use these names.
const (
	FieldType     = "type"
	FieldTitle    = "title"
	FieldStatus   = "status"
	FieldDetail   = "detail"
	FieldInstance = "instance"
)

var reservedFields = []string{FieldType, FieldTitle, FieldStatus, FieldDetail, FieldInstance}

// Problem is an RFC 7807 problem document.
// The zero value is a valid untitled about:blank problem without status.
type Problem struct {
	typ        string
	title      string
	status     int
	detail     string
	instance   string
	extensions map[string]any
}

// Option configures a Problem built by New.
type Option func(*Problem) error

// WithType sets the problem type URI reference.
func WithType(uri string) Option {
	return func(p *Problem) error {
		if err := validateURIReference(FieldType, uri); err != nil {
			return err
		}
		p.typ = uri
		return nil
	}
}

// WithTitle sets the short human-readable summary.
func WithTitle(title string) Option {
	return func(p *Problem) error {
		p.title = title
		return nil
	}
}

// WithStatus sets the HTTP status code. Codes outside 100-599 are rejected.
func WithStatus(status int) Option {
	return func(p *Problem) error {
		if !ValidStatus(status) {
			return fmt.Errorf("%w: status %d is outside %d-%d", ErrInvalidArgument, status, MinStatus, MaxStatus)
		}
		p.status = status
		return nil
	}
}

// WithDetail sets the occurrence-specific explanation.
func WithDetail(detail string) Option {
	return func(p *Problem) error {
		p.detail = detail
		return nil
	}
}

// WithInstance sets the URI reference of this occurrence.
func WithInstance(uri string) Option {
	return func(p *Problem) error {
		if err := validateURIReference(FieldInstance, uri); err != nil {
			return err
		}
		p.instance = uri
		return nil
	}
}

// WithExtension adds a single extension member.
func WithExtension(key string, value any) Option {
	return func(p *Problem) error {
		if err := validateExtensionKey(key); err != nil {
			return err
		}
		if p.extensions == nil {
			p.extensions = make(map[string]any, 1)
		}
		p.extensions[key] = value
		return nil
	}
}

// WithExtensions adds every member of ext. The map is copied.
func WithExtensions(ext map[string]any) Option {
	return func(p *Problem) error {
		for _, key := range slices.Sorted(maps.Keys(ext)) {
			if err := WithExtension(key, ext[key])(p); err != nil {
				return err
			}
		}
		return nil
	}
}

// New builds a Problem. The type defaults to about:blank.
func New(opts ...Option) (Problem, error) {
	p := Problem{typ: DefaultType}
	for _, opt := range opts {
		if err := opt(&p); err != nil {
			return Problem{}, err
		}
	}
	return p, nil
}

// MustNew is like New but panics on invalid input.
// It is intended for package-level problem definitions.
func MustNew(opts ...Option) Problem {
	p, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return p
}

// ForStatus builds an about:blank problem titled after the status code.
func ForStatus(status int, detail string) (Problem, error) {
	return New(
		WithStatus(status),
		WithTitle(http.StatusText(status)),
		WithDetail(detail),
	)
}

// ValidStatus reports whether status may be carried by a problem.
func ValidStatus(status int) bool {
	return status >= MinStatus && status <= MaxStatus
}

// IsReserved reports whether key is one of the standard problem members.
func IsReserved(key string) bool {
	return slices.Contains(reservedFields, key)
}

// Type returns the problem type URI reference.
func (p Problem) Type() string {
	if p.typ == "" {
		return DefaultType
	}
	return p.typ
}

func (p Problem) Title() string    { return p.title }
func (p Problem) Detail() string   { return p.detail }
func (p Problem) Instance() string { return p.instance }

// Status returns the HTTP status code, or 0 when absent.
func (p Problem) Status() int { return p.status }

// StatusOrDefault returns the status code, falling back to 500.
func (p Problem) StatusOrDefault() int {
	if p.status == 0 {
		return http.StatusInternalServerError
	}
	return p.status
}

// Extension returns a single extension member.
func (p Problem) Extension(key string) (any, bool) {
	v, ok := p.extensions[key]
	return v, ok
}

// Extensions returns a copy of all extension members.
func (p Problem) Extensions() map[string]any {
	return maps.Clone(p.extensions)
}

// ExtensionKeys returns the extension keys in encoding order.
func (p Problem) ExtensionKeys() []string {
	return slices.Sorted(maps.Keys(p.extensions))
}

// WithExtension returns a copy of p with the extension member set.
func (p Problem) WithExtension(key string, value any) (Problem, error) {
	if err := validateExtensionKey(key); err != nil {
		return Problem{}, err
	}
	clone := p
	clone.extensions = maps.Clone(p.extensions)
	if clone.extensions == nil {
		clone.extensions = make(map[string]any, 1)
	}
	clone.extensions[key] = value
	return clone, nil
}

// WithDetail returns a copy of p with a different detail.
func (p Problem) WithDetail(detail string) Problem {
	clone := p
	clone.extensions = maps.Clone(p.extensions)
	clone.detail = detail
	return clone
}

// WithInstance returns a copy of p with a different instance.
func (p Problem) WithInstance(uri string) (Problem, error) {
	if err := validateURIReference(FieldInstance, uri); err != nil {
		return Problem{}, err
	}
	clone := p
	clone.extensions = maps.Clone(p.extensions)
	clone.instance = uri
	return clone, nil
}

// Equal reports whether both problems have the same members.
// Extension values are compared by their canonical JSON encoding.
func (p Problem) Equal(o Problem) bool {
	if p.Type() != o.Type() || p.title != o.title || p.status != o.status ||
		p.detail != o.detail || p.instance != o.instance {
		return false
	}
	if len(p.extensions) != len(o.extensions) {
		return false
	}
	for k, v := range p.extensions {
		ov, ok := o.extensions[k]
		if !ok {
			return false
		}
		a, errA := encodeValue(v)
		b, errB := encodeValue(ov)
		if errA != nil || errB != nil || string(a) != string(b) {
			return false
		}
	}
	return true
}

// Error implements error so a Problem can travel through error returns.
func (p Problem) Error() string {
	var sb strings.Builder
	if p.status != 0 {
		sb.WriteString(strconv.Itoa(p.status))
	}
	if p.title != "" {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(p.title)
	}
	if sb.Len() == 0 {
		sb.WriteString(p.Type())
	}
	if p.detail != "" {
		sb.WriteString(": ")
		sb.WriteString(p.detail)
	}
	return sb.String()
}

func validateExtensionKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: extension key must not be empty", ErrInvalidArgument)
	}
	if IsReserved(key) {
		return fmt.Errorf("%w: %q is a standard problem member", ErrReservedKeyConflict, key)
	}
	return nil
}

// validateURIReference accepts the empty reference, which leaves the member
// absent.
func validateURIReference(field, uri string) error {
	for _, r := range uri {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return fmt.Errorf("%w: %s %q contains whitespace or control characters", ErrInvalidArgument, field, uri)
		}
	}
	if _, err := url.Parse(uri); err != nil {
		return fmt.Errorf("%w: %s %q is not a URI reference: %v", ErrInvalidArgument, field, uri, err)
	}
	return nil
}
