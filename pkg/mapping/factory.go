// Package mapping converts Go errors into problem documents.
//
// Errors are first classified into one of the categories of package failure.
// The category selects a Rule from the mapping table, which decides status,
// title, type and whether the error message may be shown. Errors that match no
// category fall back to a caller-supplied default status.
package mapping

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Sokol111/ecommerce-problem-json/pkg/failure"
	"github.com/Sokol111/ecommerce-problem-json/pkg/problem"
)

const (
	// ExtensionViolations lists failed constraints of a validation problem.
	ExtensionViolations = "violations"
	// ExtensionStackTrace carries stack frames when stack traces are enabled.
	ExtensionStackTrace = "stackTrace"
	// ExtensionPath locates the offending input of a client error.
	ExtensionPath = "path"
)

// Factory builds problems from errors. It is safe for concurrent use.
type Factory struct {
	cfg   Config
	table Table
}

// NewFactory creates a factory from cfg. Defaults are applied to cfg first.
func NewFactory(cfg Config) (*Factory, error) {
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	table, err := buildTable(cfg.Mappings)
	if err != nil {
		return nil, err
	}
	return &Factory{cfg: cfg, table: table}, nil
}

// DefaultStatus returns the configured status for unrecognized errors.
func (f *Factory) DefaultStatus() int {
	return f.cfg.DefaultStatus
}

// Rule returns the rule used for kind.
func (f *Factory) Rule(kind failure.Kind) (Rule, bool) {
	r, ok := f.table[kind]
	return r, ok
}

// FromError converts err into a problem. A problem.Problem found in the error
// chain is returned unchanged. Unrecognized errors get defaultStatus, or the
// configured default when defaultStatus is not a valid HTTP status.
func (f *Factory) FromError(err error, defaultStatus int) problem.Problem {
	p, buildErr := f.Build(err, defaultStatus)
	if buildErr != nil {
		return problem.MustNew(
			problem.WithTitle(http.StatusText(http.StatusInternalServerError)),
			problem.WithStatus(http.StatusInternalServerError),
		)
	}
	return p
}

// Build is like FromError but reports why a problem could not be built.
func (f *Factory) Build(err error, defaultStatus int) (problem.Problem, error) {
	if p, ok := asProblem(err); ok {
		return p, nil
	}

	c := Classify(err)
	rule, known := f.table[c.Kind]

	var opts []problem.Option
	if known {
		opts = append(opts,
			problem.WithStatus(rule.Status),
			problem.WithTitle(rule.Title),
		)
		if f.cfg.TypeBaseURI != "" {
			opts = append(opts, problem.WithType(joinTypeURI(f.cfg.TypeBaseURI, rule.Slug)))
		}
		if c.Detail != "" && (rule.ExposeDetail || f.cfg.IncludeStackTrace) {
			opts = append(opts, problem.WithDetail(c.Detail))
		}
	} else {
		status := defaultStatus
		if !problem.ValidStatus(status) {
			status = f.cfg.DefaultStatus
		}
		opts = append(opts,
			problem.WithStatus(status),
			problem.WithTitle(http.StatusText(status)),
		)
		if c.Detail != "" && f.cfg.IncludeStackTrace {
			opts = append(opts, problem.WithDetail(c.Detail))
		}
	}

	if len(c.Violations) > 0 {
		opts = append(opts, problem.WithExtension(ExtensionViolations, c.Violations))
	}
	if c.Path != "" {
		opts = append(opts, problem.WithExtension(ExtensionPath, c.Path))
	}
	if f.cfg.IncludeStackTrace && len(c.Stack) > 0 {
		opts = append(opts, problem.WithExtension(ExtensionStackTrace, stackLines(c.Stack)))
	}

	p, buildErr := problem.New(opts...)
	if buildErr != nil {
		return problem.Problem{}, fmt.Errorf("%w: %v", problem.ErrMappingFailure, buildErr)
	}
	return p, nil
}

func asProblem(err error) (problem.Problem, bool) {
	var p problem.Problem
	if errors.As(err, &p) {
		return p, true
	}
	var pp *problem.Problem
	if errors.As(err, &pp) && pp != nil {
		return *pp, true
	}
	return problem.Problem{}, false
}

func joinTypeURI(base, slug string) string {
	if strings.HasSuffix(base, "/") || strings.HasSuffix(base, ":") || strings.HasSuffix(base, "#") {
		return base + slug
	}
	return base + "/" + slug
}

func stackLines(stack []byte) []string {
	lines := strings.Split(strings.TrimSpace(string(stack)), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return lines
}
