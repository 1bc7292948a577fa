package mapping

import (
	"fmt"
	"net/http"
	"regexp"

	"github.com/Sokol111/ecommerce-problem-json/pkg/failure"
	"github.com/Sokol111/ecommerce-problem-json/pkg/problem"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Rule describes the problem produced for one error category.
type Rule struct {
	Status int
	Title  string
	// Slug is appended to the configured type base URI.
	Slug string
	// ExposeDetail allows the error message to be sent as the problem detail.
	ExposeDetail bool
}

func (r Rule) validate() error {
	if !problem.ValidStatus(r.Status) {
		return fmt.Errorf("status %d is outside %d-%d", r.Status, problem.MinStatus, problem.MaxStatus)
	}
	if r.Title == "" {
		return fmt.Errorf("title is required")
	}
	if !slugPattern.MatchString(r.Slug) {
		return fmt.Errorf("slug %q must be kebab-case", r.Slug)
	}
	return nil
}

// Table maps every known kind to its rule. It is never modified after the
// factory is built.
type Table map[failure.Kind]Rule

// DefaultTable returns the built-in mapping.
func DefaultTable() Table {
	return Table{
		failure.KindValidation:       {Status: http.StatusBadRequest, Title: "Validation Failure", Slug: "validation-failure", ExposeDetail: true},
		failure.KindBadRequest:       statusRule(http.StatusBadRequest, "bad-request", true),
		failure.KindUnauthenticated:  statusRule(http.StatusUnauthorized, "unauthenticated", true),
		failure.KindPermissionDenied: statusRule(http.StatusForbidden, "permission-denied", true),
		failure.KindNotFound:         statusRule(http.StatusNotFound, "not-found", true),
		failure.KindMethodNotAllowed: statusRule(http.StatusMethodNotAllowed, "method-not-allowed", true),
		failure.KindConflict:         statusRule(http.StatusConflict, "conflict", true),
		failure.KindPayloadTooLarge:  statusRule(http.StatusRequestEntityTooLarge, "payload-too-large", true),
		failure.KindTooManyRequests:  statusRule(http.StatusTooManyRequests, "too-many-requests", true),
		failure.KindInternal:         statusRule(http.StatusInternalServerError, "internal", false),
		failure.KindUnavailable:      statusRule(http.StatusServiceUnavailable, "unavailable", true),
		failure.KindTimeout:          statusRule(http.StatusGatewayTimeout, "timeout", true),
	}
}

func statusRule(status int, slug string, expose bool) Rule {
	return Rule{Status: status, Title: http.StatusText(status), Slug: slug, ExposeDetail: expose}
}

// buildTable applies configured overrides on top of the default table.
func buildTable(overrides map[string]RuleConfig) (Table, error) {
	table := DefaultTable()
	for name, override := range overrides {
		kind, ok := failure.ParseKind(name)
		if !ok || kind == failure.KindUnknown {
			return nil, fmt.Errorf("unknown mapping %q", name)
		}
		rule := table[kind]
		if override.Status != 0 {
			rule.Status = override.Status
			if override.Title == "" {
				rule.Title = http.StatusText(override.Status)
			}
		}
		if override.Title != "" {
			rule.Title = override.Title
		}
		if override.Slug != "" {
			rule.Slug = override.Slug
		}
		if override.ExposeDetail != nil {
			rule.ExposeDetail = *override.ExposeDetail
		}
		if err := rule.validate(); err != nil {
			return nil, fmt.Errorf("mapping %q: %w", name, err)
		}
		table[kind] = rule
	}
	return table, nil
}
