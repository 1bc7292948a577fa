package problemgen

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/Sokol111/ecommerce-problem-json/pkg/problem"
	"gopkg.in/yaml.v3"
)

var (
	slugPattern    = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*$`)
	packagePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
)

// Catalog is the set of problem types a service emits.
type Catalog struct {
	Package     string  `yaml:"package"`
	TypeBaseURI string  `yaml:"type-base-uri"`
	Problems    []Entry `yaml:"problems"`
}

// Entry describes one problem type.
type Entry struct {
	Slug   string `yaml:"slug"`
	Title  string `yaml:"title"`
	Status int    `yaml:"status"`
	// Detail is used when the constructor is called with an empty detail.
	Detail string `yaml:"detail"`
}

// LoadCatalog reads and validates the catalog at path.
func LoadCatalog(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close() //nolint:errcheck

	return ParseCatalog(f)
}

// ParseCatalog decodes and validates a catalog. Unknown keys are rejected.
func ParseCatalog(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var c Catalog
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("catalog is empty")
		}
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks every entry and reports all problems found at once.
func (c *Catalog) Validate() error {
	var errs []error

	if c.Package != "" && !packagePattern.MatchString(c.Package) {
		errs = append(errs, fmt.Errorf("package %q is not a valid Go package name", c.Package))
	}
	if u, err := url.Parse(c.TypeBaseURI); err != nil || !u.IsAbs() {
		errs = append(errs, fmt.Errorf("type-base-uri %q must be an absolute URI", c.TypeBaseURI))
	}
	if len(c.Problems) == 0 {
		errs = append(errs, fmt.Errorf("catalog has no problems"))
	}

	seen := make(map[string]bool, len(c.Problems))
	// generated identifiers and what declares them
	idents := map[string]string{typeBaseURIConst: "the type base URI constant"}
	for i, e := range c.Problems {
		switch {
		case !slugPattern.MatchString(e.Slug):
			errs = append(errs, fmt.Errorf("problems[%d]: slug %q must be kebab-case starting with a letter", i, e.Slug))
		case seen[e.Slug]:
			errs = append(errs, fmt.Errorf("problems[%d]: duplicate slug %q", i, e.Slug))
		default:
			for _, name := range []string{ConstructorName(e), typeConstName(e)} {
				if owner, taken := idents[name]; taken {
					errs = append(errs, fmt.Errorf("problems[%d]: slug %q generates %s, already declared by %s", i, e.Slug, name, owner))
					continue
				}
				idents[name] = fmt.Sprintf("slug %q", e.Slug)
			}
		}
		seen[e.Slug] = true

		if strings.TrimSpace(e.Title) == "" {
			errs = append(errs, fmt.Errorf("problems[%d]: title is required", i))
		}
		if !problem.ValidStatus(e.Status) {
			errs = append(errs, fmt.Errorf("problems[%d]: status %d is outside %d-%d", i, e.Status, problem.MinStatus, problem.MaxStatus))
		}
	}

	return errors.Join(errs...)
}

// TypeURI returns the type URI of e under base.
func TypeURI(base string, e Entry) string {
	if strings.HasSuffix(base, "/") || strings.HasSuffix(base, ":") || strings.HasSuffix(base, "#") {
		return base + e.Slug
	}
	return base + "/" + e.Slug
}
