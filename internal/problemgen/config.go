// Package problemgen generates typed problem constructors from a YAML catalog.
//
// A catalog lists the problem types a service emits:
//
//	package: problems
//	type-base-uri: https://errors.example.com/
//	problems:
//	  - slug: out-of-credit
//	    title: You do not have enough credit.
//	    status: 403
//
// For every entry the generated problems.gen.go holds a type URI constant
// and a constructor returning a problem.Problem.
package problemgen

import (
	"fmt"
	"path/filepath"
)

// DefaultPackage is used when neither the flag nor the catalog names a package.
const DefaultPackage = "problems"

// Config holds the configuration for the problem generator.
type Config struct {
	// CatalogFile is the YAML catalog to read. Required.
	CatalogFile string
	// OutputDir is the directory where problems.gen.go is written. Required.
	OutputDir string
	// Package overrides the package named in the catalog.
	Package string
	// Verbose enables detailed logging during generation.
	Verbose bool
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.CatalogFile == "" {
		return fmt.Errorf("catalog file is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output directory is required")
	}
	return nil
}

// AbsolutePaths converts relative paths to absolute paths.
func (c *Config) AbsolutePaths() error {
	var err error
	if c.CatalogFile, err = filepath.Abs(c.CatalogFile); err != nil {
		return fmt.Errorf("failed to resolve catalog file: %w", err)
	}
	if c.OutputDir, err = filepath.Abs(c.OutputDir); err != nil {
		return fmt.Errorf("failed to resolve output directory: %w", err)
	}
	return nil
}
