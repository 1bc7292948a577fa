// Package main provides the problemgen CLI tool.
//
// Usage:
//
//	problemgen generate --catalog problems.yaml --output ./gen/problems --package problems
//	problemgen canonical problem.json
//
// generate writes typed constructors for every problem type of a YAML
// catalog. canonical prints a problem document in canonical form.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/Sokol111/ecommerce-problem-json/internal/problemgen"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "problemgen",
		Short:         "Generate and canonicalize RFC 7807 problem documents",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newGenerateCmd(), newCanonicalCmd())

	return rootCmd
}

func newGenerateCmd() *cobra.Command {
	cfg := &problemgen.Config{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate Go constructors from a problem catalog",
		Long: `Generate Go constructors from a problem catalog.

This command reads a YAML catalog of problem types and writes problems.gen.go
with a type URI constant and a constructor per entry.

Example:
  problemgen generate --catalog problems.yaml --output ./gen/problems --package problems`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gen, err := problemgen.New(cfg)
			if err != nil {
				return fmt.Errorf("failed to create generator: %w", err)
			}
			if err := gen.Generate(); err != nil {
				return fmt.Errorf("generation failed: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&cfg.CatalogFile, "catalog", "c", "", "YAML problem catalog (required)")
	cmd.Flags().StringVarP(&cfg.OutputDir, "output", "o", "", "Output directory for generated code (required)")
	cmd.Flags().StringVarP(&cfg.Package, "package", "n", "", "Go package name, overrides the catalog")
	cmd.Flags().BoolVarP(&cfg.Verbose, "verbose", "v", false, "Enable verbose output")

	_ = cmd.MarkFlagRequired("catalog")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func newCanonicalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "canonical [file]",
		Short: "Print a problem document in canonical form",
		Long: `Print a problem document in canonical form.

The document is read from file, or from stdin when no file is given.
Members are written in the order type, title, status, detail, instance,
followed by extensions sorted by key.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close() //nolint:errcheck
				in = f
			}
			return canonical(in, cmd.OutOrStdout())
		},
	}
}

func canonical(in io.Reader, out io.Writer) error {
	data, err := problemgen.Canonicalize(in)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}
