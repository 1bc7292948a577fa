package problemgen

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/dave/jennifer/jen"
	"github.com/ettle/strcase"
)

const (
	problemImport = "github.com/Sokol111/ecommerce-problem-json/pkg/problem"
	outputFile    = "problems.gen.go"
)

// Generator orchestrates the code generation process.
type Generator struct {
	config *Config
}

// New creates a new Generator with the given configuration.
func New(cfg *Config) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.AbsolutePaths(); err != nil {
		return nil, err
	}
	return &Generator{config: cfg}, nil
}

// Generate reads the catalog and writes problems.gen.go into the output directory.
func (g *Generator) Generate() error {
	g.log("Reading catalog %s", g.config.CatalogFile)
	catalog, err := LoadCatalog(g.config.CatalogFile)
	if err != nil {
		return err
	}
	g.log("Found %d problem types", len(catalog.Problems))

	if err := os.MkdirAll(g.config.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f := Render(catalog, g.packageName(catalog))
	path := filepath.Join(g.config.OutputDir, outputFile)
	if err := f.Save(path); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputFile, err)
	}

	g.log("✓ Created %s", path)
	return nil
}

func (g *Generator) packageName(c *Catalog) string {
	switch {
	case g.config.Package != "":
		return g.config.Package
	case c.Package != "":
		return c.Package
	default:
		return DefaultPackage
	}
}

// Render builds the generated file for a validated catalog.
func Render(c *Catalog, pkg string) *jen.File {
	f := jen.NewFile(pkg)
	f.HeaderComment("Code generated by problemgen. DO NOT EDIT.")
	f.ImportName(problemImport, "problem")

	f.Comment("TypeBaseURI prefixes every problem type of this catalog.")
	f.Const().Id(typeBaseURIConst).Op("=").Lit(c.TypeBaseURI)
	f.Line()

	f.Comment("Problem type URIs.")
	f.Const().DefsFunc(func(group *jen.Group) {
		for _, e := range c.Problems {
			group.Id(typeConstName(e)).Op("=").Lit(TypeURI(c.TypeBaseURI, e))
		}
	})

	for _, e := range c.Problems {
		f.Line()
		renderConstructor(f, e)
	}
	return f
}

func renderConstructor(f *jen.File, e Entry) {
	name := ConstructorName(e)

	f.Commentf("%s builds the %q problem (%d %s).", name, e.Title, e.Status, http.StatusText(e.Status))
	f.Comment("Options are applied after the defaults, so they may override them.")
	f.Func().Id(name).
		Params(
			jen.Id("detail").String(),
			jen.Id("opts").Op("...").Qual(problemImport, "Option"),
		).
		Params(jen.Qual(problemImport, "Problem"), jen.Error()).
		BlockFunc(func(body *jen.Group) {
			if e.Detail != "" {
				body.If(jen.Id("detail").Op("==").Lit("")).Block(
					jen.Id("detail").Op("=").Lit(e.Detail),
				)
			}
			body.Id("defaults").Op(":=").Index().Qual(problemImport, "Option").Values(
				jen.Line().Qual(problemImport, "WithType").Call(jen.Id(typeConstName(e))),
				jen.Line().Qual(problemImport, "WithTitle").Call(jen.Lit(e.Title)),
				jen.Line().Qual(problemImport, "WithStatus").Call(jen.Lit(e.Status)),
				jen.Line().Qual(problemImport, "WithDetail").Call(jen.Id("detail")),
				jen.Line(),
			)
			body.Return(jen.Qual(problemImport, "New").Call(
				jen.Append(jen.Id("defaults"), jen.Id("opts").Op("...")).Op("..."),
			))
		})
}

// ConstructorName returns the Go identifier of the constructor for e,
// e.g. "out-of-credit" -> "OutOfCredit".
func ConstructorName(e Entry) string {
	return strcase.ToPascal(e.Slug)
}

const typeBaseURIConst = "TypeBaseURI"

func typeConstName(e Entry) string {
	return ConstructorName(e) + "Type"
}

// log prints a message if verbose mode is enabled.
func (g *Generator) log(format string, args ...any) {
	if g.config.Verbose {
		fmt.Printf(format+"\n", args...)
	}
}
