// Package tyck checks fixture files end to end: decoding, dependency analysis,
// inference and solving.
package tyck

import (
	"context"
	"fmt"
	"go/token"
	"io/fs"
	"slices"
	"strings"
	"testing/fstest"

	"github.com/cottand/tyck/frontend/analysis"
	"github.com/cottand/tyck/frontend/cst"
	"github.com/cottand/tyck/frontend/fixture"
	"github.com/cottand/tyck/frontend/ilerr"
	"github.com/cottand/tyck/frontend/infer"
	"github.com/cottand/tyck/frontend/types"
	"github.com/cottand/tyck/internal/log"
	"golang.org/x/sync/errgroup"
)

var unitLogger = log.DefaultLogger.With("section", "unit")

// Unit is a single checked file. Units share nothing, so they can be
// checked concurrently.
type Unit struct {
	name    string
	fSet    *token.FileSet
	file    *cst.SourceFile
	errors  *ilerr.Errors
	checker *infer.Checker
}

func (u *Unit) Name() string             { return u.name }
func (u *Unit) FileSet() *token.FileSet  { return u.fSet }
func (u *Unit) File() *cst.SourceFile    { return u.file }
func (u *Unit) Errors() *ilerr.Errors    { return u.errors }
func (u *Unit) Checker() *infer.Checker  { return u.checker }
func (u *Unit) Groups() []analysis.Group { return u.checker.Analyzer().SortedDeclarations() }

// LoadUnit reads the fixture at name in fsys, and checks it. The returned error is
// about reading or decoding the file, or about the checker failing: problems in the
// file itself are in Unit.Errors.
func LoadUnit(fsys fs.FS, name string) (*Unit, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	fSet := token.NewFileSet()
	file, err := fixture.Decode(fSet, name, data)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	u := &Unit{
		name:   name,
		fSet:   fSet,
		file:   file,
		errors: &ilerr.Errors{},
	}
	u.checker = infer.NewChecker(u.errors)
	if err := u.checker.Check(file); err != nil {
		return nil, fmt.Errorf("check %s: %w", name, err)
	}
	unitLogger.Debug("checked unit", "name", name, "errors", u.errors)
	return u, nil
}

// NewUnitFromBytes checks data as a file called name, meant for testing
func NewUnitFromBytes(name string, data []byte) (*Unit, error) {
	filesystem := fstest.MapFS{
		name: &fstest.MapFile{Data: data},
	}
	return LoadUnit(filesystem, name)
}

// CheckAll loads every file in names, at most jobs at a time (no limit if jobs is not
// positive). Units are returned in the order of names.
func CheckAll(ctx context.Context, fsys fs.FS, names []string, jobs int) ([]*Unit, error) {
	units := make([]*Unit, len(names))
	g, ctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			u, err := LoadUnit(fsys, name)
			if err != nil {
				return err
			}
			units[i] = u
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return units, nil
}

// Diagnostics formats the errors of u, in the order they appear in the file.
func (u *Unit) Diagnostics() []string {
	errs := slices.Clone(u.errors.Errors())
	slices.SortStableFunc(errs, func(a, b ilerr.IleError) int {
		return int(a.Pos()) - int(b.Pos())
	})
	lines := make([]string, len(errs))
	for i, err := range errs {
		lines[i] = ilerr.FormatAt(u.fSet, err)
	}
	return lines
}

// Declaration is a let declaration together with its name qualified by the
// modules and functions it is nested in, like M.f or outer.helper.
type Declaration struct {
	Name string
	Decl *cst.LetDeclaration
}

// Declarations lists the declarations of u that are not nested in a function, in
// source order.
func (u *Unit) Declarations() []Declaration {
	var decls []Declaration
	cst.Walk(u.file, func(n cst.Node) bool {
		let, ok := n.(*cst.LetDeclaration)
		if !ok {
			return true
		}
		decls = append(decls, Declaration{Name: DeclName(let), Decl: let})
		return false
	})
	return decls
}

// TypeOf displays the type of decl, or "?" if it has none.
func (u *Unit) TypeOf(decl *cst.LetDeclaration) string {
	t := u.checker.TypeOf(decl)
	if t == nil {
		return "?"
	}
	return types.Display(t)
}

// DeclName is the qualified name of a declaration of the reference graph. A
// source file is named after the file, within angle brackets.
func DeclName(n cst.Node) string {
	var parts []string
	switch n := n.(type) {
	case *cst.SourceFile:
		return "<" + n.Name + ">"
	case *cst.LetDeclaration:
		parts = append(parts, n.Name())
	default:
		return cst.Describe(n)
	}
	for p := range cst.Ancestors(n) {
		switch p := p.(type) {
		case *cst.ModuleDeclaration:
			parts = append(parts, p.Name)
		case *cst.LetDeclaration:
			parts = append(parts, p.Name())
		}
	}
	slices.Reverse(parts)
	return strings.Join(parts, ".")
}
