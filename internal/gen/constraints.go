package gen

import (
	"github.com/cockroachdb/errors"
	"github.com/dave/jennifer/jen"
	"github.com/koskimas/sdkgen/internal/schema"
)

// emitFieldValidation writes the construction-time handling for one field:
// default substitution, nil rejection, the defensive list copy and the
// declared constraint checks, in that order. The emitted checks return
// codec.NilArgument / codec.OutOfRange errors naming the field.
func (g *generator) emitFieldValidation(grp *jen.Group, owner *schema.Struct, f *schema.Field) error {
	if f.Default != nil && f.Type.RefStruct() != nil {
		// The loader rejects struct-typed defaults; reaching one here is a
		// generator bug.
		return errors.AssertionFailedf("field %q: a struct-typed field may not declare a default", f.Name)
	}

	arg := g.argName(f.Name)
	t := f.Type

	if f.Default != nil {
		if u := t.RefUnion(); u != nil {
			// A nil argument selects the union's singleton for the declared
			// default tag.
			grp.If(jen.Id(arg).Op("==").Nil()).Block(
				jen.Id(arg).Op("=").Add(g.unionSingleton(u, f.Default.UnionTag)),
			)
		} else {
			lit, err := literalExpr(t.Kind, f.Default.Literal)
			if err != nil {
				return errors.Wrapf(err, "field %q", f.Name)
			}

			grp.If(jen.Id(arg).Op("==").Nil()).Block(
				jen.Id("v").Op(":=").Add(lit),
				jen.Id(arg).Op("=").Op("&").Id("v"),
			)
		}
	} else if t.IsComposite() && !t.Nullable {
		grp.If(jen.Id(arg).Op("==").Nil()).Block(
			jen.Return(jen.Nil(), jen.Qual(codecPkg, "NilArgument").Call(jen.Lit(f.Name))),
		)
	}

	if t.IsList() {
		// The defensive copy, never the caller's slice, becomes the stored
		// value. A nil input turns into an empty sequence.
		elem, err := g.typeExpr(t.Elem, usageProperty)
		if err != nil {
			return err
		}

		grp.Id(arg).Op("=").Append(
			jen.Make(jen.Index().Add(elem), jen.Lit(0), jen.Len(jen.Id(arg))),
			jen.Id(arg).Op("..."),
		)
	}

	checks, err := g.constraintChecks(owner, f)
	if err != nil {
		return err
	}
	if len(checks) > 0 {
		cond := orJoin(checks)
		if t.Nullable && nullableNeedsPointer(t.Kind) {
			cond = jen.Id(arg).Op("!=").Nil().Op("&&").Parens(cond)
		}

		grp.If(cond).Block(
			jen.Return(jen.Nil(), jen.Qual(codecPkg, "OutOfRange").Call(jen.Lit(f.Name))),
		)
	}

	if t.IsList() {
		elemChecks, err := g.scalarChecks(t.Elem, g.patternVar(owner, f), func() *jen.Statement {
			return jen.Id("item")
		})
		if err != nil {
			return err
		}

		if len(elemChecks) > 0 {
			grp.For(jen.List(jen.Id("_"), jen.Id("item")).Op(":=").Range().Id(arg)).Block(
				jen.If(orJoin(elemChecks)).Block(
					jen.Return(jen.Nil(), jen.Qual(codecPkg, "OutOfRange").Call(jen.Lit(f.Name))),
				),
			)
		}
	}

	return nil
}

func orJoin(checks []*jen.Statement) *jen.Statement {
	cond := checks[0]
	for _, c := range checks[1:] {
		cond = cond.Op("||").Add(c)
	}

	return cond
}

// constraintChecks returns the violation conditions for a field's own value,
// to be or-joined into a single check. Element-level constraints of a list
// field are handled separately with a per-element loop.
func (g *generator) constraintChecks(owner *schema.Struct, f *schema.Field) ([]*jen.Statement, error) {
	arg := g.argName(f.Name)
	t := f.Type

	if t.IsList() {
		// Counted against the defensive copy.
		var checks []*jen.Statement
		if t.MinItems != nil {
			checks = append(checks, jen.Len(jen.Id(arg)).Op("<").Lit(*t.MinItems))
		}
		if t.MaxItems != nil {
			checks = append(checks, jen.Len(jen.Id(arg)).Op(">").Lit(*t.MaxItems))
		}
		return checks, nil
	}

	value := func() *jen.Statement {
		if g.paramIsPointer(f) {
			return jen.Op("*").Id(arg)
		}
		return jen.Id(arg)
	}

	return g.scalarChecks(t, g.patternVar(owner, f), value)
}

// scalarChecks returns the violation conditions for one scalar value, the
// expression for which is produced fresh by value on every use.
func (g *generator) scalarChecks(t *schema.Type, patternName string, value func() *jen.Statement) ([]*jen.Statement, error) {
	var checks []*jen.Statement

	switch {
	case t.IsNumeric():
		if t.Min != nil {
			lit, err := literalExpr(t.Kind, t.Min)
			if err != nil {
				return nil, err
			}
			checks = append(checks, value().Op("<").Add(lit))
		}
		if t.Max != nil {
			lit, err := literalExpr(t.Kind, t.Max)
			if err != nil {
				return nil, err
			}
			checks = append(checks, value().Op(">").Add(lit))
		}
	case t.Kind == schema.String:
		if t.MinLength != nil {
			checks = append(checks, jen.Len(value()).Op("<").Lit(*t.MinLength))
		}
		if t.MaxLength != nil {
			checks = append(checks, jen.Len(value()).Op(">").Lit(*t.MaxLength))
		}
		if t.Pattern != "" {
			checks = append(checks, jen.Op("!").Id(patternName).Dot("MatchString").Call(value()))
		}
	}

	return checks, nil
}

// paramIsPointer reports whether the constructor parameter for f is a pointer
// that checks must dereference.
func (g *generator) paramIsPointer(f *schema.Field) bool {
	if f.Default != nil && f.Default.UnionTag == "" {
		return true
	}

	return f.Type.Nullable && nullableNeedsPointer(f.Type.Kind)
}

// patternVar names the package-level compiled pattern for a string field. The
// owning struct prefixes the name since structs within a namespace may declare
// equally named fields with different patterns.
func (g *generator) patternVar(owner *schema.Struct, f *schema.Field) string {
	return g.namer.Arg(owner.Name) + g.namer.Public(f.Name) + "Pattern"
}

// emitPatternVars declares the compiled regular expressions the constructor
// checks against. A pattern on a list field constrains its string elements.
func (g *generator) emitPatternVars(f *jen.File, s *schema.Struct) {
	for _, field := range s.Fields {
		t := field.Type
		if t.IsList() {
			t = t.Elem
		}
		if t.Kind == schema.String && t.Pattern != "" {
			f.Var().Id(g.patternVar(s, field)).Op("=").Qual("regexp", "MustCompile").Call(jen.Lit(t.Pattern))
		}
	}
}

// storedValueExpr is the expression assigned to the stored property from the
// constructor argument.
func (g *generator) storedValueExpr(f *schema.Field) *jen.Statement {
	arg := g.argName(f.Name)
	if f.Default != nil && f.Default.UnionTag == "" {
		return jen.Op("*").Id(arg)
	}

	return jen.Id(arg)
}

// emptyValueExpr is the preset a zero-argument constructor applies: the
// declared default, or an empty sequence for list fields. The second return
// is false when the field's zero state needs no explicit preset.
func (g *generator) emptyValueExpr(f *schema.Field) (*jen.Statement, bool, error) {
	t := f.Type

	if f.Default != nil {
		if u := t.RefUnion(); u != nil {
			return g.unionSingleton(u, f.Default.UnionTag), true, nil
		}

		lit, err := literalExpr(t.Kind, f.Default.Literal)
		if err != nil {
			return nil, false, errors.Wrapf(err, "field %q", f.Name)
		}
		return lit, true, nil
	}

	if t.IsList() {
		elem, err := g.typeExpr(t.Elem, usageProperty)
		if err != nil {
			return nil, false, err
		}
		return jen.Index().Add(elem).Values(), true, nil
	}

	return nil, false, nil
}

// unionSingleton is a call to the constructor of a void variant's shared
// singleton, e.g. NewVisibilityPublic().
func (g *generator) unionSingleton(u *schema.Union, tag string) *jen.Statement {
	ctor := "New" + g.namer.Public(u.Name) + g.namer.Public(tag)
	return g.qualified(u, ctor).Call()
}
