package gen

import (
	"path"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/dave/jennifer/jen"
	"github.com/koskimas/sdkgen/internal/names"
	"github.com/koskimas/sdkgen/internal/schema"
)

// codecPkg is the runtime package every generated file imports.
const codecPkg = "github.com/koskimas/sdkgen/codec"

// usage selects the shape a modeled type takes in generated code. A stored
// list property is an owned, never-nil slice; a parameter list is the
// caller's slice that the constructor defensively copies.
type usage int

const (
	usageProperty usage = iota
	usageParameter
)

// generator holds the per-emission-unit state: the shared per-run Namer and
// the namespace being generated.
type generator struct {
	namer *names.Namer
	pkg   string
	ns    *schema.Namespace

	// nsNames holds every namespace name of the run. A local variable with
	// such a name would shadow the package qualifier of cross-namespace
	// references, so argName escapes these too.
	nsNames map[string]bool
}

// reservedLocals are identifiers the generated constructor and codec bodies
// use themselves. Field-derived names that collide get a trailing underscore,
// the same escape Arg applies to keywords.
var reservedLocals = map[string]bool{
	"o": true, "v": true, "err": true, "obj": true, "item": true,
	"tag": true, "base": true,
}

func (g *generator) argName(name string) string {
	a := g.namer.Arg(name)
	if reservedLocals[a] || g.nsNames[a] {
		a += "_"
	}

	return a
}

// typeExpr maps a modeled type to a Go type expression.
func (g *generator) typeExpr(t *schema.Type, u usage) (*jen.Statement, error) {
	var expr *jen.Statement

	switch t.Kind {
	case schema.Bool:
		expr = jen.Bool()
	case schema.Int32:
		expr = jen.Int32()
	case schema.UInt32:
		expr = jen.Uint32()
	case schema.Int64:
		expr = jen.Int64()
	case schema.UInt64:
		expr = jen.Uint64()
	case schema.Float32:
		expr = jen.Float32()
	case schema.Float64:
		expr = jen.Float64()
	case schema.String:
		expr = jen.String()
	case schema.Binary:
		expr = jen.Index().Byte()
	case schema.Timestamp:
		expr = jen.Qual("time", "Time")
	case schema.List:
		elem, err := g.typeExpr(t.Elem, usageProperty)
		if err != nil {
			return nil, err
		}
		expr = jen.Index().Add(elem)
	case schema.Composite:
		return g.compositeRef(t.Ref), nil
	case schema.Void:
		// Void in value position is an explicit unit placeholder.
		expr = jen.Struct()
	default:
		return nil, errors.AssertionFailedf("unknown type kind %d", t.Kind)
	}

	if t.Nullable && nullableNeedsPointer(t.Kind) {
		expr = jen.Op("*").Add(expr)
	}

	return expr, nil
}

// nullableNeedsPointer reports whether a nullable layer adds a pointer.
// Slices, binaries and composite references are already nil-able.
func nullableNeedsPointer(kind schema.Kind) bool {
	switch kind {
	case schema.List, schema.Binary, schema.Composite:
		return false
	}

	return true
}

// paramType is the constructor parameter type for a field. A declared default
// on a scalar, boolean or string field turns the parameter into a pointer so
// that nil selects the default.
func (g *generator) paramType(f *schema.Field) (*jen.Statement, error) {
	expr, err := g.typeExpr(f.Type, usageParameter)
	if err != nil {
		return nil, err
	}

	if f.Default != nil && f.Default.UnionTag == "" && !f.Type.Nullable {
		expr = jen.Op("*").Add(expr)
	}

	return expr, nil
}

// compositeRef maps a composite type reference to the Go type that represents
// it: a pointer for plain structs, the family interface for structs with
// enumerated subtypes, the union interface for unions.
func (g *generator) compositeRef(dt schema.DataType) *jen.Statement {
	public := g.namer.Public(dt.TypeName())

	switch t := dt.(type) {
	case *schema.Struct:
		if t.HasEnumeratedSubtypes() {
			return g.qualified(dt, public+"Kind")
		}
		return jen.Op("*").Add(g.qualified(dt, public))
	case *schema.Union:
		return g.qualified(dt, public)
	}

	return jen.Id(public)
}

// qualified resolves a declaration of the given composite type's namespace,
// package-qualified when the namespace is not the one being generated. Two
// declarations of the same package cannot be told apart by qualification;
// checkDeclaredNames rejects such schemas before any file is emitted.
func (g *generator) qualified(dt schema.DataType, name string) *jen.Statement {
	ns := dt.TypeNamespace()
	if ns != g.ns {
		return jen.Qual(path.Join(g.pkg, ns.Name), name)
	}

	return jen.Id(name)
}

// literalExpr renders a bound or default literal with an explicit conversion
// so that the emitted value is unambiguously typed.
func literalExpr(kind schema.Kind, v any) (*jen.Statement, error) {
	switch kind {
	case schema.Bool:
		return jen.Lit(v.(bool)), nil
	case schema.String:
		return jen.Lit(v.(string)), nil
	case schema.Int32:
		return jen.Int32().Call(numberLit(v)), nil
	case schema.Int64:
		return jen.Int64().Call(numberLit(v)), nil
	case schema.UInt32:
		return jen.Uint32().Call(numberLit(v)), nil
	case schema.UInt64:
		return jen.Uint64().Call(numberLit(v)), nil
	case schema.Float32:
		return jen.Float32().Call(numberLit(v)), nil
	case schema.Float64:
		return jen.Float64().Call(numberLit(v)), nil
	}

	return nil, errors.AssertionFailedf("no literal form for type kind %d", kind)
}

func numberLit(v any) *jen.Statement {
	switch v := v.(type) {
	case int64:
		return jen.Id(strconv.FormatInt(v, 10))
	case uint64:
		return jen.Id(strconv.FormatUint(v, 10))
	case float64:
		return jen.Id(strconv.FormatFloat(v, 'g', -1, 64))
	}

	return jen.Lit(v)
}

// setterName returns the codec.Object setter for a scalar kind.
func setterName(kind schema.Kind) (string, error) {
	switch kind {
	case schema.Bool:
		return "SetBool", nil
	case schema.Int32:
		return "SetInt32", nil
	case schema.UInt32:
		return "SetUInt32", nil
	case schema.Int64:
		return "SetInt64", nil
	case schema.UInt64:
		return "SetUInt64", nil
	case schema.Float32:
		return "SetFloat32", nil
	case schema.Float64:
		return "SetFloat64", nil
	case schema.String:
		return "SetString", nil
	case schema.Binary:
		return "SetBytes", nil
	case schema.Timestamp:
		return "SetTime", nil
	}

	return "", errors.AssertionFailedf("no setter for type kind %d", kind)
}

// getterName returns the codec.Object accessor for a scalar kind.
func getterName(kind schema.Kind) (string, error) {
	switch kind {
	case schema.Bool:
		return "Bool", nil
	case schema.Int32:
		return "Int32", nil
	case schema.UInt32:
		return "UInt32", nil
	case schema.Int64:
		return "Int64", nil
	case schema.UInt64:
		return "UInt64", nil
	case schema.Float32:
		return "Float32", nil
	case schema.Float64:
		return "Float64", nil
	case schema.String:
		return "String", nil
	case schema.Binary:
		return "Bytes", nil
	case schema.Timestamp:
		return "Time", nil
	}

	return "", errors.AssertionFailedf("no accessor for type kind %d", kind)
}

// converterName returns the codec element converter for scalar list elements.
func converterName(kind schema.Kind) (string, error) {
	getter, err := getterName(kind)
	if err != nil {
		return "", err
	}

	return "As" + getter, nil
}
