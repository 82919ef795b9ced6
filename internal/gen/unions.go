package gen

import (
	"fmt"

	"github.com/dave/jennifer/jen"
	"github.com/koskimas/sdkgen/internal/schema"
)

// genUnion emits a tagged union: the union interface, one wrapper type per
// variant and the package-level encode/decode dispatchers. Void variants are
// shared singletons; value-carrying variants wrap their value in a Value
// property. Variant values are only decodable through the dispatcher, which
// alone interprets the tag.
func (g *generator) genUnion(file *jen.File, u *schema.Union) error {
	public := g.namer.Public(u.Name)

	doc := u.Doc
	if doc == "" {
		doc = fmt.Sprintf("the %s union.", g.namer.Words(u.Name))
	}
	file.Comment(fmt.Sprintf("%s : %s", public, doc))
	file.Type().Id(public).Interface(
		jen.Id("is"+public).Params(),
		jen.Id("Encode").Params(jen.Id("o").Op("*").Qual(codecPkg, "Object")).Error(),
	)

	for _, v := range u.Fields {
		if err := g.genUnionVariant(file, u, v); err != nil {
			return fmt.Errorf(`variant "%s": %w`, v.Name, err)
		}
	}

	g.emitUnionEncode(file, u)
	return g.emitUnionDecode(file, u)
}

func (g *generator) genUnionVariant(file *jen.File, u *schema.Union, v *schema.UnionField) error {
	public := g.namer.Public(u.Name)
	wrapper := public + g.namer.Public(v.Name)

	doc := v.Doc
	if doc == "" {
		doc = fmt.Sprintf("the %s variant of the %s union.", g.namer.Words(v.Name), g.namer.Words(u.Name))
	}
	file.Comment(fmt.Sprintf("%s : %s", wrapper, doc))

	if v.Type.IsVoid() {
		file.Type().Id(wrapper).Struct()
	} else {
		expr, err := g.typeExpr(v.Type, usageProperty)
		if err != nil {
			return err
		}
		file.Type().Id(wrapper).Struct(jen.Id("Value").Add(expr))
	}

	file.Func().Params(jen.Op("*").Id(wrapper)).Id("is" + public).Params().Block()

	if err := g.emitVariantConstructor(file, u, v); err != nil {
		return err
	}
	if err := g.emitVariantEncode(file, u, v); err != nil {
		return err
	}

	g.emitVariantIsAs(file, u, v)
	return nil
}

func (g *generator) emitVariantConstructor(file *jen.File, u *schema.Union, v *schema.UnionField) error {
	public := g.namer.Public(u.Name)
	wrapper := public + g.namer.Public(v.Name)
	ctor := "New" + wrapper

	if v.Type.IsVoid() {
		instance := g.namer.Arg(u.Name) + g.namer.Public(v.Name) + "Instance"
		file.Var().Id(instance).Op("=").Op("&").Id(wrapper).Values()

		file.Comment(fmt.Sprintf("%s returns the shared %s value.", ctor, g.namer.Words(v.Name)))
		file.Func().Id(ctor).Params().Op("*").Id(wrapper).Block(
			jen.Return(jen.Id(instance)),
		)
		return nil
	}

	param, err := g.typeExpr(v.Type, usageParameter)
	if err != nil {
		return err
	}

	switch {
	case v.Type.IsComposite() && !v.Type.Nullable:
		file.Comment(fmt.Sprintf("%s wraps value as the %s variant.", ctor, g.namer.Words(v.Name)))
		file.Func().Id(ctor).Params(jen.Id("value").Add(param)).
			Params(jen.Op("*").Id(wrapper), jen.Error()).Block(
			jen.If(jen.Id("value").Op("==").Nil()).Block(
				jen.Return(jen.Nil(), jen.Qual(codecPkg, "NilArgument").Call(jen.Lit(v.Name))),
			),
			jen.Return(jen.Op("&").Id(wrapper).Values(jen.Dict{jen.Id("Value"): jen.Id("value")}), jen.Nil()),
		)

	case v.Type.IsList():
		elem, err := g.typeExpr(v.Type.Elem, usageProperty)
		if err != nil {
			return err
		}

		file.Comment(fmt.Sprintf("%s wraps a copy of value as the %s variant.", ctor, g.namer.Words(v.Name)))
		file.Func().Id(ctor).Params(jen.Id("value").Add(param)).Op("*").Id(wrapper).Block(
			jen.Return(jen.Op("&").Id(wrapper).Values(jen.Dict{
				jen.Id("Value"): jen.Append(
					jen.Make(jen.Index().Add(elem), jen.Lit(0), jen.Len(jen.Id("value"))),
					jen.Id("value").Op("..."),
				),
			})),
		)

	default:
		file.Comment(fmt.Sprintf("%s wraps value as the %s variant.", ctor, g.namer.Words(v.Name)))
		file.Func().Id(ctor).Params(jen.Id("value").Add(param)).Op("*").Id(wrapper).Block(
			jen.Return(jen.Op("&").Id(wrapper).Values(jen.Dict{jen.Id("Value"): jen.Id("value")})),
		)
	}

	return nil
}

// emitVariantEncode writes the member encoder: the tag entry first, then the
// wrapped value keyed by the variant's raw name.
func (g *generator) emitVariantEncode(file *jen.File, u *schema.Union, v *schema.UnionField) error {
	public := g.namer.Public(u.Name)
	wrapper := public + g.namer.Public(v.Name)

	body := []jen.Code{
		jen.Id("o").Dot("SetString").Call(jen.Qual(codecPkg, "TagField"), jen.Lit(v.Name)),
	}

	if !v.Type.IsVoid() {
		stmts, err := g.encodeVariantValue(v)
		if err != nil {
			return err
		}
		body = append(body, stmts...)
	}

	body = append(body, jen.Return(jen.Nil()))

	file.Func().Params(jen.Id("v").Op("*").Id(wrapper)).Id("Encode").
		Params(jen.Id("o").Op("*").Qual(codecPkg, "Object")).Error().
		Block(body...)

	return nil
}

func (g *generator) encodeVariantValue(v *schema.UnionField) ([]jen.Code, error) {
	t := v.Type
	value := jen.Id("v").Dot("Value")

	switch {
	case t.IsList():
		if !t.Elem.IsComposite() {
			return []jen.Code{
				jen.Qual(codecPkg, "SetList").Call(jen.Id("o"), jen.Lit(v.Name), value),
			}, nil
		}

		return []jen.Code{
			jen.Id("objs").Op(":=").Make(
				jen.Index().Op("*").Qual(codecPkg, "Object"), jen.Lit(0), jen.Len(value.Clone())),
			jen.For(jen.List(jen.Id("_"), jen.Id("item")).Op(":=").Range().Add(value.Clone())).Block(
				jen.Id("obj").Op(":=").Qual(codecPkg, "NewObject").Call(),
				jen.If(
					jen.Err().Op(":=").Add(g.compositeEncodeCall(t.Elem.Ref, jen.Id("obj"), jen.Id("item"))),
					jen.Err().Op("!=").Nil(),
				).Block(jen.Return(jen.Err())),
				jen.Id("objs").Op("=").Append(jen.Id("objs"), jen.Id("obj")),
			),
			jen.Id("o").Dot("SetObjectList").Call(jen.Lit(v.Name), jen.Id("objs")),
		}, nil

	case t.IsComposite():
		inner := []jen.Code{
			jen.Id("obj").Op(":=").Qual(codecPkg, "NewObject").Call(),
			jen.If(
				jen.Err().Op(":=").Add(g.compositeEncodeCall(t.Ref, jen.Id("obj"), value.Clone())),
				jen.Err().Op("!=").Nil(),
			).Block(jen.Return(jen.Err())),
			jen.Id("o").Dot("SetObject").Call(jen.Lit(v.Name), jen.Id("obj")),
		}

		if t.Nullable {
			return []jen.Code{jen.If(value.Clone().Op("!=").Nil()).Block(inner...)}, nil
		}
		return inner, nil

	default:
		setter, err := setterName(t.Kind)
		if err != nil {
			return nil, err
		}

		if t.Nullable && nullableNeedsPointer(t.Kind) {
			return []jen.Code{
				jen.If(value.Clone().Op("!=").Nil()).Block(
					jen.Id("o").Dot(setter).Call(jen.Lit(v.Name), jen.Op("*").Add(value.Clone())),
				),
			}, nil
		}
		if t.Nullable {
			return []jen.Code{
				jen.If(value.Clone().Op("!=").Nil()).Block(
					jen.Id("o").Dot(setter).Call(jen.Lit(v.Name), value.Clone()),
				),
			}, nil
		}
		return []jen.Code{
			jen.Id("o").Dot(setter).Call(jen.Lit(v.Name), value.Clone()),
		}, nil
	}
}

func (g *generator) emitVariantIsAs(file *jen.File, u *schema.Union, v *schema.UnionField) {
	public := g.namer.Public(u.Name)
	wrapper := public + g.namer.Public(v.Name)

	file.Comment(fmt.Sprintf("Is%s reports whether v is the %s variant.", wrapper, g.namer.Words(v.Name)))
	file.Func().Id("Is"+wrapper).Params(jen.Id("v").Id(public)).Bool().Block(
		jen.List(jen.Id("_"), jen.Id("ok")).Op(":=").Id("v").Assert(jen.Op("*").Id(wrapper)),
		jen.Return(jen.Id("ok")),
	)

	file.Comment(fmt.Sprintf("As%s returns v as the %s variant when it is one.", wrapper, g.namer.Words(v.Name)))
	file.Func().Id("As"+wrapper).Params(jen.Id("v").Id(public)).
		Params(jen.Op("*").Id(wrapper), jen.Bool()).Block(
		jen.List(jen.Id("m"), jen.Id("ok")).Op(":=").Id("v").Assert(jen.Op("*").Id(wrapper)),
		jen.Return(jen.Id("m"), jen.Id("ok")),
	)
}

func (g *generator) emitUnionEncode(file *jen.File, u *schema.Union) {
	public := g.namer.Public(u.Name)

	var cases []jen.Code
	for _, v := range u.Fields {
		wrapper := public + g.namer.Public(v.Name)
		cases = append(cases, jen.Case(jen.Op("*").Id(wrapper)).Block(
			jen.Return(jen.Id("v").Dot("Encode").Call(jen.Id("o"))),
		))
	}
	cases = append(cases, jen.Default().Block(
		jen.Return(jen.Qual(codecPkg, "InvalidState").Call(
			jen.Lit(fmt.Sprintf("value of type %%T is not a variant of the %s union", g.namer.Words(u.Name))),
			jen.Id("v"),
		)),
	))

	file.Comment(fmt.Sprintf("Encode%s writes a variant of the %s union into o, tag first.",
		public, g.namer.Words(u.Name)))
	file.Func().Id("Encode"+public).
		Params(jen.Id("o").Op("*").Qual(codecPkg, "Object"), jen.Id("v").Id(public)).Error().
		Block(
			jen.Switch(jen.Id("v").Op(":=").Id("v").Assert(jen.Type())).Block(cases...),
		)
}

func (g *generator) emitUnionDecode(file *jen.File, u *schema.Union) error {
	public := g.namer.Public(u.Name)

	var cases []jen.Code
	for _, v := range u.Fields {
		if v.CatchAll {
			// Reached through the default branch.
			continue
		}

		stmts, err := g.decodeVariantCode(u, v)
		if err != nil {
			return err
		}
		cases = append(cases, jen.Case(jen.Lit(v.Name)).Block(stmts...))
	}

	if catchAll := u.CatchAll(); catchAll != nil {
		ctor := "New" + public + g.namer.Public(catchAll.Name)
		cases = append(cases, jen.Default().Block(
			jen.Return(jen.Id(ctor).Call(), jen.Nil()),
		))
	} else {
		cases = append(cases, jen.Default().Block(
			jen.Return(jen.Nil(), jen.Qual(codecPkg, "InvalidState").Call(
				jen.Lit(fmt.Sprintf("unrecognized tag %%q of the %s union", g.namer.Words(u.Name))),
				jen.Id("tag"),
			)),
		))
	}

	file.Comment(fmt.Sprintf("Decode%s reads a variant of the %s union from o, dispatching on its tag.",
		public, g.namer.Words(u.Name)))
	file.Func().Id("Decode"+public).
		Params(jen.Id("o").Op("*").Qual(codecPkg, "Object")).
		Params(jen.Id(public), jen.Error()).
		Block(
			jen.List(jen.Id("tag"), jen.Err()).Op(":=").Id("o").Dot("Tag").Call(),
			jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
			jen.Line(),
			jen.Switch(jen.Id("tag")).Block(cases...),
		)

	return nil
}

// decodeVariantCode emits one tag case of the union decoder. Nullable and
// list values are read only when present, leaving the wrapper's zero or
// empty state otherwise.
func (g *generator) decodeVariantCode(u *schema.Union, v *schema.UnionField) ([]jen.Code, error) {
	t := v.Type
	public := g.namer.Public(u.Name)
	wrapper := public + g.namer.Public(v.Name)

	if t.IsVoid() {
		return []jen.Code{
			jen.Return(jen.Id("New"+wrapper).Call(), jen.Nil()),
		}, nil
	}

	read, result, err := g.readVariantValue(v)
	if err != nil {
		return nil, err
	}

	if t.Nullable || t.IsList() {
		var init jen.Code = jen.Op("&").Id(wrapper).Values()
		if t.IsList() {
			elem, err := g.typeExpr(t.Elem, usageProperty)
			if err != nil {
				return nil, err
			}
			init = jen.Op("&").Id(wrapper).Values(jen.Dict{
				jen.Id("Value"): jen.Index().Add(elem).Values(),
			})
		}

		inner := append([]jen.Code{}, read...)
		inner = append(inner, jen.Id("m").Dot("Value").Op("=").Add(result))

		return []jen.Code{
			jen.Id("m").Op(":=").Add(init),
			jen.If(jen.Id("o").Dot("Has").Call(jen.Lit(v.Name))).Block(inner...),
			jen.Return(jen.Id("m"), jen.Nil()),
		}, nil
	}

	stmts := append([]jen.Code{}, read...)
	stmts = append(stmts,
		jen.Return(jen.Op("&").Id(wrapper).Values(jen.Dict{jen.Id("Value"): result}), jen.Nil()))
	return stmts, nil
}

// readVariantValue emits the statements reading a variant's value into the
// local "value", returning the expression to store.
func (g *generator) readVariantValue(v *schema.UnionField) ([]jen.Code, *jen.Statement, error) {
	t := v.Type
	errCheck := jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err()))

	switch {
	case t.IsList():
		if !t.Elem.IsComposite() {
			conv, err := converterName(t.Elem.Kind)
			if err != nil {
				return nil, nil, err
			}
			return []jen.Code{
				jen.List(jen.Id("value"), jen.Err()).Op(":=").Qual(codecPkg, "ListOf").Call(
					jen.Id("o"), jen.Lit(v.Name), jen.Qual(codecPkg, conv)),
				errCheck,
			}, jen.Id("value"), nil
		}

		elem, err := g.typeExpr(t.Elem, usageProperty)
		if err != nil {
			return nil, nil, err
		}

		return []jen.Code{
			jen.List(jen.Id("objs"), jen.Err()).Op(":=").Id("o").Dot("ObjectList").Call(jen.Lit(v.Name)),
			errCheck,
			jen.Id("value").Op(":=").Make(jen.Index().Add(elem), jen.Lit(0), jen.Len(jen.Id("objs"))),
			jen.For(jen.List(jen.Id("_"), jen.Id("obj")).Op(":=").Range().Id("objs")).Block(
				jen.List(jen.Id("item"), jen.Err()).Op(":=").Add(g.compositeDecodeCall(t.Elem.Ref, jen.Id("obj"))),
				jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
				jen.Id("value").Op("=").Append(jen.Id("value"), jen.Id("item")),
			),
		}, jen.Id("value"), nil

	case t.IsComposite():
		return []jen.Code{
			jen.List(jen.Id("obj"), jen.Err()).Op(":=").Id("o").Dot("Object").Call(jen.Lit(v.Name)),
			errCheck,
			jen.List(jen.Id("value"), jen.Err()).Op(":=").Add(g.compositeDecodeCall(t.Ref, jen.Id("obj"))),
			errCheck.Clone(),
		}, jen.Id("value"), nil

	default:
		getter, err := getterName(t.Kind)
		if err != nil {
			return nil, nil, err
		}

		result := jen.Id("value")
		if t.Nullable && nullableNeedsPointer(t.Kind) {
			result = jen.Op("&").Id("value")
		}

		return []jen.Code{
			jen.List(jen.Id("value"), jen.Err()).Op(":=").Id("o").Dot(getter).Call(jen.Lit(v.Name)),
			errCheck,
		}, result, nil
	}
}
