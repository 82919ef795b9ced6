package gen

import (
	"fmt"

	"github.com/dave/jennifer/jen"
	"github.com/koskimas/sdkgen/internal/schema"
)

// genStruct emits everything one struct contributes to its namespace package:
// the type declaration, the validating and the zero-argument constructors, the
// codec methods and, for the root of a tagged family, the family interface and
// its encode/decode dispatchers.
func (g *generator) genStruct(file *jen.File, s *schema.Struct) error {
	if err := g.emitStructType(file, s); err != nil {
		return err
	}

	if s.HasEnumeratedSubtypes() {
		g.emitKindInterface(file, s)
	}

	g.emitPatternVars(file, s)

	if err := g.emitConstructor(file, s); err != nil {
		return err
	}
	if len(s.AllFields()) > 0 {
		if err := g.emitEmptyConstructor(file, s); err != nil {
			return err
		}
	}

	// The root of a closed family is never encoded as a value of its own: it
	// gets no Encode method and so never satisfies the family interface.
	if !s.HasEnumeratedSubtypes() || s.CatchAll {
		if err := g.emitEncodeMethod(file, s); err != nil {
			return err
		}
	}

	if isFamilyMember(s) {
		g.emitIsAsHelpers(file, s)
	}

	if s.HasEnumeratedSubtypes() {
		if err := g.emitFamilyEncode(file, s); err != nil {
			return err
		}
		return g.emitFamilyDecode(file, s)
	}

	return g.emitDecodeFunc(file, s)
}

// isFamilyMember reports whether s is an enumerated subtype of a tagged
// family.
func isFamilyMember(s *schema.Struct) bool {
	return s.Parent != nil && s.Parent.HasEnumeratedSubtypes()
}

func (g *generator) emitStructType(file *jen.File, s *schema.Struct) error {
	public := g.namer.Public(s.Name)

	doc := s.Doc
	if doc == "" {
		doc = fmt.Sprintf("the %s object.", g.namer.Words(s.Name))
	}
	file.Comment(fmt.Sprintf("%s : %s", public, doc))

	var fields []jen.Code

	if s.Parent != nil {
		parent := g.namer.Public(s.Parent.Name)
		if s.Parent.Namespace != g.ns {
			fields = append(fields, g.qualified(s.Parent, parent))
		} else {
			fields = append(fields, jen.Id(parent))
		}
	}

	for _, f := range s.Fields {
		expr, err := g.typeExpr(f.Type, usageProperty)
		if err != nil {
			return fmt.Errorf(`field "%s": %w`, f.Name, err)
		}

		if f.Doc != "" {
			fields = append(fields, jen.Comment(fmt.Sprintf("%s : %s", g.namer.Public(f.Name), f.Doc)))
		}
		fields = append(fields, jen.Id(g.namer.Public(f.Name)).Add(expr))
	}

	file.Type().Id(public).Struct(fields...)
	return nil
}

// emitKindInterface declares the family interface and the root's marker
// method. Subtypes embed the root and inherit the marker, so the interface is
// only satisfiable by family members even across namespaces.
func (g *generator) emitKindInterface(file *jen.File, s *schema.Struct) {
	public := g.namer.Public(s.Name)
	marker := "is" + public

	file.Comment(fmt.Sprintf("%sKind is implemented by the members of the %s family.",
		public, g.namer.Words(s.Name)))
	file.Type().Id(public + "Kind").Interface(
		jen.Id(marker).Params(),
		jen.Id("Encode").Params(jen.Id("o").Op("*").Qual(codecPkg, "Object")).Error(),
	)

	file.Func().Params(jen.Op("*").Id(public)).Id(marker).Params().Block()
}

func (g *generator) emitConstructor(file *jen.File, s *schema.Struct) error {
	public := g.namer.Public(s.Name)

	params := make([]jen.Code, 0, len(s.AllFields()))
	for _, f := range s.AllFields() {
		pt, err := g.paramType(f)
		if err != nil {
			return fmt.Errorf(`field "%s": %w`, f.Name, err)
		}
		params = append(params, jen.Id(g.argName(f.Name)).Add(pt))
	}

	dict := jen.Dict{}
	if s.Parent != nil {
		dict[jen.Id(g.namer.Public(s.Parent.Name))] = jen.Op("*").Id("base")
	}
	for _, f := range s.Fields {
		dict[jen.Id(g.namer.Public(f.Name))] = g.storedValueExpr(f)
	}

	var genErr error

	file.Comment(fmt.Sprintf("New%s constructs a %s, applying declared defaults and validating constraints.",
		public, public))
	file.Func().Id("New"+public).Params(params...).
		Params(jen.Op("*").Id(public), jen.Error()).
		BlockFunc(func(grp *jen.Group) {
			if s.Parent != nil {
				parentArgs := make([]jen.Code, 0, len(s.Parent.AllFields()))
				for _, f := range s.Parent.AllFields() {
					parentArgs = append(parentArgs, jen.Id(g.argName(f.Name)))
				}

				parentCtor := g.qualified(s.Parent, "New"+g.namer.Public(s.Parent.Name))
				grp.List(jen.Id("base"), jen.Err()).Op(":=").Add(parentCtor).Call(parentArgs...)
				grp.If(jen.Err().Op("!=").Nil()).Block(
					jen.Return(jen.Nil(), jen.Err()),
				)
			}

			for _, f := range s.Fields {
				if err := g.emitFieldValidation(grp, s, f); err != nil {
					genErr = err
					return
				}
			}

			grp.Return(jen.Op("&").Id(public).Values(dict), jen.Nil())
		})

	return genErr
}

func (g *generator) emitEmptyConstructor(file *jen.File, s *schema.Struct) error {
	public := g.namer.Public(s.Name)

	var body []jen.Code
	body = append(body, jen.Id("v").Op(":=").Op("&").Id(public).Values())

	for _, f := range s.AllFields() {
		preset, ok, err := g.emptyValueExpr(f)
		if err != nil {
			return err
		}
		if ok {
			body = append(body, jen.Id("v").Dot(g.namer.Public(f.Name)).Op("=").Add(preset))
		}
	}

	body = append(body, jen.Return(jen.Id("v")))

	file.Comment(fmt.Sprintf("NewEmpty%s constructs a %s with declared defaults applied and the remaining fields zero valued.",
		public, public))
	file.Func().Id("NewEmpty"+public).Params().Op("*").Id(public).Block(body...)

	return nil
}

// emitEncodeMethod writes the member encoder. A family member writes its
// discriminant into the reserved tag entry before any field, keeping the tag
// first on the wire; the designated catch-all carries no fixed tag and writes
// none.
func (g *generator) emitEncodeMethod(file *jen.File, s *schema.Struct) error {
	public := g.namer.Public(s.Name)

	var body []jen.Code

	if isFamilyMember(s) {
		tag, err := familyTag(s)
		if err != nil {
			return err
		}
		if tag != "" {
			body = append(body, jen.Id("o").Dot("SetString").Call(
				jen.Qual(codecPkg, "TagField"), jen.Lit(tag)))
		}
	}

	for _, f := range s.AllFields() {
		stmts, err := g.encodeFieldCode(f)
		if err != nil {
			return fmt.Errorf(`field "%s": %w`, f.Name, err)
		}
		body = append(body, stmts...)
	}

	body = append(body, jen.Return(jen.Nil()))

	file.Comment(fmt.Sprintf("Encode writes the %s into o.", public))
	file.Func().Params(jen.Id("v").Op("*").Id(public)).Id("Encode").
		Params(jen.Id("o").Op("*").Qual(codecPkg, "Object")).Error().
		Block(body...)

	return nil
}

// encodeFieldCode emits the statements writing one field. Absent nullable
// values and empty lists are left off the wire.
func (g *generator) encodeFieldCode(f *schema.Field) ([]jen.Code, error) {
	t := f.Type
	prop := jen.Id("v").Dot(g.namer.Public(f.Name))

	var stmts []jen.Code

	switch {
	case t.IsList():
		inner, err := g.encodeListCode(f)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, jen.If(jen.Len(prop.Clone()).Op(">").Lit(0)).Block(inner...))
		return stmts, nil

	case t.IsComposite():
		objVar := g.argName(f.Name) + "Obj"
		inner := []jen.Code{
			jen.Id(objVar).Op(":=").Qual(codecPkg, "NewObject").Call(),
			jen.If(
				jen.Err().Op(":=").Add(g.compositeEncodeCall(t.Ref, jen.Id(objVar), prop.Clone())),
				jen.Err().Op("!=").Nil(),
			).Block(jen.Return(jen.Err())),
			jen.Id("o").Dot("SetObject").Call(jen.Lit(f.Name), jen.Id(objVar)),
		}

		if t.Nullable {
			stmts = append(stmts, jen.If(prop.Clone().Op("!=").Nil()).Block(inner...))
		} else {
			stmts = append(stmts, inner...)
		}
		return stmts, nil

	default:
		setter, err := setterName(t.Kind)
		if err != nil {
			return nil, err
		}

		if t.Nullable && nullableNeedsPointer(t.Kind) {
			stmts = append(stmts, jen.If(prop.Clone().Op("!=").Nil()).Block(
				jen.Id("o").Dot(setter).Call(jen.Lit(f.Name), jen.Op("*").Add(prop.Clone())),
			))
		} else if t.Nullable {
			// Binary: already nil-able without a pointer.
			stmts = append(stmts, jen.If(prop.Clone().Op("!=").Nil()).Block(
				jen.Id("o").Dot(setter).Call(jen.Lit(f.Name), prop.Clone()),
			))
		} else {
			stmts = append(stmts, jen.Id("o").Dot(setter).Call(jen.Lit(f.Name), prop.Clone()))
		}
		return stmts, nil
	}
}

func (g *generator) encodeListCode(f *schema.Field) ([]jen.Code, error) {
	t := f.Type
	prop := jen.Id("v").Dot(g.namer.Public(f.Name))

	if !t.Elem.IsComposite() {
		return []jen.Code{
			jen.Qual(codecPkg, "SetList").Call(jen.Id("o"), jen.Lit(f.Name), prop),
		}, nil
	}

	objsVar := g.argName(f.Name) + "Objs"
	return []jen.Code{
		jen.Id(objsVar).Op(":=").Make(
			jen.Index().Op("*").Qual(codecPkg, "Object"), jen.Lit(0), jen.Len(prop.Clone())),
		jen.For(jen.List(jen.Id("_"), jen.Id("item")).Op(":=").Range().Add(prop.Clone())).Block(
			jen.Id("obj").Op(":=").Qual(codecPkg, "NewObject").Call(),
			jen.If(
				jen.Err().Op(":=").Add(g.compositeEncodeCall(t.Elem.Ref, jen.Id("obj"), jen.Id("item"))),
				jen.Err().Op("!=").Nil(),
			).Block(jen.Return(jen.Err())),
			jen.Id(objsVar).Op("=").Append(jen.Id(objsVar), jen.Id("obj")),
		),
		jen.Id("o").Dot("SetObjectList").Call(jen.Lit(f.Name), jen.Id(objsVar)),
	}, nil
}

// compositeEncodeCall is the expression encoding one composite value into obj.
// A plain struct value encodes through its own method; family and union
// values go through their package-level dispatcher.
func (g *generator) compositeEncodeCall(dt schema.DataType, obj, value *jen.Statement) *jen.Statement {
	if s := asPlainStruct(dt); s != nil {
		return value.Dot("Encode").Call(obj)
	}

	dispatcher := "Encode" + g.namer.Public(dt.TypeName())
	return g.qualified(dt, dispatcher).Call(obj, value)
}

// compositeDecodeCall is the expression decoding one composite value from obj.
func (g *generator) compositeDecodeCall(dt schema.DataType, obj *jen.Statement) *jen.Statement {
	return g.qualified(dt, "Decode"+g.namer.Public(dt.TypeName())).Call(obj)
}

// asPlainStruct returns dt when it is a struct outside any tagged family,
// else nil.
func asPlainStruct(dt schema.DataType) *schema.Struct {
	s, ok := dt.(*schema.Struct)
	if !ok || s.HasEnumeratedSubtypes() {
		return nil
	}

	return s
}

func (g *generator) emitDecodeFunc(file *jen.File, s *schema.Struct) error {
	public := g.namer.Public(s.Name)

	body, err := g.decodeFieldsCode(s)
	if err != nil {
		return err
	}

	file.Comment(fmt.Sprintf("Decode%s reads a %s from o.", public, public))
	file.Func().Id("Decode"+public).
		Params(jen.Id("o").Op("*").Qual(codecPkg, "Object")).
		Params(jen.Op("*").Id(public), jen.Error()).
		Block(body...)

	return nil
}

// decodeFieldsCode emits the shared member decode body: start from the
// zero-argument constructor so defaults and empty lists are preset, then read
// each present entry. Required fields fail decoding when absent; nullable,
// defaulted and list fields are read only when present.
func (g *generator) decodeFieldsCode(s *schema.Struct) ([]jen.Code, error) {
	public := g.namer.Public(s.Name)

	var body []jen.Code
	if len(s.AllFields()) > 0 {
		body = append(body, jen.Id("v").Op(":=").Id("NewEmpty"+public).Call())
	} else {
		body = append(body, jen.Id("v").Op(":=").Op("&").Id(public).Values())
	}

	for _, f := range s.AllFields() {
		stmts, err := g.decodeFieldCode(f)
		if err != nil {
			return nil, fmt.Errorf(`field "%s": %w`, f.Name, err)
		}

		if f.Type.Nullable || f.Type.IsList() || f.Default != nil {
			body = append(body, jen.If(jen.Id("o").Dot("Has").Call(jen.Lit(f.Name))).Block(stmts...))
		} else {
			body = append(body, stmts...)
		}
	}

	body = append(body, jen.Return(jen.Id("v"), jen.Nil()))
	return body, nil
}

func (g *generator) decodeFieldCode(f *schema.Field) ([]jen.Code, error) {
	t := f.Type
	local := g.argName(f.Name)
	assign := jen.Id("v").Dot(g.namer.Public(f.Name))

	errCheck := jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err()))

	switch {
	case t.IsList():
		return g.decodeListCode(f)

	case t.IsComposite():
		objVar := local + "Obj"
		return []jen.Code{
			jen.List(jen.Id(objVar), jen.Err()).Op(":=").Id("o").Dot("Object").Call(jen.Lit(f.Name)),
			errCheck,
			jen.List(jen.Id(local), jen.Err()).Op(":=").Add(g.compositeDecodeCall(t.Ref, jen.Id(objVar))),
			errCheck.Clone(),
			assign.Op("=").Id(local),
		}, nil

	default:
		getter, err := getterName(t.Kind)
		if err != nil {
			return nil, err
		}

		value := jen.Id(local)
		if t.Nullable && nullableNeedsPointer(t.Kind) {
			value = jen.Op("&").Id(local)
		}

		return []jen.Code{
			jen.List(jen.Id(local), jen.Err()).Op(":=").Id("o").Dot(getter).Call(jen.Lit(f.Name)),
			errCheck,
			assign.Op("=").Add(value),
		}, nil
	}
}

func (g *generator) decodeListCode(f *schema.Field) ([]jen.Code, error) {
	t := f.Type
	local := g.argName(f.Name)
	assign := jen.Id("v").Dot(g.namer.Public(f.Name))

	errCheck := jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err()))

	if !t.Elem.IsComposite() {
		conv, err := converterName(t.Elem.Kind)
		if err != nil {
			return nil, err
		}

		return []jen.Code{
			jen.List(jen.Id(local), jen.Err()).Op(":=").Qual(codecPkg, "ListOf").Call(
				jen.Id("o"), jen.Lit(f.Name), jen.Qual(codecPkg, conv)),
			errCheck,
			assign.Op("=").Id(local),
		}, nil
	}

	elem, err := g.typeExpr(t.Elem, usageProperty)
	if err != nil {
		return nil, err
	}

	objsVar := local + "Objs"
	return []jen.Code{
		jen.List(jen.Id(objsVar), jen.Err()).Op(":=").Id("o").Dot("ObjectList").Call(jen.Lit(f.Name)),
		errCheck,
		jen.Id(local).Op(":=").Make(jen.Index().Add(elem), jen.Lit(0), jen.Len(jen.Id(objsVar))),
		jen.For(jen.List(jen.Id("_"), jen.Id("obj")).Op(":=").Range().Id(objsVar)).Block(
			jen.List(jen.Id("item"), jen.Err()).Op(":=").Add(g.compositeDecodeCall(t.Elem.Ref, jen.Id("obj"))),
			jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
			jen.Id(local).Op("=").Append(jen.Id(local), jen.Id("item")),
		),
		assign.Op("=").Id(local),
	}, nil
}

// emitIsAsHelpers writes the family membership helpers for an enumerated
// subtype.
func (g *generator) emitIsAsHelpers(file *jen.File, s *schema.Struct) {
	public := g.namer.Public(s.Name)
	kind := g.kindInterfaceRef(s.Parent)

	file.Comment(fmt.Sprintf("Is%s reports whether v is a %s.", public, public))
	file.Func().Id("Is"+public).Params(jen.Id("v").Add(kind)).Bool().Block(
		jen.List(jen.Id("_"), jen.Id("ok")).Op(":=").Id("v").Assert(jen.Op("*").Id(public)),
		jen.Return(jen.Id("ok")),
	)

	file.Comment(fmt.Sprintf("As%s returns v as a %s when it is one.", public, public))
	file.Func().Id("As"+public).Params(jen.Id("v").Add(g.kindInterfaceRef(s.Parent))).
		Params(jen.Op("*").Id(public), jen.Bool()).Block(
		jen.List(jen.Id("m"), jen.Id("ok")).Op(":=").Id("v").Assert(jen.Op("*").Id(public)),
		jen.Return(jen.Id("m"), jen.Id("ok")),
	)
}

func (g *generator) kindInterfaceRef(root *schema.Struct) *jen.Statement {
	return g.qualified(root, g.namer.Public(root.Name)+"Kind")
}

// emitFamilyEncode writes the package-level dispatcher routing a family value
// to its member encoder.
func (g *generator) emitFamilyEncode(file *jen.File, s *schema.Struct) error {
	public := g.namer.Public(s.Name)

	var cases []jen.Code
	for _, sub := range s.Subtypes {
		cases = append(cases, jen.Case(g.memberTypeRef(sub.Type)).Block(
			jen.Return(jen.Id("v").Dot("Encode").Call(jen.Id("o"))),
		))
	}
	if s.CatchAll {
		cases = append(cases, jen.Case(jen.Op("*").Id(public)).Block(
			jen.Return(jen.Id("v").Dot("Encode").Call(jen.Id("o"))),
		))
	}
	cases = append(cases, jen.Default().Block(
		jen.Return(jen.Qual(codecPkg, "InvalidState").Call(
			jen.Lit(fmt.Sprintf("value of type %%T is not a member of the %s family", g.namer.Words(s.Name))),
			jen.Id("v"),
		)),
	))

	file.Comment(fmt.Sprintf("Encode%s writes a member of the %s family into o, tag first.",
		public, g.namer.Words(s.Name)))
	file.Func().Id("Encode"+public).
		Params(jen.Id("o").Op("*").Qual(codecPkg, "Object"), jen.Id("v").Id(public+"Kind")).Error().
		Block(
			jen.Switch(jen.Id("v").Op(":=").Id("v").Assert(jen.Type())).Block(cases...),
		)

	return nil
}

// emitFamilyDecode writes the tag-dispatching decoder. An unrecognized tag
// goes to the designated catch-all member, or fails when the family is
// closed. The root's own fields are decoded inline when the root is the
// catch-all: the Decode name of a family root always refers to the
// dispatcher.
func (g *generator) emitFamilyDecode(file *jen.File, s *schema.Struct) error {
	public := g.namer.Public(s.Name)

	var cases []jen.Code
	for _, sub := range s.Subtypes {
		if sub.Type.CatchAll {
			// Reached through the default branch.
			continue
		}
		cases = append(cases, jen.Case(jen.Lit(sub.Tag)).Block(
			jen.Return(g.compositeDecodeCall(sub.Type, jen.Id("o"))),
		))
	}

	switch catchAll := familyCatchAll(s); {
	case catchAll == s:
		inline, err := g.decodeFieldsCode(s)
		if err != nil {
			return err
		}
		cases = append(cases, jen.Default().Block(inline...))
	case catchAll != nil:
		cases = append(cases, jen.Default().Block(
			jen.Return(g.compositeDecodeCall(catchAll, jen.Id("o"))),
		))
	default:
		cases = append(cases, jen.Default().Block(
			jen.Return(jen.Nil(), jen.Qual(codecPkg, "InvalidState").Call(
				jen.Lit(fmt.Sprintf("unrecognized tag %%q of the %s family", g.namer.Words(s.Name))),
				jen.Id("tag"),
			)),
		))
	}

	// The catch-all member carries no tag entry, so a missing tag dispatches
	// through the default branch rather than failing outright.
	file.Comment(fmt.Sprintf("Decode%s reads a member of the %s family from o, dispatching on its tag.",
		public, g.namer.Words(s.Name)))
	file.Func().Id("Decode"+public).
		Params(jen.Id("o").Op("*").Qual(codecPkg, "Object")).
		Params(jen.Id(public+"Kind"), jen.Error()).
		Block(
			jen.Var().Id("tag").String(),
			jen.If(jen.Id("o").Dot("Has").Call(jen.Qual(codecPkg, "TagField"))).Block(
				jen.List(jen.Id("t"), jen.Err()).Op(":=").Id("o").Dot("Tag").Call(),
				jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
				jen.Id("tag").Op("=").Id("t"),
			),
			jen.Line(),
			jen.Switch(jen.Id("tag")).Block(cases...),
		)

	return nil
}

// memberTypeRef is the type-switch case expression for a family member.
func (g *generator) memberTypeRef(member *schema.Struct) *jen.Statement {
	return jen.Op("*").Add(g.qualified(member, g.namer.Public(member.Name)))
}
