package schema

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type file struct {
	Namespace string     `yaml:"namespace"`
	Doc       string     `yaml:"doc"`
	Types     []typeDecl `yaml:"types"`
}

type typeDecl struct {
	Name   string      `yaml:"name"`
	Doc    string      `yaml:"doc"`
	Struct *structDecl `yaml:"struct"`
	Union  *unionDecl  `yaml:"union"`
}

type structDecl struct {
	Parent   string        `yaml:"parent"`
	Fields   []fieldDecl   `yaml:"fields"`
	Subtypes []subtypeDecl `yaml:"subtypes"`

	// CatchAll names the family member (the root itself or an enumerated
	// subtype) that absorbs unrecognized tags.
	CatchAll string `yaml:"catch_all"`
}

type subtypeDecl struct {
	Tag  string `yaml:"tag"`
	Type string `yaml:"type"`
}

type unionDecl struct {
	Fields []unionFieldDecl `yaml:"fields"`
}

type fieldDecl struct {
	Name    string `yaml:"name"`
	Doc     string `yaml:"doc"`
	Type    string `yaml:"type"`
	Default *yaml.Node `yaml:"default"`

	Min *float64 `yaml:"min"`
	Max *float64 `yaml:"max"`

	MinLength *int   `yaml:"min_length"`
	MaxLength *int   `yaml:"max_length"`
	Pattern   string `yaml:"pattern"`

	MinItems *int `yaml:"min_items"`
	MaxItems *int `yaml:"max_items"`
}

type unionFieldDecl struct {
	Name     string `yaml:"name"`
	Doc      string `yaml:"doc"`
	Type     string `yaml:"type"`
	CatchAll bool   `yaml:"catch_all"`
}

// Load reads the schema files and resolves them into a validated API model.
func Load(filePaths []string) (*API, error) {
	files := make([]*file, 0, len(filePaths))
	for _, p := range filePaths {
		fileData, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf(`failed to read schema file "%s": %w`, p, err)
		}

		var f file
		if err := yaml.Unmarshal(fileData, &f); err != nil {
			return nil, fmt.Errorf(`failed to unmarshal schema file "%s": %w`, p, err)
		}

		files = append(files, &f)
	}

	api := &API{}

	// First pass: register namespaces and empty type shells so that
	// references can be resolved in any order.
	for _, f := range files {
		if f.Namespace == "" {
			return nil, fmt.Errorf("schema file is missing a namespace name")
		}
		if api.Namespace(f.Namespace) != nil {
			return nil, fmt.Errorf(`duplicate namespace "%s"`, f.Namespace)
		}

		ns := &Namespace{Name: f.Namespace, Doc: f.Doc}
		api.Namespaces = append(api.Namespaces, ns)

		for _, td := range f.Types {
			if td.Name == "" {
				return nil, fmt.Errorf(`namespace "%s" has a type with no name`, ns.Name)
			}
			if ns.Type(td.Name) != nil {
				return nil, fmt.Errorf(`duplicate type "%s" in namespace "%s"`, td.Name, ns.Name)
			}

			switch {
			case td.Struct != nil && td.Union != nil:
				return nil, fmt.Errorf(`type "%s.%s" is declared as both a struct and a union`, ns.Name, td.Name)
			case td.Struct != nil:
				ns.Types = append(ns.Types, &Struct{Name: td.Name, Doc: td.Doc, Namespace: ns})
			case td.Union != nil:
				ns.Types = append(ns.Types, &Union{Name: td.Name, Doc: td.Doc, Namespace: ns})
			default:
				return nil, fmt.Errorf(`type "%s.%s" is neither a struct nor a union`, ns.Name, td.Name)
			}
		}
	}

	// Second pass: resolve parents, subtypes and fields.
	for _, f := range files {
		ns := api.Namespace(f.Namespace)

		for _, td := range f.Types {
			if err := resolveType(api, ns, td); err != nil {
				return nil, fmt.Errorf(`in type "%s.%s": %w`, ns.Name, td.Name, err)
			}
		}
	}

	// Third pass: cross-type validation, once every type is fully resolved.
	for _, ns := range api.Namespaces {
		for _, dt := range ns.Types {
			if s, ok := dt.(*Struct); ok {
				if err := validateStruct(s); err != nil {
					return nil, fmt.Errorf(`in type "%s.%s": %w`, ns.Name, s.Name, err)
				}
			}
		}
	}

	return api, nil
}

func resolveType(api *API, ns *Namespace, td typeDecl) error {
	switch dt := ns.Type(td.Name).(type) {
	case *Struct:
		return resolveStruct(api, ns, dt, td.Struct)
	case *Union:
		return resolveUnion(api, ns, dt, td.Union)
	}

	return fmt.Errorf("unresolved type shell")
}

func resolveStruct(api *API, ns *Namespace, s *Struct, decl *structDecl) error {
	if decl.Parent != "" {
		parent, err := resolveRef(api, ns, decl.Parent)
		if err != nil {
			return err
		}

		ps, ok := parent.(*Struct)
		if !ok {
			return fmt.Errorf(`parent "%s" is not a struct`, decl.Parent)
		}

		s.Parent = ps
	}

	for _, fd := range decl.Fields {
		field, err := resolveField(api, ns, fd)
		if err != nil {
			return fmt.Errorf(`in field "%s": %w`, fd.Name, err)
		}

		s.Fields = append(s.Fields, field)
	}

	for _, sd := range decl.Subtypes {
		sub, err := resolveRef(api, ns, sd.Type)
		if err != nil {
			return err
		}

		ss, ok := sub.(*Struct)
		if !ok {
			return fmt.Errorf(`enumerated subtype "%s" is not a struct`, sd.Type)
		}

		// An empty tag is only valid on the catch-all member, which is not
		// known until catch_all resolves; validateStruct settles that.
		for _, existing := range s.Subtypes {
			if sd.Tag != "" && existing.Tag == sd.Tag {
				return fmt.Errorf(`duplicate subtype tag "%s"`, sd.Tag)
			}
		}

		s.Subtypes = append(s.Subtypes, &Subtype{Tag: sd.Tag, Type: ss})
	}

	if decl.CatchAll != "" {
		if err := markCatchAll(api, ns, s, decl.CatchAll); err != nil {
			return err
		}
	}

	return nil
}

func markCatchAll(api *API, ns *Namespace, root *Struct, name string) error {
	if !root.HasEnumeratedSubtypes() {
		return fmt.Errorf("catch_all requires enumerated subtypes")
	}

	dt, err := resolveRef(api, ns, name)
	if err != nil {
		return err
	}

	member, ok := dt.(*Struct)
	if !ok {
		return fmt.Errorf(`catch-all "%s" is not a struct`, name)
	}

	if member != root {
		found := false
		for _, sub := range root.Subtypes {
			if sub.Type == member {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf(`catch-all "%s" is not a member of the family`, name)
		}
	}

	member.CatchAll = true
	return nil
}

func validateStruct(s *Struct) error {
	if s.HasEnumeratedSubtypes() && s.Parent != nil {
		return fmt.Errorf("nested enumerated-subtype families are not supported")
	}

	for _, sub := range s.Subtypes {
		if sub.Type.Parent != s {
			return fmt.Errorf(`enumerated subtype "%s" does not declare "%s" as its parent`,
				sub.Type.Name, s.Name)
		}

		// The catch-all member has no fixed discriminant: it absorbs whatever
		// tag the other members do not claim. Every other subtype needs one.
		if sub.Type.CatchAll {
			if sub.Tag != "" {
				return fmt.Errorf(`catch-all subtype "%s" must not declare a tag`, sub.Type.Name)
			}
		} else if sub.Tag == "" {
			return fmt.Errorf(`enumerated subtype "%s" has no tag`, sub.Type.Name)
		}
	}

	for _, f := range s.Fields {
		if f.Type.IsVoid() {
			return fmt.Errorf(`field "%s" may not be void`, f.Name)
		}

		if f.Default == nil {
			continue
		}

		// A nullable field already has an "absent" state; a default would make
		// it unreachable.
		if f.Type.Nullable {
			return fmt.Errorf(`field "%s" is nullable and may not declare a default`, f.Name)
		}

		// Defaults are only decidable for scalar, boolean, string and union
		// typed fields.
		if f.Type.RefStruct() != nil {
			return fmt.Errorf(`field "%s" is struct-typed and may not declare a default`, f.Name)
		}
		if f.Type.IsList() {
			return fmt.Errorf(`field "%s" is list-typed and may not declare a default`, f.Name)
		}

		if u := f.Type.RefUnion(); u != nil {
			variant := u.Field(f.Default.UnionTag)
			if variant == nil {
				return fmt.Errorf(`field "%s" defaults to unknown tag "%s" of union "%s"`,
					f.Name, f.Default.UnionTag, u.Name)
			}
			if !variant.Type.IsVoid() {
				return fmt.Errorf(`field "%s" defaults to value-carrying tag "%s" of union "%s"`,
					f.Name, f.Default.UnionTag, u.Name)
			}
		}
	}

	return nil
}

func resolveUnion(api *API, ns *Namespace, u *Union, decl *unionDecl) error {
	if len(decl.Fields) == 0 {
		return fmt.Errorf("union has no fields")
	}

	for _, fd := range decl.Fields {
		for _, existing := range u.Fields {
			if existing.Name == fd.Name {
				return fmt.Errorf(`duplicate union field "%s"`, fd.Name)
			}
		}

		t, err := parseType(api, ns, fd.Type)
		if err != nil {
			return fmt.Errorf(`in field "%s": %w`, fd.Name, err)
		}

		if fd.CatchAll && u.CatchAll() != nil {
			return fmt.Errorf(`union has more than one catch-all field`)
		}
		if fd.CatchAll && !t.IsVoid() {
			return fmt.Errorf(`catch-all field "%s" must be void`, fd.Name)
		}

		u.Fields = append(u.Fields, &UnionField{
			Name:     fd.Name,
			Doc:      fd.Doc,
			Type:     t,
			CatchAll: fd.CatchAll,
		})
	}

	return nil
}

func resolveField(api *API, ns *Namespace, fd fieldDecl) (*Field, error) {
	t, err := parseType(api, ns, fd.Type)
	if err != nil {
		return nil, err
	}

	if err := applyConstraints(t, fd); err != nil {
		return nil, err
	}

	field := &Field{Name: fd.Name, Doc: fd.Doc, Type: t}

	if fd.Default != nil {
		d, err := parseDefault(t, fd.Default)
		if err != nil {
			return nil, err
		}
		field.Default = d
	}

	return field, nil
}

func applyConstraints(t *Type, fd fieldDecl) error {
	target := t
	if t.Kind == List {
		t.MinItems = fd.MinItems
		t.MaxItems = fd.MaxItems
		target = t.Elem
	}

	if fd.Min != nil || fd.Max != nil {
		if !target.IsNumeric() {
			return fmt.Errorf("min/max bounds require a numeric type")
		}
		target.Min = numericBound(target.Kind, fd.Min)
		target.Max = numericBound(target.Kind, fd.Max)
	}

	if fd.MinLength != nil || fd.MaxLength != nil || fd.Pattern != "" {
		if target.Kind != String {
			return fmt.Errorf("length/pattern constraints require a string type")
		}
		target.MinLength = fd.MinLength
		target.MaxLength = fd.MaxLength
		target.Pattern = fd.Pattern
	}

	return nil
}

func numericBound(kind Kind, v *float64) any {
	if v == nil {
		return nil
	}

	switch kind {
	case Int32, Int64:
		return int64(*v)
	case UInt32, UInt64:
		return uint64(*v)
	}

	return *v
}

func parseDefault(t *Type, node *yaml.Node) (*Default, error) {
	if t.RefUnion() != nil {
		var tag string
		if err := node.Decode(&tag); err != nil {
			return nil, fmt.Errorf("union default must be a tag name: %w", err)
		}
		return &Default{UnionTag: tag}, nil
	}

	switch t.Kind {
	case Bool:
		var v bool
		if err := node.Decode(&v); err != nil {
			return nil, fmt.Errorf("invalid boolean default: %w", err)
		}
		return &Default{Literal: v}, nil
	case String:
		var v string
		if err := node.Decode(&v); err != nil {
			return nil, fmt.Errorf("invalid string default: %w", err)
		}
		return &Default{Literal: v}, nil
	case Int32, Int64:
		var v int64
		if err := node.Decode(&v); err != nil {
			return nil, fmt.Errorf("invalid integer default: %w", err)
		}
		return &Default{Literal: v}, nil
	case UInt32, UInt64:
		var v uint64
		if err := node.Decode(&v); err != nil {
			return nil, fmt.Errorf("invalid integer default: %w", err)
		}
		return &Default{Literal: v}, nil
	case Float32, Float64:
		var v float64
		if err := node.Decode(&v); err != nil {
			return nil, fmt.Errorf("invalid float default: %w", err)
		}
		return &Default{Literal: v}, nil
	}

	return nil, fmt.Errorf("a default may only be declared for scalar, boolean, string or union typed fields")
}

var scalarKinds = map[string]Kind{
	"void":      Void,
	"bool":      Bool,
	"int32":     Int32,
	"uint32":    UInt32,
	"int64":     Int64,
	"uint64":    UInt64,
	"float32":   Float32,
	"float64":   Float64,
	"string":    String,
	"binary":    Binary,
	"timestamp": Timestamp,
}

// parseType parses a type expression like "string", "list(int32)",
// "nullable(account)" or "users.account".
func parseType(api *API, ns *Namespace, expr string) (*Type, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("missing type")
	}

	if inner, ok := unwrap(expr, "nullable"); ok {
		t, err := parseType(api, ns, inner)
		if err != nil {
			return nil, err
		}
		if t.Nullable {
			return nil, fmt.Errorf(`type "%s" has more than one nullable layer`, expr)
		}
		if t.Kind == Void {
			return nil, fmt.Errorf("void may not be nullable")
		}

		// Lists are always materialized as non-null sequences, so a nullable
		// layer on a list collapses.
		if t.Kind != List {
			t.Nullable = true
		}
		return t, nil
	}

	if inner, ok := unwrap(expr, "list"); ok {
		elem, err := parseType(api, ns, inner)
		if err != nil {
			return nil, err
		}
		if elem.Kind == Void {
			return nil, fmt.Errorf("a list element may not be void")
		}
		if elem.Nullable {
			return nil, fmt.Errorf("a list element may not be nullable")
		}
		return &Type{Kind: List, Elem: elem}, nil
	}

	if kind, ok := scalarKinds[expr]; ok {
		return &Type{Kind: kind}, nil
	}

	dt, err := resolveRef(api, ns, expr)
	if err != nil {
		return nil, err
	}

	return &Type{Kind: Composite, Ref: dt}, nil
}

func unwrap(expr, wrapper string) (string, bool) {
	if strings.HasPrefix(expr, wrapper+"(") && strings.HasSuffix(expr, ")") {
		return expr[len(wrapper)+1 : len(expr)-1], true
	}

	return "", false
}

// resolveRef resolves a composite type reference, either a short name within
// ns or a namespace-qualified "ns.type" reference.
func resolveRef(api *API, ns *Namespace, ref string) (DataType, error) {
	nsName, typeName := ns.Name, ref
	if dot := strings.IndexByte(ref, '.'); dot != -1 {
		nsName, typeName = ref[:dot], ref[dot+1:]
	}

	refNs := api.Namespace(nsName)
	if refNs == nil {
		return nil, fmt.Errorf(`could not resolve namespace "%s" of reference "%s"`, nsName, ref)
	}

	dt := refNs.Type(typeName)
	if dt == nil {
		return nil, fmt.Errorf(`could not resolve type reference "%s"`, ref)
	}

	return dt, nil
}
