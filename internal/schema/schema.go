package schema

// API is the fully resolved type model for one generation run. It is built
// once by the loader and treated as read-only by the generator.
type API struct {
	Namespaces []*Namespace
}

func (a *API) Namespace(name string) *Namespace {
	for _, ns := range a.Namespaces {
		if ns.Name == name {
			return ns
		}
	}

	return nil
}

type Namespace struct {
	Name  string
	Doc   string
	Types []DataType
}

func (ns *Namespace) Type(name string) DataType {
	for _, dt := range ns.Types {
		if dt.TypeName() == name {
			return dt
		}
	}

	return nil
}

// DataType is a composite type: a Struct or a Union.
type DataType interface {
	TypeName() string
	TypeDoc() string
	TypeNamespace() *Namespace
}

// Subtype is one entry in a struct's enumerated subtype list. The tag is the
// discriminant written to the wire. The designated catch-all member of a
// family carries the empty tag and absorbs unrecognized tags.
type Subtype struct {
	Tag  string
	Type *Struct
}

type Struct struct {
	Name      string
	Doc       string
	Namespace *Namespace

	// Parent is set when this struct belongs to a tagged family rooted at
	// another struct. Single inheritance only.
	Parent *Struct

	// Fields are the struct's own fields, in declaration order.
	Fields []*Field

	// Subtypes is the enumerated subtype list that makes this struct the
	// root of a closed polymorphic family.
	Subtypes []*Subtype

	// CatchAll marks this struct as its family's fallback for unrecognized
	// tags. It may be set on the root or on one enumerated subtype.
	CatchAll bool
}

func (s *Struct) TypeName() string          { return s.Name }
func (s *Struct) TypeDoc() string           { return s.Doc }
func (s *Struct) TypeNamespace() *Namespace { return s.Namespace }

// AllFields returns the parent's fields followed by the struct's own fields,
// in declaration order.
func (s *Struct) AllFields() []*Field {
	if s.Parent == nil {
		return s.Fields
	}

	parent := s.Parent.AllFields()
	all := make([]*Field, 0, len(parent)+len(s.Fields))
	all = append(all, parent...)
	all = append(all, s.Fields...)
	return all
}

func (s *Struct) HasEnumeratedSubtypes() bool {
	return len(s.Subtypes) > 0
}

type Union struct {
	Name      string
	Doc       string
	Namespace *Namespace
	Fields    []*UnionField
}

func (u *Union) TypeName() string          { return u.Name }
func (u *Union) TypeDoc() string           { return u.Doc }
func (u *Union) TypeNamespace() *Namespace { return u.Namespace }

// CatchAll returns the union's designated catch-all field, or nil when the
// union is closed.
func (u *Union) CatchAll() *UnionField {
	for _, f := range u.Fields {
		if f.CatchAll {
			return f
		}
	}

	return nil
}

func (u *Union) Field(name string) *UnionField {
	for _, f := range u.Fields {
		if f.Name == name {
			return f
		}
	}

	return nil
}

type UnionField struct {
	Name     string
	Doc      string
	Type     *Type
	CatchAll bool
}

type Field struct {
	Name    string
	Doc     string
	Type    *Type
	Default *Default
}

// Default is a declared field default: either a literal for scalar, boolean
// and string fields, or a union tag reference for union-typed fields. Struct
// typed fields never carry a default.
type Default struct {
	Literal  any
	UnionTag string
}

type Kind int

const (
	Void Kind = iota
	Bool
	Int32
	UInt32
	Int64
	UInt64
	Float32
	Float64
	String
	Binary
	Timestamp
	List
	Composite
)

// Type is a modeled type. Nullability is a flag rather than a wrapper since
// at most one nullable layer is allowed.
type Type struct {
	Kind     Kind
	Nullable bool

	// Elem is the element type of a List.
	Elem *Type

	// Ref is the referenced composite type.
	Ref DataType

	// Numeric bounds. The value is an int64, uint64 or float64 matching the
	// numeric kind.
	Min any
	Max any

	// String constraints.
	MinLength *int
	MaxLength *int
	Pattern   string

	// List constraints.
	MinItems *int
	MaxItems *int
}

func (t *Type) IsNumeric() bool {
	switch t.Kind {
	case Int32, UInt32, Int64, UInt64, Float32, Float64:
		return true
	}

	return false
}

func (t *Type) IsComposite() bool { return t.Kind == Composite }
func (t *Type) IsList() bool      { return t.Kind == List }
func (t *Type) IsVoid() bool      { return t.Kind == Void }

// RefStruct returns the referenced struct, or nil.
func (t *Type) RefStruct() *Struct {
	if t.Kind != Composite {
		return nil
	}

	s, _ := t.Ref.(*Struct)
	return s
}

// RefUnion returns the referenced union, or nil.
func (t *Type) RefUnion() *Union {
	if t.Kind != Composite {
		return nil
	}

	u, _ := t.Ref.(*Union)
	return u
}
