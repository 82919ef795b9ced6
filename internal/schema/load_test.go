package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	assert "github.com/stretchr/testify/require"

	"github.com/koskimas/sdkgen/internal/ptr"
)

func writeSchemas(t *testing.T, schemas ...string) []string {
	t.Helper()

	dir := t.TempDir()
	paths := make([]string, 0, len(schemas))

	for i, s := range schemas {
		p := filepath.Join(dir, fmt.Sprintf("schema_%d.yaml", i))
		assert.NoError(t, os.WriteFile(p, []byte(s), 0600))
		paths = append(paths, p)
	}

	return paths
}

func TestLoadStruct(t *testing.T) {
	api, err := Load(writeSchemas(t, `
namespace: users
doc: User accounts.
types:
  - name: account
    doc: A user account.
    struct:
      fields:
        - name: email
          type: string
          min_length: 1
          max_length: 255
          pattern: "^[^@]+@[^@]+$"
        - name: age
          type: nullable(int32)
          min: 0
          max: 150
        - name: is_admin
          type: bool
          default: false
        - name: tags
          type: list(string)
          max_items: 10
`))
	assert.NoError(t, err)

	ns := api.Namespace("users")
	assert.NotNil(t, ns)
	assert.Equal(t, "User accounts.", ns.Doc)

	s, ok := ns.Type("account").(*Struct)
	assert.True(t, ok)
	assert.Equal(t, "A user account.", s.Doc)
	assert.Len(t, s.Fields, 4)

	email := s.Fields[0]
	assert.Equal(t, String, email.Type.Kind)
	assert.Equal(t, ptr.V(1), email.Type.MinLength)
	assert.Equal(t, ptr.V(255), email.Type.MaxLength)
	assert.Equal(t, "^[^@]+@[^@]+$", email.Type.Pattern)

	age := s.Fields[1]
	assert.Equal(t, Int32, age.Type.Kind)
	assert.True(t, age.Type.Nullable)
	assert.Equal(t, int64(0), age.Type.Min)
	assert.Equal(t, int64(150), age.Type.Max)

	isAdmin := s.Fields[2]
	assert.NotNil(t, isAdmin.Default)
	assert.Equal(t, false, isAdmin.Default.Literal)

	tags := s.Fields[3]
	assert.Equal(t, List, tags.Type.Kind)
	assert.Equal(t, String, tags.Type.Elem.Kind)
	assert.Equal(t, ptr.V(10), tags.Type.MaxItems)
}

func TestLoadUnion(t *testing.T) {
	api, err := Load(writeSchemas(t, `
namespace: sharing
types:
  - name: visibility
    union:
      fields:
        - name: public
          type: void
        - name: password
          type: string
        - name: other
          type: void
          catch_all: true
  - name: policy
    struct:
      fields:
        - name: visibility
          type: visibility
          default: public
`))
	assert.NoError(t, err)

	ns := api.Namespace("sharing")
	u, ok := ns.Type("visibility").(*Union)
	assert.True(t, ok)
	assert.Len(t, u.Fields, 3)
	assert.True(t, u.Fields[0].Type.IsVoid())
	assert.Equal(t, String, u.Fields[1].Type.Kind)
	assert.Equal(t, u.Fields[2], u.CatchAll())

	s := ns.Type("policy").(*Struct)
	assert.Equal(t, "public", s.Fields[0].Default.UnionTag)
}

func TestLoadFamily(t *testing.T) {
	api, err := Load(writeSchemas(t, `
namespace: files
types:
  - name: metadata
    struct:
      fields:
        - name: name
          type: string
      subtypes:
        - tag: file
          type: file_metadata
        - tag: folder
          type: folder_metadata
      catch_all: metadata
  - name: file_metadata
    struct:
      parent: metadata
      fields:
        - name: size
          type: uint64
  - name: folder_metadata
    struct:
      parent: metadata
`))
	assert.NoError(t, err)

	ns := api.Namespace("files")
	root := ns.Type("metadata").(*Struct)
	assert.True(t, root.HasEnumeratedSubtypes())
	assert.True(t, root.CatchAll)
	assert.Len(t, root.Subtypes, 2)

	file := ns.Type("file_metadata").(*Struct)
	assert.Equal(t, root, file.Parent)
	assert.Equal(t, "file", root.Subtypes[0].Tag)
	assert.Equal(t, file, root.Subtypes[0].Type)

	// Parent fields come first in declaration order.
	all := file.AllFields()
	assert.Len(t, all, 2)
	assert.Equal(t, "name", all[0].Name)
	assert.Equal(t, "size", all[1].Name)
}

func TestLoadTaglessCatchAllSubtype(t *testing.T) {
	api, err := Load(writeSchemas(t, `
namespace: files
types:
  - name: metadata
    struct:
      fields:
        - name: name
          type: string
      subtypes:
        - tag: file
          type: file_metadata
        - type: other_metadata
      catch_all: other_metadata
  - name: file_metadata
    struct:
      parent: metadata
  - name: other_metadata
    struct:
      parent: metadata
`))
	assert.NoError(t, err)

	root := api.Namespace("files").Type("metadata").(*Struct)
	assert.False(t, root.CatchAll)
	assert.Equal(t, "", root.Subtypes[1].Tag)
	assert.True(t, root.Subtypes[1].Type.CatchAll)
}

func TestLoadCrossNamespaceRef(t *testing.T) {
	api, err := Load(writeSchemas(t, `
namespace: users
types:
  - name: account
    struct:
      fields:
        - name: email
          type: string
`, `
namespace: sharing
types:
  - name: member
    struct:
      fields:
        - name: account
          type: users.account
        - name: friends
          type: list(users.account)
`))
	assert.NoError(t, err)

	member := api.Namespace("sharing").Type("member").(*Struct)
	account := api.Namespace("users").Type("account")

	assert.Equal(t, account, member.Fields[0].Type.Ref)
	assert.Equal(t, account, member.Fields[1].Type.Elem.Ref)
}

func TestNullableListCollapses(t *testing.T) {
	api, err := Load(writeSchemas(t, `
namespace: test
types:
  - name: holder
    struct:
      fields:
        - name: items
          type: nullable(list(string))
`))
	assert.NoError(t, err)

	f := api.Namespace("test").Type("holder").(*Struct).Fields[0]
	assert.Equal(t, List, f.Type.Kind)
	assert.False(t, f.Type.Nullable)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		schemas []string
		error   string
	}{
		{
			name: "duplicate namespace",
			schemas: []string{
				"namespace: users\ntypes: []",
				"namespace: users\ntypes: []",
			},
			error: `duplicate namespace "users"`,
		},
		{
			name: "unresolved reference",
			schemas: []string{`
namespace: test
types:
  - name: holder
    struct:
      fields:
        - name: thing
          type: no_such_type
`},
			error: `could not resolve type reference "no_such_type"`,
		},
		{
			name: "void field",
			schemas: []string{`
namespace: test
types:
  - name: holder
    struct:
      fields:
        - name: thing
          type: void
`},
			error: `field "thing" may not be void`,
		},
		{
			name: "double nullable",
			schemas: []string{`
namespace: test
types:
  - name: holder
    struct:
      fields:
        - name: thing
          type: nullable(nullable(string))
`},
			error: "more than one nullable layer",
		},
		{
			name: "default on nullable field",
			schemas: []string{`
namespace: test
types:
  - name: holder
    struct:
      fields:
        - name: count
          type: nullable(int32)
          default: 5
`},
			error: `field "count" is nullable and may not declare a default`,
		},
		{
			name: "nullable list element",
			schemas: []string{`
namespace: test
types:
  - name: holder
    struct:
      fields:
        - name: things
          type: list(nullable(string))
`},
			error: "a list element may not be nullable",
		},
		{
			name: "default on struct field",
			schemas: []string{`
namespace: test
types:
  - name: other
    struct:
      fields:
        - name: id
          type: string
  - name: holder
    struct:
      fields:
        - name: thing
          type: other
          default: something
`},
			error: "a default may only be declared",
		},
		{
			name: "default to value-carrying union tag",
			schemas: []string{`
namespace: test
types:
  - name: choice
    union:
      fields:
        - name: named
          type: string
  - name: holder
    struct:
      fields:
        - name: thing
          type: choice
          default: named
`},
			error: `defaults to value-carrying tag "named"`,
		},
		{
			name: "nested family",
			schemas: []string{`
namespace: test
types:
  - name: root
    struct:
      subtypes:
        - tag: mid
          type: mid
  - name: mid
    struct:
      parent: root
      subtypes:
        - tag: leaf
          type: leaf
  - name: leaf
    struct:
      parent: mid
`},
			error: "nested enumerated-subtype families are not supported",
		},
		{
			name: "subtype without parent declaration",
			schemas: []string{`
namespace: test
types:
  - name: root
    struct:
      subtypes:
        - tag: sub
          type: sub
  - name: sub
    struct:
      fields: []
`},
			error: `enumerated subtype "sub" does not declare "root" as its parent`,
		},
		{
			name: "subtype without tag",
			schemas: []string{`
namespace: test
types:
  - name: root
    struct:
      subtypes:
        - type: sub
  - name: sub
    struct:
      parent: root
`},
			error: `enumerated subtype "sub" has no tag`,
		},
		{
			name: "tag on catch-all subtype",
			schemas: []string{`
namespace: test
types:
  - name: root
    struct:
      subtypes:
        - tag: a
          type: a
        - tag: b
          type: b
      catch_all: b
  - name: a
    struct:
      parent: root
  - name: b
    struct:
      parent: root
`},
			error: `catch-all subtype "b" must not declare a tag`,
		},
		{
			name: "non-void union catch-all",
			schemas: []string{`
namespace: test
types:
  - name: choice
    union:
      fields:
        - name: other
          type: string
          catch_all: true
`},
			error: `catch-all field "other" must be void`,
		},
		{
			name: "bounds on non-numeric type",
			schemas: []string{`
namespace: test
types:
  - name: holder
    struct:
      fields:
        - name: name
          type: string
          min: 1
`},
			error: "min/max bounds require a numeric type",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeSchemas(t, tc.schemas...))
			assert.ErrorContains(t, err, tc.error)
		})
	}
}
