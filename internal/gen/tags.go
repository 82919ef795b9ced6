package gen

import (
	"github.com/cockroachdb/errors"
	"github.com/koskimas/sdkgen/internal/schema"
)

// familyTag returns the wire tag struct s carries within its parent's
// enumerated subtype list. The designated catch-all member carries the empty
// tag: it has no fixed discriminant and absorbs any unrecognized one.
func familyTag(s *schema.Struct) (string, error) {
	if s.CatchAll {
		return "", nil
	}

	if s.Parent == nil {
		return "", errors.AssertionFailedf("struct %q is not a member of a tagged family", s.Name)
	}

	for _, sub := range s.Parent.Subtypes {
		if sub.Type == s {
			return sub.Tag, nil
		}
	}

	return "", errors.AssertionFailedf(
		"struct %q is not recorded in the subtype list of its parent %q", s.Name, s.Parent.Name)
}

// familyCatchAll returns the family member absorbing unrecognized tags, or
// nil when the family is closed.
func familyCatchAll(root *schema.Struct) *schema.Struct {
	if root.CatchAll {
		return root
	}

	for _, sub := range root.Subtypes {
		if sub.Type.CatchAll {
			return sub.Type
		}
	}

	return nil
}
