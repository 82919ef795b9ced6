package names

import (
	"testing"

	assert "github.com/stretchr/testify/require"
)

func TestSegment(t *testing.T) {
	tests := []struct {
		name     string
		expected []string
	}{
		{"foo_bar", []string{"foo", "bar"}},
		{"fooBar", []string{"foo", "bar"}},
		{"FooBar", []string{"foo", "bar"}},
		{"foo/bar", []string{"foo", "bar"}},
		{"HTTPServer", []string{"http", "server"}},
		{"parseHTTP", []string{"parse", "http"}},
		{"v2Response", []string{"v2", "response"}},
		{"__foo__bar__", []string{"foo", "bar"}},
		{"foo", []string{"foo"}},
	}

	n := New()
	for _, tc := range tests {
		assert.Equal(t, tc.expected, n.Segment(tc.name), "name %q", tc.name)
	}
}

func TestPublic(t *testing.T) {
	tests := map[string]string{
		"foo_bar":       "FooBar",
		"fooBar":        "FooBar",
		"FooBar":        "FooBar",
		"get_account/2": "GetAccount2",
		"shared_link":   "SharedLink",
	}

	n := New()
	for name, expected := range tests {
		assert.Equal(t, expected, n.Public(name), "name %q", name)
	}
}

func TestArg(t *testing.T) {
	tests := map[string]string{
		"foo_bar":   "fooBar",
		"Type":      "type_",
		"range":     "range_",
		"interface": "interface_",
		"import":    "import_",
		"name":      "name",
	}

	n := New()
	for name, expected := range tests {
		assert.Equal(t, expected, n.Arg(name), "name %q", name)
	}
}

func TestWords(t *testing.T) {
	n := New()

	assert.Equal(t, "shared link metadata", n.Words("SharedLinkMetadata"))
	assert.Equal(t, "foo bar", n.Words("foo_bar"))
}

func TestTransformsAreMemoized(t *testing.T) {
	n := New()

	first := n.Segment("foo_bar")
	second := n.Segment("foo_bar")

	// Same backing slice, not an equal copy.
	assert.Same(t, &first[0], &second[0])
}
