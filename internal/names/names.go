package names

import "strings"

// goKeywords are escaped by Arg so that generated parameter names are always
// valid identifiers.
var goKeywords = map[string]bool{
	"break": true, "case": true, "chan": true, "const": true, "continue": true,
	"default": true, "defer": true, "else": true, "fallthrough": true,
	"for": true, "func": true, "go": true, "goto": true, "if": true,
	"import": true, "interface": true, "map": true, "package": true,
	"range": true, "return": true, "select": true, "struct": true,
	"switch": true, "type": true, "var": true,
}

// Namer transforms raw schema names into Go identifiers. All transforms are
// memoized for the lifetime of the Namer, which is scoped to a single
// generation run.
type Namer struct {
	segments map[string][]string
	public   map[string]string
	arg      map[string]string
	words    map[string]string
}

func New() *Namer {
	return &Namer{
		segments: make(map[string][]string),
		public:   make(map[string]string),
		arg:      make(map[string]string),
		words:    make(map[string]string),
	}
}

// Segment splits a schema name into lowercase words. Names are segmented on
// '/' and '_' characters and on camel-case boundaries.
func (n *Namer) Segment(name string) []string {
	if s, ok := n.segments[name]; ok {
		return s
	}

	s := segment(name)
	n.segments[name] = s
	return s
}

// Public returns the exported CamelCase form of a schema name.
//
//	foo_bar -> FooBar
//	fooBar  -> FooBar
//	FooBar  -> FooBar
func (n *Namer) Public(name string) string {
	if p, ok := n.public[name]; ok {
		return p
	}

	var b strings.Builder
	for _, s := range n.Segment(name) {
		b.WriteString(strings.ToUpper(s[0:1]))
		b.WriteString(s[1:])
	}

	p := b.String()
	n.public[name] = p
	return p
}

// Arg returns the unexported camelCase form of a schema name, suitable for
// function parameters and local variables. Names that would collide with a Go
// keyword get a trailing underscore. The escape is stable: an escaped name is
// never itself a keyword.
func (n *Namer) Arg(name string) string {
	if a, ok := n.arg[name]; ok {
		return a
	}

	public := n.Public(name)
	a := strings.ToLower(public[0:1]) + public[1:]
	if goKeywords[a] {
		a += "_"
	}

	n.arg[name] = a
	return a
}

// Words returns the name's segments joined with spaces, for generated prose.
func (n *Namer) Words(name string) string {
	if w, ok := n.words[name]; ok {
		return w
	}

	w := strings.Join(n.Segment(name), " ")
	n.words[name] = w
	return w
}

// segment splits on '/' and '_' and inserts a break before every internal
// uppercase letter that is preceded by a lowercase letter or digit, or that is
// itself followed by a lowercase letter.
func segment(name string) []string {
	runes := []rune(strings.ReplaceAll(name, "/", "_"))

	var b strings.Builder
	for i, r := range runes {
		if i > 0 && isUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && isLower(runes[i+1])

			if isLower(prev) || isDigit(prev) || nextLower {
				if prev != '_' {
					b.WriteRune('_')
				}
			}
		}

		b.WriteRune(r)
	}

	parts := strings.Split(strings.ToLower(b.String()), "_")

	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			segments = append(segments, p)
		}
	}

	return segments
}

func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
func isLower(r rune) bool { return r >= 'a' && r <= 'z' }
func isDigit(r rune) bool { return r >= '0' && r <= '9' }
