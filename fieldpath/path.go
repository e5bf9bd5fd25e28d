package fieldpath

import (
	"strconv"
	"strings"
)

// Segment is a single step in a Path: either a mapping key or a list index.
type Segment struct {
	key     string
	index   int
	isIndex bool
}

// Key returns a mapping key segment.
func Key(name string) Segment {
	return Segment{key: name}
}

// Index returns a list index segment.
func Index(i int) Segment {
	return Segment{index: i, isIndex: true}
}

// IsIndex reports whether the segment addresses a list item.
func (s Segment) IsIndex() bool { return s.isIndex }

// Key returns the mapping key. It is empty for index segments.
func (s Segment) Key() string { return s.key }

// Index returns the list index. It is zero for key segments.
func (s Segment) Index() int { return s.index }

func (s Segment) String() string {
	if s.isIndex {
		return "[" + strconv.Itoa(s.index) + "]"
	}
	return s.key
}

// Path is an ordered sequence of segments. The empty path addresses the whole
// tree.
type Path []Segment

// String formats the path using the field name grammar (items[0].name).
func (p Path) String() string {
	return Format(p)
}

// Equal reports whether p and other address the same location.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether prefix is p itself or one of its ancestors.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	return p[:len(prefix)].Equal(prefix)
}

// Parent returns the path without its last segment. The root has no parent.
func (p Path) Parent() (Path, bool) {
	if len(p) == 0 {
		return nil, false
	}
	return p[:len(p)-1:len(p)-1], true
}

// Last returns the final segment of the path.
func (p Path) Last() (Segment, bool) {
	if len(p) == 0 {
		return Segment{}, false
	}
	return p[len(p)-1], true
}

// Parse converts a field name such as "items[0].name" into its segments.
// Parsing is lenient: empty keys are skipped and bracket content that is not a
// non-negative integer is treated as a key.
func Parse(text string) Path {
	if text == "" {
		return Path{}
	}

	path := make(Path, 0, strings.Count(text, ".")+strings.Count(text, "[")+1)
	var key strings.Builder
	flush := func() {
		if key.Len() > 0 {
			path = append(path, Key(key.String()))
			key.Reset()
		}
	}

	for i := 0; i < len(text); i++ {
		switch ch := text[i]; ch {
		case '.':
			flush()
		case '[':
			flush()
			end := strings.IndexByte(text[i+1:], ']')
			if end < 0 {
				key.WriteString(text[i+1:])
				i = len(text)
				continue
			}
			inner := text[i+1 : i+1+end]
			if n, ok := parseIndex(inner); ok {
				path = append(path, Index(n))
			} else if inner != "" {
				path = append(path, Key(inner))
			}
			i += end + 1
		default:
			key.WriteByte(ch)
		}
	}
	flush()
	return path
}

func parseIndex(text string) (int, bool) {
	if text == "" {
		return 0, false
	}
	for i := 0; i < len(text); i++ {
		if text[i] < '0' || text[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Format renders segments back into a field name. Format(Parse(s)) == s for any
// well-formed name.
func Format(path Path) string {
	var b strings.Builder
	for i, segment := range path {
		if segment.isIndex {
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(segment.index))
			b.WriteByte(']')
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(segment.key)
	}
	return b.String()
}

// Append adds one segment to a textual base path.
func Append(base string, segment Segment) string {
	if segment.isIndex {
		return base + segment.String()
	}
	if base == "" {
		return segment.key
	}
	return base + "." + segment.key
}

// AppendIndex is shorthand for Append(base, Index(i)).
func AppendIndex(base string, i int) string {
	return Append(base, Index(i))
}

// AppendKey is shorthand for Append(base, Key(key)).
func AppendKey(base, key string) string {
	return Append(base, Key(key))
}

// Relative returns the segments of field that remain below base. ok is false
// when field is neither base nor a descendant of it.
func Relative(field, base string) (Path, bool) {
	fieldPath := Parse(field)
	basePath := Parse(base)
	if !fieldPath.HasPrefix(basePath) {
		return nil, false
	}
	return fieldPath[len(basePath):], true
}

// Within reports whether field is base or lives under it. Every field is within
// the root.
func Within(field, base string) bool {
	_, ok := Relative(field, base)
	return ok
}
