package cmdargs

import (
	"reflect"
	"sort"
	"strings"
)

// Kind selects the converter used for a field value.
type Kind int

const (
	// KindScalar renders strings, numbers, booleans, and fmt.Stringer values.
	KindScalar Kind = iota
	// KindFlag emits the bare argument name when the value is true.
	KindFlag
	// KindBinary renders a boolean as 1 or 0.
	KindBinary
	// KindDuration renders a time.Duration as [HH:]MM:SS[.mmm].
	KindDuration
	// KindCodec renders a *Codec as the codec name plus its option pairs.
	KindCodec
	// KindFilters renders a []Filter as one filter graph.
	KindFilters
	// KindStreams renders a []MappedStream as stream maps with per-stream options.
	KindStreams
	// KindMetadata renders a map[string]string as repeated -metadata pairs.
	KindMetadata
	// KindPath renders a shell-escaped path.
	KindPath
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindFlag:
		return "flag"
	case KindBinary:
		return "binary"
	case KindDuration:
		return "duration"
	case KindCodec:
		return "codec"
	case KindFilters:
		return "filters"
	case KindStreams:
		return "streams"
	case KindMetadata:
		return "metadata"
	case KindPath:
		return "path"
	default:
		return "unknown"
	}
}

// Field is one schema entry. Order values greater than zero sort first in
// ascending order; fields with Order zero follow in declaration order.
type Field struct {
	Name   string
	Order  int
	Kind   Kind
	Ignore bool
	Value  any
}

// Schema is implemented by command models.
type Schema interface {
	Fields() []Field
}

// Pair is one rendered argument. Value is already shell-quoted where needed.
type Pair struct {
	Name  string
	Value string
}

func (p Pair) String() string {
	switch {
	case p.Name == "":
		return p.Value
	case p.Value == "":
		return p.Name
	default:
		return p.Name + " " + p.Value
	}
}

// Serialize renders a schema into ordered argument pairs. Nil values and
// ignored fields are omitted.
func Serialize(schema Schema) ([]Pair, error) {
	return serialize(schema, "")
}

// Render serializes a schema and joins the pairs into one argument string.
func Render(schema Schema) (string, error) {
	pairs, err := Serialize(schema)
	if err != nil {
		return "", err
	}
	return Join(pairs), nil
}

// Join renders pairs separated by single spaces, skipping empty ones.
func Join(pairs []Pair) string {
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		if text := p.String(); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

func serialize(schema Schema, suffix string) ([]Pair, error) {
	if schema == nil || isNil(schema) {
		return nil, nil
	}
	fields := ordered(schema.Fields())
	var pairs []Pair
	for _, field := range fields {
		if field.Ignore || isNil(field.Value) {
			continue
		}
		rendered, err := convert(field, suffix)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, rendered...)
	}
	return pairs, nil
}

func ordered(fields []Field) []Field {
	out := append([]Field(nil), fields...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Order, out[j].Order
		switch {
		case a > 0 && b > 0:
			return a < b
		case a > 0:
			return true
		default:
			return false
		}
	})
	return out
}

func isNil(value any) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return v.IsNil()
	default:
		return false
	}
}
