package cmdargs

import (
	"strconv"
	"strings"

	"framesmith/internal/media"
)

// CodecOption is one encoder option rendered as "-key value".
type CodecOption struct {
	Key   string
	Value string
}

// Codec is an encoder name plus ordered options.
type Codec struct {
	Name    string
	Options []CodecOption
}

// With returns a copy of c with an extra option appended.
func (c *Codec) With(key, value string) *Codec {
	out := &Codec{Name: c.Name, Options: append(append([]CodecOption(nil), c.Options...), CodecOption{Key: key, Value: value})}
	return out
}

// Option looks up an option value by key.
func (c *Codec) Option(key string) (string, bool) {
	if c == nil {
		return "", false
	}
	for _, opt := range c.Options {
		if opt.Key == key {
			return opt.Value, true
		}
	}
	return "", false
}

// MappedStream is one output stream: the input it reads (a source specifier
// such as "0:1" or a filter graph label such as "[vout]") plus its encoding
// options. Options are suffixed with the per-type stream specifier.
type MappedStream struct {
	Input    string
	Type     media.StreamType
	Codec    *Codec
	Bitrate  string
	Channels int
}

// Fields implements Schema for the per-stream options.
func (m MappedStream) Fields() []Field {
	fields := []Field{
		{Name: "-c", Order: 1, Kind: KindCodec, Value: m.Codec},
	}
	if m.Bitrate != "" {
		fields = append(fields, Field{Name: "-b", Order: 2, Kind: KindScalar, Value: m.Bitrate})
	}
	if m.Channels > 0 {
		fields = append(fields, Field{Name: "-ac", Order: 3, Kind: KindScalar, Value: m.Channels})
	}
	return fields
}

// SourceInput returns the "-map" input for a stream of input file 0.
func SourceInput(index int) string {
	return "0:" + strconv.Itoa(index)
}

// FilterOption is one filter parameter. An empty Name renders positionally.
type FilterOption struct {
	Name  string
	Value string
}

// Filter is one stage of a filter graph. ChainToPrevious separates the stage
// from its predecessor with ';' so it starts a new chain that consumes labeled
// outputs; otherwise stages are joined with ','.
type Filter struct {
	Name            string
	Options         []FilterOption
	Inputs          []string
	Outputs         []string
	ChainToPrevious bool
	literal         string
}

// NewFilter builds a filter from positional option values.
func NewFilter(name string, positional ...string) Filter {
	f := Filter{Name: name}
	for _, value := range positional {
		f.Options = append(f.Options, FilterOption{Value: value})
	}
	return f
}

// CustomFilter wraps a pre-formatted filter string that is emitted verbatim.
func CustomFilter(literal string) Filter {
	return Filter{literal: strings.TrimSpace(literal)}
}

// Literal returns the pre-formatted text of a custom filter.
func (f Filter) Literal() string {
	return f.literal
}

// String renders the stage with its labels.
func (f Filter) String() string {
	var b strings.Builder
	for _, label := range f.Inputs {
		b.WriteString("[" + label + "]")
	}
	if f.literal != "" {
		b.WriteString(f.literal)
	} else {
		b.WriteString(f.Name)
		for i, opt := range f.Options {
			if i == 0 {
				b.WriteString("=")
			} else {
				b.WriteString(":")
			}
			if opt.Name != "" {
				b.WriteString(opt.Name + "=")
			}
			b.WriteString(opt.Value)
		}
	}
	for _, label := range f.Outputs {
		b.WriteString("[" + label + "]")
	}
	return b.String()
}

// Graph joins filter stages into one filter graph description.
func Graph(filters []Filter) string {
	var b strings.Builder
	for i, f := range filters {
		if i > 0 {
			if f.ChainToPrevious {
				b.WriteString(";")
			} else {
				b.WriteString(",")
			}
		}
		b.WriteString(f.String())
	}
	return b.String()
}

// Labeled reports whether any stage uses link labels, which requires a
// complex filter graph.
func Labeled(filters []Filter) bool {
	for _, f := range filters {
		if len(f.Inputs) > 0 || len(f.Outputs) > 0 {
			return true
		}
	}
	return false
}
