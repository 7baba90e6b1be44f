package cmdargs

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"framesmith/internal/media"
	"framesmith/internal/services"
)

const component = "cmdargs"

var metadataKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_.:-]+$`)

func convert(field Field, suffix string) ([]Pair, error) {
	name := field.Name
	if name != "" && suffix != "" {
		name += suffix
	}
	switch field.Kind {
	case KindScalar:
		value, err := scalarText(field)
		if err != nil {
			return nil, err
		}
		return []Pair{{Name: name, Value: value}}, nil
	case KindFlag:
		on, ok := field.Value.(bool)
		if !ok {
			return nil, unsupported(field)
		}
		if !on {
			return nil, nil
		}
		return []Pair{{Name: name}}, nil
	case KindBinary:
		on, ok := field.Value.(bool)
		if !ok {
			return nil, services.Wrap(services.ErrTypeMismatch, component, field.Name,
				fmt.Sprintf("binary value must be bool, got %T", field.Value), nil)
		}
		value := "0"
		if on {
			value = "1"
		}
		return []Pair{{Name: name, Value: value}}, nil
	case KindDuration:
		d, ok := field.Value.(time.Duration)
		if !ok || d < 0 {
			return nil, unsupported(field)
		}
		return []Pair{{Name: name, Value: FormatDuration(d)}}, nil
	case KindCodec:
		return convertCodec(field, name, suffix)
	case KindFilters:
		return convertFilters(field)
	case KindStreams:
		return convertStreams(field)
	case KindMetadata:
		return convertMetadata(field, name)
	case KindPath:
		path, ok := field.Value.(string)
		if !ok {
			return nil, unsupported(field)
		}
		return []Pair{{Name: name, Value: Quote(path)}}, nil
	default:
		return nil, unsupported(field)
	}
}

func scalarText(field Field) (string, error) {
	switch v := field.Value.(type) {
	case string:
		return v, nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case uint:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	case bool:
		return strconv.FormatBool(v), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return "", unsupported(field)
	}
}

func convertCodec(field Field, name, suffix string) ([]Pair, error) {
	codec, ok := field.Value.(*Codec)
	if !ok {
		return nil, unsupported(field)
	}
	if strings.TrimSpace(codec.Name) == "" {
		return nil, services.Wrap(services.ErrUnsupportedValue, component, field.Name, "codec name is empty", nil)
	}
	var b strings.Builder
	b.WriteString(codec.Name)
	for _, opt := range codec.Options {
		b.WriteString(" -")
		b.WriteString(opt.Key)
		b.WriteString(suffix)
		if opt.Value != "" {
			b.WriteString(" ")
			b.WriteString(Quote(opt.Value))
		}
	}
	return []Pair{{Name: name, Value: b.String()}}, nil
}

func convertFilters(field Field) ([]Pair, error) {
	filters, ok := field.Value.([]Filter)
	if !ok {
		return nil, unsupported(field)
	}
	if len(filters) == 0 {
		return nil, nil
	}
	name := field.Name
	if name == "" {
		name = "-vf"
	}
	if Labeled(filters) {
		name = "-filter_complex"
	}
	return []Pair{{Name: name, Value: Quote(Graph(filters))}}, nil
}

func convertStreams(field Field) ([]Pair, error) {
	streams, ok := field.Value.([]MappedStream)
	if !ok {
		return nil, unsupported(field)
	}
	counters := make(map[media.StreamType]int, 4)
	var pairs []Pair
	for _, stream := range streams {
		if strings.TrimSpace(stream.Input) == "" {
			return nil, services.Wrap(services.ErrUnsupportedValue, component, "-map", "mapped stream has no input", nil)
		}
		index := counters[stream.Type]
		counters[stream.Type] = index + 1
		pairs = append(pairs, Pair{Name: "-map", Value: Quote(stream.Input)})
		nested, err := serialize(stream, Specifier(stream.Type, index))
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, nested...)
	}
	return pairs, nil
}

func convertMetadata(field Field, name string) ([]Pair, error) {
	entries, ok := field.Value.(map[string]string)
	if !ok {
		return nil, unsupported(field)
	}
	if name == "" {
		name = "-metadata"
	}
	keys := make([]string, 0, len(entries))
	for key := range entries {
		if !metadataKeyPattern.MatchString(key) {
			return nil, services.Wrap(services.ErrUnsupportedValue, component, name, fmt.Sprintf("invalid metadata key %q", key), nil)
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	pairs := make([]Pair, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, Pair{Name: name, Value: key + "=" + QuoteDouble(entries[key])})
	}
	return pairs, nil
}

// Specifier returns the per-type stream specifier suffix, e.g. ":v:0".
func Specifier(kind media.StreamType, index int) string {
	letter := "d"
	switch kind {
	case media.StreamVideo:
		letter = "v"
	case media.StreamAudio:
		letter = "a"
	case media.StreamSubtitle:
		letter = "s"
	}
	return ":" + letter + ":" + strconv.Itoa(index)
}

// FormatDuration renders d as [HH:]MM:SS[.mmm]. Hours appear only when
// non-zero and milliseconds only when the value has a sub-second part.
func FormatDuration(d time.Duration) string {
	total := d.Milliseconds()
	ms := total % 1000
	secs := total / 1000
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	var out string
	if h > 0 {
		out = fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	} else {
		out = fmt.Sprintf("%02d:%02d", m, s)
	}
	if ms > 0 {
		out += fmt.Sprintf(".%03d", ms)
	}
	return out
}

func unsupported(field Field) error {
	return services.Wrap(services.ErrUnsupportedValue, component, field.Name,
		fmt.Sprintf("%s converter cannot handle %T", field.Kind, field.Value), nil)
}
