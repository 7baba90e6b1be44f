package cmdargs

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"framesmith/internal/media"
	"framesmith/internal/services"
)

type fieldList []Field

func (f fieldList) Fields() []Field { return f }

func TestSerializeOrdersExplicitFieldsFirst(t *testing.T) {
	schema := fieldList{
		{Name: "-late", Kind: KindScalar, Value: "a"},
		{Name: "-second", Order: 2, Kind: KindScalar, Value: "b"},
		{Name: "-later", Kind: KindScalar, Value: "c"},
		{Name: "-first", Order: 1, Kind: KindScalar, Value: "d"},
	}
	got, err := Render(schema)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if want := "-first d -second b -late a -later c"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestSerializeOmitsNilAndIgnoredFields(t *testing.T) {
	var codec *Codec
	var filters []Filter
	schema := fieldList{
		{Name: "-a", Kind: KindScalar, Value: nil},
		{Name: "-c", Kind: KindCodec, Value: codec},
		{Name: "-vf", Kind: KindFilters, Value: filters},
		{Name: "-skip", Kind: KindScalar, Value: "x", Ignore: true},
		{Name: "-keep", Kind: KindScalar, Value: ""},
	}
	got, err := Render(schema)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "-keep" {
		t.Fatalf("expected only -keep, got %q", got)
	}
}

func TestScalarFormatting(t *testing.T) {
	schema := fieldList{
		{Name: "-q", Kind: KindScalar, Value: 0.5},
		{Name: "-n", Kind: KindScalar, Value: int64(12)},
		{Name: "-s", Kind: KindScalar, Value: media.ContainerMkv},
		{Name: "", Kind: KindScalar, Value: "positional"},
	}
	got, err := Render(schema)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if want := "-q 0.5 -n 12 -s mkv positional"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestFlagAndBinary(t *testing.T) {
	got, err := Render(fieldList{
		{Name: "-y", Kind: KindFlag, Value: true},
		{Name: "-nostdin", Kind: KindFlag, Value: false},
		{Name: "-update", Kind: KindBinary, Value: true},
		{Name: "-shortest", Kind: KindBinary, Value: false},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if want := "-y -update 1 -shortest 0"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestBinaryRejectsNonBoolean(t *testing.T) {
	_, err := Render(fieldList{{Name: "-update", Kind: KindBinary, Value: 1}})
	if !errors.Is(err, services.ErrTypeMismatch) {
		t.Fatalf("expected type mismatch, got %v", err)
	}
}

func TestConverterRejectsWrongType(t *testing.T) {
	cases := []Field{
		{Name: "-c", Kind: KindCodec, Value: "libx264"},
		{Name: "-vf", Kind: KindFilters, Value: "scale=1:1"},
		{Name: "-ss", Kind: KindDuration, Value: 5},
		{Name: "-i", Kind: KindPath, Value: 3},
		{Name: "-x", Kind: KindScalar, Value: struct{}{}},
		{Name: "-x", Kind: Kind(99), Value: "x"},
	}
	for _, field := range cases {
		if _, err := Render(fieldList{field}); !errors.Is(err, services.ErrUnsupportedValue) {
			t.Fatalf("expected unsupported value for %s, got %v", field.Kind, err)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	cases := map[time.Duration]string{
		0:                "00:00",
		90 * time.Second: "01:30",
		time.Hour + 2*time.Minute + 3*time.Second + 500*time.Millisecond: "01:02:03.500",
		15 * time.Minute:                    "15:00",
		45*time.Minute + 7*time.Millisecond: "45:00.007",
	}
	for in, want := range cases {
		if got := FormatDuration(in); got != want {
			t.Fatalf("FormatDuration(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestStreamsUseRunningIndexPerType(t *testing.T) {
	streams := []MappedStream{
		{Input: "0:0", Type: media.StreamVideo, Codec: &Codec{Name: "libx265", Options: []CodecOption{{Key: "crf", Value: "20"}}}},
		{Input: "0:1", Type: media.StreamAudio, Codec: &Codec{Name: "aac"}, Bitrate: "192k", Channels: 2},
		{Input: "0:2", Type: media.StreamAudio, Codec: &Codec{Name: "copy"}},
		{Input: "0:3", Type: media.StreamSubtitle, Codec: &Codec{Name: "copy"}},
	}
	got, err := Render(fieldList{{Name: "-map", Kind: KindStreams, Value: streams}})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "-map 0:0 -c:v:0 libx265 -crf:v:0 20 " +
		"-map 0:1 -c:a:0 aac -b:a:0 192k -ac:a:0 2 " +
		"-map 0:2 -c:a:1 copy " +
		"-map 0:3 -c:s:0 copy"
	if got != want {
		t.Fatalf("expected\n%q\ngot\n%q", want, got)
	}
}

func TestFilterGraphSeparators(t *testing.T) {
	filters := []Filter{
		NewFilter("crop", "1920", "800", "0", "140"),
		NewFilter("setsar", "1:1"),
		{Name: "null", ChainToPrevious: true},
	}
	if got, want := Graph(filters), "crop=1920:800:0:140,setsar=1:1;null"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	pairs, err := Serialize(fieldList{{Name: "-vf", Kind: KindFilters, Value: filters[:2]}})
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	if len(pairs) != 1 || pairs[0].Name != "-vf" {
		t.Fatalf("expected a single -vf pair, got %+v", pairs)
	}
}

func TestLabeledGraphUsesFilterComplex(t *testing.T) {
	filters := []Filter{
		{Name: "scale2ref", Inputs: []string{"0:2", "0:0"}, Outputs: []string{"sub", "ref"}},
		{Name: "overlay", Inputs: []string{"ref", "sub"}, ChainToPrevious: true},
		{Name: "setsar", Options: []FilterOption{{Value: "1:1"}}, Outputs: []string{"vout"}},
	}
	line, err := Render(fieldList{{Name: "-vf", Kind: KindFilters, Value: filters}})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	argv, err := Split(line)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	want := []string{"-filter_complex", "[0:2][0:0]scale2ref[sub][ref];[ref][sub]overlay,setsar=1:1[vout]"}
	if !reflect.DeepEqual(argv, want) {
		t.Fatalf("expected %q, got %q", want, argv)
	}
}

func TestCustomFilterIsVerbatim(t *testing.T) {
	filters := []Filter{NewFilter("scale", "1280", "720"), CustomFilter(" nlmeans=s=3 ")}
	if got, want := Graph(filters), "scale=1280:720,nlmeans=s=3"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestNamedFilterOptions(t *testing.T) {
	f := Filter{Name: "zscale", Options: []FilterOption{{Name: "t", Value: "linear"}, {Name: "npl", Value: "100"}}}
	if got, want := f.String(), "zscale=t=linear:npl=100"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestMetadataIsSortedAndEscaped(t *testing.T) {
	line, err := Render(fieldList{{Name: "-metadata", Kind: KindMetadata, Value: map[string]string{
		"title":   `Say "hi" $HOME`,
		"comment": "plain",
	}}})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := `-metadata comment="plain" -metadata title="Say \"hi\" \$HOME"`
	if line != want {
		t.Fatalf("expected %q, got %q", want, line)
	}
	argv, err := Split(line)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if argv[3] != `title=Say "hi" $HOME` {
		t.Fatalf("unexpected round trip %q", argv[3])
	}
}

func TestMetadataRejectsBadKeys(t *testing.T) {
	_, err := Render(fieldList{{Name: "-metadata", Kind: KindMetadata, Value: map[string]string{"bad key": "x"}}})
	if !errors.Is(err, services.ErrUnsupportedValue) {
		t.Fatalf("expected unsupported value, got %v", err)
	}
}

func TestPathIsShellEscaped(t *testing.T) {
	line, err := Render(fieldList{{Name: "-i", Kind: KindPath, Value: "/media/My Movie's Cut.mkv"}})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	argv, err := Split(line)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if !reflect.DeepEqual(argv, []string{"-i", "/media/My Movie's Cut.mkv"}) {
		t.Fatalf("unexpected argv %q", argv)
	}
	if got := Quote("/plain/path.mkv"); got != "/plain/path.mkv" {
		t.Fatalf("expected plain path unchanged, got %q", got)
	}
}

func TestPairStringJoining(t *testing.T) {
	if got := (Pair{Name: "-y"}).String(); got != "-y" {
		t.Fatalf("unexpected %q", got)
	}
	if got := (Pair{Value: "out.mkv"}).String(); got != "out.mkv" {
		t.Fatalf("unexpected %q", got)
	}
	if got := Join([]Pair{{Name: "-a", Value: "1"}, {}, {Name: "-b"}}); got != "-a 1 -b" {
		t.Fatalf("unexpected %q", got)
	}
}
