package audio

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"framesmith/internal/language"
	"framesmith/internal/media"
)

// Selection is the single audio track a transcode keeps.
type Selection struct {
	// Primary is nil when the source has no audio.
	Primary *media.AudioStreamInfo
	// Dropped lists the other audio stream indices in ascending order.
	Dropped []int
}

// Index returns the source index of the chosen track, or -1.
func (s Selection) Index() int {
	if s.Primary == nil {
		return -1
	}
	return s.Primary.Index
}

// Label summarizes the chosen track, e.g. "English | truehd | 8ch | Atmos".
func (s Selection) Label() string {
	if s.Primary == nil {
		return ""
	}
	stream := s.Primary
	var parts []string
	if stream.Language != "" {
		parts = append(parts, language.DisplayName(stream.Language))
	}
	if codec := stream.CodecName; codec != "" {
		if stream.Profile != "" {
			codec += " (" + stream.Profile + ")"
		}
		parts = append(parts, codec)
	}
	if ch := Channels(stream); ch > 0 {
		parts = append(parts, strconv.Itoa(ch)+"ch")
	}
	if title := strings.TrimSpace(stream.Title); title != "" {
		parts = append(parts, title)
	}
	if len(parts) == 0 {
		return "audio"
	}
	return strings.Join(parts, " | ")
}

// Select picks one track in the preferred language ("" means English),
// falling back to the first track when none matches. Within the language,
// more channels win, then lossless over lossy, then the default flag, then
// source order.
func Select(streams []*media.AudioStreamInfo, preferred string) Selection {
	tracks := slices.DeleteFunc(slices.Clone(streams), func(s *media.AudioStreamInfo) bool { return s == nil })
	if len(tracks) == 0 {
		return Selection{}
	}

	want := language.ToISO2(preferred)
	if want == "" {
		want = "en"
	}
	pool := slices.DeleteFunc(slices.Clone(tracks), func(s *media.AudioStreamInfo) bool {
		return language.ToISO2(s.Language) != want
	})
	if len(pool) == 0 {
		pool = tracks[:1]
	}
	// Stable sort keeps source order among equal ranks.
	slices.SortStableFunc(pool, func(a, b *media.AudioStreamInfo) int {
		return compareRank(b, a)
	})

	sel := Selection{Primary: pool[0]}
	for _, s := range tracks {
		if s != sel.Primary {
			sel.Dropped = append(sel.Dropped, s.Index)
		}
	}
	slices.Sort(sel.Dropped)
	return sel
}

func compareRank(a, b *media.AudioStreamInfo) int {
	if c := cmp.Compare(channelTier(Channels(a)), channelTier(Channels(b))); c != 0 {
		return c
	}
	if c := compareBool(Lossless(a), Lossless(b)); c != 0 {
		return c
	}
	return compareBool(a.Default, b.Default)
}

// channelTier groups counts so that 7 and 8 channels rank alike.
func channelTier(channels int) int {
	switch {
	case channels >= 7:
		return 4
	case channels >= 6:
		return 3
	case channels >= 4:
		return 2
	case channels >= 2:
		return 1
	default:
		return 0
	}
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return 1
	default:
		return -1
	}
}

var namedLayouts = map[string]int{
	"mono":   1,
	"stereo": 2,
	"quad":   4,
}

// Channels returns the stream's channel count, reading the layout name
// ("5.1(side)", "stereo") when ffprobe reported no count.
func Channels(stream *media.AudioStreamInfo) int {
	if stream.Channels > 0 {
		return stream.Channels
	}
	layout := strings.ToLower(strings.TrimSpace(stream.ChannelLayout))
	if n, ok := namedLayouts[layout]; ok {
		return n
	}
	if paren := strings.IndexByte(layout, '('); paren >= 0 {
		layout = layout[:paren]
	}
	total := 0
	for _, part := range strings.Split(layout, ".") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return 0
		}
		total += n
	}
	return total
}

var losslessCodecs = []string{
	"alac", "flac", "mlp", "truehd",
	"pcm_bluray", "pcm_s16be", "pcm_s16le", "pcm_s24be", "pcm_s24le", "pcm_s32le",
}

// Lossless reports whether the stream carries lossless audio.
func Lossless(stream *media.AudioStreamInfo) bool {
	if slices.Contains(losslessCodecs, strings.ToLower(stream.CodecName)) {
		return true
	}
	profile := strings.ToLower(stream.Profile)
	return strings.Contains(profile, "dts-hd ma") || strings.Contains(profile, "lossless")
}
