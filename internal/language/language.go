package language

import (
	"strings"

	xlanguage "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// bibliographic maps ISO 639-2/B codes, which Matroska muxers still write, to
// the terminology codes CLDR knows.
var bibliographic = map[string]string{
	"alb": "sqi", "arm": "hye", "baq": "eus", "bur": "mya", "chi": "zho",
	"cze": "ces", "dut": "nld", "fre": "fra", "geo": "kat", "ger": "deu",
	"gre": "ell", "ice": "isl", "mac": "mkd", "may": "msa", "per": "fas",
	"rum": "ron", "slo": "slk", "tib": "bod", "wel": "cym",
}

// namedBases are the languages whose English names are accepted as input
// ("english", "French").
var namedBases = []string{
	"ar", "cs", "da", "de", "el", "en", "es", "fi", "fr", "he", "hi", "hu",
	"id", "it", "ja", "ko", "nl", "no", "pl", "pt", "ro", "ru", "sv", "th",
	"tr", "uk", "vi", "zh",
}

// macrolanguageNames overrides CLDR, which names Norwegian after its Bokmål
// written standard.
var macrolanguageNames = map[string]string{"no": "Norwegian"}

var byName = func() map[string]xlanguage.Base {
	out := make(map[string]xlanguage.Base, len(namedBases))
	for _, code := range namedBases {
		base := xlanguage.MustParseBase(code)
		out[strings.ToLower(englishName(base))] = base
	}
	return out
}()

func englishName(base xlanguage.Base) string {
	if name, ok := macrolanguageNames[base.String()]; ok {
		return name
	}
	return display.English.Languages().Name(base)
}

// resolve finds the base language for a 2- or 3-letter code, an IETF tag or
// an English language name.
func resolve(code string) (xlanguage.Base, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" || code == "und" {
		return xlanguage.Base{}, false
	}
	if term, ok := bibliographic[code]; ok {
		code = term
	}
	switch {
	case len(code) == 2 || len(code) == 3:
		if base, err := xlanguage.ParseBase(code); err == nil {
			return base, true
		}
	case strings.ContainsAny(code, "-_"):
		if tag, err := xlanguage.Parse(code); err == nil {
			if base, conf := tag.Base(); conf != xlanguage.No && base.String() != "und" {
				return base, true
			}
		}
	}
	base, ok := byName[code]
	return base, ok
}

// ToISO2 converts a language code or English name to ISO 639-1. Unknown
// 2-letter codes pass through; anything else without a 2-letter form yields
// "".
func ToISO2(code string) string {
	if base, ok := resolve(code); ok {
		if s := base.String(); len(s) == 2 {
			return s
		}
		return ""
	}
	code = strings.ToLower(strings.TrimSpace(code))
	if len(code) == 2 {
		return code
	}
	return ""
}

// ToISO3 converts a language code or English name to ISO 639-2/T. Unknown
// 3-letter codes pass through; other unknown input yields "und".
func ToISO3(code string) string {
	if base, ok := resolve(code); ok {
		return base.ISO3()
	}
	code = strings.ToLower(strings.TrimSpace(code))
	if len(code) == 3 {
		return code
	}
	return "und"
}

// DisplayName returns the English name of a language. Empty input is
// "Unknown"; unrecognized codes come back uppercased.
func DisplayName(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return "Unknown"
	}
	if base, ok := resolve(code); ok {
		if name := englishName(base); name != "" {
			return name
		}
	}
	return strings.ToUpper(code)
}

// ExtractFromTags returns the lowercased language recorded in ffprobe stream
// tags, or "" when none is set.
func ExtractFromTags(tags map[string]string) string {
	for _, key := range []string{"language", "LANGUAGE", "Language", "language_ietf", "lang", "LANG"} {
		value := strings.TrimSpace(strings.ReplaceAll(tags[key], "\x00", ""))
		if value != "" {
			return strings.ToLower(value)
		}
	}
	return ""
}
