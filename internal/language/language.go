// Package language canonicalizes subtitle language tags to the ISO 639-2
// three-letter form expected by container metadata.
package language

import (
	"strings"

	xlang "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Default is used when no language is supplied.
const Default = "eng"

// Normalize expands two-letter and BCP 47 codes to ISO 639-2 ("en" -> "eng",
// "es-MX" -> "spa"). Three-letter codes are already ISO 639-2 and are kept as
// given, so bibliographic forms like "ger" or "fre" survive. Unrecognized
// input is returned trimmed and lower-cased.
func Normalize(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return Default
	}
	if isAlpha3(code) {
		return code
	}
	tag, err := xlang.Parse(code)
	if err != nil {
		return code
	}
	base, conf := tag.Base()
	if conf == xlang.No {
		return code
	}
	iso3 := base.ISO3()
	if iso3 == "" || iso3 == "und" {
		return code
	}
	return iso3
}

func isAlpha3(s string) bool {
	if len(s) != 3 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'a' || s[i] > 'z' {
			return false
		}
	}
	return true
}

// DisplayName returns an English name for the language ("spa" -> "Spanish").
// Unknown codes are returned upper-cased; empty input yields "Unknown".
func DisplayName(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return "Unknown"
	}
	tag, err := xlang.Parse(code)
	if err == nil {
		if name := display.English.Tags().Name(tag); name != "" {
			return name
		}
	}
	return strings.ToUpper(code)
}
