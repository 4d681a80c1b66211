package assets

import (
	"io"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/language"
	"golang.org/x/text/transform"
)

var lowerCaser = cases.Lower(language.Und)

// ReadTextLoose returns the lower-cased text of the first maxBytes of path.
// Byte order marks select UTF-16 decoding; anything else is read as UTF-8 with
// invalid sequences dropped. Read failures yield "".
func ReadTextLoose(path string, maxBytes int) string {
	if maxBytes <= 0 {
		maxBytes = DefaultClassifyMaxBytes
	}
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, int64(maxBytes)))
	if err != nil {
		return ""
	}
	return lowerCaser.String(DecodeLoose(data))
}

// DecodeLoose decodes data permissively. It never fails.
func DecodeLoose(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(decoder, data)
	if err != nil {
		out = data
	}
	text := strings.ToValidUTF8(string(out), "")
	return strings.ReplaceAll(text, "\uFFFD", "")
}
