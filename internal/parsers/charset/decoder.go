package charset

import (
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Encoding represents a text encoding
type Encoding string

const (
	EncodingUTF8        Encoding = "utf-8"
	EncodingWindows1251 Encoding = "windows-1251"
)

// DetectEncoding detects the encoding of a byte buffer. Vendor 1C exports are
// either UTF-8 or windows-1251; anything that is not valid UTF-8 is treated as
// windows-1251.
func DetectEncoding(data []byte) Encoding {
	// Check for UTF-8 BOM
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return EncodingUTF8
	}

	if utf8.Valid(data) {
		return EncodingUTF8
	}

	return EncodingWindows1251
}

// Decode converts a byte buffer from the specified encoding to a UTF-8 string.
// Data that is already valid UTF-8 is returned as-is regardless of the
// requested encoding, so a feed whose declaration lies about its encoding does
// not get double-decoded.
func Decode(data []byte, enc Encoding) (string, error) {
	// Strip UTF-8 BOM
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		data = data[3:]
	}

	if utf8.Valid(data) {
		return string(data), nil
	}

	switch normalize(enc) {
	case EncodingWindows1251, "":
		return decodeWindows1251(data)
	default:
		return string(data), nil
	}
}

// normalize maps encoding aliases onto the canonical names
func normalize(enc Encoding) Encoding {
	switch strings.ToLower(string(enc)) {
	case "windows-1251", "cp1251", "win-1251":
		return EncodingWindows1251
	case "utf-8", "utf8":
		return EncodingUTF8
	}
	return enc
}

func decodeWindows1251(data []byte) (string, error) {
	decoder := charmap.Windows1251.NewDecoder()
	reader := transform.NewReader(strings.NewReader(string(data)), decoder)
	result, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	return string(result), nil
}
