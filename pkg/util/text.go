package util

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// DecodeText tolerates the encoding quirks of files produced by Windows
// tooling: UTF-16 with either byte order mark, UTF-8 with or without a BOM,
// and a latin-1 fallback for anything that is not valid UTF-8.
func DecodeText(raw []byte) string {
	switch {
	case bytes.HasPrefix(raw, []byte{0xFF, 0xFE}):
		return decodeWith(raw, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM))
	case bytes.HasPrefix(raw, []byte{0xFE, 0xFF}):
		return decodeWith(raw, unicode.UTF16(unicode.BigEndian, unicode.UseBOM))
	case bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF}):
		return string(raw[3:])
	case utf8.Valid(raw):
		return string(raw)
	default:
		return decodeWith(raw, charmap.ISO8859_1)
	}
}

func decodeWith(raw []byte, enc encoding.Encoding) string {
	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(decoded)
}
