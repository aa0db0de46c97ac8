package core

// streaming.go decodes CSV input of unknown encoding into UTF-8.
//
// Spreadsheets saved as CSV on Windows in Brazil are usually Windows-1252,
// while exports from web tools are UTF-8 with or without a BOM. The decoder
// picks a transform from a charset guess and streams the input through it,
// so invalid sequences become U+FFFD rather than errors.

import (
	"bytes"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// sniffSize is how many leading bytes feed chardet.
const sniffSize = 4096

// detectEncoding guesses the encoding of data from its first bytes.
// Valid UTF-8 is taken at face value; otherwise chardet picks among the
// single-byte Latin encodings, defaulting to Windows-1252.
func detectEncoding(data []byte) encoding.Encoding {
	if bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) {
		return unicode.UTF8BOM
	}
	if utf8.Valid(data) {
		return unicode.UTF8
	}

	sample := data
	if len(sample) > sniffSize {
		sample = sample[:sniffSize]
	}

	result, err := chardet.NewTextDetector().DetectBest(sample)
	if err != nil || result == nil {
		return charmap.Windows1252
	}

	switch strings.ToUpper(result.Charset) {
	case "ISO-8859-15":
		return charmap.ISO8859_15
	case "UTF-16LE":
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	case "UTF-16BE":
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
	default:
		return charmap.Windows1252
	}
}

// DecodeText wraps data in a reader that yields UTF-8.
func DecodeText(data []byte) io.Reader {
	enc := detectEncoding(data)
	// BOMOverride honours any BOM present regardless of the guess.
	decoder := unicode.BOMOverride(enc.NewDecoder())
	return transform.NewReader(bytes.NewReader(data), decoder)
}
