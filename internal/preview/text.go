package preview

import (
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
)

// snippetLimit is the number of characters kept for a text preview.
const snippetLimit = 100

// maxSnippetRead caps how much of the file is read before decoding.
// Generous enough that 100 characters survive any of the candidate
// multi-byte encodings.
const maxSnippetRead = 4096

// fallbackEncodings are tried in order after UTF-8. ISO 8859-1 maps
// every byte to a rune, so the chain as a whole cannot fail to decode.
var fallbackEncodings = []encoding.Encoding{
	simplifiedchinese.GBK,
	simplifiedchinese.GB18030,
	charmap.ISO8859_1,
}

// TextSnippet reads the beginning of the file at path and returns its
// first characters decoded with an encoding-fallback chain. Read or
// decode trouble yields an empty string, never an error.
func TextSnippet(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	buf := make([]byte, maxSnippetRead)
	n, err := f.Read(buf)
	if n <= 0 {
		return ""
	}
	data := buf[:n]
	if n == maxSnippetRead {
		data = trimPartialRune(data)
	}

	if utf8.Valid(data) {
		return truncateRunes(string(data), snippetLimit)
	}

	for _, enc := range fallbackEncodings {
		decoded, err := enc.NewDecoder().Bytes(data)
		if err != nil {
			continue
		}
		text := string(decoded)
		// Replacement runes mean the candidate did not really fit.
		if strings.ContainsRune(text, utf8.RuneError) {
			continue
		}
		return truncateRunes(text, snippetLimit)
	}
	return ""
}

// trimPartialRune drops bytes belonging to a multi-byte sequence cut
// off by the read limit.
func trimPartialRune(data []byte) []byte {
	for i := 0; i < utf8.UTFMax && len(data) > 0; i++ {
		r, size := utf8.DecodeLastRune(data)
		if r != utf8.RuneError || size != 1 {
			break
		}
		data = data[:len(data)-1]
	}
	return data
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
