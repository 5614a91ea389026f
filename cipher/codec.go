package cipher

import (
	"encoding/base64"
	"net/url"
	"strings"
	"unicode/utf8"
)

const upperHex = "0123456789ABCDEF"

// Base64Encode encodes text with the URL-safe alphabet and no padding.
// Every rune counts as one byte (its low 8 bits), not as UTF-8.
func Base64Encode(text string) string {
	buf := make([]byte, 0, len(text))
	for _, r := range text {
		buf = append(buf, byte(r))
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}

// Base64Decode reverses Base64Encode: each decoded byte becomes the rune
// with the same ordinal. Only canonical input is accepted: no line breaks,
// no padding, zero trailing bits.
func Base64Decode(text string) (string, error) {
	if strings.ContainsAny(text, "\r\n") {
		return "", NewError(ErrCodeCodec, "invalid url-safe base64", "line break in input")
	}
	buf, err := base64.RawURLEncoding.Strict().DecodeString(text)
	if err != nil {
		return "", NewError(ErrCodeCodec, "invalid url-safe base64", err.Error())
	}
	runes := make([]rune, len(buf))
	for i, b := range buf {
		runes[i] = rune(b)
	}
	return string(runes), nil
}

func shouldEscape(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return false
	case c == '-' || c == '_' || c == '.' || c == '~':
		return false
	}
	return true
}

// PercentEncode escapes every UTF-8 byte of text outside A-Z a-z 0-9 -_.~
// as %XX with upper-case hex.
func PercentEncode(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		if shouldEscape(c) {
			sb.WriteByte('%')
			sb.WriteByte(upperHex[c>>4])
			sb.WriteByte(upperHex[c&15])
			continue
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

// PercentDecode decodes %XX escapes. '+' is kept as is.
func PercentDecode(text string) (string, error) {
	out, err := url.PathUnescape(text)
	if err != nil {
		return "", NewError(ErrCodeCodec, "invalid percent-encoding", err.Error())
	}
	if !utf8.ValidString(out) {
		return "", NewError(ErrCodeCodec, "percent-decoded text is not valid utf-8")
	}
	return out, nil
}
