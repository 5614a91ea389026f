package cipher

import (
	"unicode/utf16"
)

// RC4 runs the sites' RC4 variant over data. The key schedule and the XOR
// work on UTF-16 code units; each output unit is truncated to a byte and
// widened back, so every rune of the result is in 0..255.
//
// Applying RC4 twice with the same key restores data only when every input
// unit is <= 0xFF, which is what the source pipelines rely on.
func RC4(key, data string) (string, error) {
	k := utf16.Encode([]rune(key))
	if len(k) == 0 {
		return "", NewError(ErrCodeInvalidKey, "rc4 key is empty")
	}

	var s [256]byte
	for i := range s {
		s[i] = byte(i)
	}
	j := 0
	for i := 0; i < 256; i++ {
		j = (j + int(s[i]) + int(k[i%len(k)])) % 256
		s[i], s[j] = s[j], s[i]
	}

	units := utf16.Encode([]rune(data))
	out := make([]uint16, len(units))
	i, j := 0, 0
	for n, u := range units {
		i = (i + 1) % 256
		j = (j + int(s[i])) % 256
		s[i], s[j] = s[j], s[i]
		ks := s[(int(s[i])+int(s[j]))%256]
		out[n] = uint16(byte(u ^ uint16(ks)))
	}

	return string(utf16.Decode(out)), nil
}
