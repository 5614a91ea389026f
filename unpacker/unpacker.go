// Package unpacker reverses Dean Edwards style p.a.c.k.e.r scripts, the
// eval(function(p,a,c,k,e,d){...}) wrapper some embed pages ship their
// player setup in.
package unpacker

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"
)

const charset = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ+/"

// with and without the trailing e,d arguments
var argPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?s)}\('(.*)', *(\d+), *(\d+), *'(.*)'\.split\('\|'\), *(\d+), *(.*)\)\)`),
	regexp.MustCompile(`(?s)}\('(.*)', *(\d+), *(\d+), *'(.*)'\.split\('\|'\)`),
}

type packedArgs struct {
	payload string
	radix   int
	count   int
	symtab  []string
}

// Detect reports whether script looks like packer output
func Detect(script string) bool {
	return strings.Contains(strings.ReplaceAll(script, " ", ""), "eval(function(p,a,c,k,e,")
}

// Unpack restores the payload of the first packed call in script. ok is false
// when no packed call is found; callers fall back to other extraction.
func Unpack(script string) (string, bool) {
	args, ok := filterArgs(script)
	if !ok {
		return "", false
	}
	return unpack(args), true
}

func filterArgs(script string) (packedArgs, bool) {
	for _, re := range argPatterns {
		m := re.FindStringSubmatch(script)
		if m == nil {
			continue
		}
		radix, err := strconv.Atoi(m[2])
		if err != nil || radix < 2 || radix > len(charset) {
			return packedArgs{}, false
		}
		count, err := strconv.Atoi(m[3])
		if err != nil {
			return packedArgs{}, false
		}
		return packedArgs{
			payload: m[1],
			radix:   radix,
			count:   count,
			symtab:  strings.Split(m[4], "|"),
		}, true
	}
	return packedArgs{}, false
}

// highest index first: a low token can be a substring of a higher one's digits
func unpack(args packedArgs) string {
	p := args.payload
	for i := args.count - 1; i >= 0; i-- {
		if i >= len(args.symtab) || args.symtab[i] == "" {
			continue
		}
		p = replaceWord(p, int2base(i, args.radix), args.symtab[i])
	}
	return p
}

// replaceWord replaces whole-word occurrences of token. regexp2's \b treats
// Unicode letters as word characters, so a token glued to "é" or "日" is
// left alone; stdlib regexp's \b only knows ASCII.
func replaceWord(p, token, repl string) string {
	re := regexp2.MustCompile(`\b`+regexp2.Escape(token)+`\b`, regexp2.None)
	out, err := re.ReplaceFunc(p, func(regexp2.Match) string { return repl }, -1, -1)
	if err != nil {
		return p
	}
	return out
}

func int2base(x, base int) string {
	if x == 0 {
		return "0"
	}
	neg := x < 0
	if neg {
		x = -x
	}
	var digits []byte
	for x != 0 {
		digits = append(digits, charset[x%base])
		x /= base
	}
	if neg {
		digits = append(digits, '-')
	}
	for i, j := 0, len(digits)-1; i < j; i, j = i+1, j-1 {
		digits[i], digits[j] = digits[j], digits[i]
	}
	return string(digits)
}
