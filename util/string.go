package util

import (
	"regexp"
	"strconv"
	"strings"
)

// StringToInt parses s, 0 on error
func StringToInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// FindGroup returns the first capture group of re in s
func FindGroup(re *regexp.Regexp, s string) (string, bool) {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return "", false
	}
	return m[1], true
}
