package util

import (
	"encoding/json"
	"net/url"
	"strings"
)

func ToJSON(data interface{}, pretty bool) string {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(data, "", "\t")
	} else {
		b, err = json.Marshal(data)
	}
	if err != nil {
		return ""
	}
	return string(b)
}

// hls for anything that looks like a playlist, auto otherwise
func GuessVideoType(tmpUrl string) string {
	var p = tmpUrl
	if u, err := url.Parse(tmpUrl); err == nil {
		p = u.Path
	}
	p = strings.ToLower(p)
	if strings.HasSuffix(p, ".m3u8") || strings.Contains(p, "m3u8") {
		return "hls"
	}
	return "auto"
}
