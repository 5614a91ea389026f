package util

import (
	"fmt"
	"net/url"
	"strings"
)

// scheme://host[:port] of tmpUrl, "" if it has no host
func HandleHost(tmpUrl string) (host string) {
	tmpUrl2, err := url.Parse(tmpUrl)
	if err != nil {
		return
	}
	if tmpUrl2.Host == "" {
		return
	}
	return fmt.Sprintf("%s://%s", tmpUrl2.Scheme, tmpUrl2.Host)
}

func IsHttpUrl(tmpUrl string) bool {
	return strings.HasPrefix(tmpUrl, "http://") || strings.HasPrefix(tmpUrl, "https://")
}

// ChangeUrlPath resolves tmpPath against tmpUrl the way a browser would
func ChangeUrlPath(tmpUrl, tmpPath string) string {
	tmpPath = strings.TrimSpace(tmpPath)
	if tmpPath == "" {
		return tmpUrl
	}
	if IsHttpUrl(tmpPath) {
		return tmpPath
	}
	base, err := url.Parse(tmpUrl)
	if err != nil || base.Host == "" {
		return tmpPath
	}
	ref, err := url.Parse(tmpPath)
	if err != nil {
		return tmpPath
	}
	return base.ResolveReference(ref).String()
}

// LastPathSegment returns the last path element of tmpUrl without its query,
// e.g. the embed id of https://megacloud.tv/embed-2/e-1/AbCd?k=1
func LastPathSegment(tmpUrl string) string {
	if i := strings.IndexAny(tmpUrl, "?#"); i >= 0 {
		tmpUrl = tmpUrl[:i]
	}
	tmpUrl = strings.TrimRight(tmpUrl, "/")
	if i := strings.LastIndex(tmpUrl, "/"); i >= 0 {
		return tmpUrl[i+1:]
	}
	return tmpUrl
}

// HandleUrlToProxy routes tmpUrl through the /api/m3u8p endpoint of server
func HandleUrlToProxy(server, tmpUrl string) string {
	return fmt.Sprintf(
		"%s/api/m3u8p?q=%s",
		strings.TrimRight(server, "/"),
		url.QueryEscape(tmpUrl),
	)
}
