package controller

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lixiang4u/animeTV/service"
	"github.com/lixiang4u/animeTV/util"
	"github.com/pkg/errors"
	"github.com/zc310/headers"
)

type M3u8Controller struct {
	httpWrapper *util.HttpWrapper
}

func (x *M3u8Controller) Init() {
	if x.httpWrapper == nil {
		x.httpWrapper = service.Anime{}.NewHttpWrapper("")
	}
}

// q is a plain url, or base64 of {"q": url} for players that mangle query strings
func (x *M3u8Controller) handleQueryQ(q string) string {
	if !util.IsHttpUrl(q) {
		q = x.base64DecodingX(q)
	}
	return q
}

func (x *M3u8Controller) base64DecodingX(q string) string {
	buf, err := base64.StdEncoding.DecodeString(q)
	if err != nil {
		return ""
	}
	var m map[string]interface{}
	if err = json.Unmarshal(buf, &m); err != nil {
		return ""
	}
	if v, ok := m["q"].(string); ok {
		return v
	}
	return ""
}

// Proxy fetches q. Playlists come back with every URI absolute and routed
// through this endpoint again; anything else (segments, keys) is passed through.
func (x *M3u8Controller) Proxy(ctx *gin.Context) {
	var q = x.handleQueryQ(ctx.Query("q"))

	if !util.IsHttpUrl(q) {
		abortBadRequest(ctx, "q must be an http(s) url")
		return
	}
	ctx.Header("X-Original-Url", q)

	h, b, err := x.httpWrapper.GetResponse(q)
	if err != nil {
		abortWithError(ctx, errors.Wrap(err, "m3u8 proxy"))
		return
	}
	var contentType = strings.ToLower(http.Header(h).Get(headers.ContentType))

	if isPlaylist(contentType, b) {
		var server = requestServer(ctx)
		var playlist = util.HandleM3U8Contents(b, q, func(u string) string {
			return util.HandleUrlToProxy(server, u)
		})
		ctx.Header(headers.ContentDisposition, fmt.Sprintf("inline; filename=playlist%d.m3u8", time.Now().Unix()))
		ctx.Data(http.StatusOK, "application/vnd.apple.mpegurl", playlist)
		return
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	ctx.Data(http.StatusOK, contentType, b)
}

func isPlaylist(contentType string, b []byte) bool {
	switch strings.TrimSpace(strings.Split(contentType, ";")[0]) {
	case "application/vnd.apple.mpegurl",
		"application/apple.vnd.mpegurl",
		"application/x-mpegurl",
		"audio/x-mpegurl",
		"audio/mpegurl",
		"video/vnd.mpegurl":
		return true
	}
	// some cdns serve playlists as text/plain or octet-stream
	return bytes.HasPrefix(bytes.TrimSpace(b), []byte("#EXTM3U"))
}
