package controller

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lixiang4u/animeTV/model"
	"github.com/lixiang4u/animeTV/service"
	"github.com/lixiang4u/animeTV/util"
)

type AnimeController struct {
	// Provider resolves the _source query value, service.GetProvider when nil
	Provider func(name string, anime service.Anime) (service.IAnimeApi, error)
	// Skip answers /api/anime/skip, built from config when nil
	Skip *service.AniSkip
}

// 解析缓存变量
func handleCache(cacheStr string) bool {
	cacheStr = strings.ToLower(cacheStr)
	if cacheStr == "" {
		return false
	}
	// 兼容前段配置值
	switch cacheStr {
	case "open":
		return true
	case "close":
		return false
	}

	isCache, err := strconv.ParseBool(cacheStr)
	if err != nil {
		return true
	}
	return isCache
}

func (x AnimeController) getInstance(ctx *gin.Context) (service.IAnimeApi, bool) {
	var source = ctx.DefaultQuery("_source", service.Providers[0])
	var m = service.Anime{IsCache: handleCache(ctx.Query("_cache"))}

	var provider = x.Provider
	if provider == nil {
		provider = service.GetProvider
	}
	instant, err := provider(source, m)
	if err != nil {
		abortWithError(ctx, err)
		return nil, false
	}
	return instant, true
}

func requireQuery(ctx *gin.Context, key string) (string, bool) {
	var v = strings.TrimSpace(ctx.Query(key))
	if v == "" {
		abortBadRequest(ctx, "missing query parameter "+key)
		return "", false
	}
	return v, true
}

func (x AnimeController) Search(ctx *gin.Context) {
	query, ok := requireQuery(ctx, "q")
	if !ok {
		return
	}
	instant, ok := x.getInstance(ctx)
	if !ok {
		return
	}
	list, err := instant.Search(query)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, model.NewPager(list))
}

func (x AnimeController) Episodes(ctx *gin.Context) {
	id, ok := requireQuery(ctx, "id")
	if !ok {
		return
	}
	instant, ok := x.getInstance(ctx)
	if !ok {
		return
	}
	data, err := instant.Episodes(id)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, data)
}

func (x AnimeController) Servers(ctx *gin.Context) {
	id, ok := requireQuery(ctx, "id")
	if !ok {
		return
	}
	instant, ok := x.getInstance(ctx)
	if !ok {
		return
	}
	data, err := instant.Servers(id)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, data)
}

func (x AnimeController) Source(ctx *gin.Context) {
	serverUrl, ok := requireQuery(ctx, "url")
	if !ok {
		return
	}
	instant, ok := x.getInstance(ctx)
	if !ok {
		return
	}
	data, err := instant.Source(serverUrl)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	if ctx.Query("_m3u8p") == "true" && data.Type == "hls" {
		data.Url = util.HandleUrlToProxy(requestServer(ctx), data.Url)
	}
	ctx.JSON(http.StatusOK, data)
}

func (x AnimeController) SkipTimes(ctx *gin.Context) {
	title, ok := requireQuery(ctx, "title")
	if !ok {
		return
	}
	episode, err := strconv.Atoi(ctx.Query("ep"))
	if err != nil || episode < 1 {
		abortBadRequest(ctx, "ep must be a positive episode number")
		return
	}
	length, err := strconv.Atoi(ctx.DefaultQuery("length", "0"))
	if err != nil || length < 0 {
		abortBadRequest(ctx, "length must be the episode duration in seconds")
		return
	}

	var skip = x.Skip
	if skip == nil {
		skip = &service.AniSkip{}
		skip.Init()
	}
	data, err := skip.SkipTimes(title, episode, length)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, data)
}

// scheme://host this request was made to, honouring a TLS terminating proxy
func requestServer(ctx *gin.Context) string {
	var scheme = "http"
	if ctx.Request.TLS != nil || strings.EqualFold(ctx.GetHeader("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return scheme + "://" + ctx.Request.Host
}
