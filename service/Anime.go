package service

import (
	"path/filepath"

	"github.com/gocolly/colly"
	"github.com/lixiang4u/animeTV/util"
	"github.com/zc310/headers"
)

type Anime struct {
	IsCache bool
}

func CollyCacheDir() string {
	return filepath.Join(util.AppPath(), "app", "cache", "colly")
}

func (x Anime) NewColly() *colly.Collector {
	if x.IsCache {
		return colly.NewCollector(colly.CacheDir(CollyCacheDir()), colly.UserAgent(util.AppConfig.UserAgent))
	}
	return colly.NewCollector(colly.UserAgent(util.AppConfig.UserAgent))
}

// NewHttpWrapper returns a client that looks like a browser on host
func (x Anime) NewHttpWrapper(host string) *util.HttpWrapper {
	var h = &util.HttpWrapper{}
	h.SetHeader(headers.UserAgent, util.AppConfig.UserAgent)
	if host != "" {
		h.SetHeader(headers.Origin, host)
		h.SetHeader(headers.Referer, host+"/")
	}
	return h
}
