package service

import (
	"fmt"
	"sync"

	"github.com/lixiang4u/animeTV/cipher"
	"github.com/lixiang4u/animeTV/model"
)

// IAnimeApi is implemented by every supported site
type IAnimeApi interface {
	Search(query string) ([]model.SearchResult, error)
	Episodes(id string) ([]model.Episode, error)
	Servers(episodeId string) ([]model.Server, error)
	Source(serverUrl string) (model.Source, error)
}

var Providers = []string{"kai", "hianime", "pahe"}

var (
	providerCache   = make(map[string]IAnimeApi)
	providerCacheMu sync.Mutex
)

// GetProvider returns the shared provider for name, creating it on first use.
// Providers keep per-site state (cookies, cached scripts) between calls.
func GetProvider(name string, anime Anime) (IAnimeApi, error) {
	var key = fmt.Sprintf("%s:%v", name, anime.IsCache)

	providerCacheMu.Lock()
	defer providerCacheMu.Unlock()
	if p, ok := providerCache[key]; ok {
		return p, nil
	}

	var p IAnimeApi
	switch name {
	case "kai", "animekai":
		_m := AnimeKai{}
		_m.Init(anime)
		p = &_m
	case "hianime", "zoro":
		_m := HiAnime{}
		_m.Init(anime)
		p = &_m
	case "pahe", "animepahe":
		_m := AnimePahe{}
		_m.Init(anime)
		p = &_m
	default:
		return nil, cipher.NewError(cipher.ErrCodeUnknownSource, "provider is not supported", name)
	}
	providerCache[key] = p
	return p, nil
}

// ResetProviders drops the shared providers, e.g. after the config changed
func ResetProviders() {
	providerCacheMu.Lock()
	providerCache = make(map[string]IAnimeApi)
	providerCacheMu.Unlock()
}
