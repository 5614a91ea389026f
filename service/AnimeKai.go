package service

import (
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/lixiang4u/animeTV/cipher"
	"github.com/lixiang4u/animeTV/model"
	"github.com/lixiang4u/animeTV/util"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"github.com/zc310/headers"
)

const (
	kaiSearchPath   = "%s/ajax/anime/search?keyword=%s"
	kaiWatchPath    = "%s/watch/%s"
	kaiEpisodesPath = "%s/ajax/episodes/list?ani_id=%s&_=%s"
	kaiLinksPath    = "%s/ajax/links/list?token=%s&_=%s"
	kaiViewPath     = "%s/ajax/links/view?id=%s&_=%s"
)

//========================================================================
//==============================interface=================================
//========================================================================

type AnimeKai struct {
	Host        string
	anime       Anime
	httpWrapper *util.HttpWrapper
	kai         cipher.Source
	megaUp      cipher.Source
}

func (x *AnimeKai) Init(anime Anime) {
	x.anime = anime
	if x.Host == "" {
		x.Host = util.AnimeKaiConfig.Host
	}
	if x.httpWrapper == nil {
		x.httpWrapper = anime.NewHttpWrapper(x.Host)
		x.httpWrapper.SetHeader(headers.XRequestedWith, "XMLHttpRequest")
	}

	var ok bool
	if x.kai, ok = cipher.LookupVersion(cipher.AnimeKai.Name, util.CipherConfig.AnimeKaiVersion); !ok {
		log.Println("[animekai] unknown pipeline version, using current", util.CipherConfig.AnimeKaiVersion)
		x.kai, _ = cipher.Lookup(cipher.AnimeKai.Name)
	}
	x.megaUp, _ = cipher.Lookup(cipher.MegaUp.Name)
}

func (x *AnimeKai) Search(query string) ([]model.SearchResult, error) {
	return x.kaiSearch(query)
}

func (x *AnimeKai) Episodes(id string) ([]model.Episode, error) {
	return x.kaiEpisodes(id)
}

func (x *AnimeKai) Servers(episodeId string) ([]model.Server, error) {
	return x.kaiServers(episodeId)
}

func (x *AnimeKai) Source(serverUrl string) (model.Source, error) {
	return x.kaiSource(serverUrl)
}

//========================================================================
//==============================site logic================================
//========================================================================

func (x *AnimeKai) kaiSearch(query string) ([]model.SearchResult, error) {
	var results = make([]model.SearchResult, 0)

	b, err := x.httpWrapper.Get(fmt.Sprintf(kaiSearchPath, x.Host, url.QueryEscape(query)))
	if err != nil {
		return nil, errors.Wrap(err, "animekai search")
	}
	html, err := jsonString(b, "result.html")
	if err != nil {
		// no html means nothing matched
		log.Println("[animekai.search.empty]", query, err.Error())
		return results, nil
	}
	doc, err := newDocument(html)
	if err != nil {
		return nil, err
	}

	doc.Find(".aitem").Each(func(i int, selection *goquery.Selection) {
		href, _ := selection.Attr("href")
		poster, _ := selection.Find("img").Attr("src")
		var id = href
		if idx := strings.LastIndex(href, "-"); idx >= 0 {
			id = href[idx+1:]
		}
		results = append(results, model.SearchResult{
			Id:     id,
			Title:  strings.TrimSpace(selection.Find(".title").Text()),
			Poster: poster,
		})
	})

	return results, nil
}

func (x *AnimeKai) kaiEpisodes(id string) ([]model.Episode, error) {
	b, err := x.httpWrapper.Get(fmt.Sprintf(kaiWatchPath, x.Host, id))
	if err != nil {
		return nil, errors.Wrap(err, "animekai watch page")
	}
	doc, err := newDocument(string(b))
	if err != nil {
		return nil, err
	}
	bookmarkId, ok := doc.Find(".user-bookmark").First().Attr("data-id")
	if !ok || bookmarkId == "" {
		return nil, errors.Errorf("animekai: no bookmark id on watch page of %s", id)
	}

	enc, err := x.kai.Encrypt(bookmarkId)
	if err != nil {
		return nil, err
	}
	b, err = x.httpWrapper.Get(fmt.Sprintf(kaiEpisodesPath, x.Host, url.QueryEscape(bookmarkId), url.QueryEscape(enc)))
	if err != nil {
		return nil, errors.Wrap(err, "animekai episode list")
	}
	html, err := jsonString(b, "result")
	if err != nil {
		return nil, err
	}
	doc, err = newDocument(html)
	if err != nil {
		return nil, err
	}

	var episodes = make([]model.Episode, 0)
	doc.Find("a").Each(func(i int, selection *goquery.Selection) {
		token, ok := selection.Attr("token")
		if !ok {
			return
		}
		num, _ := selection.Attr("num")
		episodes = append(episodes, model.Episode{
			Id:     token,
			Title:  strings.TrimSpace(selection.Find("span").First().Text()),
			Number: util.StringToInt(num),
		})
	})
	return episodes, nil
}

func (x *AnimeKai) kaiServers(token string) ([]model.Server, error) {
	enc, err := x.kai.Encrypt(token)
	if err != nil {
		return nil, err
	}
	b, err := x.httpWrapper.Get(fmt.Sprintf(kaiLinksPath, x.Host, url.QueryEscape(token), url.QueryEscape(enc)))
	if err != nil {
		return nil, errors.Wrap(err, "animekai link list")
	}
	html, err := jsonString(b, "result")
	if err != nil {
		return nil, err
	}
	doc, err := newDocument(html)
	if err != nil {
		return nil, err
	}

	var servers = make([]model.Server, 0)
	var firstErr error
	doc.Find(".server").EachWithBreak(func(i int, selection *goquery.Selection) bool {
		tid, _ := selection.Attr("data-tid")
		lid, _ := selection.Attr("data-lid")
		embedUrl, err := x.kaiLinkView(lid)
		if err != nil {
			firstErr = err
			return false
		}
		servers = append(servers, model.Server{
			Name:   model.ServerName(strings.TrimSpace(selection.Text()), kaiLocale(tid)),
			Locale: kaiLocale(tid),
			Url:    embedUrl,
		})
		return true
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return servers, nil
}

// kaiLinkView resolves a link id to the embed url hidden in the encrypted view result
func (x *AnimeKai) kaiLinkView(lid string) (string, error) {
	enc, err := x.kai.Encrypt(lid)
	if err != nil {
		return "", err
	}
	b, err := x.httpWrapper.Get(fmt.Sprintf(kaiViewPath, x.Host, url.QueryEscape(lid), url.QueryEscape(enc)))
	if err != nil {
		return "", errors.Wrap(err, "animekai link view")
	}
	result, err := jsonString(b, "result")
	if err != nil {
		return "", err
	}
	plain, err := x.kai.Decrypt(result)
	if err != nil {
		return "", err
	}
	return jsonString([]byte(plain), "url")
}

func (x *AnimeKai) kaiSource(embedUrl string) (model.Source, error) {
	b, err := x.anime.NewHttpWrapper(util.HandleHost(embedUrl)).Get(strings.Replace(embedUrl, "/e/", "/media/", 1))
	if err != nil {
		return model.Source{}, errors.Wrap(err, "megaup media")
	}
	result, err := jsonString(b, "result")
	if err != nil {
		return model.Source{}, err
	}
	plain, err := x.megaUp.Decrypt(result)
	if err != nil {
		return model.Source{}, err
	}
	file, err := jsonString([]byte(plain), "sources.0.file")
	if err != nil {
		return model.Source{}, err
	}
	return newSource(file, gjson.Get(plain, "tracks")), nil
}

// data-tid looks like "ep-12_sub"
func kaiLocale(tid string) model.Locale {
	var suffix = tid
	if idx := strings.LastIndex(tid, "_"); idx >= 0 {
		suffix = tid[idx+1:]
	}
	switch suffix {
	case "dub":
		return model.LocaleDub
	case "sub", "softsub":
		return model.LocaleSub
	}
	return model.LocaleRaw
}
