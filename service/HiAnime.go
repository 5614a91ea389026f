package service

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/lixiang4u/animeTV/cipher"
	"github.com/lixiang4u/animeTV/decoder"
	"github.com/lixiang4u/animeTV/model"
	"github.com/lixiang4u/animeTV/util"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"github.com/zc310/headers"
)

const (
	hiSearchPath     = "%s/search?keyword=%s"
	hiEpisodesPath   = "%s/ajax/v2/episode/list/%s"
	hiServersPath    = "%s/ajax/v2/episode/servers?episodeId=%s"
	hiServerLinkPath = "%s/ajax/v2/episode/sources?id=%s"

	megaCloudEmbedPath   = "%s/embed-2/e-1/%s"
	megaCloudWasmPath    = "%s/images/loading.png?v=0.0.9"
	megaCloudSourcesPath = "%s/embed-2/ajax/e-1/getSources?id=%s&v=%s&h=%s&b=%s"
)

var megaCloudMetaRe = regexp.MustCompile(`<meta name="j_crt" content="(.+?)">`)

//========================================================================
//==============================interface=================================
//========================================================================

type HiAnime struct {
	Host          string
	MegaCloudHost string
	// Decoder turns the embed id, page meta and wasm asset into the key
	// material of the getSources call. Defaults to the configured remote script.
	Decoder     decoder.Func
	anime       Anime
	httpWrapper *util.HttpWrapper
}

func (x *HiAnime) Init(anime Anime) {
	x.anime = anime
	if x.Host == "" {
		x.Host = util.HiAnimeConfig.Host
	}
	if x.MegaCloudHost == "" {
		x.MegaCloudHost = util.MegaCloudConfig.Host
	}
	if x.httpWrapper == nil {
		x.httpWrapper = anime.NewHttpWrapper(x.Host)
	}
	if x.Decoder == nil {
		var fetch = &util.HttpWrapper{}
		fetch.SetHeader(headers.UserAgent, util.AppConfig.UserAgent)
		x.Decoder = (&decoder.Remote{
			URL:     util.MegaCloudConfig.DecoderScript,
			Fetch:   fetch.Get,
			TTL:     util.MegaCloudConfig.ScriptTTL,
			Timeout: util.AppConfig.Timeout,
		}).Func()
	}
}

func (x *HiAnime) Search(query string) ([]model.SearchResult, error) {
	return x.hiSearch(query)
}

func (x *HiAnime) Episodes(id string) ([]model.Episode, error) {
	return x.hiEpisodes(id)
}

func (x *HiAnime) Servers(episodeId string) ([]model.Server, error) {
	return x.hiServers(episodeId)
}

func (x *HiAnime) Source(serverUrl string) (model.Source, error) {
	return x.megaCloudSource(serverUrl)
}

//========================================================================
//==============================site logic================================
//========================================================================

func (x *HiAnime) hiSearch(query string) ([]model.SearchResult, error) {
	b, err := x.httpWrapper.Get(fmt.Sprintf(hiSearchPath, x.Host, url.QueryEscape(query)))
	if err != nil {
		return nil, errors.Wrap(err, "hianime search")
	}
	doc, err := newDocument(string(b))
	if err != nil {
		return nil, err
	}

	var results = make([]model.SearchResult, 0)
	doc.Find(".flw-item").Each(func(i int, selection *goquery.Selection) {
		var qtip = selection.Find(".item-qtip").First()
		id, _ := qtip.Attr("data-id")
		title, _ := qtip.Attr("title")
		poster, _ := selection.Find(".film-poster-img").First().Attr("data-src")
		results = append(results, model.SearchResult{
			Id:     id,
			Title:  title,
			Poster: poster,
		})
	})
	return results, nil
}

func (x *HiAnime) hiEpisodes(id string) ([]model.Episode, error) {
	b, err := x.httpWrapper.Get(fmt.Sprintf(hiEpisodesPath, x.Host, url.PathEscape(id)))
	if err != nil {
		return nil, errors.Wrap(err, "hianime episode list")
	}
	html, err := jsonString(b, "html")
	if err != nil {
		return nil, err
	}
	doc, err := newDocument(html)
	if err != nil {
		return nil, err
	}

	var episodes = make([]model.Episode, 0)
	doc.Find(".ep-item").Each(func(i int, selection *goquery.Selection) {
		epId, _ := selection.Attr("data-id")
		title, _ := selection.Attr("title")
		number, _ := selection.Attr("data-number")
		episodes = append(episodes, model.Episode{
			Id:     epId,
			Title:  title,
			Number: util.StringToInt(number),
		})
	})
	return episodes, nil
}

func (x *HiAnime) hiServers(episodeId string) ([]model.Server, error) {
	b, err := x.httpWrapper.Get(fmt.Sprintf(hiServersPath, x.Host, url.QueryEscape(episodeId)))
	if err != nil {
		return nil, errors.Wrap(err, "hianime servers")
	}
	html, err := jsonString(b, "html")
	if err != nil {
		return nil, err
	}
	doc, err := newDocument(html)
	if err != nil {
		return nil, err
	}

	var servers = make([]model.Server, 0)
	var firstErr error
	doc.Find(".server-item").EachWithBreak(func(i int, selection *goquery.Selection) bool {
		serverId, _ := selection.Attr("data-id")
		dataType, _ := selection.Attr("data-type")

		b, err := x.httpWrapper.Get(fmt.Sprintf(hiServerLinkPath, x.Host, url.QueryEscape(serverId)))
		if err != nil {
			firstErr = errors.Wrap(err, "hianime server link")
			return false
		}
		link, err := jsonString(b, "link")
		if err != nil {
			firstErr = err
			return false
		}

		var locale = hiLocale(dataType)
		servers = append(servers, model.Server{
			Name:   model.ServerName(strings.TrimSpace(selection.Text()), locale),
			Locale: locale,
			Url:    link,
		})
		return true
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return servers, nil
}

func (x *HiAnime) megaCloudSource(embedUrl string) (model.Source, error) {
	var xrax = util.LastPathSegment(embedUrl)
	if xrax == "" {
		return model.Source{}, errors.Errorf("megacloud: no embed id in %s", embedUrl)
	}
	var embedPage = fmt.Sprintf(megaCloudEmbedPath, x.MegaCloudHost, xrax)

	var mc = x.anime.NewHttpWrapper("")
	mc.SetHeader(headers.Referer, x.Host+"/")

	b, err := mc.Get(embedPage)
	if err != nil {
		return model.Source{}, errors.Wrap(err, "megacloud embed page")
	}
	meta, ok := util.FindGroup(megaCloudMetaRe, string(b))
	if !ok {
		return model.Source{}, errors.New("megacloud: failed to get meta")
	}
	wasm, err := mc.Get(fmt.Sprintf(megaCloudWasmPath, x.MegaCloudHost))
	if err != nil {
		return model.Source{}, errors.Wrap(err, "megacloud wasm")
	}

	ctx, cancel := context.WithTimeout(context.Background(), util.AppConfig.Timeout)
	defer cancel()
	args, err := x.Decoder(ctx, xrax, meta, wasm)
	if err != nil {
		return model.Source{}, errors.Wrap(err, "megacloud decoder")
	}
	if err = args.Validate(); err != nil {
		return model.Source{}, errors.Wrap(err, "megacloud decoder")
	}

	var api = mc.Clone()
	api.SetHeaders(map[string]string{
		headers.Referer:        embedPage,
		headers.XRequestedWith: "XMLHttpRequest",
	})
	b, err = api.Get(fmt.Sprintf(
		megaCloudSourcesPath,
		x.MegaCloudHost,
		url.QueryEscape(args.ID),
		url.QueryEscape(args.Version),
		url.QueryEscape(args.Kid),
		url.QueryEscape(args.BrowserVersion),
	))
	if err != nil {
		return model.Source{}, errors.Wrap(err, "megacloud getSources")
	}
	if !gjson.ValidBytes(b) {
		return model.Source{}, errors.New("megacloud: getSources is not json")
	}

	var result = gjson.ParseBytes(b)
	var sources = result.Get("sources")
	var plain string
	switch {
	case sources.Type == gjson.String:
		plain, err = cipher.DecryptPayload(sources.String(), args.Secret)
		if err != nil {
			return model.Source{}, err
		}
	case sources.IsArray():
		// served unencrypted
		plain = sources.Raw
	default:
		return model.Source{}, errors.New("megacloud: no sources in response")
	}

	if !gjson.Valid(plain) || !gjson.Parse(plain).IsArray() {
		return model.Source{}, errors.New("megacloud: decrypted sources are not a json array")
	}
	file, err := jsonString([]byte(plain), "0.file")
	if err != nil {
		return model.Source{}, err
	}
	return newSource(file, result.Get("tracks")), nil
}

func hiLocale(dataType string) model.Locale {
	switch dataType {
	case "dub":
		return model.LocaleDub
	case "raw":
		return model.LocaleRaw
	}
	return model.LocaleSub
}
