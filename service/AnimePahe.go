package service

import (
	"fmt"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/gocolly/colly"
	"github.com/lixiang4u/animeTV/cipher"
	"github.com/lixiang4u/animeTV/model"
	"github.com/lixiang4u/animeTV/unpacker"
	"github.com/lixiang4u/animeTV/util"
	"github.com/pkg/errors"
	"github.com/sourcegraph/conc/pool"
	"github.com/tidwall/gjson"
	"github.com/zc310/headers"
)

const (
	paheSearchPath  = "%s/api?m=search&q=%s"
	paheAnimePath   = "%s/a/%s"
	paheReleasePath = "%s/api?m=release&id=%s&page=%d"
	pahePlayPath    = "%s/play/%s"

	paheMaxInflight = 10
)

var (
	paheSessionRe = regexp.MustCompile(`let id = "(.*)";`)
	paheStreamRe  = regexp.MustCompile(`https://.*\.m3u8`)
)

//========================================================================
//==============================interface=================================
//========================================================================

type AnimePahe struct {
	Host        string
	DdosGuard   string
	anime       Anime
	httpWrapper *util.HttpWrapper

	cookieOnce sync.Once
	cookieErr  error
}

func (x *AnimePahe) Init(anime Anime) {
	x.anime = anime
	if x.Host == "" {
		x.Host = util.AnimePaheConfig.Host
	}
	if x.DdosGuard == "" {
		x.DdosGuard = util.AnimePaheConfig.DdosGuard
	}
	if x.httpWrapper == nil {
		x.httpWrapper = anime.NewHttpWrapper(x.Host)
	}
}

func (x *AnimePahe) Search(query string) ([]model.SearchResult, error) {
	if err := x.ensureCookie(); err != nil {
		return nil, err
	}
	return x.paheSearch(query)
}

func (x *AnimePahe) Episodes(id string) ([]model.Episode, error) {
	if err := x.ensureCookie(); err != nil {
		return nil, err
	}
	return x.paheEpisodes(id)
}

func (x *AnimePahe) Servers(episodeId string) ([]model.Server, error) {
	if err := x.ensureCookie(); err != nil {
		return nil, err
	}
	return x.paheServers(episodeId)
}

func (x *AnimePahe) Source(serverUrl string) (model.Source, error) {
	return x.kwikSource(serverUrl)
}

//========================================================================
//==============================site logic================================
//========================================================================

// ensureCookie passes the DDoS-Guard check once: the ETag of check.js is the
// value of the __ddg2_ cookie.
func (x *AnimePahe) ensureCookie() error {
	x.cookieOnce.Do(func() {
		h, err := x.anime.NewHttpWrapper("").Head(x.DdosGuard)
		if err != nil {
			x.cookieErr = errors.Wrap(err, "ddos-guard check")
			return
		}
		var etag = http.Header(h).Get("ETag")
		if etag == "" {
			x.cookieErr = errors.New("ddos-guard: ETag not found")
			return
		}
		x.httpWrapper.SetHeader(headers.Cookie, fmt.Sprintf("__ddg2_=%s;", etag))
		log.Println("[animepahe.cookie]", etag)
	})
	return x.cookieErr
}

func (x *AnimePahe) paheSearch(query string) ([]model.SearchResult, error) {
	b, err := x.httpWrapper.Get(fmt.Sprintf(paheSearchPath, x.Host, url.QueryEscape(query)))
	if err != nil {
		return nil, errors.Wrap(err, "animepahe search")
	}

	var results = make([]model.SearchResult, 0)
	gjson.GetBytes(b, "data").ForEach(func(key, value gjson.Result) bool {
		results = append(results, model.SearchResult{
			// numeric on this site
			Id:     value.Get("id").String(),
			Title:  value.Get("title").String(),
			Poster: value.Get("poster").String(),
		})
		return true
	})
	return results, nil
}

type paheRelease struct {
	lastPage int
	episodes []model.Episode
}

func (x *AnimePahe) paheReleasePage(session string, page int) (paheRelease, error) {
	b, err := x.httpWrapper.Get(fmt.Sprintf(paheReleasePath, x.Host, url.QueryEscape(session), page))
	if err != nil {
		return paheRelease{}, errors.Wrapf(err, "animepahe release page %d", page)
	}
	if !gjson.ValidBytes(b) {
		return paheRelease{}, errors.Errorf("animepahe release page %d is not json", page)
	}
	var result = gjson.ParseBytes(b)
	var release = paheRelease{lastPage: int(result.Get("last_page").Int())}
	result.Get("data").ForEach(func(key, value gjson.Result) bool {
		release.episodes = append(release.episodes, model.Episode{
			Id:     value.Get("session").String(),
			Number: int(value.Get("episode").Int()),
		})
		return true
	})
	return release, nil
}

func (x *AnimePahe) paheEpisodes(id string) ([]model.Episode, error) {
	b, err := x.httpWrapper.Get(fmt.Sprintf(paheAnimePath, x.Host, url.PathEscape(id)))
	if err != nil {
		return nil, errors.Wrap(err, "animepahe anime page")
	}
	doc, err := newDocument(string(b))
	if err != nil {
		return nil, err
	}
	script, ok := findScript(doc, "let id =")
	if !ok {
		return nil, errors.New("animepahe: failed to get anime data")
	}
	session, ok := util.FindGroup(paheSessionRe, script)
	if !ok {
		return nil, errors.New("animepahe: failed to get session")
	}

	first, err := x.paheReleasePage(session, 1)
	if err != nil {
		return nil, err
	}
	var episodes = first.episodes

	if first.lastPage > 1 {
		p := pool.NewWithResults[[]model.Episode]().WithErrors().WithMaxGoroutines(paheMaxInflight)
		for page := 2; page <= first.lastPage; page++ {
			page := page
			p.Go(func() ([]model.Episode, error) {
				release, err := x.paheReleasePage(session, page)
				return release.episodes, err
			})
		}
		pages, err := p.Wait()
		if err != nil {
			return nil, err
		}
		for _, list := range pages {
			episodes = append(episodes, list...)
		}
	}

	sort.SliceStable(episodes, func(i, j int) bool {
		return episodes[i].Number < episodes[j].Number
	})
	for i := range episodes {
		episodes[i].Title = fmt.Sprintf("Episode %d", episodes[i].Number)
		episodes[i].Id = fmt.Sprintf("%s/%s", session, episodes[i].Id)
	}
	if episodes == nil {
		episodes = make([]model.Episode, 0)
	}
	return episodes, nil
}

func (x *AnimePahe) paheServers(episodeId string) ([]model.Server, error) {
	var servers = make([]model.Server, 0)
	var visitErr error

	c := x.anime.NewColly()
	c.OnRequest(func(request *colly.Request) {
		for k, v := range x.httpWrapper.GetHeaders() {
			request.Headers.Set(k, v)
		}
		log.Println("Visiting", request.URL.String())
	})
	c.OnHTML("#resolutionMenu button", func(element *colly.HTMLElement) {
		var locale = paheLocale(element.Attr("data-audio"))
		servers = append(servers, model.Server{
			Name:   fmt.Sprintf("%s · %sp %s", element.Attr("data-fansub"), element.Attr("data-resolution"), locale),
			Locale: locale,
			Url:    element.Attr("data-src"),
		})
	})
	c.OnError(func(response *colly.Response, err error) {
		visitErr = errors.Wrapf(err, "animepahe play page (%d)", response.StatusCode)
	})

	if err := c.Visit(fmt.Sprintf(pahePlayPath, x.Host, episodeId)); err != nil && visitErr == nil {
		visitErr = errors.Wrap(err, "animepahe play page")
	}
	if visitErr != nil {
		return nil, visitErr
	}

	// highest resolution first
	for i, j := 0, len(servers)-1; i < j; i, j = i+1, j-1 {
		servers[i], servers[j] = servers[j], servers[i]
	}
	return servers, nil
}

// kwikSource unpacks the player setup of a kwik embed and pulls the playlist out of it
func (x *AnimePahe) kwikSource(embedUrl string) (model.Source, error) {
	var kwik = x.anime.NewHttpWrapper("")
	kwik.SetHeader(headers.Referer, x.Host+"/")

	b, err := kwik.Get(embedUrl)
	if err != nil {
		return model.Source{}, errors.Wrap(err, "kwik embed")
	}
	doc, err := newDocument(string(b))
	if err != nil {
		return model.Source{}, err
	}
	script, ok := findScript(doc, "function(p,a,c,k,e,d)")
	if !ok {
		return model.Source{}, cipher.NewError(cipher.ErrCodePatternNotFound, "no packed player script", embedUrl)
	}
	unpacked, ok := unpacker.Unpack(script)
	if !ok {
		return model.Source{}, cipher.NewError(cipher.ErrCodePatternNotFound, "failed to unpack player script", embedUrl)
	}
	stream := paheStreamRe.FindString(unpacked)
	if stream == "" {
		return model.Source{}, cipher.NewError(cipher.ErrCodePatternNotFound, "no m3u8 in player script", embedUrl)
	}
	return model.Source{
		Url:      stream,
		Type:     util.GuessVideoType(stream),
		Captions: make([]model.Caption, 0),
	}, nil
}

func paheLocale(audio string) model.Locale {
	switch strings.ToLower(audio) {
	case "eng":
		return model.LocaleDub
	case "jpn":
		return model.LocaleSub
	}
	return model.LocaleRaw
}
