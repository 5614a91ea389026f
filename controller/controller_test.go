package controller

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lixiang4u/animeTV/cipher"
	"github.com/lixiang4u/animeTV/model"
	"github.com/lixiang4u/animeTV/service"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type fakeProvider struct {
	err error
}

func (f fakeProvider) Search(query string) ([]model.SearchResult, error) {
	return []model.SearchResult{{Id: "1", Title: query}, {Id: "2", Title: query + " 2"}}, f.err
}

func (f fakeProvider) Episodes(id string) ([]model.Episode, error) {
	return []model.Episode{{Id: id + "-1", Title: "Episode 1", Number: 1}}, f.err
}

func (f fakeProvider) Servers(episodeId string) ([]model.Server, error) {
	return []model.Server{{Name: model.ServerName("HD-1", model.LocaleSub), Locale: model.LocaleSub, Url: "https://embed/" + episodeId}}, f.err
}

func (f fakeProvider) Source(serverUrl string) (model.Source, error) {
	return model.Source{Url: "https://cdn.example/a/master.m3u8", Type: "hls", Captions: []model.Caption{}}, f.err
}

func newTestRouter(anime AnimeController) *gin.Engine {
	r := gin.New()
	r.GET("/api/anime/search", anime.Search)
	r.GET("/api/anime/episodes", anime.Episodes)
	r.GET("/api/anime/servers", anime.Servers)
	r.GET("/api/anime/source", anime.Source)
	r.GET("/api/anime/skip", anime.SkipTimes)

	r.GET("/api/crypt/sources", new(CryptController).Sources)
	r.GET("/api/crypt/encrypt", new(CryptController).Encrypt)
	r.GET("/api/crypt/decrypt", new(CryptController).Decrypt)
	r.POST("/api/crypt/payload", new(CryptController).Payload)
	r.POST("/api/crypt/unpack", new(CryptController).Unpack)

	m3u8 := &M3u8Controller{}
	m3u8.Init()
	r.GET("/api/m3u8p", m3u8.Proxy)
	return r
}

func fakeAnime(err error) AnimeController {
	return AnimeController{
		Provider: func(name string, anime service.Anime) (service.IAnimeApi, error) {
			if name != "kai" {
				return service.GetProvider(name, anime)
			}
			return fakeProvider{err: err}, nil
		},
	}
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func get(r http.Handler, target string) *httptest.ResponseRecorder {
	return serve(r, httptest.NewRequest(http.MethodGet, target, nil))
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m), w.Body.String())
	return m
}

func TestAnime_Search(t *testing.T) {
	r := newTestRouter(fakeAnime(nil))

	w := get(r, "/api/anime/search?_source=kai&q=frieren")
	require.Equal(t, http.StatusOK, w.Code)
	var pager model.Pager
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pager))
	assert.Equal(t, 2, pager.Total)
	assert.Equal(t, "frieren", pager.List[0].Title)

	w = get(r, "/api/anime/search?_source=kai")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, codeBadRequest, decodeBody(t, w)["code"])
}

func TestAnime_UnknownSource(t *testing.T) {
	t.Cleanup(service.ResetProviders)
	r := newTestRouter(fakeAnime(nil))

	w := get(r, "/api/anime/search?_source=nope&q=x")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, cipher.ErrCodeUnknownSource, decodeBody(t, w)["code"])
}

func TestAnime_EpisodesAndServers(t *testing.T) {
	r := newTestRouter(fakeAnime(nil))

	w := get(r, "/api/anime/episodes?_source=kai&id=dk6r")
	require.Equal(t, http.StatusOK, w.Code)
	var episodes []model.Episode
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &episodes))
	assert.Equal(t, "dk6r-1", episodes[0].Id)

	w = get(r, "/api/anime/servers?_source=kai&id=tok")
	require.Equal(t, http.StatusOK, w.Code)
	var servers []model.Server
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &servers))
	assert.Equal(t, "HD-1 · Sub", servers[0].Name)
}

func TestAnime_Source(t *testing.T) {
	r := newTestRouter(fakeAnime(nil))

	w := get(r, "/api/anime/source?_source=kai&url="+url.QueryEscape("https://embed/x"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://cdn.example/a/master.m3u8", decodeBody(t, w)["url"])

	w = get(r, "/api/anime/source?_source=kai&_m3u8p=true&url="+url.QueryEscape("https://embed/x"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://example.com/api/m3u8p?q=https%3A%2F%2Fcdn.example%2Fa%2Fmaster.m3u8", decodeBody(t, w)["url"])
}

func TestAnime_ErrorStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{name: "upstream", err: errors.Wrap(errors.New("connection refused"), "animekai search"), status: http.StatusBadGateway, code: codeUpstream},
		{name: "codec", err: cipher.NewError(cipher.ErrCodeCodec, "bad"), status: http.StatusUnprocessableEntity, code: cipher.ErrCodeCodec},
		{name: "padding", err: errors.Wrap(cipher.NewError(cipher.ErrCodeBadPadding, "bad"), "megacloud"), status: http.StatusUnprocessableEntity, code: cipher.ErrCodeBadPadding},
		{name: "pattern", err: cipher.NewError(cipher.ErrCodePatternNotFound, "no script"), status: http.StatusNotFound, code: cipher.ErrCodePatternNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(newTestRouter(fakeAnime(tt.err)), "/api/anime/search?_source=kai&q=x")
			assert.Equal(t, tt.status, w.Code)
			body := decodeBody(t, w)
			assert.Equal(t, tt.code, body["code"])
			assert.NotEmpty(t, body["msg"])
		})
	}
}

func TestAnime_SkipTimes(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/search/prefix.json":
			_, _ = fmt.Fprint(w, `{"categories":[{"items":[{"id":52991,"name":"Sousou no Frieren"}]}]}`)
		case r.URL.Path == "/v2/skip-times/52991/3":
			_, _ = fmt.Fprint(w, `{"results":[{"interval":{"startTime":1,"endTime":91},"skipType":"op"}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(upstream.Close)

	skip := &service.AniSkip{Host: upstream.URL, MalHost: upstream.URL}
	skip.Init()
	r := newTestRouter(AnimeController{Skip: skip})

	w := get(r, "/api/anime/skip?title=Sousou+no+Frieren&ep=3&length=1440")
	require.Equal(t, http.StatusOK, w.Code)
	var times []model.SkipTime
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &times))
	assert.Equal(t, []model.SkipTime{{Start: 1, End: 91, Type: model.SkipOpening}}, times)

	for _, q := range []string{"title=x&ep=0", "title=x&ep=a", "title=x&ep=1&length=-5", "ep=1"} {
		w = get(r, "/api/anime/skip?"+q)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
}

func TestCrypt_EncryptDecrypt(t *testing.T) {
	r := newTestRouter(AnimeController{})

	w := get(r, "/api/crypt/encrypt?source=animekai&text=dk6r")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "VTZRcmhWY3dfMFo", body["result"])
	assert.Equal(t, "2", body["version"])

	w = get(r, "/api/crypt/decrypt?source=megaup&text=TndNZHNvWndHSDA")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "dk6r", decodeBody(t, w)["result"])

	w = get(r, "/api/crypt/decrypt?source=animekai&text=***")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, cipher.ErrCodeCodec, decodeBody(t, w)["code"])

	w = get(r, "/api/crypt/encrypt?source=nope&text=x")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = get(r, "/api/crypt/encrypt?source=animekai&version=9&text=x")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = get(r, "/api/crypt/encrypt?text=x")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCrypt_Sources(t *testing.T) {
	w := get(newTestRouter(AnimeController{}), "/api/crypt/sources")
	require.Equal(t, http.StatusOK, w.Code)
	var sources []cipher.Source
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sources))
	require.Len(t, sources, 2)
	assert.Equal(t, "animekai", sources[0].Name)
	assert.Equal(t, cipher.AnimeKai.DecryptSteps, sources[0].DecryptSteps)
}

func TestCrypt_Payload(t *testing.T) {
	r := newTestRouter(AnimeController{})
	const fixture = "U2FsdGVkX18BAgMEBQYHCKcCykPVmGPkRVw5oL4DiuOBY5071OICncEKy8uOaWt+nJjMsJ2DHE1fHWc6k1qQ0eLsMvoZoz7pc6S+neQRGPO0u8kvlfxfOOkh6esYGBcC"

	post := func(secret string) *httptest.ResponseRecorder {
		form := url.Values{"text": {fixture}, "secret": {secret}}
		req := httptest.NewRequest(http.MethodPost, "/api/crypt/payload", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return serve(r, req)
	}

	w := post("s3cr3t-key")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `[{"file":"https://cdn.example.com/hls/master.m3u8","type":"hls"}]`, decodeBody(t, w)["result"])

	w = post("wrong")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, cipher.ErrCodeBadPadding, decodeBody(t, w)["code"])

	w = post("")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCrypt_Unpack(t *testing.T) {
	r := newTestRouter(AnimeController{})
	const packed = `eval(function(p,a,c,k,e,d){return p}('0.1.2',3,3,'a|b|c'.split('|'),0,{}))`

	w := serve(r, httptest.NewRequest(http.MethodPost, "/api/crypt/unpack", strings.NewReader(packed)))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "a.b.c", decodeBody(t, w)["result"])

	w = serve(r, httptest.NewRequest(http.MethodPost, "/api/crypt/unpack", strings.NewReader("var a = 1;")))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, cipher.ErrCodePatternNotFound, decodeBody(t, w)["code"])
}

func TestM3u8_Proxy(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/hls/index.m3u8":
			w.Header().Set("Content-Type", "text/plain")
			_, _ = fmt.Fprint(w, "#EXTM3U\n#EXT-X-VERSION:3\n#EXT-X-TARGETDURATION:10\n#EXT-X-MEDIA-SEQUENCE:0\n#EXTINF:10.000,\nseg0.ts\n#EXT-X-ENDLIST\n")
		case "/hls/seg0.ts":
			w.Header().Set("Content-Type", "video/mp2t")
			_, _ = w.Write([]byte{0x47, 0x40, 0x00})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(upstream.Close)
	r := newTestRouter(AnimeController{})

	w := get(r, "/api/m3u8p?q="+url.QueryEscape(upstream.URL+"/hls/index.m3u8"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.apple.mpegurl", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "http://example.com/api/m3u8p?q="+url.QueryEscape(upstream.URL+"/hls/seg0.ts"))

	// base64 {"q": url} form
	q := base64.StdEncoding.EncodeToString([]byte(fmt.Sprintf(`{"q":%q}`, upstream.URL+"/hls/seg0.ts")))
	w = get(r, "/api/m3u8p?q="+url.QueryEscape(q))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "video/mp2t", w.Header().Get("Content-Type"))
	assert.Equal(t, []byte{0x47, 0x40, 0x00}, w.Body.Bytes())

	w = get(r, "/api/m3u8p?q="+url.QueryEscape(upstream.URL+"/missing.m3u8"))
	assert.Equal(t, http.StatusBadGateway, w.Code)

	w = get(r, "/api/m3u8p?q=not-a-url")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleCache(t *testing.T) {
	assert.False(t, handleCache(""))
	assert.True(t, handleCache("open"))
	assert.False(t, handleCache("close"))
	assert.True(t, handleCache("1"))
	assert.False(t, handleCache("false"))
	assert.True(t, handleCache("garbage"))
}
