package service

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/lixiang4u/animeTV/model"
	"github.com/lixiang4u/animeTV/util"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

const (
	malSearchPath   = "%s/search/prefix.json?type=anime&keyword=%s"
	aniSkipTimePath = "%s/v2/skip-times/%s/%d?%s"
)

// AniSkip looks up opening/ending/recap intervals for an episode. Titles are
// matched to a MyAnimeList id first, which is what the skip database is keyed by.
type AniSkip struct {
	Host        string
	MalHost     string
	httpWrapper *util.HttpWrapper
}

func (x *AniSkip) Init() {
	if x.Host == "" {
		x.Host = util.AniSkipConfig.Host
	}
	if x.MalHost == "" {
		x.MalHost = util.MyAnimeListConfig.Host
	}
	if x.httpWrapper == nil {
		x.httpWrapper = Anime{}.NewHttpWrapper("")
	}
}

// MalSearch returns the MyAnimeList entry whose name is closest to title
func (x *AniSkip) MalSearch(title string) (model.SearchResult, error) {
	b, err := x.httpWrapper.Get(fmt.Sprintf(malSearchPath, x.MalHost, url.QueryEscape(title)))
	if err != nil {
		return model.SearchResult{}, errors.Wrap(err, "myanimelist search")
	}

	var best model.SearchResult
	var bestScore = -1.0
	gjson.GetBytes(b, "categories.0.items").ForEach(func(key, value gjson.Result) bool {
		var name = value.Get("name").String()
		if score := normalizedLevenshtein(name, title); score > bestScore {
			bestScore = score
			best = model.SearchResult{
				Id:     value.Get("id").String(),
				Title:  name,
				Poster: value.Get("image_url").String(),
			}
		}
		return true
	})
	if bestScore < 0 {
		return model.SearchResult{}, errors.Errorf("myanimelist: no results for %q", title)
	}
	return best, nil
}

// SkipTimes returns the skippable intervals of episode (1-based) of title.
// length is the episode duration in seconds, used by the database to
// pick submissions made against the same cut.
func (x *AniSkip) SkipTimes(title string, episode, length int) ([]model.SkipTime, error) {
	mal, err := x.MalSearch(title)
	if err != nil {
		return nil, err
	}

	var query = url.Values{}
	for _, t := range []string{"ed", "mixed-ed", "mixed-op", "op", "recap"} {
		query.Add("types[]", t)
	}
	query.Set("episodeLength", fmt.Sprint(length))

	b, err := x.httpWrapper.Get(fmt.Sprintf(aniSkipTimePath, x.Host, url.PathEscape(mal.Id), episode, query.Encode()))
	if err != nil {
		var se *util.StatusError
		// the api answers 404 when nobody submitted times for the episode
		if errors.As(err, &se) && se.Code == 404 {
			return make([]model.SkipTime, 0), nil
		}
		return nil, errors.Wrap(err, "aniskip")
	}

	var times = make([]model.SkipTime, 0)
	gjson.GetBytes(b, "results").ForEach(func(key, value gjson.Result) bool {
		var skipType model.SkipType
		switch value.Get("skipType").String() {
		case "op", "mixed-op":
			skipType = model.SkipOpening
		case "ed", "mixed-ed":
			skipType = model.SkipEnding
		case "recap":
			skipType = model.SkipRecap
		default:
			return true
		}
		times = append(times, model.SkipTime{
			Start: value.Get("interval.startTime").Float(),
			End:   value.Get("interval.endTime").Float(),
			Type:  skipType,
		})
		return true
	})
	return times, nil
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	cache := make([]int, len(rb))
	for j := range cache {
		cache[j] = j + 1
	}
	result := len(rb)
	for i, ca := range ra {
		result = i + 1
		distanceB := i
		for j, cb := range rb {
			cost := 0
			if ca != cb {
				cost = 1
			}
			distanceA := distanceB + cost
			distanceB = cache[j]
			result = min(result+1, distanceA, distanceB+1)
			cache[j] = result
		}
	}
	return result
}

// 1 for equal strings, 0 for nothing in common
func normalizedLevenshtein(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)
	la, lb := len([]rune(a)), len([]rune(b))
	if la == 0 && lb == 0 {
		return 1
	}
	return 1 - float64(levenshtein(a, b))/float64(max(la, lb))
}
