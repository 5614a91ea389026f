package service

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/lixiang4u/animeTV/model"
	"github.com/lixiang4u/animeTV/util"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// jsonString returns the string at path of a JSON body
func jsonString(b []byte, path string) (string, error) {
	if !gjson.ValidBytes(b) {
		return "", errors.Errorf("response is not json (looking for %s)", path)
	}
	var v = gjson.GetBytes(b, path)
	if !v.Exists() || v.String() == "" {
		return "", errors.Errorf("no %s in response", path)
	}
	return v.String(), nil
}

func newDocument(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, errors.Wrap(err, "parse html")
	}
	return doc, nil
}

// findScript returns the text of the first <script> containing marker
func findScript(doc *goquery.Document, marker string) (string, bool) {
	var script string
	doc.Find("script").EachWithBreak(func(i int, selection *goquery.Selection) bool {
		if text := selection.Text(); strings.Contains(text, marker) {
			script = text
			return false
		}
		return true
	})
	return script, script != ""
}

// parseCaptions reads a tracks array, dropping thumbnail sprites
func parseCaptions(tracks gjson.Result) []model.Caption {
	var captions = make([]model.Caption, 0)
	tracks.ForEach(func(key, value gjson.Result) bool {
		if value.Get("kind").String() == "thumbnails" {
			return true
		}
		captions = append(captions, model.Caption{
			Url:   value.Get("file").String(),
			Label: value.Get("label").String(),
			Kind:  value.Get("kind").String(),
		})
		return true
	})
	return captions
}

func newSource(streamUrl string, tracks gjson.Result) model.Source {
	return model.Source{
		Url:      streamUrl,
		Type:     util.GuessVideoType(streamUrl),
		Captions: parseCaptions(tracks),
	}
}
