package util

import (
	"bytes"
	"log"

	"github.com/grafov/m3u8"
)

// HandleM3U8Contents makes every URI in the playlist absolute against
// sourceUrl. With proxy set, each absolute URI is then passed through it.
// Unparseable input is returned unchanged.
func HandleM3U8Contents(data []byte, sourceUrl string, proxy func(string) string) []byte {
	if HandleHost(sourceUrl) == "" {
		return data
	}
	playList, listType, err := m3u8.DecodeFrom(bytes.NewBuffer(data), true)
	if err != nil {
		log.Println("[m3u8.DecodeFrom.error]", err)
		return data
	}

	var fix = func(uri string) string {
		if uri == "" {
			return uri
		}
		uri = ChangeUrlPath(sourceUrl, uri)
		if proxy != nil {
			uri = proxy(uri)
		}
		return uri
	}

	// keys and renditions are shared pointers, rewrite each once
	var seenKeys = map[*m3u8.Key]bool{}
	var fixKey = func(k *m3u8.Key) {
		if k == nil || seenKeys[k] {
			return
		}
		seenKeys[k] = true
		k.URI = fix(k.URI)
	}

	switch listType {
	case m3u8.MEDIA:
		mediapl := playList.(*m3u8.MediaPlaylist)
		fixKey(mediapl.Key)
		if mediapl.Map != nil {
			mediapl.Map.URI = fix(mediapl.Map.URI)
		}
		for idx, val := range mediapl.Segments {
			if val == nil {
				continue
			}
			mediapl.Segments[idx].URI = fix(val.URI)
			fixKey(val.Key)
		}
	case m3u8.MASTER:
		masterpl := playList.(*m3u8.MasterPlaylist)
		var seenAlts = map[*m3u8.Alternative]bool{}
		for idx, val := range masterpl.Variants {
			if val == nil {
				continue
			}
			masterpl.Variants[idx].URI = fix(val.URI)
			for _, alt := range val.Alternatives {
				if alt != nil && !seenAlts[alt] {
					seenAlts[alt] = true
					alt.URI = fix(alt.URI)
				}
			}
		}
	}

	return playList.Encode().Bytes()
}
