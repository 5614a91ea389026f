package model

type Source struct {
	Url      string    `json:"url"`
	Type     string    `json:"type"` // hls/auto
	Captions []Caption `json:"captions"`
}

type Caption struct {
	Url   string `json:"file"`
	Label string `json:"label,omitempty"`
	Kind  string `json:"kind"`
}

type SkipType string

const (
	SkipOpening SkipType = "op"
	SkipEnding  SkipType = "ed"
	SkipRecap   SkipType = "recap"
)

// SkipTime is an interval in seconds a player may jump over
type SkipTime struct {
	Start float64  `json:"start"`
	End   float64  `json:"end"`
	Type  SkipType `json:"type"`
}
