package model

import "fmt"

type SearchResult struct {
	Id     string `json:"id"`
	Title  string `json:"title"`
	Poster string `json:"poster"`
}

type Episode struct {
	Id     string `json:"id"` // token/session used to list servers
	Title  string `json:"title"`
	Number int    `json:"number"`
}

type Locale string

const (
	LocaleSub Locale = "Sub"
	LocaleDub Locale = "Dub"
	LocaleRaw Locale = "Raw"
)

type Server struct {
	Name   string `json:"name"`
	Locale Locale `json:"locale"`
	Url    string `json:"url"` // embed url, input of Source
}

// ServerName formats the display name the way the sites label them, e.g. "VidCloud · Sub"
func ServerName(name string, locale Locale) string {
	return fmt.Sprintf("%s · %s", name, locale)
}
