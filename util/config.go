package util

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:133.0) Gecko/20100101 Firefox/133.0"

type appConfig struct {
	Addr      string        `json:"addr"`
	LogDir    string        `json:"log_dir"`
	UserAgent string        `json:"user_agent"`
	Timeout   time.Duration `json:"timeout"`
}

type siteConfig struct {
	Host string `json:"host"`
}

type megaCloudConfig struct {
	Host          string        `json:"host"`
	DecoderScript string        `json:"decoder_script"`
	ScriptTTL     time.Duration `json:"script_ttl"`
}

type animePaheConfig struct {
	Host      string `json:"host"`
	DdosGuard string `json:"ddos_guard"`
}

type cipherConfig struct {
	AnimeKaiVersion string `json:"animekai_version"`
}

var (
	AppConfig         appConfig
	CORSConfig        []string
	AnimeKaiConfig    siteConfig
	HiAnimeConfig     siteConfig
	MegaCloudConfig   megaCloudConfig
	AnimePaheConfig   animePaheConfig
	CipherConfig      cipherConfig
	AniSkipConfig     siteConfig
	MyAnimeListConfig siteConfig
)

func init() {
	SetDefaults()
	applyConfig()
}

func SetDefaults() {
	viper.SetDefault("app.addr", ":8089")
	viper.SetDefault("app.log_dir", "./app/log")
	viper.SetDefault("app.user_agent", DefaultUserAgent)
	viper.SetDefault("app.timeout", "30s")
	viper.SetDefault("domains.cors", []string{})

	viper.SetDefault("animekai.host", "https://animekai.to")
	viper.SetDefault("hianime.host", "https://hianime.to")
	viper.SetDefault("megacloud.host", "https://megacloud.tv")
	viper.SetDefault("megacloud.decoder_script", "https://raw.githubusercontent.com/kaorlol/protozoa/refs/heads/main/protozoa-cryptography/rabbit.js")
	viper.SetDefault("megacloud.script_ttl", "30m")
	viper.SetDefault("animepahe.host", "https://animepahe.ru")
	viper.SetDefault("animepahe.ddos_guard", "https://check.ddos-guard.net/check.js")
	viper.SetDefault("aniskip.host", "https://api.aniskip.com")
	viper.SetDefault("myanimelist.host", "https://myanimelist.net")

	viper.SetDefault("cipher.animekai_version", "2")
}

// LoadConfig reads file (toml) over the defaults. A missing file is not an error.
func LoadConfig(file string) {
	if file == "" {
		file = "config.toml"
	}
	if PathExist(file) {
		viper.SetConfigFile(file)
		if err := viper.ReadInConfig(); err != nil {
			log.Fatalln("[config]", err)
		}
	} else {
		log.Println("[config] not found, using defaults", file)
	}
	applyConfig()
}

func applyConfig() {
	AppConfig.Addr = viper.GetString("app.addr")
	AppConfig.LogDir = viper.GetString("app.log_dir")
	AppConfig.UserAgent = viper.GetString("app.user_agent")
	AppConfig.Timeout = viper.GetDuration("app.timeout")
	CORSConfig = viper.GetStringSlice("domains.cors")

	AnimeKaiConfig.Host = HandleHost(viper.GetString("animekai.host"))
	HiAnimeConfig.Host = HandleHost(viper.GetString("hianime.host"))
	MegaCloudConfig.Host = HandleHost(viper.GetString("megacloud.host"))
	MegaCloudConfig.DecoderScript = viper.GetString("megacloud.decoder_script")
	MegaCloudConfig.ScriptTTL = viper.GetDuration("megacloud.script_ttl")
	AnimePaheConfig.Host = HandleHost(viper.GetString("animepahe.host"))
	AnimePaheConfig.DdosGuard = viper.GetString("animepahe.ddos_guard")
	AniSkipConfig.Host = HandleHost(viper.GetString("aniskip.host"))
	MyAnimeListConfig.Host = HandleHost(viper.GetString("myanimelist.host"))

	CipherConfig.AnimeKaiVersion = viper.GetString("cipher.animekai_version")
}
