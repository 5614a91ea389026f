package cmd

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lixiang4u/animeTV/controller"
	"github.com/lixiang4u/animeTV/service"
	"github.com/lixiang4u/animeTV/util"
	"github.com/spf13/cobra"
)

var httpServerCmd = &cobra.Command{
	Use:   "serve",
	Short: "start http server",
	Run: func(cmd *cobra.Command, args []string) {
		log.Println(fmt.Sprintf("[AppPath] %s", util.AppPath()))

		go Clock()

		if err := NewRouter().Run(util.AppConfig.Addr); err != nil {
			log.Fatalln("[serve]", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(httpServerCmd)
}

// Clock drops the colly page cache once a day
func Clock() {
	defer func() { recover() }()

	t := time.NewTicker(time.Second * 86400)
	for {
		select {
		case <-t.C:
			err := os.RemoveAll(service.CollyCacheDir())
			log.Println("[time.Ticker]", err)
		}
	}
}

func newCors() gin.HandlerFunc {
	var config = cors.DefaultConfig()
	if len(util.CORSConfig) == 0 {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = util.CORSConfig
	}
	return cors.New(config)
}

// 新建路由表
func NewRouter() *gin.Engine {
	r := gin.Default()
	r.Use(newCors())

	var anime = controller.AnimeController{}
	var crypt = controller.CryptController{}
	var m3u8 = &controller.M3u8Controller{}
	m3u8.Init()

	r.GET("/", new(controller.HomeController).Index)
	r.GET("/hello", new(controller.HomeController).Hello)

	r.GET("/api/anime/search", anime.Search)
	r.GET("/api/anime/episodes", anime.Episodes)
	r.GET("/api/anime/servers", anime.Servers)
	r.GET("/api/anime/source", anime.Source)
	r.GET("/api/anime/skip", anime.SkipTimes)

	r.GET("/api/crypt/sources", crypt.Sources)
	r.GET("/api/crypt/encrypt", crypt.Encrypt)
	r.GET("/api/crypt/decrypt", crypt.Decrypt)
	r.POST("/api/crypt/payload", crypt.Payload)
	r.POST("/api/crypt/unpack", crypt.Unpack)

	r.GET("/api/m3u8p", m3u8.Proxy)

	return r
}
