package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lixiang4u/animeTV/service"
)

type HomeController struct {
}

func (p HomeController) Index(c *gin.Context) {
	c.String(http.StatusOK, "nothing here!")
}

func (p HomeController) Hello(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"path":      "/hello",
		"time":      time.Now().String(),
		"providers": service.Providers,
	})
}
