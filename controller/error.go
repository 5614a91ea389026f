package controller

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lixiang4u/animeTV/cipher"
)

const (
	codeBadRequest = "BAD_REQUEST"
	codeUpstream   = "UPSTREAM_ERROR"
)

// statusOf maps an error to the response status: a failed decryption is the
// client's input (422), anything without a cipher code came from upstream (502).
func statusOf(err error) (int, string) {
	var code = cipher.CodeOf(err)
	switch code {
	case cipher.ErrCodeCodec, cipher.ErrCodeBadPadding, cipher.ErrCodeBadBlockSize, cipher.ErrCodeInvalidKey:
		return http.StatusUnprocessableEntity, code
	case cipher.ErrCodeUnknownSource, cipher.ErrCodePatternNotFound:
		return http.StatusNotFound, code
	case "":
		return http.StatusBadGateway, codeUpstream
	}
	return http.StatusInternalServerError, code
}

func abortWithError(ctx *gin.Context, err error) {
	status, code := statusOf(err)
	log.Println("[api.error]", ctx.Request.URL.Path, status, err)
	ctx.AbortWithStatusJSON(status, gin.H{"code": code, "msg": err.Error()})
}

func abortBadRequest(ctx *gin.Context, msg string) {
	ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"code": codeBadRequest, "msg": msg})
}
