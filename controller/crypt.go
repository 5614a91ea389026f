package controller

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lixiang4u/animeTV/cipher"
	"github.com/lixiang4u/animeTV/unpacker"
)

// unpack bodies are player scripts, a few hundred KB at most
const maxScriptSize = 4 << 20

type CryptController struct {
}

func (p CryptController) Sources(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, cipher.Sources())
}

func (p CryptController) Encrypt(ctx *gin.Context) {
	p.run(ctx, cipher.Source.Encrypt)
}

func (p CryptController) Decrypt(ctx *gin.Context) {
	p.run(ctx, cipher.Source.Decrypt)
}

func (p CryptController) run(ctx *gin.Context, fn func(cipher.Source, string) (string, error)) {
	var name = ctx.Query("source")
	var text = ctx.Query("text")
	if name == "" {
		abortBadRequest(ctx, "missing query parameter source")
		return
	}

	var src cipher.Source
	var err error
	if version := ctx.Query("version"); version != "" {
		var ok bool
		if src, ok = cipher.LookupVersion(name, version); !ok {
			abortWithError(ctx, cipher.NewError(cipher.ErrCodeUnknownSource, "source version is not registered", name+"@"+version))
			return
		}
	} else if src, err = cipher.Get(name); err != nil {
		abortWithError(ctx, err)
		return
	}

	result, err := fn(src, text)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"source":  src.Name,
		"version": src.Version,
		"result":  result,
	})
}

func (p CryptController) Payload(ctx *gin.Context) {
	var text = ctx.PostForm("text")
	var secret = ctx.PostForm("secret")
	if text == "" || secret == "" {
		abortBadRequest(ctx, "text and secret are required")
		return
	}
	result, err := cipher.DecryptPayload(text, secret)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"result": result})
}

func (p CryptController) Unpack(ctx *gin.Context) {
	b, err := io.ReadAll(io.LimitReader(ctx.Request.Body, maxScriptSize))
	if err != nil {
		abortBadRequest(ctx, err.Error())
		return
	}
	result, ok := unpacker.Unpack(string(b))
	if !ok {
		abortWithError(ctx, cipher.NewError(cipher.ErrCodePatternNotFound, "no packed script found"))
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"result": result})
}
