package util

import (
	"log"
	"path/filepath"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
)

// InitLog sends the standard logger to daily files under dir
func InitLog(dir string) {
	if dir == "" {
		dir = "./app/log"
	}
	if err := MkdirAll(dir); err != nil {
		log.Printf("failed to create log dir: %s", err)
		return
	}
	logf, err := rotatelogs.New(
		filepath.Join(dir, "%Y-%m-%d.log"),
		rotatelogs.WithLinkName(filepath.Join(dir, "app.log")),
		rotatelogs.WithMaxAge(7*24*time.Hour),
		rotatelogs.WithRotationTime(24*time.Hour),
	)
	if err != nil {
		log.Printf("failed to create rotatelogs: %s", err)
		return
	}
	log.SetOutput(logf)
}
