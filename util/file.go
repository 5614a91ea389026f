package util

import (
	"io"
	"os"
	"path/filepath"
)

func AppPath() string {
	p, _ := filepath.Abs(filepath.Dir(os.Args[0]))
	return p
}

func PathExist(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// creates path recursively, no-op if it exists
func MkdirAll(path string) error {
	if PathExist(path) {
		return nil
	}
	return os.MkdirAll(path, os.ModePerm)
}

// ReadInput reads a whole file, or stdin when path is "-" or empty
func ReadInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}
