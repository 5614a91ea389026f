package main

import (
	"github.com/lixiang4u/animeTV/cmd"
)

func main() {
	cmd.Execute()
}
