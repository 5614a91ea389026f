package cmd

import (
	"fmt"
	"os"

	"github.com/lixiang4u/animeTV/cipher"
	"github.com/lixiang4u/animeTV/util"
	"github.com/spf13/cobra"
)

var (
	configFile string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "animeTV",
	Short: "anime source extraction api and tools",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		util.LoadConfig(configFile)
		if !verbose {
			util.InitLog(util.AppConfig.LogDir)
		}
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config.toml", "config file (toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log to stderr instead of the log dir")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// 2 when nothing was found (unpack), 1 for anything else
func exitCode(err error) int {
	if cipher.IsPatternNotFound(err) {
		return 2
	}
	return 1
}
