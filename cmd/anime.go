package cmd

import (
	"fmt"
	"strconv"

	"github.com/lixiang4u/animeTV/service"
	"github.com/lixiang4u/animeTV/util"
	"github.com/spf13/cobra"
)

var (
	providerName  string
	providerCache bool
	episodeLength int
)

func newProvider() (service.IAnimeApi, error) {
	return service.GetProvider(providerName, service.Anime{IsCache: providerCache})
}

func printJSON(cmd *cobra.Command, data interface{}) {
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), util.ToJSON(data, true))
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "search a provider",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newProvider()
		if err != nil {
			return err
		}
		data, err := p.Search(args[0])
		if err != nil {
			return err
		}
		printJSON(cmd, data)
		return nil
	},
}

var episodesCmd = &cobra.Command{
	Use:   "episodes <id>",
	Short: "list the episodes of an anime",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newProvider()
		if err != nil {
			return err
		}
		data, err := p.Episodes(args[0])
		if err != nil {
			return err
		}
		printJSON(cmd, data)
		return nil
	},
}

var serversCmd = &cobra.Command{
	Use:   "servers <episode-id>",
	Short: "list the embed servers of an episode",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newProvider()
		if err != nil {
			return err
		}
		data, err := p.Servers(args[0])
		if err != nil {
			return err
		}
		printJSON(cmd, data)
		return nil
	},
}

var sourceCmd = &cobra.Command{
	Use:   "source <server-url>",
	Short: "extract the stream of an embed server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newProvider()
		if err != nil {
			return err
		}
		data, err := p.Source(args[0])
		if err != nil {
			return err
		}
		printJSON(cmd, data)
		return nil
	},
}

var skipCmd = &cobra.Command{
	Use:   "skip <title> <episode>",
	Short: "opening/ending intervals of an episode",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		episode, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("episode must be a number: %w", err)
		}
		var skip = &service.AniSkip{}
		skip.Init()
		data, err := skip.SkipTimes(args[0], episode, episodeLength)
		if err != nil {
			return err
		}
		printJSON(cmd, data)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{searchCmd, episodesCmd, serversCmd, sourceCmd} {
		c.Flags().StringVarP(&providerName, "source", "s", service.Providers[0], fmt.Sprintf("provider %v", service.Providers))
		c.Flags().BoolVar(&providerCache, "cache", false, "cache scraped pages on disk")
		rootCmd.AddCommand(c)
	}
	skipCmd.Flags().IntVar(&episodeLength, "length", 0, "episode duration in seconds")
	rootCmd.AddCommand(skipCmd)
}
