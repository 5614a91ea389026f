package cmd

import (
	"fmt"
	"strings"

	"github.com/lixiang4u/animeTV/cipher"
	"github.com/lixiang4u/animeTV/unpacker"
	"github.com/lixiang4u/animeTV/util"
	"github.com/spf13/cobra"
)

var sourceVersion string

var encryptCmd = &cobra.Command{
	Use:   "encrypt <source> <text>",
	Short: "run a source's encrypt pipeline",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPipeline(cmd, args[0], args[1], cipher.Source.Encrypt)
	},
}

var decryptCmd = &cobra.Command{
	Use:   "decrypt <source> <text>",
	Short: "run a source's decrypt pipeline",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPipeline(cmd, args[0], args[1], cipher.Source.Decrypt)
	},
}

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "list registered pipelines",
	Run: func(cmd *cobra.Command, args []string) {
		for _, src := range cipher.Sources() {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s@%s\n", src.Name, src.Version)
			for i, step := range src.DecryptSteps {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  %2d %s\n", i, step)
			}
		}
	},
}

var payloadCmd = &cobra.Command{
	Use:   "payload <base64> <secret>",
	Short: "decrypt a salted AES payload",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := cipher.DecryptPayload(args[0], args[1])
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), result)
		return nil
	},
}

var unpackCmd = &cobra.Command{
	Use:   "unpack [file|-]",
	Short: "expand a p.a.c.k.e.r script, reads stdin by default",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var path = "-"
		if len(args) == 1 {
			path = args[0]
		}
		b, err := util.ReadInput(path, cmd.InOrStdin())
		if err != nil {
			return err
		}
		result, ok := unpacker.Unpack(string(b))
		if !ok {
			return cipher.NewError(cipher.ErrCodePatternNotFound, "no packed script found", path)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), result)
		return nil
	},
}

func init() {
	encryptCmd.Flags().StringVar(&sourceVersion, "version", "", "pipeline version (default current)")
	decryptCmd.Flags().StringVar(&sourceVersion, "version", "", "pipeline version (default current)")

	rootCmd.AddCommand(encryptCmd, decryptCmd, sourcesCmd, payloadCmd, unpackCmd)
}

func lookupSource(name string) (cipher.Source, error) {
	if sourceVersion == "" {
		return cipher.Get(name)
	}
	src, ok := cipher.LookupVersion(name, sourceVersion)
	if !ok {
		return cipher.Source{}, cipher.NewError(cipher.ErrCodeUnknownSource, "source version is not registered", name+"@"+sourceVersion)
	}
	return src, nil
}

func runPipeline(cmd *cobra.Command, name, text string, fn func(cipher.Source, string) (string, error)) error {
	src, err := lookupSource(name)
	if err != nil {
		return err
	}
	if text == "-" {
		b, err := util.ReadInput(text, cmd.InOrStdin())
		if err != nil {
			return err
		}
		text = strings.TrimRight(string(b), "\r\n")
	}
	result, err := fn(src, text)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), result)
	return nil
}
