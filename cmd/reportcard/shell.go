package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/alem-hub/reportcard/internal/interface/cli"
)

var noPause bool

// shellCmd запускает интерактивное меню на stdin/stdout.
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Run the interactive report card menu",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := buildApp(cmd.Context(), os.Stderr)
		if err != nil {
			return err
		}
		defer a.Close()

		return cli.NewShell(cli.Config{
			Manager:        a.manager,
			ProcessJournal: a.process,
			In:             cmd.InOrStdin(),
			Out:            cmd.OutOrStdout(),
			Pause:          !noPause,
			Logger:         a.log,
		}).Run(cmd.Context())
	},
}

func init() {
	shellCmd.Flags().BoolVar(&noPause, "no-pause", false, "Do not wait for Enter after each action")
}
