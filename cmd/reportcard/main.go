// Package main - точка входа Student Report Card: HTTP API и интерактивное меню
// поверх одного фасада (каталог студентов, стек отмены, журнал операций).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
)

// rootCmd - корневая команда без собственного действия.
var rootCmd = &cobra.Command{
	Use:   "reportcard",
	Short: "Student report card manager",
	Long: `Student report card manager.

Students live in an in-memory directory. Deletions and grade changes are kept
on a bounded undo stack, and every operation is recorded in a bounded journal
that can be drained into PostgreSQL and a Redis stream.

Commands:
  serve - run the JSON API
  shell - run the interactive menu`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (env vars override it)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override LOG_LEVEL (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(shellCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}
