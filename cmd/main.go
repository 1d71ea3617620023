package main

import (
	"cmp"
	"context"
	"os"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

func main() {
	if err := fang.Execute(
		context.Background(),
		newRootCmd(),
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM),
	); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var level string

	cmd := &cobra.Command{
		Use:   "pagesort",
		Short: "Narrative page ordering for manga and manhwa chapters",
		Long: `pagesort recovers the reading order of a chapter whose page files carry random names.

Every page is described by a vision model, the descriptions are sequenced by a second
request and the proposed order is accepted only if it contains every page exactly once.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := log.ParseLevel(level)
			if err != nil {
				return err
			}
			log.SetLevel(lvl)
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&level, "log-level", cmp.Or(os.Getenv("LOG_LEVEL"), "info"), "Log level (debug, info, warn, error)")

	cmd.AddCommand(newServeCmd(), newSortCmd())
	return cmd
}
