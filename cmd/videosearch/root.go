package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/lningthou/asimov-backend/internal/config"
	"github.com/lningthou/asimov-backend/internal/setup/logger"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	globalConfig *config.Config
	globalLogger zerolog.Logger
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "videosearch",
	Short: "Query the EgoDex video index from the command line",
	Long: `videosearch runs the same semantic, keyword and hybrid searches as the
Search API against DATABASE_URL, and downloads recordings from the
configured directory or bucket. Only search needs DATABASE_URL.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || (cmd.HasParent() && cmd.Parent().Name() == "completion") {
			return nil
		}

		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

		_ = godotenv.Load()

		cfg, err := config.Read()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		globalConfig = cfg

		level := "warn"
		if verbose {
			level = "debug"
		}
		globalLogger = logger.New(level, "console")
		log.Logger = globalLogger

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")
}
