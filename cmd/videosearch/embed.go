package main

import (
	"fmt"
	"strings"

	"github.com/lningthou/asimov-backend/internal/embedding"
	"github.com/spf13/cobra"
)

var embedCmd = &cobra.Command{
	Use:   "embed <text>",
	Short: "Print the pgvector literal for a query",
	Long: `Embed text with the configured provider and print it in the form the database receives.

With --check, the literal is parsed back and the largest per-component
rounding error is reported on stderr.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEmbed,
}

var embedCheck bool

func init() {
	rootCmd.AddCommand(embedCmd)

	embedCmd.Flags().BoolVar(&embedCheck, "check", false, "Verify the literal round-trips and report the max component error")
}

func runEmbed(cmd *cobra.Command, args []string) error {
	embedder, err := embedding.NewFromConfig(globalConfig.Embedding, &globalLogger)
	if err != nil {
		return err
	}

	vector, err := embedder.Embed(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), embedding.FormatVector(vector))

	if embedCheck {
		maxErr, err := embedding.RoundTripError(vector)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "dimensions=%d max_component_error=%.2e\n", len(vector), maxErr)
	}

	return nil
}
