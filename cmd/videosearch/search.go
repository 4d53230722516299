package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/lningthou/asimov-backend/internal/search"
	"github.com/lningthou/asimov-backend/internal/setup"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search videos by text",
	Long:  "Run one semantic, keyword or hybrid search and print the ranked videos.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

var (
	searchK    int
	searchMode string
	searchJSON bool
)

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().IntVarP(&searchK, "k", "k", search.DefaultK, "Number of results (1-100)")
	searchCmd.Flags().StringVarP(&searchMode, "mode", "m", string(search.ModeSemantic), "semantic, keyword or hybrid")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Print results as JSON")
}

func runSearch(cmd *cobra.Command, args []string) error {
	mode, err := search.ParseMode(searchMode)
	if err != nil {
		return err
	}

	if err := globalConfig.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	deps, err := setup.Wire(ctx, globalConfig, &globalLogger)
	if err != nil {
		return err
	}
	defer deps.Close()

	results, err := deps.Service.Search(ctx, search.SearchRequest{
		Query: strings.Join(args, " "),
		K:     searchK,
		Mode:  mode,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if searchJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Fprintln(out, "No results found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tSCORE\tTASK\tHDF5\tDESCRIPTION")
	for i, r := range results {
		fmt.Fprintf(w, "%d\t%.6f\t%s\t%s\t%s\n", i+1, r.Score, r.Task, r.HDF5, truncate(r.Description, 60))
	}
	return w.Flush()
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
