package main

import (
	"context"
	"errors"
	"io"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lningthou/asimov-backend/internal/recordings"
	"github.com/lningthou/asimov-backend/internal/setup"
	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <filename>",
	Short: "Download a recording",
	Long:  "Copy an mp4 or hdf5 recording from the configured directory or bucket to a local path.",
	Args:  cobra.ExactArgs(1),
	RunE:  runFetch,
}

var fetchOut string

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVarP(&fetchOut, "out", "o", "", "Destination path (default: ./<filename>)")
}

func runFetch(cmd *cobra.Command, args []string) error {
	name := args[0]
	if err := recordings.ValidateName(name); err != nil {
		return err
	}

	ctx := cmd.Context()
	source, err := setup.NewRecordingsSource(ctx, globalConfig.Recordings)
	if err != nil {
		return err
	}
	if source == nil {
		return errors.New("no recordings source configured: set RECORDINGS_DIR or RECORDINGS_BUCKET")
	}

	obj, err := source.Open(ctx, name)
	if err != nil {
		return err
	}
	defer obj.Body.Close()

	dest := fetchOut
	if dest == "" {
		dest = filepath.Join(".", name)
	}

	written, err := saveTo(ctx, dest, obj.Body)
	if err != nil {
		return fmt.Errorf("download %s: %w", name, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d bytes)\n", dest, written)
	return nil
}

// saveTo streams r into a temporary file next to dest and renames it into
// place only after the copy completes. On failure dest is left untouched.
func saveTo(ctx context.Context, dest string, r io.Reader) (written int64, err error) {
	f, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".*.part")
	if err != nil {
		return 0, fmt.Errorf("create temp file for %s: %w", dest, err)
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(f.Name())
		}
	}()

	written, err = recordings.Stream(ctx, f, r)
	if err != nil {
		return written, err
	}
	if err = f.Close(); err != nil {
		return written, err
	}
	if err = os.Rename(f.Name(), dest); err != nil {
		return written, err
	}

	return written, nil
}
