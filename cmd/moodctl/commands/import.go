package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"moodlens/internal/analytics"
	"moodlens/internal/entries"
)

func newImportCommand(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Imports a JSON array of entries, use - for stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open %s: %w", args[0], err)
				}
				defer f.Close()
				r = f
			}

			// Decode before connecting so a bad file never touches the store
			raw, err := analytics.DecodeEntries(r)
			if err != nil {
				return err
			}

			env, err := open()
			if err != nil {
				return err
			}
			defer env.Close()

			created, err := entries.ImportEntries(env.Store.GetConnection().WithContext(cmd.Context()), env.Logger, raw)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s entries\n", humanize.Comma(int64(len(created))))
			return nil
		},
	}
}
