package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"moodlens/internal/render"
	"moodlens/internal/reporting"
)

func newReportCommand(open Opener) *cobra.Command {
	var (
		format string
		tz     string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Computes the mood report over every stored entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var loc *time.Location
			if tz != "" {
				var err error
				if loc, err = time.LoadLocation(tz); err != nil {
					return fmt.Errorf("unknown timezone %q: %w", tz, err)
				}
			}

			env, err := open()
			if err != nil {
				return err
			}
			defer env.Close()

			gen := reporting.NewGenerator(env.Store.GetConnection(), env.Logger, env.Config, nil)
			report, err := gen.Generate(cmd.Context(), reporting.SourceCLI, loc)
			if err != nil {
				return err
			}

			return render.Report(cmd.OutOrStdout(), report, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", render.FormatTable,
		"output format: "+strings.Join(render.Formats, ", "))
	cmd.Flags().StringVar(&tz, "tz", "", "IANA timezone for hour and date bucketing, defaults to the configured one")

	return cmd
}
