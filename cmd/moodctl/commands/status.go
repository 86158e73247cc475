package commands

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"moodlens/internal/entries"
)

func newStatusCommand(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Shows the current system status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := open()
			if err != nil {
				return err
			}
			defer env.Close()
			out := cmd.OutOrStdout()

			db := env.Store.GetConnection()
			count, err := entries.CountEntries(db)
			if err != nil {
				return fmt.Errorf("database error: %w", err)
			}

			fmt.Fprintln(out, "System Status:")
			fmt.Fprintln(out, "- Database: Connected")
			fmt.Fprintf(out, "- Entries: %s\n", humanize.Comma(count))

			var last entries.Entry
			if count > 0 {
				if err := db.Order("id DESC").First(&last).Error; err != nil {
					return fmt.Errorf("database error: %w", err)
				}
				fmt.Fprintf(out, "- Last entry stored: %s\n", humanize.Time(last.CreatedAt))
			}

			if info, err := os.Stat(env.Config.DatabaseName); err == nil {
				fmt.Fprintf(out, "- Database size: %s\n", humanize.Bytes(uint64(info.Size())))
			}

			fmt.Fprintf(out, "- Timezone: %s\n", env.Config.Location())
			fmt.Fprintf(out, "- Entry retention: %s\n", retention(env.Config.EntryRetentionDays))

			sqlDB, err := db.DB()
			if err != nil {
				return fmt.Errorf("failed to get SQL DB: %w", err)
			}

			stats := sqlDB.Stats()
			fmt.Fprintf(out, "- Max Open Connections: %d\n", stats.MaxOpenConnections)
			fmt.Fprintf(out, "- Open Connections: %d\n", stats.OpenConnections)
			fmt.Fprintf(out, "- In Use: %d\n", stats.InUse)
			fmt.Fprintf(out, "- Idle: %d\n", stats.Idle)

			return nil
		},
	}
}

func retention(days int) string {
	if days <= 0 {
		return "keep forever"
	}
	return fmt.Sprintf("%d days", days)
}
