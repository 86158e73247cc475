package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"moodlens/internal/entries"
	"moodlens/internal/seeder"
)

const defaultSeedDays = 90

// ErrInvalidDays is returned when --days is not positive.
var ErrInvalidDays = errors.New("days must be positive")

func newSeedCommand(open Opener) *cobra.Command {
	var (
		days int
		seed uint64
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seeds the database with demo mood entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if days < 1 {
				return ErrInvalidDays
			}

			env, err := open()
			if err != nil {
				return err
			}
			defer env.Close()

			s := seeder.NewSeeder(env.Store, env.Logger, days)
			s.Seed = seed
			if err := s.Run(cmd.Context()); err != nil {
				return err
			}

			total, err := entries.CountEntries(env.Store.GetConnection())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d days, store now holds %d entries\n", days, total)
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", defaultSeedDays, "number of days to generate entries for")
	cmd.Flags().Uint64Var(&seed, "seed", seeder.DefaultSeed, "random seed, the same seed yields the same entries")

	return cmd
}
