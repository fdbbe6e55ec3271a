package commands

import (
	"sync"

	"github.com/robfig/cron"
	"github.com/spf13/cobra"
)

func newWatchCommand() *cobra.Command {
	var schedule string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Import inbox files on a schedule",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			if schedule == "" {
				schedule = e.cfg.Import.Schedule
			}
			in, err := e.inbox()
			if err != nil {
				return err
			}

			// Runs never overlap: a slow scan makes the next tick a no-op.
			var mu sync.Mutex
			run := func() {
				if !mu.TryLock() {
					return
				}
				defer mu.Unlock()
				results, err := in.Run(e.ctx)
				if err != nil {
					e.log.Error().Err(err).Msg("inbox scan failed")
					return
				}
				if len(results) > 0 {
					e.log.Info().Int("files", len(results)).Msg("inbox scanned")
				}
			}

			c := cron.New()
			if err := c.AddFunc(schedule, run); err != nil {
				return err
			}
			run()
			c.Start()
			defer c.Stop()
			e.log.Info().Str("schedule", schedule).Msg("watching inbox")

			<-e.ctx.Done()
			return nil
		}),
	}

	cmd.Flags().StringVar(&schedule, "schedule", "", "cron schedule (default: import.schedule from the config)")

	return cmd
}
