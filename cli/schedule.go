package cli

import (
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/dataauto/dashboard"
	"github.com/YuminosukeSato/dataauto/pkg/errors"
	"github.com/YuminosukeSato/dataauto/scheduler"
)

func (a *app) scheduleCmd() *cobra.Command {
	var (
		times   []string
		command string
	)
	cmd := &cobra.Command{
		Use:   "schedule <path> [-- extra args]",
		Short: "Run a command every day at the given time until interrupted",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var s *scheduler.Scheduler
			err := stage(stageSchedule, func() error {
				c, err := scheduler.ParseCommand(command)
				if err != nil {
					return err
				}
				for _, at := range times {
					if _, _, err := scheduler.ParseTime(at); err != nil {
						return err
					}
				}

				runner := a.runner
				if runner == nil {
					runner = scheduler.ExecRunner{Stdout: a.stdout, Stderr: a.stderr}
				}
				s, err = scheduler.New(runner, scheduler.WithStopTimeout(a.cfg.ScheduleStopTimeout))
				if err != nil {
					return err
				}
				path, extra := args[0], args[1:]
				for _, at := range times {
					if _, err := s.Schedule(c, path, at, extra...); err != nil {
						return err
					}
					a.success("Scheduled command '%s' on file '%s' at '%s'.", c, path, at)
				}
				return nil
			})
			if s != nil {
				defer s.Close()
			}
			if err != nil {
				return err
			}

			s.Start(ctx)
			a.println("Scheduler running. Press Ctrl+C to stop.")
			<-ctx.Done()
			s.Stop()
			s.Wait()
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringSliceVar(&times, "schedule", nil, "time of day in 24-hour HH:MM; repeat for several triggers")
	fs.StringVar(&command, "command", "", "command to run: load, save, clean, remove-outlier, scale, plot, train, report")
	_ = cmd.MarkFlagRequired("schedule")
	_ = cmd.MarkFlagRequired("command")
	return cmd
}

func (a *app) dashboardCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Serve the interactive dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = a.cfg.DashboardAddr
			}
			a.success("Dashboard listening on %s.", addr)
			if err := dashboard.Run(cmd.Context(), addr, dashboard.Options{
				TestSize:    a.cfg.TestSize,
				RandomState: a.cfg.RandomState,
				NEstimators: a.cfg.NEstimators,
			}); err != nil {
				return errors.Wrap(err, stageDashboard)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8501", "listen address")
	return cmd
}
