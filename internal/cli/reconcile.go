package cli

import (
	"context"

	"github.com/spf13/cobra"
)

var triggerFlag string

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Run one reconciliation pass and show the resulting plan",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := openHarness()
		if err != nil {
			return err
		}
		defer h.close()

		ctx := context.Background()
		switch triggerFlag {
		case "start":
			err = h.orch.OnAppStart(ctx)
		case "resume":
			err = h.orch.OnResume(ctx)
		case "schedule-change":
			err = h.orch.OnScheduleChanged(ctx)
		default:
			err = h.orch.Reconcile(ctx)
		}
		if err != nil {
			return err
		}

		return printJSON(struct {
			DayKey  string      `json:"day_key"`
			Pending interface{} `json:"pending"`
		}{
			DayKey:  h.store.DayKey(),
			Pending: h.notifier.Pending(),
		})
	},
}

func init() {
	reconcileCmd.Flags().StringVarP(&triggerFlag, "trigger", "t", "start", "Trigger to simulate: start, resume or schedule-change")
	RootCmd.AddCommand(reconcileCmd)
}
