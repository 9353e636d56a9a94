package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/carebuddy/reminder-engine/internal/model"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Dump the persisted notification index for today",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := openHarness()
		if err != nil {
			return err
		}
		defer h.close()

		if err := h.store.RolloverIfNewDay(context.Background(), model.DayKeyOf(time.Now())); err != nil {
			return err
		}

		return printJSON(struct {
			DayKey  string      `json:"day_key"`
			Entries interface{} `json:"entries"`
		}{
			DayKey:  h.store.DayKey(),
			Entries: h.store.All(),
		})
	},
}

func init() {
	RootCmd.AddCommand(inspectCmd)
}
