package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var snoozeCmd = &cobra.Command{
	Use:   "snooze <identity>",
	Short: "Snooze one pending notification",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid identity %q: %w", args[0], err)
		}

		h, err := openHarness()
		if err != nil {
			return err
		}
		defer h.close()

		if err := h.orch.OnSnoozeRequested(context.Background(), id); err != nil {
			return err
		}
		return printJSON(h.store.All())
	},
}

func init() {
	RootCmd.AddCommand(snoozeCmd)
}
