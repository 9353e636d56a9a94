package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/carebuddy/reminder-engine/internal/repository"
)

var prefsCmd = &cobra.Command{
	Use:   "prefs <enable|disable|grant|revoke>",
	Short: "Flip the permission gate's two factors",
	Long:  "enable/disable toggles the user-facing notification preference; grant/revoke mirrors the platform permission the way the mobile shell would after a permission prompt.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := openHarness()
		if err != nil {
			return err
		}
		defer h.close()

		ctx := context.Background()
		switch args[0] {
		case "enable":
			err = h.prefs.SetFlag(ctx, repository.PrefNotificationsEnabled, true)
		case "disable":
			err = h.prefs.SetFlag(ctx, repository.PrefNotificationsEnabled, false)
		case "grant":
			err = h.prefs.SetFlag(ctx, repository.PrefPlatformPermission, true)
		case "revoke":
			err = h.prefs.SetFlag(ctx, repository.PrefPlatformPermission, false)
		default:
			return fmt.Errorf("unknown action %q", args[0])
		}
		if err != nil {
			return err
		}

		enabled, _, _ := h.prefs.GetFlag(ctx, repository.PrefNotificationsEnabled)
		granted, _, _ := h.prefs.GetFlag(ctx, repository.PrefPlatformPermission)
		return printJSON(map[string]bool{
			"notifications_enabled": enabled,
			"platform_permission":   granted,
		})
	},
}

func init() {
	RootCmd.AddCommand(prefsCmd)
}
