// Package permission implements the two-factor gate consulted before any
// scheduling attempt: the platform-level grant AND the user's in-app
// preference must both be on.
package permission

import (
	"context"

	"github.com/carebuddy/reminder-engine/internal/repository"
)

// PlatformAuthorizer reports the operating system's notification grant.
// The platform can revoke it at any moment outside the app's control, so
// the gate asks every time rather than caching.
type PlatformAuthorizer interface {
	Granted(ctx context.Context) (bool, error)
}

type Gate struct {
	platform PlatformAuthorizer
	prefs    repository.PreferenceRepository
}

func NewGate(platform PlatformAuthorizer, prefs repository.PreferenceRepository) *Gate {
	return &Gate{platform: platform, prefs: prefs}
}

// Allowed is true iff the platform grant and the user preference are both
// on. An unset preference counts as off; reminders are opt-in.
func (g *Gate) Allowed(ctx context.Context) (bool, error) {
	granted, err := g.platform.Granted(ctx)
	if err != nil {
		return false, err
	}
	if !granted {
		return false, nil
	}

	enabled, found, err := g.prefs.GetFlag(ctx, repository.PrefNotificationsEnabled)
	if err != nil {
		return false, err
	}
	return found && enabled, nil
}

// CachedAuthorizer reads the platform grant from the preference store,
// where the mobile shell mirrors the OS permission state after each
// permission prompt or settings change.
type CachedAuthorizer struct {
	prefs repository.PreferenceRepository
}

func NewCachedAuthorizer(prefs repository.PreferenceRepository) *CachedAuthorizer {
	return &CachedAuthorizer{prefs: prefs}
}

func (a *CachedAuthorizer) Granted(ctx context.Context) (bool, error) {
	granted, found, err := a.prefs.GetFlag(ctx, repository.PrefPlatformPermission)
	if err != nil {
		return false, err
	}
	return found && granted, nil
}
