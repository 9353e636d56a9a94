package permission

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carebuddy/reminder-engine/internal/repository"
)

type fakeAuthorizer struct {
	granted bool
	err     error
}

func (f *fakeAuthorizer) Granted(context.Context) (bool, error) { return f.granted, f.err }

type fakePrefs struct {
	flags map[string]bool
	err   error
}

func (f *fakePrefs) GetFlag(_ context.Context, key string) (bool, bool, error) {
	if f.err != nil {
		return false, false, f.err
	}
	v, ok := f.flags[key]
	return v, ok, nil
}

func (f *fakePrefs) SetFlag(_ context.Context, key string, value bool) error {
	f.flags[key] = value
	return nil
}

func TestAllowedRequiresBothFactors(t *testing.T) {
	tests := []struct {
		name    string
		granted bool
		enabled bool
		want    bool
	}{
		{"both on", true, true, true},
		{"platform revoked", false, true, false},
		{"preference off", true, false, false},
		{"both off", false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate := NewGate(
				&fakeAuthorizer{granted: tt.granted},
				&fakePrefs{flags: map[string]bool{repository.PrefNotificationsEnabled: tt.enabled}},
			)
			got, err := gate.Allowed(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAllowedUnsetPreferenceIsOff(t *testing.T) {
	gate := NewGate(&fakeAuthorizer{granted: true}, &fakePrefs{flags: map[string]bool{}})
	got, err := gate.Allowed(context.Background())
	require.NoError(t, err)
	assert.False(t, got)
}

func TestAllowedPropagatesStorageError(t *testing.T) {
	gate := NewGate(&fakeAuthorizer{granted: true}, &fakePrefs{err: errors.New("disk full")})
	_, err := gate.Allowed(context.Background())
	assert.Error(t, err)
}

func TestCachedAuthorizerReadsMirroredGrant(t *testing.T) {
	prefs := &fakePrefs{flags: map[string]bool{}}
	auth := NewCachedAuthorizer(prefs)

	granted, err := auth.Granted(context.Background())
	require.NoError(t, err)
	assert.False(t, granted, "unset grant counts as revoked")

	require.NoError(t, prefs.SetFlag(context.Background(), repository.PrefPlatformPermission, true))
	granted, err = auth.Granted(context.Background())
	require.NoError(t, err)
	assert.True(t, granted)
}
