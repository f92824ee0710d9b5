package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize_CanonicalSpellings(t *testing.T) {
	for _, status := range lifecycle {
		require.Equal(t, status, Normalize(string(status)))
	}
	require.Equal(t, StatusCancelled, Normalize("cancelled"))
}

func TestNormalize_LegacyAliases(t *testing.T) {
	require.Equal(t, StatusBuilding, Normalize("generating"))
	require.Equal(t, StatusBuilding, Normalize("Generating"))
	require.Equal(t, StatusCancelled, Normalize("canceled"))
	require.Equal(t, StatusPaid, Normalize("  PAID "))
	require.Equal(t, StatusDelivered, Normalize("Delivered"))
}

func TestNormalize_UnknownFailsClosed(t *testing.T) {
	for _, raw := range []string{"", "shipped", "in_progress", "draft", "💥"} {
		status := Normalize(raw)
		require.Equal(t, StatusUnknown, status, "raw=%q", raw)
		require.False(t, status.Known())
		require.Equal(t, -1, status.Ordinal())
	}
}

func TestOrdinal_StrictlyIncreasesAlongLifecycle(t *testing.T) {
	for i, status := range lifecycle {
		require.Equal(t, i, status.Ordinal())
	}
	require.Equal(t, -1, StatusCancelled.Ordinal())
}

func TestTerminal(t *testing.T) {
	require.True(t, StatusDelivered.Terminal())
	require.True(t, StatusCancelled.Terminal())
	for _, status := range lifecycle[:len(lifecycle)-1] {
		require.False(t, status.Terminal(), "status=%s", status)
	}
}

func TestResolve_ProgressMonotonicAlongLifecycle(t *testing.T) {
	previous := -1
	for _, status := range lifecycle {
		p := Resolve(status)
		require.GreaterOrEqual(t, p.Percent, previous, "status=%s", status)
		previous = p.Percent
	}
	require.Equal(t, 100, Resolve(StatusDelivered).Percent)
}

func TestResolve_StatusGroupsShareOnePresentation(t *testing.T) {
	// paid, onboarding_pending, and briefing all render as step 1; preview
	// and review both render as step 3. The portal must not distinguish them.
	require.Equal(t, Resolve(StatusPaid), Resolve(StatusOnboardingPending))
	require.Equal(t, Resolve(StatusPaid), Resolve(StatusBriefing))
	require.Equal(t, Resolve(StatusPreview), Resolve(StatusReview))
	require.Equal(t, 1, Resolve(StatusPaid).Step)
	require.Equal(t, 3, Resolve(StatusReview).Step)
}

func TestResolve_CancelledAndUnknown(t *testing.T) {
	cancelled := Resolve(StatusCancelled)
	require.Equal(t, 0, cancelled.Percent)
	require.Equal(t, -1, cancelled.Step)

	unknown := Resolve(StatusUnknown)
	require.Equal(t, 0, unknown.Percent)
	require.Equal(t, -1, unknown.Step)
}
