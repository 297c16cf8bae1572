package workflow

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// allowedPairs mirrors the legality table exhaustively; the test below walks
// all 36 combinations against it.
var allowedPairs = map[Status]map[Status]bool{
	StatusSubmitted: {StatusNeedInfo: true, StatusAccepted: true, StatusSuspended: true, StatusRejected: true},
	StatusNeedInfo:  {StatusAccepted: true, StatusSuspended: true, StatusRejected: true},
	StatusAccepted:  {StatusClosed: true},
	StatusSuspended: {StatusAccepted: true, StatusRejected: true},
	StatusRejected:  {},
	StatusClosed:    {},
}

func TestTransitionTotality(t *testing.T) {
	count := 0
	for _, from := range All {
		for _, to := range All {
			count++
			want := allowedPairs[from][to]
			require.Equalf(t, want, IsTransitionAllowed(from, to),
				"transition %s -> %s", from, to)
		}
	}
	require.Equal(t, 36, count)
}

func TestTerminalStates(t *testing.T) {
	for _, to := range All {
		require.False(t, IsTransitionAllowed(StatusRejected, to), "Rejected -> %s", to)
		require.False(t, IsTransitionAllowed(StatusClosed, to), "Closed -> %s", to)
	}
	require.True(t, IsTerminal(StatusRejected))
	require.True(t, IsTerminal(StatusClosed))
	require.False(t, IsTerminal(StatusSubmitted))
	require.False(t, IsTerminal(StatusAccepted))
}

func TestNoTransitionBackToSubmitted(t *testing.T) {
	// Re-entering Submitted is only reachable through Resubmit.
	for _, from := range All {
		require.False(t, IsTransitionAllowed(from, StatusSubmitted), "%s -> Submitted", from)
	}
}

func TestUnknownStatusNeverAllowed(t *testing.T) {
	require.False(t, IsValid(Status("Draft")))
	require.False(t, IsTransitionAllowed(Status("Draft"), StatusAccepted))
	require.False(t, IsTransitionAllowed(StatusSubmitted, Status("Done")))
}

func TestResubmitSources(t *testing.T) {
	cases := []struct {
		from         Status
		allowed      bool
		reviewerOnly bool
	}{
		{StatusSubmitted, false, false},
		{StatusNeedInfo, true, false},
		{StatusAccepted, false, false},
		{StatusSuspended, true, true},
		{StatusRejected, true, true},
		{StatusClosed, false, false},
	}

	for _, tc := range cases {
		allowed, reviewerOnly := CanResubmitFrom(tc.from)
		require.Equal(t, tc.allowed, allowed, "from %s", tc.from)
		require.Equal(t, tc.reviewerOnly, reviewerOnly, "from %s", tc.from)
	}
}
