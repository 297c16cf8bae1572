package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Unauthorized("no rights"), http.StatusForbidden},
		{NotFound("request %s not found", "20250102_001"), http.StatusNotFound},
		{InvalidTransition("Closed is terminal"), http.StatusBadRequest},
		{Validation("reason is required"), http.StatusBadRequest},
		{Conflict("id allocation exhausted"), http.StatusConflict},
		{errors.New("driver: broken pipe"), http.StatusInternalServerError},
		{nil, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, HTTPStatus(tc.err))
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	base := NotFound("request not found")
	wrapped := fmt.Errorf("load request: %w", base)

	require.Equal(t, KindNotFound, KindOf(wrapped))
	require.Equal(t, http.StatusNotFound, HTTPStatus(wrapped))
}

func TestWrapKeepsCauseOutOfKind(t *testing.T) {
	cause := errors.New("duplicate key value violates unique constraint")
	err := Wrap(KindConflict, cause, "could not allocate request id")

	require.Equal(t, KindConflict, KindOf(err))
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "could not allocate request id")
}
