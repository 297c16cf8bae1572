package response

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"reqtrack/pkg/apperr"

	"github.com/stretchr/testify/require"
)

func TestFromErrorClassified(t *testing.T) {
	status, resp := FromError(apperr.Validation("reason is required"))

	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "error", resp.Status)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "reason is required", resp.Error)
	require.Equal(t, string(apperr.KindValidation), resp.ErrorKind)
}

func TestFromErrorHidesWrappedCause(t *testing.T) {
	cause := errors.New(`ERROR: duplicate key value violates unique constraint "requests_pkey" (SQLSTATE 23505)`)
	err := apperr.Wrap(apperr.KindConflict, cause, "could not allocate a request id, please retry")

	status, resp := FromError(err)

	require.Equal(t, http.StatusConflict, status)
	require.Equal(t, "could not allocate a request id, please retry", resp.Error)
	require.NotContains(t, resp.Error, "SQLSTATE")
	require.NotContains(t, resp.Error, "requests_pkey")
	require.Equal(t, string(apperr.KindConflict), resp.ErrorKind)
}

func TestFromErrorKindSurvivesOuterWrap(t *testing.T) {
	err := fmt.Errorf("load request: %w", apperr.NotFound("request 20250102_001 not found"))

	status, resp := FromError(err)

	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "request 20250102_001 not found", resp.Error)
	require.Equal(t, string(apperr.KindNotFound), resp.ErrorKind)
}

func TestFromErrorUnclassified(t *testing.T) {
	status, resp := FromError(errors.New("driver: broken pipe"))

	require.Equal(t, http.StatusInternalServerError, status)
	require.Equal(t, "internal server error", resp.Error)
	require.Empty(t, resp.ErrorKind)
}
