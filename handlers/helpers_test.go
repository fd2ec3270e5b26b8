package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/Dosada05/tabletop-tournaments/services"
)

func TestStatusForError(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{&services.ScoreError{Kind: services.ErrUnknownCategory}, http.StatusBadRequest},
		{&services.ScoreError{Kind: services.ErrInvalidScore}, http.StatusBadRequest},
		{&services.ScoreError{Kind: services.ErrGameNotFound}, http.StatusNotFound},
		{&services.ScoreError{Kind: services.ErrScoreAlreadySet}, http.StatusConflict},
		{fmt.Errorf("%w: x", services.ErrTournamentNotFound), http.StatusNotFound},
		{services.ErrCategoryInUse, http.StatusConflict},
		{services.ErrInvalidCredentials, http.StatusUnauthorized},
		{services.ErrForbiddenOperation, http.StatusForbidden},
		{services.ErrExportUnavailable, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := statusForError(tc.err); got != tc.want {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.want, got)
		}
	}
}

func TestRawScoreAcceptsStringsAndNumbers(t *testing.T) {
	cases := map[string]string{
		`"15"`:  "15",
		`15`:    "15",
		` 7 `:   "7",
		`null`:  "",
		``:      "",
		`"abc"`: "abc",
		`1.5`:   "1.5",
	}
	for raw, want := range cases {
		req := enterScoreRequest{Score: []byte(raw)}
		if got := req.rawScore(); got != want {
			t.Fatalf("%q: expected %q, got %q", raw, want, got)
		}
	}
}
