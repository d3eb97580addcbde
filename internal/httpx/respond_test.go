package httpx

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nmesfin/mesob/internal/apperror"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", apperror.New(apperror.KindValidation, "cart is empty"), http.StatusBadRequest},
		{"authorization", apperror.New(apperror.KindAuthorization, "admin role required"), http.StatusForbidden},
		{"not found", apperror.New(apperror.KindNotFound, "order not found"), http.StatusNotFound},
		{"invalid state", apperror.New(apperror.KindInvalidState, "already delivered"), http.StatusConflict},
		{"internal", apperror.Wrap(apperror.KindInternal, "list orders", errors.New("socket closed")), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)

			WriteError(rec, req, tc.err)

			if rec.Code != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, rec.Code)
			}
		})
	}
}

func TestWriteErrorLogsInternalCause(t *testing.T) {
	buf := &bytes.Buffer{}
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)

	WriteError(rec, req, apperror.Wrap(apperror.KindInternal, "aggregate sales summary", errors.New("socket closed")))

	if strings.Contains(rec.Body.String(), "socket closed") {
		t.Errorf("store detail leaked to client: %s", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "internal server error") {
		t.Errorf("expected generic body, got %s", rec.Body.String())
	}

	if !strings.Contains(buf.String(), "socket closed") {
		t.Errorf("expected cause in the log, got %s", buf.String())
	}
	if !strings.Contains(buf.String(), "/api/admin/stats") {
		t.Errorf("expected request path in the log, got %s", buf.String())
	}
}

func TestWriteErrorDoesNotLogClientErrors(t *testing.T) {
	buf := &bytes.Buffer{}
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/orders", nil)

	WriteError(rec, req, apperror.New(apperror.KindValidation, "cart is empty"))

	if buf.Len() != 0 {
		t.Errorf("expected no log for a client error, got %s", buf.String())
	}
}
