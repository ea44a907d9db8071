package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/coachdesk/core/sms"
	inmemdb "github.com/trezcool/coachdesk/storage/inmem"
)

func TestInstrumentLogs(t *testing.T) {
	m := New()
	repo := m.InstrumentLogs(inmemdb.NewLogRepository(inmemdb.Open()))
	ctx := context.Background()

	for _, status := range []string{sms.StatusSent, sms.StatusSent, sms.StatusFailed} {
		_, err := repo.AppendLog(ctx, sms.LogEntry{ID: status, Audience: sms.AudienceStudent, Status: status})
		assert.NoError(t, err)
	}

	assert.Equal(t, float64(2), testutil.ToFloat64(m.deliveries.WithLabelValues(sms.AudienceStudent, sms.StatusSent)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.deliveries.WithLabelValues(sms.AudienceStudent, sms.StatusFailed)))

	entries, err := repo.FilterLogs(ctx, sms.LogFilter{})
	assert.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestEchoMiddleware(t *testing.T) {
	m := New()
	e := echo.New()
	e.Use(m.EchoMiddleware())
	e.GET("/items/:id", func(ctx echo.Context) error { return ctx.NoContent(http.StatusNoContent) })
	e.GET("/metrics", echo.WrapHandler(m.Handler()))

	for _, path := range []string{"/items/1", "/items/2"} {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}
	assert.Equal(t, float64(2), testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/items/:id", "204")))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "coachdesk_http_requests_total"))
}
