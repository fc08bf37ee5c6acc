package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()
	m.LoginAttempt(LoginSuccess)
	m.LoginAttempt(LoginSuccess)
	m.LoginAttempt(LoginBadPassword)
	m.ScoreSaved("gpt-4o", nil)
	m.ScoreSaved("gpt-4o", errors.New("disk full"))
	m.Navigated("next")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.logins.WithLabelValues(LoginSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.logins.WithLabelValues(LoginBadPassword)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.scoresSaved.WithLabelValues("gpt-4o", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.scoresSaved.WithLabelValues("gpt-4o", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.navigation.WithLabelValues("next")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.LoginAttempt(LoginSuccess)
		m.ScoreSaved("x", nil)
		m.Navigated("prev")
		m.ObserveLedgerWrite(time.Millisecond)
	})
}

func TestHandlerExposition(t *testing.T) {
	m := New()
	m.ObserveLedgerWrite(3 * time.Millisecond)
	m.Navigated("goto")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	out := string(body)
	assert.True(t, strings.Contains(out, "paraeval_ledger_write_seconds_count 1"), out)
	assert.True(t, strings.Contains(out, `paraeval_navigation_total{action="goto"} 1`), out)
}
