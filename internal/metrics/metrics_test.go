package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestNewRegistersDistinctInstruments(t *testing.T) {
	m := New()

	m.ParticipantsTotal.Set(4)
	m.PlacementsTotal.Add(3)
	m.OrphansTotal.Inc()
	m.RebalanceMovesTotal.Inc()
	m.HeartbeatTimeoutTotal.Inc()

	require.Equal(t, float64(4), testutil.ToFloat64(m.ParticipantsTotal))
	require.Equal(t, float64(3), testutil.ToFloat64(m.PlacementsTotal))
	require.Equal(t, float64(1), testutil.ToFloat64(m.OrphansTotal))
	require.Equal(t, float64(1), testutil.ToFloat64(m.RebalanceMovesTotal))
	require.Equal(t, float64(1), testutil.ToFloat64(m.HeartbeatTimeoutTotal))
}

func TestHandlerServesExposition(t *testing.T) {
	m := New()
	m.PlacementsTotal.Add(3)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	require.Contains(t, rec.Body.String(), "fm_placements_total 3")
}
