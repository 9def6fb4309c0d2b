package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Vivekmasona/fmconnect/internal/fabric"
	"github.com/stretchr/testify/require"
)

func TestHandlerReturnsBareArrayWithETag(t *testing.T) {
	reg := fabric.NewRegistry()
	reg.Lock()
	reg.Add(&fabric.Participant{ID: "b-1", Label: "fm1000", LastSeen: time.Now()})
	reg.SetBroadcaster("b-1")
	reg.Unlock()

	req := httptest.NewRequest(http.MethodGet, "/admin/rooms", nil)
	rec := httptest.NewRecorder()
	Handler(reg)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("ETag"))

	var decoded []fabric.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	require.Equal(t, "b-1", decoded[0].ID)
}

func TestHandlerETagChangesWithRegistryContent(t *testing.T) {
	reg := fabric.NewRegistry()
	req := httptest.NewRequest(http.MethodGet, "/admin/rooms", nil)

	rec1 := httptest.NewRecorder()
	Handler(reg)(rec1, req)
	etagEmpty := rec1.Header().Get("ETag")

	reg.Lock()
	reg.Add(&fabric.Participant{ID: "l-1", Label: "fm2000", LastSeen: time.Now()})
	reg.Unlock()

	rec2 := httptest.NewRecorder()
	Handler(reg)(rec2, req)
	etagWithParticipant := rec2.Header().Get("ETag")

	require.NotEqual(t, etagEmpty, etagWithParticipant)
}

func TestHandlerRejectsNonGET(t *testing.T) {
	reg := fabric.NewRegistry()
	req := httptest.NewRequest(http.MethodPost, "/admin/rooms", nil)
	rec := httptest.NewRecorder()
	Handler(reg)(rec, req)

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
