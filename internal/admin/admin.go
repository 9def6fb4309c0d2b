// Package admin exposes the read-only room-topology view used by
// operators to inspect the live placement tree without affecting it.
package admin

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"

	"github.com/Vivekmasona/fmconnect/internal/fabric"
)

// Handler returns the GET /admin/rooms handler: a point-in-time snapshot
// of every participant and its place in the tree, taken from the
// registry's own read lock so it never observes a torn mutation. The
// response is tagged with an ETag derived from the snapshot bytes so
// operators can detect churn between polls without diffing the body.
func Handler(reg *fabric.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		data, err := json.Marshal(reg.Snapshot())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		sum := sha256.Sum256(data)
		w.Header().Set("ETag", `"`+hex.EncodeToString(sum[:])+`"`)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
