package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Vivekmasona/fmconnect/internal/admin"
	"github.com/Vivekmasona/fmconnect/internal/config"
	"github.com/Vivekmasona/fmconnect/internal/fabric"
	"github.com/Vivekmasona/fmconnect/internal/idgen"
	"github.com/Vivekmasona/fmconnect/internal/logging"
	"github.com/Vivekmasona/fmconnect/internal/metrics"
	"github.com/Vivekmasona/fmconnect/internal/transport"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

func main() {
	cfg := config.Load()
	m := metrics.New()
	dispatcher := fabric.NewDispatcher(cfg, m)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go dispatcher.Run(ctx)
	go runTicker(ctx, cfg.HeartbeatSweep, dispatcher.TriggerHeartbeatSweep)
	go runTicker(ctx, cfg.RebalanceInterval, dispatcher.TriggerRebalance)

	mux := http.NewServeMux()
	mux.HandleFunc("/", healthz)
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) { m.Handler().ServeHTTP(w, r) })
	mux.HandleFunc("/admin/rooms", admin.Handler(dispatcher.Registry()))
	mux.HandleFunc("/ws", handleWS(cfg, dispatcher))

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logging.Printf("server", "graceful shutdown failed: %v", err)
		}
	}()

	logging.Printf("server", "fmconnect listening on %s (croot=%d cnode=%d)", cfg.Addr(), cfg.Croot, cfg.Cnode)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.Fatalf("server", "server error: %v", err)
	}
}

func runTicker(ctx context.Context, interval time.Duration, fire func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			fire()
		case <-ctx.Done():
			return
		}
	}
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("ok"))
}

// handleWS upgrades the connection, allocates an opaque participant id and
// label, and pumps parsed frames into the dispatcher until the read loop
// ends. Every connected socket becomes exactly one unregistered participant
// the register message that follows assigns its role.
func handleWS(cfg config.Config, dispatcher *fabric.Dispatcher) http.HandlerFunc {
	connCfg := transport.Config{
		ReadLimitBytes: cfg.WSReadLimitBytes,
		WriteTimeout:   cfg.WSWriteTimeout,
		PongWait:       cfg.WSPongWait,
		PingInterval:   cfg.WSPingInterval,
	}

	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logging.Printf("server", "ws upgrade failed: %v", err)
			return
		}

		conn := transport.NewConn(raw, connCfg)
		id := idgen.NewID()
		label := idgen.NewLabel()

		p := &fabric.Participant{
			ID:        id,
			Label:     label,
			LastSeen:  time.Now(),
			Transport: conn,
		}
		dispatcher.Connect(p)

		err = conn.ReadLoop(func(frame []byte) {
			msg, err := transport.ParseInbound(frame)
			if err != nil {
				logging.Participant(id, "dropping malformed frame: %v", err)
				return
			}
			dispatcher.Message(id, msg)
		})

		reason := "client_disconnect"
		if err != nil {
			reason = "read_error"
		}
		dispatcher.Close(id, reason)
		conn.Close()
	}
}
