// Package handlers manages the different versions of the node's API.
package handlers

import (
	"expvar"
	"net/http"
	"net/http/pprof"

	"github.com/dimfeld/httptreemux/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/minichain/minichain/app/services/node/handlers/v1/public"
	"github.com/minichain/minichain/foundation/blockchain/state"
	"github.com/minichain/minichain/foundation/events"
)

// MuxConfig contains all the mandatory systems required by handlers.
type MuxConfig struct {
	Log   *zap.SugaredLogger
	State *state.State
	Evts  *events.Events
}

// PublicMux constructs a http.Handler with all application routes defined.
func PublicMux(cfg MuxConfig) http.Handler {
	mux := httptreemux.NewContextMux()

	pbl := public.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		Evts:  cfg.Evts,
	}

	mux.GET("/v1/node/status", pbl.Status)
	mux.GET("/v1/chain", pbl.Chain)
	mux.GET("/v1/peers", pbl.Peers)
	mux.POST("/v1/mine", pbl.Mine)
	mux.GET("/v1/events", pbl.Events)

	return mux
}

// DebugMux registers the standard library debug routes, the Prometheus
// metrics endpoint, and the health checks. This bypasses the use of the
// DefaultServerMux so a dependency can't inject a handler into the
// service without us knowing it.
func DebugMux(build string, log *zap.SugaredLogger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.Handle("/debug/vars", expvar.Handler())

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/debug/liveness", func(w http.ResponseWriter, r *http.Request) {
		statusHandler(w, build, "up")
	})
	mux.HandleFunc("/debug/readiness", func(w http.ResponseWriter, r *http.Request) {
		statusHandler(w, build, "ready")
	})

	return mux
}

func statusHandler(w http.ResponseWriter, build string, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"` + status + `","build":"` + build + `"}`))
}
