package app

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/VaheKhachatryan/InTechTestAppSln/internal/realtime"
	"github.com/VaheKhachatryan/InTechTestAppSln/internal/sessionapi"
)

func registerHTTP(
	mux *http.ServeMux,
	log Logger,
	cfg Config,
	rdb *redis.Client,
	ws *realtime.WSGateway,
	api *sessionapi.Handler,
	promReg *prometheus.Registry,
) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if cfg.ReadinessRequireStore && rdb != nil {
			if err := PingRedis(r.Context(), rdb, 2*time.Second); err != nil {
				http.Error(w, "store not ready", http.StatusServiceUnavailable)
				log.Info("readyz.store.not_ready", "err", err)
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready\n"))
	})

	if api != nil {
		api.Register(mux)
	}

	if cfg.MetricsEnabled && promReg != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))
	}

	mux.HandleFunc("/ws", ws.HandleWS)
}
