package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (c *controller) GetMux() http.Handler {
	r := chi.NewRouter()

	r.Use(c.requestIdMw)
	r.Use(c.requestLoggingMw)

	r.Get("/healthz", c.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{}))
	r.Get("/ws", c.serveWS)

	return r
}

func (c *controller) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
