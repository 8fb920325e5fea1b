package main

import (
	"net/http"
	"time"

	"github.com/mcdev12/legoraffle/go/internal/config"
)

func setupServer(cfg config.Config, services *Services) *http.Server {
	// No WriteTimeout: it would cut off hijacked websocket connections.
	return &http.Server{
		Addr:              cfg.Addr(),
		Handler:           services.Gateway.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
