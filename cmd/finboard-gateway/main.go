package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/FinBoard/finboard-gateway/internal/auth"
	"github.com/FinBoard/finboard-gateway/internal/config"
	"github.com/FinBoard/finboard-gateway/internal/currency"
	"github.com/FinBoard/finboard-gateway/internal/events"
	"github.com/FinBoard/finboard-gateway/internal/httpserver"
	"github.com/FinBoard/finboard-gateway/internal/logging"
	"github.com/FinBoard/finboard-gateway/internal/metrics"
	"github.com/FinBoard/finboard-gateway/internal/rates"
	"github.com/FinBoard/finboard-gateway/internal/reloader"
	"github.com/FinBoard/finboard-gateway/internal/upload"
	"go.uber.org/zap"
)

func main() {
	cfgPath := os.Getenv("FINBOARD_CONFIG")
	if cfgPath == "" {
		cfgPath = "/etc/finboard/config.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		panic(err)
	}

	logger := logging.New(logging.Cfg{
		Level: cfg.Logging.Level,
		JSON:  cfg.Logging.JSON,
	})
	defer logger.Sync()

	fmt.Println(`
  ______ _       ____                      _
 |  ____(_)     |  _ \                    | |
 | |__   _ _ __ | |_) | ___   __ _ _ __ __| |
 |  __| | | '_ \|  _ < / _ \ / _' | '__/ _' |
 | |    | | | | | |_) | (_) | (_| | | | (_| |
 |_|    |_|_| |_|____/ \___/ \__,_|_|  \__,_|

FinBoard Gateway — dashboard / auth / fx bridge
-----------------------------------------------
Config:  ` + cfgPath + `
`)

	rec := metrics.NewRecorder()
	bus := events.NewBus(logger).WithMetrics(rec)

	sessions, err := auth.NewSessions(cfg.Auth.SessionSecret, cfg.Auth.Issuer, cfg.Auth.Audience,
		time.Duration(cfg.Auth.SessionTTLMins)*time.Minute)
	if err != nil {
		logger.Fatal("sessions", zap.Error(err))
	}
	store, err := upload.NewStore(cfg, logger)
	if err != nil {
		logger.Fatal("upload store", zap.Error(err))
	}
	provider := auth.NewProvider(cfg, logger)
	rateClient := rates.NewClient(cfg, logger)

	srv := httpserver.New(cfg, logger, httpserver.Deps{
		Bus:      bus,
		Conv:     currency.NewConverter(rateClient),
		Provider: provider,
		Sessions: sessions,
		Store:    store,
		Recorder: rec,
	})

	// Hot reload on SIGHUP
	reloader.OnSIGHUP(func() {
		newCfg, err := config.Load(cfgPath)
		if err != nil {
			logger.Warn("config reload failed", zap.Error(err))
			return
		}
		provider.Reload(newCfg)
		rateClient.Reload(newCfg)
		srv.Reload(newCfg)
		cfg = newCfg
		logger.Info("reloaded config")
	})

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Bind, cfg.HTTP.Port)
	httpSrv := &http.Server{
		Addr:    addr,
		Handler: srv.Router(),
	}

	go func() {
		logger.Info("listening", zap.String("addr", addr), zap.Bool("tls", cfg.HTTP.TLS.Enabled))
		if cfg.HTTP.TLS.Enabled {
			if err := httpSrv.ListenAndServeTLS(cfg.HTTP.TLS.Cert, cfg.HTTP.TLS.Key); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatal("http tls", zap.Error(err))
			}
		} else {
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatal("http", zap.Error(err))
			}
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(ctx)
	logger.Info("bye")
}
