/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Command feedbackd serves the feedback events HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/tomoncle/feedback"
	"github.com/tomoncle/feedback/api"
	"github.com/tomoncle/feedback/config"
	"github.com/tomoncle/feedback/database"
	"github.com/tomoncle/feedback/utils"
)

var log = utils.NewLogger("MAIN")

func main() {
	configPath := flag.String("config", utils.EnvDefaultString("FEEDBACKD_CONFIG", "feedbackd.yaml"), "path to the YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		log.WithError(err).Error("feedbackd exited")
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	utils.ConfigureConsoleLogFormat(cfg.Log.Format)
	utils.ConfigureLogLevel(cfg.Log.Level)
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := database.InitDB(ctx, cfg.DatabaseConfig()); err != nil {
		return err
	}
	defer func() {
		stats := database.GetDatabaseStats()
		log.WithFields(logrus.Fields{
			"open_conns":    stats.OpenConns,
			"wait_count":    stats.WaitCount,
			"wait_duration": stats.WaitDuration.String(),
		}).Info("closing database")
		if err := database.CloseDB(); err != nil {
			log.WithError(err).Warn("close database")
		}
	}()

	if cfg.Server.EnableMetrics {
		prometheus.MustRegister(api.NewDBStatsCollector(cfg.Database.ConnectionConfig.DBName, database.GetSQLDB))
	}

	router := api.NewRouter(feedback.NewDefaultService(), api.RouterOptions{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		EnableMetrics:  cfg.Server.EnableMetrics,
	})
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"addr":    cfg.Server.Addr,
			"db_type": cfg.Database.ConnectionConfig.Type,
			"version": feedback.Version,
		}).Info("feedbackd listening")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("feedbackd stopped")
	return nil
}
