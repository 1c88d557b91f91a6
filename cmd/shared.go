// SPDX-License-Identifier: AGPL-3.0-or-later
// opensand-dataplane - A DVB-S2/DVB-RCS2 satellite dataplane emulator
// Copyright (C) 2023-2026 Jacob McSwain
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// The source code is available at <https://github.com/opensand-go/opensand-dataplane>

// Package cmd builds the gw / sat / st cobra subcommand
// entrypoints sharing config loading, logging, and background-server
// bring-up.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/opensand-go/opensand-dataplane/internal/config"
	"github.com/opensand-go/opensand-dataplane/internal/logging"
	"github.com/opensand-go/opensand-dataplane/internal/metrics"
	"github.com/opensand-go/opensand-dataplane/internal/pprof"
	"github.com/USA-RedDragon/configulator"
	"github.com/ztrue/shutdown"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// loadConfig loads and validates the entity process configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := configulator.New[config.Config]().Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// setupLogger installs the process-wide structured logger and returns
// it for entity wiring.
func setupLogger(cfg *config.Config) *slog.Logger {
	log := logging.New(cfg.LogLevel)
	slog.SetDefault(log)
	return log
}

// setupTracing initializes OpenTelemetry tracing if configured. When
// tracing is not configured it returns a no-op cleanup function.
func setupTracing(cfg *config.Config) (func(context.Context) error, error) {
	if cfg.Metrics.OTLPEndpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	return initTracer(cfg)
}

func initTracer(cfg *config.Config) (func(context.Context) error, error) {
	exporter, err := otlptrace.New(
		context.Background(),
		otlptracegrpc.NewClient(
			otlptracegrpc.WithInsecure(),
			otlptracegrpc.WithEndpoint(cfg.Metrics.OTLPEndpoint),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}
	resources, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			attribute.String("service.name", "opensand-dataplane"),
			attribute.String("entity.role", string(cfg.Entity.Role)),
			attribute.String("library.language", "go"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace resources: %w", err)
	}

	otel.SetTracerProvider(
		sdktrace.NewTracerProvider(
			sdktrace.WithSampler(sdktrace.AlwaysSample()),
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(resources),
		),
	)
	return exporter.Shutdown, nil
}

// startBackgroundServices starts the metrics and pprof HTTP servers.
func startBackgroundServices(cfg *config.Config, log *slog.Logger) {
	go func() {
		if err := metrics.CreateMetricsServer(cfg); err != nil {
			log.Error("metrics server failed", "error", err)
		}
	}()
	go func() {
		if err := pprof.CreatePProfServer(cfg); err != nil {
			log.Error("pprof server failed", "error", err)
		}
	}()
}

// entityID parses the configured entity id into the numeric form
// internal/relay and internal/aloha key their tables on.
func entityID(cfg *config.Config) (uint16, error) {
	id, err := strconv.ParseUint(cfg.Entity.ID, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid entity id %q: %w", cfg.Entity.ID, err)
	}
	return uint16(id), nil
}

// runUntilSignal blocks until a termination signal arrives or ctx is
// cancelled, then calls stop and waits up to a fixed timeout for it
// and the tracer cleanup to finish.
func runUntilSignal(ctx context.Context, log *slog.Logger, cleanup func(context.Context) error, stop func(context.Context)) {
	var once sync.Once
	done := make(chan struct{})

	shutdownNow := func() {
		once.Do(func() {
			defer close(done)

			wg := new(sync.WaitGroup)
			wg.Add(1)
			go func() {
				defer wg.Done()
				stop(ctx)
			}()
			wg.Add(1)
			go func() {
				defer wg.Done()
				const timeout = 5 * time.Second
				shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
				defer cancel()
				if err := cleanup(shutdownCtx); err != nil {
					log.Error("failed to shutdown tracer", "error", err)
				}
			}()

			const timeout = 10 * time.Second
			stopped := make(chan struct{})
			go func() {
				defer close(stopped)
				wg.Wait()
			}()
			select {
			case <-stopped:
				log.Info("shutdown complete")
			case <-time.After(timeout):
				log.Error("shutdown timed out, forcing exit")
				os.Exit(1)
			}
		})
	}

	shutdown.AddWithParam(func(sig os.Signal) {
		log.Error("shutting down due to signal", "signal", sig)
		shutdownNow()
	})
	go func() {
		<-ctx.Done()
		log.Error("shutting down due to context cancellation", "error", ctx.Err())
		shutdownNow()
	}()

	shutdown.Listen(syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP)
	<-done
}
