// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Aerotelem

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/aerotelem/jetibridge/pkg/exbus"
	"github.com/aerotelem/jetibridge/pkg/telemetry"
)

var (
	serveConfigPath string
	serveVerbose    bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the telemetry bridge on the bus",
	Long: `Act as a telemetry slave on the EX-Bus.

The bridge answers receiver polls inside the reply slot: first with the
device and label announcement frames, then with the latest sensor data
frame. Sensors are read concurrently so that the reply path never waits
on sensor I/O.

Without --config, a default set of simulated sensors is served (vario,
battery monitor, rev counter, GPS).`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&serveConfigPath, "config", "c", "", "Sensor table YAML file")
	serveCmd.Flags().BoolVarP(&serveVerbose, "verbose", "v", false, "Debug logging")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	if serveVerbose {
		logger.SetLevel(log.DebugLevel)
	}

	cfg := telemetry.DefaultConfig()
	if serveConfigPath != "" {
		var err error
		cfg, err = telemetry.LoadConfig(serveConfigPath)
		if err != nil {
			return err
		}
	}

	registry, err := cfg.BuildRegistry()
	if err != nil {
		return err
	}
	for _, s := range registry.Sensors() {
		logger.Info("sensor registered", "name", s.Name(), "category", s.Category(), "fields", len(s.Fields()))
	}

	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()
	logger.Info("connected", "transport", connInfo)

	stats := exbus.NewStatistics()
	buffer := &telemetry.SharedBuffer{}

	responder := telemetry.NewResponder(buffer, stats, logger)
	responder.AnnounceFrames = cfg.Bus.AnnounceFrames
	if err := responder.SetJetiBoxScreen(cfg.Device.Name, "jetibridge "+rootCmd.Version); err != nil {
		return err
	}

	producer := telemetry.NewProducer(registry, buffer, logger)
	if err := producer.BuildLabels(); err != nil {
		return err
	}

	bridge := telemetry.NewBridge(conn, responder, stats, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		logger.Info("shutting down")
		cancel()
		// unblock the pending transport read
		conn.Close()
	}()

	go func() {
		if err := producer.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("producer stopped", "err", err)
			cancel()
			// unblock the pending transport read
			conn.Close()
		}
	}()

	if err := bridge.Run(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("bus loop: %w", err)
	}

	fmt.Print(stats.String())
	return nil
}
