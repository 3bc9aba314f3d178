// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/holokit/internal/achievement"
	"github.com/holomush/holokit/internal/bus"
	"github.com/holomush/holokit/internal/errs"
	"github.com/holomush/holokit/internal/leveling"
	"github.com/holomush/holokit/internal/observability"
	"github.com/holomush/holokit/internal/session"
)

const shutdownTimeout = 5 * time.Second

// maxLineSize caps a single input line. Longer lines are skipped.
const maxLineSize = 1 << 20

func (c *cli) newServeCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "serve [pack.yaml]",
		Short: "Process JSON-lines events from stdin",
		Long: `Start a session for the configured profile and apply one step per
stdin line, e.g. {"event":"item.used","fields":{"item":"potion.red"}} or
{"xp":25}. Metrics and health probes are served on --metrics-addr. On EOF or
interrupt the session is saved and a report printed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd, args, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "report format (yaml or json)")
	return cmd
}

func (c *cli) runServe(cmd *cobra.Command, args []string, output string) error {
	if err := checkOutput(output); err != nil {
		return err
	}
	ctx := cmd.Context()
	cfg, logger, err := c.setup(cmd)
	if err != nil {
		return err
	}
	pack, err := loadPack(cfg, args)
	if err != nil {
		return err
	}
	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	profile, err := profileFor(cfg, logger)
	if err != nil {
		return err
	}
	s, err := session.New(pack, st, profile, session.WithLogger(logger))
	if err != nil {
		return err
	}
	defer s.Close()

	var ready atomic.Bool
	var metrics *observability.Metrics
	var srvErr <-chan error
	if cfg.MetricsAddr != "" {
		srv := observability.NewServer(cfg.MetricsAddr, ready.Load,
			bus.RegisterMetrics,
			leveling.RegisterMetrics,
			achievement.RegisterMetrics,
		)
		srvErr, err = srv.Start()
		if err != nil {
			return err
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()
			if err := srv.Stop(stopCtx); err != nil {
				errs.LogError(logger, "failed to stop observability server", err)
			}
		}()
		metrics = srv.Metrics()
	}

	if err := s.Start(ctx); err != nil {
		return err
	}
	ready.Store(true)
	observe(metrics, s)

	loopErr := serveLoop(ctx, cmd.InOrStdin(), s, metrics, logger, srvErr)
	ready.Store(false)

	// Save even when interrupted.
	if err := s.End(context.WithoutCancel(ctx)); err != nil {
		return errors.Join(loopErr, err)
	}
	if loopErr != nil {
		return loopErr
	}
	return writeOutput(cmd.OutOrStdout(), output, s.Report())
}

// serveLoop applies one step per input line until EOF, cancellation or an
// observability server failure. Bad lines are logged, counted and skipped.
func serveLoop(ctx context.Context, r io.Reader, s *session.Session, metrics *observability.Metrics, logger *slog.Logger, srvErr <-chan error) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		readErr <- readLines(ctx, r, lines, logger)
	}()

	for {
		select {
		case <-ctx.Done():
			logger.Info("interrupted, stopping")
			return nil
		case err, ok := <-srvErr:
			if ok && err != nil {
				return oops.Wrapf(err, "observability server failed")
			}
			srvErr = nil
		case line, ok := <-lines:
			if !ok {
				if err := <-readErr; err != nil {
					return oops.Wrapf(err, "read input")
				}
				return nil
			}
			handleLine(line, s, metrics, logger)
		}
	}
}

// readLines sends each line of r to lines. A line longer than maxLineSize
// is logged, counted as a decode failure and skipped.
func readLines(ctx context.Context, r io.Reader, lines chan<- string, logger *slog.Logger) error {
	br := bufio.NewReaderSize(r, 64*1024)
	for {
		line, tooLong, err := readLine(br)
		if tooLong {
			observability.RecordDecodeFailure("too_long")
			logger.Warn("skipping oversized input line", "limit", maxLineSize)
		} else if len(line) > 0 || err == nil {
			select {
			case lines <- line:
			case <-ctx.Done():
				return nil
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// readLine reads up to the next newline. When the line exceeds maxLineSize
// the rest of it is discarded and tooLong is set.
func readLine(br *bufio.Reader) (line string, tooLong bool, err error) {
	var buf []byte
	for {
		chunk, isPrefix, rerr := br.ReadLine()
		if !tooLong {
			if len(buf)+len(chunk) > maxLineSize {
				tooLong, buf = true, nil
			} else {
				buf = append(buf, chunk...)
			}
		}
		if rerr != nil || !isPrefix {
			return string(buf), tooLong, rerr
		}
	}
}

func handleLine(line string, s *session.Session, metrics *observability.Metrics, logger *slog.Logger) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}

	var next step
	if err := json.Unmarshal([]byte(line), &next); err != nil {
		observability.RecordDecodeFailure("syntax")
		logger.Warn("skipping malformed input line", "error", err)
		return
	}

	status := "ok"
	if err := next.apply(s); err != nil {
		status = "error"
		errs.LogError(logger, "step failed", err)
	}
	if metrics != nil {
		metrics.EventsTotal.WithLabelValues(next.label(), status).Inc()
	}
	observe(metrics, s)
}

func observe(metrics *observability.Metrics, s *session.Session) {
	if metrics == nil || s.Player() == nil {
		return
	}
	metrics.XP.Set(float64(s.Player().XP()))
	metrics.Level.Set(float64(s.Player().Level()))
}
