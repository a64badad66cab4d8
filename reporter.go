// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 The Noisy Sockets Authors.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package vlogs

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"slices"
	"sync/atomic"
	"time"

	v1 "github.com/dpeckett/vlogs/v1"
	"golang.org/x/sync/errgroup"
)

const (
	// The environment variable name to disable event reporting.
	doNotTrackEnvName = "DO_NOT_TRACK"
	// The default maximum number of in-flight reports.
	defaultMaxInFlight = 16
	// Absolute upper bound on a single report.
	reportTimeout = 30 * time.Second
)

// ReporterConfiguration is the background reporter configuration.
type ReporterConfiguration struct {
	// Tags is a list of optional tags to include in all reported events.
	Tags []string
	// MaxInFlight bounds the number of concurrent submissions. Events
	// reported while the bound is reached are dropped.
	MaxInFlight int
}

// Reporter submits events in the background without blocking the caller.
// There is no queue: an event that cannot be started immediately is dropped.
type Reporter struct {
	logger       *slog.Logger
	client       *Client
	tags         []string
	reportsCtx   context.Context
	reports      *errgroup.Group
	shuttingDown atomic.Bool
}

// NewReporter creates a new background reporter on top of client.
func NewReporter(ctx context.Context, logger *slog.Logger, client *Client, conf ReporterConfiguration) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}

	maxInFlight := conf.MaxInFlight
	if maxInFlight <= 0 {
		maxInFlight = defaultMaxInFlight
	}

	reports, reportsCtx := errgroup.WithContext(ctx)
	reports.SetLimit(maxInFlight)

	return &Reporter{
		logger:     logger,
		client:     client,
		tags:       conf.Tags,
		reportsCtx: reportsCtx,
		reports:    reports,
	}
}

// Close aborts any ongoing reports.
func (r *Reporter) Close() error {
	r.reports.Go(func() error {
		return context.Canceled
	})

	if err := r.reports.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}

// Shutdown gracefully shuts down the reporter, waiting for in-flight
// reports until ctx is done.
func (r *Reporter) Shutdown(ctx context.Context) error {
	// Stop accepting new reports.
	r.shuttingDown.Store(true)

	reportsDone := make(chan error, 1)
	go func() {
		defer close(reportsDone)

		reportsDone <- r.reports.Wait()
	}()

	select {
	case <-ctx.Done():
		// Abort any ongoing reports.
		return r.Close()
	case err := <-reportsDone:
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}

		return nil
	}
}

// Report submits an event in the background. The event must not be used by
// the caller after it has been reported.
func (r *Reporter) Report(event *v1.Collector) {
	if os.Getenv(doNotTrackEnvName) != "" {
		r.logger.Debug("Reporting is disabled, dropping event")
		return
	}

	// Stamp the event when it happened, not when it is sent.
	event.AssignTimestamp(r.client.env.Now)

	// Never write into the caller's backing array.
	event.Tags = slices.Concat(event.Tags, r.tags)

	if r.shuttingDown.Load() {
		r.logger.Debug("Shutting down, dropping event")
		return
	}

	started := r.reports.TryGo(func() error {
		ctx, cancel := context.WithTimeout(r.reportsCtx, reportTimeout)
		defer cancel()

		if _, err := r.client.Collect(ctx, event); err != nil {
			// Don't spam the logs when the collector is unreachable.
			r.logger.Debug("Failed to report event", slog.Any("error", err))
		}

		return nil
	})
	if !started {
		r.logger.Warn("Too many in-flight reports, dropping event")
	}
}
