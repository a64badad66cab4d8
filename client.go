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
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	v1 "github.com/dpeckett/vlogs/v1"
)

const (
	// Name is the SDK name reported with every event.
	Name = "vlogs"
	// Version is the SDK version reported with every event.
	Version = "0.0.2"
	// VersionCode is the SDK build number reported with every event.
	VersionCode = "2"

	// DefaultURL is the collector server used when Options.URL is unset.
	DefaultURL = "https://hsg1-vlogs.ctdn.net"
	// DefaultConnectionTimeout is used when Options.ConnectionTimeout is unset.
	DefaultConnectionTimeout = 60 * time.Second

	appIDHeader  = "x-app-id"
	apiKeyHeader = "x-api-key"
)

// ConfigurationError is returned when the client options are unusable.
type ConfigurationError struct {
	// Missing lists the required options that were empty.
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s required", strings.Join(e.Missing, " and "))
}

// Client submits events to a vlogs collector.
type Client struct {
	logger  *slog.Logger
	opts    Options
	env     Environment
	service *v1.CollectorClient
}

// New creates a client from the given options. It fails with a
// *ConfigurationError if the app id or api key is empty.
func New(logger *slog.Logger, opts Options) (*Client, error) {
	var missing []string
	if opts.AppID == "" {
		missing = append(missing, "AppID")
	}
	if opts.APIKey == "" {
		missing = append(missing, "APIKey")
	}
	if len(missing) > 0 {
		return nil, &ConfigurationError{Missing: missing}
	}

	if logger == nil {
		logger = slog.Default()
	}

	if opts.URL == "" {
		opts.URL = DefaultURL
	}
	opts.URL = strings.TrimSuffix(opts.URL, "/")

	if opts.ConnectionTimeout <= 0 {
		opts.ConnectionTimeout = DefaultConnectionTimeout
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	env := opts.Environment
	if env == nil {
		env = SystemEnvironment()
	}

	logger.Info("Initialized vlogs client",
		slog.String("appID", opts.AppID),
		slog.String("sdkVersion", Version+"-"+VersionCode))

	return &Client{
		logger:  logger,
		opts:    opts,
		env:     env,
		service: v1.NewCollectorClient(httpClient, opts.URL),
	}, nil
}

// NewWith creates a client with only the required credentials set.
func NewWith(logger *slog.Logger, appID, apiKey string) (*Client, error) {
	return New(logger, Options{
		AppID:  appID,
		APIKey: apiKey,
	})
}

// URL returns the collector server base URL.
func (c *Client) URL() string {
	return c.opts.URL
}

// Collect submits a single event and returns the server acknowledgement.
//
// The event is updated in place before it is sent: its id and timestamp
// are assigned if missing, the default target is merged into its target,
// its SDK info is replaced, and a user agent is set if it has none.
func (c *Client) Collect(ctx context.Context, req *v1.Collector) (*v1.CollectorResponse, error) {
	id := req.AssignID(c.env.NewID)
	req.AssignTimestamp(c.env.Now)

	c.logger.Debug("Collecting event", slog.String("id", id))

	headers := http.Header{}
	headers.Set(appIDHeader, c.opts.AppID)
	headers.Set(apiKeyHeader, c.opts.APIKey)
	headers.Set("Content-Type", "application/json")

	hostname := c.env.Hostname()
	sdkInfo := &v1.SDKInfo{
		Name:        Name,
		Version:     Version,
		VersionCode: VersionCode,
		Hostname:    hostname,
		Sender:      c.env.Sender(),
	}

	if req.Target == nil {
		if c.opts.Target != nil {
			// Copy so the SDK info below never lands on the shared default.
			req.Target = c.opts.Target.Clone()
		} else {
			req.Target = &v1.Target{}
		}
	} else {
		req.Target.Merge(c.opts.Target)
	}

	// Always report our own identity, whatever the caller supplied.
	req.Target.SDKInfo = sdkInfo

	if req.UserAgent == "" {
		req.UserAgent = fmt.Sprintf("vlogs-go-sdk/%s-%s (%s)", Version, VersionCode, hostname)
	}

	return c.service.Collect(ctx, req, headers, c.opts.ConnectionTimeout)
}
