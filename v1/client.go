// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/propagation"
)

// CollectorPath is the collector endpoint, relative to the server base URL.
const CollectorPath = "/api/v1/collector"

// TransportError is returned when the collector answers with a status
// other than 200, 201 or 202.
type TransportError struct {
	StatusCode int
	Status     string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("failed to post data to vlogs server with status code: %d and message: %s", e.StatusCode, e.Status)
}

type CollectorClient struct {
	httpClient *http.Client
	url        string
	propagator propagation.TextMapPropagator
}

func NewCollectorClient(httpClient *http.Client, baseURL string) *CollectorClient {
	return &CollectorClient{
		httpClient: httpClient,
		url:        baseURL + CollectorPath,
		propagator: propagation.TraceContext{},
	}
}

// URL returns the collector endpoint the client posts to.
func (c *CollectorClient) URL() string {
	return c.url
}

// Post sends a single JSON body to the collector. A timeout of zero means
// no timeout. Errors from the underlying HTTP client are returned as is.
func (c *CollectorClient) Post(ctx context.Context, body []byte, headers http.Header, timeout time.Duration) (*CollectorResponse, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for name, values := range headers {
		for _, value := range values {
			req.Header.Add(name, value)
		}
	}
	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	// Link the event to the caller's trace, if any.
	c.propagator.Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted:
	default:
		return nil, &TransportError{
			StatusCode: resp.StatusCode,
			Status:     http.StatusText(resp.StatusCode),
		}
	}

	var collectorResp CollectorResponse
	// Some collectors acknowledge 202 with an empty body.
	if err := json.NewDecoder(resp.Body).Decode(&collectorResp); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &collectorResp, nil
}

// Collect serializes the event and posts it to the collector.
func (c *CollectorClient) Collect(ctx context.Context, event *Collector, headers http.Header, timeout time.Duration) (*CollectorResponse, error) {
	eventJSON, err := event.ToJSON()
	if err != nil {
		return nil, err
	}

	return c.Post(ctx, []byte(eventJSON), headers, timeout)
}
