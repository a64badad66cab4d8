// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 The Noisy Sockets Authors.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package vlogs_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/dpeckett/vlogs"
	v1 "github.com/dpeckett/vlogs/v1"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ConfigurationError(t *testing.T) {
	tests := []struct {
		name    string
		appID   string
		apiKey  string
		missing []string
	}{
		{name: "missing app id", apiKey: "K1", missing: []string{"AppID"}},
		{name: "missing api key", appID: "A1", missing: []string{"APIKey"}},
		{name: "missing both", missing: []string{"AppID", "APIKey"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := vlogs.NewWith(slog.Default(), tt.appID, tt.apiKey)
			require.Error(t, err)
			assert.Nil(t, client)

			var confErr *vlogs.ConfigurationError
			require.True(t, errors.As(err, &confErr))
			assert.Equal(t, tt.missing, confErr.Missing)
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	client, err := vlogs.NewWith(nil, "A1", "K1")
	require.NoError(t, err)

	assert.Equal(t, vlogs.DefaultURL, client.URL())
}

func TestCollect(t *testing.T) {
	server, requestCh := mockCollectorServer(t, http.StatusOK, `{"id":"xyz","message":"ok"}`)
	t.Cleanup(server.Close)

	client, err := vlogs.New(slog.Default(), vlogs.Options{
		URL:         server.URL,
		AppID:       "A1",
		APIKey:      "K1",
		Environment: &fakeEnvironment{},
	})
	require.NoError(t, err)

	req := &v1.Collector{
		Message: "hello",
		Type:    v1.CollectorTypeLog,
		Source:  v1.CollectorSourceWeb,
	}

	resp, err := client.Collect(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "xyz", resp.ID)
	assert.Equal(t, "ok", resp.Message)
	assert.Equal(t, "event-1", req.ID())
	assert.Equal(t, fakeNow.UnixMilli(), req.Timestamp())

	received := <-requestCh
	assert.Equal(t, "A1", received.header.Get("x-app-id"))
	assert.Equal(t, "K1", received.header.Get("x-api-key"))
	assert.Equal(t, "application/json", received.header.Get("Content-Type"))

	body := received.body
	assert.Equal(t, "event-1", body["id"])
	assert.Equal(t, "log", body["type"])
	assert.Equal(t, "web", body["source"])
	assert.Equal(t, "hello", body["message"])
	assert.Equal(t, "vlogs-go-sdk/0.0.2-2 (test-host)", body["user_agent"])
	assert.EqualValues(t, fakeNow.UnixMilli(), body["timestamp"])

	target, ok := body["target"].(map[string]any)
	require.True(t, ok, "target should be an object")
	assert.Nil(t, target["telegram"])
	assert.Nil(t, target["discord"])
	assert.Equal(t, map[string]any{
		"name":         "vlogs",
		"version":      "0.0.2",
		"version_code": "2",
		"hostname":     "test-host",
		"sender":       "tester",
	}, target["sdk_info"])
}

func TestCollect_KeepsUserAgent(t *testing.T) {
	server, requestCh := mockCollectorServer(t, http.StatusCreated, `{"id":"1"}`)
	t.Cleanup(server.Close)

	client, err := vlogs.New(slog.Default(), vlogs.Options{
		URL:         server.URL,
		AppID:       "A1",
		APIKey:      "K1",
		Environment: &fakeEnvironment{},
	})
	require.NoError(t, err)

	_, err = client.Collect(context.Background(), &v1.Collector{UserAgent: "my-agent/1.0"})
	require.NoError(t, err)

	received := <-requestCh
	assert.Equal(t, "my-agent/1.0", received.body["user_agent"])
}

func TestCollect_DefaultTarget(t *testing.T) {
	server, requestCh := mockCollectorServer(t, http.StatusAccepted, `{"id":"1"}`)
	t.Cleanup(server.Close)

	opts := vlogs.Options{
		URL:         server.URL,
		AppID:       "A1",
		APIKey:      "K1",
		Environment: &fakeEnvironment{},
	}
	opts.WithTelegram(v1.Telegram{ChatID: "default-chat", Token: "default-token"})
	opts.WithDiscord(v1.Discord{WebhookURL: "https://discord.example/hook"})

	client, err := vlogs.New(slog.Default(), opts)
	require.NoError(t, err)

	t.Run("adopted when event has no target", func(t *testing.T) {
		req := &v1.Collector{Message: "no target"}

		_, err := client.Collect(context.Background(), req)
		require.NoError(t, err)

		require.NotNil(t, req.Target)
		assert.Equal(t, "default-chat", req.Target.Telegram.ChatID)
		assert.Equal(t, "https://discord.example/hook", req.Target.Discord.WebhookURL)
		require.NotNil(t, req.Target.SDKInfo)

		// The shared default must not pick up per-event SDK info.
		assert.Nil(t, opts.Target.SDKInfo)

		received := <-requestCh
		target := received.body["target"].(map[string]any)
		assert.Equal(t, "default-chat", target["telegram"].(map[string]any)["chat_id"])
	})

	t.Run("merged channel by channel", func(t *testing.T) {
		req := &v1.Collector{
			Message: "partial target",
			Target:  v1.TargetWithTelegram("my-chat", v1.Telegram{}),
		}

		_, err := client.Collect(context.Background(), req)
		require.NoError(t, err)

		// The caller's partial channel is not completed from the default.
		assert.Equal(t, "my-chat", req.Target.Telegram.ChatID)
		assert.Empty(t, req.Target.Telegram.Token)
		assert.Equal(t, "https://discord.example/hook", req.Target.Discord.WebhookURL)

		<-requestCh
	})

	t.Run("sdk info always replaced", func(t *testing.T) {
		req := &v1.Collector{
			Target: &v1.Target{SDKInfo: &v1.SDKInfo{Name: "impostor"}},
		}

		_, err := client.Collect(context.Background(), req)
		require.NoError(t, err)

		assert.Equal(t, vlogs.Name, req.Target.SDKInfo.Name)
		assert.Equal(t, "test-host", req.Target.SDKInfo.Hostname)

		<-requestCh
	})
}

func TestCollect_TransportError(t *testing.T) {
	server, _ := mockCollectorServer(t, http.StatusInternalServerError, `{"message":"boom"}`)
	t.Cleanup(server.Close)

	client, err := vlogs.New(slog.Default(), vlogs.Options{
		URL:    server.URL,
		AppID:  "A1",
		APIKey: "K1",
	})
	require.NoError(t, err)

	resp, err := client.Collect(context.Background(), &v1.Collector{Message: "hello"})
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.Contains(t, err.Error(), "500")

	var transportErr *v1.TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, http.StatusInternalServerError, transportErr.StatusCode)
	assert.Equal(t, "Internal Server Error", transportErr.Status)
}

func TestCollect_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client, err := vlogs.New(slog.Default(), vlogs.Options{
		URL:    url,
		AppID:  "A1",
		APIKey: "K1",
	})
	require.NoError(t, err)

	_, err = client.Collect(context.Background(), &v1.Collector{Message: "hello"})
	require.Error(t, err)

	var transportErr *v1.TransportError
	assert.False(t, errors.As(err, &transportErr))
}

var fakeNow = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

type fakeEnvironment struct {
	ids int
}

func (e *fakeEnvironment) Hostname() string { return "test-host" }
func (e *fakeEnvironment) Sender() string { return "tester" }
func (e *fakeEnvironment) Now() time.Time { return fakeNow }

func (e *fakeEnvironment) NewID() string {
	e.ids++
	return "event-" + strconv.Itoa(e.ids)
}

type receivedRequest struct {
	header http.Header
	body   map[string]any
}

func mockCollectorServer(t *testing.T, status int, response string) (*httptest.Server, chan receivedRequest) {
	requestCh := make(chan receivedRequest, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()

		require.Equal(t, "/api/v1/collector", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		select {
		case requestCh <- receivedRequest{header: r.Header.Clone(), body: body}:
		default:
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))

	return server, requestCh
}
