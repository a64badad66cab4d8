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
	"net/http"
	"time"

	v1 "github.com/dpeckett/vlogs/v1"
)

// Options is the client configuration.
type Options struct {
	// URL is the collector server base URL. Defaults to DefaultURL.
	URL string `yaml:"url,omitempty"`
	// AppID identifies the application. Required.
	AppID string `yaml:"app_id"`
	// APIKey authenticates the application. Required.
	APIKey string `yaml:"api_key"`
	// ConnectionTimeout bounds each submission. Defaults to
	// DefaultConnectionTimeout.
	ConnectionTimeout time.Duration `yaml:"connection_timeout,omitempty"`
	// TestConnection is reserved and currently ignored.
	TestConnection bool `yaml:"test_connection,omitempty"`
	// Target is the default delivery target, merged into every event.
	Target *v1.Target `yaml:"target,omitempty"`
	// HTTPClient is the optional HTTP client to submit events with.
	HTTPClient *http.Client `yaml:"-"`
	// Environment overrides host discovery and id/time generation.
	Environment Environment `yaml:"-"`
}

// WithTelegram sets the Telegram channel of the default target, creating
// the target if needed.
func (o *Options) WithTelegram(telegram v1.Telegram) *Options {
	if o.Target == nil {
		o.Target = &v1.Target{}
	}
	o.Target.Telegram = &telegram
	return o
}

// WithDiscord sets the Discord channel of the default target, creating
// the target if needed.
func (o *Options) WithDiscord(discord v1.Discord) *Options {
	if o.Target == nil {
		o.Target = &v1.Target{}
	}
	o.Target.Discord = &discord
	return o
}
