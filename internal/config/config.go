// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 The Noisy Sockets Authors.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package config loads vlogs client settings for the command line tool.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/dpeckett/vlogs"
	"gopkg.in/yaml.v3"
)

// Config is the command line tool configuration.
type Config struct {
	vlogs.Options `yaml:",inline"`
	// LogLevel is one of debug, info, warn or error.
	LogLevel string `yaml:"log_level,omitempty"`
}

// Default returns the configuration used when nothing else is provided.
func Default() *Config {
	return &Config{
		Options: vlogs.Options{
			URL:               vlogs.DefaultURL,
			ConnectionTimeout: vlogs.DefaultConnectionTimeout,
		},
		LogLevel: "info",
	}
}

// Load reads the YAML file at path, if any, on top of the defaults and then
// applies the VLOGS_* environment variables. A missing file is not an error.
func Load(path string) (*Config, error) {
	conf := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err == nil {
			if err := yaml.Unmarshal(data, conf); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	if err := loadFromEnv(conf); err != nil {
		return nil, err
	}

	if err := validate(conf); err != nil {
		return nil, err
	}

	return conf, nil
}

// UnmarshalYAML decodes the configuration, accepting connection_timeout as
// either a number of seconds or a Go duration string.
func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	// Same fields, without this method.
	type plain Config

	var timeout *yaml.Node
	if node.Kind == yaml.MappingNode {
		stripped := *node
		stripped.Content = nil
		for i := 0; i+1 < len(node.Content); i += 2 {
			if node.Content[i].Value == "connection_timeout" {
				timeout = node.Content[i+1]
				continue
			}
			stripped.Content = append(stripped.Content, node.Content[i], node.Content[i+1])
		}
		node = &stripped
	}

	if err := node.Decode((*plain)(c)); err != nil {
		return err
	}

	if timeout != nil {
		d, err := ParseTimeout(timeout.Value)
		if err != nil {
			return fmt.Errorf("line %d: invalid connection_timeout: %w", timeout.Line, err)
		}
		c.ConnectionTimeout = d
	}

	return nil
}

func validate(conf *Config) error {
	if conf.Target == nil || conf.Target.Telegram == nil {
		return nil
	}

	mode := conf.Target.Telegram.ParseMode
	if mode != "" && !mode.Valid() {
		return fmt.Errorf("invalid telegram parse mode: %q", mode)
	}

	return nil
}

func loadFromEnv(conf *Config) error {
	if v := os.Getenv("VLOGS_URL"); v != "" {
		conf.URL = v
	}
	if v := os.Getenv("VLOGS_APP_ID"); v != "" {
		conf.AppID = v
	}
	if v := os.Getenv("VLOGS_API_KEY"); v != "" {
		conf.APIKey = v
	}
	if v := os.Getenv("VLOGS_LOG_LEVEL"); v != "" {
		conf.LogLevel = v
	}
	if v := os.Getenv("VLOGS_TIMEOUT"); v != "" {
		timeout, err := ParseTimeout(v)
		if err != nil {
			return fmt.Errorf("invalid VLOGS_TIMEOUT: %w", err)
		}
		conf.ConnectionTimeout = timeout
	}

	return nil
}

// ParseTimeout accepts either a Go duration ("30s") or a plain number of
// seconds ("30").
func ParseTimeout(s string) (time.Duration, error) {
	if seconds, err := strconv.Atoi(s); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}

	return time.ParseDuration(s)
}
