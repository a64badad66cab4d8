// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 The Noisy Sockets Authors.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// vlogs submits a single event to a vlogs collector.
//
// Settings are read from an optional YAML file (--config), then VLOGS_*
// environment variables, then flags.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/pflag"
	"github.com/tidwall/jsonc"
	"go.opentelemetry.io/otel/propagation"

	"github.com/dpeckett/vlogs"
	"github.com/dpeckett/vlogs/internal/config"
	v1 "github.com/dpeckett/vlogs/v1"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var (
		configPath     string
		url            string
		appID          string
		apiKey         string
		timeout        string
		logLevel       string
		eventType      string
		source         string
		message        string
		data           string
		dataFile       string
		userAgent      string
		tags           []string
		telegramChatID string
		telegramToken  string
		parseMode      string
		discordWebhook string
		withTrace      bool
	)

	flagSet := pflag.NewFlagSet("vlogs", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	flagSet.StringVar(&url, "url", "", "collector base URL (default "+vlogs.DefaultURL+")")
	flagSet.StringVar(&appID, "app-id", "", "application id")
	flagSet.StringVar(&apiKey, "api-key", "", "application api key")
	flagSet.StringVar(&timeout, "timeout", "", "connection timeout, in seconds or as a duration")
	flagSet.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flagSet.StringVarP(&eventType, "type", "t", string(v1.CollectorTypeLog), "event type (error, event, metric, trace, log, span)")
	flagSet.StringVarP(&source, "source", "s", string(v1.CollectorSourceServer), "event source (web, mobile, server, desktop, iot, other)")
	flagSet.StringVarP(&message, "message", "m", "", "event message")
	flagSet.StringVarP(&data, "data", "d", "", "event data as JSON (comments allowed)")
	flagSet.StringVar(&dataFile, "data-file", "", "read event data from a JSON file (comments allowed)")
	flagSet.StringVar(&userAgent, "user-agent", "", "override the reported user agent")
	flagSet.StringSliceVar(&tags, "tag", nil, "event tag (repeatable)")
	flagSet.StringVar(&telegramChatID, "telegram-chat-id", "", "also notify this Telegram chat")
	flagSet.StringVar(&telegramToken, "telegram-token", "", "Telegram bot token")
	flagSet.StringVar(&parseMode, "telegram-parse-mode", "", "Telegram parse mode (Markdown, MarkdownV2, HTML)")
	flagSet.StringVar(&discordWebhook, "discord-webhook-url", "", "also notify this Discord webhook")
	flagSet.BoolVar(&withTrace, "trace-data", false, "attach the W3C TRACEPARENT environment variable as trace data")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	if help, _ := flagSet.GetBool("help"); help {
		fmt.Fprintln(stdout, "Usage: vlogs [flags]")
		flagSet.SetOutput(stdout)
		flagSet.PrintDefaults()
		return nil
	}

	conf, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if url != "" {
		conf.URL = url
	}
	if appID != "" {
		conf.AppID = appID
	}
	if apiKey != "" {
		conf.APIKey = apiKey
	}
	if logLevel != "" {
		conf.LogLevel = logLevel
	}
	if timeout != "" {
		conf.ConnectionTimeout, err = config.ParseTimeout(timeout)
		if err != nil {
			return fmt.Errorf("invalid --timeout: %w", err)
		}
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(conf.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	event := &v1.Collector{
		Type:      v1.CollectorType(eventType),
		Source:    v1.CollectorSource(source),
		Message:   message,
		UserAgent: userAgent,
		Tags:      tags,
	}

	if dataFile != "" {
		raw, err := os.ReadFile(dataFile)
		if err != nil {
			return fmt.Errorf("failed to read data file: %w", err)
		}
		data = string(raw)
	}
	if data != "" {
		if err := json.Unmarshal(jsonc.ToJSON([]byte(data)), &event.Data); err != nil {
			return fmt.Errorf("failed to parse event data: %w", err)
		}
	}

	if withTrace {
		traceCtx := contextWithTraceparent(ctx, os.Getenv("TRACEPARENT"))
		if traceData := v1.TraceData(traceCtx); !traceData.IsNull() {
			if !event.Data.IsNull() && event.Data.Kind() != v1.KindMap {
				event.Data = v1.Map(v1.F("value", event.Data))
			}
			event.Data.Set("trace", traceData)
		}
		ctx = traceCtx
	}

	if telegramChatID != "" {
		mode := v1.ParseMode(parseMode)
		if mode != "" && !mode.Valid() {
			return fmt.Errorf("invalid telegram parse mode: %q", parseMode)
		}
		event.Target = v1.TargetWithTelegram(telegramChatID, v1.Telegram{
			Token:     telegramToken,
			ParseMode: mode,
		})
	}
	if discordWebhook != "" {
		if event.Target == nil {
			event.Target = &v1.Target{}
		}
		event.Target.Discord = &v1.Discord{WebhookURL: discordWebhook}
	}

	client, err := vlogs.New(logger, conf.Options)
	if err != nil {
		return err
	}

	resp, err := client.Collect(ctx, event)
	if err != nil {
		return fmt.Errorf("failed to collect event: %w", err)
	}

	logger.Info("Collected event",
		slog.String("id", event.ID()),
		slog.String("serverID", resp.ID))

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

// contextWithTraceparent extracts a W3C trace context header value into ctx.
func contextWithTraceparent(ctx context.Context, traceparent string) context.Context {
	traceparent = strings.TrimSpace(traceparent)
	if traceparent == "" {
		return ctx
	}

	return propagation.TraceContext{}.Extract(ctx, propagation.MapCarrier{"traceparent": traceparent})
}
