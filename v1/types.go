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
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CollectorType is the conventional kind of a collected event.
type CollectorType string

const (
	CollectorTypeError  CollectorType = "error"
	CollectorTypeEvent  CollectorType = "event"
	CollectorTypeMetric CollectorType = "metric"
	CollectorTypeTrace  CollectorType = "trace"
	CollectorTypeLog    CollectorType = "log"
	CollectorTypeSpan   CollectorType = "span"
)

// CollectorSource is the conventional origin of a collected event.
type CollectorSource string

const (
	CollectorSourceWeb     CollectorSource = "web"
	CollectorSourceMobile  CollectorSource = "mobile"
	CollectorSourceServer  CollectorSource = "server"
	CollectorSourceDesktop CollectorSource = "desktop"
	CollectorSourceIoT     CollectorSource = "iot"
	CollectorSourceOther   CollectorSource = "other"
)

// ParseMode is the Telegram message formatting mode.
type ParseMode string

const (
	ParseModeMarkdown   ParseMode = "Markdown"
	ParseModeMarkdownV2 ParseMode = "MarkdownV2"
	ParseModeHTML       ParseMode = "HTML"
)

// Valid reports whether the parse mode is one of the supported modes.
func (m ParseMode) Valid() bool {
	switch m {
	case ParseModeMarkdown, ParseModeMarkdownV2, ParseModeHTML:
		return true
	default:
		return false
	}
}

// Telegram routes a copy of the event to a Telegram chat.
type Telegram struct {
	Token     string    `yaml:"token,omitempty"`
	ChatID    string    `yaml:"chat_id,omitempty"`
	ParseMode ParseMode `yaml:"parse_mode,omitempty"`
	// Disabled is nil when unset.
	Disabled *bool `yaml:"disabled,omitempty"`
	Extras   Value `yaml:"extras,omitempty"`
}

func (t *Telegram) ToMap() Value {
	return Map(
		F("token", OptionalString(t.Token)),
		F("chat_id", OptionalString(t.ChatID)),
		F("parse_mode", OptionalString(string(t.ParseMode))),
		F("disabled", optionalBool(t.Disabled)),
		F("extras", t.Extras),
	)
}

// Discord routes a copy of the event to a Discord webhook.
type Discord struct {
	WebhookID    string `yaml:"webhook_id,omitempty"`
	WebhookToken string `yaml:"webhook_token,omitempty"`
	WebhookURL   string `yaml:"webhook_url,omitempty"`
	// Disabled is nil when unset.
	Disabled *bool `yaml:"disabled,omitempty"`
	Extras   Value `yaml:"extras,omitempty"`
}

func (d *Discord) ToMap() Value {
	return Map(
		F("webhook_id", OptionalString(d.WebhookID)),
		F("webhook_token", OptionalString(d.WebhookToken)),
		F("webhook_url", OptionalString(d.WebhookURL)),
		F("disabled", optionalBool(d.Disabled)),
		F("extras", d.Extras),
	)
}

// SDKInfo describes the library and host that sent an event.
type SDKInfo struct {
	Name        string
	Version     string
	VersionCode string
	Hostname    string
	Sender      string
}

func (s *SDKInfo) ToMap() Value {
	return Map(
		F("name", OptionalString(s.Name)),
		F("version", OptionalString(s.Version)),
		F("version_code", OptionalString(s.VersionCode)),
		F("hostname", OptionalString(s.Hostname)),
		F("sender", OptionalString(s.Sender)),
	)
}

// Target holds the optional secondary notification channels for an event.
type Target struct {
	Telegram *Telegram `yaml:"telegram,omitempty"`
	Discord  *Discord  `yaml:"discord,omitempty"`
	SDKInfo  *SDKInfo  `yaml:"-"`
}

// TargetWithTelegram returns a target that notifies the given Telegram chat.
func TargetWithTelegram(chatID string, telegram Telegram) *Target {
	telegram.ChatID = chatID
	return &Target{Telegram: &telegram}
}

// TargetWithDiscord returns a target that posts to the given Discord webhook.
func TargetWithDiscord(webhookURL string, discord Discord) *Target {
	discord.WebhookURL = webhookURL
	return &Target{Discord: &discord}
}

// Merge fills in the channels that are missing from t with those of
// fallback. Channels are taken whole; a partially configured channel on t
// is never completed from fallback. SDKInfo is never copied.
func (t *Target) Merge(fallback *Target) {
	if fallback == nil {
		return
	}
	if t.Telegram == nil {
		t.Telegram = fallback.Telegram
	}
	if t.Discord == nil {
		t.Discord = fallback.Discord
	}
}

// Clone returns a shallow copy of the target. Channels are shared.
func (t *Target) Clone() *Target {
	if t == nil {
		return nil
	}
	clone := *t
	return &clone
}

func (t *Target) ToMap() Value {
	m := Map(F("telegram", Null()), F("discord", Null()), F("sdk_info", Null()))
	if t.Telegram != nil {
		m.Set("telegram", t.Telegram.ToMap())
	}
	if t.Discord != nil {
		m.Set("discord", t.Discord.ToMap())
	}
	if t.SDKInfo != nil {
		m.Set("sdk_info", t.SDKInfo.ToMap())
	}
	return m
}

// lazy is a value that is either unassigned or assigned exactly once.
type lazy[T any] struct {
	value    T
	assigned bool
}

func (l *lazy[T]) set(v T) {
	l.value = v
	l.assigned = true
}

func (l *lazy[T]) get(fill func() T) T {
	if !l.assigned {
		l.set(fill())
	}
	return l.value
}

// Collector is a single telemetry event to be submitted.
//
// The id and timestamp are assigned on first read (see ID and Timestamp),
// after which they never change.
type Collector struct {
	id        lazy[string]
	timestamp lazy[int64]

	// Type is one of the CollectorType constants, or any other string.
	Type CollectorType
	// Source is one of the CollectorSource constants, or any other string.
	Source  CollectorSource
	Message string
	// Data is an arbitrary payload attached to the event.
	Data      Value
	UserAgent string
	Target    *Target
	Tags      []string
}

// SetID assigns the event id. An empty id leaves it unassigned.
func (c *Collector) SetID(id string) {
	if id == "" {
		c.id = lazy[string]{}
		return
	}
	c.id.set(id)
}

// SetTimestamp assigns the event time. The zero time leaves it unassigned.
func (c *Collector) SetTimestamp(ts time.Time) {
	if ts.IsZero() {
		c.timestamp = lazy[int64]{}
		return
	}
	c.timestamp.set(ts.UnixMilli())
}

// HasID reports whether an id has been assigned.
func (c *Collector) HasID() bool { return c.id.assigned }

// HasTimestamp reports whether a timestamp has been assigned.
func (c *Collector) HasTimestamp() bool { return c.timestamp.assigned }

// ID returns the event id. If none is assigned yet, a random UUID is
// generated and stored on the event, so this mutates c on first call.
func (c *Collector) ID() string {
	return c.AssignID(uuid.NewString)
}

// AssignID is like ID but uses generate to produce a missing id.
func (c *Collector) AssignID(generate func() string) string {
	return c.id.get(generate)
}

// Timestamp returns the event time in epoch milliseconds. If none is
// assigned yet, the current time is stored on the event, so this mutates c
// on first call.
func (c *Collector) Timestamp() int64 {
	return c.AssignTimestamp(time.Now)
}

// AssignTimestamp is like Timestamp but uses now to produce a missing time.
func (c *Collector) AssignTimestamp(now func() time.Time) int64 {
	return c.timestamp.get(func() int64 { return now().UnixMilli() })
}

// ToMap returns the wire representation of the event. Every key is always
// present; unset fields are null. Calling ToMap assigns the id and
// timestamp if they are missing.
func (c *Collector) ToMap() Value {
	tags := Null()
	if c.Tags != nil {
		items := make([]Value, len(c.Tags))
		for i, tag := range c.Tags {
			items[i] = String(tag)
		}
		tags = List(items...)
	}

	target := Null()
	if c.Target != nil {
		target = c.Target.ToMap()
	}

	return Map(
		F("id", String(c.ID())),
		F("type", OptionalString(string(c.Type))),
		F("source", OptionalString(string(c.Source))),
		F("message", OptionalString(c.Message)),
		F("data", c.Data),
		F("user_agent", OptionalString(c.UserAgent)),
		F("timestamp", Int(c.Timestamp())),
		F("target", target),
		F("tags", tags),
	)
}

// ToJSON encodes the wire representation of the event.
func (c *Collector) ToJSON() (string, error) {
	eventJSON, err := json.Marshal(c.ToMap())
	if err != nil {
		return "", fmt.Errorf("failed to marshal event: %w", err)
	}
	return string(eventJSON), nil
}

// CollectorResponse is the server acknowledgement of a collected event.
type CollectorResponse struct {
	// The server assigned id of the event.
	ID string `json:"id,omitempty"`
	// A message from the server.
	Message string `json:"message,omitempty"`
}

func optionalBool(b *bool) Value {
	if b == nil {
		return Null()
	}
	return Bool(*b)
}
