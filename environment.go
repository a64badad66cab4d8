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
	"time"

	"github.com/dpeckett/vlogs/internal/util"
)

// Environment provides the host details and generators the client needs.
// It is consulted once per collected event.
type Environment interface {
	// Hostname returns the name of the reporting host.
	Hostname() string
	// Sender returns the identity of the reporting user or agent.
	Sender() string
	// NewID returns a fresh unique event id.
	NewID() string
	// Now returns the current wall clock time.
	Now() time.Time
}

// SystemEnvironment returns an Environment backed by the operating system.
func SystemEnvironment() Environment {
	return systemEnvironment{}
}

type systemEnvironment struct{}

func (systemEnvironment) Hostname() string { return util.Hostname() }
func (systemEnvironment) Sender() string { return util.Username() }
func (systemEnvironment) NewID() string { return util.GenerateID() }
func (systemEnvironment) Now() time.Time { return time.Now() }
