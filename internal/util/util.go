// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 The Noisy Sockets Authors.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package util

import (
	"os"
	"os/user"

	"github.com/google/uuid"
)

// GenerateID returns a random (version 4) UUID.
func GenerateID() string {
	return uuid.NewString()
}

// Hostname returns the name of the reporting host, preferring the HOSTNAME
// environment variable.
func Hostname() string {
	if name := os.Getenv("HOSTNAME"); name != "" {
		return name
	}

	if name, err := os.Hostname(); err == nil && name != "" {
		return name
	}

	return "localhost"
}

// Username returns the user the process is running as, preferring the USER
// environment variable.
func Username() string {
	if name := os.Getenv("USER"); name != "" {
		return name
	}

	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}

	return "unknown"
}
