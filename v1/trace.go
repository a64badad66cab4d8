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
	"context"

	"go.opentelemetry.io/otel/trace"
)

// TraceData returns the trace and span ids of the span in ctx as an event
// payload, suitable for trace and span events. It returns null when ctx
// carries no valid span.
func TraceData(ctx context.Context) Value {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return Null()
	}

	return Map(
		F("trace_id", String(sc.TraceID().String())),
		F("span_id", String(sc.SpanID().String())),
		F("sampled", Bool(sc.IsSampled())),
	)
}
