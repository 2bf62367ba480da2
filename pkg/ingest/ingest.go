/*
 * Copyright (C) 2024 IBM, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/ranwatch/ric-decision-engine/pkg/config"
	"github.com/ranwatch/ric-decision-engine/pkg/operational"
)

// SampleFunc consumes one decoded measurement report.
type SampleFunc func(entity string, timestamp time.Time, metrics config.GenericMap)

// Ingester reads measurement reports from a source and hands them to
// process until the source is exhausted or the context is cancelled.
type Ingester interface {
	Ingest(ctx context.Context, process SampleFunc) error
}

// NewIngester creates an ingester from the ingest section of the config
func NewIngester(cfg *config.Ingest, opMetrics *operational.Metrics, clk clock.Clock) (Ingester, error) {
	switch cfg.Type {
	case "file":
		return newFileIngester(cfg, opMetrics, clk)
	case "stdin":
		return newStdinIngester(opMetrics, clk)
	default:
		return nil, fmt.Errorf("ingest type unknown: %s", cfg.Type)
	}
}
