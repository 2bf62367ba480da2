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

package pipeline

import (
	"context"
	"sync/atomic"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/ranwatch/ric-decision-engine/pkg/config"
	"github.com/ranwatch/ric-decision-engine/pkg/engine"
	"github.com/ranwatch/ric-decision-engine/pkg/export"
	"github.com/ranwatch/ric-decision-engine/pkg/ingest"
	"github.com/ranwatch/ric-decision-engine/pkg/operational"
)

// Pipeline connects an ingester to the decision engine and the engine to a
// decision dispatcher.
type Pipeline struct {
	ingester ingest.Ingester
	eng      *engine.Engine

	running atomic.Bool
}

// NewPipeline assembles the stages from the parsed configuration.
func NewPipeline(cfg *config.ConfigFileStruct, opMetrics *operational.Metrics) (*Pipeline, error) {
	clk := clock.New()

	dispatcher, err := export.NewDispatcher(&cfg.Export, opMetrics)
	if err != nil {
		return nil, errors.Wrap(err, "cannot create dispatcher")
	}
	eng, err := engine.NewEngine(&cfg.Engine, dispatcher, opMetrics, clk)
	if err != nil {
		return nil, errors.Wrap(err, "cannot create engine")
	}
	ingester, err := ingest.NewIngester(&cfg.Ingest, opMetrics, clk)
	if err != nil {
		return nil, errors.Wrap(err, "cannot create ingester")
	}

	return &Pipeline{
		ingester: ingester,
		eng:      eng,
	}, nil
}

// Run consumes the input source until it is exhausted or the context is
// cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.running.Store(true)
	defer p.running.Store(false)
	return p.ingester.Ingest(ctx, p.eng.OnSample)
}

// Engine exposes the decision engine, mainly for inspection in tests.
func (p *Pipeline) Engine() *engine.Engine {
	return p.eng
}

// IsAlive reports liveness for the health endpoint.
func (p *Pipeline) IsAlive() error {
	return nil
}

// IsReady reports readiness for the health endpoint.
func (p *Pipeline) IsReady() error {
	if !p.running.Load() {
		log.Debugf("pipeline not ready")
		return errors.New("pipeline is not running")
	}
	return nil
}
