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

package export

import (
	"fmt"

	"github.com/ranwatch/ric-decision-engine/pkg/config"
	"github.com/ranwatch/ric-decision-engine/pkg/engine"
	"github.com/ranwatch/ric-decision-engine/pkg/operational"
)

// NewDispatcher creates a decision dispatcher from the export section of
// the config. An empty type means stdout.
func NewDispatcher(cfg *config.Export, opMetrics *operational.Metrics) (engine.Dispatcher, error) {
	switch cfg.Type {
	case "", "stdout":
		return newStdoutDispatcher(cfg)
	case "kafka":
		return newKafkaDispatcher(cfg, opMetrics)
	default:
		return nil, fmt.Errorf("export type unknown: %s", cfg.Type)
	}
}
