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

package engine

import (
	"time"

	"github.com/ranwatch/ric-decision-engine/pkg/api"
	"github.com/ranwatch/ric-decision-engine/pkg/config"
)

// DecisionType discriminates the Decision variants.
type DecisionType string

const (
	DecisionAnomaly         DecisionType = "anomaly"
	DecisionQoSViolation    DecisionType = "qos_violation"
	DecisionSteering        DecisionType = "steering_recommendation"
	DecisionParameterUpdate DecisionType = "parameter_update"
)

// Decision is one control action recommended by the engine. It is immutable
// once produced; the dispatcher consumes it exactly once.
type Decision struct {
	Type      DecisionType
	Entity    string
	Timestamp time.Time

	// anomaly fields
	Metric string
	Score  float64

	// qos violation fields
	Traffic api.TrafficType

	// steering fields
	Reason string

	// parameter update fields
	Parameter float64
}

// ToGenericMap flattens the decision for generic encoders.
func (d Decision) ToGenericMap() config.GenericMap {
	gm := config.GenericMap{
		"type":      string(d.Type),
		"entity":    d.Entity,
		"timestamp": d.Timestamp.Unix(),
	}
	switch d.Type {
	case DecisionAnomaly:
		gm["metric"] = d.Metric
		gm["score"] = d.Score
	case DecisionQoSViolation:
		gm["traffic"] = string(d.Traffic)
	case DecisionSteering:
		gm["reason"] = d.Reason
	case DecisionParameterUpdate:
		gm["parameter"] = d.Parameter
	}
	return gm
}

// Dispatcher receives produced decisions. Implementations translate them
// into protocol-level control commands; the engine treats dispatch as
// fire-and-forget.
type Dispatcher interface {
	Dispatch(decision Decision)
}
