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
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/ranwatch/ric-decision-engine/pkg/api"
	"github.com/ranwatch/ric-decision-engine/pkg/config"
	"github.com/ranwatch/ric-decision-engine/pkg/engine/anomaly"
	"github.com/ranwatch/ric-decision-engine/pkg/engine/classify"
	"github.com/ranwatch/ric-decision-engine/pkg/engine/predict"
	"github.com/ranwatch/ric-decision-engine/pkg/engine/store"
	"github.com/ranwatch/ric-decision-engine/pkg/operational"
	"github.com/ranwatch/ric-decision-engine/pkg/utils"
)

const (
	defaultWindowSize        = 200
	defaultViolationThresh   = 3
	defaultLoadThreshold     = 0.8
	defaultSteeringCooldown  = 120 * time.Second
	defaultMaxSteerPriority  = 2
	defaultRetrainEvery      = 50
	defaultThroughputScale   = 1000
	defaultSuccessRateMetric = "RRC.ConnEstabSucc"
)

var elog = logrus.WithField("component", "engine.Policy")

var decisionsEmitted = operational.DefineMetric(
	"decisions_emitted_total",
	"Number of decisions handed to the dispatcher, per type",
	operational.TypeCounter,
	"type",
)

// Engine is the per-sample decision policy. It owns the metric store and
// orchestrates whichever analysis components are enabled, combining their
// outputs into decisions for the dispatcher.
type Engine struct {
	store      *store.MetricStore
	detector   *anomaly.Detector
	classifier *classify.Classifier
	predictor  *predict.Predictor
	dispatcher Dispatcher
	clock      clock.Clock

	violationThreshold int
	loadThreshold      float64
	steeringCooldown   time.Duration
	maxSteerPriority   int
	retrainEvery       int
	loadIndicators     []api.LoadIndicator

	mu           sync.Mutex
	lastSteering map[string]time.Time
	sampleCount  int

	decisionCounter *prometheus.CounterVec
}

// NewEngine validates the configuration and assembles the engine.
// Nil Anomaly/Classify/Predict sections disable those components.
func NewEngine(cfg *config.Engine, dispatcher Dispatcher, opMetrics *operational.Metrics, clk clock.Clock) (*Engine, error) {
	if dispatcher == nil {
		return nil, fmt.Errorf("dispatcher must not be nil")
	}
	windowSize := cfg.Store.WindowSize
	if windowSize == 0 {
		windowSize = defaultWindowSize
	}
	ms, err := store.NewMetricStore(windowSize)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		store:              ms,
		dispatcher:         dispatcher,
		clock:              clk,
		violationThreshold: cfg.Policy.ViolationThreshold,
		loadThreshold:      cfg.Policy.LoadThreshold,
		steeringCooldown:   time.Duration(cfg.Policy.SteeringCooldownSeconds) * time.Second,
		maxSteerPriority:   cfg.Policy.MaxSteerPriority,
		retrainEvery:       defaultRetrainEvery,
		loadIndicators:     cfg.Policy.LoadIndicators,
		lastSteering:       make(map[string]time.Time),
		decisionCounter:    opMetrics.NewCounterVec(&decisionsEmitted),
	}
	if e.violationThreshold == 0 {
		e.violationThreshold = defaultViolationThresh
	}
	if e.violationThreshold < 0 {
		return nil, fmt.Errorf("policy violationThreshold must be positive, got %d", cfg.Policy.ViolationThreshold)
	}
	if e.loadThreshold == 0 {
		e.loadThreshold = defaultLoadThreshold
	}
	if e.loadThreshold < 0 || e.loadThreshold > 1 {
		return nil, fmt.Errorf("policy loadThreshold must be within [0,1], got %v", cfg.Policy.LoadThreshold)
	}
	if e.steeringCooldown == 0 {
		e.steeringCooldown = defaultSteeringCooldown
	}
	if e.steeringCooldown < 0 {
		return nil, fmt.Errorf("policy steeringCooldownSeconds must be positive, got %d", cfg.Policy.SteeringCooldownSeconds)
	}
	if e.maxSteerPriority == 0 {
		e.maxSteerPriority = defaultMaxSteerPriority
	}
	if cfg.Predict != nil && cfg.Predict.RetrainEvery != 0 {
		if cfg.Predict.RetrainEvery < 0 {
			return nil, fmt.Errorf("predict retrainEvery must be positive, got %d", cfg.Predict.RetrainEvery)
		}
		e.retrainEvery = cfg.Predict.RetrainEvery
	}
	if len(e.loadIndicators) == 0 {
		e.loadIndicators = defaultLoadIndicators()
	}

	if cfg.Anomaly != nil {
		e.detector, err = anomaly.NewDetector(cfg.Anomaly, ms, opMetrics, clk)
		if err != nil {
			return nil, err
		}
	}
	if cfg.Classify != nil {
		e.classifier, err = classify.NewClassifier(cfg.Classify, opMetrics)
		if err != nil {
			return nil, err
		}
	}
	if cfg.Predict != nil {
		e.predictor, err = predict.NewPredictor(cfg.Predict, ms, opMetrics)
		if err != nil {
			return nil, err
		}
	}

	elog.Infof("NewEngine window=%d anomaly=%v classify=%v predict=%v",
		windowSize, e.detector != nil, e.classifier != nil, e.predictor != nil)
	return e, nil
}

func defaultLoadIndicators() []api.LoadIndicator {
	return []api.LoadIndicator{
		{Metric: "DRB.UEThpDl", Scale: defaultThroughputScale},
		{Metric: "DRB.UEThpUl", Scale: defaultThroughputScale},
		{Metric: defaultSuccessRateMetric, Scale: 100, Invert: true},
	}
}

// Store exposes the engine's metric store for feature inspection.
func (e *Engine) Store() *store.MetricStore {
	return e.store
}

// OnSample processes one decoded measurement report for an entity. It
// updates the per-key windows, runs the enabled analyses, and dispatches
// the resulting decisions. Missing metrics degrade the corresponding checks
// rather than failing; the method never returns an error.
func (e *Engine) OnSample(entity string, timestamp time.Time, snapshot config.GenericMap) {
	var decisions []Decision

	for name, raw := range snapshot {
		value, ok := floatValue(raw)
		if !ok {
			elog.Debugf("ignoring non-numeric metric %s=%v for entity %s", name, raw, entity)
			continue
		}
		key := store.Key{Entity: entity, Metric: name}
		e.store.Update(key, value)

		if e.detector != nil {
			if isAnomaly, score := e.detector.Evaluate(key, value); isAnomaly {
				elog.Infof("anomaly detected entity=%s metric=%s score=%.2f", entity, name, score)
				decisions = append(decisions, Decision{
					Type:      DecisionAnomaly,
					Entity:    entity,
					Timestamp: timestamp,
					Metric:    name,
					Score:     score,
				})
			}
		}
	}

	cellLoad := e.cellLoad(snapshot)

	if e.classifier != nil {
		traffic := e.classifier.Classify(entity, snapshot)
		if e.classifier.CheckViolation(entity, traffic, snapshot) {
			elog.Debugf("QoS violation entity=%s traffic=%s count=%d", entity, traffic, e.classifier.Violations(entity))
			decisions = append(decisions, Decision{
				Type:      DecisionQoSViolation,
				Entity:    entity,
				Timestamp: timestamp,
				Traffic:   traffic,
			})
		}
		if e.shouldSteer(entity, traffic, cellLoad) {
			elog.Infof("steering recommended entity=%s traffic=%s load=%.2f violations=%d",
				entity, traffic, cellLoad, e.classifier.Violations(entity))
			e.classifier.ResetViolations(entity)
			decisions = append(decisions, Decision{
				Type:      DecisionSteering,
				Entity:    entity,
				Timestamp: timestamp,
				Reason:    "qos",
			})
		}
	}

	if e.predictor != nil {
		parameter := e.predictor.PredictParameter(entity, snapshot)
		decisions = append(decisions, Decision{
			Type:      DecisionParameterUpdate,
			Entity:    entity,
			Timestamp: timestamp,
			Parameter: parameter,
		})
		if e.predictor.PredictTrigger(entity, snapshot) && e.takeSteeringSlot(entity) {
			decisions = append(decisions, Decision{
				Type:      DecisionSteering,
				Entity:    entity,
				Timestamp: timestamp,
				Reason:    "predicted",
			})
		}

		// outcome feedback is not available on a live stream; the applied
		// setting stands in as the training target
		e.predictor.RecordSample(entity, snapshot, parameter, 0)
		e.mu.Lock()
		e.sampleCount++
		retrain := e.sampleCount%e.retrainEvery == 0
		e.mu.Unlock()
		if retrain {
			e.predictor.MaybeRetrain()
		}
	}

	for _, d := range decisions {
		e.decisionCounter.WithLabelValues(string(d.Type)).Inc()
		e.dispatcher.Dispatch(d)
	}
}

// shouldSteer applies the steering gate: enough accumulated violations, an
// overloaded cell, high-priority traffic, and an expired per-entity
// cooldown. Passing the gate consumes the cooldown slot.
func (e *Engine) shouldSteer(entity string, traffic api.TrafficType, cellLoad float64) bool {
	if e.classifier.Violations(entity) < e.violationThreshold {
		return false
	}
	if cellLoad <= e.loadThreshold {
		return false
	}
	profile, ok := e.classifier.Profile(traffic)
	if !ok || profile.Priority > e.maxSteerPriority {
		return false
	}
	return e.takeSteeringSlot(entity)
}

// takeSteeringSlot checks the per-entity steering cooldown and, when it has
// elapsed, records the current time as the new cooldown origin.
func (e *Engine) takeSteeringSlot(entity string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.clock.Now()
	if last, ok := e.lastSteering[entity]; ok && now.Sub(last) < e.steeringCooldown {
		return false
	}
	e.lastSteering[entity] = now
	return true
}

// cellLoad averages the configured normalized load indicators present in
// the snapshot, each clamped to [0,1]. No indicator present means load 0.
func (e *Engine) cellLoad(snapshot config.GenericMap) float64 {
	var sum float64
	var n int
	for _, ind := range e.loadIndicators {
		raw, ok := snapshot[ind.Metric]
		if !ok {
			continue
		}
		v, ok := floatValue(raw)
		if !ok {
			continue
		}
		scale := ind.Scale
		if scale == 0 {
			scale = 1
		}
		x := v / scale
		if x < 0 {
			x = 0
		}
		if x > 1 {
			x = 1
		}
		if ind.Invert {
			if v > 0 {
				x = 1 - x
			} else {
				x = 0
			}
		}
		sum += x
		n++
	}
	if n == 0 {
		return 0.0
	}
	return sum / float64(n)
}

func floatValue(raw interface{}) (float64, bool) {
	v, err := utils.ConvertToFloat64(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
