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

package predict

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/ranwatch/ric-decision-engine/pkg/api"
	"github.com/ranwatch/ric-decision-engine/pkg/config"
	"github.com/ranwatch/ric-decision-engine/pkg/engine/store"
	"github.com/ranwatch/ric-decision-engine/pkg/operational"
	"github.com/ranwatch/ric-decision-engine/pkg/utils"
)

const (
	defaultBufferMax       = 1000
	defaultBufferRetain    = 500
	defaultMinTrainSamples = 20
	defaultParamLow        = 10
	defaultParamHigh       = 100
	defaultTriggerProb     = 0.7
	defaultDlMetric        = "DRB.UEThpDl"
	defaultUlMetric        = "DRB.UEThpUl"

	rollingWindow = 10
	trendWindow   = 3
)

var plog = logrus.WithField("component", "engine.Predict")

var (
	retrainsTotal = operational.DefineMetric(
		"model_retrains_total",
		"Number of completed model training cycles",
		operational.TypeCounter,
	)
	trainingBufferSize = operational.DefineMetric(
		"training_buffer_size",
		"Current number of samples in the training buffer",
		operational.TypeGauge,
	)
)

type trainingSample struct {
	features []float64
	target   float64
	label    int
}

// Predictor accumulates labeled feature vectors, periodically refits a
// regression model (control parameter) and a binary trigger classifier, and
// serves predictions from the last published model snapshot.
type Predictor struct {
	mu    sync.Mutex
	buf   []trainingSample
	model atomic.Pointer[modelSnapshot]

	store       *store.MetricStore
	bufferMax   int
	retain      int
	minTrain    int
	paramLow    float64
	paramHigh   float64
	triggerProb float64
	dlMetric    string
	ulMetric    string

	retrainCounter prometheus.Counter
	bufferGauge    prometheus.Gauge
}

func NewPredictor(cfg *api.Predict, ms *store.MetricStore, opMetrics *operational.Metrics) (*Predictor, error) {
	bufferMax := cfg.BufferMax
	if bufferMax == 0 {
		bufferMax = defaultBufferMax
	}
	retain := cfg.BufferRetain
	if retain == 0 {
		retain = defaultBufferRetain
	}
	minTrain := cfg.MinTrainSamples
	if minTrain == 0 {
		minTrain = defaultMinTrainSamples
	}
	if bufferMax <= 0 || retain <= 0 || retain > bufferMax {
		return nil, fmt.Errorf("predict buffer bounds invalid: max=%d retain=%d", bufferMax, retain)
	}
	if minTrain < 2 {
		return nil, fmt.Errorf("predict minTrainSamples must be at least 2, got %d", minTrain)
	}
	paramLow := cfg.ParamLow
	if paramLow == 0 {
		paramLow = defaultParamLow
	}
	paramHigh := cfg.ParamHigh
	if paramHigh == 0 {
		paramHigh = defaultParamHigh
	}
	if paramLow >= paramHigh {
		return nil, fmt.Errorf("predict parameter range invalid: low=%v high=%v", paramLow, paramHigh)
	}
	triggerProb := cfg.TriggerProbability
	if triggerProb == 0 {
		triggerProb = defaultTriggerProb
	}
	if triggerProb <= 0 || triggerProb >= 1 {
		return nil, fmt.Errorf("predict triggerProbability must be within (0,1), got %v", triggerProb)
	}
	dlMetric := cfg.DlMetric
	if dlMetric == "" {
		dlMetric = defaultDlMetric
	}
	ulMetric := cfg.UlMetric
	if ulMetric == "" {
		ulMetric = defaultUlMetric
	}

	plog.Infof("NewPredictor bufferMax=%d retain=%d minTrain=%d range=[%v,%v]", bufferMax, retain, minTrain, paramLow, paramHigh)
	return &Predictor{
		store:          ms,
		bufferMax:      bufferMax,
		retain:         retain,
		minTrain:       minTrain,
		paramLow:       paramLow,
		paramHigh:      paramHigh,
		triggerProb:    triggerProb,
		dlMetric:       dlMetric,
		ulMetric:       ulMetric,
		retrainCounter: opMetrics.NewCounter(&retrainsTotal),
		bufferGauge:    opMetrics.NewGauge(&trainingBufferSize),
	}, nil
}

// RecordSample derives the entity's feature vector and appends it to the
// training buffer together with the target parameter and the trigger label.
// No sample is recorded until the entity has stored history. On overflow
// the buffer is compacted to the most recent samples in one batch.
func (p *Predictor) RecordSample(entity string, snapshot config.GenericMap, target float64, label int) bool {
	features, ok := p.features(entity, snapshot)
	if !ok {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.buf = append(p.buf, trainingSample{features: features, target: target, label: label})
	if len(p.buf) > p.bufferMax {
		compacted := make([]trainingSample, p.retain)
		copy(compacted, p.buf[len(p.buf)-p.retain:])
		p.buf = compacted
	}
	p.bufferGauge.Set(float64(len(p.buf)))
	return true
}

// MaybeRetrain fits a new model snapshot from the current buffer and
// publishes it atomically. It is a no-op until the buffer holds enough
// samples. The trigger classifier is only fit when both labels are present;
// otherwise the new snapshot carries no classifier.
func (p *Predictor) MaybeRetrain() bool {
	p.mu.Lock()
	n := len(p.buf)
	if n < p.minTrain {
		p.mu.Unlock()
		return false
	}
	samples := make([][]float64, n)
	targets := make([]float64, n)
	labels := make([]int, n)
	for i, s := range p.buf {
		samples[i] = s.features
		targets[i] = s.target
		labels[i] = s.label
	}
	p.mu.Unlock()

	sc := fitScaler(samples)
	scaled := make([][]float64, n)
	for i, row := range samples {
		scaled[i] = sc.transform(row)
	}

	coef, err := fitRegression(scaled, targets)
	if err != nil {
		plog.Errorf("retrain aborted: %v", err)
		return false
	}

	snapshot := &modelSnapshot{
		scaler:     sc,
		regression: coef,
		samples:    n,
	}
	if distinctLabels(labels) > 1 {
		snapshot.classifier = fitLogistic(scaled, labels)
	}

	p.model.Store(snapshot)
	p.retrainCounter.Inc()
	plog.Infof("models trained with %d samples", n)
	return true
}

// PredictParameter returns the control parameter for the entity's current
// state, discretized to the configured low/high operating points. Before the
// first successful training cycle, or for entities without history, it
// returns the high default.
func (p *Predictor) PredictParameter(entity string, snapshot config.GenericMap) float64 {
	m := p.model.Load()
	if m == nil {
		return p.paramHigh
	}
	features, ok := p.features(entity, snapshot)
	if !ok {
		return p.paramHigh
	}
	predicted := predictRegression(m.regression, m.scaler.transform(features))
	if predicted > (p.paramHigh+p.paramLow)/2 {
		return p.paramHigh
	}
	return p.paramLow
}

// PredictTrigger reports whether the trigger classifier considers action
// warranted for the entity's current state. Without a fit classifier it
// always returns false.
func (p *Predictor) PredictTrigger(entity string, snapshot config.GenericMap) bool {
	m := p.model.Load()
	if m == nil || m.classifier == nil {
		return false
	}
	features, ok := p.features(entity, snapshot)
	if !ok {
		return false
	}
	return m.classifier.probability(m.scaler.transform(features)) > p.triggerProb
}

// Trained reports whether a model snapshot has been published.
func (p *Predictor) Trained() bool {
	return p.model.Load() != nil
}

// BufferLen returns the current training buffer size.
func (p *Predictor) BufferLen() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.buf)
}

// features builds the fixed-order feature vector from the current snapshot
// and the entity's stored downlink/uplink history: current DL/UL, rolling
// average DL/UL, short-term DL trend, history length.
func (p *Predictor) features(entity string, snapshot config.GenericMap) ([]float64, bool) {
	dlKey := store.Key{Entity: entity, Metric: p.dlMetric}
	ulKey := store.Key{Entity: entity, Metric: p.ulMetric}

	histLen := p.store.Size(dlKey)
	if histLen == 0 {
		return nil, false
	}

	currentDl := floatFieldOrZero(snapshot, p.dlMetric)
	currentUl := floatFieldOrZero(snapshot, p.ulMetric)

	avgDl := meanOrZero(p.store.Last(dlKey, rollingWindow))
	avgUl := meanOrZero(p.store.Last(ulKey, rollingWindow))

	trend := 0.0
	if history := p.store.History(dlKey); len(history) > 2*trendWindow-1 {
		recent := stat.Mean(history[len(history)-trendWindow:], nil)
		older := stat.Mean(history[len(history)-2*trendWindow:len(history)-trendWindow], nil)
		trend = recent - older
	}

	return []float64{currentDl, currentUl, avgDl, avgUl, trend, float64(histLen)}, true
}

func distinctLabels(labels []int) int {
	seen := map[int]struct{}{}
	for _, l := range labels {
		seen[l] = struct{}{}
	}
	return len(seen)
}

func meanOrZero(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

func floatFieldOrZero(snapshot config.GenericMap, name string) float64 {
	raw, ok := snapshot[name]
	if !ok {
		return 0
	}
	v, err := utils.ConvertToFloat64(raw)
	if err != nil {
		return 0
	}
	return v
}
