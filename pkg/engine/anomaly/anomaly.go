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

package anomaly

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/ranwatch/ric-decision-engine/pkg/api"
	"github.com/ranwatch/ric-decision-engine/pkg/engine/store"
	"github.com/ranwatch/ric-decision-engine/pkg/operational"
)

const (
	defaultThreshold  = 3.0
	defaultMinSamples = 30
	defaultCooldown   = 60 * time.Second
)

var alog = logrus.WithField("component", "engine.Anomaly")

var (
	anomaliesTotal = operational.DefineMetric(
		"anomalies_detected_total",
		"Total number of anomalies that triggered an alert",
		operational.TypeCounter,
	)
	anomaliesByKey = operational.DefineMetric(
		"anomalies_by_key_total",
		"Number of anomalies that triggered an alert, per metric key",
		operational.TypeCounter,
		"entity", "metric",
	)
)

// Detector scores incoming samples against their key's recent window and
// rate-limits alerts with a per-key cooldown.
type Detector struct {
	mu         sync.Mutex
	store      *store.MetricStore
	clock      clock.Clock
	algorithm  api.AnomalyAlgorithm
	threshold  float64
	minSamples int
	cooldown   time.Duration
	alpha      float64
	lastAlert  map[store.Key]time.Time
	baselines  map[store.Key]float64
	details    map[store.Key]int
	detected   int

	totalCounter prometheus.Counter
	keyCounter   *prometheus.CounterVec
}

// NewDetector validates the configuration and builds a Detector bound to ms.
// Time is read from clk so tests can drive the cooldown with a mock clock.
func NewDetector(cfg *api.Anomaly, ms *store.MetricStore, opMetrics *operational.Metrics, clk clock.Clock) (*Detector, error) {
	threshold := defaultThreshold
	if cfg.Threshold != 0 {
		if cfg.Threshold < 0 {
			return nil, fmt.Errorf("anomaly threshold must be positive, got %v", cfg.Threshold)
		}
		threshold = cfg.Threshold
	}
	minSamples := defaultMinSamples
	if cfg.MinSamples != 0 {
		if cfg.MinSamples < 0 {
			return nil, fmt.Errorf("anomaly minSamples must be positive, got %d", cfg.MinSamples)
		}
		minSamples = cfg.MinSamples
	}
	cooldown := defaultCooldown
	if cfg.CooldownSeconds != 0 {
		if cfg.CooldownSeconds < 0 {
			return nil, fmt.Errorf("anomaly cooldownSeconds must be positive, got %d", cfg.CooldownSeconds)
		}
		cooldown = time.Duration(cfg.CooldownSeconds) * time.Second
	}
	algorithm := cfg.Algorithm
	if algorithm == "" {
		algorithm = api.AnomalyAlgorithmZScore
	}
	alpha := cfg.EWMAAlpha
	if alpha <= 0 {
		alpha = 2.0 / (float64(minSamples) + 1.0)
	}

	alog.Infof("NewDetector algorithm=%s threshold=%v minSamples=%d cooldown=%s", algorithm, threshold, minSamples, cooldown)
	return &Detector{
		store:        ms,
		clock:        clk,
		algorithm:    algorithm,
		threshold:    threshold,
		minSamples:   minSamples,
		cooldown:     cooldown,
		alpha:        alpha,
		lastAlert:    make(map[store.Key]time.Time),
		baselines:    make(map[store.Key]float64),
		details:      make(map[store.Key]int),
		totalCounter: opMetrics.NewCounter(&anomaliesTotal),
		keyCounter:   opMetrics.NewCounterVec(&anomaliesByKey),
	}, nil
}

// Evaluate scores value against the window of key. It returns true only when
// the score exceeds the threshold and the per-key cooldown has elapsed; that
// path is the sole mutation point for the cooldown and the counters.
// A window shorter than minSamples or with zero dispersion yields (false, 0).
func (d *Detector) Evaluate(key store.Key, value float64) (bool, float64) {
	if d.store.Size(key) < d.minSamples {
		return false, 0.0
	}
	history := d.store.History(key)

	d.mu.Lock()
	defer d.mu.Unlock()

	var score float64
	switch d.algorithm {
	case api.AnomalyAlgorithmEWMA:
		score = d.scoreEWMA(key, history, value)
	default:
		score = scoreZScore(history, value)
	}
	if score == 0 {
		return false, 0.0
	}

	if score <= d.threshold {
		return false, score
	}
	now := d.clock.Now()
	if last, ok := d.lastAlert[key]; ok && now.Sub(last) <= d.cooldown {
		// still in cooldown; expose the score without re-alerting
		return false, score
	}
	d.lastAlert[key] = now
	d.detected++
	d.details[key]++
	d.totalCounter.Inc()
	d.keyCounter.WithLabelValues(key.Entity, key.Metric).Inc()
	return true, score
}

func scoreZScore(history []float64, value float64) float64 {
	mean := stat.Mean(history, nil)
	stddev := math.Sqrt(stat.PopVariance(history, nil))
	if stddev == 0 {
		return 0
	}
	return math.Abs(value-mean) / stddev
}

// scoreEWMA deviates from an exponentially smoothed baseline instead of the
// window mean. The baseline moves on every call, independent of alerting.
func (d *Detector) scoreEWMA(key store.Key, history []float64, value float64) float64 {
	baseline, ok := d.baselines[key]
	if !ok {
		baseline = stat.Mean(history, nil)
	}
	d.baselines[key] = baseline + d.alpha*(value-baseline)
	stddev := math.Sqrt(stat.PopVariance(history, nil))
	if stddev == 0 {
		return 0
	}
	return math.Abs(value-baseline) / stddev
}

// Detected returns the total number of alerts raised so far.
func (d *Detector) Detected() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.detected
}

// Details returns a copy of the per-key alert counts.
func (d *Detector) Details() map[store.Key]int {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[store.Key]int, len(d.details))
	for k, v := range d.details {
		out[k] = v
	}
	return out
}
