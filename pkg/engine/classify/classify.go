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

package classify

import (
	"fmt"
	"sync"

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
	defaultHistorySize = 50
	defaultMinHistory  = 10
	defaultDlMetric    = "DRB.UEThpDl"
	defaultUlMetric    = "DRB.UEThpUl"
	defaultDlRatio     = 0.5
	defaultUlRatio     = 0.3
)

var clog = logrus.WithField("component", "engine.Classify")

var violationsByEntity = operational.DefineMetric(
	"qos_violations_total",
	"Number of QoS violations observed, per entity and traffic type",
	operational.TypeCounter,
	"entity", "traffic",
)

// rule is one step of the ordered classification chain. The order is part of
// the contract: thresholds overlap and the first match wins.
type rule struct {
	traffic api.TrafficType
	match   func(avgDl, avgUl, varDl, varUl float64) bool
}

// Classifier assigns a traffic type to each entity from its recent
// throughput history and tracks per-entity QoS violations.
type Classifier struct {
	mu         sync.Mutex
	history    *store.MetricStore
	entries    map[string]int
	violations map[string]int
	rules      []rule

	minHistory int
	dlMetric   string
	ulMetric   string
	dlRatio    float64
	ulRatio    float64
	profiles   map[api.TrafficType]api.QoSProfile

	violationCounter *prometheus.CounterVec
}

func NewClassifier(cfg *api.Classify, opMetrics *operational.Metrics) (*Classifier, error) {
	historySize := cfg.HistorySize
	if historySize == 0 {
		historySize = defaultHistorySize
	}
	minHistory := cfg.MinHistory
	if minHistory == 0 {
		minHistory = defaultMinHistory
	}
	if minHistory < 2 || minHistory > historySize {
		return nil, fmt.Errorf("classify minHistory must be in [2, historySize], got %d", minHistory)
	}
	dlRatio := cfg.DlViolationRatio
	if dlRatio == 0 {
		dlRatio = defaultDlRatio
	}
	ulRatio := cfg.UlViolationRatio
	if ulRatio == 0 {
		ulRatio = defaultUlRatio
	}
	if dlRatio < 0 || dlRatio > 1 || ulRatio < 0 || ulRatio > 1 {
		return nil, fmt.Errorf("classify violation ratios must be within [0,1], got dl=%v ul=%v", dlRatio, ulRatio)
	}
	dlMetric := cfg.DlMetric
	if dlMetric == "" {
		dlMetric = defaultDlMetric
	}
	ulMetric := cfg.UlMetric
	if ulMetric == "" {
		ulMetric = defaultUlMetric
	}
	profiles := cfg.Profiles
	if len(profiles) == 0 {
		profiles = api.DefaultQoSProfiles()
	}

	history, err := store.NewMetricStore(historySize)
	if err != nil {
		return nil, err
	}

	clog.Infof("NewClassifier historySize=%d minHistory=%d dlMetric=%s ulMetric=%s", historySize, minHistory, dlMetric, ulMetric)
	return &Classifier{
		history:          history,
		entries:          make(map[string]int),
		violations:       make(map[string]int),
		rules:            buildRules(applyThresholdDefaults(cfg.Thresholds)),
		minHistory:       minHistory,
		dlMetric:         dlMetric,
		ulMetric:         ulMetric,
		dlRatio:          dlRatio,
		ulRatio:          ulRatio,
		profiles:         profiles,
		violationCounter: opMetrics.NewCounterVec(&violationsByEntity),
	}, nil
}

func applyThresholdDefaults(th api.ClassifyThresholds) api.ClassifyThresholds {
	if th.VoiceMaxAvg == 0 {
		th.VoiceMaxAvg = 0.5
	}
	if th.VoiceMaxVar == 0 {
		th.VoiceMaxVar = 1
	}
	if th.VideoMinAvgDl == 0 {
		th.VideoMinAvgDl = 20
	}
	if th.VideoMinVarDl == 0 {
		th.VideoMinVarDl = 100
	}
	if th.GamingMinAvgUl == 0 {
		th.GamingMinAvgUl = 2
	}
	if th.GamingMinVarUl == 0 {
		th.GamingMinVarUl = 10
	}
	if th.WebMinAvgDl == 0 {
		th.WebMinAvgDl = 1
	}
	if th.WebMaxAvgDl == 0 {
		th.WebMaxAvgDl = 20
	}
	if th.FileXferMinAvgDl == 0 {
		th.FileXferMinAvgDl = 50
	}
	return th
}

func buildRules(th api.ClassifyThresholds) []rule {
	return []rule{
		{api.TrafficVoice, func(avgDl, avgUl, varDl, varUl float64) bool {
			return avgDl < th.VoiceMaxAvg && avgUl < th.VoiceMaxAvg && varDl < th.VoiceMaxVar && varUl < th.VoiceMaxVar
		}},
		{api.TrafficVideo, func(avgDl, _, varDl, _ float64) bool {
			return avgDl > th.VideoMinAvgDl && varDl > th.VideoMinVarDl
		}},
		{api.TrafficGaming, func(_, avgUl, _, varUl float64) bool {
			return avgUl > th.GamingMinAvgUl && varUl > th.GamingMinVarUl
		}},
		{api.TrafficWeb, func(avgDl, _, _, _ float64) bool {
			return avgDl >= th.WebMinAvgDl && avgDl <= th.WebMaxAvgDl
		}},
		{api.TrafficFileTransfer, func(avgDl, _, _, _ float64) bool {
			return avgDl > th.FileXferMinAvgDl
		}},
	}
}

// Classify appends the snapshot to the entity's history and returns the
// traffic type matched by the ordered rules, or Unknown when the history is
// still too short to judge.
func (c *Classifier) Classify(entity string, snapshot config.GenericMap) api.TrafficType {
	dlKey := store.Key{Entity: entity, Metric: c.dlMetric}
	ulKey := store.Key{Entity: entity, Metric: c.ulMetric}

	if v, ok := floatField(snapshot, c.dlMetric); ok {
		c.history.Update(dlKey, v)
	}
	if v, ok := floatField(snapshot, c.ulMetric); ok {
		c.history.Update(ulKey, v)
	}

	c.mu.Lock()
	c.entries[entity]++
	enough := c.entries[entity] >= c.minHistory
	c.mu.Unlock()
	if !enough {
		return api.TrafficUnknown
	}

	dl := c.history.Last(dlKey, c.minHistory)
	ul := c.history.Last(ulKey, c.minHistory)
	if len(dl) == 0 || len(ul) == 0 {
		return api.TrafficUnknown
	}

	avgDl := stat.Mean(dl, nil)
	avgUl := stat.Mean(ul, nil)
	varDl := popVariance(dl)
	varUl := popVariance(ul)

	for _, r := range c.rules {
		if r.match(avgDl, avgUl, varDl, varUl) {
			return r.traffic
		}
	}
	return api.TrafficUnknown
}

// CheckViolation reports whether the snapshot falls short of the QoS profile
// of the classified traffic type; a shortfall increments the entity's
// violation counter. Downlink is checked before uplink and the first
// violating direction wins.
func (c *Classifier) CheckViolation(entity string, traffic api.TrafficType, snapshot config.GenericMap) bool {
	if traffic == api.TrafficUnknown {
		return false
	}
	profile, ok := c.profiles[traffic]
	if !ok {
		return false
	}

	if dl, ok := floatField(snapshot, c.dlMetric); ok {
		if dl < profile.BandwidthMbps*c.dlRatio {
			c.recordViolation(entity, traffic)
			return true
		}
	}
	if ul, ok := floatField(snapshot, c.ulMetric); ok {
		if ul < profile.BandwidthMbps*c.ulRatio {
			c.recordViolation(entity, traffic)
			return true
		}
	}
	return false
}

func (c *Classifier) recordViolation(entity string, traffic api.TrafficType) {
	c.mu.Lock()
	c.violations[entity]++
	c.mu.Unlock()
	c.violationCounter.WithLabelValues(entity, string(traffic)).Inc()
}

// Violations returns the accumulated violation count for entity.
func (c *Classifier) Violations(entity string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.violations[entity]
}

// ResetViolations zeroes the violation count for entity. Called by the
// policy when a steering recommendation is emitted.
func (c *Classifier) ResetViolations(entity string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.violations[entity] = 0
}

// Profile returns the QoS profile of a traffic type.
func (c *Classifier) Profile(traffic api.TrafficType) (api.QoSProfile, bool) {
	p, ok := c.profiles[traffic]
	return p, ok
}

func popVariance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return stat.PopVariance(values, nil)
}

func floatField(snapshot config.GenericMap, name string) (float64, bool) {
	raw, ok := snapshot[name]
	if !ok {
		return 0, false
	}
	v, err := utils.ConvertToFloat64(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
