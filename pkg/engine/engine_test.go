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
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ranwatch/ric-decision-engine/pkg/api"
	"github.com/ranwatch/ric-decision-engine/pkg/config"
	"github.com/ranwatch/ric-decision-engine/pkg/engine/store"
	"github.com/ranwatch/ric-decision-engine/pkg/operational"
)

type captureDispatcher struct {
	decisions []Decision
}

func (c *captureDispatcher) Dispatch(d Decision) {
	c.decisions = append(c.decisions, d)
}

func (c *captureDispatcher) byType(t DecisionType) []Decision {
	var out []Decision
	for _, d := range c.decisions {
		if d.Type == t {
			out = append(out, d)
		}
	}
	return out
}

func initEngine(t *testing.T, cfg *config.Engine) (*Engine, *captureDispatcher, *clock.Mock) {
	disp := &captureDispatcher{}
	mck := clock.NewMock()
	e, err := NewEngine(cfg, disp, operational.NewMetrics(nil), mck)
	require.NoError(t, err)
	return e, disp, mck
}

func TestOnSampleEmitsAnomalyDecision(t *testing.T) {
	e, disp, _ := initEngine(t, &config.Engine{
		Anomaly: &api.Anomaly{},
	})

	ts := time.Unix(1700000000, 0)
	for i := 0; i < 30; i++ {
		v := 8.0
		if i%2 == 1 {
			v = 12.0
		}
		e.OnSample("ue1", ts, config.GenericMap{"DRB.UEThpDl": v})
	}
	require.Empty(t, disp.decisions)

	e.OnSample("ue1", ts, config.GenericMap{"DRB.UEThpDl": 100.0})
	anomalies := disp.byType(DecisionAnomaly)
	require.Len(t, anomalies, 1)
	assert.Equal(t, "ue1", anomalies[0].Entity)
	assert.Equal(t, "DRB.UEThpDl", anomalies[0].Metric)
	assert.Greater(t, anomalies[0].Score, 3.0)
}

func voiceSample(dl, ul, prb float64) config.GenericMap {
	return config.GenericMap{
		"DRB.UEThpDl":   dl,
		"DRB.UEThpUl":   ul,
		"Cell.PRBUsage": prb,
	}
}

func steeringConfig() *config.Engine {
	return &config.Engine{
		Classify: &api.Classify{},
		Policy: api.Policy{
			LoadIndicators: []api.LoadIndicator{{Metric: "Cell.PRBUsage", Scale: 100}},
		},
	}
}

func TestSteeringAfterAccumulatedViolations(t *testing.T) {
	e, disp, _ := initEngine(t, steeringConfig())
	ts := time.Unix(1700000000, 0)

	// warm up the classifier with healthy voice traffic
	for i := 0; i < 10; i++ {
		e.OnSample("ue1", ts, voiceSample(0.2, 0.1, 95))
	}
	require.Empty(t, disp.byType(DecisionQoSViolation))

	// three violating samples on an overloaded cell
	for i := 0; i < 3; i++ {
		e.OnSample("ue1", ts, voiceSample(0.02, 0.1, 95))
	}

	assert.Len(t, disp.byType(DecisionQoSViolation), 3)
	steering := disp.byType(DecisionSteering)
	require.Len(t, steering, 1)
	assert.Equal(t, "qos", steering[0].Reason)

	// counter was reset when the recommendation fired
	assert.Equal(t, 0, e.classifier.Violations("ue1"))
}

func TestSteeringRespectsCooldown(t *testing.T) {
	e, disp, mck := initEngine(t, steeringConfig())
	ts := time.Unix(1700000000, 0)

	for i := 0; i < 10; i++ {
		e.OnSample("ue1", ts, voiceSample(0.2, 0.1, 95))
	}
	for i := 0; i < 3; i++ {
		e.OnSample("ue1", ts, voiceSample(0.02, 0.1, 95))
	}
	require.Len(t, disp.byType(DecisionSteering), 1)

	// accumulate three more violations within the cooldown window
	for i := 0; i < 3; i++ {
		e.OnSample("ue1", ts, voiceSample(0.02, 0.1, 95))
	}
	assert.Len(t, disp.byType(DecisionSteering), 1)

	// once the cooldown expires the next violating sample steers again
	mck.Add(121 * time.Second)
	e.OnSample("ue1", ts, voiceSample(0.02, 0.1, 95))
	assert.Len(t, disp.byType(DecisionSteering), 2)
	assert.Equal(t, 0, e.classifier.Violations("ue1"))
}

func TestSteeringRequiresCellLoad(t *testing.T) {
	e, disp, _ := initEngine(t, steeringConfig())
	ts := time.Unix(1700000000, 0)

	for i := 0; i < 10; i++ {
		e.OnSample("ue1", ts, voiceSample(0.2, 0.1, 10))
	}
	// plenty of violations, but the cell is idle
	for i := 0; i < 6; i++ {
		e.OnSample("ue1", ts, voiceSample(0.02, 0.1, 10))
	}
	assert.NotEmpty(t, disp.byType(DecisionQoSViolation))
	assert.Empty(t, disp.byType(DecisionSteering))
	assert.Equal(t, 6, e.classifier.Violations("ue1"))
}

func TestOnSampleEmitsParameterUpdate(t *testing.T) {
	e, disp, _ := initEngine(t, &config.Engine{
		Predict: &api.Predict{},
	})
	ts := time.Unix(1700000000, 0)

	e.OnSample("ue1", ts, config.GenericMap{"DRB.UEThpDl": 5.0, "DRB.UEThpUl": 0.5})
	updates := disp.byType(DecisionParameterUpdate)
	require.Len(t, updates, 1)
	// untrained model falls back to the high operating point
	assert.Equal(t, 100.0, updates[0].Parameter)
}

func TestOnSampleIgnoresNonNumericMetrics(t *testing.T) {
	e, disp, _ := initEngine(t, &config.Engine{Anomaly: &api.Anomaly{}})
	ts := time.Unix(1700000000, 0)

	e.OnSample("ue1", ts, config.GenericMap{"DRB.UEThpDl": 5.0, "junk": struct{}{}})
	assert.Empty(t, disp.decisions)
	assert.Equal(t, 0, e.Store().Size(store.Key{Entity: "ue1", Metric: "junk"}))
	assert.Equal(t, 1, e.Store().Size(store.Key{Entity: "ue1", Metric: "DRB.UEThpDl"}))
}

func TestOnSampleSkipsNullMetricValue(t *testing.T) {
	e, disp, _ := initEngine(t, &config.Engine{Anomaly: &api.Anomaly{}})
	ts := time.Unix(1700000000, 0)

	// a null value in a report decodes to an untyped nil in the metric map
	var metrics config.GenericMap
	require.NoError(t, jsoniter.Unmarshal([]byte(`{"DRB.UEThpDl": null, "DRB.UEThpUl": 0.5}`), &metrics))

	e.OnSample("ue1", ts, metrics)
	assert.Empty(t, disp.decisions)
	assert.Equal(t, 0, e.Store().Size(store.Key{Entity: "ue1", Metric: "DRB.UEThpDl"}))
	assert.Equal(t, 1, e.Store().Size(store.Key{Entity: "ue1", Metric: "DRB.UEThpUl"}))
}

func TestCellLoadDefaultsToZero(t *testing.T) {
	e, _, _ := initEngine(t, steeringConfig())
	assert.Equal(t, 0.0, e.cellLoad(config.GenericMap{"DRB.UEThpDl": 3.0}))
	assert.Equal(t, 0.95, e.cellLoad(config.GenericMap{"Cell.PRBUsage": 95.0}))
}

func TestNewEngineInvalidConfig(t *testing.T) {
	_, err := NewEngine(&config.Engine{}, nil, operational.NewMetrics(nil), clock.NewMock())
	require.Error(t, err)

	disp := &captureDispatcher{}
	_, err = NewEngine(&config.Engine{Store: api.MetricStore{WindowSize: -1}}, disp, operational.NewMetrics(nil), clock.NewMock())
	require.Error(t, err)
	_, err = NewEngine(&config.Engine{Anomaly: &api.Anomaly{Threshold: -2}}, disp, operational.NewMetrics(nil), clock.NewMock())
	require.Error(t, err)
	_, err = NewEngine(&config.Engine{Policy: api.Policy{LoadThreshold: 7}}, disp, operational.NewMetrics(nil), clock.NewMock())
	require.Error(t, err)
}
