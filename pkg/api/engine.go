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

package api

// AnomalyAlgorithm defines the supported anomaly detection strategies.
// For doc generation, enum definitions must match format `Constant Type = "value" // doc`
type AnomalyAlgorithm string

const (
	AnomalyAlgorithmEWMA   AnomalyAlgorithm = "ewma"   // exponentially weighted moving average baseline
	AnomalyAlgorithmZScore AnomalyAlgorithm = "zscore" // rolling z-score over a sliding window
)

// MetricStore describes the bounded per-key sample storage.
type MetricStore struct {
	WindowSize int `yaml:"windowSize,omitempty" json:"windowSize,omitempty" doc:"number of recent samples kept per metric key"`
}

// Anomaly describes configuration for per-metric anomaly scoring.
type Anomaly struct {
	Algorithm       AnomalyAlgorithm `yaml:"algorithm,omitempty" json:"algorithm,omitempty" doc:"(enum) algorithm used to score anomalies: ewma or zscore"`
	Threshold       float64          `yaml:"threshold,omitempty" json:"threshold,omitempty" doc:"score above which a sample is flagged anomalous"`
	MinSamples      int              `yaml:"minSamples,omitempty" json:"minSamples,omitempty" doc:"minimum number of samples before anomaly scores are emitted"`
	CooldownSeconds int              `yaml:"cooldownSeconds,omitempty" json:"cooldownSeconds,omitempty" doc:"seconds between alerts for the same metric key"`
	EWMAAlpha       float64          `yaml:"ewmaAlpha,omitempty" json:"ewmaAlpha,omitempty" doc:"smoothing factor for ewma algorithm; derived from minSamples if omitted"`
}

// ClassifyThresholds parameterizes the ordered classification rules.
// Rules are evaluated in a fixed order and the first match wins.
type ClassifyThresholds struct {
	VoiceMaxAvg      float64 `yaml:"voiceMaxAvg,omitempty" json:"voiceMaxAvg,omitempty" doc:"voice: both direction averages must be below this"`
	VoiceMaxVar      float64 `yaml:"voiceMaxVar,omitempty" json:"voiceMaxVar,omitempty" doc:"voice: both direction variances must be below this"`
	VideoMinAvgDl    float64 `yaml:"videoMinAvgDl,omitempty" json:"videoMinAvgDl,omitempty" doc:"video: minimum average downlink throughput"`
	VideoMinVarDl    float64 `yaml:"videoMinVarDl,omitempty" json:"videoMinVarDl,omitempty" doc:"video: minimum downlink variance"`
	GamingMinAvgUl   float64 `yaml:"gamingMinAvgUl,omitempty" json:"gamingMinAvgUl,omitempty" doc:"gaming: minimum average uplink throughput"`
	GamingMinVarUl   float64 `yaml:"gamingMinVarUl,omitempty" json:"gamingMinVarUl,omitempty" doc:"gaming: minimum uplink variance"`
	WebMinAvgDl      float64 `yaml:"webMinAvgDl,omitempty" json:"webMinAvgDl,omitempty" doc:"web: lower bound on average downlink throughput"`
	WebMaxAvgDl      float64 `yaml:"webMaxAvgDl,omitempty" json:"webMaxAvgDl,omitempty" doc:"web: upper bound on average downlink throughput"`
	FileXferMinAvgDl float64 `yaml:"fileXferMinAvgDl,omitempty" json:"fileXferMinAvgDl,omitempty" doc:"file transfer: minimum average downlink throughput"`
}

// Classify describes configuration for traffic classification and QoS checks.
type Classify struct {
	HistorySize      int                        `yaml:"historySize,omitempty" json:"historySize,omitempty" doc:"per-entity classification history length"`
	MinHistory       int                        `yaml:"minHistory,omitempty" json:"minHistory,omitempty" doc:"history entries required before classifying; also the sample count rules operate on"`
	DlMetric         string                     `yaml:"dlMetric,omitempty" json:"dlMetric,omitempty" doc:"name of the downlink throughput metric"`
	UlMetric         string                     `yaml:"ulMetric,omitempty" json:"ulMetric,omitempty" doc:"name of the uplink throughput metric"`
	Thresholds       ClassifyThresholds         `yaml:"thresholds,omitempty" json:"thresholds,omitempty" doc:"classification rule thresholds"`
	Profiles         map[TrafficType]QoSProfile `yaml:"profiles,omitempty" json:"profiles,omitempty" doc:"QoS profile per traffic type; defaults used when omitted"`
	DlViolationRatio float64                    `yaml:"dlViolationRatio,omitempty" json:"dlViolationRatio,omitempty" doc:"downlink below this fraction of the profile bandwidth counts as a violation"`
	UlViolationRatio float64                    `yaml:"ulViolationRatio,omitempty" json:"ulViolationRatio,omitempty" doc:"uplink below this fraction of the profile bandwidth counts as a violation"`
}

// Predict describes configuration for the online resource predictor.
type Predict struct {
	BufferMax          int     `yaml:"bufferMax,omitempty" json:"bufferMax,omitempty" doc:"maximum number of retained training samples"`
	BufferRetain       int     `yaml:"bufferRetain,omitempty" json:"bufferRetain,omitempty" doc:"samples kept when the buffer overflows"`
	MinTrainSamples    int     `yaml:"minTrainSamples,omitempty" json:"minTrainSamples,omitempty" doc:"samples required before the first training cycle"`
	RetrainEvery       int     `yaml:"retrainEvery,omitempty" json:"retrainEvery,omitempty" doc:"retraining cadence in accumulated samples"`
	ParamLow           float64 `yaml:"paramLow,omitempty" json:"paramLow,omitempty" doc:"low operating point of the predicted control parameter"`
	ParamHigh          float64 `yaml:"paramHigh,omitempty" json:"paramHigh,omitempty" doc:"high operating point of the predicted control parameter; also the cold-start default"`
	TriggerProbability float64 `yaml:"triggerProbability,omitempty" json:"triggerProbability,omitempty" doc:"positive-class probability above which the trigger fires"`
	DlMetric           string  `yaml:"dlMetric,omitempty" json:"dlMetric,omitempty" doc:"name of the downlink throughput metric used for features"`
	UlMetric           string  `yaml:"ulMetric,omitempty" json:"ulMetric,omitempty" doc:"name of the uplink throughput metric used for features"`
}

// LoadIndicator maps one metric to a normalized cell-load contribution.
type LoadIndicator struct {
	Metric string  `yaml:"metric,omitempty" json:"metric,omitempty" doc:"metric name read from the sample"`
	Scale  float64 `yaml:"scale,omitempty" json:"scale,omitempty" doc:"value divisor before clamping to [0,1]"`
	Invert bool    `yaml:"invert,omitempty" json:"invert,omitempty" doc:"report 1-x instead of x (e.g. success rates)"`
}

// Policy describes configuration for decision orchestration.
type Policy struct {
	ViolationThreshold      int             `yaml:"violationThreshold,omitempty" json:"violationThreshold,omitempty" doc:"QoS violations accumulated before steering is considered"`
	LoadThreshold           float64         `yaml:"loadThreshold,omitempty" json:"loadThreshold,omitempty" doc:"cell load above which steering is considered"`
	SteeringCooldownSeconds int             `yaml:"steeringCooldownSeconds,omitempty" json:"steeringCooldownSeconds,omitempty" doc:"seconds between steering recommendations per entity"`
	MaxSteerPriority        int             `yaml:"maxSteerPriority,omitempty" json:"maxSteerPriority,omitempty" doc:"only traffic with priority at or below this value is steered"`
	LoadIndicators          []LoadIndicator `yaml:"loadIndicators,omitempty" json:"loadIndicators,omitempty" doc:"list of load indicator rules, each includes:"`
}
