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

// TrafficType identifies the traffic pattern classified for an entity.
// For doc generation, enum definitions must match format `Constant Type = "value" // doc`
type TrafficType string

const (
	TrafficVoice        TrafficType = "voice"         // low steady throughput in both directions
	TrafficVideo        TrafficType = "video"         // high variable downlink throughput
	TrafficGaming       TrafficType = "gaming"        // interactive variable uplink traffic
	TrafficWeb          TrafficType = "web"           // moderate downlink browsing
	TrafficFileTransfer TrafficType = "file_transfer" // sustained high downlink throughput
	TrafficUnknown      TrafficType = "unknown"       // not enough evidence to classify
)

// QoSProfile describes the service requirements of one traffic type.
type QoSProfile struct {
	LatencyMs     float64 `yaml:"latencyMs,omitempty" json:"latencyMs,omitempty" doc:"maximum tolerated latency in milliseconds"`
	BandwidthMbps float64 `yaml:"bandwidthMbps,omitempty" json:"bandwidthMbps,omitempty" doc:"required bandwidth in Mbit/s"`
	Priority      int     `yaml:"priority,omitempty" json:"priority,omitempty" doc:"scheduling priority; lower values are more important"`
}

// DefaultQoSProfiles returns the built-in per-type QoS requirements.
func DefaultQoSProfiles() map[TrafficType]QoSProfile {
	return map[TrafficType]QoSProfile{
		TrafficVoice:        {LatencyMs: 10, BandwidthMbps: 0.1, Priority: 1},
		TrafficVideo:        {LatencyMs: 30, BandwidthMbps: 5, Priority: 2},
		TrafficGaming:       {LatencyMs: 20, BandwidthMbps: 1, Priority: 1},
		TrafficWeb:          {LatencyMs: 100, BandwidthMbps: 10, Priority: 3},
		TrafficFileTransfer: {LatencyMs: 500, BandwidthMbps: 50, Priority: 4},
	}
}
