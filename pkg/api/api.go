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

const TagYaml = "yaml"
const TagDoc = "doc"
const TagEnum = "enum"

// Note: items beginning with doc: "## title" are top level items that get divided into sections inside api.md.

type API struct {
	MetricStore MetricStore `yaml:"store" doc:"## Metric store API\nFollowing is the supported API format for the metric store:\n"`
	Anomaly     Anomaly     `yaml:"anomaly" doc:"## Anomaly detection API\nFollowing is the supported API format for anomaly detection:\n"`
	Classify    Classify    `yaml:"classify" doc:"## Traffic classification API\nFollowing is the supported API format for traffic classification:\n"`
	Predict     Predict     `yaml:"predict" doc:"## Online prediction API\nFollowing is the supported API format for online prediction:\n"`
	Policy      Policy      `yaml:"policy" doc:"## Decision policy API\nFollowing is the supported API format for the decision policy:\n"`
	ExportKafka ExportKafka `yaml:"kafka" doc:"## Kafka export API\nFollowing is the supported API format for the kafka decision export:\n"`
}
