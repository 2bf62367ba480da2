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

package config

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/mitchellh/mapstructure"
	"github.com/ranwatch/ric-decision-engine/pkg/api"
	"github.com/sirupsen/logrus"
)

type Options struct {
	Engine  string
	Ingest  string
	Export  string
	Health  Health
	Metrics Metrics
	Profile Profile
}

type Health struct {
	Port string
}

type Metrics struct {
	Port int
}

type Profile struct {
	Port int
}

// Engine holds the resolved configuration of the decision engine.
// Anomaly, Classify and Predict are optional; a nil entry disables
// the corresponding component.
type Engine struct {
	Store    api.MetricStore `yaml:"store" json:"store"`
	Anomaly  *api.Anomaly    `yaml:"anomaly,omitempty" json:"anomaly,omitempty"`
	Classify *api.Classify   `yaml:"classify,omitempty" json:"classify,omitempty"`
	Predict  *api.Predict    `yaml:"predict,omitempty" json:"predict,omitempty"`
	Policy   api.Policy      `yaml:"policy" json:"policy"`
}

type Ingest struct {
	Type string     `yaml:"type" json:"type"`
	File IngestFile `yaml:"file,omitempty" json:"file,omitempty"`
}

type IngestFile struct {
	Filename string `yaml:"filename,omitempty" json:"filename,omitempty"`
	Loop     bool   `yaml:"loop,omitempty" json:"loop,omitempty"`
}

type Export struct {
	Type   string          `yaml:"type" json:"type"`
	Format string          `yaml:"format,omitempty" json:"format,omitempty"`
	Kafka  api.ExportKafka `yaml:"kafka,omitempty" json:"kafka,omitempty"`
}

// ConfigFileStruct mirrors the yaml/json layout of a complete config file.
type ConfigFileStruct struct {
	Engine Engine `yaml:"engine" json:"engine"`
	Ingest Ingest `yaml:"ingest" json:"ingest"`
	Export Export `yaml:"export" json:"export"`
}

// ParseConfig creates the internal unmarshalled representation from the Engine, Ingest and Export json
func ParseConfig(opts *Options) (ConfigFileStruct, error) {
	out := ConfigFileStruct{}

	logrus.Debugf("opts.Engine = %v ", opts.Engine)
	err := JSONUnmarshalStrict([]byte(opts.Engine), &out.Engine)
	if err != nil {
		logrus.Errorf("error when reading config file: %v", err)
		return out, err
	}
	logrus.Debugf("engine = %v ", out.Engine)

	if opts.Ingest != "" {
		err = JSONUnmarshalStrict([]byte(opts.Ingest), &out.Ingest)
		if err != nil {
			logrus.Errorf("error when reading config file: %v", err)
			return out, err
		}
	}

	if opts.Export != "" {
		err = JSONUnmarshalStrict([]byte(opts.Export), &out.Export)
		if err != nil {
			logrus.Errorf("error when reading config file: %v", err)
			return out, err
		}
	}

	return out, nil
}

// JSONUnmarshalStrict unmarshalls a json byte stream, failing on unknown fields.
func JSONUnmarshalStrict(data []byte, v interface{}) error {
	var json = jsoniter.Config{
		EscapeHTML:             true,
		SortMapKeys:            true,
		ValidateJsonRawMessage: true,
		DisallowUnknownFields:  true,
	}.Froze()
	return json.Unmarshal(data, v)
}

// Decode decodes a GenericMap into an api configuration struct.
func Decode(input interface{}, output interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  output,
	})
	if err != nil {
		return fmt.Errorf("cannot create decoder: %w", err)
	}
	return decoder.Decode(input)
}
