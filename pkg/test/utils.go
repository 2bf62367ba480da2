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

package test

import (
	"bytes"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/ranwatch/ric-decision-engine/pkg/config"
)

// InitConfig turns a yaml config document into the json option strings the
// command line would pass in.
func InitConfig(t *testing.T, conf string) *config.Options {
	var json = jsoniter.ConfigCompatibleWithStandardLibrary
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewReader([]byte(conf))))

	opts := config.Options{}
	sections := []struct {
		name string
		out  *string
	}{
		{"engine", &opts.Engine},
		{"ingest", &opts.Ingest},
		{"export", &opts.Export},
	}
	for _, section := range sections {
		raw := v.Get(section.name)
		if raw == nil {
			continue
		}
		b, err := json.Marshal(raw)
		require.NoError(t, err)
		*section.out = string(b)
	}
	opts.Health.Port = v.GetString("health.port")
	return &opts
}

// GetMockSample returns one plausible measurement report for tests.
func GetMockSample() config.GenericMap {
	return config.GenericMap{
		"DRB.UEThpDl":       12.5,
		"DRB.UEThpUl":       1.5,
		"RRC.ConnEstabAtt":  10,
		"RRC.ConnEstabSucc": 9,
		"RRC.ConnMean":      5,
	}
}
