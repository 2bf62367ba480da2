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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ranwatch/ric-decision-engine/pkg/api"
	"github.com/ranwatch/ric-decision-engine/pkg/config"
	"github.com/ranwatch/ric-decision-engine/pkg/operational"
)

func newClassifier(t *testing.T) *Classifier {
	c, err := NewClassifier(&api.Classify{}, operational.NewMetrics(nil))
	require.NoError(t, err)
	return c
}

func snapshot(dl, ul float64) config.GenericMap {
	return config.GenericMap{
		"DRB.UEThpDl": dl,
		"DRB.UEThpUl": ul,
	}
}

func feed(c *Classifier, entity string, snapshots []config.GenericMap) api.TrafficType {
	var last api.TrafficType
	for _, s := range snapshots {
		last = c.Classify(entity, s)
	}
	return last
}

func TestClassifyInsufficientHistory(t *testing.T) {
	c := newClassifier(t)
	for i := 0; i < 9; i++ {
		assert.Equal(t, api.TrafficUnknown, c.Classify("ue1", snapshot(0.2, 0.1)))
	}
}

func TestClassifyVoice(t *testing.T) {
	c := newClassifier(t)
	snapshots := make([]config.GenericMap, 10)
	for i := range snapshots {
		snapshots[i] = snapshot(0.2, 0.1)
	}
	assert.Equal(t, api.TrafficVoice, feed(c, "ue1", snapshots))
}

func TestClassifyVideo(t *testing.T) {
	c := newClassifier(t)
	snapshots := make([]config.GenericMap, 0, 10)
	for i := 0; i < 5; i++ {
		// avgDl=30, population variance 225
		snapshots = append(snapshots, snapshot(15, 0.1), snapshot(45, 0.1))
	}
	assert.Equal(t, api.TrafficVideo, feed(c, "ue1", snapshots))
}

func TestClassifyGaming(t *testing.T) {
	c := newClassifier(t)
	snapshots := make([]config.GenericMap, 0, 10)
	for i := 0; i < 5; i++ {
		// low dl, high variable ul
		snapshots = append(snapshots, snapshot(0.3, 1), snapshot(0.3, 9))
	}
	assert.Equal(t, api.TrafficGaming, feed(c, "ue1", snapshots))
}

func TestClassifyWeb(t *testing.T) {
	c := newClassifier(t)
	snapshots := make([]config.GenericMap, 10)
	for i := range snapshots {
		snapshots[i] = snapshot(10, 1)
	}
	assert.Equal(t, api.TrafficWeb, feed(c, "ue1", snapshots))
}

func TestClassifyMissingUplinkStaysUnknown(t *testing.T) {
	c := newClassifier(t)
	var last api.TrafficType
	for i := 0; i < 12; i++ {
		last = c.Classify("ue1", config.GenericMap{"DRB.UEThpDl": 10.0})
	}
	assert.Equal(t, api.TrafficUnknown, last)
}

func TestClassifyEntitiesAreIndependent(t *testing.T) {
	c := newClassifier(t)
	for i := 0; i < 10; i++ {
		c.Classify("ue1", snapshot(0.2, 0.1))
	}
	// ue2 only saw one sample
	assert.Equal(t, api.TrafficUnknown, c.Classify("ue2", snapshot(0.2, 0.1)))
}

func TestCheckViolation(t *testing.T) {
	c := newClassifier(t)

	// voice profile requires 0.1 Mbps; dl below 50% of that violates
	assert.True(t, c.CheckViolation("ue1", api.TrafficVoice, snapshot(0.01, 0.1)))
	assert.Equal(t, 1, c.Violations("ue1"))

	// exactly one increment per violating sample
	assert.True(t, c.CheckViolation("ue1", api.TrafficVoice, snapshot(0.01, 0.1)))
	assert.Equal(t, 2, c.Violations("ue1"))

	// healthy sample leaves the counter untouched
	assert.False(t, c.CheckViolation("ue1", api.TrafficVoice, snapshot(5, 5)))
	assert.Equal(t, 2, c.Violations("ue1"))

	c.ResetViolations("ue1")
	assert.Equal(t, 0, c.Violations("ue1"))
}

func TestCheckViolationUplink(t *testing.T) {
	c := newClassifier(t)

	// web profile requires 10 Mbps; ul below 30% of that violates
	assert.True(t, c.CheckViolation("ue1", api.TrafficWeb, snapshot(20, 1)))
	assert.Equal(t, 1, c.Violations("ue1"))
}

func TestCheckViolationUnknownTraffic(t *testing.T) {
	c := newClassifier(t)
	assert.False(t, c.CheckViolation("ue1", api.TrafficUnknown, snapshot(0, 0)))
	assert.Equal(t, 0, c.Violations("ue1"))
}

func TestNewClassifierInvalidConfig(t *testing.T) {
	_, err := NewClassifier(&api.Classify{MinHistory: 1}, operational.NewMetrics(nil))
	require.Error(t, err)
	_, err = NewClassifier(&api.Classify{HistorySize: 5, MinHistory: 10}, operational.NewMetrics(nil))
	require.Error(t, err)
	_, err = NewClassifier(&api.Classify{DlViolationRatio: 1.5}, operational.NewMetrics(nil))
	require.Error(t, err)
}
