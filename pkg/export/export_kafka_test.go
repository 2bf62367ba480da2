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

package export

import (
	"context"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ranwatch/ric-decision-engine/pkg/api"
	"github.com/ranwatch/ric-decision-engine/pkg/config"
	"github.com/ranwatch/ric-decision-engine/pkg/engine"
	"github.com/ranwatch/ric-decision-engine/pkg/operational"
)

type fakeKafkaWriter struct {
	messages []kafkago.Message
}

func (f *fakeKafkaWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	f.messages = append(f.messages, msgs...)
	return nil
}

func TestKafkaDispatch(t *testing.T) {
	cfg := &config.Export{
		Type: "kafka",
		Kafka: api.ExportKafka{
			Address: "localhost:9092",
			Topic:   "decisions",
		},
	}
	disp, err := NewDispatcher(cfg, operational.NewMetrics(nil))
	require.NoError(t, err)
	kd := disp.(*kafkaDispatcher)
	fake := &fakeKafkaWriter{}
	kd.kafkaWriter = fake

	kd.Dispatch(engine.Decision{
		Type:      engine.DecisionSteering,
		Entity:    "ue7",
		Timestamp: time.Unix(1700000000, 0),
		Reason:    "qos",
	})

	require.Len(t, fake.messages, 1)
	assert.Equal(t, []byte("ue7"), fake.messages[0].Key)
	var decoded map[string]interface{}
	require.NoError(t, jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(fake.messages[0].Value, &decoded))
	assert.Equal(t, "steering_recommendation", decoded["type"])
	assert.Equal(t, "qos", decoded["reason"])
	assert.Equal(t, "ue7", decoded["entity"])
}

func TestKafkaDispatcherConfig(t *testing.T) {
	_, err := NewDispatcher(&config.Export{Type: "kafka"}, operational.NewMetrics(nil))
	require.Error(t, err)

	_, err = NewDispatcher(&config.Export{
		Type:  "kafka",
		Kafka: api.ExportKafka{Address: "localhost:9092", Topic: "t", Balancer: "bogus"},
	}, operational.NewMetrics(nil))
	require.Error(t, err)

	disp, err := NewDispatcher(&config.Export{
		Type:  "kafka",
		Kafka: api.ExportKafka{Address: "localhost:9092", Topic: "t", Balancer: "roundRobin"},
	}, operational.NewMetrics(nil))
	require.NoError(t, err)
	kd := disp.(*kafkaDispatcher)
	writer := kd.kafkaWriter.(*kafkago.Writer)
	assert.Equal(t, &kafkago.RoundRobin{}, writer.Balancer)
	assert.Equal(t, 10*time.Second, writer.WriteTimeout)
}

func TestUnknownExportType(t *testing.T) {
	_, err := NewDispatcher(&config.Export{Type: "loki"}, operational.NewMetrics(nil))
	require.Error(t, err)
}
