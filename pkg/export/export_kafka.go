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
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus"
	kafkago "github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"

	"github.com/ranwatch/ric-decision-engine/pkg/api"
	"github.com/ranwatch/ric-decision-engine/pkg/config"
	"github.com/ranwatch/ric-decision-engine/pkg/engine"
	"github.com/ranwatch/ric-decision-engine/pkg/operational"
)

const (
	defaultReadTimeoutSeconds  = int64(10)
	defaultWriteTimeoutSeconds = int64(10)
)

var (
	decisionsExported = operational.DefineMetric(
		"export_decisions_total",
		"Number of decisions published to kafka",
		operational.TypeCounter,
	)
	exportErrors = operational.DefineMetric(
		"export_errors_total",
		"Number of kafka publish failures",
		operational.TypeCounter,
	)
)

type kafkaWriteMessage interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
}

type kafkaDispatcher struct {
	kafkaParams api.ExportKafka
	kafkaWriter kafkaWriteMessage

	exportedCounter prometheus.Counter
	errorsCounter   prometheus.Counter
}

// Dispatch publishes one decision to the kafka topic, keyed by entity so
// all decisions for an entity land on the same partition.
func (d *kafkaDispatcher) Dispatch(decision engine.Decision) {
	value, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(decision.ToGenericMap())
	if err != nil {
		log.Errorf("cannot encode decision: %v", err)
		d.errorsCounter.Inc()
		return
	}
	msg := kafkago.Message{
		Key:   []byte(decision.Entity),
		Value: value,
	}
	if err := d.kafkaWriter.WriteMessages(context.Background(), msg); err != nil {
		log.Errorf("kafka dispatch error: %v", err)
		d.errorsCounter.Inc()
		return
	}
	d.exportedCounter.Inc()
}

func newKafkaDispatcher(cfg *config.Export, opMetrics *operational.Metrics) (engine.Dispatcher, error) {
	params := cfg.Kafka
	if params.Address == "" || params.Topic == "" {
		return nil, fmt.Errorf("kafka export requires address and topic")
	}

	var balancer kafkago.Balancer
	switch params.Balancer {
	case api.KafkaExportBalancerName("RoundRobin"):
		balancer = &kafkago.RoundRobin{}
	case api.KafkaExportBalancerName("LeastBytes"):
		balancer = &kafkago.LeastBytes{}
	case api.KafkaExportBalancerName("Hash"):
		balancer = &kafkago.Hash{}
	case api.KafkaExportBalancerName("Crc32"):
		balancer = &kafkago.CRC32Balancer{}
	case api.KafkaExportBalancerName("Murmur2"):
		balancer = &kafkago.Murmur2Balancer{}
	case "":
		balancer = nil
	default:
		return nil, fmt.Errorf("kafka balancer unknown: %s", params.Balancer)
	}

	readTimeoutSecs := defaultReadTimeoutSeconds
	if params.ReadTimeout != 0 {
		readTimeoutSecs = params.ReadTimeout
	}
	writeTimeoutSecs := defaultWriteTimeoutSeconds
	if params.WriteTimeout != 0 {
		writeTimeoutSecs = params.WriteTimeout
	}

	kafkaWriter := kafkago.Writer{
		Addr:         kafkago.TCP(params.Address),
		Topic:        params.Topic,
		Balancer:     balancer,
		ReadTimeout:  time.Duration(readTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(writeTimeoutSecs) * time.Second,
		BatchSize:    params.BatchSize,
		BatchBytes:   params.BatchBytes,
	}
	log.Infof("kafka export address=%s topic=%s", params.Address, params.Topic)

	return &kafkaDispatcher{
		kafkaParams:     params,
		kafkaWriter:     &kafkaWriter,
		exportedCounter: opMetrics.NewCounter(&decisionsExported),
		errorsCounter:   opMetrics.NewCounter(&exportErrors),
	}, nil
}
