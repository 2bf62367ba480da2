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

package operational

import (
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

const prefix = "decision_engine_"

type MetricType string

const (
	TypeCounter MetricType = "counter"
	TypeGauge   MetricType = "gauge"
)

type MetricDefinition struct {
	Name   string
	Help   string
	Type   MetricType
	Labels []string
}

var allMetrics = []MetricDefinition{}

// DefineMetric registers a metric definition for documentation purposes and
// returns it for instantiation through Metrics.
func DefineMetric(name, help string, t MetricType, labels ...string) MetricDefinition {
	def := MetricDefinition{
		Name:   name,
		Help:   help,
		Type:   t,
		Labels: labels,
	}
	allMetrics = append(allMetrics, def)
	return def
}

// GetDocumentation returns the definitions of all operational metrics.
func GetDocumentation() []MetricDefinition {
	return allMetrics
}

// Metrics instantiates operational prometheus metrics against a registry.
// A nil registry produces unregistered metrics, which tests rely on to
// avoid duplicate registration across instances.
type Metrics struct {
	registry prometheus.Registerer
}

func NewMetrics(registry prometheus.Registerer) *Metrics {
	return &Metrics{registry: registry}
}

func (o *Metrics) register(c prometheus.Collector, name string) {
	if o.registry == nil {
		return
	}
	if err := o.registry.Register(c); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			log.Debugf("metric %s already registered", name)
			return
		}
		log.Errorf("metrics registration error [%s]: %v", name, err)
	}
}

func (o *Metrics) NewCounter(def *MetricDefinition) prometheus.Counter {
	verifyType(def, TypeCounter)
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: prefix + def.Name, Help: def.Help})
	o.register(c, def.Name)
	return c
}

func (o *Metrics) NewCounterVec(def *MetricDefinition) *prometheus.CounterVec {
	verifyType(def, TypeCounter)
	c := prometheus.NewCounterVec(prometheus.CounterOpts{Name: prefix + def.Name, Help: def.Help}, def.Labels)
	o.register(c, def.Name)
	return c
}

func (o *Metrics) NewGauge(def *MetricDefinition) prometheus.Gauge {
	verifyType(def, TypeGauge)
	g := prometheus.NewGauge(prometheus.GaugeOpts{Name: prefix + def.Name, Help: def.Help})
	o.register(g, def.Name)
	return g
}

func verifyType(def *MetricDefinition, t MetricType) {
	if def.Type != t {
		log.Panicf("operational metric %q defined as %s but instantiated as %s", def.Name, def.Type, t)
	}
}
