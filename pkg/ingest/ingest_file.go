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

package ingest

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/benbjohnson/clock"
	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/ranwatch/ric-decision-engine/pkg/config"
	"github.com/ranwatch/ric-decision-engine/pkg/operational"
)

const loopDelay = 10 * time.Second

var (
	samplesIngested = operational.DefineMetric(
		"ingest_samples_total",
		"Number of measurement reports ingested",
		operational.TypeCounter,
	)
	ingestErrors = operational.DefineMetric(
		"ingest_errors_total",
		"Number of input lines that could not be decoded",
		operational.TypeCounter,
	)
)

// sampleRecord is the wire layout of one measurement report line. The
// timestamp is unix seconds; when absent the ingest time is used.
type sampleRecord struct {
	Entity    string            `json:"entity"`
	Timestamp float64           `json:"timestamp,omitempty"`
	Metrics   config.GenericMap `json:"metrics"`
}

// sampleDecoder turns json lines into samples, shared by the line-oriented
// ingesters.
type sampleDecoder struct {
	clock clock.Clock

	samplesCounter prometheus.Counter
	errorsCounter  prometheus.Counter
}

func newSampleDecoder(opMetrics *operational.Metrics, clk clock.Clock) sampleDecoder {
	return sampleDecoder{
		clock:          clk,
		samplesCounter: opMetrics.NewCounter(&samplesIngested),
		errorsCounter:  opMetrics.NewCounter(&ingestErrors),
	}
}

// scan decodes json lines from r until EOF or context cancellation,
// handing each decoded sample to process. Undecodable lines are counted
// and skipped.
func (d *sampleDecoder) scan(ctx context.Context, r io.Reader, process SampleFunc) (int, error) {
	nLines := 0
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nLines, nil
		default:
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var record sampleRecord
		if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(line, &record); err != nil {
			log.Errorf("cannot decode input line: %v", err)
			d.errorsCounter.Inc()
			continue
		}
		if record.Entity == "" {
			log.Errorf("input line has no entity: %s", scanner.Text())
			d.errorsCounter.Inc()
			continue
		}
		ts := d.clock.Now()
		if record.Timestamp != 0 {
			sec := int64(record.Timestamp)
			ts = time.Unix(sec, int64((record.Timestamp-float64(sec))*float64(time.Second)))
		}
		d.samplesCounter.Inc()
		nLines++
		process(record.Entity, ts, record.Metrics)
	}
	return nLines, scanner.Err()
}

type fileIngester struct {
	decoder  sampleDecoder
	fileName string
	loop     bool
}

// Ingest reads the file line by line, decoding each line as one json
// measurement report. With loop enabled the file is replayed every
// loopDelay until the context is cancelled.
func (f *fileIngester) Ingest(ctx context.Context, process SampleFunc) error {
	for {
		if err := f.replay(ctx, process); err != nil {
			return err
		}
		if !f.loop {
			return nil
		}
		log.Debugf("replaying %s in %v", f.fileName, loopDelay)
		select {
		case <-ctx.Done():
			return nil
		case <-f.decoder.clock.After(loopDelay):
		}
	}
}

func (f *fileIngester) replay(ctx context.Context, process SampleFunc) error {
	file, err := os.Open(f.fileName)
	if err != nil {
		return err
	}
	defer func() {
		_ = file.Close()
	}()

	nLines, err := f.decoder.scan(ctx, file, process)
	if err != nil {
		return err
	}
	log.Infof("ingested %d measurement reports from %s", nLines, f.fileName)
	return nil
}

func newFileIngester(cfg *config.Ingest, opMetrics *operational.Metrics, clk clock.Clock) (Ingester, error) {
	if cfg.File.Filename == "" {
		return nil, fmt.Errorf("ingest filename not specified")
	}
	log.Infof("input file name = %s", cfg.File.Filename)
	return &fileIngester{
		decoder:  newSampleDecoder(opMetrics, clk),
		fileName: cfg.File.Filename,
		loop:     cfg.File.Loop,
	}, nil
}
