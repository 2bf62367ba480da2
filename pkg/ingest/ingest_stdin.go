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
	"context"
	"io"
	"os"

	"github.com/benbjohnson/clock"
	log "github.com/sirupsen/logrus"

	"github.com/ranwatch/ric-decision-engine/pkg/operational"
)

type stdinIngester struct {
	decoder sampleDecoder
	in      io.Reader
}

// Ingest decodes json measurement reports from standard input until EOF.
func (s *stdinIngester) Ingest(ctx context.Context, process SampleFunc) error {
	nLines, err := s.decoder.scan(ctx, s.in, process)
	if err != nil {
		return err
	}
	log.Infof("ingested %d measurement reports from stdin", nLines)
	return nil
}

func newStdinIngester(opMetrics *operational.Metrics, clk clock.Clock) (Ingester, error) {
	return &stdinIngester{
		decoder: newSampleDecoder(opMetrics, clk),
		in:      os.Stdin,
	}, nil
}
