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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ranwatch/ric-decision-engine/pkg/config"
	"github.com/ranwatch/ric-decision-engine/pkg/operational"
)

const testInput = `{"entity": "ue1", "timestamp": 1700000000.5, "metrics": {"DRB.UEThpDl": 12.5, "DRB.UEThpUl": 1.5}}
{"entity": "ue2", "metrics": {"DRB.UEThpDl": 3.0}}
not json at all
{"metrics": {"DRB.UEThpDl": 3.0}}
`

type collected struct {
	entity    string
	timestamp time.Time
	metrics   config.GenericMap
}

func writeInput(t *testing.T, content string) string {
	name := filepath.Join(t.TempDir(), "samples.json")
	require.NoError(t, os.WriteFile(name, []byte(content), 0600))
	return name
}

func TestFileIngest(t *testing.T) {
	cfg := &config.Ingest{
		Type: "file",
		File: config.IngestFile{Filename: writeInput(t, testInput)},
	}
	ing, err := NewIngester(cfg, operational.NewMetrics(nil), clock.NewMock())
	require.NoError(t, err)

	var got []collected
	err = ing.Ingest(context.Background(), func(entity string, ts time.Time, metrics config.GenericMap) {
		got = append(got, collected{entity, ts, metrics})
	})
	require.NoError(t, err)

	// the malformed line and the line without an entity are skipped
	require.Len(t, got, 2)
	assert.Equal(t, "ue1", got[0].entity)
	assert.Equal(t, int64(1700000000), got[0].timestamp.Unix())
	assert.Equal(t, 12.5, got[0].metrics["DRB.UEThpDl"])
	assert.Equal(t, "ue2", got[1].entity)
}

func TestFileIngestDefaultTimestamp(t *testing.T) {
	cfg := &config.Ingest{
		Type: "file",
		File: config.IngestFile{Filename: writeInput(t, `{"entity": "ue1", "metrics": {"m": 1}}`+"\n")},
	}
	mck := clock.NewMock()
	mck.Set(time.Unix(1700000123, 0))
	ing, err := NewIngester(cfg, operational.NewMetrics(nil), mck)
	require.NoError(t, err)

	var got []collected
	require.NoError(t, ing.Ingest(context.Background(), func(entity string, ts time.Time, metrics config.GenericMap) {
		got = append(got, collected{entity, ts, metrics})
	}))
	require.Len(t, got, 1)
	assert.Equal(t, int64(1700000123), got[0].timestamp.Unix())
}

func TestFileIngestLoopStopsOnCancel(t *testing.T) {
	cfg := &config.Ingest{
		Type: "file",
		File: config.IngestFile{Filename: writeInput(t, testInput), Loop: true},
	}
	ing, err := NewIngester(cfg, operational.NewMetrics(nil), clock.New())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	seen := make(chan struct{}, 16)
	done := make(chan error, 1)
	go func() {
		done <- ing.Ingest(ctx, func(string, time.Time, config.GenericMap) {
			seen <- struct{}{}
		})
	}()

	// wait for the first replay, then cancel during the loop delay
	for i := 0; i < 2; i++ {
		select {
		case <-seen:
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for ingested samples")
		}
	}
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("ingester did not stop on context cancellation")
	}
}

func TestNewIngesterErrors(t *testing.T) {
	_, err := NewIngester(&config.Ingest{Type: "collector"}, operational.NewMetrics(nil), clock.NewMock())
	require.Error(t, err)
	_, err = NewIngester(&config.Ingest{Type: "file"}, operational.NewMetrics(nil), clock.NewMock())
	require.Error(t, err)
}
