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
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ranwatch/ric-decision-engine/pkg/config"
	"github.com/ranwatch/ric-decision-engine/pkg/operational"
)

func TestStdinIngest(t *testing.T) {
	ing := &stdinIngester{
		decoder: newSampleDecoder(operational.NewMetrics(nil), clock.NewMock()),
		in:      strings.NewReader(testInput),
	}

	var got []collected
	require.NoError(t, ing.Ingest(context.Background(), func(entity string, ts time.Time, metrics config.GenericMap) {
		got = append(got, collected{entity, ts, metrics})
	}))
	require.Len(t, got, 2)
	assert.Equal(t, "ue1", got[0].entity)
	assert.Equal(t, "ue2", got[1].entity)
}
