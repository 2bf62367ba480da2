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

package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricStoreEviction(t *testing.T) {
	ms, err := NewMetricStore(5)
	require.NoError(t, err)

	key := Key{Entity: "ue1", Metric: "DRB.UEThpDl"}
	for i := 1; i <= 8; i++ {
		ms.Update(key, float64(i))
	}

	h := ms.History(key)
	require.Len(t, h, 5)
	assert.Equal(t, []float64{4, 5, 6, 7, 8}, h)
	assert.Equal(t, 5, ms.Size(key))
}

func TestMetricStoreUnseenKey(t *testing.T) {
	ms, err := NewMetricStore(5)
	require.NoError(t, err)

	key := Key{Entity: "ue1", Metric: "DRB.UEThpDl"}
	assert.Empty(t, ms.History(key))
	assert.Equal(t, 0, ms.Size(key))
}

func TestMetricStoreReadsAreIdempotent(t *testing.T) {
	ms, err := NewMetricStore(10)
	require.NoError(t, err)

	key := Key{Entity: "cell", Metric: "RRC.ConnEstabSucc"}
	ms.Update(key, 95)
	ms.Update(key, 97)

	first := ms.History(key)
	second := ms.History(key)
	assert.Equal(t, first, second)
	assert.Equal(t, ms.Size(key), ms.Size(key))

	// mutating the returned slice must not leak into the store
	first[0] = -1
	assert.Equal(t, []float64{95, 97}, ms.History(key))
}

func TestMetricStoreLast(t *testing.T) {
	ms, err := NewMetricStore(10)
	require.NoError(t, err)

	key := Key{Entity: "ue2", Metric: "DRB.UEThpUl"}
	for i := 1; i <= 6; i++ {
		ms.Update(key, float64(i))
	}

	assert.Equal(t, []float64{4, 5, 6}, ms.Last(key, 3))
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, ms.Last(key, 100))
}

func TestMetricStoreKeysAreIndependent(t *testing.T) {
	ms, err := NewMetricStore(3)
	require.NoError(t, err)

	k1 := Key{Entity: "ue1", Metric: "DRB.UEThpDl"}
	k2 := Key{Entity: "ue1", Metric: "DRB.UEThpUl"}
	ms.Update(k1, 1)
	ms.Update(k2, 2)

	assert.Equal(t, []float64{1}, ms.History(k1))
	assert.Equal(t, []float64{2}, ms.History(k2))
}

func TestNewMetricStoreInvalidCapacity(t *testing.T) {
	_, err := NewMetricStore(0)
	require.Error(t, err)
	_, err = NewMetricStore(-1)
	require.Error(t, err)
}
