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

package predict

import (
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// scaler standardizes features with the mean/scale fit at training time.
// Parameters are frozen once fit; predictions never see in-flight state.
type scaler struct {
	mean  []float64
	scale []float64
}

func fitScaler(samples [][]float64) *scaler {
	d := len(samples[0])
	s := &scaler{
		mean:  make([]float64, d),
		scale: make([]float64, d),
	}
	col := make([]float64, len(samples))
	for j := 0; j < d; j++ {
		for i := range samples {
			col[i] = samples[i][j]
		}
		s.mean[j] = stat.Mean(col, nil)
		s.scale[j] = math.Sqrt(stat.PopVariance(col, nil))
		if s.scale[j] == 0 {
			// constant feature; leave it centered only
			s.scale[j] = 1
		}
	}
	return s
}

func (s *scaler) transform(features []float64) []float64 {
	if len(features) != len(s.mean) {
		log.Panicf("feature vector length %d does not match fitted scaler length %d", len(features), len(s.mean))
	}
	out := make([]float64, len(features))
	for j, v := range features {
		out[j] = (v - s.mean[j]) / s.scale[j]
	}
	return out
}

// fitRegression solves the least-squares linear model over scaled features.
// The returned coefficients hold the intercept first.
func fitRegression(samples [][]float64, targets []float64) ([]float64, error) {
	n := len(samples)
	d := len(samples[0])
	a := mat.NewDense(n, d+1, nil)
	for i, row := range samples {
		a.Set(i, 0, 1)
		for j, v := range row {
			a.Set(i, j+1, v)
		}
	}
	b := mat.NewVecDense(n, targets)

	var coef mat.VecDense
	if err := coef.SolveVec(a, b); err != nil {
		// an ill-conditioned system still yields a usable solution
		if _, ok := err.(mat.Condition); !ok {
			return nil, fmt.Errorf("regression fit failed: %w", err)
		}
	}
	out := make([]float64, d+1)
	for j := range out {
		out[j] = coef.AtVec(j)
	}
	return out, nil
}

func predictRegression(coef, features []float64) float64 {
	return coef[0] + floats.Dot(coef[1:], features)
}

// logisticModel is a binary classifier over scaled features, fit with batch
// gradient descent. Weights hold the bias first.
type logisticModel struct {
	weights []float64
}

const (
	logisticIterations   = 200
	logisticLearningRate = 0.1
)

func fitLogistic(samples [][]float64, labels []int) *logisticModel {
	n := len(samples)
	d := len(samples[0])
	w := make([]float64, d+1)
	grad := make([]float64, d+1)
	for iter := 0; iter < logisticIterations; iter++ {
		for j := range grad {
			grad[j] = 0
		}
		for i, row := range samples {
			p := sigmoid(w[0] + floats.Dot(w[1:], row))
			e := p - float64(labels[i])
			grad[0] += e
			for j, v := range row {
				grad[j+1] += e * v
			}
		}
		for j := range w {
			w[j] -= logisticLearningRate * grad[j] / float64(n)
		}
	}
	return &logisticModel{weights: w}
}

func (m *logisticModel) probability(features []float64) float64 {
	return sigmoid(m.weights[0] + floats.Dot(m.weights[1:], features))
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// modelSnapshot is an immutable fit of scaler, regression and classifier.
// Retraining builds a fresh snapshot and publishes it atomically; inference
// reads whichever snapshot was last published.
type modelSnapshot struct {
	scaler     *scaler
	regression []float64
	classifier *logisticModel
	samples    int
}
