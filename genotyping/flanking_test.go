// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package genotyping

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlankingAlleleEstimatorEmptyTableFails(t *testing.T) {
	estimator := NewFlankingAlleleEstimator(25, 20)
	_, ok := estimator.Estimate(NewCountTable(nil))
	assert.False(t, ok)
}

func TestFlankingAlleleEstimatorPicksLargestNonOutlierSize(t *testing.T) {
	estimator := NewFlankingAlleleEstimator(25, 20)
	// Size 20 is supported by three reads; the lone read at 24 is a
	// single-read outlier and shouldn't become the point estimate.
	counts := NewCountTable(map[int32]int32{5: 2, 20: 3, 24: 1})
	allele, ok := estimator.Estimate(counts)
	assert.True(t, ok)
	assert.Equal(t, AlleleSize(20), allele.Size)
	assert.Equal(t, Flanking, allele.Type)
}

func TestFlankingAlleleEstimatorSingleReadFallsBackToMax(t *testing.T) {
	estimator := NewFlankingAlleleEstimator(25, 20)
	counts := NewCountTable(map[int32]int32{12: 1})
	allele, ok := estimator.Estimate(counts)
	assert.True(t, ok)
	assert.Equal(t, AlleleSize(12), allele.Size)
}

func TestFlankingAlleleEstimatorCIContainsPointAndUpperIsMax(t *testing.T) {
	estimator := NewFlankingAlleleEstimator(25, 20)
	counts := NewCountTable(map[int32]int32{3: 2, 9: 4, 15: 6})
	allele, ok := estimator.Estimate(counts)
	assert.True(t, ok)
	assert.LessOrEqual(t, allele.CILow, allele.Size)
	assert.Equal(t, AlleleSize(25), allele.CIHigh)
}

func TestFlankingAlleleEstimatorDeterministic(t *testing.T) {
	estimator := NewFlankingAlleleEstimator(25, 20)
	counts := NewCountTable(map[int32]int32{3: 2, 9: 4, 15: 6})
	a, _ := estimator.Estimate(counts)
	b, _ := estimator.Estimate(counts)
	assert.Equal(t, a, b)
}
