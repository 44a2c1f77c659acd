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

func TestIRRAlleleEstimatorPointAtOrAboveMax(t *testing.T) {
	estimator := NewIRRAlleleEstimator(20, 25)
	allele := estimator.Estimate(10)
	assert.Equal(t, InRepeat, allele.Type)
	assert.GreaterOrEqual(t, allele.Size, AlleleSize(25))
}

func TestIRRAlleleEstimatorCIContainsPoint(t *testing.T) {
	estimator := NewIRRAlleleEstimator(20, 25)
	allele := estimator.Estimate(10)
	assert.LessOrEqual(t, allele.CILow, allele.Size)
	assert.GreaterOrEqual(t, allele.CIHigh, allele.Size)
}

func TestIRRAlleleEstimatorGrowsWithMoreReads(t *testing.T) {
	estimator := NewIRRAlleleEstimator(20, 25)
	few := estimator.Estimate(2)
	many := estimator.Estimate(40)
	assert.Greater(t, many.Size, few.Size)
}

func TestIRRAlleleEstimatorZeroReadsStaysAtMax(t *testing.T) {
	estimator := NewIRRAlleleEstimator(20, 25)
	allele := estimator.Estimate(0)
	assert.Equal(t, AlleleSize(25), allele.Size)
}

func TestIRRAlleleEstimatorDeterministic(t *testing.T) {
	estimator := NewIRRAlleleEstimator(20, 25)
	a := estimator.Estimate(15)
	b := estimator.Estimate(15)
	assert.Equal(t, a, b)
}
