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
	"math"

	"github.com/grailbio/base/log"
)

// errorDecayRate is the per-unit-distance decay of the truncated
// geometric kernel that spreads the (1-propCorrectMolecules) mass of
// AlleleEmissionModel away from an allele's true size. The kernel's
// exact shape is not part of the genotyping contract -- only that it
// sums to one over [0, S_max] and decays with distance from the true
// size -- so this is a design constant, not a measured quantity.
const errorDecayRate = 0.5

// AlleleEmissionModel gives the probability that a molecule amplified
// from an allele of size a units is observed to report each possible
// size in [0, maxUnitsInRead]. Sizes beyond maxUnitsInRead saturate onto
// it, both for the allele's true size and for the support of the
// distribution itself.
type AlleleEmissionModel struct {
	trueSize    AlleleSize
	maxSize     AlleleSize
	propCorrect float64
	logProb     []float64 // index k in [0, maxSize], log space
}

// NewAlleleEmissionModel builds the emission distribution for one
// hypothesized allele. Parameters outside their physical range are
// programmer errors and fail fast.
func NewAlleleEmissionModel(alleleSizeInUnits, maxUnitsInRead AlleleSize, propCorrectMolecules float64) AlleleEmissionModel {
	if alleleSizeInUnits < 0 {
		log.Fatalf("genotyping: alleleSizeInUnits must be non-negative, got %d", alleleSizeInUnits)
	}
	if maxUnitsInRead <= 0 {
		log.Fatalf("genotyping: maxUnitsInRead must be positive, got %d", maxUnitsInRead)
	}
	if propCorrectMolecules <= 0 || propCorrectMolecules > 1 {
		log.Fatalf("genotyping: propCorrectMolecules must be in (0, 1], got %v", propCorrectMolecules)
	}

	trueSize := alleleSizeInUnits
	if trueSize > maxUnitsInRead {
		trueSize = maxUnitsInRead
	}

	weights := make([]float64, maxUnitsInRead+1)
	var weightSum float64
	for k := AlleleSize(0); k <= maxUnitsInRead; k++ {
		if k == trueSize {
			continue
		}
		distance := k - trueSize
		if distance < 0 {
			distance = -distance
		}
		w := math.Pow(errorDecayRate, float64(distance))
		weights[k] = w
		weightSum += w
	}

	probs := make([]float64, maxUnitsInRead+1)
	probs[trueSize] = propCorrectMolecules
	remaining := 1 - propCorrectMolecules
	for k, w := range weights {
		if AlleleSize(k) == trueSize {
			continue
		}
		probs[k] = remaining * w / weightSum
	}

	logProb := make([]float64, len(probs))
	for k, p := range probs {
		logProb[k] = math.Log(p)
	}

	return AlleleEmissionModel{trueSize: trueSize, maxSize: maxUnitsInRead, propCorrect: propCorrectMolecules, logProb: logProb}
}

// clamp saturates an observed size onto [0, maxSize], mirroring the
// saturation spec.md applies to allele sizes themselves.
func (m AlleleEmissionModel) clamp(k AlleleSize) AlleleSize {
	if k < 0 {
		return 0
	}
	if k > m.maxSize {
		return m.maxSize
	}
	return k
}

// LogPropMoleculesOfGivenSize returns log P(observed size = k).
func (m AlleleEmissionModel) LogPropMoleculesOfGivenSize(k AlleleSize) float64 {
	return m.logProb[m.clamp(k)]
}

// PropMoleculesOfGivenSize returns P(observed size = k).
func (m AlleleEmissionModel) PropMoleculesOfGivenSize(k AlleleSize) float64 {
	return math.Exp(m.LogPropMoleculesOfGivenSize(k))
}

// PropMoleculesShorterThan returns P(observed size < k), summing
// directly in linear space since every term here is a plain probability
// mass, not a product of many of them.
func (m AlleleEmissionModel) PropMoleculesShorterThan(k AlleleSize) float64 {
	upper := m.clamp(k - 1)
	if k <= 0 {
		return 0
	}
	var total float64
	for i := AlleleSize(0); i <= upper; i++ {
		total += math.Exp(m.logProb[i])
	}
	return total
}

// PropMoleculesAtLeast returns P(observed size >= k).
func (m AlleleEmissionModel) PropMoleculesAtLeast(k AlleleSize) float64 {
	if k > m.maxSize {
		return 0
	}
	return 1 - m.PropMoleculesShorterThan(k)
}

// LogPropMoleculesAtLeast returns log P(observed size >= k), -Inf when
// that probability is exactly zero (k beyond the support).
func (m AlleleEmissionModel) LogPropMoleculesAtLeast(k AlleleSize) float64 {
	p := m.PropMoleculesAtLeast(k)
	if p <= 0 {
		return math.Inf(-1)
	}
	return math.Log(p)
}
