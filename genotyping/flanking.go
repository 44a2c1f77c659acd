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
	"gonum.org/v1/gonum/stat/distuv"
)

// flankingTailAlpha is the significance level for the binomial tail test
// backing a flanking allele's confidence interval: a candidate size k is
// excluded from the CI once P(observing >= the observed count | true
// size <= k) drops to or below this level.
const flankingTailAlpha = 0.05

// FlankingAlleleEstimator infers a point estimate and confidence
// interval for an allele whose only evidence is flanking reads -- reads
// that enter the repeat but don't cross it.
type FlankingAlleleEstimator struct {
	maxUnitsInRead AlleleSize
	haplotypeDepth float64
}

// NewFlankingAlleleEstimator builds an estimator for one locus' geometry
// and sequencing depth.
func NewFlankingAlleleEstimator(maxUnitsInRead AlleleSize, haplotypeDepth float64) FlankingAlleleEstimator {
	if maxUnitsInRead <= 0 {
		log.Fatalf("genotyping: maxUnitsInRead must be positive, got %d", maxUnitsInRead)
	}
	if haplotypeDepth <= 0 {
		log.Fatalf("genotyping: haplotypeDepth must be positive, got %v", haplotypeDepth)
	}
	return FlankingAlleleEstimator{maxUnitsInRead: maxUnitsInRead, haplotypeDepth: haplotypeDepth}
}

// Estimate returns the called allele, or false if counts has no
// observations at all.
func (e FlankingAlleleEstimator) Estimate(counts CountTable) (RepeatAllele, bool) {
	sizes := counts.Sizes()
	if len(sizes) == 0 {
		return RepeatAllele{}, false
	}

	// cumAbove[s] is the number of flanking reads observed at size >= s.
	cumAbove := make(map[AlleleSize]int32, len(sizes))
	var running int32
	for i := len(sizes) - 1; i >= 0; i-- {
		running += counts.CountOf(sizes[i])
		cumAbove[sizes[i]] = running
	}

	// The point estimate is the largest size whose supporting evidence
	// isn't a single read acting as an outlier; failing that, the single
	// largest observed size.
	point := sizes[len(sizes)-1]
	for i := len(sizes) - 1; i >= 0; i-- {
		if cumAbove[sizes[i]] > 1 {
			point = sizes[i]
			break
		}
	}

	// CI lower bound: the smallest size k for which "true size <= k" is
	// still a statistically plausible explanation of the observed
	// cumulative count at k; smaller sizes are rejected at the
	// flankingTailAlpha level and excluded.
	ciLow := point
	for _, s := range sizes {
		if s > point {
			break
		}
		if e.tailProbability(cumAbove[s], s) > flankingTailAlpha {
			ciLow = s
			break
		}
	}

	allele := RepeatAllele{Size: point, Type: Flanking, CILow: ciLow, CIHigh: e.maxUnitsInRead}
	return allele, true
}

// tailProbability returns P(observing >= observedAtLeast flanking reads
// | true allele size <= s), treating each haplotype read as an
// independent trial with probability 1/(s+1) of landing at or beyond s
// under that null.
func (e FlankingAlleleEstimator) tailProbability(observedAtLeast int32, s AlleleSize) float64 {
	if observedAtLeast <= 0 {
		return 1
	}
	trials := e.haplotypeDepth
	if float64(observedAtLeast) > trials {
		trials = float64(observedAtLeast)
	}
	successProb := 1 / float64(s+1)
	binom := distuv.Binomial{N: trials, P: successProb}
	tailProb := 1 - binom.CDF(float64(observedAtLeast)-1)
	if math.IsNaN(tailProb) {
		return 1
	}
	return tailProb
}
