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

import "math"

// logLikTieTolerance is the absolute log-likelihood difference below
// which two candidates are considered tied; ties resolve to the smaller
// allele size (or lexicographically smaller pair), which falls out of
// scanning candidates in ascending order and only replacing the
// incumbent on a strict, non-tied improvement.
const logLikTieTolerance = 1e-9

// ciLogLikThreshold is the log-likelihood drop from the maximum that
// still admits a candidate size into a confidence interval; -log(0.05).
const ciLogLikThreshold = 3.0

// ShortRepeatGenotyper performs a maximum-likelihood search over a
// closed set of candidate allele sizes, for loci whose evidence is fully
// explained by spanning and flanking reads.
type ShortRepeatGenotyper struct {
	repeatUnitLen        int32
	maxUnitsInRead        AlleleSize
	propCorrectMolecules float64
}

// NewShortRepeatGenotyper builds a genotyper for one repeat's geometry.
func NewShortRepeatGenotyper(repeatUnitLen int32, maxUnitsInRead AlleleSize, propCorrectMolecules float64) ShortRepeatGenotyper {
	return ShortRepeatGenotyper{
		repeatUnitLen:        repeatUnitLen,
		maxUnitsInRead:       maxUnitsInRead,
		propCorrectMolecules: propCorrectMolecules,
	}
}

// GenotypeRepeatWithOneAllele returns the maximum-likelihood haploid
// genotype over candidateSizes, or false if candidateSizes is empty or
// every candidate is degenerate (-Inf likelihood). candidateSizes must
// be ascending, per spec: the tie-break rule relies on scanning smaller
// candidates first.
func (g ShortRepeatGenotyper) GenotypeRepeatWithOneAllele(
	countsOfFlankingReads, countsOfSpanningReads CountTable, candidateSizes []AlleleSize,
) (RepeatGenotype, bool) {
	if len(candidateSizes) == 0 {
		return RepeatGenotype{}, false
	}

	logliks := make([]float64, len(candidateSizes))
	bestIdx := -1
	bestLogLik := math.Inf(-1)
	for i, a := range candidateSizes {
		ll := g.likelihoodOf([]AlleleSize{a}).CalcLogLik(countsOfFlankingReads, countsOfSpanningReads)
		logliks[i] = ll
		if ll > bestLogLik+logLikTieTolerance {
			bestLogLik = ll
			bestIdx = i
		}
	}
	if bestIdx == -1 || math.IsInf(bestLogLik, -1) {
		return RepeatGenotype{}, false
	}

	lo, hi := ciFromScan(candidateSizes, logliks, bestLogLik)
	allele := RepeatAllele{Size: candidateSizes[bestIdx], Type: Spanning, CILow: lo, CIHigh: hi}
	return NewRepeatGenotype(g.repeatUnitLen, allele), true
}

// GenotypeRepeatWithTwoAlleles returns the maximum-likelihood diploid
// genotype over unordered pairs drawn from candidateSizes, or false if
// candidateSizes is empty or every pair is degenerate.
func (g ShortRepeatGenotyper) GenotypeRepeatWithTwoAlleles(
	countsOfFlankingReads, countsOfSpanningReads CountTable, candidateSizes []AlleleSize,
) (RepeatGenotype, bool) {
	if len(candidateSizes) == 0 {
		return RepeatGenotype{}, false
	}

	type pair struct{ a1, a2 AlleleSize }
	var pairs []pair
	for i, a1 := range candidateSizes {
		for _, a2 := range candidateSizes[i:] {
			pairs = append(pairs, pair{a1, a2})
		}
	}

	bestIdx := -1
	bestLogLik := math.Inf(-1)
	for i, p := range pairs {
		ll := g.likelihoodOf([]AlleleSize{p.a1, p.a2}).CalcLogLik(countsOfFlankingReads, countsOfSpanningReads)
		if ll > bestLogLik+logLikTieTolerance {
			bestLogLik = ll
			bestIdx = i
		}
	}
	if bestIdx == -1 || math.IsInf(bestLogLik, -1) {
		return RepeatGenotype{}, false
	}
	best := pairs[bestIdx]

	lo1, hi1 := g.profileCI(countsOfFlankingReads, countsOfSpanningReads, candidateSizes, bestLogLik, best.a1, best.a2, true)
	lo2, hi2 := g.profileCI(countsOfFlankingReads, countsOfSpanningReads, candidateSizes, bestLogLik, best.a2, best.a1, false)

	allele1 := RepeatAllele{Size: best.a1, Type: Spanning, CILow: lo1, CIHigh: hi1}
	allele2 := RepeatAllele{Size: best.a2, Type: Spanning, CILow: lo2, CIHigh: hi2}
	return NewRepeatGenotype(g.repeatUnitLen, allele1, allele2), true
}

func (g ShortRepeatGenotyper) likelihoodOf(alleleSizes []AlleleSize) ShortRepeatLikelihood {
	return NewShortRepeatLikelihood(g.maxUnitsInRead, g.propCorrectMolecules, alleleSizes)
}

// profileCI scans one allele's candidate sizes while the other is held
// fixed at its jointly-chosen value, and returns the range of sizes
// whose joint log-likelihood stays within ciLogLikThreshold of the
// genotype's maximum -- a profile-likelihood confidence interval.
func (g ShortRepeatGenotyper) profileCI(
	countsOfFlankingReads, countsOfSpanningReads CountTable,
	candidateSizes []AlleleSize, bestLogLik float64,
	chosen, fixedOther AlleleSize, varyFirst bool,
) (AlleleSize, AlleleSize) {
	lo, hi := chosen, chosen
	for _, a := range candidateSizes {
		var sizes []AlleleSize
		if varyFirst {
			sizes = []AlleleSize{a, fixedOther}
		} else {
			sizes = []AlleleSize{fixedOther, a}
		}
		ll := g.likelihoodOf(sizes).CalcLogLik(countsOfFlankingReads, countsOfSpanningReads)
		if bestLogLik-ll <= ciLogLikThreshold {
			if a < lo {
				lo = a
			}
			if a > hi {
				hi = a
			}
		}
	}
	return lo, hi
}

// ciFromScan returns the range of candidateSizes whose log-likelihood
// stays within ciLogLikThreshold of bestLogLik.
func ciFromScan(candidateSizes []AlleleSize, logliks []float64, bestLogLik float64) (AlleleSize, AlleleSize) {
	lo, hi := candidateSizes[0], candidateSizes[0]
	first := true
	for i, a := range candidateSizes {
		if bestLogLik-logliks[i] > ciLogLikThreshold {
			continue
		}
		if first {
			lo, hi = a, a
			first = false
			continue
		}
		if a < lo {
			lo = a
		}
		if a > hi {
			hi = a
		}
	}
	return lo, hi
}
