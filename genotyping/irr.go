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

// irrChiSquaredThreshold is the log-likelihood drop from the maximum
// that still admits a candidate allele size into the 95% CI; the 0.05
// critical value of a chi-squared distribution with one degree of
// freedom, halved to compare against a log-likelihood rather than a
// likelihood-ratio statistic.
const irrChiSquaredThreshold = 1.92

// IRRAlleleEstimator infers the size of an expanded allele from the
// number of in-repeat reads (IRRs) observed at a locus, assuming IRRs
// arise from a Poisson process whose rate grows linearly with how far
// the allele extends past maxUnitsInRead.
type IRRAlleleEstimator struct {
	haplotypeDepth float64
	maxUnitsInRead AlleleSize
}

// NewIRRAlleleEstimator builds an estimator for one locus' depth and
// geometry.
func NewIRRAlleleEstimator(haplotypeDepth float64, maxUnitsInRead AlleleSize) IRRAlleleEstimator {
	if haplotypeDepth <= 0 {
		log.Fatalf("genotyping: haplotypeDepth must be positive, got %v", haplotypeDepth)
	}
	if maxUnitsInRead <= 0 {
		log.Fatalf("genotyping: maxUnitsInRead must be positive, got %d", maxUnitsInRead)
	}
	return IRRAlleleEstimator{haplotypeDepth: haplotypeDepth, maxUnitsInRead: maxUnitsInRead}
}

// expectedIRRs returns the Poisson mean number of IRRs generated by an
// allele of size a repeat units, a >= maxUnitsInRead: the fraction of
// the allele's length past the read-length ceiling, scaled by depth.
func (e IRRAlleleEstimator) expectedIRRs(a float64) float64 {
	sMax := float64(e.maxUnitsInRead)
	if a < sMax {
		a = sMax
	}
	return e.haplotypeDepth * (a - sMax + 1) / sMax
}

// logLik returns the Poisson log-likelihood of observing numIRRs reads
// from an allele of size a.
func (e IRRAlleleEstimator) logLik(numIRRs int32, a float64) float64 {
	lambda := e.expectedIRRs(a)
	if lambda <= 0 {
		lambda = 1e-12
	}
	return distuv.Poisson{Lambda: lambda}.LogProb(float64(numIRRs))
}

// Estimate returns a point estimate and 95% CI, in repeat units, for an
// allele supported by numIRRs in-repeat reads.
func (e IRRAlleleEstimator) Estimate(numIRRs int32) RepeatAllele {
	sMax := e.maxUnitsInRead

	// Invert the Poisson mean directly for the MLE: E[numIRRs] is linear
	// in a, so solving E[numIRRs] = numIRRs gives the maximizer exactly.
	aHat := float64(sMax) + float64(numIRRs)*float64(sMax)/e.haplotypeDepth - 1
	if aHat < float64(sMax) {
		aHat = float64(sMax)
	}
	point := AlleleSize(math.Round(aHat))
	bestLogLik := e.logLik(numIRRs, float64(point))

	ciLow, ciHigh := point, point
	for a := point; a >= sMax; a-- {
		if bestLogLik-e.logLik(numIRRs, float64(a)) > irrChiSquaredThreshold {
			break
		}
		ciLow = a
	}
	// The Poisson log-likelihood is unimodal in a, so scanning upward
	// from the point estimate until the threshold is crossed suffices;
	// cap the scan generously so a pathological lambda can't loop long.
	upperBound := point + 50*sMax + 50
	for a := point; a <= upperBound; a++ {
		if bestLogLik-e.logLik(numIRRs, float64(a)) > irrChiSquaredThreshold {
			break
		}
		ciHigh = a
	}

	return RepeatAllele{Size: point, Type: InRepeat, CILow: ciLow, CIHigh: ciHigh}
}
