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
	"gonum.org/v1/gonum/floats"
)

// ShortRepeatLikelihood scores how well a candidate genotype (one or two
// allele sizes) explains observed spanning and flanking read counts. A
// spanning read of apparent size k is explained directly by the
// genotype's emission models; a flanking read of apparent size k is
// explained by any allele whose true size reaches at least k+1 units.
// For a heterozygous genotype, the per-read probability is the
// unweighted mean across the genotype's alleles.
type ShortRepeatLikelihood struct {
	emissions []AlleleEmissionModel
}

// NewShortRepeatLikelihood builds the likelihood model for one candidate
// genotype (one or two allele sizes, in any order).
func NewShortRepeatLikelihood(maxUnitsInRead AlleleSize, propCorrectMolecules float64, alleleSizes []AlleleSize) ShortRepeatLikelihood {
	if len(alleleSizes) == 0 {
		log.Fatalf("genotyping: a candidate genotype needs at least one allele size")
	}
	emissions := make([]AlleleEmissionModel, len(alleleSizes))
	for i, a := range alleleSizes {
		emissions[i] = NewAlleleEmissionModel(a, maxUnitsInRead, propCorrectMolecules)
	}
	return ShortRepeatLikelihood{emissions: emissions}
}

// meanLogProb returns log(mean_i exp(logs[i])), computed via a
// log-sum-exp so the mixture never multiplies raw probabilities.
func meanLogProb(logs []float64) float64 {
	return floats.LogSumExp(logs) - math.Log(float64(len(logs)))
}

// CalcSpanningLoglik returns the log-likelihood of a single spanning
// read observed at size k.
func (l ShortRepeatLikelihood) CalcSpanningLoglik(observedSize AlleleSize) float64 {
	logs := make([]float64, len(l.emissions))
	for i, e := range l.emissions {
		logs[i] = e.LogPropMoleculesOfGivenSize(observedSize)
	}
	return meanLogProb(logs)
}

// CalcFlankingLoglik returns the log-likelihood of a single flanking
// read observed at size k: consistent with any allele whose true size
// is at least k+1.
func (l ShortRepeatLikelihood) CalcFlankingLoglik(observedSize AlleleSize) float64 {
	logs := make([]float64, len(l.emissions))
	for i, e := range l.emissions {
		logs[i] = e.LogPropMoleculesAtLeast(observedSize + 1)
	}
	return meanLogProb(logs)
}

// CalcLogLik returns the total log-likelihood of the observed flanking
// and spanning count tables under this genotype.
func (l ShortRepeatLikelihood) CalcLogLik(countsOfFlankingReads, countsOfSpanningReads CountTable) float64 {
	var total float64
	for _, size := range countsOfSpanningReads.Sizes() {
		total += float64(countsOfSpanningReads.CountOf(size)) * l.CalcSpanningLoglik(size)
	}
	for _, size := range countsOfFlankingReads.Sizes() {
		total += float64(countsOfFlankingReads.CountOf(size)) * l.CalcFlankingLoglik(size)
	}
	return total
}
