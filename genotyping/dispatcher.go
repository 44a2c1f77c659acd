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

// RepeatGenotyper classifies a locus by its read-count evidence into one
// of several regimes -- both alleles in-repeat, one in-repeat and one
// short, both flanking, one short and one flanking, or both short -- and
// dispatches to ShortRepeatGenotyper and/or the IRR/flanking estimators
// accordingly. Classification is one-shot: there are no retries, only a
// fallthrough to the next, more conservative regime when the chosen one
// turns out degenerate.
type RepeatGenotyper struct {
	params                GenotypingParameters
	countsOfSpanningReads CountTable
	countsOfFlankingReads CountTable
	countsOfInrepeatReads CountTable
}

// NewRepeatGenotyper builds a dispatcher for one locus' evidence.
// Non-physical parameters fail fast; see GenotypingParameters.validate.
func NewRepeatGenotyper(
	params GenotypingParameters,
	countsOfSpanningReads, countsOfFlankingReads, countsOfInrepeatReads CountTable,
) RepeatGenotyper {
	params.validate()
	return RepeatGenotyper{
		params:                params,
		countsOfSpanningReads: countsOfSpanningReads,
		countsOfFlankingReads: countsOfFlankingReads,
		countsOfInrepeatReads: countsOfInrepeatReads,
	}
}

// depthThreshold is the minimum count of full-length repeat-supporting
// reads needed before an allele is called in-repeat rather than short;
// chosen so a true expanded allele produces at least this many reads
// with high probability.
func (g RepeatGenotyper) depthThreshold() int32 {
	return int32(math.Ceil(g.params.HaplotypeDepth / 4))
}

// countFullLengthRepeatReads reinterprets flanking reads pinned at
// maxNumUnitsInRead as in-repeat reads: a flanking read that reaches all
// the way to S_max carries no information distinguishing it from an IRR.
func countFullLengthRepeatReads(maxNumUnitsInRead AlleleSize, countsOfFlankingReads, countsOfInrepeatReads CountTable) int32 {
	return countsOfFlankingReads.CountOf(maxNumUnitsInRead) + countsOfInrepeatReads.CountOf(maxNumUnitsInRead)
}

// GenotypeRepeat is the sole entry point: given a closed, ascending set
// of candidate allele sizes, it returns the called genotype, or false if
// there's no evidence at all, no candidates, or every candidate regime
// turns out degenerate.
func (g RepeatGenotyper) GenotypeRepeat(candidateAlleleSizes []AlleleSize) (RepeatGenotype, bool) {
	if len(candidateAlleleSizes) == 0 {
		return RepeatGenotype{}, false
	}
	if g.countsOfSpanningReads.IsEmpty() && g.countsOfFlankingReads.IsEmpty() && g.countsOfInrepeatReads.IsEmpty() {
		return RepeatGenotype{}, false
	}

	switch g.params.ExpectedAlleleCount {
	case Diploid:
		return g.genotypeDiploid(candidateAlleleSizes)
	case Haploid:
		return g.genotypeHaploid(candidateAlleleSizes)
	default:
		log.Fatalf("genotyping: unsupported allele count %v", g.params.ExpectedAlleleCount)
		return RepeatGenotype{}, false
	}
}

func (g RepeatGenotyper) genotypeDiploid(candidateAlleleSizes []AlleleSize) (RepeatGenotype, bool) {
	sMax := g.params.MaxNumUnitsInRead
	numFullLength := countFullLengthRepeatReads(sMax, g.countsOfFlankingReads, g.countsOfInrepeatReads)

	if numFullLength >= g.depthThreshold() {
		if !hasEvidenceBelow(g.countsOfSpanningReads, sMax) {
			log.Debug.Printf("genotyping: dispatch -> both alleles in-repeat (numFullLength=%d)", numFullLength)
			return g.bothInRepeat(numFullLength), true
		}
		log.Debug.Printf("genotyping: dispatch -> one in-repeat, one short (numFullLength=%d)", numFullLength)
		if genotype, ok := g.oneInRepeatOneShort(candidateAlleleSizes, numFullLength); ok {
			return genotype, true
		}
		log.Debug.Printf("genotyping: one-in-repeat-one-short branch degenerate, falling through")
	}

	if g.countsOfSpanningReads.IsEmpty() && !g.countsOfFlankingReads.IsEmpty() {
		log.Debug.Printf("genotyping: dispatch -> both alleles flanking")
		if genotype, ok := g.bothFlanking(); ok {
			return genotype, true
		}
		log.Debug.Printf("genotyping: both-flanking branch degenerate, falling through")
	}

	if genotype, ok := g.oneShortOneFlanking(candidateAlleleSizes); ok {
		log.Debug.Printf("genotyping: dispatch -> one short, one flanking")
		return genotype, true
	}

	log.Debug.Printf("genotyping: dispatch -> both alleles short")
	return NewShortRepeatGenotyper(g.params.RepeatUnitLen, sMax, g.params.PropCorrectMolecules).
		GenotypeRepeatWithTwoAlleles(g.countsOfFlankingReads, g.countsOfSpanningReads, candidateAlleleSizes)
}

func (g RepeatGenotyper) genotypeHaploid(candidateAlleleSizes []AlleleSize) (RepeatGenotype, bool) {
	sMax := g.params.MaxNumUnitsInRead
	numFullLength := countFullLengthRepeatReads(sMax, g.countsOfFlankingReads, g.countsOfInrepeatReads)

	if numFullLength >= g.depthThreshold() {
		log.Debug.Printf("genotyping: dispatch -> in-repeat allele (numFullLength=%d)", numFullLength)
		allele := NewIRRAlleleEstimator(g.params.HaplotypeDepth, sMax).Estimate(numFullLength)
		return NewRepeatGenotype(g.params.RepeatUnitLen, allele), true
	}

	if g.countsOfSpanningReads.IsEmpty() && !g.countsOfFlankingReads.IsEmpty() {
		log.Debug.Printf("genotyping: dispatch -> flanking allele")
		if allele, ok := NewFlankingAlleleEstimator(sMax, g.params.HaplotypeDepth).Estimate(g.countsOfFlankingReads); ok {
			return NewRepeatGenotype(g.params.RepeatUnitLen, allele), true
		}
		log.Debug.Printf("genotyping: flanking branch degenerate, falling through")
	}

	log.Debug.Printf("genotyping: dispatch -> short allele")
	return NewShortRepeatGenotyper(g.params.RepeatUnitLen, sMax, g.params.PropCorrectMolecules).
		GenotypeRepeatWithOneAllele(g.countsOfFlankingReads, g.countsOfSpanningReads, candidateAlleleSizes)
}

// bothInRepeat handles the case where both alleles are fully explained
// by in-repeat evidence: lacking any signal separating them, both get
// the same IRR-derived size and CI.
func (g RepeatGenotyper) bothInRepeat(numFullLength int32) RepeatGenotype {
	allele := NewIRRAlleleEstimator(g.params.HaplotypeDepth, g.params.MaxNumUnitsInRead).Estimate(numFullLength)
	return NewRepeatGenotype(g.params.RepeatUnitLen, allele, allele)
}

// oneInRepeatOneShort calls the short allele from spanning/flanking
// evidence with the in-repeat-pinned observations excluded (they've
// already been folded into numFullLength), and the other allele from
// the IRR estimator.
func (g RepeatGenotyper) oneInRepeatOneShort(candidateAlleleSizes []AlleleSize, numFullLength int32) (RepeatGenotype, bool) {
	sMax := g.params.MaxNumUnitsInRead
	residualFlanking := withoutSize(g.countsOfFlankingReads, sMax)
	residualSpanning := withoutSize(g.countsOfSpanningReads, sMax)
	shortCandidates := belowSize(candidateAlleleSizes, sMax)

	shortGenotype, ok := NewShortRepeatGenotyper(g.params.RepeatUnitLen, sMax, g.params.PropCorrectMolecules).
		GenotypeRepeatWithOneAllele(residualFlanking, residualSpanning, shortCandidates)
	if !ok {
		return RepeatGenotype{}, false
	}

	irrAllele := NewIRRAlleleEstimator(g.params.HaplotypeDepth, sMax).Estimate(numFullLength)
	return NewRepeatGenotype(g.params.RepeatUnitLen, shortGenotype.Alleles[0], irrAllele), true
}

// bothFlanking estimates the larger allele from the full flanking table,
// then partitions off the evidence that can only have come from it and
// re-estimates the smaller allele from whatever flanking reads remain.
func (g RepeatGenotyper) bothFlanking() (RepeatGenotype, bool) {
	estimator := NewFlankingAlleleEstimator(g.params.MaxNumUnitsInRead, g.params.HaplotypeDepth)

	largerAllele, ok := estimator.Estimate(g.countsOfFlankingReads)
	if !ok {
		return RepeatGenotype{}, false
	}

	residual := withoutSizesAtOrAbove(g.countsOfFlankingReads, largerAllele.Size)
	if residual.IsEmpty() {
		return NewRepeatGenotype(g.params.RepeatUnitLen, largerAllele, largerAllele), true
	}
	smallerAllele, ok := estimator.Estimate(residual)
	if !ok {
		return NewRepeatGenotype(g.params.RepeatUnitLen, largerAllele, largerAllele), true
	}
	return NewRepeatGenotype(g.params.RepeatUnitLen, smallerAllele, largerAllele), true
}

// oneShortOneFlanking calls the short allele from all spanning and
// flanking evidence, then checks whether flanking reads longer than
// that allele remain unexplained; if so, the second allele is called
// from that residual by the flanking estimator.
func (g RepeatGenotyper) oneShortOneFlanking(candidateAlleleSizes []AlleleSize) (RepeatGenotype, bool) {
	if g.countsOfSpanningReads.IsEmpty() {
		return RepeatGenotype{}, false
	}

	shortGenotype, ok := NewShortRepeatGenotyper(g.params.RepeatUnitLen, g.params.MaxNumUnitsInRead, g.params.PropCorrectMolecules).
		GenotypeRepeatWithOneAllele(g.countsOfFlankingReads, g.countsOfSpanningReads, candidateAlleleSizes)
	if !ok {
		return RepeatGenotype{}, false
	}
	shortAllele := shortGenotype.Alleles[0]

	residual := withoutSizesAtOrBelow(g.countsOfFlankingReads, shortAllele.Size)
	if residual.IsEmpty() {
		return RepeatGenotype{}, false
	}

	flankingAllele, ok := NewFlankingAlleleEstimator(g.params.MaxNumUnitsInRead, g.params.HaplotypeDepth).Estimate(residual)
	if !ok {
		return RepeatGenotype{}, false
	}
	return NewRepeatGenotype(g.params.RepeatUnitLen, shortAllele, flankingAllele), true
}

func hasEvidenceBelow(t CountTable, maxSize AlleleSize) bool {
	for _, s := range t.Sizes() {
		if s < maxSize {
			return true
		}
	}
	return false
}

func withoutSize(t CountTable, size AlleleSize) CountTable {
	return t.filter(func(s AlleleSize) bool { return s != size })
}

func withoutSizesAtOrAbove(t CountTable, size AlleleSize) CountTable {
	return t.filter(func(s AlleleSize) bool { return s < size })
}

func withoutSizesAtOrBelow(t CountTable, size AlleleSize) CountTable {
	return t.filter(func(s AlleleSize) bool { return s > size })
}

func belowSize(sizes []AlleleSize, maxSize AlleleSize) []AlleleSize {
	out := make([]AlleleSize, 0, len(sizes))
	for _, s := range sizes {
		if s < maxSize {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return sizes
	}
	return out
}
