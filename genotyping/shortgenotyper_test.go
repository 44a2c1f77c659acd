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

func candidateRange(n int32) []AlleleSize {
	out := make([]AlleleSize, n+1)
	for i := range out {
		out[i] = AlleleSize(i)
	}
	return out
}

func TestGenotypeRepeatWithTwoAllelesTypicalDiploidRepeat(t *testing.T) {
	flanking := NewCountTable(map[int32]int32{1: 2, 2: 3, 10: 1})
	spanning := NewCountTable(map[int32]int32{3: 4, 5: 5})
	genotyper := NewShortRepeatGenotyper(6, 25, 0.97)

	genotype, ok := genotyper.GenotypeRepeatWithTwoAlleles(flanking, spanning, candidateRange(25))
	assert.True(t, ok)
	assert.Equal(t, []AlleleSize{3, 5}, allelesSizes(genotype))
	assert.Equal(t, int32(6), genotype.RepeatUnitLen)
	for _, a := range genotype.Alleles {
		assert.Equal(t, Spanning, a.Type)
		assert.LessOrEqual(t, a.CILow, a.Size)
		assert.GreaterOrEqual(t, a.CIHigh, a.Size)
	}
}

func TestGenotypeRepeatWithOneAlleleTypicalHaploidRepeat(t *testing.T) {
	flanking := NewCountTable(map[int32]int32{1: 2, 2: 3, 10: 1})
	spanning := NewCountTable(map[int32]int32{3: 4, 5: 5})
	genotyper := NewShortRepeatGenotyper(6, 25, 0.97)

	genotype, ok := genotyper.GenotypeRepeatWithOneAllele(flanking, spanning, candidateRange(25))
	assert.True(t, ok)
	assert.Equal(t, []AlleleSize{5}, allelesSizes(genotype))
}

func TestGenotypeRepeatEmptyCandidatesFails(t *testing.T) {
	genotyper := NewShortRepeatGenotyper(6, 25, 0.97)
	_, ok := genotyper.GenotypeRepeatWithOneAllele(NewCountTable(nil), NewCountTable(nil), nil)
	assert.False(t, ok)
	_, ok = genotyper.GenotypeRepeatWithTwoAlleles(NewCountTable(nil), NewCountTable(nil), nil)
	assert.False(t, ok)
}

func TestGenotypeRepeatTieBreaksToSmallerAllele(t *testing.T) {
	// No evidence at all: every candidate ties at log-likelihood 0 (an
	// empty sum), so the smallest candidate must win.
	genotyper := NewShortRepeatGenotyper(6, 25, 0.97)
	genotype, ok := genotyper.GenotypeRepeatWithOneAllele(NewCountTable(nil), NewCountTable(nil), []AlleleSize{2, 7, 9})
	assert.True(t, ok)
	assert.Equal(t, []AlleleSize{2}, allelesSizes(genotype))
}

func TestConfidenceIntervalContainsPointEstimate(t *testing.T) {
	flanking := NewCountTable(map[int32]int32{2: 1})
	spanning := NewCountTable(map[int32]int32{8: 6})
	genotyper := NewShortRepeatGenotyper(6, 25, 0.97)

	genotype, ok := genotyper.GenotypeRepeatWithOneAllele(flanking, spanning, candidateRange(25))
	assert.True(t, ok)
	allele := genotype.Alleles[0]
	assert.LessOrEqual(t, allele.CILow, allele.Size)
	assert.GreaterOrEqual(t, allele.CIHigh, allele.Size)
}

func allelesSizes(g RepeatGenotype) []AlleleSize {
	out := make([]AlleleSize, len(g.Alleles))
	for i, a := range g.Alleles {
		out[i] = a.Size
	}
	return out
}
