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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalcSpanningLoglikMatchesMeanEmission(t *testing.T) {
	l := NewShortRepeatLikelihood(25, 0.97, []AlleleSize{2, 3})
	e2 := NewAlleleEmissionModel(2, 25, 0.97)
	e3 := NewAlleleEmissionModel(3, 25, 0.97)

	mean := (e2.PropMoleculesOfGivenSize(4) + e3.PropMoleculesOfGivenSize(4)) / 2
	assert.InDelta(t, math.Log(mean), l.CalcSpanningLoglik(4), 1e-9)
}

func TestCalcFlankingLoglikMatchesMeanTailProb(t *testing.T) {
	l := NewShortRepeatLikelihood(25, 0.97, []AlleleSize{2, 3})
	e2 := NewAlleleEmissionModel(2, 25, 0.97)
	e3 := NewAlleleEmissionModel(3, 25, 0.97)

	mean := (e2.PropMoleculesAtLeast(6) + e3.PropMoleculesAtLeast(6)) / 2
	assert.InDelta(t, math.Log(mean), l.CalcFlankingLoglik(5), 1e-9)
}

func TestCalcLogLikSumsOverTable(t *testing.T) {
	l := NewShortRepeatLikelihood(25, 0.97, []AlleleSize{3, 5})
	flanking := NewCountTable(map[int32]int32{1: 2, 2: 3, 10: 1})
	spanning := NewCountTable(map[int32]int32{3: 4, 5: 5})

	var want float64
	for _, size := range spanning.Sizes() {
		want += float64(spanning.CountOf(size)) * l.CalcSpanningLoglik(size)
	}
	for _, size := range flanking.Sizes() {
		want += float64(flanking.CountOf(size)) * l.CalcFlankingLoglik(size)
	}
	assert.InDelta(t, want, l.CalcLogLik(flanking, spanning), 1e-9)
}

// Evidence concentrated exactly on a genotype's own allele sizes must
// score higher than the same volume of evidence spread onto a distant,
// unrelated genotype: this holds for any sensibly peaked emission model,
// not just the specific kernel shape chosen here.
func TestGenotypeMatchingObservedSizesScoresHigher(t *testing.T) {
	flanking := NewCountTable(map[int32]int32{1: 2, 2: 3, 10: 1})
	spanning := NewCountTable(map[int32]int32{3: 4, 5: 5})

	matching := NewShortRepeatLikelihood(25, 0.97, []AlleleSize{3, 5}).CalcLogLik(flanking, spanning)
	distant := NewShortRepeatLikelihood(25, 0.97, []AlleleSize{10, 10}).CalcLogLik(flanking, spanning)

	assert.Greater(t, matching, distant)
}

// Doubling every count in the evidence tables must not decrease the
// log-likelihood gap in favor of a worse-fitting genotype: duplicating
// consistent evidence only sharpens a genotype's lead.
func TestLogLikMonotoneUnderDuplicatedEvidence(t *testing.T) {
	spanning := NewCountTable(map[int32]int32{4: 3})
	spanningDoubled := NewCountTable(map[int32]int32{4: 6})
	flanking := NewCountTable(nil)

	good := NewShortRepeatLikelihood(25, 0.97, []AlleleSize{4})
	bad := NewShortRepeatLikelihood(25, 0.97, []AlleleSize{20})

	gapOnce := good.CalcLogLik(flanking, spanning) - bad.CalcLogLik(flanking, spanning)
	gapTwice := good.CalcLogLik(flanking, spanningDoubled) - bad.CalcLogLik(flanking, spanningDoubled)

	assert.Greater(t, gapTwice, gapOnce)
}
