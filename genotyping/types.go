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
	"fmt"
	"sort"

	"github.com/grailbio/base/log"
)

// AlleleSize is a non-negative count of repeat units on one allele.
type AlleleSize = int32

// AlleleCount is the ploidy expected at a locus, e.g. diploid everywhere
// but haploid on chrX/chrY in males.
type AlleleCount int

const (
	Haploid AlleleCount = iota
	Diploid
)

func (c AlleleCount) String() string {
	switch c {
	case Haploid:
		return "haploid"
	case Diploid:
		return "diploid"
	default:
		return fmt.Sprintf("AlleleCount(%d)", int(c))
	}
}

// AlleleType tags the kind of read evidence that supports a RepeatAllele.
type AlleleType int

const (
	// Spanning alleles are called from reads that cover the whole repeat.
	Spanning AlleleType = iota
	// Flanking alleles are called from reads that only enter the repeat.
	Flanking
	// InRepeat alleles are called from reads composed entirely of motif,
	// extrapolated via depth.
	InRepeat
)

func (t AlleleType) String() string {
	switch t {
	case Spanning:
		return "SPANNING"
	case Flanking:
		return "FLANKING"
	case InRepeat:
		return "INREPEAT"
	default:
		return fmt.Sprintf("AlleleType(%d)", int(t))
	}
}

// RepeatAllele is one called allele: its size in repeat units, the
// evidence type that produced it, and an inclusive confidence interval
// that always contains Size.
type RepeatAllele struct {
	Size         AlleleSize
	Type         AlleleType
	CILow, CIHigh AlleleSize
}

// String renders an allele as "size[lo-hi]", for debug logging only.
func (a RepeatAllele) String() string {
	return fmt.Sprintf("%d[%d-%d]", a.Size, a.CILow, a.CIHigh)
}

// RepeatGenotype is a called genotype: either a single allele (haploid)
// or an ascending pair of alleles (diploid). Equality is structural.
type RepeatGenotype struct {
	RepeatUnitLen int32
	Alleles       []RepeatAllele
}

// NewRepeatGenotype builds a genotype from one or two alleles, sorting
// pairs ascending by size. Passing zero or more than two alleles is a
// programmer error: a genotype is always haploid or diploid.
func NewRepeatGenotype(repeatUnitLen int32, alleles ...RepeatAllele) RepeatGenotype {
	if len(alleles) == 0 || len(alleles) > 2 {
		log.Fatalf("genotyping: a RepeatGenotype has one or two alleles, got %d", len(alleles))
	}
	sorted := append([]RepeatAllele(nil), alleles...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Size < sorted[j].Size })
	return RepeatGenotype{RepeatUnitLen: repeatUnitLen, Alleles: sorted}
}

// IsHaploid reports whether the genotype carries a single allele.
func (g RepeatGenotype) IsHaploid() bool {
	return len(g.Alleles) == 1
}

// String renders the informative text encoding from spec.md section 6:
// "a1/a2" (a1 <= a2) for diploid genotypes, "a" for haploid. This is
// informative only; the core never parses or emits it on its own.
func (g RepeatGenotype) String() string {
	out := fmt.Sprintf("%d", g.Alleles[0].Size)
	for _, a := range g.Alleles[1:] {
		out += fmt.Sprintf("/%d", a.Size)
	}
	return out
}

// GenotypingParameters bundles the process-wide, per-call parameters
// that govern one RepeatGenotyper invocation. All fields are immutable
// once constructed.
type GenotypingParameters struct {
	// HaplotypeDepth is the expected read depth per haplotype.
	HaplotypeDepth float64
	// ExpectedAlleleCount is the ploidy to genotype.
	ExpectedAlleleCount AlleleCount
	// RepeatUnitLen is the length, in bases, of one repeat unit.
	RepeatUnitLen int32
	// MaxNumUnitsInRead is floor(readLen / RepeatUnitLen), the
	// saturation ceiling S_max on observable allele sizes.
	MaxNumUnitsInRead int32
	// PropCorrectMolecules is the probability a molecule reports its
	// true size, typically 0.97.
	PropCorrectMolecules float64
}

// validate fails fast on non-physical parameters; these are programmer
// errors, not recoverable input conditions.
func (p GenotypingParameters) validate() {
	if p.HaplotypeDepth <= 0 {
		log.Fatalf("genotyping: haplotypeDepth must be positive, got %v", p.HaplotypeDepth)
	}
	if p.RepeatUnitLen < 1 {
		log.Fatalf("genotyping: repeatUnitLen must be >= 1, got %d", p.RepeatUnitLen)
	}
	if p.MaxNumUnitsInRead <= 0 {
		log.Fatalf("genotyping: maxNumUnitsInRead must be positive, got %d", p.MaxNumUnitsInRead)
	}
	if p.PropCorrectMolecules <= 0 || p.PropCorrectMolecules > 1 {
		log.Fatalf("genotyping: propCorrectMolecules must be in (0, 1], got %v", p.PropCorrectMolecules)
	}
	switch p.ExpectedAlleleCount {
	case Haploid, Diploid:
	default:
		log.Fatalf("genotyping: unsupported allele count %v", p.ExpectedAlleleCount)
	}
}
