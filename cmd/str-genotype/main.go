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
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/strgenotype/genotyping"
)

var (
	haplotypeDepth       = flag.Float64("haplotype-depth", 30, "Expected read depth per haplotype")
	alleleCount          = flag.String("allele-count", "diploid", "Ploidy to genotype: 'haploid' or 'diploid'")
	repeatUnitLen        = flag.Int("repeat-unit-len", 3, "Length in bases of one repeat unit")
	readLen              = flag.Int("read-len", 150, "Sequencing read length in bases; combined with -repeat-unit-len to derive S_max")
	propCorrectMolecules = flag.Float64("prop-correct-molecules", 0.97, "Probability a molecule reports its true size")
	countsPath           = flag.String("counts", "", "Path to a JSON fixture of spanning/flanking/inrepeat read counts")
	outPath              = flag.String("out", "", "Output path; defaults to stdout")
)

// countsFixture is the on-disk shape of -counts: each table maps an
// apparent allele size, in repeat units, to a read count. JSON object
// keys are always strings, so sizes are parsed on load.
type countsFixture struct {
	Spanning map[string]int32 `json:"spanning"`
	Flanking map[string]int32 `json:"flanking"`
	Inrepeat map[string]int32 `json:"inrepeat"`
}

func usage() {
	fmt.Printf("Usage: %s -counts FILE [OPTIONS]\n", os.Args[0])
	fmt.Printf("Other options:\n")
	flag.PrintDefaults()
}

func loadCounts(path string) (spanning, flanking, inrepeat genotyping.CountTable, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return spanning, flanking, inrepeat, errors.E(err, "couldn't read counts fixture:", path)
	}
	var fixture countsFixture
	if err := json.Unmarshal(data, &fixture); err != nil {
		return spanning, flanking, inrepeat, errors.E(err, "couldn't parse counts fixture:", path)
	}
	tables := make([]genotyping.CountTable, 3)
	for i, raw := range []map[string]int32{fixture.Spanning, fixture.Flanking, fixture.Inrepeat} {
		counts := make(map[int32]int32, len(raw))
		for key, count := range raw {
			size, err := strconv.ParseInt(key, 10, 32)
			if err != nil {
				return spanning, flanking, inrepeat, errors.E(err, "invalid allele size key in counts fixture:", key)
			}
			counts[int32(size)] = count
		}
		tables[i] = genotyping.NewCountTable(counts)
	}
	return tables[0], tables[1], tables[2], nil
}

func parseAlleleCount(s string) genotyping.AlleleCount {
	switch s {
	case "haploid":
		return genotyping.Haploid
	case "diploid":
		return genotyping.Diploid
	default:
		log.Fatalf("-allele-count must be 'haploid' or 'diploid', got %q", s)
		return genotyping.Diploid
	}
}

func main() {
	flag.Usage = usage
	shutdown := grail.Init()
	defer shutdown()

	if *countsPath == "" {
		log.Fatalf("-counts is required")
	}

	spanning, flanking, inrepeat, err := loadCounts(*countsPath)
	if err != nil {
		log.Panicf("%v", err)
	}

	maxUnitsInRead := int32(*readLen / *repeatUnitLen)
	params := genotyping.GenotypingParameters{
		HaplotypeDepth:       *haplotypeDepth,
		ExpectedAlleleCount:  parseAlleleCount(*alleleCount),
		RepeatUnitLen:        int32(*repeatUnitLen),
		MaxNumUnitsInRead:    maxUnitsInRead,
		PropCorrectMolecules: *propCorrectMolecules,
	}
	candidates := make([]genotyping.AlleleSize, maxUnitsInRead+1)
	for i := range candidates {
		candidates[i] = genotyping.AlleleSize(i)
	}

	genotyper := genotyping.NewRepeatGenotyper(params, spanning, flanking, inrepeat)
	genotype, ok := genotyper.GenotypeRepeat(candidates)
	if !ok {
		log.Fatalf("no genotype call: insufficient or contradictory evidence")
	}

	out := os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			log.Panicf("%v", errors.E(err, "couldn't create output file:", *outPath))
		}
		defer f.Close()
		out = f
	}
	fmt.Fprintln(out, genotype.String())
	log.Debug.Printf("exiting")
}
