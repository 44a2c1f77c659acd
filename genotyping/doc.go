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

// Package genotyping infers short tandem repeat genotypes from tabulated
// read evidence.
//
// Given counts of spanning, flanking, and in-repeat reads observed at a
// candidate repeat locus, RepeatGenotyper resolves a diploid (or haploid)
// genotype: a pair (or singleton) of allele sizes, each with a supporting
// evidence type and a confidence interval. Two regimes are combined
// depending on how much of the repeat the evidence actually covers: a
// maximum-likelihood search over spanning/flanking emission models for
// short repeats (ShortRepeatGenotyper), and a Poisson/binomial-tail
// extrapolation from in-repeat read counts and sequencing depth for long
// repeats (IRRAlleleEstimator, FlankingAlleleEstimator).
//
// The package does no I/O and holds no state beyond a single call: it is
// a pure function from count evidence and parameters to a genotype call,
// safe to invoke concurrently from many goroutines on independent inputs.
package genotyping
