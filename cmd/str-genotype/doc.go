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

/*
str-genotype genotypes a single short tandem repeat locus from a JSON
fixture of pre-classified read-count evidence: counts of spanning,
flanking, and in-repeat reads by apparent allele size.

It does not classify reads itself; that's the job of the alignment and
read-classification layer upstream, which is out of scope here. This
command exists to exercise the statistical core end to end and as a
worked example of composing it against real count data.

Sample usage:
str-genotype \
    -haplotype-depth 30 \
    -allele-count diploid \
    -repeat-unit-len 3 \
    -read-len 150 \
    -prop-correct-molecules 0.97 \
    -counts counts.json
*/
package main
