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
	"sort"

	"github.com/grailbio/base/log"
)

// CountTable is an immutable multiset of non-negative integer size
// observations (size -> count). No entry ever has a zero count, and
// Sizes always returns sizes in ascending order. The external
// classifier that tabulates spanning/flanking/in-repeat read sizes is
// the only producer; the genotyping core never mutates one.
type CountTable struct {
	counts map[int32]int32
}

// NewCountTable builds a CountTable from a size->count map, dropping any
// zero-count entries so CountTable's invariant holds regardless of what
// the caller passed in. Negative sizes or counts are a programmer error.
func NewCountTable(counts map[int32]int32) CountTable {
	out := make(map[int32]int32, len(counts))
	for size, count := range counts {
		if size < 0 {
			log.Fatalf("genotyping: CountTable size must be non-negative, got %d", size)
		}
		if count < 0 {
			log.Fatalf("genotyping: CountTable count must be non-negative, got %d", count)
		}
		if count == 0 {
			continue
		}
		out[size] = count
	}
	return CountTable{counts: out}
}

// CountOf returns the observed count at size, or 0 if size was never
// observed.
func (t CountTable) CountOf(size int32) int32 {
	return t.counts[size]
}

// Sizes returns the observed sizes in ascending order.
func (t CountTable) Sizes() []int32 {
	sizes := make([]int32, 0, len(t.counts))
	for size := range t.counts {
		sizes = append(sizes, size)
	}
	sort.Slice(sizes, func(i, j int) bool { return sizes[i] < sizes[j] })
	return sizes
}

// Total returns the sum of all counts in the table.
func (t CountTable) Total() int32 {
	var total int32
	for _, count := range t.counts {
		total += count
	}
	return total
}

// IsEmpty reports whether the table has no observations at all.
func (t CountTable) IsEmpty() bool {
	return len(t.counts) == 0
}

// filter returns the subset of t whose sizes satisfy keep.
func (t CountTable) filter(keep func(size int32) bool) CountTable {
	out := make(map[int32]int32, len(t.counts))
	for size, count := range t.counts {
		if keep(size) {
			out[size] = count
		}
	}
	return CountTable{counts: out}
}
