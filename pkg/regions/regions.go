// Package regions builds a queryable index of annotated genomic intervals.
package regions

import (
	"fmt"
	"sort"

	"github.com/biogo/store/interval"
)

// Region is a genomic interval with 0-based, half-open coordinates.
type Region struct {
	Chrom string
	Start int
	End   int
}

// Sort orders regions by chromosome, then start, then end.
func Sort(regions []Region) {
	sort.Slice(regions, func(i, j int) bool {
		if regions[i].Chrom != regions[j].Chrom {
			return regions[i].Chrom < regions[j].Chrom
		}
		if regions[i].Start != regions[j].Start {
			return regions[i].Start < regions[j].Start
		}
		return regions[i].End < regions[j].End
	})
}

// Merge coalesces overlapping or touching regions on the same chromosome.
// The input must be sorted (see Sort). Merging never changes the answer of
// an overlap query, it only shrinks the index.
func Merge(regions []Region) []Region {
	if len(regions) == 0 {
		return nil
	}
	merged := make([]Region, 0, len(regions))
	current := regions[0]
	for _, r := range regions[1:] {
		if r.Chrom == current.Chrom && r.Start <= current.End {
			if r.End > current.End {
				current.End = r.End
			}
			continue
		}
		merged = append(merged, current)
		current = r
	}
	return append(merged, current)
}

// intInterval adapts a merged region to the biogo/store interval tree.
type intInterval struct {
	start, end int
	id         uintptr
}

func (iv intInterval) Overlap(b interval.IntRange) bool {
	// Half-open interval indexing.
	return iv.end > b.Start && iv.start < b.End
}

func (iv intInterval) ID() uintptr { return iv.id }

func (iv intInterval) Range() interval.IntRange {
	return interval.IntRange{Start: iv.start, End: iv.end}
}

// Index answers interval overlap queries against a fixed set of regions.
// It is immutable once built and safe for concurrent readers.
type Index struct {
	trees map[string]*interval.IntTree
	count int
}

// NewIndex builds a per-chromosome interval index from the given regions.
// The input need not be sorted. A region with End < Start is a fatal input
// error. A region with Start == End is kept and follows the same strict
// half-open arithmetic as everything else: it only matches queries that
// strictly contain its position.
func NewIndex(regions []Region) (*Index, error) {
	sorted := make([]Region, len(regions))
	copy(sorted, regions)
	Sort(sorted)

	for _, r := range sorted {
		if r.End < r.Start {
			return nil, fmt.Errorf("invalid region %s:%d-%d: end before start", r.Chrom, r.Start, r.End)
		}
	}

	idx := &Index{trees: make(map[string]*interval.IntTree)}
	if len(sorted) == 0 {
		return idx, nil
	}

	var id uintptr
	for _, r := range Merge(sorted) {
		tree, ok := idx.trees[r.Chrom]
		if !ok {
			tree = &interval.IntTree{}
			idx.trees[r.Chrom] = tree
		}
		if err := tree.Insert(intInterval{start: r.Start, end: r.End, id: id}, false); err != nil {
			return nil, fmt.Errorf("failed to index region %s:%d-%d: %w", r.Chrom, r.Start, r.End, err)
		}
		id++
		idx.count++
	}
	for _, tree := range idx.trees {
		tree.AdjustRanges()
	}
	return idx, nil
}

// Overlaps reports whether any indexed region on chrom overlaps the
// half-open interval [start, end). Unknown chromosomes report false.
func (idx *Index) Overlaps(chrom string, start, end int) bool {
	tree, ok := idx.trees[chrom]
	if !ok {
		return false
	}
	found := false
	tree.DoMatching(func(interval.IntInterface) (done bool) {
		found = true
		return true
	}, intInterval{start: start, end: end})
	return found
}

// Len returns the number of indexed regions after merging.
func (idx *Index) Len() int { return idx.count }

// Chroms returns the number of chromosomes with at least one region.
func (idx *Index) Chroms() int { return len(idx.trees) }
