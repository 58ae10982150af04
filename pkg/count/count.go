// Package count classifies alignment records against an exon region index
// and accumulates the three result totals.
package count

import (
	"github.com/biogo/hts/sam"

	"github.com/seqstats/exoncount/pkg/regions"
)

// Default admission filter values, matching the CLI defaults.
const (
	DefaultMinMapQ = 35

	DefaultRequiredFlags = sam.Paired | sam.ProperPair // 3

	DefaultFilteredFlags = sam.Secondary | sam.QCFail | sam.Supplementary // 2816
)

// FilterConfig decides which records are admitted for counting.
type FilterConfig struct {
	MinMapQ       int       // minimum mapping quality for mapped records
	RequiredFlags sam.Flags // all of these bits must be set
	FilteredFlags sam.Flags // none of these bits may be set
}

// DefaultFilter returns the standard admission filter.
func DefaultFilter() FilterConfig {
	return FilterConfig{
		MinMapQ:       DefaultMinMapQ,
		RequiredFlags: DefaultRequiredFlags,
		FilteredFlags: DefaultFilteredFlags,
	}
}

// admits reports whether the flag bits pass the filter.
func (cfg FilterConfig) admits(flags sam.Flags) bool {
	return flags&cfg.RequiredFlags == cfg.RequiredFlags && flags&cfg.FilteredFlags == 0
}

// Span is a half-open interval on a reference sequence.
type Span struct {
	Start int
	End   int
}

// Record is the view of one alignment record that classification needs.
// Chrom, Start, End and Blocks are only meaningful when Mapped is true.
type Record struct {
	Flags  sam.Flags
	MapQ   int
	Mapped bool
	Chrom  string
	Start  int
	End    int
	// Blocks holds the reference-aligned CIGAR segments (M/=/X runs).
	// When present, the exon test is per block, so the skipped intron of
	// a spliced read does not count as exon coverage. When empty, the
	// whole span [Start, End) is tested.
	Blocks []Span
}

// Class is the classification outcome for a single record.
type Class int

const (
	Dropped Class = iota // rejected by the admission filter, counted nowhere
	Unmapped
	Mapped
	MappedExon
)

func (c Class) String() string {
	switch c {
	case Dropped:
		return "dropped"
	case Unmapped:
		return "unmapped"
	case Mapped:
		return "mapped"
	case MappedExon:
		return "mapped-exon"
	}
	return "unknown"
}

// Classify assigns rec to exactly one Class. It is a pure function of its
// inputs. Unmapped records are exempt from the mapping-quality check but
// still subject to the flag filter.
func Classify(rec Record, idx *regions.Index, cfg FilterConfig) Class {
	if !cfg.admits(rec.Flags) {
		return Dropped
	}
	if !rec.Mapped {
		return Unmapped
	}
	if rec.MapQ < cfg.MinMapQ {
		return Dropped
	}
	if len(rec.Blocks) > 0 {
		for _, b := range rec.Blocks {
			if idx.Overlaps(rec.Chrom, b.Start, b.End) {
				return MappedExon
			}
		}
		return Mapped
	}
	if idx.Overlaps(rec.Chrom, rec.Start, rec.End) {
		return MappedExon
	}
	return Mapped
}

// Counters holds the three result totals. Each admitted record increments
// exactly one of them.
type Counters struct {
	Mapped     uint64
	MappedExon uint64
	Unmapped   uint64
}

// Record increments the counter selected by c. Dropped increments nothing.
func (t *Counters) Record(c Class) {
	switch c {
	case Unmapped:
		t.Unmapped++
	case Mapped:
		t.Mapped++
	case MappedExon:
		t.Mapped++
		t.MappedExon++
	}
}

// Add accumulates other into t.
func (t *Counters) Add(other Counters) {
	t.Mapped += other.Mapped
	t.MappedExon += other.MappedExon
	t.Unmapped += other.Unmapped
}
