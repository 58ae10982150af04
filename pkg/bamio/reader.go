// Package bamio adapts BAM files to the counting pipeline's record stream.
package bamio

import (
	"fmt"
	"io"
	"os"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/bgzf"
	"github.com/biogo/hts/sam"

	"github.com/seqstats/exoncount/pkg/count"
)

// Reader streams count.Records from a BAM file. It implements
// count.Source: the stream ends either at EOF or at the first decode
// error, which Err reports.
type Reader struct {
	f   *os.File
	b   *bam.Reader
	err error
}

// Open opens a BAM file for streaming. Decompression concurrency 0 lets
// the BGZF layer use GOMAXPROCS.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open BAM file: %w", err)
	}
	ok, err := bgzf.HasEOF(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to check BAM file: %w", err)
	}
	if !ok {
		fmt.Fprintf(os.Stderr, "Warning: BGZF EOF block missing in %s, file may be truncated\n", path)
	}
	b, err := bam.NewReader(f, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create BAM reader: %w", err)
	}
	// Tags are never inspected, skip decoding them.
	b.Omit(bam.AuxTags)
	return &Reader{f: f, b: b}, nil
}

// Next returns the next record. It returns false at end of stream and on
// decode errors; the pipeline distinguishes the two through Err.
func (r *Reader) Next() (count.Record, bool) {
	if r.err != nil {
		return count.Record{}, false
	}
	rec, err := r.b.Read()
	if err != nil {
		if err != io.EOF {
			r.err = err
		}
		return count.Record{}, false
	}
	return FromSAM(rec), true
}

// Err returns the decode error that terminated the stream, if any.
func (r *Reader) Err() error { return r.err }

// Close closes the underlying BAM reader and file.
func (r *Reader) Close() error {
	berr := r.b.Close()
	ferr := r.f.Close()
	if berr != nil {
		return berr
	}
	return ferr
}

// FromSAM projects a sam.Record onto the fields classification needs.
func FromSAM(rec *sam.Record) count.Record {
	cr := count.Record{
		Flags:  rec.Flags,
		MapQ:   int(rec.MapQ),
		Mapped: rec.Flags&sam.Unmapped == 0,
	}
	if !cr.Mapped {
		return cr
	}
	if rec.Ref != nil {
		cr.Chrom = rec.Ref.Name()
	}
	cr.Start = rec.Pos
	cr.Blocks, cr.End = alignmentSpans(rec)
	return cr
}

// alignmentSpans walks the CIGAR once, collecting the reference intervals
// covered by query-aligned ops (M, =, X) and the final reference position.
// Deletions and skipped introns (D, N) advance the position without
// opening a span, so they split the alignment into separate blocks.
func alignmentSpans(rec *sam.Record) ([]count.Span, int) {
	var spans []count.Span
	pos := rec.Pos
	for _, co := range rec.Cigar {
		con := co.Type().Consumes()
		ref := co.Len() * con.Reference
		if con.Query == 1 && con.Reference == 1 && co.Len() > 0 {
			if n := len(spans); n > 0 && spans[n-1].End == pos {
				spans[n-1].End = pos + ref
			} else {
				spans = append(spans, count.Span{Start: pos, End: pos + ref})
			}
		}
		pos += ref
	}
	return spans, pos
}
