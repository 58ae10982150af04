// Package gtf extracts exon annotations from GTF files.
package gtf

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/seqstats/exoncount/pkg/regions"
)

// GTF attribute columns can be very long for heavily annotated genes.
const maxLineSize = 4 * 1024 * 1024

const exonFeature = "exon"

type annotationFile struct {
	io.Reader
	closers []io.Closer
}

func (f *annotationFile) Close() error {
	var first error
	for _, c := range f.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Open opens a GTF file for reading, transparently decoding gzip input.
// Compression is detected from the gzip magic bytes, so both plain and
// gzipped (including multistream bgzip) annotations work.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open GTF file: %w", err)
	}
	br := bufio.NewReaderSize(f, 64*1024)
	magic, err := br.Peek(2)
	if err != nil && err != io.EOF {
		f.Close()
		return nil, fmt.Errorf("failed to read GTF file: %w", err)
	}
	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		return &annotationFile{Reader: gz, closers: []io.Closer{gz, f}}, nil
	}
	return &annotationFile{Reader: br, closers: []io.Closer{f}}, nil
}

// ReadExons reads GTF records from r and returns the regions of all lines
// whose feature type is "exon". GTF coordinates are 1-based and inclusive;
// the returned regions are 0-based and half-open. Comment lines are
// skipped. Any syntactically broken record is a fatal parse error.
func ReadExons(r io.Reader) ([]regions.Region, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)

	var exons []regions.Region
	lineno := 0
	for sc.Scan() {
		lineno++
		line := sc.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.SplitN(line, "\t", 6)
		if len(fields) < 5 {
			return nil, fmt.Errorf("failed to parse GTF line %d: expected at least 5 tab-separated fields, got %d", lineno, len(fields))
		}
		if fields[2] != exonFeature {
			continue
		}
		start, err := strconv.Atoi(fields[3])
		if err != nil {
			return nil, fmt.Errorf("failed to parse GTF line %d: bad start %q: %w", lineno, fields[3], err)
		}
		end, err := strconv.Atoi(fields[4])
		if err != nil {
			return nil, fmt.Errorf("failed to parse GTF line %d: bad end %q: %w", lineno, fields[4], err)
		}
		exons = append(exons, regions.Region{Chrom: fields[0], Start: start - 1, End: end})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read GTF: %w", err)
	}
	return exons, nil
}

// ReadExonsFile reads all exon regions from the GTF file at path.
func ReadExonsFile(path string) ([]regions.Region, error) {
	f, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadExons(f)
}
