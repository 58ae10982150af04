package gtf

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"

	"github.com/seqstats/exoncount/pkg/regions"
)

const sampleGTF = `#!genome-build GRCh38
chr1	havana	gene	1001	5000	.	+	.	gene_id "G1";
chr1	havana	exon	1001	1200	.	+	.	gene_id "G1"; exon_number "1";
chr1	havana	CDS	1050	1200	.	+	.	gene_id "G1";
chr1	havana	exon	2001	2300	.	+	.	gene_id "G1"; exon_number "2";
chr2	havana	exon	501	700	.	-	.	gene_id "G2";
`

func TestReadExons(t *testing.T) {
	exons, err := ReadExons(strings.NewReader(sampleGTF))
	require.NoError(t, err)
	require.Equal(t, []regions.Region{
		{Chrom: "chr1", Start: 1000, End: 1200},
		{Chrom: "chr1", Start: 2000, End: 2300},
		{Chrom: "chr2", Start: 500, End: 700},
	}, exons)
}

func TestReadExonsEmpty(t *testing.T) {
	exons, err := ReadExons(strings.NewReader("#!genome-build GRCh38\n"))
	require.NoError(t, err)
	require.Empty(t, exons)
}

func TestReadExonsMalformed(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"too few fields", "chr1\texon\t100\n"},
		{"bad start", "chr1\thavana\texon\tstart\t200\t.\t+\t.\tx\n"},
		{"bad end", "chr1\thavana\texon\t100\tend\t.\t+\t.\tx\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadExons(strings.NewReader(tt.line))
			require.Error(t, err)
		})
	}
}

func TestReadExonsFilePlain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "annotations.gtf")
	require.NoError(t, os.WriteFile(path, []byte(sampleGTF), 0o644))

	exons, err := ReadExonsFile(path)
	require.NoError(t, err)
	require.Len(t, exons, 3)
}

func TestReadExonsFileGzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(sampleGTF))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	path := filepath.Join(t.TempDir(), "annotations.gtf.gz")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	exons, err := ReadExonsFile(path)
	require.NoError(t, err)
	require.Len(t, exons, 3)
	require.Equal(t, regions.Region{Chrom: "chr1", Start: 1000, End: 1200}, exons[0])
}

func TestReadExonsFileMultistreamGzip(t *testing.T) {
	// bgzip and concatenated gzip files hold multiple members.
	var buf bytes.Buffer
	for _, part := range []string{
		"chr1\thavana\texon\t1001\t1200\t.\t+\t.\tx\n",
		"chr2\thavana\texon\t501\t700\t.\t-\t.\tx\n",
	} {
		zw := gzip.NewWriter(&buf)
		_, err := zw.Write([]byte(part))
		require.NoError(t, err)
		require.NoError(t, zw.Close())
	}

	path := filepath.Join(t.TempDir(), "annotations.gtf.gz")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	exons, err := ReadExonsFile(path)
	require.NoError(t, err)
	require.Equal(t, []regions.Region{
		{Chrom: "chr1", Start: 1000, End: 1200},
		{Chrom: "chr2", Start: 500, End: 700},
	}, exons)
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.gtf"))
	require.Error(t, err)
}
