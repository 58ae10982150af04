package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "exoncount",
	Short: "Exon-aware read counting for BAM files",
	Long: `exoncount streams a BAM file once and reports how many reads are
mapped, how many of those fall within annotated exons, and how many are
unmapped. Exon annotations are taken from a GTF file.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(countCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("exoncount version 0.1.0")
	},
}
