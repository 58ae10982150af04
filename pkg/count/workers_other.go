//go:build !darwin && !linux

package count

import "runtime"

// DetectWorkers returns the default worker count for the parallel
// pipeline on platforms without core-type detection.
func DetectWorkers() int {
	return runtime.NumCPU()
}
