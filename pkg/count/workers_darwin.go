//go:build darwin

package count

import (
	"runtime"
	"syscall"
)

// DetectWorkers returns the default worker count for the parallel
// pipeline. On Apple Silicon it prefers performance cores, since
// classification is CPU-bound and gains nothing from efficiency cores.
func DetectWorkers() int {
	if n := sysctlCPUCount("hw.perflevel0.physicalcpu"); n > 0 {
		return n
	}
	if n := sysctlCPUCount("hw.physicalcpu"); n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// sysctlCPUCount reads a CPU-count sysctl. The value comes back as raw
// little-endian bytes rather than a decimal string.
func sysctlCPUCount(name string) int {
	raw, err := syscall.Sysctl(name)
	if err != nil || len(raw) == 0 {
		return 0
	}
	n := int(raw[0])
	if len(raw) > 1 {
		n |= int(raw[1]) << 8
	}
	return n
}
