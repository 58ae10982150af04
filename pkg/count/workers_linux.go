//go:build linux

package count

import (
	"bufio"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// DetectWorkers returns the default worker count for the parallel
// pipeline. On hybrid Linux machines it prefers performance cores, since
// classification is CPU-bound and gains nothing from efficiency cores.
func DetectWorkers() int {
	if n := perfCores(); n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// perfCores inspects /proc/cpuinfo core frequencies. On a hybrid part the
// P-cores cluster above the mean frequency; on a homogeneous part there is
// no split and 0 is returned.
func perfCores() int {
	f, err := os.Open("/proc/cpuinfo")
	if err != nil {
		return 0
	}
	defer f.Close()

	coreFreq := make(map[int]float64)
	coreID := -1
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		key, value, ok := strings.Cut(sc.Text(), ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		switch key {
		case "core id":
			if id, err := strconv.Atoi(value); err == nil {
				coreID = id
			}
		case "cpu MHz":
			if freq, err := strconv.ParseFloat(value, 64); err == nil && coreID >= 0 {
				if freq > coreFreq[coreID] {
					coreFreq[coreID] = freq
				}
			}
		}
	}

	if len(coreFreq) < 3 {
		return 0
	}
	var sum float64
	for _, freq := range coreFreq {
		sum += freq
	}
	mean := sum / float64(len(coreFreq))

	fast := 0
	for _, freq := range coreFreq {
		if freq >= mean*0.9 {
			fast++
		}
	}
	if fast > 0 && fast < len(coreFreq) {
		return fast
	}
	return 0
}
