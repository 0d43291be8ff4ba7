// Package cpuinfo sizes worker pools from the host's CPU count.
package cpuinfo

import (
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
)

// Workers returns requested when positive, otherwise the number of logical
// CPUs. It never returns less than 1.
func Workers(requested int) int {
	if requested > 0 {
		return requested
	}
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		return n
	}
	if n := runtime.NumCPU(); n > 0 {
		return n
	}
	return 1
}
