//go:build linux

package placement

import "golang.org/x/sys/unix"

// PinCurrentThread applies a group's affinity mask to the calling thread. The
// caller must have locked its goroutine to the OS thread first.
func PinCurrentThread(group int, affinityMask uint64) error {
	var set unix.CPUSet

	base := group * maxGroupSize
	for bit := 0; bit < maxGroupSize; bit++ {
		if affinityMask&(1<<uint(bit)) != 0 {
			set.Set(base + bit)
		}
	}

	return unix.SchedSetaffinity(0, &set)
}
