// Package placement decides which CPU group each of a pool's workers lands
// on. Placement is consulted once, at pool construction, and never influences
// scheduling decisions.
package placement

import "runtime"

// maxGroupSize is the largest number of CPUs a single group may hold; the
// affinity masks are 64-bit.
const maxGroupSize = 64

// Strategy places a pool's workers onto CPU groups. CreateThreads invokes
// create exactly desired times, each call naming the target group index and
// the affinity mask covering that group's CPUs. A zero mask means the worker
// gets no explicit placement.
type Strategy interface {
	CreateThreads(desired int, cpuCountPerGroup []int, create func(group int, affinityMask uint64))
}

// CPUGroups reports the machine topology as CPU counts per group. Groups hold
// at most 64 CPUs each.
func CPUGroups() []int {
	n := runtime.NumCPU()

	var groups []int
	for n > maxGroupSize {
		groups = append(groups, maxGroupSize)
		n -= maxGroupSize
	}
	return append(groups, n)
}

// groupAffinityMask sets the low bit for every CPU in a group of the given
// size.
func groupAffinityMask(cpuCount int) uint64 {
	if cpuCount <= 0 || cpuCount > maxGroupSize {
		panic("placement: CPU group size out of range")
	}
	if cpuCount == maxGroupSize {
		return ^uint64(0)
	}
	return (uint64(1) << cpuCount) - 1
}

// None assigns no explicit placement. Pools running in this mode are limited
// to 64 workers.
type None struct{}

func (None) CreateThreads(desired int, cpuCountPerGroup []int, create func(group int, affinityMask uint64)) {
	for i := 0; i < desired; i++ {
		create(0, 0)
	}
}

// Greedy fills group 0 up to its CPU count, then group 1, and so on. When more
// workers are requested than there are CPUs, allocation wraps back to group 0
// and oversubscribes in the same order.
type Greedy struct{}

func (Greedy) CreateThreads(desired int, cpuCountPerGroup []int, create func(group int, affinityMask uint64)) {
	if desired > 0 && len(cpuCountPerGroup) == 0 {
		panic("placement: no CPU groups")
	}

	created := 0
	for created < desired {
		for group := 0; group < len(cpuCountPerGroup) && created < desired; group++ {
			mask := groupAffinityMask(cpuCountPerGroup[group])

			for cpu := 0; cpu < cpuCountPerGroup[group] && created < desired; cpu++ {
				create(group, mask)
				created++
			}
		}
	}
}

// RoundRobin places one worker per group in rotation, skipping groups whose
// CPUs are all assigned. Once every CPU across all groups is assigned, group
// capacity is ignored and rotation continues into oversubscription.
type RoundRobin struct{}

func (RoundRobin) CreateThreads(desired int, cpuCountPerGroup []int, create func(group int, affinityMask uint64)) {
	if desired > 0 && len(cpuCountPerGroup) == 0 {
		panic("placement: no CPU groups")
	}

	totalCPUs := 0
	for _, n := range cpuCountPerGroup {
		totalCPUs += n
	}

	assigned := make([]int, len(cpuCountPerGroup))
	created := 0
	group := 0

	for created < desired {
		if assigned[group] < cpuCountPerGroup[group] || created >= totalCPUs {
			create(group, groupAffinityMask(cpuCountPerGroup[group]))
			created++
			assigned[group]++
		}
		group = (group + 1) % len(cpuCountPerGroup)
	}
}
