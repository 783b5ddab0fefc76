package schema

// SectorDevice is a raw disk exposing fixed-size synchronous sector
// transfers. Reads and writes are atomic and blocking; there is no partial
// sector I/O anywhere in the core.
type SectorDevice interface {
	ReadSector(sector int, buf []byte) error
	WriteSector(sector int, buf []byte) error
	NumSectors() int
	Sync() error
}

// Clock is a monotonic tick counter, used for ready-wait accounting and
// dispatch timestamps.
type Clock interface {
	Ticks() int64
}

// InterruptGate exposes the machine interrupt state. The scheduler requires
// interrupts to be disabled before touching any of its queues; mutual
// exclusion inside the kernel is by disabling preemption, not by locks.
type InterruptGate interface {
	Disabled() bool
}
