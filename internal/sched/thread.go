package sched

// Status is the lifecycle state of a [Thread].
type Status int

const (
	// StatusNew marks a thread that was never scheduled yet.
	StatusNew Status = iota

	// StatusRunning marks the thread currently holding the processor.
	StatusRunning

	// StatusReady marks a thread sitting in a ready queue.
	StatusReady

	// StatusBlocked marks a thread waiting on an external event.
	StatusBlocked

	// StatusTerminated marks a finished thread awaiting destruction.
	StatusTerminated
)

// String implements [fmt.Stringer] for [Status].
func (s Status) String() string {
	switch s {
	case StatusNew:
		return "new"
	case StatusRunning:
		return "running"
	case StatusReady:
		return "ready"
	case StatusBlocked:
		return "blocked"
	case StatusTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// AddressSpace is the optional user address space owned by a thread; its
// state is saved and restored around every dispatch.
type AddressSpace interface {
	SaveState()
	RestoreState()
}

// Thread carries the scheduler-relevant state of one kernel thread. The
// scheduler holds threads only by reference while they sit in a ready queue;
// their lifetime belongs to their creator, reclaimed one dispatch cycle
// after finishing via OnDestroy.
type Thread struct {
	ID   int
	Name string

	// Priority is the scheduling priority, 0 through 149.
	Priority int

	// PredictedBurst is the predicted CPU burst time in ticks, ordering the
	// top band's queue.
	PredictedBurst int64

	// Space is the thread's user address space, nil for kernel threads.
	Space AddressSpace

	// OnDestroy is called exactly once when the finished thread's carcass
	// is reclaimed, after the switch away from its stack.
	OnDestroy func()

	Status Status

	readyStart   int64 // tick at which the thread entered its ready queue
	waited       int64 // accumulated ready-queue wait, carried across promotions
	dispatchTick int64 // tick of the last dispatch
}

// Waited returns the thread's accumulated ready-queue wait time in ticks.
func (t *Thread) Waited() int64 {
	return t.waited
}

// DispatchTick returns the tick at which the thread was last dispatched.
func (t *Thread) DispatchTick() int64 {
	return t.dispatchTick
}
