package sched

import (
	"testing"

	"github.com/desertwitch/gokern/internal/machine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSched(t *testing.T) (*Scheduler, *machine.TickClock, *machine.IntController) {
	t.Helper()

	clock := machine.NewTickClock()
	ints := machine.NewIntController()
	ints.Disable()

	sched := New(clock, ints, func(from, to *Thread) {})

	return sched, clock, ints
}

// TestFindNextToRun_BandOrder_Success tests that a ready L1 thread is always
// dispatched before L2, and L2 before L3, regardless of insertion order.
func TestFindNextToRun_BandOrder_Success(t *testing.T) {
	t.Parallel()

	sched, _, _ := testSched(t)

	low := &Thread{ID: 1, Priority: 10}
	mid := &Thread{ID: 2, Priority: 70}
	top := &Thread{ID: 3, Priority: 120}

	sched.ReadyToRun(low)
	sched.ReadyToRun(mid)
	sched.ReadyToRun(top)

	assert.Same(t, top, sched.FindNextToRun())
	assert.Same(t, mid, sched.FindNextToRun())
	assert.Same(t, low, sched.FindNextToRun())
	assert.Nil(t, sched.FindNextToRun())
}

// TestFindNextToRun_L1ShortestBurst_Success tests shortest-predicted-burst
// ordering in the top band, with insertion-order stable ties.
func TestFindNextToRun_L1ShortestBurst_Success(t *testing.T) {
	t.Parallel()

	sched, _, _ := testSched(t)

	a := &Thread{ID: 1, Priority: 110, PredictedBurst: 50}
	b := &Thread{ID: 2, Priority: 140, PredictedBurst: 20}
	c := &Thread{ID: 3, Priority: 120, PredictedBurst: 50}

	sched.ReadyToRun(a)
	sched.ReadyToRun(b)
	sched.ReadyToRun(c)

	assert.Same(t, b, sched.FindNextToRun())
	assert.Same(t, a, sched.FindNextToRun(), "equal bursts keep insertion order")
	assert.Same(t, c, sched.FindNextToRun())
}

// TestFindNextToRun_L2HighestPriority_Success tests highest-priority-first
// ordering in the middle band, with insertion-order stable ties.
func TestFindNextToRun_L2HighestPriority_Success(t *testing.T) {
	t.Parallel()

	sched, _, _ := testSched(t)

	a := &Thread{ID: 1, Priority: 60}
	b := &Thread{ID: 2, Priority: 90}
	c := &Thread{ID: 3, Priority: 60}

	sched.ReadyToRun(a)
	sched.ReadyToRun(b)
	sched.ReadyToRun(c)

	assert.Same(t, b, sched.FindNextToRun())
	assert.Same(t, a, sched.FindNextToRun(), "equal priorities keep insertion order")
	assert.Same(t, c, sched.FindNextToRun())
}

// TestFindNextToRun_L3FIFO_Success tests first-in-first-out ordering in the
// bottom band, unaffected by priorities within the band.
func TestFindNextToRun_L3FIFO_Success(t *testing.T) {
	t.Parallel()

	sched, _, _ := testSched(t)

	a := &Thread{ID: 1, Priority: 10}
	b := &Thread{ID: 2, Priority: 49}
	c := &Thread{ID: 3, Priority: 0}

	sched.ReadyToRun(a)
	sched.ReadyToRun(b)
	sched.ReadyToRun(c)

	assert.Same(t, a, sched.FindNextToRun())
	assert.Same(t, b, sched.FindNextToRun())
	assert.Same(t, c, sched.FindNextToRun())
}

// TestFindNextToRun_AccumulatesWait_Success tests that a dequeued thread's
// ready-queue wait is added to its accounting.
func TestFindNextToRun_AccumulatesWait_Success(t *testing.T) {
	t.Parallel()

	sched, clock, _ := testSched(t)

	thread := &Thread{ID: 1, Priority: 120}
	sched.ReadyToRun(thread)

	clock.Advance(300)

	require.Same(t, thread, sched.FindNextToRun())
	assert.Equal(t, int64(300), thread.Waited())
}

// TestAgingCheck_Promotion_Success tests a single aging step: the priority
// boost, the queue move and the wait carryover past the threshold.
func TestAgingCheck_Promotion_Success(t *testing.T) {
	t.Parallel()

	sched, clock, _ := testSched(t)

	thread := &Thread{ID: 1, Priority: 45}
	sched.ReadyToRun(thread)

	clock.Advance(AgingThreshold + 100)
	sched.AgingCheck()

	assert.Equal(t, 55, thread.Priority)
	assert.True(t, sched.l3.empty())

	// The excess over the threshold carries into the next aging round.
	clock.Advance(AgingThreshold - 100)
	sched.AgingCheck()

	assert.Equal(t, 65, thread.Priority)
}

// TestAgingCheck_BelowThreshold_Success tests that a thread short of the
// threshold is left alone.
func TestAgingCheck_BelowThreshold_Success(t *testing.T) {
	t.Parallel()

	sched, clock, _ := testSched(t)

	thread := &Thread{ID: 1, Priority: 45}
	sched.ReadyToRun(thread)

	clock.Advance(AgingThreshold - 1)
	sched.AgingCheck()

	assert.Equal(t, 45, thread.Priority)
	assert.False(t, sched.l3.empty())
}

// TestAgingCheck_CrossBandPromotion_Success tests aging a thread from the
// middle band into the top band.
func TestAgingCheck_CrossBandPromotion_Success(t *testing.T) {
	t.Parallel()

	sched, clock, _ := testSched(t)

	thread := &Thread{ID: 1, Priority: 95, PredictedBurst: 10}
	sched.ReadyToRun(thread)

	clock.Advance(AgingThreshold)
	sched.AgingCheck()

	assert.Equal(t, 105, thread.Priority)
	assert.True(t, sched.l2.empty())
	assert.Same(t, thread, sched.FindNextToRun())
}

// TestAgingCheck_PriorityCap_Success tests that aging never raises a
// priority past the maximum.
func TestAgingCheck_PriorityCap_Success(t *testing.T) {
	t.Parallel()

	sched, clock, _ := testSched(t)

	thread := &Thread{ID: 1, Priority: PriorityMax - 3}
	sched.ReadyToRun(thread)

	clock.Advance(AgingThreshold)
	sched.AgingCheck()

	assert.Equal(t, PriorityMax, thread.Priority)
}

// TestAgingCheck_PreemptIntoL1_Success tests that a promotion into the top
// band outranking the running thread raises the preemption flag.
func TestAgingCheck_PreemptIntoL1_Success(t *testing.T) {
	t.Parallel()

	sched, clock, _ := testSched(t)

	running := &Thread{ID: 1, Priority: 70}
	sched.SetCurrent(running)

	waiting := &Thread{ID: 2, Priority: 95, PredictedBurst: 10}
	sched.ReadyToRun(waiting)

	clock.Advance(AgingThreshold)
	sched.AgingCheck()

	assert.True(t, sched.ShouldPreempt())

	sched.ClearPreempt()
	assert.False(t, sched.ShouldPreempt())
}

// TestAgingCheck_PreemptIntoL2_Success tests that a promotion into the
// middle band preempts a bottom-band running thread.
func TestAgingCheck_PreemptIntoL2_Success(t *testing.T) {
	t.Parallel()

	sched, clock, _ := testSched(t)

	running := &Thread{ID: 1, Priority: 20}
	sched.SetCurrent(running)

	waiting := &Thread{ID: 2, Priority: 45}
	sched.ReadyToRun(waiting)

	clock.Advance(AgingThreshold)
	sched.AgingCheck()

	assert.True(t, sched.ShouldPreempt())
}

// TestAgingCheck_NoPreemptOutranked_Success tests that a promotion below the
// running thread's standing raises no flag.
func TestAgingCheck_NoPreemptOutranked_Success(t *testing.T) {
	t.Parallel()

	sched, clock, _ := testSched(t)

	running := &Thread{ID: 1, Priority: 120, PredictedBurst: 5}
	sched.SetCurrent(running)

	waiting := &Thread{ID: 2, Priority: 95, PredictedBurst: 50}
	sched.ReadyToRun(waiting)

	clock.Advance(AgingThreshold)
	sched.AgingCheck()

	assert.False(t, sched.ShouldPreempt(), "longer burst must not preempt a running L1 thread")
}

// TestPreemptCheck_Success tests the shortest-burst preemption scan over the
// top band.
func TestPreemptCheck_Success(t *testing.T) {
	t.Parallel()

	sched, _, _ := testSched(t)

	running := &Thread{ID: 1, Priority: 120, PredictedBurst: 100}
	sched.SetCurrent(running)

	sched.ReadyToRun(&Thread{ID: 2, Priority: 110, PredictedBurst: 40})
	sched.PreemptCheck()

	assert.True(t, sched.ShouldPreempt())
}

// TestPreemptCheck_RunningBelowL1_Success tests that the scan does not apply
// to running threads outside the top band.
func TestPreemptCheck_RunningBelowL1_Success(t *testing.T) {
	t.Parallel()

	sched, _, _ := testSched(t)

	running := &Thread{ID: 1, Priority: 70}
	sched.SetCurrent(running)

	sched.ReadyToRun(&Thread{ID: 2, Priority: 110, PredictedBurst: 1})
	sched.PreemptCheck()

	assert.False(t, sched.ShouldPreempt())
}

// TestRun_Dispatch_Success tests a plain dispatch: the current-thread switch,
// status transitions and the dispatch tick.
func TestRun_Dispatch_Success(t *testing.T) {
	t.Parallel()

	sched, clock, _ := testSched(t)

	first := &Thread{ID: 1, Priority: 120}
	sched.SetCurrent(first)

	second := &Thread{ID: 2, Priority: 110}

	clock.Advance(500)
	sched.Run(second, false)

	assert.Same(t, second, sched.Current())
	assert.Equal(t, StatusRunning, second.Status)
	assert.Equal(t, int64(500), second.DispatchTick())
}

// TestRun_Finishing_Success tests that a finishing thread's carcass is
// reclaimed after the switch, exactly once.
func TestRun_Finishing_Success(t *testing.T) {
	t.Parallel()

	sched, _, _ := testSched(t)

	destroyed := 0
	dying := &Thread{ID: 1, Priority: 120, OnDestroy: func() { destroyed++ }}
	sched.SetCurrent(dying)

	next := &Thread{ID: 2, Priority: 110}
	sched.Run(next, true)

	assert.Equal(t, 1, destroyed)
	assert.Equal(t, StatusTerminated, dying.Status)
	assert.Nil(t, sched.toBeDestroyed)
}

// TestReadyToRun_InterruptsEnabled_Panic tests the mutual exclusion guard.
func TestReadyToRun_InterruptsEnabled_Panic(t *testing.T) {
	t.Parallel()

	sched, _, ints := testSched(t)
	ints.Enable()

	assert.Panics(t, func() {
		sched.ReadyToRun(&Thread{ID: 1, Priority: 10})
	})
}
