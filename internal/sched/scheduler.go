// Package sched provides the multilevel-feedback-queue thread scheduler.
// Runnable threads are classified into three priority bands: L1 (priority
// 100-149, shortest predicted burst first), L2 (50-99, highest priority
// first) and L3 (0-49, FIFO). Aging promotes threads whose ready-queue wait
// crosses a threshold, so no band starves; promotions into a higher band
// than the running thread's raise a preemption flag for the external timer
// to act upon.
//
// All operations assume interrupts are already disabled by the caller: on a
// single processor that is the mutual exclusion. Locks are unusable here,
// since blocking on one would re-enter the scheduler.
package sched

import (
	"fmt"
	"log/slog"

	"github.com/desertwitch/gokern/internal/schema"
)

const (
	// BandL1Min is the lowest priority classified into the L1 queue.
	BandL1Min = 100

	// BandL2Min is the lowest priority classified into the L2 queue.
	BandL2Min = 50

	// PriorityMax is the highest priority a thread can hold or age up to.
	PriorityMax = 149

	// AgingThreshold is the accumulated ready-wait, in ticks, at which a
	// thread's priority is boosted.
	AgingThreshold = 1500

	// AgingBoost is the priority increment applied per aging promotion.
	AgingBoost = 10
)

// SwitchFunc is the opaque machine-dependent routine swapping two execution
// contexts. It returns, from the caller's point of view, when the outgoing
// thread is eventually switched back to.
type SwitchFunc func(from, to *Thread)

// Scheduler holds the three ready queues and dispatches threads onto the
// processor.
type Scheduler struct {
	clock    schema.Clock
	ints     schema.InterruptGate
	switchFn SwitchFunc

	l1 *readyQueue
	l2 *readyQueue
	l3 *readyQueue

	current       *Thread
	toBeDestroyed *Thread
	preempt       bool
}

// New returns a [Scheduler] with empty ready queues, wired to its machine
// collaborators.
func New(clock schema.Clock, ints schema.InterruptGate, switchFn SwitchFunc) *Scheduler {
	return &Scheduler{
		clock:    clock,
		ints:     ints,
		switchFn: switchFn,
		l1: newReadyQueue(func(a, b *Thread) bool {
			return a.PredictedBurst < b.PredictedBurst
		}),
		l2: newReadyQueue(func(a, b *Thread) bool {
			return a.Priority > b.Priority
		}),
		l3: newReadyQueue(nil),
	}
}

// Current returns the thread currently holding the processor.
func (s *Scheduler) Current() *Thread {
	return s.current
}

// SetCurrent installs the initial running thread, before any dispatch has
// happened.
func (s *Scheduler) SetCurrent(t *Thread) {
	t.Status = StatusRunning
	s.current = t
}

// ShouldPreempt reports whether the currently running thread should yield
// before its quantum ends.
func (s *Scheduler) ShouldPreempt() bool {
	return s.preempt
}

// ClearPreempt resets the preemption flag, after the external timer acted on
// it.
func (s *Scheduler) ClearPreempt() {
	s.preempt = false
}

// ReadyToRun marks a thread ready and inserts it into the queue matching its
// priority band, recording the tick at which it entered ready state.
func (s *Scheduler) ReadyToRun(t *Thread) {
	s.assertIntsOff()

	t.Status = StatusReady
	t.readyStart = s.clock.Ticks()

	queue, band := s.classify(t.Priority)
	queue.insert(t)

	slog.Debug("Thread inserted into ready queue.",
		"tick", s.clock.Ticks(), "thread", t.ID, "queue", band, "priority", t.Priority)
}

// classify returns the ready queue covering the given priority and its band
// number.
func (s *Scheduler) classify(priority int) (*readyQueue, int) {
	switch {
	case priority >= BandL1Min:
		return s.l1, 1
	case priority >= BandL2Min:
		return s.l2, 2
	default:
		return s.l3, 3
	}
}

// AgingCheck walks every ready queue and promotes each thread whose
// accumulated ready-wait has reached [AgingThreshold]: its priority is
// bumped by [AgingBoost] (capped at [PriorityMax]), its wait accounting is
// reset keeping the excess, and it moves to the queue matching its new band.
// A promotion into L1 or L2 raises the preemption flag if it outranks the
// running thread.
//
// AgingCheck is invoked periodically by the external timer.
func (s *Scheduler) AgingCheck() {
	s.assertIntsOff()

	s.age(s.l1, 1)
	s.age(s.l2, 2)
	s.age(s.l3, 3)
}

func (s *Scheduler) age(queue *readyQueue, band int) {
	now := s.clock.Ticks()

	for _, t := range queue.snapshot() {
		total := now - t.readyStart + t.waited
		if total < AgingThreshold {
			continue
		}

		oldPriority := t.Priority

		t.waited = total - AgingThreshold
		t.readyStart = now
		t.Priority = min(oldPriority+AgingBoost, PriorityMax)

		slog.Debug("Thread aged.",
			"tick", now, "thread", t.ID, "from", oldPriority, "to", t.Priority)

		queue.remove(t)

		newQueue, newBand := s.classify(t.Priority)
		newQueue.insert(t)

		if newBand != band {
			slog.Debug("Thread promoted across queues.",
				"tick", now, "thread", t.ID, "from", band, "to", newBand)
		}

		switch newQueue {
		case s.l1:
			if s.current != nil && (s.current.Priority < BandL1Min ||
				s.current.PredictedBurst > t.PredictedBurst) {
				s.preempt = true
			}
		case s.l2:
			if s.current != nil && s.current.Priority < BandL2Min {
				s.preempt = true
			}
		}
	}
}

// PreemptCheck scans L1 for a ready thread with a shorter predicted burst
// than the currently running thread and raises the preemption flag if one
// exists. It only applies while the running thread is itself in the L1 band.
func (s *Scheduler) PreemptCheck() {
	s.assertIntsOff()

	if s.current == nil || s.current.Priority < BandL1Min {
		return
	}

	for _, t := range s.l1.snapshot() {
		if s.current.PredictedBurst > t.PredictedBurst {
			s.preempt = true

			return
		}
	}
}

// FindNextToRun dequeues and returns the next thread to be scheduled onto
// the processor, or nil if all ready queues are empty. Queues are consulted
// in strict band order; the dequeued thread's total ready-wait is
// accumulated.
func (s *Scheduler) FindNextToRun() *Thread {
	s.assertIntsOff()

	queues := []*readyQueue{s.l1, s.l2, s.l3}
	for band, queue := range queues {
		t, ok := queue.removeFront()
		if !ok {
			continue
		}

		t.waited += s.clock.Ticks() - t.readyStart

		slog.Debug("Thread removed from ready queue.",
			"tick", s.clock.Ticks(), "thread", t.ID, "queue", band+1)

		return t
	}

	return nil
}

// Run dispatches the processor to next. The outgoing thread's user state is
// saved, the current-thread reference is switched, next is marked running
// with its dispatch tick recorded, and the machine context switch is
// performed. With finishing set, the outgoing thread's carcass is destroyed
// exactly once after the switch back, never before: its stack is still in
// use until the switch completes.
func (s *Scheduler) Run(next *Thread, finishing bool) {
	s.assertIntsOff()

	old := s.current

	if finishing {
		if s.toBeDestroyed != nil {
			panic("sched: a thread is already awaiting destruction")
		}
		s.toBeDestroyed = old
	}

	if old.Space != nil {
		old.Space.SaveState()
	}

	s.current = next
	next.Status = StatusRunning
	next.dispatchTick = s.clock.Ticks()

	slog.Debug("Switching threads.",
		"tick", s.clock.Ticks(), "from", old.ID, "to", next.ID)

	s.switchFn(old, next)

	// Back on old's stack: whoever ran in between may have left a carcass.
	s.checkToBeDestroyed()

	if old.Space != nil {
		old.Space.RestoreState()
	}
}

func (s *Scheduler) checkToBeDestroyed() {
	if s.toBeDestroyed == nil {
		return
	}

	t := s.toBeDestroyed
	s.toBeDestroyed = nil

	t.Status = StatusTerminated
	if t.OnDestroy != nil {
		t.OnDestroy()
	}

	slog.Debug("Thread destroyed.", "tick", s.clock.Ticks(), "thread", t.ID)
}

// assertIntsOff guards the single-processor mutual exclusion contract;
// entering the scheduler with interrupts enabled is kernel corruption.
func (s *Scheduler) assertIntsOff() {
	if !s.ints.Disabled() {
		panic(fmt.Sprintf("sched: entered with interrupts enabled (clock %d)", s.clock.Ticks()))
	}
}
