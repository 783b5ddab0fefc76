package main

import (
	"fmt"

	"github.com/desertwitch/gokern/internal/machine"
	"github.com/desertwitch/gokern/internal/sched"
	"github.com/dustin/go-humanize"
)

// demoThread is one canned workload entry for the scheduler demonstration.
type demoThread struct {
	name     string
	priority int
	burst    int64
}

//nolint:gochecknoglobals
var demoWorkload = []demoThread{
	{name: "batch", priority: 10, burst: 1200},
	{name: "init", priority: 40, burst: 500},
	{name: "pager", priority: 80, burst: 300},
	{name: "net", priority: 120, burst: 400},
	{name: "io", priority: 130, burst: 100},
}

// RunSched runs the canned workload through the MLFQ scheduler on a
// simulated tick clock, demonstrating band classification, aging promotions
// and preemption.
func (app *App) RunSched() error {
	clock := machine.NewTickClock()
	ints := machine.NewIntController()

	// The whole demonstration runs in kernel control flow.
	ints.Disable()

	// The context switch is a no-op here: with one real goroutine standing
	// in for all threads, Run returns immediately and the loop below plays
	// the part of whichever thread is current.
	scheduler := sched.New(clock, ints, func(_, _ *sched.Thread) {})

	idle := &sched.Thread{ID: 0, Name: "idle", Priority: 0}
	scheduler.SetCurrent(idle)

	remaining := make(map[*sched.Thread]int64)
	threads := make([]*sched.Thread, 0, len(demoWorkload))
	finished := 0

	for i, job := range demoWorkload {
		t := &sched.Thread{
			ID:             i + 1,
			Name:           job.name,
			Priority:       job.priority,
			PredictedBurst: job.burst,
		}
		t.OnDestroy = func() {
			finished++
		}

		remaining[t] = job.burst
		threads = append(threads, t)
		scheduler.ReadyToRun(t)
	}

	quantum := app.config.SchedQuantum
	ageEvery := app.config.SchedAgeEvery
	nextAging := ageEvery

	for finished < len(demoWorkload) {
		if clock.Ticks() >= nextAging {
			scheduler.AgingCheck()
			nextAging += ageEvery
		}

		current := scheduler.Current()

		if current == idle {
			if next := scheduler.FindNextToRun(); next != nil {
				scheduler.Run(next, false)

				continue
			}

			clock.Advance(ageEvery)

			continue
		}

		slice := min(quantum, remaining[current])
		clock.Advance(slice)
		remaining[current] -= slice

		if remaining[current] <= 0 {
			next := scheduler.FindNextToRun()
			if next == nil {
				next = idle
			}

			scheduler.Run(next, true)

			continue
		}

		scheduler.AgingCheck()
		scheduler.PreemptCheck()

		if scheduler.ShouldPreempt() {
			scheduler.ClearPreempt()

			if next := scheduler.FindNextToRun(); next != nil {
				scheduler.ReadyToRun(current)
				scheduler.Run(next, false)
			}
		}
	}

	fmt.Fprintln(app.out, renderTitle("Scheduler demonstration"))
	fmt.Fprintf(app.out, "total ticks: %s\n", humanize.Comma(clock.Ticks()))

	for _, t := range threads {
		fmt.Fprintf(app.out, "thread %d (%s): priority %d, waited %s ticks\n",
			t.ID, t.Name, t.Priority, humanize.Comma(t.Waited()))
	}

	return nil
}
