// Package machine provides the simulated machine collaborators the kernel
// core is wired to: a monotonic tick clock and the interrupt controller
// state. Both satisfy the respective [schema] interfaces and stand in for
// the hardware a real kernel would be handed.
package machine

// TickClock is a monotonic tick counter.
type TickClock struct {
	ticks int64
}

// NewTickClock returns a [TickClock] starting at tick zero.
func NewTickClock() *TickClock {
	return &TickClock{}
}

// Ticks returns the current tick count.
func (c *TickClock) Ticks() int64 {
	return c.ticks
}

// Advance moves the clock forward by n ticks and returns the new count.
func (c *TickClock) Advance(n int64) int64 {
	c.ticks += n

	return c.ticks
}

// IntController tracks the machine interrupt state. Interrupts start
// enabled.
type IntController struct {
	disabled bool
}

// NewIntController returns an [IntController] with interrupts enabled.
func NewIntController() *IntController {
	return &IntController{}
}

// Disable turns interrupts off, returning whether they were disabled
// before.
func (c *IntController) Disable() bool {
	prev := c.disabled
	c.disabled = true

	return prev
}

// Enable turns interrupts back on.
func (c *IntController) Enable() {
	c.disabled = false
}

// Disabled reports whether interrupts are off.
func (c *IntController) Disabled() bool {
	return c.disabled
}
