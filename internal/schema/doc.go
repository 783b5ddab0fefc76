// Package schema provides the principal schematics for all other packages. It
// defines the narrow interfaces through which the storage and scheduling core
// consumes its machine collaborators (sector device, tick clock, interrupt
// state) and provides implementations for handling operating system calls
// backing the simulated disk image. The package serves as a foundational
// layer for dependency injection throughout the codebase.
package schema
