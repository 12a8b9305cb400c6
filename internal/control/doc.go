// Package control provides the control laws usable in simulation runs.
package control
