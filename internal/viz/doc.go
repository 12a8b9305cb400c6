// Package viz renders trajectories and run summaries for the terminal.
package viz
