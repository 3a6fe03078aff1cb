// Package sweephistory lists the most recent overdue sweeps, newest first.
package sweephistory
