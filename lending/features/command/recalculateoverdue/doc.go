// Package recalculateoverdue is the overdue sweep.
//
// A sweep reads every open loan whose due date lies before the sweep instant, and rewrites its status,
// days overdue and fine with one conditional write per loan. The write only matches while the loan is
// still open, so a return that commits during the sweep always wins. A failing loan is logged and counted
// but does not abort the sweep. Each completed sweep is appended to the sweep run log.
package recalculateoverdue
