// Package scheduler triggers the overdue sweep once a day at a fixed wall clock time, and on demand.
//
// A scheduled sweep and a manual one may run at the same time. This is safe because every loan update of
// a sweep is conditional and idempotent, so the scheduler does not serialize them. Scheduled sweeps never
// overlap each other: the next one is planned only after the previous one finished.
package scheduler
