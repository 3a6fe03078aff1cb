// Package overdueloans lists the loans that are overdue at a given instant.
//
// The list is recomputed from the due date and the open status of each loan instead of trusting the
// status label the last sweep wrote, so a loan that fell due after the last sweep is listed too, with
// its days overdue counted up to the query instant. The fine shown is the one the last sweep stored.
package overdueloans
