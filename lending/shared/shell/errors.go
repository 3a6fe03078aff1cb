package shell

import "errors"

// ErrUnexpectedLedgerEvent is returned when a decide function produced an event of a type the handler cannot write.
var ErrUnexpectedLedgerEvent = errors.New("unexpected ledger event decided")
