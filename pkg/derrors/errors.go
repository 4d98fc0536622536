package derrors

import "errors"

var (
	ErrNoPrimary         = errors.New("topology: no primary replica")
	ErrSampleUnavailable = errors.New("mempool: sample unavailable")
)

var (
	ErrUnexpectedDelta = errors.New("injector: unexpected dup delta")
)

var (
	ErrInflationTimedOut = errors.New("inflator: timed out")
	ErrTrimTestFailed    = errors.New("inflator: trim test failed")
)

var (
	ErrUpgradeFailed = errors.New("upgrade: failed")
)

// ErrOperationFailed covers failures of external CLI and offline tool
// invocations that carry no more specific meaning for the harness.
var ErrOperationFailed = errors.New("operation failed")
