package bisect

import "errors"

// Sentinel errors for session and search state. Callers match with errors.Is.
var (
	// ErrNoSession means no bisection has been started in this repository:
	// the bad pointer does not exist.
	ErrNoSession = errors.New("no bisection in progress")

	// ErrSessionActive means a session's refs already exist where a new one
	// was about to be created.
	ErrSessionActive = errors.New("bisection already in progress")

	// ErrInconsistentHistory means the good and bad pointers contradict the
	// commit graph, for example a good commit that descends from bad. The
	// engine never writes such state; manual ref edits do. There is no
	// automatic recovery.
	ErrInconsistentHistory = errors.New("inconsistent bisection state")

	// ErrPatchConflict means a patchset commit failed to apply along every
	// parent line. Trials translate it into a skip, never a crash.
	ErrPatchConflict = errors.New("patch does not apply")

	// ErrOnlySkips means the commits adjacent to bad keep getting skipped
	// and the patchset already contains every parent of bad, so no trial
	// can produce new information. The operator has to test one of the
	// skipped commits by other means.
	ErrOnlySkips = errors.New("only skipped commits remain next to bad")
)
