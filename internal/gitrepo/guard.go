package gitrepo

import "context"

// NonCancellable opens a section that must run to completion even if ctx is
// cancelled mid-flight. It returns a context detached from ctx's cancellation
// for the section's operations, and a release func that reports the deferred
// cancellation once the section is done.
//
// Usage:
//
//	inner, release := gitrepo.NonCancellable(ctx)
//	defer func() { err = errors.Join(err, release()) }()
//	// ... operations using inner ...
//
// The working tree restore sequence and the decision record step both run
// inside such a section: interrupting either halfway would leave state that
// no later run can distinguish from corruption.
func NonCancellable(ctx context.Context) (context.Context, func() error) {
	inner := context.WithoutCancel(ctx)
	release := func() error {
		return context.Cause(ctx)
	}
	return inner, release
}
