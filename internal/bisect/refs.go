package bisect

import (
	"fmt"
	"strings"
)

// Namespace builds and parses the reference names a session persists its
// state under. Everything lives below one base so that a session can be
// enumerated, watched, and reset as a unit.
//
// Layout under the base:
//
//	bad                                        current bad endpoint
//	good-<hash>                                one per known-good commit
//	pick/<n>                                   active patchset, applied in index order
//	patchset/<h1>/.../markers/<name>/<hash>    skip-range markers, scoped to
//	                                           the patchset hashes in order
//	checkpoint                                 transient, one trial's snapshot
//
// An empty patchset collapses its segment away: patchset/markers/<name>/<hash>.
type Namespace struct {
	base string
}

// DefaultBase is where session refs live unless configured otherwise.
const DefaultBase = "refs/culprit/"

const (
	goodPrefix      = "good-"
	pickSegment     = "pick"
	patchsetSegment = "patchset"
	markersSegment  = "markers"
)

// NewNamespace returns a Namespace rooted at base. The base is normalized to
// end with a single slash.
func NewNamespace(base string) Namespace {
	if base == "" {
		base = DefaultBase
	}
	return Namespace{base: strings.TrimSuffix(base, "/") + "/"}
}

// Base returns the normalized ref base, trailing slash included.
func (ns Namespace) Base() string { return ns.base }

// Prefix returns the base without the trailing slash, the form ListRefs wants.
func (ns Namespace) Prefix() string { return strings.TrimSuffix(ns.base, "/") }

// BadRef returns the name of the bad pointer.
func (ns Namespace) BadRef() string { return ns.base + "bad" }

// GoodRef returns the name of the good pointer for a commit.
func (ns Namespace) GoodRef(commit string) string { return ns.base + goodPrefix + commit }

// GoodHash extracts the commit hash from a good ref name, if it is one.
func (ns Namespace) GoodHash(ref string) (string, bool) {
	rest, ok := strings.CutPrefix(ref, ns.base+goodPrefix)
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	return rest, true
}

// CheckpointRef returns the name of the transient checkpoint pointer.
func (ns Namespace) CheckpointRef() string { return ns.base + "checkpoint" }

// PickRef returns the name of patchset slot n.
func (ns Namespace) PickRef(n int) string {
	return fmt.Sprintf("%s%s/%d", ns.base, pickSegment, n)
}

// PickPrefix returns the listing prefix for patchset slots.
func (ns Namespace) PickPrefix() string { return ns.base + pickSegment }

// PickIndex extracts the slot index from a pick ref name, if it is one.
func (ns Namespace) PickIndex(ref string) (int, bool) {
	rest, ok := strings.CutPrefix(ref, ns.base+pickSegment+"/")
	if !ok {
		return 0, false
	}
	var n int
	if _, err := fmt.Sscanf(rest, "%d", &n); err != nil || strings.Contains(rest, "/") {
		return 0, false
	}
	return n, true
}

// MarkersPrefix returns the listing prefix for all markers scoped to the
// given patchset. Because the patchset hashes are path segments and listing
// matches whole segments, a shorter or longer patchset can never see this
// patchset's markers.
func (ns Namespace) MarkersPrefix(ps Patchset) string {
	if ps.Empty() {
		return ns.base + patchsetSegment + "/" + markersSegment
	}
	return ns.base + patchsetSegment + "/" + strings.Join(ps, "/") + "/" + markersSegment
}

// MarkerRef returns the marker ref name for one boundary commit of a named
// skip range under the given patchset.
func (ns Namespace) MarkerRef(ps Patchset, name, commit string) string {
	return ns.MarkersPrefix(ps) + "/" + name + "/" + commit
}

// MarkerParts extracts the range name and marker commit from a marker ref
// scoped to the given patchset.
func (ns Namespace) MarkerParts(ps Patchset, ref string) (name, commit string, ok bool) {
	rest, found := strings.CutPrefix(ref, ns.MarkersPrefix(ps)+"/")
	if !found {
		return "", "", false
	}
	name, commit, found = strings.Cut(rest, "/")
	if !found || name == "" || commit == "" || strings.Contains(commit, "/") {
		return "", "", false
	}
	return name, commit, true
}
