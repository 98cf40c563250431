package bisect

import (
	"context"
	"errors"
	"os/exec"
	"strconv"
	"strings"
	"testing"

	"github.com/culpritdev/culprit/internal/gitrepo"
)

// bisectRepo is a real git repository preloaded with nothing, plus a session
// rooted at the default namespace.
type bisectRepo struct {
	t       *testing.T
	dir     string
	repo    *gitrepo.Repo
	session *Session
	n       int
}

func setupBisectRepo(t *testing.T) *bisectRepo {
	t.Helper()

	br := &bisectRepo{t: t, dir: t.TempDir()}
	br.git("init", "-q")
	br.git("config", "user.email", "test@example.com")
	br.git("config", "user.name", "Test User")
	br.git("config", "commit.gpgsign", "false")

	repo, err := gitrepo.Open(context.Background(), br.dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	br.repo = repo
	br.session = NewSession(repo, NewNamespace(DefaultBase))
	return br
}

func (br *bisectRepo) git(args ...string) string {
	br.t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = br.dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		br.t.Fatalf("git %s failed: %v\nOutput: %s", strings.Join(args, " "), err, out)
	}
	return strings.TrimSpace(string(out))
}

// commit creates one commit advancing a counter file and returns its hash.
func (br *bisectRepo) commit(msg string) string {
	br.t.Helper()
	br.n++
	br.git("commit", "-q", "--allow-empty", "-m", msg+" "+strconv.Itoa(br.n))
	return br.git("rev-parse", "HEAD")
}

// chain creates n commits and returns their hashes oldest first.
func (br *bisectRepo) chain(n int) []string {
	br.t.Helper()
	hashes := make([]string, n)
	for i := range hashes {
		hashes[i] = br.commit("c")
	}
	return hashes
}

func TestNamespace(t *testing.T) {
	ns := NewNamespace("refs/culprit")
	ps := Patchset{"aaa", "bbb"}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"bad", ns.BadRef(), "refs/culprit/bad"},
		{"good", ns.GoodRef("abc123"), "refs/culprit/good-abc123"},
		{"checkpoint", ns.CheckpointRef(), "refs/culprit/checkpoint"},
		{"pick", ns.PickRef(2), "refs/culprit/pick/2"},
		{"markers with patchset", ns.MarkersPrefix(ps), "refs/culprit/patchset/aaa/bbb/markers"},
		{"markers empty patchset", ns.MarkersPrefix(nil), "refs/culprit/patchset/markers"},
		{"marker ref", ns.MarkerRef(nil, "flaky", "abc"), "refs/culprit/patchset/markers/flaky/abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}

	t.Run("good hash round trip", func(t *testing.T) {
		hash, ok := ns.GoodHash(ns.GoodRef("abc123"))
		if !ok || hash != "abc123" {
			t.Errorf("GoodHash = %q, %v", hash, ok)
		}
		if _, ok := ns.GoodHash("refs/culprit/bad"); ok {
			t.Error("GoodHash accepted the bad ref")
		}
		if _, ok := ns.GoodHash("refs/culprit/good-"); ok {
			t.Error("GoodHash accepted an empty hash")
		}
	})

	t.Run("pick index round trip", func(t *testing.T) {
		idx, ok := ns.PickIndex(ns.PickRef(7))
		if !ok || idx != 7 {
			t.Errorf("PickIndex = %d, %v", idx, ok)
		}
		if _, ok := ns.PickIndex("refs/culprit/bad"); ok {
			t.Error("PickIndex accepted the bad ref")
		}
	})

	t.Run("marker parts round trip", func(t *testing.T) {
		ref := ns.MarkerRef(ps, "flaky", "abc")
		name, commit, ok := ns.MarkerParts(ps, ref)
		if !ok || name != "flaky" || commit != "abc" {
			t.Errorf("MarkerParts = %q, %q, %v", name, commit, ok)
		}
		// A marker scoped to a different patchset must not parse.
		if _, _, ok := ns.MarkerParts(nil, ref); ok {
			t.Error("MarkerParts crossed patchset identities")
		}
	})
}

func TestPatchsetExtend(t *testing.T) {
	ps := Patchset{"c"}
	grown := ps.Extend("a", "b")

	if got := strings.Join(grown, ","); got != "a,b,c" {
		t.Errorf("Extend = %s, want a,b,c", got)
	}
	if len(ps) != 1 {
		t.Errorf("Extend mutated the receiver: %v", ps)
	}
	if !grown.Contains("b") || grown.Contains("z") {
		t.Error("Contains is wrong")
	}
	if got := strings.Join(grown.Suffix(1), ","); got != "b,c" {
		t.Errorf("Suffix(1) = %s, want b,c", got)
	}
	if grown.Suffix(3) != nil {
		t.Errorf("Suffix past the end = %v, want nil", grown.Suffix(3))
	}
}

func TestPatchsetSaveLoad(t *testing.T) {
	br := setupBisectRepo(t)
	ctx := context.Background()
	hashes := br.chain(3)
	ns := br.session.NS

	if err := SavePatchset(ctx, br.repo, ns, Patchset{hashes[0], hashes[1]}); err != nil {
		t.Fatalf("SavePatchset failed: %v", err)
	}
	ps, err := LoadPatchset(ctx, br.repo, ns)
	if err != nil {
		t.Fatalf("LoadPatchset failed: %v", err)
	}
	if len(ps) != 2 || ps[0] != hashes[0] || ps[1] != hashes[1] {
		t.Errorf("LoadPatchset = %v, want [%s %s]", ps, hashes[0], hashes[1])
	}

	// Saving a shorter patchset replaces the old slots entirely.
	if err := SavePatchset(ctx, br.repo, ns, Patchset{hashes[2]}); err != nil {
		t.Fatalf("SavePatchset failed: %v", err)
	}
	ps, err = LoadPatchset(ctx, br.repo, ns)
	if err != nil {
		t.Fatalf("LoadPatchset failed: %v", err)
	}
	if len(ps) != 1 || ps[0] != hashes[2] {
		t.Errorf("LoadPatchset = %v, want [%s]", ps, hashes[2])
	}
}

func TestSessionLifecycle(t *testing.T) {
	br := setupBisectRepo(t)
	ctx := context.Background()
	hashes := br.chain(3)

	t.Run("start writes endpoints", func(t *testing.T) {
		if err := br.session.Start(ctx, hashes[2], []string{hashes[0]}); err != nil {
			t.Fatalf("Start failed: %v", err)
		}
		st, err := br.session.State(ctx)
		if err != nil {
			t.Fatalf("State failed: %v", err)
		}
		if st.Bad != hashes[2] {
			t.Errorf("Bad = %s, want %s", st.Bad, hashes[2])
		}
		if len(st.Good) != 1 || st.Good[0] != hashes[0] {
			t.Errorf("Good = %v, want [%s]", st.Good, hashes[0])
		}
		if !st.Patchset.Empty() {
			t.Errorf("fresh session has patchset %v", st.Patchset)
		}
	})

	t.Run("second start is refused", func(t *testing.T) {
		err := br.session.Start(ctx, hashes[2], []string{hashes[0]})
		if !errors.Is(err, ErrSessionActive) {
			t.Errorf("expected ErrSessionActive, got %v", err)
		}
	})

	t.Run("validate accepts consistent state", func(t *testing.T) {
		if err := br.session.Validate(ctx); err != nil {
			t.Errorf("Validate failed: %v", err)
		}
	})

	t.Run("reset removes everything", func(t *testing.T) {
		if err := br.session.Reset(ctx); err != nil {
			t.Fatalf("Reset failed: %v", err)
		}
		if _, err := br.session.State(ctx); !errors.Is(err, ErrNoSession) {
			t.Errorf("expected ErrNoSession after reset, got %v", err)
		}
	})
}

func TestSessionConsistencyChecks(t *testing.T) {
	br := setupBisectRepo(t)
	ctx := context.Background()
	hashes := br.chain(3)

	t.Run("start rejects good equal to bad", func(t *testing.T) {
		err := br.session.Start(ctx, hashes[1], []string{hashes[1]})
		if !errors.Is(err, ErrInconsistentHistory) {
			t.Fatalf("expected ErrInconsistentHistory, got %v", err)
		}
		// Nothing may have been written.
		if _, err := br.session.State(ctx); !errors.Is(err, ErrNoSession) {
			t.Errorf("refused start left refs behind: %v", err)
		}
	})

	t.Run("start rejects good above bad", func(t *testing.T) {
		err := br.session.Start(ctx, hashes[0], []string{hashes[2]})
		if !errors.Is(err, ErrInconsistentHistory) {
			t.Errorf("expected ErrInconsistentHistory, got %v", err)
		}
	})

	t.Run("mark good refuses descendants of bad", func(t *testing.T) {
		if err := br.session.Start(ctx, hashes[1], []string{hashes[0]}); err != nil {
			t.Fatalf("Start failed: %v", err)
		}
		err := br.session.MarkGood(ctx, hashes[2])
		if !errors.Is(err, ErrInconsistentHistory) {
			t.Errorf("expected ErrInconsistentHistory, got %v", err)
		}
	})

	t.Run("mark bad refuses moving above a good", func(t *testing.T) {
		err := br.session.MarkBad(ctx, hashes[0])
		if !errors.Is(err, ErrInconsistentHistory) {
			t.Errorf("expected ErrInconsistentHistory, got %v", err)
		}
	})
}
