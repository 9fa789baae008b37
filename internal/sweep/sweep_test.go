package sweep

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/fenilsonani/bytesweep/internal/config"
	"github.com/fenilsonani/bytesweep/internal/plan"
	"github.com/fenilsonani/bytesweep/internal/probe"
	"github.com/fenilsonani/bytesweep/internal/testutil"
)

// durations is a fake prober keyed by file name
type durations map[string]float64

func (d durations) Duration(ctx context.Context, path string, kind probe.StreamKind) (float64, error) {
	if v, ok := d[filepath.Base(path)]; ok {
		return v, nil
	}
	return 0, probe.ErrNoDuration
}

func newEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	e, err := New(config.GetDefault(), opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func planFor(t *testing.T, e *Engine, root string) *plan.Plan {
	t.Helper()
	p, err := e.Plan(context.Background(), root)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	return p
}

func deletes(p *plan.Plan) map[string]bool {
	out := make(map[string]bool)
	for _, a := range p.Deletes() {
		out[filepath.Base(a.File.Path)] = true
	}
	return out
}

func renames(p *plan.Plan) map[string]string {
	out := make(map[string]string)
	for _, a := range p.Renames() {
		out[a.File.Name] = a.NewName
	}
	return out
}

func TestPlanMixedTree(t *testing.T) {
	f := testutil.NewFixture(t)

	// Text group: the clean copy wins over a corrupted original
	f.CreateFile("docs/notes.txt", testutil.Binary(64))
	f.CreateText("docs/notes_1.txt", "meeting notes\n")
	f.CreateFile("docs/notes_2.txt", nil)

	// Per-file: corrupt original frees its name for the intact copy
	f.CreateTruncatedPNG("img/photo.png")
	f.CreatePNG("img/photo_2.png")

	// Signature mismatch is deleted, never renamed
	f.CreateText("archive_2.zip", "not a zip")
	f.CreateZip("bundle_1.zip")

	// Dotfile special case and media through the prober
	f.CreateText("_7.env", "KEY=value\n")
	f.CreateText("song_1.mp3", "ID3")
	f.CreateText("clip_1.mp4", "ftyp")

	// Unclassified files pass through
	f.CreateText("thing_1.xyz", "opaque")

	e := newEngine(t, Options{Prober: durations{"song_1.mp3": 200, "clip_1.mp4": 0.2}})
	p := planFor(t, e, f.RootDir)

	wantDeletes := []string{"notes.txt", "notes_2.txt", "photo.png", "archive_2.zip", "clip_1.mp4"}
	got := deletes(p)
	if len(got) != len(wantDeletes) {
		t.Errorf("deletes = %v, want %v", got, wantDeletes)
	}
	for _, name := range wantDeletes {
		if !got[name] {
			t.Errorf("%s should be deleted", name)
		}
	}

	wantRenames := map[string]string{
		"notes_1.txt":  "notes.txt",
		"photo_2.png":  "photo.png",
		"bundle_1.zip": "bundle.zip",
		"_7.env":       ".env",
		"song_1.mp3":   "song.mp3",
	}
	gotRenames := renames(p)
	if len(gotRenames) != len(wantRenames) {
		t.Errorf("renames = %v, want %v", gotRenames, wantRenames)
	}
	for from, to := range wantRenames {
		if gotRenames[from] != to {
			t.Errorf("rename %s = %q, want %q", from, gotRenames[from], to)
		}
	}

	stats := p.Stats()
	if stats.Scanned != 11 || stats.Unclassified != 1 || stats.Groups != 2 {
		t.Errorf("stats = %+v", stats)
	}
	if len(p.Findings()) == 0 {
		t.Error("faults should be reported as findings")
	}
}

func TestPlanCollisionWithDirectory(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateDir("c.txt")
	f.CreateText("c_1.txt", "survivor")

	p := planFor(t, newEngine(t, Options{Prober: durations{}}), f.RootDir)

	if len(p.Renames()) != 0 || len(p.Deletes()) != 0 {
		t.Errorf("renames = %v, deletes = %v", renames(p), deletes(p))
	}
	c := p.Collisions()
	if len(c) != 1 || c[0].File.Name != "c_1.txt" {
		t.Errorf("collisions = %+v", c)
	}
}

func TestPlanIsIdempotent(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateText("a.txt", "clean")
	f.CreatePNG("b.png")
	f.CreateZip("c.zip")

	p := planFor(t, newEngine(t, Options{Prober: durations{}}), f.RootDir)
	if !p.Empty() || len(p.Collisions()) != 0 {
		t.Errorf("a clean tree should plan nothing: deletes=%v renames=%v", deletes(p), renames(p))
	}
}

func TestPlanWithoutFFProbeLeavesMediaAlone(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateFile("broken.mp3", nil)
	f.CreateText("song_1.mp3", "ID3")

	cfg := config.GetDefault()
	cfg.Probe.FFProbePath = "bytesweep-test-no-such-ffprobe"
	e, err := New(cfg, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	p := planFor(t, e, f.RootDir)
	if !p.Empty() {
		t.Errorf("media must not be touched without a prober: deletes=%v renames=%v", deletes(p), renames(p))
	}
	if p.Stats().Unclassified != 2 {
		t.Errorf("stats = %+v", p.Stats())
	}
}

func TestPlanResolvesTextGroupsPerDirectory(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateText("one/readme.md", "one")
	f.CreateText("two/readme_1.md", "two")

	p := planFor(t, newEngine(t, Options{Prober: durations{}}), f.RootDir)
	if got := renames(p); len(got) != 1 || got["readme_1.md"] != "readme.md" {
		t.Errorf("renames = %v", got)
	}
	if len(p.Deletes()) != 0 {
		t.Errorf("files in different directories never compete: %v", deletes(p))
	}
}

func TestPlanWhitespaceOriginalBeatsNoisyCopy(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateText("notes.txt", "   \n\n  \t \n")
	f.CreateText("notes_1.txt", "hello world\x00\x01\x02\x03")

	p := planFor(t, newEngine(t, Options{Prober: durations{}}), f.RootDir)
	if got := deletes(p); len(got) != 1 || !got["notes_1.txt"] {
		t.Errorf("deletes = %v, want only notes_1.txt", got)
	}
	if got := renames(p); len(got) != 0 {
		t.Errorf("renames = %v, want none", got)
	}
}

func TestPlanAfterInvalidate(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateText("a_1.txt", "clean\n")

	e := newEngine(t, Options{Prober: durations{}})
	first := planFor(t, e, f.RootDir)
	if got := renames(first); got["a_1.txt"] != "a.txt" {
		t.Fatalf("renames = %v", got)
	}

	// A directory now occupies the target
	f.CreateDir("a.txt")
	e.Invalidate(first.Root())

	p := planFor(t, e, f.RootDir)
	if len(p.Renames()) != 0 || len(p.Collisions()) != 1 {
		t.Errorf("renames = %v, collisions = %+v", renames(p), p.Collisions())
	}
}

func TestPlanBadRoot(t *testing.T) {
	e := newEngine(t, Options{Prober: durations{}})
	if _, err := e.Plan(context.Background(), filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("missing root should fail")
	}
}

func TestPlanCancelled(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateText("a_1.txt", "x")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newEngine(t, Options{Prober: durations{}}).Plan(ctx, f.RootDir)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestWorkers(t *testing.T) {
	if Workers(3) != 3 {
		t.Error("explicit worker count is kept")
	}
	if n := Workers(0); n < 4 || n > 16 {
		t.Errorf("Workers(0) = %d, want within [4, 16]", n)
	}
}
