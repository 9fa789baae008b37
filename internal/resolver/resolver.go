// Package resolver turns validation verdicts into planned actions. Text
// files are resolved as groups of same-named variants; every other
// category is resolved one file at a time.
package resolver

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fenilsonani/bytesweep/internal/classify"
	"github.com/fenilsonani/bytesweep/internal/naming"
	"github.com/fenilsonani/bytesweep/internal/plan"
	"github.com/fenilsonani/bytesweep/internal/scanner"
	"github.com/fenilsonani/bytesweep/internal/validate"
)

// BaseKey identifies the variants of one original file
type BaseKey struct {
	Dir  string
	Base string
}

// KeyOf returns the BaseKey of file
func KeyOf(file scanner.FileInfo) BaseKey {
	return BaseKey{Dir: file.Dir, Base: naming.BaseName(file.Name)}
}

// Assessment pairs a file with its verdict
type Assessment struct {
	File     scanner.FileInfo
	Category classify.Category
	Result   validate.Result
}

// Group is a BaseKey with its members in scan order
type Group struct {
	Key     BaseKey
	Members []Assessment
}

// Existence answers whether a directory entry exists on disk
type Existence interface {
	Lookup(dir, name string) (os.FileInfo, bool)
}

type pendingRename struct {
	a      Assessment
	target string
	reason string
}

// Resolver feeds decisions into a plan.Builder. Renames are held back
// until Finish so that the collision guard sees every deletion of the pass.
type Resolver struct {
	b       *plan.Builder
	exists  Existence
	pending []pendingRename
}

// New creates a Resolver writing to b
func New(b *plan.Builder, exists Existence) *Resolver {
	return &Resolver{b: b, exists: exists}
}

// candidate reports whether a text member may survive: non-empty, head
// read, and not entirely noise. A whitespace-only head is still ranked.
func candidate(a Assessment) bool {
	return a.File.Size > 0 && a.Result.HeadRead && !a.Result.Noise.Saturated()
}

// ResolveGroup decides the survivors of a text group.
//
// The lowest noise score wins. Members tied at that score all survive. The
// primary is the tied member already named after the base, else the first
// tied member in scan order, and only the primary is renamed. With no
// candidate at all, every member is deleted.
func (r *Resolver) ResolveGroup(g Group) {
	var best *validate.NoiseScore
	for i, m := range g.Members {
		if candidate(m) && (best == nil || m.Result.Noise.Compare(*best) < 0) {
			best = &g.Members[i].Result.Noise
		}
	}

	if best == nil {
		for _, m := range g.Members {
			r.delete(m, "no intact variant in group: "+describe(m))
		}
		return
	}

	top := func(m Assessment) bool {
		return candidate(m) && m.Result.Noise.Compare(*best) == 0
	}

	var tied []Assessment
	for _, m := range g.Members {
		if top(m) {
			tied = append(tied, m)
		}
	}

	primary := tied[0]
	for _, m := range tied {
		if m.File.Name == g.Key.Base {
			primary = m
			break
		}
	}

	for _, m := range g.Members {
		if top(m) {
			if m.Result.Fault != nil {
				r.b.Report(plan.Finding{Path: m.File.Path, Category: m.Category, Message: m.Result.Cause()})
			}
			continue
		}
		if candidate(m) {
			r.delete(m, fmt.Sprintf("noisier variant (%.4f > %.4f)", m.Result.Noise.Ratio, primary.Result.Noise.Ratio))
		} else {
			r.delete(m, describe(m))
		}
	}

	if primary.File.Name != g.Key.Base {
		reason := "cleanest variant"
		if len(tied) > 1 {
			reason = fmt.Sprintf("primary of %d tied variants", len(tied))
		}
		r.queueRename(primary, g.Key.Base, reason)
	}
}

// ResolveFile decides a non-text file on its own verdict
func (r *Resolver) ResolveFile(a Assessment) {
	if !a.Result.Valid {
		r.delete(a, describe(a))
		return
	}

	base := naming.BaseName(a.File.Name)
	if base != a.File.Name {
		r.queueRename(a, base, "valid duplicate")
	}
}

// Finish applies the collision guard to every queued rename, in the
// order they were queued, and records the survivors
func (r *Resolver) Finish() {
	for _, p := range r.pending {
		r.rename(p)
	}
	r.pending = nil
}

func (r *Resolver) queueRename(a Assessment, target, reason string) {
	r.pending = append(r.pending, pendingRename{a: a, target: target, reason: reason})
}

func (r *Resolver) delete(a Assessment, reason string) {
	if a.Result.Fault != nil {
		r.b.Report(plan.Finding{Path: a.File.Path, Category: a.Category, Message: a.Result.Cause()})
	}
	if err := r.b.Delete(a.File, a.Category, reason); err != nil {
		r.b.Report(plan.Finding{Path: a.File.Path, Category: a.Category, Message: err.Error()})
	}
}

func (r *Resolver) rename(p pendingRename) {
	file := p.a.File
	dst := filepath.Join(file.Dir, p.target)

	if owner, ok := r.b.ClaimedBy(dst); ok {
		r.b.Collide(file, dst, p.a.Category, "target claimed by "+filepath.Base(owner))
		return
	}

	if reason, blocked := r.occupied(file, dst, p.target); blocked {
		r.b.Collide(file, dst, p.a.Category, reason)
		return
	}

	if err := r.b.Rename(file, p.target, p.a.Category, p.reason); err != nil {
		r.b.Collide(file, dst, p.a.Category, err.Error())
	}
}

// occupied reports whether an entry at dst blocks renaming file onto it.
// An entry slated for deletion is gone by the time renames run, and an
// entry that is the survivor itself is no conflict. An entry that will
// itself be renamed away is still treated as occupied.
func (r *Resolver) occupied(file scanner.FileInfo, dst, name string) (string, bool) {
	if r.exists == nil {
		return "", false
	}

	info, ok := r.exists.Lookup(file.Dir, name)
	if !ok {
		return "", false
	}
	if r.b.Deleting(dst) {
		return "", false
	}
	if self, err := os.Lstat(file.Path); err == nil && os.SameFile(info, self) {
		return "", false
	}
	if r.b.Renaming(dst) {
		return "destination is itself pending a rename", true
	}
	return "destination exists", true
}

func describe(a Assessment) string {
	switch {
	case a.File.Size == 0:
		return "empty file"
	case a.Result.Fault != nil:
		return a.Result.Fault.Cause
	case a.Category == classify.Text && a.Result.Noise.Saturated():
		return "no printable content in sampled head"
	default:
		return "invalid"
	}
}
