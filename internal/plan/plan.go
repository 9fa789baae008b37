// Package plan accumulates the actions of one sweep and freezes them into
// an immutable Plan that the executor consumes once.
package plan

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/fenilsonani/bytesweep/internal/classify"
	"github.com/fenilsonani/bytesweep/internal/scanner"
)

var (
	// ErrDuplicateAction is returned when a source path already has an action
	ErrDuplicateAction = errors.New("path already has a planned action")
	// ErrTargetClaimed is returned when another rename already targets the path
	ErrTargetClaimed = errors.New("rename target already claimed")
)

// Kind is the type of a planned action
type Kind int

const (
	Delete Kind = iota
	Rename
)

// String returns the action name
func (k Kind) String() string {
	if k == Rename {
		return "rename"
	}
	return "delete"
}

// MarshalText implements encoding.TextMarshaler
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Action is one planned filesystem change
type Action struct {
	Kind     Kind              `json:"kind" yaml:"kind"`
	File     scanner.FileInfo  `json:"file" yaml:"file"`
	NewName  string            `json:"new_name,omitempty" yaml:"new_name,omitempty"`
	Category classify.Category `json:"category" yaml:"category"`
	Reason   string            `json:"reason" yaml:"reason"`
}

// Target returns the rename destination, or "" for deletions
func (a Action) Target() string {
	if a.Kind != Rename {
		return ""
	}
	return filepath.Join(a.File.Dir, a.NewName)
}

// Collision is a rename that was skipped because its target was taken
type Collision struct {
	File     scanner.FileInfo  `json:"file" yaml:"file"`
	Target   string            `json:"target" yaml:"target"`
	Category classify.Category `json:"category" yaml:"category"`
	Reason   string            `json:"reason" yaml:"reason"`
}

// Finding is a per-file observation worth reporting, such as the fault
// that condemned a file or a path the walk could not read
type Finding struct {
	Path     string            `json:"path" yaml:"path"`
	Category classify.Category `json:"category" yaml:"category"`
	Message  string            `json:"message" yaml:"message"`
}

// CategoryCounts aggregates the plan for one category
type CategoryCounts struct {
	Category    classify.Category `json:"category" yaml:"category"`
	Deletes     int               `json:"deletes" yaml:"deletes"`
	Renames     int               `json:"renames" yaml:"renames"`
	Collisions  int               `json:"collisions" yaml:"collisions"`
	DeleteBytes int64             `json:"delete_bytes" yaml:"delete_bytes"`
}

// Stats summarizes the scan a plan was built from
type Stats struct {
	Scanned      int   `json:"scanned" yaml:"scanned"`
	Classified   int   `json:"classified" yaml:"classified"`
	Unclassified int   `json:"unclassified" yaml:"unclassified"`
	Groups       int   `json:"groups" yaml:"groups"`
	ScanErrors   int   `json:"scan_errors" yaml:"scan_errors"`
	Bytes        int64 `json:"bytes" yaml:"bytes"`
}

// Builder accumulates actions in resolution order. It is not safe for
// concurrent use; resolution is serial.
type Builder struct {
	id         uuid.UUID
	root       string
	created    time.Time
	deletes    []Action
	renames    []Action
	collisions []Collision
	findings   []Finding
	stats      Stats
	sources    map[string]Kind
	targets    map[string]string // rename target -> source
}

// NewBuilder starts a plan for root
func NewBuilder(root string) *Builder {
	return &Builder{
		id:      uuid.New(),
		root:    root,
		created: time.Now(),
		sources: make(map[string]Kind),
		targets: make(map[string]string),
	}
}

// Delete plans the removal of file
func (b *Builder) Delete(file scanner.FileInfo, cat classify.Category, reason string) error {
	if err := b.claimSource(file.Path); err != nil {
		return err
	}
	b.sources[file.Path] = Delete
	b.deletes = append(b.deletes, Action{Kind: Delete, File: file, Category: cat, Reason: reason})
	return nil
}

// Rename plans renaming file to newName within its directory
func (b *Builder) Rename(file scanner.FileInfo, newName string, cat classify.Category, reason string) error {
	if newName == "" || newName == file.Name || filepath.Base(newName) != newName {
		return fmt.Errorf("invalid rename of %s to %q", file.Path, newName)
	}
	if err := b.claimSource(file.Path); err != nil {
		return err
	}

	target := filepath.Join(file.Dir, newName)
	if owner, ok := b.targets[target]; ok {
		return fmt.Errorf("%w: %s by %s", ErrTargetClaimed, target, owner)
	}

	b.sources[file.Path] = Rename
	b.targets[target] = file.Path
	b.renames = append(b.renames, Action{Kind: Rename, File: file, NewName: newName, Category: cat, Reason: reason})
	return nil
}

// Collide records a rename that will not happen
func (b *Builder) Collide(file scanner.FileInfo, target string, cat classify.Category, reason string) {
	b.collisions = append(b.collisions, Collision{File: file, Target: target, Category: cat, Reason: reason})
}

// Report records a finding
func (b *Builder) Report(f Finding) {
	b.findings = append(b.findings, f)
}

// SetStats records the scan statistics
func (b *Builder) SetStats(s Stats) {
	b.stats = s
}

// Deleting reports whether path is planned for deletion
func (b *Builder) Deleting(path string) bool {
	k, ok := b.sources[path]
	return ok && k == Delete
}

// Renaming reports whether path is the source of a planned rename
func (b *Builder) Renaming(path string) bool {
	k, ok := b.sources[path]
	return ok && k == Rename
}

// ClaimedBy returns the source of the rename that targets path, if any
func (b *Builder) ClaimedBy(target string) (string, bool) {
	src, ok := b.targets[target]
	return src, ok
}

func (b *Builder) claimSource(path string) error {
	if k, ok := b.sources[path]; ok {
		return fmt.Errorf("%w: %s (%s)", ErrDuplicateAction, path, k)
	}
	return nil
}

// Build freezes the accumulated actions. The builder may be discarded
// afterwards; the Plan shares no mutable state with it.
func (b *Builder) Build() *Plan {
	p := &Plan{
		id:         b.id.String(),
		root:       b.root,
		created:    b.created,
		deletes:    append([]Action(nil), b.deletes...),
		renames:    append([]Action(nil), b.renames...),
		collisions: append([]Collision(nil), b.collisions...),
		findings:   append([]Finding(nil), b.findings...),
		stats:      b.stats,
	}
	p.counts = tally(p)
	return p
}

// Plan is an immutable set of actions. Accessors return copies.
type Plan struct {
	id         string
	root       string
	created    time.Time
	deletes    []Action
	renames    []Action
	collisions []Collision
	findings   []Finding
	stats      Stats
	counts     []CategoryCounts
}

// ID returns the plan's unique identifier
func (p *Plan) ID() string { return p.id }

// Root returns the resolved sweep root
func (p *Plan) Root() string { return p.root }

// CreatedAt returns when planning started
func (p *Plan) CreatedAt() time.Time { return p.created }

// Deletes returns the planned deletions in resolution order
func (p *Plan) Deletes() []Action { return append([]Action(nil), p.deletes...) }

// Renames returns the planned renames in resolution order
func (p *Plan) Renames() []Action { return append([]Action(nil), p.renames...) }

// Collisions returns the renames skipped by the collision guard
func (p *Plan) Collisions() []Collision { return append([]Collision(nil), p.collisions...) }

// Findings returns the recorded findings
func (p *Plan) Findings() []Finding { return append([]Finding(nil), p.findings...) }

// Stats returns the scan statistics
func (p *Plan) Stats() Stats { return p.stats }

// Counts returns per-category aggregates for every category with activity
func (p *Plan) Counts() []CategoryCounts { return append([]CategoryCounts(nil), p.counts...) }

// Len returns the number of actions to execute
func (p *Plan) Len() int { return len(p.deletes) + len(p.renames) }

// Empty reports whether there is nothing to execute
func (p *Plan) Empty() bool { return p.Len() == 0 }

// DeleteBytes returns the total size of the planned deletions
func (p *Plan) DeleteBytes() int64 {
	var n int64
	for _, a := range p.deletes {
		n += a.File.Size
	}
	return n
}

// Snapshot is the serializable form of a Plan
type Snapshot struct {
	ID         string           `json:"id" yaml:"id"`
	Root       string           `json:"root" yaml:"root"`
	CreatedAt  time.Time        `json:"created_at" yaml:"created_at"`
	Stats      Stats            `json:"stats" yaml:"stats"`
	Counts     []CategoryCounts `json:"counts" yaml:"counts"`
	Deletes    []Action         `json:"deletes" yaml:"deletes"`
	Renames    []Action         `json:"renames" yaml:"renames"`
	Collisions []Collision      `json:"collisions" yaml:"collisions"`
	Findings   []Finding        `json:"findings" yaml:"findings"`
}

// Snapshot returns a copy of the plan suitable for encoding
func (p *Plan) Snapshot() Snapshot {
	return Snapshot{
		ID:         p.id,
		Root:       p.root,
		CreatedAt:  p.created,
		Stats:      p.stats,
		Counts:     p.Counts(),
		Deletes:    p.Deletes(),
		Renames:    p.Renames(),
		Collisions: p.Collisions(),
		Findings:   p.Findings(),
	}
}

func tally(p *Plan) []CategoryCounts {
	byCat := make(map[classify.Category]*CategoryCounts)
	get := func(c classify.Category) *CategoryCounts {
		if cc, ok := byCat[c]; ok {
			return cc
		}
		cc := &CategoryCounts{Category: c}
		byCat[c] = cc
		return cc
	}

	for _, a := range p.deletes {
		cc := get(a.Category)
		cc.Deletes++
		cc.DeleteBytes += a.File.Size
	}
	for _, a := range p.renames {
		get(a.Category).Renames++
	}
	for _, c := range p.collisions {
		get(c.Category).Collisions++
	}

	var out []CategoryCounts
	for _, c := range classify.All {
		if cc, ok := byCat[c]; ok {
			out = append(out, *cc)
		}
	}
	return out
}
