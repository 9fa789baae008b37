// Package sweep runs one planning pass: scan, classify, validate in
// parallel, then resolve serially into an immutable plan.
package sweep

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fenilsonani/bytesweep/internal/classify"
	"github.com/fenilsonani/bytesweep/internal/config"
	"github.com/fenilsonani/bytesweep/internal/logging"
	"github.com/fenilsonani/bytesweep/internal/plan"
	"github.com/fenilsonani/bytesweep/internal/probe"
	"github.com/fenilsonani/bytesweep/internal/progress"
	"github.com/fenilsonani/bytesweep/internal/resolver"
	"github.com/fenilsonani/bytesweep/internal/scanner"
	"github.com/fenilsonani/bytesweep/internal/validate"
)

// Options overrides the default capabilities
type Options struct {
	// Prober measures media durations. When nil, ffprobe is used if it
	// can be found; otherwise audio and video are left unclassified.
	Prober validate.Prober
	// Decoder decodes images; nil selects validate.StdDecoder
	Decoder  validate.ImageDecoder
	Logger   *logging.Logger
	Progress *progress.ProgressReporter
}

// Engine plans sweeps of directory trees
type Engine struct {
	classifier *classify.Classifier
	suite      *validate.Suite
	scanner    *scanner.Scanner
	log        *logging.Logger
	progress   *progress.ProgressReporter
	index      *scanner.DirIndex
	workers    int
}

// New wires an Engine from configuration
func New(cfg *config.Config, opts Options) (*Engine, error) {
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}

	classifier, err := classify.New(cfg)
	if err != nil {
		return nil, err
	}

	prober := opts.Prober
	if prober == nil {
		ff := probe.New(cfg.Probe.FFProbePath)
		if ff.Available() {
			prober = ff
		} else {
			log.Warn("%s not found; audio and video files will be left untouched", ff.Binary)
			classifier.Disable(classify.Audio)
			classifier.Disable(classify.Video)
		}
	}

	suite, err := validate.NewSuite(cfg, classifier, prober, opts.Decoder)
	if err != nil {
		return nil, err
	}

	sc := scanner.New(cfg)
	sc.SetProgressReporter(opts.Progress)

	index, err := scanner.NewDirIndex(scanner.DefaultIndexSize)
	if err != nil {
		return nil, err
	}

	return &Engine{
		classifier: classifier,
		suite:      suite,
		scanner:    sc,
		log:        log,
		progress:   opts.Progress,
		index:      index,
		workers:    Workers(cfg.Workers),
	}, nil
}

// Invalidate drops cached directory listings so the next Plan sees the
// current contents of dirs. Call it after changing the tree.
func (e *Engine) Invalidate(dirs ...string) {
	for _, dir := range dirs {
		e.index.Invalidate(dir)
	}
}

// Workers returns n, or when n is 0 the CPU count clamped to [4, 16]
func Workers(n int) int {
	if n > 0 {
		return n
	}
	n = runtime.NumCPU()
	if n < 4 {
		n = 4 // Minimum 4 workers for I/O parallelism
	}
	if n > 16 {
		n = 16 // Cap at 16 to avoid excessive context switching
	}
	return n
}

type item struct {
	file scanner.FileInfo
	cat  classify.Category
}

// Plan scans root and returns the plan that would restore it. Only an
// unusable root or a cancelled context fails the pass; per-file faults
// become findings.
func (e *Engine) Plan(ctx context.Context, root string) (*plan.Plan, error) {
	start := time.Now()

	scan, err := e.scanner.Scan(ctx, root)
	if err != nil {
		return nil, err
	}
	e.log.Info("scanned %d files under %s", scan.TotalCount, scan.Root)

	b := plan.NewBuilder(scan.Root)
	for _, serr := range scan.Errors {
		e.log.Warn("%v", serr)
		b.Report(plan.Finding{Path: errPath(serr), Category: classify.Unclassified, Message: serr.Error()})
	}

	items := make([]item, 0, len(scan.Files))
	for _, file := range scan.Files {
		cat := e.classifier.Classify(file.Ext, strings.ToLower(file.Name))
		if cat == classify.Unclassified {
			e.log.Debug("unclassified: %s", file.Path)
			continue
		}
		items = append(items, item{file: file, cat: cat})
	}

	results, err := e.validateAll(ctx, items, start)
	if err != nil {
		return nil, err
	}

	groups := e.resolve(b, items, results, start)

	b.SetStats(plan.Stats{
		Scanned:      scan.TotalCount,
		Classified:   len(items),
		Unclassified: scan.TotalCount - len(items),
		Groups:       groups,
		ScanErrors:   len(scan.Errors),
		Bytes:        scan.TotalSize,
	})

	p := b.Build()
	e.log.Info("plan %s: %d deletions, %d renames, %d collisions in %s",
		p.ID(), len(p.Deletes()), len(p.Renames()), len(p.Collisions()), progress.FormatDuration(time.Since(start)))
	return p, nil
}

// validateAll checks every item on a bounded pool. Each worker writes
// only its own slot of results.
func (e *Engine) validateAll(ctx context.Context, items []item, start time.Time) ([]validate.Result, error) {
	results := make([]validate.Result, len(items))
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = e.suite.Check(gctx, items[i].file, items[i].cat)

			n := int(done.Add(1))
			e.progress.Update(&progress.Progress{
				Phase:       progress.PhaseValidating,
				CurrentPath: items[i].file.Path,
				Done:        n,
				Total:       len(items),
				StartTime:   start,
			})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	// A cancellation that raced the last worker still invalidates results
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// resolve runs serially in scan order. Non-text files resolve as they
// come; text files are buffered into groups resolved afterwards in order
// of first appearance.
func (e *Engine) resolve(b *plan.Builder, items []item, results []validate.Result, start time.Time) int {
	r := resolver.New(b, e.index)

	var order []resolver.BaseKey
	groups := make(map[resolver.BaseKey]*resolver.Group)

	for i, it := range items {
		a := resolver.Assessment{File: it.file, Category: it.cat, Result: results[i]}
		if !a.Result.Valid {
			e.log.Warn("%s: %s", it.file.Path, a.Result.Cause())
		}

		if !classify.GroupSensitive(it.cat) {
			r.ResolveFile(a)
			continue
		}

		key := resolver.KeyOf(it.file)
		g, ok := groups[key]
		if !ok {
			g = &resolver.Group{Key: key}
			groups[key] = g
			order = append(order, key)
		}
		g.Members = append(g.Members, a)
	}

	for n, key := range order {
		r.ResolveGroup(*groups[key])
		e.progress.Update(&progress.Progress{
			Phase:     progress.PhaseResolving,
			Done:      n + 1,
			Total:     len(order),
			StartTime: start,
		})
	}

	r.Finish()
	return len(order)
}

func errPath(err error) string {
	var se *scanner.ScanError
	if errors.As(err, &se) {
		return se.Path
	}
	return ""
}
