// Package bench scores captured page snapshots of agent episodes against the
// task catalog.
package bench

import (
	"cmp"
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/acidwave/acidwave-bench/pkg/episode"
	"github.com/acidwave/acidwave-bench/pkg/page"
	"github.com/acidwave/acidwave-bench/pkg/results"
	"github.com/acidwave/acidwave-bench/pkg/task"
	"github.com/acidwave/acidwave-bench/pkg/validate"
)

// UnreadableTaskID marks records of snapshot files that could not be loaded
const UnreadableTaskID = -1

type Runner interface {
	Run(ctx context.Context) ([]*results.Record, error)
	RunWithProgress(ctx context.Context, callback ProgressCallback) ([]*results.Record, error)
}

type benchRunner struct {
	spec      *BenchSpec
	provider  task.Provider
	validator *validate.Validator
	logger    *zap.Logger
}

var _ Runner = &benchRunner{}

type Option func(*benchRunner)

// WithProvider supplies the tasks instead of loading config.catalog
func WithProvider(p task.Provider) Option {
	return func(r *benchRunner) {
		r.provider = p
	}
}

func WithValidator(v *validate.Validator) Option {
	return func(r *benchRunner) {
		if v != nil {
			r.validator = v
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(r *benchRunner) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRunner creates a new Runner from a BenchSpec
func NewRunner(spec *BenchSpec, opts ...Option) (Runner, error) {
	if spec == nil {
		return nil, fmt.Errorf("bench spec cannot be nil")
	}

	r := &benchRunner{
		spec:   spec,
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.validator == nil {
		r.validator = validate.New(validate.WithLogger(r.logger))
	}

	return r, nil
}

type loadedSnapshot struct {
	path string
	snap *page.Snapshot
}

func (r *benchRunner) Run(ctx context.Context) ([]*results.Record, error) {
	return r.RunWithProgress(ctx, NoopProgressCallback)
}

func (r *benchRunner) RunWithProgress(ctx context.Context, callback ProgressCallback) ([]*results.Record, error) {
	if callback == nil {
		callback = NoopProgressCallback
	}

	var mu sync.Mutex
	emit := func(event ProgressEvent) {
		mu.Lock()
		defer mu.Unlock()
		callback(event)
	}

	provider, err := r.loadProvider()
	if err != nil {
		return nil, err
	}

	filter := r.spec.Config.Filter()
	var tasks []task.TaskSpec
	for _, t := range provider.Tasks() {
		if filter.Matches(t) {
			tasks = append(tasks, t)
		}
	}

	files, err := filepath.Glob(r.spec.Config.Snapshots)
	if err != nil {
		return nil, fmt.Errorf("failed to match snapshots '%s': %w", r.spec.Config.Snapshots, err)
	}
	slices.Sort(files)

	emit(ProgressEvent{
		Type:    EventRunStart,
		Message: fmt.Sprintf("Scoring %d tasks from %d snapshots", len(tasks), len(files)),
	})

	byTask, unreadable := r.loadSnapshots(files)

	selected := make(map[int]bool, len(tasks))
	for _, t := range tasks {
		selected[t.TaskID] = true
	}
	for id, snaps := range byTask {
		if selected[id] {
			continue
		}
		for _, s := range snaps {
			r.logger.Debug("skipping snapshot of unselected task", zap.Int("task_id", id), zap.String("snapshot", s.path))
			emit(ProgressEvent{
				Type:     EventTaskSkipped,
				Message:  fmt.Sprintf("task %d is not selected", id),
				Snapshot: s.path,
			})
		}
	}

	records := make([]*results.Record, len(tasks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.spec.Config.GetParallelism())

	for i, t := range tasks {
		g.Go(func() error {
			rec, err := r.runTask(gctx, t, byTask[t.TaskID], emit)
			if err != nil {
				return err
			}
			records[i] = rec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("bench run aborted: %w", err)
	}

	for _, rec := range unreadable {
		emit(ProgressEvent{Type: EventTaskComplete, Task: rec, Snapshot: rec.Snapshot})
	}
	records = append(records, unreadable...)

	emit(ProgressEvent{
		Type:    EventRunComplete,
		Message: "Bench complete",
	})

	return records, nil
}

func (r *benchRunner) loadProvider() (task.Provider, error) {
	if r.provider != nil {
		return r.provider, nil
	}

	catalog, err := task.LoadCatalog(r.spec.Config.Catalog)
	if err != nil {
		return nil, err
	}

	return catalog, nil
}

// loadSnapshots groups the readable snapshots by task, ordered by step
func (r *benchRunner) loadSnapshots(files []string) (map[int][]loadedSnapshot, []*results.Record) {
	byTask := make(map[int][]loadedSnapshot)
	var unreadable []*results.Record

	for _, path := range files {
		snap, err := page.LoadSnapshot(path)
		if err == nil && snap.TaskID == nil {
			err = fmt.Errorf("snapshot '%s' has no taskId", path)
		}
		if err != nil {
			r.logger.Warn("unreadable snapshot", zap.String("snapshot", path), zap.Error(err))
			unreadable = append(unreadable, &results.Record{
				TaskID:   UnreadableTaskID,
				TaskName: filepath.Base(path),
				Snapshot: path,
				Error:    err.Error(),
			})
			continue
		}

		byTask[*snap.TaskID] = append(byTask[*snap.TaskID], loadedSnapshot{path: path, snap: snap})
	}

	for _, snaps := range byTask {
		slices.SortStableFunc(snaps, func(a, b loadedSnapshot) int {
			return cmp.Compare(a.snap.Step, b.snap.Step)
		})
	}

	return byTask, unreadable
}

// runTask replays the snapshots of one task through an episode until the
// validator finishes it or the step budget runs out
func (r *benchRunner) runTask(ctx context.Context, t task.TaskSpec, snaps []loadedSnapshot, emit ProgressCallback) (*results.Record, error) {
	maxSteps := r.spec.Config.GetMaxSteps()
	rec := &results.Record{
		TaskID:     t.TaskID,
		TaskName:   task.EnvName(t.TaskID),
		Intent:     t.Intent,
		Difficulty: t.Difficulty,
		MaxSteps:   maxSteps,
	}

	emit(ProgressEvent{Type: EventTaskStart, Task: rec})

	if len(snaps) == 0 {
		rec.Error = "no snapshots found for task"
		emit(ProgressEvent{Type: EventTaskComplete, Task: rec})
		return rec, nil
	}

	ep := episode.New(maxSteps)
	for _, s := range snaps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rec.Snapshot = s.path

		insp, err := page.NewSnapshotInspector(s.snap)
		if err != nil {
			rec.Error = err.Error()
			rec.Done = true
			break
		}

		res := r.validator.Validate(ctx, validate.InputFor(t, insp, s.snap.Messages))
		out, err := ep.Observe(res)
		if err != nil {
			return nil, err
		}

		emit(ProgressEvent{Type: EventTaskStep, Task: rec, Validation: res, Snapshot: s.path})

		rec.Steps = out.Step
		rec.Reward = out.Reward
		rec.Success = out.Success
		rec.Done = out.Terminated
		rec.Truncated = out.Truncated
		rec.Message = res.Message
		rec.ChecksPassed = res.ChecksPassed
		rec.ChecksFailed = res.ChecksFailed
		rec.Scores = res.Scores
		rec.Error = res.Error

		if out.Over() {
			if rest := len(snaps) - out.Step; rest > 0 {
				r.logger.Debug("episode over, ignoring remaining snapshots",
					zap.Int("task_id", t.TaskID), zap.Int("ignored", rest))
			}
			break
		}
	}

	emit(ProgressEvent{Type: EventTaskComplete, Task: rec})

	return rec, nil
}
