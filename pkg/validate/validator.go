// Package validate scores the observable state of the Acidwave UI against
// the success criteria of a task.
package validate

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/acidwave/acidwave-bench/pkg/page"
	"github.com/acidwave/acidwave-bench/pkg/task"
)

var ErrNoInspector = errors.New("no page inspector provided")

// Recorder receives validation outcomes. Implementations must be safe for
// concurrent use.
type Recorder interface {
	ObserveValidation(outcome string, reward float64)
	ObserveElementCheck(passed bool)
}

type nopRecorder struct{}

func (nopRecorder) ObserveValidation(string, float64) {}
func (nopRecorder) ObserveElementCheck(bool)          {}

// Input is everything a single validation looks at
type Input struct {
	TaskID    int
	Intent    string
	Eval      task.EvalSpec
	Inspector page.Inspector
	// Messages is the chat log of the episode. It is logged, not scored.
	Messages []page.Message
}

// InputFor builds the input for a catalog task
func InputFor(spec task.TaskSpec, inspector page.Inspector, messages []page.Message) Input {
	return Input{
		TaskID:    spec.TaskID,
		Intent:    spec.Intent,
		Eval:      spec.Eval,
		Inspector: inspector,
		Messages:  messages,
	}
}

// Validator holds no per-call state and is safe for concurrent use
type Validator struct {
	logger   *zap.Logger
	recorder Recorder
}

type Option func(*Validator)

func WithLogger(logger *zap.Logger) Option {
	return func(v *Validator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

func WithRecorder(recorder Recorder) Option {
	return func(v *Validator) {
		if recorder != nil {
			v.recorder = recorder
		}
	}
}

func New(opts ...Option) *Validator {
	v := &Validator{
		logger:   zap.NewNop(),
		recorder: nopRecorder{},
	}

	for _, opt := range opts {
		opt(v)
	}

	return v
}

// run collects the diagnostics of one validation call
type run struct {
	ctx    context.Context
	logger *zap.Logger
	rec    Recorder
	text   string
	url    string
	passed []string
	failed []string
}

func (r *run) pass(msg string) {
	r.passed = append(r.passed, msg)
}

func (r *run) fail(msg string) {
	r.failed = append(r.failed, msg)
}

// Validate scores the page state. It never returns an error: failure to read
// the page text or URL yields a terminal zero-reward result.
func (v *Validator) Validate(ctx context.Context, in Input) *Result {
	logger := v.logger.With(zap.Int("task_id", in.TaskID))

	if len(in.Messages) > 0 {
		logger.Debug("chat log", zap.Int("messages", len(in.Messages)),
			zap.String("last", in.Messages[len(in.Messages)-1].Content))
	}

	text, url, err := readPage(ctx, in.Inspector)
	if err != nil {
		logger.Error("error getting page content", zap.Error(err))
		res := fatal(err)
		v.recorder.ObserveValidation(res.Outcome(), res.Reward)
		return res
	}

	r := &run{
		ctx:    ctx,
		logger: logger,
		rec:    v.recorder,
		text:   text,
		url:    url,
		passed: []string{},
		failed: []string{},
	}

	res := &Result{PageURL: url}

	if in.Eval.Has(task.EvalTypeStringMatch) {
		res.Scores = append(res.Scores, DimensionScore{
			Type:  task.EvalTypeStringMatch,
			Score: r.stringMatch(in.Eval.ReferenceAnswers),
		})
	}

	if in.Eval.Has(task.EvalTypeProgramHTML) && len(in.Eval.ProgramHTML) > 0 {
		res.Scores = append(res.Scores, DimensionScore{
			Type:  task.EvalTypeProgramHTML,
			Score: r.programHTML(in.Inspector, in.Eval.ProgramHTML),
		})
	}

	if in.Eval.Has(task.EvalTypeURLMatch) {
		res.Scores = append(res.Scores, DimensionScore{
			Type:  task.EvalTypeURLMatch,
			Score: r.urlMatch(in.Eval.ReferenceAnswers),
		})
	}

	// element_state is folded into program_html and has no pass of its own

	var passing bool
	if len(res.Scores) > 0 {
		res.Reward, passing = aggregate(res.Scores)
	} else {
		logger.Warn("no active eval types, using keyword heuristic")
		res.Heuristic = keywordHeuristic(in.Intent, text)
		res.Reward = min(1, float64(res.Heuristic.Found)/float64(max(res.Heuristic.Total, 1)))
		passing = res.Reward > HeuristicThreshold
	}
	logger.Debug("aggregated", zap.Float64("reward", res.Reward), zap.Bool("passing", passing))

	res.Success, res.Done, res.Message = decide(res.Reward, r.passed, r.failed)
	res.ChecksPassed = r.passed
	res.ChecksFailed = r.failed

	logger.Info("validation",
		zap.Float64("reward", res.Reward),
		zap.Bool("done", res.Done),
		zap.Bool("success", res.Success),
	)
	logger.Debug("checks", zap.Strings("passed", r.passed), zap.Strings("failed", r.failed))

	v.recorder.ObserveValidation(res.Outcome(), res.Reward)

	return res
}

// aggregate is conjunctive: the reward is the weakest dimension and every
// dimension must clear SuccessThreshold
func aggregate(scores []DimensionScore) (float64, bool) {
	reward := scores[0].Score
	passing := true
	for _, s := range scores {
		reward = min(reward, s.Score)
		if s.Score < SuccessThreshold {
			passing = false
		}
	}

	return reward, passing
}

func readPage(ctx context.Context, inspector page.Inspector) (string, string, error) {
	if inspector == nil {
		return "", "", ErrNoInspector
	}

	text, err := inspector.Text(ctx)
	if err != nil {
		return "", "", err
	}

	url, err := inspector.URL(ctx)
	if err != nil {
		return "", "", err
	}

	return text, url, nil
}

func keywordHeuristic(intent, text string) *HeuristicScore {
	keywords := strings.Fields(strings.ToLower(intent))
	lower := strings.ToLower(text)

	found := 0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			found++
		}
	}

	return &HeuristicScore{Found: found, Total: len(keywords)}
}
