// Package engine provides the script consumer: it starts event scripts,
// feeds them responses and turns their yields into dialog requests.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nathoo/ruinscript/engine/dialogue"
	"github.com/nathoo/ruinscript/engine/effects"
	"github.com/nathoo/ruinscript/engine/script"
	"github.com/nathoo/ruinscript/engine/state"
	"github.com/nathoo/ruinscript/journal"
	"github.com/nathoo/ruinscript/loader"
	"github.com/nathoo/ruinscript/types"
)

// closeResponse is what a script reads after a shop or quest dialog closes.
var closeResponse = types.String("close")

// Sources resolves script ids to source text.
type Sources interface {
	Source(id string) (string, error)
}

// Options configure an Engine. Zero values pick sensible defaults.
type Options struct {
	Logger          *zap.Logger
	Hooks           state.Hooks
	Journal         journal.Journal
	StepTimeout     time.Duration
	LegacyResultVar bool // mirror each response into the "?" global
}

// Engine holds the simulation state and the script run attached to it.
type Engine struct {
	State *types.State

	sources Sources
	scripts *script.Engine
	hooks   state.Hooks
	journal journal.Journal
	log     *zap.Logger
	legacy  bool

	runID string
	talk  *types.TalkText // text of the open talk window
}

// New creates an engine over s that loads scripts from src.
func New(src Sources, s *types.State, opts Options) *Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	hooks := opts.Hooks
	if hooks == nil {
		hooks = state.DefaultHooks{MaxDungeons: 3, BoardSize: 3}
	}
	j := opts.Journal
	if j == nil {
		j = journal.Nop{}
	}
	return &Engine{
		State:   s,
		sources: src,
		scripts: script.New(script.Options{
			Logger:      log.Named("script"),
			Hooks:       hooks,
			StepTimeout: opts.StepTimeout,
		}),
		hooks:   hooks,
		journal: j,
		log:     log,
		legacy:  opts.LegacyResultVar,
	}
}

// Running reports whether a script run is attached.
func (e *Engine) Running() bool { return e.scripts.Active() }

// RunID returns the id of the current run, or "".
func (e *Engine) RunID() string { return e.runID }

// CurrentTalk returns the text of the open talk window, or nil.
func (e *Engine) CurrentTalk() *types.TalkText { return e.talk }

// StartScript starts the script named by input ("id" or "!id(arg='x', n=1)")
// against targetChara in scene and advances it to its first yield.
func (e *Engine) StartScript(ctx context.Context, input string, targetChara types.CharaID, scene string) dialogue.Result {
	if e.scripts.Active() {
		err := fmt.Errorf("start %q: %w", input, script.ErrScriptActive)
		e.log.Warn("script start rejected", zap.String("script", e.scripts.ScriptName()), zap.Error(err))
		return dialogue.Result{Outcome: dialogue.Continue, Err: err}
	}

	in, err := loader.ParseInput(input)
	if err != nil {
		e.log.Warn("bad script input", zap.String("input", input), zap.Error(err))
		return dialogue.Result{Outcome: dialogue.Quit, Err: err}
	}
	src, err := e.sources.Source(in.ScriptID)
	if err != nil {
		e.log.Warn("script not found", zap.String("script", in.ScriptID), zap.Error(err))
		return dialogue.Result{Outcome: dialogue.Quit, Err: err}
	}

	e.State.ScriptExec = types.ScriptExec{
		CurrentScriptID: in.ScriptID,
		TargetChara:     targetChara,
		Scene:           scene,
	}
	if err := e.scripts.Start(in.ScriptID, src, in.Args); err != nil {
		e.log.Warn("script start failed", zap.String("script", in.ScriptID), zap.Error(err))
		e.reset()
		return dialogue.Result{Outcome: dialogue.Quit, Err: err}
	}

	e.runID = uuid.NewString()
	e.record(e.journal.RunStarted(ctx, journal.Run{
		ID:        e.runID,
		Script:    in.ScriptID,
		Chara:     string(targetChara),
		Scene:     scene,
		StartedAt: time.Now(),
	}))
	e.log.Info("script run started", zap.String("script", in.ScriptID), zap.String("run", e.runID))

	return e.AdvanceScript(ctx, nil)
}

// AdvanceScript resumes the running script with response and maps what it
// does next onto a dialog result. While a shop or quest dialog is open a nil
// response is replaced by the close response.
func (e *Engine) AdvanceScript(ctx context.Context, response *types.Value) dialogue.Result {
	if !e.scripts.Active() {
		return dialogue.Result{Outcome: dialogue.Quit, Err: script.ErrNoScript}
	}

	ex := &e.State.ScriptExec
	if ex.Dialog {
		ex.Dialog = false
		if response == nil {
			v := closeResponse
			response = &v
		}
	}
	ex.Response = nil
	if response != nil {
		v := *response
		ex.Response = &v
		ex.YieldResult = v
		if e.legacy {
			state.SetGlobalVar(e.State, state.ResultVar, v)
		}
	}

	y, err := e.scripts.Next(ctx, e.State)
	evs := e.scripts.TakeEvents()
	if err != nil {
		return e.fail(ctx, err, evs)
	}
	if y == nil {
		e.finish(ctx, journal.Finished, "")
		return dialogue.Result{Outcome: dialogue.Quit, Events: evs}
	}

	textID := ""
	if y.Talk != nil {
		textID = y.Talk.TextID
	}
	e.record(e.journal.Yielded(ctx, e.runID, string(y.Tag), textID))

	req, err := dialogue.RequestFor(y, ex.TargetChara)
	if err != nil {
		return e.fail(ctx, err, evs)
	}

	switch y.Tag {
	case types.YieldTalk:
		e.talk = y.Talk
		if ex.Talking {
			return dialogue.Result{Outcome: dialogue.UpdateTalkText, Talk: y.Talk, Events: evs}
		}
		ex.Talking = true
		return dialogue.Result{Outcome: dialogue.Continue, Request: req, Events: evs}

	case types.YieldQuestOffer, types.YieldQuestReport:
		more, err := effects.Apply(e.State, e.hooks, []types.Effect{{Type: "update_town_quests"}},
			effects.Context{ScriptID: ex.CurrentScriptID})
		evs = append(evs, more...)
		if err != nil {
			return e.fail(ctx, err, evs)
		}
	}

	e.talk = nil
	ex.Talking = false
	ex.Dialog = true
	return dialogue.Result{Outcome: dialogue.Continue, Request: req, Events: evs}
}

// Choose answers the open talk window with the choice at index.
func (e *Engine) Choose(ctx context.Context, index int) dialogue.Result {
	v, err := dialogue.ChoiceResponse(e.talk, index)
	if err != nil {
		return dialogue.Result{Outcome: dialogue.Continue, Err: err}
	}
	return e.AdvanceScript(ctx, &v)
}

// Abandon stops the running script without resuming it again.
func (e *Engine) Abandon(ctx context.Context) {
	if !e.scripts.Active() {
		return
	}
	e.log.Info("script run abandoned", zap.String("script", e.scripts.ScriptName()), zap.String("run", e.runID))
	e.scripts.Abandon()
	e.finish(ctx, journal.Abandoned, "")
}

// Restore replaces the state, abandoning any running script.
func (e *Engine) Restore(ctx context.Context, s *types.State) {
	e.Abandon(ctx)
	state.ClearScriptExec(s)
	e.State = s
}

func (e *Engine) fail(ctx context.Context, err error, evs []types.Event) dialogue.Result {
	name := e.State.ScriptExec.CurrentScriptID
	e.log.Warn("script failed", zap.String("script", name), zap.String("run", e.runID), zap.Error(err))

	if e.scripts.Active() {
		e.scripts.Abandon()
	}
	e.finish(ctx, journal.Failed, err.Error())
	return dialogue.Result{Outcome: dialogue.Quit, Events: evs, Err: err}
}

func (e *Engine) finish(ctx context.Context, outcome journal.Outcome, msg string) {
	if e.runID != "" {
		e.record(e.journal.RunFinished(ctx, e.runID, outcome, msg))
		e.log.Info("script run ended", zap.String("run", e.runID), zap.String("outcome", string(outcome)))
	}
	e.reset()
}

func (e *Engine) reset() {
	state.ClearScriptExec(e.State)
	e.runID = ""
	e.talk = nil
}

func (e *Engine) record(err error) {
	if err != nil {
		e.log.Warn("journal write failed", zap.String("run", e.runID), zap.Error(err))
	}
}
