// Package script runs event scripts as resumable generators.
//
// An Engine holds at most one execution scope. Start compiles a script and
// prepares a fresh sandboxed VM with the bootstrap fragments and natives.
// Each Next hands the simulation state to the script, resumes it until it
// yields or returns, and takes the state back.
package script

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nathoo/ruinscript/engine/bridge"
	"github.com/nathoo/ruinscript/engine/handoff"
	"github.com/nathoo/ruinscript/engine/native"
	"github.com/nathoo/ruinscript/engine/state"
	"github.com/nathoo/ruinscript/engine/suspend"
	"github.com/nathoo/ruinscript/types"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

const (
	entryName = "rrscript_main"
	genName   = "_rrscript_gen"
)

// Options configure an Engine.
type Options struct {
	Logger      *zap.Logger
	Hooks       state.Hooks
	StepTimeout time.Duration // zero disables the limit
}

// Engine is the generator host. It is not safe for concurrent use.
type Engine struct {
	log         *zap.Logger
	hooks       state.Hooks
	stepTimeout time.Duration
	slot        *handoff.Slot[types.State]

	scope  *scope
	events []types.Event
}

// scope is the execution scope of one running script.
type scope struct {
	name    string
	L       *lua.LState
	co      *lua.LState
	cancel  context.CancelFunc
	gen     *lua.LFunction
	args    *lua.LTable
	env     *native.Env
	started bool
}

// New creates an idle Engine.
func New(opts Options) *Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	hooks := opts.Hooks
	if hooks == nil {
		hooks = state.DefaultHooks{}
	}
	return &Engine{
		log:         log,
		hooks:       hooks,
		stepTimeout: opts.StepTimeout,
		slot:        handoff.New(state.Placeholder),
	}
}

// Active reports whether a script scope is live.
func (e *Engine) Active() bool { return e.scope != nil }

// ScriptName returns the name of the running script, or "".
func (e *Engine) ScriptName() string {
	if e.scope == nil {
		return ""
	}
	return e.scope.name
}

// Start compiles source and prepares a scope for it. Top-level statements of
// the chunk run here, outside any handoff. The entry function runs on the
// first Next.
func (e *Engine) Start(name, source string, args map[string]types.Value) error {
	if e.scope != nil {
		return fmt.Errorf("starting %s while %s runs: %w", name, e.scope.name, ErrScriptActive)
	}

	proto, err := Compile(name, strings.NewReader(source))
	if err != nil {
		return err
	}

	L, err := newSandbox()
	if err != nil {
		return &RuntimeError{Script: name, Msg: err.Error(), Err: err}
	}

	env := &native.Env{
		Slot:     e.slot,
		ScriptID: name,
		Args:     args,
		Hooks:    e.hooks,
	}
	native.Register(L, env)

	L.Push(L.NewFunctionFromProto(proto))
	if err := L.PCall(0, 0, nil); err != nil {
		L.Close()
		return &RuntimeError{Script: name, Msg: err.Error(), Err: env.TakeFault()}
	}
	if _, ok := L.GetGlobal(entryName).(*lua.LFunction); !ok {
		L.Close()
		return &RuntimeError{Script: name, Msg: entryName + " is not defined"}
	}
	gen, ok := L.GetGlobal(genName).(*lua.LFunction)
	if !ok {
		L.Close()
		return &RuntimeError{Script: name, Msg: genName + " was overwritten"}
	}

	co, cancel := L.NewThread()
	e.scope = &scope{
		name:   name,
		L:      L,
		co:     co,
		cancel: cancel,
		gen:    gen,
		args:   bridge.ArgsTable(L, args),
		env:    env,
	}
	e.log.Debug("script started", zap.String("script", name), zap.Int("args", len(args)))
	return nil
}

// Next hands st to the script and resumes it. It returns the yield the script
// paused at, or nil when the script finished. On finish or error the scope is
// closed. st.ScriptExec.Response, if set, is the value the script resumes
// with.
func (e *Engine) Next(ctx context.Context, st *types.State) (*types.ScriptYield, error) {
	sc := e.scope
	if sc == nil {
		return nil, ErrNoScript
	}

	resume := lua.LValue(lua.LNil)
	if st.ScriptExec.Response != nil {
		resume = bridge.ToScript(*st.ScriptExec.Response)
	}

	var (
		rs      lua.ResumeState
		rerr    error
		values  []lua.LValue
		stepErr error
	)
	err := e.slot.Enter(st, func() error {
		stepCtx := ctx
		if e.stepTimeout > 0 {
			var cancel context.CancelFunc
			stepCtx, cancel = context.WithTimeout(ctx, e.stepTimeout)
			defer cancel()
		}
		sc.co.SetContext(stepCtx)
		defer sc.co.RemoveContext()

		// A fault caught by pcall in an earlier step is stale.
		_ = sc.env.TakeFault()

		if sc.started {
			rs, rerr, values = sc.L.Resume(sc.co, sc.gen, resume)
		} else {
			sc.started = true
			rs, rerr, values = sc.L.Resume(sc.co, sc.gen, sc.args)
		}
		stepErr = stepCtx.Err()
		return nil
	})
	e.events = append(e.events, sc.env.TakeEvents()...)
	if err != nil {
		// The slot is busy; the scope is untouched.
		return nil, err
	}

	switch rs {
	case lua.ResumeOK:
		e.log.Debug("script finished", zap.String("script", sc.name))
		e.close()
		return nil, nil

	case lua.ResumeYield:
		y, err := decodeYield(values)
		if err != nil {
			e.close()
			return nil, &RuntimeError{Script: sc.name, Msg: err.Error(), Err: err}
		}
		e.log.Debug("script yielded", zap.String("script", sc.name), zap.String("tag", string(y.Tag)))
		return y, nil

	default:
		msg := "unknown error"
		if rerr != nil {
			msg = rerr.Error()
		}
		fault := sc.env.TakeFault()
		if fault != nil && !strings.Contains(msg, fault.Error()) {
			// The native error was caught; this one has another cause.
			fault = nil
		}
		if fault == nil {
			fault = stepErr
		}
		e.close()
		return nil, &RuntimeError{Script: sc.name, Msg: msg, Err: fault}
	}
}

func decodeYield(values []lua.LValue) (*types.ScriptYield, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("yield without a value: %w", suspend.ErrInvalid)
	}
	tree, err := bridge.ToWire(values[0])
	if err != nil {
		return nil, err
	}
	return suspend.DecodeTree(tree)
}

// TakeEvents returns the events emitted by natives since the last call.
func (e *Engine) TakeEvents() []types.Event {
	evs := e.events
	e.events = nil
	return evs
}

// Abandon drops the running scope without resuming it again.
func (e *Engine) Abandon() {
	if e.scope == nil {
		return
	}
	e.log.Debug("script abandoned", zap.String("script", e.scope.name))
	e.close()
}

func (e *Engine) close() {
	sc := e.scope
	e.scope = nil
	if sc.cancel != nil {
		sc.cancel()
	}
	sc.L.Close()
}
