// Package cli provides a line-based dialogue player: it starts scripts,
// prints their talk windows and dialogs, and reads choices from the input.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/nathoo/ruinscript/engine"
	"github.com/nathoo/ruinscript/engine/dialogue"
	"github.com/nathoo/ruinscript/engine/events"
	"github.com/nathoo/ruinscript/engine/save"
	"github.com/nathoo/ruinscript/loader"
	"github.com/nathoo/ruinscript/types"
)

// CLI handles terminal interaction with the player.
type CLI struct {
	Engine    *engine.Engine
	Library   *loader.Library
	In        io.Reader
	Out       io.Writer
	SaveDir   string
	Chara     types.CharaID // target of scripts started from the prompt
	Scene     string
	Trace     bool
	EchoInput bool // echo each input line after the prompt (for script playback)

	speaker types.CharaID // who the open talk window belongs to
}

// New creates a CLI wired to the given engine.
func New(eng *engine.Engine, lib *loader.Library, saveDir string) *CLI {
	return &CLI{
		Engine:  eng,
		Library: lib,
		In:      os.Stdin,
		Out:     os.Stdout,
		SaveDir: saveDir,
	}
}

// Run loops until the input ends or /quit: prompt, input, dispatch, output.
// While no script runs, a line is a script input such as "elder" or
// "!elder(mood='calm')". While one runs, a line answers the open window.
func (c *CLI) Run(ctx context.Context) {
	if c.Library != nil {
		c.printLine("Scripts: " + strings.Join(c.Library.IDs(), ", "))
	}
	c.printLine("Type a script id to start it, or /help for commands.")

	scanner := bufio.NewScanner(c.In)
	for {
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		if strings.HasPrefix(input, "/") {
			if c.handleMeta(ctx, input) {
				return // /quit
			}
			continue
		}

		if !c.Engine.Running() {
			if input == "" {
				continue
			}
			c.show(c.Engine.StartScript(ctx, input, c.Chara, c.Scene))
			continue
		}
		c.respond(ctx, input)
	}
	c.Engine.Abandon(ctx)
}

// respond answers the open window. A talk with choices needs a 1-based
// choice number; any other window takes any line.
func (c *CLI) respond(ctx context.Context, input string) {
	talk := c.Engine.CurrentTalk()
	if talk == nil || len(talk.Choices) == 0 {
		c.show(c.Engine.AdvanceScript(ctx, nil))
		return
	}
	n, err := strconv.Atoi(input)
	if err != nil {
		c.printSystem(fmt.Sprintf("Choose 1-%d.", len(talk.Choices)))
		return
	}
	c.show(c.Engine.Choose(ctx, n-1))
}

// handleMeta dispatches meta-commands. Returns true if the player quits.
func (c *CLI) handleMeta(ctx context.Context, input string) bool {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		c.Engine.Abandon(ctx)
		c.printSystem("Goodbye.")
		return true

	case "/save":
		c.cmdSave(arg)

	case "/load":
		c.cmdLoad(ctx, arg)

	case "/target":
		c.Chara = types.CharaID(arg)
		if arg == "" {
			c.printSystem("No target.")
		} else {
			c.printSystem(fmt.Sprintf("Talking to %s.", arg))
		}

	case "/scene":
		c.Scene = arg

	case "/abandon":
		if !c.Engine.Running() {
			c.printSystem("No script is running.")
			break
		}
		c.Engine.Abandon(ctx)
		c.printSystem("Script abandoned.")

	case "/scripts":
		if c.Library != nil {
			c.printSystem(strings.Join(c.Library.IDs(), ", "))
		}

	case "/help":
		c.cmdHelp()

	case "/state":
		c.cmdState()

	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			c.printSystem("Trace output enabled.")
		} else {
			c.printSystem("Trace output disabled.")
		}

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}

	return false
}

func (c *CLI) cmdSave(name string) {
	if c.Engine.Running() {
		c.printSystem("Cannot save while a script is running.")
		return
	}
	if err := save.WriteFile(save.Path(c.SaveDir, name), c.Engine.State); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Game saved to %s.", saveName(name)))
}

func (c *CLI) cmdLoad(ctx context.Context, name string) {
	sd, err := save.ReadFile(save.Path(c.SaveDir, name))
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}
	c.Engine.Restore(ctx, &sd.State)
	c.printSystem(fmt.Sprintf("Game loaded from %s.", saveName(name)))
}

func saveName(name string) string {
	if name == "" {
		return "quicksave"
	}
	return name
}

func (c *CLI) cmdHelp() {
	help := []string{
		"System:",
		"  /save [name]     Save game (default: quicksave)",
		"  /load [name]     Load game (default: quicksave)",
		"  /target [chara]  Set the character scripts are started with",
		"  /scene [name]    Set the scene scripts are started in",
		"  /scripts         List scripts",
		"  /abandon         Stop the running script",
		"  /state           Dump money, inventory and variables",
		"  /trace           Toggle event trace output",
		"  /quit            Exit",
		"",
		"Scripts:",
		"  <id>                  Start a script",
		"  !<id>(name='x', n=1)  Start a script with arguments",
		"  <number>              Pick a choice in a talk window",
		"  <anything>            Continue a talk or close a dialog",
	}
	for _, line := range help {
		c.printLine(line)
	}
}

func (c *CLI) cmdState() {
	s := c.Engine.State
	c.printSystem(fmt.Sprintf("Money: %d", s.Player.Money))

	items := make([]string, 0, len(s.Player.Inventory))
	for id, n := range s.Player.Inventory {
		items = append(items, fmt.Sprintf("%s x %d", id, n))
	}
	sort.Strings(items)
	if len(items) == 0 {
		c.printSystem("Inventory: empty")
	} else {
		c.printSystem("Inventory: " + strings.Join(items, ", "))
	}

	var vars []string
	for name, v := range s.Vars.Global {
		vars = append(vars, fmt.Sprintf("%s = %s", name, v))
	}
	for script, ns := range s.Vars.Local {
		for name, v := range ns {
			vars = append(vars, fmt.Sprintf("%s.%s = %s", script, name, v))
		}
	}
	sort.Strings(vars)
	for _, line := range vars {
		c.printSystem(line)
	}
}

// show prints the outcome of one advance.
func (c *CLI) show(res dialogue.Result) {
	for _, n := range events.Notices(res.Events) {
		c.printLine("* " + n)
	}
	if c.Trace {
		c.printTrace(res)
	}
	if res.Err != nil {
		if errors.Is(res.Err, dialogue.ErrChoiceInvalid) {
			c.printSystem("No such choice.")
		} else {
			c.printSystem(fmt.Sprintf("Script error: %v", res.Err))
		}
	}

	switch res.Outcome {
	case dialogue.Continue:
		if res.Request != nil {
			c.showRequest(res.Request)
		}
	case dialogue.UpdateTalkText:
		c.showTalk(res.Talk)
	case dialogue.Quit:
		c.speaker = ""
		c.printSystem("End of script.")
	}
}

func (c *CLI) showRequest(req *dialogue.Request) {
	if req.Kind == dialogue.Talk {
		c.speaker = req.Chara
		c.showTalk(req.Talk)
		return
	}
	c.speaker = ""
	label := dialogLabels[req.Kind]
	if req.Chara != "" {
		label += " with " + string(req.Chara)
	}
	c.printSystem(label + ".")
}

var dialogLabels = map[dialogue.Kind]string{
	dialogue.ShopBuy:     "Shop (buy)",
	dialogue.ShopSell:    "Shop (sell)",
	dialogue.QuestOffer:  "Quest board",
	dialogue.QuestReport: "Quest report",
}

func (c *CLI) showTalk(talk *types.TalkText) {
	if talk == nil {
		return
	}
	speaker := c.speaker
	if talk.TargetChara != "" {
		speaker = talk.TargetChara
	}
	text := c.text(talk.TextID)
	if speaker != "" {
		text = string(speaker) + ": " + text
	}
	c.printLine(text)
	for i, choice := range talk.Choices {
		c.printLine(fmt.Sprintf("  %d) %s", i+1, c.text(choice)))
	}
}

func (c *CLI) text(id string) string {
	if c.Library == nil {
		return id
	}
	return c.Library.Text(id)
}

func (c *CLI) printTrace(res dialogue.Result) {
	if len(res.Events) > 0 {
		c.printSystem(fmt.Sprintf("[trace] Events: %d", len(res.Events)))
		for _, e := range res.Events {
			c.printSystem(fmt.Sprintf("[trace]   %s %v", e.Type, e.Data))
		}
	}
	c.printSystem(fmt.Sprintf("[trace] Outcome: %s", res.Outcome))
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
