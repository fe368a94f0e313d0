// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides the interactive terminal front end for the flux
// engine: a readline-style REPL with history, styled output, and numbered
// action buttons.
//
// Interactive commands (during a session):
//
//	/help, /h      Show available commands
//	/history       Show the session transcript
//	/status, /s    Show session statistics
//	/quit, /q      Exit
//	Ctrl+C, Ctrl+D Exit
//
// Action buttons are printed as a numbered list; typing the number clicks
// the button.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/peterh/liner"

	"github.com/jeranaias/flux-engine/internal/config"
	"github.com/jeranaias/flux-engine/internal/engine"
	"github.com/jeranaias/flux-engine/internal/node"
)

// =============================================================================
// INPUT
// =============================================================================

// input wraps liner with persistent history.
type input struct {
	line        *liner.State
	historyFile string
}

func newInput() *input {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	dir, err := os.UserHomeDir()
	if err != nil {
		dir = os.TempDir()
	}
	in := &input{
		line:        line,
		historyFile: filepath.Join(dir, ".flux", "history"),
	}
	if f, err := os.Open(in.historyFile); err == nil {
		in.line.ReadHistory(f)
		f.Close()
	}
	return in
}

// read reads one line, recording non-empty input in history.
func (in *input) read(prompt string) (string, error) {
	text, err := in.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) != "" {
		in.line.AppendHistory(text)
	}
	return text, nil
}

func (in *input) close() {
	if err := os.MkdirAll(filepath.Dir(in.historyFile), 0o700); err == nil {
		if f, err := os.OpenFile(in.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600); err == nil {
			in.line.WriteHistory(f)
			f.Close()
		}
	}
	in.line.Close()
}

// =============================================================================
// REPL
// =============================================================================

// REPL is the interactive session loop.
type REPL struct {
	engine *engine.Engine
	cfg    *config.Config
	in     *input

	// lastActions are the buttons offered by the previous answer, selected
	// by number.
	lastActions []node.Action
}

// NewREPL creates the REPL for one engine session.
func NewREPL(e *engine.Engine, cfg *config.Config) *REPL {
	return &REPL{engine: e, cfg: cfg, in: newInput()}
}

// Run drives the session loop until the user exits.
func (r *REPL) Run(ctx context.Context) error {
	if !r.cfg.UI.Color {
		lipgloss.SetColorProfile(termenv.Ascii)
	} else {
		lipgloss.SetColorProfile(ColorProfile())
	}

	r.printWelcome()
	defer r.in.close()

	for {
		text, err := r.in.read(promptStyle.Render("flux> "))
		if err != nil {
			// Ctrl+C or Ctrl+D: exit gracefully.
			fmt.Println()
			r.printExitSummary()
			return nil
		}

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		if strings.HasPrefix(text, "/") {
			if !r.handleSlashCommand(text) {
				r.printExitSummary()
				return nil
			}
			continue
		}
		if strings.EqualFold(text, "exit") || strings.EqualFold(text, "quit") {
			r.printExitSummary()
			return nil
		}

		// A bare number clicks the matching action button.
		if n, err := strconv.Atoi(text); err == nil && n >= 1 && n <= len(r.lastActions) {
			r.render(r.engine.HandleAction(ctx, r.lastActions[n-1].ID))
			continue
		}

		r.render(r.engine.HandleMessage(ctx, text))
	}
}

// =============================================================================
// RENDERING
// =============================================================================

// render prints one engine response and remembers its action buttons.
func (r *REPL) render(resp engine.Response) {
	fmt.Println()

	width := TerminalWidth() - 2
	fmt.Println(assistantStyle.Width(width).Render(resp.Response))

	if resp.Component != "" {
		fmt.Println(infoStyle.Render(fmt.Sprintf("[component: %s]", resp.Component)))
	}

	r.lastActions = resp.Actions
	for i, a := range resp.Actions {
		label := a.Label
		if a.Variant == node.VariantDestructive {
			label = warningStyle.Render(label)
		} else {
			label = actionStyle.Render(label)
		}
		fmt.Printf("  [%d] %s\n", i+1, label)
	}
	if len(resp.Actions) > 0 {
		fmt.Println(infoStyle.Render("  (type a number to choose)"))
	}

	source := "local"
	if !resp.IsClientOnly {
		source = "model"
	}
	fmt.Fprintln(os.Stderr, infoStyle.Render("["+source+"]"))
	fmt.Println()
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlashCommand processes a slash command; false means exit.
func (r *REPL) handleSlashCommand(cmd string) bool {
	switch strings.ToLower(strings.Fields(cmd)[0]) {
	case "/help", "/h", "/?":
		r.printHelp()
	case "/history":
		r.printHistory()
	case "/status", "/s":
		r.printStatus()
	case "/quit", "/q", "/exit":
		return false
	default:
		fmt.Fprintln(os.Stderr, errorStyle.Render("[Error]")+" unknown command (type /help)")
	}
	return true
}

// =============================================================================
// DISPLAY
// =============================================================================

func (r *REPL) printWelcome() {
	fmt.Println()
	fmt.Println(welcomeStyle.Render("flux — the grid assistant"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 30)))
	if name := r.cfg.UI.UserName; name != "" {
		fmt.Printf("%s %s\n", infoStyle.Render("User:"), name)
	}
	fmt.Printf("%s %s\n", infoStyle.Render("Session:"), r.engine.Session().SessionID())
	fmt.Println()
	fmt.Println(infoStyle.Render("Type a message and press Enter. Commands: /help, /quit"))
	fmt.Println()
}

func (r *REPL) printHelp() {
	fmt.Println()
	commands := []struct {
		cmd  string
		desc string
	}{
		{"/help, /h", "Show this help"},
		{"/history", "Show the session transcript"},
		{"/status, /s", "Show session statistics"},
		{"/quit, /q", "Exit"},
	}
	for _, c := range commands {
		fmt.Printf("  %s  %s\n",
			actionStyle.Render(fmt.Sprintf("%-12s", c.cmd)),
			infoStyle.Render(c.desc))
	}
	fmt.Println()
	fmt.Println(infoStyle.Render("Tip: type the number of an offered button to choose it"))
	fmt.Println()
}

func (r *REPL) printHistory() {
	tr := r.engine.Transcript()
	if tr.IsEmpty() {
		fmt.Println(infoStyle.Render("[No messages yet]"))
		return
	}
	fmt.Println()
	for i, msg := range tr.Messages {
		role := promptStyle.Render("You")
		if msg.Role.String() == "assistant" {
			role = assistantStyle.Render("Flux")
		}
		fmt.Printf("  %d. %s: %s\n", i+1, role, msg.Preview(100))
	}
	fmt.Println()
}

func (r *REPL) printStatus() {
	sess := r.engine.Session()
	sctx := sess.Context()

	fmt.Println()
	fmt.Printf("  %s %s\n", infoStyle.Render("Session:"), sess.SessionID())
	fmt.Printf("  %s %s\n", infoStyle.Render("Duration:"), sess.Duration().Round(time.Second))
	fmt.Printf("  %s %d\n", infoStyle.Render("Interactions:"), sctx.InteractionCount)
	if len(sctx.LastTopics) > 0 {
		fmt.Printf("  %s %s\n", infoStyle.Render("Topics:"), strings.Join(sctx.LastTopics, ", "))
	}
	if sctx.LastProjectName != "" {
		fmt.Printf("  %s %s\n", infoStyle.Render("Last project:"), sctx.LastProjectName)
	}
	fmt.Println()
}

func (r *REPL) printExitSummary() {
	sctx := r.engine.Session().Context()
	if sctx.InteractionCount > 0 {
		fmt.Printf("%s %d interactions over %s\n",
			infoStyle.Render("Session:"),
			sctx.InteractionCount,
			r.engine.Session().Duration().Round(time.Second))
	}
	fmt.Println(infoStyle.Render("Goodbye!"))
}
