package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/MrSnakeDoc/vault/internal/session"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// isTerminal reports whether stdin is interactive. The prompt is only
// printed for humans; piped input gets clean output.
var isTerminal = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }

// execIface defines the command surface the REPL needs.
// *App satisfies it; tests provide a lightweight stub.
type execIface interface {
	state() session.State
	Show(ctx context.Context) error
	Agree(ctx context.Context) error
	Decline(ctx context.Context) error
	Say(ctx context.Context, text string) error
	SendDraft(ctx context.Context) error
	Save(ctx context.Context, arg string) error
	OpenSettings(ctx context.Context) error
	OpenJournal(ctx context.Context) error
	Back(ctx context.Context) error
	Persona(ctx context.Context, id string) error
	Buy(ctx context.Context, id string) error
	Unlock(ctx context.Context) error
	Confirm(ctx context.Context, raw string) error
	Incinerate(ctx context.Context) error
	DismissCrisis(ctx context.Context) error
	Mic(ctx context.Context) error
}

func prompt(st session.State) string {
	if st.Crisis {
		return "vault (crisis)> "
	}
	if st.View == session.ViewChat {
		return fmt.Sprintf("vault %s> ", st.ActivePersonaID)
	}
	return fmt.Sprintf("vault [%s]> ", st.View)
}

func helpText(v session.View) string {
	switch v {
	case session.ViewOnboarding:
		return "Commands: /agree, /decline, /exit"
	case session.ViewChat:
		return "Type to talk. Commands: /save <n>, /persona <id>, /settings, /journal, /mic, /send, /confirm <url>, /show, /exit"
	case session.ViewSettings:
		return "Commands: /unlock, /buy <id>, /persona <id>, /confirm <url>, /incinerate, /back, /exit"
	case session.ViewJournal:
		return "Commands: /back, /exit"
	}
	return ""
}

// runREPL reads lines and dispatches them until EOF or /exit.
//
// Lines starting with "/" are commands; any other line in the chat view is
// sent as a message. While the crisis overlay is up only /ok, /help and
// /exit are accepted. Errors from handlers are not fatal: handlers print
// their own alerts.
func runREPL(ctx context.Context, a execIface, scanner *bufio.Scanner) {
	interactive := isTerminal()
	for {
		if ctx.Err() != nil {
			return
		}
		st := a.state()
		if interactive {
			fmt.Print(prompt(st))
		}
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if !strings.HasPrefix(line, "/") {
			if st.View == session.ViewChat && !st.Crisis {
				_ = a.Say(ctx, line)
			} else {
				printlnFn("Commands start with '/'. Type /help.")
			}
			continue
		}

		cmd, arg, _ := strings.Cut(strings.TrimPrefix(line, "/"), " ")
		arg = strings.TrimSpace(arg)

		if st.Crisis {
			switch cmd {
			case "ok", "dismiss":
				_ = a.DismissCrisis(ctx)
			case "exit", "quit":
				printlnFn("Take care. Bye!")
				return
			default:
				printlnFn("Please look at the resources above. Type /ok when you are ready to continue.")
			}
			continue
		}

		switch cmd {
		case "help":
			printlnFn(helpText(st.View))
		case "show":
			_ = a.Show(ctx)
		case "agree":
			_ = a.Agree(ctx)
		case "decline":
			_ = a.Decline(ctx)
		case "save":
			_ = a.Save(ctx, arg)
		case "send":
			_ = a.SendDraft(ctx)
		case "settings":
			_ = a.OpenSettings(ctx)
		case "journal":
			_ = a.OpenJournal(ctx)
		case "back":
			_ = a.Back(ctx)
		case "persona", "use":
			_ = a.Persona(ctx, arg)
		case "buy":
			_ = a.Buy(ctx, arg)
		case "unlock":
			_ = a.Unlock(ctx)
		case "confirm":
			_ = a.Confirm(ctx, arg)
		case "incinerate":
			_ = a.Incinerate(ctx)
		case "mic":
			_ = a.Mic(ctx)
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

// Root runs the interactive client on stdin until EOF, /exit or ctx ends.
func (a *App) Root(ctx context.Context, scanner *bufio.Scanner) {
	if a.voice != nil {
		go a.PumpVoice(ctx)
		defer a.voice.Stop()
	}
	_ = a.Show(ctx)
	runREPL(ctx, a, scanner)
}

// ScannerConfirm asks yes/no questions on the same input the REPL reads.
func ScannerConfirm(scanner *bufio.Scanner) func(string) bool {
	return func(question string) bool {
		printlnFn(question + " (yes/no)")
		if !scanner.Scan() {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "y", "yes":
			return true
		}
		return false
	}
}
