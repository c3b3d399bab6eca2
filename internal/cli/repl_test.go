package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"

	"github.com/MrSnakeDoc/vault/internal/session"
)

type fakeExec struct {
	st session.State

	calls []string
	args  []string
}

func (f *fakeExec) record(name, arg string) error {
	f.calls = append(f.calls, name)
	f.args = append(f.args, arg)
	return nil
}

func (f *fakeExec) state() session.State                     { return f.st }
func (f *fakeExec) Show(context.Context) error               { return f.record("show", "") }
func (f *fakeExec) Decline(context.Context) error            { return f.record("decline", "") }
func (f *fakeExec) Say(_ context.Context, text string) error { return f.record("say", text) }
func (f *fakeExec) SendDraft(context.Context) error          { return f.record("send", "") }
func (f *fakeExec) Save(_ context.Context, arg string) error { return f.record("save", arg) }
func (f *fakeExec) OpenJournal(context.Context) error        { return f.record("journal", "") }
func (f *fakeExec) Unlock(context.Context) error             { return f.record("unlock", "") }
func (f *fakeExec) Incinerate(context.Context) error         { return f.record("incinerate", "") }
func (f *fakeExec) Mic(context.Context) error                { return f.record("mic", "") }

func (f *fakeExec) Agree(context.Context) error {
	f.st.View = session.ViewChat
	return f.record("agree", "")
}
func (f *fakeExec) OpenSettings(context.Context) error {
	f.st.View = session.ViewSettings
	return f.record("settings", "")
}
func (f *fakeExec) Back(context.Context) error {
	f.st.View = session.ViewChat
	return f.record("back", "")
}
func (f *fakeExec) Persona(_ context.Context, id string) error { return f.record("persona", id) }
func (f *fakeExec) Buy(_ context.Context, id string) error     { return f.record("buy", id) }
func (f *fakeExec) Confirm(_ context.Context, raw string) error {
	return f.record("confirm", raw)
}
func (f *fakeExec) DismissCrisis(context.Context) error {
	f.st.Crisis = false
	return f.record("dismiss", "")
}

func quietREPL(t *testing.T) *[]string {
	t.Helper()
	var printed []string
	origPrint, origTerm := printlnFn, isTerminal
	printlnFn = func(a ...any) (int, error) {
		parts := make([]string, len(a))
		for i, v := range a {
			parts[i], _ = v.(string)
		}
		printed = append(printed, strings.Join(parts, " "))
		return 0, nil
	}
	isTerminal = func() bool { return false }
	t.Cleanup(func() { printlnFn, isTerminal = origPrint, origTerm })
	return &printed
}

func TestRunREPL_Commands(t *testing.T) {
	quietREPL(t)

	input := strings.NewReader(strings.Join([]string{
		"hello before consent",
		"/agree",
		"how are you",
		"/save 2",
		"/persona stoic",
		"/settings",
		"/buy zen",
		"/unlock",
		"/confirm https://vault.example/?success=true&personaId=zen",
		"/back",
		"/mic",
		"/send",
		"/journal",
		"/exit",
		"/agree",
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, bufio.NewScanner(input))

	want := []string{"agree", "say", "save", "persona", "settings", "buy", "unlock", "confirm", "back", "mic", "send", "journal"}
	if strings.Join(exec.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("calls = %v, want %v", exec.calls, want)
	}
	wantArgs := []string{"", "how are you", "2", "stoic", "", "zen", "", "https://vault.example/?success=true&personaId=zen", "", "", "", ""}
	for i, a := range wantArgs {
		if exec.args[i] != a {
			t.Errorf("arg %d = %q, want %q", i, exec.args[i], a)
		}
	}
}

func TestRunREPL_PlainTextOutsideChatIsNotSent(t *testing.T) {
	printed := quietREPL(t)

	exec := &fakeExec{st: session.State{View: session.ViewSettings}}
	runREPL(context.Background(), exec, bufio.NewScanner(strings.NewReader("just words\n")))

	if len(exec.calls) != 0 {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}
	if len(*printed) != 1 || !strings.Contains((*printed)[0], "/help") {
		t.Fatalf("printed = %v", *printed)
	}
}

func TestRunREPL_CrisisOnlyAcceptsDismiss(t *testing.T) {
	quietREPL(t)

	exec := &fakeExec{st: session.State{View: session.ViewChat, Crisis: true}}
	input := strings.NewReader("i feel better\n/settings\n/ok\n/settings\n")
	runREPL(context.Background(), exec, bufio.NewScanner(input))

	want := []string{"dismiss", "settings"}
	if strings.Join(exec.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("calls = %v, want %v", exec.calls, want)
	}
}

func TestRunREPL_UnknownAndQuit(t *testing.T) {
	printed := quietREPL(t)

	exec := &fakeExec{st: session.State{View: session.ViewChat}}
	runREPL(context.Background(), exec, bufio.NewScanner(strings.NewReader("/frobnicate\n/quit\nnever sent\n")))

	if len(exec.calls) != 0 {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}
	if len(*printed) != 2 || (*printed)[0] != "Unknown command: frobnicate" || (*printed)[1] != "Bye!" {
		t.Fatalf("printed = %v", *printed)
	}
}

func TestRunREPL_StopsOnCanceledContext(t *testing.T) {
	quietREPL(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	exec := &fakeExec{st: session.State{View: session.ViewChat}}
	runREPL(ctx, exec, bufio.NewScanner(strings.NewReader("hello\n")))

	if len(exec.calls) != 0 {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}
}

func TestScannerConfirm(t *testing.T) {
	quietREPL(t)

	sc := bufio.NewScanner(strings.NewReader("YES\nno\n y \n"))
	ask := ScannerConfirm(sc)
	if !ask("wipe?") {
		t.Fatal("YES should confirm")
	}
	if ask("wipe?") {
		t.Fatal("no should not confirm")
	}
	if !ask("wipe?") {
		t.Fatal("y should confirm")
	}
	if ask("wipe?") {
		t.Fatal("EOF should not confirm")
	}
}

func TestPrompt(t *testing.T) {
	if got := prompt(session.State{View: session.ViewChat, ActivePersonaID: "zen"}); got != "vault zen> " {
		t.Fatalf("prompt = %q", got)
	}
	if got := prompt(session.State{View: session.ViewChat, Crisis: true}); got != "vault (crisis)> " {
		t.Fatalf("prompt = %q", got)
	}
}
