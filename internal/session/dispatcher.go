package session

import (
	"context"
	"strings"
	"sync"

	"servctl/pkg/logging"
)

// QuickAction is a one-argument command template such as "op <player>".
type QuickAction struct {
	Title  string
	Prefix string
}

// Compose returns Prefix, a space and the trimmed argument.
func (q QuickAction) Compose(arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", ErrEmptyArgument
	}
	return q.Prefix + " " + arg, nil
}

// CommandDispatcher sends console commands to one server. It also holds the
// unsent input line and the quick action currently being filled in.
type CommandDispatcher struct {
	processID string
	sink      CommandSink

	mu    sync.Mutex
	draft string
	quick *QuickAction
}

// NewCommandDispatcher creates a dispatcher for processID.
func NewCommandDispatcher(processID string, sink CommandSink) *CommandDispatcher {
	return &CommandDispatcher{processID: processID, sink: sink}
}

// Draft returns the input line that has not been sent successfully.
func (d *CommandDispatcher) Draft() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.draft
}

// SetDraft replaces the cached input line.
func (d *CommandDispatcher) SetDraft(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.draft = text
}

// Send issues text as one console command. Blank text is ignored and
// reports false. The draft is cleared once the panel accepted the command.
func (d *CommandDispatcher) Send(ctx context.Context, text string) (bool, error) {
	if strings.TrimSpace(text) == "" {
		return false, nil
	}

	d.mu.Lock()
	d.draft = text
	d.mu.Unlock()

	if err := d.post(ctx, text); err != nil {
		return true, err
	}

	d.mu.Lock()
	if d.draft == text {
		d.draft = ""
	}
	d.mu.Unlock()
	return true, nil
}

func (d *CommandDispatcher) post(ctx context.Context, text string) error {
	if err := d.sink.PostCommand(ctx, d.processID, text); err != nil {
		logging.Error("Dispatcher", err, "command %q failed", text)
		return &Error{Kind: KindActionFailed, Target: TargetProcess, Op: "command", Err: err}
	}
	logging.Info("Dispatcher", "sent command %q to %s", text, d.processID)
	return nil
}

// OpenQuickAction starts filling in a quick action, replacing any open one.
func (d *CommandDispatcher) OpenQuickAction(title, prefix string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.quick = &QuickAction{Title: title, Prefix: prefix}
}

// QuickAction returns the open quick action.
func (d *CommandDispatcher) QuickAction() (QuickAction, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.quick == nil {
		return QuickAction{}, false
	}
	return *d.quick, true
}

// CancelQuickAction discards the open quick action.
func (d *CommandDispatcher) CancelQuickAction() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.quick = nil
}

// SubmitQuickAction composes the open quick action with arg and sends it.
// An empty argument keeps the template open; otherwise the template is
// consumed whether or not the command succeeds.
func (d *CommandDispatcher) SubmitQuickAction(ctx context.Context, arg string) (string, error) {
	d.mu.Lock()
	if d.quick == nil {
		d.mu.Unlock()
		return "", ErrNoQuickAction
	}
	text, err := d.quick.Compose(arg)
	if err != nil {
		d.mu.Unlock()
		return "", err
	}
	d.quick = nil
	d.mu.Unlock()

	return text, d.post(ctx, text)
}
