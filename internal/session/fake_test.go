package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var errConnClosed = errors.New("use of closed connection")

type fakeConn struct {
	lines  chan string
	errc   chan error
	closed chan struct{}
	once   sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		lines:  make(chan string, 64),
		errc:   make(chan error, 1),
		closed: make(chan struct{}),
	}
}

func (f *fakeConn) ReadLine() (string, error) {
	select {
	case l := <-f.lines:
		return l, nil
	case err := <-f.errc:
		return "", err
	case <-f.closed:
		return "", errConnClosed
	}
}

func (f *fakeConn) Close() error {
	f.once.Do(func() { close(f.closed) })
	return nil
}

func (f *fakeConn) isClosed() bool {
	select {
	case <-f.closed:
		return true
	default:
		return false
	}
}

// fakeRemote is an in-memory panel.
type fakeRemote struct {
	mu          sync.Mutex
	running     bool
	tunnel      TunnelState
	statusErr   error
	statusCalls int
	blockStatus chan struct{} // when set, process status fetches wait on it
	pending     int

	actions    []string
	actionErrs map[string]error
	actionGate chan struct{} // when set, actions wait on it
	ports      []int

	commands   []string
	commandErr error

	dialErr  error
	dialGate chan struct{}
	conns    []*fakeConn
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{actionErrs: make(map[string]error)}
}

func (r *fakeRemote) setRunning(running bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.running = running
}

func (r *fakeRemote) GetProcessStatus(ctx context.Context, processID string) (RunState, error) {
	r.mu.Lock()
	r.statusCalls++
	block := r.blockStatus
	r.mu.Unlock()

	if block != nil {
		r.mu.Lock()
		r.pending++
		r.mu.Unlock()
		<-block
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.statusErr != nil {
		return RunState{}, r.statusErr
	}
	return RunState{Running: r.running}, nil
}

func (r *fakeRemote) GetTunnelStatus(ctx context.Context) (TunnelState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tunnel, nil
}

func (r *fakeRemote) record(name string) error {
	r.mu.Lock()
	gate := r.actionGate
	r.mu.Unlock()
	if gate != nil {
		<-gate
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, name)
	return r.actionErrs[name]
}

func (r *fakeRemote) PostProcessAction(ctx context.Context, processID string, kind ActionKind) error {
	return r.record(fmt.Sprintf("process:%s", kind))
}

func (r *fakeRemote) PostTunnelAction(ctx context.Context, kind ActionKind, port int) error {
	r.mu.Lock()
	r.ports = append(r.ports, port)
	r.mu.Unlock()
	return r.record(fmt.Sprintf("tunnel:%s", kind))
}

func (r *fakeRemote) PostCommand(ctx context.Context, processID, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, text)
	return r.commandErr
}

func (r *fakeRemote) OpenLogStream(ctx context.Context, processID string) (LogConn, error) {
	r.mu.Lock()
	gate := r.dialGate
	r.mu.Unlock()
	if gate != nil {
		<-gate
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.dialErr != nil {
		return nil, r.dialErr
	}
	conn := newFakeConn()
	r.conns = append(r.conns, conn)
	return conn, nil
}

func (r *fakeRemote) actionLog() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.actions...)
}

func (r *fakeRemote) commandLog() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.commands...)
}

func (r *fakeRemote) dialCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

func (r *fakeRemote) lastConn() *fakeConn {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.conns) == 0 {
		return nil
	}
	return r.conns[len(r.conns)-1]
}

func (r *fakeRemote) statusCallCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.statusCalls
}

func (r *fakeRemote) pendingFetches() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending
}

type fakeRegistry map[string]ManagedProcess

func (f fakeRegistry) Resolve(ctx context.Context, id string) (ManagedProcess, error) {
	p, ok := f[id]
	if !ok {
		return ManagedProcess{}, fmt.Errorf("unknown server %q", id)
	}
	return p, nil
}
