package session

import "sync"

// LogBuffer is an ordered, append-only list of log lines. It is unbounded
// unless a capacity is set, in which case the oldest lines are evicted.
// A frozen buffer rejects further appends.
type LogBuffer struct {
	mu       sync.RWMutex
	lines    []string
	capacity int
	evicted  int
	frozen   bool
	onEvict  func(line string)
}

// NewLogBuffer creates a buffer. capacity <= 0 means unbounded.
func NewLogBuffer(capacity int) *LogBuffer {
	if capacity < 0 {
		capacity = 0
	}
	return &LogBuffer{capacity: capacity}
}

// OnEvict registers a hook called for every line dropped by the capacity limit.
func (b *LogBuffer) OnEvict(fn func(line string)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onEvict = fn
}

// Append adds line to the end. It reports false when the buffer is frozen.
func (b *LogBuffer) Append(line string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.frozen {
		return false
	}
	b.lines = append(b.lines, line)
	if b.capacity > 0 && len(b.lines) > b.capacity {
		drop := len(b.lines) - b.capacity
		if b.onEvict != nil {
			for _, l := range b.lines[:drop] {
				b.onEvict(l)
			}
		}
		b.lines = append(b.lines[:0:0], b.lines[drop:]...)
		b.evicted += drop
	}
	return true
}

// Freeze makes the buffer immutable.
func (b *LogBuffer) Freeze() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.frozen = true
}

// Frozen reports whether the buffer is frozen.
func (b *LogBuffer) Frozen() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.frozen
}

// Lines returns a copy of the buffered lines.
func (b *LogBuffer) Lines() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}

// Len returns the number of buffered lines.
func (b *LogBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.lines)
}

// Evicted returns how many lines the capacity limit has dropped.
func (b *LogBuffer) Evicted() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.evicted
}
