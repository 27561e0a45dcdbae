package internal

import "context"

type TimerKind string

const (
	TimerCountdown TimerKind = "countdown"
	TimerRound     TimerKind = "round"
	TimerAdvance   TimerKind = "advance"
)

type timerHandle struct {
	gen    uint64
	cancel context.CancelFunc
}

// RoomTimers owns the timer handles of one room: at most one live timer per
// kind. It is not safe for concurrent use; callers hold the room's Mu.
//
// Cancelling only stops new firings. A callback that was already running must
// check IsCurrent with the generation it was started with before acting.
type RoomTimers struct {
	seq     uint64
	handles map[TimerKind]timerHandle
}

func NewRoomTimers() *RoomTimers {
	return &RoomTimers{handles: make(map[TimerKind]timerHandle)}
}

// Start cancels any timer of the same kind and registers a new one. The
// returned context is done once the timer is cancelled or replaced.
func (t *RoomTimers) Start(kind TimerKind) (context.Context, uint64) {
	t.Cancel(kind)

	ctx, cancel := context.WithCancel(context.Background())
	t.seq++
	t.handles[kind] = timerHandle{gen: t.seq, cancel: cancel}
	return ctx, t.seq
}

// Cancel stops the timer of the given kind and reports whether one was live.
func (t *RoomTimers) Cancel(kind TimerKind) bool {
	h, ok := t.handles[kind]
	if !ok {
		return false
	}
	h.cancel()
	delete(t.handles, kind)
	return true
}

func (t *RoomTimers) CancelAll() {
	for kind := range t.handles {
		t.Cancel(kind)
	}
}

// IsCurrent reports whether gen still identifies the live timer of kind.
func (t *RoomTimers) IsCurrent(kind TimerKind, gen uint64) bool {
	h, ok := t.handles[kind]
	return ok && h.gen == gen
}

// Finish releases the handle of a timer that fired on its own. It is a no-op
// when gen is stale.
func (t *RoomTimers) Finish(kind TimerKind, gen uint64) bool {
	if !t.IsCurrent(kind, gen) {
		return false
	}
	return t.Cancel(kind)
}

// Current returns the generation of the live timer of kind.
func (t *RoomTimers) Current(kind TimerKind) (uint64, bool) {
	h, ok := t.handles[kind]
	return h.gen, ok
}

func (t *RoomTimers) Active(kind TimerKind) bool {
	_, ok := t.handles[kind]
	return ok
}

func (t *RoomTimers) Len() int {
	return len(t.handles)
}
