// Package profiler records nested timing scopes into a fixed-size ring and
// writes them as a speedscope (https://www.speedscope.app) evented profile.
// Recording is off until Enable is called; Start is then a few atomics.
package profiler

import (
	"sync"
	"sync/atomic"
	"time"
)

// Enable starts recording into a ring of capacity open/close events. Older
// events are overwritten once the ring is full. Calling Enable again discards
// what was recorded.
func Enable(capacity int) {
	if capacity <= 0 {
		capacity = 1 << 16
	}
	ring.init(capacity)
}

// Disable stops recording. Recorded events are kept for Write.
func Disable() { ring.ready.Store(false) }

// Enabled reports whether scopes are being recorded.
func Enabled() bool { return ring.ready.Load() }

// Start opens a scope and returns the func that closes it:
//
//	defer profiler.Start("draw")()
func Start(name string) func() {
	if !ring.ready.Load() {
		return func() {}
	}
	id := intern(name)
	at := time.Now().UnixNano()
	ring.push(event{at: at, frame: id, open: true})
	return func() {
		end := max(time.Now().UnixNano(), at)
		ring.push(event{at: end, frame: id})
	}
}

type event struct {
	at    int64
	frame int
	open  bool
}

type eventRing struct {
	ready atomic.Bool
	size  uint64
	next  atomic.Uint64
	evs   []event
}

var ring eventRing

func (r *eventRing) init(capacity int) {
	r.ready.Store(false)
	r.size = uint64(capacity)
	r.evs = make([]event, capacity)
	r.next.Store(0)
	r.ready.Store(true)
}

func (r *eventRing) push(e event) {
	i := r.next.Add(1) - 1
	r.evs[i%r.size] = e
}

// snapshot returns the retained events in write order.
func (r *eventRing) snapshot() []event {
	n := r.next.Load()
	if n == 0 || r.size == 0 {
		return nil
	}
	var start uint64
	if n > r.size {
		start = n - r.size
	}
	out := make([]event, 0, n-start)
	for k := start; k < n; k++ {
		out = append(out, r.evs[k%r.size])
	}
	return out
}

var (
	namesMu sync.Mutex
	names   []string
	ids     = map[string]int{}
)

func intern(name string) int {
	namesMu.Lock()
	defer namesMu.Unlock()
	if id, ok := ids[name]; ok {
		return id
	}
	id := len(names)
	ids[name] = id
	names = append(names, name)
	return id
}

func frameNames() []string {
	namesMu.Lock()
	defer namesMu.Unlock()
	return append([]string(nil), names...)
}
