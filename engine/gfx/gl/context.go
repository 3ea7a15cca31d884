package glbackend

import (
	"sort"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/hubastard/lumen/engine/core"
)

// Context is the explicit token for the graphics context that is current on
// the calling thread. All wrappers are created from a Context and issue their
// driver calls through it.
//
// A Context is not safe for concurrent use: exactly one thread, the one that
// owns the native context, may call into it or into any wrapper created from it.
type Context struct {
	drv  Driver
	log  *log.Logger
	live map[uuid.UUID]*liveResource
	seq  uint64
}

// Option configures a Context.
type Option func(*Context)

// WithLogger replaces the default "gl" prefixed engine logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Context) { c.log = l }
}

// NewContext wraps drv. The native context must already be current.
func NewContext(drv Driver, opts ...Option) *Context {
	c := &Context{
		drv:  drv,
		live: make(map[uuid.UUID]*liveResource),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = core.Logger().WithPrefix("gl")
	}
	return c
}

// Driver returns the underlying driver, for callers that need raw calls.
func (c *Context) Driver() Driver { return c.drv }

// Logger returns the logger used for resource lifetime messages.
func (c *Context) Logger() *log.Logger { return c.log }

// ResourceKind names the type of a tracked GPU object.
type ResourceKind int

const (
	KindShader ResourceKind = iota
	KindProgram
	KindBuffer
	KindVertexArray
)

func (k ResourceKind) String() string {
	switch k {
	case KindShader:
		return "shader"
	case KindProgram:
		return "program"
	case KindBuffer:
		return "buffer"
	case KindVertexArray:
		return "vertex-array"
	default:
		return "unknown"
	}
}

// ResourceInfo describes one live GPU object owned by a wrapper.
type ResourceInfo struct {
	ID     uuid.UUID
	Kind   ResourceKind
	Handle uint32
}

type liveResource struct {
	info    ResourceInfo
	seq     uint64
	destroy func()
}

func (c *Context) track(kind ResourceKind, handle uint32, destroy func()) uuid.UUID {
	id := uuid.New()
	c.seq++
	c.live[id] = &liveResource{
		info:    ResourceInfo{ID: id, Kind: kind, Handle: handle},
		seq:     c.seq,
		destroy: destroy,
	}
	c.log.Debug("created", "kind", kind, "handle", handle, "id", id)
	return id
}

func (c *Context) untrack(id uuid.UUID) {
	if r, ok := c.live[id]; ok {
		c.log.Debug("released", "kind", r.info.Kind, "handle", r.info.Handle, "id", id)
		delete(c.live, id)
	}
}

// maxErrorDrain bounds drainErrors against a driver that never clears its flag.
const maxErrorDrain = 16

// drainErrors reads the driver error flag until it reports NoError.
func (c *Context) drainErrors() []uint32 {
	var codes []uint32
	for range maxErrorDrain {
		code := c.drv.GetError()
		if code == NoError {
			break
		}
		codes = append(codes, code)
	}
	return codes
}

// Live lists the GPU objects that have not been released, oldest first.
func (c *Context) Live() []ResourceInfo {
	rs := c.sortedLive()
	out := make([]ResourceInfo, len(rs))
	for i, r := range rs {
		out[i] = r.info
	}
	return out
}

func (c *Context) sortedLive() []*liveResource {
	rs := make([]*liveResource, 0, len(c.live))
	for _, r := range c.live {
		rs = append(rs, r)
	}
	sort.Slice(rs, func(i, j int) bool { return rs[i].seq < rs[j].seq })
	return rs
}

// Close releases every object still alive, newest first, and logs each one
// as a leak. The context must still be current.
func (c *Context) Close() {
	rs := c.sortedLive()
	for i := len(rs) - 1; i >= 0; i-- {
		r := rs[i]
		c.log.Warn("leaked resource", "kind", r.info.Kind, "handle", r.info.Handle, "id", r.info.ID)
		r.destroy()
	}
}

// noCopy flags wrappers that must not be copied after first use (go vet copylocks).
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
