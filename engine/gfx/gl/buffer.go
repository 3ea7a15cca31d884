package glbackend

import (
	"fmt"
	"reflect"
	"slices"
	"unsafe"

	"github.com/google/uuid"
	"golang.org/x/exp/constraints"
)

// Buffer owns one GPU buffer object bound to a fixed target.
type Buffer struct {
	_         noCopy
	ctx       *Context
	id        uuid.UUID
	handle    uint32
	target    BufferTarget
	size      int
	count     int
	usage     Usage
	indexType ElementType
}

// NewBuffer allocates an empty buffer for target.
func (c *Context) NewBuffer(target BufferTarget) *Buffer {
	b := &Buffer{ctx: c, target: target}
	b.handle = c.drv.GenBuffer()
	b.id = c.track(KindBuffer, b.handle, b.Destroy)
	return b
}

// Upload replaces the whole content of b with records. T must be a
// fixed-size numeric type or a struct/array of them without padding.
func Upload[T any](b *Buffer, records []T, usage Usage) error {
	if _, err := packedSize(reflect.TypeFor[T]()); err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	return b.upload(recordBytes(records), len(records), usage)
}

// UploadIndices replaces the content of an element-array buffer and records
// the index type for later indexed draws.
func UploadIndices[T constraints.Unsigned](b *Buffer, indices []T, usage Usage) error {
	if b.target != ElementArrayBuffer {
		return fmt.Errorf("upload indices into %s buffer: %w", b.target, ErrInvalidLayout)
	}
	var zero T
	var it ElementType
	switch unsafe.Sizeof(zero) {
	case 1:
		it = Uint8
	case 2:
		it = Uint16
	case 4:
		it = Uint32
	default:
		return fmt.Errorf("upload indices: %T is too wide for an index", zero)
	}
	if err := b.upload(recordBytes(indices), len(indices), usage); err != nil {
		return err
	}
	b.indexType = it
	return nil
}

// UploadBytes replaces the content of b with raw bytes.
func (b *Buffer) UploadBytes(data []byte, usage Usage) error {
	return b.upload(data, len(data), usage)
}

func recordBytes[T any](records []T) []byte {
	if len(records) == 0 {
		return nil
	}
	n := len(records) * int(unsafe.Sizeof(records[0]))
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(records))), n)
}

func (b *Buffer) upload(data []byte, count int, usage Usage) error {
	if b.handle == 0 {
		return ErrDestroyed
	}
	d := b.ctx.drv
	// Errors raised by earlier calls would otherwise be blamed on this upload.
	for _, code := range b.ctx.drainErrors() {
		b.ctx.log.Debug("discarding earlier driver error", "code", fmt.Sprintf("%#x", code))
	}
	if b.target == ElementArrayBuffer {
		// The element binding is vertex-array state; keep it off whatever
		// vertex array happens to be bound.
		d.BindVertexArray(0)
	}
	d.BindBuffer(b.target, b.handle)
	d.BufferData(b.target, data, usage)
	if codes := b.ctx.drainErrors(); len(codes) > 0 {
		code := codes[0]
		if slices.Contains(codes, OutOfMemory) {
			code = OutOfMemory
		}
		return &DriverError{Op: fmt.Sprintf("upload %d bytes to %s buffer", len(data), b.target), Code: code}
	}
	b.size = len(data)
	b.count = count
	b.usage = usage
	return nil
}

// Bind binds b to its target.
func (b *Buffer) Bind() error {
	if b.handle == 0 {
		return ErrDestroyed
	}
	b.ctx.drv.BindBuffer(b.target, b.handle)
	return nil
}

func (b *Buffer) Handle() uint32       { return b.handle }
func (b *Buffer) Target() BufferTarget { return b.target }

// Size is the byte size of the last upload.
func (b *Buffer) Size() int { return b.size }

// Count is the number of records in the last upload.
func (b *Buffer) Count() int { return b.count }

// Usage is the hint given to the last upload.
func (b *Buffer) Usage() Usage { return b.usage }

// IndexType is the index element type set by UploadIndices.
func (b *Buffer) IndexType() ElementType { return b.indexType }

// Destroy deletes the buffer. Calling it again is a no-op.
func (b *Buffer) Destroy() {
	if b.handle == 0 {
		return
	}
	b.ctx.drv.DeleteBuffer(b.handle)
	b.handle = 0
	b.ctx.untrack(b.id)
}
