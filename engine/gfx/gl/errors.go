package glbackend

import (
	"errors"
	"fmt"
)

var (
	ErrEmptySource       = errors.New("empty shader source")
	ErrNoStages          = errors.New("no shader stages to link")
	ErrShaderConsumed    = errors.New("shader already linked or destroyed")
	ErrDestroyed         = errors.New("resource already destroyed")
	ErrAttributeNotFound = errors.New("attribute not found")
	ErrUniformNotFound   = errors.New("uniform not found")
	ErrInvalidLayout     = errors.New("invalid vertex layout")
	ErrPadded            = errors.New("vertex record has padding")
	ErrUnsupportedField  = errors.New("unsupported vertex field")
	ErrOutOfMemory       = errors.New("gpu out of memory")
)

// CompileError carries the compiler log of a rejected shader stage.
type CompileError struct {
	Kind ShaderKind
	Log  string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s shader compile error: %s", e.Kind, e.Log)
}

// LinkError carries the linker log of a rejected program.
type LinkError struct {
	Log string
}

func (e *LinkError) Error() string { return "program link error: " + e.Log }

// AttributeNotFoundError reports a vertex input the linked program does not
// expose, either misspelled or optimized out. It is a configuration error.
type AttributeNotFoundError struct {
	Name string
}

func (e *AttributeNotFoundError) Error() string {
	return fmt.Sprintf("attribute %q not found in program", e.Name)
}

func (e *AttributeNotFoundError) Unwrap() error { return ErrAttributeNotFound }

// LayoutError reports an attribute binding rejected before reaching the driver.
type LayoutError struct {
	Attrib VertexAttrib
	Reason string
}

func (e *LayoutError) Error() string {
	return fmt.Sprintf("attribute at location %d: %s", e.Attrib.Location, e.Reason)
}

func (e *LayoutError) Unwrap() error { return ErrInvalidLayout }

// DriverError is a non-zero GetError code observed after a driver call.
type DriverError struct {
	Op   string
	Code uint32
}

func (e *DriverError) Error() string {
	return fmt.Sprintf("%s: gl error %#x", e.Op, e.Code)
}

func (e *DriverError) Unwrap() error {
	if e.Code == OutOfMemory {
		return ErrOutOfMemory
	}
	return nil
}
