package glbackend

import "fmt"

// The enum values below are the OpenGL constants, so a Driver can hand them
// straight to the native API.

// ShaderKind selects the pipeline stage a shader is compiled for.
type ShaderKind uint32

const (
	ShaderVertex   ShaderKind = 0x8B31
	ShaderFragment ShaderKind = 0x8B30
	ShaderGeometry ShaderKind = 0x8DD9
)

func (k ShaderKind) String() string {
	switch k {
	case ShaderVertex:
		return "vertex"
	case ShaderFragment:
		return "fragment"
	case ShaderGeometry:
		return "geometry"
	default:
		return fmt.Sprintf("ShaderKind(%#x)", uint32(k))
	}
}

// BufferTarget is the binding point of a buffer. It is fixed at creation.
type BufferTarget uint32

const (
	ArrayBuffer        BufferTarget = 0x8892
	ElementArrayBuffer BufferTarget = 0x8893
)

func (t BufferTarget) String() string {
	switch t {
	case ArrayBuffer:
		return "array"
	case ElementArrayBuffer:
		return "element-array"
	default:
		return fmt.Sprintf("BufferTarget(%#x)", uint32(t))
	}
}

// Usage hints the driver about how often uploaded data changes.
type Usage uint32

const (
	StaticDraw  Usage = 0x88E4
	DynamicDraw Usage = 0x88E8
	StreamDraw  Usage = 0x88E0
)

// ElementType is the scalar type of one attribute component or index.
type ElementType uint32

const (
	Int8    ElementType = 0x1400
	Uint8   ElementType = 0x1401
	Int16   ElementType = 0x1402
	Uint16  ElementType = 0x1403
	Int32   ElementType = 0x1404
	Uint32  ElementType = 0x1405
	Float32 ElementType = 0x1406
	Float64 ElementType = 0x140A
)

// Size returns the byte size of one component, or 0 for unknown types.
func (t ElementType) Size() int {
	switch t {
	case Int8, Uint8:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Float64:
		return 8
	default:
		return 0
	}
}

func (t ElementType) String() string {
	switch t {
	case Int8:
		return "int8"
	case Uint8:
		return "uint8"
	case Int16:
		return "int16"
	case Uint16:
		return "uint16"
	case Int32:
		return "int32"
	case Uint32:
		return "uint32"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return fmt.Sprintf("ElementType(%#x)", uint32(t))
	}
}

// Primitive is the topology used by a draw call.
type Primitive uint32

const (
	Points        Primitive = 0x0000
	Lines         Primitive = 0x0001
	LineStrip     Primitive = 0x0003
	Triangles     Primitive = 0x0004
	TriangleStrip Primitive = 0x0005
)

// Param names an object parameter queried with GetShaderiv/GetProgramiv.
type Param uint32

const (
	CompileStatus Param = 0x8B81
	LinkStatus    Param = 0x8B82
	InfoLogLength Param = 0x8B84
)

// StringName selects a driver string for GetString.
type StringName uint32

const (
	Vendor                 StringName = 0x1F00
	RendererName           StringName = 0x1F01
	Version                StringName = 0x1F02
	ShadingLanguageVersion StringName = 0x8B8C
)

// Driver error codes returned by GetError.
const (
	NoError          uint32 = 0
	InvalidEnum      uint32 = 0x0500
	InvalidValue     uint32 = 0x0501
	InvalidOperation uint32 = 0x0502
	OutOfMemory      uint32 = 0x0505
)

// Clear masks and capabilities.
const (
	ColorBufferBit uint32 = 0x4000
	DepthBufferBit uint32 = 0x0100
	DepthTest      uint32 = 0x0B71
	Blend          uint32 = 0x0BE2
)
