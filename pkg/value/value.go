// Package value implements the tagged value type carried by node pins and
// the vector/matrix operations node behaviors are built from.
//
// A Value is fixed-size and trivially copyable. The engine's only contract
// with this package is that two Values are interchangeable for memoization
// when their canonical encodings (AppendBytes) are byte-for-byte equal.
package value

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	// KindNone is the zero Value; it carries no data.
	KindNone Kind = iota
	// KindBool holds a boolean.
	KindBool
	// KindInt holds a 64-bit signed integer.
	KindInt
	// KindFloat holds a 32-bit float.
	KindFloat
	// KindVec2 holds a 2-component float vector.
	KindVec2
	// KindVec3 holds a 3-component float vector.
	KindVec3
	// KindVec4 holds a 4-component float vector.
	KindVec4
	// KindColor holds an RGBA color with 8-bit channels.
	KindColor
	// KindMatrix holds a row-major 4x4 float matrix.
	KindMatrix
	// KindString holds a string.
	KindString
	// KindObject holds an opaque object reference handle.
	KindObject
	// KindArray holds an array reference handle.
	KindArray
)

// kindNames is indexed by Kind.
var kindNames = [...]string{
	"none", "bool", "int", "float", "vec2", "vec3", "vec4",
	"color", "matrix", "string", "object", "array",
}

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// KindByName resolves a kind from its lowercase name.
// Returns KindNone, false for unknown names.
func KindByName(name string) (Kind, bool) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), true
		}
	}
	return KindNone, false
}

// lanes returns how many float lanes the kind uses.
func (k Kind) lanes() int {
	switch k {
	case KindVec2:
		return 2
	case KindVec3:
		return 3
	case KindVec4, KindColor:
		return 4
	case KindMatrix:
		return 16
	case KindFloat:
		return 1
	default:
		return 0
	}
}

// Value is the tagged union carried by pins. It is comparable with ==,
// copied by assignment, and never shares mutable state between copies.
type Value struct {
	Kind Kind
	b    bool
	i    int64
	ref  uint64
	str  string
	f    [16]float32
}

// Bool constructs a boolean Value.
func Bool(b bool) Value {
	return Value{Kind: KindBool, b: b}
}

// Int constructs an integer Value.
func Int(i int64) Value {
	return Value{Kind: KindInt, i: i}
}

// Float constructs a float Value.
func Float(f float32) Value {
	v := Value{Kind: KindFloat}
	v.f[0] = f
	return v
}

// Vec2 constructs a 2-component vector Value.
func Vec2(x, y float32) Value {
	v := Value{Kind: KindVec2}
	v.f[0], v.f[1] = x, y
	return v
}

// Vec3 constructs a 3-component vector Value.
func Vec3(x, y, z float32) Value {
	v := Value{Kind: KindVec3}
	v.f[0], v.f[1], v.f[2] = x, y, z
	return v
}

// Vec4 constructs a 4-component vector Value.
func Vec4(x, y, z, w float32) Value {
	v := Value{Kind: KindVec4}
	v.f[0], v.f[1], v.f[2], v.f[3] = x, y, z, w
	return v
}

// RGBA constructs a color Value from 8-bit channels.
func RGBA(r, g, b, a uint8) Value {
	v := Value{Kind: KindColor}
	v.f[0], v.f[1], v.f[2], v.f[3] = float32(r), float32(g), float32(b), float32(a)
	return v
}

// Mat4 constructs a 4x4 matrix Value from row-major elements.
func Mat4(m [16]float32) Value {
	return Value{Kind: KindMatrix, f: m}
}

// Identity4 returns the 4x4 identity matrix.
func Identity4() Value {
	return Mat4([16]float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	})
}

// Str constructs a string Value.
func Str(s string) Value {
	return Value{Kind: KindString, str: s}
}

// Object constructs an object-reference Value from an opaque handle.
func Object(ref uint64) Value {
	return Value{Kind: KindObject, ref: ref}
}

// Array constructs an array-reference Value from an opaque handle.
func Array(ref uint64) Value {
	return Value{Kind: KindArray, ref: ref}
}

// AsBool returns the boolean payload. Zero value for other kinds.
func (v Value) AsBool() bool {
	return v.b
}

// AsInt returns the integer payload. For KindFloat the lane is truncated.
func (v Value) AsInt() int64 {
	if v.Kind == KindFloat {
		return int64(v.f[0])
	}
	return v.i
}

// AsFloat returns the float payload. For KindInt the integer is converted.
func (v Value) AsFloat() float32 {
	if v.Kind == KindInt {
		return float32(v.i)
	}
	return v.f[0]
}

// AsVec2 returns the x, y components.
func (v Value) AsVec2() (x, y float32) {
	return v.f[0], v.f[1]
}

// AsVec3 returns the x, y, z components.
func (v Value) AsVec3() (x, y, z float32) {
	return v.f[0], v.f[1], v.f[2]
}

// AsVec4 returns the vector components as an array.
func (v Value) AsVec4() [4]float32 {
	return [4]float32{v.f[0], v.f[1], v.f[2], v.f[3]}
}

// AsRGBA returns the 8-bit color channels.
func (v Value) AsRGBA() (r, g, b, a uint8) {
	return uint8(v.f[0]), uint8(v.f[1]), uint8(v.f[2]), uint8(v.f[3])
}

// AsMat4 returns the row-major matrix elements.
func (v Value) AsMat4() [16]float32 {
	return v.f
}

// AsStr returns the string payload.
func (v Value) AsStr() string {
	return v.str
}

// AsRef returns the object/array reference handle.
func (v Value) AsRef() uint64 {
	return v.ref
}

// Equal reports whether two Values are identical, byte for byte.
func (v Value) Equal(o Value) bool {
	return v == o
}

// AppendBytes appends the canonical encoding of the value to dst and
// returns the extended slice. The encoding is deterministic: identical
// values always produce identical bytes. It is the hashing substrate for
// the memoization cache and must not change shape between releases.
func (v Value) AppendBytes(dst []byte) []byte {
	dst = append(dst, byte(v.Kind))
	switch v.Kind {
	case KindNone:
	case KindBool:
		if v.b {
			dst = append(dst, 1)
		} else {
			dst = append(dst, 0)
		}
	case KindInt:
		dst = binary.LittleEndian.AppendUint64(dst, uint64(v.i))
	case KindString:
		dst = binary.LittleEndian.AppendUint64(dst, uint64(len(v.str)))
		dst = append(dst, v.str...)
	case KindObject, KindArray:
		dst = binary.LittleEndian.AppendUint64(dst, v.ref)
	default:
		for i := 0; i < v.Kind.lanes(); i++ {
			dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v.f[i]))
		}
	}
	return dst
}

// String formats the value for logs and debug output.
func (v Value) String() string {
	switch v.Kind {
	case KindNone:
		return "none"
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindFloat:
		return fmt.Sprintf("%g", v.f[0])
	case KindVec2:
		return fmt.Sprintf("(%g, %g)", v.f[0], v.f[1])
	case KindVec3:
		return fmt.Sprintf("(%g, %g, %g)", v.f[0], v.f[1], v.f[2])
	case KindVec4:
		return fmt.Sprintf("(%g, %g, %g, %g)", v.f[0], v.f[1], v.f[2], v.f[3])
	case KindColor:
		r, g, b, a := v.AsRGBA()
		return fmt.Sprintf("#%02x%02x%02x%02x", r, g, b, a)
	case KindMatrix:
		return fmt.Sprintf("mat4[%g %g %g %g ...]", v.f[0], v.f[1], v.f[2], v.f[3])
	case KindString:
		return fmt.Sprintf("%q", v.str)
	case KindObject:
		return fmt.Sprintf("object#%d", v.ref)
	case KindArray:
		return fmt.Sprintf("array#%d", v.ref)
	}
	return "invalid"
}
