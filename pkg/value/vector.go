package value

// Vector and matrix operations over vec4 and 4x4 matrix values.
//
// These are the portable scalar reference implementations. They are pure,
// allocation-free, and bit-reproducible for a given input pair: the same
// two values always produce the same output bits on every platform. Any
// future SIMD path must match them exactly.

// Add4 returns the elementwise sum of two vec4 values.
func Add4(a, b Value) Value {
	out := Value{Kind: KindVec4}
	for i := 0; i < 4; i++ {
		out.f[i] = a.f[i] + b.f[i]
	}
	return out
}

// Mul4 returns the elementwise product of two vec4 values.
func Mul4(a, b Value) Value {
	out := Value{Kind: KindVec4}
	for i := 0; i < 4; i++ {
		out.f[i] = a.f[i] * b.f[i]
	}
	return out
}

// Lerp4 linearly interpolates between two vec4 values: a*(1-t) + b*t.
func Lerp4(a, b Value, t float32) Value {
	out := Value{Kind: KindVec4}
	omt := 1 - t
	for i := 0; i < 4; i++ {
		out.f[i] = a.f[i]*omt + b.f[i]*t
	}
	return out
}

// MatMul4 returns the product of two row-major 4x4 matrix values.
func MatMul4(a, b Value) Value {
	out := Value{Kind: KindMatrix}
	for i := 0; i < 4; i++ {
		for k := 0; k < 4; k++ {
			var sum float32
			for j := 0; j < 4; j++ {
				sum += a.f[i*4+j] * b.f[j*4+k]
			}
			out.f[i*4+k] = sum
		}
	}
	return out
}

// MatApply4 transforms a vec4 by a row-major 4x4 matrix value.
func MatApply4(m, v Value) Value {
	out := Value{Kind: KindVec4}
	for i := 0; i < 4; i++ {
		var sum float32
		for j := 0; j < 4; j++ {
			sum += m.f[i*4+j] * v.f[j]
		}
		out.f[i] = sum
	}
	return out
}
