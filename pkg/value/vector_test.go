package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdd4(t *testing.T) {
	got := Add4(Vec4(1, 2, 3, 4), Vec4(10, 20, 30, 40))
	assert.Equal(t, Vec4(11, 22, 33, 44), got)
}

func TestMul4(t *testing.T) {
	got := Mul4(Vec4(1, 2, 3, 4), Vec4(2, 2, 2, 2))
	assert.Equal(t, Vec4(2, 4, 6, 8), got)
}

func TestLerp4(t *testing.T) {
	a := Vec4(0, 0, 0, 0)
	b := Vec4(10, 20, 30, 40)

	assert.Equal(t, a, Lerp4(a, b, 0))
	assert.Equal(t, b, Lerp4(a, b, 1))
	assert.Equal(t, Vec4(5, 10, 15, 20), Lerp4(a, b, 0.5))
}

func TestLerp4BitReproducible(t *testing.T) {
	a := Vec4(0.1, 0.2, 0.3, 0.4)
	b := Vec4(1.7, 2.9, 3.3, 4.1)

	first := Lerp4(a, b, 0.37)
	for i := 0; i < 100; i++ {
		require.True(t, first.Equal(Lerp4(a, b, 0.37)))
	}
}

func TestMatMul4Identity(t *testing.T) {
	m := Mat4([16]float32{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
		13, 14, 15, 16,
	})

	assert.Equal(t, m, MatMul4(m, Identity4()))
	assert.Equal(t, m, MatMul4(Identity4(), m))
}

func TestMatMul4MatchesReference(t *testing.T) {
	a := Mat4([16]float32{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
		13, 14, 15, 16,
	})
	b := Mat4([16]float32{
		17, 18, 19, 20,
		21, 22, 23, 24,
		25, 26, 27, 28,
		29, 30, 31, 32,
	})

	am := a.AsMat4()
	bm := b.AsMat4()
	var want [16]float32
	for i := 0; i < 4; i++ {
		for k := 0; k < 4; k++ {
			for j := 0; j < 4; j++ {
				want[i*4+k] += am[i*4+j] * bm[j*4+k]
			}
		}
	}

	assert.Equal(t, Mat4(want), MatMul4(a, b))
}

func TestMatApply4(t *testing.T) {
	translate := Mat4([16]float32{
		1, 0, 0, 5,
		0, 1, 0, 6,
		0, 0, 1, 7,
		0, 0, 0, 1,
	})

	got := MatApply4(translate, Vec4(1, 2, 3, 1))
	assert.Equal(t, Vec4(6, 8, 10, 1), got)
}
