package geometry

import "fmt"

// SingularThreshold is the smallest |determinant| Inverse accepts.
const SingularThreshold = 1e-6

// Matrix2 is a row-major 2x2 matrix:
//
//	| M11 M12 |
//	| M21 M22 |
//
// Like Vector2D it is a value type and every operation returns a new matrix.
type Matrix2 struct {
	M11, M12 float32
	M21, M22 float32
}

// NewMatrix2 builds a matrix from its four entries in row-major order.
func NewMatrix2(m11, m12, m21, m22 float32) Matrix2 {
	return Matrix2{M11: m11, M12: m12, M21: m21, M22: m22}
}

// Identity returns the 2x2 identity matrix.
func Identity() Matrix2 {
	return Matrix2{M11: 1, M22: 1}
}

// ZeroMatrix returns the 2x2 zero matrix.
func ZeroMatrix() Matrix2 {
	return Matrix2{}
}

// Diagonal returns diag(a, b).
func Diagonal(a, b float32) Matrix2 {
	return Matrix2{M11: a, M22: b}
}

func (m Matrix2) String() string {
	return fmt.Sprintf("[[%.4f %.4f] [%.4f %.4f]]", m.M11, m.M12, m.M21, m.M22)
}

// MulVec returns m·v.
func (m Matrix2) MulVec(v Vector2D) Vector2D {
	return Vector2D{
		X: m.M11*v.X + m.M12*v.Y,
		Y: m.M21*v.X + m.M22*v.Y,
	}
}

// Mul returns the matrix product m·other.
func (m Matrix2) Mul(other Matrix2) Matrix2 {
	return Matrix2{
		M11: m.M11*other.M11 + m.M12*other.M21,
		M12: m.M11*other.M12 + m.M12*other.M22,
		M21: m.M21*other.M11 + m.M22*other.M21,
		M22: m.M21*other.M12 + m.M22*other.M22,
	}
}

// Transpose returns mᵗ.
func (m Matrix2) Transpose() Matrix2 {
	return Matrix2{M11: m.M11, M12: m.M21, M21: m.M12, M22: m.M22}
}

// Add returns the element-wise sum.
func (m Matrix2) Add(other Matrix2) Matrix2 {
	return Matrix2{
		M11: m.M11 + other.M11,
		M12: m.M12 + other.M12,
		M21: m.M21 + other.M21,
		M22: m.M22 + other.M22,
	}
}

// Sub returns the element-wise difference m - other.
func (m Matrix2) Sub(other Matrix2) Matrix2 {
	return Matrix2{
		M11: m.M11 - other.M11,
		M12: m.M12 - other.M12,
		M21: m.M21 - other.M21,
		M22: m.M22 - other.M22,
	}
}

// Det returns the determinant.
func (m Matrix2) Det() float32 {
	return m.M11*m.M22 - m.M12*m.M21
}

// Inverse returns m⁻¹ and true, or the zero matrix and false when
// |det| < SingularThreshold. Callers are expected to skip whatever depended on
// the inverse rather than continue with a garbage matrix.
func (m Matrix2) Inverse() (Matrix2, bool) {
	det := m.Det()
	if abs32(det) < SingularThreshold {
		return Matrix2{}, false
	}
	inv := 1 / det
	return Matrix2{
		M11: m.M22 * inv,
		M12: -m.M12 * inv,
		M21: -m.M21 * inv,
		M22: m.M11 * inv,
	}, true
}

// Eq checks if two matrices are approximately equal using the Epsilon constant.
func (m Matrix2) Eq(other Matrix2) bool {
	return abs32(m.M11-other.M11) <= Epsilon &&
		abs32(m.M12-other.M12) <= Epsilon &&
		abs32(m.M21-other.M21) <= Epsilon &&
		abs32(m.M22-other.M22) <= Epsilon
}

// IsFinite reports whether every entry is finite.
func (m Matrix2) IsFinite() bool {
	return isFinite32(m.M11) && isFinite32(m.M12) && isFinite32(m.M21) && isFinite32(m.M22)
}
