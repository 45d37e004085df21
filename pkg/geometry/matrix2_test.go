package geometry

import "testing"

func TestMatrix_Constructors(t *testing.T) {
	if got := Identity(); got != (Matrix2{1, 0, 0, 1}) {
		t.Errorf("Identity() = %v", got)
	}
	if got := ZeroMatrix(); got != (Matrix2{}) {
		t.Errorf("ZeroMatrix() = %v", got)
	}
	if got := Diagonal(0.1, 0.2); got != (Matrix2{0.1, 0, 0, 0.2}) {
		t.Errorf("Diagonal(0.1, 0.2) = %v", got)
	}
}

func TestMatrix_Mul(t *testing.T) {
	a := Identity()
	b := NewMatrix2(1, 2, 3, 4)

	if got := a.Mul(b); got != b {
		t.Errorf("I.Mul(%v) = %v; want %v", b, got, b)
	}
	if got := b.Mul(a); got != b {
		t.Errorf("%v.Mul(I) = %v; want %v", b, got, b)
	}

	// [1 2; 3 4]·[1 2; 3 4] = [7 10; 15 22]
	want := NewMatrix2(7, 10, 15, 22)
	if got := b.Mul(b); got != want {
		t.Errorf("%v.Mul(%v) = %v; want %v", b, b, got, want)
	}
}

func TestMatrix_MulVec(t *testing.T) {
	m := NewMatrix2(1, 2, 3, 4)
	v := Vector2D{1, 1}
	want := Vector2D{3, 7}
	if got := m.MulVec(v); got != want {
		t.Errorf("%v.MulVec(%v) = %v; want %v", m, v, got, want)
	}
	if got := Identity().MulVec(v); got != v {
		t.Errorf("I.MulVec(%v) = %v; want %v", v, got, v)
	}
}

func TestMatrix_AddSubTranspose(t *testing.T) {
	a := NewMatrix2(1, 2, 3, 4)
	b := NewMatrix2(4, 3, 2, 1)

	if got := a.Add(b); got != NewMatrix2(5, 5, 5, 5) {
		t.Errorf("%v.Add(%v) = %v", a, b, got)
	}
	if got := a.Sub(b); got != NewMatrix2(-3, -1, 1, 3) {
		t.Errorf("%v.Sub(%v) = %v", a, b, got)
	}
	if got := a.Transpose(); got != NewMatrix2(1, 3, 2, 4) {
		t.Errorf("%v.Transpose() = %v", a, got)
	}
	if got := a.Transpose().Transpose(); got != a {
		t.Errorf("double transpose = %v; want %v", got, a)
	}
}

func TestMatrix_Inverse(t *testing.T) {
	tests := []struct {
		name       string
		m          Matrix2
		invertible bool
	}{
		{"Identity", Identity(), true},
		{"General", NewMatrix2(4, 7, 2, 6), true},
		{"Diagonal", Diagonal(1.1, 1.1), true},
		{"Singular rows", NewMatrix2(1, 2, 2, 4), false},
		{"Zero", ZeroMatrix(), false},
		{"Below threshold", Diagonal(1e-4, 1e-4), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, ok := tt.m.Inverse()
			if ok != tt.invertible {
				t.Fatalf("%v.Inverse() ok = %v; want %v", tt.m, ok, tt.invertible)
			}
			if !ok {
				if inv != (Matrix2{}) {
					t.Errorf("%v.Inverse() returned %v alongside ok=false", tt.m, inv)
				}
				return
			}
			if got := inv.Mul(tt.m); !got.Eq(Identity()) {
				t.Errorf("inverse·m = %v; want identity", got)
			}
			if got := tt.m.Mul(inv); !got.Eq(Identity()) {
				t.Errorf("m·inverse = %v; want identity", got)
			}
		})
	}
}

func TestMatrix_Det(t *testing.T) {
	if got := NewMatrix2(4, 7, 2, 6).Det(); got != 10 {
		t.Errorf("Det = %v; want 10", got)
	}
	if got := NewMatrix2(1, 2, 2, 4).Det(); got != 0 {
		t.Errorf("Det singular = %v; want 0", got)
	}
}
