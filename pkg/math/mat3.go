package math

// Mat3 is a 3x3 matrix in row-major order, used for the model placement
// rotation matrix. Geometric kernels work in double
// precision even though mesh vertices are stored as float32 (matching
// the STL source format), so Mat3 is float64.
type Mat3 [3][3]float64

// Identity3 returns the 3x3 identity matrix.
func Identity3() Mat3 {
	return Mat3{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
}

// TransformVec3 applies m to a float32 vertex, computing in float64 and
// rounding back down to float32 only at the end.
func (m Mat3) TransformVec3(v Vec3) Vec3 {
	x, y, z := float64(v.X), float64(v.Y), float64(v.Z)
	return Vec3{
		X: float32(m[0][0]*x + m[0][1]*y + m[0][2]*z),
		Y: float32(m[1][0]*x + m[1][1]*y + m[1][2]*z),
		Z: float32(m[2][0]*x + m[2][1]*y + m[2][2]*z),
	}
}

// Transform applies m to a double-precision point.
func (m Mat3) Transform(x, y, z float64) (rx, ry, rz float64) {
	rx = m[0][0]*x + m[0][1]*y + m[0][2]*z
	ry = m[1][0]*x + m[1][1]*y + m[1][2]*z
	rz = m[2][0]*x + m[2][1]*y + m[2][2]*z
	return
}

// Mul returns m*other.
func (m Mat3) Mul(other Mat3) Mat3 {
	var r Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = m[i][0]*other[0][j] + m[i][1]*other[1][j] + m[i][2]*other[2][j]
		}
	}
	return r
}
