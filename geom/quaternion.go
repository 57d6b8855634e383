package geom

import "math"

type Vector4 struct {
	X Element
	Y Element
	Z Element
	W Element
}

type Quaternion = Vector4

func NewVector4(x, y, z, w float32) *Vector4 {
	return &Vector4{X: x, Y: y, Z: z, W: w}
}

func NewQuaternion(x, y, z, w float32) *Vector4 {
	return &Vector4{X: x, Y: y, Z: z, W: w}
}

func NewQuaternionFromArray(arr [4]Element) *Vector4 {
	return &Vector4{X: arr[0], Y: arr[1], Z: arr[2], W: arr[3]}
}

func NewQuaternionFromSlice(arr []Element) *Vector4 {
	return &Vector4{X: arr[0], Y: arr[1], Z: arr[2], W: arr[3]}
}

// NewQuaternionFromAxisAngle returns rotation around normalized axis.
func NewQuaternionFromAxisAngle(axis *Vector3, rad float64) *Quaternion {
	s := Element(math.Sin(rad / 2))
	return &Vector4{X: axis.X * s, Y: axis.Y * s, Z: axis.Z * s, W: Element(math.Cos(rad / 2))}
}

func (v *Vector4) Add(v2 *Vector4) *Vector4 {
	return &Vector4{X: v.X + v2.X, Y: v.Y + v2.Y, Z: v.Z + v2.Z, W: v.W + v2.W}
}

func (v *Vector4) Sub(v2 *Vector4) *Vector4 {
	return &Vector4{X: v.X - v2.X, Y: v.Y - v2.Y, Z: v.Z - v2.Z, W: v.W - v2.W}
}

func (v *Vector4) Scale(s Element) *Vector4 {
	return &Vector4{X: v.X * s, Y: v.Y * s, Z: v.Z * s, W: v.W * s}
}

func (v *Vector4) Dot(v2 *Vector4) Element {
	return v.X*v2.X + v.Y*v2.Y + v.Z*v2.Z + v.W*v2.W
}

func (v *Vector4) Len() Element {
	return Element(math.Sqrt(float64(v.X*v.X + v.Y*v.Y + v.Z*v.Z + v.W*v.W)))
}

func (v *Vector4) LenSqr() Element {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z + v.W*v.W
}

func (v *Vector4) Normalize() *Vector4 {
	l := v.Len()
	if l > 0 {
		v.X /= l
		v.Y /= l
		v.Z /= l
		v.W /= l
	} else {
		v.W = 1
	}
	return v
}

// Inverse returns conjugate. q must be a unit quaternion.
func (v *Vector4) Inverse() *Vector4 {
	return &Vector4{X: -v.X, Y: -v.Y, Z: -v.Z, W: v.W}
}

// Returns Hamilton product
func (a *Vector4) Mul(b *Vector4) *Vector4 {
	return &Vector4{
		W: a.W*b.W - a.X*b.X - a.Y*b.Y - a.Z*b.Z, // 1
		X: a.W*b.X + a.X*b.W + a.Y*b.Z - a.Z*b.Y, // i
		Y: a.W*b.Y - a.X*b.Z + a.Y*b.W + a.Z*b.X, // j
		Z: a.W*b.Z + a.X*b.Y - a.Y*b.X + a.Z*b.W, // k
	}
}

// ApplyTo rotates v.
func (q *Quaternion) ApplyTo(v *Vector3) *Vector3 {
	r := q.Mul(&Vector4{X: v.X, Y: v.Y, Z: v.Z}).Mul(q.Inverse())
	return &Vector3{X: r.X, Y: r.Y, Z: r.Z}
}

// Slerp returns spherical interpolation between a and b.
func (a *Quaternion) Slerp(b *Quaternion, t float32) *Quaternion {
	if t <= 0 {
		return &Vector4{X: a.X, Y: a.Y, Z: a.Z, W: a.W}
	}
	if t >= 1 {
		return &Vector4{X: b.X, Y: b.Y, Z: b.Z, W: b.W}
	}
	bb := *b
	cos := float64(a.Dot(&bb))
	if cos < 0 {
		bb = Vector4{X: -b.X, Y: -b.Y, Z: -b.Z, W: -b.W}
		cos = -cos
	}
	if cos > 1-1e-6 {
		// nearly parallel
		return a.Add(bb.Sub(a).Scale(t)).Normalize()
	}
	theta := math.Acos(cos)
	sin := math.Sin(theta)
	s0 := Element(math.Sin((1-float64(t))*theta) / sin)
	s1 := Element(math.Sin(float64(t)*theta) / sin)
	return a.Scale(s0).Add(bb.Scale(s1))
}

func (v *Vector4) ToArray(array []Element) {
	array[0] = v.X
	array[1] = v.Y
	array[2] = v.Z
	array[3] = v.W
}
