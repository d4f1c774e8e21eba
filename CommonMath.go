package simbody

import (
	"math"
)

/// This function is used to ensure that a floating point number is not a NaN or infinity.
func IsValid(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

///////////////////////////////////////////////////////////////////////////////
/// A 3D column vector.
///////////////////////////////////////////////////////////////////////////////
type Vec3 struct {
	X, Y, Z float64
}

func MakeVec3(xIn, yIn, zIn float64) Vec3 {
	return Vec3{
		X: xIn,
		Y: yIn,
		Z: zIn,
	}
}

/// Set this vector to all zeros.
func (v *Vec3) SetZero() {
	v.X = 0.0
	v.Y = 0.0
	v.Z = 0.0
}

/// Set this vector to some specified coordinates.
func (v *Vec3) Set(x, y, z float64) {
	v.X = x
	v.Y = y
	v.Z = z
}

/// Add a vector to this vector.
func (v *Vec3) OperatorPlusInplace(other Vec3) {
	v.X += other.X
	v.Y += other.Y
	v.Z += other.Z
}

/// Subtract a vector from this vector.
func (v *Vec3) OperatorMinusInplace(other Vec3) {
	v.X -= other.X
	v.Y -= other.Y
	v.Z -= other.Z
}

/// Multiply this vector by a scalar.
func (v *Vec3) OperatorScalarMulInplace(a float64) {
	v.X *= a
	v.Y *= a
	v.Z *= a
}

/// Negate this vector.
func (v Vec3) OperatorNegate() Vec3 {
	return MakeVec3(-v.X, -v.Y, -v.Z)
}

/// Get the length of this vector (the norm).
func (v Vec3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

/// Get the length squared. For performance, use this instead of
/// Vec3::Length (if possible).
func (v Vec3) LengthSquared() float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

/// Convert this vector into a unit vector. Returns the length.
func (v *Vec3) Normalize() float64 {
	length := v.Length()
	if length < Epsilon {
		return 0.0
	}

	invLength := 1.0 / length
	v.X *= invLength
	v.Y *= invLength
	v.Z *= invLength

	return length
}

/// Does this vector contain finite coordinates?
func (v Vec3) IsValid() bool {
	return IsValid(v.X) && IsValid(v.Y) && IsValid(v.Z)
}

/// Return an arbitrary unit vector perpendicular to this (unit) vector.
/// The choice is deterministic: cross against the coordinate axis most
/// orthogonal to v.
func (v Vec3) Perp() Vec3 {
	ax, ay, az := math.Abs(v.X), math.Abs(v.Y), math.Abs(v.Z)

	var other Vec3
	if ax <= ay && ax <= az {
		other = MakeVec3(1.0, 0.0, 0.0)
	} else if ay <= az {
		other = MakeVec3(0.0, 1.0, 0.0)
	} else {
		other = MakeVec3(0.0, 0.0, 1.0)
	}

	res := Vec3Cross(v, other)
	res.Normalize()
	return res
}

/// Add two vectors component-wise.
func Vec3Add(a, b Vec3) Vec3 {
	return MakeVec3(a.X+b.X, a.Y+b.Y, a.Z+b.Z)
}

/// Subtract two vectors component-wise.
func Vec3Sub(a, b Vec3) Vec3 {
	return MakeVec3(a.X-b.X, a.Y-b.Y, a.Z-b.Z)
}

func Vec3MulScalar(s float64, v Vec3) Vec3 {
	return MakeVec3(s*v.X, s*v.Y, s*v.Z)
}

/// Perform the dot product on two vectors.
func Vec3Dot(a, b Vec3) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

/// Perform the cross product on two vectors. Note that the cross product is
/// not associative; every formula in this package is written with an explicit
/// evaluation order that must be preserved.
func Vec3Cross(a, b Vec3) Vec3 {
	return MakeVec3(
		a.Y*b.Z-a.Z*b.Y,
		a.Z*b.X-a.X*b.Z,
		a.X*b.Y-a.Y*b.X,
	)
}

/// Normalize a direction vector supplied at construction time. It is an error
/// to supply a (near) zero direction.
func UnitVec3(v Vec3) Vec3 {
	length := v.Normalize()
	AssertMsg(length > UnitVectorTolerance, "UnitVec3: direction vector is numerically zero")
	return v
}

///////////////////////////////////////////////////////////////////////////////
/// A 3x3 rotation matrix stored as three column vectors: the axes of the
/// rotated frame expressed in the parent frame. R_AB maps vectors expressed
/// in B to the same vectors expressed in A.
///////////////////////////////////////////////////////////////////////////////
type Rotation struct {
	Ex, Ey, Ez Vec3
}

func MakeRotationIdentity() Rotation {
	return Rotation{
		Ex: MakeVec3(1.0, 0.0, 0.0),
		Ey: MakeVec3(0.0, 1.0, 0.0),
		Ez: MakeVec3(0.0, 0.0, 1.0),
	}
}

/// Construct a rotation of 'angle' radians about the given axis
/// (Rodrigues' formula). The axis is normalized first.
func MakeRotationFromAxisAngle(axis Vec3, angle float64) Rotation {
	n := UnitVec3(axis)
	s, c := math.Sin(angle), math.Cos(angle)
	t := 1.0 - c

	return Rotation{
		Ex: MakeVec3(t*n.X*n.X+c, t*n.X*n.Y+s*n.Z, t*n.X*n.Z-s*n.Y),
		Ey: MakeVec3(t*n.X*n.Y-s*n.Z, t*n.Y*n.Y+c, t*n.Y*n.Z+s*n.X),
		Ez: MakeVec3(t*n.X*n.Z+s*n.Y, t*n.Y*n.Z-s*n.X, t*n.Z*n.Z+c),
	}
}

/// Re-express a vector: returns R*v.
func RotationMulVec3(r Rotation, v Vec3) Vec3 {
	return MakeVec3(
		r.Ex.X*v.X+r.Ey.X*v.Y+r.Ez.X*v.Z,
		r.Ex.Y*v.X+r.Ey.Y*v.Y+r.Ez.Y*v.Z,
		r.Ex.Z*v.X+r.Ey.Z*v.Y+r.Ez.Z*v.Z,
	)
}

/// Inverse re-expression: returns R^T*v.
func RotationInvMulVec3(r Rotation, v Vec3) Vec3 {
	return MakeVec3(
		Vec3Dot(r.Ex, v),
		Vec3Dot(r.Ey, v),
		Vec3Dot(r.Ez, v),
	)
}

/// Compose two rotations: returns A*B.
func RotationMul(a, b Rotation) Rotation {
	return Rotation{
		Ex: RotationMulVec3(a, b.Ex),
		Ey: RotationMulVec3(a, b.Ey),
		Ez: RotationMulVec3(a, b.Ez),
	}
}

/// Return R^T, which for a rotation is also R^-1.
func RotationTranspose(r Rotation) Rotation {
	return Rotation{
		Ex: MakeVec3(r.Ex.X, r.Ey.X, r.Ez.X),
		Ey: MakeVec3(r.Ex.Y, r.Ey.Y, r.Ez.Y),
		Ez: MakeVec3(r.Ex.Z, r.Ey.Z, r.Ez.Z),
	}
}

///////////////////////////////////////////////////////////////////////////////
/// A rigid body transform X_AB: rotation R_AB plus the location of B's origin
/// measured from A's origin, expressed in A.
///////////////////////////////////////////////////////////////////////////////
type Transform struct {
	R Rotation
	P Vec3
}

func MakeTransformIdentity() Transform {
	return Transform{
		R: MakeRotationIdentity(),
		P: MakeVec3(0.0, 0.0, 0.0),
	}
}

func MakeTransform(r Rotation, p Vec3) Transform {
	return Transform{R: r, P: p}
}

/// Re-measure and re-express a point: returns X_AB * p_B, the location in A
/// of a point given in B.
func TransformPoint(x Transform, p Vec3) Vec3 {
	return Vec3Add(x.P, RotationMulVec3(x.R, p))
}

/// The inverse operation: returns ~X_AB * p_A, the location in B of a point
/// given in A.
func InvTransformPoint(x Transform, p Vec3) Vec3 {
	return RotationInvMulVec3(x.R, Vec3Sub(p, x.P))
}

/// Compose two transforms: returns X_AB * X_BC = X_AC.
func TransformMul(a, b Transform) Transform {
	return Transform{
		R: RotationMul(a.R, b.R),
		P: TransformPoint(a, b.P),
	}
}

///////////////////////////////////////////////////////////////////////////////
/// A spatial vector: a (rotational, translational) pair. Used for both body
/// velocities (angular velocity, origin velocity), body accelerations, and
/// body forces (torque, force). Both parts are expressed in the same frame.
///////////////////////////////////////////////////////////////////////////////
type SpatialVec struct {
	W Vec3 // rotational part
	V Vec3 // translational part
}

func MakeSpatialVec(w, v Vec3) SpatialVec {
	return SpatialVec{W: w, V: v}
}

func (sv *SpatialVec) SetZero() {
	sv.W.SetZero()
	sv.V.SetZero()
}

func (sv *SpatialVec) OperatorPlusInplace(other SpatialVec) {
	sv.W.OperatorPlusInplace(other.W)
	sv.V.OperatorPlusInplace(other.V)
}

func SpatialVecAdd(a, b SpatialVec) SpatialVec {
	return MakeSpatialVec(Vec3Add(a.W, b.W), Vec3Add(a.V, b.V))
}
