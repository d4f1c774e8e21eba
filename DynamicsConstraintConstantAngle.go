package simbody

import "math"

/// The angle between a unit vector b fixed on base body B and a unit vector
/// f fixed on follower body F is held constant: one holonomic equation on
/// cos(theta). Well conditioned away from 0 and 180 degrees, best at 90.
/// Aligning two axes outright needs two equations, not this one.
///
/// All vectors below are expressed in A:
///   perr = b . f - cos(theta)
///   verr = (w_AF - w_AB) . (f x b)
///   aerr = (b_AF - b_AB) . (f x b)
///        + (w_AF - w_AB) . ((w_AF x f) x b - (w_AB x b) x f)
type ConstantAngleConstraint struct {
	Constraint

	B ConstrainedBodyIndex // base
	F ConstrainedBodyIndex // follower

	DefaultAxisB Vec3 // unit, fixed in B, expressed in B
	DefaultAxisF Vec3 // unit, fixed in F, expressed in F
	DefaultAngle float64

	// Visualization only.
	AxisLength    float64
	AxisThickness float64

	// Topology cache.
	cosineOfDefaultAngle float64
}

func MakeConstantAngleConstraint(baseBody, followerBody MobilizedBodyIndex, axisB, axisF Vec3, angle float64) *ConstantAngleConstraint {
	ca := &ConstantAngleConstraint{
		Constraint:           MakeConstraint(1, 0, 0),
		DefaultAxisB:         UnitVec3(axisB),
		DefaultAxisF:         UnitVec3(axisF),
		DefaultAngle:         angle,
		AxisLength:           1,
		AxisThickness:        1,
		cosineOfDefaultAngle: math.NaN(),
	}
	ca.B = ca.AddConstrainedBody(baseBody)
	ca.F = ca.AddConstrainedBody(followerBody)
	return ca
}

func (ca *ConstantAngleConstraint) SetDefaultAxisB(axis Vec3) {
	ca.InvalidateTopologyCache()
	ca.DefaultAxisB = UnitVec3(axis)
}

func (ca *ConstantAngleConstraint) SetDefaultAxisF(axis Vec3) {
	ca.InvalidateTopologyCache()
	ca.DefaultAxisF = UnitVec3(axis)
}

/// Invalidates Topology: the cosine is cached when Topology is realized.
func (ca *ConstantAngleConstraint) SetDefaultAngle(angle float64) {
	ca.InvalidateTopologyCache()
	ca.DefaultAngle = angle
}

func (ca *ConstantAngleConstraint) SetAxisDisplayLength(length float64) {
	ca.InvalidateTopologyCache()
	if length > 0 {
		ca.AxisLength = length
	} else {
		ca.AxisLength = 0
	}
}

func (ca *ConstantAngleConstraint) GetAxisDisplayLength() float64 {
	return ca.AxisLength
}

func (ca *ConstantAngleConstraint) SetAxisDisplayThickness(t float64) {
	ca.InvalidateTopologyCache()
	if t > 0 {
		ca.AxisThickness = t
	} else {
		ca.AxisThickness = 0
	}
}

func (ca *ConstantAngleConstraint) GetAxisDisplayThickness() float64 {
	return ca.AxisThickness
}

func (ca *ConstantAngleConstraint) RealizeTopology(s *State) {
	ca.cosineOfDefaultAngle = math.Cos(ca.DefaultAngle)
}

/// perr = b . f - cos(theta)
func (ca *ConstantAngleConstraint) RealizePositionErrors(s *State, pc *PositionCache, mp int, perr []float64) {
	Assert(mp == 1 && len(perr) >= 1)

	bA := RotationMulVec3(ca.GetBodyRotationFromCache(pc, ca.B), ca.DefaultAxisB)
	fA := RotationMulVec3(ca.GetBodyRotationFromCache(pc, ca.F), ca.DefaultAxisF)

	perr[0] = Vec3Dot(bA, fA) - ca.cosineOfDefaultAngle
}

/// pverr = (w_AF - w_AB) . (f x b)
func (ca *ConstantAngleConstraint) RealizePositionDotErrors(s *State, vc *VelocityCache, mp int, pverr []float64) {
	Assert(mp == 1 && len(pverr) >= 1)
	bA := RotationMulVec3(ca.GetBodyRotation(s, ca.B), ca.DefaultAxisB)
	fA := RotationMulVec3(ca.GetBodyRotation(s, ca.F), ca.DefaultAxisF)
	wAB := ca.GetBodyAngularVelocityFromCache(vc, ca.B)
	wAF := ca.GetBodyAngularVelocityFromCache(vc, ca.F)

	pverr[0] = Vec3Dot(Vec3Sub(wAF, wAB), Vec3Cross(fA, bA))
}

/// paerr = (b_AF - b_AB) . (f x b)
///       + (w_AF - w_AB) . ((w_AF x f) x b - (w_AB x b) x f)
func (ca *ConstantAngleConstraint) RealizePositionDotDotErrors(s *State, ac *AccelerationCache, mp int, paerr []float64) {
	Assert(mp == 1 && len(paerr) >= 1)
	bA := RotationMulVec3(ca.GetBodyRotation(s, ca.B), ca.DefaultAxisB)
	fA := RotationMulVec3(ca.GetBodyRotation(s, ca.F), ca.DefaultAxisF)
	wAB := ca.GetBodyAngularVelocity(s, ca.B)
	wAF := ca.GetBodyAngularVelocity(s, ca.F)
	bAB := ca.GetBodyAngularAccelerationFromCache(ac, ca.B)
	bAF := ca.GetBodyAngularAccelerationFromCache(ac, ca.F)

	paerr[0] = Vec3Dot(Vec3Sub(bAF, bAB), Vec3Cross(fA, bA)) +
		Vec3Dot(Vec3Sub(wAF, wAB),
			Vec3Sub(Vec3Cross(Vec3Cross(wAF, fA), bA), Vec3Cross(Vec3Cross(wAB, bA), fA)))
}

/// Torque lambda*(f x b) on F, the negative on B.
func (ca *ConstantAngleConstraint) ApplyPositionConstraintForces(s *State, mp int, multipliers []float64, bodyForcesInA []SpatialVec, mobilityForces []float64) {
	Assert(mp == 1 && len(multipliers) >= 1)
	lambda := multipliers[0]
	bA := RotationMulVec3(ca.GetBodyRotation(s, ca.B), ca.DefaultAxisB)
	fA := RotationMulVec3(ca.GetBodyRotation(s, ca.F), ca.DefaultAxisF)
	torqueFA := Vec3MulScalar(lambda, Vec3Cross(fA, bA))

	ca.AddInBodyTorque(s, ca.F, torqueFA, bodyForcesInA)
	ca.AddInBodyTorque(s, ca.B, torqueFA.OperatorNegate(), bodyForcesInA)
}
