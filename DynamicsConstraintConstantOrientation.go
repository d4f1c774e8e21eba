package simbody

/// A frame RB fixed on base body B and a frame RF fixed on follower body F
/// must keep the same orientation: three holonomic equations. At runtime the
/// independent equations enforce perpendicularity between staggered axis
/// pairs:
///   RFx . RBy = 0,  RFy . RBz = 0,  RFz . RBx = 0
/// These are three constant-angle equations at 90 degrees. They are also
/// satisfied by certain antiparallel-axis configurations, so they are not fit
/// for initial assembly, only for holding an assembled orientation.
///
/// With all axes expressed in A:
///   verr_i = (w_AF - w_AB) . (RFa_i x RBb_i)
///   aerr_i = (b_AF - b_AB) . (RFa_i x RBb_i)
///          + (w_AF - w_AB) . ((w_AF x RFa_i) x RBb_i - (w_AB x RBb_i) x RFa_i)
type ConstantOrientationConstraint struct {
	Constraint

	B ConstrainedBodyIndex // base
	F ConstrainedBodyIndex // follower

	DefaultRB Rotation // fixed to B, expressed in B
	DefaultRF Rotation // fixed to F, expressed in F
}

func MakeConstantOrientationConstraint(baseBody, followerBody MobilizedBodyIndex, rB, rF Rotation) *ConstantOrientationConstraint {
	co := &ConstantOrientationConstraint{
		Constraint: MakeConstraint(3, 0, 0),
		DefaultRB:  rB,
		DefaultRF:  rF,
	}
	co.B = co.AddConstrainedBody(baseBody)
	co.F = co.AddConstrainedBody(followerBody)
	return co
}

func (co *ConstantOrientationConstraint) SetDefaultBaseRotation(r Rotation) {
	co.InvalidateTopologyCache()
	co.DefaultRB = r
}

func (co *ConstantOrientationConstraint) SetDefaultFollowerRotation(r Rotation) {
	co.InvalidateTopologyCache()
	co.DefaultRF = r
}

/// The three staggered axis pairs (RFx,RBy), (RFy,RBz), (RFz,RBx), with both
/// frames re-expressed in A.
func (co *ConstantOrientationConstraint) axisPairsInA(rAB, rAF Rotation) (f, b [3]Vec3) {
	rb := RotationMul(rAB, co.DefaultRB)
	rf := RotationMul(rAF, co.DefaultRF)
	f = [3]Vec3{rf.Ex, rf.Ey, rf.Ez}
	b = [3]Vec3{rb.Ey, rb.Ez, rb.Ex}
	return f, b
}

func (co *ConstantOrientationConstraint) RealizePositionErrors(s *State, pc *PositionCache, mp int, perr []float64) {
	Assert(mp == 3 && len(perr) >= 3)

	f, b := co.axisPairsInA(co.GetBodyRotationFromCache(pc, co.B), co.GetBodyRotationFromCache(pc, co.F))
	for i := 0; i < 3; i++ {
		perr[i] = Vec3Dot(f[i], b[i])
	}
}

func (co *ConstantOrientationConstraint) RealizePositionDotErrors(s *State, vc *VelocityCache, mp int, pverr []float64) {
	Assert(mp == 3 && len(pverr) >= 3)
	f, b := co.axisPairsInA(co.GetBodyRotation(s, co.B), co.GetBodyRotation(s, co.F))

	wAB := co.GetBodyAngularVelocityFromCache(vc, co.B)
	wAF := co.GetBodyAngularVelocityFromCache(vc, co.F)
	wBF := Vec3Sub(wAF, wAB)

	for i := 0; i < 3; i++ {
		pverr[i] = Vec3Dot(wBF, Vec3Cross(f[i], b[i]))
	}
}

func (co *ConstantOrientationConstraint) RealizePositionDotDotErrors(s *State, ac *AccelerationCache, mp int, paerr []float64) {
	Assert(mp == 3 && len(paerr) >= 3)
	f, b := co.axisPairsInA(co.GetBodyRotation(s, co.B), co.GetBodyRotation(s, co.F))

	wAB := co.GetBodyAngularVelocity(s, co.B)
	wAF := co.GetBodyAngularVelocity(s, co.F)
	wBF := Vec3Sub(wAF, wAB)

	bAB := co.GetBodyAngularAccelerationFromCache(ac, co.B)
	bAF := co.GetBodyAngularAccelerationFromCache(ac, co.F)
	bBF := Vec3Sub(bAF, bAB)

	for i := 0; i < 3; i++ {
		paerr[i] = Vec3Dot(bBF, Vec3Cross(f[i], b[i])) +
			Vec3Dot(wBF,
				Vec3Sub(Vec3Cross(Vec3Cross(wAF, f[i]), b[i]), Vec3Cross(Vec3Cross(wAB, b[i]), f[i])))
	}
}

/// t_F = sum_i lambda_i * (RFa_i x RBb_i) on F, -t_F on B.
func (co *ConstantOrientationConstraint) ApplyPositionConstraintForces(s *State, mp int, multipliers []float64, bodyForcesInA []SpatialVec, mobilityForces []float64) {
	Assert(mp == 3 && len(multipliers) >= 3)
	f, b := co.axisPairsInA(co.GetBodyRotation(s, co.B), co.GetBodyRotation(s, co.F))

	var torqueFA Vec3
	for i := 0; i < 3; i++ {
		torqueFA.OperatorPlusInplace(Vec3MulScalar(multipliers[i], Vec3Cross(f[i], b[i])))
	}

	co.AddInBodyTorque(s, co.F, torqueFA, bodyForcesInA)
	co.AddInBodyTorque(s, co.B, torqueFA.OperatorNegate(), bodyForcesInA)
}
