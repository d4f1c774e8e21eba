package simbody

/// A ball (spherical) joint: a station P fixed on body B1 and a station S
/// fixed on body B2 must coincide. Three holonomic equations.
///
/// Forces are applied at S and at the material point C of B1 that is
/// instantaneously coincident with S (not at P, which differs from C whenever
/// the position constraint is violated). With p_BC = X_AB^-1 * p_AS constant
/// in B1:
///   perr = p_AS - p_AP
///   verr = v_AS - v_AC
///   aerr = a_AS - a_AC
type BallConstraint struct {
	Constraint

	B1, B2 ConstrainedBodyIndex

	DefaultPoint1 Vec3 // P on body 1, expressed in B1
	DefaultPoint2 Vec3 // S on body 2, expressed in B2

	// Visualization only.
	DefaultRadius float64
}

func MakeBallConstraint(body1, body2 MobilizedBodyIndex, point1, point2 Vec3) *BallConstraint {
	ball := &BallConstraint{
		Constraint:    MakeConstraint(3, 0, 0),
		DefaultPoint1: point1,
		DefaultPoint2: point2,
		DefaultRadius: 0.1,
	}
	ball.B1 = ball.AddConstrainedBody(body1)
	ball.B2 = ball.AddConstrainedBody(body2)
	return ball
}

func (ball *BallConstraint) SetDefaultPoint1(p Vec3) {
	ball.InvalidateTopologyCache()
	ball.DefaultPoint1 = p
}

func (ball *BallConstraint) SetDefaultPoint2(p Vec3) {
	ball.InvalidateTopologyCache()
	ball.DefaultPoint2 = p
}

func (ball *BallConstraint) SetDefaultRadius(r float64) {
	ball.InvalidateTopologyCache()
	if r > 0 {
		ball.DefaultRadius = r
	} else {
		ball.DefaultRadius = 0
	}
}

func (ball *BallConstraint) GetDefaultRadius() float64 {
	return ball.DefaultRadius
}

/// perr = p_AS - p_AP. This is the constant of integration of verr; the
/// (p_AS - p_AC) term is identically zero by construction of C.
func (ball *BallConstraint) RealizePositionErrors(s *State, pc *PositionCache, mp int, perr []float64) {
	Assert(mp == 3 && len(perr) >= 3)

	pAP := ball.CalcStationLocationFromCache(pc, ball.B1, ball.DefaultPoint1)
	pAS := ball.CalcStationLocationFromCache(pc, ball.B2, ball.DefaultPoint2)

	e := Vec3Sub(pAS, pAP)
	perr[0], perr[1], perr[2] = e.X, e.Y, e.Z
}

/// pverr = v_AS - v_AC
func (ball *BallConstraint) RealizePositionDotErrors(s *State, vc *VelocityCache, mp int, pverr []float64) {
	Assert(mp == 3 && len(pverr) >= 3)
	xAB := ball.GetBodyTransform(s, ball.B1)
	pAS := ball.CalcStationLocation(s, ball.B2, ball.DefaultPoint2)
	pBC := InvTransformPoint(xAB, pAS) // C: material point of B1 coincident with S

	vAS := ball.CalcStationVelocityFromCache(s, vc, ball.B2, ball.DefaultPoint2)
	vAC := ball.CalcStationVelocityFromCache(s, vc, ball.B1, pBC)

	e := Vec3Sub(vAS, vAC)
	pverr[0], pverr[1], pverr[2] = e.X, e.Y, e.Z
}

/// paerr = a_AS - a_AC
func (ball *BallConstraint) RealizePositionDotDotErrors(s *State, ac *AccelerationCache, mp int, paerr []float64) {
	Assert(mp == 3 && len(paerr) >= 3)
	xAB := ball.GetBodyTransform(s, ball.B1)
	pAS := ball.CalcStationLocation(s, ball.B2, ball.DefaultPoint2)
	pBC := InvTransformPoint(xAB, pAS)

	aAS := ball.CalcStationAccelerationFromCache(s, ac, ball.B2, ball.DefaultPoint2)
	aAC := ball.CalcStationAccelerationFromCache(s, ac, ball.B1, pBC)

	e := Vec3Sub(aAS, aAC)
	paerr[0], paerr[1], paerr[2] = e.X, e.Y, e.Z
}

/// The multipliers are the A-frame force on S of B2; the negative goes to
/// the coincident point C of B1.
func (ball *BallConstraint) ApplyPositionConstraintForces(s *State, mp int, multipliers []float64, bodyForcesInA []SpatialVec, mobilityForces []float64) {
	Assert(mp == 3 && len(multipliers) >= 3)

	xAB := ball.GetBodyTransform(s, ball.B1)
	pFS := ball.DefaultPoint2
	pAS := ball.CalcStationLocation(s, ball.B2, pFS)
	pBC := InvTransformPoint(xAB, pAS)

	forceA := MakeVec3(multipliers[0], multipliers[1], multipliers[2])

	ball.AddInStationForce(s, ball.B2, pFS, forceA, bodyForcesInA)
	ball.AddInStationForce(s, ball.B1, pBC, forceA.OperatorNegate(), bodyForcesInA)
}
