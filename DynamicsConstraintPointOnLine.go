package simbody

/// A follower point S fixed on body F must stay on a line fixed on body B:
/// two holonomic equations. The line is given by a unit direction z (in B)
/// and a point P on it (in B). This is a pair of point-in-plane constraints
/// whose planes intersect in the line: at Topology an arbitrary perpendicular
/// x to z is chosen, then y = z cross x, and the two plane normals are x and
/// y. Constraint forces act in the x-y plane.
type PointOnLineConstraint struct {
	Constraint

	LineBody     ConstrainedBodyIndex // B
	FollowerBody ConstrainedBodyIndex // F

	DefaultLineDirection Vec3 // z, unit, fixed in B, expressed in B
	DefaultPointOnLine   Vec3 // P, fixed in B, expressed in B
	DefaultFollowerPoint Vec3 // S, fixed in F, expressed in F

	// Visualization only.
	LineHalfLength float64
	PointRadius    float64

	// Topology cache.
	x, y Vec3
}

func MakePointOnLineConstraint(lineBody, followerBody MobilizedBodyIndex, lineDirection, pointOnLine, followerPoint Vec3) *PointOnLineConstraint {
	pol := &PointOnLineConstraint{
		Constraint:           MakeConstraint(2, 0, 0),
		DefaultLineDirection: UnitVec3(lineDirection),
		DefaultPointOnLine:   pointOnLine,
		DefaultFollowerPoint: followerPoint,
		LineHalfLength:       1,
		PointRadius:          0.05,
	}
	pol.LineBody = pol.AddConstrainedBody(lineBody)
	pol.FollowerBody = pol.AddConstrainedBody(followerBody)
	return pol
}

/// Invalidates Topology: the perpendicular basis x, y is derived from the
/// line direction when Topology is realized.
func (pol *PointOnLineConstraint) SetDefaultLineDirection(z Vec3) {
	pol.InvalidateTopologyCache()
	pol.DefaultLineDirection = UnitVec3(z)
}

func (pol *PointOnLineConstraint) SetDefaultPointOnLine(p Vec3) {
	pol.InvalidateTopologyCache()
	pol.DefaultPointOnLine = p
}

func (pol *PointOnLineConstraint) SetDefaultFollowerPoint(p Vec3) {
	pol.InvalidateTopologyCache()
	pol.DefaultFollowerPoint = p
}

func (pol *PointOnLineConstraint) SetLineDisplayHalfLength(h float64) {
	pol.InvalidateTopologyCache()
	if h > 0 {
		pol.LineHalfLength = h
	} else {
		pol.LineHalfLength = 0
	}
}

func (pol *PointOnLineConstraint) GetLineDisplayHalfLength() float64 {
	return pol.LineHalfLength
}

func (pol *PointOnLineConstraint) SetPointDisplayRadius(r float64) {
	pol.InvalidateTopologyCache()
	if r > 0 {
		pol.PointRadius = r
	} else {
		pol.PointRadius = 0
	}
}

func (pol *PointOnLineConstraint) GetPointDisplayRadius() float64 {
	return pol.PointRadius
}

func (pol *PointOnLineConstraint) RealizeTopology(s *State) {
	pol.x = pol.DefaultLineDirection.Perp()
	pol.y = UnitVec3(Vec3Cross(pol.DefaultLineDirection, pol.x))
}

/// perr = ((p_BS - p_BP) . x, (p_BS - p_BP) . y)
func (pol *PointOnLineConstraint) RealizePositionErrors(s *State, pc *PositionCache, mp int, perr []float64) {
	Assert(mp == 2 && len(perr) >= 2)

	xAB := pol.GetBodyTransformFromCache(pc, pol.LineBody)
	pAS := pol.CalcStationLocationFromCache(pc, pol.FollowerBody, pol.DefaultFollowerPoint)
	pBC := InvTransformPoint(xAB, pAS)
	pPC := Vec3Sub(pBC, pol.DefaultPointOnLine)

	perr[0] = Vec3Dot(pPC, pol.x)
	perr[1] = Vec3Dot(pPC, pol.y)
}

/// pverr = v_CS expressed in B, dotted with x and y.
func (pol *PointOnLineConstraint) RealizePositionDotErrors(s *State, vc *VelocityCache, mp int, pverr []float64) {
	Assert(mp == 2 && len(pverr) >= 2)
	xAB := pol.GetBodyTransform(s, pol.LineBody)
	pAS := pol.CalcStationLocation(s, pol.FollowerBody, pol.DefaultFollowerPoint)
	pBC := InvTransformPoint(xAB, pAS)

	vAS := pol.CalcStationVelocityFromCache(s, vc, pol.FollowerBody, pol.DefaultFollowerPoint)
	vAC := pol.CalcStationVelocityFromCache(s, vc, pol.LineBody, pBC)

	vCSB := RotationInvMulVec3(xAB.R, Vec3Sub(vAS, vAC))

	pverr[0] = Vec3Dot(vCSB, pol.x)
	pverr[1] = Vec3Dot(vCSB, pol.y)
}

/// paerr = (a_CS - 2 w_AB x v_CS) expressed in B, dotted with x and y.
func (pol *PointOnLineConstraint) RealizePositionDotDotErrors(s *State, ac *AccelerationCache, mp int, paerr []float64) {
	Assert(mp == 2 && len(paerr) >= 2)
	xAB := pol.GetBodyTransform(s, pol.LineBody)
	pAS := pol.CalcStationLocation(s, pol.FollowerBody, pol.DefaultFollowerPoint)
	pBC := InvTransformPoint(xAB, pAS)

	wAB := pol.GetBodyAngularVelocity(s, pol.LineBody)
	vAS := pol.CalcStationVelocity(s, pol.FollowerBody, pol.DefaultFollowerPoint)
	vAC := pol.CalcStationVelocity(s, pol.LineBody, pBC)

	aAS := pol.CalcStationAccelerationFromCache(s, ac, pol.FollowerBody, pol.DefaultFollowerPoint)
	aAC := pol.CalcStationAccelerationFromCache(s, ac, pol.LineBody, pBC)

	rel := Vec3Sub(Vec3Sub(aAS, aAC), Vec3MulScalar(2, Vec3Cross(wAB, Vec3Sub(vAS, vAC))))
	aCSB := RotationInvMulVec3(xAB.R, rel)

	paerr[0] = Vec3Dot(aCSB, pol.x)
	paerr[1] = Vec3Dot(aCSB, pol.y)
}

/// f = lambda0*x + lambda1*y (in B) to S of F, -f to the coincident point C
/// of B.
func (pol *PointOnLineConstraint) ApplyPositionConstraintForces(s *State, mp int, multipliers []float64, bodyForcesInA []SpatialVec, mobilityForces []float64) {
	Assert(mp == 2 && len(multipliers) >= 2)

	xAB := pol.GetBodyTransform(s, pol.LineBody)
	pFS := pol.DefaultFollowerPoint
	pAS := pol.CalcStationLocation(s, pol.FollowerBody, pol.DefaultFollowerPoint)
	pBC := InvTransformPoint(xAB, pAS)

	forceB := Vec3Add(Vec3MulScalar(multipliers[0], pol.x), Vec3MulScalar(multipliers[1], pol.y))
	forceA := RotationMulVec3(xAB.R, forceB)

	pol.AddInStationForce(s, pol.FollowerBody, pFS, forceA, bodyForcesInA)
	pol.AddInStationForce(s, pol.LineBody, pBC, forceA.OperatorNegate(), bodyForcesInA)
}
