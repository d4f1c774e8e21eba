package simbody

/// A follower point S fixed on body F must stay in a plane fixed on body B:
/// one holonomic equation. The plane is given by a unit normal n (in B) and a
/// height h along n from B's origin.
///
/// Forces are applied at S and at the material point C of B instantaneously
/// coincident with S. Differentiating in the B frame (where the plane is
/// fixed) and using p_CS = 0 by construction:
///   perr = p_BC . n - h  (B-frame vectors)
///   verr = (v_AS - v_AC) . n_A
///   aerr = ((a_AS - a_AC) - 2 w_AB x (v_AS - v_AC)) . n_A
type PointInPlaneConstraint struct {
	Constraint

	PlaneBody    ConstrainedBodyIndex // B
	FollowerBody ConstrainedBodyIndex // F

	DefaultPlaneNormal   Vec3 // unit, fixed in B, expressed in B
	DefaultPlaneHeight   float64
	DefaultFollowerPoint Vec3 // S, fixed in F, expressed in F

	// Visualization only.
	PlaneHalfWidth float64
	PointRadius    float64
}

func MakePointInPlaneConstraint(planeBody, followerBody MobilizedBodyIndex, planeNormal Vec3, planeHeight float64, followerPoint Vec3) *PointInPlaneConstraint {
	pip := &PointInPlaneConstraint{
		Constraint:           MakeConstraint(1, 0, 0),
		DefaultPlaneNormal:   UnitVec3(planeNormal),
		DefaultPlaneHeight:   planeHeight,
		DefaultFollowerPoint: followerPoint,
		PlaneHalfWidth:       1,
		PointRadius:          0.05,
	}
	pip.PlaneBody = pip.AddConstrainedBody(planeBody)
	pip.FollowerBody = pip.AddConstrainedBody(followerBody)
	return pip
}

func (pip *PointInPlaneConstraint) SetDefaultPlaneNormal(n Vec3) {
	pip.InvalidateTopologyCache()
	pip.DefaultPlaneNormal = UnitVec3(n)
}

func (pip *PointInPlaneConstraint) SetDefaultPlaneHeight(h float64) {
	pip.InvalidateTopologyCache()
	pip.DefaultPlaneHeight = h
}

func (pip *PointInPlaneConstraint) SetDefaultFollowerPoint(p Vec3) {
	pip.InvalidateTopologyCache()
	pip.DefaultFollowerPoint = p
}

func (pip *PointInPlaneConstraint) SetPlaneDisplayHalfWidth(h float64) {
	pip.InvalidateTopologyCache()
	if h > 0 {
		pip.PlaneHalfWidth = h
	} else {
		pip.PlaneHalfWidth = 0
	}
}

func (pip *PointInPlaneConstraint) GetPlaneDisplayHalfWidth() float64 {
	return pip.PlaneHalfWidth
}

func (pip *PointInPlaneConstraint) SetPointDisplayRadius(r float64) {
	pip.InvalidateTopologyCache()
	if r > 0 {
		pip.PointRadius = r
	} else {
		pip.PointRadius = 0
	}
}

func (pip *PointInPlaneConstraint) GetPointDisplayRadius() float64 {
	return pip.PointRadius
}

/// perr = p_BC . n - h
func (pip *PointInPlaneConstraint) RealizePositionErrors(s *State, pc *PositionCache, mp int, perr []float64) {
	Assert(mp == 1 && len(perr) >= 1)

	xAB := pip.GetBodyTransformFromCache(pc, pip.PlaneBody)
	pAS := pip.CalcStationLocationFromCache(pc, pip.FollowerBody, pip.DefaultFollowerPoint)
	pBC := InvTransformPoint(xAB, pAS) // C: material point of B coincident with S

	perr[0] = Vec3Dot(pBC, pip.DefaultPlaneNormal) - pip.DefaultPlaneHeight
}

/// pverr = (v_AS - v_AC) . n_A
func (pip *PointInPlaneConstraint) RealizePositionDotErrors(s *State, vc *VelocityCache, mp int, pverr []float64) {
	Assert(mp == 1 && len(pverr) >= 1)
	xAB := pip.GetBodyTransform(s, pip.PlaneBody)
	pAS := pip.CalcStationLocation(s, pip.FollowerBody, pip.DefaultFollowerPoint)
	pBC := InvTransformPoint(xAB, pAS)
	nA := RotationMulVec3(xAB.R, pip.DefaultPlaneNormal)

	vAS := pip.CalcStationVelocityFromCache(s, vc, pip.FollowerBody, pip.DefaultFollowerPoint)
	vAC := pip.CalcStationVelocityFromCache(s, vc, pip.PlaneBody, pBC)

	pverr[0] = Vec3Dot(Vec3Sub(vAS, vAC), nA)
}

/// paerr = ((a_AS - a_AC) - 2 w_AB x (v_AS - v_AC)) . n_A
func (pip *PointInPlaneConstraint) RealizePositionDotDotErrors(s *State, ac *AccelerationCache, mp int, paerr []float64) {
	Assert(mp == 1 && len(paerr) >= 1)
	xAB := pip.GetBodyTransform(s, pip.PlaneBody)
	pAS := pip.CalcStationLocation(s, pip.FollowerBody, pip.DefaultFollowerPoint)
	pBC := InvTransformPoint(xAB, pAS)
	nA := RotationMulVec3(xAB.R, pip.DefaultPlaneNormal)

	wAB := pip.GetBodyAngularVelocity(s, pip.PlaneBody)
	vAS := pip.CalcStationVelocity(s, pip.FollowerBody, pip.DefaultFollowerPoint)
	vAC := pip.CalcStationVelocity(s, pip.PlaneBody, pBC)

	aAS := pip.CalcStationAccelerationFromCache(s, ac, pip.FollowerBody, pip.DefaultFollowerPoint)
	aAC := pip.CalcStationAccelerationFromCache(s, ac, pip.PlaneBody, pBC)

	rel := Vec3Sub(Vec3Sub(aAS, aAC), Vec3MulScalar(2, Vec3Cross(wAB, Vec3Sub(vAS, vAC))))
	paerr[0] = Vec3Dot(rel, nA)
}

/// f = lambda*n to S of F, -f to the coincident point C of B.
func (pip *PointInPlaneConstraint) ApplyPositionConstraintForces(s *State, mp int, multipliers []float64, bodyForcesInA []SpatialVec, mobilityForces []float64) {
	Assert(mp == 1 && len(multipliers) >= 1)
	lambda := multipliers[0]

	xAB := pip.GetBodyTransform(s, pip.PlaneBody)
	pFS := pip.DefaultFollowerPoint
	pAS := pip.CalcStationLocation(s, pip.FollowerBody, pip.DefaultFollowerPoint)
	pBC := InvTransformPoint(xAB, pAS)
	forceA := RotationMulVec3(xAB.R, Vec3MulScalar(lambda, pip.DefaultPlaneNormal))

	pip.AddInStationForce(s, pip.FollowerBody, pFS, forceA, bodyForcesInA)
	pip.AddInStationForce(s, pip.PlaneBody, pBC, forceA.OperatorNegate(), bodyForcesInA)
}
