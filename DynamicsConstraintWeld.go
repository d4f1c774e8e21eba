package simbody

/// A weld: a frame fixed on body B and a frame fixed on body F must coincide
/// completely. Six holonomic equations: the first three are the staggered
/// perpendicularity equations of the constant-orientation constraint, the
/// last three are the station-coincidence equations of the ball constraint
/// applied to the frame origins.
type WeldConstraint struct {
	Constraint

	B ConstrainedBodyIndex // body 1
	F ConstrainedBodyIndex // body 2

	DefaultFrameB Transform // on body 1, relative to the B frame
	DefaultFrameF Transform // on body 2, relative to the F frame

	// Visualization only; length < 0 means use the default.
	AxisDisplayLength float64
}

func MakeWeldConstraint(body1, body2 MobilizedBodyIndex, frameB, frameF Transform) *WeldConstraint {
	weld := &WeldConstraint{
		Constraint:        MakeConstraint(6, 0, 0),
		DefaultFrameB:     frameB,
		DefaultFrameF:     frameF,
		AxisDisplayLength: -1,
	}
	weld.B = weld.AddConstrainedBody(body1)
	weld.F = weld.AddConstrainedBody(body2)
	return weld
}

func (weld *WeldConstraint) SetDefaultFrameB(x Transform) {
	weld.InvalidateTopologyCache()
	weld.DefaultFrameB = x
}

func (weld *WeldConstraint) SetDefaultFrameF(x Transform) {
	weld.InvalidateTopologyCache()
	weld.DefaultFrameF = x
}

func (weld *WeldConstraint) SetAxisDisplayLength(length float64) {
	weld.InvalidateTopologyCache()
	if length >= 0 {
		weld.AxisDisplayLength = length
	} else {
		weld.AxisDisplayLength = -1
	}
}

func (weld *WeldConstraint) GetAxisDisplayLength() float64 {
	if weld.AxisDisplayLength < 0 {
		return 1
	}
	return weld.AxisDisplayLength
}

func (weld *WeldConstraint) axisPairsInA(rAB, rAF Rotation) (f, b [3]Vec3) {
	rb := RotationMul(rAB, weld.DefaultFrameB.R)
	rf := RotationMul(rAF, weld.DefaultFrameF.R)
	f = [3]Vec3{rf.Ex, rf.Ey, rf.Ez}
	b = [3]Vec3{rb.Ey, rb.Ez, rb.Ex}
	return f, b
}

func (weld *WeldConstraint) RealizePositionErrors(s *State, pc *PositionCache, mp int, perr []float64) {
	Assert(mp == 6 && len(perr) >= 6)

	f, b := weld.axisPairsInA(weld.GetBodyRotationFromCache(pc, weld.B), weld.GetBodyRotationFromCache(pc, weld.F))
	for i := 0; i < 3; i++ {
		perr[i] = Vec3Dot(f[i], b[i])
	}

	pAF1 := weld.CalcStationLocationFromCache(pc, weld.B, weld.DefaultFrameB.P)
	pAF2 := weld.CalcStationLocationFromCache(pc, weld.F, weld.DefaultFrameF.P)

	e := Vec3Sub(pAF2, pAF1)
	perr[3], perr[4], perr[5] = e.X, e.Y, e.Z
}

func (weld *WeldConstraint) RealizePositionDotErrors(s *State, vc *VelocityCache, mp int, pverr []float64) {
	Assert(mp == 6 && len(pverr) >= 6)
	f, b := weld.axisPairsInA(weld.GetBodyRotation(s, weld.B), weld.GetBodyRotation(s, weld.F))

	wAB := weld.GetBodyAngularVelocityFromCache(vc, weld.B)
	wAF := weld.GetBodyAngularVelocityFromCache(vc, weld.F)
	wBF := Vec3Sub(wAF, wAB)

	for i := 0; i < 3; i++ {
		pverr[i] = Vec3Dot(wBF, Vec3Cross(f[i], b[i]))
	}

	xAB := weld.GetBodyTransform(s, weld.B)
	pAF2 := weld.CalcStationLocation(s, weld.F, weld.DefaultFrameF.P)
	pBC := InvTransformPoint(xAB, pAF2) // C: material point of B coincident with F's origin

	vAF2 := weld.CalcStationVelocityFromCache(s, vc, weld.F, weld.DefaultFrameF.P)
	vAC := weld.CalcStationVelocityFromCache(s, vc, weld.B, pBC)

	e := Vec3Sub(vAF2, vAC)
	pverr[3], pverr[4], pverr[5] = e.X, e.Y, e.Z
}

func (weld *WeldConstraint) RealizePositionDotDotErrors(s *State, ac *AccelerationCache, mp int, paerr []float64) {
	Assert(mp == 6 && len(paerr) >= 6)
	f, b := weld.axisPairsInA(weld.GetBodyRotation(s, weld.B), weld.GetBodyRotation(s, weld.F))

	wAB := weld.GetBodyAngularVelocity(s, weld.B)
	wAF := weld.GetBodyAngularVelocity(s, weld.F)
	wBF := Vec3Sub(wAF, wAB)

	bAB := weld.GetBodyAngularAccelerationFromCache(ac, weld.B)
	bAF := weld.GetBodyAngularAccelerationFromCache(ac, weld.F)
	bBF := Vec3Sub(bAF, bAB)

	for i := 0; i < 3; i++ {
		paerr[i] = Vec3Dot(bBF, Vec3Cross(f[i], b[i])) +
			Vec3Dot(wBF,
				Vec3Sub(Vec3Cross(Vec3Cross(wAF, f[i]), b[i]), Vec3Cross(Vec3Cross(wAB, b[i]), f[i])))
	}

	xAB := weld.GetBodyTransform(s, weld.B)
	pAF2 := weld.CalcStationLocation(s, weld.F, weld.DefaultFrameF.P)
	pBC := InvTransformPoint(xAB, pAF2)

	aAF2 := weld.CalcStationAccelerationFromCache(s, ac, weld.F, weld.DefaultFrameF.P)
	aAC := weld.CalcStationAccelerationFromCache(s, ac, weld.B, pBC)

	e := Vec3Sub(aAF2, aAC)
	paerr[3], paerr[4], paerr[5] = e.X, e.Y, e.Z
}

func (weld *WeldConstraint) ApplyPositionConstraintForces(s *State, mp int, multipliers []float64, bodyForcesInA []SpatialVec, mobilityForces []float64) {
	Assert(mp == 6 && len(multipliers) >= 6)

	f, b := weld.axisPairsInA(weld.GetBodyRotation(s, weld.B), weld.GetBodyRotation(s, weld.F))

	var torqueFA Vec3
	for i := 0; i < 3; i++ {
		torqueFA.OperatorPlusInplace(Vec3MulScalar(multipliers[i], Vec3Cross(f[i], b[i])))
	}

	weld.AddInBodyTorque(s, weld.F, torqueFA, bodyForcesInA)
	weld.AddInBodyTorque(s, weld.B, torqueFA.OperatorNegate(), bodyForcesInA)

	forceA := MakeVec3(multipliers[3], multipliers[4], multipliers[5])

	xAB := weld.GetBodyTransform(s, weld.B)
	pFF2 := weld.DefaultFrameF.P
	pAF2 := weld.CalcStationLocation(s, weld.F, pFF2)
	pBC := InvTransformPoint(xAB, pAF2)

	weld.AddInStationForce(s, weld.F, pFF2, forceA, bodyForcesInA)
	weld.AddInStationForce(s, weld.B, pBC, forceA.OperatorNegate(), bodyForcesInA)
}
