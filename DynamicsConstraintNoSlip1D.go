package simbody

/// Rolling contact along one direction: a contact point P and a no-slip
/// direction n are fixed in a case body C, and the material points of two
/// moving bodies B0 and B1 currently coincident with P must have equal
/// velocities along n. One nonholonomic equation; gear trains and rolling
/// disks are the usual applications.
///
/// Working in A (the values differ from the C-frame ones only by a constant
/// since all points are at the same spatial location):
///   verr = (v_AP1 - v_AP0) . n_A
///   aerr = (a_AP1 - a_AP0 - w_AC x (v_AP1 - v_AP0)) . n_A
type NoSlip1DConstraint struct {
	Constraint

	CaseBody    ConstrainedBodyIndex // C
	MovingBody0 ConstrainedBodyIndex // B0
	MovingBody1 ConstrainedBodyIndex // B1

	DefaultNoSlipDirection Vec3 // unit, fixed in C, expressed in C
	DefaultContactPoint    Vec3 // fixed in C, expressed in C

	// Visualization only.
	DirectionLength float64
	PointRadius     float64
}

func MakeNoSlip1DConstraint(caseBody, movingBody0, movingBody1 MobilizedBodyIndex, noSlipDirection, contactPoint Vec3) *NoSlip1DConstraint {
	ns := &NoSlip1DConstraint{
		Constraint:             MakeConstraint(0, 1, 0),
		DefaultNoSlipDirection: UnitVec3(noSlipDirection),
		DefaultContactPoint:    contactPoint,
		DirectionLength:        1,
		PointRadius:            0.05,
	}
	ns.CaseBody = ns.AddConstrainedBody(caseBody)
	ns.MovingBody0 = ns.AddConstrainedBody(movingBody0)
	ns.MovingBody1 = ns.AddConstrainedBody(movingBody1)
	return ns
}

func (ns *NoSlip1DConstraint) SetDefaultNoSlipDirection(n Vec3) {
	ns.InvalidateTopologyCache()
	ns.DefaultNoSlipDirection = UnitVec3(n)
}

func (ns *NoSlip1DConstraint) SetDefaultContactPoint(p Vec3) {
	ns.InvalidateTopologyCache()
	ns.DefaultContactPoint = p
}

func (ns *NoSlip1DConstraint) SetDirectionDisplayLength(l float64) {
	ns.InvalidateTopologyCache()
	if l > 0 {
		ns.DirectionLength = l
	} else {
		ns.DirectionLength = 0
	}
}

func (ns *NoSlip1DConstraint) GetDirectionDisplayLength() float64 {
	return ns.DirectionLength
}

func (ns *NoSlip1DConstraint) SetPointDisplayRadius(r float64) {
	ns.InvalidateTopologyCache()
	if r > 0 {
		ns.PointRadius = r
	} else {
		ns.PointRadius = 0
	}
}

func (ns *NoSlip1DConstraint) GetPointDisplayRadius() float64 {
	return ns.PointRadius
}

/// The stations of B0 and B1 currently coincident with P, each expressed in
/// its own body frame, plus the direction re-expressed in A.
func (ns *NoSlip1DConstraint) contactGeometry(s *State) (p0, p1, nA Vec3) {
	xAC := ns.GetBodyTransform(s, ns.CaseBody)
	xAB0 := ns.GetBodyTransform(s, ns.MovingBody0)
	xAB1 := ns.GetBodyTransform(s, ns.MovingBody1)
	pAP := TransformPoint(xAC, ns.DefaultContactPoint)
	p0 = InvTransformPoint(xAB0, pAP)
	p1 = InvTransformPoint(xAB1, pAP)
	nA = RotationMulVec3(xAC.R, ns.DefaultNoSlipDirection)
	return p0, p1, nA
}

func (ns *NoSlip1DConstraint) RealizeVelocityErrors(s *State, vc *VelocityCache, mv int, verr []float64) {
	Assert(mv == 1 && len(verr) >= 1)
	p0, p1, nA := ns.contactGeometry(s)

	vAP0 := ns.CalcStationVelocityFromCache(s, vc, ns.MovingBody0, p0)
	vAP1 := ns.CalcStationVelocityFromCache(s, vc, ns.MovingBody1, p1)

	verr[0] = Vec3Dot(Vec3Sub(vAP1, vAP0), nA)
}

func (ns *NoSlip1DConstraint) RealizeVelocityDotErrors(s *State, ac *AccelerationCache, mv int, vaerr []float64) {
	Assert(mv == 1 && len(vaerr) >= 1)
	p0, p1, nA := ns.contactGeometry(s)

	vAP0 := ns.CalcStationVelocity(s, ns.MovingBody0, p0)
	vAP1 := ns.CalcStationVelocity(s, ns.MovingBody1, p1)
	wAC := ns.GetBodyAngularVelocity(s, ns.CaseBody)

	aAP0 := ns.CalcStationAccelerationFromCache(s, ac, ns.MovingBody0, p0)
	aAP1 := ns.CalcStationAccelerationFromCache(s, ac, ns.MovingBody1, p1)

	rel := Vec3Sub(Vec3Sub(aAP1, aAP0), Vec3Cross(wAC, Vec3Sub(vAP1, vAP0)))
	vaerr[0] = Vec3Dot(rel, nA)
}

/// f = lambda*n to the contact point of B1, -f to the contact point of B0.
func (ns *NoSlip1DConstraint) ApplyVelocityConstraintForces(s *State, mv int, multipliers []float64, bodyForcesInA []SpatialVec, mobilityForces []float64) {
	Assert(mv == 1 && len(multipliers) >= 1)
	lambda := multipliers[0]

	p0, p1, nA := ns.contactGeometry(s)
	forceA := Vec3MulScalar(lambda, nA)

	ns.AddInStationForce(s, ns.MovingBody1, p1, forceA, bodyForcesInA)
	ns.AddInStationForce(s, ns.MovingBody0, p0, forceA.OperatorNegate(), bodyForcesInA)
}
