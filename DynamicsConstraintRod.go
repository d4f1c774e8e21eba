package simbody

/// A massless rod of fixed length between a station on each of two bodies:
/// one holonomic equation. The distance form is squared to avoid a square
/// root:
///   perr = (p.p - d^2)/2, with p = p2 - p1 the separation in A.
type RodConstraint struct {
	Constraint

	B1, B2 ConstrainedBodyIndex

	DefaultPoint1    Vec3 // station on body 1, expressed in B1
	DefaultPoint2    Vec3 // station on body 2, expressed in B2
	DefaultRodLength float64

	// Visualization only; <= 0 means don't display, < 0 means default.
	PointRadius float64
}

func MakeRodConstraint(body1, body2 MobilizedBodyIndex, point1, point2 Vec3, length float64) *RodConstraint {
	AssertMsg(length > 0, "A rod must have positive length")
	rod := &RodConstraint{
		Constraint:       MakeConstraint(1, 0, 0),
		DefaultPoint1:    point1,
		DefaultPoint2:    point2,
		DefaultRodLength: length,
		PointRadius:      -1,
	}
	rod.B1 = rod.AddConstrainedBody(body1)
	rod.B2 = rod.AddConstrainedBody(body2)
	return rod
}

/// Changing default geometry invalidates Topology; the System must be
/// re-realized before the new value takes effect.
func (rod *RodConstraint) SetDefaultPoint1(p Vec3) {
	rod.InvalidateTopologyCache()
	rod.DefaultPoint1 = p
}

func (rod *RodConstraint) SetDefaultPoint2(p Vec3) {
	rod.InvalidateTopologyCache()
	rod.DefaultPoint2 = p
}

func (rod *RodConstraint) SetDefaultRodLength(length float64) {
	AssertMsg(length > 0, "A rod must have positive length")
	rod.InvalidateTopologyCache()
	rod.DefaultRodLength = length
}

func (rod *RodConstraint) SetPointDisplayRadius(r float64) {
	rod.InvalidateTopologyCache()
	if r > 0 {
		rod.PointRadius = r
	} else {
		rod.PointRadius = 0
	}
}

func (rod *RodConstraint) GetPointDisplayRadius() float64 {
	return rod.PointRadius
}

/// perr = (p.p - d^2)/2
func (rod *RodConstraint) RealizePositionErrors(s *State, pc *PositionCache, mp int, perr []float64) {
	Assert(mp == 1 && len(perr) >= 1)
	p1 := rod.CalcStationLocationFromCache(pc, rod.B1, rod.DefaultPoint1)
	p2 := rod.CalcStationLocationFromCache(pc, rod.B2, rod.DefaultPoint2)
	p := Vec3Sub(p2, p1)

	perr[0] = (Vec3Dot(p, p) - rod.DefaultRodLength*rod.DefaultRodLength) / 2
}

/// pverr = v.p, with v = v2 - v1 the relative station velocity.
func (rod *RodConstraint) RealizePositionDotErrors(s *State, vc *VelocityCache, mp int, pverr []float64) {
	Assert(mp == 1 && len(pverr) >= 1)
	p1 := rod.CalcStationLocation(s, rod.B1, rod.DefaultPoint1)
	p2 := rod.CalcStationLocation(s, rod.B2, rod.DefaultPoint2)
	p := Vec3Sub(p2, p1)

	v1 := rod.CalcStationVelocityFromCache(s, vc, rod.B1, rod.DefaultPoint1)
	v2 := rod.CalcStationVelocityFromCache(s, vc, rod.B2, rod.DefaultPoint2)
	v := Vec3Sub(v2, v1)
	pverr[0] = Vec3Dot(v, p)
}

/// paerr = a.p + v.v, with a = a2 - a1 the relative station acceleration.
func (rod *RodConstraint) RealizePositionDotDotErrors(s *State, ac *AccelerationCache, mp int, paerr []float64) {
	Assert(mp == 1 && len(paerr) >= 1)
	p1 := rod.CalcStationLocation(s, rod.B1, rod.DefaultPoint1)
	p2 := rod.CalcStationLocation(s, rod.B2, rod.DefaultPoint2)
	p := Vec3Sub(p2, p1)
	v1 := rod.CalcStationVelocity(s, rod.B1, rod.DefaultPoint1)
	v2 := rod.CalcStationVelocity(s, rod.B2, rod.DefaultPoint2)
	v := Vec3Sub(v2, v1)

	a1 := rod.CalcStationAccelerationFromCache(s, ac, rod.B1, rod.DefaultPoint1)
	a2 := rod.CalcStationAccelerationFromCache(s, ac, rod.B2, rod.DefaultPoint2)
	a := Vec3Sub(a2, a1)

	paerr[0] = Vec3Dot(a, p) + Vec3Dot(v, v)
}

/// Read off pverr: the v2 term contributes lambda*p at point 2, the v1 term
/// -lambda*p at point 1. Both forces share a line of action, so the pair
/// does no net work even off the constraint manifold.
func (rod *RodConstraint) ApplyPositionConstraintForces(s *State, mp int, multipliers []float64, bodyForcesInA []SpatialVec, mobilityForces []float64) {
	Assert(mp == 1 && len(multipliers) >= 1)
	lambda := multipliers[0]
	p1 := rod.CalcStationLocation(s, rod.B1, rod.DefaultPoint1)
	p2 := rod.CalcStationLocation(s, rod.B2, rod.DefaultPoint2)
	p := Vec3Sub(p2, p1)

	f2 := Vec3MulScalar(lambda, p)

	rod.AddInStationForce(s, rod.B2, rod.DefaultPoint2, f2, bodyForcesInA)
	rod.AddInStationForce(s, rod.B1, rod.DefaultPoint1, f2.OperatorNegate(), bodyForcesInA)
}
