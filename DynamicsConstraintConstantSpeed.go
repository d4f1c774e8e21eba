package simbody

/// One mobility u of a constrained mobilizer is held at a prescribed speed:
/// one nonholonomic equation.
///   verr = u - s
///   aerr = udot
/// The multiplier is applied directly as a generalized force on that
/// mobility.
type ConstantSpeedConstraint struct {
	Constraint

	TheMobilizer    ConstrainedMobilizerIndex
	WhichMobility   MobilizerUIndex
	PrescribedSpeed float64
}

func MakeConstantSpeedConstraint(mobilizer MobilizedBodyIndex, whichMobility MobilizerUIndex, speed float64) *ConstantSpeedConstraint {
	cs := &ConstantSpeedConstraint{
		Constraint:      MakeConstraint(0, 1, 0),
		WhichMobility:   whichMobility,
		PrescribedSpeed: speed,
	}
	cs.TheMobilizer = cs.AddConstrainedMobilizer(mobilizer)
	return cs
}

func (cs *ConstantSpeedConstraint) SetPrescribedSpeed(speed float64) {
	cs.InvalidateTopologyCache()
	cs.PrescribedSpeed = speed
}

func (cs *ConstantSpeedConstraint) RealizeVelocityErrors(s *State, vc *VelocityCache, mv int, verr []float64) {
	Assert(mv == 1 && len(verr) >= 1)
	verr[0] = cs.GetOneU(s, cs.TheMobilizer, cs.WhichMobility) - cs.PrescribedSpeed
}

func (cs *ConstantSpeedConstraint) RealizeVelocityDotErrors(s *State, ac *AccelerationCache, mv int, vaerr []float64) {
	Assert(mv == 1 && len(vaerr) >= 1)
	vaerr[0] = cs.GetOneUDot(s, cs.TheMobilizer, cs.WhichMobility, true)
}

func (cs *ConstantSpeedConstraint) ApplyVelocityConstraintForces(s *State, mv int, multipliers []float64, bodyForcesInA []SpatialVec, mobilityForces []float64) {
	Assert(mv == 1 && len(multipliers) >= 1)
	cs.AddInOneMobilityForce(s, cs.TheMobilizer, cs.WhichMobility, multipliers[0], mobilityForces)
}
