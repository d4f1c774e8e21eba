package simbody

/// The hook set a user-defined constraint supplies. Embed
/// CustomImplementationBase to pick up do-nothing defaults for the hooks a
/// particular constraint does not need; the error and force hooks matching
/// the constraint's nonzero equation counts must be provided.
type CustomImplementation interface {
	RealizeTopology(c *CustomConstraint, s *State)
	RealizeModel(c *CustomConstraint, s *State)
	RealizeInstance(c *CustomConstraint, s *State)
	RealizeTime(c *CustomConstraint, s *State)

	RealizePositionErrors(c *CustomConstraint, s *State, pc *PositionCache, mp int, perr []float64)
	RealizePositionDotErrors(c *CustomConstraint, s *State, vc *VelocityCache, mp int, pverr []float64)
	RealizePositionDotDotErrors(c *CustomConstraint, s *State, ac *AccelerationCache, mp int, paerr []float64)
	ApplyPositionConstraintForces(c *CustomConstraint, s *State, mp int, multipliers []float64,
		bodyForcesInA []SpatialVec, mobilityForces []float64)

	RealizeVelocityErrors(c *CustomConstraint, s *State, vc *VelocityCache, mv int, verr []float64)
	RealizeVelocityDotErrors(c *CustomConstraint, s *State, ac *AccelerationCache, mv int, vaerr []float64)
	ApplyVelocityConstraintForces(c *CustomConstraint, s *State, mv int, multipliers []float64,
		bodyForcesInA []SpatialVec, mobilityForces []float64)

	RealizeAccelerationErrors(c *CustomConstraint, s *State, ac *AccelerationCache, ma int, aerr []float64)
	ApplyAccelerationConstraintForces(c *CustomConstraint, s *State, ma int, multipliers []float64,
		bodyForcesInA []SpatialVec, mobilityForces []float64)
}

/// A constraint whose equations are supplied by user code rather than a
/// built-in kind. The wrapper gives the user implementation the full base
/// machinery: body/mobilizer registration, the kinematics accessor, slot
/// bookkeeping, and the multiplier-to-force engine.
type CustomConstraint struct {
	Constraint

	userImpl CustomImplementation
}

func MakeCustomConstraint(mp, mv, ma int, impl CustomImplementation) *CustomConstraint {
	AssertMsg(impl != nil, "A custom constraint needs an implementation")
	return &CustomConstraint{
		Constraint: MakeConstraint(mp, mv, ma),
		userImpl:   impl,
	}
}

func (c *CustomConstraint) Implementation() CustomImplementation {
	return c.userImpl
}

func (c *CustomConstraint) RealizeTopology(s *State) { c.userImpl.RealizeTopology(c, s) }
func (c *CustomConstraint) RealizeModel(s *State)    { c.userImpl.RealizeModel(c, s) }
func (c *CustomConstraint) RealizeInstance(s *State) { c.userImpl.RealizeInstance(c, s) }
func (c *CustomConstraint) RealizeTime(s *State)     { c.userImpl.RealizeTime(c, s) }

func (c *CustomConstraint) RealizePositionErrors(s *State, pc *PositionCache, mp int, perr []float64) {
	c.userImpl.RealizePositionErrors(c, s, pc, mp, perr)
}

func (c *CustomConstraint) RealizePositionDotErrors(s *State, vc *VelocityCache, mp int, pverr []float64) {
	c.userImpl.RealizePositionDotErrors(c, s, vc, mp, pverr)
}

func (c *CustomConstraint) RealizePositionDotDotErrors(s *State, ac *AccelerationCache, mp int, paerr []float64) {
	c.userImpl.RealizePositionDotDotErrors(c, s, ac, mp, paerr)
}

func (c *CustomConstraint) ApplyPositionConstraintForces(s *State, mp int, multipliers []float64, bodyForcesInA []SpatialVec, mobilityForces []float64) {
	c.userImpl.ApplyPositionConstraintForces(c, s, mp, multipliers, bodyForcesInA, mobilityForces)
}

func (c *CustomConstraint) RealizeVelocityErrors(s *State, vc *VelocityCache, mv int, verr []float64) {
	c.userImpl.RealizeVelocityErrors(c, s, vc, mv, verr)
}

func (c *CustomConstraint) RealizeVelocityDotErrors(s *State, ac *AccelerationCache, mv int, vaerr []float64) {
	c.userImpl.RealizeVelocityDotErrors(c, s, ac, mv, vaerr)
}

func (c *CustomConstraint) ApplyVelocityConstraintForces(s *State, mv int, multipliers []float64, bodyForcesInA []SpatialVec, mobilityForces []float64) {
	c.userImpl.ApplyVelocityConstraintForces(c, s, mv, multipliers, bodyForcesInA, mobilityForces)
}

func (c *CustomConstraint) RealizeAccelerationErrors(s *State, ac *AccelerationCache, ma int, aerr []float64) {
	c.userImpl.RealizeAccelerationErrors(c, s, ac, ma, aerr)
}

func (c *CustomConstraint) ApplyAccelerationConstraintForces(s *State, ma int, multipliers []float64, bodyForcesInA []SpatialVec, mobilityForces []float64) {
	c.userImpl.ApplyAccelerationConstraintForces(c, s, ma, multipliers, bodyForcesInA, mobilityForces)
}

/// Do-nothing defaults for CustomImplementation. The error and force hooks
/// fail when reached with a nonzero count, mirroring the base constraint's
/// contract: a custom constraint that declares equations must implement the
/// matching hooks.
type CustomImplementationBase struct{}

func (CustomImplementationBase) RealizeTopology(c *CustomConstraint, s *State) {}
func (CustomImplementationBase) RealizeModel(c *CustomConstraint, s *State)    {}
func (CustomImplementationBase) RealizeInstance(c *CustomConstraint, s *State) {}
func (CustomImplementationBase) RealizeTime(c *CustomConstraint, s *State)     {}

func (CustomImplementationBase) RealizePositionErrors(c *CustomConstraint, s *State, pc *PositionCache, mp int, perr []float64) {
	AssertMsg(mp == 0, "A custom constraint with holonomic equations must implement RealizePositionErrors")
}

func (CustomImplementationBase) RealizePositionDotErrors(c *CustomConstraint, s *State, vc *VelocityCache, mp int, pverr []float64) {
	AssertMsg(mp == 0, "A custom constraint with holonomic equations must implement RealizePositionDotErrors")
}

func (CustomImplementationBase) RealizePositionDotDotErrors(c *CustomConstraint, s *State, ac *AccelerationCache, mp int, paerr []float64) {
	AssertMsg(mp == 0, "A custom constraint with holonomic equations must implement RealizePositionDotDotErrors")
}

func (CustomImplementationBase) ApplyPositionConstraintForces(c *CustomConstraint, s *State, mp int, multipliers []float64, bodyForcesInA []SpatialVec, mobilityForces []float64) {
	AssertMsg(mp == 0, "A custom constraint with holonomic equations must implement ApplyPositionConstraintForces")
}

func (CustomImplementationBase) RealizeVelocityErrors(c *CustomConstraint, s *State, vc *VelocityCache, mv int, verr []float64) {
	AssertMsg(mv == 0, "A custom constraint with nonholonomic equations must implement RealizeVelocityErrors")
}

func (CustomImplementationBase) RealizeVelocityDotErrors(c *CustomConstraint, s *State, ac *AccelerationCache, mv int, vaerr []float64) {
	AssertMsg(mv == 0, "A custom constraint with nonholonomic equations must implement RealizeVelocityDotErrors")
}

func (CustomImplementationBase) ApplyVelocityConstraintForces(c *CustomConstraint, s *State, mv int, multipliers []float64, bodyForcesInA []SpatialVec, mobilityForces []float64) {
	AssertMsg(mv == 0, "A custom constraint with nonholonomic equations must implement ApplyVelocityConstraintForces")
}

func (CustomImplementationBase) RealizeAccelerationErrors(c *CustomConstraint, s *State, ac *AccelerationCache, ma int, aerr []float64) {
	AssertMsg(ma == 0, "A custom constraint with acceleration-only equations must implement RealizeAccelerationErrors")
}

func (CustomImplementationBase) ApplyAccelerationConstraintForces(c *CustomConstraint, s *State, ma int, multipliers []float64, bodyForcesInA []SpatialVec, mobilityForces []float64) {
	AssertMsg(ma == 0, "A custom constraint with acceleration-only equations must implement ApplyAccelerationConstraintForces")
}
