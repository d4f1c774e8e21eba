package simbody_test

import (
	"math"
	"testing"

	"github.com/HuaMuLanChina/simbody"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The force engine must be the exact transpose of the velocity-error
// Jacobian: the power the constraint forces generate against the body
// spatial velocities equals lambda dotted with the velocity-level errors,
// at ANY state, satisfied or not. This holds per variant because forces are
// read off the velocity error expression by inspection.

func spatialPower(f, v simbody.SpatialVec) float64 {
	return simbody.Vec3Dot(f.W, v.W) + simbody.Vec3Dot(f.V, v.V)
}

func constraintPower(s *simbody.State, base *simbody.Constraint, bodyForces []simbody.SpatialVec, mobilityForces []float64) float64 {
	power := 0.0
	for cb := 0; cb < base.NumConstrainedBodies(); cb++ {
		v := base.GetBodyVelocity(s, simbody.ConstrainedBodyIndex(cb))
		power += spatialPower(bodyForces[cb], v)
	}
	k := 0
	for cm := 0; cm < base.NumConstrainedMobilizers(); cm++ {
		nu := base.NumConstrainedU(s, simbody.ConstrainedMobilizerIndex(cm))
		for which := 0; which < nu; which++ {
			u := base.GetOneU(s, simbody.ConstrainedMobilizerIndex(cm), simbody.MobilizerUIndex(which))
			power += mobilityForces[k] * u
			k++
		}
	}
	return power
}

// Drive a two-free-body system to Acceleration with deliberately
// inconsistent (off-manifold) kinematics.
func realizeArbitraryState(sys *simbody.System, bodies []simbody.MobilizedBodyIndex) simbody.State {
	s := sys.RealizeTopology()
	sys.RealizeModel(&s)
	realizeAt(sys, &s, bodies, []bodyTrajectory{trajA, trajB}, 0.45)
	return s
}

func checkPowerIdentity(t *testing.T, sys *simbody.System, impl simbody.ConstraintInterface, bodies []simbody.MobilizedBodyIndex, lambda []float64) {
	s := realizeArbitraryState(sys, bodies)
	base := impl.Base()

	mp, mv, ma := base.NumConstraintEquations(&s)
	require.Equal(t, mp+mv+ma, len(lambda))

	bodyForces, mobilityForces := base.CalcConstraintForcesFromMultipliers(&s, mp, mv, ma, lambda)
	power := constraintPower(&s, base, bodyForces, mobilityForces)

	// lambda . verr over the velocity-level errors (holonomic first
	// derivatives followed by nonholonomic equations).
	verr := make([]float64, mp+mv)
	base.GetVelocityErrors(&s, mp+mv, verr)
	expected := 0.0
	for i := 0; i < mp+mv; i++ {
		expected += lambda[i] * verr[i]
	}

	require.InDelta(t, expected, power, 1e-10)
}

func TestRodPowerIdentity(t *testing.T) {
	sys, bodies := makeFreeBodySystem(2)
	rod := simbody.MakeRodConstraint(bodies[0], bodies[1],
		simbody.MakeVec3(0.1, 0.2, 0), simbody.MakeVec3(-0.1, 0, 0.3), 1.5)
	sys.AdoptConstraint(rod)
	checkPowerIdentity(t, sys, rod, bodies, []float64{1.7})
}

func TestPointInPlanePowerIdentity(t *testing.T) {
	sys, bodies := makeFreeBodySystem(2)
	pip := simbody.MakePointInPlaneConstraint(bodies[0], bodies[1],
		simbody.MakeVec3(0.5, 0.5, 1), 0.7, simbody.MakeVec3(0.2, -0.1, 0))
	sys.AdoptConstraint(pip)
	checkPowerIdentity(t, sys, pip, bodies, []float64{-0.9})
}

func TestPointOnLinePowerIdentity(t *testing.T) {
	sys, bodies := makeFreeBodySystem(2)
	pol := simbody.MakePointOnLineConstraint(bodies[0], bodies[1],
		simbody.MakeVec3(1, 0.5, -0.5), simbody.MakeVec3(0.1, 0.2, 0.3), simbody.MakeVec3(-0.2, 0, 0.1))
	sys.AdoptConstraint(pol)
	checkPowerIdentity(t, sys, pol, bodies, []float64{1.2, -0.6})
}

func TestConstantAnglePowerIdentity(t *testing.T) {
	sys, bodies := makeFreeBodySystem(2)
	ca := simbody.MakeConstantAngleConstraint(bodies[0], bodies[1],
		simbody.MakeVec3(0, 0, 1), simbody.MakeVec3(1, 1, 0), math.Pi/3)
	sys.AdoptConstraint(ca)
	checkPowerIdentity(t, sys, ca, bodies, []float64{2.1})
}

func TestBallPowerIdentity(t *testing.T) {
	sys, bodies := makeFreeBodySystem(2)
	ball := simbody.MakeBallConstraint(bodies[0], bodies[1],
		simbody.MakeVec3(0.2, -0.3, 0.5), simbody.MakeVec3(-0.1, 0.4, 0.2))
	sys.AdoptConstraint(ball)
	checkPowerIdentity(t, sys, ball, bodies, []float64{0.5, -1.1, 0.8})
}

func TestConstantOrientationPowerIdentity(t *testing.T) {
	sys, bodies := makeFreeBodySystem(2)
	co := simbody.MakeConstantOrientationConstraint(bodies[0], bodies[1],
		simbody.MakeRotationFromAxisAngle(simbody.MakeVec3(0, 1, 0), 0.4),
		simbody.MakeRotationFromAxisAngle(simbody.MakeVec3(1, 0, 0), -0.2))
	sys.AdoptConstraint(co)
	checkPowerIdentity(t, sys, co, bodies, []float64{1.3, 0.2, -0.7})
}

func TestWeldPowerIdentity(t *testing.T) {
	sys, bodies := makeFreeBodySystem(2)
	weld := simbody.MakeWeldConstraint(bodies[0], bodies[1],
		simbody.MakeTransform(simbody.MakeRotationFromAxisAngle(simbody.MakeVec3(0, 1, 0), 0.3), simbody.MakeVec3(0.2, 0, -0.1)),
		simbody.MakeTransform(simbody.MakeRotationFromAxisAngle(simbody.MakeVec3(1, 0, 0), -0.5), simbody.MakeVec3(-0.3, 0.1, 0)))
	sys.AdoptConstraint(weld)
	checkPowerIdentity(t, sys, weld, bodies, []float64{0.4, -0.2, 1.0, -0.5, 0.9, 0.3})
}

func TestNoSlip1DPowerIdentity(t *testing.T) {
	sys, bodies := makeFreeBodySystem(3)
	ns := simbody.MakeNoSlip1DConstraint(bodies[0], bodies[1], bodies[2],
		simbody.MakeVec3(1, 0.3, 0), simbody.MakeVec3(0.2, 0.1, -0.4))
	sys.AdoptConstraint(ns)

	s := sys.RealizeTopology()
	sys.RealizeModel(&s)
	third := bodyTrajectory{
		Axis:   simbody.UnitVec3(simbody.MakeVec3(0.5, -1, 1)),
		Theta0: 1.1, Omega: -0.6, Alpha: 0.3,
		P0: simbody.MakeVec3(-0.5, 0.9, 0.1),
		V0: simbody.MakeVec3(0.2, -0.7, 0.4),
		A0: simbody.MakeVec3(0.1, 0.2, -0.3),
	}
	realizeAt(sys, &s, bodies, []bodyTrajectory{trajA, trajB, third}, 0.45)

	lambda := []float64{1.4}
	bodyForces, mobilityForces := ns.CalcConstraintForcesFromMultipliers(&s, 0, 1, 0, lambda)
	power := constraintPower(&s, ns.Base(), bodyForces, mobilityForces)

	verr := make([]float64, 1)
	ns.GetVelocityErrors(&s, 1, verr)
	require.InDelta(t, lambda[0]*verr[0], power, 1e-10)
}

// With prescribed speed zero, verr = u and the mobility force is lambda, so
// the power identity covers the mobility path too.
func TestConstantSpeedPowerIdentity(t *testing.T) {
	sys, bodies := makeFreeBodySystem(1)
	cs := simbody.MakeConstantSpeedConstraint(bodies[0], 4, 0)
	sys.AdoptConstraint(cs)

	s := sys.RealizeTopology()
	sys.RealizeModel(&s)
	s.SetU(4, 1.25)
	sys.Realize(&s, simbody.StageAcceleration)

	lambda := []float64{-2.0}
	bodyForces, mobilityForces := cs.CalcConstraintForcesFromMultipliers(&s, 0, 1, 0, lambda)
	assert.Empty(t, bodyForces) // no constrained bodies, mobility force only
	power := constraintPower(&s, cs.Base(), bodyForces, mobilityForces)

	verr := make([]float64, 1)
	cs.GetVelocityErrors(&s, 1, verr)
	require.InDelta(t, lambda[0]*verr[0], power, 1e-12)
	require.InDelta(t, lambda[0], mobilityForces[4], 1e-15)
}

// Constraint forces are internal: across the constrained bodies both the net
// force and the net torque about a common point (here A's origin) must
// vanish, even off the constraint manifold. Body spatial forces act at body
// origins, so the moment of each is t + p x f.
func checkForceBalance(t *testing.T, sys *simbody.System, impl simbody.ConstraintInterface, bodies []simbody.MobilizedBodyIndex, lambda []float64) {
	s := realizeArbitraryState(sys, bodies)
	base := impl.Base()

	mp, mv, ma := base.NumConstraintEquations(&s)
	require.Equal(t, mp+mv+ma, len(lambda))

	bodyForces, _ := base.CalcConstraintForcesFromMultipliers(&s, mp, mv, ma, lambda)

	netForce := simbody.MakeVec3(0, 0, 0)
	netTorque := simbody.MakeVec3(0, 0, 0)
	for cb := 0; cb < base.NumConstrainedBodies(); cb++ {
		p := base.GetBodyOriginLocation(&s, simbody.ConstrainedBodyIndex(cb))
		netForce.OperatorPlusInplace(bodyForces[cb].V)
		netTorque.OperatorPlusInplace(bodyForces[cb].W)
		netTorque.OperatorPlusInplace(simbody.Vec3Cross(p, bodyForces[cb].V))
	}
	require.InDelta(t, 0, netForce.Length(), 1e-12)
	require.InDelta(t, 0, netTorque.Length(), 1e-12)
}

func TestRodForceBalance(t *testing.T) {
	sys, bodies := makeFreeBodySystem(2)
	rod := simbody.MakeRodConstraint(bodies[0], bodies[1],
		simbody.MakeVec3(0.1, 0.2, 0), simbody.MakeVec3(-0.1, 0, 0.3), 1.5)
	sys.AdoptConstraint(rod)
	checkForceBalance(t, sys, rod, bodies, []float64{1.7})
}

func TestBallForceBalance(t *testing.T) {
	sys, bodies := makeFreeBodySystem(2)
	ball := simbody.MakeBallConstraint(bodies[0], bodies[1],
		simbody.MakeVec3(0.2, -0.3, 0.5), simbody.MakeVec3(-0.1, 0.4, 0.2))
	sys.AdoptConstraint(ball)
	checkForceBalance(t, sys, ball, bodies, []float64{0.5, -1.1, 0.8})
}

func TestWeldForceBalance(t *testing.T) {
	sys, bodies := makeFreeBodySystem(2)
	weld := simbody.MakeWeldConstraint(bodies[0], bodies[1],
		simbody.MakeTransform(simbody.MakeRotationFromAxisAngle(simbody.MakeVec3(0, 1, 0), 0.3), simbody.MakeVec3(0.2, 0, -0.1)),
		simbody.MakeTransform(simbody.MakeRotationFromAxisAngle(simbody.MakeVec3(1, 0, 0), -0.5), simbody.MakeVec3(-0.3, 0.1, 0)))
	sys.AdoptConstraint(weld)
	checkForceBalance(t, sys, weld, bodies, []float64{0.4, -0.2, 1.0, -0.5, 0.9, 0.3})
}

func TestFreeBodyConverter(t *testing.T) {
	sys, bodies := makeFreeBodySystem(2)
	rod := simbody.MakeRodConstraint(bodies[0], bodies[1],
		simbody.MakeVec3(0, 0, 0), simbody.MakeVec3(0, 0, 0), 1)
	sys.AdoptConstraint(rod)
	sys.SetGeneralizedForceConverter(simbody.FreeBodyConverter{})

	s := sys.RealizeTopology()
	sys.RealizeModel(&s)
	sys.Realize(&s, simbody.StageTime)

	// Body 1 at the origin, body 2 two units along x; both at rest.
	sys.SetBodyTransform(&s, bodies[0], simbody.MakeTransformIdentity())
	sys.SetBodyTransform(&s, bodies[1],
		simbody.MakeTransform(simbody.MakeRotationIdentity(), simbody.MakeVec3(2, 0, 0)))
	sys.Realize(&s, simbody.StageAcceleration)

	f := rod.CalcGeneralizedForceFromMultipliers(&s, 1, 0, 0, []float64{1})
	require.Equal(t, 12, f.Len())

	// Separation p = (2,0,0): force p on body 2's station, -p on body 1's.
	// Free-mobilizer layout is [wx wy wz vx vy vz] per body.
	expected := []float64{0, 0, 0, -2, 0, 0, 0, 0, 0, 2, 0, 0}
	for i, want := range expected {
		assert.InDelta(t, want, f.AtVec(i), 1e-12, "f[%d]", i)
	}
}

func TestGeneralizedForceRequiresConverter(t *testing.T) {
	sys, bodies := makeFreeBodySystem(2)
	rod := simbody.MakeRodConstraint(bodies[0], bodies[1],
		simbody.MakeVec3(0, 0, 0), simbody.MakeVec3(0, 0, 0), 1)
	sys.AdoptConstraint(rod)

	s := realizeArbitraryState(sys, bodies)
	assert.Panics(t, func() { rod.CalcGeneralizedForceFromMultipliers(&s, 1, 0, 0, []float64{1}) })
}

func TestConverterRejectsNonFreeMobilizer(t *testing.T) {
	sys := simbody.MakeSystem()
	pin1 := sys.CreateMobilizedBody(simbody.GroundIndex, 1, 1) // pin, not free
	pin2 := sys.CreateMobilizedBody(simbody.GroundIndex, 1, 1)
	rod := simbody.MakeRodConstraint(pin1, pin2,
		simbody.MakeVec3(0, 0, 0), simbody.MakeVec3(0, 0, 0), 1)
	sys.AdoptConstraint(rod)
	sys.SetGeneralizedForceConverter(simbody.FreeBodyConverter{})

	s := sys.RealizeTopology()
	sys.RealizeModel(&s)
	sys.Realize(&s, simbody.StageTime)
	sys.SetBodyTransform(&s, pin2,
		simbody.MakeTransform(simbody.MakeRotationIdentity(), simbody.MakeVec3(2, 0, 0)))
	sys.Realize(&s, simbody.StageAcceleration)

	assert.Panics(t, func() { rod.CalcGeneralizedForceFromMultipliers(&s, 1, 0, 0, []float64{1}) })
}
