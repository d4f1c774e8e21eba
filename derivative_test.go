package simbody_test

import (
	"math"
	"testing"

	"github.com/HuaMuLanChina/simbody"
	"github.com/stretchr/testify/require"
)

// The hand-differentiated error chains must agree with numerical time
// derivatives of the level above. Kinematics follow smooth closed-form
// trajectories so central differences are accurate to O(h^2).

const diffStep = 1e-5
const diffTol = 1e-6

var trajA = bodyTrajectory{
	Axis:   simbody.UnitVec3(simbody.MakeVec3(1, 2, -1)),
	Theta0: 0.3, Omega: 0.7, Alpha: -0.2,
	P0: simbody.MakeVec3(0.1, -0.4, 0.2),
	V0: simbody.MakeVec3(0.5, 0.3, -0.6),
	A0: simbody.MakeVec3(-0.2, 0.1, 0.4),
}

var trajB = bodyTrajectory{
	Axis:   simbody.UnitVec3(simbody.MakeVec3(-1, 0.5, 2)),
	Theta0: -0.8, Omega: 1.3, Alpha: 0.5,
	P0: simbody.MakeVec3(2.0, 0.7, -0.3),
	V0: simbody.MakeVec3(-0.4, 0.8, 0.2),
	A0: simbody.MakeVec3(0.3, -0.5, 0.1),
}

func centralDiff(f func(t float64) []float64, t, h float64) []float64 {
	lo := f(t - h)
	hi := f(t + h)
	out := make([]float64, len(lo))
	for i := range out {
		out[i] = (hi[i] - lo[i]) / (2 * h)
	}
	return out
}

// Realize the two-body system at time t and return the three error levels
// for a constraint with mp holonomic equations.
func holoErrorsAt(sys *simbody.System, s *simbody.State, bodies []simbody.MobilizedBodyIndex,
	c interface {
		GetPositionErrors(*simbody.State, int, []float64)
		GetVelocityErrors(*simbody.State, int, []float64)
		GetAccelerationErrors(*simbody.State, int, []float64)
	}, mp int, t float64) (perr, pverr, paerr []float64) {

	realizeAt(sys, s, bodies, []bodyTrajectory{trajA, trajB}, t)
	perr = make([]float64, mp)
	pverr = make([]float64, mp)
	paerr = make([]float64, mp)
	c.GetPositionErrors(s, mp, perr)
	c.GetVelocityErrors(s, mp, pverr)
	c.GetAccelerationErrors(s, mp, paerr)
	return perr, pverr, paerr
}

func checkDerivativeChain(t *testing.T, sys *simbody.System, s *simbody.State,
	bodies []simbody.MobilizedBodyIndex,
	c interface {
		GetPositionErrors(*simbody.State, int, []float64)
		GetVelocityErrors(*simbody.State, int, []float64)
		GetAccelerationErrors(*simbody.State, int, []float64)
	}, mp int) {

	at := 0.6

	perrOf := func(tt float64) []float64 {
		p, _, _ := holoErrorsAt(sys, s, bodies, c, mp, tt)
		return p
	}
	pverrOf := func(tt float64) []float64 {
		_, pv, _ := holoErrorsAt(sys, s, bodies, c, mp, tt)
		return pv
	}

	dPerr := centralDiff(perrOf, at, diffStep)
	dPverr := centralDiff(pverrOf, at, diffStep)
	_, pverr, paerr := holoErrorsAt(sys, s, bodies, c, mp, at)

	for i := 0; i < mp; i++ {
		require.InDelta(t, pverr[i], dPerr[i], diffTol, "d/dt perr[%d] vs pverr[%d]", i, i)
		require.InDelta(t, paerr[i], dPverr[i], diffTol, "d/dt pverr[%d] vs paerr[%d]", i, i)
	}
}

func TestRodDerivativeChain(t *testing.T) {
	sys, bodies := makeFreeBodySystem(2)
	rod := simbody.MakeRodConstraint(bodies[0], bodies[1],
		simbody.MakeVec3(0.1, 0.2, 0), simbody.MakeVec3(-0.1, 0, 0.3), 1.5)
	sys.AdoptConstraint(rod)

	s := sys.RealizeTopology()
	sys.RealizeModel(&s)

	checkDerivativeChain(t, sys, &s, bodies, rod, 1)
}

func TestConstantAngleDerivativeChain(t *testing.T) {
	sys, bodies := makeFreeBodySystem(2)
	ca := simbody.MakeConstantAngleConstraint(bodies[0], bodies[1],
		simbody.MakeVec3(0, 0, 1), simbody.MakeVec3(1, 1, 0), math.Pi/3)
	sys.AdoptConstraint(ca)

	s := sys.RealizeTopology()
	sys.RealizeModel(&s)

	checkDerivativeChain(t, sys, &s, bodies, ca, 1)
}

func TestConstantOrientationDerivativeChain(t *testing.T) {
	sys, bodies := makeFreeBodySystem(2)
	co := simbody.MakeConstantOrientationConstraint(bodies[0], bodies[1],
		simbody.MakeRotationFromAxisAngle(simbody.MakeVec3(0, 1, 0), 0.4),
		simbody.MakeRotationFromAxisAngle(simbody.MakeVec3(1, 0, 0), -0.2))
	sys.AdoptConstraint(co)

	s := sys.RealizeTopology()
	sys.RealizeModel(&s)

	checkDerivativeChain(t, sys, &s, bodies, co, 3)
}

// The coincident-point variants differentiate in the moving base frame, so
// their chains are exact only on the constraint manifold. Stationary base
// bodies put every follower state on (or measurably off) a fixed manifold
// where the chain is exact for arbitrary follower motion.
func stationaryBase() bodyTrajectory {
	return bodyTrajectory{
		Axis:   simbody.MakeVec3(0, 0, 1),
		Theta0: 0.25,
		P0:     simbody.MakeVec3(0.3, -0.1, 0.2),
	}
}

func TestPointInPlaneDerivativeChainStationaryBase(t *testing.T) {
	sys, bodies := makeFreeBodySystem(2)
	pip := simbody.MakePointInPlaneConstraint(bodies[0], bodies[1],
		simbody.MakeVec3(0.5, 0.5, 1), 0.7, simbody.MakeVec3(0.2, -0.1, 0))
	sys.AdoptConstraint(pip)

	s := sys.RealizeTopology()
	sys.RealizeModel(&s)

	base := stationaryBase()
	trajs := []bodyTrajectory{base, trajB}

	at := 0.6
	errsOf := func(level int) func(tt float64) []float64 {
		return func(tt float64) []float64 {
			realizeAt(sys, &s, bodies, trajs, tt)
			out := make([]float64, 1)
			switch level {
			case 0:
				pip.GetPositionErrors(&s, 1, out)
			case 1:
				pip.GetVelocityErrors(&s, 1, out)
			default:
				pip.GetAccelerationErrors(&s, 1, out)
			}
			return out
		}
	}

	dPerr := centralDiff(errsOf(0), at, diffStep)
	dPverr := centralDiff(errsOf(1), at, diffStep)
	pverr := errsOf(1)(at)
	paerr := errsOf(2)(at)

	require.InDelta(t, pverr[0], dPerr[0], diffTol)
	require.InDelta(t, paerr[0], dPverr[0], diffTol)
}

func TestPointOnLineDerivativeChainStationaryBase(t *testing.T) {
	sys, bodies := makeFreeBodySystem(2)
	pol := simbody.MakePointOnLineConstraint(bodies[0], bodies[1],
		simbody.MakeVec3(1, 0.5, -0.5), simbody.MakeVec3(0.1, 0.2, 0.3), simbody.MakeVec3(-0.2, 0, 0.1))
	sys.AdoptConstraint(pol)

	s := sys.RealizeTopology()
	sys.RealizeModel(&s)

	base := stationaryBase()
	trajs := []bodyTrajectory{base, trajB}

	at := 0.6
	errsOf := func(level int) func(tt float64) []float64 {
		return func(tt float64) []float64 {
			realizeAt(sys, &s, bodies, trajs, tt)
			out := make([]float64, 2)
			switch level {
			case 0:
				pol.GetPositionErrors(&s, 2, out)
			case 1:
				pol.GetVelocityErrors(&s, 2, out)
			default:
				pol.GetAccelerationErrors(&s, 2, out)
			}
			return out
		}
	}

	dPerr := centralDiff(errsOf(0), at, diffStep)
	dPverr := centralDiff(errsOf(1), at, diffStep)
	pverr := errsOf(1)(at)
	paerr := errsOf(2)(at)

	for i := 0; i < 2; i++ {
		require.InDelta(t, pverr[i], dPerr[i], diffTol)
		require.InDelta(t, paerr[i], dPverr[i], diffTol)
	}
}

// On the constraint manifold the ball's error levels all vanish, including
// with the base tumbling: the coincident-point velocity and acceleration
// terms must cancel the follower's exactly.
func TestBallErrorsVanishOnManifold(t *testing.T) {
	sys, bodies := makeFreeBodySystem(2)
	point1 := simbody.MakeVec3(0.2, -0.3, 0.5)
	point2 := simbody.MakeVec3(-0.1, 0.4, 0.2)
	ball := simbody.MakeBallConstraint(bodies[0], bodies[1], point1, point2)
	sys.AdoptConstraint(ball)

	s := sys.RealizeTopology()
	sys.RealizeModel(&s)
	sys.Realize(&s, simbody.StageTime)

	// Body 1 tumbles along trajA; body 2 follows so that its station
	// point2 tracks body 1's station point1 exactly while tumbling with
	// its own spin.
	at := 0.8
	x1, v1, a1 := trajA.Eval(at)
	sys.SetBodyTransform(&s, bodies[0], x1)
	sys.SetBodyVelocity(&s, bodies[0], v1)
	sys.SetBodyAcceleration(&s, bodies[0], a1)

	// Station kinematics of point1 on body 1.
	r1 := simbody.RotationMulVec3(x1.R, point1)
	pAP := simbody.Vec3Add(x1.P, r1)
	vAP := simbody.Vec3Add(v1.V, simbody.Vec3Cross(v1.W, r1))
	aAP := simbody.Vec3Add(a1.V,
		simbody.Vec3Add(simbody.Vec3Cross(a1.W, r1),
			simbody.Vec3Cross(v1.W, simbody.Vec3Cross(v1.W, r1))))

	// Follower spins independently; derive its origin kinematics so that
	// station point2 coincides with point1's station at all levels.
	x2rot, v2, a2 := trajB.Eval(at)
	r2 := simbody.RotationMulVec3(x2rot.R, point2)
	origin2 := simbody.Vec3Sub(pAP, r2)
	v2origin := simbody.Vec3Sub(vAP, simbody.Vec3Cross(v2.W, r2))
	a2origin := simbody.Vec3Sub(aAP,
		simbody.Vec3Add(simbody.Vec3Cross(a2.W, r2),
			simbody.Vec3Cross(v2.W, simbody.Vec3Cross(v2.W, r2))))

	sys.SetBodyTransform(&s, bodies[1], simbody.MakeTransform(x2rot.R, origin2))
	sys.SetBodyVelocity(&s, bodies[1], simbody.MakeSpatialVec(v2.W, v2origin))
	sys.SetBodyAcceleration(&s, bodies[1], simbody.MakeSpatialVec(a2.W, a2origin))

	sys.Realize(&s, simbody.StageAcceleration)

	errs := make([]float64, 3)
	ball.GetPositionErrors(&s, 3, errs)
	for i := range errs {
		require.InDelta(t, 0, errs[i], 1e-12, "perr[%d]", i)
	}
	ball.GetVelocityErrors(&s, 3, errs)
	for i := range errs {
		require.InDelta(t, 0, errs[i], 1e-12, "pverr[%d]", i)
	}
	ball.GetAccelerationErrors(&s, 3, errs)
	for i := range errs {
		require.InDelta(t, 0, errs[i], 1e-12, "paerr[%d]", i)
	}
}

func TestWeldErrorsVanishOnManifold(t *testing.T) {
	sys, bodies := makeFreeBodySystem(2)
	frameB := simbody.MakeTransform(
		simbody.MakeRotationFromAxisAngle(simbody.MakeVec3(0, 1, 0), 0.3),
		simbody.MakeVec3(0.2, 0, -0.1))
	frameF := simbody.MakeTransform(
		simbody.MakeRotationFromAxisAngle(simbody.MakeVec3(1, 0, 0), -0.5),
		simbody.MakeVec3(-0.3, 0.1, 0))
	weld := simbody.MakeWeldConstraint(bodies[0], bodies[1], frameB, frameF)
	sys.AdoptConstraint(weld)

	s := sys.RealizeTopology()
	sys.RealizeModel(&s)
	sys.Realize(&s, simbody.StageTime)

	// Body 1 tumbles; body 2 is rigidly attached through the two weld
	// frames: X_AF = X_AB * frameB * frameF^-1, sharing B's angular
	// velocity and acceleration.
	at := 0.8
	x1, v1, a1 := trajA.Eval(at)
	sys.SetBodyTransform(&s, bodies[0], x1)
	sys.SetBodyVelocity(&s, bodies[0], v1)
	sys.SetBodyAcceleration(&s, bodies[0], a1)

	r2 := simbody.RotationMul(simbody.RotationMul(x1.R, frameB.R), simbody.RotationTranspose(frameF.R))

	// Origin of body 2 so the frame origins coincide: p2 = p_weld - R2*frameF.P
	rB := simbody.RotationMulVec3(x1.R, frameB.P)
	pWeld := simbody.Vec3Add(x1.P, rB)
	vWeld := simbody.Vec3Add(v1.V, simbody.Vec3Cross(v1.W, rB))
	aWeld := simbody.Vec3Add(a1.V,
		simbody.Vec3Add(simbody.Vec3Cross(a1.W, rB),
			simbody.Vec3Cross(v1.W, simbody.Vec3Cross(v1.W, rB))))

	rF := simbody.RotationMulVec3(r2, frameF.P)
	origin2 := simbody.Vec3Sub(pWeld, rF)
	v2origin := simbody.Vec3Sub(vWeld, simbody.Vec3Cross(v1.W, rF))
	a2origin := simbody.Vec3Sub(aWeld,
		simbody.Vec3Add(simbody.Vec3Cross(a1.W, rF),
			simbody.Vec3Cross(v1.W, simbody.Vec3Cross(v1.W, rF))))

	sys.SetBodyTransform(&s, bodies[1], simbody.MakeTransform(r2, origin2))
	sys.SetBodyVelocity(&s, bodies[1], simbody.MakeSpatialVec(v1.W, v2origin))
	sys.SetBodyAcceleration(&s, bodies[1], simbody.MakeSpatialVec(a1.W, a2origin))

	sys.Realize(&s, simbody.StageAcceleration)

	errs := make([]float64, 6)
	weld.GetPositionErrors(&s, 6, errs)
	for i := range errs {
		require.InDelta(t, 0, errs[i], 1e-12, "perr[%d]", i)
	}
	weld.GetVelocityErrors(&s, 6, errs)
	for i := range errs {
		require.InDelta(t, 0, errs[i], 1e-12, "pverr[%d]", i)
	}
	weld.GetAccelerationErrors(&s, 6, errs)
	for i := range errs {
		require.InDelta(t, 0, errs[i], 1e-12, "paerr[%d]", i)
	}
}

func TestConstantSpeedErrors(t *testing.T) {
	sys, bodies := makeFreeBodySystem(1)
	cs := simbody.MakeConstantSpeedConstraint(bodies[0], 2, 1.5)
	sys.AdoptConstraint(cs)

	s := sys.RealizeTopology()
	sys.RealizeModel(&s)

	s.SetU(2, 2.25)
	sys.SetUDot(&s, 2, -0.75)
	sys.Realize(&s, simbody.StageAcceleration)

	verr := make([]float64, 1)
	cs.GetVelocityErrors(&s, 1, verr)
	require.InDelta(t, 0.75, verr[0], 1e-15)

	vaerr := make([]float64, 1)
	cs.GetAccelerationErrors(&s, 1, vaerr)
	require.InDelta(t, -0.75, vaerr[0], 1e-15)
}
