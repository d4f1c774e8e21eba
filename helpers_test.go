package simbody_test

import (
	"github.com/HuaMuLanChina/simbody"
)

// A smooth closed-form rigid body trajectory: rotation about a fixed unit
// axis with theta(t) = theta0 + omega*t + alpha*t^2/2, origin translating
// with constant acceleration. Pose, velocity, and acceleration are exact at
// any time, which makes it suitable for finite-difference checks against the
// analytic error derivatives.
type bodyTrajectory struct {
	Axis                simbody.Vec3 // unit
	Theta0, Omega, Alpha float64
	P0, V0, A0          simbody.Vec3
}

func (tr bodyTrajectory) Eval(t float64) (x simbody.Transform, v, a simbody.SpatialVec) {
	theta := tr.Theta0 + tr.Omega*t + 0.5*tr.Alpha*t*t
	thetaDot := tr.Omega + tr.Alpha*t

	r := simbody.MakeRotationFromAxisAngle(tr.Axis, theta)
	p := simbody.Vec3Add(tr.P0,
		simbody.Vec3Add(simbody.Vec3MulScalar(t, tr.V0), simbody.Vec3MulScalar(0.5*t*t, tr.A0)))
	x = simbody.MakeTransform(r, p)

	w := simbody.Vec3MulScalar(thetaDot, tr.Axis)
	vel := simbody.Vec3Add(tr.V0, simbody.Vec3MulScalar(t, tr.A0))
	v = simbody.MakeSpatialVec(w, vel)

	b := simbody.Vec3MulScalar(tr.Alpha, tr.Axis)
	a = simbody.MakeSpatialVec(b, tr.A0)
	return x, v, a
}

// Ground plus n free (6-dof) bodies, each a direct child of Ground with 7
// coordinates and 6 speeds.
func makeFreeBodySystem(n int) (*simbody.System, []simbody.MobilizedBodyIndex) {
	sys := simbody.MakeSystem()
	bodies := make([]simbody.MobilizedBodyIndex, n)
	for i := range bodies {
		bodies[i] = sys.CreateMobilizedBody(simbody.GroundIndex, 7, 6)
	}
	return sys, bodies
}

// Prescribe the trajectories at time t and drive the state to Acceleration.
func realizeAt(sys *simbody.System, s *simbody.State, bodies []simbody.MobilizedBodyIndex, trajs []bodyTrajectory, t float64) {
	s.SetTime(t)
	if s.Stage() < simbody.StageTime {
		sys.Realize(s, simbody.StageTime)
	}
	for i, b := range bodies {
		x, v, a := trajs[i].Eval(t)
		sys.SetBodyTransform(s, b, x)
		sys.SetBodyVelocity(s, b, v)
		sys.SetBodyAcceleration(s, b, a)
	}
	sys.Realize(s, simbody.StageAcceleration)
}
