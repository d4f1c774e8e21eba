package simbody

import (
	"github.com/rs/zerolog"
)

/// Construction-time description of one mobilized body: its parent in the
/// multibody tree and the number of generalized coordinates and speeds its
/// mobilizer contributes. Ground is created implicitly as body 0 with no
/// mobilities.
type mobilizedBodyInfo struct {
	parent MobilizedBodyIndex
	level  int // Ground is level 0
	nq, nu int
}

/// A System owns the multibody tree description, the registered constraints,
/// and the staged realization pipeline that fills a State's caches. Body
/// kinematics are prescribed by the caller (this is the constraint-evaluation
/// core, not an integrator): poses, velocities, accelerations, udots and
/// multipliers are pushed in with the Set* methods between realize calls.
type System struct {
	log zerolog.Logger

	bodies      []mobilizedBodyInfo
	constraints []ConstraintInterface

	topologyRealized bool

	forceConverter GeneralizedForceConverter
}

func MakeSystem() *System {
	sys := &System{log: zerolog.Nop()}
	// Ground.
	sys.bodies = append(sys.bodies, mobilizedBodyInfo{parent: InvalidMobilizedBodyIndex})
	return sys
}

/// Inject a logger; the default is a no-op logger.
func (sys *System) SetLogger(log zerolog.Logger) {
	sys.log = log
}

/// Add a body to the tree under the given parent, with nq generalized
/// coordinates and nu generalized speeds for its mobilizer.
func (sys *System) CreateMobilizedBody(parent MobilizedBodyIndex, nq, nu int) MobilizedBodyIndex {
	sys.assertNotYetRealized()
	Assert(0 <= int(parent) && int(parent) < len(sys.bodies))
	Assert(nq >= 0 && nu >= 0)
	b := MobilizedBodyIndex(len(sys.bodies))
	sys.bodies = append(sys.bodies, mobilizedBodyInfo{
		parent: parent,
		level:  sys.bodies[parent].level + 1,
		nq:     nq,
		nu:     nu,
	})
	return b
}

/// Adopt a constraint into this System. The constraint's body and mobilizer
/// registrations must refer to bodies of this System.
func (sys *System) AdoptConstraint(impl ConstraintInterface) ConstraintIndex {
	sys.assertNotYetRealized()
	base := impl.Base()
	index := ConstraintIndex(len(sys.constraints))
	base.setSystem(sys, index, impl)
	for _, b := range base.constrainedBodies {
		AssertMsg(0 <= int(b) && int(b) < len(sys.bodies),
			"AdoptConstraint: constrained body %d is not in this System", b)
	}
	for _, b := range base.constrainedMobilizers {
		AssertMsg(0 <= int(b) && int(b) < len(sys.bodies),
			"AdoptConstraint: constrained mobilizer %d is not in this System", b)
	}
	sys.constraints = append(sys.constraints, impl)
	return index
}

func (sys *System) NumMobilizedBodies() int {
	return len(sys.bodies)
}

func (sys *System) NumConstraints() int {
	return len(sys.constraints)
}

func (sys *System) GetConstraint(index ConstraintIndex) ConstraintInterface {
	Assert(0 <= int(index) && int(index) < len(sys.constraints))
	return sys.constraints[index]
}

func (sys *System) GetParent(b MobilizedBodyIndex) MobilizedBodyIndex {
	Assert(0 <= int(b) && int(b) < len(sys.bodies))
	return sys.bodies[b].parent
}

func (sys *System) TopologyRealized() bool {
	return sys.topologyRealized
}

func (sys *System) assertNotYetRealized() {
	AssertMsg(!sys.topologyRealized,
		"The System topology is immutable once the Topology stage has been realized")
}

/// Called when construction-time data changes after realization; forces the
/// next use to start over from RealizeTopology.
func (sys *System) invalidateSystemTopologyCache() {
	sys.topologyRealized = false
}

//
// Realization pipeline. Each Realize* call requires the state to be at the
// previous stage exactly as produced by the preceding call (lazy
// re-realization after invalidation is the caller's job: just drive the
// pipeline forward again from the invalidated stage).
//

/// Freeze the system description: compute each constraint's subtree and run
/// the constraints' topology hooks. Produces a State at Topology stage.
/// Idempotent.
func (sys *System) RealizeTopology() State {
	for _, impl := range sys.constraints {
		base := impl.Base()
		base.subtree = sys.computeSubtree(base.constrainedBodies, base.constrainedMobilizers)
	}
	sys.topologyRealized = true

	s := MakeState()
	for _, impl := range sys.constraints {
		impl.RealizeTopology(&s)
	}
	s.setStage(StageTopology)
	sys.log.Debug().
		Int("bodies", len(sys.bodies)).
		Int("constraints", len(sys.constraints)).
		Msg("realized topology")
	return s
}

/// Allocate the generalized coordinate/speed pools and assign every
/// constraint its equation counts and slots. After this call q and u may be
/// set and the error array layout is fixed.
func (sys *System) RealizeModel(s *State) {
	AssertMsg(sys.topologyRealized, "RealizeModel: Topology has not been realized")
	s.assertStage(StageTopology, "RealizeModel")

	mc := s.updModelCache()
	nb := len(sys.bodies)
	mc.QStart = make([]int, nb)
	mc.NQ = make([]int, nb)
	mc.UStart = make([]int, nb)
	mc.NU = make([]int, nb)
	mc.TotalNQ = 0
	mc.TotalNU = 0
	for b, info := range sys.bodies {
		mc.QStart[b] = mc.TotalNQ
		mc.NQ[b] = info.nq
		mc.UStart[b] = mc.TotalNU
		mc.NU[b] = info.nu
		mc.TotalNQ += info.nq
		mc.TotalNU += info.nu
	}

	mc.Constraints = make([]ConstraintEquationInfo, len(sys.constraints))
	mc.TotalNumHolo = 0
	mc.TotalNumNonholo = 0
	mc.TotalNumAccOnly = 0
	for i, impl := range sys.constraints {
		mp, mv, ma := impl.CalcNumConstraintEquations(s)
		Assert(mp >= 0 && mv >= 0 && ma >= 0)
		info := &mc.Constraints[i]
		info.NumHolo, info.NumNonholo, info.NumAccOnly = mp, mv, ma
		info.HoloSlot, info.NonholoSlot, info.AccOnlySlot = -1, -1, -1
		if mp > 0 {
			info.HoloSlot = mc.TotalNumHolo
		}
		if mv > 0 {
			info.NonholoSlot = mc.TotalNumNonholo
		}
		if ma > 0 {
			info.AccOnlySlot = mc.TotalNumAccOnly
		}
		mc.TotalNumHolo += mp
		mc.TotalNumNonholo += mv
		mc.TotalNumAccOnly += ma
	}

	s.q = make([]float64, mc.TotalNQ)
	s.u = make([]float64, mc.TotalNU)

	pc := s.updPositionCache()
	pc.BodyTransforms = make([]Transform, nb)
	for b := range pc.BodyTransforms {
		pc.BodyTransforms[b] = MakeTransformIdentity()
	}
	pc.QErr = make([]float64, mc.TotalNumHolo)

	vc := s.updVelocityCache()
	vc.BodyVelocities = make([]SpatialVec, nb)
	vc.UErr = make([]float64, mc.TotalNumHolo+mc.TotalNumNonholo)

	ac := s.updAccelerationCache()
	ac.BodyAccelerations = make([]SpatialVec, nb)
	ac.UDot = make([]float64, mc.TotalNU)
	m := mc.TotalNumHolo + mc.TotalNumNonholo + mc.TotalNumAccOnly
	ac.UDotErr = make([]float64, m)
	ac.Multipliers = make([]float64, m)

	for _, impl := range sys.constraints {
		impl.RealizeModel(s)
	}
	s.setStage(StageModel)
	sys.log.Debug().
		Int("nq", mc.TotalNQ).
		Int("nu", mc.TotalNU).
		Int("mHolo", mc.TotalNumHolo).
		Int("mNonholo", mc.TotalNumNonholo).
		Int("mAccOnly", mc.TotalNumAccOnly).
		Msg("realized model")
}

/// Instance and Time stages carry no built-in computations here; they exist
/// so constraints can hook them and so downstream stage gating is uniform.
func (sys *System) RealizeInstance(s *State) {
	s.assertStage(StageModel, "RealizeInstance")
	for _, impl := range sys.constraints {
		impl.RealizeInstance(s)
	}
	s.setStage(StageInstance)
}

func (sys *System) RealizeTime(s *State) {
	s.assertStage(StageInstance, "RealizeTime")
	for _, impl := range sys.constraints {
		impl.RealizeTime(s)
	}
	s.setStage(StageTime)
}

/// Compute every constraint's position errors into the global QErr array.
/// Body transforms must have been prescribed with SetBodyTransform first.
func (sys *System) RealizePosition(s *State) {
	s.assertStage(StageTime, "RealizePosition")
	pc := s.updPositionCache()
	mc := s.GetModelCache()
	for i, impl := range sys.constraints {
		info := &mc.Constraints[i]
		if info.NumHolo > 0 {
			perr := pc.QErr[info.HoloSlot : info.HoloSlot+info.NumHolo]
			impl.RealizePositionErrors(s, pc, info.NumHolo, perr)
		}
	}
	s.setStage(StagePosition)
}

/// Compute every constraint's velocity errors into the global UErr array:
/// holonomic first derivatives in the first block, nonholonomic equations in
/// the second.
func (sys *System) RealizeVelocity(s *State) {
	s.assertStage(StagePosition, "RealizeVelocity")
	vc := s.updVelocityCache()
	mc := s.GetModelCache()
	for i, impl := range sys.constraints {
		info := &mc.Constraints[i]
		if info.NumHolo > 0 {
			pverr := vc.UErr[info.HoloSlot : info.HoloSlot+info.NumHolo]
			impl.RealizePositionDotErrors(s, vc, info.NumHolo, pverr)
		}
		if info.NumNonholo > 0 {
			base := mc.TotalNumHolo + info.NonholoSlot
			verr := vc.UErr[base : base+info.NumNonholo]
			impl.RealizeVelocityErrors(s, vc, info.NumNonholo, verr)
		}
	}
	s.setStage(StageVelocity)
}

/// Compute every constraint's acceleration errors into the global UDotErr
/// array: holonomic second derivatives, then nonholonomic first derivatives,
/// then acceleration-only equations.
func (sys *System) RealizeAcceleration(s *State) {
	s.assertStage(StageVelocity, "RealizeAcceleration")
	ac := s.updAccelerationCache()
	mc := s.GetModelCache()
	for i, impl := range sys.constraints {
		info := &mc.Constraints[i]
		if info.NumHolo > 0 {
			paerr := ac.UDotErr[info.HoloSlot : info.HoloSlot+info.NumHolo]
			impl.RealizePositionDotDotErrors(s, ac, info.NumHolo, paerr)
		}
		if info.NumNonholo > 0 {
			base := mc.TotalNumHolo + info.NonholoSlot
			vaerr := ac.UDotErr[base : base+info.NumNonholo]
			impl.RealizeVelocityDotErrors(s, ac, info.NumNonholo, vaerr)
		}
		if info.NumAccOnly > 0 {
			base := mc.TotalNumHolo + mc.TotalNumNonholo + info.AccOnlySlot
			aerr := ac.UDotErr[base : base+info.NumAccOnly]
			impl.RealizeAccelerationErrors(s, ac, info.NumAccOnly, aerr)
		}
	}
	s.setStage(StageAcceleration)
}

/// Drive the pipeline forward from wherever the state currently sits to the
/// requested stage.
func (sys *System) Realize(s *State, target Stage) {
	for s.Stage() < target {
		switch s.Stage() + 1 {
		case StageModel:
			sys.RealizeModel(s)
		case StageInstance:
			sys.RealizeInstance(s)
		case StageTime:
			sys.RealizeTime(s)
		case StagePosition:
			sys.RealizePosition(s)
		case StageVelocity:
			sys.RealizeVelocity(s)
		case StageAcceleration:
			sys.RealizeAcceleration(s)
		default:
			AssertMsg(false, "Realize: cannot advance a state at stage %v", s.Stage())
		}
	}
}

//
// Prescribed kinematics. The caller supplies body kinematics in the common
// ancestor frame between realize calls; each setter drops the state back so
// stale downstream results cannot be read.
//

/// Prescribe X_AB for body b. Requires Model stage; invalidates Position and
/// above.
func (sys *System) SetBodyTransform(s *State, b MobilizedBodyIndex, x Transform) {
	s.assertStage(StageModel, "SetBodyTransform")
	Assert(0 < int(b) && int(b) < len(sys.bodies))
	s.Invalidate(StagePosition)
	s.updPositionCache().BodyTransforms[b] = x
}

/// Prescribe V_AB for body b. Invalidates Velocity and above.
func (sys *System) SetBodyVelocity(s *State, b MobilizedBodyIndex, v SpatialVec) {
	s.assertStage(StageModel, "SetBodyVelocity")
	Assert(0 < int(b) && int(b) < len(sys.bodies))
	s.Invalidate(StageVelocity)
	s.updVelocityCache().BodyVelocities[b] = v
}

/// Prescribe A_AB for body b. Invalidates Acceleration.
func (sys *System) SetBodyAcceleration(s *State, b MobilizedBodyIndex, a SpatialVec) {
	s.assertStage(StageModel, "SetBodyAcceleration")
	Assert(0 < int(b) && int(b) < len(sys.bodies))
	s.Invalidate(StageAcceleration)
	s.updAccelerationCache().BodyAccelerations[b] = a
}

/// Prescribe one generalized acceleration. Invalidates Acceleration.
func (sys *System) SetUDot(s *State, i int, udot float64) {
	s.assertStage(StageModel, "SetUDot")
	ac := s.updAccelerationCache()
	Assert(0 <= i && i < len(ac.UDot))
	s.Invalidate(StageAcceleration)
	ac.UDot[i] = udot
}

/// Supply the multiplier vector produced by the outer solver, laid out
/// [holo | nonholo | accOnly]. Requires Acceleration stage so multipliers and
/// acceleration errors are always read against the same kinematics.
func (sys *System) SetMultipliers(s *State, lambda []float64) {
	s.assertStage(StageAcceleration, "SetMultipliers")
	ac := s.updAccelerationCache()
	AssertMsg(len(lambda) == len(ac.Multipliers),
		"SetMultipliers: got %d multipliers, system has %d constraint equations",
		len(lambda), len(ac.Multipliers))
	copy(ac.Multipliers, lambda)
}

//
// Subtree computation.
//

/// The outmost common ancestor of the given bodies and every body on the
/// paths from them down to it. A constrained mobilizer contributes its body
/// and that body's parent (the mobilizer connects the two). Ground is the
/// ancestor of last resort.
func (sys *System) computeSubtree(bodies, mobilizers []MobilizedBodyIndex) Subtree {
	terminal := make(map[MobilizedBodyIndex]bool)
	for _, b := range bodies {
		terminal[b] = true
	}
	for _, b := range mobilizers {
		terminal[b] = true
		if p := sys.bodies[b].parent; p != InvalidMobilizedBodyIndex {
			terminal[p] = true
		}
	}
	if len(terminal) == 0 {
		return Subtree{Ancestor: GroundIndex}
	}

	// Walk every terminal body's path to Ground, counting visits. The
	// ancestor is the deepest body that lies on all paths.
	visits := make(map[MobilizedBodyIndex]int)
	for b := range terminal {
		for cur := b; cur != InvalidMobilizedBodyIndex; cur = sys.bodies[cur].parent {
			visits[cur]++
		}
	}
	ancestor := GroundIndex
	for b, n := range visits {
		if n == len(terminal) && sys.bodies[b].level > sys.bodies[ancestor].level {
			ancestor = b
		}
	}

	// The subtree is every visited body strictly inside the ancestor's
	// paths, i.e. above the ancestor's level.
	var span []MobilizedBodyIndex
	for b := range terminal {
		for cur := b; cur != ancestor; cur = sys.bodies[cur].parent {
			span = append(span, cur)
		}
	}
	return Subtree{Ancestor: ancestor, Bodies: uniqueSortedBodies(span)}
}

func uniqueSortedBodies(in []MobilizedBodyIndex) []MobilizedBodyIndex {
	seen := make(map[MobilizedBodyIndex]bool, len(in))
	var out []MobilizedBodyIndex
	for _, b := range in {
		if !seen[b] {
			seen[b] = true
			out = append(out, b)
		}
	}
	// Insertion sort; subtrees are tiny.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] < out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
