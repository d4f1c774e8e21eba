package simbody

/// Local (per-constraint) identifiers, dense and zero-based, assigned in
/// registration order.
type ConstrainedBodyIndex int
type ConstrainedMobilizerIndex int

/// Coordinate/speed numbering local to one mobilizer.
type MobilizerQIndex int
type MobilizerUIndex int

/// Coordinate/speed numbering local to one constraint, running over all of
/// its constrained mobilizers in registration order.
type ConstrainedQIndex int
type ConstrainedUIndex int

/// Global coordinate/speed numbering over the whole System.
type QIndex int
type UIndex int

/// The minimal kinematic span touched by one constraint: the outmost common
/// ancestor of the constrained bodies, plus every body on the paths inward
/// from the constrained bodies to that ancestor. The ancestor is treated like
/// Ground: its own mobilities are not part of the span.
type Subtree struct {
	Ancestor MobilizedBodyIndex
	Bodies   []MobilizedBodyIndex // sorted, ancestor excluded
}

/// ConstraintInterface is the capability set every constraint kind exposes to
/// the realization pipeline and the force engine. The Constraint base struct
/// supplies defaults for every hook: the realize hooks do nothing, the error
/// and force hooks fail if invoked with a nonzero equation count. A concrete
/// variant overrides exactly the hooks matching its nonzero categories.
type ConstraintInterface interface {
	/// Access to the shared base (index manager, accessor, force engine).
	Base() *Constraint

	/// After Model-stage variables are available a constraint may choose its
	/// equation counts; the default returns the construction-time counts.
	CalcNumConstraintEquations(s *State) (mp, mv, ma int)

	// Extension points for the realization pipeline. Topology realization
	// must be idempotent.
	RealizeTopology(s *State)
	RealizeModel(s *State)
	RealizeInstance(s *State)
	RealizeTime(s *State)

	// These must be overridden if there are any holonomic (position)
	// constraint equations.
	RealizePositionErrors(s *State, pc *PositionCache, mp int, perr []float64)
	RealizePositionDotErrors(s *State, vc *VelocityCache, mp int, pverr []float64)
	RealizePositionDotDotErrors(s *State, ac *AccelerationCache, mp int, paerr []float64)
	ApplyPositionConstraintForces(s *State, mp int, multipliers []float64,
		bodyForcesInA []SpatialVec, mobilityForces []float64)

	// These must be overridden if there are any nonholonomic (velocity)
	// constraint equations.
	RealizeVelocityErrors(s *State, vc *VelocityCache, mv int, verr []float64)
	RealizeVelocityDotErrors(s *State, ac *AccelerationCache, mv int, vaerr []float64)
	ApplyVelocityConstraintForces(s *State, mv int, multipliers []float64,
		bodyForcesInA []SpatialVec, mobilityForces []float64)

	// These must be overridden if there are any acceleration-only constraint
	// equations.
	RealizeAccelerationErrors(s *State, ac *AccelerationCache, ma int, aerr []float64)
	ApplyAccelerationConstraintForces(s *State, ma int, multipliers []float64,
		bodyForcesInA []SpatialVec, mobilityForces []float64)
}

/// The base constraint. It owns the default equation counts, the
/// local-to-global index mappings for constrained bodies and mobilizers, the
/// topology-derived Subtree, and the non-overridable machinery built on the
/// hooks: error extraction, the O(m) multiplier-to-force engine, and the
/// frame kinematics accessor.
type Constraint struct {
	system *System
	index  ConstraintIndex
	impl   ConstraintInterface

	defaultMp, defaultMv, defaultMa int

	// Local->global is a flat slice since local indices are small and
	// contiguous; global->local is a map.
	constrainedBodies     []MobilizedBodyIndex
	constrainedMobilizers []MobilizedBodyIndex
	bodyIndexMap          map[MobilizedBodyIndex]ConstrainedBodyIndex
	mobilizerIndexMap     map[MobilizedBodyIndex]ConstrainedMobilizerIndex

	// Topology cache.
	subtree Subtree
}

/// Construct the shared base with the default (construction-time) counts of
/// holonomic, nonholonomic, and acceleration-only equations.
func MakeConstraint(mp, mv, ma int) Constraint {
	Assert(mp >= 0 && mv >= 0 && ma >= 0)
	return Constraint{
		index:             -1,
		defaultMp:         mp,
		defaultMv:         mv,
		defaultMa:         ma,
		bodyIndexMap:      make(map[MobilizedBodyIndex]ConstrainedBodyIndex),
		mobilizerIndexMap: make(map[MobilizedBodyIndex]ConstrainedMobilizerIndex),
	}
}

func (c *Constraint) Base() *Constraint {
	return c
}

/// Replace the default equation counts. Only meaningful before the Model
/// stage is realized; invalidates the topology cache.
func (c *Constraint) SetDefaultNumConstraintEquations(mp, mv, ma int) {
	Assert(mp >= 0 && mv >= 0 && ma >= 0)
	c.InvalidateTopologyCache()
	c.defaultMp = mp
	c.defaultMv = mv
	c.defaultMa = ma
}

func (c *Constraint) DefaultNumConstraintEquations() (mp, mv, ma int) {
	return c.defaultMp, c.defaultMv, c.defaultMa
}

/// The default Model-stage behavior reads back the construction-time counts.
func (c *Constraint) CalcNumConstraintEquations(s *State) (mp, mv, ma int) {
	return c.defaultMp, c.defaultMv, c.defaultMa
}

func (c *Constraint) IsInSystem() bool {
	return c.system != nil
}

func (c *Constraint) System() *System {
	AssertMsg(c.system != nil, "Constraint is not in a System")
	return c.system
}

func (c *Constraint) ConstraintIndex() ConstraintIndex {
	AssertMsg(c.system != nil, "Constraint is not in a System")
	return c.index
}

/// Signal that construction-time data changed. Topology-derived caches (and
/// everything downstream) become invalid; the owning System must be
/// re-realized from the Topology stage before staged data is accessed again.
func (c *Constraint) InvalidateTopologyCache() {
	if c.system != nil {
		c.system.invalidateSystemTopologyCache()
	}
}

func (c *Constraint) setSystem(sys *System, index ConstraintIndex, impl ConstraintInterface) {
	AssertMsg(c.system == nil, "Constraint is already in a System")
	c.system = sys
	c.index = index
	c.impl = impl
}

//
// Index & slot manager.
//

/// Register a body whose kinematics participate in this constraint's
/// equations. Registering the same body twice returns the existing local
/// index. Only allowed during the topology-definition phase.
func (c *Constraint) AddConstrainedBody(b MobilizedBodyIndex) ConstrainedBodyIndex {
	c.assertNotYetRealized()
	if existing, ok := c.bodyIndexMap[b]; ok {
		return existing
	}
	next := ConstrainedBodyIndex(len(c.constrainedBodies))
	c.constrainedBodies = append(c.constrainedBodies, b)
	c.bodyIndexMap[b] = next
	return next
}

/// Register a mobilizer whose generalized coordinates and speeds participate
/// directly in this constraint's equations. All of that mobilizer's q's and
/// u's are included, but how many there are is not known until the Model
/// stage. Duplicate registration returns the existing local index.
func (c *Constraint) AddConstrainedMobilizer(b MobilizedBodyIndex) ConstrainedMobilizerIndex {
	c.assertNotYetRealized()
	if existing, ok := c.mobilizerIndexMap[b]; ok {
		return existing
	}
	next := ConstrainedMobilizerIndex(len(c.constrainedMobilizers))
	c.constrainedMobilizers = append(c.constrainedMobilizers, b)
	c.mobilizerIndexMap[b] = next
	return next
}

func (c *Constraint) assertNotYetRealized() {
	AssertMsg(c.system == nil || !c.system.topologyRealized,
		"The set of constrained bodies and mobilizers is immutable once Topology has been realized")
}

func (c *Constraint) assertTopologyRealized(what string) {
	AssertMsg(c.system != nil && c.system.topologyRealized,
		"%s is not available until the Topology stage has been realized", what)
}

func (c *Constraint) NumConstrainedBodies() int {
	c.assertTopologyRealized("Number of constrained bodies")
	return len(c.constrainedBodies)
}

func (c *Constraint) NumConstrainedMobilizers() int {
	c.assertTopologyRealized("Number of constrained mobilizers")
	return len(c.constrainedMobilizers)
}

func (c *Constraint) MobilizedBodyIndexOfConstrainedBody(cb ConstrainedBodyIndex) MobilizedBodyIndex {
	Assert(0 <= int(cb) && int(cb) < len(c.constrainedBodies))
	return c.constrainedBodies[cb]
}

func (c *Constraint) MobilizedBodyIndexOfConstrainedMobilizer(cm ConstrainedMobilizerIndex) MobilizedBodyIndex {
	Assert(0 <= int(cm) && int(cm) < len(c.constrainedMobilizers))
	return c.constrainedMobilizers[cm]
}

func (c *Constraint) ConstrainedBodyIndexOfMobilizedBody(b MobilizedBodyIndex) (ConstrainedBodyIndex, bool) {
	cb, ok := c.bodyIndexMap[b]
	return cb, ok
}

func (c *Constraint) ConstrainedMobilizerIndexOfMobilizedBody(b MobilizedBodyIndex) (ConstrainedMobilizerIndex, bool) {
	cm, ok := c.mobilizerIndexMap[b]
	return cm, ok
}

/// The topology-derived minimal kinematic span of this constraint.
func (c *Constraint) GetSubtree() Subtree {
	c.assertTopologyRealized("The constraint subtree")
	return c.subtree
}

/// How many holonomic, nonholonomic, and acceleration-only constraint
/// equations this constraint generates. Structurally undefined before the
/// Model stage has been realized.
func (c *Constraint) NumConstraintEquations(s *State) (mp, mv, ma int) {
	s.assertStage(StageModel, "Constraint equation counts")
	info := &s.modelCache.Constraints[c.index]
	return info.NumHolo, info.NumNonholo, info.NumAccOnly
}

/// The first assigned slot for this constraint's equations in each category
/// block of the System's error/multiplier arrays. The blocks live at
///   (holo0, mp), (TotalNumHolo+nonholo0, mv),
///   (TotalNumHolo+TotalNumNonholo+accOnly0, ma)
/// within UDotErr/Multipliers; QErr uses only the first block and UErr the
/// first two. Returns -1 for a category with no equations.
func (c *Constraint) ConstraintEquationSlots(s *State) (holo0, nonholo0, accOnly0 int) {
	s.assertStage(StageModel, "Constraint equation slots")
	info := &s.modelCache.Constraints[c.index]
	return info.HoloSlot, info.NonholoSlot, info.AccOnlySlot
}

func (c *Constraint) NumConstrainedQ(s *State, cm ConstrainedMobilizerIndex) int {
	s.assertStage(StageModel, "Constrained coordinate counts")
	return s.modelCache.NQ[c.MobilizedBodyIndexOfConstrainedMobilizer(cm)]
}

func (c *Constraint) NumConstrainedU(s *State, cm ConstrainedMobilizerIndex) int {
	s.assertStage(StageModel, "Constrained speed counts")
	return s.modelCache.NU[c.MobilizedBodyIndexOfConstrainedMobilizer(cm)]
}

/// Total q's and u's over all of this constraint's mobilizers.
func (c *Constraint) NumConstrainedQTotal(s *State) int {
	total := 0
	for cm := range c.constrainedMobilizers {
		total += c.NumConstrainedQ(s, ConstrainedMobilizerIndex(cm))
	}
	return total
}

func (c *Constraint) NumConstrainedUTotal(s *State) int {
	total := 0
	for cm := range c.constrainedMobilizers {
		total += c.NumConstrainedU(s, ConstrainedMobilizerIndex(cm))
	}
	return total
}

/// Map a (local mobilizer, local coordinate) pair to the constraint-local
/// dense coordinate numbering.
func (c *Constraint) GetConstrainedQIndex(s *State, cm ConstrainedMobilizerIndex, which MobilizerQIndex) ConstrainedQIndex {
	Assert(0 <= int(which) && int(which) < c.NumConstrainedQ(s, cm))
	offset := 0
	for m := ConstrainedMobilizerIndex(0); m < cm; m++ {
		offset += c.NumConstrainedQ(s, m)
	}
	return ConstrainedQIndex(offset + int(which))
}

func (c *Constraint) GetConstrainedUIndex(s *State, cm ConstrainedMobilizerIndex, which MobilizerUIndex) ConstrainedUIndex {
	Assert(0 <= int(which) && int(which) < c.NumConstrainedU(s, cm))
	offset := 0
	for m := ConstrainedMobilizerIndex(0); m < cm; m++ {
		offset += c.NumConstrainedU(s, m)
	}
	return ConstrainedUIndex(offset + int(which))
}

/// Map a (local mobilizer, local coordinate/speed) pair to the System-global
/// coordinate/speed numbering.
func (c *Constraint) QIndexOfConstrainedQ(s *State, cm ConstrainedMobilizerIndex, which MobilizerQIndex) QIndex {
	Assert(0 <= int(which) && int(which) < c.NumConstrainedQ(s, cm))
	b := c.MobilizedBodyIndexOfConstrainedMobilizer(cm)
	return QIndex(s.modelCache.QStart[b] + int(which))
}

func (c *Constraint) UIndexOfConstrainedU(s *State, cm ConstrainedMobilizerIndex, which MobilizerUIndex) UIndex {
	Assert(0 <= int(which) && int(which) < c.NumConstrainedU(s, cm))
	b := c.MobilizedBodyIndexOfConstrainedMobilizer(cm)
	return UIndex(s.modelCache.UStart[b] + int(which))
}

//
// Error and multiplier extraction. Each asserts that the expected count
// matches the realized count and that the caller-owned buffer is big enough.
//

/// Extract this constraint's position (holonomic) errors from a state
/// realized to the Position stage. mp must match the realized holonomic
/// count exactly; perr must have at least mp elements.
func (c *Constraint) GetPositionErrors(s *State, mp int, perr []float64) {
	actualMp, _, _ := c.NumConstraintEquations(s)
	AssertMsg(mp == actualMp, "GetPositionErrors: expected %d equations, constraint has %d", mp, actualMp)
	AssertMsg(len(perr) >= mp, "GetPositionErrors: output buffer too small")
	pc := s.GetPositionCache()
	holo0, _, _ := c.ConstraintEquationSlots(s)
	if mp > 0 {
		copy(perr[:mp], pc.QErr[holo0:holo0+mp])
	}
}

/// Extract this constraint's velocity errors: the first derivatives of its
/// holonomic equations followed by its nonholonomic equations. mpv must be
/// exactly mp+mv.
func (c *Constraint) GetVelocityErrors(s *State, mpv int, pverr []float64) {
	actualMp, actualMv, _ := c.NumConstraintEquations(s)
	AssertMsg(mpv == actualMp+actualMv, "GetVelocityErrors: expected %d equations, constraint has %d", mpv, actualMp+actualMv)
	AssertMsg(len(pverr) >= mpv, "GetVelocityErrors: output buffer too small")
	vc := s.GetVelocityCache()
	mc := s.GetModelCache()
	holo0, nonholo0, _ := c.ConstraintEquationSlots(s)
	if actualMp > 0 {
		copy(pverr[:actualMp], vc.UErr[holo0:holo0+actualMp])
	}
	if actualMv > 0 {
		base := mc.TotalNumHolo + nonholo0
		copy(pverr[actualMp:mpv], vc.UErr[base:base+actualMv])
	}
}

/// Extract this constraint's acceleration errors: second derivatives of the
/// holonomic equations, first derivatives of the nonholonomic equations, then
/// the acceleration-only equations. mpva must be exactly mp+mv+ma.
func (c *Constraint) GetAccelerationErrors(s *State, mpva int, pvaerr []float64) {
	ac := s.GetAccelerationCache()
	c.extractAccelerationLayout(s, mpva, pvaerr, ac.UDotErr, "GetAccelerationErrors")
}

/// Extract this constraint's multipliers, laid out like the acceleration
/// errors. The multipliers are supplied by the outer solver; extraction
/// requires the Acceleration stage.
func (c *Constraint) GetMultipliers(s *State, mpva int, lambda []float64) {
	ac := s.GetAccelerationCache()
	c.extractAccelerationLayout(s, mpva, lambda, ac.Multipliers, "GetMultipliers")
}

func (c *Constraint) extractAccelerationLayout(s *State, mpva int, out, global []float64, what string) {
	mp, mv, ma := c.NumConstraintEquations(s)
	AssertMsg(mpva == mp+mv+ma, "%s: expected %d equations, constraint has %d", what, mpva, mp+mv+ma)
	AssertMsg(len(out) >= mpva, "%s: output buffer too small", what)
	mc := s.GetModelCache()
	holo0, nonholo0, accOnly0 := c.ConstraintEquationSlots(s)
	if mp > 0 {
		copy(out[:mp], global[holo0:holo0+mp])
	}
	if mv > 0 {
		base := mc.TotalNumHolo + nonholo0
		copy(out[mp:mp+mv], global[base:base+mv])
	}
	if ma > 0 {
		base := mc.TotalNumHolo + mc.TotalNumNonholo + accOnly0
		copy(out[mp+mv:mpva], global[base:base+ma])
	}
}

//
// Force/Jacobian-transpose engine.
//

/// Given multipliers segmented [mp|mv|ma] (any segment may be empty by
/// passing a zero count), produce in O(m) the spatial forces on each
/// constrained body (expressed in the ancestor frame) and the generalized
/// forces on each constrained mobility which those multipliers generate.
/// Nonzero counts must match the realized counts exactly.
func (c *Constraint) CalcConstraintForcesFromMultipliers(s *State, mp, mv, ma int, lambda []float64) (bodyForcesInA []SpatialVec, mobilityForces []float64) {
	actualMp, actualMv, actualMa := c.NumConstraintEquations(s)

	bodyForcesInA = make([]SpatialVec, c.NumConstrainedBodies())
	mobilityForces = make([]float64, c.NumConstrainedUTotal(s))

	AssertMsg(len(lambda) >= mp+mv+ma, "CalcConstraintForcesFromMultipliers: multiplier vector too small")

	if mp != 0 {
		AssertMsg(mp == actualMp, "CalcConstraintForcesFromMultipliers: mp is %d, constraint has %d", mp, actualMp)
		c.impl.ApplyPositionConstraintForces(s, mp, lambda[0:mp], bodyForcesInA, mobilityForces)
	}
	if mv != 0 {
		AssertMsg(mv == actualMv, "CalcConstraintForcesFromMultipliers: mv is %d, constraint has %d", mv, actualMv)
		c.impl.ApplyVelocityConstraintForces(s, mv, lambda[mp:mp+mv], bodyForcesInA, mobilityForces)
	}
	if ma != 0 {
		AssertMsg(ma == actualMa, "CalcConstraintForcesFromMultipliers: ma is %d, constraint has %d", ma, actualMa)
		c.impl.ApplyAccelerationConstraintForces(s, ma, lambda[mp+mv:mp+mv+ma], bodyForcesInA, mobilityForces)
	}
	return bodyForcesInA, mobilityForces
}

//
// Frame kinematics accessor. Everything is measured from and expressed in
// the ancestor frame A. Two access modes are provided: the *FromCache forms
// take the cache entry explicitly and are for use while that very stage is
// being realized; the plain forms fetch the cache from the state and are for
// use after realization has completed. Both produce identical results.
//

func (c *Constraint) bodySlot(cb ConstrainedBodyIndex) MobilizedBodyIndex {
	return c.MobilizedBodyIndexOfConstrainedBody(cb)
}

/// X_AB, the transform of constrained body B in the ancestor frame.
func (c *Constraint) GetBodyTransformFromCache(pc *PositionCache, cb ConstrainedBodyIndex) Transform {
	return pc.BodyTransforms[c.bodySlot(cb)]
}

func (c *Constraint) GetBodyTransform(s *State, cb ConstrainedBodyIndex) Transform {
	return c.GetBodyTransformFromCache(s.GetPositionCache(), cb)
}

/// V_AB = (w_AB, v_AB), the spatial velocity of constrained body B.
func (c *Constraint) GetBodyVelocityFromCache(vc *VelocityCache, cb ConstrainedBodyIndex) SpatialVec {
	return vc.BodyVelocities[c.bodySlot(cb)]
}

func (c *Constraint) GetBodyVelocity(s *State, cb ConstrainedBodyIndex) SpatialVec {
	return c.GetBodyVelocityFromCache(s.GetVelocityCache(), cb)
}

/// A_AB = (b_AB, a_AB), the spatial acceleration of constrained body B.
func (c *Constraint) GetBodyAccelerationFromCache(ac *AccelerationCache, cb ConstrainedBodyIndex) SpatialVec {
	return ac.BodyAccelerations[c.bodySlot(cb)]
}

func (c *Constraint) GetBodyAcceleration(s *State, cb ConstrainedBodyIndex) SpatialVec {
	return c.GetBodyAccelerationFromCache(s.GetAccelerationCache(), cb)
}

// Rotational and translational pieces of the spatial quantities above.

func (c *Constraint) GetBodyRotationFromCache(pc *PositionCache, cb ConstrainedBodyIndex) Rotation {
	return c.GetBodyTransformFromCache(pc, cb).R
}

func (c *Constraint) GetBodyRotation(s *State, cb ConstrainedBodyIndex) Rotation {
	return c.GetBodyTransform(s, cb).R
}

func (c *Constraint) GetBodyOriginLocationFromCache(pc *PositionCache, cb ConstrainedBodyIndex) Vec3 {
	return c.GetBodyTransformFromCache(pc, cb).P
}

func (c *Constraint) GetBodyOriginLocation(s *State, cb ConstrainedBodyIndex) Vec3 {
	return c.GetBodyTransform(s, cb).P
}

func (c *Constraint) GetBodyAngularVelocityFromCache(vc *VelocityCache, cb ConstrainedBodyIndex) Vec3 {
	return c.GetBodyVelocityFromCache(vc, cb).W
}

func (c *Constraint) GetBodyAngularVelocity(s *State, cb ConstrainedBodyIndex) Vec3 {
	return c.GetBodyVelocity(s, cb).W
}

func (c *Constraint) GetBodyOriginVelocity(s *State, cb ConstrainedBodyIndex) Vec3 {
	return c.GetBodyVelocity(s, cb).V
}

func (c *Constraint) GetBodyAngularAccelerationFromCache(ac *AccelerationCache, cb ConstrainedBodyIndex) Vec3 {
	return c.GetBodyAccelerationFromCache(ac, cb).W
}

func (c *Constraint) GetBodyAngularAcceleration(s *State, cb ConstrainedBodyIndex) Vec3 {
	return c.GetBodyAcceleration(s, cb).W
}

func (c *Constraint) GetBodyOriginAcceleration(s *State, cb ConstrainedBodyIndex) Vec3 {
	return c.GetBodyAcceleration(s, cb).V
}

/// Location in A of a station (a point fixed in body B's frame):
/// p_A = X_AB * p_B.
func (c *Constraint) CalcStationLocationFromCache(pc *PositionCache, cb ConstrainedBodyIndex, pB Vec3) Vec3 {
	return TransformPoint(c.GetBodyTransformFromCache(pc, cb), pB)
}

func (c *Constraint) CalcStationLocation(s *State, cb ConstrainedBodyIndex, pB Vec3) Vec3 {
	return c.CalcStationLocationFromCache(s.GetPositionCache(), cb, pB)
}

/// Velocity in A of a station of B: v = v_origin + w x r, with
/// r the station offset re-expressed (but not shifted) into A.
func (c *Constraint) CalcStationVelocityFromCache(s *State, vc *VelocityCache, cb ConstrainedBodyIndex, pB Vec3) Vec3 {
	pA := RotationMulVec3(c.GetBodyRotation(s, cb), pB)
	vAB := c.GetBodyVelocityFromCache(vc, cb)
	return Vec3Add(vAB.V, Vec3Cross(vAB.W, pA))
}

func (c *Constraint) CalcStationVelocity(s *State, cb ConstrainedBodyIndex, pB Vec3) Vec3 {
	return c.CalcStationVelocityFromCache(s, s.GetVelocityCache(), cb, pB)
}

/// Acceleration in A of a station of B:
/// a = a_origin + b x r + w x (w x r).
/// The cross product is not associative; the evaluation order here is load
/// bearing.
func (c *Constraint) CalcStationAccelerationFromCache(s *State, ac *AccelerationCache, cb ConstrainedBodyIndex, pB Vec3) Vec3 {
	pA := RotationMulVec3(c.GetBodyRotation(s, cb), pB)
	wAB := c.GetBodyAngularVelocity(s, cb)
	aAB := c.GetBodyAccelerationFromCache(ac, cb)

	a := Vec3Add(aAB.V, Vec3Cross(aAB.W, pA))
	a.OperatorPlusInplace(Vec3Cross(wAB, Vec3Cross(wAB, pA)))
	return a
}

func (c *Constraint) CalcStationAcceleration(s *State, cb ConstrainedBodyIndex, pB Vec3) Vec3 {
	return c.CalcStationAccelerationFromCache(s, s.GetAccelerationCache(), cb, pB)
}

//
// Force accumulation helpers for the Apply*ConstraintForces hooks.
//

/// Apply an ancestor-frame force at a station of constrained body B,
/// accumulating the equivalent (torque about the body origin, force) pair
/// into that body's entry.
func (c *Constraint) AddInStationForce(s *State, cb ConstrainedBodyIndex, pB Vec3, forceInA Vec3, bodyForcesInA []SpatialVec) {
	Assert(len(bodyForcesInA) == c.NumConstrainedBodies())
	rAB := c.GetBodyRotation(s, cb)
	moment := Vec3Cross(RotationMulVec3(rAB, pB), forceInA) // r x f
	bodyForcesInA[cb].OperatorPlusInplace(MakeSpatialVec(moment, forceInA))
}

/// Apply an ancestor-frame torque to constrained body B.
func (c *Constraint) AddInBodyTorque(s *State, cb ConstrainedBodyIndex, torqueInA Vec3, bodyForcesInA []SpatialVec) {
	Assert(len(bodyForcesInA) == c.NumConstrainedBodies())
	bodyForcesInA[cb].W.OperatorPlusInplace(torqueInA)
}

/// Apply a generalized force to one mobility of a constrained mobilizer,
/// accumulating into the constraint-local mobility force slot.
func (c *Constraint) AddInOneMobilityForce(s *State, cm ConstrainedMobilizerIndex, which MobilizerUIndex, f float64, mobilityForces []float64) {
	Assert(len(mobilityForces) == c.NumConstrainedUTotal(s))
	mobilityForces[c.GetConstrainedUIndex(s, cm, which)] += f
}

//
// Constrained mobilizer coordinate/speed access.
//

func (c *Constraint) GetOneQ(s *State, cm ConstrainedMobilizerIndex, which MobilizerQIndex) float64 {
	return s.Q(int(c.QIndexOfConstrainedQ(s, cm, which)))
}

func (c *Constraint) GetOneU(s *State, cm ConstrainedMobilizerIndex, which MobilizerUIndex) float64 {
	return s.U(int(c.UIndexOfConstrainedU(s, cm, which)))
}

/// Read one generalized acceleration. With realizing=true the acceleration
/// cache under construction is consulted directly, for use from within an
/// Acceleration-stage hook.
func (c *Constraint) GetOneUDot(s *State, cm ConstrainedMobilizerIndex, which MobilizerUIndex, realizing bool) float64 {
	ux := int(c.UIndexOfConstrainedU(s, cm, which))
	if realizing {
		return s.updAccelerationCache().UDot[ux]
	}
	return s.GetAccelerationCache().UDot[ux]
}

//
// Default hook bodies. Realize hooks are extension points with empty
// defaults; error/force hooks must never be reached unless the matching
// count is nonzero, so the defaults here fail hard.
//

func (c *Constraint) RealizeTopology(s *State) {}
func (c *Constraint) RealizeModel(s *State)    {}
func (c *Constraint) RealizeInstance(s *State) {}
func (c *Constraint) RealizeTime(s *State)     {}

func (c *Constraint) RealizePositionErrors(s *State, pc *PositionCache, mp int, perr []float64) {
	AssertMsg(mp == 0, "RealizePositionErrors must be overridden by a constraint with holonomic equations")
}

func (c *Constraint) RealizePositionDotErrors(s *State, vc *VelocityCache, mp int, pverr []float64) {
	AssertMsg(mp == 0, "RealizePositionDotErrors must be overridden by a constraint with holonomic equations")
}

func (c *Constraint) RealizePositionDotDotErrors(s *State, ac *AccelerationCache, mp int, paerr []float64) {
	AssertMsg(mp == 0, "RealizePositionDotDotErrors must be overridden by a constraint with holonomic equations")
}

func (c *Constraint) ApplyPositionConstraintForces(s *State, mp int, multipliers []float64, bodyForcesInA []SpatialVec, mobilityForces []float64) {
	AssertMsg(mp == 0, "ApplyPositionConstraintForces must be overridden by a constraint with holonomic equations")
}

func (c *Constraint) RealizeVelocityErrors(s *State, vc *VelocityCache, mv int, verr []float64) {
	AssertMsg(mv == 0, "RealizeVelocityErrors must be overridden by a constraint with nonholonomic equations")
}

func (c *Constraint) RealizeVelocityDotErrors(s *State, ac *AccelerationCache, mv int, vaerr []float64) {
	AssertMsg(mv == 0, "RealizeVelocityDotErrors must be overridden by a constraint with nonholonomic equations")
}

func (c *Constraint) ApplyVelocityConstraintForces(s *State, mv int, multipliers []float64, bodyForcesInA []SpatialVec, mobilityForces []float64) {
	AssertMsg(mv == 0, "ApplyVelocityConstraintForces must be overridden by a constraint with nonholonomic equations")
}

func (c *Constraint) RealizeAccelerationErrors(s *State, ac *AccelerationCache, ma int, aerr []float64) {
	AssertMsg(ma == 0, "RealizeAccelerationErrors must be overridden by a constraint with acceleration-only equations")
}

func (c *Constraint) ApplyAccelerationConstraintForces(s *State, ma int, multipliers []float64, bodyForcesInA []SpatialVec, mobilityForces []float64) {
	AssertMsg(ma == 0, "ApplyAccelerationConstraintForces must be overridden by a constraint with acceleration-only equations")
}
