package simbody

/// Global identifier of a mobilized body within a System. Body 0 is Ground.
type MobilizedBodyIndex int

/// Identifier of a Constraint within its owning System.
type ConstraintIndex int

const InvalidMobilizedBodyIndex MobilizedBodyIndex = -1
const GroundIndex MobilizedBodyIndex = 0

/// Per-constraint equation bookkeeping, fixed once the Model stage has been
/// realized. Slots are offsets within the per-category blocks of the global
/// error and multiplier arrays; -1 means the category is empty for this
/// constraint.
type ConstraintEquationInfo struct {
	NumHolo    int
	NumNonholo int
	NumAccOnly int

	HoloSlot    int
	NonholoSlot int
	AccOnlySlot int
}

/// Results of Model-stage realization: the generalized coordinate/speed
/// allocation table and the constraint equation layout.
type ModelCache struct {
	// Indexed by MobilizedBodyIndex.
	QStart []int
	NQ     []int
	UStart []int
	NU     []int

	TotalNQ int
	TotalNU int

	// Indexed by ConstraintIndex.
	Constraints []ConstraintEquationInfo

	TotalNumHolo    int
	TotalNumNonholo int
	TotalNumAccOnly int
}

/// Results of Position-stage realization. Body transforms are measured from
/// and expressed in the common ancestor frame A. QErr holds every
/// constraint's holonomic position errors, laid out per the Model cache.
type PositionCache struct {
	BodyTransforms []Transform
	QErr           []float64
}

/// Results of Velocity-stage realization. UErr is segmented
/// [holonomic first derivatives | nonholonomic errors].
type VelocityCache struct {
	BodyVelocities []SpatialVec
	UErr           []float64
}

/// Results of Acceleration-stage realization. UDotErr is segmented
/// [holonomic second derivatives | nonholonomic first derivatives |
/// acceleration-only errors]. Multipliers shares that layout and is filled in
/// by the outer equations-of-motion solver.
type AccelerationCache struct {
	BodyAccelerations []SpatialVec
	UDot              []float64
	UDotErr           []float64
	Multipliers       []float64
}

/// A state snapshot: time, generalized coordinates and speeds, and the staged
/// caches. Caches are readable only once their stage has been realized;
/// during realization the pipeline hands the cache under construction to the
/// constraints explicitly.
type State struct {
	stage Stage
	time  float64
	q     []float64
	u     []float64

	modelCache        ModelCache
	positionCache     PositionCache
	velocityCache     VelocityCache
	accelerationCache AccelerationCache
}

func MakeState() State {
	return State{stage: StageEmpty}
}

func (s *State) Stage() Stage {
	return s.stage
}

/// Drop this state back below the given stage. Re-realization is lazy: the
/// downstream caches keep their stale contents until the pipeline is driven
/// forward again, but any staged access asserts until then.
func (s *State) Invalidate(stage Stage) {
	if s.stage >= stage {
		s.stage = stage - 1
	}
}

func (s *State) assertStage(min Stage, what string) {
	AssertMsg(s.stage >= min,
		"%s is not available until stage %v has been realized (state is at stage %v)",
		what, min, s.stage)
}

func (s *State) Time() float64 {
	return s.time
}

func (s *State) SetTime(t float64) {
	s.Invalidate(StageTime)
	s.time = t
}

func (s *State) NumQ() int {
	s.assertStage(StageModel, "Number of generalized coordinates")
	return len(s.q)
}

func (s *State) NumU() int {
	s.assertStage(StageModel, "Number of generalized speeds")
	return len(s.u)
}

func (s *State) Q(i int) float64 {
	s.assertStage(StageModel, "Generalized coordinate access")
	return s.q[i]
}

func (s *State) SetQ(i int, v float64) {
	s.assertStage(StageModel, "Generalized coordinate access")
	s.Invalidate(StagePosition)
	s.q[i] = v
}

func (s *State) U(i int) float64 {
	s.assertStage(StageModel, "Generalized speed access")
	return s.u[i]
}

func (s *State) SetU(i int, v float64) {
	s.assertStage(StageModel, "Generalized speed access")
	s.Invalidate(StageVelocity)
	s.u[i] = v
}

/// Read-only staged cache access. Each asserts that the corresponding stage
/// has been realized; during realization the pipeline instead passes the
/// cache entry explicitly to avoid re-entrant construction.

func (s *State) GetModelCache() *ModelCache {
	s.assertStage(StageModel, "Model cache")
	return &s.modelCache
}

func (s *State) GetPositionCache() *PositionCache {
	s.assertStage(StagePosition, "Position cache")
	return &s.positionCache
}

func (s *State) GetVelocityCache() *VelocityCache {
	s.assertStage(StageVelocity, "Velocity cache")
	return &s.velocityCache
}

func (s *State) GetAccelerationCache() *AccelerationCache {
	s.assertStage(StageAcceleration, "Acceleration cache")
	return &s.accelerationCache
}

// Mutable cache access for the realization driver and the kinematics
// registry. Not part of the public contract.

func (s *State) updModelCache() *ModelCache        { return &s.modelCache }
func (s *State) updPositionCache() *PositionCache  { return &s.positionCache }
func (s *State) updVelocityCache() *VelocityCache  { return &s.velocityCache }
func (s *State) updAccelerationCache() *AccelerationCache {
	return &s.accelerationCache
}

func (s *State) setStage(stage Stage) {
	s.stage = stage
}
