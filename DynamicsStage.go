package simbody

/// Realization stages, strictly ordered. Each stage may only be realized when
/// the previous one is complete, and cached results computed at a stage may
/// only depend on caches at or below that stage.
type Stage int8

const (
	StageEmpty Stage = iota
	StageTopology
	StageModel
	StageInstance
	StageTime
	StagePosition
	StageVelocity
	StageAcceleration
)

func (s Stage) String() string {
	switch s {
	case StageEmpty:
		return "Empty"
	case StageTopology:
		return "Topology"
	case StageModel:
		return "Model"
	case StageInstance:
		return "Instance"
	case StageTime:
		return "Time"
	case StagePosition:
		return "Position"
	case StageVelocity:
		return "Velocity"
	case StageAcceleration:
		return "Acceleration"
	}
	return "Unknown"
}

/// The stage that must already be realized before this one may be.
func (s Stage) Previous() Stage {
	Assert(s > StageEmpty)
	return s - 1
}
