package simbody

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

/// Converts ancestor-frame spatial forces on the constrained bodies into
/// equivalent generalized forces over the System's full speed vector. This
/// needs mobilizer geometry the constraint core does not model, so the
/// conversion is pluggable; without a converter installed the composed
/// calculation below fails.
type GeneralizedForceConverter interface {
	/// bodyForcesInA is indexed by ConstrainedBodyIndex of the given
	/// constraint; the result has one entry per System speed.
	Convert(s *State, c *Constraint, bodyForcesInA []SpatialVec) (*mat.VecDense, error)
}

/// Install the converter used by CalcGeneralizedForceFromMultipliers.
func (sys *System) SetGeneralizedForceConverter(conv GeneralizedForceConverter) {
	sys.forceConverter = conv
}

/// Compute the full generalized force vector f = J^T lambda that this
/// constraint's multipliers produce over all of the System's mobilities:
/// body spatial forces are converted through the installed converter, then
/// the constraint's direct mobility forces are scattered into their global
/// slots. Panics if no converter has been installed.
func (c *Constraint) CalcGeneralizedForceFromMultipliers(s *State, mp, mv, ma int, lambda []float64) *mat.VecDense {
	sys := c.System()
	if sys.forceConverter == nil {
		panic("CalcGeneralizedForceFromMultipliers: no generalized force converter is installed")
	}
	bodyForcesInA, mobilityForces := c.CalcConstraintForcesFromMultipliers(s, mp, mv, ma, lambda)

	f, err := sys.forceConverter.Convert(s, c, bodyForcesInA)
	if err != nil {
		panic(fmt.Sprintf("CalcGeneralizedForceFromMultipliers: %v", err))
	}
	AssertMsg(f.Len() == s.NumU(),
		"CalcGeneralizedForceFromMultipliers: converter produced %d entries for %d speeds", f.Len(), s.NumU())

	k := 0
	for cm := 0; cm < c.NumConstrainedMobilizers(); cm++ {
		nu := c.NumConstrainedU(s, ConstrainedMobilizerIndex(cm))
		for which := 0; which < nu; which++ {
			ux := int(c.UIndexOfConstrainedU(s, ConstrainedMobilizerIndex(cm), MobilizerUIndex(which)))
			f.SetVec(ux, f.AtVec(ux)+mobilityForces[k])
			k++
		}
	}
	return f
}

/// FreeBodyConverter handles the common case where every constrained body is
/// mobilized by a free (6-dof) mobilizer whose speeds are laid out as
/// [wx wy wz vx vy vz] in the ancestor frame. A spatial force (t, f) applied
/// at the body origin then maps directly onto the six mobilities.
type FreeBodyConverter struct{}

func (FreeBodyConverter) Convert(s *State, c *Constraint, bodyForcesInA []SpatialVec) (*mat.VecDense, error) {
	out := mat.NewVecDense(s.NumU(), nil)
	mc := s.GetModelCache()
	for cb := 0; cb < c.NumConstrainedBodies(); cb++ {
		b := c.MobilizedBodyIndexOfConstrainedBody(ConstrainedBodyIndex(cb))
		if b == GroundIndex {
			continue // Ground has no mobilities; its reaction is absorbed
		}
		if mc.NU[b] != 6 {
			return nil, fmt.Errorf("body %d has %d mobilities, FreeBodyConverter requires a free (6-dof) mobilizer", b, mc.NU[b])
		}
		F := bodyForcesInA[cb]
		u0 := mc.UStart[b]
		out.SetVec(u0+0, out.AtVec(u0+0)+F.W.X)
		out.SetVec(u0+1, out.AtVec(u0+1)+F.W.Y)
		out.SetVec(u0+2, out.AtVec(u0+2)+F.W.Z)
		out.SetVec(u0+3, out.AtVec(u0+3)+F.V.X)
		out.SetVec(u0+4, out.AtVec(u0+4)+F.V.Y)
		out.SetVec(u0+5, out.AtVec(u0+5)+F.V.Z)
	}
	return out, nil
}
