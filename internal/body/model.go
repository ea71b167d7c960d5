package body

import (
	"fmt"

	"github.com/rlund/airsusp/internal/dynamo"
)

// CornerHeights carries one vertical road displacement per corner.
type CornerHeights [NumCorners]float64

// Excitation supplies per-wheel road displacement as a function of
// simulation time. Implementations must return finite values for all
// reachable times and are called from the physics goroutine only.
type Excitation interface {
	At(t float64) CornerHeights
}

// ForceModel computes the axial strut force for one corner from its
// compression state. The model must be deterministic for given inputs;
// its internals (valve flow, gas thermodynamics) are opaque here.
type ForceModel interface {
	Force(c Corner, compression, compressionRate, t float64) float64
}

// roadRateEps is the finite-difference width used to estimate the road
// vertical velocity from the displacement profile.
const roadRateEps = 1e-5

// Model is the rigid-body right-hand side: four strut forces and
// gravity acting on a 3-DOF sprung mass. It implements dynamo.System.
//
// All fields are fixed after construction; the Model itself holds no
// mutable state and is owned by the physics goroutine.
type Model struct {
	params    Params
	projector *Projector
	struts    ForceModel
	road      Excitation
	gravity   float64
}

func NewModel(p Params, struts ForceModel, road Excitation) (*Model, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if struts == nil || road == nil {
		return nil, fmt.Errorf("%w: nil strut or road collaborator", dynamo.ErrBadParams)
	}
	return &Model{
		params:    p,
		projector: NewProjector(p),
		struts:    struts,
		road:      road,
		gravity:   DefaultGravity,
	}, nil
}

func (m *Model) Params() Params { return m.params }

// SetGravity overrides the gravitational acceleration. Zero is valid
// and useful for equilibrium tests.
func (m *Model) SetGravity(g float64) { m.gravity = g }

// CornerKinematics resolves the body state into per-corner strut
// compression and compression rate against the road profile, using
// small-angle geometry at each mount:
//
//	u_i = heave + X_i·pitch + Z_i·roll
//
// Compression is positive when the road rises toward the body.
func (m *Model) CornerKinematics(x dynamo.StateVector, t float64) (comp, rate [NumCorners]float64) {
	r := m.road.At(t)
	rNext := m.road.At(t + roadRateEps)
	for _, c := range Corners {
		mnt := m.params.Mounts[c]
		u := x.Heave + mnt.X*x.Pitch + mnt.Z*x.Roll
		uDot := x.HeaveRate + mnt.X*x.PitchRate + mnt.Z*x.RollRate
		rDot := (rNext[c] - r[c]) / roadRateEps
		comp[c] = r[c] - u
		rate[c] = rDot - uDot
	}
	return comp, rate
}

// Loads evaluates the strut forces at the given state and projects
// them onto the body axes.
func (m *Model) Loads(x dynamo.StateVector, t float64) (dynamo.NetLoad, CornerForces) {
	comp, rate := m.CornerKinematics(x, t)
	var f CornerForces
	for _, c := range Corners {
		f[c] = m.struts.Force(c, comp[c], rate[c], t)
	}
	return m.projector.Project(f), f
}

// Derive implements dynamo.System.
func (m *Model) Derive(x dynamo.StateVector, t float64) (dynamo.StateVector, error) {
	if !x.IsFinite() {
		return dynamo.StateVector{}, fmt.Errorf("derive at t=%.4f: %w", t, dynamo.ErrNonFinite)
	}
	load, _ := m.Loads(x, t)
	d := dynamo.StateVector{
		Heave:     x.HeaveRate,
		Roll:      x.RollRate,
		Pitch:     x.PitchRate,
		HeaveRate: load.Vertical/m.params.Mass - m.gravity,
		RollRate:  load.RollMoment / m.params.RollInertia,
		PitchRate: load.PitchMoment / m.params.PitchInertia,
	}
	if !d.IsFinite() {
		return dynamo.StateVector{}, fmt.Errorf("derive at t=%.4f: %w", t, dynamo.ErrNonFinite)
	}
	return d, nil
}

// Energy returns the body's kinetic plus gravitational potential
// energy; strut gas energy is not included.
func (m *Model) Energy(x dynamo.StateVector) float64 {
	ke := 0.5*m.params.Mass*x.HeaveRate*x.HeaveRate +
		0.5*m.params.RollInertia*x.RollRate*x.RollRate +
		0.5*m.params.PitchInertia*x.PitchRate*x.PitchRate
	pe := m.params.Mass * m.gravity * x.Heave
	return ke + pe
}
