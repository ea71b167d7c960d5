package body

import (
	"fmt"

	"github.com/rlund/airsusp/internal/dynamo"
)

// Corner identifies one of the four strut attachment points.
type Corner int

const (
	FrontLeft Corner = iota
	FrontRight
	RearLeft
	RearRight
	NumCorners
)

var cornerNames = [NumCorners]string{"front_left", "front_right", "rear_left", "rear_right"}

func (c Corner) String() string {
	if c < 0 || c >= NumCorners {
		return fmt.Sprintf("corner(%d)", int(c))
	}
	return cornerNames[c]
}

// Corners lists the four corners in a fixed iteration order.
var Corners = [NumCorners]Corner{FrontLeft, FrontRight, RearLeft, RearRight}

// CornerForces holds one axial strut force per corner, positive up.
type CornerForces [NumCorners]float64

// Attachment is the in-plane position of a strut mount relative to the
// centre of mass. X is longitudinal, positive toward the front; Z is
// lateral, positive toward the left.
type Attachment struct {
	X float64
	Z float64
}

const (
	DefaultMass         = 1600.0 // kg
	DefaultRollInertia  = 550.0  // kg·m²
	DefaultPitchInertia = 2400.0 // kg·m²
	DefaultWheelbase    = 2.70   // m
	DefaultTrack        = 1.60   // m
	DefaultGravity      = 9.81   // m/s²
)

// Params are the static rigid-body constants. Immutable after
// construction; safe to share by reference across goroutines.
type Params struct {
	Mass         float64
	RollInertia  float64
	PitchInertia float64
	Mounts       [NumCorners]Attachment
}

// NewParams builds symmetric corner geometry from wheelbase and track.
// frontBias is the fraction of the wheelbase behind the front axle,
// i.e. 0.5 puts the centre of mass midway.
func NewParams(mass, rollInertia, pitchInertia, wheelbase, track, frontBias float64) Params {
	xf := wheelbase * (1 - frontBias)
	xr := -wheelbase * frontBias
	half := track / 2
	return Params{
		Mass:         mass,
		RollInertia:  rollInertia,
		PitchInertia: pitchInertia,
		Mounts: [NumCorners]Attachment{
			FrontLeft:  {X: xf, Z: half},
			FrontRight: {X: xf, Z: -half},
			RearLeft:   {X: xr, Z: half},
			RearRight:  {X: xr, Z: -half},
		},
	}
}

func DefaultParams() Params {
	return NewParams(DefaultMass, DefaultRollInertia, DefaultPitchInertia,
		DefaultWheelbase, DefaultTrack, 0.5)
}

// Validate rejects non-physical parameter sets: mass or inertias not
// strictly positive, or coincident attachment points.
func (p Params) Validate() error {
	if p.Mass <= 0 {
		return fmt.Errorf("%w: mass %.3f must be positive", dynamo.ErrBadParams, p.Mass)
	}
	if p.RollInertia <= 0 {
		return fmt.Errorf("%w: roll inertia %.3f must be positive", dynamo.ErrBadParams, p.RollInertia)
	}
	if p.PitchInertia <= 0 {
		return fmt.Errorf("%w: pitch inertia %.3f must be positive", dynamo.ErrBadParams, p.PitchInertia)
	}
	for i := 0; i < int(NumCorners); i++ {
		for j := i + 1; j < int(NumCorners); j++ {
			if p.Mounts[i] == p.Mounts[j] {
				return fmt.Errorf("%w: mounts %s and %s coincide",
					dynamo.ErrBadParams, Corner(i), Corner(j))
			}
		}
	}
	return nil
}

// StaticCornerLoad is the weight carried by one corner at rest,
// assuming the mount geometry is symmetric.
func (p Params) StaticCornerLoad(gravity float64) float64 {
	return p.Mass * gravity / float64(NumCorners)
}
