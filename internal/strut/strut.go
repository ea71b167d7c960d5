// Package strut provides reference force models for the pneumatic
// actuators. The physics core treats these as opaque collaborators; a
// model only has to map (corner, compression, rate, time) to an axial
// force, deterministically.
package strut

import (
	"fmt"
	"math"

	"github.com/rlund/airsusp/internal/body"
	"github.com/rlund/airsusp/internal/dynamo"
)

const (
	DefaultPistonArea   = 0.010   // m²
	DefaultGasVolume    = 0.0020  // m³
	DefaultPolytropic   = 1.4     // adiabatic air
	DefaultDamping      = 9000.0  // N·s/m orifice coefficient
	AtmosphericPressure = 101325. // Pa
)

// Pneumatic is an adiabatic gas-spring strut with orifice damping.
// Compressing the strut shrinks the gas volume, raising pressure along
// a polytropic curve; this is deliberately stiffer than the body
// motion it supports.
type Pneumatic struct {
	Area       float64 // piston area, m²
	Volume     float64 // gas volume at zero compression, m³
	Polytropic float64 // polytropic exponent
	Damping    float64 // orifice damping coefficient, N·s/m
	Pressure   [body.NumCorners]float64 // static absolute pressure per corner, Pa
}

// NewPneumatic builds a strut set preloaded so that each corner
// carries exactly its share of the body weight at zero compression.
func NewPneumatic(p body.Params, gravity float64) *Pneumatic {
	s := &Pneumatic{
		Area:       DefaultPistonArea,
		Volume:     DefaultGasVolume,
		Polytropic: DefaultPolytropic,
		Damping:    DefaultDamping,
	}
	load := p.StaticCornerLoad(gravity)
	for _, c := range body.Corners {
		s.Pressure[c] = AtmosphericPressure + load/s.Area
	}
	return s
}

// Validate rejects geometry a gas spring cannot have.
func (s *Pneumatic) Validate() error {
	if s.Area <= 0 || s.Volume <= 0 {
		return fmt.Errorf("%w: piston area and gas volume must be positive", dynamo.ErrBadParams)
	}
	if s.Polytropic < 1 {
		return fmt.Errorf("%w: polytropic exponent %.3f below isothermal limit", dynamo.ErrBadParams, s.Polytropic)
	}
	for _, c := range body.Corners {
		if s.Pressure[c] <= AtmosphericPressure {
			return fmt.Errorf("%w: %s static pressure %.0f Pa not above atmospheric", dynamo.ErrBadParams, c, s.Pressure[c])
		}
	}
	return nil
}

// Force implements body.ForceModel. Positive compression pushes the
// piston in, shrinking the gas column and raising the force.
func (s *Pneumatic) Force(c body.Corner, compression, rate, t float64) float64 {
	swept := s.Area * compression
	vol := s.Volume - swept
	// Past the mechanical stop the gas column cannot shrink further;
	// pin the volume so the force stays finite and very large.
	if vol < 0.05*s.Volume {
		vol = 0.05 * s.Volume
	}
	p := s.Pressure[c] * math.Pow(s.Volume/vol, s.Polytropic)
	return (p-AtmosphericPressure)*s.Area + s.Damping*rate
}

// Stiffness is the linearised spring rate at zero compression, used
// for sanity checks and bench baselines.
func (s *Pneumatic) Stiffness(c body.Corner) float64 {
	return s.Polytropic * s.Pressure[c] * s.Area * s.Area / s.Volume
}

// Linear is a plain spring-damper strut with a constant preload. Used
// as a test and bench baseline where closed-form behaviour is wanted.
type Linear struct {
	Stiffness float64 // N/m
	Damping   float64 // N·s/m
	Preload   float64 // N at zero compression
}

func (l *Linear) Force(c body.Corner, compression, rate, t float64) float64 {
	return l.Preload + l.Stiffness*compression + l.Damping*rate
}

// Constant returns the same force at every corner regardless of state.
type Constant struct {
	Value float64
}

func (k *Constant) Force(body.Corner, float64, float64, float64) float64 {
	return k.Value
}
