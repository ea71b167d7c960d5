// Package road provides excitation profiles: per-wheel vertical road
// displacement as a function of simulation time. Profiles are pure and
// are called from the physics goroutine only.
package road

import (
	"math"

	"github.com/rlund/airsusp/internal/body"
)

// Flat is a perfectly smooth road.
type Flat struct{}

func (Flat) At(t float64) body.CornerHeights {
	return body.CornerHeights{}
}

// Sine is a sinusoidal surface. LeftRightPhase offsets the right track
// to excite roll; AxleLag delays the rear wheels by the time it takes
// the wheelbase to pass, exciting pitch.
type Sine struct {
	Amplitude      float64 // m
	Frequency      float64 // Hz
	LeftRightPhase float64 // rad
	AxleLag        float64 // s
}

func (s Sine) At(t float64) body.CornerHeights {
	w := 2 * math.Pi * s.Frequency
	var h body.CornerHeights
	h[body.FrontLeft] = s.Amplitude * math.Sin(w*t)
	h[body.FrontRight] = s.Amplitude * math.Sin(w*t+s.LeftRightPhase)
	h[body.RearLeft] = s.Amplitude * math.Sin(w*(t-s.AxleLag))
	h[body.RearRight] = s.Amplitude * math.Sin(w*(t-s.AxleLag)+s.LeftRightPhase)
	return h
}

// Bump is a single raised-cosine event hitting the front axle at Start
// and the rear axle AxleLag later.
type Bump struct {
	Height   float64 // m
	Start    float64 // s
	Duration float64 // s
	AxleLag  float64 // s
}

func (b Bump) shape(t float64) float64 {
	if b.Duration <= 0 || t < b.Start || t > b.Start+b.Duration {
		return 0
	}
	phase := (t - b.Start) / b.Duration
	return b.Height * 0.5 * (1 - math.Cos(2*math.Pi*phase))
}

func (b Bump) At(t float64) body.CornerHeights {
	front := b.shape(t)
	rear := b.shape(t - b.AxleLag)
	return body.CornerHeights{
		body.FrontLeft:  front,
		body.FrontRight: front,
		body.RearLeft:   rear,
		body.RearRight:  rear,
	}
}

// Chirp sweeps linearly from StartFreq to EndFreq over Duration, then
// holds EndFreq. Useful for frequency-response runs.
type Chirp struct {
	Amplitude float64 // m
	StartFreq float64 // Hz
	EndFreq   float64 // Hz
	Duration  float64 // s
}

func (c Chirp) At(t float64) body.CornerHeights {
	if t < 0 {
		return body.CornerHeights{}
	}
	var phase float64
	if t < c.Duration && c.Duration > 0 {
		k := (c.EndFreq - c.StartFreq) / c.Duration
		phase = 2 * math.Pi * (c.StartFreq*t + 0.5*k*t*t)
	} else {
		phase = 2 * math.Pi * c.EndFreq * t
	}
	h := c.Amplitude * math.Sin(phase)
	return body.CornerHeights{h, h, h, h}
}
