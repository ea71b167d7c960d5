package dynamo

import "math"

// StateVector is the 6-element dynamical state of the sprung body.
// Units are SI: metres, radians, seconds. Heave is positive upward,
// Roll is positive left-side-up, Pitch is positive nose-up.
type StateVector struct {
	Heave     float64
	Roll      float64
	Pitch     float64
	HeaveRate float64
	RollRate  float64
	PitchRate float64
}

// Dim is the number of state components.
const Dim = 6

func (s StateVector) Array() [Dim]float64 {
	return [Dim]float64{s.Heave, s.Roll, s.Pitch, s.HeaveRate, s.RollRate, s.PitchRate}
}

func FromArray(a [Dim]float64) StateVector {
	return StateVector{
		Heave: a[0], Roll: a[1], Pitch: a[2],
		HeaveRate: a[3], RollRate: a[4], PitchRate: a[5],
	}
}

func (s StateVector) IsFinite() bool {
	for _, v := range s.Array() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s StateVector) Norm() float64 {
	sum := 0.0
	for _, v := range s.Array() {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s StateVector) Add(o StateVector) StateVector {
	return StateVector{
		Heave:     s.Heave + o.Heave,
		Roll:      s.Roll + o.Roll,
		Pitch:     s.Pitch + o.Pitch,
		HeaveRate: s.HeaveRate + o.HeaveRate,
		RollRate:  s.RollRate + o.RollRate,
		PitchRate: s.PitchRate + o.PitchRate,
	}
}

func (s StateVector) Sub(o StateVector) StateVector {
	return s.Add(o.Scale(-1))
}

func (s StateVector) Scale(k float64) StateVector {
	return StateVector{
		Heave:     s.Heave * k,
		Roll:      s.Roll * k,
		Pitch:     s.Pitch * k,
		HeaveRate: s.HeaveRate * k,
		RollRate:  s.RollRate * k,
		PitchRate: s.PitchRate * k,
	}
}

// FrameState is the position triple carried across the thread boundary
// to consumers. Rates stay on the physics side.
type FrameState struct {
	Heave float64
	Roll  float64
	Pitch float64
}

// Snapshot is an immutable record of one completed physics step.
// It is the only value that crosses from the physics goroutine to
// consumers, and only through the latest-only queue.
type Snapshot struct {
	SimTime float64
	Step    uint64
	Frame   FrameState
}

// DefaultAngleLimit bounds roll and pitch for snapshot validation.
const DefaultAngleLimit = 0.5 // rad

// Validate reports whether the snapshot is physically plausible: all
// fields finite and both angles strictly inside the limit. Invalid
// snapshots must never be published.
func (s Snapshot) Validate(angleLimit float64) bool {
	if angleLimit <= 0 {
		angleLimit = DefaultAngleLimit
	}
	for _, v := range []float64{s.SimTime, s.Frame.Heave, s.Frame.Roll, s.Frame.Pitch} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return math.Abs(s.Frame.Roll) < angleLimit && math.Abs(s.Frame.Pitch) < angleLimit
}

// NetLoad is the projection of the four corner forces onto the body's
// three degrees of freedom.
type NetLoad struct {
	Vertical    float64 // N, positive up
	RollMoment  float64 // N·m, positive left-side-heavy
	PitchMoment float64 // N·m, positive front-heavy (nose-up)
}

// System is the right-hand side of the body ODE, dX/dt = f(X, t).
// Derive must either return a finite derivative or an error; it never
// hands back NaN.
type System interface {
	Derive(x StateVector, t float64) (StateVector, error)
}
