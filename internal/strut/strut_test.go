package strut

import (
	"math"
	"testing"

	"github.com/rlund/airsusp/internal/body"
)

func TestPneumatic_PreloadCarriesWeight(t *testing.T) {
	p := body.DefaultParams()
	s := NewPneumatic(p, body.DefaultGravity)

	want := p.StaticCornerLoad(body.DefaultGravity)
	for _, c := range body.Corners {
		got := s.Force(c, 0, 0, 0)
		if math.Abs(got-want) > 1e-6 {
			t.Errorf("%s: static force = %v, want %v", c, got, want)
		}
	}
}

func TestPneumatic_CompressionStiffens(t *testing.T) {
	s := NewPneumatic(body.DefaultParams(), body.DefaultGravity)

	f0 := s.Force(body.FrontLeft, 0, 0, 0)
	f1 := s.Force(body.FrontLeft, 0.02, 0, 0)
	f2 := s.Force(body.FrontLeft, 0.04, 0, 0)

	if f1 <= f0 || f2 <= f1 {
		t.Fatalf("force should rise with compression: %v %v %v", f0, f1, f2)
	}
	// The gas spring is progressive: equal compression increments give
	// growing force increments.
	if (f2 - f1) <= (f1 - f0) {
		t.Errorf("expected progressive rate: Δ1=%v Δ2=%v", f1-f0, f2-f1)
	}
}

func TestPneumatic_DampingSign(t *testing.T) {
	s := NewPneumatic(body.DefaultParams(), body.DefaultGravity)

	still := s.Force(body.RearLeft, 0, 0, 0)
	compressing := s.Force(body.RearLeft, 0, 0.5, 0)
	extending := s.Force(body.RearLeft, 0, -0.5, 0)

	if compressing <= still {
		t.Errorf("compressing strut should push harder: %v <= %v", compressing, still)
	}
	if extending >= still {
		t.Errorf("extending strut should push less: %v >= %v", extending, still)
	}
}

func TestPneumatic_ForceStaysFiniteAtStop(t *testing.T) {
	s := NewPneumatic(body.DefaultParams(), body.DefaultGravity)

	// Compression past the swept volume hits the mechanical stop; the
	// force must be large but finite.
	f := s.Force(body.FrontRight, 10*s.Volume/s.Area, 0, 0)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		t.Fatalf("force at stop is non-finite: %v", f)
	}
	if f <= s.Force(body.FrontRight, 0, 0, 0) {
		t.Errorf("force at stop should exceed static force, got %v", f)
	}
}

func TestPneumatic_Stiffness(t *testing.T) {
	s := NewPneumatic(body.DefaultParams(), body.DefaultGravity)

	k := s.Stiffness(body.FrontLeft)
	if k <= 0 {
		t.Fatalf("stiffness = %v, want > 0", k)
	}

	// Linearisation check: small compression force change ≈ k·dx.
	const dx = 1e-6
	df := s.Force(body.FrontLeft, dx, 0, 0) - s.Force(body.FrontLeft, 0, 0, 0)
	if math.Abs(df/dx-k)/k > 1e-3 {
		t.Errorf("stiffness mismatch: finite difference %v vs %v", df/dx, k)
	}
}

func TestPneumatic_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Pneumatic)
		wantErr bool
	}{
		{"default", func(s *Pneumatic) {}, false},
		{"zero area", func(s *Pneumatic) { s.Area = 0 }, true},
		{"negative volume", func(s *Pneumatic) { s.Volume = -1 }, true},
		{"sub-isothermal exponent", func(s *Pneumatic) { s.Polytropic = 0.9 }, true},
		{"unpressurised", func(s *Pneumatic) { s.Pressure[body.RearRight] = AtmosphericPressure }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewPneumatic(body.DefaultParams(), body.DefaultGravity)
			tt.mutate(s)
			err := s.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLinearAndConstant(t *testing.T) {
	l := &Linear{Stiffness: 1000, Damping: 100, Preload: 50}
	if got := l.Force(body.FrontLeft, 0.01, 0.1, 0); math.Abs(got-(50+10+10)) > 1e-12 {
		t.Errorf("linear force = %v, want 70", got)
	}

	k := &Constant{Value: 42}
	if k.Force(body.RearLeft, 1, 1, 1) != 42 {
		t.Error("constant force model should ignore state")
	}
}
