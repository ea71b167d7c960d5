package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt           = 0.001 // s
	DefaultTickInterval = 0.001 // s
	DefaultMaxSteps     = 32
	DefaultDuration     = 10.0 // s
	DefaultAngleLimit   = 0.5  // rad

	DefaultMass         = 1600.0
	DefaultRollInertia  = 550.0
	DefaultPitchInertia = 2400.0
	DefaultWheelbase    = 2.70
	DefaultTrack        = 1.60
	DefaultGravity      = 9.81

	DefaultPistonArea = 0.010
	DefaultGasVolume  = 0.0020
	DefaultPolytropic = 1.4
	DefaultDamping    = 9000.0
)

type Config struct {
	Stepper         string  `yaml:"stepper"`
	Dt              float64 `yaml:"dt"`
	TickInterval    float64 `yaml:"tick_interval"`
	MaxStepsPerTick int     `yaml:"max_steps_per_tick"`
	Duration        float64 `yaml:"duration"`
	AngleLimit      float64 `yaml:"angle_limit"`
	FaultPolicy     string  `yaml:"fault_policy"`

	Body  BodyConfig  `yaml:"body"`
	Strut StrutConfig `yaml:"strut"`
	Road  RoadConfig  `yaml:"road"`
}

type BodyConfig struct {
	Mass         float64 `yaml:"mass"`
	RollInertia  float64 `yaml:"roll_inertia"`
	PitchInertia float64 `yaml:"pitch_inertia"`
	Wheelbase    float64 `yaml:"wheelbase"`
	Track        float64 `yaml:"track"`
	FrontBias    float64 `yaml:"front_bias"`
	Gravity      float64 `yaml:"gravity"`
}

type StrutConfig struct {
	PistonArea float64 `yaml:"piston_area"`
	GasVolume  float64 `yaml:"gas_volume"`
	Polytropic float64 `yaml:"polytropic"`
	Damping    float64 `yaml:"damping"`
}

type RoadConfig struct {
	Name      string  `yaml:"profile"`
	Amplitude float64 `yaml:"amplitude"`
	Frequency float64 `yaml:"frequency"`
	EndFreq   float64 `yaml:"end_frequency"`
	Phase     float64 `yaml:"phase"`
	AxleLag   float64 `yaml:"axle_lag"`
	Start     float64 `yaml:"start"`
	Length    float64 `yaml:"length"`
}

func DefaultConfig() *Config {
	return &Config{
		Stepper:         "trbdf2",
		Dt:              DefaultDt,
		TickInterval:    DefaultTickInterval,
		MaxStepsPerTick: DefaultMaxSteps,
		Duration:        DefaultDuration,
		AngleLimit:      DefaultAngleLimit,
		FaultPolicy:     "reset",
		Body: BodyConfig{
			Mass:         DefaultMass,
			RollInertia:  DefaultRollInertia,
			PitchInertia: DefaultPitchInertia,
			Wheelbase:    DefaultWheelbase,
			Track:        DefaultTrack,
			FrontBias:    0.5,
			Gravity:      DefaultGravity,
		},
		Strut: StrutConfig{
			PistonArea: DefaultPistonArea,
			GasVolume:  DefaultGasVolume,
			Polytropic: DefaultPolytropic,
			Damping:    DefaultDamping,
		},
		Road: RoadConfig{
			Name:      "flat",
			Amplitude: 0.02,
			Frequency: 1.5,
			AxleLag:   0.12,
			Start:     1.0,
			Length:    0.4,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
