package config

import "sort"

// Presets are named starting points for common scenarios. GetPreset
// returns a copy layered over the defaults so unset fields keep their
// default values.
var presets = map[string]Config{
	"smooth": {
		Road: RoadConfig{Name: "flat"},
	},
	"highway": {
		Duration: 20.0,
		Road: RoadConfig{
			Name:      "sine",
			Amplitude: 0.015,
			Frequency: 1.2,
			Phase:     0.6,
		},
	},
	"pothole": {
		Duration: 6.0,
		Road: RoadConfig{
			Name:   "bump",
			Amplitude: 0.08,
			Start:  1.0,
			Length: 0.25,
		},
	},
	"sweep": {
		Duration: 30.0,
		Road: RoadConfig{
			Name:      "chirp",
			Amplitude: 0.01,
			Frequency: 0.3,
			EndFreq:   12.0,
		},
	},
}

func GetPreset(name string) *Config {
	p, ok := presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	if p.Duration > 0 {
		cfg.Duration = p.Duration
	}
	if p.Road.Name != "" {
		road := cfg.Road
		road.Name = p.Road.Name
		if p.Road.Amplitude > 0 {
			road.Amplitude = p.Road.Amplitude
		}
		if p.Road.Frequency > 0 {
			road.Frequency = p.Road.Frequency
		}
		if p.Road.EndFreq > 0 {
			road.EndFreq = p.Road.EndFreq
		}
		if p.Road.Phase != 0 {
			road.Phase = p.Road.Phase
		}
		if p.Road.Start > 0 {
			road.Start = p.Road.Start
		}
		if p.Road.Length > 0 {
			road.Length = p.Road.Length
		}
		cfg.Road = road
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
