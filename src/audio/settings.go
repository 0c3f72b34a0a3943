package audio

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ----- Settings File ----- //

// LoadSettings reads a settings file on top of the defaults. Both JSON and
// YAML are accepted; keys missing from the file keep their default value.
func LoadSettings(path string) (*Settings, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read settings %v: %w", path, err)
	}
	s, err := parseSettings(bytes)
	if err != nil {
		return nil, fmt.Errorf("could not parse settings %v: %w", path, err)
	}
	return s, nil
}

func parseSettings(data []byte) (*Settings, error) {
	s := NewSettings()
	j := s.toJSONStruct()
	if errJSON := json.Unmarshal(data, j); errJSON != nil {
		j = s.toJSONStruct()
		if errYaml := yaml.Unmarshal(data, j); errYaml != nil {
			return nil, fmt.Errorf("neither JSON (%v) nor YAML (%v)", errJSON, errYaml)
		}
	}
	if j.Osc != "" && !isWaveKind(j.Osc) {
		return nil, fmt.Errorf("unknown oscillator %q (want one of %v)", j.Osc, waveKindNames)
	}
	s.fromJSON(j)
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// SaveSettings writes s as YAML.
func SaveSettings(path string, s *Settings) error {
	bytes, err := yaml.Marshal(s.toJSONStruct())
	if err != nil {
		return fmt.Errorf("could not encode settings: %w", err)
	}
	if err := os.WriteFile(path, bytes, 0644); err != nil {
		return fmt.Errorf("could not write settings %v: %w", path, err)
	}
	return nil
}
