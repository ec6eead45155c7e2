package requests

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadSubmissionFromFile reads a YAML submission spec, as used by the
// `submit request` command to feed the HTTP API
func LoadSubmissionFromFile(path string) (*Submission, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read submission at path[%s]: %w", path, err)
	}
	var submission Submission
	if err := yaml.Unmarshal(data, &submission); err != nil {
		return nil, fmt.Errorf("failed to parse submission at path[%s]: %w", path, err)
	}
	return &submission, nil
}
