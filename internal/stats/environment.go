package stats

import (
	"encoding/json"
	"fmt"
)

// Environment classifies where a test run executed
type Environment string

const (
	EnvironmentTest Environment = "TEST"
	EnvironmentProd Environment = "PROD"
)

// ParseEnvironment converts a string into an Environment, rejecting anything
// outside the closed set of recognized values
func ParseEnvironment(s string) (Environment, error) {
	switch Environment(s) {
	case EnvironmentTest:
		return EnvironmentTest, nil
	case EnvironmentProd:
		return EnvironmentProd, nil
	}
	return "", fmt.Errorf("unrecognized environment %q (expected %q or %q)", s, EnvironmentTest, EnvironmentProd)
}

// String returns the environment's string form
func (e Environment) String() string {
	return string(e)
}

// UnmarshalJSON decodes and validates an environment value
func (e *Environment) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	env, err := ParseEnvironment(s)
	if err != nil {
		return err
	}
	*e = env
	return nil
}
