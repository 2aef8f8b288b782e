package config

import "os"

// ExpandEnv expands environment variables in YAML content, supporting
// both ${VAR} and $VAR syntax. Missing variables expand to empty string;
// validation catches required fields left empty by a missing variable.
// Grounded on pkg/config/envexpand.go.
func ExpandEnv(data []byte) []byte {
	return []byte(os.ExpandEnv(string(data)))
}
