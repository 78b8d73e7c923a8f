package config

import "fmt"

// KeyStatus reports on one configured credential, with the key value
// masked for display.
type KeyStatus struct {
	Name    string `json:"name"`
	EnvVar  string `json:"env_var"`
	Set     bool   `json:"set"`
	Preview string `json:"preview"`
}

// CheckAPIKeys reports the status of every credential the service knows
// about. Raw key values never appear in the result.
func CheckAPIKeys(cfg *Config) []KeyStatus {
	return []KeyStatus{
		{
			Name:    "dart api key",
			EnvVar:  "DART_API_KEY",
			Set:     cfg.Dart.APIKey != "",
			Preview: maskKey(cfg.Dart.APIKey),
		},
	}
}

// maskKey renders a credential for display: a short prefix and the length,
// or an absence marker.
func maskKey(key string) string {
	if key == "" {
		return "<empty>"
	}
	prefix := key
	if len(prefix) > 6 {
		prefix = prefix[:6]
	}
	return fmt.Sprintf("%s***(%d chars)", prefix, len(key))
}
