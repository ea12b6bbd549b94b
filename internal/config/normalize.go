package config

import "strings"

// Normalize applies post-validation normalization.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	// canonical form; port matching ignores case
	cfg.Serial.USBID = strings.ToUpper(cfg.Serial.USBID)

	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}

	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = "igm401"
	}
}
