package telemetry

import "os"

// Flags are evaluated once at process start; calibration mode turns the
// other two on unless their variables say otherwise explicitly.
var (
	calibrationModeEnabled = os.Getenv("AGT_CALIBRATION_MODE") == "1"
	observeEnabled         = flagOrDefault("AGT_OBSERVE_JSON", calibrationModeEnabled)
	persistPayloadsEnabled = flagOrDefault("AGT_PERSIST_API_PAYLOADS", calibrationModeEnabled)
)

// flagOrDefault reads an explicit 0/1 env switch, falling back to def when
// the variable is unset.
func flagOrDefault(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		return v == "1"
	}
	return def
}

// CalibrationModeEnabled reports whether calibration mode was on at startup.
func CalibrationModeEnabled() bool { return calibrationModeEnabled }

// ObserveEnabled reports whether JSONL emission is on. The startup default
// holds, but setting AGT_OBSERVE_JSON=1 mid-run (as tests do) also enables
// it.
func ObserveEnabled() bool {
	return os.Getenv("AGT_OBSERVE_JSON") == "1" || observeEnabled
}

// PersistPayloadsEnabled reports whether request payload persistence is on,
// with the same mid-run override as ObserveEnabled.
func PersistPayloadsEnabled() bool {
	return os.Getenv("AGT_PERSIST_API_PAYLOADS") == "1" || persistPayloadsEnabled
}
