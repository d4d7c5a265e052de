package core

import "strings"

// ModeName is the stable identifier of a financial mode.
type ModeName string

const (
	Lockdown  ModeName = "lockdown"
	Survival  ModeName = "survival"
	Stability ModeName = "stability"
	Saver     ModeName = "saver"
	Vacay     ModeName = "vacay"
)

// ModeNames lists every mode in evaluation order.
var ModeNames = []ModeName{Lockdown, Vacay, Survival, Stability, Saver}

var displayNames = map[ModeName]string{
	Lockdown:  "Lockdown Mode",
	Survival:  "Survival Mode",
	Stability: "Stability Mode",
	Saver:     "Saver Mode",
	Vacay:     "Vacay Mode",
}

func (m ModeName) IsValid() bool {
	_, ok := displayNames[m]
	return ok
}

// DisplayName returns e.g. "Lockdown Mode".
func (m ModeName) DisplayName() string {
	return displayNames[m]
}

func (m ModeName) String() string { return string(m) }

// ParseModeName resolves "lockdown", "Lockdown Mode" and "lockdown_mode" to
// the same identifier. ok is false for anything else.
func ParseModeName(s string) (ModeName, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.ReplaceAll(key, " ", "_")
	key = strings.TrimSuffix(key, "_mode")
	m := ModeName(key)
	if !m.IsValid() {
		return "", false
	}
	return m, true
}
