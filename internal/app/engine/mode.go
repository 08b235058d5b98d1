package engine

import "fmt"

// Mode selects which engine(s) a comparison request runs.
type Mode string

const (
	ModeLocal Mode = "local"
	ModeCloud Mode = "cloud"
	ModeBoth  Mode = "both"
)

// ParseMode parses a mode selector; empty defaults to both.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeLocal, ModeCloud, ModeBoth:
		return Mode(s), nil
	case "":
		return ModeBoth, nil
	default:
		return "", fmt.Errorf("invalid mode %q, must be one of local, cloud, both", s)
	}
}

// Engines returns the engine names the mode selects, in stable order.
func (m Mode) Engines() []string {
	switch m {
	case ModeLocal:
		return []string{NameWhisper}
	case ModeCloud:
		return []string{NameAEAP}
	default:
		return []string{NameWhisper, NameAEAP}
	}
}
