package rider

import "strings"

const (
	StatusActive  = "active"
	StatusInjured = "injured"
	StatusRetired = "retired"
)

// Rider is a competitor referenced by predictions and results, never owned by them.
type Rider struct {
	ID         string
	Name       string
	Number     int
	Team       string
	Series     string
	Status     string
	InjuryNote string
}

func NormalizeStatus(value string) string {
	status := strings.ToLower(strings.TrimSpace(value))
	if status == "" {
		return StatusActive
	}
	return status
}

func IsValidStatus(value string) bool {
	switch NormalizeStatus(value) {
	case StatusActive, StatusInjured, StatusRetired:
		return true
	default:
		return false
	}
}
