package result

import (
	"sort"
	"strings"
	"time"
)

const (
	StatusFinished = "finished"
	StatusDNF      = "dnf"
	StatusDNS      = "dns"
	StatusDSQ      = "dsq"
)

// Entry is one rider's classified finish.
type Entry struct {
	RiderID   string
	Position  int
	Status    string
	Laps      int
	Points    int
	TotalTime string
	Gap       string
}

// RaceResult is the authoritative finishing order for one race. At most one
// per race; immutable once downstream scores exist unless explicitly deleted.
type RaceResult struct {
	RaceID     string
	Entries    []Entry
	RevealedAt time.Time
}

// TopFinishers returns up to n rider ids ordered by classified position.
func (r RaceResult) TopFinishers(n int) []string {
	entries := make([]Entry, len(r.Entries))
	copy(entries, r.Entries)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Position < entries[j].Position
	})

	out := make([]string, 0, n)
	for _, entry := range entries {
		if len(out) == n {
			break
		}
		out = append(out, entry.RiderID)
	}
	return out
}

func NormalizeStatus(value string) string {
	status := strings.ToLower(strings.TrimSpace(value))
	if status == "" {
		return StatusFinished
	}
	return status
}

func IsValidStatus(value string) bool {
	switch NormalizeStatus(value) {
	case StatusFinished, StatusDNF, StatusDNS, StatusDSQ:
		return true
	default:
		return false
	}
}
