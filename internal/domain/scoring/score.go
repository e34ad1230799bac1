package scoring

// Score evaluates a ranked 5-pick prediction against the official finishing
// order. Pure and deterministic: identical inputs yield identical output, and
// neither slice is mutated.
//
// Per pick at index i: finishing in exactly position i earns ExactPoints;
// finishing elsewhere inside the top 5 earns Top5Points; outside the top 5
// (including an absent rider in a DNF-heavy short result) earns nothing.
// A position never counts toward both tallies. All five exact triggers the
// perfect bonus.
func (r Rules) Score(picks []string, finishing []string) Breakdown {
	window := finishing
	if len(window) > len(picks) {
		window = window[:len(picks)]
	}

	indexByRider := make(map[string]int, len(window))
	for idx, riderID := range window {
		if _, ok := indexByRider[riderID]; !ok {
			indexByRider[riderID] = idx
		}
	}

	var out Breakdown
	for idx, riderID := range picks {
		actual, ok := indexByRider[riderID]
		if !ok {
			continue
		}
		if actual == idx {
			out.ExactMatches++
			out.Points += r.ExactPoints
			continue
		}
		out.Top5Matches++
		out.Points += r.Top5Points
	}

	if len(picks) > 0 && out.ExactMatches == len(picks) {
		out.Perfect = true
		out.BonusPoints = r.PerfectBonus
		out.Points += r.PerfectBonus
	}

	return out
}

// MaxPoints is the ceiling of Score().Points for an n-pick prediction.
func (r Rules) MaxPoints(n int) int {
	return n*r.ExactPoints + r.PerfectBonus
}
