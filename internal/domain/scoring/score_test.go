package scoring

import "testing"

func fivePicks() []string {
	return []string{"rider-1", "rider-2", "rider-3", "rider-4", "rider-5"}
}

func TestScore(t *testing.T) {
	t.Parallel()

	rules := DefaultRules()

	tests := []struct {
		name      string
		picks     []string
		finishing []string
		want      Breakdown
	}{
		{
			name:      "all exact earns perfect bonus",
			picks:     fivePicks(),
			finishing: fivePicks(),
			want:      Breakdown{ExactMatches: 5, Points: 75, BonusPoints: 25, Perfect: true},
		},
		{
			name:      "mixed exact and partial",
			picks:     fivePicks(),
			finishing: []string{"rider-1", "rider-3", "rider-2", "rider-4", "rider-5"},
			want:      Breakdown{ExactMatches: 3, Top5Matches: 2, Points: 36},
		},
		{
			name:      "picked rider outside the top five scores nothing",
			picks:     fivePicks(),
			finishing: []string{"rider-9", "rider-8", "rider-7", "rider-6", "rider-10", "rider-1"},
			want:      Breakdown{},
		},
		{
			name:      "short result leaves absent riders at zero",
			picks:     fivePicks(),
			finishing: []string{"rider-1", "rider-5"},
			want:      Breakdown{ExactMatches: 1, Top5Matches: 1, Points: 13},
		},
		{
			name:      "empty result",
			picks:     fivePicks(),
			finishing: nil,
			want:      Breakdown{},
		},
		{
			name:      "empty picks never earn the bonus",
			picks:     nil,
			finishing: fivePicks(),
			want:      Breakdown{},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := rules.Score(tc.picks, tc.finishing)
			if got != tc.want {
				t.Fatalf("unexpected breakdown: got=%+v want=%+v", got, tc.want)
			}

			if got.Points < 0 || got.Points > rules.MaxPoints(len(tc.picks)) {
				t.Fatalf("points out of bounds: got=%d max=%d", got.Points, rules.MaxPoints(len(tc.picks)))
			}
			if got.ExactMatches+got.Top5Matches > len(tc.picks) {
				t.Fatalf("a position counted twice: exact=%d top5=%d picks=%d", got.ExactMatches, got.Top5Matches, len(tc.picks))
			}
		})
	}
}

func TestScoreDoesNotMutateInputs(t *testing.T) {
	t.Parallel()

	picks := fivePicks()
	finishing := []string{"rider-5", "rider-4", "rider-3", "rider-2", "rider-1", "rider-6", "rider-7"}

	DefaultRules().Score(picks, finishing)

	for idx, want := range fivePicks() {
		if picks[idx] != want {
			t.Fatalf("picks mutated at index %d: got=%s want=%s", idx, picks[idx], want)
		}
	}
	wantFinishing := []string{"rider-5", "rider-4", "rider-3", "rider-2", "rider-1", "rider-6", "rider-7"}
	for idx, want := range wantFinishing {
		if finishing[idx] != want {
			t.Fatalf("finishing mutated at index %d: got=%s want=%s", idx, finishing[idx], want)
		}
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	t.Parallel()

	rules := Rules{ExactPoints: 7, Top5Points: 2, PerfectBonus: 11}
	picks := fivePicks()
	finishing := []string{"rider-2", "rider-1", "rider-3", "rider-5", "rider-4"}

	first := rules.Score(picks, finishing)
	second := rules.Score(picks, finishing)
	if first != second {
		t.Fatalf("identical inputs yielded different breakdowns: first=%+v second=%+v", first, second)
	}
	if first.ExactMatches != 1 || first.Top5Matches != 4 {
		t.Fatalf("unexpected match split: got=%+v", first)
	}
	if first.Points != 1*7+4*2 {
		t.Fatalf("unexpected points with custom rules: got=%d want=%d", first.Points, 15)
	}
}
