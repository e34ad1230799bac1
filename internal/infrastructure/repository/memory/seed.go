package memory

import (
	"time"

	"github.com/motosense/backend/internal/domain/datasync"
	"github.com/motosense/backend/internal/domain/race"
	"github.com/motosense/backend/internal/domain/rider"
)

const (
	SourceIDSchedule = "motogp-schedule-2026"
	SourceIDRiders   = "motogp-riders-2026"
	SourceIDResults  = "motogp-results-2026"
)

func SeedSources(baseURL string) []datasync.Source {
	return []datasync.Source{
		{
			ID:          SourceIDSchedule,
			Name:        "MotoGP 2026 Schedule Feed",
			Type:        datasync.SourceTypeSchedule,
			URL:         baseURL + "/schedule",
			Active:      true,
			MaxRequests: 60,
			RateWindow:  time.Minute,
		},
		{
			ID:          SourceIDRiders,
			Name:        "MotoGP 2026 Rider Roster Feed",
			Type:        datasync.SourceTypeRiders,
			URL:         baseURL + "/riders",
			Active:      true,
			MaxRequests: 60,
			RateWindow:  time.Minute,
		},
		{
			ID:          SourceIDResults,
			Name:        "MotoGP 2026 Results Feed",
			Type:        datasync.SourceTypeResults,
			URL:         baseURL + "/results",
			Active:      true,
			MaxRequests: 30,
			RateWindow:  time.Minute,
		},
	}
}

func SeedRaces() []race.Race {
	season := time.Date(2026, 3, 8, 13, 0, 0, 0, time.UTC)
	return []race.Race{
		{
			ID:          "gp-qatar-2026",
			Series:      race.SeriesMotoGP,
			Round:       1,
			Name:        "Qatar Grand Prix",
			Venue:       "Lusail International Circuit",
			ScheduledAt: season,
			Status:      race.StatusUpcoming,
		},
		{
			ID:          "gp-americas-2026",
			Series:      race.SeriesMotoGP,
			Round:       2,
			Name:        "Grand Prix of the Americas",
			Venue:       "Circuit of the Americas",
			ScheduledAt: season.AddDate(0, 0, 21),
			Status:      race.StatusUpcoming,
		},
		{
			ID:          "gp-spain-2026",
			Series:      race.SeriesMotoGP,
			Round:       3,
			Name:        "Spanish Grand Prix",
			Venue:       "Circuito de Jerez",
			ScheduledAt: season.AddDate(0, 0, 49),
			Status:      race.StatusUpcoming,
		},
		{
			ID:           "sim-round-1",
			Series:       race.SeriesMotoGP,
			Round:        1,
			Name:         "Simulation Round 1",
			Venue:        "Lusail International Circuit",
			ScheduledAt:  season,
			Status:       race.StatusUpcoming,
			IsSimulation: true,
		},
		{
			ID:           "sim-round-2",
			Series:       race.SeriesMotoGP,
			Round:        2,
			Name:         "Simulation Round 2",
			Venue:        "Circuit of the Americas",
			ScheduledAt:  season.AddDate(0, 0, 21),
			Status:       race.StatusUpcoming,
			IsSimulation: true,
		},
		{
			ID:           "sim-round-3",
			Series:       race.SeriesMotoGP,
			Round:        3,
			Name:         "Simulation Round 3",
			Venue:        "Circuito de Jerez",
			ScheduledAt:  season.AddDate(0, 0, 49),
			Status:       race.StatusUpcoming,
			IsSimulation: true,
		},
	}
}

func SeedRiders() []rider.Rider {
	return []rider.Rider{
		{ID: "rider-fq20", Name: "Fabio Quartararo", Number: 20, Team: "Monster Energy Yamaha", Series: string(race.SeriesMotoGP), Status: rider.StatusActive},
		{ID: "rider-pa63", Name: "Francesco Bagnaia", Number: 63, Team: "Ducati Lenovo Team", Series: string(race.SeriesMotoGP), Status: rider.StatusActive},
		{ID: "rider-mm93", Name: "Marc Marquez", Number: 93, Team: "Ducati Lenovo Team", Series: string(race.SeriesMotoGP), Status: rider.StatusActive},
		{ID: "rider-jm89", Name: "Jorge Martin", Number: 89, Team: "Aprilia Racing", Series: string(race.SeriesMotoGP), Status: rider.StatusActive},
		{ID: "rider-eb23", Name: "Enea Bastianini", Number: 23, Team: "Red Bull KTM", Series: string(race.SeriesMotoGP), Status: rider.StatusActive},
		{ID: "rider-ba72", Name: "Marco Bezzecchi", Number: 72, Team: "Aprilia Racing", Series: string(race.SeriesMotoGP), Status: rider.StatusActive},
		{ID: "rider-aa25", Name: "Raul Fernandez", Number: 25, Team: "Trackhouse Racing", Series: string(race.SeriesMotoGP), Status: rider.StatusActive},
		{ID: "rider-ja43", Name: "Jack Miller", Number: 43, Team: "Pramac Yamaha", Series: string(race.SeriesMotoGP), Status: rider.StatusInjured, InjuryNote: "wrist fracture, out 3 weeks"},
	}
}
