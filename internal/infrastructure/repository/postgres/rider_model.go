package postgres

import "github.com/motosense/backend/internal/domain/rider"

type riderTableModel struct {
	ID         string `db:"id"`
	Name       string `db:"name"`
	Number     int    `db:"number"`
	Team       string `db:"team"`
	Series     string `db:"series"`
	Status     string `db:"status"`
	InjuryNote string `db:"injury_note"`
}

func riderFromRow(row riderTableModel) rider.Rider {
	return rider.Rider{
		ID:         row.ID,
		Name:       row.Name,
		Number:     row.Number,
		Team:       row.Team,
		Series:     row.Series,
		Status:     row.Status,
		InjuryNote: row.InjuryNote,
	}
}

func riderToRow(item rider.Rider) riderTableModel {
	return riderTableModel{
		ID:         item.ID,
		Name:       item.Name,
		Number:     item.Number,
		Team:       item.Team,
		Series:     item.Series,
		Status:     item.Status,
		InjuryNote: item.InjuryNote,
	}
}
