package postgres

import (
	"time"

	"github.com/lib/pq"

	"github.com/motosense/backend/internal/domain/prediction"
)

type predictionTableModel struct {
	ID          string         `db:"id"`
	UserID      string         `db:"user_id"`
	RaceID      string         `db:"race_id"`
	Picks       pq.StringArray `db:"picks"`
	Confidence  int            `db:"confidence"`
	SubmittedAt time.Time      `db:"submitted_at"`
}

func predictionFromRow(row predictionTableModel) prediction.Prediction {
	return prediction.Prediction{
		ID:          row.ID,
		UserID:      row.UserID,
		RaceID:      row.RaceID,
		Picks:       append([]string(nil), row.Picks...),
		Confidence:  row.Confidence,
		SubmittedAt: row.SubmittedAt,
	}
}

func predictionToRow(item prediction.Prediction) predictionTableModel {
	return predictionTableModel{
		ID:          item.ID,
		UserID:      item.UserID,
		RaceID:      item.RaceID,
		Picks:       pq.StringArray(item.Picks),
		Confidence:  item.Confidence,
		SubmittedAt: item.SubmittedAt,
	}
}
