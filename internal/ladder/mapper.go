package ladder

import (
	"time"

	"github.com/mauv0809/ladder-harvester/internal/riot"
)

// MatchDetailFromRecord derives the stored detail row from a fetched match.
func MatchDetailFromRecord(rec riot.MatchDetailRecord, now time.Time) (MatchDetail, error) {
	winner, err := rec.WinningTeamID()
	if err != nil {
		return MatchDetail{}, err
	}
	return MatchDetail{
		MatchID:           rec.MatchID,
		DurationSeconds:   rec.DurationSeconds,
		GameVersion:       rec.GameVersion,
		QueueID:           rec.QueueID,
		WinningTeamID:     winner,
		HadEarlySurrender: rec.HadEarlySurrender(),
		StartTimestamp:    rec.StartTimestamp,
		CreatedAt:         now,
	}, nil
}

func fromUnix(secs int64) time.Time {
	return time.Unix(secs, 0).UTC()
}
