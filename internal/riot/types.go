package riot

import (
	"fmt"
	"strings"
)

// Region is a platform routing value such as "euw1".
type Region string

const (
	RegionEUW  Region = "euw1"
	RegionEUNE Region = "eun1"
	RegionKR   Region = "kr"
	RegionNA   Region = "na1"
)

var regionalRoutes = map[Region]string{
	RegionEUW:  "europe",
	RegionEUNE: "europe",
	RegionKR:   "asia",
	RegionNA:   "americas",
}

// ParseRegion validates a platform region name.
func ParseRegion(s string) (Region, error) {
	r := Region(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := regionalRoutes[r]; !ok {
		return "", fmt.Errorf("unsupported region %q", s)
	}
	return r, nil
}

// ParseRegions validates a list of platform region names.
func ParseRegions(names []string) ([]Region, error) {
	regions := make([]Region, 0, len(names))
	for _, name := range names {
		r, err := ParseRegion(name)
		if err != nil {
			return nil, err
		}
		regions = append(regions, r)
	}
	return regions, nil
}

// RegionalRoute is the cluster that serves match-v5 for this platform.
func (r Region) RegionalRoute() string {
	return regionalRoutes[r]
}

// RankTier is the ladder tier a player was listed under.
type RankTier string

const (
	TierChallenger  RankTier = "Challenger"
	TierGrandmaster RankTier = "Grandmaster"
)

// league endpoints per tier, highest first.
var leagues = []struct {
	path string
	tier RankTier
}{
	{"challengerleagues", TierChallenger},
	{"grandmasterleagues", TierGrandmaster},
}

const rankedQueue = "RANKED_SOLO_5x5"

// PlayerRecord is one roster entry returned by the ladder endpoints.
type PlayerRecord struct {
	SourcePlayerID string
	RankTier       RankTier
	Region         Region
}

// TeamRecord holds the per-team fields of a match the harvester keeps.
type TeamRecord struct {
	TeamID         int
	Win            bool
	EarlySurrender bool
}

// MatchDetailRecord is the subset of a match-v5 match the harvester stores.
type MatchDetailRecord struct {
	MatchID         string
	DurationSeconds int64
	GameVersion     string
	QueueID         int
	StartTimestamp  int64
	Teams           []TeamRecord
}

// WinningTeamID returns the first team's id if it won, otherwise the other team's id.
func (m MatchDetailRecord) WinningTeamID() (int, error) {
	if len(m.Teams) != 2 {
		return 0, fmt.Errorf("%w: match %s has %d teams", ErrMalformed, m.MatchID, len(m.Teams))
	}
	if m.Teams[0].Win {
		return m.Teams[0].TeamID, nil
	}
	return m.Teams[1].TeamID, nil
}

// HadEarlySurrender reports whether any team surrendered early.
func (m MatchDetailRecord) HadEarlySurrender() bool {
	for _, team := range m.Teams {
		if team.EarlySurrender {
			return true
		}
	}
	return false
}

type leagueListResponse struct {
	Tier    string `json:"tier"`
	Entries []struct {
		SummonerID string `json:"summonerId"`
	} `json:"entries"`
}

type summonerResponse struct {
	PUUID string `json:"puuid"`
}

type matchResponse struct {
	Metadata struct {
		MatchID string `json:"matchId"`
	} `json:"metadata"`
	Info *struct {
		GameDuration       int64  `json:"gameDuration"`
		GameVersion        string `json:"gameVersion"`
		QueueID            int    `json:"queueId"`
		GameStartTimestamp int64  `json:"gameStartTimestamp"`
		Teams              []struct {
			TeamID int  `json:"teamId"`
			Win    bool `json:"win"`
		} `json:"teams"`
		Participants []struct {
			TeamID               int  `json:"teamId"`
			TeamEarlySurrendered bool `json:"teamEarlySurrendered"`
		} `json:"participants"`
	} `json:"info"`
}
