package battle

import "sort"

type RankedParticipant struct {
	Rank int `json:"rank"`
	Participant
	Survivor bool `json:"survivor"`
}

// RankParticipants builds the final standings: survivors first, then by
// later elimination round, then the reverse of the elimination order.
func RankParticipants(participants []Participant) []RankedParticipant {
	sorted := make([]Participant, len(participants))
	copy(sorted, participants)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.IsEliminated != b.IsEliminated {
			return !a.IsEliminated
		}
		if ra, rb := eliminatedRound(a), eliminatedRound(b); ra != rb {
			return ra > rb
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Streak != b.Streak {
			return a.Streak > b.Streak
		}
		if a.LastResponseMS != b.LastResponseMS {
			return a.LastResponseMS < b.LastResponseMS
		}
		return a.ID < b.ID
	})

	ranked := make([]RankedParticipant, len(sorted))
	for i, p := range sorted {
		ranked[i] = RankedParticipant{Rank: i + 1, Participant: p, Survivor: !p.IsEliminated}
	}
	return ranked
}

func eliminatedRound(p Participant) int {
	if p.EliminatedRound == nil {
		return 0
	}
	return *p.EliminatedRound
}
