package battle

import "sort"

// EliminationCount returns how many of active participants leave this round.
// At least one participant always survives.
func EliminationCount(active, ratePercent int) int {
	if active <= 1 || ratePercent <= 0 {
		return 0
	}
	n := (active*ratePercent + 99) / 100
	if n >= active {
		n = active - 1
	}
	return n
}

// SelectEliminated picks the participants to eliminate from the active ones,
// most eliminable first. Already eliminated entries are ignored.
func SelectEliminated(participants []Participant, ratePercent int) []string {
	active := make([]Participant, 0, len(participants))
	for _, p := range participants {
		if !p.IsEliminated {
			active = append(active, p)
		}
	}

	n := EliminationCount(len(active), ratePercent)
	if n == 0 {
		return nil
	}

	sort.SliceStable(active, func(i, j int) bool {
		return moreEliminable(active[i], active[j])
	})

	ids := make([]string, n)
	for i := range ids {
		ids[i] = active[i].ID
	}
	return ids
}

// moreEliminable orders by score asc, streak asc, slower last answer first,
// then participant id.
func moreEliminable(a, b Participant) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	if a.Streak != b.Streak {
		return a.Streak < b.Streak
	}
	if a.LastResponseMS != b.LastResponseMS {
		return a.LastResponseMS > b.LastResponseMS
	}
	return a.ID < b.ID
}
