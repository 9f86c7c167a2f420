package battle

// StreakStep grants Bonus points to a correct answer when the participant
// already holds at least MinStreak consecutive correct answers.
type StreakStep struct {
	MinStreak int
	Bonus     int
}

// ScoringPolicy awards points for one answer. Response time never changes
// the awarded points; it only feeds elimination tie-breaks.
type ScoringPolicy struct {
	steps []StreakStep
}

var defaultStreakSteps = []StreakStep{
	{MinStreak: 7, Bonus: 50},
	{MinStreak: 4, Bonus: 25},
	{MinStreak: 2, Bonus: 10},
}

func NewScoringPolicy() ScoringPolicy {
	return ScoringPolicy{steps: defaultStreakSteps}
}

// StreakBonus is non-decreasing in streak.
func (p ScoringPolicy) StreakBonus(streak int) int {
	for _, s := range p.steps {
		if streak >= s.MinStreak {
			return s.Bonus
		}
	}
	return 0
}

// Score evaluates one submission. A nil submission is a missed answer.
func (p ScoringPolicy) Score(q Question, sub *Submission, streakBefore int) (points int, correct bool, newStreak int) {
	if sub == nil || !sameSet(sub.AnswerIDs, q.CorrectIDs()) {
		return 0, false, 0
	}
	return q.Points + p.StreakBonus(streakBefore), true, streakBefore + 1
}

func sameSet(a, b []uint) bool {
	if len(b) == 0 {
		return false
	}
	want := make(map[uint]struct{}, len(b))
	for _, id := range b {
		want[id] = struct{}{}
	}
	got := make(map[uint]struct{}, len(a))
	for _, id := range a {
		if _, ok := want[id]; !ok {
			return false
		}
		got[id] = struct{}{}
	}
	return len(got) == len(want)
}
