package battle

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ParticipantResult is the scored outcome of one round for one participant.
type ParticipantResult struct {
	ParticipantID  string `json:"participant_id"`
	Answered       bool   `json:"answered"`
	Correct        bool   `json:"correct"`
	Points         int    `json:"points"`
	NewStreak      int    `json:"streak"`
	ResponseTimeMS int64  `json:"response_time_ms"`
}

type RoundOutcome struct {
	Results    []ParticipantResult
	Eliminated []string
}

// ParticipantRegistry owns the participants of one session. It is the only
// shared mutable state of a session; readers work on Snapshot copies.
type ParticipantRegistry struct {
	mu sync.RWMutex

	maxParticipants int
	newID           func() string
	now             func() time.Time

	participants map[string]*Participant
	order        []string
	users        map[uint]string

	joinable    bool
	frozen      bool
	openRound   int
	answers     map[string]Submission
	lastApplied int
}

func NewParticipantRegistry(maxParticipants int) *ParticipantRegistry {
	return &ParticipantRegistry{
		maxParticipants: maxParticipants,
		newID:           uuid.NewString,
		now:             time.Now,
		participants:    make(map[string]*Participant),
		users:           make(map[uint]string),
		joinable:        true,
	}
}

func (r *ParticipantRegistry) Join(req JoinRequest) (Participant, error) {
	pseudo := strings.TrimSpace(req.Pseudo)
	if pseudo == "" || len(pseudo) > maxPseudoLen {
		return Participant{}, fmt.Errorf("%w: pseudo must be 1..%d characters", ErrInvalidInput, maxPseudoLen)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.joinable {
		return Participant{}, ErrNotJoinable
	}
	if len(r.order) >= r.maxParticipants {
		return Participant{}, ErrSessionFull
	}
	if req.UserID != nil {
		if _, ok := r.users[*req.UserID]; ok {
			return Participant{}, ErrDuplicateUser
		}
	}

	p := &Participant{
		ID:       r.newID(),
		UserID:   req.UserID,
		Pseudo:   pseudo,
		Avatar:   req.Avatar,
		JoinedAt: r.now(),
	}
	r.participants[p.ID] = p
	r.order = append(r.order, p.ID)
	if p.UserID != nil {
		r.users[*p.UserID] = p.ID
	}
	return *p, nil
}

// CloseJoins rejects every later Join with ErrNotJoinable.
func (r *ParticipantRegistry) CloseJoins() {
	r.mu.Lock()
	r.joinable = false
	r.mu.Unlock()
}

// Freeze ends the session for the registry: no joins, answers or outcomes.
func (r *ParticipantRegistry) Freeze() {
	r.mu.Lock()
	r.joinable = false
	r.frozen = true
	r.openRound = 0
	r.answers = nil
	r.mu.Unlock()
}

func (r *ParticipantRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

func (r *ParticipantRegistry) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.activeLocked()
}

func (r *ParticipantRegistry) activeLocked() int {
	n := 0
	for _, p := range r.participants {
		if !p.IsEliminated {
			n++
		}
	}
	return n
}

func (r *ParticipantRegistry) Get(id string) (Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.participants[id]
	if !ok {
		return Participant{}, ErrUnknownPlayer
	}
	return *p, nil
}

// OpenRound starts accepting answers for round.
func (r *ParticipantRegistry) OpenRound(round int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return ErrSessionCompleted
	}
	if round <= r.lastApplied || round <= r.openRound {
		return fmt.Errorf("%w: round %d already opened", ErrInvariant, round)
	}
	r.openRound = round
	r.answers = make(map[string]Submission)
	return nil
}

// RecordAnswer stores the first answer of a participant for the open round
// and reports how many active participants have answered so far.
func (r *ParticipantRegistry) RecordAnswer(round int, id string, sub Submission) (answered, active int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return 0, 0, ErrSessionCompleted
	}
	p, ok := r.participants[id]
	if !ok {
		return 0, 0, ErrUnknownPlayer
	}
	if p.IsEliminated {
		return 0, 0, ErrEliminated
	}
	if r.openRound == 0 || round < r.openRound {
		return 0, 0, ErrRoundClosed
	}
	if round > r.openRound {
		return 0, 0, ErrWrongRound
	}
	if _, dup := r.answers[id]; dup {
		return 0, 0, ErrAlreadyAnswered
	}

	sub.AnswerIDs = append([]uint(nil), sub.AnswerIDs...)
	r.answers[id] = sub
	return len(r.answers), r.activeLocked(), nil
}

// CloseRound stops accepting answers for round and returns what was received.
func (r *ParticipantRegistry) CloseRound(round int) map[string]Submission {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.openRound != round {
		return nil
	}
	got := r.answers
	r.openRound = 0
	r.answers = nil
	return got
}

// ApplyRoundOutcome folds a round's results into participant state. It is
// applied at most once per round; a retry reports applied=false.
func (r *ParticipantRegistry) ApplyRoundOutcome(round int, outcome RoundOutcome) (applied bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return false, ErrSessionCompleted
	}
	if round <= r.lastApplied {
		return false, nil
	}

	for _, res := range outcome.Results {
		p, ok := r.participants[res.ParticipantID]
		if !ok {
			return false, fmt.Errorf("%w: result for unknown participant %s", ErrInvariant, res.ParticipantID)
		}
		if p.IsEliminated {
			return false, fmt.Errorf("%w: result for eliminated participant %s", ErrInvariant, res.ParticipantID)
		}
	}
	out := make(map[string]struct{}, len(outcome.Eliminated))
	for _, id := range outcome.Eliminated {
		p, ok := r.participants[id]
		if !ok || p.IsEliminated {
			return false, fmt.Errorf("%w: cannot eliminate %s", ErrInvariant, id)
		}
		out[id] = struct{}{}
	}
	if active := r.activeLocked(); active > 0 && len(out) >= active {
		return false, fmt.Errorf("%w: round %d would eliminate all %d active participants", ErrInvariant, round, active)
	}

	for _, res := range outcome.Results {
		p := r.participants[res.ParticipantID]
		p.Score += res.Points
		p.Streak = res.NewStreak
		p.LastResponseMS = res.ResponseTimeMS
		if res.Correct {
			p.CorrectAnswers++
		}
	}
	for id := range out {
		p := r.participants[id]
		n := round
		p.IsEliminated = true
		p.EliminatedRound = &n
	}
	r.lastApplied = round
	return true, nil
}

func (r *ParticipantRegistry) LastAppliedRound() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastApplied
}

// Snapshot returns a point-in-time copy in join order.
func (r *ParticipantRegistry) Snapshot() []Participant {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Participant, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.participants[id])
	}
	return out
}
