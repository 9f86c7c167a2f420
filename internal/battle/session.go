package battle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/decred/slog"
	"github.com/shopspring/decimal"
)

const (
	EndLastSurvivor    = "last_survivor"
	EndRoundsExhausted = "rounds_exhausted"
	EndCatalog         = "catalog_unavailable"
	EndInternalError   = "internal_error"
	EndAborted         = "aborted"
)

// Deps are the collaborators shared by every session of a registry.
type Deps struct {
	Catalog        QuizCatalog
	Publisher      Publisher
	Audit          AuditSink
	Log            slog.Logger
	CatalogTimeout time.Duration
}

func (d Deps) withDefaults() Deps {
	if d.Publisher == nil {
		d.Publisher = nopPublisher{}
	}
	if d.Audit == nil {
		d.Audit = nopAudit{}
	}
	if d.Log == nil {
		d.Log = slog.Disabled
	}
	if d.CatalogTimeout <= 0 {
		d.CatalogTimeout = 5 * time.Second
	}
	return d
}

// Session is the lifecycle of one battle: Waiting, Active, Completed.
type Session struct {
	Code      string
	HostID    uint
	CreatedAt time.Time

	deps          Deps
	settings      Settings
	registry      *ParticipantRegistry
	scoring       ScoringPolicy
	now           func() time.Time
	roundDuration time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu             sync.Mutex
	state          SessionState
	currentRound   int
	round          *RoundCoordinator
	usedQuestions  map[uint]struct{}
	completedAt    time.Time
	completedEarly bool
	endReason      string
	ranking        []RankedParticipant
	done           chan struct{}

	emitMu sync.Mutex
	seq    uint64
}

func newSession(code string, hostID uint, settings Settings, deps Deps) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		Code:          code,
		HostID:        hostID,
		CreatedAt:     time.Now(),
		deps:          deps.withDefaults(),
		settings:      settings,
		registry:      NewParticipantRegistry(settings.MaxParticipants),
		scoring:       NewScoringPolicy(),
		now:           time.Now,
		roundDuration: settings.roundDuration(),
		ctx:           ctx,
		cancel:        cancel,
		state:         StateWaiting,
		usedQuestions: make(map[uint]struct{}),
		done:          make(chan struct{}),
	}
	return s
}

func (s *Session) Settings() Settings {
	return s.settings
}

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Participant(id string) (Participant, error) {
	return s.registry.Get(id)
}

// Done is closed when the session reaches Completed.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) Join(req JoinRequest) (Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateWaiting {
		return Participant{}, ErrNotJoinable
	}
	p, err := s.registry.Join(req)
	if err != nil {
		return Participant{}, err
	}
	s.deps.Log.Debugf("session %s: %s joined as %s", s.Code, p.Pseudo, p.ID)
	s.emit(EventParticipantJoined, JoinedEvent{Participant: p, Count: s.registry.Count()})
	return p, nil
}

// Start moves a Waiting session to Active and opens round 1.
func (s *Session) Start(hostID uint) error {
	if hostID != s.HostID {
		return ErrNotHost
	}

	s.mu.Lock()
	switch s.state {
	case StateCompleted:
		s.mu.Unlock()
		s.deps.Log.Warnf("session %s: start after completion rejected", s.Code)
		return ErrSessionCompleted
	case StateActive:
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	if n := s.registry.Count(); n < MinParticipants {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d joined, %d required", ErrNotEnoughPlayers, n, MinParticipants)
	}

	s.registry.CloseJoins()
	s.state = StateActive
	s.deps.Log.Infof("session %s: started with %d participants", s.Code, s.registry.Count())
	s.emit(EventSessionStarted, s.stateViewLocked())
	s.deps.Audit.RecordSession(s.recordLocked(false))
	s.mu.Unlock()

	s.advance(1)
	return nil
}

// SubmitAnswer records a participant's answer for the open round.
func (s *Session) SubmitAnswer(req AnswerRequest) error {
	if req.Round <= 0 || req.ParticipantID == "" {
		return fmt.Errorf("%w: participant and round are required", ErrInvalidInput)
	}

	s.mu.Lock()
	state, round := s.state, s.round
	s.mu.Unlock()

	switch {
	case state == StateCompleted:
		s.deps.Log.Infof("session %s: answer from %s after completion rejected", s.Code, req.ParticipantID)
		return ErrSessionCompleted
	case state == StateWaiting || round == nil:
		return ErrRoundClosed
	}
	if _, err := s.registry.Get(req.ParticipantID); err != nil {
		return err
	}

	err := round.Submit(req.ParticipantID, req.Round, req.AnswerIDs, req.ClientResponseMS)
	if errors.Is(err, ErrWrongRound) {
		// the next round may have opened since s.round was read
		s.mu.Lock()
		next := s.round
		s.mu.Unlock()
		if next != round {
			err = next.Submit(req.ParticipantID, req.Round, req.AnswerIDs, req.ClientResponseMS)
		}
	}
	if errors.Is(err, ErrSessionCompleted) {
		s.deps.Log.Infof("session %s: answer from %s after completion rejected", s.Code, req.ParticipantID)
	}
	return err
}

// EndRound lets the host close the open round before its timer fires.
func (s *Session) EndRound(hostID uint) error {
	s.mu.Lock()
	if hostID != s.HostID {
		s.mu.Unlock()
		return ErrNotHost
	}
	if s.state == StateCompleted {
		s.mu.Unlock()
		return ErrSessionCompleted
	}
	round := s.round
	s.mu.Unlock()

	if round == nil || !round.Close(CloseByHost) {
		return ErrRoundClosed
	}
	return nil
}

// Stop is the host's force-stop.
func (s *Session) Stop(hostID uint) error {
	if hostID != s.HostID {
		return ErrNotHost
	}
	if !s.Abort(EndAborted) {
		return ErrSessionCompleted
	}
	return nil
}

// Abort completes the session with the current standings. It reports false
// when the session was already completed.
func (s *Session) Abort(reason string) bool {
	s.mu.Lock()
	if s.state == StateCompleted {
		s.mu.Unlock()
		return false
	}
	round := s.round
	s.completeLocked(true, reason)
	s.mu.Unlock()

	if round != nil {
		round.Cancel()
	}
	return true
}

// abortIfIdle completes a Waiting session that nobody joined. The check and
// the transition share s.mu, so a concurrent Join either lands first and
// keeps the session or finds it completed.
func (s *Session) abortIfIdle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateWaiting || s.registry.Count() > 0 {
		return false
	}
	s.completeLocked(true, EndAborted)
	return true
}

// advance asks the catalog for the question of round next with s.mu
// released, then opens the round unless the session moved on meanwhile.
func (s *Session) advance(next int) {
	ctx, cancel := context.WithTimeout(s.ctx, s.deps.CatalogTimeout)
	q, err := s.deps.Catalog.NextQuestion(ctx, s.Code, next)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive || s.currentRound != next-1 {
		s.deps.Log.Debugf("session %s: round %d question discarded", s.Code, next)
		return
	}
	if err == nil {
		if _, dup := s.usedQuestions[q.ID]; dup {
			err = fmt.Errorf("%w: question %d already played", ErrCatalog, q.ID)
		}
	}
	if err != nil {
		s.deps.Log.Warnf("session %s: no question for round %d: %v", s.Code, next, err)
		s.completeLocked(true, EndCatalog)
		return
	}

	s.usedQuestions[q.ID] = struct{}{}
	s.currentRound = next
	s.round = newRoundCoordinator(roundDeps{
		code:     s.Code,
		registry: s.registry,
		scoring:  s.scoring,
		rate:     s.settings.EliminationRatePercent,
		emit:     s.emit,
		audit:    s.deps.Audit,
		log:      s.deps.Log,
		now:      s.now,
		onClosed: s.roundClosed,
	}, next)

	if err := s.round.Open(s.ctx, q, s.roundDuration, s.settings.TotalQuestions); err != nil {
		s.deps.Log.Errorf("session %s: open round %d: %v", s.Code, next, err)
		s.completeLocked(true, EndInternalError)
	}
}

func (s *Session) roundClosed(res RoundResult) {
	s.mu.Lock()
	if s.state != StateActive || s.round == nil || res.Round != s.currentRound {
		s.mu.Unlock()
		return
	}

	next := 0
	switch {
	case res.Err != nil:
		s.completeLocked(true, EndInternalError)
	case res.Remaining <= 1:
		s.completeLocked(false, EndLastSurvivor)
	case s.currentRound >= s.settings.TotalQuestions:
		s.completeLocked(false, EndRoundsExhausted)
	default:
		next = s.currentRound + 1
	}
	s.mu.Unlock()

	if next > 0 {
		s.advance(next)
	}
}

func (s *Session) completeLocked(early bool, reason string) {
	s.state = StateCompleted
	s.completedAt = s.now()
	s.completedEarly = early
	s.endReason = reason
	s.cancel()
	s.registry.Freeze()

	s.ranking = RankParticipants(s.registry.Snapshot())
	s.emit(EventSessionEnded, SessionEndedEvent{
		CompletedEarly: early,
		Reason:         reason,
		Rounds:         s.currentRound,
		Ranked:         s.ranking,
		PrizePool:      s.settings.PrizePool,
	})
	s.deps.Audit.RecordSession(s.recordLocked(true))
	close(s.done)

	if early {
		s.deps.Log.Warnf("session %s: completed early after round %d (%s)", s.Code, s.currentRound, reason)
	} else {
		s.deps.Log.Infof("session %s: completed after round %d (%s)", s.Code, s.currentRound, reason)
	}
}

func (s *Session) emit(typ string, data any) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()
	s.seq++
	s.deps.Publisher.Publish(s.Code, Event{
		Type:        typ,
		SessionCode: s.Code,
		Seq:         s.seq,
		At:          s.now(),
		Data:        data,
	})
}

func (s *Session) record() SessionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recordLocked(false)
}

func (s *Session) recordLocked(final bool) SessionRecord {
	rec := SessionRecord{
		Code:           s.Code,
		HostID:         s.HostID,
		Settings:       s.settings,
		State:          s.state,
		CurrentRound:   s.currentRound,
		CompletedEarly: s.completedEarly,
		EndReason:      s.endReason,
		CreatedAt:      s.CreatedAt,
	}
	if final {
		at := s.completedAt
		rec.CompletedAt = &at
		rec.Participants = s.registry.Snapshot()
	}
	return rec
}

// StateView is the snapshot a (re)connecting client needs to render the game.
type StateView struct {
	Seq            uint64              `json:"seq"` // last event already reflected
	Code           string              `json:"code"`
	Title          string              `json:"title"`
	State          SessionState        `json:"state"`
	HostID         uint                `json:"host_id"`
	CurrentRound   int                 `json:"current_round"`
	TotalQuestions int                 `json:"total_questions"`
	EliminationPct int                 `json:"elimination_rate_percent"`
	MaxPlayers     int                 `json:"max_participants"`
	PrizePool      *decimal.Decimal    `json:"prize_pool,omitempty"`
	RoundOpen      bool                `json:"round_open"`
	Question       *QuestionView       `json:"question,omitempty"`
	StartedAt      *time.Time          `json:"started_at,omitempty"`
	Deadline       *time.Time          `json:"deadline,omitempty"`
	RemainingMS    int64               `json:"remaining_ms"`
	Standings      []Participant       `json:"standings"`
	Active         int                 `json:"active"`
	CompletedEarly bool                `json:"completed_early"`
	EndReason      string              `json:"end_reason,omitempty"`
	Ranked         []RankedParticipant `json:"ranked_participants,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
}

// CurrentState returns a consistent snapshot of the session.
func (s *Session) CurrentState() StateView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateViewLocked()
}

func (s *Session) lastSeq() uint64 {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()
	return s.seq
}

func (s *Session) stateViewLocked() StateView {
	// read before the state so every event up to seq is reflected below
	seq := s.lastSeq()
	standings := s.registry.Snapshot()
	active := 0
	for _, p := range standings {
		if !p.IsEliminated {
			active++
		}
	}
	v := StateView{
		Seq:            seq,
		Code:           s.Code,
		Title:          s.settings.Title,
		State:          s.state,
		HostID:         s.HostID,
		CurrentRound:   s.currentRound,
		TotalQuestions: s.settings.TotalQuestions,
		EliminationPct: s.settings.EliminationRatePercent,
		MaxPlayers:     s.settings.MaxParticipants,
		PrizePool:      s.settings.PrizePool,
		Standings:      standings,
		Active:         active,
		CompletedEarly: s.completedEarly,
		EndReason:      s.endReason,
		Ranked:         s.ranking,
		CreatedAt:      s.CreatedAt,
	}
	if s.round != nil && s.state == StateActive {
		rv := s.round.view()
		q := viewQuestion(rv.Question)
		v.Question = &q
		v.StartedAt = &rv.StartedAt
		v.Deadline = &rv.Deadline
		v.RoundOpen = rv.Status == roundOpen
		if v.RoundOpen {
			if left := rv.Deadline.Sub(s.now()); left > 0 {
				v.RemainingMS = left.Milliseconds()
			}
		}
	}
	return v
}

// Standings returns the final ranking once completed, the live one before.
func (s *Session) Standings() []RankedParticipant {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ranking != nil {
		return s.ranking
	}
	return RankParticipants(s.registry.Snapshot())
}

// Summary is the short form used by session listings.
type Summary struct {
	Code             string       `json:"code"`
	Title            string       `json:"title"`
	State            SessionState `json:"state"`
	HostID           uint         `json:"host_id"`
	ParticipantCount int          `json:"participant_count"`
	CurrentRound     int          `json:"current_round"`
	CreatedAt        time.Time    `json:"created_at"`
}

func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Summary{
		Code:             s.Code,
		Title:            s.settings.Title,
		State:            s.state,
		HostID:           s.HostID,
		ParticipantCount: s.registry.Count(),
		CurrentRound:     s.currentRound,
		CreatedAt:        s.CreatedAt,
	}
}

func (s *Session) completedSince() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completedAt, s.state == StateCompleted
}
