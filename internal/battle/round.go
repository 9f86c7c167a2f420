package battle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/decred/slog"
)

type CloseReason string

const (
	CloseTimeout     CloseReason = "timeout"
	CloseAllAnswered CloseReason = "all_answered"
	CloseByHost      CloseReason = "ended_by_host"
	CloseCancelled   CloseReason = "cancelled"
)

type roundStatus int

const (
	roundIdle roundStatus = iota
	roundOpen
	roundClosing
	roundClosed
)

func (s roundStatus) String() string {
	switch s {
	case roundOpen:
		return "open"
	case roundClosing:
		return "closing"
	case roundClosed:
		return "closed"
	default:
		return "idle"
	}
}

// RoundResult is what a closed round reports back to its session.
type RoundResult struct {
	Round      int
	Reason     CloseReason
	Applied    bool
	Eliminated []string
	Remaining  int
	Err        error
}

type roundDeps struct {
	code     string
	registry *ParticipantRegistry
	scoring  ScoringPolicy
	rate     int
	emit     func(typ string, data any)
	audit    AuditSink
	log      slog.Logger
	now      func() time.Time
	onClosed func(RoundResult)
}

// RoundCoordinator drives a single round through Idle, Open, Closing and
// Closed. A round closes exactly once, whichever trigger comes first.
type RoundCoordinator struct {
	roundDeps
	number int

	mu        sync.Mutex
	status    roundStatus
	question  Question
	duration  time.Duration
	startedAt time.Time
	deadline  time.Time
	result    RoundResult

	allAnswered chan struct{}
	signalOnce  sync.Once
	stop        chan struct{}
	stopOnce    sync.Once
	done        chan struct{}
}

func newRoundCoordinator(deps roundDeps, number int) *RoundCoordinator {
	return &RoundCoordinator{
		roundDeps:   deps,
		number:      number,
		allAnswered: make(chan struct{}),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Open publishes the question and starts the round timer.
func (c *RoundCoordinator) Open(ctx context.Context, q Question, d time.Duration, totalQuestions int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != roundIdle {
		return fmt.Errorf("%w: round %d is %s", ErrInvariant, c.number, c.status)
	}
	if err := c.registry.OpenRound(c.number); err != nil {
		return err
	}

	c.question = q
	c.duration = d
	c.startedAt = c.now()
	c.deadline = c.startedAt.Add(d)

	c.emit(EventEliminationRoundStarted, RoundStartedEvent{
		Round:            c.number,
		CountdownSeconds: int(d / time.Second),
		StartedAt:        c.startedAt,
		Deadline:         c.deadline,
	})
	c.emit(EventNextQuestion, NextQuestionEvent{
		Round:          c.number,
		TotalQuestions: totalQuestions,
		Question:       viewQuestion(q),
		StartedAt:      c.startedAt,
		Deadline:       c.deadline,
	})
	c.status = roundOpen
	c.log.Debugf("session %s: round %d open, question %d, %v", c.code, c.number, q.ID, d)

	go c.wait(ctx)
	return nil
}

func (c *RoundCoordinator) wait(ctx context.Context) {
	timer := time.NewTimer(c.duration)
	defer timer.Stop()

	select {
	case <-timer.C:
		c.Close(CloseTimeout)
	case <-c.allAnswered:
		c.Close(CloseAllAnswered)
	case <-ctx.Done():
		c.Cancel()
	case <-c.stop:
	}
}

// Submit records one answer while the round is open.
func (c *RoundCoordinator) Submit(participantID string, round int, ids []uint, clientMS int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if round < c.number || (round == c.number && c.status != roundOpen) {
		return ErrRoundClosed
	}
	if round > c.number {
		return ErrWrongRound
	}
	if err := c.question.validateSelection(ids); err != nil {
		return err
	}

	elapsed := c.now().Sub(c.startedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > c.duration {
		elapsed = c.duration
	}

	answered, active, err := c.registry.RecordAnswer(round, participantID, Submission{
		AnswerIDs:        ids,
		ResponseTimeMS:   elapsed.Milliseconds(),
		ClientResponseMS: clientMS,
	})
	if err != nil {
		return err
	}

	c.emit(EventAnswerReceived, AnswerReceivedEvent{Round: round, Answered: answered, Active: active})
	if answered >= active {
		c.signalOnce.Do(func() { close(c.allAnswered) })
	}
	return nil
}

// Close moves an open round to Closed, scoring and eliminating on the way.
// It reports false when another trigger already closed the round.
func (c *RoundCoordinator) Close(reason CloseReason) bool {
	c.mu.Lock()
	if c.status != roundOpen {
		c.mu.Unlock()
		return false
	}
	c.status = roundClosing
	c.mu.Unlock()

	c.stopOnce.Do(func() { close(c.stop) })
	res := c.finish(reason)

	c.mu.Lock()
	c.status = roundClosed
	c.result = res
	c.mu.Unlock()
	close(c.done)

	if c.onClosed != nil {
		c.onClosed(res)
	}
	return true
}

// Cancel drops an open round without scoring it.
func (c *RoundCoordinator) Cancel() bool {
	c.mu.Lock()
	if c.status != roundOpen {
		c.mu.Unlock()
		return false
	}
	c.status = roundClosed
	c.result = RoundResult{Round: c.number, Reason: CloseCancelled}
	c.mu.Unlock()

	c.registry.CloseRound(c.number)
	c.stopOnce.Do(func() { close(c.stop) })
	close(c.done)
	c.log.Debugf("session %s: round %d cancelled", c.code, c.number)
	return true
}

func (c *RoundCoordinator) finish(reason CloseReason) RoundResult {
	res := RoundResult{Round: c.number, Reason: reason}

	answers := c.registry.CloseRound(c.number)
	snapshot := c.registry.Snapshot()

	results := make([]ParticipantResult, 0, len(snapshot))
	projected := make([]Participant, 0, len(snapshot))
	for _, p := range snapshot {
		if p.IsEliminated {
			continue
		}
		var sub *Submission
		responseMS := c.duration.Milliseconds()
		if s, ok := answers[p.ID]; ok {
			sub = &s
			responseMS = s.ResponseTimeMS
		}
		points, correct, streak := c.scoring.Score(c.question, sub, p.Streak)
		results = append(results, ParticipantResult{
			ParticipantID:  p.ID,
			Answered:       sub != nil,
			Correct:        correct,
			Points:         points,
			NewStreak:      streak,
			ResponseTimeMS: responseMS,
		})
		p.Score += points
		p.Streak = streak
		p.LastResponseMS = responseMS
		projected = append(projected, p)
	}

	eliminated := SelectEliminated(projected, c.rate)
	applied, err := c.registry.ApplyRoundOutcome(c.number, RoundOutcome{Results: results, Eliminated: eliminated})
	if err != nil {
		if errors.Is(err, ErrSessionCompleted) {
			c.log.Debugf("session %s: round %d outcome dropped, session already completed", c.code, c.number)
		} else {
			c.log.Errorf("session %s: round %d outcome rejected: %v", c.code, c.number, err)
		}
		res.Err = err
		return res
	}
	res.Remaining = c.registry.ActiveCount()
	if !applied {
		return res
	}
	res.Applied = true
	res.Eliminated = eliminated

	c.audit.RecordRound(RoundRecord{
		SessionCode: c.code,
		Round:       c.number,
		QuestionID:  c.question.ID,
		StartedAt:   c.startedAt,
		ClosedAt:    c.now(),
		CloseReason: reason,
		Answers:     answers,
		Results:     results,
		Eliminated:  eliminated,
	})

	standings := c.registry.Snapshot()
	byID := make(map[string]Participant, len(standings))
	for _, p := range standings {
		byID[p.ID] = p
	}
	for _, id := range eliminated {
		p := byID[id]
		c.emit(EventParticipantEliminated, EliminatedEvent{
			ParticipantID: id,
			Pseudo:        p.Pseudo,
			Round:         c.number,
			Score:         p.Score,
		})
	}
	c.emit(EventRoundSummary, RoundSummaryEvent{
		Round:       c.number,
		CloseReason: reason,
		CorrectIDs:  c.question.CorrectIDs(),
		Results:     results,
		Eliminated:  eliminated,
		Remaining:   res.Remaining,
		Standings:   standings,
	})

	c.log.Infof("session %s: round %d closed (%s), %d eliminated, %d remaining",
		c.code, c.number, reason, len(eliminated), res.Remaining)
	return res
}

// Done is closed once the round reached Closed.
func (c *RoundCoordinator) Done() <-chan struct{} {
	return c.done
}

func (c *RoundCoordinator) Result() RoundResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

type roundView struct {
	Number    int
	Status    roundStatus
	Question  Question
	StartedAt time.Time
	Deadline  time.Time
}

func (c *RoundCoordinator) view() roundView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return roundView{
		Number:    c.number,
		Status:    c.status,
		Question:  c.question,
		StartedAt: c.startedAt,
		Deadline:  c.deadline,
	}
}
