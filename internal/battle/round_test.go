package battle

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/decred/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundHarness struct {
	round     *RoundCoordinator
	registry  *ParticipantRegistry
	players   []Participant
	publisher *recordingPublisher
	audit     *countingAudit
	results   chan RoundResult
	question  Question
}

func newRoundHarness(t *testing.T, players, rate int) *roundHarness {
	t.Helper()
	h := &roundHarness{
		registry:  NewParticipantRegistry(players),
		publisher: &recordingPublisher{},
		audit:     &countingAudit{},
		results:   make(chan RoundResult, 4),
		question:  singleQuestion(1),
	}
	for i := 0; i < players; i++ {
		p, err := h.registry.Join(JoinRequest{Pseudo: fmt.Sprintf("p%d", i)})
		require.NoError(t, err)
		h.players = append(h.players, p)
	}
	h.registry.CloseJoins()

	var seq uint64
	h.round = newRoundCoordinator(roundDeps{
		code:     "TEST01",
		registry: h.registry,
		scoring:  NewScoringPolicy(),
		rate:     rate,
		emit: func(typ string, data any) {
			h.publisher.Publish("TEST01", Event{Type: typ, Seq: atomic.AddUint64(&seq, 1), Data: data})
		},
		audit:    h.audit,
		log:      slog.Disabled,
		now:      time.Now,
		onClosed: func(res RoundResult) { h.results <- res },
	}, 1)
	return h
}

func (h *roundHarness) open(t *testing.T, d time.Duration) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, h.round.Open(ctx, h.question, d, 3))
	t.Cleanup(cancel)
	return cancel
}

func (h *roundHarness) result(t *testing.T) RoundResult {
	t.Helper()
	select {
	case res := <-h.results:
		return res
	case <-time.After(3 * time.Second):
		t.Fatal("round never closed")
		return RoundResult{}
	}
}

func TestRoundOpenPublishesStartThenQuestion(t *testing.T) {
	h := newRoundHarness(t, 4, 25)
	h.open(t, time.Minute)

	evs := h.publisher.Events()
	require.Len(t, evs, 2)
	assert.Equal(t, EventEliminationRoundStarted, evs[0].Type)
	assert.Equal(t, EventNextQuestion, evs[1].Type)

	nq := evs[1].Data.(NextQuestionEvent)
	assert.Equal(t, 1, nq.Round)
	assert.Equal(t, h.question.ID, nq.Question.ID)
	assert.Len(t, nq.Question.Answers, 4)

	assert.Error(t, h.round.Open(context.Background(), h.question, time.Minute, 3))
}

func TestRoundClosesWhenAllAnswered(t *testing.T) {
	h := newRoundHarness(t, 4, 25)
	h.open(t, time.Minute)

	for i, p := range h.players {
		ids := right(h.question)
		if i == 3 {
			ids = wrong(h.question)
		}
		require.NoError(t, h.round.Submit(p.ID, 1, ids, 0))
	}

	res := h.result(t)
	assert.Equal(t, CloseAllAnswered, res.Reason)
	assert.True(t, res.Applied)
	assert.Equal(t, []string{h.players[3].ID}, res.Eliminated)
	assert.Equal(t, 3, res.Remaining)

	gone, err := h.registry.Get(h.players[3].ID)
	require.NoError(t, err)
	assert.True(t, gone.IsEliminated)
	require.NotNil(t, gone.EliminatedRound)
	assert.Equal(t, 1, *gone.EliminatedRound)
}

func TestRoundTimeoutScoresMissingAnswers(t *testing.T) {
	h := newRoundHarness(t, 4, 25)
	h.open(t, 80*time.Millisecond)

	for _, p := range h.players[:3] {
		require.NoError(t, h.round.Submit(p.ID, 1, right(h.question), 0))
	}

	res := h.result(t)
	assert.Equal(t, CloseTimeout, res.Reason)
	assert.Equal(t, []string{h.players[3].ID}, res.Eliminated)

	late, err := h.registry.Get(h.players[3].ID)
	require.NoError(t, err)
	assert.Zero(t, late.Score)
	assert.Equal(t, int64(80), late.LastResponseMS)

	for _, p := range h.players[:3] {
		got, err := h.registry.Get(p.ID)
		require.NoError(t, err)
		assert.Equal(t, 100, got.Score)
		assert.Equal(t, 1, got.Streak)
	}
}

func TestRoundClosesOnceUnderRace(t *testing.T) {
	h := newRoundHarness(t, 8, 25)
	h.open(t, 20*time.Millisecond)

	var wins int32
	var wg sync.WaitGroup
	for _, p := range h.players {
		wg.Add(2)
		go func(id string) {
			defer wg.Done()
			_ = h.round.Submit(id, 1, right(h.question), 0)
		}(p.ID)
		go func() {
			defer wg.Done()
			if h.round.Close(CloseByHost) {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()
	<-h.round.Done()

	// the timer may have won, in which case no host close succeeded
	assert.LessOrEqual(t, atomic.LoadInt32(&wins), int32(1))
	h.result(t)
	assert.Equal(t, 1, h.audit.roundCount())
	assert.Equal(t, 1, h.registry.LastAppliedRound())
	assert.Len(t, h.publisher.ofType(EventRoundSummary), 1)

	select {
	case res := <-h.results:
		t.Fatalf("second close reported: %+v", res)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRoundRejectsAnswerWhileClosing(t *testing.T) {
	h := newRoundHarness(t, 4, 25)
	h.open(t, time.Minute)

	h.round.mu.Lock()
	h.round.status = roundClosing
	h.round.mu.Unlock()

	err := h.round.Submit(h.players[0].ID, 1, right(h.question), 0)
	assert.ErrorIs(t, err, ErrRoundClosed)
}

func TestRoundRejectsLateAnswerAfterClose(t *testing.T) {
	h := newRoundHarness(t, 4, 25)
	h.open(t, time.Minute)

	for _, p := range h.players[:3] {
		require.NoError(t, h.round.Submit(p.ID, 1, right(h.question), 0))
	}
	require.True(t, h.round.Close(CloseByHost))
	res := h.result(t)

	err := h.round.Submit(h.players[3].ID, 1, right(h.question), 0)
	assert.ErrorIs(t, err, ErrRoundClosed)
	assert.Equal(t, []string{h.players[3].ID}, res.Eliminated)
	assert.Equal(t, 1, h.audit.roundCount())
}

func TestRoundSubmitValidation(t *testing.T) {
	h := newRoundHarness(t, 4, 25)
	h.open(t, time.Minute)
	p := h.players[0].ID

	assert.ErrorIs(t, h.round.Submit(p, 2, right(h.question), 0), ErrWrongRound)
	assert.ErrorIs(t, h.round.Submit(p, 0, right(h.question), 0), ErrRoundClosed)
	assert.ErrorIs(t, h.round.Submit(p, 1, nil, 0), ErrInvalidAnswer)
	assert.ErrorIs(t, h.round.Submit(p, 1, []uint{999}, 0), ErrInvalidAnswer)
	assert.ErrorIs(t, h.round.Submit(p, 1, []uint{11, 12}, 0), ErrInvalidAnswer)
	assert.ErrorIs(t, h.round.Submit("nobody", 1, right(h.question), 0), ErrUnknownPlayer)

	require.NoError(t, h.round.Submit(p, 1, right(h.question), 0))
	assert.ErrorIs(t, h.round.Submit(p, 1, wrong(h.question), 0), ErrAlreadyAnswered)
}

func TestRoundCancelAppliesNothing(t *testing.T) {
	h := newRoundHarness(t, 4, 25)
	cancel := h.open(t, time.Minute)

	require.NoError(t, h.round.Submit(h.players[0].ID, 1, right(h.question), 0))
	cancel()

	<-h.round.Done()
	assert.Equal(t, CloseCancelled, h.round.Result().Reason)
	assert.False(t, h.round.Close(CloseByHost))
	assert.Zero(t, h.registry.LastAppliedRound())
	assert.Zero(t, h.audit.roundCount())

	got, err := h.registry.Get(h.players[0].ID)
	require.NoError(t, err)
	assert.Zero(t, got.Score)
}
