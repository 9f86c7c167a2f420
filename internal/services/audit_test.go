package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"battle-royale-backend/internal/battle"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuditStore struct {
	mu       sync.Mutex
	sessions []battle.SessionRecord
	rounds   []battle.RoundRecord
	fail     bool
}

func (f *fakeAuditStore) SaveSession(_ context.Context, rec battle.SessionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("db down")
	}
	f.sessions = append(f.sessions, rec)
	return nil
}

func (f *fakeAuditStore) SaveRound(_ context.Context, rec battle.RoundRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("db down")
	}
	f.rounds = append(f.rounds, rec)
	return nil
}

func (f *fakeAuditStore) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sessions), len(f.rounds)
}

func TestAuditServiceWritesInOrder(t *testing.T) {
	store := &fakeAuditStore{}
	s := NewAuditService(store, 16, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	s.RecordSession(battle.SessionRecord{Code: "ABC123", State: battle.StateWaiting})
	s.RecordRound(battle.RoundRecord{SessionCode: "ABC123", Round: 1})
	s.RecordSession(battle.SessionRecord{Code: "ABC123", State: battle.StateCompleted})

	require.Eventually(t, func() bool {
		sessions, rounds := store.counts()
		return sessions == 2 && rounds == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, battle.StateCompleted, store.sessions[1].State)
}

func TestAuditServiceDrainsOnShutdown(t *testing.T) {
	store := &fakeAuditStore{}
	s := NewAuditService(store, 16, nil)

	for i := 1; i <= 5; i++ {
		s.RecordRound(battle.RoundRecord{SessionCode: "ABC123", Round: i})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, s.Run(ctx))

	_, rounds := store.counts()
	assert.Equal(t, 5, rounds)
}

func TestAuditServiceDropsWhenFull(t *testing.T) {
	store := &fakeAuditStore{}
	s := NewAuditService(store, 2, nil)

	for i := 0; i < 5; i++ {
		s.RecordSession(battle.SessionRecord{Code: "ABC123"})
	}
	assert.Len(t, s.queue, 2)
}

func TestAuditServiceSurvivesStoreErrors(t *testing.T) {
	store := &fakeAuditStore{fail: true}
	s := NewAuditService(store, 4, nil)
	s.RecordSession(battle.SessionRecord{Code: "ABC123"})
	s.RecordRound(battle.RoundRecord{SessionCode: "ABC123", Round: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, s.Run(ctx))
	assert.Empty(t, s.queue)
}

func TestRoundRow(t *testing.T) {
	rec := battle.RoundRecord{
		SessionCode: "ABC123",
		Round:       2,
		QuestionID:  9,
		CloseReason: battle.CloseTimeout,
		Answers: map[string]battle.Submission{
			"b": {AnswerIDs: []uint{4}, ResponseTimeMS: 900, ClientResponseMS: 850},
		},
		Results: []battle.ParticipantResult{
			{ParticipantID: "b", Answered: true, Correct: true, Points: 110, NewStreak: 2, ResponseTimeMS: 900},
			{ParticipantID: "a", ResponseTimeMS: 30000},
		},
		Eliminated: []string{"a"},
	}

	row := roundRow(7, rec)
	assert.Equal(t, uint(7), row.SessionID)
	assert.Equal(t, "timeout", row.CloseReason)
	require.Len(t, row.Answers, 2)
	assert.Equal(t, "a", row.Answers[0].ParticipantUID)
	assert.False(t, row.Answers[0].Answered)
	assert.Nil(t, row.Answers[0].AnswerIDs)
	assert.Equal(t, []uint{4}, row.Answers[1].AnswerIDs)
	assert.Equal(t, int64(850), row.Answers[1].ClientResponseMS)
	assert.Equal(t, []string{"a"}, row.Eliminated)
}

func TestParticipantRowsCarryFinalRank(t *testing.T) {
	one := 1
	rows := participantRows(3, []battle.Participant{
		{ID: "out", Score: 50, IsEliminated: true, EliminatedRound: &one},
		{ID: "winner", Score: 300},
	})
	require.Len(t, rows, 2)
	assert.Equal(t, "winner", rows[0].ParticipantUID)
	assert.Equal(t, 1, rows[0].FinalRank)
	assert.Equal(t, 2, rows[1].FinalRank)
	assert.Equal(t, uint(3), rows[1].SessionID)
}
