package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"battle-royale-backend/internal/battle"
	"battle-royale-backend/internal/models"

	"github.com/decred/slog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AuditStore persists what the engine reports.
type AuditStore interface {
	SaveSession(ctx context.Context, rec battle.SessionRecord) error
	SaveRound(ctx context.Context, rec battle.RoundRecord) error
}

type auditItem struct {
	session *battle.SessionRecord
	round   *battle.RoundRecord
}

// AuditService is the engine's AuditSink. Records are queued and written by
// Run so the game never waits on the database; a full queue drops records.
type AuditService struct {
	store AuditStore
	log   slog.Logger
	queue chan auditItem
}

func NewAuditService(store AuditStore, buffer int, log slog.Logger) *AuditService {
	if buffer <= 0 {
		buffer = 256
	}
	if log == nil {
		log = slog.Disabled
	}
	return &AuditService{store: store, log: log, queue: make(chan auditItem, buffer)}
}

func (s *AuditService) RecordSession(rec battle.SessionRecord) {
	s.enqueue(auditItem{session: &rec}, "session "+rec.Code)
}

func (s *AuditService) RecordRound(rec battle.RoundRecord) {
	s.enqueue(auditItem{round: &rec}, fmt.Sprintf("round %d of session %s", rec.Round, rec.SessionCode))
}

func (s *AuditService) enqueue(item auditItem, what string) {
	select {
	case s.queue <- item:
	default:
		s.log.Warnf("audit queue full, dropping %s", what)
	}
}

// Run writes queued records until ctx is done, then drains what is left.
func (s *AuditService) Run(ctx context.Context) error {
	for {
		select {
		case item := <-s.queue:
			s.write(ctx, item)
		case <-ctx.Done():
			s.drain()
			return nil
		}
	}
}

func (s *AuditService) drain() {
	for {
		select {
		case item := <-s.queue:
			s.write(context.Background(), item)
		default:
			return
		}
	}
}

func (s *AuditService) write(ctx context.Context, item auditItem) {
	var err error
	switch {
	case item.session != nil:
		err = s.store.SaveSession(ctx, *item.session)
		if err != nil {
			err = fmt.Errorf("session %s: %w", item.session.Code, err)
		}
	case item.round != nil:
		err = s.store.SaveRound(ctx, *item.round)
		if err != nil {
			err = fmt.Errorf("round %d of session %s: %w", item.round.Round, item.round.SessionCode, err)
		}
	}
	if err != nil {
		s.log.Errorf("audit write failed: %v", err)
	}
}

// GormAuditStore writes audit rows with gorm.
type GormAuditStore struct {
	db *gorm.DB
}

func NewGormAuditStore(db *gorm.DB) *GormAuditStore {
	return &GormAuditStore{db: db}
}

// SaveSession upserts the session row by code. A final record also stores
// the participants with their final rank.
func (s *GormAuditStore) SaveSession(ctx context.Context, rec battle.SessionRecord) error {
	row := sessionRow(rec)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"state", "current_round", "completed_early", "end_reason", "completed_at",
			}),
		}).Create(&row).Error
		if err != nil {
			return err
		}
		if len(rec.Participants) == 0 {
			return nil
		}

		if row.ID == 0 {
			if err := tx.Where("code = ?", rec.Code).First(&row).Error; err != nil {
				return err
			}
		}
		participants := participantRows(row.ID, rec.Participants)
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "session_id"}, {Name: "participant_uid"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"score", "streak", "correct_answers", "is_eliminated", "eliminated_round", "final_rank",
			}),
		}).Create(&participants).Error
	})
}

func (s *GormAuditStore) SaveRound(ctx context.Context, rec battle.RoundRecord) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var session models.BattleSession
		if err := tx.Where("code = ?", rec.SessionCode).First(&session).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("no session row for %s", rec.SessionCode)
			}
			return err
		}
		row := roundRow(session.ID, rec)
		return tx.Create(&row).Error
	})
}

func sessionRow(rec battle.SessionRecord) models.BattleSession {
	return models.BattleSession{
		Code:                   rec.Code,
		HostID:                 rec.HostID,
		QuizID:                 rec.Settings.QuizID,
		Title:                  rec.Settings.Title,
		State:                  string(rec.State),
		MaxParticipants:        rec.Settings.MaxParticipants,
		EliminationRatePercent: rec.Settings.EliminationRatePercent,
		TimePerQuestionSeconds: rec.Settings.TimePerQuestionSeconds,
		TotalQuestions:         rec.Settings.TotalQuestions,
		PrizePool:              rec.Settings.PrizePool,
		CurrentRound:           rec.CurrentRound,
		CompletedEarly:         rec.CompletedEarly,
		EndReason:              rec.EndReason,
		CreatedAt:              rec.CreatedAt,
		CompletedAt:            rec.CompletedAt,
	}
}

func participantRows(sessionID uint, ps []battle.Participant) []models.BattleParticipant {
	ranked := battle.RankParticipants(ps)
	rows := make([]models.BattleParticipant, 0, len(ranked))
	for _, r := range ranked {
		rows = append(rows, models.BattleParticipant{
			SessionID:       sessionID,
			ParticipantUID:  r.ID,
			UserID:          r.UserID,
			Pseudo:          r.Pseudo,
			Avatar:          r.Avatar,
			Score:           r.Score,
			Streak:          r.Streak,
			CorrectAnswers:  r.CorrectAnswers,
			IsEliminated:    r.IsEliminated,
			EliminatedRound: r.EliminatedRound,
			FinalRank:       r.Rank,
			JoinedAt:        r.JoinedAt,
		})
	}
	return rows
}

// roundRow keeps one answer row per scored participant, in id order.
func roundRow(sessionID uint, rec battle.RoundRecord) models.BattleRound {
	row := models.BattleRound{
		SessionID:   sessionID,
		Round:       rec.Round,
		QuestionID:  rec.QuestionID,
		CloseReason: string(rec.CloseReason),
		Eliminated:  rec.Eliminated,
		StartedAt:   rec.StartedAt,
		ClosedAt:    rec.ClosedAt,
	}
	for _, res := range rec.Results {
		a := models.BattleAnswer{
			ParticipantUID: res.ParticipantID,
			Answered:       res.Answered,
			IsCorrect:      res.Correct,
			Points:         res.Points,
			ResponseTimeMS: res.ResponseTimeMS,
		}
		if sub, ok := rec.Answers[res.ParticipantID]; ok {
			a.AnswerIDs = sub.AnswerIDs
			a.ClientResponseMS = sub.ClientResponseMS
		}
		row.Answers = append(row.Answers, a)
	}
	sort.Slice(row.Answers, func(i, j int) bool {
		return row.Answers[i].ParticipantUID < row.Answers[j].ParticipantUID
	})
	return row
}
