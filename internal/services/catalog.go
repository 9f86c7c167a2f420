package services

import (
	"context"
	"fmt"
	"sync"

	"battle-royale-backend/internal/battle"
	"battle-royale-backend/internal/models"

	"github.com/decred/slog"
	"gorm.io/gorm"
)

// CatalogService serves battle questions from the quiz tables. Bind loads a
// quiz once per session so rounds never hit the database.
type CatalogService struct {
	log  slog.Logger
	load func(ctx context.Context, quizID uint) ([]models.Question, error)

	mu    sync.RWMutex
	bound map[string][]battle.Question
}

func NewCatalogService(db *gorm.DB, log slog.Logger) *CatalogService {
	return newCatalogService(log, func(ctx context.Context, quizID uint) ([]models.Question, error) {
		var questions []models.Question
		err := db.WithContext(ctx).
			Where("quiz_id = ?", quizID).
			Order("order_num ASC").
			Preload("Options", func(db *gorm.DB) *gorm.DB {
				return db.Order("order_num ASC")
			}).
			Find(&questions).Error
		return questions, err
	})
}

func newCatalogService(log slog.Logger, load func(context.Context, uint) ([]models.Question, error)) *CatalogService {
	if log == nil {
		log = slog.Disabled
	}
	return &CatalogService{log: log, load: load, bound: make(map[string][]battle.Question)}
}

func (s *CatalogService) Bind(ctx context.Context, sessionCode string, settings battle.Settings) error {
	rows, err := s.load(ctx, settings.QuizID)
	if err != nil {
		return fmt.Errorf("%w: load quiz %d: %v", battle.ErrCatalog, settings.QuizID, err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("%w: quiz %d has no questions", battle.ErrQuestionNotFound, settings.QuizID)
	}

	questions := make([]battle.Question, 0, len(rows))
	for _, row := range rows {
		questions = append(questions, ToBattleQuestion(row))
	}
	if len(questions) < settings.TotalQuestions {
		s.log.Warnf("session %s: quiz %d has %d questions for %d rounds", sessionCode, settings.QuizID, len(questions), settings.TotalQuestions)
	}

	s.mu.Lock()
	s.bound[sessionCode] = questions
	s.mu.Unlock()
	s.log.Debugf("session %s bound to quiz %d", sessionCode, settings.QuizID)
	return nil
}

func (s *CatalogService) Release(sessionCode string) {
	s.mu.Lock()
	delete(s.bound, sessionCode)
	s.mu.Unlock()
}

func (s *CatalogService) NextQuestion(ctx context.Context, sessionCode string, roundIndex int) (battle.Question, error) {
	if err := ctx.Err(); err != nil {
		return battle.Question{}, fmt.Errorf("%w: %v", battle.ErrCatalog, err)
	}
	s.mu.RLock()
	questions, ok := s.bound[sessionCode]
	s.mu.RUnlock()
	if !ok || roundIndex < 1 || roundIndex > len(questions) {
		return battle.Question{}, battle.ErrQuestionNotFound
	}
	return questions[roundIndex-1], nil
}

func ToBattleQuestion(row models.Question) battle.Question {
	q := battle.Question{
		ID:               row.ID,
		Type:             battle.QuestionType(row.Type),
		Text:             row.Text,
		TimeLimitSeconds: row.TimeLimitSeconds,
		Points:           row.Points,
		Answers:          make([]battle.AnswerOption, len(row.Options)),
	}
	if q.Type == "" {
		q.Type = battle.QuestionSingle
	}
	for i, o := range row.Options {
		q.Answers[i] = battle.AnswerOption{ID: o.ID, Text: o.Text, IsCorrect: o.IsCorrect}
	}
	return q
}
