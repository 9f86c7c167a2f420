package services

import (
	"errors"
	"fmt"
	"strings"

	"battle-royale-backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrQuizNotFound = errors.New("quiz not found")
	ErrInvalidQuiz  = errors.New("invalid quiz")
)

// QuizService lets hosts author the question banks battles are played from.
type QuizService struct {
	db *gorm.DB
}

func NewQuizService(db *gorm.DB) *QuizService {
	return &QuizService{db: db}
}

type OptionInput struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

type QuestionInput struct {
	Text             string        `json:"text"`
	Type             string        `json:"type"`
	Points           int           `json:"points"`
	TimeLimitSeconds int           `json:"time_limit_seconds"`
	Options          []OptionInput `json:"options"`
}

type QuizInput struct {
	Title     string          `json:"title"`
	Questions []QuestionInput `json:"questions"`
}

func (s *QuizService) GetQuizzesByHost(hostID uint) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	err := s.db.Where("host_id = ?", hostID).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_num ASC")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_num ASC")
		}).
		Order("created_at DESC").
		Find(&quizzes).Error
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	return quizzes, nil
}

func (s *QuizService) GetQuizByID(quizID, hostID uint) (*models.Quiz, error) {
	var quiz models.Quiz
	err := s.db.Where("id = ? AND host_id = ?", quizID, hostID).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_num ASC")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_num ASC")
		}).
		First(&quiz).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrQuizNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get quiz %d: %w", quizID, err)
	}
	return &quiz, nil
}

// CreateQuiz stores a quiz with its questions in one transaction.
func (s *QuizService) CreateQuiz(hostID uint, input QuizInput) (*models.Quiz, error) {
	quiz, err := BuildQuiz(hostID, input)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(quiz).Error
	})
	if err != nil {
		return nil, fmt.Errorf("create quiz: %w", err)
	}
	return quiz, nil
}

func (s *QuizService) DeleteQuiz(quizID, hostID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var quiz models.Quiz
		if err := tx.Where("id = ? AND host_id = ?", quizID, hostID).First(&quiz).Error; err != nil {
			return ErrQuizNotFound
		}
		questions := tx.Model(&models.Question{}).Select("id").Where("quiz_id = ?", quizID)
		if err := tx.Where("question_id IN (?)", questions).Delete(&models.Option{}).Error; err != nil {
			return err
		}
		if err := tx.Where("quiz_id = ?", quizID).Delete(&models.Question{}).Error; err != nil {
			return err
		}
		return tx.Delete(&quiz).Error
	})
}

// BuildQuiz validates input and returns the unsaved quiz tree.
func BuildQuiz(hostID uint, input QuizInput) (*models.Quiz, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidQuiz)
	}
	if len(input.Questions) == 0 {
		return nil, fmt.Errorf("%w: at least one question is required", ErrInvalidQuiz)
	}

	quiz := &models.Quiz{HostID: hostID, Title: title}
	for i, in := range input.Questions {
		q, err := buildQuestion(in, i)
		if err != nil {
			return nil, fmt.Errorf("%w: question %d: %v", ErrInvalidQuiz, i+1, err)
		}
		quiz.Questions = append(quiz.Questions, q)
	}
	return quiz, nil
}

func buildQuestion(in QuestionInput, order int) (models.Question, error) {
	qType := in.Type
	if qType == "" {
		qType = models.QuestionTypeSingle
	}
	if qType != models.QuestionTypeSingle && qType != models.QuestionTypeMultiple {
		return models.Question{}, fmt.Errorf("unknown type %q", qType)
	}
	if strings.TrimSpace(in.Text) == "" {
		return models.Question{}, errors.New("text is required")
	}
	if len(in.Options) < 2 {
		return models.Question{}, errors.New("at least two options are required")
	}

	correct := 0
	for _, o := range in.Options {
		if o.IsCorrect {
			correct++
		}
	}
	switch {
	case correct == 0:
		return models.Question{}, errors.New("no correct option")
	case qType == models.QuestionTypeSingle && correct != 1:
		return models.Question{}, errors.New("single questions need exactly one correct option")
	}

	q := models.Question{
		Text:             in.Text,
		Type:             qType,
		Points:           in.Points,
		TimeLimitSeconds: in.TimeLimitSeconds,
		OrderNum:         order,
	}
	if q.Points <= 0 {
		q.Points = 100
	}
	if q.TimeLimitSeconds <= 0 {
		q.TimeLimitSeconds = 30
	}
	for j, o := range in.Options {
		q.Options = append(q.Options, models.Option{Text: o.Text, IsCorrect: o.IsCorrect, OrderNum: j})
	}
	return q, nil
}
