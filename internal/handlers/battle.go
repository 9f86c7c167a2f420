package handlers

import (
	"net/http"

	"battle-royale-backend/internal/battle"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type BattleHandler struct {
	registry *battle.Registry
}

func NewBattleHandler(registry *battle.Registry) *BattleHandler {
	return &BattleHandler{registry: registry}
}

type CreateBattleRequest struct {
	Title                  string           `json:"title" binding:"required,max=255" example:"Friday night battle"`
	QuizID                 uint             `json:"quiz_id" example:"1"`
	MaxParticipants        int              `json:"max_participants" binding:"required" example:"50"`
	EliminationRatePercent int              `json:"elimination_rate_percent" binding:"required" example:"25"`
	TimePerQuestionSeconds int              `json:"time_per_question_seconds" binding:"required" example:"20"`
	TotalQuestions         int              `json:"total_questions" binding:"required" example:"10"`
	PrizePool              *decimal.Decimal `json:"prize_pool,omitempty" swaggertype:"string" example:"1000.00"`
}

type JoinBattleRequest struct {
	Pseudo string  `json:"pseudo" binding:"required,max=100" example:"neo"`
	Avatar *string `json:"avatar,omitempty" example:"https://example.com/a.png"`
}

type JoinBattleResponse struct {
	Participant Participant `json:"participant"`
	State       StateView   `json:"state"`
}

type SubmitAnswerRequest struct {
	ParticipantID    string `json:"participant_id" binding:"required" example:"7f9c2ba4-e88f-11ee-a506-0242ac120002"`
	Round            int    `json:"round" binding:"required" example:"1"`
	AnswerIDs        []uint `json:"answer_ids" binding:"required" example:"12"`
	ClientResponseMS int64  `json:"client_response_time_ms" example:"2300"`
}

// CreateBattle godoc
// @Summary      Create a battle
// @Description  Create a battle royale session in Waiting and return its join code
// @Tags         battles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateBattleRequest true "Battle settings"
// @Success      201 {object} StateView
// @Failure      400 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Router       /api/v1/battles [post]
func (h *BattleHandler) CreateBattle(c *gin.Context) {
	var req CreateBattleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "invalid_input"})
		return
	}

	s, err := h.registry.Create(c.Request.Context(), hostID(c), battle.Settings{
		Title:                  req.Title,
		QuizID:                 req.QuizID,
		MaxParticipants:        req.MaxParticipants,
		EliminationRatePercent: req.EliminationRatePercent,
		TimePerQuestionSeconds: req.TimePerQuestionSeconds,
		TotalQuestions:         req.TotalQuestions,
		PrizePool:              req.PrizePool,
	})
	if err != nil {
		abortWithEngineError(c, err)
		return
	}

	c.JSON(http.StatusCreated, s.CurrentState())
}

// ListBattles godoc
// @Summary      List host battles
// @Description  Get the live battles of the authenticated host, newest first
// @Tags         battles
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} Summary
// @Router       /api/v1/battles [get]
func (h *BattleHandler) ListBattles(c *gin.Context) {
	c.JSON(http.StatusOK, h.registry.List(hostID(c)))
}

// GetBattle godoc
// @Summary      Get battle state
// @Description  Current question, remaining time and standings of a battle
// @Tags         battles
// @Produce      json
// @Param        code path string true "Battle code"
// @Success      200 {object} StateView
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/battles/{code} [get]
func (h *BattleHandler) GetBattle(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.CurrentState())
}

// Standings godoc
// @Summary      Battle standings
// @Description  Live ranking while playing, final ranking once completed
// @Tags         battles
// @Produce      json
// @Param        code path string true "Battle code"
// @Success      200 {array} RankedParticipant
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/battles/{code}/standings [get]
func (h *BattleHandler) Standings(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.Standings())
}

// JoinBattle godoc
// @Summary      Join a battle
// @Description  Join a Waiting battle. A bearer token, when sent, links the participant to that account.
// @Tags         battles
// @Accept       json
// @Produce      json
// @Param        code path string true "Battle code"
// @Param        request body JoinBattleRequest true "Player"
// @Success      201 {object} JoinBattleResponse
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /api/v1/battles/{code}/join [post]
func (h *BattleHandler) JoinBattle(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var req JoinBattleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "invalid_input"})
		return
	}

	join := battle.JoinRequest{Pseudo: req.Pseudo, Avatar: req.Avatar}
	if id := hostID(c); id != 0 {
		join.UserID = &id
	}
	p, err := s.Join(join)
	if err != nil {
		abortWithEngineError(c, err)
		return
	}

	c.JSON(http.StatusCreated, JoinBattleResponse{Participant: p, State: s.CurrentState()})
}

// SubmitAnswer godoc
// @Summary      Answer the current round
// @Description  Submit the selected option ids for the open round. Only the first answer counts.
// @Tags         battles
// @Accept       json
// @Produce      json
// @Param        code path string true "Battle code"
// @Param        request body SubmitAnswerRequest true "Answer"
// @Success      202 {object} MessageResponse
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /api/v1/battles/{code}/answer [post]
func (h *BattleHandler) SubmitAnswer(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var req SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "invalid_input"})
		return
	}

	err := s.SubmitAnswer(battle.AnswerRequest{
		ParticipantID:    req.ParticipantID,
		Round:            req.Round,
		AnswerIDs:        req.AnswerIDs,
		ClientResponseMS: req.ClientResponseMS,
	})
	if err != nil {
		abortWithEngineError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, MessageResponse{Message: "answer accepted"})
}

// StartBattle godoc
// @Summary      Start a battle
// @Description  Host-only. Needs at least four participants; opens round 1.
// @Tags         battles
// @Produce      json
// @Security     BearerAuth
// @Param        code path string true "Battle code"
// @Success      200 {object} StateView
// @Failure      403 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /api/v1/battles/{code}/start [post]
func (h *BattleHandler) StartBattle(c *gin.Context) {
	h.hostAction(c, (*battle.Session).Start)
}

// EndRound godoc
// @Summary      End the current round
// @Description  Host-only. Closes the open round now, scoring and eliminating as on timeout.
// @Tags         battles
// @Produce      json
// @Security     BearerAuth
// @Param        code path string true "Battle code"
// @Success      200 {object} StateView
// @Failure      403 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /api/v1/battles/{code}/end-round [post]
func (h *BattleHandler) EndRound(c *gin.Context) {
	h.hostAction(c, (*battle.Session).EndRound)
}

// StopBattle godoc
// @Summary      Stop a battle
// @Description  Host-only. Completes the battle early with the current standings.
// @Tags         battles
// @Produce      json
// @Security     BearerAuth
// @Param        code path string true "Battle code"
// @Success      200 {object} StateView
// @Failure      403 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /api/v1/battles/{code}/stop [post]
func (h *BattleHandler) StopBattle(c *gin.Context) {
	h.hostAction(c, (*battle.Session).Stop)
}

func (h *BattleHandler) hostAction(c *gin.Context, action func(*battle.Session, uint) error) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := action(s, hostID(c)); err != nil {
		abortWithEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.CurrentState())
}

func (h *BattleHandler) session(c *gin.Context) (*battle.Session, bool) {
	s, err := h.registry.Get(c.Param("code"))
	if err != nil {
		abortWithEngineError(c, err)
		return nil, false
	}
	return s, true
}
