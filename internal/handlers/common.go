package handlers

import (
	"net/http"

	"battle-royale-backend/internal/battle"
	"battle-royale-backend/internal/middleware"
	"battle-royale-backend/internal/models"

	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Error string `json:"error" example:"something went wrong"`
	Code  string `json:"code,omitempty" example:"round_closed"`
}

type MessageResponse struct {
	Message string `json:"message" example:"operation successful"`
}

// Type aliases so swag can resolve models in annotations.
type Quiz = models.Quiz
type StateView = battle.StateView
type Summary = battle.Summary
type RankedParticipant = battle.RankedParticipant
type Participant = battle.Participant

func statusOf(kind battle.Kind) int {
	switch kind {
	case battle.KindValidation:
		return http.StatusBadRequest
	case battle.KindStateConflict, battle.KindResourceExhausted:
		return http.StatusConflict
	case battle.KindUpstream:
		return http.StatusBadGateway
	case battle.KindNotFound:
		return http.StatusNotFound
	case battle.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// abortWithEngineError answers with the status and reason code of an engine error.
func abortWithEngineError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(statusOf(battle.KindOf(err)), ErrorResponse{Error: err.Error(), Code: battle.CodeOf(err)})
}

func hostID(c *gin.Context) uint {
	return c.GetUint(middleware.HostIDKey)
}
