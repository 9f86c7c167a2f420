package handlers

import (
	"errors"
	"net/http"

	"battle-royale-backend/internal/battle"
	"battle-royale-backend/internal/models"
	"battle-royale-backend/internal/services"

	"github.com/gin-gonic/gin"
)

// HostAccounts is the account store behind the host endpoints.
type HostAccounts interface {
	Register(username, password string) (services.HostToken, error)
	Login(username, password string) (services.HostToken, error)
	Host(id uint) (models.Host, error)
}

// HostHandler signs battle hosts in and shows them the battles they run.
type HostHandler struct {
	accounts HostAccounts
	registry *battle.Registry
}

func NewHostHandler(accounts HostAccounts, registry *battle.Registry) *HostHandler {
	return &HostHandler{accounts: accounts, registry: registry}
}

type HostCredentials struct {
	Username string `json:"username" binding:"required" example:"host1"`
	Password string `json:"password" binding:"required" example:"password123"`
}

type HostToken = services.HostToken

type HostProfile struct {
	HostID   uint      `json:"host_id" example:"1"`
	Username string    `json:"username" example:"host1"`
	Battles  []Summary `json:"battles"`
}

// Register godoc
// @Summary      Register a host
// @Description  Open a host account. The returned token creates and runs battles.
// @Tags         hosts
// @Accept       json
// @Produce      json
// @Param        request body HostCredentials true "Username (3..100) and password (6+)"
// @Success      201 {object} HostToken
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /api/v1/auth/register [post]
func (h *HostHandler) Register(c *gin.Context) {
	creds, ok := bindCredentials(c)
	if !ok {
		return
	}
	tok, err := h.accounts.Register(creds.Username, creds.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "invalid_input"})
		return
	}
	if err != nil {
		abortWithHostError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tok)
}

// Login godoc
// @Summary      Sign a host in
// @Tags         hosts
// @Accept       json
// @Produce      json
// @Param        request body HostCredentials true "Credentials"
// @Success      200 {object} HostToken
// @Failure      401 {object} ErrorResponse
// @Router       /api/v1/auth/login [post]
func (h *HostHandler) Login(c *gin.Context) {
	creds, ok := bindCredentials(c)
	if !ok {
		return
	}
	tok, err := h.accounts.Login(creds.Username, creds.Password)
	if err != nil {
		abortWithHostError(c, err)
		return
	}
	c.JSON(http.StatusOK, tok)
}

// Me godoc
// @Summary      Current host
// @Description  The signed in host and the live battles they run, newest first
// @Tags         hosts
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} HostProfile
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/auth/me [get]
func (h *HostHandler) Me(c *gin.Context) {
	host, err := h.accounts.Host(hostID(c))
	if err != nil {
		abortWithHostError(c, err)
		return
	}
	c.JSON(http.StatusOK, HostProfile{
		HostID:   host.ID,
		Username: host.Username,
		Battles:  h.registry.List(host.ID),
	})
}

func bindCredentials(c *gin.Context) (HostCredentials, bool) {
	var creds HostCredentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "invalid_input"})
		return creds, false
	}
	return creds, true
}

func abortWithHostError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "internal_error"
	switch {
	case errors.Is(err, services.ErrUsernameTaken):
		status, code = http.StatusConflict, "username_taken"
	case errors.Is(err, services.ErrInvalidCredentials):
		status, code = http.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, services.ErrHostNotFound):
		status, code = http.StatusNotFound, "host_not_found"
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: err.Error(), Code: code})
}
