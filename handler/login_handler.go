package handler

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/silicus-edu/ta-backend/types"
	"github.com/silicus-edu/ta-backend/utils"
)

// LoginHandler authenticates the single instructor credential and issues the
// admin token. Failed attempts back off exponentially via the limiter.
type LoginHandler struct {
	password string
	limiter  *utils.LoginLimiter
}

func NewLoginHandler(password string) *LoginHandler {
	return &LoginHandler{
		password: password,
		limiter:  utils.NewLoginLimiter(),
	}
}

func (h *LoginHandler) HandleLogin(c *gin.Context) {
	var req types.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "Invalid request body",
		})
		return
	}

	if ok, wait := h.limiter.Allow(); !ok {
		c.JSON(http.StatusTooManyRequests, types.DataResponse{
			Status:  "error",
			Message: fmt.Sprintf("Too many attempts, retry in %s", wait.Round(time.Second)),
		})
		return
	}

	if h.password == "" || subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.password)) != 1 {
		h.limiter.Failure()
		c.JSON(http.StatusUnauthorized, types.DataResponse{
			Status:  "error",
			Message: "Invalid password",
		})
		return
	}

	h.limiter.Success()
	token, err := utils.GenerateAdminToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}
	respondOK(c, types.LoginResponse{AccessToken: token})
}
