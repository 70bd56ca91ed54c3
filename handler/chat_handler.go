package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/silicus-edu/ta-backend/service"
	"github.com/silicus-edu/ta-backend/types"
)

type ChatHandler struct {
	chatService *service.ChatService
}

func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

func (h *ChatHandler) HandleChat(c *gin.Context) {
	var req types.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "Invalid request body",
		})
		return
	}
	if req.Course == "" || len(req.Messages) == 0 {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "course and messages are required",
		})
		return
	}

	answer, err := h.chatService.Ask(c.Request.Context(), req.Course, req.Messages)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, answer)
}

// HandleSuggestions returns starter questions for an empty chat.
func (h *ChatHandler) HandleSuggestions(c *gin.Context) {
	course := c.Query("course")
	if course == "" {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "course parameter is required",
		})
		return
	}
	respondOK(c, h.chatService.SuggestedQuestions(course))
}
