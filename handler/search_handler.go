package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/silicus-edu/ta-backend/service"
	"github.com/silicus-edu/ta-backend/types"
)

// SearchHandler exposes raw page retrieval, the same ranking the chat answer
// is grounded on but without generation.
type SearchHandler struct {
	chatService *service.ChatService
}

func NewSearchHandler(chatService *service.ChatService) *SearchHandler {
	return &SearchHandler{
		chatService: chatService,
	}
}

func (h *SearchHandler) HandleSearch(c *gin.Context) {
	course := c.Query("course")
	query := c.Query("query")
	if course == "" || query == "" {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "course and query parameters are required",
		})
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	results, err := h.chatService.Search(c.Request.Context(), course, query, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, types.SearchResponse{Results: results})
}
