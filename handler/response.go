package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/silicus-edu/ta-backend/types"
)

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data:   data,
	})
}

// respondError maps domain errors to HTTP statuses and emits the standard
// error envelope.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	var embedErr *types.EmbeddingError
	var genErr *types.GenerationError
	var commitErr *types.RemoteCommitError

	switch {
	case errors.Is(err, types.ErrStoreNotFound), errors.Is(err, types.ErrFileNotFound):
		status = http.StatusNotFound
	case errors.Is(err, types.ErrSlugConflict):
		status = http.StatusConflict
	case errors.Is(err, types.ErrQuotaExceeded):
		status = http.StatusRequestEntityTooLarge
	case errors.As(err, &embedErr), errors.As(err, &genErr):
		status = http.StatusBadGateway
	case errors.As(err, &commitErr):
		// Local state is committed; only the remote mirror failed.
		status = http.StatusBadGateway
	}

	c.JSON(status, types.DataResponse{
		Status:  "error",
		Message: err.Error(),
	})
}
