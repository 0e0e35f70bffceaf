package utils

import (
	"encoding/base64"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/minatogawa/project-board-api/internal/constants"
)

// PaginationParams holds the pagination parameters
type PaginationParams struct {
	Limit  int
	Offset int
}

// PaginationResponse represents the pagination metadata in API responses.
// NextCursor is empty when there are no further results.
type PaginationResponse struct {
	Limit      int    `json:"limit"`
	Total      int64  `json:"total"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// EncodeCursor produces an opaque continuation token for the given offset.
func EncodeCursor(offset int) string {
	return base64.URLEncoding.EncodeToString([]byte(strconv.Itoa(offset)))
}

// DecodeCursor parses a continuation token back into an offset.
func DecodeCursor(cursor string) (int, error) {
	raw, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return 0, fmt.Errorf("malformed cursor: %w", err)
	}
	offset, err := strconv.Atoi(string(raw))
	if err != nil || offset < 0 {
		return 0, fmt.Errorf("malformed cursor payload")
	}
	return offset, nil
}

// GetPaginationParams extracts and validates pagination parameters from the
// request. An invalid cursor is treated as the start of the collection.
func GetPaginationParams(c *gin.Context) PaginationParams {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(constants.DefaultPageSize)))
	if limit < constants.MinPageSize || limit > constants.MaxPageSize {
		limit = constants.DefaultPageSize
	}

	offset := 0
	if cursor := c.Query("cursor"); cursor != "" {
		if decoded, err := DecodeCursor(cursor); err == nil {
			offset = decoded
		}
	}

	return PaginationParams{
		Limit:  limit,
		Offset: offset,
	}
}

// NextCursor returns the continuation token for the page after params, or
// empty when the page reached the end of the collection.
func NextCursor(params PaginationParams, total int64) string {
	next := params.Offset + params.Limit
	if int64(next) >= total {
		return ""
	}
	return EncodeCursor(next)
}
