package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/royalti/pkg/db/pagination"
)

func parseSnowflakeID(value string) (snowflake.ID, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || parsed <= 0 {
		return 0, ErrNotFound
	}
	return parsed, nil
}

// pageSize clamps the requested page size to the pagination bounds.
func pageSize(p pagination.Pagination) int32 {
	switch {
	case p.PageSize <= 0:
		return pagination.DefaultPageSize
	case p.PageSize > pagination.MaxPageSize:
		return pagination.MaxPageSize
	default:
		return int32(p.PageSize)
	}
}
