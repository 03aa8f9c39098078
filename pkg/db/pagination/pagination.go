package pagination

import (
	"encoding/base64"
	"encoding/json"
	"time"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 250
)

// Pagination is the query-string shape of a keyset page request.
type Pagination struct {
	PageToken string `form:"page_token"`
	PageSize  int    `form:"page_size,default=10"`
}

// Cursor marks the last row of a page. Rows are ordered by created_at desc, id desc.
type Cursor struct {
	ID        string `json:"id,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

type PageInfo struct {
	NextPageToken string `json:"next_page_token"`
	HasMore       bool   `json:"has_more"`
}

func NewCursor(id string, createdAt time.Time) Cursor {
	return Cursor{ID: id, CreatedAt: createdAt.UTC().Format(time.RFC3339Nano)}
}

func (c Cursor) CreatedAtTime() (time.Time, error) {
	return time.Parse(time.RFC3339Nano, c.CreatedAt)
}

func EncodeCursor(c Cursor) (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

func DecodeCursor(token string) (*Cursor, error) {
	b, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return nil, err
	}
	var c Cursor
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Trim takes rows fetched with one lookahead row, cuts them to size and
// returns the page info for the following request. Nil rows are skipped.
func Trim[T any](rows []*T, size int, cursorOf func(*T) Cursor) ([]T, PageInfo) {
	if size <= 0 {
		size = DefaultPageSize
	}
	size = min(size, MaxPageSize)

	var info PageInfo
	if len(rows) > size {
		rows = rows[:size]
		info.HasMore = true
	}

	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if row != nil {
			out = append(out, *row)
		}
	}

	if info.HasMore && len(rows) > 0 {
		if token, err := EncodeCursor(cursorOf(rows[len(rows)-1])); err == nil {
			info.NextPageToken = token
		}
	}
	return out, info
}
