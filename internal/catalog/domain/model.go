package domain

import "time"

// Artist is the public catalog profile of an artist.
type Artist struct {
	ExternalID string    `json:"external_id"`
	Name       string    `json:"name"`
	Images     []Image   `json:"images"`
	Followers  int64     `json:"followers"`
	Popularity int       `json:"popularity"`
	Genres     []string  `json:"genres"`
	URL        string    `json:"url"`
	FetchedAt  time.Time `json:"fetched_at"`
}

type Image struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}
