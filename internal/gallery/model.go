package gallery

import (
	"encoding/json"
	"errors"
)

// ImageRef points at a stored image on the remote API.
type ImageRef struct {
	URL string `json:"url"`
}

// Entry is one before/after image pair as served by the collection endpoint.
type Entry struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	BeforeImage *ImageRef `json:"beforeImage,omitempty"`
	AfterImage  *ImageRef `json:"afterImage,omitempty"`
	Likes       *int      `json:"likes,omitempty"`
}

// UnmarshalJSON accepts both "_id" and "id" as the identifier key.
func (e *Entry) UnmarshalJSON(data []byte) error {
	type plain Entry
	var aux struct {
		plain
		AltID string `json:"id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*e = Entry(aux.plain)
	if e.ID == "" {
		e.ID = aux.AltID
	}
	return nil
}

// Displayable reports whether both images are present.
func (e Entry) Displayable() bool {
	return e.BeforeImage != nil && e.AfterImage != nil
}

// LikeCount returns the like counter, 0 when absent.
func (e Entry) LikeCount() int {
	if e.Likes == nil || *e.Likes < 0 {
		return 0
	}
	return *e.Likes
}

// ViewStats holds the aggregate view counters.
type ViewStats struct {
	TotalUniqueVisitors int64 `json:"totalUniqueVisitors"`
	TotalViews          int64 `json:"totalViews"`
}

var errMissingCounter = errors.New("stats response is missing a counter")

// UnmarshalJSON requires both counters to be present.
func (s *ViewStats) UnmarshalJSON(data []byte) error {
	var aux struct {
		TotalUniqueVisitors *int64 `json:"totalUniqueVisitors"`
		TotalViews          *int64 `json:"totalViews"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.TotalUniqueVisitors == nil || aux.TotalViews == nil {
		return errMissingCounter
	}
	s.TotalUniqueVisitors = *aux.TotalUniqueVisitors
	s.TotalViews = *aux.TotalViews
	return nil
}
