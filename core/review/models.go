package review

import (
	"time"

	"github.com/coursecatalog/backend/core"
)

type Review struct {
	ID        int       `db:"id" json:"id"`
	Rating    int       `db:"rating" json:"rating"`
	Text      string    `db:"text" json:"text"`
	CourseID  int       `db:"course_id" json:"course_id"`
	UserID    int       `db:"user_id" json:"user_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"` // UTC

	// joined
	UserFullName string `db:"user_full_name" json:"user_full_name"`
}

// NewReview contains what a User submits for a Course.
type NewReview struct {
	Rating int    `form:"rating" validate:"required,min=1,max=5"`
	Text   string `form:"text" validate:"required,notblank"`
}

func (nr *NewReview) Clean() {
	nr.Text = core.CleanString(nr.Text)
}

// SortMode orders a review listing.
type SortMode string

const (
	SortNewest   SortMode = "newest"
	SortPositive SortMode = "positive"
	SortNegative SortMode = "negative"
)

// ParseSortMode falls back to SortNewest for unknown values.
func ParseSortMode(s string) SortMode {
	switch m := SortMode(s); m {
	case SortPositive, SortNegative:
		return m
	default:
		return SortNewest
	}
}

// Ordering is the storage ordering of the mode; ties are broken by newest first.
func (m SortMode) Ordering() []core.DBOrdering {
	newest := []core.DBOrdering{
		{Field: "created_at", Ascending: false},
		{Field: "id", Ascending: false},
	}
	switch m {
	case SortPositive:
		return append([]core.DBOrdering{{Field: "rating", Ascending: false}}, newest...)
	case SortNegative:
		return append([]core.DBOrdering{{Field: "rating", Ascending: true}}, newest...)
	default:
		return newest
	}
}
