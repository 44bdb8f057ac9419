package course

import (
	"strconv"
	"time"

	"github.com/coursecatalog/backend/core"
)

type Course struct {
	ID                int       `db:"id" json:"id"`
	Name              string    `db:"name" json:"name"`
	ShortDesc         string    `db:"short_desc" json:"short_desc"`
	FullDesc          string    `db:"full_desc" json:"full_desc"`
	RatingSum         int       `db:"rating_sum" json:"rating_sum"`
	RatingNum         int       `db:"rating_num" json:"rating_num"`
	CategoryID        int       `db:"category_id" json:"category_id"`
	AuthorID          int       `db:"author_id" json:"author_id"`
	BackgroundImageID *string   `db:"background_image_id" json:"background_image_id"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"` // UTC

	// joined
	CategoryName string `db:"category_name" json:"category_name"`
	AuthorName   string `db:"author_name" json:"author_name"`
}

// Rating is the average review rating, 0 for a course nobody reviewed.
func (c Course) Rating() float64 {
	if c.RatingNum <= 0 {
		return 0
	}
	return float64(c.RatingSum) / float64(c.RatingNum)
}

// BackgroundImageURL is empty when the course has no background image.
func (c Course) BackgroundImageURL() string {
	if c.BackgroundImageID == nil {
		return ""
	}
	return "/images/" + *c.BackgroundImageID
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	AuthorID   int    `form:"author_id" validate:"required,gt=0"`
	Name       string `form:"name" validate:"required,notblank,max=100"`
	CategoryID int    `form:"category_id" validate:"required,gt=0"`
	ShortDesc  string `form:"short_desc" validate:"required,notblank"`
	FullDesc   string `form:"full_desc" validate:"required,notblank"`
}

func (nc *NewCourse) Clean() {
	nc.Name = core.CleanString(nc.Name)
	nc.ShortDesc = core.CleanString(nc.ShortDesc)
	nc.FullDesc = core.CleanString(nc.FullDesc)
}

// QueryFilter applies AND on its set fields.
// Name does a case-insensitive substring match on Course.Name.
type QueryFilter struct {
	Name        string   `query:"name"`
	CategoryIDs []string `query:"category_ids"`
}

func (qf *QueryFilter) Clean() {
	qf.Name = core.CleanString(qf.Name)
	ids := qf.CategoryIDs[:0]
	for _, id := range qf.CategoryIDs {
		if id = core.CleanString(id); id != "" {
			ids = append(ids, id)
		}
	}
	qf.CategoryIDs = ids
}

// Categories returns the numeric category ids, skipping the others.
func (qf QueryFilter) Categories() []int {
	ids := make([]int, 0, len(qf.CategoryIDs))
	for _, s := range qf.CategoryIDs {
		if id, err := strconv.Atoi(s); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// HasCategory is used by templates to keep the filter form checked.
func (qf QueryFilter) HasCategory(id int) bool {
	for _, c := range qf.Categories() {
		if c == id {
			return true
		}
	}
	return false
}

func (qf QueryFilter) IsEmpty() bool {
	return qf.Name == "" && len(qf.CategoryIDs) == 0
}
