package models

import (
	"time"
)

// Article is a single blog or news post belonging to one category
type Article struct {
	ID           int64     `json:"id" db:"id"`
	CategoryID   int64     `json:"category_id" db:"category_id"`
	CategoryName string    `json:"category_name,omitempty" db:"category_name"` // joined, not stored
	Title        string    `json:"title" db:"title"`
	Introduction string    `json:"introduction" db:"introduction"`
	Text         string    `json:"text" db:"text"`
	PubDate      time.Time `json:"pub_date" db:"pub_date"`
}

// Column limits for article fields
const (
	MaxArticleTitleLen        = 50
	MaxArticleIntroductionLen = 100
)

// LatestArticlesLimit is how many articles the index page shows
const LatestArticlesLimit = 3

// ArticleInput carries the user-editable article fields
type ArticleInput struct {
	CategoryID   int64
	Title        string
	Introduction string
	Text         string
}

// Apply overwrites the editable fields of a. PubDate is left untouched.
func (in ArticleInput) Apply(a *Article) {
	a.CategoryID = in.CategoryID
	a.Title = in.Title
	a.Introduction = in.Introduction
	a.Text = in.Text
}
