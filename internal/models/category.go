package models

// Category is a named grouping of articles
type Category struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// MaxCategoryNameLen is the column limit for category names
const MaxCategoryNameLen = 20

// Category names the public site filters on
const (
	CategoryBlog = "Блог"
	CategoryNews = "Новости"
)

// DefaultCategories are created by the seed command
var DefaultCategories = []string{CategoryBlog, CategoryNews}

// CategoryWithArticles is a category together with the titles of the
// articles that reference it
type CategoryWithArticles struct {
	Category
	Articles []ArticleRef `json:"articles"`
}

// ArticleRef is a lightweight pointer to an article
type ArticleRef struct {
	ID    int64  `json:"id" db:"id"`
	Title string `json:"title" db:"title"`
}
