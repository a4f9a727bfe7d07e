package events

//go:generate mockgen -source=publisher.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"github.com/blog-cms/internal/models"
)

// Action describes what happened to an article
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// ArticleEvent is emitted after an article write commits
type ArticleEvent struct {
	Action    Action         `json:"action"`
	Article   models.Article `json:"article"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewArticleEvent stamps an event with the current UTC time
func NewArticleEvent(action Action, article models.Article) ArticleEvent {
	return ArticleEvent{Action: action, Article: article, Timestamp: time.Now().UTC()}
}

// Publisher delivers article events to downstream consumers
type Publisher interface {
	Publish(ctx context.Context, event ArticleEvent) error
	Close() error
}

// Noop discards every event. It is used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, ArticleEvent) error { return nil }

func (Noop) Close() error { return nil }
