//go:build integration

package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/blog-cms/internal/models"
)

type RabbitMQIntegrationSuite struct {
	suite.Suite
	ctx       context.Context
	container *rabbitmq.RabbitMQContainer
	amqpURL   string
}

func (s *RabbitMQIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()

	container, err := rabbitmq.Run(s.ctx,
		"rabbitmq:3.13-management-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Server startup complete").
				WithStartupTimeout(60*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	amqpURL, err := container.AmqpURL(s.ctx)
	s.Require().NoError(err)
	s.amqpURL = amqpURL
}

func (s *RabbitMQIntegrationSuite) TearDownSuite() {
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func TestRabbitMQIntegrationSuite(t *testing.T) {
	suite.Run(t, new(RabbitMQIntegrationSuite))
}

func (s *RabbitMQIntegrationSuite) TestPublishArticleEvent() {
	cfg := RabbitMQConfig{
		URL:        s.amqpURL,
		Exchange:   "blog-test",
		RoutingKey: "articles",
		QueueName:  "blog-test-articles",
	}

	pub, err := NewRabbitMQ(cfg, zerolog.Nop())
	s.Require().NoError(err)
	defer pub.Close()

	article := models.Article{ID: 7, CategoryID: 1, Title: "A", Introduction: "i", Text: "t", PubDate: time.Now().UTC()}
	s.Require().NoError(pub.Publish(s.ctx, NewArticleEvent(ActionCreate, article)))

	conn, err := amqp.Dial(s.amqpURL)
	s.Require().NoError(err)
	defer conn.Close()
	ch, err := conn.Channel()
	s.Require().NoError(err)
	defer ch.Close()

	var msg amqp.Delivery
	var ok bool
	for i := 0; i < 20 && !ok; i++ {
		msg, ok, err = ch.Get(cfg.QueueName, true)
		s.Require().NoError(err)
		if !ok {
			time.Sleep(100 * time.Millisecond)
		}
	}
	s.Require().True(ok, "message not delivered")

	var received ArticleEvent
	s.Require().NoError(json.Unmarshal(msg.Body, &received))
	s.Equal(ActionCreate, received.Action)
	s.Equal(int64(7), received.Article.ID)
	s.Equal("A", received.Article.Title)
}
