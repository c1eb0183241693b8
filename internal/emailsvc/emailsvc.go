// Package emailsvc declares the outbound email interface: delivery itself
// is someone else's problem, so the concrete adapter here just hands
// requests to eventsink for an external mailer to pick up, publish and
// move on.
package emailsvc

import (
	"context"
	"time"

	"github.com/transfa/corebank/internal/eventsink"
)

// Service is the outbound email interface the scheduled jobs invoke. All
// sends are asynchronous; failures are logged by the caller and not
// retried by the core.
type Service interface {
	SendStatementNotification(ctx context.Context, email, fullName string, statementDate time.Time, artifact []byte) error
	SendJobFailureAlert(ctx context.Context, subject, message string, details map[string]any) error
	SendCriticalAlert(ctx context.Context, subject, message string, details map[string]any) error
}

const notificationsExchange = "corebank.notifications"

// RabbitMQService implements Service on top of an eventsink.Sink.
type RabbitMQService struct {
	sink eventsink.Sink
}

func NewRabbitMQService(sink eventsink.Sink) *RabbitMQService {
	return &RabbitMQService{sink: sink}
}

type statementNotificationMessage struct {
	Email         string    `json:"email"`
	FullName      string    `json:"full_name"`
	StatementDate time.Time `json:"statement_date"`
	Artifact      []byte    `json:"artifact"`
}

func (s *RabbitMQService) SendStatementNotification(ctx context.Context, email, fullName string, statementDate time.Time, artifact []byte) error {
	return s.sink.Publish(ctx, notificationsExchange, "email.statement", statementNotificationMessage{
		Email:         email,
		FullName:      fullName,
		StatementDate: statementDate,
		Artifact:      artifact,
	})
}

type alertMessage struct {
	Subject string         `json:"subject"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func (s *RabbitMQService) SendJobFailureAlert(ctx context.Context, subject, message string, details map[string]any) error {
	return s.sink.Publish(ctx, notificationsExchange, "email.job_failure", alertMessage{Subject: subject, Message: message, Details: details})
}

func (s *RabbitMQService) SendCriticalAlert(ctx context.Context, subject, message string, details map[string]any) error {
	return s.sink.Publish(ctx, notificationsExchange, "email.critical", alertMessage{Subject: subject, Message: message, Details: details})
}
