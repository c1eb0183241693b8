package emailsvc

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubSink struct {
	exchange   string
	routingKey string
	body       any
	err        error
	closed     bool
}

func (s *stubSink) Publish(ctx context.Context, exchange, routingKey string, body any) error {
	s.exchange = exchange
	s.routingKey = routingKey
	s.body = body
	return s.err
}

func (s *stubSink) Close() { s.closed = true }

func TestSendStatementNotificationPublishesToStatementRoutingKey(t *testing.T) {
	sink := &stubSink{}
	svc := NewRabbitMQService(sink)

	err := svc.SendStatementNotification(context.Background(), "ada@example.com", "Ada Lovelace", time.Now(), []byte("statement"))
	if err != nil {
		t.Fatalf("SendStatementNotification() error = %v", err)
	}
	if sink.exchange != notificationsExchange || sink.routingKey != "email.statement" {
		t.Fatalf("exchange/routingKey = %q/%q", sink.exchange, sink.routingKey)
	}
	msg, ok := sink.body.(statementNotificationMessage)
	if !ok || msg.Email != "ada@example.com" {
		t.Fatalf("unexpected message body: %+v", sink.body)
	}
}

func TestSendJobFailureAlertPublishesToJobFailureRoutingKey(t *testing.T) {
	sink := &stubSink{}
	svc := NewRabbitMQService(sink)

	err := svc.SendJobFailureAlert(context.Background(), "monthly interest failed", "3 accounts failed", map[string]any{"count": 3})
	if err != nil {
		t.Fatalf("SendJobFailureAlert() error = %v", err)
	}
	if sink.routingKey != "email.job_failure" {
		t.Fatalf("routingKey = %q, want email.job_failure", sink.routingKey)
	}
	msg, ok := sink.body.(alertMessage)
	if !ok || msg.Subject != "monthly interest failed" {
		t.Fatalf("unexpected message body: %+v", sink.body)
	}
}

func TestSendCriticalAlertPropagatesSinkError(t *testing.T) {
	sink := &stubSink{err: errors.New("broker unreachable")}
	svc := NewRabbitMQService(sink)

	err := svc.SendCriticalAlert(context.Background(), "outbox stalled", "relay has not flushed in 10 minutes", nil)
	if err == nil {
		t.Fatal("expected the sink error to propagate")
	}
}
