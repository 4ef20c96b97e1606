package jobs

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubMailer struct {
	sent []Message
	err  error
}

func (m *stubMailer) Send(ctx context.Context, msg Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func TestInvoiceEmailHandlerSends(t *testing.T) {
	mailer := &stubMailer{}
	handler := NewInvoiceEmailHandler(mailer, slog.Default())

	task, err := NewInvoiceEmailTask(InvoiceEmailPayload{
		To:        "amal@example.com",
		InvoiceNo: "INV-2026-00001",
		Link:      "https://ship.example.com/invoices/view?invoice=INV-2026-00001&token=abc",
	})
	require.NoError(t, err)

	require.NoError(t, handler.Handle(context.Background(), task))
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "amal@example.com", mailer.sent[0].To)
	assert.Contains(t, mailer.sent[0].Subject, "INV-2026-00001")
	assert.Contains(t, mailer.sent[0].Body, "token=abc")
}

func TestInvoiceEmailHandlerSkipsMalformedPayload(t *testing.T) {
	handler := NewInvoiceEmailHandler(&stubMailer{}, slog.Default())
	task := asynq.NewTask(TaskTypeInvoiceEmail, []byte("not json"))
	assert.ErrorIs(t, handler.Handle(context.Background(), task), asynq.SkipRetry)
}

func TestInvoiceEmailHandlerRetriesTransportErrors(t *testing.T) {
	mailer := &stubMailer{err: errors.New("connection refused")}
	handler := NewInvoiceEmailHandler(mailer, slog.Default())

	task, err := NewInvoiceEmailTask(InvoiceEmailPayload{To: "amal@example.com", InvoiceNo: "INV-2026-00002"})
	require.NoError(t, err)

	got := handler.Handle(context.Background(), task)
	require.Error(t, got)
	assert.NotErrorIs(t, got, asynq.SkipRetry)
}
