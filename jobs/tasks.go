package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeInvoiceEmail is the task type for sending invoice-link emails.
	TaskTypeInvoiceEmail = "invoice:email"
)

// InvoiceEmailPayload carries everything needed to email one signed
// invoice link. The link already embeds the access token, so the worker
// never touches the signing secret.
type InvoiceEmailPayload struct {
	To        string `json:"to"`
	InvoiceNo string `json:"invoice_no"`
	Link      string `json:"link"`
}

// NewInvoiceEmailTask constructs an Asynq task.
func NewInvoiceEmailTask(payload InvoiceEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeInvoiceEmail, data), nil
}

// InvoiceEmailHandler processes TaskTypeInvoiceEmail tasks.
type InvoiceEmailHandler struct {
	mailer Mailer
	logger *slog.Logger
}

// NewInvoiceEmailHandler builds the handler around a mailer.
func NewInvoiceEmailHandler(mailer Mailer, logger *slog.Logger) *InvoiceEmailHandler {
	return &InvoiceEmailHandler{mailer: mailer, logger: logger}
}

// Handle delivers the invoice email. Malformed payloads are never
// retried; transport failures are, under Asynq's default backoff.
func (h *InvoiceEmailHandler) Handle(ctx context.Context, t *asynq.Task) error {
	var payload InvoiceEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	msg := Message{
		To:      payload.To,
		Subject: "Your invoice " + payload.InvoiceNo,
		Body: "Your shipment invoice " + payload.InvoiceNo + " is ready.\r\n\r\n" +
			"View it here:\r\n" + payload.Link + "\r\n\r\n" +
			"The link expires; reply to this email if you need a new one.\r\n",
	}
	if err := h.mailer.Send(ctx, msg); err != nil {
		h.logger.Warn("invoice email failed",
			slog.String("invoice_no", payload.InvoiceNo),
			slog.Any("error", err))
		return err
	}
	h.logger.Info("invoice email sent", slog.String("invoice_no", payload.InvoiceNo))
	return nil
}
