package notification

import (
	"context"
	"fmt"
	"time"

	"drop-auction/internal/biddingerrors"
	"drop-auction/internal/models"
	"drop-auction/internal/repository"
	"drop-auction/utils"
)

// InvoiceService sends invoices to their users exactly once
type InvoiceService struct {
	invoices repository.InvoiceStore
	notifier Notifier
	siteURL  string
	now      func() time.Time
}

// NewInvoiceService creates an InvoiceService. An empty siteURL uses DefaultSiteURL.
func NewInvoiceService(invoices repository.InvoiceStore, notifier Notifier, siteURL string) *InvoiceService {
	if siteURL == "" {
		siteURL = DefaultSiteURL
	}
	return &InvoiceService{
		invoices: invoices,
		notifier: notifier,
		siteURL:  siteURL,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateInvoice stores a pending invoice for userID and sends it
func (s *InvoiceService) CreateInvoice(ctx context.Context, userID string, lines []models.InvoiceLine) (models.Invoice, error) {
	if userID == "" || len(lines) == 0 {
		return models.Invoice{}, fmt.Errorf("invoice: %w - missing user or items", biddingerrors.ErrInvalidInvoice)
	}

	invoice := models.Invoice{
		InvoiceID: utils.GenerateID(),
		UserID:    userID,
		Items:     lines,
		Status:    models.InvoiceStatusPending,
		CreatedAt: s.now(),
	}
	if err := s.invoices.CreateInvoice(ctx, invoice); err != nil {
		utils.Error("failed to store invoice", map[string]any{"entity": "invoice", "invoice_id": invoice.InvoiceID, "user_id": userID, "error": err.Error()})
		return models.Invoice{}, fmt.Errorf("invoice: failed to store invoice for user %s: %w", userID, err)
	}

	return s.ProcessInvoice(ctx, invoice.InvoiceID)
}

// ProcessInvoice emails a pending invoice and marks it sent. Sent invoices are left alone.
func (s *InvoiceService) ProcessInvoice(ctx context.Context, invoiceID string) (models.Invoice, error) {
	invoice, err := s.invoices.GetInvoice(ctx, invoiceID)
	if err != nil {
		utils.Error("failed to load invoice", map[string]any{"entity": "invoice", "invoice_id": invoiceID, "error": err.Error()})
		return models.Invoice{}, fmt.Errorf("invoice: failed to load %s: %w", invoiceID, err)
	}
	if invoice.Status == models.InvoiceStatusSent {
		utils.Info("invoice already sent", map[string]any{"entity": "invoice", "invoice_id": invoiceID})
		return invoice, nil
	}

	names := make([]string, 0, len(invoice.Items))
	for _, line := range invoice.Items {
		names = append(names, line.Name)
	}

	if err := s.notifier.Notify(ctx, invoice.UserID, SubjectInvoice, InvoiceBody(s.siteURL, names)); err != nil {
		return models.Invoice{}, fmt.Errorf("invoice: failed to send %s: %w", invoiceID, err)
	}

	sentAt := s.now()
	if err := s.invoices.MarkInvoiceSent(ctx, invoiceID, sentAt); err != nil {
		utils.Error("failed to mark invoice sent", map[string]any{"entity": "invoice", "invoice_id": invoiceID, "error": err.Error()})
		return models.Invoice{}, fmt.Errorf("invoice: failed to mark %s sent: %w", invoiceID, err)
	}

	invoice.Status = models.InvoiceStatusSent
	invoice.SentAt = sentAt
	utils.Info("invoice sent", map[string]any{"entity": "invoice", "invoice_id": invoiceID, "user_id": invoice.UserID})
	return invoice, nil
}
