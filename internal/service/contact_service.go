package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yildiz-insaat/cms-api/internal/models"
	appErrors "github.com/yildiz-insaat/cms-api/pkg/errors"
	"github.com/yildiz-insaat/cms-api/pkg/export"
	"github.com/yildiz-insaat/cms-api/pkg/jobs"
)

// JobTypeContactNotification marks contact notification email jobs.
const JobTypeContactNotification = "contact_notification"

type contactRepository interface {
	Create(ctx context.Context, msg *models.ContactMessage) error
	List(ctx context.Context, filter models.ContactFilter) ([]models.ContactMessage, int, error)
	ListAll(ctx context.Context) ([]models.ContactMessage, error)
	FindByID(ctx context.Context, id string) (*models.ContactMessage, error)
	MarkRead(ctx context.Context, id string, read bool) error
	SoftDelete(ctx context.Context, id string) error
}

type JobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// SubmitContactRequest is the public contact form payload.
type SubmitContactRequest struct {
	Name    string  `json:"name" validate:"required,max=100"`
	Email   string  `json:"email" validate:"required,email"`
	Phone   *string `json:"phone" validate:"omitempty,max=30"`
	Subject *string `json:"subject" validate:"omitempty,max=200"`
	Message string  `json:"message" validate:"required,max=5000"`
}

// ContactService handles public submissions and admin inbox operations.
type ContactService struct {
	repo      contactRepository
	queue     JobEnqueuer
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewContactService constructs a ContactService. queue may be nil when email
// notifications are disabled.
func NewContactService(repo contactRepository, queue JobEnqueuer, validate *validator.Validate, logger *zap.Logger) *ContactService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContactService{
		repo:      repo,
		queue:     queue,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		validator: validate,
		logger:    logger,
	}
}

// Submit stores a contact form message and queues the admin notification.
func (s *ContactService) Submit(ctx context.Context, req SubmitContactRequest) (*models.ContactMessage, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, appErrors.ErrValidation.Message)
	}

	msg := &models.ContactMessage{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:   normalizeOptional(req.Phone),
		Subject: normalizeOptional(req.Subject),
		Message: strings.TrimSpace(req.Message),
	}

	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save message")
	}

	if s.queue != nil {
		job := jobs.Job{
			ID:      uuid.NewString(),
			Type:    JobTypeContactNotification,
			Payload: *msg,
		}
		if err := s.queue.Enqueue(job); err != nil {
			s.logger.Warn("failed to queue contact notification", zap.String("message_id", msg.ID), zap.Error(err))
		}
	}

	return msg, nil
}

// List returns messages for the admin inbox.
func (s *ContactService) List(ctx context.Context, filter models.ContactFilter) ([]models.ContactMessage, *models.Pagination, error) {
	messages, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list messages")
	}
	return messages, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns a single message and marks it read on first open.
func (s *ContactService) Get(ctx context.Context, id string) (*models.ContactMessage, error) {
	msg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "message not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load message")
	}
	if !msg.IsRead {
		if err := s.repo.MarkRead(ctx, id, true); err != nil {
			s.logger.Warn("failed to mark message read", zap.String("message_id", id), zap.Error(err))
		} else {
			msg.IsRead = true
		}
	}
	return msg, nil
}

// MarkRead sets the read flag explicitly.
func (s *ContactService) MarkRead(ctx context.Context, id string, read bool) (*models.ContactMessage, error) {
	msg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "message not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load message")
	}
	if err := s.repo.MarkRead(ctx, id, read); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update message")
	}
	msg.IsRead = read
	return msg, nil
}

// Delete soft-deletes a message from the inbox.
func (s *ContactService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "message not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load message")
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete message")
	}
	return nil
}

// Export renders the whole inbox as csv or pdf. Returns content bytes plus
// the matching MIME type.
func (s *ContactService) Export(ctx context.Context, format string) ([]byte, string, error) {
	messages, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load messages")
	}

	dataset := contactDataset(messages)
	switch strings.ToLower(format) {
	case "csv", "":
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return content, "text/csv", nil
	case "pdf":
		content, err := s.pdf.Render(dataset, "İletişim Mesajları")
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return content, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format: %s", format))
	}
}

func contactDataset(messages []models.ContactMessage) export.Dataset {
	headers := []string{"Date", "Name", "Email", "Phone", "Subject", "Message", "Read"}
	rows := make([]map[string]string, 0, len(messages))
	for _, msg := range messages {
		read := "no"
		if msg.IsRead {
			read = "yes"
		}
		rows = append(rows, map[string]string{
			"Date":    msg.CreatedAt.Format("2006-01-02 15:04"),
			"Name":    msg.Name,
			"Email":   msg.Email,
			"Phone":   stringOrEmpty(msg.Phone),
			"Subject": stringOrEmpty(msg.Subject),
			"Message": msg.Message,
			"Read":    read,
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func stringOrEmpty(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
