package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/yildiz-insaat/cms-api/internal/models"
)

const contactColumns = `id, name, email, phone, subject, message, is_read, is_deleted, created_at`

// ContactRepository provides database access for contact messages.
type ContactRepository struct {
	db *sqlx.DB
}

// NewContactRepository creates a new instance of ContactRepository.
func NewContactRepository(db *sqlx.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

// Create inserts a new contact message.
func (r *ContactRepository) Create(ctx context.Context, msg *models.ContactMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO contact_messages (id, name, email, phone, subject, message, is_read, is_deleted, created_at)
		VALUES (:id, :name, :email, :phone, :subject, :message, :is_read, :is_deleted, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, msg); err != nil {
		return fmt.Errorf("create contact message: %w", err)
	}
	return nil
}

// List returns contact messages based on filters with total count.
func (r *ContactRepository) List(ctx context.Context, filter models.ContactFilter) ([]models.ContactMessage, int, error) {
	baseQuery := `FROM contact_messages WHERE is_deleted = FALSE`
	var conditions []string
	var args []interface{}

	if filter.Read != nil {
		conditions = append(conditions, fmt.Sprintf("is_read = $%d", len(args)+1))
		args = append(args, *filter.Read)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(email) LIKE $%d OR LOWER(COALESCE(subject, '')) LIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	sortOrder := strings.ToUpper(filter.SortOrder)
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY created_at %s LIMIT %d OFFSET %d", contactColumns, baseQuery, sortOrder, pageSize, offset)

	var messages []models.ContactMessage
	if err := r.db.SelectContext(ctx, &messages, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list contact messages: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count contact messages: %w", err)
	}

	return messages, total, nil
}

// ListAll returns every non-deleted message, newest first, for exports.
func (r *ContactRepository) ListAll(ctx context.Context) ([]models.ContactMessage, error) {
	query := fmt.Sprintf(`SELECT %s FROM contact_messages WHERE is_deleted = FALSE ORDER BY created_at DESC`, contactColumns)
	var messages []models.ContactMessage
	if err := r.db.SelectContext(ctx, &messages, query); err != nil {
		return nil, fmt.Errorf("list all contact messages: %w", err)
	}
	return messages, nil
}

// FindByID returns a contact message by identifier.
func (r *ContactRepository) FindByID(ctx context.Context, id string) (*models.ContactMessage, error) {
	query := fmt.Sprintf(`SELECT %s FROM contact_messages WHERE id = $1 AND is_deleted = FALSE LIMIT 1`, contactColumns)
	var msg models.ContactMessage
	if err := r.db.GetContext(ctx, &msg, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find contact message: %w", err)
	}
	return &msg, nil
}

// MarkRead sets the read flag.
func (r *ContactRepository) MarkRead(ctx context.Context, id string, read bool) error {
	const query = `UPDATE contact_messages SET is_read = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, read); err != nil {
		return fmt.Errorf("mark contact message read: %w", err)
	}
	return nil
}

// SoftDelete marks a contact message deleted.
func (r *ContactRepository) SoftDelete(ctx context.Context, id string) error {
	const query = `UPDATE contact_messages SET is_deleted = TRUE WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("soft delete contact message: %w", err)
	}
	return nil
}

// Recent returns the newest messages for the dashboard.
func (r *ContactRepository) Recent(ctx context.Context, limit int) ([]models.ContactMessage, error) {
	if limit <= 0 {
		limit = 5
	}
	query := fmt.Sprintf(`SELECT %s FROM contact_messages WHERE is_deleted = FALSE ORDER BY created_at DESC LIMIT %d`, contactColumns, limit)
	var messages []models.ContactMessage
	if err := r.db.SelectContext(ctx, &messages, query); err != nil {
		return nil, fmt.Errorf("recent contact messages: %w", err)
	}
	return messages, nil
}
