package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yildiz-insaat/cms-api/internal/models"
	appErrors "github.com/yildiz-insaat/cms-api/pkg/errors"
	"github.com/yildiz-insaat/cms-api/pkg/jobs"
)

type mockContactRepo struct {
	messages    map[string]*models.ContactMessage
	markedRead  []string
	createCalls int
}

func newMockContactRepo(messages ...*models.ContactMessage) *mockContactRepo {
	repo := &mockContactRepo{messages: make(map[string]*models.ContactMessage)}
	for _, msg := range messages {
		repo.messages[msg.ID] = msg
	}
	return repo
}

func (m *mockContactRepo) Create(ctx context.Context, msg *models.ContactMessage) error {
	m.createCalls++
	msg.ID = "msg-new"
	msg.CreatedAt = time.Now()
	m.messages[msg.ID] = msg
	return nil
}

func (m *mockContactRepo) List(ctx context.Context, filter models.ContactFilter) ([]models.ContactMessage, int, error) {
	all, err := m.ListAll(ctx)
	return all, len(all), err
}

func (m *mockContactRepo) ListAll(ctx context.Context) ([]models.ContactMessage, error) {
	var out []models.ContactMessage
	for _, msg := range m.messages {
		if !msg.IsDeleted {
			out = append(out, *msg)
		}
	}
	return out, nil
}

func (m *mockContactRepo) FindByID(ctx context.Context, id string) (*models.ContactMessage, error) {
	msg, ok := m.messages[id]
	if !ok || msg.IsDeleted {
		return nil, sql.ErrNoRows
	}
	cp := *msg
	return &cp, nil
}

func (m *mockContactRepo) MarkRead(ctx context.Context, id string, read bool) error {
	if msg, ok := m.messages[id]; ok {
		msg.IsRead = read
		if read {
			m.markedRead = append(m.markedRead, id)
		}
	}
	return nil
}

func (m *mockContactRepo) SoftDelete(ctx context.Context, id string) error {
	if msg, ok := m.messages[id]; ok {
		msg.IsDeleted = true
	}
	return nil
}

type mockEnqueuer struct {
	jobs []jobs.Job
	err  error
}

func (m *mockEnqueuer) Enqueue(job jobs.Job) error {
	if m.err != nil {
		return m.err
	}
	m.jobs = append(m.jobs, job)
	return nil
}

func TestContactSubmitQueuesNotification(t *testing.T) {
	repo := newMockContactRepo()
	queue := &mockEnqueuer{}
	svc := NewContactService(repo, queue, validator.New(), zap.NewNop())

	msg, err := svc.Submit(context.Background(), SubmitContactRequest{
		Name:    "  Ayşe Yıldız  ",
		Email:   "Ayse@Example.com",
		Message: "Teklif almak istiyorum.",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ayşe Yıldız", msg.Name)
	assert.Equal(t, "ayse@example.com", msg.Email)

	require.Len(t, queue.jobs, 1)
	assert.Equal(t, JobTypeContactNotification, queue.jobs[0].Type)
	payload, ok := queue.jobs[0].Payload.(models.ContactMessage)
	require.True(t, ok)
	assert.Equal(t, msg.ID, payload.ID)
}

func TestContactSubmitSurvivesQueueFailure(t *testing.T) {
	repo := newMockContactRepo()
	queue := &mockEnqueuer{err: errors.New("queue full")}
	svc := NewContactService(repo, queue, validator.New(), zap.NewNop())

	_, err := svc.Submit(context.Background(), SubmitContactRequest{
		Name:    "Mehmet",
		Email:   "mehmet@example.com",
		Message: "Merhaba",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.createCalls)
}

func TestContactSubmitInvalidEmail(t *testing.T) {
	svc := NewContactService(newMockContactRepo(), nil, validator.New(), zap.NewNop())
	_, err := svc.Submit(context.Background(), SubmitContactRequest{
		Name:    "Mehmet",
		Email:   "not-an-email",
		Message: "Merhaba",
	})
	require.Error(t, err)
	assert.Equal(t, 400, appErrors.FromError(err).Status)
}

func TestContactGetMarksReadOnFirstOpen(t *testing.T) {
	repo := newMockContactRepo(&models.ContactMessage{ID: "msg-1", Name: "Ali", Email: "ali@example.com", Message: "Selam"})
	svc := NewContactService(repo, nil, validator.New(), zap.NewNop())

	msg, err := svc.Get(context.Background(), "msg-1")
	require.NoError(t, err)
	assert.True(t, msg.IsRead)
	assert.Equal(t, []string{"msg-1"}, repo.markedRead)

	// A second open does not touch the flag again.
	_, err = svc.Get(context.Background(), "msg-1")
	require.NoError(t, err)
	assert.Len(t, repo.markedRead, 1)
}

func TestContactExportCSV(t *testing.T) {
	phone := "+90 555 000 00 00"
	repo := newMockContactRepo(&models.ContactMessage{
		ID:        "msg-1",
		Name:      "Ayşe",
		Email:     "ayse@example.com",
		Phone:     &phone,
		Message:   "Çatı tadilatı",
		CreatedAt: time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC),
	})
	svc := NewContactService(repo, nil, validator.New(), zap.NewNop())

	content, contentType, err := svc.Export(context.Background(), "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)

	// BOM first so spreadsheets read Turkish characters correctly.
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, content[:3])
	text := string(content[3:])
	assert.True(t, strings.HasPrefix(text, "Date,Name,Email,Phone,Subject,Message,Read"))
	assert.Contains(t, text, "2026-03-10 14:30,Ayşe,ayse@example.com")
}

func TestContactExportPDF(t *testing.T) {
	repo := newMockContactRepo(&models.ContactMessage{ID: "msg-1", Name: "Ali", Email: "ali@example.com", Message: "Selam", CreatedAt: time.Now()})
	svc := NewContactService(repo, nil, validator.New(), zap.NewNop())

	content, contentType, err := svc.Export(context.Background(), "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", contentType)
	assert.True(t, len(content) > 0)
}

func TestContactExportUnknownFormat(t *testing.T) {
	svc := NewContactService(newMockContactRepo(), nil, validator.New(), zap.NewNop())
	_, _, err := svc.Export(context.Background(), "xlsx")
	require.Error(t, err)
	assert.Equal(t, 400, appErrors.FromError(err).Status)
}

func TestContactDeleteMissingNotFound(t *testing.T) {
	svc := NewContactService(newMockContactRepo(), nil, validator.New(), zap.NewNop())
	err := svc.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, 404, appErrors.FromError(err).Status)
}
