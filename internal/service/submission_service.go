package service

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atelier-nord/intake-api/internal/catalog"
	"github.com/atelier-nord/intake-api/internal/dto"
	intakeExport "github.com/atelier-nord/intake-api/internal/export"
	"github.com/atelier-nord/intake-api/internal/models"
	"github.com/atelier-nord/intake-api/internal/session"
	"github.com/atelier-nord/intake-api/internal/validation"
	appErrors "github.com/atelier-nord/intake-api/pkg/errors"
	"github.com/atelier-nord/intake-api/pkg/export"
	"github.com/atelier-nord/intake-api/pkg/mailer"
	"github.com/atelier-nord/intake-api/pkg/storage"
)

type objectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (storage.Reference, error)
}

type submissionRepository interface {
	Insert(ctx context.Context, record *models.SubmissionRecord) error
}

type receiptCache interface {
	Save(ctx context.Context, receipt models.SubmissionReceipt) error
	Get(ctx context.Context, sessionID string) (*models.SubmissionReceipt, error)
}

type submissionMetrics interface {
	RecordSubmission(outcome string)
}

// SubmissionServiceConfig tunes the finalization pipeline.
type SubmissionServiceConfig struct {
	Bucket        string
	Title         string
	NotifyAddress string
	NotifyBCC     string
}

// SubmissionService runs the one-time finalization pipeline for a
// completed session: persist uploads, write the JSON export, then send
// the notification email. Each stage only runs after the previous one
// succeeded, and a session is only marked submitted after all three.
type SubmissionService struct {
	registry *session.Registry
	catalog  *catalog.Catalog
	store    objectStore
	mail     mailer.Mailer
	pdf      *export.PDFExporter
	csv      *export.CSVExporter
	repo     submissionRepository
	receipts receiptCache
	metrics  submissionMetrics
	logger   *zap.Logger
	cfg      SubmissionServiceConfig

	mu      sync.Mutex
	results map[string]*dto.SubmissionView
}

// NewSubmissionService constructs a SubmissionService. repo, receipts
// and metrics may be nil when those subsystems are disabled.
func NewSubmissionService(registry *session.Registry, cat *catalog.Catalog, store objectStore, mail mailer.Mailer, repo submissionRepository, receipts receiptCache, metrics submissionMetrics, logger *zap.Logger, cfg SubmissionServiceConfig) *SubmissionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Title == "" {
		cfg.Title = "Intake questionnaire"
	}
	return &SubmissionService{
		registry: registry,
		catalog:  cat,
		store:    store,
		mail:     mail,
		pdf:      export.NewPDFExporter(),
		csv:      export.NewCSVExporter(),
		repo:     repo,
		receipts: receipts,
		metrics:  metrics,
		logger:   logger,
		cfg:      cfg,
		results:  make(map[string]*dto.SubmissionView),
	}
}

// Submit finalizes a completed session. Repeated calls for an already
// submitted session return the original result without touching
// storage or the mailer again.
func (s *SubmissionService) Submit(ctx context.Context, sessionID, email string) (*dto.SubmissionView, error) {
	// Serialized per service; the pipeline is short and sessions are
	// submitted once, so a single lock is enough.
	s.mu.Lock()
	defer s.mu.Unlock()

	if view, ok := s.results[sessionID]; ok {
		return view, nil
	}

	sess, err := s.registry.Get(sessionID)
	if err != nil {
		if receipt := s.lookupReceipt(ctx, sessionID); receipt != nil {
			return receiptView(receipt), nil
		}
		return nil, err
	}

	if sess.Status() == models.SessionSubmitted {
		if receipt := s.lookupReceipt(ctx, sessionID); receipt != nil {
			view := receiptView(receipt)
			s.results[sessionID] = view
			return view, nil
		}
		return nil, appErrors.ErrSessionNotComplete
	}
	if sess.Status() != models.SessionCompleted {
		s.observe("rejected")
		return nil, appErrors.ErrSessionNotComplete
	}

	emailResult := validation.ValidateEmail(email)
	if !emailResult.OK {
		s.observe("rejected")
		return nil, appErrors.Validation(string(emailResult.Kind), emailResult.Message)
	}
	email = emailResult.Normalized.Text

	refs, fileCount, err := s.persistUploads(ctx, sess)
	if err != nil {
		s.observe("storage_failure")
		return nil, err
	}

	doc, err := intakeExport.Build(sess, s.catalog, refs, email, s.cfg.Bucket)
	if err != nil {
		return nil, err
	}

	exportRef, err := s.persistExport(ctx, sess, doc)
	if err != nil {
		s.observe("storage_failure")
		return nil, err
	}

	if err := s.notify(ctx, sess, doc, email); err != nil {
		s.observe("notification_failure")
		return nil, err
	}

	if err := sess.MarkSubmitted(email); err != nil {
		return nil, err
	}

	view := &dto.SubmissionView{
		SessionID:   sess.ID(),
		Status:      string(models.SessionSubmitted),
		Email:       email,
		ExportKey:   exportRef.Key,
		ExportURL:   exportRef.URL,
		FileCount:   fileCount,
		SubmittedAt: time.Now().UTC(),
	}
	s.results[sessionID] = view
	s.record(ctx, view)
	s.observe("submitted")
	s.logger.Info("session submitted",
		zap.String("session_id", sess.ID()),
		zap.String("export_key", exportRef.Key),
		zap.Int("file_count", fileCount))
	return view, nil
}

// persistUploads writes every uploaded file under the session's storage
// prefix and returns the references keyed by question ID.
func (s *SubmissionService) persistUploads(ctx context.Context, sess *session.FormSession) (map[string][]models.FileReference, int, error) {
	refs := make(map[string][]models.FileReference)
	count := 0
	for _, question := range s.catalog.Questions() {
		if question.Kind != models.QuestionFileUpload {
			continue
		}
		answer, ok := sess.Answer(question.ID)
		if !ok {
			continue
		}
		for i, file := range answer.Value.Files {
			key := path.Join(sess.StoragePrefix(), question.ID,
				fmt.Sprintf("%02d_%s", i+1, sanitizeFilename(file.Filename)))
			ref, err := s.store.Put(ctx, key, file.Content, file.MimeType)
			if err != nil {
				s.logger.Error("upload failed",
					zap.String("session_id", sess.ID()),
					zap.String("key", key),
					zap.Error(err))
				return nil, 0, appErrors.Wrap(err, appErrors.ErrStorageFailure.Code,
					appErrors.ErrStorageFailure.Status,
					fmt.Sprintf("failed to store %q", file.Filename))
			}
			refs[question.ID] = append(refs[question.ID], models.FileReference{
				Filename:   file.Filename,
				Key:        ref.Key,
				URL:        ref.URL,
				MimeType:   file.MimeType,
				SizeBytes:  file.SizeBytes,
				UploadedAt: time.Now().UTC(),
			})
			count++
		}
	}
	return refs, count, nil
}

func (s *SubmissionService) persistExport(ctx context.Context, sess *session.FormSession, doc *models.ExportDocument) (storage.Reference, error) {
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return storage.Reference{}, appErrors.Wrap(err, appErrors.ErrInternal.Code,
			appErrors.ErrInternal.Status, "failed to encode export document")
	}
	key := path.Join(sess.StoragePrefix(), "export.json")
	ref, err := s.store.Put(ctx, key, payload, "application/json")
	if err != nil {
		s.logger.Error("export upload failed",
			zap.String("session_id", sess.ID()), zap.Error(err))
		return storage.Reference{}, appErrors.Wrap(err, appErrors.ErrStorageFailure.Code,
			appErrors.ErrStorageFailure.Status, "failed to store export document")
	}
	return ref, nil
}

func (s *SubmissionService) notify(ctx context.Context, sess *session.FormSession, doc *models.ExportDocument, email string) error {
	summary := summarize(doc, s.cfg.Title)

	attachments := []mailer.Attachment{}
	if payload, err := json.MarshalIndent(doc, "", "  "); err == nil {
		attachments = append(attachments, mailer.Attachment{
			Filename: "export.json", MIMEType: "application/json", Content: payload,
		})
	}
	if rendered, err := s.pdf.Render(summary); err == nil {
		attachments = append(attachments, mailer.Attachment{
			Filename: "summary.pdf", MIMEType: "application/pdf", Content: rendered,
		})
	} else {
		s.logger.Warn("pdf summary skipped", zap.String("session_id", sess.ID()), zap.Error(err))
	}
	if rendered, err := s.csv.Render(summary); err == nil {
		attachments = append(attachments, mailer.Attachment{
			Filename: "summary.csv", MIMEType: "text/csv", Content: rendered,
		})
	} else {
		s.logger.Warn("csv summary skipped", zap.String("session_id", sess.ID()), zap.Error(err))
	}

	to := s.cfg.NotifyAddress
	if to == "" {
		to = email
	}
	msg := mailer.Message{
		To:          to,
		BCC:         s.cfg.NotifyBCC,
		Subject:     fmt.Sprintf("%s submission %s", s.cfg.Title, sess.ID()),
		TextBody:    textBody(doc, email),
		Attachments: attachments,
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		s.logger.Error("notification failed",
			zap.String("session_id", sess.ID()), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrNotificationFail.Code,
			appErrors.ErrNotificationFail.Status, "failed to send notification email")
	}
	return nil
}

// record writes the audit row and receipt. Both are best effort; the
// submission already succeeded by the time they run.
func (s *SubmissionService) record(ctx context.Context, view *dto.SubmissionView) {
	if s.repo != nil {
		record := &models.SubmissionRecord{
			ID:          uuid.NewString(),
			SessionID:   view.SessionID,
			Email:       view.Email,
			ExportKey:   view.ExportKey,
			ExportURL:   view.ExportURL,
			FileCount:   view.FileCount,
			SubmittedAt: view.SubmittedAt,
		}
		if err := s.repo.Insert(ctx, record); err != nil {
			s.logger.Warn("failed to record submission", zap.String("session_id", view.SessionID), zap.Error(err))
		}
	}
	if s.receipts != nil {
		receipt := models.SubmissionReceipt{
			SessionID:   view.SessionID,
			Email:       view.Email,
			ExportKey:   view.ExportKey,
			SubmittedAt: view.SubmittedAt,
		}
		if err := s.receipts.Save(ctx, receipt); err != nil {
			s.logger.Warn("failed to cache receipt", zap.String("session_id", view.SessionID), zap.Error(err))
		}
	}
}

func (s *SubmissionService) lookupReceipt(ctx context.Context, sessionID string) *models.SubmissionReceipt {
	if s.receipts == nil {
		return nil
	}
	receipt, err := s.receipts.Get(ctx, sessionID)
	if err != nil {
		s.logger.Warn("receipt lookup failed", zap.String("session_id", sessionID), zap.Error(err))
		return nil
	}
	return receipt
}

func (s *SubmissionService) observe(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordSubmission(outcome)
	}
}

func receiptView(receipt *models.SubmissionReceipt) *dto.SubmissionView {
	return &dto.SubmissionView{
		SessionID:   receipt.SessionID,
		Status:      string(models.SessionSubmitted),
		Email:       receipt.Email,
		ExportKey:   receipt.ExportKey,
		SubmittedAt: receipt.SubmittedAt,
	}
}

func summarize(doc *models.ExportDocument, title string) export.Summary {
	summary := export.Summary{
		Title:      title,
		SessionID:  doc.SessionID,
		Respondent: doc.RespondentEmail,
	}
	if doc.CompletedAt != nil {
		summary.SubmittedAt = doc.CompletedAt.Format(time.RFC3339)
	}
	for _, answer := range doc.Answers {
		entry := export.Entry{
			Prompt: answer.Prompt,
			Kind:   string(answer.Kind),
			Value:  flattenValue(answer.Value),
		}
		for _, file := range answer.Files {
			entry.Files = append(entry.Files, file.Filename)
		}
		summary.Entries = append(summary.Entries, entry)
	}
	return summary
}

func flattenValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []string:
		return strings.Join(v, ", ")
	default:
		return fmt.Sprintf("%v", v)
	}
}

func textBody(doc *models.ExportDocument, email string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A questionnaire session was just submitted.\n\n")
	fmt.Fprintf(&b, "Session:   %s\n", doc.SessionID)
	fmt.Fprintf(&b, "Email:     %s\n", email)
	fmt.Fprintf(&b, "Version:   %s\n", doc.Version)
	fmt.Fprintf(&b, "Answers:   %d\n", len(doc.Answers))
	if doc.CompletionTimeMinutes > 0 {
		fmt.Fprintf(&b, "Duration:  %.1f minutes\n", doc.CompletionTimeMinutes)
	}
	fmt.Fprintf(&b, "\nThe full export is attached as export.json.\n")
	return b.String()
}

func sanitizeFilename(name string) string {
	name = path.Base(name)
	replacer := strings.NewReplacer(" ", "_", "#", "_", "?", "_", "%", "_")
	return replacer.Replace(name)
}
