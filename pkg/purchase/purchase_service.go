package purchase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"purchases-api/domain"
	"purchases-api/entities"
	"purchases-api/internal/metrics"
	"purchases-api/internal/utils/storage"
	"purchases-api/pkg/export"
	"purchases-api/pkg/session"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type (
	PurchaseService interface {
		OpenSession(ctx context.Context, userID int64) (domain.SessionResponse, error)
		GetSession(ctx context.Context, sessionID string, userID int64) (domain.SessionResponse, error)
		SaveSession(ctx context.Context, sessionID string, req domain.SaveSnapshotRequest, userID int64) (domain.SaveSnapshotResponse, error)
		CloseSession(ctx context.Context, sessionID string, userID int64) error
		GetSummary(ctx context.Context, userID int64) ([]domain.CategorySummary, error)
		ExportXLSX(ctx context.Context, userID int64) ([]byte, error)
		ArchiveExport(ctx context.Context, userID int64) (domain.ArchiveExportResponse, error)
	}

	purchaseService struct {
		purchaseRepository PurchaseRepository
		sessionStore       session.SessionStore
		exportService      export.ExportService
		s3                 storage.AwsS3
	}
)

// NewPurchaseService wires the service. s3 may be nil, which disables
// archived exports.
func NewPurchaseService(
	purchaseRepository PurchaseRepository,
	sessionStore session.SessionStore,
	exportService export.ExportService,
	s3 storage.AwsS3,
) PurchaseService {
	return &purchaseService{
		purchaseRepository: purchaseRepository,
		sessionStore:       sessionStore,
		exportService:      exportService,
		s3:                 s3,
	}
}

func (s *purchaseService) OpenSession(ctx context.Context, userID int64) (domain.SessionResponse, error) {
	snapshot, err := s.loadSnapshot(ctx, userID)
	if err != nil {
		return domain.SessionResponse{}, err
	}

	sess := s.sessionStore.Create(userID, snapshot)
	metrics.SessionsOpened.Inc()
	log.Infow("session opened", "session_id", sess.ID.String(), "user_id", userID, "rows", len(snapshot))

	return toSessionResponse(sess), nil
}

func (s *purchaseService) GetSession(ctx context.Context, sessionID string, userID int64) (domain.SessionResponse, error) {
	id, err := parseSessionID(sessionID)
	if err != nil {
		return domain.SessionResponse{}, err
	}

	sess, err := s.sessionStore.Get(id, userID)
	if err != nil {
		return domain.SessionResponse{}, err
	}
	return toSessionResponse(sess), nil
}

func (s *purchaseService) SaveSession(ctx context.Context, sessionID string, req domain.SaveSnapshotRequest, userID int64) (domain.SaveSnapshotResponse, error) {
	start := time.Now()
	defer func() { metrics.SaveDuration.Observe(time.Since(start).Seconds()) }()

	id, err := parseSessionID(sessionID)
	if err != nil {
		return domain.SaveSnapshotResponse{}, err
	}
	sess, err := s.sessionStore.Get(id, userID)
	if err != nil {
		return domain.SaveSnapshotResponse{}, err
	}

	edited, err := rowsToPurchases(req.Purchases)
	if err != nil {
		metrics.SavesTotal.WithLabelValues("invalid").Inc()
		return domain.SaveSnapshotResponse{}, err
	}

	changes, err := Reconcile(userID, sess.Original, edited)
	if err != nil {
		metrics.SavesTotal.WithLabelValues("invalid").Inc()
		return domain.SaveSnapshotResponse{}, err
	}

	if changes.DeletesAll(sess.Original) && !req.ConfirmDeleteAll {
		metrics.SavesTotal.WithLabelValues("unconfirmed").Inc()
		return domain.SaveSnapshotResponse{}, domain.ErrDeleteAllNotConfirmed
	}

	summary := domain.SaveSummary{
		Inserted: len(changes.Inserts),
		Updated:  len(changes.Updates),
		Deleted:  len(changes.Deletes),
	}

	if changes.IsEmpty() {
		metrics.SavesTotal.WithLabelValues("noop").Inc()
		return domain.SaveSnapshotResponse{SessionResponse: toSessionResponse(sess), Summary: summary}, nil
	}

	if err := s.purchaseRepository.ApplyChanges(ctx, userID, changes); err != nil {
		metrics.SavesTotal.WithLabelValues("failed").Inc()
		log.Errorw("apply changes failed", "session_id", sessionID, "user_id", userID, "error", err)
		return domain.SaveSnapshotResponse{}, err
	}
	metrics.SavesTotal.WithLabelValues("applied").Inc()
	metrics.ReconciledRows.WithLabelValues("insert").Add(float64(summary.Inserted))
	metrics.ReconciledRows.WithLabelValues("update").Add(float64(summary.Updated))
	metrics.ReconciledRows.WithLabelValues("delete").Add(float64(summary.Deleted))

	// The stored snapshot now carries IDs for inserted rows, so the session
	// must be rebased on it. If that fails the session can no longer be
	// trusted and is dropped.
	snapshot, err := s.loadSnapshot(ctx, userID)
	if err != nil {
		_ = s.sessionStore.Delete(id, userID)
		log.Errorw("reload after save failed", "session_id", sessionID, "user_id", userID, "error", err)
		return domain.SaveSnapshotResponse{}, fmt.Errorf("changes applied but reload failed: %w", err)
	}
	sess, err = s.sessionStore.Replace(id, userID, snapshot)
	if err != nil {
		return domain.SaveSnapshotResponse{}, err
	}

	log.Infow("changes applied",
		"session_id", sessionID,
		"user_id", userID,
		"inserted", summary.Inserted,
		"updated", summary.Updated,
		"deleted", summary.Deleted,
	)

	return domain.SaveSnapshotResponse{SessionResponse: toSessionResponse(sess), Summary: summary}, nil
}

func (s *purchaseService) CloseSession(ctx context.Context, sessionID string, userID int64) error {
	id, err := parseSessionID(sessionID)
	if err != nil {
		return err
	}
	if err := s.sessionStore.Delete(id, userID); err != nil {
		return err
	}
	log.Infow("session closed", "session_id", sessionID, "user_id", userID)
	return nil
}

func (s *purchaseService) GetSummary(ctx context.Context, userID int64) ([]domain.CategorySummary, error) {
	return s.purchaseRepository.GetCategorySummary(ctx, userID)
}

func (s *purchaseService) ExportXLSX(ctx context.Context, userID int64) ([]byte, error) {
	snapshot, err := s.loadSnapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.exportService.PurchasesXLSX(snapshot)
}

func (s *purchaseService) ArchiveExport(ctx context.Context, userID int64) (domain.ArchiveExportResponse, error) {
	if s.s3 == nil {
		return domain.ArchiveExportResponse{}, domain.ErrArchiveDisabled
	}

	snapshot, err := s.loadSnapshot(ctx, userID)
	if err != nil {
		return domain.ArchiveExportResponse{}, err
	}
	body, err := s.exportService.PurchasesXLSX(snapshot)
	if err != nil {
		return domain.ArchiveExportResponse{}, err
	}

	key := fmt.Sprintf("exports/%d/%s.xlsx", userID, uuid.New().String())
	url, err := s.s3.UploadFile(ctx, key, body, xlsxContentType)
	if err != nil {
		return domain.ArchiveExportResponse{}, err
	}

	log.Infow("export archived", "user_id", userID, "key", key, "rows", len(snapshot))
	return domain.ArchiveExportResponse{URL: url, Rows: len(snapshot)}, nil
}

func (s *purchaseService) loadSnapshot(ctx context.Context, userID int64) ([]domain.Purchase, error) {
	rows, err := s.purchaseRepository.GetPurchasesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load purchases: %w", err)
	}

	snapshot := make([]domain.Purchase, 0, len(rows))
	for _, row := range rows {
		snapshot = append(snapshot, toPurchase(row))
	}
	return snapshot, nil
}

func toPurchase(e *entities.Purchase) domain.Purchase {
	return domain.Purchase{
		ID:          e.ID,
		UserID:      e.UserID,
		Category:    e.Category,
		Subcategory: e.Subcategory,
		Price:       e.Price,
		Timestamp:   domain.CanonicalTime(e.Timestamp),
	}
}

// rowsToPurchases turns client rows into typed records. Owner is left unset;
// Reconcile stamps it.
func rowsToPurchases(rows []domain.PurchaseRow) ([]domain.Purchase, error) {
	out := make([]domain.Purchase, 0, len(rows))
	for i, row := range rows {
		if row.Price == nil {
			return nil, fmt.Errorf("%w: edited row %d: price is required", domain.ErrInvalidSnapshot, i)
		}
		if err := domain.ValidatePrice(*row.Price); err != nil {
			return nil, fmt.Errorf("%w: edited row %d: %v", domain.ErrInvalidSnapshot, i, err)
		}
		ts, err := domain.ParseTimestamp(row.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("%w: edited row %d: %v %q", domain.ErrInvalidSnapshot, i, err, row.Timestamp)
		}
		out = append(out, domain.Purchase{
			ID:          row.ID,
			Category:    row.Category,
			Subcategory: row.Subcategory,
			Price:       *row.Price,
			Timestamp:   ts,
		})
	}
	return out, nil
}

func parseSessionID(sessionID string) (uuid.UUID, error) {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return uuid.Nil, errors.Join(domain.ErrSessionNotFound, err)
	}
	return id, nil
}

func toSessionResponse(sess session.Session) domain.SessionResponse {
	return domain.SessionResponse{
		SessionID: sess.ID.String(),
		ExpiresAt: sess.ExpiresAt,
		Purchases: domain.ToPurchaseResponses(sess.Original),
	}
}
