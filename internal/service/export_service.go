package service

import (
	"context"
	"encoding/json"
	"errors"
	"glog/workout-server/internal/domain"
	"glog/workout-server/internal/repository"
	"glog/workout-server/internal/storage"
	"path"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrExportDisabled = errors.New("history export is not configured")
	ErrExportFailed   = errors.New("failed to export workout history")
)

// exportPageSize bounds each history read during an export.
const exportPageSize = 500

// HistoryExport describes an uploaded export file.
type HistoryExport struct {
	ObjectKey   string    `json:"objectKey"`
	DownloadURL string    `json:"downloadUrl"`
	Records     int       `json:"records"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type ExportService interface {
	ExportHistory(ctx context.Context, userID primitive.ObjectID) (*HistoryExport, error)
}

// exportService implements the ExportService interface.
type exportService struct {
	historyRepo repository.HistoryRepository
	fileStorage storage.FileStorage // nil when exports are disabled
	urlExpiry   time.Duration
	logger      *log.Logger
	now         func() time.Time
}

// NewExportService creates a new instance of exportService. A nil
// fileStorage disables exports.
func NewExportService(historyRepo repository.HistoryRepository, fileStorage storage.FileStorage, urlExpiry time.Duration, logger *log.Logger) ExportService {
	if urlExpiry <= 0 {
		urlExpiry = storage.DefaultPresignedURLExpiry
	}
	return &exportService{
		historyRepo: historyRepo,
		fileStorage: fileStorage,
		urlExpiry:   urlExpiry,
		logger:      logger,
		now:         time.Now,
	}
}

// ExportHistory uploads the user's whole history as one JSON document and
// returns a temporary download link to it.
func (s *exportService) ExportHistory(ctx context.Context, userID primitive.ObjectID) (*HistoryExport, error) {
	if s.fileStorage == nil {
		return nil, ErrExportDisabled
	}

	records := []domain.WorkoutHistory{}
	for offset := int64(0); ; offset += exportPageSize {
		page, err := s.historyRepo.GetByUserID(ctx, userID, exportPageSize, offset)
		if err != nil {
			return nil, err
		}
		records = append(records, page...)
		if len(page) < exportPageSize {
			break
		}
	}

	body, err := json.MarshalIndent(struct {
		UserID     string                  `json:"userId"`
		ExportedAt time.Time               `json:"exportedAt"`
		History    []domain.WorkoutHistory `json:"history"`
	}{userID.Hex(), s.now().UTC(), records}, "", "  ")
	if err != nil {
		return nil, err
	}

	objectKey := path.Join("exports", userID.Hex(), uuid.NewString()+".json")
	if err := s.fileStorage.PutObject(ctx, objectKey, "application/json", body); err != nil {
		return nil, ErrExportFailed
	}

	url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, objectKey, s.urlExpiry)
	if err != nil {
		// Nobody can fetch the file without a link.
		if delErr := s.fileStorage.DeleteObject(ctx, objectKey); delErr != nil {
			s.logger.Warn("failed to remove unreachable export", "key", objectKey, "err", delErr)
		}
		return nil, ErrExportFailed
	}

	return &HistoryExport{
		ObjectKey:   objectKey,
		DownloadURL: url,
		Records:     len(records),
		ExpiresAt:   s.now().Add(s.urlExpiry).UTC(),
	}, nil
}
