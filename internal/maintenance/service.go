package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/insightsales/insightsales/internal/storage"
)

type Config struct {
	RetentionInterval time.Duration
	RetentionMaxAge   time.Duration
	Prefix            string
}

// Service prunes archived result snapshots that have outlived the retention
// window. It only ever touches objects under the configured archive prefix.
type Service struct {
	Store  storage.ObjectStore
	Config Config
	Logger *slog.Logger
	Clock  func() time.Time
}

type RetentionSummary struct {
	ObjectsScanned int   `json:"objects_scanned"`
	ObjectsDeleted int   `json:"objects_deleted"`
	BytesDeleted   int64 `json:"bytes_deleted"`
	Failures       int   `json:"failures"`
}

func (s *Service) Run(ctx context.Context) error {
	s.ensureDefaults()

	ticker := time.NewTicker(s.Config.RetentionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			summary, err := s.RunRetentionOnce(ctx)
			if err != nil {
				if s.Logger != nil {
					s.Logger.ErrorContext(ctx, "retention cycle failed", slog.Any("error", err), slog.Any("summary", summary))
				}
				continue
			}
			if s.Logger != nil {
				s.Logger.InfoContext(ctx, "retention cycle completed", slog.Any("summary", summary))
			}
		}
	}
}

func (s *Service) RunRetentionOnce(ctx context.Context) (RetentionSummary, error) {
	s.ensureDefaults()
	if s.Store == nil {
		return RetentionSummary{}, fmt.Errorf("object store is required")
	}

	cutoff := s.Clock().Add(-s.Config.RetentionMaxAge)

	objects, err := s.Store.List(ctx, s.Config.Prefix)
	if err != nil {
		retentionRunsTotal.WithLabelValues("failed").Inc()
		return RetentionSummary{}, fmt.Errorf("list archived objects: %w", err)
	}

	summary := RetentionSummary{ObjectsScanned: len(objects)}
	failures := make([]string, 0)

	for _, object := range objects {
		if !object.LastModified.Before(cutoff) {
			continue
		}
		if err := s.Store.Delete(ctx, object.Key); err != nil {
			summary.Failures++
			failures = append(failures, fmt.Sprintf("delete object %s: %v", object.Key, err))
			continue
		}
		summary.ObjectsDeleted++
		summary.BytesDeleted += object.Size
	}

	if summary.ObjectsDeleted > 0 {
		retentionDeletedTotal.Add(float64(summary.ObjectsDeleted))
	}
	if len(failures) > 0 {
		retentionRunsTotal.WithLabelValues("failed").Inc()
		return summary, fmt.Errorf("retention encountered %d failure(s): %s", len(failures), strings.Join(failures, "; "))
	}
	retentionRunsTotal.WithLabelValues("completed").Inc()
	return summary, nil
}

func (s *Service) ensureDefaults() {
	if s.Clock == nil {
		s.Clock = time.Now
	}
	if s.Config.RetentionInterval <= 0 {
		s.Config.RetentionInterval = time.Hour
	}
	if s.Config.RetentionMaxAge <= 0 {
		s.Config.RetentionMaxAge = 720 * time.Hour
	}
	if s.Config.Prefix == "" {
		s.Config.Prefix = "results"
	}
}
