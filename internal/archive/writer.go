package archive

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/insightsales/insightsales/internal/storage"
)

// Input carries one successful query result bound for object storage.
type Input struct {
	Question    string
	SQLQuery    string
	Rows        []map[string]any
	ExecutionMs int64
}

// Manifest is the JSON sidecar stored next to each parquet snapshot.
type Manifest struct {
	Question    string    `json:"question"`
	SQLQuery    string    `json:"sql_query"`
	RowCount    int       `json:"row_count"`
	ExecutionMs int64     `json:"execution_ms"`
	ArchivedAt  time.Time `json:"archived_at"`
}

type Result struct {
	ParquetKey   string
	ManifestKey  string
	ParquetBytes int64
}

// resultRow is the parquet record for one result row. Result sets have no
// fixed schema, so each row is stored as its JSON encoding plus a sequence
// number preserving the original order.
type resultRow struct {
	Seq     int64  `parquet:"seq"`
	RowJSON string `parquet:"row_json"`
}

type Writer struct {
	Store  storage.ObjectStore
	Prefix string
	Clock  func() time.Time
}

func (w *Writer) Archive(ctx context.Context, in Input) (Result, error) {
	w.ensureDefaults()
	if w.Store == nil {
		return Result{}, fmt.Errorf("object store is required")
	}
	if len(in.Rows) == 0 {
		return Result{}, fmt.Errorf("rows are required")
	}

	data, err := EncodeRowsToParquet(in.Rows)
	if err != nil {
		archiveUploadFailuresTotal.Inc()
		return Result{}, err
	}

	archivedAt := w.Clock().UTC()
	snapshotID := newSnapshotID(archivedAt)
	parquetKey, err := storage.BuildArchivePath(w.Prefix, archivedAt, snapshotID, "parquet")
	if err != nil {
		archiveUploadFailuresTotal.Inc()
		return Result{}, err
	}
	manifestKey, err := storage.BuildArchivePath(w.Prefix, archivedAt, snapshotID, "json")
	if err != nil {
		archiveUploadFailuresTotal.Inc()
		return Result{}, err
	}

	info, err := w.Store.Put(ctx, parquetKey, bytes.NewReader(data), int64(len(data)), storage.PutOptions{ContentType: "application/octet-stream"})
	if err != nil {
		archiveUploadFailuresTotal.Inc()
		return Result{}, fmt.Errorf("upload parquet snapshot: %w", err)
	}

	manifestJSON, err := json.Marshal(Manifest{
		Question:    in.Question,
		SQLQuery:    in.SQLQuery,
		RowCount:    len(in.Rows),
		ExecutionMs: in.ExecutionMs,
		ArchivedAt:  archivedAt,
	})
	if err != nil {
		_ = w.Store.Delete(ctx, parquetKey)
		archiveUploadFailuresTotal.Inc()
		return Result{}, fmt.Errorf("marshal archive manifest: %w", err)
	}

	if _, err := w.Store.Put(ctx, manifestKey, bytes.NewReader(manifestJSON), int64(len(manifestJSON)), storage.PutOptions{ContentType: "application/json"}); err != nil {
		_ = w.Store.Delete(ctx, parquetKey)
		archiveUploadFailuresTotal.Inc()
		return Result{}, fmt.Errorf("upload archive manifest: %w", err)
	}

	archiveUploadsTotal.Inc()
	return Result{ParquetKey: parquetKey, ManifestKey: manifestKey, ParquetBytes: info.Size}, nil
}

func EncodeRowsToParquet(rows []map[string]any) ([]byte, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("rows are required")
	}

	records := make([]resultRow, 0, len(rows))
	for i, row := range rows {
		rowJSON, err := json.Marshal(row)
		if err != nil {
			return nil, fmt.Errorf("marshal result row %d: %w", i, err)
		}
		records = append(records, resultRow{Seq: int64(i), RowJSON: string(rowJSON)})
	}

	buf := bytes.NewBuffer(nil)
	writer := parquet.NewGenericWriter[resultRow](buf)
	if _, err := writer.Write(records); err != nil {
		return nil, fmt.Errorf("write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close parquet writer: %w", err)
	}
	return buf.Bytes(), nil
}

func (w *Writer) ensureDefaults() {
	if w.Clock == nil {
		w.Clock = time.Now
	}
	if w.Prefix == "" {
		w.Prefix = "results"
	}
}

func newSnapshotID(at time.Time) string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return strconv.FormatInt(at.UnixNano(), 10)
	}
	return strconv.FormatInt(at.UnixNano(), 10) + "-" + hex.EncodeToString(buf)
}
