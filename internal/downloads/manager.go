package downloads

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/amaumene/cinedex/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	// ErrDownloadInProgress signals a start request for an item that is
	// already transferring. Non-fatal; the UI tells the user and moves on.
	ErrDownloadInProgress = errors.New("download already in progress")

	// ErrAlreadyDownloaded signals a start request for an item that has
	// already completed
	ErrAlreadyDownloaded = errors.New("download already completed")

	// ErrNotRetryable signals a retry request for a record that is not in
	// the failed state
	ErrNotRetryable = errors.New("download is not in a failed state")
)

// TransferError is a mid-download read or save failure. The record keeps
// its received byte count for diagnostics; partial content is discarded.
type TransferError struct {
	ID            string
	BytesReceived int64
	Err           error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("transfer %s failed after %d bytes: %v", e.ID, e.BytesReceived, e.Err)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

// Source opens a streaming fetch for a file URL, returning the byte stream
// and the total size (<= 0 when unknown)
type Source interface {
	Fetch(ctx context.Context, fileURL string) (io.ReadCloser, int64, error)
}

// Saver receives the fully assembled payload of a completed download and
// hands it to the platform's save/share mechanism
type Saver interface {
	Save(record *models.DownloadRecord, payload []byte) error
}

// Request describes a download to start
type Request struct {
	ID         string
	Title      string
	MediaType  models.MediaType
	PosterPath string
	SourceURL  string
}

const chunkSize = 64 * 1024

// Manager tracks download lifecycles. Per record the state machine is
// queued -> in_progress -> {completed, failed}, with failed -> queued only
// through Retry. The duplicate check lives here, under the manager lock:
// callers' IsDownloaded/IsDownloading checks are optimistic hints only.
//
// Multiple records (distinct ids) transfer concurrently; progress sampling
// is independent per record.
type Manager struct {
	db     *models.Database
	source Source
	saver  Saver
	logger *logrus.Logger

	sampleInterval time.Duration

	mu      sync.Mutex
	records map[string]*models.DownloadRecord
	wg      sync.WaitGroup
}

// NewManager creates a download manager and loads persisted records.
// Records left in_progress or queued by a previous process cannot resume
// and are downgraded to failed.
func NewManager(db *models.Database, source Source, saver Saver, logger *logrus.Logger) (*Manager, error) {
	m := &Manager{
		db:             db,
		source:         source,
		saver:          saver,
		logger:         logger,
		sampleInterval: defaultSampleInterval,
		records:        make(map[string]*models.DownloadRecord),
	}

	persisted, err := db.GetAllDownloadRecords()
	if err != nil {
		return nil, fmt.Errorf("failed to load download records: %w", err)
	}

	for _, record := range persisted {
		if record.Status == models.DownloadInProgress || record.Status == models.DownloadQueued {
			record.Status = models.DownloadFailed
			record.FailureReason = "interrupted by restart"
			if err := db.SaveDownloadRecord(record); err != nil {
				logger.WithError(err).WithField("id", record.ID).Warn("Failed to downgrade interrupted download")
			}
		}
		m.records[record.ID] = record
	}

	return m, nil
}

// Start begins a download. If a record with the same id is already
// transferring it returns ErrDownloadInProgress; if it completed,
// ErrAlreadyDownloaded. A failed or unknown id gets a fresh record that
// immediately moves from queued to in_progress.
func (m *Manager) Start(req Request) (*models.DownloadRecord, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.SourceURL == "" {
		return nil, fmt.Errorf("source URL is required")
	}

	m.mu.Lock()
	if existing, ok := m.records[req.ID]; ok {
		switch existing.Status {
		case models.DownloadQueued, models.DownloadInProgress:
			m.mu.Unlock()
			return nil, ErrDownloadInProgress
		case models.DownloadCompleted:
			m.mu.Unlock()
			return nil, ErrAlreadyDownloaded
		}
	}

	record := &models.DownloadRecord{
		ID:         req.ID,
		Title:      req.Title,
		MediaType:  req.MediaType,
		PosterPath: req.PosterPath,
		SourceURL:  req.SourceURL,
		Status:     models.DownloadQueued,
		StartedAt:  time.Now(),
	}
	m.records[record.ID] = record
	m.launchLocked(record)
	snapshot := *record
	m.mu.Unlock()

	return &snapshot, nil
}

// Retry resets a failed record to queued, clearing its byte counters, and
// starts a new transfer attempt. Completed records are never resurrected.
func (m *Manager) Retry(id string) (*models.DownloadRecord, error) {
	m.mu.Lock()
	record, ok := m.records[id]
	if !ok {
		m.mu.Unlock()
		return nil, fmt.Errorf("unknown download %q", id)
	}
	if record.Status != models.DownloadFailed {
		m.mu.Unlock()
		return nil, ErrNotRetryable
	}

	record.Status = models.DownloadQueued
	record.BytesReceived = 0
	record.BytesTotal = 0
	record.Throughput = 0
	record.FailureReason = ""
	record.StartedAt = time.Now()
	record.FinishedAt = nil
	m.launchLocked(record)
	snapshot := *record
	m.mu.Unlock()

	return &snapshot, nil
}

// launchLocked moves a queued record to in_progress, persists it, and
// spawns its transfer. Caller holds m.mu.
func (m *Manager) launchLocked(record *models.DownloadRecord) {
	record.Status = models.DownloadInProgress
	if err := m.db.SaveDownloadRecord(record); err != nil {
		m.logger.WithError(err).WithField("id", record.ID).Warn("Failed to persist download record")
	}

	m.logger.WithFields(logrus.Fields{
		"id":    record.ID,
		"title": record.Title,
	}).Info("Starting download")

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.transfer(record.ID, record.SourceURL)
	}()
}

// transfer runs one download attempt: open the stream, accumulate chunks
// in arrival order, sample throughput, then hand the assembled payload to
// the saver. Downloads are not cancellable mid-transfer; only completion
// or failure ends one.
func (m *Manager) transfer(id, sourceURL string) {
	body, total, err := m.source.Fetch(context.Background(), sourceURL)
	if err != nil {
		m.fail(id, err)
		return
	}
	defer body.Close()

	m.mu.Lock()
	if record, ok := m.records[id]; ok {
		record.BytesTotal = total
	}
	m.mu.Unlock()

	var payload bytes.Buffer
	samp := newSampler(m.sampleInterval)
	buf := make([]byte, chunkSize)

	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			payload.Write(buf[:n])

			m.mu.Lock()
			record, ok := m.records[id]
			if ok {
				record.BytesReceived += int64(n)
				record.Throughput = samp.observe(record.BytesReceived)
			}
			m.mu.Unlock()
			if !ok {
				return
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			m.fail(id, readErr)
			return
		}
	}

	m.complete(id, payload.Bytes())
}

// complete hands the payload to the saver and marks the record completed
func (m *Manager) complete(id string, payload []byte) {
	m.mu.Lock()
	record, ok := m.records[id]
	if !ok {
		m.mu.Unlock()
		return
	}
	snapshot := *record
	m.mu.Unlock()

	if err := m.saver.Save(&snapshot, payload); err != nil {
		m.fail(id, fmt.Errorf("failed to save payload: %w", err))
		return
	}

	now := time.Now()
	m.mu.Lock()
	record.Status = models.DownloadCompleted
	record.Throughput = 0
	record.FinishedAt = &now
	persisted := *record
	m.mu.Unlock()

	if err := m.db.SaveDownloadRecord(&persisted); err != nil {
		m.logger.WithError(err).WithField("id", id).Warn("Failed to persist completed download")
	}

	m.logger.WithFields(logrus.Fields{
		"id":    id,
		"bytes": persisted.BytesReceived,
	}).Info("Download completed")
}

// fail downgrades the record, preserving the received byte count for
// diagnostics. Partial content is not a valid artifact and is discarded
// by the transfer loop.
func (m *Manager) fail(id string, cause error) {
	now := time.Now()

	m.mu.Lock()
	record, ok := m.records[id]
	if !ok {
		m.mu.Unlock()
		return
	}
	record.Status = models.DownloadFailed
	record.Throughput = 0
	record.FailureReason = cause.Error()
	record.FinishedAt = &now
	persisted := *record
	m.mu.Unlock()

	if err := m.db.SaveDownloadRecord(&persisted); err != nil {
		m.logger.WithError(err).WithField("id", id).Warn("Failed to persist failed download")
	}

	transferErr := &TransferError{ID: id, BytesReceived: persisted.BytesReceived, Err: cause}
	m.logger.WithError(transferErr).Warn("Download failed")
}

// Get returns a snapshot of one record
func (m *Manager) Get(id string) (*models.DownloadRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.records[id]
	if !ok {
		return nil, false
	}
	snapshot := *record
	return &snapshot, true
}

// List returns snapshots of all records, newest first
func (m *Manager) List() []*models.DownloadRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	records := make([]*models.DownloadRecord, 0, len(m.records))
	for _, record := range m.records {
		snapshot := *record
		records = append(records, &snapshot)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].StartedAt.After(records[j].StartedAt)
	})

	return records
}

// IsDownloaded reports whether the record for id has completed. An
// optimistic hint for callers; Start re-checks under the manager lock.
func (m *Manager) IsDownloaded(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.records[id]
	return ok && record.Status == models.DownloadCompleted
}

// IsDownloading reports whether the record for id is queued or transferring
func (m *Manager) IsDownloading(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.records[id]
	return ok && (record.Status == models.DownloadQueued || record.Status == models.DownloadInProgress)
}

// Prune deletes completed and failed records older than the retention
// window. Returns the number of deleted records.
func (m *Manager) Prune(olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)

	m.mu.Lock()
	defer m.mu.Unlock()

	pruned := 0
	for id, record := range m.records {
		if record.Status != models.DownloadCompleted && record.Status != models.DownloadFailed {
			continue
		}
		if record.StartedAt.After(cutoff) {
			continue
		}
		if err := m.db.DeleteDownloadRecord(id); err != nil {
			return pruned, fmt.Errorf("failed to delete download record: %w", err)
		}
		delete(m.records, id)
		pruned++
	}

	return pruned, nil
}

// Wait blocks until all in-flight transfers finish. Used in tests and
// during shutdown.
func (m *Manager) Wait() {
	m.wg.Wait()
}
