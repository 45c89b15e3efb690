package backup

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dukerupert/tidyroom/internal/config"
	"github.com/dukerupert/tidyroom/internal/store"
)

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// State represents the backup manager state.
type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateDisabled State = "disabled"
	StateError    State = "error"
)

// Status holds the current backup manager status.
type Status struct {
	State      State      `json:"state"`
	LastBackup *time.Time `json:"last_backup,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// Manager takes periodic encrypted snapshots of the database and ships them
// to S3-compatible storage. The passphrase never leaves memory; each
// snapshot carries its own random salt in the file header.
type Manager struct {
	mu     sync.RWMutex
	cfg    config.BackupConfig
	dbPath string
	status Status

	db       *sql.DB
	backups  *store.BackupStore
	families *store.FamilyStore
	client   s3Client
	logger   *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// NewManager creates a backup manager. It is disabled until the config
// carries a bucket, credentials, and a passphrase.
func NewManager(cfg config.BackupConfig, dbPath string, db *sql.DB, logger *slog.Logger) *Manager {
	m := &Manager{
		cfg:      cfg,
		dbPath:   dbPath,
		db:       db,
		backups:  store.NewBackupStore(db),
		families: store.NewFamilyStore(db),
		logger:   logger.With("component", "backup"),
		status:   Status{State: StateDisabled},
	}

	if cfg.Enabled && cfg.Bucket != "" && cfg.AccessKey != "" && cfg.SecretKey != "" && cfg.Passphrase != "" {
		m.client = newS3Client(cfg)
		m.status.State = StateIdle
	}

	return m
}

func newS3Client(cfg config.BackupConfig) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Start begins the scheduled backup loop.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	if m.status.State == StateDisabled {
		m.mu.Unlock()
		return
	}
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	m.mu.Unlock()

	go func() {
		defer close(m.done)
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.checkSchedule(ctx)
			}
		}
	}()
}

// Stop gracefully stops the backup manager.
func (m *Manager) Stop() {
	m.mu.RLock()
	cancel := m.cancel
	done := m.done
	m.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Status returns the current backup status.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Manager) setStatus(s Status) {
	m.mu.Lock()
	m.status = s
	m.mu.Unlock()
}

func (m *Manager) checkSchedule(ctx context.Context) {
	latest, err := m.backups.LatestAt()
	if err != nil {
		m.logger.Error("check last backup", "error", err)
		return
	}
	if time.Since(latest) < m.cfg.Interval {
		return
	}

	family, err := m.families.First()
	if err != nil || family == nil {
		return
	}

	if _, err := m.RunNow(ctx, family.ID); err != nil {
		m.logger.Error("scheduled backup", "error", err)
	}
}

// RunNow takes a snapshot, encrypts it, and uploads it immediately. Returns
// the backup record ID.
func (m *Manager) RunNow(ctx context.Context, familyID string) (string, error) {
	m.mu.RLock()
	client := m.client
	m.mu.RUnlock()
	if client == nil {
		return "", fmt.Errorf("backup not configured")
	}

	m.setStatus(Status{State: StateRunning})

	timestamp := time.Now().UTC().Format("2006-01-02T150405Z")
	filename := fmt.Sprintf("tidyroom-%s.db.enc", timestamp)
	s3Key := fmt.Sprintf("%s/%s", familyID, filename)

	record, err := m.backups.Create(familyID, filename, s3Key)
	if err != nil {
		m.setStatus(Status{State: StateError, Error: err.Error()})
		return "", fmt.Errorf("create backup record: %w", err)
	}

	tmpDir := os.TempDir()
	snapshot := filepath.Join(tmpDir, "tidyroom-snapshot-"+record.ID+".db")
	encFile := filepath.Join(tmpDir, "tidyroom-snapshot-"+record.ID+".db.enc")
	defer os.Remove(snapshot)
	defer os.Remove(encFile)

	// VACUUM INTO produces a consistent single-file snapshot without
	// blocking writers or racing the WAL.
	if _, err := m.db.ExecContext(ctx, "VACUUM INTO ?", snapshot); err != nil {
		return "", m.fail(record.ID, fmt.Errorf("snapshot database: %w", err))
	}

	if err := EncryptFile(snapshot, encFile, m.cfg.Passphrase); err != nil {
		return "", m.fail(record.ID, fmt.Errorf("encrypt snapshot: %w", err))
	}

	encData, err := os.Open(encFile)
	if err != nil {
		return "", m.fail(record.ID, fmt.Errorf("open encrypted file: %w", err))
	}
	defer encData.Close()

	stat, err := encData.Stat()
	if err != nil {
		return "", m.fail(record.ID, fmt.Errorf("stat encrypted file: %w", err))
	}

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(m.cfg.Bucket),
		Key:           aws.String(s3Key),
		Body:          encData,
		ContentLength: aws.Int64(stat.Size()),
	})
	if err != nil {
		return "", m.fail(record.ID, fmt.Errorf("upload to s3: %w", err))
	}

	if err := m.backups.MarkUploaded(record.ID, stat.Size()); err != nil {
		return "", m.fail(record.ID, err)
	}

	if err := m.prune(ctx, familyID); err != nil {
		m.logger.Error("prune old backups", "error", err)
	}

	now := time.Now().UTC()
	m.setStatus(Status{State: StateIdle, LastBackup: &now})
	m.logger.Info("backup uploaded", "key", s3Key, "bytes", stat.Size())

	return record.ID, nil
}

func (m *Manager) fail(recordID string, err error) error {
	if markErr := m.backups.MarkFailed(recordID); markErr != nil {
		m.logger.Error("mark backup failed", "error", markErr)
	}
	m.setStatus(Status{State: StateError, Error: err.Error()})
	return err
}

// prune keeps the newest cfg.Keep uploaded backups and deletes the rest,
// both the S3 object and the record.
func (m *Manager) prune(ctx context.Context, familyID string) error {
	if m.cfg.Keep <= 0 {
		return nil
	}

	uploaded, err := m.backups.ListUploaded(familyID)
	if err != nil {
		return err
	}
	if len(uploaded) <= m.cfg.Keep {
		return nil
	}

	for _, old := range uploaded[m.cfg.Keep:] {
		if _, err := m.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(m.cfg.Bucket),
			Key:    aws.String(old.S3Key),
		}); err != nil {
			m.logger.Error("delete s3 object", "key", old.S3Key, "error", err)
			continue
		}
		if err := m.backups.Delete(old.ID); err != nil {
			return err
		}
	}
	return nil
}

// Download streams an encrypted backup for manual restore.
func (m *Manager) Download(ctx context.Context, familyID, backupID string) (io.ReadCloser, int64, error) {
	m.mu.RLock()
	client := m.client
	m.mu.RUnlock()
	if client == nil {
		return nil, 0, fmt.Errorf("backup not configured")
	}

	uploaded, err := m.backups.ListUploaded(familyID)
	if err != nil {
		return nil, 0, fmt.Errorf("list backups: %w", err)
	}

	var record *store.BackupRecord
	for i := range uploaded {
		if uploaded[i].ID == backupID {
			record = &uploaded[i]
			break
		}
	}
	if record == nil {
		return nil, 0, fmt.Errorf("backup not found")
	}

	result, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(m.cfg.Bucket),
		Key:    aws.String(record.S3Key),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("download from s3: %w", err)
	}

	return result.Body, record.SizeBytes, nil
}

// List returns the uploaded backups for a family, newest first.
func (m *Manager) List(familyID string) ([]store.BackupRecord, error) {
	return m.backups.ListUploaded(familyID)
}
