package backup

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/azcoov/push/internal/database"
)

// mockS3Client implements s3Client for testing.
type mockS3Client struct {
	mu      sync.Mutex
	objects map[string][]byte
	modded  map[string]time.Time
	putErr  error
}

func newMockS3() *mockS3Client {
	return &mockS3Client{
		objects: make(map[string][]byte),
		modded:  make(map[string]time.Time),
	}
}

func (m *mockS3Client) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, _ := io.ReadAll(input.Body)
	m.objects[*input.Key] = data
	m.modded[*input.Key] = time.Now().UTC()
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3Client) GetObject(_ context.Context, input *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[*input.Key]
	if !ok {
		return nil, &s3NotFound{}
	}
	return &s3.GetObjectOutput{
		Body: io.NopCloser(strings.NewReader(string(data))),
	}, nil
}

func (m *mockS3Client) DeleteObject(_ context.Context, input *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, *input.Key)
	delete(m.modded, *input.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func (m *mockS3Client) ListObjectsV2(_ context.Context, input *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := &s3.ListObjectsV2Output{}
	for key := range m.objects {
		if input.Prefix != nil && !strings.HasPrefix(key, *input.Prefix) {
			continue
		}
		mod := m.modded[key]
		out.Contents = append(out.Contents, types.Object{
			Key:          aws.String(key),
			LastModified: &mod,
		})
	}
	return out, nil
}

type s3NotFound struct{}

func (e *s3NotFound) Error() string { return "NoSuchKey" }

func testConfig() Config {
	return Config{
		Bucket:     "test",
		AccessKey:  "key",
		SecretKey:  "secret",
		Passphrase: "backup-passphrase",
	}
}

func testManager(t *testing.T, mock *mockS3Client) *Manager {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "push.db")
	db, err := database.Open(dbPath)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	m := NewManager(testConfig(), db, dbPath, slog.New(slog.DiscardHandler))
	m.client = mock
	return m
}

func TestNewManagerDisabledWithoutConfig(t *testing.T) {
	if m := NewManager(Config{}, nil, "", nil); m != nil {
		t.Error("expected nil manager for empty config")
	}
	if m := NewManager(Config{Bucket: "b", AccessKey: "k", SecretKey: "s"}, nil, "", nil); m != nil {
		t.Error("expected nil manager without passphrase")
	}
}

func TestRunNowUploadsEncryptedSnapshot(t *testing.T) {
	mock := newMockS3()
	m := testManager(t, mock)

	key, err := m.RunNow(context.Background())
	if err != nil {
		t.Fatalf("run backup: %v", err)
	}
	if !strings.HasPrefix(key, keyPrefix) {
		t.Errorf("key = %q, want %q prefix", key, keyPrefix)
	}

	mock.mu.Lock()
	data, ok := mock.objects[key]
	mock.mu.Unlock()
	if !ok {
		t.Fatal("snapshot not uploaded")
	}
	if len(data) <= saltSize+nonceSize {
		t.Errorf("snapshot is %d bytes, too small to be a real ciphertext", len(data))
	}
	// A sqlite file starts with the magic "SQLite format 3"; the upload
	// must not.
	if strings.HasPrefix(string(data), "SQLite format 3") {
		t.Error("uploaded snapshot is not encrypted")
	}
}

func TestRestoreRoundTrip(t *testing.T) {
	mock := newMockS3()
	m := testManager(t, mock)

	if _, err := m.db.Exec(
		`INSERT INTO users (uid, email, publishable_key, secret_key) VALUES (?, ?, ?, ?)`,
		"acct_123", "a@example.com", "pk", "sk",
	); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	key, err := m.RunNow(context.Background())
	if err != nil {
		t.Fatalf("run backup: %v", err)
	}

	// Restore into a fresh path and verify the row survived.
	restorePath := filepath.Join(t.TempDir(), "restored.db")
	r := &Manager{cfg: testConfig(), dbPath: restorePath, client: mock, logger: m.logger}
	if err := r.Restore(context.Background(), key); err != nil {
		t.Fatalf("restore: %v", err)
	}

	restored, err := database.Open(restorePath)
	if err != nil {
		t.Fatalf("open restored db: %v", err)
	}
	defer restored.Close()

	var uid string
	if err := restored.QueryRow(`SELECT uid FROM users`).Scan(&uid); err != nil {
		t.Fatalf("query restored db: %v", err)
	}
	if uid != "acct_123" {
		t.Errorf("uid = %q, want acct_123", uid)
	}
}

func TestRestoreWrongPassphrase(t *testing.T) {
	mock := newMockS3()
	m := testManager(t, mock)

	key, err := m.RunNow(context.Background())
	if err != nil {
		t.Fatalf("run backup: %v", err)
	}

	cfg := testConfig()
	cfg.Passphrase = "wrong"
	r := &Manager{cfg: cfg, dbPath: filepath.Join(t.TempDir(), "restored.db"), client: mock, logger: m.logger}
	if err := r.Restore(context.Background(), key); err == nil {
		t.Fatal("expected error restoring with wrong passphrase")
	}
}

func TestCleanupDeletesOnlyExpiredSnapshots(t *testing.T) {
	mock := newMockS3()
	m := testManager(t, mock)
	m.cfg.RetentionDays = 7

	now := time.Now().UTC()
	mock.objects[keyPrefix+"backup-old.db.enc"] = []byte("old")
	mock.modded[keyPrefix+"backup-old.db.enc"] = now.AddDate(0, 0, -10)
	mock.objects[keyPrefix+"backup-new.db.enc"] = []byte("new")
	mock.modded[keyPrefix+"backup-new.db.enc"] = now.AddDate(0, 0, -1)
	mock.objects["other/file"] = []byte("unrelated")
	mock.modded["other/file"] = now.AddDate(0, 0, -100)

	if err := m.Cleanup(context.Background()); err != nil {
		t.Fatalf("cleanup: %v", err)
	}

	mock.mu.Lock()
	defer mock.mu.Unlock()
	if _, ok := mock.objects[keyPrefix+"backup-old.db.enc"]; ok {
		t.Error("expired snapshot not deleted")
	}
	if _, ok := mock.objects[keyPrefix+"backup-new.db.enc"]; !ok {
		t.Error("recent snapshot deleted")
	}
	if _, ok := mock.objects["other/file"]; !ok {
		t.Error("object outside the snapshot prefix deleted")
	}
}

func TestManagerStopSafety(t *testing.T) {
	mock := newMockS3()
	m := testManager(t, mock)

	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx)
	time.Sleep(50 * time.Millisecond)
	cancel()
	m.Stop()

	// Double stop should not panic
	m.Stop()
}
