package storage

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

type recordedPut struct {
	method        string
	path          string
	acl           string
	contentType   string
	contentLength int64
	body          []byte
}

// fakeS3 answers PutObject requests and records what it received.
type fakeS3 struct {
	mu     sync.Mutex
	puts   []recordedPut
	status int
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.puts = append(f.puts, recordedPut{
		method:        r.Method,
		path:          r.URL.Path,
		acl:           r.Header.Get("X-Amz-Acl"),
		contentType:   r.Header.Get("Content-Type"),
		contentLength: r.ContentLength,
		body:          body,
	})
	status := f.status
	f.mu.Unlock()

	if status != 0 {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
	w.WriteHeader(http.StatusOK)
}

func newTestS3(t *testing.T, fake *fakeS3) *S3Store {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client := s3.New(s3.Options{
		Region:                     "us-east-1",
		Credentials:                credentials.NewStaticCredentialsProvider("key", "secret", ""),
		BaseEndpoint:               aws.String(srv.URL),
		UsePathStyle:               true,
		RetryMaxAttempts:           1,
		RequestChecksumCalculation: aws.RequestChecksumCalculationWhenRequired,
	})
	return NewS3(client, "avatars", "", testLogger())
}

func TestS3PutSendsPublicReadObject(t *testing.T) {
	fake := &fakeS3{}
	store := newTestS3(t, fake)

	data := []byte("\x89PNG fake payload")
	err := store.Put(context.Background(), "abc.png_resized", bytes.NewReader(data), "image/png", int64(len(data)))
	require.NoError(t, err)

	require.Len(t, fake.puts, 1)
	put := fake.puts[0]
	assert.Equal(t, http.MethodPut, put.method)
	assert.Equal(t, "/avatars/abc.png_resized", put.path)
	assert.Equal(t, "public-read", put.acl)
	assert.Equal(t, "image/png", put.contentType)
	assert.Equal(t, int64(len(data)), put.contentLength)
	assert.Equal(t, data, put.body)
}

func TestS3PutFailsOnce(t *testing.T) {
	fake := &fakeS3{status: http.StatusForbidden}
	store := newTestS3(t, fake)

	err := store.Put(context.Background(), "abc.png", bytes.NewReader([]byte("x")), "image/png", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "avatars/abc.png")
	assert.Len(t, fake.puts, 1)
}

func TestS3URL(t *testing.T) {
	client := s3.New(s3.Options{Region: "us-east-1"})

	store := NewS3(client, "avatars", "", testLogger())
	assert.Equal(t, "https://avatars.s3.amazonaws.com/abc.JPG", store.URL("abc.JPG"))
	assert.Equal(t, store.URL("abc.JPG"), store.URL("abc.JPG"))

	store = NewS3(client, "avatars", "https://pub-123.r2.dev/", testLogger())
	assert.Equal(t, "https://pub-123.r2.dev/abc.JPG_resized", store.URL("abc.JPG_resized"))
	assert.Equal(t, "https://pub-123.r2.dev/my%20photo.png", store.URL("my photo.png"))

	store = NewS3(client, "avatars", "https://pub-123.r2.dev/%s", testLogger())
	assert.Equal(t, "https://pub-123.r2.dev/abc.JPG", store.URL("abc.JPG"))
}

func TestURLAcceptsFormatStringBase(t *testing.T) {
	for _, base := range []string{
		"https://pub.r2.dev",
		"https://pub.r2.dev/",
		"https://pub.r2.dev/%s",
		"https://pub.r2.dev%s",
	} {
		assert.Equal(t, "https://pub.r2.dev/a.jpg", NewMemory(base).URL("a.jpg"), base)
	}
	assert.Equal(t, "https://cdn.example.com/avatars/a.jpg", NewMemory("https://cdn.example.com/avatars/%s").URL("a.jpg"))
}

func TestMemoryPut(t *testing.T) {
	m := NewMemory("http://localhost:3000/objects")
	ctx := context.Background()

	require.NoError(t, m.Put(ctx, "b.png", bytes.NewReader([]byte("one")), "image/png", 3))
	require.NoError(t, m.Put(ctx, "a.jpg", bytes.NewReader([]byte("two!")), "image/jpeg", 4))
	require.NoError(t, m.Put(ctx, "b.png", bytes.NewReader([]byte("three")), "image/png", 5))

	assert.Equal(t, []string{"a.jpg", "b.png"}, m.Keys())
	obj, ok := m.Get("b.png")
	require.True(t, ok)
	assert.Equal(t, []byte("three"), obj.Data)
	assert.Equal(t, ACLPublicRead, obj.ACL)
	assert.Equal(t, "http://localhost:3000/objects/a.jpg", m.URL("a.jpg"))
}

func TestMemoryPutRejectsSizeMismatch(t *testing.T) {
	m := NewMemory("")
	err := m.Put(context.Background(), "a.jpg", bytes.NewReader([]byte("abc")), "image/jpeg", 10)
	assert.Error(t, err)
	assert.Empty(t, m.Keys())
}
