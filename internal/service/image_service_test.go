package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/autocare/autocare-api/pkg/jobs"
)

type memoryStore struct {
	saved     map[string][]byte
	deleted   []string
	saveErr   error
	deleteErr error
}

func (m *memoryStore) SaveStream(filename string, r io.Reader) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if m.saved == nil {
		m.saved = map[string][]byte{}
	}
	m.saved[filename] = data
	return "/images/" + filename, nil
}

func (m *memoryStore) Delete(path string) error {
	m.deleted = append(m.deleted, path)
	return m.deleteErr
}

// fileHeader builds a real multipart header the way gin hands it to handlers.
func fileHeader(t *testing.T, field, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(&body, writer.Boundary()).ReadForm(int64(len(content)) + 1024)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File[field][0]
}

func TestImageServiceSave(t *testing.T) {
	store := &memoryStore{}
	svc := NewImageService(store, 1024, zap.NewNop())

	path, err := svc.Save("image", fileHeader(t, "image", "Front.PNG", []byte("png-bytes")))
	require.NoError(t, err)
	require.NotNil(t, path)
	assert.True(t, strings.HasPrefix(*path, "/images/"))
	assert.True(t, strings.HasSuffix(*path, ".png"))
	assert.NotContains(t, *path, "Front")
	require.Len(t, store.saved, 1)
	for _, data := range store.saved {
		assert.Equal(t, []byte("png-bytes"), data)
	}
}

func TestImageServiceSaveNil(t *testing.T) {
	svc := NewImageService(&memoryStore{}, 0, nil)

	path, err := svc.Save("image", nil)
	require.NoError(t, err)
	assert.Nil(t, path)
}

func TestImageServiceValidate(t *testing.T) {
	svc := NewImageService(&memoryStore{}, 4, zap.NewNop())

	err := svc.Validate("image", fileHeader(t, "image", "doc.pdf", []byte("x")))
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, statusOf(err))

	err = svc.Validate("image_before", fileHeader(t, "image_before", "big.jpg", []byte("too large")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "image_before")

	assert.NoError(t, svc.Validate("image", fileHeader(t, "image", "ok.webp", []byte("ok"))))
}

func TestImageServiceSaveStoreFailure(t *testing.T) {
	svc := NewImageService(&memoryStore{saveErr: errors.New("disk full")}, 0, zap.NewNop())

	_, err := svc.Save("image", fileHeader(t, "image", "a.jpg", []byte("x")))
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, statusOf(err))
}

func TestImageServiceRemoveSwallowsErrors(t *testing.T) {
	store := &memoryStore{deleteErr: errors.New("gone")}
	svc := NewImageService(store, 0, zap.NewNop())
	path := "/images/a.jpg"

	svc.Remove(&path)
	svc.Remove(nil)
	empty := ""
	svc.Remove(&empty)
	assert.Equal(t, []string{"/images/a.jpg"}, store.deleted)
}

type recordingQueue struct {
	jobs []jobs.Job
	err  error
}

func (q *recordingQueue) Enqueue(job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func TestImageServiceRemoveUsesCleanupQueue(t *testing.T) {
	store := &memoryStore{}
	queue := &recordingQueue{}
	svc := NewImageService(store, 0, zap.NewNop())
	svc.UseCleanupQueue(queue)
	path := "/images/a.jpg"

	svc.Remove(&path)
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, ImageCleanupKind, queue.jobs[0].Kind)
	assert.Empty(t, store.deleted)

	require.NoError(t, svc.HandleCleanup(context.Background(), queue.jobs[0]))
	assert.Equal(t, []string{"/images/a.jpg"}, store.deleted)
}

func TestImageServiceRemoveFallsBackWhenQueueRejects(t *testing.T) {
	store := &memoryStore{}
	svc := NewImageService(store, 0, zap.NewNop())
	svc.UseCleanupQueue(&recordingQueue{err: jobs.ErrQueueFull})
	path := "/images/b.jpg"

	svc.Remove(&path)
	assert.Equal(t, []string{"/images/b.jpg"}, store.deleted)
}
