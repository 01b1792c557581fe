package upload_test

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/medialoom/media-services/constants"
	"github.com/medialoom/media-services/models/common"
	"github.com/medialoom/media-services/models/service"
	"github.com/medialoom/media-services/network"
	"github.com/medialoom/media-services/upload"
	"github.com/op/go-logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = logging.MustGetLogger("upload_test")

type fakeMetadata struct {
	items map[string]*service.StoredItem
	err   error
}

func (m *fakeMetadata) SaveFile(item *service.StoredItem) error {
	if m.err != nil {
		return m.err
	}
	m.items[item.Code] = item
	return nil
}

func (m *fakeMetadata) LookupFile(code string) (*service.StoredItem, error) {
	item, ok := m.items[code]
	if !ok {
		return nil, network.ErrNotFound
	}
	return item, nil
}

type fakeRemote struct {
	putContent  []byte
	putType     string
	putCalls    int
	err         error
	lastMessage string
}

func (r *fakeRemote) Put(ctx context.Context, localPath, declaredType string) (*network.RemoteHandle, error) {
	r.putCalls++
	if r.err != nil {
		return nil, r.err
	}
	data, err := os.ReadFile(localPath)
	if err != nil {
		return nil, err
	}
	r.putContent = data
	r.putType = declaredType
	r.lastMessage = fmt.Sprintf("msg-%d", r.putCalls)
	return &network.RemoteHandle{
		ChannelID: "channel-1",
		Kind:      network.MediaKindFor(declaredType),
		MessageID: r.lastMessage,
		Size:      int64(len(data)),
	}, nil
}

func (r *fakeRemote) FetchHandle(ctx context.Context, channelID, messageID string) (*network.RemoteHandle, error) {
	return nil, fmt.Errorf("not implemented")
}

func (r *fakeRemote) Download(ctx context.Context, handle *network.RemoteHandle, destPath string) (string, error) {
	return "", fmt.Errorf("not implemented")
}

func newTestPipeline(t *testing.T, maxSize int64, metadata *fakeMetadata, remote *fakeRemote) (*upload.Pipeline, string) {
	tempDir := t.TempDir()
	pipeline := upload.NewPipeline(tempDir, maxSize, constants.AllowedExtensions, metadata, remote, testLogger)
	return pipeline, tempDir
}

func assertTempDirEmpty(t *testing.T, tempDir string) {
	entries, err := os.ReadDir(tempDir)
	require.Nil(t, err)
	assert.Empty(t, entries)
}

func TestProcessUpload(t *testing.T) {
	metadata := &fakeMetadata{items: map[string]*service.StoredItem{}}
	remote := &fakeRemote{}
	pipeline, tempDir := newTestPipeline(t, 1024, metadata, remote)

	content := []byte("a small jpeg, allegedly")
	item, err := pipeline.ProcessUpload(context.Background(),
		bytes.NewReader(content), "holiday photo.JPG", "image/jpeg")
	require.Nil(t, err)
	require.NotNil(t, item)

	assert.NotEmpty(t, item.Code)
	assert.Equal(t, "jpg", item.Extension)
	assert.Equal(t, "channel-1", item.ChannelID)
	assert.Equal(t, remote.lastMessage, item.MessageID)
	assert.EqualValues(t, len(content), item.Size)
	assert.Equal(t, content, remote.putContent)
	assert.Equal(t, "image/jpeg", remote.putType)

	saved, lookupErr := metadata.LookupFile(item.Code)
	require.Nil(t, lookupErr)
	assert.Equal(t, item.MessageID, saved.MessageID)

	assertTempDirEmpty(t, tempDir)
}

func TestProcessUploadInvalidName(t *testing.T) {
	metadata := &fakeMetadata{items: map[string]*service.StoredItem{}}
	remote := &fakeRemote{}
	pipeline, tempDir := newTestPipeline(t, 1024, metadata, remote)

	_, err := pipeline.ProcessUpload(context.Background(),
		strings.NewReader("data"), "", "image/jpeg")
	require.NotNil(t, err)
	assert.Equal(t, common.KindInvalidInput, err.Kind)

	_, err = pipeline.ProcessUpload(context.Background(),
		strings.NewReader("data"), "malware.exe", "application/octet-stream")
	require.NotNil(t, err)
	assert.Equal(t, common.KindInvalidInput, err.Kind)

	assert.Equal(t, 0, remote.putCalls)
	assertTempDirEmpty(t, tempDir)
}

func TestProcessUploadSizeBoundary(t *testing.T) {
	metadata := &fakeMetadata{items: map[string]*service.StoredItem{}}
	remote := &fakeRemote{}
	maxSize := int64(4096)
	pipeline, tempDir := newTestPipeline(t, maxSize, metadata, remote)

	// Exactly at the limit succeeds.
	item, err := pipeline.ProcessUpload(context.Background(),
		bytes.NewReader(make([]byte, maxSize)), "exact.pdf", "application/pdf")
	require.Nil(t, err)
	assert.EqualValues(t, maxSize, item.Size)
	assertTempDirEmpty(t, tempDir)

	// One byte over fails, and the partial temp file is cleaned up.
	_, err = pipeline.ProcessUpload(context.Background(),
		bytes.NewReader(make([]byte, maxSize+1)), "over.pdf", "application/pdf")
	require.NotNil(t, err)
	assert.Equal(t, common.KindPayloadTooLarge, err.Kind)
	assert.Equal(t, 1, remote.putCalls)
	assertTempDirEmpty(t, tempDir)
}

func TestProcessUploadRemoteFailure(t *testing.T) {
	metadata := &fakeMetadata{items: map[string]*service.StoredItem{}}
	remote := &fakeRemote{err: fmt.Errorf("channel unreachable")}
	pipeline, tempDir := newTestPipeline(t, 1024, metadata, remote)

	_, err := pipeline.ProcessUpload(context.Background(),
		strings.NewReader("data"), "photo.png", "image/png")
	require.NotNil(t, err)
	assert.Equal(t, common.KindRemoteUnavailable, err.Kind)

	// Remote put failed, so no metadata record may exist.
	assert.Empty(t, metadata.items)
	assertTempDirEmpty(t, tempDir)
}

func TestProcessUploadMetadataFailure(t *testing.T) {
	metadata := &fakeMetadata{
		items: map[string]*service.StoredItem{},
		err:   fmt.Errorf("redis: connection pool exhausted"),
	}
	remote := &fakeRemote{}
	pipeline, tempDir := newTestPipeline(t, 1024, metadata, remote)

	_, err := pipeline.ProcessUpload(context.Background(),
		strings.NewReader("data"), "photo.png", "image/png")
	require.NotNil(t, err)
	assert.Equal(t, common.KindInternal, err.Kind)
	assertTempDirEmpty(t, tempDir)
}
