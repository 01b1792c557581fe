package network

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/medialoom/media-services/constants"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/op/go-logging"
)

// RemoteHandle identifies one stored blob in the remote channel:
// which channel holds it and the message id it was stored under.
type RemoteHandle struct {
	ChannelID string
	Kind      string
	MessageID string
	Size      int64
}

// RemoteStore is the cold-storage channel the relay fronts. Calls are
// slow, rate-limited, and can fail outright; every method is bounded
// by the store's configured timeout. Defined as an interface so the
// upload and cache packages can be tested against a fake, the same
// way we mock the S3 client elsewhere.
type RemoteStore interface {
	// Put sends the file at localPath to the channel, classified by
	// declaredType, and returns a handle for later retrieval. A put
	// either fully succeeds or returns an error; there is no partial
	// success.
	Put(ctx context.Context, localPath, declaredType string) (*RemoteHandle, error)

	// FetchHandle resolves a saved channel/message pair back into a
	// live handle, confirming the blob still exists remotely.
	FetchHandle(ctx context.Context, channelID, messageID string) (*RemoteHandle, error)

	// Download copies the remote blob to destPath and returns the
	// path it wrote.
	Download(ctx context.Context, handle *RemoteHandle, destPath string) (string, error)
}

// MediaKindFor classifies a declared media type into the small set of
// kinds the remote channel understands. Anything unrecognized is sent
// as a generic document, which the channel accepts for any bytes.
func MediaKindFor(declaredType string) string {
	switch {
	case declaredType == "image/gif":
		return constants.KindAnimatedImage
	case strings.HasPrefix(declaredType, "image/"):
		return constants.KindStillImage
	case strings.HasPrefix(declaredType, "video/"):
		return constants.KindVideo
	case strings.HasPrefix(declaredType, "audio/"):
		return constants.KindAudio
	case declaredType == "application/pdf":
		return constants.KindPDFDocument
	default:
		return constants.KindDocument
	}
}

// MinioRemoteStore implements RemoteStore against an S3-compatible
// endpoint. One bucket is the channel; object keys are message ids.
type MinioRemoteStore struct {
	channelID string
	client    *minio.Client
	logger    *logging.Logger
	timeout   time.Duration
}

func NewMinioRemoteStore(host, keyID, secretKey string, useSSL bool, channelID string, timeout time.Duration, logger *logging.Logger) (*MinioRemoteStore, error) {
	client, err := minio.New(
		host,
		&minio.Options{
			Creds:  credentials.NewStaticV4(keyID, secretKey, ""),
			Secure: useSSL,
		})
	if err != nil {
		return nil, fmt.Errorf("Could not initialize remote store client: %v", err)
	}
	return &MinioRemoteStore{
		channelID: channelID,
		client:    client,
		logger:    logger,
		timeout:   timeout,
	}, nil
}

func (s *MinioRemoteStore) Put(ctx context.Context, localPath, declaredType string) (*RemoteHandle, error) {
	ctx, cancel := s.boundedContext(ctx)
	defer cancel()
	kind := MediaKindFor(declaredType)
	messageID := uuid.New().String()
	contentType := declaredType
	if contentType == "" {
		contentType = constants.MediaTypeBinary
	}
	info, err := s.client.FPutObject(
		ctx,
		s.channelID,
		messageID,
		localPath,
		minio.PutObjectOptions{
			ContentType:  contentType,
			UserMetadata: map[string]string{"medialoom-kind": kind},
		})
	if err != nil {
		return nil, fmt.Errorf("Error sending %s to channel %s: %v", kind, s.channelID, err)
	}
	s.logger.Infof("Sent %s (%d bytes) to channel %s as message %s",
		kind, info.Size, s.channelID, messageID)
	return &RemoteHandle{
		ChannelID: s.channelID,
		Kind:      kind,
		MessageID: messageID,
		Size:      info.Size,
	}, nil
}

func (s *MinioRemoteStore) FetchHandle(ctx context.Context, channelID, messageID string) (*RemoteHandle, error) {
	ctx, cancel := s.boundedContext(ctx)
	defer cancel()
	info, err := s.client.StatObject(ctx, channelID, messageID, minio.StatObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("Error fetching message %s from channel %s: %v", messageID, channelID, err)
	}
	return &RemoteHandle{
		ChannelID: channelID,
		Kind:      info.UserMetadata["Medialoom-Kind"],
		MessageID: messageID,
		Size:      info.Size,
	}, nil
}

func (s *MinioRemoteStore) Download(ctx context.Context, handle *RemoteHandle, destPath string) (string, error) {
	ctx, cancel := s.boundedContext(ctx)
	defer cancel()
	err := s.client.FGetObject(ctx, handle.ChannelID, handle.MessageID,
		destPath, minio.GetObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("Error downloading message %s from channel %s: %v",
			handle.MessageID, handle.ChannelID, err)
	}
	return destPath, nil
}

func (s *MinioRemoteStore) boundedContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout > 0 {
		return context.WithTimeout(ctx, s.timeout)
	}
	return context.WithCancel(ctx)
}
