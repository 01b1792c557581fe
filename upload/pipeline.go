package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/medialoom/media-services/constants"
	"github.com/medialoom/media-services/models/common"
	"github.com/medialoom/media-services/models/service"
	"github.com/medialoom/media-services/network"
	"github.com/medialoom/media-services/util"
	"github.com/op/go-logging"
)

// Pipeline moves one inbound file to the remote channel: stage to a
// private temp file with the size limit enforced as bytes arrive,
// send to the channel, then record the metadata. The remote put
// always happens before the metadata save, so no code ever points at
// bytes that are not durably stored. The temp file is removed on
// every exit path.
type Pipeline struct {
	AllowedExtensions []string
	Logger            *logging.Logger
	MaxFileSize       int64
	Metadata          network.MetadataStore
	Remote            network.RemoteStore
	TempDir           string
}

func NewPipeline(tempDir string, maxFileSize int64, allowedExtensions []string, metadata network.MetadataStore, remote network.RemoteStore, logger *logging.Logger) *Pipeline {
	return &Pipeline{
		AllowedExtensions: allowedExtensions,
		Logger:            logger,
		MaxFileSize:       maxFileSize,
		Metadata:          metadata,
		Remote:            remote,
		TempDir:           tempDir,
	}
}

// ProcessUpload runs the whole upload and returns the StoredItem the
// caller builds the public link from.
func (p *Pipeline) ProcessUpload(ctx context.Context, stream io.Reader, declaredName, declaredType string) (*service.StoredItem, *common.Error) {
	if declaredName == "" {
		return nil, common.NewError(common.KindInvalidInput, "Invalid file", nil)
	}
	ext := util.ExtensionOf(declaredName)
	if !util.IsAllowedExtension(p.AllowedExtensions, ext) {
		return nil, common.NewError(common.KindInvalidInput, "Unsupported file type", nil)
	}

	tempPath := filepath.Join(p.TempDir, fmt.Sprintf("%s.%s", uuid.New().String(), ext))
	defer func() {
		err := os.Remove(tempPath)
		if err != nil && !os.IsNotExist(err) {
			p.Logger.Errorf("Could not remove temp file %s: %v", tempPath, err)
		}
	}()

	size, svcErr := p.stage(stream, tempPath)
	if svcErr != nil {
		return nil, svcErr
	}

	handle, err := p.Remote.Put(ctx, tempPath, declaredType)
	if err != nil {
		return nil, common.NewError(common.KindRemoteUnavailable, "Failed to upload to remote store", err)
	}

	item := service.NewStoredItem(util.NewCode(), handle.ChannelID, handle.MessageID, ext, size)
	err = p.Metadata.SaveFile(item)
	if err != nil {
		// The remote blob is orphaned now. That's acceptable: the
		// channel is append-only cold storage and the upload as a
		// whole still fails.
		p.Logger.Errorf("Remote message %s saved but metadata write failed: %v",
			handle.MessageID, err)
		return nil, common.NewError(common.KindInternal, "Could not record file metadata", err)
	}
	p.Logger.Infof("Uploaded %s (%d bytes) as code %s", declaredName, size, item.Code)
	return item, nil
}

// stage copies the stream to tempPath in fixed-size chunks, counting
// bytes as they arrive. The limit check runs before each chunk is
// persisted, so a single oversized upload can never consume unbounded
// disk: the copy aborts on the first chunk that would cross the line.
func (p *Pipeline) stage(stream io.Reader, tempPath string) (int64, *common.Error) {
	out, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return 0, common.NewError(common.KindInternal, "Could not create temp file", err)
	}
	defer out.Close()

	var size int64
	buf := make([]byte, constants.UploadChunkSize)
	for {
		n, readErr := stream.Read(buf)
		if n > 0 {
			size += int64(n)
			if size > p.MaxFileSize {
				return size, common.NewError(common.KindPayloadTooLarge, "File too large", nil)
			}
			_, writeErr := out.Write(buf[:n])
			if writeErr != nil {
				return size, common.NewError(common.KindInternal, "Could not write temp file", writeErr)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return size, common.NewError(common.KindInternal, "Could not read upload stream", readErr)
		}
	}
	return size, nil
}
