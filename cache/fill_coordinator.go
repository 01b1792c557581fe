package cache

import (
	"context"
	"errors"

	"github.com/medialoom/media-services/models/common"
	"github.com/medialoom/media-services/network"
	"github.com/medialoom/media-services/util"
	"github.com/op/go-logging"
	"golang.org/x/sync/singleflight"
)

// FillCoordinator resolves a public file name to a readable cache
// path, downloading from the remote channel on a miss. Concurrent
// requests for the same name share one download: the flight group
// collapses them onto a single fill, and no waiter is released until
// the entry is fully visible under its final name.
type FillCoordinator struct {
	Cache    *DiskCache
	Logger   *logging.Logger
	Metadata network.MetadataStore
	Remote   network.RemoteStore

	group singleflight.Group
}

func NewFillCoordinator(cache *DiskCache, metadata network.MetadataStore, remote network.RemoteStore, logger *logging.Logger) *FillCoordinator {
	return &FillCoordinator{
		Cache:    cache,
		Logger:   logger,
		Metadata: metadata,
		Remote:   remote,
	}
}

// Resolve returns the local path holding the bytes for name, filling
// the cache from the remote store if needed. Errors carry the kind
// the request boundary needs: invalid names never reach the
// filesystem, unknown codes are not-found, and remote trouble is
// classified by which call failed.
func (c *FillCoordinator) Resolve(ctx context.Context, name string) (string, *common.Error) {
	code, ext, err := util.ParseLink(name)
	if err != nil {
		return "", common.NewError(common.KindInvalidInput, "Invalid file name", err)
	}
	if c.Cache.Contains(name) {
		return c.Cache.Path(name), nil
	}
	path, err, shared := c.group.Do(name, func() (interface{}, error) {
		return c.fill(ctx, name, code, ext)
	})
	if err != nil {
		return "", common.AsError(err)
	}
	if shared {
		c.Logger.Debugf("Cache fill for %s was shared with concurrent requests", name)
	}
	return path.(string), nil
}

func (c *FillCoordinator) fill(ctx context.Context, name, code, ext string) (string, error) {
	// A request that lost the race to an earlier flight may enter
	// here after that flight already populated the entry.
	if c.Cache.Contains(name) {
		return c.Cache.Path(name), nil
	}
	item, err := c.Metadata.LookupFile(code)
	if err != nil {
		if errors.Is(err, network.ErrNotFound) {
			return "", common.NewError(common.KindNotFound, "File not found", err)
		}
		return "", common.NewError(common.KindInternal, "Could not look up file", err)
	}
	if item.Extension != ext {
		// The code exists but was stored under a different
		// extension; the requested name names nothing.
		return "", common.NewError(common.KindNotFound, "File not found", nil)
	}
	handle, err := c.Remote.FetchHandle(ctx, item.ChannelID, item.MessageID)
	if err != nil {
		return "", common.NewError(common.KindRemoteUnavailable, "Remote store unavailable", err)
	}
	err = c.Cache.Populate(name, func(partialPath string) error {
		_, derr := c.Remote.Download(ctx, handle, partialPath)
		return derr
	})
	if err != nil {
		return "", common.NewError(common.KindRemoteDownloadFailed, "Could not retrieve file from remote store", err)
	}
	c.Logger.Infof("Filled cache entry %s from channel %s message %s",
		name, item.ChannelID, item.MessageID)
	return c.Cache.Path(name), nil
}
