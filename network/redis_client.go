package network

import (
	"errors"
	"fmt"

	"github.com/go-redis/redis/v7"
	"github.com/medialoom/media-services/models/service"
)

// ErrNotFound is returned by MetadataStore.LookupFile when no record
// exists for a code. Callers translate this to their own not-found
// error kind; nothing outside this package should test for redis.Nil.
var ErrNotFound = errors.New("no metadata record for code")

// MetadataStore is the durable mapping from code to remote location.
// Defined as an interface so the upload and cache packages can be
// tested against a fake.
type MetadataStore interface {
	SaveFile(item *service.StoredItem) error
	LookupFile(code string) (*service.StoredItem, error)
}

type RedisClient struct {
	client *redis.Client
}

func NewRedisClient(address, password string, db int) *RedisClient {
	return &RedisClient{
		client: redis.NewClient(&redis.Options{
			Addr:     address,
			Password: password,
			DB:       db,
		}),
	}
}

func (c *RedisClient) Ping() (string, error) {
	return c.client.Ping().Result()
}

// SaveFile persists the StoredItem under its code. Codes are never
// reassigned, so an existing record is never overwritten; attempting
// to save a duplicate code is an error.
func (c *RedisClient) SaveFile(item *service.StoredItem) error {
	key := fileKey(item.Code)
	jsonData, err := item.ToJson()
	if err != nil {
		return err
	}
	saved, err := c.client.SetNX(key, jsonData, 0).Result()
	if err != nil {
		return fmt.Errorf("SaveFile (%s): %s", item.Code, err.Error())
	}
	if !saved {
		return fmt.Errorf("SaveFile (%s): code already exists", item.Code)
	}
	return nil
}

// LookupFile returns the StoredItem for code, or ErrNotFound.
func (c *RedisClient) LookupFile(code string) (*service.StoredItem, error) {
	data, err := c.client.Get(fileKey(code)).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("LookupFile (%s): %s", code, err.Error())
	}
	return service.StoredItemFromJson(data)
}

func fileKey(code string) string {
	return fmt.Sprintf("file:%s", code)
}
