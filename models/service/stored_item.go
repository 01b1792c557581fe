package service

import (
	"encoding/json"
	"fmt"
	"time"
)

// StoredItem maps a short public code to the remote location of one
// uploaded file. The record is immutable once saved: codes are never
// reassigned, and the remote channel is append-only cold storage.
type StoredItem struct {
	ChannelID string    `json:"channel_id"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	Extension string    `json:"extension"`
	MessageID string    `json:"message_id"`
	Size      int64     `json:"size,omitempty"`
}

func NewStoredItem(code, channelID, messageID, extension string, size int64) *StoredItem {
	return &StoredItem{
		ChannelID: channelID,
		Code:      code,
		CreatedAt: time.Now().UTC(),
		Extension: extension,
		MessageID: messageID,
		Size:      size,
	}
}

func StoredItemFromJson(jsonData string) (*StoredItem, error) {
	item := &StoredItem{}
	err := json.Unmarshal([]byte(jsonData), item)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (item *StoredItem) ToJson() (string, error) {
	data, err := json.Marshal(item)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// FileName returns the public name under which the item is cached
// and served.
func (item *StoredItem) FileName() string {
	return fmt.Sprintf("%s.%s", item.Code, item.Extension)
}
