package common_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/medialoom/media-services/models/common"
	"github.com/stretchr/testify/assert"
)

func TestErrorHTTPStatus(t *testing.T) {
	statuses := map[common.Kind]int{
		common.KindInvalidInput:         http.StatusBadRequest,
		common.KindPayloadTooLarge:      http.StatusRequestEntityTooLarge,
		common.KindNotFound:             http.StatusNotFound,
		common.KindRemoteUnavailable:    http.StatusInternalServerError,
		common.KindRemoteDownloadFailed: http.StatusInternalServerError,
		common.KindInternal:             http.StatusInternalServerError,
	}
	for kind, expected := range statuses {
		err := common.NewError(kind, "message", nil)
		assert.Equal(t, expected, err.HTTPStatus())
	}
}

func TestErrorDetail(t *testing.T) {
	underlying := fmt.Errorf("dial tcp: connection refused")
	err := common.NewError(common.KindRemoteUnavailable, "Remote store unavailable", underlying)
	assert.Equal(t, "Remote store unavailable", err.Error())
	assert.Contains(t, err.Detail(), "connection refused")
	assert.Equal(t, underlying, err.Unwrap())

	bare := common.NewError(common.KindNotFound, "File not found", nil)
	assert.Equal(t, "File not found", bare.Detail())
	assert.Nil(t, bare.Unwrap())
}

func TestAsError(t *testing.T) {
	kinded := common.NewError(common.KindNotFound, "File not found", nil)
	assert.Equal(t, kinded, common.AsError(kinded))

	wrapped := fmt.Errorf("handler: %w", kinded)
	assert.Equal(t, common.KindNotFound, common.AsError(wrapped).Kind)

	plain := fmt.Errorf("something broke in /var/lib/medialoom")
	asErr := common.AsError(plain)
	assert.Equal(t, common.KindInternal, asErr.Kind)
	assert.Equal(t, "Internal server error", asErr.Error())
	assert.Equal(t, plain, asErr.Unwrap())
}
