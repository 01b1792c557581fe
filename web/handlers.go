package web

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/medialoom/media-services/constants"
	"github.com/medialoom/media-services/models/common"
	"github.com/medialoom/media-services/util"
)

// mediaTypes maps the extensions we serve to their content types.
// mime.TypeByExtension knows most of these, but its table depends on
// the host's mime.types file, and we don't want a bare container to
// serve mp4 as application/octet-stream.
var mediaTypes = map[string]string{
	"avi":  "video/x-msvideo",
	"gif":  "image/gif",
	"jpeg": "image/jpeg",
	"jpg":  "image/jpeg",
	"mkv":  "video/x-matroska",
	"mov":  "video/quicktime",
	"mp3":  "audio/mpeg",
	"mp4":  "video/mp4",
	"ogg":  "audio/ogg",
	"pdf":  "application/pdf",
	"png":  "image/png",
	"rar":  "application/x-rar-compressed",
	"wav":  "audio/wav",
	"webp": "image/webp",
	"zip":  "application/zip",
}

func mediaTypeFor(ext string) string {
	if mediaType, ok := mediaTypes[ext]; ok {
		return mediaType
	}
	if mediaType := mime.TypeByExtension("." + ext); mediaType != "" {
		return mediaType
	}
	return constants.MediaTypeBinary
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(200, gin.H{"status": "alive", "service": "MediaLoom"})
}

func (s *Server) handleFrontend(c *gin.Context) {
	c.File(filepath.Join(s.config.StaticDir, "index.html"))
}

func (s *Server) handleUpload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		// MaxBytesReader cutting the body off mid-form surfaces
		// here as a multipart parse error; that's a size problem,
		// not a malformed request.
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			s.abortWithError(c, common.NewError(common.KindPayloadTooLarge, "File too large", err))
			return
		}
		s.abortWithError(c, common.NewError(common.KindInvalidInput, "Invalid file", err))
		return
	}
	mediaType := c.PostForm("media_type")
	stream, err := fileHeader.Open()
	if err != nil {
		s.abortWithError(c, common.NewError(common.KindInvalidInput, "Invalid file", err))
		return
	}
	defer stream.Close()

	item, svcErr := s.pipeline.ProcessUpload(
		c.Request.Context(), stream, fileHeader.Filename, mediaType)
	if svcErr != nil {
		s.abortWithError(c, svcErr)
		return
	}
	c.JSON(200, gin.H{
		"status": "success",
		"link":   fmt.Sprintf("%s/file/%s", s.config.BaseURL, item.FileName()),
	})
}

func (s *Server) handleServeFile(c *gin.Context) {
	name := c.Param("name")
	path, svcErr := s.coordinator.Resolve(c.Request.Context(), name)
	if svcErr != nil {
		s.abortWithError(c, svcErr)
		return
	}

	ext := util.ExtensionOf(name)
	mediaType := mediaTypeFor(ext)
	size := util.FileSize(path)

	// Large videos go out as downloads. Streaming them inline means
	// holding long-lived connections open for seek-heavy players;
	// below the threshold, inline playback with range support works
	// fine.
	if strings.HasPrefix(mediaType, "video/") && size > s.config.VideoAttachmentSize {
		c.Header("Content-Type", constants.MediaTypeBinary)
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	} else {
		c.Header("Content-Type", mediaType)
		c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, name))
	}
	// http.ServeFile underneath, which gives us range requests.
	c.File(path)
}

// abortWithError is the single point where error kinds become HTTP
// responses. Clients get the kind's status and safe message; the
// underlying detail goes only to the log.
func (s *Server) abortWithError(c *gin.Context, err *common.Error) {
	if err.HTTPStatus() >= 500 {
		s.logger.Errorf("%s %s: %s", c.Request.Method, c.Request.URL.Path, err.Detail())
	} else {
		s.logger.Infof("%s %s: %s", c.Request.Method, c.Request.URL.Path, err.Detail())
	}
	c.AbortWithStatusJSON(err.HTTPStatus(), gin.H{
		"status":  "error",
		"message": err.Error(),
	})
}
