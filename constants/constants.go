package constants

const (
	// Media kinds describe how a file is sent to the remote channel.
	// The channel treats each kind differently (thumbnailing, inline
	// players, etc.), so classification happens before the put.
	KindStillImage    = "still-image"
	KindAnimatedImage = "animated-image"
	KindVideo         = "video"
	KindAudio         = "audio"
	KindPDFDocument   = "pdf-document"
	KindDocument      = "document"

	// MediaTypeBinary is the fallback content type for serve responses
	// when the extension maps to nothing we recognize.
	MediaTypeBinary = "application/octet-stream"

	UploadChunkSize = int64(1024 * 1024)
	CachePartialExt = ".partial"
)

// DefaultMaxFileSize caps a single upload at 2 GiB, matching the
// remote channel's own per-message limit.
const DefaultMaxFileSize = int64(2 * 1024 * 1024 * 1024)

// VideoAttachmentThreshold is the size above which video files are
// served as forced downloads instead of inline streams.
const VideoAttachmentThreshold = int64(50 * 1024 * 1024)

// AllowedExtensions lists the file extensions we accept for upload:
// common image, video, audio, document and archive families. This is
// policy, not architecture; config can override it.
var AllowedExtensions = []string{
	"jpg", "jpeg", "png", "webp", "gif",
	"mp4", "mkv", "mov", "avi",
	"mp3", "wav", "ogg",
	"pdf", "zip", "rar",
}

var MediaKinds = []string{
	KindStillImage,
	KindAnimatedImage,
	KindVideo,
	KindAudio,
	KindPDFDocument,
	KindDocument,
}
