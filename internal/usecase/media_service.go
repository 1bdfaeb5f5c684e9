package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/padelhq/courtsight/internal/platform/id"
	"github.com/padelhq/courtsight/internal/platform/logging"
)

// MediaStore persists uploaded files and returns their public URL.
type MediaStore interface {
	Save(ctx context.Context, name string, r io.Reader) (url string, size int64, err error)
}

// MediaObject describes one stored upload.
type MediaObject struct {
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	SizeBytes  int64     `json:"size_bytes"`
	SHA256     string    `json:"sha256"`
	UploadedAt time.Time `json:"uploaded_at"`
}

var videoExtensions = map[string]struct{}{
	".mp4": {},
	".mov": {},
	".mkv": {},
}

var imageExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".webp": {},
}

// MediaService handles match video and heatmap image uploads.
type MediaService struct {
	store    MediaStore
	maxBytes int64
	idGen    id.Generator
	logger   *logging.Logger
	now      func() time.Time
}

func NewMediaService(store MediaStore, maxBytes int64, logger *logging.Logger) *MediaService {
	if logger == nil {
		logger = logging.Default()
	}
	if maxBytes <= 0 {
		maxBytes = 2048 << 20
	}
	return &MediaService{
		store:    store,
		maxBytes: maxBytes,
		idGen:    id.NewPrefixedGenerator("media", nil),
		logger:   logger,
		now:      time.Now,
	}
}

// UploadVideo stores a match recording.
func (s *MediaService) UploadVideo(ctx context.Context, userID, filename string, r io.Reader) (MediaObject, error) {
	return s.upload(ctx, "usecase.MediaService.UploadVideo", userID, filename, r, videoExtensions)
}

// UploadHeatmap stores a rendered heatmap image.
func (s *MediaService) UploadHeatmap(ctx context.Context, userID, filename string, r io.Reader) (MediaObject, error) {
	return s.upload(ctx, "usecase.MediaService.UploadHeatmap", userID, filename, r, imageExtensions)
}

func (s *MediaService) upload(ctx context.Context, spanName, userID, filename string, r io.Reader, allowed map[string]struct{}) (MediaObject, error) {
	ctx, span := startUsecaseSpan(ctx, spanName)
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return MediaObject{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if r == nil {
		return MediaObject{}, fmt.Errorf("%w: upload body is required", ErrInvalidInput)
	}

	ext := strings.ToLower(path.Ext(strings.TrimSpace(filename)))
	if _, ok := allowed[ext]; !ok {
		return MediaObject{}, fmt.Errorf("%w: unsupported file extension %q", ErrInvalidInput, ext)
	}

	mediaID, err := s.idGen.NewID()
	if err != nil {
		return MediaObject{}, fmt.Errorf("generate media id: %w", err)
	}
	storedName := mediaID + ext

	hasher := sha256.New()
	limited := &limitedReader{r: io.TeeReader(r, hasher), remaining: s.maxBytes}

	url, size, err := s.store.Save(ctx, storedName, limited)
	if err != nil {
		if limited.exceeded {
			return MediaObject{}, fmt.Errorf("%w: upload exceeds %d bytes", ErrInvalidInput, s.maxBytes)
		}
		return MediaObject{}, fmt.Errorf("store upload: %w", err)
	}

	return MediaObject{
		Name:       storedName,
		URL:        url,
		SizeBytes:  size,
		SHA256:     hex.EncodeToString(hasher.Sum(nil)),
		UploadedAt: s.now().UTC(),
	}, nil
}

// limitedReader errors once more than remaining bytes have been read, so
// oversized uploads abort mid-stream instead of filling the disk.
type limitedReader struct {
	r         io.Reader
	remaining int64
	exceeded  bool
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.remaining <= 0 {
		l.exceeded = true
		return 0, fmt.Errorf("upload size limit exceeded")
	}
	if int64(len(p)) > l.remaining+1 {
		p = p[:l.remaining+1]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		l.exceeded = true
		return n, fmt.Errorf("upload size limit exceeded")
	}
	return n, err
}
