package intake

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"speechbench/internal/app/engine"
)

// MaxUploadBytes is the upload size limit (100 MiB).
const MaxUploadBytes = 100 << 20

// allowedExtensions mirrors the formats the engines can ingest. An empty
// extension is accepted because browser-recorded blobs arrive without a
// filename; ffmpeg sniffs the container from content.
var allowedExtensions = map[string]bool{
	".wav": true, ".mp3": true, ".m4a": true, ".flac": true,
	".ogg": true, ".wma": true, ".aac": true, ".webm": true,
}

// AllowedExtension reports whether a filename's extension is an accepted
// audio format.
func AllowedExtension(name string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(name))]
}

// Store persists uploaded audio into a scratch directory.
type Store struct {
	dir      string
	maxBytes int64
	logger   *zap.Logger
}

// NewStore creates a scratch store rooted at dir.
func NewStore(dir string, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	return &Store{dir: dir, maxBytes: MaxUploadBytes, logger: logger}, nil
}

// ScratchFile is a request-owned temp file. The owner must call Cleanup on
// every exit path.
type ScratchFile struct {
	Path         string
	OriginalName string
	Size         int64
}

// Cleanup deletes the scratch file. Failure is logged, never escalated.
func (f *ScratchFile) Cleanup(logger *zap.Logger) {
	if f == nil {
		return
	}
	if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
		logger.Warn("failed to remove scratch file",
			zap.String("path", f.Path), zap.Error(err))
	}
}

// Save writes the upload to a collision-proof scratch path. Uploads over the
// size limit are rejected with an oversized error and no scratch file is
// retained.
func (s *Store) Save(originalName string, r io.Reader) (*ScratchFile, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if originalName != "" && ext != "" && !allowedExtensions[ext] {
		return nil, engine.NewError(engine.CodeUnsupportedFormat, "",
			"unsupported audio format %q", ext)
	}
	if ext == "" {
		ext = ".bin"
	}

	// Timestamp plus a random suffix so concurrent uploads with identical
	// original filenames never collide.
	name := fmt.Sprintf("%s_%s%s",
		time.Now().UTC().Format("20060102T150405"),
		strings.Split(uuid.New().String(), "-")[0],
		ext)
	path := filepath.Join(s.dir, name)

	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, engine.NewError(engine.CodeInternal, "",
			"create scratch file: %v", err)
	}

	written, err := io.Copy(out, io.LimitReader(r, s.maxBytes+1))
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return nil, engine.NewError(engine.CodeInternal,
			"", "write scratch file: %v", err)
	}
	if written > s.maxBytes {
		os.Remove(path)
		return nil, engine.NewError(engine.CodeOversized, "",
			"upload exceeds %d byte limit", s.maxBytes)
	}
	if written == 0 {
		os.Remove(path)
		return nil, engine.NewError(engine.CodeInputMissing, "",
			"empty audio upload")
	}

	return &ScratchFile{Path: path, OriginalName: originalName, Size: written}, nil
}

// Dir returns the scratch directory root.
func (s *Store) Dir() string {
	return s.dir
}
