package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/angelmondragon/roadtrack-backend/pkg/errors"
	"github.com/angelmondragon/roadtrack-backend/pkg/logger"
	"github.com/angelmondragon/roadtrack-backend/pkg/storage/gcs"
	"google.golang.org/api/storage/v1"
)

// ObjectStore is the slice of the GCS client the upload flow needs.
type ObjectStore interface {
	Upload(ctx context.Context, object, contentType string, r io.Reader) (*storage.Object, error)
	Stat(ctx context.Context, object string) (*storage.Object, error)
	SignedURL(object string, ttl time.Duration) (string, error)
}

// File is one multipart part ready to be streamed.
type File struct {
	Name        string
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// Result is the stored path plus a read URL for it.
type Result struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

type Config struct {
	DefaultFolder   string
	UploadURLExpiry time.Duration
	FileURLExpiry   time.Duration
}

type Service struct {
	store ObjectStore
	cfg   Config
	logg  *logger.Logger

	mu     sync.Mutex
	lastMS int64
	now    func() time.Time
}

func NewService(store ObjectStore, cfg Config, logg *logger.Logger) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("object store required")
	}
	if cfg.DefaultFolder == "" {
		cfg.DefaultFolder = "general"
	}
	if cfg.UploadURLExpiry <= 0 {
		cfg.UploadURLExpiry = 365 * 24 * time.Hour
	}
	if cfg.FileURLExpiry <= 0 {
		cfg.FileURLExpiry = time.Hour
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Service{store: store, cfg: cfg, logg: logg, now: time.Now}, nil
}

// Upload stores every file under <folder>/<epoch-ms>-<name> and returns a long
// lived read URL for each. The first failure stops the batch; objects already
// written stay in the bucket.
func (s *Service) Upload(ctx context.Context, folder string, files []File) ([]Result, error) {
	if len(files) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no file provided")
	}
	folder, err := s.cleanFolder(folder)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(files))
	for _, f := range files {
		name := cleanFileName(f.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "file name is required")
		}
		object := fmt.Sprintf("%s/%d-%s", folder, s.nextStamp(), name)

		if err := s.put(ctx, object, f); err != nil {
			return nil, err
		}
		url, err := s.store.SignedURL(object, s.cfg.UploadURLExpiry)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sign upload url")
		}
		s.logg.Info(s.logg.WithField(ctx, "object", object), "upload.stored")
		results = append(results, Result{Path: object, URL: url})
	}
	return results, nil
}

// FileURL returns a short lived read URL for an existing object.
func (s *Service) FileURL(ctx context.Context, object string) (string, error) {
	object = strings.TrimPrefix(strings.TrimSpace(object), "/")
	if object == "" || strings.Contains(object, "..") {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid file path")
	}
	if _, err := s.store.Stat(ctx, object); err != nil {
		if errors.Is(err, gcs.ErrObjectNotFound) {
			return "", pkgerrors.New(pkgerrors.CodeNotFound, "file not found")
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "stat file")
	}
	url, err := s.store.SignedURL(object, s.cfg.FileURLExpiry)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sign file url")
	}
	return url, nil
}

func (s *Service) put(ctx context.Context, object string, f File) error {
	if f.Open == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "file content missing")
	}
	rc, err := f.Open()
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read upload")
	}
	defer rc.Close()

	contentType := f.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if _, err := s.store.Upload(ctx, object, contentType, rc); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "upload file")
	}
	return nil
}

// nextStamp returns the current epoch milliseconds, bumped so consecutive calls
// never repeat.
func (s *Service) nextStamp() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	ms := s.now().UnixMilli()
	if ms <= s.lastMS {
		ms = s.lastMS + 1
	}
	s.lastMS = ms
	return ms
}

func (s *Service) cleanFolder(folder string) (string, error) {
	folder = strings.Trim(strings.TrimSpace(folder), "/")
	if folder == "" {
		return s.cfg.DefaultFolder, nil
	}
	for _, seg := range strings.Split(folder, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid folder")
		}
	}
	return folder, nil
}

func cleanFileName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(strings.TrimSpace(name))
	if name == "." || name == "/" {
		return ""
	}
	return name
}
