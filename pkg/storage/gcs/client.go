package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/angelmondragon/roadtrack-backend/pkg/config"
	"github.com/angelmondragon/roadtrack-backend/pkg/logger"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	storage "google.golang.org/api/storage/v1"
)

const pingTimeout = 5 * time.Second

// ErrObjectNotFound is returned when the requested object does not exist.
var ErrObjectNotFound = errors.New("gcs: object not found")

// ErrSigningUnavailable is returned by SignedURL when no service-account key is configured.
var ErrSigningUnavailable = errors.New("gcs: url signing requires service account credentials")

// Client talks to a single bucket through the Cloud Storage JSON API.
type Client struct {
	svc    *storage.Service
	bucket string
	signer *urlSigner
	now    func() time.Time
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// NewClient builds the storage service from service-account JSON (inline or file) or,
// failing that, application default credentials. Signed URLs need a service-account key.
func NewClient(ctx context.Context, cfg config.GCSConfig, gcp config.GCPConfig, logg *logger.Logger) (*Client, error) {
	if cfg.BucketName == "" {
		return nil, errors.New("gcs bucket name is required")
	}

	raw, err := credentialsJSON(gcp)
	if err != nil {
		return nil, err
	}

	var (
		httpClient *http.Client
		signer     *urlSigner
	)
	if len(raw) > 0 {
		jwtCfg, err := google.JWTConfigFromJSON(raw, storage.DevstorageReadWriteScope)
		if err != nil {
			return nil, fmt.Errorf("parsing service account credentials: %w", err)
		}
		signer, err = newURLSigner(jwtCfg.Email, jwtCfg.PrivateKey)
		if err != nil {
			return nil, err
		}
		httpClient = jwtCfg.Client(ctx)
	} else {
		httpClient, err = google.DefaultClient(ctx, storage.DevstorageReadWriteScope)
		if err != nil {
			return nil, fmt.Errorf("loading default gcp credentials: %w", err)
		}
	}

	svc, err := storage.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("creating storage service: %w", err)
	}

	client := newClient(svc, cfg.BucketName, signer)
	if err := client.Ping(ctx); err != nil {
		return nil, fmt.Errorf("gcs health check failed: %w", err)
	}
	if logg != nil {
		logg.Info(logg.WithField(ctx, "bucket", cfg.BucketName), "gcs client initialized")
	}
	return client, nil
}

func newClient(svc *storage.Service, bucket string, signer *urlSigner) *Client {
	return &Client{svc: svc, bucket: bucket, signer: signer, now: time.Now}
}

func credentialsJSON(gcp config.GCPConfig) ([]byte, error) {
	switch {
	case gcp.CredentialsJSON != "":
		return []byte(gcp.CredentialsJSON), nil
	case gcp.ApplicationCredentials != "":
		b, err := os.ReadFile(gcp.ApplicationCredentials)
		if err != nil {
			return nil, fmt.Errorf("reading credentials file: %w", err)
		}
		return b, nil
	}
	return nil, nil
}

// Upload streams r to object with the given content type.
func (c *Client) Upload(ctx context.Context, object, contentType string, r io.Reader) (*storage.Object, error) {
	if c == nil || c.svc == nil {
		return nil, errors.New("gcs client not initialized")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	obj, err := c.svc.Objects.
		Insert(c.bucket, &storage.Object{Name: object, ContentType: contentType}).
		Media(r, googleapi.ContentType(contentType)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("uploading %s: %w", object, err)
	}
	return obj, nil
}

// Stat returns object metadata or ErrObjectNotFound.
func (c *Client) Stat(ctx context.Context, object string) (*storage.Object, error) {
	if c == nil || c.svc == nil {
		return nil, errors.New("gcs client not initialized")
	}
	obj, err := c.svc.Objects.Get(c.bucket, object).Context(ctx).Do()
	if err != nil {
		if isNotFound(err) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("stat %s: %w", object, err)
	}
	return obj, nil
}

// SignedURL returns a V2 signed GET URL for object valid for ttl.
func (c *Client) SignedURL(object string, ttl time.Duration) (string, error) {
	if c == nil || c.signer == nil {
		return "", ErrSigningUnavailable
	}
	if object == "" {
		return "", errors.New("object name is required")
	}
	if ttl <= 0 {
		return "", errors.New("signed url ttl must be positive")
	}
	return c.signer.sign(c.bucket, object, c.now().Add(ttl))
}

// Ping lists at most one object, which requires storage.objects.list on the bucket.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.svc == nil {
		return errors.New("gcs client not initialized")
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if _, err := c.svc.Objects.List(c.bucket).MaxResults(1).Context(ctx).Do(); err != nil {
		return fmt.Errorf("gcs object check failed: %w", err)
	}
	return nil
}

func (c *Client) Close() error {
	return nil
}

func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}
