package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/seenimoa/finratios/internal/infra"
	"github.com/seenimoa/finratios/pkg/models"
)

// GCSScheme prefixes Cloud Storage identifiers: gs://bucket/object.
const GCSScheme = "gs://"

// ObjectOpener opens a Cloud Storage object for reading.
type ObjectOpener interface {
	Open(ctx context.Context, bucket, object string) (io.ReadCloser, error)
}

// storageOpener opens objects through a storage.Client created on first use.
type storageOpener struct {
	credentialsFile string

	once   sync.Once
	client *storage.Client
	err    error
}

func (s *storageOpener) Open(ctx context.Context, bucket, object string) (io.ReadCloser, error) {
	s.once.Do(func() {
		var opts []option.ClientOption
		if s.credentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(s.credentialsFile))
		}
		s.client, s.err = storage.NewClient(context.Background(), opts...)
	})
	if s.err != nil {
		return nil, fmt.Errorf("storage client: %w", s.err)
	}
	r, err := s.client.Bucket(bucket).Object(object).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
		return nil, fmt.Errorf("%w: gs://%s/%s", ErrNotFound, bucket, object)
	}
	return r, err
}

func (s *storageOpener) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

// GCSReader reads statements stored in Cloud Storage.
type GCSReader struct {
	opener ObjectOpener
	cache  *infra.Cache[[]byte]
}

// NewGCSReader creates a reader backed by a storage client that uses
// credentialsFile, or application default credentials when empty.
func NewGCSReader(credentialsFile string, cache *infra.Cache[[]byte]) *GCSReader {
	return NewGCSReaderWithOpener(&storageOpener{credentialsFile: credentialsFile}, cache)
}

// NewGCSReaderWithOpener creates a reader over any ObjectOpener.
func NewGCSReaderWithOpener(opener ObjectOpener, cache *infra.Cache[[]byte]) *GCSReader {
	if cache == nil {
		cache = infra.NewCache[[]byte](0)
	}
	return &GCSReader{opener: opener, cache: cache}
}

// ParseGCSPath splits "gs://bucket/dir/object" into bucket and object.
func ParseGCSPath(p string) (bucket, object string, err error) {
	if !strings.HasPrefix(p, GCSScheme) {
		return "", "", fmt.Errorf("%w: not a gs:// path: %q", ErrUnsupported, p)
	}
	rest := strings.TrimPrefix(p, GCSScheme)
	bucket, object, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("invalid gs:// path %q", p)
	}
	return bucket, object, nil
}

// Read downloads the object named by id and decodes it by extension.
func (g *GCSReader) Read(ctx context.Context, id string) (*models.RawStatement, error) {
	p, fragment := splitFragment(id)
	bucket, object, err := ParseGCSPath(p)
	if err != nil {
		return nil, readError(id, err)
	}
	ext := extension(object)
	if !supportedExtension(ext) {
		return nil, readError(id, fmt.Errorf("%w: %q", ErrUnsupported, ext))
	}

	body, ok := g.cache.Get(p)
	if !ok {
		r, err := g.opener.Open(ctx, bucket, object)
		if err != nil {
			return nil, readError(id, err)
		}
		body, err = io.ReadAll(io.LimitReader(r, maxBodySize))
		r.Close()
		if err != nil {
			return nil, readError(id, fmt.Errorf("read object: %w", err))
		}
		g.cache.Set(p, body)
	}

	raw, err := decode(id, ext, fragment, bytes.NewReader(body))
	if err != nil {
		return nil, readError(id, err)
	}
	return raw, nil
}

// Close releases the underlying storage client, if any.
func (g *GCSReader) Close() error {
	if c, ok := g.opener.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
