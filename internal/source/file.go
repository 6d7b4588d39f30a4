package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/seenimoa/finratios/pkg/models"
)

// FileReader reads statements from the local filesystem.
type FileReader struct{}

// Read opens the file named by id (optionally "file://" prefixed) and decodes
// it by extension.
func (FileReader) Read(ctx context.Context, id string) (*models.RawStatement, error) {
	if err := ctx.Err(); err != nil {
		return nil, readError(id, err)
	}
	p, fragment := splitFragment(strings.TrimPrefix(id, "file://"))

	ext := extension(p)
	if !supportedExtension(ext) {
		return nil, readError(id, fmt.Errorf("%w: %q", ErrUnsupported, ext))
	}

	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, readError(id, fmt.Errorf("%w: %s", ErrNotFound, p))
		}
		return nil, readError(id, err)
	}
	defer f.Close()

	raw, err := decode(id, ext, fragment, f)
	if err != nil {
		return nil, readError(id, err)
	}
	return raw, nil
}

func supportedExtension(ext string) bool {
	switch ext {
	case ExtCSV, ExtXLSX, ExtHTML, ExtHTM:
		return true
	}
	return false
}
