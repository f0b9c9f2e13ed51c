package shell

import (
	"bytes"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/atinyakov/GophTube/internal/client/api"
)

// mediaTypes covers the upload formats the host mime table may lack.
var mediaTypes = map[string]string{
	".mp4":  "video/mp4",
	".avi":  "video/avi",
	".mov":  "video/mov",
	".wmv":  "video/wmv",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// OpenFile reads a local file into an upload. The content type comes from
// the extension.
func OpenFile(path string) (*api.Upload, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	ct, ok := mediaTypes[ext]
	if !ok {
		ct = mime.TypeByExtension(ext)
	}
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return &api.Upload{
		Name:        filepath.Base(path),
		ContentType: ct,
		Size:        int64(len(b)),
		Reader:      bytes.NewReader(b),
	}, nil
}
