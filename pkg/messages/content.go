package messages

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// photoMimes are the types the platform's photo pipeline accepts.
// Everything else ships as a document; notably GIFs stay documents so
// the platform does not re-encode the animation into a still photo.
var photoMimes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
}

// photoExts is the extension allowlist for photo uploads.
var photoExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".png":  true,
	".tif":  true,
	".bmp":  true,
}

const fallbackExt = ".blob"

// Classification is the outcome of content typing: the sniffed MIME
// type, a usable file extension, and whether the photo variant applies.
type Classification struct {
	Mime    string
	Ext     string
	IsImage bool
}

// ClassifyBytes sniffs raw content.
func ClassifyBytes(data []byte) (Classification, error) {
	return fromMime(mimetype.Detect(data), "")
}

// ClassifyPath sniffs a local file, falling back to its extension when
// the content is inconclusive.
func ClassifyPath(p string) (Classification, error) {
	m, err := mimetype.DetectFile(p)
	if err != nil {
		return Classification{}, fmt.Errorf("classify %s: %w", p, err)
	}
	return fromMime(m, filepath.Ext(p))
}

// ClassifyURL fetches the resource and sniffs the response body.
func ClassifyURL(ctx context.Context, url string) (Classification, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Classification{}, fmt.Errorf("classify %s: %w", url, err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return Classification{}, fmt.Errorf("classify %s: %w", url, err)
	}
	defer resp.Body.Close()

	// The sniffers only need the first few KB.
	head, err := io.ReadAll(io.LimitReader(resp.Body, 3072))
	if err != nil {
		return Classification{}, fmt.Errorf("classify %s: %w", url, err)
	}
	return fromMime(mimetype.Detect(head), path.Ext(urlPath(url)))
}

func urlPath(url string) string {
	trimmed := url
	if i := strings.IndexAny(trimmed, "?#"); i >= 0 {
		trimmed = trimmed[:i]
	}
	return trimmed
}

func fromMime(m *mimetype.MIME, hintExt string) (Classification, error) {
	mime := baseMime(m.String())
	ext := m.Extension()

	if mime == "application/octet-stream" && ext == "" {
		if hintExt == "" {
			return Classification{}, ErrUnknownMime
		}
		ext = hintExt
	}
	if ext == "" {
		ext = hintExt
	}
	if ext == "" {
		ext = fallbackExt
	}
	return Classification{
		Mime:    mime,
		Ext:     ext,
		IsImage: photoMimes[mime],
	}, nil
}

// baseMime strips any parameters ("; charset=utf-8") from a MIME type.
func baseMime(m string) string {
	if i := strings.IndexByte(m, ';'); i >= 0 {
		m = m[:i]
	}
	return strings.TrimSpace(m)
}
