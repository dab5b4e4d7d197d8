package messages

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tinyland-inc/picorelay/pkg/retry"
	"github.com/tinyland-inc/picorelay/pkg/telegram"
)

// FileRef names the content of a file-carrying message. Resolution
// precedence when several sources are set: platform file id, remote
// URL, local path, raw bytes.
type FileRef struct {
	FileID string
	URL    string
	Path   string
	Data   []byte

	// Name overrides the derived filename for uploads.
	Name string
}

func (f FileRef) isEmpty() bool {
	return f.FileID == "" && f.URL == "" && f.Path == "" && len(f.Data) == 0
}

// resolve renders the file reference into either an inline parameter
// (file id or URL, sent by reference) or a multipart upload.
func (f FileRef) resolve(field string) (param any, file *telegram.InputFile, err error) {
	switch {
	case f.FileID != "":
		return f.FileID, nil, nil
	case f.URL != "":
		return f.URL, nil, nil
	case f.Path != "":
		data, err := os.ReadFile(f.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("read %s: %w", f.Path, err)
		}
		name := f.Name
		if name == "" {
			name = filepath.Base(f.Path)
		}
		return nil, &telegram.InputFile{Name: name, Data: data}, nil
	case len(f.Data) > 0:
		name := f.Name
		if name == "" {
			name = deriveName(field, f.Data)
		}
		return nil, &telegram.InputFile{Name: name, Data: f.Data}, nil
	default:
		return nil, nil, fmt.Errorf("%s: %w", field, ErrEmptyInput)
	}
}

// deriveName sniffs raw bytes for a usable extension, falling back to
// the generic blob suffix.
func deriveName(field string, data []byte) string {
	cls, err := ClassifyBytes(data)
	if err != nil || cls.Ext == "" {
		return field + fallbackExt
	}
	return field + cls.Ext
}

// DocumentMessage is one sendDocument call.
type DocumentMessage struct {
	Options

	File    FileRef
	Caption string
}

func NewDocument(file FileRef, caption string, opts ...Option) *DocumentMessage {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return &DocumentMessage{Options: options, File: file, Caption: caption}
}

func (m *DocumentMessage) IsEmpty() bool {
	return m.File.isEmpty()
}

func (m *DocumentMessage) Request(t Target) (telegram.Request, error) {
	return fileRequest("sendDocument", "document", m.File, m.Caption, m.Options, t)
}

func (m *DocumentMessage) retryBound() int {
	return retry.DefaultMaxRetries
}

// PhotoMessage is one sendPhoto call. Upload filenames are normalized
// to the photo extension allowlist, defaulting to .png when detection
// is inconclusive.
type PhotoMessage struct {
	Options

	File    FileRef
	Caption string
}

func NewPhoto(file FileRef, caption string, opts ...Option) *PhotoMessage {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return &PhotoMessage{Options: options, File: file, Caption: caption}
}

func (m *PhotoMessage) IsEmpty() bool {
	return m.File.isEmpty()
}

func (m *PhotoMessage) Request(t Target) (telegram.Request, error) {
	req, err := fileRequest("sendPhoto", "photo", m.File, m.Caption, m.Options, t)
	if err != nil {
		return telegram.Request{}, err
	}
	if file, ok := req.Files["photo"]; ok {
		file.Name = normalizePhotoName(file.Name)
		req.Files["photo"] = file
	}
	return req, nil
}

func (m *PhotoMessage) retryBound() int {
	return retry.TextMaxRetries
}

func normalizePhotoName(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if photoExts[ext] {
		return name
	}
	return strings.TrimSuffix(name, filepath.Ext(name)) + ".png"
}

// StickerMessage is one sendSticker call. Stickers never carry a
// caption.
type StickerMessage struct {
	Options

	File FileRef
}

func NewSticker(file FileRef, opts ...Option) *StickerMessage {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return &StickerMessage{Options: options, File: file}
}

func (m *StickerMessage) IsEmpty() bool {
	return m.File.isEmpty()
}

func (m *StickerMessage) Request(t Target) (telegram.Request, error) {
	return fileRequest("sendSticker", "sticker", m.File, "", m.Options, t)
}

func (m *StickerMessage) retryBound() int {
	return retry.DefaultMaxRetries
}

// NewFileMessage classifies content and routes it to the photo variant
// for platform-supported image types, or the document variant for
// everything else.
func NewFileMessage(ctx context.Context, file FileRef, caption string, opts ...Option) (Sendable, error) {
	cls, err := classifyRef(ctx, file)
	if err != nil {
		return nil, err
	}
	if cls.IsImage {
		return NewPhoto(file, caption, opts...), nil
	}
	return NewDocument(file, caption, opts...), nil
}

func classifyRef(ctx context.Context, file FileRef) (Classification, error) {
	switch {
	case file.FileID != "":
		// Re-sending by platform id keeps its original type.
		return Classification{}, nil
	case file.URL != "":
		return ClassifyURL(ctx, file.URL)
	case file.Path != "":
		return ClassifyPath(file.Path)
	case len(file.Data) > 0:
		return ClassifyBytes(file.Data)
	default:
		return Classification{}, ErrEmptyInput
	}
}

func fileRequest(
	method, field string,
	file FileRef,
	caption string,
	options Options,
	t Target,
) (telegram.Request, error) {
	param, upload, err := file.resolve(field)
	if err != nil {
		return telegram.Request{}, err
	}

	params := map[string]any{}
	if param != nil {
		params[field] = param
	}
	if caption != "" {
		params["caption"] = caption
	}
	options.apply(params, t)

	req := telegram.Request{Method: method, Params: params}
	if upload != nil {
		req.Files = map[string]telegram.InputFile{field: *upload}
	}
	return req, nil
}
