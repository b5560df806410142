package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"perfume-catalog/internal/core/storage"
	"perfume-catalog/pkg/utils"
)

const sniffLen = 3072

// BlobStore 由 *storage.Local 实现
type BlobStore interface {
	Put(ctx context.Context, name string, r io.Reader) (int64, error)
	Open(ctx context.Context, name string) (*storage.Blob, error)
	Delete(ctx context.Context, name string) error
}

type UploadResult struct {
	Success  bool   `json:"success"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Message  string `json:"message"`
}

type FileContent struct {
	*storage.Blob
	Name        string
	ContentType string
}

type FileService struct {
	store    BlobStore
	urlBase  string // 例如 /api/files
	maxBytes int64
}

func NewFileService(store BlobStore, urlBase string, maxBytes int64) *FileService {
	return &FileService{store: store, urlBase: strings.TrimRight(urlBase, "/"), maxBytes: maxBytes}
}

// Upload 只接受位图：声明类型与内容嗅探都必须是 image/*，SVG 不收
func (s *FileService) Upload(ctx context.Context, original, declaredType string, r io.Reader) (UploadResult, error) {
	original = filepath.Base(strings.TrimSpace(original))
	if strings.Contains(original, "..") {
		return UploadResult{}, fieldError("file", "file name contains invalid path sequence")
	}
	if !strings.HasPrefix(strings.ToLower(declaredType), "image/") {
		return UploadResult{}, fieldError("file", "only image files are allowed")
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return UploadResult{}, fmt.Errorf("read upload: %w", err)
	}
	if n == 0 {
		return UploadResult{}, fieldError("file", "file is empty")
	}
	head = head[:n]
	sniffed := mimetype.Detect(head)
	if !strings.HasPrefix(sniffed.String(), "image/") || sniffed.Is("image/svg+xml") {
		return UploadResult{}, fieldError("file", "content is not an image ("+sniffed.String()+")")
	}

	// 扩展名取自嗅探结果，客户端文件名只用来做校验
	name := utils.NewID() + sniffed.Extension()
	body := io.MultiReader(bytes.NewReader(head), r)
	if s.maxBytes > 0 {
		body = io.LimitReader(body, s.maxBytes+1)
	}
	written, err := s.store.Put(ctx, name, body)
	if err != nil {
		return UploadResult{}, err
	}
	if s.maxBytes > 0 && written > s.maxBytes {
		_ = s.store.Delete(ctx, name)
		return UploadResult{}, fieldError("file", fmt.Sprintf("file exceeds %d bytes", s.maxBytes))
	}
	return UploadResult{
		Success:  true,
		Filename: name,
		URL:      s.urlBase + "/" + name,
		Message:  "File uploaded successfully",
	}, nil
}

// Open 按扩展名推断类型，推断不出时嗅探内容
func (s *FileService) Open(ctx context.Context, name string) (*FileContent, error) {
	b, err := s.store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	ct := mime.TypeByExtension(path.Ext(name))
	if ct == "" {
		m, err := mimetype.DetectReader(b)
		if err == nil {
			ct = m.String()
		}
		if _, err := b.Seek(0, io.SeekStart); err != nil {
			_ = b.Close()
			return nil, err
		}
	}
	if ct == "" {
		ct = "application/octet-stream"
	}
	return &FileContent{Blob: b, Name: name, ContentType: ct}, nil
}

func (s *FileService) Delete(ctx context.Context, name string) error {
	return s.store.Delete(ctx, name)
}

var _ BlobStore = (*storage.Local)(nil)
