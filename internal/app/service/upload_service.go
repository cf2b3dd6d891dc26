package service

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"tangle_backend/internal/common"
	"tangle_backend/internal/domain/model"
	"tangle_backend/internal/domain/repository"
	"tangle_backend/internal/platform/metrics"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	log "github.com/sirupsen/logrus"
)

type PageCounter interface {
	CountPages(path string) (int, error)
}

type PageRasterizer interface {
	// RenderPages writes page i of the PDF at path to target(i) and returns
	// the number of pages.
	RenderPages(path string, target func(page int) string) (int, error)
}

type UploadService struct {
	uploadRepo repository.UploadRepository
	allocator  LevelRangeAllocator
	counter    PageCounter
	rasterizer PageRasterizer
	metrics    *metrics.Metrics
	tangleDir  string
	outlineDir string
	now        func() time.Time
}

type UploadServiceConfig struct {
	TanglePDFDir string
	OutlineDir   string
}

func NewUploadService(
	uploadRepo repository.UploadRepository,
	allocator LevelRangeAllocator,
	counter PageCounter,
	rasterizer PageRasterizer,
	m *metrics.Metrics,
	cfg UploadServiceConfig,
) *UploadService {
	return &UploadService{
		uploadRepo: uploadRepo,
		allocator:  allocator,
		counter:    counter,
		rasterizer: rasterizer,
		metrics:    m,
		tangleDir:  cfg.TanglePDFDir,
		outlineDir: cfg.OutlineDir,
		now:        time.Now,
	}
}

type TangleUploadResponse struct {
	Message  string `json:"message"`
	Pages    int    `json:"pages"`
	Filename string `json:"filename"`
}

type OutlineUploadResponse struct {
	Msg       string `json:"msg"`
	Pages     int    `json:"pages"`
	BaseLevel int    `json:"base_level"`
}

// IngestTanglePDF stores an uploaded PDF as level_<start>_<end>.pdf, where the
// range continues after the highest level already stored and spans one level
// per page.
func (s *UploadService) IngestTanglePDF(ctx context.Context, src io.Reader) (*TangleUploadResponse, error) {
	if err := os.MkdirAll(s.tangleDir, 0o755); err != nil {
		return nil, common.StorageErrorf("create tangle pdf folder", err)
	}

	tmpPath, err := saveUpload(s.tangleDir, src)
	if err != nil {
		return nil, err
	}
	keep := false
	defer func() {
		if !keep {
			os.Remove(tmpPath)
		}
	}()

	pages, err := s.counter.CountPages(tmpPath)
	if err != nil || pages <= 0 {
		return nil, fmt.Errorf("%w: %v", common.ErrRender, err)
	}

	start, end, err := s.allocator.Allocate(ctx, pages)
	if err != nil {
		return nil, common.StorageErrorf("allocate level range", err)
	}

	filename := LevelFileName(start, end)
	if err := os.Rename(tmpPath, filepath.Join(s.tangleDir, filename)); err != nil {
		return nil, common.StorageErrorf("rename uploaded pdf", err)
	}
	keep = true

	s.metrics.ObserveLevels("tangle_pdf", pages)
	log.WithFields(log.Fields{"filename": filename, "pages": pages}).Info("tangle pdf stored")
	return &TangleUploadResponse{Message: "Upload successful", Pages: pages, Filename: filename}, nil
}

// IngestOutlinePDF renders every page of the uploaded PDF to
// <outlineDir>/<category>/level_<n>.png. Numbering starts at the number of
// earlier upload records plus one, then one Upload record is stored.
func (s *UploadService) IngestOutlinePDF(ctx context.Context, uploader, category string, src io.Reader) (*OutlineUploadResponse, error) {
	dirName := CategoryDir(category)
	if dirName == "" {
		return nil, fmt.Errorf("%w: category is required", common.ErrValidation)
	}
	if err := os.MkdirAll(s.outlineDir, 0o755); err != nil {
		return nil, common.StorageErrorf("create outline folder", err)
	}

	tmpPath, err := saveUpload(s.outlineDir, src)
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmpPath)

	count, err := s.uploadRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	baseLevel := count + 1

	categoryDir := filepath.Join(s.outlineDir, dirName)
	if err := os.MkdirAll(categoryDir, 0o755); err != nil {
		return nil, common.StorageErrorf("create category folder", err)
	}

	pages, err := s.rasterizer.RenderPages(tmpPath, func(i int) string {
		return filepath.Join(categoryDir, fmt.Sprintf("level_%d.png", baseLevel+i))
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrRender, err)
	}

	upload := &model.Upload{
		ID:        uuid.NewString(),
		Uploader:  uploader,
		Category:  category,
		Pages:     pages,
		CreatedAt: s.now(),
	}
	if err := s.uploadRepo.Create(ctx, upload); err != nil {
		return nil, err
	}

	s.metrics.ObserveLevels("outline_pdf", pages)
	log.WithFields(log.Fields{"category": category, "pages": pages, "base_level": baseLevel}).Info("outline pdf rendered")
	return &OutlineUploadResponse{
		Msg:       fmt.Sprintf("PDF uploaded, %d levels added", pages),
		Pages:     pages,
		BaseLevel: baseLevel,
	}, nil
}

// ListOutlineLevels returns the level numbers that have an outline image in the
// category, ascending.
func (s *UploadService) ListOutlineLevels(category string) ([]int, error) {
	dirName := CategoryDir(category)
	if dirName == "" {
		return nil, fmt.Errorf("%w: category is required", common.ErrValidation)
	}
	entries, err := os.ReadDir(filepath.Join(s.outlineDir, dirName))
	if err != nil {
		if os.IsNotExist(err) {
			return []int{}, nil
		}
		return nil, common.StorageErrorf("list outline levels", err)
	}
	levels := []int{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, "level_") || !strings.HasSuffix(name, ".png") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, "level_"), ".png"))
		if err != nil {
			continue
		}
		levels = append(levels, n)
	}
	sort.Ints(levels)
	return levels, nil
}

// OutlinePath resolves the image for one level, or ErrNotFound.
func (s *UploadService) OutlinePath(category string, level int) (string, error) {
	dirName := CategoryDir(category)
	if dirName == "" || level <= 0 {
		return "", common.ErrNotFound
	}
	path := filepath.Join(s.outlineDir, dirName, fmt.Sprintf("level_%d.png", level))
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", common.ErrNotFound
		}
		return "", common.StorageErrorf("stat outline", err)
	}
	return path, nil
}

// CategoryDir is the directory name used for a category's outline images.
func CategoryDir(category string) string {
	return slug.Make(category)
}

// saveUpload sniffs the body, rejects anything that is not a PDF and copies it
// to a uniquely named temporary file inside dir.
func saveUpload(dir string, src io.Reader) (string, error) {
	br := bufio.NewReaderSize(src, 3072)
	head, err := br.Peek(3072)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return "", fmt.Errorf("%w: unreadable upload: %v", common.ErrBadRequest, err)
	}
	if !mimetype.Detect(head).Is("application/pdf") {
		return "", fmt.Errorf("%w: only PDF files are allowed", common.ErrValidation)
	}

	tmp, err := os.CreateTemp(dir, "upload-*.tmp")
	if err != nil {
		return "", common.StorageErrorf("create temp upload", err)
	}
	if _, err := io.Copy(tmp, br); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", common.StorageErrorf("write temp upload", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", common.StorageErrorf("close temp upload", err)
	}
	return tmp.Name(), nil
}
