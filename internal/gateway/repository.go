package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"ledger-reconciliation/internal/domain"
)

// ErrUnsupportedFormat is returned for inputs that are neither .csv nor .xlsx.
var ErrUnsupportedFormat = errors.New("unsupported file format, expected .xlsx or .csv")

// SupportedExtension reports whether name has an extension ReadTable accepts.
func SupportedExtension(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".xlsx":
		return true
	}
	return false
}

// ReadTable materializes a table from r, choosing the parser by the
// extension of name.
func ReadTable(name string, r io.Reader) (*domain.Table, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return readCSV(name, r)
	case ".xlsx":
		return readXLSX(name, r)
	default:
		return nil, fmt.Errorf("%s: %w", name, ErrUnsupportedFormat)
	}
}

// FileTableRepository implements the TableRepository interface for files on
// local disk.
type FileTableRepository struct{}

// NewFileTableRepository creates a new repository instance.
func NewFileTableRepository() *FileTableRepository {
	return &FileTableRepository{}
}

// GetTable reads and parses the file at path.
func (r *FileTableRepository) GetTable(ctx context.Context, path string) (*domain.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	return ReadTable(filepath.Base(path), file)
}

// UploadTableRepository serves tables from files attached to a multipart
// request, addressed by form field name.
type UploadTableRepository struct {
	files map[string]*multipart.FileHeader
}

// NewUploadTableRepository wraps the uploaded files of one request.
func NewUploadTableRepository(files map[string]*multipart.FileHeader) *UploadTableRepository {
	return &UploadTableRepository{files: files}
}

// GetTable parses the upload stored under field.
func (r *UploadTableRepository) GetTable(ctx context.Context, field string) (*domain.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	header, ok := r.files[field]
	if !ok || header == nil {
		return nil, fmt.Errorf("no file uploaded as %q", field)
	}
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload %s: %w", header.Filename, err)
	}
	defer file.Close()

	return ReadTable(header.Filename, file)
}
