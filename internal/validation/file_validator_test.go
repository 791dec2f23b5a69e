package validation

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "hrreport/internal/errors"
)

func TestFileValidator_ValidateWorkbook(t *testing.T) {
	tests := []struct {
		name      string
		setupFunc func(t *testing.T) string
		errType   apperrors.ErrorType
	}{
		{
			name: "valid workbook",
			setupFunc: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "Employee Sample Data.xlsx")
				require.NoError(t, os.WriteFile(path, []byte("test"), 0644))
				return path
			},
		},
		{
			name: "upper case extension",
			setupFunc: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "EMPLOYEES.XLSX")
				require.NoError(t, os.WriteFile(path, []byte("test"), 0644))
				return path
			},
		},
		{
			name: "missing file",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "absent.xlsx")
			},
			errType: apperrors.ErrTypeNotFound,
		},
		{
			name: "directory",
			setupFunc: func(t *testing.T) string {
				dir := filepath.Join(t.TempDir(), "data.xlsx")
				require.NoError(t, os.Mkdir(dir, 0755))
				return dir
			},
			errType: apperrors.ErrTypeValidation,
		},
		{
			name: "csv file",
			setupFunc: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "employees.csv")
				require.NoError(t, os.WriteFile(path, []byte("a,b"), 0644))
				return path
			},
			errType: apperrors.ErrTypeValidation,
		},
		{
			name: "excel lock file",
			setupFunc: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "~$employees.xlsx")
				require.NoError(t, os.WriteFile(path, []byte("lock"), 0644))
				return path
			},
			errType: apperrors.ErrTypeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validator := NewFileValidator(slog.Default())

			err := validator.ValidateWorkbook(tt.setupFunc(t))

			if tt.errType == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, tt.errType), "got %v", err)
		})
	}
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	t.Run("creates nested directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "new", "nested", "dir")

		require.NoError(t, NewFileValidator(nil).ValidateOutputDirectory(dir))

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries, "probe file must be removed")
	})

	t.Run("path below a file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "report.xlsx")
		require.NoError(t, os.WriteFile(file, nil, 0644))

		err := NewFileValidator(nil).ValidateOutputDirectory(filepath.Join(file, "out"))
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
	})
}
