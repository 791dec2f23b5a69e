package errors

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorType_Constants(t *testing.T) {
	tests := []struct {
		name     string
		errType  ErrorType
		expected string
	}{
		{name: "not found", errType: ErrTypeNotFound, expected: "NOT_FOUND"},
		{name: "parsing", errType: ErrTypeParsing, expected: "PARSING"},
		{name: "storage", errType: ErrTypeStorage, expected: "STORAGE"},
		{name: "validation", errType: ErrTypeValidation, expected: "VALIDATION"},
		{name: "config", errType: ErrTypeConfig, expected: "CONFIG"},
		{name: "render", errType: ErrTypeRender, expected: "RENDER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.errType))
		})
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "without cause",
			err:      NewValidationError("lower quantile above upper", nil),
			expected: "[VALIDATION] lower quantile above upper",
		},
		{
			name:     "with cause",
			err:      NewStorageError("failed to save report", errors.New("disk full")),
			expected: "[STORAGE] failed to save report: disk full",
		},
		{
			name:     "not found formats resource",
			err:      NewNotFoundError("sheet \"Employee Data\"", nil),
			expected: "[NOT_FOUND] sheet \"Employee Data\" not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	err := NewNotFoundError("input workbook", fs.ErrNotExist)
	wrapped := fmt.Errorf("load step: %w", err)

	assert.True(t, errors.Is(wrapped, fs.ErrNotExist))

	var appErr *AppError
	require.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, ErrTypeNotFound, appErr.Type)
}

func TestAppError_WithContext(t *testing.T) {
	err := &AppError{Type: ErrTypeParsing, Message: "bad header"}
	err.WithContext("sheet", "Employee Data").WithContext("row", 1)

	assert.Equal(t, "Employee Data", err.Context["sheet"])
	assert.Equal(t, 1, err.Context["row"])
}

func TestIsType(t *testing.T) {
	err := fmt.Errorf("run: %w", NewRenderError("failed to save chart", nil))

	assert.True(t, IsType(err, ErrTypeRender))
	assert.False(t, IsType(err, ErrTypeStorage))
	assert.False(t, IsType(errors.New("plain"), ErrTypeRender))
	assert.False(t, IsType(nil, ErrTypeRender))
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorType
	}{
		{"direct", NewParsingError("no header row", nil), ErrTypeParsing},
		{"wrapped", fmt.Errorf("load step failed: %w", NewNotFoundError("sheet", nil)), ErrTypeNotFound},
		{"plain", errors.New("plain"), ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TypeOf(tt.err))
		})
	}
}

func TestAppError_LogValue(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	err := NewStorageError("failed to save report workbook", errors.New("disk full")).
		WithContext("path", "out/report.xlsx").
		WithContext("attempt", 1)
	logger.Error("failed", slog.Any("error", err))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	group, ok := entry["error"].(map[string]interface{})
	require.True(t, ok, "error should render as a group: %s", buf.String())
	assert.Equal(t, "STORAGE", group["type"])
	assert.Equal(t, "failed to save report workbook", group["message"])
	assert.Equal(t, "disk full", group["cause"])
	assert.Equal(t, "out/report.xlsx", group["path"])
	assert.Equal(t, float64(1), group["attempt"])
}
