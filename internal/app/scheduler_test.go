package app

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/robfig/cron/v3"
	"github.com/shandysiswandi/assetly/internal/pkg/instrument"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCronLogger(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	var logger cron.Logger = cronLogger{}

	// Act
	logger.Error(errors.New("boom"), "panic", "entry", 1)

	// Assert
	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "cron: panic", got["msg"])
	assert.Equal(t, "boom", got["error"])
	assert.Equal(t, "ERROR", got["level"])
	assert.EqualValues(t, 1, got["entry"])
}

func TestDefaults_OTPPolicy(t *testing.T) {
	assert.Equal(t, 10, defaults["modules.otp.ttl_minutes"])
	assert.Equal(t, 3, defaults["modules.otp.max_requests"])
	assert.Equal(t, 5, defaults["modules.otp.max_attempts"])
	assert.Equal(t, false, defaults["modules.otp.dev_log_code"])
	assert.Contains(t, defaults["instrument.log_mask_fields"], "otp")
}

func TestDefaults_MaskFields(t *testing.T) {
	// Arrange
	fields, ok := defaults["instrument.log_mask_fields"].(string)
	require.True(t, ok)
	m := instrument.NewMasker(strings.Split(fields, ","))

	// Act
	devCode := m.Attr(slog.String("dev_code", "482913"))
	code := m.Attr(slog.String("code", "482913"))
	password := m.Attr(slog.String("new_password", "hunter22"))

	// Assert
	assert.Equal(t, "482913", devCode.Value.String(), "the development hook must stay readable")
	assert.Equal(t, "***", code.Value.String())
	assert.Equal(t, "***", password.Value.String())
}
