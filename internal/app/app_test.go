package app

import (
	"testing"

	"github.com/samber/lo"
	"github.com/shandysiswandi/assetly/internal/pkg/config"
	"github.com/shandysiswandi/assetly/internal/pkg/instrument"
	"github.com/shandysiswandi/assetly/internal/pkg/mail"
	"github.com/shandysiswandi/assetly/internal/pkg/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitClosers_TelemetryLast(t *testing.T) {
	// Arrange
	cfg, err := config.NewViperFromBytes("yaml", []byte("app:\n  name: test\n"), nil)
	require.NoError(t, err)

	a := &App{
		config:    cfg,
		ins:       instrument.NewNoop(),
		mail:      mail.NewLog(),
		messaging: messaging.Discard{},
	}

	// Act
	a.initClosers()

	// Assert
	names := lo.Map(a.closers, func(c closer, _ int) string { return c.name })
	assert.Equal(t, []string{"messaging", "mail", "redis", "database", "config", "instrument"}, names)
}
