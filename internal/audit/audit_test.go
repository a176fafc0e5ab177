package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dropDatabas3/idlink/internal/observability/logger"
)

func TestLog_DefaultSinkUsesContextLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ctx := logger.ToContext(context.Background(), zap.New(core))

	Log(ctx, IdentityLinked, logger.Provider("github"))

	entries := logs.FilterMessage(IdentityLinked).All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "audit", entries[0].LoggerName)
		fields := entries[0].ContextMap()
		assert.Equal(t, "github", fields["provider"])
		assert.Equal(t, IdentityLinked, fields["event"])
	}
}

func TestSetSink(t *testing.T) {
	var got []string
	restore := SetSink(func(_ context.Context, event string, _ ...zap.Field) { got = append(got, event) })
	Log(context.Background(), PasswordSet)
	restore()
	Log(context.Background(), PasswordSet)
	assert.Equal(t, []string{PasswordSet}, got)
}
