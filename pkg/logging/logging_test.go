package logging

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"garbage", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.input))
		})
	}
}

func TestContextRoundTrip(t *testing.T) {
	tl := NewTestLogger(t)

	ctx := WithLogger(context.Background(), tl.Logger)
	got := FromContext(ctx)
	require.NotNil(t, got)

	got.Info().Str("domain", "network").Msg("building")
	assert.True(t, tl.Contains(`"domain":"network"`))
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	assert.Equal(t, Default(), FromContext(context.Background()))
	assert.Equal(t, Default(), FromContext(nil)) //nolint:staticcheck // nil context is the case under test
}

func TestWithEntityAndDomain(t *testing.T) {
	tl := NewTestLogger(t)

	ctx := WithLogger(context.Background(), tl.Logger)
	ctx = WithEntity(ctx, "target")
	ctx = WithDomain(ctx, "identity_access")

	Ctx(ctx).Info().Msg("indexed")

	assert.True(t, tl.Contains(`"entity":"target"`))
	assert.True(t, tl.Contains(`"domain":"identity_access"`))
}

func TestWithRequestID(t *testing.T) {
	tl := NewTestLogger(t)

	ctx := WithLogger(context.Background(), tl.Logger)
	ctx = WithRequestID(ctx, "req-42")

	assert.Equal(t, "req-42", RequestID(ctx))

	Ctx(ctx).Info().Msg("handled")
	assert.True(t, tl.Contains(`"request_id":"req-42"`))
}
