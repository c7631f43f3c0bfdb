package notify

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/amire/crewboard/internal/infrastructure/logger"
)

func TestConsoleMarksSeverity(t *testing.T) {
	tests := []struct {
		severity Severity
		mark     string
	}{
		{SeveritySuccess, "✔ Job added"},
		{SeverityError, "✘ Job added"},
		{SeverityInfo, "• Job added"},
	}
	for _, tt := range tests {
		t.Run(string(tt.severity), func(t *testing.T) {
			var buf bytes.Buffer
			NewConsole(&buf).Notify("Job added", tt.severity)

			out := buf.String()
			assert.Contains(t, out, tt.mark)
			assert.True(t, strings.HasSuffix(out, "\n"))
			assert.Equal(t, 1, strings.Count(out, "\n"))
		})
	}
}

func TestMultiFansOut(t *testing.T) {
	var got []string
	record := func(prefix string) Notifier {
		return Func(func(message string, severity Severity) {
			got = append(got, prefix+":"+message+":"+string(severity))
		})
	}

	Multi(record("a"), record("b"), Discard).Notify("Team member deleted", SeveritySuccess)

	assert.Equal(t, []string{
		"a:Team member deleted:success",
		"b:Team member deleted:success",
	}, got)
}

func TestMultiWithoutNotifiers(t *testing.T) {
	assert.NotPanics(t, func() { Multi().Notify("ignored", SeverityInfo) })
}

func TestLogNotifierLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	n := NewLogNotifier(&logger.Logger{SugaredLogger: zap.New(core).Sugar()})

	n.Notify("Failed to add job", SeverityError)
	n.Notify("Job added", SeveritySuccess)

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)
	assert.Equal(t, zapcore.InfoLevel, logs.All()[1].Level)
	assert.Equal(t, "notify", logs.All()[1].ContextMap()["component"])
}
