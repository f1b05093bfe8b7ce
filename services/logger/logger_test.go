package logsvc

import (
	"bytes"
	"log"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestConsoleLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger(log.New(&buf, "", 0))

	logger.Warning("score rows failed to save", map[string]interface{}{"student": 1}, nil)

	assert.Equal(t, "WARNING: score rows failed to save\nmap[student:1]\n", buf.String())
}

func TestRollbarLogger_prepare(t *testing.T) {
	l := RollbarLogger{}
	err := errors.New("boom")

	got := l.prepare("loading failed", []interface{}{
		map[string]interface{}{"a": 1},
		err,
		nil,
		map[string]interface{}{"b": 2},
	})

	assert.Equal(t, []interface{}{
		"loading failed",
		err,
		map[string]interface{}{"a": 1, "b": 2},
	}, got)
}
