package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"

	"github.com/fleetsim/fleetsim/internal/combat"
	"github.com/fleetsim/fleetsim/internal/config"
	"github.com/fleetsim/fleetsim/internal/mission"
)

func TestReportGroupsThousands(t *testing.T) {
	var buf bytes.Buffer
	r := newReport(&buf)
	r.money("Budget", 1234567)
	assert.Contains(t, buf.String(), "1,234,567")
	assert.Contains(t, buf.String(), "Budget")
}

func TestReportResult(t *testing.T) {
	var buf bytes.Buffer
	m := mission.New(nil)
	newReport(&buf).result(combat.Result{Rounds: 12, Winner: combat.WinnerDefenders, DamageByDefenders: 4500}, m, false)

	out := buf.String()
	assert.Contains(t, out, "defenders")
	assert.Contains(t, out, "4,500")
	assert.Contains(t, out, "mission failed")
}

func TestReportLoss(t *testing.T) {
	var buf bytes.Buffer
	newReport(&buf).loss(3, "attackers", "Bismarck")
	assert.Contains(t, buf.String(), "round 3: attackers lost Bismarck")
}

func TestNewLoggerFormats(t *testing.T) {
	for _, format := range []string{"console", "json"} {
		log, err := newLogger(config.LoggingConfig{Level: "debug", Format: format})
		assert.NoError(t, err, format)
		assert.NotNil(t, log)
	}
	// an unknown level falls back to info
	log, err := newLogger(config.LoggingConfig{Level: "loud", Format: "console"})
	assert.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
}
