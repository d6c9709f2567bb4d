package main

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vitae/internal/platform/config"
)

func TestParseRegister(t *testing.T) {
	ra, err := parseRegister([]string{"-email", "jane@example.org", "-name", "Jane Doe"})
	require.NoError(t, err)
	assert.Equal(t, "jane@example.org", ra.email)
	assert.Equal(t, "Jane Doe", ra.name)

	_, err = parseRegister([]string{"-name", "Jane"})
	assert.ErrorIs(t, err, errUsage)

	_, err = parseRegister([]string{"-unknown"})
	assert.ErrorIs(t, err, errUsage)
}

func TestReadSecret(t *testing.T) {
	s, err := readSecret(strings.NewReader("  s3cret-pass \nignored\n"))
	require.NoError(t, err)
	assert.Equal(t, "s3cret-pass", s)

	s, err = readSecret(strings.NewReader("no-newline"))
	require.NoError(t, err)
	assert.Equal(t, "no-newline", s)

	_, err = readSecret(strings.NewReader("\n"))
	assert.Error(t, err)
}

func TestRunRejectsUnknownCommands(t *testing.T) {
	log := slog.New(slog.DiscardHandler)
	ctx := context.Background()

	assert.ErrorIs(t, run(ctx, config.Server{}, log, nil, strings.NewReader("")), errUsage)
	assert.ErrorIs(t, run(ctx, config.Server{}, log, []string{"delete"}, strings.NewReader("")), errUsage)
	assert.ErrorIs(t, run(ctx, config.Server{}, log, []string{"register"}, strings.NewReader("pw\n")), errUsage)
	assert.ErrorIs(t, run(ctx, config.Server{}, log, []string{"check", "-name", "x"}, strings.NewReader("pw\n")), errUsage)
}
