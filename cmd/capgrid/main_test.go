package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"capgrid/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const workedExampleVtt = `WEBVTT

00:00:00.000 --> 00:00:02.000
hello world

00:00:01.000 --> 00:00:03.000
hello

00:00:02.500 --> 00:00:04.000
world peace
`

func writeVtt(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "talk.vtt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func decodeLines(t *testing.T, out string) []dto.CaptionItem {
	t.Helper()
	var items []dto.CaptionItem
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		var item dto.CaptionItem
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &item))
		items = append(items, item)
	}
	return items
}

func TestRunPrintsSlots(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-vtt", writeVtt(t, workedExampleVtt), "-interval", "2"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	items := decodeLines(t, stdout.String())
	require.Len(t, items, 2)
	assert.Equal(t, "hello world world peace", items[0].Text)
	assert.Equal(t, "0000_0000", items[0].FrameName)
	assert.Equal(t, "00:00:04.000", items[1].End)
}

func TestRunPrintsFiltered(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-vtt", writeVtt(t, workedExampleVtt), "-filtered"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	items := decodeLines(t, stdout.String())
	require.Len(t, items, 2)
	assert.Equal(t, "hello world", items[0].Text)
	assert.Equal(t, "world peace", items[1].Text)
}

func TestRunUsageErrors(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, run(nil, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "-vtt is required")

	stderr.Reset()
	assert.Equal(t, 2, run([]string{"-no-such-flag"}, &stdout, &stderr))
}

func TestRunReportsProcessingErrors(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-vtt", filepath.Join(t.TempDir(), "missing.vtt")}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout.String())

	stderr.Reset()
	code = run([]string{"-vtt", writeVtt(t, workedExampleVtt), "-interval", "-1"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "invalid input")
}

func TestRunVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, run([]string{"-version"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "version: dev")
}

func TestPrintDiagnoseShowsEffectiveLogDir(t *testing.T) {
	var out bytes.Buffer
	printDiagnose(&out)
	assert.Contains(t, out.String(), "path.effective_log_dir:")
	assert.Contains(t, out.String(), "Dependency status")
}
