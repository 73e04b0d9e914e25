package service

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/docsim/domain"
)

func TestOutputFormatResolver_Determine(t *testing.T) {
	r := NewOutputFormatResolver()

	tests := []struct {
		name            string
		json, csv, yaml bool
		fallback        domain.OutputFormat
		wantFormat      domain.OutputFormat
		wantExt         string
		wantErr         bool
	}{
		{name: "default text", wantFormat: domain.OutputFormatText, wantExt: "txt"},
		{name: "json flag", json: true, wantFormat: domain.OutputFormatJSON, wantExt: "json"},
		{name: "csv flag", csv: true, wantFormat: domain.OutputFormatCSV, wantExt: "csv"},
		{name: "yaml flag", yaml: true, wantFormat: domain.OutputFormatYAML, wantExt: "yaml"},
		{name: "configured fallback", fallback: domain.OutputFormatYAML, wantFormat: domain.OutputFormatYAML, wantExt: "yaml"},
		{name: "flag beats fallback", csv: true, fallback: domain.OutputFormatJSON, wantFormat: domain.OutputFormatCSV, wantExt: "csv"},
		{name: "two flags", json: true, yaml: true, wantErr: true},
		{name: "bad fallback", fallback: "html", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			format, ext, err := r.Determine(tt.json, tt.csv, tt.yaml, tt.fallback)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFormat, format)
			assert.Equal(t, tt.wantExt, ext)
		})
	}
}

func TestFileOutputWriter_Writer(t *testing.T) {
	var status, out bytes.Buffer
	w := NewFileOutputWriter(&status)

	err := w.Write(&out, "", domain.OutputFormatText, func(dst io.Writer) error {
		_, err := io.WriteString(dst, "report")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, "report", out.String())
	assert.Empty(t, status.String())
}

func TestFileOutputWriter_File(t *testing.T) {
	var status bytes.Buffer
	w := NewFileOutputWriter(&status)
	path := filepath.Join(t.TempDir(), "reports", "pairs.json")

	err := w.Write(nil, path, domain.OutputFormatJSON, func(dst io.Writer) error {
		_, err := io.WriteString(dst, "{}")
		return err
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
	assert.Contains(t, status.String(), "JSON report generated: ")
}

func TestFileOutputWriter_Errors(t *testing.T) {
	w := NewFileOutputWriter(io.Discard)

	err := w.Write(nil, "", domain.OutputFormatText, func(io.Writer) error { return nil })
	assert.Equal(t, domain.ErrCodeOutputError, domain.ErrorCode(err))

	boom := errors.New("boom")
	err = w.Write(io.Discard, "", domain.OutputFormatText, func(io.Writer) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, domain.ErrCodeOutputError, domain.ErrorCode(err))
}

func TestProgressManager_NonInteractive(t *testing.T) {
	pm := NewProgressManager()
	var buf bytes.Buffer
	pm.SetWriter(&buf)
	assert.False(t, pm.IsInteractive())

	pm.Describe("Reading corpus")
	pm.Initialize(3)
	pm.Start()
	for i := 1; i <= 3; i++ {
		pm.Update(i, 3)
	}
	pm.Complete(true)
	pm.Close()

	assert.Empty(t, buf.String())
}

func TestProgressManager_Interactive(t *testing.T) {
	var buf bytes.Buffer
	pm := &ProgressManagerImpl{writer: &buf, interactive: true, description: defaultProgressDescription}

	pm.Describe("Reading corpus")
	pm.Initialize(2)
	pm.Start()
	pm.Update(1, 2)
	pm.Update(2, 2)
	pm.Complete(true)

	assert.Contains(t, buf.String(), "Reading corpus")

	// A failed phase leaves no bar behind
	pm.Initialize(5)
	pm.Start()
	pm.Complete(false)
	pm.Close()
	assert.Nil(t, pm.progressBar)
}
