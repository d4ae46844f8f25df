package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{
			name: "direct coded error",
			err:  New(CodeUnsupportedFormat, "bad extension"),
			want: CodeUnsupportedFormat,
		},
		{
			name: "wrapped once",
			err:  fmt.Errorf("processing cv.pdf: %w", New(CodeExtractionFailed, "decode failed")),
			want: CodeExtractionFailed,
		},
		{
			name: "wrapped twice",
			err:  fmt.Errorf("run aborted: %w", fmt.Errorf("cv.pdf: %w", Wrap(CodeAnalysisFailed, "completion call failed", errors.New("quota exceeded")))),
			want: CodeAnalysisFailed,
		},
		{
			name: "plain error has no code",
			err:  errors.New("boom"),
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.err))
		})
	}
}

func TestErrorString(t *testing.T) {
	plain := New(CodeConfiguration, "gemini api key is not configured")
	assert.Equal(t, "CONFIGURATION_ERROR: gemini api key is not configured", plain.Error())

	wrapped := Wrap(CodeMalformedResponse, "response does not match schema", errors.New("missing candidateName"))
	assert.Equal(t, "MALFORMED_RESPONSE: response does not match schema: missing candidateName", wrapped.Error())
	require.ErrorContains(t, wrapped.Unwrap(), "candidateName")
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeMalformedResponse, "missing field"))
	assert.True(t, HasCode(err, CodeMalformedResponse))
	assert.False(t, HasCode(err, CodeAnalysisFailed))
}
