package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorFormatting(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "without cause",
			err:  NewMissingInputError(),
			want: "MISSING_INPUT: no resume text provided",
		},
		{
			name: "with cause",
			err:  NewExtractionError("cv.pdf", fmt.Errorf("bad xref")),
			want: "EXTRACTION_FAILED: failed to extract text from document (caused by: bad xref)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestNewTransportError(t *testing.T) {
	t.Run("status response", func(t *testing.T) {
		err := NewTransportError(401, `{"error":"invalid key"}`, nil)
		assert.Equal(t, ErrorTypeNetwork, err.Type)
		assert.Equal(t, 401, err.Context["status_code"])
		assert.Equal(t, `{"error":"invalid key"}`, err.Context["response_body"])
		assert.Equal(t, 401, StatusCode(err))
	})

	t.Run("network failure wraps cause", func(t *testing.T) {
		cause := fmt.Errorf("dial tcp: connection refused")
		err := NewTransportError(0, "", cause)
		assert.ErrorIs(t, err, cause)
		assert.NotContains(t, err.Context, "status_code")
		assert.Equal(t, 0, StatusCode(err))
	})
}

func TestHasCode(t *testing.T) {
	wrapped := fmt.Errorf("analysis: %w", NewIncompleteAnalysisError(3))

	assert.True(t, HasCode(wrapped, ErrCodeIncompleteAnalysis))
	assert.False(t, HasCode(wrapped, ErrCodeMissingInput))
	assert.False(t, HasCode(stderrors.New("plain"), ErrCodeMissingInput))
	assert.False(t, HasCode(nil, ErrCodeMissingInput))

	var appErr *AppError
	require.True(t, stderrors.As(wrapped, &appErr))
	assert.Equal(t, 3, appErr.Context["attempts"])
}

func TestNewLoggerLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		t.Run(level, func(t *testing.T) {
			logger, err := New(level)
			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}

	_, err := New("verbose")
	assert.Error(t, err)
}
