package extract

import (
	"errors"
	"testing"

	"github.com/ledgerlens/ledgerlens/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

func TestParseExtractionJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:  "bare object",
			input: `{"vendorName": "Acme"}`,
		},
		{
			name:  "markdown fenced",
			input: "```json\n{\"vendorName\": \"Acme\"}\n```",
		},
		{
			name:  "surrounded by prose",
			input: "Here is the extraction:\n{\"vendorName\": \"Acme\"}\nLet me know if you need more.",
		},
		{
			name:    "no object at all",
			input:   "I could not read this document.",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := parseExtractionJSON(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Acme", raw.VendorName)
		})
	}
}

func TestNormalizeAPIError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "http 429 maps to quota",
			err:  &googleapi.Error{Code: 429, Message: "too many requests"},
			want: common.ErrQuotaExceeded,
		},
		{
			name: "quota message maps to quota",
			err:  errors.New("googleapi: Error 403: Quota exceeded for requests"),
			want: common.ErrQuotaExceeded,
		},
		{
			name: "resource exhausted maps to quota",
			err:  errors.New("rpc error: code = ResourceExhausted desc = resource exhausted"),
			want: common.ErrQuotaExceeded,
		},
		{
			name: "invalid argument maps to read error",
			err:  errors.New("rpc error: code = InvalidArgument desc = invalid argument"),
			want: common.ErrReadFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeAPIError(tt.err)
			assert.True(t, errors.Is(got, tt.want), "got %v", got)
		})
	}
}

func TestNormalizeAPIError_GenericStaysGeneric(t *testing.T) {
	got := normalizeAPIError(errors.New("connection reset by peer"))
	assert.False(t, errors.Is(got, common.ErrQuotaExceeded))
	assert.False(t, errors.Is(got, common.ErrReadFailed))
	assert.Error(t, got)
}

func TestValidateFileType(t *testing.T) {
	assert.NoError(t, ValidateFileType("scan.png", "image/png"))
	assert.NoError(t, ValidateFileType("doc.pdf", "application/pdf"))

	err := ValidateFileType("notes.txt", "text/plain")
	assert.True(t, errors.Is(err, common.ErrInvalidFile))
	assert.Contains(t, err.Error(), "notes.txt")
}

func TestDetectMIMEType(t *testing.T) {
	png := append([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, make([]byte, 64)...)
	assert.Equal(t, "image/png", DetectMIMEType("scan.png", png))

	pdf := []byte("%PDF-1.4 fake content")
	assert.Equal(t, "application/pdf", DetectMIMEType("invoice.pdf", pdf))

	// HEIC does not content-sniff; the extension decides.
	assert.Equal(t, "image/heic", DetectMIMEType("photo.heic", make([]byte, 32)))
}
