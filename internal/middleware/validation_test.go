package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "sheetpivot/internal/errors"
	"sheetpivot/internal/shared/testutil"
)

type sampleRequest struct {
	Path       string   `json:"path" validate:"required,workbook"`
	Sheet      string   `json:"sheet,omitempty" validate:"omitempty,sheetname"`
	Collection string   `json:"collection,omitempty" validate:"omitempty,collection"`
	Index      []string `json:"index,omitempty" validate:"omitempty,dive,required"`
}

func (s *sampleRequest) Bind(*http.Request) error {
	s.Path = strings.TrimSpace(s.Path)
	return nil
}

func jsonRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/import", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestDecodeAndValidate(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	v := NewRequestValidator(logger)

	tests := []struct {
		name       string
		body       string
		wantCode   string
		wantFields []string
	}{
		{name: "valid", body: `{"path":" in.xlsx ","sheet":"Hoja1","collection":"tables"}`},
		{name: "upper case extension", body: `{"path":"IN.XLSM"}`},
		{name: "missing path", body: `{}`, wantCode: "VALIDATION_FAILED", wantFields: []string{"path"}},
		{name: "csv path", body: `{"path":"in.csv"}`, wantCode: "VALIDATION_FAILED", wantFields: []string{"path"}},
		{name: "bad sheet", body: `{"path":"in.xlsx","sheet":"a/b"}`, wantCode: "VALIDATION_FAILED", wantFields: []string{"sheet"}},
		{name: "long sheet", body: `{"path":"in.xlsx","sheet":"` + strings.Repeat("x", 32) + `"}`, wantCode: "VALIDATION_FAILED", wantFields: []string{"sheet"}},
		{name: "bad collection", body: `{"path":"in.xlsx","collection":"a/b"}`, wantCode: "VALIDATION_FAILED", wantFields: []string{"collection"}},
		{name: "blank index entry", body: `{"path":"in.xlsx","index":["region",""]}`, wantCode: "VALIDATION_FAILED", wantFields: []string{"index[1]"}},
		{name: "malformed", body: `{"path":`, wantCode: "INVALID_JSON"},
		{name: "too large", body: `{"path":"` + strings.Repeat("x", int(DefaultMaxBodySize)) + `.xlsx"}`, wantCode: "PAYLOAD_TOO_LARGE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req sampleRequest
			err := v.DecodeAndValidate(jsonRequest(tt.body), &req)
			if tt.wantCode == "" {
				require.NoError(t, err)
				assert.NotEmpty(t, req.Path)
				assert.Equal(t, strings.TrimSpace(req.Path), req.Path)
				return
			}

			var apiErr *apierrors.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.wantCode, apiErr.ErrorCode)
			if len(tt.wantFields) > 0 {
				details, ok := apiErr.Details.(apierrors.ValidationErrors)
				require.True(t, ok)
				var fields []string
				for _, e := range details.Errors {
					fields = append(fields, e.Field)
					assert.NotEmpty(t, e.Message)
				}
				assert.Equal(t, tt.wantFields, fields)
			}
		})
	}
}

func TestDecodeAndValidateEmptyBody(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	v := NewRequestValidator(logger)

	req := httptest.NewRequest(http.MethodPost, "/api/import", nil)
	req.Header.Set("Content-Type", "application/json")

	var apiErr *apierrors.APIError
	require.ErrorAs(t, v.DecodeAndValidate(req, &sampleRequest{}), &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}

func TestContentTypeValidator(t *testing.T) {
	h := ContentTypeValidator("application/json")(http.HandlerFunc(okHandler))

	tests := []struct {
		name        string
		method      string
		contentType string
		want        int
	}{
		{"json", http.MethodPost, "application/json; charset=utf-8", http.StatusOK},
		{"missing", http.MethodPost, "", http.StatusUnsupportedMediaType},
		{"form", http.MethodPost, "application/x-www-form-urlencoded", http.StatusUnsupportedMediaType},
		{"get skips", http.MethodGet, "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/export", strings.NewReader("{}"))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
