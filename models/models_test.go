package models

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     SearchRequest
		wantErr bool
	}{
		{"ok", SearchRequest{Domain: "example.com", Query: "foo"}, false},
		{"empty domain", SearchRequest{Query: "foo"}, true},
		{"empty query", SearchRequest{Domain: "example.com"}, true},
		{"whitespace", SearchRequest{Domain: " ", Query: "\t"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var se *SearchError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, ErrCodeInvalidInput, se.Code)
		})
	}
}

func TestSearchError(t *testing.T) {
	cause := errors.New("exec: chromium not found")
	err := NewSearchError(ErrCodeBrowserLaunch, "failed to launch browser", cause)

	assert.Equal(t, "failed to launch browser: exec: chromium not found", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "bare", NewSearchError(ErrCodeInternal, "bare", nil).Error())
}

func TestSearchResponse_JSON(t *testing.T) {
	data, err := json.Marshal(SearchResponse{URL: "u", Title: "t"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"url":"u","title":"t","description":"","error":null}`, string(data))

	msg := "boom"
	data, err = json.Marshal(SearchResponse{Error: &msg, Code: ErrCodeNavigation})
	require.NoError(t, err)
	assert.JSONEq(t, `{"url":"","title":"","description":"","error":"boom","code":"NAVIGATION_FAILED"}`, string(data))
}

func TestRequestID(t *testing.T) {
	assert.Empty(t, RequestIDFrom(context.Background()))
	assert.Equal(t, "abc", RequestIDFrom(WithRequestID(context.Background(), "abc")))
}
