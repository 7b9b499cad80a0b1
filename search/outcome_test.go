package search

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	navErr := errors.New("navigation timeout")

	tests := []struct {
		name string
		res  ExtractionResult
		err  error
		want Kind
	}{
		{"title and url", ExtractionResult{Title: "T", URL: "U"}, nil, KindSuccess},
		{"all fields", ExtractionResult{Title: "T", URL: "U", Description: "D"}, nil, KindSuccess},
		{"description only", ExtractionResult{Description: "D"}, nil, KindEmpty},
		{"title only", ExtractionResult{Title: "T"}, nil, KindEmpty},
		{"url only", ExtractionResult{URL: "U"}, nil, KindEmpty},
		{"nothing", ExtractionResult{}, nil, KindEmpty},
		{"error", ExtractionResult{}, navErr, KindFailure},
		{"error wins over result", ExtractionResult{Title: "T", URL: "U"}, navErr, KindFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.res, tt.err).Kind)
		})
	}
}

func TestOutcome_Fields(t *testing.T) {
	ok := Classify(ExtractionResult{Title: "T", URL: "U"}, nil)
	assert.Equal(t, ExtractionResult{Title: "T", URL: "U"}, ok.Result)
	assert.Empty(t, ok.Message())

	empty := Classify(ExtractionResult{Description: "D"}, nil)
	assert.Equal(t, ExtractionResult{}, empty.Result)

	failed := Classify(ExtractionResult{}, errors.New("navigation timeout"))
	assert.Equal(t, "navigation timeout", failed.Message())
	assert.Equal(t, "failure", failed.Kind.String())
}
