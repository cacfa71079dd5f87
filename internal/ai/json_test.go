package ai

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStripFences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bare json", `{"a": 1}`, `{"a": 1}`},
		{"fenced", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"fenced with language", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"surrounding whitespace", "  \n```json\n{\"a\": 1}\n```\n  ", `{"a": 1}`},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, stripFences(tc.in))
		})
	}
}

func TestDecodeStrict(t *testing.T) {
	type schema struct {
		Score int `json:"score"`
	}

	var out schema
	require.NoError(t, decodeStrict("```json\n{\"score\": 42}\n```", &out))
	require.Equal(t, 42, out.Score)
}

func TestDecodeStrictRejectsUnknownFields(t *testing.T) {
	type schema struct {
		Score int `json:"score"`
	}

	var out schema
	err := decodeStrict(`{"score": 42, "vibes": "good"}`, &out)
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode model output")
}

func TestDecodeStrictRejectsMalformed(t *testing.T) {
	var out map[string]interface{}
	require.Error(t, decodeStrict("not json", &out))
}

func TestRetryable(t *testing.T) {
	require.True(t, retryable(&apiError{statusCode: 0}))
	require.True(t, retryable(&apiError{statusCode: 500}))
	require.True(t, retryable(&apiError{statusCode: 503}))
	require.False(t, retryable(&apiError{statusCode: 400}))
	require.False(t, retryable(&apiError{statusCode: 429}))
	require.False(t, retryable(errors.New("plain")))
}
