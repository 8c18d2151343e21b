package gcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGCSURI(t *testing.T) {
	tests := []struct {
		uri        string
		wantBucket string
		wantObject string
		wantErr    bool
	}{
		{uri: "gs://resumes/abc/resume.pdf", wantBucket: "resumes", wantObject: "abc/resume.pdf"},
		{uri: "gs://b/o", wantBucket: "b", wantObject: "o"},
		{uri: "https://storage.googleapis.com/b/o", wantErr: true},
		{uri: "gs://bucket-only", wantErr: true},
		{uri: "gs:///object", wantErr: true},
		{uri: "gs://bucket/", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			bucket, object, err := ParseGCSURI(tt.uri)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBucket, bucket)
			assert.Equal(t, tt.wantObject, object)
		})
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("RESUMIND_TEST_SET", "value")
	assert.Equal(t, "value", GetEnv("RESUMIND_TEST_SET", "fallback"))
	assert.Equal(t, "fallback", GetEnv("RESUMIND_TEST_UNSET_VARIABLE", "fallback"))
}
