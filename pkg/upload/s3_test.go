package upload

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethpandaops/uploadoor/pkg/config"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewS3Uploader_Expiry(t *testing.T) {
	tests := []struct {
		name    string
		expiry  string
		want    time.Duration
		wantErr bool
	}{
		{
			name:   "default one hour",
			expiry: "",
			want:   time.Hour,
		},
		{
			name:   "custom expiry",
			expiry: "15m",
			want:   15 * time.Minute,
		},
		{
			name:    "invalid expiry",
			expiry:  "soon",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, _ := test.NewNullLogger()

			u, err := NewS3Uploader(log, &config.S3Config{
				Bucket:        "b",
				Key:           "k",
				PresignExpiry: tt.expiry,
			})
			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, u.(*s3Uploader).expiry)
		})
	}
}

func TestPreflight(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{
			name:   "writable bucket",
			status: http.StatusOK,
		},
		{
			name:    "rejected write",
			status:  http.StatusForbidden,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPut, r.Method)
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			u, _ := newTestUploader(&stubPresigner{url: srv.URL})

			err := u.Preflight(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPreflight_PresignFailure(t *testing.T) {
	u, _ := newTestUploader(&stubPresigner{err: assert.AnError})

	assert.Error(t, u.Preflight(context.Background()))
}
