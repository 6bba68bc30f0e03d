package webhook

import (
	"errors"
	"net/http"
	"reflect"
	"testing"
	"time"
)

const testSecret = "whsec_MfKQ9r8GKYqrTwjUPD8ILPZIo2LaLaSw"

func newTestVerifier(t *testing.T) *SvixVerifier {
	t.Helper()
	v, err := NewSvixVerifier(testSecret)
	if err != nil {
		t.Fatalf("NewSvixVerifier() error = %v", err)
	}
	return v
}

func TestNewSvixVerifier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		secret  string
		wantErr error
	}{
		{"valid", testSecret, nil},
		{"empty", "", ErrMissingSecret},
		{"blank", "   ", ErrMissingSecret},
		{"not base64", "whsec_!!!not-base64!!!", ErrInvalidSecret},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v, err := NewSvixVerifier(tt.secret)
			if tt.wantErr == nil {
				if err != nil || v == nil {
					t.Fatalf("NewSvixVerifier() = %v, %v; want verifier", v, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewSvixVerifier() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSvixVerifier_Verify(t *testing.T) {
	t.Parallel()

	v := newTestVerifier(t)
	body := []byte(`{"type":"user.created","data":{"id":"u_1"}}`)

	t.Run("signed body verifies", func(t *testing.T) {
		t.Parallel()
		headers, err := v.Sign("msg_1", time.Now(), body)
		if err != nil {
			t.Fatalf("Sign() error = %v", err)
		}
		if err := v.Verify(body, headers); err != nil {
			t.Errorf("Verify() error = %v", err)
		}
	})

	t.Run("same inputs same verdict", func(t *testing.T) {
		t.Parallel()
		headers, err := v.Sign("msg_2", time.Now(), body)
		if err != nil {
			t.Fatalf("Sign() error = %v", err)
		}
		first := v.Verify(body, headers)
		second := v.Verify(body, headers)
		if (first == nil) != (second == nil) {
			t.Errorf("Verify() verdicts differ: %v vs %v", first, second)
		}
	})

	t.Run("tampered body rejected", func(t *testing.T) {
		t.Parallel()
		headers, err := v.Sign("msg_3", time.Now(), body)
		if err != nil {
			t.Fatalf("Sign() error = %v", err)
		}
		tampered := []byte(`{"type":"user.created","data":{"id":"u_2"}}`)
		if err := v.Verify(tampered, headers); !errors.Is(err, ErrInvalidSignature) {
			t.Errorf("Verify() error = %v, want ErrInvalidSignature", err)
		}
	})

	t.Run("re-serialized body rejected", func(t *testing.T) {
		t.Parallel()
		headers, err := v.Sign("msg_4", time.Now(), body)
		if err != nil {
			t.Fatalf("Sign() error = %v", err)
		}
		spaced := []byte(`{"type": "user.created", "data": {"id": "u_1"}}`)
		if err := v.Verify(spaced, headers); !errors.Is(err, ErrInvalidSignature) {
			t.Errorf("Verify() error = %v, want ErrInvalidSignature", err)
		}
	})

	t.Run("stale timestamp rejected", func(t *testing.T) {
		t.Parallel()
		headers, err := v.Sign("msg_5", time.Now().Add(-time.Hour), body)
		if err != nil {
			t.Fatalf("Sign() error = %v", err)
		}
		if err := v.Verify(body, headers); !errors.Is(err, ErrInvalidSignature) {
			t.Errorf("Verify() error = %v, want ErrInvalidSignature", err)
		}
	})

	t.Run("other secret rejected", func(t *testing.T) {
		t.Parallel()
		other, err := NewSvixVerifier("whsec_dGVzdC1zZWNyZXQtZm9yLW90aGVyLXRlbmFudA==")
		if err != nil {
			t.Fatalf("NewSvixVerifier() error = %v", err)
		}
		headers, err := other.Sign("msg_6", time.Now(), body)
		if err != nil {
			t.Fatalf("Sign() error = %v", err)
		}
		if err := v.Verify(body, headers); !errors.Is(err, ErrInvalidSignature) {
			t.Errorf("Verify() error = %v, want ErrInvalidSignature", err)
		}
	})

	t.Run("missing headers", func(t *testing.T) {
		t.Parallel()
		headers := http.Header{}
		headers.Set(HeaderID, "msg_7")
		err := v.Verify(body, headers)
		if !errors.Is(err, ErrMissingHeaders) {
			t.Errorf("Verify() error = %v, want ErrMissingHeaders", err)
		}
	})
}

func TestMissingHeaders(t *testing.T) {
	t.Parallel()

	full := http.Header{}
	full.Set(HeaderID, "msg_1")
	full.Set(HeaderTimestamp, "1700000000")
	full.Set(HeaderSignature, "v1,abc")

	blankSig := full.Clone()
	blankSig.Set(HeaderSignature, "  ")

	tests := []struct {
		name    string
		headers http.Header
		want    []string
	}{
		{"all present", full, nil},
		{"none", http.Header{}, []string{HeaderID, HeaderTimestamp, HeaderSignature}},
		{"blank signature", blankSig, []string{HeaderSignature}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := MissingHeaders(tt.headers); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MissingHeaders() = %v, want %v", got, tt.want)
			}
		})
	}
}
