package utils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOTP_SixDigits(t *testing.T) {
	re := regexp.MustCompile(`^\d{6}$`)
	seen := map[string]struct{}{}
	for i := 0; i < 200; i++ {
		code, err := GenerateOTP()
		require.NoError(t, err)
		assert.Regexp(t, re, code)
		seen[code] = struct{}{}
	}
	assert.Greater(t, len(seen), 150)
}

func TestNewRandomToken(t *testing.T) {
	tok, err := NewRandomToken(32)
	require.NoError(t, err)
	assert.Len(t, tok, 64)

	tok2, err := NewRandomToken(0)
	require.NoError(t, err)
	assert.Len(t, tok2, 64)
	assert.NotEqual(t, tok, tok2)
}

func TestHashToken(t *testing.T) {
	h := HashToken("abc")
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", h)
	assert.NotEqual(t, h, HashToken("abd"))
}

func TestIsStrongPassword(t *testing.T) {
	assert.True(t, IsStrongPassword("Passw0rd"))
	assert.False(t, IsStrongPassword("Pass0rd"))
	assert.False(t, IsStrongPassword("password1"))
	assert.False(t, IsStrongPassword("PASSWORD1"))
	assert.False(t, IsStrongPassword("Password"))
}

func TestIsSafeString(t *testing.T) {
	assert.True(t, IsSafeString("hello world"))
	assert.False(t, IsSafeString("$gt"))
	assert.False(t, IsSafeString("{a}"))
}

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "&lt;script&gt;x&lt;/script&gt;", SanitizeText(" <script>x</script> "))
}

func TestRecaptchaClient_Verify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "secret", r.PostForm.Get("secret"))
		w.Header().Set("Content-Type", "application/json")
		if r.PostForm.Get("response") == "good" {
			_, _ = w.Write([]byte(`{"success":true,"hostname":"localhost"}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":false,"error-codes":["invalid-input-response"]}`))
	}))
	defer srv.Close()

	c := NewRecaptchaClient("secret", srv.URL, time.Second)

	res, err := c.Verify(context.Background(), "good", "")
	require.NoError(t, err)
	assert.True(t, res.Success)

	res, err = c.Verify(context.Background(), "bad", "127.0.0.1")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, []string{"invalid-input-response"}, res.ErrorCodes)
}

func TestRecaptchaClient_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewRecaptchaClient("s", srv.URL, time.Second).Verify(context.Background(), "x", "")
	assert.Error(t, err)
}
