package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-crave/internal/common/logger"
	"campus-crave/internal/domain"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: cart is empty", domain.ErrInvalid), http.StatusBadRequest},
		{fmt.Errorf("%w: wrong password", domain.ErrUnauthorized), http.StatusUnauthorized},
		{fmt.Errorf("%w: kitchen only", domain.ErrForbidden), http.StatusForbidden},
		{fmt.Errorf("%w: order", domain.ErrNotFound), http.StatusNotFound},
		{&domain.TransitionError{From: domain.StatusPending, To: domain.StatusDelivered}, http.StatusConflict},
		{fmt.Errorf("%w: already reviewed", domain.ErrConflict), http.StatusConflict},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		code, _ := Classify(tc.err)
		assert.Equal(t, tc.want, code, tc.err.Error())
	}
}

func TestWriteErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, errors.New("pq: password authentication failed"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal error", body["detail"])
	assert.EqualValues(t, 500, body["status"])
}

type loginBody struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required"`
}

func TestDecode(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@campus.edu","role":"student"}`))
	var ok loginBody
	require.NoError(t, Decode(r, &ok))
	assert.Equal(t, "a@campus.edu", ok.Email)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"nope"}`))
	var bad loginBody
	err := Decode(r, &bad)
	assert.ErrorIs(t, err, domain.ErrInvalid)
	assert.Contains(t, err.Error(), "Email failed email")

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@campus.edu","role":"x","extra":1}`))
	assert.ErrorIs(t, Decode(r, &bad), domain.ErrInvalid)
}

type staticTokens map[string]domain.User

func (s staticTokens) ParseToken(tok string) (domain.User, error) {
	u, ok := s[tok]
	if !ok {
		return domain.User{}, errors.New("bad token")
	}
	return u, nil
}

func TestAuthenticate(t *testing.T) {
	tokens := staticTokens{
		"chef":    {ID: 2, Email: "chef@campus.edu", Role: domain.RoleKitchen},
		"student": {ID: 4, Email: "student@campus.edu", Role: domain.RoleStudent},
	}
	h := Authenticate(tokens, domain.RoleKitchen)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := UserFromContext(r.Context())
		require.True(t, ok)
		WriteJSON(w, http.StatusOK, map[string]any{"id": u.ID})
	}))

	call := func(header string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/kitchen/board", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}
	assert.Equal(t, http.StatusUnauthorized, call(""))
	assert.Equal(t, http.StatusUnauthorized, call("Bearer forged"))
	assert.Equal(t, http.StatusForbidden, call("Bearer student"))
	assert.Equal(t, http.StatusOK, call("Bearer chef"))
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger.Configure(&buf, "info")
	t.Cleanup(func() { logger.Configure(os.Stdout, "info") })

	h := Logging(logger.New("api"), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, RequestID(r.Context()))
		w.WriteHeader(http.StatusTeapot)
	}))
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "req-42", rec.Header().Get(RequestIDHeader))
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "request_completed", entry["action"])
	assert.Equal(t, "req-42", entry["request_id"])
	assert.EqualValues(t, http.StatusTeapot, entry["status"])
}
