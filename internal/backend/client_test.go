package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omix2003/courierlink/internal/model"
	"github.com/omix2003/courierlink/internal/session"
	"github.com/omix2003/courierlink/internal/testutil"
)

func makeSession(t *testing.T) *session.Session {
	t.Helper()
	claims := jwt.MapClaims{"user_id": "agent-1", "role": "AGENT", "exp": time.Now().Add(time.Hour).Unix()}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	sess := session.New(testutil.MakeNoopLogger())
	require.NoError(t, sess.SetToken(tok))
	return sess
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second, makeSession(t), testutil.MakeNoopLogger()), srv
}

func TestClient_GenerateVerification(t *testing.T) {
	expiresAt := time.Now().Add(5 * time.Minute).UTC().Truncate(time.Second)

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/verification/generate", r.URL.Path)
		assert.Contains(t, r.Header.Get("Authorization"), "Bearer ")

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "O1", body["orderId"])

		json.NewEncoder(w).Encode(map[string]any{"qrCode": "Q1", "expiresAt": expiresAt})
	}))

	codes, err := client.GenerateVerification(context.Background(), "O1")
	require.NoError(t, err)
	assert.Equal(t, "Q1", codes.QRCode)
	assert.True(t, codes.ExpiresAt.Equal(expiresAt))
}

func TestClient_GetVerification(t *testing.T) {
	verifiedAt := time.Now().UTC().Truncate(time.Second)

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/verification/O1", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"hasOtp":             true,
			"hasQrCode":          true,
			"verifiedAt":         verifiedAt,
			"verificationMethod": "QR",
		})
	}))

	rec, err := client.GetVerification(context.Background(), "O1")
	require.NoError(t, err)
	assert.Equal(t, "O1", rec.OrderID)
	assert.True(t, rec.HasOTP)
	assert.True(t, rec.Verified())
	require.NotNil(t, rec.VerificationMethod)
	assert.Equal(t, model.MethodQR, *rec.VerificationMethod)
}

func TestClient_VerifyOTP_DomainErrorSurfacedVerbatim(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/verification/O1/otp", r.URL.Path)
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"message": "invalid verification code"})
	}))

	err := client.VerifyOTP(context.Background(), "O1", "000000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid verification code")
}

func TestClient_ResolveBarcode_Success(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/scan/barcode", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"order": map[string]string{"id": "o9", "status": "ASSIGNED", "trackingNumber": "TRK-9"},
		})
	}))

	order, err := client.ResolveBarcode(context.Background(), "ABC123")
	require.NoError(t, err)
	assert.Equal(t, "o9", order.ID)
	assert.Equal(t, model.OrderStatusAssigned, order.Status)
}

func TestClient_ResolveQR_NotFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/scan/qr", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "no order for code"})
	}))

	_, err := client.ResolveQR(context.Background(), "NOPE")
	require.ErrorIs(t, err, model.ErrOrderNotFound)
	assert.Contains(t, err.Error(), "no order for code")
}

func TestClient_PermissionDenied(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))

	_, err := client.ResolveBarcode(context.Background(), "ABC123")
	require.ErrorIs(t, err, model.ErrPermissionDenied)
}

func TestClient_BackendUnreachable(t *testing.T) {
	client, srv := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := client.ResolveBarcode(context.Background(), "ABC123")
	require.ErrorIs(t, err, model.ErrBackendUnreachable)
}
