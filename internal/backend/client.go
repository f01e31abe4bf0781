package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/omix2003/courierlink/internal/logger"
	"github.com/omix2003/courierlink/internal/model"
	"github.com/omix2003/courierlink/internal/session"
)

// Client is a typed HTTP client for the delivery backend's verification and
// scan endpoints. Request/response calls are not retried automatically;
// transport failures surface as model.ErrBackendUnreachable.
type Client struct {
	baseURL string
	http    *http.Client
	session *session.Session
	logger  *logger.Logger
}

// NewClient creates a backend client rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, sess *session.Session, l *logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		session: sess,
		logger:  l,
	}
}

// errorBody is the backend's error envelope. Some endpoints use "error",
// others "message".
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if tok := c.session.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%w: %v", model.ErrBackendUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// decodeError surfaces the backend message verbatim when one is present,
// falling back to a generic error per status class.
func decodeError(resp *http.Response) error {
	var eb errorBody
	msg := ""
	if err := json.NewDecoder(resp.Body).Decode(&eb); err == nil {
		msg = eb.Message
		if msg == "" {
			msg = eb.Error
		}
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		if msg != "" {
			return fmt.Errorf("%w: %s", model.ErrOrderNotFound, msg)
		}
		return model.ErrOrderNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		if msg != "" {
			return fmt.Errorf("%w: %s", model.ErrPermissionDenied, msg)
		}
		return model.ErrPermissionDenied
	default:
		if msg != "" {
			return errors.New(msg)
		}
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}
}

// GenerateVerification requests new OTP and QR codes for an order.
func (c *Client) GenerateVerification(ctx context.Context, orderID string) (model.GeneratedCodes, error) {
	var out struct {
		QRCode    string    `json:"qrCode"`
		ExpiresAt time.Time `json:"expiresAt"`
	}
	err := c.do(ctx, http.MethodPost, "/verification/generate", map[string]string{"orderId": orderID}, &out)
	if err != nil {
		return model.GeneratedCodes{}, err
	}
	return model.GeneratedCodes{QRCode: out.QRCode, ExpiresAt: out.ExpiresAt}, nil
}

// GetVerification loads the verification record for an order.
func (c *Client) GetVerification(ctx context.Context, orderID string) (model.VerificationRecord, error) {
	var out struct {
		HasOTP             bool       `json:"hasOtp"`
		HasQRCode          bool       `json:"hasQrCode"`
		ExpiresAt          *time.Time `json:"expiresAt"`
		VerifiedAt         *time.Time `json:"verifiedAt"`
		VerificationMethod *string    `json:"verificationMethod"`
	}
	err := c.do(ctx, http.MethodGet, "/verification/"+url.PathEscape(orderID), nil, &out)
	if err != nil {
		return model.VerificationRecord{}, err
	}

	rec := model.VerificationRecord{
		OrderID:    orderID,
		HasOTP:     out.HasOTP,
		HasQRCode:  out.HasQRCode,
		ExpiresAt:  out.ExpiresAt,
		VerifiedAt: out.VerifiedAt,
	}
	if out.VerificationMethod != nil {
		m := model.VerificationMethod(*out.VerificationMethod)
		rec.VerificationMethod = &m
	}
	return rec, nil
}

// VerifyOTP submits a one-time code for an order.
func (c *Client) VerifyOTP(ctx context.Context, orderID, code string) error {
	return c.do(ctx, http.MethodPost, "/verification/"+url.PathEscape(orderID)+"/otp", map[string]string{"code": code}, nil)
}

// VerifyQR submits a scanned QR code for an order.
func (c *Client) VerifyQR(ctx context.Context, orderID, code string) error {
	return c.do(ctx, http.MethodPost, "/verification/"+url.PathEscape(orderID)+"/qr", map[string]string{"code": code}, nil)
}

type orderEnvelope struct {
	Order model.OrderSummary `json:"order"`
}

// ResolveBarcode exchanges a 1-D barcode for the order it labels.
func (c *Client) ResolveBarcode(ctx context.Context, code string) (model.OrderSummary, error) {
	var out orderEnvelope
	if err := c.do(ctx, http.MethodPost, "/scan/barcode", map[string]string{"code": code}, &out); err != nil {
		return model.OrderSummary{}, err
	}
	return out.Order, nil
}

// ResolveQR exchanges a QR code for the order it identifies.
func (c *Client) ResolveQR(ctx context.Context, code string) (model.OrderSummary, error) {
	var out orderEnvelope
	if err := c.do(ctx, http.MethodPost, "/scan/qr", map[string]string{"code": code}, &out); err != nil {
		return model.OrderSummary{}, err
	}
	return out.Order, nil
}
