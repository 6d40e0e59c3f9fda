package clients

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

	"github.com/Sarbjeetmaan/backend/config"
	"github.com/Sarbjeetmaan/backend/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type PaymentState string

const (
	PaymentStateActive  PaymentState = "ACTIVE"
	PaymentStatePaid    PaymentState = "PAID"
	PaymentStateExpired PaymentState = "EXPIRED"
)

type CreatePaymentRequest struct {
	OrderID       string
	Amount        decimal.Decimal
	Currency      string
	CustomerID    string
	CustomerEmail string
	CustomerPhone string
	ReturnURL     string
}

type PaymentGateway interface {
	CreateOrder(ctx context.Context, req CreatePaymentRequest) (*domain.PaymentSession, error)
	GetOrderStatus(ctx context.Context, externalOrderID string) (PaymentState, error)
}

type customerDetails struct {
	CustomerID    string `json:"customer_id"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
}

type orderMeta struct {
	ReturnURL string `json:"return_url"`
}

type createOrderPayload struct {
	OrderID         string          `json:"order_id"`
	OrderAmount     json.Number     `json:"order_amount"`
	OrderCurrency   string          `json:"order_currency"`
	CustomerDetails customerDetails `json:"customer_details"`
	OrderMeta       orderMeta       `json:"order_meta"`
}

type gatewayOrderResponse struct {
	CfOrderID        interface{} `json:"cf_order_id"`
	OrderID          string      `json:"order_id"`
	OrderStatus      string      `json:"order_status"`
	PaymentSessionID string      `json:"payment_session_id"`
}

type cashfreeClient struct {
	baseURL    string
	appID      string
	secretKey  string
	apiVersion string
	client     *http.Client
	log        *logrus.Logger
}

func NewCashfreeClient(cfg config.PaymentConfig, logger *logrus.Logger) PaymentGateway {
	return &cashfreeClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		appID:      cfg.AppID,
		secretKey:  cfg.SecretKey,
		apiVersion: cfg.APIVersion,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		log: logger,
	}
}

func (c *cashfreeClient) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-client-id", c.appID)
	req.Header.Set("x-client-secret", c.secretKey)
	req.Header.Set("x-api-version", c.apiVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// do executes the request and returns the raw body of a 2xx response.
func (c *cashfreeClient) do(req *http.Request, op string) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Errorf("PaymentClient: Failed to execute %s request: %v", op, err)
		return nil, &domain.GatewayError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		c.log.Errorf("PaymentClient: Failed to read %s response (status %d): %v", op, resp.StatusCode, err)
		return nil, &domain.GatewayError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.WithFields(logrus.Fields{
			"op":            op,
			"status_code":   resp.StatusCode,
			"response_body": string(bodyBytes),
		}).Error("PaymentClient: Gateway returned non-success status")
		return nil, &domain.GatewayError{Op: op, StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}
	return bodyBytes, nil
}

func (c *cashfreeClient) CreateOrder(ctx context.Context, in CreatePaymentRequest) (*domain.PaymentSession, error) {
	const op = "create order"
	payload := createOrderPayload{
		OrderID:       in.OrderID,
		OrderAmount:   json.Number(in.Amount.StringFixed(2)),
		OrderCurrency: in.Currency,
		CustomerDetails: customerDetails{
			CustomerID:    in.CustomerID,
			CustomerEmail: in.CustomerEmail,
			CustomerPhone: in.CustomerPhone,
		},
		OrderMeta: orderMeta{ReturnURL: in.ReturnURL},
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		c.log.Errorf("PaymentClient: Failed to marshal create order payload for %s: %v", in.OrderID, err)
		return nil, fmt.Errorf("failed to prepare payment gateway payload: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(jsonData))
	if err != nil {
		c.log.Errorf("PaymentClient: Failed to create %s request for %s: %v", op, in.OrderID, err)
		return nil, fmt.Errorf("failed to create payment gateway request: %w", err)
	}

	c.log.Infof("PaymentClient: Creating gateway order %s for amount %s %s", in.OrderID, payload.OrderAmount, in.Currency)
	body, err := c.do(req, op)
	if err != nil {
		return nil, err
	}

	var response gatewayOrderResponse
	if err := json.Unmarshal(body, &response); err != nil {
		c.log.Errorf("PaymentClient: Failed to decode create order response for %s: %v. Body: %s", in.OrderID, err, string(body))
		return nil, &domain.GatewayError{Op: op, StatusCode: http.StatusOK, Body: string(body), Err: err}
	}
	if response.PaymentSessionID == "" {
		c.log.Errorf("PaymentClient: Gateway response for %s has no payment_session_id. Body: %s", in.OrderID, string(body))
		return nil, &domain.GatewayError{Op: op, StatusCode: http.StatusOK, Body: string(body), Err: errors.New("missing payment session id")}
	}

	externalID := response.OrderID
	if externalID == "" {
		externalID = in.OrderID
	}
	c.log.Infof("PaymentClient: Gateway order created for %s (cf_order_id %v)", externalID, response.CfOrderID)
	return &domain.PaymentSession{
		SessionToken:    response.PaymentSessionID,
		ExternalOrderID: externalID,
	}, nil
}

func (c *cashfreeClient) GetOrderStatus(ctx context.Context, externalOrderID string) (PaymentState, error) {
	const op = "get order"
	endpoint := fmt.Sprintf("%s/orders/%s", c.baseURL, url.PathEscape(externalOrderID))
	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		c.log.Errorf("PaymentClient: Failed to create %s request for %s: %v", op, externalOrderID, err)
		return "", fmt.Errorf("failed to create payment gateway request: %w", err)
	}

	c.log.Infof("PaymentClient: Requesting gateway status for order %s", externalOrderID)
	body, err := c.do(req, op)
	if err != nil {
		return "", err
	}

	var response gatewayOrderResponse
	if err := json.Unmarshal(body, &response); err != nil {
		c.log.Errorf("PaymentClient: Failed to decode order status for %s: %v. Body: %s", externalOrderID, err, string(body))
		return "", &domain.GatewayError{Op: op, StatusCode: http.StatusOK, Body: string(body), Err: err}
	}

	state := PaymentState(strings.ToUpper(response.OrderStatus))
	c.log.Infof("PaymentClient: Gateway reports order %s as %s", externalOrderID, state)
	return state, nil
}
