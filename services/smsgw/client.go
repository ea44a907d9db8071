package smsgw

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/trezcool/coachdesk/core"
	"github.com/trezcool/coachdesk/core/sms"
)

const responseAccepted = 202

// provider error codes
var errorCodes = map[int]string{
	1001: "Invalid Number",
	1002: "sender id not correct/sender id is disabled",
	1003: "Please Required all fields/Contact Your System Administrator",
	1005: "Internal Error",
	1006: "Balance Validity Not Available",
	1007: "Balance Insufficient",
	1011: "User Id not found",
	1012: "Masking SMS must be sent in Bengali",
	1013: "Sender Id has not found Gateway by api key",
	1014: "Sender Type Name not found using this sender by api key",
	1015: "Sender Id has not found Any Valid Gateway by api key",
	1016: "Sender Type Name Active Price Info not found by this sender id",
	1017: "Sender Type Name Price Info not found by this sender id",
	1018: "The Owner of this (username) Account is disabled",
	1019: "The (sender type name) Price of this (username) Account is disabled",
	1020: "The parent of this account is not found.",
	1021: "The parent active (sender type name) price of this account is not found.",
	1031: "Your Account Not Verified, Please Contact Administrator.",
	1032: "IP Not whitelisted",
}

func providerError(code int, msg string) string {
	if msg = strings.TrimSpace(msg); msg != "" {
		return msg
	}
	if msg, ok := errorCodes[code]; ok {
		return msg
	}
	return fmt.Sprintf("provider error code %d", code)
}

type (
	sendResponse struct {
		ResponseCode int         `json:"response_code"`
		MessageID    json.Number `json:"message_id"`
		Success      string      `json:"success_message"`
		Error        string      `json:"error_message"`
	}

	balanceResponse struct {
		ResponseCode int         `json:"response_code"`
		Balance      json.Number `json:"balance"`
	}

	dlrRecipient struct {
		Number string `json:"number"`
		Status string `json:"status"`
	}

	dlrResponse struct {
		ResponseCode int            `json:"response_code"`
		Status       string         `json:"status"`
		Recipients   []dlrRecipient `json:"recipients"`
		Error        string         `json:"error_message"`
	}
)

// Client talks to the HTTP SMS provider.
type Client struct {
	apiKey  string
	baseURL string
	logger  core.Logger
	rest    *rest.Client
}

var _ sms.Gateway = (*Client)(nil)

func NewClient(conf *core.Config, logger core.Logger) *Client {
	return &Client{
		apiKey:  conf.SMS.APIKey,
		baseURL: conf.SMS.BaseURL,
		logger:  logger,
		rest:    &rest.Client{HTTPClient: &http.Client{Timeout: conf.SMS.Timeout}},
	}
}

// NewGateway picks the HTTP client, or the console gateway when no API key is set outside PROD.
func NewGateway(conf *core.Config, logger core.Logger) sms.Gateway {
	if conf.SMS.APIKey == "" && !conf.IsProd() {
		return NewConsoleGateway(logger)
	}
	return NewClient(conf, logger)
}

func (c *Client) get(ctx context.Context, path string, params map[string]string, dst interface{}) error {
	params["api_key"] = c.apiKey
	req := rest.Request{
		Method:      rest.Get,
		BaseURL:     c.baseURL + path,
		Headers:     map[string]string{"Accept": "application/json"},
		QueryParams: params,
	}
	res, err := c.rest.SendWithContext(ctx, req)
	if err != nil {
		return errors.Wrap(err, "calling sms gateway")
	}
	if res.StatusCode >= http.StatusBadRequest {
		return errors.Errorf("sms gateway returned HTTP %d", res.StatusCode)
	}
	if err := json.Unmarshal([]byte(res.Body), dst); err != nil {
		return errors.Wrap(err, "decoding sms gateway response")
	}
	return nil
}

func (c *Client) Send(ctx context.Context, phone, message, senderID string) sms.SendResult {
	if c.apiKey == "" {
		return sms.SendResult{Error: "sms gateway api key not configured"}
	}
	number, err := NormalizePhone(phone)
	if err != nil {
		return sms.SendResult{Error: err.Error()}
	}

	params := map[string]string{"type": "text", "number": number, "message": message}
	if senderID != "" {
		params["senderid"] = senderID
	}
	var res sendResponse
	if err := c.get(ctx, "/smsapi", params, &res); err != nil {
		return sms.SendResult{Error: err.Error()}
	}
	if res.ResponseCode != responseAccepted {
		return sms.SendResult{Error: providerError(res.ResponseCode, res.Error)}
	}
	return sms.SendResult{OK: true, RequestID: res.MessageID.String()}
}

func (c *Client) Balance(ctx context.Context) string {
	if c.apiKey == "" {
		return "0"
	}
	var res balanceResponse
	if err := c.get(ctx, "/getBalanceApi", map[string]string{}, &res); err != nil {
		c.logger.Warn(fmt.Sprintf("fetching sms balance: %v", err))
		return "0"
	}
	if res.Balance == "" {
		return "0"
	}
	return res.Balance.String()
}

func (c *Client) DeliveryReport(ctx context.Context, requestID string) sms.DeliveryReport {
	if c.apiKey == "" {
		return sms.DeliveryReport{Error: "sms gateway api key not configured"}
	}
	var res dlrResponse
	if err := c.get(ctx, "/getDLR", map[string]string{"request_id": requestID}, &res); err != nil {
		return sms.DeliveryReport{Error: err.Error()}
	}
	if res.ResponseCode != responseAccepted {
		return sms.DeliveryReport{Error: providerError(res.ResponseCode, res.Error)}
	}

	report := sms.DeliveryReport{OK: true, Status: res.Status}
	for _, r := range res.Recipients {
		report.Recipients = append(report.Recipients, sms.RecipientStatus{Phone: r.Number, Status: r.Status})
	}
	return report
}
