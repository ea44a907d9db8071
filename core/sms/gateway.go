package sms

import "context"

type (
	SendResult struct {
		OK        bool   `json:"ok"`
		RequestID string `json:"request_id,omitempty"`
		Error     string `json:"error,omitempty"`
	}

	RecipientStatus struct {
		Phone  string `json:"phone"`
		Status string `json:"status"`
	}

	DeliveryReport struct {
		OK         bool              `json:"ok"`
		Status     string            `json:"status,omitempty"`
		Recipients []RecipientStatus `json:"recipients,omitempty"`
		Error      string            `json:"error,omitempty"`
	}

	// Gateway is the external SMS provider. Its methods never fail: every problem is reported in the result.
	Gateway interface {
		Send(ctx context.Context, phone, message, senderID string) SendResult
		// Balance returns the remaining credit, "0" when it cannot be fetched.
		Balance(ctx context.Context) string
		DeliveryReport(ctx context.Context, requestID string) DeliveryReport
	}
)
