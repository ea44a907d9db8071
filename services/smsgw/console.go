package smsgw

import (
	"context"
	"fmt"
	"sync"

	"github.com/trezcool/coachdesk/core"
	"github.com/trezcool/coachdesk/core/sms"
)

// ConsoleGateway logs messages instead of sending them (DEV/TEST without an API key).
type ConsoleGateway struct {
	logger core.Logger

	mu       sync.Mutex
	Sent     []string
	requests map[string]string // {request id: number}
}

var _ sms.Gateway = (*ConsoleGateway)(nil)

func NewConsoleGateway(logger core.Logger) *ConsoleGateway {
	return &ConsoleGateway{logger: logger, requests: make(map[string]string)}
}

func (gw *ConsoleGateway) Send(_ context.Context, phone, message, senderID string) sms.SendResult {
	number, err := NormalizePhone(phone)
	if err != nil {
		return sms.SendResult{Error: err.Error()}
	}
	id := core.NewRequestID()
	gw.logger.Info(fmt.Sprintf("SMS %s from %q to %s: %s", id, senderID, number, message))

	gw.mu.Lock()
	gw.Sent = append(gw.Sent, number)
	gw.requests[id] = number
	gw.mu.Unlock()
	return sms.SendResult{OK: true, RequestID: id}
}

func (gw *ConsoleGateway) Balance(context.Context) string { return "0" }

// DeliveryReport reports messages logged by this gateway as delivered.
func (gw *ConsoleGateway) DeliveryReport(_ context.Context, requestID string) sms.DeliveryReport {
	gw.mu.Lock()
	number, ok := gw.requests[requestID]
	gw.mu.Unlock()
	if !ok {
		return sms.DeliveryReport{Error: fmt.Sprintf("unknown request id %q", requestID)}
	}
	return sms.DeliveryReport{
		OK:         true,
		Status:     "Delivered",
		Recipients: []sms.RecipientStatus{{Phone: number, Status: "Delivered"}},
	}
}
