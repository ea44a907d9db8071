package testutil

import (
	"context"
	"strconv"
	"sync"

	"github.com/trezcool/coachdesk/core/sms"
)

type SentSMS struct {
	Phone    string
	Message  string
	SenderID string
}

// Gateway is a scripted sms.Gateway: phones listed in Failures fail with the mapped error.
type Gateway struct {
	Failures map[string]string
	Report   sms.DeliveryReport
	Credit   string

	mu   sync.Mutex
	Sent []SentSMS
}

var _ sms.Gateway = (*Gateway)(nil)

func NewGateway() *Gateway {
	return &Gateway{Failures: make(map[string]string), Credit: "0"}
}

func (gw *Gateway) Send(_ context.Context, phone, message, senderID string) sms.SendResult {
	gw.mu.Lock()
	defer gw.mu.Unlock()

	gw.Sent = append(gw.Sent, SentSMS{Phone: phone, Message: message, SenderID: senderID})
	if errMsg, ok := gw.Failures[phone]; ok {
		return sms.SendResult{OK: false, Error: errMsg}
	}
	return sms.SendResult{OK: true, RequestID: "req-" + strconv.Itoa(len(gw.Sent))}
}

func (gw *Gateway) Balance(context.Context) string { return gw.Credit }

func (gw *Gateway) DeliveryReport(context.Context, string) sms.DeliveryReport { return gw.Report }
