package sms

import (
	"context"
	"time"
)

// Audiences
const (
	AudienceStudent = "student"
	AudienceTeacher = "teacher"
)

// Delivery statuses
const (
	StatusSent        = "sent"
	StatusFailed      = "failed"
	StatusSkipNoPhone = "skip-no-phone"
)

// LogEntry records one send attempt. It is never updated.
type LogEntry struct {
	ID                string    `json:"id" bson:"_id" db:"id"`
	Audience          string    `json:"audience" bson:"audience" db:"audience"`
	BatchID           string    `json:"batch_id,omitempty" bson:"batch_id,omitempty" db:"batch_id"`
	BatchName         string    `json:"batch_name,omitempty" bson:"batch_name,omitempty" db:"batch_name"`
	StudentID         string    `json:"student_id,omitempty" bson:"student_id,omitempty" db:"student_id"`
	StudentCode       string    `json:"student_code,omitempty" bson:"student_code,omitempty" db:"student_code"`
	TeacherID         string    `json:"teacher_id,omitempty" bson:"teacher_id,omitempty" db:"teacher_id"`
	TeacherLabel      string    `json:"teacher_label,omitempty" bson:"teacher_label,omitempty" db:"teacher_label"`
	TemplateID        string    `json:"template_id,omitempty" bson:"template_id,omitempty" db:"template_id"`
	SenderID          string    `json:"sender_id,omitempty" bson:"sender_id,omitempty" db:"sender_id"`
	Message           string    `json:"message" bson:"message" db:"message"`
	Phone             string    `json:"phone" bson:"phone" db:"phone"`
	Status            string    `json:"status" bson:"status" db:"status"`
	ProviderRequestID string    `json:"provider_request_id,omitempty" bson:"provider_request_id,omitempty" db:"provider_request_id"`
	Error             string    `json:"error,omitempty" bson:"error,omitempty" db:"error"`
	SentAt            time.Time `json:"sent_at" bson:"sent_at" db:"sent_at"`
}

type LogFilter struct {
	Audience  string    `query:"audience"`
	BatchID   string    `query:"batch_id"`
	StudentID string    `query:"student_id"`
	TeacherID string    `query:"teacher_id"`
	Status    string    `query:"status"`
	From      time.Time `query:"from"`
	To        time.Time `query:"to"`
	Limit     int       `query:"limit"`
}

const (
	defaultLogLimit = 100
	maxLogLimit     = 1000
)

// Clean bounds the limit.
func (f *LogFilter) Clean() {
	if f.Limit <= 0 {
		f.Limit = defaultLogLimit
	} else if f.Limit > maxLogLimit {
		f.Limit = maxLogLimit
	}
}

// LogRepository is the append-only delivery log.
type LogRepository interface {
	AppendLog(ctx context.Context, entry LogEntry) (LogEntry, error)
	// FilterLogs returns entries, newest first.
	FilterLogs(ctx context.Context, filter LogFilter) ([]LogEntry, error)
}
