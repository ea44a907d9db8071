package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/coachdesk/core/sms"
)

type logRow struct {
	ID                string      `db:"id"`
	Audience          string      `db:"audience"`
	BatchID           null.String `db:"batch_id"`
	BatchName         null.String `db:"batch_name"`
	StudentID         null.String `db:"student_id"`
	StudentCode       null.String `db:"student_code"`
	TeacherID         null.String `db:"teacher_id"`
	TeacherLabel      null.String `db:"teacher_label"`
	TemplateID        null.String `db:"template_id"`
	SenderID          null.String `db:"sender_id"`
	Message           string      `db:"message"`
	Phone             string      `db:"phone"`
	Status            string      `db:"status"`
	ProviderRequestID null.String `db:"provider_request_id"`
	Error             null.String `db:"error"`
	SentAt            time.Time   `db:"sent_at"`
}

func nullable(s string) null.String {
	return null.NewString(s, s != "")
}

func toRow(e sms.LogEntry) logRow {
	return logRow{
		ID:                e.ID,
		Audience:          e.Audience,
		BatchID:           nullable(e.BatchID),
		BatchName:         nullable(e.BatchName),
		StudentID:         nullable(e.StudentID),
		StudentCode:       nullable(e.StudentCode),
		TeacherID:         nullable(e.TeacherID),
		TeacherLabel:      nullable(e.TeacherLabel),
		TemplateID:        nullable(e.TemplateID),
		SenderID:          nullable(e.SenderID),
		Message:           e.Message,
		Phone:             e.Phone,
		Status:            e.Status,
		ProviderRequestID: nullable(e.ProviderRequestID),
		Error:             nullable(e.Error),
		SentAt:            e.SentAt,
	}
}

func (r logRow) entry() sms.LogEntry {
	return sms.LogEntry{
		ID:                r.ID,
		Audience:          r.Audience,
		BatchID:           r.BatchID.String,
		BatchName:         r.BatchName.String,
		StudentID:         r.StudentID.String,
		StudentCode:       r.StudentCode.String,
		TeacherID:         r.TeacherID.String,
		TeacherLabel:      r.TeacherLabel.String,
		TemplateID:        r.TemplateID.String,
		SenderID:          r.SenderID.String,
		Message:           r.Message,
		Phone:             r.Phone,
		Status:            r.Status,
		ProviderRequestID: r.ProviderRequestID.String,
		Error:             r.Error.String,
		SentAt:            r.SentAt.UTC(),
	}
}

const (
	logColumns = `id, audience, batch_id, batch_name, student_id, student_code, teacher_id, teacher_label,
	template_id, sender_id, message, phone, status, provider_request_id, error, sent_at`

	insertLog = `INSERT INTO sms_logs (` + logColumns + `) VALUES (:id, :audience, :batch_id, :batch_name,
	:student_id, :student_code, :teacher_id, :teacher_label, :template_id, :sender_id, :message, :phone,
	:status, :provider_request_id, :error, :sent_at)`
)

type logRepository struct {
	db *sqlx.DB
}

var _ sms.LogRepository = (*logRepository)(nil)

func NewLogRepository(db *sqlx.DB) sms.LogRepository {
	return &logRepository{db: db}
}

func (repo *logRepository) AppendLog(ctx context.Context, entry sms.LogEntry) (sms.LogEntry, error) {
	if _, err := repo.db.NamedExecContext(ctx, insertLog, toRow(entry)); err != nil {
		return sms.LogEntry{}, errors.Wrap(err, "inserting sms log")
	}
	return entry, nil
}

// filterQuery builds the SELECT for `f`, with `?` placeholders.
func filterQuery(f sms.LogFilter) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)
	for _, c := range []struct{ col, val string }{
		{"audience", f.Audience},
		{"batch_id", f.BatchID},
		{"student_id", f.StudentID},
		{"teacher_id", f.TeacherID},
		{"status", f.Status},
	} {
		if c.val != "" {
			conds = append(conds, c.col+" = ?")
			args = append(args, c.val)
		}
	}
	if !f.From.IsZero() {
		conds = append(conds, "sent_at >= ?")
		args = append(args, f.From)
	}
	if !f.To.IsZero() {
		conds = append(conds, "sent_at <= ?")
		args = append(args, f.To)
	}

	q := "SELECT " + logColumns + " FROM sms_logs"
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY sent_at DESC, id DESC"
	if f.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, f.Limit)
	}
	return q, args
}

func (repo *logRepository) FilterLogs(ctx context.Context, f sms.LogFilter) ([]sms.LogEntry, error) {
	q, args := filterQuery(f)
	var rows []logRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "querying sms logs")
	}
	entries := make([]sms.LogEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, r.entry())
	}
	return entries, nil
}
