package inmemdb

import (
	"context"
	"strings"

	"github.com/trezcool/coachdesk/core/sms"
)

type templateRepository struct {
	db *table[sms.Template]
}

var _ sms.TemplateRepository = (*templateRepository)(nil)

func NewTemplateRepository(db *DB) sms.TemplateRepository {
	return &templateRepository{db: db.templates}
}

func (repo *templateRepository) uniqueness(tmpl sms.Template) func(sms.Template) error {
	return func(other sms.Template) error {
		if strings.EqualFold(other.Name, tmpl.Name) {
			return sms.ErrTemplateNameExists
		}
		return nil
	}
}

func (repo *templateRepository) CreateTemplate(_ context.Context, tmpl sms.Template) (sms.Template, error) {
	return repo.db.save(tmpl.ID, tmpl, false, nil, repo.uniqueness(tmpl))
}

func (repo *templateRepository) GetTemplate(_ context.Context, id string) (sms.Template, error) {
	if tmpl, ok := repo.db.get(id); ok {
		return tmpl, nil
	}
	return sms.Template{}, sms.ErrTemplateNotFound
}

func (repo *templateRepository) QueryTemplates(_ context.Context) ([]sms.Template, error) {
	return repo.db.query(nil, func(a, b sms.Template) bool { return a.Name < b.Name }), nil
}

func (repo *templateRepository) UpdateTemplate(_ context.Context, tmpl sms.Template) (sms.Template, error) {
	return repo.db.save(tmpl.ID, tmpl, true, sms.ErrTemplateNotFound, repo.uniqueness(tmpl))
}

func (repo *templateRepository) DeleteTemplate(_ context.Context, id string) error {
	return repo.db.delete(id, sms.ErrTemplateNotFound)
}

type logRepository struct {
	db *DB
}

var _ sms.LogRepository = (*logRepository)(nil)

func NewLogRepository(db *DB) sms.LogRepository {
	return &logRepository{db: db}
}

func (repo *logRepository) AppendLog(_ context.Context, entry sms.LogEntry) (sms.LogEntry, error) {
	repo.db.logMutex.Lock()
	defer repo.db.logMutex.Unlock()
	repo.db.logs = append(repo.db.logs, entry)
	return entry, nil
}

func (repo *logRepository) FilterLogs(_ context.Context, f sms.LogFilter) ([]sms.LogEntry, error) {
	repo.db.logMutex.RLock()
	defer repo.db.logMutex.RUnlock()

	entries := make([]sms.LogEntry, 0)
	for i := len(repo.db.logs) - 1; i >= 0; i-- { // newest first
		e := repo.db.logs[i]
		switch {
		case f.Audience != "" && e.Audience != f.Audience,
			f.BatchID != "" && e.BatchID != f.BatchID,
			f.StudentID != "" && e.StudentID != f.StudentID,
			f.TeacherID != "" && e.TeacherID != f.TeacherID,
			f.Status != "" && e.Status != f.Status,
			!f.From.IsZero() && e.SentAt.Before(f.From),
			!f.To.IsZero() && e.SentAt.After(f.To):
			continue
		}
		entries = append(entries, e)
		if f.Limit > 0 && len(entries) == f.Limit {
			break
		}
	}
	return entries, nil
}
