package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/trezcool/coachdesk/core/sms"
)

var templateConflicts = map[string]error{idxTemplateName: sms.ErrTemplateNameExists}

type templateRepository struct {
	col *mongo.Collection
}

var _ sms.TemplateRepository = (*templateRepository)(nil)

func NewTemplateRepository(db *DB) sms.TemplateRepository {
	return &templateRepository{col: db.col(colTemplates)}
}

func (repo *templateRepository) CreateTemplate(ctx context.Context, tmpl sms.Template) (sms.Template, error) {
	return insert(ctx, repo.col, tmpl, templateConflicts)
}

func (repo *templateRepository) GetTemplate(ctx context.Context, id string) (sms.Template, error) {
	return findOne[sms.Template](ctx, repo.col, bson.M{"_id": id}, sms.ErrTemplateNotFound)
}

func (repo *templateRepository) QueryTemplates(ctx context.Context) ([]sms.Template, error) {
	return find[sms.Template](ctx, repo.col, bson.M{}, sortBy("name"))
}

func (repo *templateRepository) UpdateTemplate(ctx context.Context, tmpl sms.Template) (sms.Template, error) {
	return replace(ctx, repo.col, tmpl.ID, tmpl, sms.ErrTemplateNotFound, templateConflicts)
}

func (repo *templateRepository) DeleteTemplate(ctx context.Context, id string) error {
	return deleteOne(ctx, repo.col, id, sms.ErrTemplateNotFound)
}

type logRepository struct {
	col *mongo.Collection
}

var _ sms.LogRepository = (*logRepository)(nil)

func NewLogRepository(db *DB) sms.LogRepository {
	return &logRepository{col: db.col(colLogs)}
}

func (repo *logRepository) AppendLog(ctx context.Context, entry sms.LogEntry) (sms.LogEntry, error) {
	return insert(ctx, repo.col, entry, nil)
}

func logQuery(f sms.LogFilter) bson.M {
	q := bson.M{}
	for field, val := range map[string]string{
		"audience":   f.Audience,
		"batch_id":   f.BatchID,
		"student_id": f.StudentID,
		"teacher_id": f.TeacherID,
		"status":     f.Status,
	} {
		if val != "" {
			q[field] = val
		}
	}
	sentAt := bson.M{}
	if !f.From.IsZero() {
		sentAt["$gte"] = f.From
	}
	if !f.To.IsZero() {
		sentAt["$lte"] = f.To
	}
	if len(sentAt) > 0 {
		q["sent_at"] = sentAt
	}
	return q
}

func (repo *logRepository) FilterLogs(ctx context.Context, f sms.LogFilter) ([]sms.LogEntry, error) {
	opts := sortBy("-sent_at", "-_id")
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}
	return find[sms.LogEntry](ctx, repo.col, logQuery(f), opts)
}
