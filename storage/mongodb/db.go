package mongodb

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/trezcool/coachdesk/core"
)

// collections
const (
	colAdmins    = "administrators"
	colBatches   = "batches"
	colStudents  = "students"
	colTeachers  = "teachers"
	colResults   = "results"
	colTemplates = "sms_templates"
	colLogs      = "sms_logs"
)

// unique index names, matched against duplicate key errors
const (
	idxAdminUsername = "administrators_username_uniq"
	idxAdminEmail    = "administrators_email_uniq"
	idxBatchName     = "batches_name_uniq"
	idxStudentCode   = "students_code_uniq"
	idxTeacherCode   = "teachers_code_uniq"
	idxTemplateName  = "sms_templates_name_uniq"
)

var caseInsensitive = &options.Collation{Locale: "en", Strength: 2}

type DB struct {
	client *mongo.Client
	db     *mongo.Database
}

func Open(ctx context.Context, conf *core.Config) (*DB, error) {
	if conf.Mongo.URI == "" {
		return nil, core.NewConfigError("MONGODB_URI")
	}
	if conf.Mongo.Name == "" {
		return nil, core.NewConfigError("MONGODB_DB")
	}

	opts := options.Client().ApplyURI(conf.Mongo.URI).SetAppName(conf.AppName)
	if conf.Mongo.ConnectTimeout > 0 {
		opts.SetConnectTimeout(conf.Mongo.ConnectTimeout).SetServerSelectionTimeout(conf.Mongo.ConnectTimeout)
	}
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to mongodb")
	}
	if err = ping(ctx, client); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return &DB{client: client, db: client.Database(conf.Mongo.Name)}, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(ctx context.Context, client *mongo.Client) error {
	var err error
	maxAttempts := 10
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		if err = client.Ping(ctx, readpref.Primary()); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "mongodb ping")
		case <-time.After(time.Duration(attempts) * 100 * time.Millisecond):
		}
	}
	return errors.Wrap(err, "mongodb ping timeout")
}

func (db *DB) Close(ctx context.Context) error {
	return db.client.Disconnect(ctx)
}

func (db *DB) col(name string) *mongo.Collection {
	return db.db.Collection(name)
}

func uniqueIndex(name string, key string, collation *options.Collation) mongo.IndexModel {
	opts := options.Index().SetUnique(true).SetName(name)
	if collation != nil {
		opts.SetCollation(collation)
	}
	return mongo.IndexModel{Keys: bson.D{{Key: key, Value: 1}}, Options: opts}
}

// keysDoc turns `name` / `-name` keys into an ascending / descending key document.
func keysDoc(keys ...string) bson.D {
	d := bson.D{}
	for _, k := range keys {
		if strings.HasPrefix(k, "-") {
			d = append(d, bson.E{Key: k[1:], Value: -1})
		} else {
			d = append(d, bson.E{Key: k, Value: 1})
		}
	}
	return d
}

func index(keys ...string) mongo.IndexModel {
	return mongo.IndexModel{Keys: keysDoc(keys...)}
}

func sortBy(keys ...string) *options.FindOptions {
	return options.Find().SetSort(keysDoc(keys...))
}

// EnsureIndexes creates the unique and lookup indexes. It is idempotent.
func (db *DB) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		colAdmins: {
			uniqueIndex(idxAdminUsername, "username", nil),
			uniqueIndex(idxAdminEmail, "email", nil),
		},
		colBatches:   {uniqueIndex(idxBatchName, "name", caseInsensitive)},
		colStudents:  {uniqueIndex(idxStudentCode, "code", nil), index("batch_id", "roll", "name")},
		colTeachers:  {uniqueIndex(idxTeacherCode, "code", nil), index("status", "name")},
		colResults:   {index("batch_id", "-created_at")},
		colTemplates: {uniqueIndex(idxTemplateName, "name", caseInsensitive)},
		colLogs:      {index("audience", "-sent_at"), index("batch_id", "-sent_at"), index("-sent_at")},
	}
	for name, models := range indexes {
		if _, err := db.col(name).Indexes().CreateMany(ctx, models); err != nil {
			return errors.Wrapf(err, "creating %s indexes", name)
		}
	}
	return nil
}

// writeError maps duplicate key errors to the domain error of the violated index.
func writeError(err error, what string, conflicts map[string]error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		for idx, domainErr := range conflicts {
			if strings.Contains(err.Error(), idx) {
				return domainErr
			}
		}
	}
	return errors.Wrap(err, what)
}

func findOne[T any](ctx context.Context, col *mongo.Collection, filter interface{}, notFound error) (T, error) {
	var row T
	if err := col.FindOne(ctx, filter).Decode(&row); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return row, notFound
		}
		return row, errors.Wrap(err, "finding "+col.Name())
	}
	return row, nil
}

func find[T any](ctx context.Context, col *mongo.Collection, filter interface{}, opts ...*options.FindOptions) ([]T, error) {
	cur, err := col.Find(ctx, filter, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "querying "+col.Name())
	}
	rows := make([]T, 0)
	if err = cur.All(ctx, &rows); err != nil {
		return nil, errors.Wrap(err, "decoding "+col.Name())
	}
	return rows, nil
}

func insert[T any](ctx context.Context, col *mongo.Collection, row T, conflicts map[string]error) (T, error) {
	if _, err := col.InsertOne(ctx, row); err != nil {
		var zero T
		return zero, writeError(err, "inserting into "+col.Name(), conflicts)
	}
	return row, nil
}

func replace[T any](ctx context.Context, col *mongo.Collection, id string, row T, notFound error, conflicts map[string]error) (T, error) {
	var zero T
	res, err := col.ReplaceOne(ctx, bson.M{"_id": id}, row)
	if err != nil {
		return zero, writeError(err, "updating "+col.Name(), conflicts)
	}
	if res.MatchedCount == 0 {
		return zero, notFound
	}
	return row, nil
}

func deleteOne(ctx context.Context, col *mongo.Collection, id string, notFound error) error {
	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "deleting from "+col.Name())
	}
	if res.DeletedCount == 0 {
		return notFound
	}
	return nil
}
