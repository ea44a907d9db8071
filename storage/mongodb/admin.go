package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/trezcool/coachdesk/core/admin"
)

var adminConflicts = map[string]error{
	idxAdminUsername: admin.ErrUsernameExists,
	idxAdminEmail:    admin.ErrEmailExists,
}

type adminRepository struct {
	col *mongo.Collection
}

var _ admin.Repository = (*adminRepository)(nil)

func NewAdminRepository(db *DB) admin.Repository {
	return &adminRepository{col: db.col(colAdmins)}
}

func (repo *adminRepository) GetAdmin(ctx context.Context, filter admin.GetFilter) (admin.Administrator, error) {
	if filter.ID != "" {
		return findOne[admin.Administrator](ctx, repo.col, bson.M{"_id": filter.ID}, admin.ErrNotFound)
	}

	values := make([]string, 0, len(filter.UsernameOrEmail))
	for _, v := range filter.UsernameOrEmail {
		if v != "" {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return admin.Administrator{}, admin.ErrNotFound
	}
	q := bson.M{"$or": bson.A{
		bson.M{"username": bson.M{"$in": values}},
		bson.M{"email": bson.M{"$in": values}},
	}}
	found, err := find[admin.Administrator](ctx, repo.col, q, sortBy("created_at").SetLimit(1))
	if err != nil {
		return admin.Administrator{}, err
	}
	if len(found) == 0 {
		return admin.Administrator{}, admin.ErrNotFound
	}
	return found[0], nil
}

func (repo *adminRepository) CreateAdmin(ctx context.Context, adm admin.Administrator) (admin.Administrator, error) {
	return insert(ctx, repo.col, adm, adminConflicts)
}

func (repo *adminRepository) UpdateAdmin(ctx context.Context, adm admin.Administrator) (admin.Administrator, error) {
	return replace(ctx, repo.col, adm.ID, adm, admin.ErrNotFound, adminConflicts)
}
