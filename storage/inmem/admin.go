package inmemdb

import (
	"context"

	"github.com/trezcool/coachdesk/core/admin"
)

type adminRepository struct {
	db *table[admin.Administrator]
}

var _ admin.Repository = (*adminRepository)(nil)

func NewAdminRepository(db *DB) admin.Repository {
	return &adminRepository{db: db.admins}
}

func (repo *adminRepository) GetAdmin(_ context.Context, filter admin.GetFilter) (admin.Administrator, error) {
	if filter.ID != "" {
		if adm, ok := repo.db.get(filter.ID); ok {
			return adm, nil
		}
		return admin.Administrator{}, admin.ErrNotFound
	}

	match := func(adm admin.Administrator) bool {
		for _, v := range filter.UsernameOrEmail {
			if v != "" && (adm.Username == v || adm.Email == v) {
				return true
			}
		}
		return false
	}
	found := repo.db.query(match, func(a, b admin.Administrator) bool { return a.CreatedAt.Before(b.CreatedAt) })
	if len(found) == 0 {
		return admin.Administrator{}, admin.ErrNotFound
	}
	return found[0], nil
}

func (repo *adminRepository) uniqueness(adm admin.Administrator) func(admin.Administrator) error {
	return func(other admin.Administrator) error {
		if other.Username == adm.Username {
			return admin.ErrUsernameExists
		}
		if adm.Email != "" && other.Email == adm.Email {
			return admin.ErrEmailExists
		}
		return nil
	}
}

func (repo *adminRepository) CreateAdmin(_ context.Context, adm admin.Administrator) (admin.Administrator, error) {
	return repo.db.save(adm.ID, adm, false, nil, repo.uniqueness(adm))
}

func (repo *adminRepository) UpdateAdmin(_ context.Context, adm admin.Administrator) (admin.Administrator, error) {
	return repo.db.save(adm.ID, adm, true, admin.ErrNotFound, repo.uniqueness(adm))
}
