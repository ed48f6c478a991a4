package accounts

import (
	"context"
	"database/sql"
	"errors"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var updatePasswordHashSQL = `UPDATE "users" AS "usr"
SET
	"password_hash" = ?,
	"updated_at" = CURRENT_TIMESTAMP
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."id" = ?
) RETURNING *;`

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ UserStore                    = (*users)(nil)
	_ repository.Repository[*User] = (*users)(nil)
)

// NewUserStore returns the bundled bun-backed UserStore.
func NewUserStore(db *bun.DB) UserStore {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "username"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) FindByEmail(ctx context.Context, email string) (*User, error) {
	record := &User{}
	err := a.db.NewSelect().
		Model(record).
		Relation("Emails").
		Join(`JOIN user_emails AS eml ON eml.user_id = usr.id`).
		Where("eml.address = ?", email).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"email": email})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) FindByID(ctx context.Context, id string) (*User, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{"id": id})
	}

	record := &User{}
	err = a.db.NewSelect().
		Model(record).
		Relation("Emails").
		Where("usr.id = ?", uid).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"id": id})
		}
		return nil, err
	}

	return record, nil
}

// Insert writes the user and its email rows in one transaction. The unique
// index on user_emails.address backstops the service's pre-insert duplicate
// check under concurrent creation.
func (a *users) Insert(ctx context.Context, user *User) (*User, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	err := a.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := a.Repository.CreateTx(ctx, tx, user); err != nil {
			return err
		}

		for _, email := range user.Emails {
			if email == nil {
				continue
			}
			if email.ID == uuid.Nil {
				email.ID = uuid.New()
			}
			email.UserID = user.ID
			if _, err := tx.NewInsert().Model(email).Exec(ctx); err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return user, nil
}

func (a *users) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	res, err := a.Repository.RawTx(ctx, a.db, updatePasswordHashSQL, passwordHash, id)
	if err != nil {
		return err
	}

	if len(res) == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{"id": id})
	}

	return nil
}

func (a *users) SetEmailVerified(ctx context.Context, id, address string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{"id": id})
	}

	res, err := a.db.NewUpdate().
		Model((*UserEmail)(nil)).
		Set("verified = ?", true).
		Where("user_id = ?", uid).
		Where("address = ?", address).
		Exec(ctx)

	if err != nil {
		return err
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{"id": id, "address": address})
	}

	return nil
}
