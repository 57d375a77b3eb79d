package repository

import (
	"context"
	"time"

	"github.com/nimasrn/marketplace/internal/model"
	"github.com/nimasrn/marketplace/pkg/pg"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	*pg.DB
}

func NewUserRepository(db *pg.DB) *UserRepository {
	return &UserRepository{
		db,
	}
}

// Create inserts the user and, when present, its profile in one transaction.
func (r *UserRepository) Create(ctx context.Context, u *model.User) (*model.User, error) {
	entity := toUserEntity(u)
	profile := entity.Profile
	entity.Profile = nil

	err := r.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := r.Write(ctx).Create(entity).Error; err != nil {
			return translate(err, nil, ErrDuplicateUser)
		}
		if profile != nil {
			profile.UserID = entity.ID
			if err := r.Write(ctx).Create(profile).Error; err != nil {
				return translate(err, nil, ErrDuplicateUser)
			}
			entity.Profile = profile
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toUserModel(entity), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var entity UserEntity
	err := r.Read(ctx).
		Preload("Profile").
		Where("id = ?", id).
		First(&entity).
		Error
	if err != nil {
		return nil, translate(err, ErrUserNotFound, nil)
	}
	return toUserModel(&entity), nil
}

// GetForUpdate reads the user row with SELECT ... FOR UPDATE. It must run
// inside WithinTransaction for the lock to be held until commit.
func (r *UserRepository) GetForUpdate(ctx context.Context, id int64) (*model.User, error) {
	var entity UserEntity
	err := r.Write(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&entity).
		Error
	if err != nil {
		return nil, translate(err, ErrUserNotFound, nil)
	}
	return toUserModel(&entity), nil
}

func (r *UserRepository) GetByPhone(ctx context.Context, phone string) (*model.User, error) {
	var entity UserEntity
	err := r.Read(ctx).
		Preload("Profile").
		Where("phone_number = ?", phone).
		First(&entity).
		Error
	if err != nil {
		return nil, translate(err, ErrUserNotFound, nil)
	}
	return toUserModel(&entity), nil
}

func (r *UserRepository) List(ctx context.Context, f model.UserFilter) ([]*model.User, int64, error) {
	q := r.Read(ctx).Model(&UserEntity{})
	if f.Status != nil {
		q = q.Where("status = ?", string(*f.Status))
	}
	if f.UserType != nil {
		q = q.Where("user_type = ?", *f.UserType)
	}
	if f.Role != nil {
		q = q.Where("roles LIKE ?", "%"+*f.Role+"%")
	}
	if f.Phone != nil {
		q = q.Where("phone_number = ?", *f.Phone)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := f.Page.Normalize()
	var entities []*UserEntity
	err := paginate(q.Preload("Profile").Order("id DESC"), page.Limit, page.Offset).
		Find(&entities).
		Error
	if err != nil {
		return nil, 0, err
	}
	return toUserModels(entities), total, nil
}

// UpdateFields applies a partial update to the users row.
func (r *UserRepository) UpdateFields(ctx context.Context, id int64, fields map[string]any) error {
	res := r.Write(ctx).
		Model(&UserEntity{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return translate(res.Error, nil, ErrDuplicateUser)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpsertProfile creates the profile or overwrites its mutable fields.
func (r *UserRepository) UpsertProfile(ctx context.Context, p *model.UserProfile) error {
	entity := toUserProfileEntity(p)
	err := r.Write(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "email", "address", "avatar"}),
		}).
		Create(entity).
		Error
	return translate(err, nil, ErrDuplicateUser)
}

// UpdateBalance moves the balance from before to after. The guard on the
// current value turns a lost update into ErrConcurrentUpdate.
func (r *UserRepository) UpdateBalance(ctx context.Context, id int64, before, after decimal.Decimal, lastLogin *time.Time) error {
	fields := map[string]any{"balance": after}
	if lastLogin != nil {
		fields["last_login"] = *lastLogin
	}
	res := r.Write(ctx).
		Model(&UserEntity{}).
		Where("id = ? AND balance = ?", id, before).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConcurrentUpdate
	}
	return nil
}

func (r *UserRepository) UpdatePinState(ctx context.Context, id int64, attempts int, lockedUntil *time.Time) error {
	return r.UpdateFields(ctx, id, map[string]any{
		"pin_attempts":     attempts,
		"pin_locked_until": lockedUntil,
	})
}

// SetPin stores a new hash and clears any lock.
func (r *UserRepository) SetPin(ctx context.Context, id int64, hash *string) error {
	return r.UpdateFields(ctx, id, map[string]any{
		"pin_hash":         hash,
		"pin_attempts":     0,
		"pin_locked_until": gorm.Expr("NULL"),
	})
}

// TransitionStatus moves the user from one of the given states to next.
func (r *UserRepository) TransitionStatus(ctx context.Context, id int64, from []model.UserStatus, next model.UserStatus, fields map[string]any) error {
	states := make([]string, len(from))
	for i, s := range from {
		states[i] = string(s)
	}
	if fields == nil {
		fields = map[string]any{}
	}
	fields["status"] = string(next)

	res := r.Write(ctx).
		Model(&UserEntity{}).
		Where("id = ? AND status IN ?", id, states).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStatusChanged
	}
	return nil
}

// Update applies the non-nil fields of req to the user and its profile.
func (r *UserRepository) Update(ctx context.Context, id int64, req model.UserUpdateRequest) (*model.User, error) {
	err := r.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}

		fields := map[string]any{}
		if req.UserType != nil {
			fields["user_type"] = *req.UserType
		}
		if req.Roles != nil {
			fields["roles"] = joinRoles(*req.Roles)
		}
		if len(fields) > 0 {
			if err := r.UpdateFields(ctx, id, fields); err != nil {
				return err
			}
		}

		if req.Name == nil && req.Email == nil && req.Address == nil && req.Avatar == nil {
			return nil
		}
		profile := current.Profile
		if profile == nil {
			profile = &model.UserProfile{UserID: id}
		}
		if req.Name != nil {
			profile.Name = *req.Name
		}
		if req.Email != nil {
			profile.Email = *req.Email
		}
		if req.Address != nil {
			profile.Address = *req.Address
		}
		if req.Avatar != nil {
			profile.Avatar = *req.Avatar
		}
		return r.UpsertProfile(ctx, profile)
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}
