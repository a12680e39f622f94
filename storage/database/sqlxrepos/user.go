package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/tutorly/tutorly/core"
	"github.com/tutorly/tutorly/core/user"
)

var (
	userColumns   = []string{"id", "email", "full_name", "phone", "avatar_url", "role", "is_active", "created_at", "updated_at"}
	parentColumns = []string{"user_id", "address", "city", "preferred_contact", "updated_at"}
)

type userRepository struct {
	baseRepo
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db core.DB) user.Repository {
	return &userRepository{baseRepo{db: db}}
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	b := builder.Insert("user_profiles").SetMap(map[string]interface{}{
		"id":         usr.ID,
		"email":      usr.Email,
		"full_name":  usr.FullName,
		"phone":      usr.Phone,
		"avatar_url": usr.AvatarURL,
		"role":       usr.Role,
		"is_active":  usr.IsActive,
		"created_at": usr.CreatedAt,
		"updated_at": usr.UpdatedAt,
	})
	if _, err := execute(ctx, repo.getExec(exec), b); err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) getUser(ctx context.Context, where sq.Sqlizer, exec []core.DBExecutor) (user.User, error) {
	var usr user.User
	b := builder.Select(userColumns...).From("user_profiles").Where(where)
	err := get(ctx, repo.getExec(exec), &usr, b, user.ErrNotFound)
	return usr, err
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string, exec ...core.DBExecutor) (user.User, error) {
	if id == "" {
		return user.User{}, user.ErrNotFound
	}
	return repo.getUser(ctx, sq.Eq{"id": id}, exec)
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string, exec ...core.DBExecutor) (user.User, error) {
	if email == "" {
		return user.User{}, user.ErrNotFound
	}
	return repo.getUser(ctx, sq.Eq{"email": email}, exec)
}

func (repo *userRepository) QueryUsers(
	ctx context.Context,
	filter *user.QueryFilter,
	ordering []core.DBOrdering,
	page core.Page,
	exec ...core.DBExecutor,
) ([]user.User, int, error) {
	where := func(b sq.SelectBuilder) sq.SelectBuilder {
		if filter == nil {
			return b
		}
		if filter.Search != "" {
			b = b.Where(like(filter.Search, "full_name", "email"))
		}
		if filter.Role != "" {
			b = b.Where(sq.Eq{"role": filter.Role})
		}
		if filter.IsActive != nil {
			b = b.Where(sq.Eq{"is_active": *filter.IsActive})
		}
		return b
	}

	users := make([]user.User, 0)
	total, err := paginate(ctx, repo.getExec(exec), &users, "user_profiles", userColumns, where, ordering, page)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying users")
	}
	return users, total, nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	b := builder.Update("user_profiles").SetMap(map[string]interface{}{
		"full_name":  usr.FullName,
		"phone":      usr.Phone,
		"avatar_url": usr.AvatarURL,
		"role":       usr.Role,
		"is_active":  usr.IsActive,
		"updated_at": usr.UpdatedAt,
	}).Where(sq.Eq{"id": usr.ID})
	if err := executeOne(ctx, repo.getExec(exec), b, user.ErrNotFound); err != nil {
		return user.User{}, err
	}
	return usr, nil
}

func (repo *userRepository) CreateParentProfile(ctx context.Context, pp user.ParentProfile, exec ...core.DBExecutor) (user.ParentProfile, error) {
	b := builder.Insert("parent_profiles").SetMap(map[string]interface{}{
		"user_id":           pp.UserID,
		"address":           pp.Address,
		"city":              pp.City,
		"preferred_contact": pp.PreferredContact,
		"updated_at":        pp.UpdatedAt,
	})
	if _, err := execute(ctx, repo.getExec(exec), b); err != nil {
		return user.ParentProfile{}, errors.Wrap(err, "inserting parent profile")
	}
	return pp, nil
}

func (repo *userRepository) GetParentProfile(ctx context.Context, userID string, exec ...core.DBExecutor) (user.ParentProfile, error) {
	var pp user.ParentProfile
	b := builder.Select(parentColumns...).From("parent_profiles").Where(sq.Eq{"user_id": userID})
	err := get(ctx, repo.getExec(exec), &pp, b, user.ErrParentNotFound)
	return pp, err
}

func (repo *userRepository) UpdateParentProfile(ctx context.Context, pp user.ParentProfile, exec ...core.DBExecutor) (user.ParentProfile, error) {
	b := builder.Update("parent_profiles").SetMap(map[string]interface{}{
		"address":           pp.Address,
		"city":              pp.City,
		"preferred_contact": pp.PreferredContact,
		"updated_at":        pp.UpdatedAt,
	}).Where(sq.Eq{"user_id": pp.UserID})
	if err := executeOne(ctx, repo.getExec(exec), b, user.ErrParentNotFound); err != nil {
		return user.ParentProfile{}, err
	}
	return pp, nil
}
