package user

import (
	"context"

	"github.com/pkg/errors"

	"github.com/tutorly/tutorly/core"
)

const table = "user_profiles"

var (
	// errors
	ErrNotFound       = core.NewNotFoundError("user")
	ErrParentNotFound = core.NewNotFoundError("parent profile")
	ErrProfileExists  = errors.New("a profile already exists for this account")
	ErrEmailExists    = errors.New("a user with this email already exists")
	ErrOwnRole        = errors.New("you cannot change your own role")
	ErrOwnActive      = errors.New("you cannot deactivate yourself")
)

type (
	Repository interface {
		CreateUser(ctx context.Context, usr User, exec ...core.DBExecutor) (User, error)
		GetUserByID(ctx context.Context, id string, exec ...core.DBExecutor) (User, error)
		GetUserByEmail(ctx context.Context, email string, exec ...core.DBExecutor) (User, error)
		// QueryUsers applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of User.FullName or User.Email.
		QueryUsers(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, page core.Page, exec ...core.DBExecutor) ([]User, int, error)
		UpdateUser(ctx context.Context, usr User, exec ...core.DBExecutor) (User, error)

		CreateParentProfile(ctx context.Context, pp ParentProfile, exec ...core.DBExecutor) (ParentProfile, error)
		GetParentProfile(ctx context.Context, userID string, exec ...core.DBExecutor) (ParentProfile, error)
		UpdateParentProfile(ctx context.Context, pp ParentProfile, exec ...core.DBExecutor) (ParentProfile, error)
	}

	Service interface {
		Create(ctx context.Context, subject, email string, nu NewUser) (User, error)
		GetByID(ctx context.Context, id string) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, page core.Page) ([]User, int, error)
		Update(ctx context.Context, usr User, uu UpdateUser) (User, error)
		SetActive(ctx context.Context, actor User, id string, active bool) (User, error)
		SetRole(ctx context.Context, actor User, id, role string) (User, error)
		Promote(ctx context.Context, email string) (User, error)

		GetParentProfile(ctx context.Context, actor User) (ParentProfile, error)
		UpdateParentProfile(ctx context.Context, actor User, up UpdateParentProfile) (ParentProfile, error)
	}

	service struct {
		repo Repository
		db   core.DB
		pub  core.Publisher
	}
)

var (
	_ Service = (*service)(nil)

	orderingFields = map[string]string{
		"full_name":  "full_name",
		"email":      "email",
		"role":       "role",
		"created_at": "created_at",
	}
	defaultOrdering = core.DBOrdering{Field: "created_at"}
)

func NewService(repo Repository, db core.DB, pub core.Publisher) Service {
	return &service{repo: repo, db: db, pub: pub}
}

func (svc *service) Create(ctx context.Context, subject, email string, nu NewUser) (User, error) {
	email = core.CleanString(email, true /* lower */)
	if subject == "" || email == "" {
		return User{}, core.ErrUnauthorized
	}

	if _, err := svc.repo.GetUserByID(ctx, subject); err == nil {
		return User{}, core.NewValidationError(ErrProfileExists, core.FieldError{Field: "id", Error: ErrProfileExists.Error()})
	} else if !core.IsNotFound(err) {
		return User{}, errors.Wrap(err, "checking profile")
	}
	if _, err := svc.repo.GetUserByEmail(ctx, email); err == nil {
		return User{}, core.NewValidationError(ErrEmailExists, core.FieldError{Field: "email", Error: ErrEmailExists.Error()})
	} else if !core.IsNotFound(err) {
		return User{}, errors.Wrap(err, "checking email")
	}

	now := core.NowFunc()
	usr := User{
		ID:        subject,
		Email:     email,
		FullName:  nu.FullName,
		Phone:     nu.Phone,
		Role:      nu.Role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := core.RunInTx(ctx, svc.db, func(exec core.DBExecutor) error {
		var err error
		if usr, err = svc.repo.CreateUser(ctx, usr, exec); err != nil {
			return errors.Wrap(err, "creating user")
		}
		if usr.IsParent() {
			pp := ParentProfile{UserID: usr.ID, PreferredContact: ContactEmail, UpdatedAt: now}
			if _, err = svc.repo.CreateParentProfile(ctx, pp, exec); err != nil {
				return errors.Wrap(err, "creating parent profile")
			}
		}
		return nil
	})
	if err != nil {
		return User{}, err
	}

	svc.pub.Publish(ctx, core.NewEvent(table, core.EventInsert, usr, usr.ID))
	return usr, nil
}

func (svc *service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, page core.Page) ([]User, int, error) {
	filter.Clean()
	page.Clean()
	ordering = core.FilterOrderings(ordering, orderingFields, defaultOrdering)
	return svc.repo.QueryUsers(ctx, filter, ordering, page)
}

func (svc *service) Update(ctx context.Context, usr User, uu UpdateUser) (User, error) {
	usr.FullName = uu.FullName
	usr.Phone = uu.Phone
	usr.AvatarURL = uu.AvatarURL
	return svc.update(ctx, usr)
}

func (svc *service) update(ctx context.Context, usr User) (User, error) {
	usr.UpdatedAt = core.NowFunc()
	usr, err := svc.repo.UpdateUser(ctx, usr)
	if err != nil {
		return User{}, errors.Wrap(err, "updating user")
	}
	svc.pub.Publish(ctx, core.NewEvent(table, core.EventUpdate, usr, usr.ID))
	return usr, nil
}

func (svc *service) SetActive(ctx context.Context, actor User, id string, active bool) (User, error) {
	if !actor.IsAdmin() {
		return User{}, core.ErrForbidden
	}
	if actor.ID == id && !active {
		return User{}, core.NewValidationError(ErrOwnActive, core.FieldError{Field: "is_active", Error: ErrOwnActive.Error()})
	}
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	usr.IsActive = active
	return svc.update(ctx, usr)
}

func (svc *service) SetRole(ctx context.Context, actor User, id, role string) (User, error) {
	if !actor.IsAdmin() {
		return User{}, core.ErrForbidden
	}
	if actor.ID == id {
		return User{}, core.NewValidationError(ErrOwnRole, core.FieldError{Field: "role", Error: ErrOwnRole.Error()})
	}
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if usr.Role == role {
		return usr, nil
	}

	usr.Role = role
	usr.UpdatedAt = core.NowFunc()
	err = core.RunInTx(ctx, svc.db, func(exec core.DBExecutor) error {
		var err error
		if usr, err = svc.repo.UpdateUser(ctx, usr, exec); err != nil {
			return errors.Wrap(err, "updating user")
		}
		if !usr.IsParent() {
			return nil
		}
		// a former parent keeps its profile
		if _, err = svc.repo.GetParentProfile(ctx, usr.ID, exec); err == nil {
			return nil
		} else if !core.IsNotFound(err) {
			return errors.Wrap(err, "getting parent profile")
		}
		pp := ParentProfile{UserID: usr.ID, PreferredContact: ContactEmail, UpdatedAt: usr.UpdatedAt}
		_, err = svc.repo.CreateParentProfile(ctx, pp, exec)
		return errors.Wrap(err, "creating parent profile")
	})
	if err != nil {
		return User{}, err
	}
	svc.pub.Publish(ctx, core.NewEvent(table, core.EventUpdate, usr, usr.ID))
	return usr, nil
}

// Promote grants the admin role to the user with the given email.
func (svc *service) Promote(ctx context.Context, email string) (User, error) {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return User{}, err
	}
	if usr.IsAdmin() {
		return usr, nil
	}
	usr.Role = RoleAdmin
	return svc.update(ctx, usr)
}

func (svc *service) GetParentProfile(ctx context.Context, actor User) (ParentProfile, error) {
	if !actor.IsParent() {
		return ParentProfile{}, core.ErrForbidden
	}
	return svc.repo.GetParentProfile(ctx, actor.ID)
}

func (svc *service) UpdateParentProfile(ctx context.Context, actor User, up UpdateParentProfile) (ParentProfile, error) {
	pp, err := svc.GetParentProfile(ctx, actor)
	if err != nil {
		return ParentProfile{}, err
	}
	pp.Address = up.Address
	pp.City = up.City
	pp.PreferredContact = up.PreferredContact
	pp.UpdatedAt = core.NowFunc()
	return svc.repo.UpdateParentProfile(ctx, pp)
}
