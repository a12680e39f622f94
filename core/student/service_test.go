package student_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorly/tutorly/core"
	"github.com/tutorly/tutorly/core/student"
	"github.com/tutorly/tutorly/core/user"
	testutil "github.com/tutorly/tutorly/tests"
)

func TestNewStudent_Validate(t *testing.T) {
	env := testutil.NewEnv(t)

	tests := []struct {
		name    string
		ns      student.NewStudent
		wantErr bool
	}{
		{
			name: "valid",
			ns:   student.NewStudent{FullName: "Grace", Level: core.LevelPrimary},
		},
		{
			name:    "blank name",
			ns:      student.NewStudent{FullName: "   ", Level: core.LevelPrimary},
			wantErr: true,
		},
		{
			name:    "unknown level",
			ns:      student.NewStudent{FullName: "Grace", Level: "KINDERGARTEN"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ns.Validate(env.Validate)
			assert.Equal(t, tt.wantErr, err != nil, "Validate() error = %v", err)
		})
	}
}

func Test_service_CRUD(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	owner := env.CreateUser(t, user.RoleParent)
	otherParent := env.CreateUser(t, user.RoleParent)
	tchr, _ := env.CreateTeacher(t)
	admin := env.CreateUser(t, user.RoleAdmin)

	_, err := env.StudentSvc.Create(ctx, tchr, student.NewStudent{FullName: "Grace", Level: core.LevelPrimary})
	assert.Equal(t, core.ErrForbidden, errors.Cause(err))

	s, err := env.StudentSvc.Create(ctx, owner, student.NewStudent{FullName: "Grace", Level: core.LevelPrimary, School: "EP Gombe"})
	require.NoError(t, err)
	assert.Equal(t, owner.ID, s.ParentID)
	_, err = env.StudentSvc.Create(ctx, otherParent, student.NewStudent{FullName: "Paul", Level: core.LevelAdult})
	require.NoError(t, err)

	students, err := env.StudentSvc.List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, s.ID, students[0].ID)
	_, err = env.StudentSvc.List(ctx, tchr)
	assert.Equal(t, core.ErrForbidden, errors.Cause(err))

	t.Run("Get", func(t *testing.T) {
		tests := []struct {
			name    string
			actor   user.User
			id      string
			wantErr func(error) bool
		}{
			{"owner", owner, s.ID, func(err error) bool { return err == nil }},
			{"admin", admin, s.ID, func(err error) bool { return err == nil }},
			{"other parent", otherParent, s.ID, func(err error) bool { return errors.Cause(err) == core.ErrForbidden }},
			{"teacher", tchr, s.ID, func(err error) bool { return errors.Cause(err) == core.ErrForbidden }},
			{"unknown", owner, uuid.NewString(), core.IsNotFound},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := env.StudentSvc.Get(ctx, tt.actor, tt.id)
				assert.True(t, tt.wantErr(err), "Get() error = %v", err)
			})
		}
	})

	update := student.NewStudent{FullName: "Grace K.", Level: core.LevelLowerSecondary}
	_, err = env.StudentSvc.Update(ctx, otherParent, s.ID, update)
	assert.Equal(t, core.ErrForbidden, errors.Cause(err))
	_, err = env.StudentSvc.Update(ctx, admin, s.ID, update)
	assert.Equal(t, core.ErrForbidden, errors.Cause(err), "only the parent edits its students")

	got, err := env.StudentSvc.Update(ctx, owner, s.ID, update)
	require.NoError(t, err)
	assert.Equal(t, "Grace K.", got.FullName)
	assert.Equal(t, core.LevelLowerSecondary, got.Level)
	assert.Empty(t, got.School)

	err = env.StudentSvc.Delete(ctx, otherParent, s.ID)
	assert.Equal(t, core.ErrForbidden, errors.Cause(err))
	require.NoError(t, env.StudentSvc.Delete(ctx, owner, s.ID))
	err = env.StudentSvc.Delete(ctx, owner, s.ID)
	assert.True(t, core.IsNotFound(err), "error = %v", err)

	students, err = env.StudentSvc.List(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, students)
}
