package class_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorly/tutorly/core"
	"github.com/tutorly/tutorly/core/class"
	"github.com/tutorly/tutorly/core/contract"
	"github.com/tutorly/tutorly/core/user"
	testutil "github.com/tutorly/tutorly/tests"
)

func Test_service_Schedule(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	parent, tchr, c := env.CreateContract(t)
	outsider := env.CreateUser(t, user.RoleParent)
	admin := env.CreateUser(t, user.RoleAdmin)
	at := time.Date(2030, 2, 1, 16, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		actor     user.User
		nc        class.NewClass
		forbidden bool
		wantMeet  bool
	}{
		{name: "outsider", actor: outsider, nc: class.NewClass{ScheduledAt: at, DurationMinutes: 60}, forbidden: true},
		{name: "admin", actor: admin, nc: class.NewClass{ScheduledAt: at, DurationMinutes: 60}, forbidden: true},
		{name: "in person, by the parent", actor: parent, nc: class.NewClass{ScheduledAt: at, DurationMinutes: 60, Notes: "At home"}},
		{name: "online, by the teacher", actor: tchr, nc: class.NewClass{ScheduledAt: at.Add(48 * time.Hour), DurationMinutes: 90, Online: true}, wantMeet: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cls, err := env.ClassSvc.Schedule(ctx, tt.actor, c.ID, tt.nc)
			if tt.forbidden {
				assert.Equal(t, core.ErrForbidden, errors.Cause(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, class.StatusScheduled, cls.Status)
			assert.True(t, tt.nc.ScheduledAt.Equal(cls.ScheduledAt))
			assert.Equal(t, tt.wantMeet, cls.MeetingURL != "")
		})
	}

	classes, total, err := env.ClassSvc.ListForContract(ctx, parent, c.ID, &class.QueryFilter{}, core.Page{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, classes, 2)

	_, err = env.ContractSvc.Complete(ctx, parent, c.ID)
	require.NoError(t, err)
	_, err = env.ClassSvc.Schedule(ctx, parent, c.ID, class.NewClass{ScheduledAt: at, DurationMinutes: 60})
	vErr := testutil.ValidationErr(err)
	require.NotNil(t, vErr, "error = %v", err)
	assert.Equal(t, contract.ErrNotActive, vErr.Err)
}

func Test_service_lifecycle(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	parent, tchr, c := env.CreateContract(t)
	outsider := env.CreateUser(t, user.RoleParent)

	cls, err := env.ClassSvc.Schedule(ctx, tchr, c.ID, class.NewClass{ScheduledAt: time.Date(2030, 2, 1, 16, 0, 0, 0, time.UTC), DurationMinutes: 60})
	require.NoError(t, err)

	_, err = env.ClassSvc.Get(ctx, outsider, cls.ID)
	assert.Equal(t, core.ErrForbidden, errors.Cause(err))

	newAt := time.Date(2030, 2, 2, 10, 0, 0, 0, time.UTC)
	notes := "Bring the exercise book"
	updated, err := env.ClassSvc.Update(ctx, parent, cls.ID, class.UpdateClass{ScheduledAt: &newAt, Notes: &notes})
	require.NoError(t, err)
	assert.True(t, newAt.Equal(updated.ScheduledAt))
	assert.Equal(t, notes, updated.Notes)
	assert.Equal(t, 60, updated.DurationMinutes)

	done, err := env.ClassSvc.Complete(ctx, tchr, cls.ID)
	require.NoError(t, err)
	assert.Equal(t, class.StatusCompleted, done.Status)

	for name, fn := range map[string]func() (class.Class, error){
		"update":   func() (class.Class, error) { return env.ClassSvc.Update(ctx, parent, cls.ID, class.UpdateClass{DurationMinutes: 30}) },
		"complete": func() (class.Class, error) { return env.ClassSvc.Complete(ctx, parent, cls.ID) },
		"cancel":   func() (class.Class, error) { return env.ClassSvc.Cancel(ctx, parent, cls.ID) },
	} {
		_, err := fn()
		vErr := testutil.ValidationErr(err)
		if assert.NotNil(t, vErr, "%s: error = %v", name, err) {
			assert.Equal(t, class.ErrNotScheduled, vErr.Err, name)
		}
	}

	other, err := env.ClassSvc.Schedule(ctx, parent, c.ID, class.NewClass{ScheduledAt: newAt, DurationMinutes: 45})
	require.NoError(t, err)
	cancelled, err := env.ClassSvc.Cancel(ctx, tchr, other.ID)
	require.NoError(t, err)
	assert.Equal(t, class.StatusCancelled, cancelled.Status)

	classes, total, err := env.ClassSvc.ListForContract(ctx, tchr, c.ID, &class.QueryFilter{Status: class.StatusCancelled}, core.Page{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, other.ID, classes[0].ID)
}
