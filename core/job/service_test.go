package job_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorly/tutorly/core"
	"github.com/tutorly/tutorly/core/job"
	"github.com/tutorly/tutorly/core/student"
	"github.com/tutorly/tutorly/core/user"
	testutil "github.com/tutorly/tutorly/tests"
)

func newJob() job.NewJob {
	return job.NewJob{
		Title:           "Physics tutor",
		Subject:         "Physics",
		Level:           core.LevelUpperSecondary,
		Mode:            job.ModeInPerson,
		Location:        "Gombe",
		SessionsPerWeek: 3,
		BudgetMin:       15,
		BudgetMax:       30,
	}
}

func Test_service_Create(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	parent := env.CreateUser(t, user.RoleParent)
	other := env.CreateUser(t, user.RoleParent)
	tchr, _ := env.CreateTeacher(t)

	kid, err := env.StudentSvc.Create(ctx, parent, student.NewStudent{FullName: "Kid", Level: core.LevelPrimary})
	require.NoError(t, err)
	otherKid, err := env.StudentSvc.Create(ctx, other, student.NewStudent{FullName: "Other kid", Level: core.LevelPrimary})
	require.NoError(t, err)

	withStudent := func(id string) job.NewJob {
		nj := newJob()
		nj.StudentID = id
		return nj
	}

	tests := []struct {
		name      string
		actor     user.User
		nj        job.NewJob
		forbidden bool
		wantField string
	}{
		{name: "teacher", actor: tchr, nj: newJob(), forbidden: true},
		{name: "someone else's student", actor: parent, nj: withStudent(otherKid.ID), wantField: "student_id"},
		{name: "no student", actor: parent, nj: newJob()},
		{name: "own student", actor: parent, nj: withStudent(kid.ID)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j, err := env.JobSvc.Create(ctx, tt.actor, tt.nj)
			switch {
			case tt.forbidden:
				assert.Equal(t, core.ErrForbidden, errors.Cause(err))
			case tt.wantField != "":
				vErr := testutil.ValidationErr(err)
				require.NotNil(t, vErr, "error = %v", err)
				assert.Equal(t, tt.wantField, vErr.Fields[0].Field)
			default:
				require.NoError(t, err)
				assert.Equal(t, job.StatusOpen, j.Status)
				assert.Equal(t, tt.actor.ID, j.ParentID)
				assert.Equal(t, tt.nj.StudentID, j.StudentID.String)
			}
		})
	}
}

func Test_service_Query(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	parent1 := env.CreateUser(t, user.RoleParent)
	parent2 := env.CreateUser(t, user.RoleParent)
	tchr, _ := env.CreateTeacher(t)

	j1 := env.CreateJob(t, parent1)
	j2, err := env.JobSvc.Create(ctx, parent1, newJob())
	require.NoError(t, err)
	j3 := env.CreateJob(t, parent2)
	_, err = env.JobSvc.Close(ctx, parent2, j3.ID)
	require.NoError(t, err)

	ids := func(jobs []job.Job) []string {
		res := make([]string, 0, len(jobs))
		for _, j := range jobs {
			res = append(res, j.ID)
		}
		return res
	}

	tests := []struct {
		name   string
		actor  user.User
		filter job.QueryFilter
		want   []string
	}{
		{name: "parent sees own jobs", actor: parent1, want: []string{j1.ID, j2.ID}},
		{name: "parent sees own closed jobs", actor: parent2, want: []string{j3.ID}},
		{name: "teacher sees open jobs", actor: tchr, want: []string{j1.ID, j2.ID}},
		{name: "teacher filters by subject", actor: tchr, filter: job.QueryFilter{Subject: "physics"}, want: []string{j2.ID}},
		{name: "teacher searches", actor: tchr, filter: job.QueryFilter{Search: "MATHS"}, want: []string{j1.ID}},
		{name: "teacher filters by mode", actor: tchr, filter: job.QueryFilter{Mode: job.ModeInPerson}, want: []string{j2.ID}},
		{name: "teacher filters by status", actor: tchr, filter: job.QueryFilter{Status: job.StatusClosed}, want: []string{j3.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter := tt.filter
			jobs, total, err := env.JobSvc.Query(ctx, tt.actor, &filter, nil, core.Page{})
			require.NoError(t, err)
			assert.Equal(t, len(tt.want), total)
			assert.ElementsMatch(t, tt.want, ids(jobs))
		})
	}
}

func Test_service_UpdateAndDelete(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	parent := env.CreateUser(t, user.RoleParent)
	other := env.CreateUser(t, user.RoleParent)
	j := env.CreateJob(t, parent)

	nj := newJob()
	_, err := env.JobSvc.Update(ctx, other, j.ID, nj)
	assert.Equal(t, core.ErrForbidden, errors.Cause(err))

	updated, err := env.JobSvc.Update(ctx, parent, j.ID, nj)
	require.NoError(t, err)
	assert.Equal(t, nj.Title, updated.Title)
	assert.Equal(t, nj.Mode, updated.Mode)

	closed, err := env.JobSvc.Close(ctx, parent, j.ID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusClosed, closed.Status)

	_, err = env.JobSvc.Update(ctx, parent, j.ID, nj)
	vErr := testutil.ValidationErr(err)
	require.NotNil(t, vErr)
	assert.Equal(t, job.ErrNotOpen, vErr.Err)

	require.NoError(t, env.JobSvc.Delete(ctx, parent, j.ID))
	_, err = env.JobSvc.Get(ctx, parent, j.ID)
	assert.True(t, core.IsNotFound(err))
}

func Test_service_Delete_accepted(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	parent, _, c := env.CreateContract(t)
	err := env.JobSvc.Delete(ctx, parent, c.JobID)
	vErr := testutil.ValidationErr(err)
	require.NotNil(t, vErr, "error = %v", err)
	assert.Equal(t, job.ErrHasAcceptedApp, vErr.Err)
}

func Test_service_Query_pastLastPage(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	parent := env.CreateUser(t, user.RoleParent)
	tchr, _ := env.CreateTeacher(t)
	env.CreateJob(t, parent)

	for _, number := range []int{2, 1 << 40, 1 << 62} {
		jobs, total, err := env.JobSvc.Query(ctx, tchr, &job.QueryFilter{}, nil, core.Page{Number: number, Size: 20})
		require.NoError(t, err, "page %d", number)
		assert.Equal(t, 1, total)
		assert.Empty(t, jobs)
	}
}
