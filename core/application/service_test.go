package application_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorly/tutorly/core"
	"github.com/tutorly/tutorly/core/application"
	"github.com/tutorly/tutorly/core/contract"
	"github.com/tutorly/tutorly/core/job"
	"github.com/tutorly/tutorly/core/user"
	"github.com/tutorly/tutorly/storage/database/sqlxrepos"
	testutil "github.com/tutorly/tutorly/tests"
)

func Test_service_Apply(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	parent := env.CreateUser(t, user.RoleParent)
	tchr, tProfile := env.CreateTeacher(t)
	unverified := env.CreateUser(t, user.RoleTeacher)
	j := env.CreateJob(t, parent)
	closed := env.CreateJob(t, parent)
	_, err := env.JobSvc.Close(ctx, parent, closed.ID)
	require.NoError(t, err)

	na := application.NewApplication{CoverLetter: "I love maths", ProposedRate: 22}

	app, err := env.ApplicationSvc.Apply(ctx, tchr, j.ID, na)
	require.NoError(t, err)
	assert.Equal(t, application.StatusPending, app.Status)
	assert.Equal(t, tProfile.ID, app.TeacherID)
	assert.Equal(t, parent.ID, app.ParentID)
	assert.Equal(t, j.Title, app.JobTitle)

	sent := env.Mail.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, parent.Email, sent[0].To[0].Address)

	tests := []struct {
		name    string
		actor   user.User
		jobID   string
		wantErr error // validation error cause, or error cause
	}{
		{name: "twice", actor: tchr, jobID: j.ID, wantErr: application.ErrAlreadyApplied},
		{name: "closed job", actor: tchr, jobID: closed.ID, wantErr: job.ErrNotOpen},
		{name: "unverified teacher", actor: unverified, jobID: j.ID, wantErr: core.ErrForbidden},
		{name: "parent", actor: parent, jobID: j.ID, wantErr: core.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.ApplicationSvc.Apply(ctx, tt.actor, tt.jobID, na)
			require.Error(t, err)
			if vErr := testutil.ValidationErr(err); vErr != nil {
				assert.Equal(t, tt.wantErr, vErr.Err)
			} else {
				assert.Equal(t, tt.wantErr, errors.Cause(err))
			}
		})
	}
}

func Test_service_Accept(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	parent := env.CreateUser(t, user.RoleParent)
	other := env.CreateUser(t, user.RoleParent)
	tchr1, t1 := env.CreateTeacher(t)
	tchr2, _ := env.CreateTeacher(t)
	tchr3, _ := env.CreateTeacher(t)
	j := env.CreateJob(t, parent)

	app1 := env.Apply(t, tchr1, j)
	app2 := env.Apply(t, tchr2, j)
	app3 := env.Apply(t, tchr3, j)
	_, err := env.ApplicationSvc.Withdraw(ctx, tchr3, app3.ID)
	require.NoError(t, err)

	start := time.Date(2030, 1, 6, 0, 0, 0, 0, time.UTC)
	terms := contract.Terms{StartDate: start, Terms: "Twice a week"}

	_, err = env.ApplicationSvc.Accept(ctx, other, app1.ID, terms)
	assert.Equal(t, core.ErrForbidden, errors.Cause(err))

	env.Mail.Reset()
	c, err := env.ApplicationSvc.Accept(ctx, parent, app1.ID, terms)
	require.NoError(t, err)
	assert.Equal(t, contract.StatusActive, c.Status)
	assert.Equal(t, j.ID, c.JobID)
	assert.Equal(t, app1.ID, c.ApplicationID)
	assert.Equal(t, parent.ID, c.ParentID)
	assert.Equal(t, t1.ID, c.TeacherID)
	assert.Equal(t, app1.ProposedRate, c.HourlyRate)
	assert.True(t, start.Equal(c.StartDate))

	filled, err := env.JobSvc.Get(ctx, parent, j.ID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusFilled, filled.Status)

	wantStatuses := map[string]string{
		app1.ID: application.StatusAccepted,
		app2.ID: application.StatusRejected,
		app3.ID: application.StatusWithdrawn,
	}
	for id, want := range wantStatuses {
		app, err := env.ApplicationSvc.Get(ctx, parent, id)
		require.NoError(t, err)
		assert.Equal(t, want, app.Status, id)
	}

	sent := env.Mail.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, tchr1.Email, sent[0].To[0].Address)

	// nothing is left pending
	_, err = env.ApplicationSvc.Accept(ctx, parent, app2.ID, terms)
	vErr := testutil.ValidationErr(err)
	require.NotNil(t, vErr)
	assert.Equal(t, application.ErrNotPending, vErr.Err)
}

func Test_service_Accept_rollsBack(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	parent := env.CreateUser(t, user.RoleParent)
	tchr, _ := env.CreateTeacher(t)
	j := env.CreateJob(t, parent)
	app := env.Apply(t, tchr, j)

	// the job gets closed under the application: filling it fails, nothing is committed
	_, err := env.JobSvc.Close(ctx, parent, j.ID)
	require.NoError(t, err)

	_, err = env.ApplicationSvc.Accept(ctx, parent, app.ID, contract.Terms{StartDate: time.Now()})
	require.Error(t, err)

	app, err = env.ApplicationSvc.Get(ctx, parent, app.ID)
	require.NoError(t, err)
	assert.Equal(t, application.StatusPending, app.Status)

	_, total, err := env.ContractSvc.ListMine(ctx, parent, &contract.QueryFilter{}, nil, core.Page{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func Test_service_WithdrawAndReject(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	parent := env.CreateUser(t, user.RoleParent)
	tchr1, _ := env.CreateTeacher(t)
	tchr2, _ := env.CreateTeacher(t)
	j := env.CreateJob(t, parent)
	app1 := env.Apply(t, tchr1, j)
	app2 := env.Apply(t, tchr2, j)

	_, err := env.ApplicationSvc.Withdraw(ctx, tchr2, app1.ID)
	assert.Equal(t, core.ErrForbidden, errors.Cause(err))
	_, err = env.ApplicationSvc.Reject(ctx, tchr1, app2.ID)
	assert.Equal(t, core.ErrForbidden, errors.Cause(err))

	app1, err = env.ApplicationSvc.Withdraw(ctx, tchr1, app1.ID)
	require.NoError(t, err)
	assert.Equal(t, application.StatusWithdrawn, app1.Status)

	app2, err = env.ApplicationSvc.Reject(ctx, parent, app2.ID)
	require.NoError(t, err)
	assert.Equal(t, application.StatusRejected, app2.Status)

	_, err = env.ApplicationSvc.Withdraw(ctx, tchr2, app2.ID)
	vErr := testutil.ValidationErr(err)
	require.NotNil(t, vErr)
	assert.Equal(t, application.ErrNotPending, vErr.Err)

	mine, total, err := env.ApplicationSvc.ListMine(ctx, tchr1, &application.QueryFilter{}, nil, core.Page{})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.Equal(t, app1.ID, mine[0].ID)

	_, _, err = env.ApplicationSvc.ListForJob(ctx, tchr1, j.ID, &application.QueryFilter{}, nil, core.Page{})
	assert.Equal(t, core.ErrForbidden, errors.Cause(err))

	rejected, total, err := env.ApplicationSvc.ListForJob(ctx, parent, j.ID, &application.QueryFilter{Status: application.StatusRejected}, nil, core.Page{})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.Equal(t, app2.ID, rejected[0].ID)
}

type recordingLogger struct {
	core.Logger
	mu   sync.Mutex
	msgs []string
}

func (l *recordingLogger) Error(msg string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.msgs = append(l.msgs, msg)
}

func (l *recordingLogger) Errors() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.msgs...)
}

// unreachableUsers fails every user lookup.
type unreachableUsers struct {
	user.Service
}

func (unreachableUsers) GetByID(context.Context, string) (user.User, error) {
	return user.User{}, errors.New("connection refused")
}

func Test_service_mailUserLookupFailure(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	logger := &recordingLogger{Logger: env.Logger}
	svc := application.NewService(
		sqlxrepos.NewApplicationRepository(env.DB), env.DB, unreachableUsers{env.UserSvc},
		env.TeacherSvc, env.JobSvc, env.ContractSvc, env.Mail, logger, env.Hub,
	)

	parent := env.CreateUser(t, user.RoleParent)
	tchr, _ := env.CreateTeacher(t)
	j := env.CreateJob(t, parent)
	env.Mail.Reset()

	app, err := svc.Apply(ctx, tchr, j.ID, application.NewApplication{ProposedRate: 20})
	require.NoError(t, err, "a mail failure does not fail the application")
	require.Len(t, logger.Errors(), 1)
	assert.Contains(t, logger.Errors()[0], app.ID)
	assert.Contains(t, logger.Errors()[0], "connection refused")

	c, err := svc.Accept(ctx, parent, app.ID, contract.Terms{StartDate: time.Now().UTC()})
	require.NoError(t, err)
	require.Len(t, logger.Errors(), 2)
	assert.Contains(t, logger.Errors()[1], c.ID)

	assert.Empty(t, env.Mail.SentMessages())
}
