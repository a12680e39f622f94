package teacherapp_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorly/tutorly/core"
	"github.com/tutorly/tutorly/core/teacher"
	"github.com/tutorly/tutorly/core/teacherapp"
	"github.com/tutorly/tutorly/core/user"
	testutil "github.com/tutorly/tutorly/tests"
)

func newApplication() teacherapp.NewApplication {
	return teacherapp.NewApplication{
		Bio:             "Physics graduate",
		ExperienceYears: 3,
		HourlyRate:      15,
		City:            "Lubumbashi",
		Subjects:        []string{"Physics", "Mathematics"},
		Levels:          []string{core.LevelUpperSecondary},
		Qualifications:  []teacher.NewQualification{{Title: "BSc Physics", YearObtained: 2019}},
	}
}

func assertInvalidTransition(t *testing.T, err error) {
	t.Helper()
	vErr := testutil.ValidationErr(err)
	require.NotNil(t, vErr, "error = %v", err)
	assert.Equal(t, teacherapp.ErrInvalidTransition, vErr.Err)
}

func Test_service_Submit(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	parent := env.CreateUser(t, user.RoleParent)
	_, err := env.TeacherAppSvc.Submit(ctx, parent, newApplication())
	assert.Equal(t, core.ErrForbidden, errors.Cause(err))

	applicant := env.CreateUser(t, user.RoleTeacher)
	_, err = env.TeacherAppSvc.GetMine(ctx, applicant)
	assert.True(t, core.IsNotFound(err))

	app, err := env.TeacherAppSvc.Submit(ctx, applicant, newApplication())
	require.NoError(t, err)
	assert.Equal(t, teacherapp.StatusPending, app.Status)
	assert.Equal(t, applicant.Email, app.Email)
	assert.Equal(t, []string{"Physics", "Mathematics"}, []string(app.Subjects))
	require.Len(t, app.Qualifications, 1)
	assert.Equal(t, "BSc Physics", app.Qualifications[0].Title)

	_, err = env.TeacherAppSvc.Submit(ctx, applicant, newApplication())
	vErr := testutil.ValidationErr(err)
	require.NotNil(t, vErr, "error = %v", err)
	assert.Equal(t, teacherapp.ErrAlreadySubmitted, vErr.Err)

	mine, err := env.TeacherAppSvc.GetMine(ctx, applicant)
	require.NoError(t, err)
	assert.Equal(t, app.ID, mine.ID)

	_, err = env.TeacherAppSvc.Get(ctx, env.CreateUser(t, user.RoleTeacher), app.ID)
	assert.Equal(t, core.ErrForbidden, errors.Cause(err))

	_, _, err = env.TeacherAppSvc.Query(ctx, applicant, &teacherapp.QueryFilter{}, nil, core.Page{})
	assert.Equal(t, core.ErrForbidden, errors.Cause(err))
}

func Test_service_approve(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	admin := env.CreateUser(t, user.RoleAdmin)
	applicant := env.CreateUser(t, user.RoleTeacher)
	app, err := env.TeacherAppSvc.Submit(ctx, applicant, newApplication())
	require.NoError(t, err)

	_, err = env.TeacherAppSvc.StartReview(ctx, applicant, app.ID)
	assert.Equal(t, core.ErrForbidden, errors.Cause(err), "applicants cannot review themselves")

	_, err = env.TeacherAppSvc.Approve(ctx, admin, app.ID)
	assertInvalidTransition(t, err)
	_, err = env.TeacherAppSvc.CompleteInterview(ctx, admin, app.ID, teacherapp.CompleteInterview{})
	assertInvalidTransition(t, err)

	app, err = env.TeacherAppSvc.StartReview(ctx, admin, app.ID)
	require.NoError(t, err)
	assert.Equal(t, teacherapp.StatusUnderReview, app.Status)
	assert.Equal(t, admin.ID, app.ReviewedBy.String)

	interviewAt := time.Date(2030, 1, 10, 14, 0, 0, 0, time.UTC)
	app, err = env.TeacherAppSvc.ScheduleInterview(ctx, admin, app.ID, teacherapp.ScheduleInterview{InterviewAt: interviewAt})
	require.NoError(t, err)
	assert.Equal(t, teacherapp.StatusInterviewScheduled, app.Status)
	assert.True(t, interviewAt.Equal(app.InterviewAt.Time))
	assert.NotEmpty(t, app.InterviewURL)

	app, err = env.TeacherAppSvc.CompleteInterview(ctx, admin, app.ID, teacherapp.CompleteInterview{AdminNotes: "Solid"})
	require.NoError(t, err)
	assert.Equal(t, teacherapp.StatusInterviewCompleted, app.Status)
	assert.Equal(t, "Solid", app.AdminNotes)

	// not a teacher yet
	_, err = env.TeacherSvc.GetMine(ctx, applicant)
	assert.True(t, core.IsNotFound(err))

	app, err = env.TeacherAppSvc.Approve(ctx, admin, app.ID)
	require.NoError(t, err)
	assert.Equal(t, teacherapp.StatusApproved, app.Status)

	tchr, err := env.TeacherSvc.GetMine(ctx, applicant)
	require.NoError(t, err)
	assert.True(t, tchr.IsVerified)
	assert.Equal(t, "Physics graduate", tchr.Bio)
	assert.Equal(t, 15.0, tchr.HourlyRate)

	_, err = env.TeacherAppSvc.Reject(ctx, admin, app.ID, teacherapp.Reject{})
	assertInvalidTransition(t, err)

	sent := env.Mail.SentMessages()
	require.Len(t, sent, 4)
	for _, msg := range sent {
		assert.Equal(t, "teacher_application_status", msg.TemplateName)
		assert.Equal(t, applicant.Email, msg.To[0].Address)
	}

	// a decided application allows a new submission
	_, err = env.TeacherAppSvc.Submit(ctx, applicant, newApplication())
	assert.NoError(t, err)
}

func Test_service_Reject(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	admin := env.CreateUser(t, user.RoleAdmin)
	applicant := env.CreateUser(t, user.RoleTeacher)
	app, err := env.TeacherAppSvc.Submit(ctx, applicant, newApplication())
	require.NoError(t, err)

	app, err = env.TeacherAppSvc.Reject(ctx, admin, app.ID, teacherapp.Reject{Reason: "Incomplete"})
	require.NoError(t, err)
	assert.Equal(t, teacherapp.StatusRejected, app.Status)
	assert.Equal(t, "Incomplete", app.RejectionReason)

	_, err = env.TeacherAppSvc.StartReview(ctx, admin, app.ID)
	assertInvalidTransition(t, err)

	apps, total, err := env.TeacherAppSvc.Query(ctx, admin, &teacherapp.QueryFilter{Status: teacherapp.StatusRejected}, nil, core.Page{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, app.ID, apps[0].ID)
}
