package echoapi_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorly/tutorly/core"
	"github.com/tutorly/tutorly/core/application"
	"github.com/tutorly/tutorly/core/contract"
	"github.com/tutorly/tutorly/core/job"
	"github.com/tutorly/tutorly/core/user"
)

func Test_authMiddleware(t *testing.T) {
	env, server := setup(t)

	parent := env.CreateUser(t, user.RoleParent)
	inactive := env.CreateUser(t, user.RoleParent)
	admin := env.CreateUser(t, user.RoleAdmin)
	_, err := env.UserSvc.SetActive(context.Background(), admin, inactive.ID, false)
	require.NoError(t, err)

	tests := []httpTest{
		{name: "no token", method: http.MethodGet, path: "/v1/profile/me", wantCode: http.StatusUnauthorized, wantErr: core.CodeUnauthorized},
		{name: "malformed token", method: http.MethodGet, path: "/v1/profile/me", token: "lol", wantCode: http.StatusUnauthorized, wantErr: core.CodeUnauthorized},
		{
			name:     "expired token",
			method:   http.MethodGet,
			path:     "/v1/profile/me",
			token:    getToken(t, env, parent.ID, parent.Email, -time.Minute),
			wantCode: http.StatusUnauthorized,
			wantErr:  core.CodeUnauthorized,
		},
		{
			name:     "no profile",
			method:   http.MethodGet,
			path:     "/v1/profile/me",
			token:    getToken(t, env, uuid.NewString(), "nobody@tutorly.test"),
			wantCode: http.StatusForbidden,
			wantErr:  core.CodeUnauthorized,
		},
		{name: "deactivated", method: http.MethodGet, path: "/v1/profile/me", token: userToken(t, env, inactive), wantCode: http.StatusForbidden, wantErr: core.CodeUnauthorized},
		{name: "ok", method: http.MethodGet, path: "/v1/profile/me", token: userToken(t, env, parent), wantCode: http.StatusOK},
		{name: "token query param", method: http.MethodGet, path: "/v1/profile/me?token=" + userToken(t, env, parent), wantCode: http.StatusOK},
		{name: "public route", method: http.MethodGet, path: "/v1/teachers", wantCode: http.StatusOK},
	}
	run(t, server, tests)
}

func Test_profileAPI_create(t *testing.T) {
	env, server := setup(t)

	subject := uuid.NewString()
	token := getToken(t, env, subject, "Parent@Tutorly.test")

	tests := []httpTest{
		{
			name:     "invalid role",
			method:   http.MethodPost,
			path:     "/v1/profile",
			token:    token,
			body:     map[string]string{"full_name": "Jane", "role": user.RoleAdmin},
			wantCode: http.StatusBadRequest,
			wantErr:  core.CodeValidation,
		},
		{
			name:     "blank name",
			method:   http.MethodPost,
			path:     "/v1/profile",
			token:    token,
			body:     map[string]string{"full_name": "  ", "role": user.RoleParent},
			wantCode: http.StatusBadRequest,
			wantErr:  core.CodeValidation,
		},
		{
			name:     "created",
			method:   http.MethodPost,
			path:     "/v1/profile",
			token:    token,
			body:     map[string]string{"full_name": "Jane", "role": user.RoleParent},
			wantCode: http.StatusCreated,
		},
		{
			name:     "already exists",
			method:   http.MethodPost,
			path:     "/v1/profile",
			token:    token,
			body:     map[string]string{"full_name": "Jane", "role": user.RoleParent},
			wantCode: http.StatusBadRequest,
			wantErr:  core.CodeValidation,
		},
		{name: "parent profile created along", method: http.MethodGet, path: "/v1/profile/parent", token: token, wantCode: http.StatusOK},
	}
	run(t, server, tests)

	usr, err := env.UserSvc.GetByID(context.Background(), subject)
	require.NoError(t, err)
	assert.Equal(t, "parent@tutorly.test", usr.Email)
	assert.True(t, usr.IsActive)
}

func Test_jobAPI(t *testing.T) {
	env, server := setup(t)

	parent := env.CreateUser(t, user.RoleParent)
	other := env.CreateUser(t, user.RoleParent)
	tchr, _ := env.CreateTeacher(t)
	parentToken := userToken(t, env, parent)

	newJob := map[string]interface{}{
		"title":             "Maths tutor",
		"subject":           "Mathematics",
		"level":             core.LevelPrimary,
		"mode":              job.ModeOnline,
		"sessions_per_week": 2,
		"budget_min":        10,
		"budget_max":        20,
	}
	badBudget := map[string]interface{}{
		"title":             "Maths tutor",
		"subject":           "Mathematics",
		"level":             core.LevelPrimary,
		"mode":              job.ModeOnline,
		"sessions_per_week": 2,
		"budget_min":        30,
		"budget_max":        20,
	}

	code, res := do(t, server, http.MethodPost, "/v1/jobs", parentToken, newJob)
	require.Equal(t, http.StatusCreated, code, res.Error)
	var j job.Job
	decodeData(t, res, &j)
	assert.Equal(t, job.StatusOpen, j.Status)
	assert.Equal(t, parent.ID, j.ParentID)

	tests := []httpTest{
		{name: "teacher cannot post", method: http.MethodPost, path: "/v1/jobs", token: userToken(t, env, tchr), body: newJob, wantCode: http.StatusForbidden, wantErr: core.CodeUnauthorized},
		{name: "budget max below min", method: http.MethodPost, path: "/v1/jobs", token: parentToken, body: badBudget, wantCode: http.StatusBadRequest, wantErr: core.CodeValidation},
		{name: "teacher lists open jobs", method: http.MethodGet, path: "/v1/jobs", token: userToken(t, env, tchr), wantCode: http.StatusOK},
		{name: "teacher views job", method: http.MethodGet, path: "/v1/jobs/" + j.ID, token: userToken(t, env, tchr), wantCode: http.StatusOK},
		{name: "other parent cannot view", method: http.MethodGet, path: "/v1/jobs/" + j.ID, token: userToken(t, env, other), wantCode: http.StatusForbidden, wantErr: core.CodeUnauthorized},
		{name: "other parent cannot close", method: http.MethodPost, path: "/v1/jobs/" + j.ID + "/close", token: userToken(t, env, other), wantCode: http.StatusForbidden, wantErr: core.CodeUnauthorized},
		{name: "not found", method: http.MethodGet, path: "/v1/jobs/" + uuid.NewString(), token: parentToken, wantCode: http.StatusNotFound, wantErr: core.CodeNotFound},
		{name: "close", method: http.MethodPost, path: "/v1/jobs/" + j.ID + "/close", token: parentToken, wantCode: http.StatusOK},
		{name: "close twice", method: http.MethodPost, path: "/v1/jobs/" + j.ID + "/close", token: parentToken, wantCode: http.StatusBadRequest, wantErr: core.CodeValidation},
	}
	run(t, server, tests)

	code, res = do(t, server, http.MethodGet, "/v1/jobs", userToken(t, env, tchr), nil)
	require.Equal(t, http.StatusOK, code)
	var jobs []job.Job
	decodeData(t, res, &jobs)
	assert.Empty(t, jobs, "closed jobs are not listed to teachers")
	assert.EqualValues(t, 0, res.Pagination["total_rows"])
}

func Test_applicationAPI_accept(t *testing.T) {
	env, server := setup(t)

	parent := env.CreateUser(t, user.RoleParent)
	tchr1, _ := env.CreateTeacher(t)
	tchr2, _ := env.CreateTeacher(t)
	j := env.CreateJob(t, parent)
	parentToken := userToken(t, env, parent)

	applyPath := "/v1/jobs/" + j.ID + "/applications"
	code, res := do(t, server, http.MethodPost, applyPath, userToken(t, env, tchr1), map[string]interface{}{"proposed_rate": 18, "cover_letter": "Hi"})
	require.Equal(t, http.StatusCreated, code, res.Error)
	var app1 application.Application
	decodeData(t, res, &app1)
	assert.Equal(t, application.StatusPending, app1.Status)
	app2 := env.Apply(t, tchr2, j)

	tests := []httpTest{
		{name: "apply twice", method: http.MethodPost, path: applyPath, token: userToken(t, env, tchr1), body: map[string]interface{}{"proposed_rate": 18}, wantCode: http.StatusBadRequest, wantErr: core.CodeValidation},
		{name: "rate required", method: http.MethodPost, path: applyPath, token: userToken(t, env, tchr2), body: map[string]interface{}{}, wantCode: http.StatusBadRequest, wantErr: core.CodeValidation},
		{name: "parent lists applications", method: http.MethodGet, path: applyPath, token: parentToken, wantCode: http.StatusOK},
		{name: "teacher cannot accept", method: http.MethodPost, path: "/v1/applications/" + app1.ID + "/accept", token: userToken(t, env, tchr1), body: map[string]interface{}{"start_date": time.Now().UTC()}, wantCode: http.StatusForbidden, wantErr: core.CodeUnauthorized},
		{name: "start date required", method: http.MethodPost, path: "/v1/applications/" + app1.ID + "/accept", token: parentToken, body: map[string]interface{}{}, wantCode: http.StatusBadRequest, wantErr: core.CodeValidation},
		{name: "accept", method: http.MethodPost, path: "/v1/applications/" + app1.ID + "/accept", token: parentToken, body: map[string]interface{}{"start_date": time.Now().UTC()}, wantCode: http.StatusCreated},
		{name: "accept twice", method: http.MethodPost, path: "/v1/applications/" + app1.ID + "/accept", token: parentToken, body: map[string]interface{}{"start_date": time.Now().UTC()}, wantCode: http.StatusBadRequest, wantErr: core.CodeValidation},
	}
	run(t, server, tests)

	ctx := context.Background()
	filled, err := env.JobSvc.Get(ctx, parent, j.ID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusFilled, filled.Status)

	other, err := env.ApplicationSvc.Get(ctx, parent, app2.ID)
	require.NoError(t, err)
	assert.Equal(t, application.StatusRejected, other.Status)

	contracts, total, err := env.ContractSvc.ListMine(ctx, tchr1, &contract.QueryFilter{}, nil, core.Page{})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.Equal(t, contract.StatusActive, contracts[0].Status)
	assert.Equal(t, 18.0, contracts[0].HourlyRate)
}

func Test_adminAPI(t *testing.T) {
	env, server := setup(t)

	admin := env.CreateUser(t, user.RoleAdmin)
	parent := env.CreateUser(t, user.RoleParent)
	adminToken := userToken(t, env, admin)

	tests := []httpTest{
		{name: "non admin", method: http.MethodGet, path: "/v1/admin/users", token: userToken(t, env, parent), wantCode: http.StatusForbidden, wantErr: core.CodeUnauthorized},
		{name: "list users", method: http.MethodGet, path: "/v1/admin/users?search=parent", token: adminToken, wantCode: http.StatusOK},
		{name: "get user", method: http.MethodGet, path: "/v1/admin/users/" + parent.ID, token: adminToken, wantCode: http.StatusOK},
		{name: "is_active required", method: http.MethodPut, path: "/v1/admin/users/" + parent.ID + "/active", token: adminToken, body: map[string]interface{}{}, wantCode: http.StatusBadRequest, wantErr: core.CodeValidation},
		{name: "cannot deactivate self", method: http.MethodPut, path: "/v1/admin/users/" + admin.ID + "/active", token: adminToken, body: map[string]interface{}{"is_active": false}, wantCode: http.StatusBadRequest, wantErr: core.CodeValidation},
		{name: "deactivate", method: http.MethodPut, path: "/v1/admin/users/" + parent.ID + "/active", token: adminToken, body: map[string]interface{}{"is_active": false}, wantCode: http.StatusOK},
		{name: "deactivated user is locked out", method: http.MethodGet, path: "/v1/profile/me", token: userToken(t, env, parent), wantCode: http.StatusForbidden, wantErr: core.CodeUnauthorized},
		{name: "invalid role", method: http.MethodPut, path: "/v1/admin/users/" + parent.ID + "/role", token: adminToken, body: map[string]interface{}{"role": "KING"}, wantCode: http.StatusBadRequest, wantErr: core.CodeValidation},
		{name: "set role", method: http.MethodPut, path: "/v1/admin/users/" + parent.ID + "/role", token: adminToken, body: map[string]interface{}{"role": user.RoleTeacher}, wantCode: http.StatusOK},
	}
	run(t, server, tests)
}

func Test_contactAPI(t *testing.T) {
	env, server := setup(t)

	admin := env.CreateUser(t, user.RoleAdmin)
	body := map[string]string{
		"name":    "Jane",
		"email":   "jane@example.com",
		"subject": "Hello",
		"message": "I would like to know more.",
	}

	code, res := do(t, server, http.MethodPost, "/v1/contact", "", body)
	require.Equal(t, http.StatusCreated, code, res.Error)
	var c struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	decodeData(t, res, &c)

	sent := env.Mail.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, env.Conf.AdminEmail, sent[0].To[0].Address)

	tests := []httpTest{
		{name: "invalid email", method: http.MethodPost, path: "/v1/contact", body: map[string]string{"name": "J", "email": "nope", "subject": "s", "message": "m"}, wantCode: http.StatusBadRequest, wantErr: core.CodeValidation},
		{name: "list requires auth", method: http.MethodGet, path: "/v1/admin/contacts", wantCode: http.StatusUnauthorized, wantErr: core.CodeUnauthorized},
		{name: "list", method: http.MethodGet, path: "/v1/admin/contacts", token: userToken(t, env, admin), wantCode: http.StatusOK},
		{name: "resolve", method: http.MethodPost, path: fmt.Sprintf("/v1/admin/contacts/%s/resolve", c.ID), token: userToken(t, env, admin), wantCode: http.StatusOK},
		{name: "resolve again", method: http.MethodPost, path: fmt.Sprintf("/v1/admin/contacts/%s/resolve", c.ID), token: userToken(t, env, admin), wantCode: http.StatusOK},
	}
	run(t, server, tests)
}
