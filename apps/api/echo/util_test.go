package echoapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/tutorly/tutorly/apps/api/echo"
	"github.com/tutorly/tutorly/core/user"
	testutil "github.com/tutorly/tutorly/tests"
)

func setup(t *testing.T) (*testutil.Env, *echoapi.Server) {
	env := testutil.NewEnv(t)
	server := echoapi.NewServer(env.Conf, env.Logger, echoapi.ServerDeps{
		Validate:       env.Validate,
		Translator:     env.Translator,
		UserSvc:        env.UserSvc,
		TeacherSvc:     env.TeacherSvc,
		StudentSvc:     env.StudentSvc,
		JobSvc:         env.JobSvc,
		ApplicationSvc: env.ApplicationSvc,
		ContractSvc:    env.ContractSvc,
		ClassSvc:       env.ClassSvc,
		PaymentSvc:     env.PaymentSvc,
		ReviewSvc:      env.ReviewSvc,
		MessageSvc:     env.MessageSvc,
		TeacherAppSvc:  env.TeacherAppSvc,
		ContactSvc:     env.ContactSvc,
		Hub:            env.Hub,
	})
	return env, server
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     interface{}
	token    string
	wantCode int
	wantErr  string // response code, for failures
}

type response struct {
	Success    bool                   `json:"success"`
	Data       json.RawMessage        `json:"data"`
	Pagination map[string]interface{} `json:"pagination"`
	Error      string                 `json:"error"`
	Code       string                 `json:"code"`
	Fields     map[string]string      `json:"fields"`
}

func newAuthRequest(t *testing.T, method, path, token string, data interface{}) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if data != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(data))
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, httptest.NewRecorder()
}

func getToken(t *testing.T, env *testutil.Env, subject, email string, ttl ...time.Duration) string {
	exp := time.Hour
	if len(ttl) > 0 {
		exp = ttl[0]
	}
	token, err := echoapi.GenerateToken(env.Conf, echoapi.NewClaims(env.Conf, subject, email, exp))
	require.NoError(t, err)
	return token
}

func userToken(t *testing.T, env *testutil.Env, usr user.User) string {
	return getToken(t, env, usr.ID, usr.Email)
}

func do(t *testing.T, server *echoapi.Server, method, path, token string, data interface{}) (int, response) {
	req, rec := newAuthRequest(t, method, path, token, data)
	server.ServeHTTP(rec, req)

	var res response
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res), rec.Body.String())
	}
	return rec.Code, res
}

// run performs each test's request, checking its status and, for failures, the error code.
func run(t *testing.T, server *echoapi.Server, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, res := do(t, server, tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.wantCode, code, res.Error)
			if tt.wantErr != "" {
				assert.False(t, res.Success)
				assert.Equal(t, tt.wantErr, res.Code)
			} else {
				assert.True(t, res.Success)
			}
		})
	}
}

func decodeData(t *testing.T, res response, dest interface{}) {
	require.NoError(t, json.Unmarshal(res.Data, dest))
}
