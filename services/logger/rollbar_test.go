package logsvc

import (
	"bytes"
	"log"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorly/tutorly/core"
	"github.com/tutorly/tutorly/core/user"
)

func newTestLogger() (*RollbarLogger, *bytes.Buffer) {
	buf := new(bytes.Buffer)
	logger := NewRollbarLogger(log.New(buf, "", 0), core.NewTestConfig())
	logger.Enable(false)
	return logger, buf
}

func TestRollbarLogger_prepare(t *testing.T) {
	logger, _ := newTestLogger()
	tchr := user.User{ID: "u1", FullName: "Tina", Email: "tina@tutorly.test", Role: user.RoleTeacher, IsActive: true}
	parent := user.User{ID: "u2", Role: user.RoleParent}
	err := errors.New("boom")

	tests := []struct {
		name string
		args []interface{}
		want []interface{}
	}{
		{
			name: "no user",
			args: []interface{}{err, map[string]interface{}{"job_id": "j1"}},
			want: []interface{}{"msg", err, map[string]interface{}{"job_id": "j1"}},
		},
		{
			name: "user without extras",
			args: []interface{}{err, tchr},
			want: []interface{}{"msg", err, map[string]interface{}{"user_role": user.RoleTeacher, "user_active": true}},
		},
		{
			name: "user merged into extras",
			args: []interface{}{tchr, map[string]interface{}{"job_id": "j1"}, err},
			want: []interface{}{
				"msg",
				map[string]interface{}{"job_id": "j1", "user_role": user.RoleTeacher, "user_active": true},
				err,
			},
		},
		{
			name: "first user wins",
			args: []interface{}{parent, tchr},
			want: []interface{}{"msg", map[string]interface{}{"user_role": user.RoleParent, "user_active": false}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, logger.prepare("msg", tt.args))
		})
	}
}

func TestRollbarLogger_print(t *testing.T) {
	logger, buf := newTestLogger()
	usr := user.User{ID: "u1", Email: "tina@tutorly.test", Role: user.RoleTeacher}

	logger.Error("sending email", errors.New("timeout"), usr)

	out := buf.String()
	require.NotEmpty(t, out)
	assert.Contains(t, out, "ERROR sending email [user=u1 role=TEACHER]")
	assert.Contains(t, out, "timeout")
	assert.NotContains(t, out, "tina@tutorly.test", "personal data stays out of the local log")

	buf.Reset()
	logger.Info("started")
	assert.Equal(t, "INFO  started\n", buf.String())
}
