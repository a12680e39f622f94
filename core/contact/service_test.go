package contact_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorly/tutorly/core"
	"github.com/tutorly/tutorly/core/contact"
	"github.com/tutorly/tutorly/core/user"
	testutil "github.com/tutorly/tutorly/tests"
)

func TestNewContact_Validate(t *testing.T) {
	env := testutil.NewEnv(t)

	tests := []struct {
		name    string
		nc      contact.NewContact
		wantErr bool
	}{
		{name: "blank name", nc: contact.NewContact{Name: "  ", Email: "jo@example.com", Subject: "Hi", Message: "Hello"}, wantErr: true},
		{name: "invalid email", nc: contact.NewContact{Name: "Jo", Email: "jo", Subject: "Hi", Message: "Hello"}, wantErr: true},
		{name: "no message", nc: contact.NewContact{Name: "Jo", Email: "jo@example.com", Subject: "Hi"}, wantErr: true},
		{name: "ok", nc: contact.NewContact{Name: "Jo", Email: "jo@example.com", Subject: "Hi", Message: "Hello"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.nc.Validate(env.Validate)
			assert.Equal(t, tt.wantErr, err != nil, "error = %v", err)
		})
	}
}

func Test_service(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	c, err := env.ContactSvc.Submit(ctx, contact.NewContact{Name: "Jo", Email: "jo@example.com", Subject: "Pricing", Message: "How much?"})
	require.NoError(t, err)
	assert.Equal(t, contact.StatusNew, c.Status)

	sent := env.Mail.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, env.Conf.AdminEmail, sent[0].To[0].Address)
	assert.Equal(t, "contact_received", sent[0].TemplateName)
	require.NotNil(t, sent[0].ReplyTo, "admins answer the visitor directly")
	assert.Equal(t, "jo@example.com", sent[0].ReplyTo.Address)

	parent := env.CreateUser(t, user.RoleParent)
	_, _, err = env.ContactSvc.Query(ctx, parent, &contact.QueryFilter{}, core.Page{})
	assert.Equal(t, core.ErrForbidden, errors.Cause(err))
	_, err = env.ContactSvc.Resolve(ctx, parent, c.ID)
	assert.Equal(t, core.ErrForbidden, errors.Cause(err))

	admin := env.CreateUser(t, user.RoleAdmin)
	resolved, err := env.ContactSvc.Resolve(ctx, admin, c.ID)
	require.NoError(t, err)
	assert.Equal(t, contact.StatusResolved, resolved.Status)
	require.True(t, resolved.ResolvedAt.Valid)

	again, err := env.ContactSvc.Resolve(ctx, admin, c.ID)
	require.NoError(t, err)
	assert.True(t, resolved.ResolvedAt.Time.Equal(again.ResolvedAt.Time))

	contacts, total, err := env.ContactSvc.Query(ctx, admin, &contact.QueryFilter{Status: contact.StatusNew}, core.Page{})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Empty(t, contacts)

	_, err = env.ContactSvc.Resolve(ctx, admin, "d2b1b5a8-0000-4000-8000-000000000000")
	assert.True(t, core.IsNotFound(err))
}
