package payment_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorly/tutorly/core"
	"github.com/tutorly/tutorly/core/class"
	"github.com/tutorly/tutorly/core/payment"
	"github.com/tutorly/tutorly/core/user"
	testutil "github.com/tutorly/tutorly/tests"
)

func Test_service_Create(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	parent, tchr, c := env.CreateContract(t)
	_, _, otherContract := env.CreateContract(t)

	cls, err := env.ClassSvc.Schedule(ctx, tchr, c.ID, class.NewClass{ScheduledAt: time.Now().Add(24 * time.Hour), DurationMinutes: 60, Online: true})
	require.NoError(t, err)
	assert.NotEmpty(t, cls.MeetingURL)

	tests := []struct {
		name       string
		actor      user.User
		contractID string
		np         payment.NewPayment
		forbidden  bool
		wantErr    error
	}{
		{name: "teacher", actor: tchr, contractID: c.ID, np: payment.NewPayment{Amount: 40, Currency: "USD"}, forbidden: true},
		{name: "not a party", actor: parent, contractID: otherContract.ID, np: payment.NewPayment{Amount: 40, Currency: "USD"}, forbidden: true},
		{name: "class of another contract", actor: parent, contractID: c.ID, np: payment.NewPayment{Amount: 40, Currency: "USD", ClassID: otherContract.ID}, wantErr: payment.ErrClassNotInContract},
		{name: "pending", actor: parent, contractID: c.ID, np: payment.NewPayment{Amount: 40, Currency: "USD", ClassID: cls.ID}},
		{name: "without class", actor: parent, contractID: c.ID, np: payment.NewPayment{Amount: 25, Currency: "CDF", Method: "mobile money"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := env.PaymentSvc.Create(ctx, tt.actor, tt.contractID, tt.np)
			switch {
			case tt.forbidden:
				assert.Equal(t, core.ErrForbidden, errors.Cause(err))
			case tt.wantErr != nil:
				vErr := testutil.ValidationErr(err)
				require.NotNil(t, vErr, "error = %v", err)
				assert.Equal(t, tt.wantErr, vErr.Err)
			default:
				require.NoError(t, err)
				assert.Equal(t, payment.StatusPending, p.Status)
				assert.Equal(t, c.ParentID, p.ParentID)
				assert.Equal(t, c.TeacherID, p.TeacherID)
				assert.False(t, p.PaidAt.Valid, "paid_at is only set on completion")
				assert.Equal(t, tt.np.ClassID, p.ClassID.String)

				got, err := env.PaymentSvc.Get(ctx, tchr, p.ID)
				require.NoError(t, err)
				assert.Equal(t, p.ID, got.ID)
			}
		})
	}

	_, total, err := env.PaymentSvc.ListForContract(ctx, tchr, c.ID, &payment.QueryFilter{}, core.Page{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func Test_service_Create_clientPaidAt(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	parent, _, c := env.CreateContract(t)

	var np payment.NewPayment
	body := `{"amount": 40, "currency": "usd", "paid_at": "2030-03-01T10:00:00Z"}`
	require.NoError(t, json.Unmarshal([]byte(body), &np))
	require.NoError(t, np.Validate(env.Validate))

	p, err := env.PaymentSvc.Create(ctx, parent, c.ID, np)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusPending, p.Status)
	assert.False(t, p.PaidAt.Valid, "a pending payment cannot claim to be paid")

	p, err = env.PaymentSvc.UpdateStatus(ctx, parent, p.ID, payment.StatusCompleted)
	require.NoError(t, err)
	require.True(t, p.PaidAt.Valid)
	assert.NotEqual(t, 2030, p.PaidAt.Time.Year())
}

func Test_service_UpdateStatus(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	parent, tchr, c := env.CreateContract(t)
	admin := env.CreateUser(t, user.RoleAdmin)

	p, err := env.PaymentSvc.Create(ctx, parent, c.ID, payment.NewPayment{Amount: 40, Currency: "USD"})
	require.NoError(t, err)
	require.False(t, p.PaidAt.Valid)

	steps := []struct {
		name       string
		actor      user.User
		status     string
		forbidden  bool
		invalid    bool
		wantPaidAt bool
	}{
		{name: "teacher cannot update", actor: tchr, status: payment.StatusCompleted, forbidden: true},
		{name: "pending to refunded", actor: parent, status: payment.StatusRefunded, invalid: true},
		{name: "pending to failed", actor: parent, status: payment.StatusFailed},
		{name: "failed to pending", actor: parent, status: payment.StatusPending},
		{name: "pending to completed sets paid_at", actor: parent, status: payment.StatusCompleted, wantPaidAt: true},
		{name: "completed to failed", actor: parent, status: payment.StatusFailed, invalid: true},
		{name: "refund by parent", actor: parent, status: payment.StatusRefunded, forbidden: true},
		{name: "refund by admin keeps paid_at", actor: admin, status: payment.StatusRefunded, wantPaidAt: true},
		{name: "refunded is final", actor: admin, status: payment.StatusPending, invalid: true},
	}

	var paidAt time.Time
	for _, tt := range steps {
		t.Run(tt.name, func(t *testing.T) {
			p, err := env.PaymentSvc.UpdateStatus(ctx, tt.actor, p.ID, tt.status)
			switch {
			case tt.forbidden:
				assert.Equal(t, core.ErrForbidden, errors.Cause(err))
			case tt.invalid:
				vErr := testutil.ValidationErr(err)
				require.NotNil(t, vErr, "error = %v", err)
				assert.Equal(t, payment.ErrInvalidTransition, vErr.Err)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.status, p.Status)
				assert.Equal(t, tt.wantPaidAt, p.PaidAt.Valid)
				if p.PaidAt.Valid {
					if paidAt.IsZero() {
						paidAt = p.PaidAt.Time
					}
					assert.True(t, paidAt.Equal(p.PaidAt.Time), "paid_at is only set once")
				}
			}
		})
	}
}
