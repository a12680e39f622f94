package review_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorly/tutorly/core"
	"github.com/tutorly/tutorly/core/contract"
	"github.com/tutorly/tutorly/core/review"
	"github.com/tutorly/tutorly/core/user"
	testutil "github.com/tutorly/tutorly/tests"
)

func Test_service_CreateAndDelete(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	parent1, tchr, c1 := env.CreateContract(t)

	// a second contract with the same teacher
	parent2 := env.CreateUser(t, user.RoleParent)
	app := env.Apply(t, tchr, env.CreateJob(t, parent2))
	c2, err := env.ApplicationSvc.Accept(ctx, parent2, app.ID, contract.Terms{StartDate: time.Now().UTC()})
	require.NoError(t, err)

	_, err = env.ReviewSvc.Create(ctx, tchr, c1.ID, review.NewReview{Rating: 5})
	assert.Equal(t, core.ErrForbidden, errors.Cause(err), "the teacher cannot review itself")

	_, err = env.ReviewSvc.Create(ctx, parent2, c1.ID, review.NewReview{Rating: 5})
	assert.Equal(t, core.ErrForbidden, errors.Cause(err))

	r1, err := env.ReviewSvc.Create(ctx, parent1, c1.ID, review.NewReview{Rating: 5, Comment: "Great"})
	require.NoError(t, err)
	assert.Equal(t, c1.TeacherID, r1.TeacherID)

	_, err = env.ReviewSvc.Create(ctx, parent1, c1.ID, review.NewReview{Rating: 1})
	vErr := testutil.ValidationErr(err)
	require.NotNil(t, vErr, "error = %v", err)
	assert.Equal(t, review.ErrAlreadyReviewed, vErr.Err)

	_, err = env.ReviewSvc.Create(ctx, parent2, c2.ID, review.NewReview{Rating: 2})
	require.NoError(t, err)

	tchrProfile, err := env.TeacherSvc.Get(ctx, c1.TeacherID)
	require.NoError(t, err)
	assert.Equal(t, 2, tchrProfile.TotalReviews)
	assert.InDelta(t, 3.5, tchrProfile.AverageRating, 0.001)

	reviews, total, err := env.ReviewSvc.ListForTeacher(ctx, c1.TeacherID, core.Page{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, reviews, 2)

	err = env.ReviewSvc.Delete(ctx, parent1, r1.ID)
	assert.Equal(t, core.ErrForbidden, errors.Cause(err))

	admin := env.CreateUser(t, user.RoleAdmin)
	require.NoError(t, env.ReviewSvc.Delete(ctx, admin, r1.ID))
	assert.True(t, core.IsNotFound(env.ReviewSvc.Delete(ctx, admin, r1.ID)))

	tchrProfile, err = env.TeacherSvc.Get(ctx, c1.TeacherID)
	require.NoError(t, err)
	assert.Equal(t, 1, tchrProfile.TotalReviews)
	assert.InDelta(t, 2.0, tchrProfile.AverageRating, 0.001)
}

func Test_service_Create_cancelledContract(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	parent, _, c := env.CreateContract(t)
	_, err := env.ContractSvc.Cancel(ctx, parent, c.ID)
	require.NoError(t, err)

	_, err = env.ReviewSvc.Create(ctx, parent, c.ID, review.NewReview{Rating: 4})
	vErr := testutil.ValidationErr(err)
	require.NotNil(t, vErr, "error = %v", err)
	assert.Equal(t, review.ErrContractCancelled, vErr.Err)
}
