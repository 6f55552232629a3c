package forms

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userForm struct {
	Name            string `validate:"required"`
	Email           string `validate:"required,email"`
	Password        string `validate:"required,min=8"`
	PasswordConfirm string `validate:"required,eqfield=Password"`
}

func TestCheckReportsPerFieldMessages(t *testing.T) {
	v := NewValidator()
	fieldErrors := v.Check(userForm{
		Email:           "not-an-email",
		Password:        "secretpass",
		PasswordConfirm: "different",
	})
	assert.Equal(t, "This field is required", fieldErrors["Name"])
	assert.Equal(t, "Enter a valid email address", fieldErrors["Email"])
	assert.Equal(t, "Does not match password", fieldErrors["PasswordConfirm"])
}

func TestSubmitSkipsNetworkCallWhenInvalid(t *testing.T) {
	v := NewValidator()
	called := false
	_, fieldErrors, err := Submit(context.Background(), v, userForm{}, func(ctx context.Context) (int, error) {
		called = true
		return 0, nil
	})
	require.NoError(t, err)
	assert.NotEmpty(t, fieldErrors)
	assert.False(t, called, "validation failure must not reach the network")
}

func TestSubmitSurfacesRemoteFailure(t *testing.T) {
	v := NewValidator()
	form := userForm{Name: "Budi", Email: "budi@example.com", Password: "secretpass", PasswordConfirm: "secretpass"}
	remoteErr := errors.New("backend rejected")
	_, fieldErrors, err := Submit(context.Background(), v, form, func(ctx context.Context) (int, error) {
		return 0, remoteErr
	})
	assert.ErrorIs(t, err, remoteErr)
	assert.Empty(t, fieldErrors)
}

func TestSubmitReturnsCreatedRecord(t *testing.T) {
	v := NewValidator()
	form := userForm{Name: "Budi", Email: "budi@example.com", Password: "secretpass", PasswordConfirm: "secretpass"}
	record, fieldErrors, err := Submit(context.Background(), v, form, func(ctx context.Context) (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Empty(t, fieldErrors)
	assert.Equal(t, 42, record)
}
