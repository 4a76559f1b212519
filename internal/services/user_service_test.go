package services_test

import (
	"context"
	"strings"
	"testing"

	"github.com/adilzhanb/shiftdesk/internal/apperrors"
	"github.com/adilzhanb/shiftdesk/internal/models"
	"github.com/adilzhanb/shiftdesk/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type userFixture struct {
	service       *services.UserService
	users         *fakeUserStore
	changes       *fakeChangeStore
	notifications *fakeNotificationStore

	engAdmin   models.User
	salesAdmin models.User
	employee   models.User
}

func newUserFixture() *userFixture {
	f := &userFixture{
		changes:       &fakeChangeStore{},
		notifications: &fakeNotificationStore{},
	}
	f.engAdmin = models.User{
		ID: primitive.NewObjectID(), Name: "Erlan", Email: "erlan@corp.kz",
		IsAdmin: true, Department: "engineering",
	}
	f.salesAdmin = models.User{
		ID: primitive.NewObjectID(), Name: "Saltanat", Email: "saltanat@corp.kz",
		IsAdmin: true, Department: "sales",
	}
	f.employee = models.User{
		ID: primitive.NewObjectID(), Name: "Dana", Email: "dana@corp.kz",
		Department: "engineering",
	}
	f.users = newFakeUserStore(&f.engAdmin, &f.salesAdmin, &f.employee)

	fanout := services.NewFanout(f.notifications, &fakeSender{}, false)
	f.service = services.NewUserService(f.users, f.changes, fanout)
	return f
}

func TestRegisterEmployee(t *testing.T) {
	f := newUserFixture()

	user, password, result, err := f.service.RegisterEmployee(context.Background(), f.engAdmin.ID.Hex(), services.EmployeeRequest{
		Name:       "Nurlan",
		Email:      "nurlan@corp.kz",
		Department: "engineering",
	})
	require.NoError(t, err)
	require.NotNil(t, user)

	assert.True(t, strings.HasPrefix(result.Message, "Employee account created"))
	assert.False(t, user.IsAdmin, "new accounts are never administrators")
	assert.Equal(t, "engineering", user.Department)
	assert.NotEmpty(t, password)

	// Initial password is stored hashed, never in the clear.
	stored, err := f.users.GetUserByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, password, stored.HashedPassword)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.HashedPassword), []byte(password)))

	require.Len(t, f.changes.changes, 1)
	assert.Equal(t, models.ChangePut, f.changes.changes[0].Type)
	assert.Equal(t, models.EntityUser, f.changes.changes[0].Entity)
}

func TestRegisterEmployeeWrongDepartment(t *testing.T) {
	f := newUserFixture()

	_, _, _, err := f.service.RegisterEmployee(context.Background(), f.salesAdmin.ID.Hex(), services.EmployeeRequest{
		Name:       "Nurlan",
		Email:      "nurlan@corp.kz",
		Department: "engineering",
	})
	assert.True(t, apperrors.Is(err, apperrors.KindInvalidActor))

	_, getErr := f.users.GetUserByEmail(context.Background(), "nurlan@corp.kz")
	assert.True(t, apperrors.Is(getErr, apperrors.KindNotFound), "no account may be created")
	assert.Empty(t, f.changes.changes)
}

func TestRegisterEmployeeNonAdmin(t *testing.T) {
	f := newUserFixture()

	_, _, _, err := f.service.RegisterEmployee(context.Background(), f.employee.ID.Hex(), services.EmployeeRequest{
		Name:       "Nurlan",
		Email:      "nurlan@corp.kz",
		Department: "engineering",
	})
	assert.True(t, apperrors.Is(err, apperrors.KindInvalidActor))
}

func TestRegisterEmployeeDuplicateEmail(t *testing.T) {
	f := newUserFixture()

	_, _, _, err := f.service.RegisterEmployee(context.Background(), f.engAdmin.ID.Hex(), services.EmployeeRequest{
		Name:       "Dana Again",
		Email:      f.employee.Email,
		Department: "engineering",
	})
	assert.True(t, apperrors.Is(err, apperrors.KindAlreadyExists))
}

func TestRegisterEmployeeBadEmail(t *testing.T) {
	f := newUserFixture()

	_, _, _, err := f.service.RegisterEmployee(context.Background(), f.engAdmin.ID.Hex(), services.EmployeeRequest{
		Name:       "Nurlan",
		Email:      "not-an-email",
		Department: "engineering",
	})
	assert.True(t, apperrors.Is(err, apperrors.KindInvalidFormat))
}

func TestUpdateEmployee(t *testing.T) {
	f := newUserFixture()

	newName := "Dana Khasenova"
	user, result, err := f.service.UpdateEmployee(context.Background(), f.engAdmin.ID.Hex(), f.employee.ID.Hex(), services.EmployeeUpdate{
		Name: &newName,
	})
	require.NoError(t, err)
	assert.Equal(t, "Employee account updated", result.Message)
	assert.Equal(t, "Dana Khasenova", user.Name)
	// Unset fields merge forward.
	assert.Equal(t, f.employee.Email, user.Email)

	require.Len(t, f.changes.changes, 1)
	assert.Equal(t, "Dana", f.changes.changes[0].Before["name"])
	assert.Equal(t, "Dana Khasenova", f.changes.changes[0].After["name"])
}

func TestUpdateEmployeeNoChanges(t *testing.T) {
	f := newUserFixture()

	sameName := f.employee.Name
	_, result, err := f.service.UpdateEmployee(context.Background(), f.engAdmin.ID.Hex(), f.employee.ID.Hex(), services.EmployeeUpdate{
		Name: &sameName,
	})
	require.NoError(t, err)
	assert.Equal(t, "Nothing to update", result.Message)
	assert.Empty(t, f.changes.changes, "a no-op update leaves no audit record")
	assert.Empty(t, f.notifications.notifications)
}

func TestDeleteEmployee(t *testing.T) {
	f := newUserFixture()

	result, err := f.service.DeleteEmployee(context.Background(), f.engAdmin.ID.Hex(), f.employee.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Employee account deleted", result.Message)

	_, err = f.users.GetUserByID(context.Background(), f.employee.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	require.Len(t, f.changes.changes, 1)
	assert.Equal(t, models.ChangeDelete, f.changes.changes[0].Type)
	assert.Equal(t, f.employee.ID, f.changes.changes[0].SubjectID)
}

func TestDeleteEmployeeWrongDepartment(t *testing.T) {
	f := newUserFixture()

	_, err := f.service.DeleteEmployee(context.Background(), f.salesAdmin.ID.Hex(), f.employee.ID.Hex())
	assert.True(t, apperrors.Is(err, apperrors.KindInvalidActor))

	_, err = f.users.GetUserByID(context.Background(), f.employee.ID)
	assert.NoError(t, err, "account must survive the rejected delete")
}

func TestAuthenticateUser(t *testing.T) {
	f := newUserFixture()

	hashed, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	login := models.User{
		ID: primitive.NewObjectID(), Name: "Login", Email: "login@corp.kz",
		HashedPassword: string(hashed),
	}
	f.users.users[login.ID] = &login

	user, err := f.service.AuthenticateUser(context.Background(), "login@corp.kz", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, login.ID, user.ID)

	_, err = f.service.AuthenticateUser(context.Background(), "login@corp.kz", "wrong")
	assert.Error(t, err)
	_, err = f.service.AuthenticateUser(context.Background(), "nobody@corp.kz", "s3cret")
	assert.Error(t, err)
}

func TestGetUserAccessControl(t *testing.T) {
	f := newUserFixture()

	// Self access is always fine.
	self, err := f.service.GetUser(context.Background(), f.employee.ID.Hex(), f.employee.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, f.employee.ID, self.ID)

	// Admins may read anyone.
	other, err := f.service.GetUser(context.Background(), f.engAdmin.ID.Hex(), f.employee.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, f.employee.ID, other.ID)

	// Non-admins may not read other profiles.
	_, err = f.service.GetUser(context.Background(), f.employee.ID.Hex(), f.engAdmin.ID.Hex())
	assert.True(t, apperrors.Is(err, apperrors.KindInvalidActor))
}

func TestGetChangeHistory(t *testing.T) {
	f := newUserFixture()

	newName := "Dana Khasenova"
	_, _, err := f.service.UpdateEmployee(context.Background(), f.engAdmin.ID.Hex(), f.employee.ID.Hex(), services.EmployeeUpdate{
		Name: &newName,
	})
	require.NoError(t, err)

	history, err := f.service.GetChangeHistory(context.Background(), f.engAdmin.ID.Hex(), f.employee.ID.Hex())
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.ChangePatch, history[0].Type)

	_, err = f.service.GetChangeHistory(context.Background(), f.employee.ID.Hex(), f.employee.ID.Hex())
	assert.True(t, apperrors.Is(err, apperrors.KindInvalidActor))
}

func TestDeviceTokens(t *testing.T) {
	f := newUserFixture()

	require.NoError(t, f.service.RegisterDeviceToken(context.Background(), f.employee.ID.Hex(), "tok-1"))
	require.NoError(t, f.service.RegisterDeviceToken(context.Background(), f.employee.ID.Hex(), "tok-1"))
	require.NoError(t, f.service.RegisterDeviceToken(context.Background(), f.employee.ID.Hex(), "tok-2"))

	stored, err := f.users.GetUserByID(context.Background(), f.employee.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"tok-1", "tok-2"}, stored.Tokens)

	require.NoError(t, f.service.RemoveDeviceToken(context.Background(), f.employee.ID.Hex(), "tok-1"))
	stored, err = f.users.GetUserByID(context.Background(), f.employee.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"tok-2"}, stored.Tokens)

	err = f.service.RegisterDeviceToken(context.Background(), f.employee.ID.Hex(), "")
	assert.True(t, apperrors.Is(err, apperrors.KindInvalidFormat))
}
