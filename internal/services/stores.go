package services

import (
	"context"

	"github.com/adilzhanb/shiftdesk/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store interfaces are the collaborator boundary between the workflow and
// the document store. The repository package satisfies all of them; tests
// use in-memory fakes.

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetAdmins(ctx context.Context) ([]models.User, error)
	GetAdminsByDepartment(ctx context.Context, department string) ([]models.User, error)
	GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	UpdateUser(ctx context.Context, id primitive.ObjectID, update bson.M) error
	DeleteUser(ctx context.Context, id primitive.ObjectID) error
	AddDeviceToken(ctx context.Context, userID primitive.ObjectID, token string) error
	RemoveDeviceToken(ctx context.Context, userID primitive.ObjectID, token string) error
}

type ShiftStore interface {
	CreateShift(ctx context.Context, shift *models.Shift) (*models.Shift, error)
	GetShiftByID(ctx context.Context, id primitive.ObjectID) (*models.Shift, error)
	ReplaceShift(ctx context.Context, id primitive.ObjectID, shift *models.Shift) error
	DeleteShift(ctx context.Context, id primitive.ObjectID) error
	ListShifts(ctx context.Context) ([]models.Shift, error)
	ListShiftsByEmployee(ctx context.Context, employeeID primitive.ObjectID) ([]models.Shift, error)
}

type GroupStore interface {
	CreateGroup(ctx context.Context, group *models.Group) (*models.Group, error)
	GetGroupByID(ctx context.Context, id primitive.ObjectID) (*models.Group, error)
	UpdateGroupInfo(ctx context.Context, id primitive.ObjectID, name, description string) error
	AddMember(ctx context.Context, groupID, userID primitive.ObjectID) error
	RemoveMember(ctx context.Context, groupID, userID primitive.ObjectID) error
	DeleteGroup(ctx context.Context, id primitive.ObjectID) error
}

type MessageStore interface {
	InsertMessage(ctx context.Context, msg *models.Message) (*models.Message, error)
	GetThreadMessages(ctx context.Context, threadID string) ([]models.Message, error)
	GetGroupMessages(ctx context.Context, groupID primitive.ObjectID) ([]models.Message, error)
}

type ChangeStore interface {
	AppendChange(ctx context.Context, change *models.Change) error
	GetChangesBySubject(ctx context.Context, subjectID primitive.ObjectID) ([]models.Change, error)
}

type NotificationStore interface {
	CreateNotification(ctx context.Context, notif *models.Notification) error
	GetUserNotifications(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error)
	MarkAsRead(ctx context.Context, id, userID primitive.ObjectID) error
	DeleteNotification(ctx context.Context, id, userID primitive.ObjectID) error
	DeleteExpiredNotifications(ctx context.Context) error
}
