package services

import (
	"context"
	"fmt"
	"regexp"

	"golang.org/x/crypto/bcrypt"

	"github.com/adilzhanb/shiftdesk/internal/apperrors"
	"github.com/adilzhanb/shiftdesk/internal/models"
	"github.com/adilzhanb/shiftdesk/pkg/email"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// UserService handles employee account lifecycle and authentication.
// Account mutations run the same workflow as shifts: department-gated
// validation, primary write, audit record, notification fanout.
type UserService struct {
	users   UserStore
	changes ChangeStore
	fanout  *Fanout
}

func NewUserService(users UserStore, changes ChangeStore, fanout *Fanout) *UserService {
	return &UserService{
		users:   users,
		changes: changes,
		fanout:  fanout,
	}
}

// EmployeeRequest carries the fields of a new employee account.
type EmployeeRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
}

// EmployeeUpdate carries a partial account update; nil fields are kept.
type EmployeeUpdate struct {
	Name       *string `json:"name,omitempty"`
	Email      *string `json:"email,omitempty"`
	Department *string `json:"department,omitempty"`
}

func (s *UserService) requireDepartmentAdmin(ctx context.Context, actorID, department string) (*models.User, error) {
	id, err := primitive.ObjectIDFromHex(actorID)
	if err != nil {
		return nil, apperrors.InvalidFormat("invalid actor id")
	}
	actor, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin || actor.Department != department {
		return nil, apperrors.InvalidActor("only an administrator of the same department can manage this account")
	}
	return actor, nil
}

// RegisterEmployee creates an employee account. The actor must administer
// the target department; new accounts are never administrators. The
// generated initial password is returned to the caller and mailed to the
// employee best-effort.
func (s *UserService) RegisterEmployee(ctx context.Context, actorID string, req EmployeeRequest) (*models.User, string, *MutationResult, error) {
	actor, err := s.requireDepartmentAdmin(ctx, actorID, req.Department)
	if err != nil {
		return nil, "", nil, err
	}

	if req.Name == "" || req.Email == "" || req.Department == "" {
		return nil, "", nil, apperrors.InvalidFormat("name, email and department are required")
	}
	if !emailRegex.MatchString(req.Email) {
		return nil, "", nil, apperrors.InvalidFormat("invalid email format")
	}

	existing, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil && apperrors.KindOf(err) != apperrors.KindNotFound {
		return nil, "", nil, fmt.Errorf("failed to check email: %v", err)
	}
	if existing != nil {
		return nil, "", nil, apperrors.AlreadyExists("email already in use")
	}

	password := uuid.NewString()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logrus.WithError(err).Error("Password hashing failed")
		return nil, "", nil, fmt.Errorf("failed to hash password: %v", err)
	}

	user, err := s.users.CreateUser(ctx, &models.User{
		Name:           req.Name,
		Email:          req.Email,
		HashedPassword: string(hashed),
		IsAdmin:        false,
		Department:     req.Department,
	})
	if err != nil {
		return nil, "", nil, fmt.Errorf("failed to register employee: %v", err)
	}

	result := &MutationResult{Message: "Employee account created"}
	s.appendChange(ctx, result, &models.Change{
		Type:      models.ChangePut,
		Entity:    models.EntityUser,
		ActorID:   actor.ID,
		SubjectID: user.ID,
		After:     bson.M{"name": req.Name, "email": req.Email, "department": req.Department},
	})

	admins, err := s.users.GetAdminsByDepartment(ctx, req.Department)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("administrators were not notified: %v", err))
	} else {
		body := fmt.Sprintf("Employee %s (Email: %s) has been added to the %s department by administrator %s",
			user.Name, user.Email, user.Department, actor.Name)
		result.addWarnings(s.fanout.Deliver(ctx, actor.ID, admins, "New employee account", body))
	}

	welcome := fmt.Sprintf("Welcome to the team, %s!\n\nYour account has been created.\nEmail: %s\nTemporary password: %s\n\nPlease change it after your first login.",
		user.Name, user.Email, password)
	if err := email.SendEmail(user.Email, "Your new account", welcome); err != nil {
		logrus.WithError(err).Warn("Failed to send welcome email")
		result.Warnings = append(result.Warnings, "welcome email was not sent")
	}

	if len(result.Warnings) > 0 {
		result.Message = "Employee account created, some notifications failed"
	}
	return user, password, result, nil
}

// UpdateEmployee applies a partial account update, merging unchanged
// fields forward.
func (s *UserService) UpdateEmployee(ctx context.Context, actorID, userID string, req EmployeeUpdate) (*models.User, *MutationResult, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, nil, apperrors.InvalidFormat("invalid user id")
	}
	user, err := s.users.GetUserByID(ctx, uid)
	if err != nil {
		return nil, nil, err
	}

	actor, err := s.requireDepartmentAdmin(ctx, actorID, user.Department)
	if err != nil {
		return nil, nil, err
	}

	before := bson.M{}
	after := bson.M{}
	update := bson.M{}
	if req.Name != nil && *req.Name != user.Name {
		before["name"], after["name"], update["name"] = user.Name, *req.Name, *req.Name
		user.Name = *req.Name
	}
	if req.Email != nil && *req.Email != user.Email {
		if !emailRegex.MatchString(*req.Email) {
			return nil, nil, apperrors.InvalidFormat("invalid email format")
		}
		before["email"], after["email"], update["email"] = user.Email, *req.Email, *req.Email
		user.Email = *req.Email
	}
	if req.Department != nil && *req.Department != user.Department {
		before["department"], after["department"], update["department"] = user.Department, *req.Department, *req.Department
		user.Department = *req.Department
	}
	if len(update) == 0 {
		return user, &MutationResult{Message: "Nothing to update"}, nil
	}

	if err := s.users.UpdateUser(ctx, user.ID, update); err != nil {
		return nil, nil, fmt.Errorf("failed to update employee: %v", err)
	}

	result := &MutationResult{Message: "Employee account updated"}
	s.appendChange(ctx, result, &models.Change{
		Type:      models.ChangePatch,
		Entity:    models.EntityUser,
		ActorID:   actor.ID,
		SubjectID: user.ID,
		Before:    before,
		After:     after,
	})

	body := fmt.Sprintf("Your account details have been updated by administrator %s", actor.Name)
	result.addWarnings(s.fanout.Deliver(ctx, actor.ID, []models.User{*user}, "Account updated", body))

	if len(result.Warnings) > 0 {
		result.Message = "Employee account updated, some notifications failed"
	}
	return user, result, nil
}

// DeleteEmployee removes an employee account and notifies the department's
// administrators.
func (s *UserService) DeleteEmployee(ctx context.Context, actorID, userID string) (*MutationResult, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, apperrors.InvalidFormat("invalid user id")
	}
	user, err := s.users.GetUserByID(ctx, uid)
	if err != nil {
		return nil, err
	}

	actor, err := s.requireDepartmentAdmin(ctx, actorID, user.Department)
	if err != nil {
		return nil, err
	}

	if err := s.users.DeleteUser(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("failed to delete employee: %v", err)
	}

	result := &MutationResult{Message: "Employee account deleted"}
	s.appendChange(ctx, result, &models.Change{
		Type:      models.ChangeDelete,
		Entity:    models.EntityUser,
		ActorID:   actor.ID,
		SubjectID: user.ID,
		Before:    bson.M{"name": user.Name, "email": user.Email, "department": user.Department},
	})

	admins, err := s.users.GetAdminsByDepartment(ctx, user.Department)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("administrators were not notified: %v", err))
	} else {
		body := fmt.Sprintf("Employee %s (Email: %s) has been removed from the %s department by administrator %s",
			user.Name, user.Email, user.Department, actor.Name)
		result.addWarnings(s.fanout.Deliver(ctx, actor.ID, admins, "Employee account deleted", body))
	}

	if len(result.Warnings) > 0 {
		result.Message = "Employee account deleted, some notifications failed"
	}
	return result, nil
}

// AuthenticateUser verifies the email and password and returns the user if
// the credentials are valid.
func (s *UserService) AuthenticateUser(ctx context.Context, userEmail, password string) (*models.User, error) {
	logrus.WithField("email", userEmail).Info("Authenticating user")

	user, err := s.users.GetUserByEmail(ctx, userEmail)
	if err != nil {
		logrus.WithField("email", userEmail).Warn("User not found")
		return nil, fmt.Errorf("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		logrus.WithField("email", userEmail).Warn("Invalid credentials")
		return nil, fmt.Errorf("invalid credentials")
	}

	logrus.WithField("userID", user.ID.Hex()).Info("User authenticated successfully")
	return user, nil
}

// GetUser returns a user profile; admins may read anyone, others only
// themselves.
func (s *UserService) GetUser(ctx context.Context, actorID, userID string) (*models.User, error) {
	actor, err := s.requireUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actorID != userID && !actor.IsAdmin {
		return nil, apperrors.InvalidActor("you can only access your own profile")
	}
	if actorID == userID {
		return actor, nil
	}

	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, apperrors.InvalidFormat("invalid user id")
	}
	return s.users.GetUserByID(ctx, uid)
}

// RegisterDeviceToken records an FCM device token for push delivery.
func (s *UserService) RegisterDeviceToken(ctx context.Context, actorID, token string) error {
	if token == "" {
		return apperrors.InvalidFormat("device token is required")
	}
	actor, err := s.requireUser(ctx, actorID)
	if err != nil {
		return err
	}
	return s.users.AddDeviceToken(ctx, actor.ID, token)
}

// RemoveDeviceToken drops a device token, e.g. on logout.
func (s *UserService) RemoveDeviceToken(ctx context.Context, actorID, token string) error {
	if token == "" {
		return apperrors.InvalidFormat("device token is required")
	}
	actor, err := s.requireUser(ctx, actorID)
	if err != nil {
		return err
	}
	return s.users.RemoveDeviceToken(ctx, actor.ID, token)
}

// GetChangeHistory returns the audit trail for one subject, newest first.
// Admin only; the changes collection is append-only and never edited here.
func (s *UserService) GetChangeHistory(ctx context.Context, actorID, subjectID string) ([]models.Change, error) {
	actor, err := s.requireUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin {
		return nil, apperrors.InvalidActor("only administrators can read change history")
	}
	sid, err := primitive.ObjectIDFromHex(subjectID)
	if err != nil {
		return nil, apperrors.InvalidFormat("invalid subject id")
	}
	return s.changes.GetChangesBySubject(ctx, sid)
}

func (s *UserService) requireUser(ctx context.Context, actorID string) (*models.User, error) {
	id, err := primitive.ObjectIDFromHex(actorID)
	if err != nil {
		return nil, apperrors.InvalidFormat("invalid actor id")
	}
	return s.users.GetUserByID(ctx, id)
}

func (s *UserService) appendChange(ctx context.Context, result *MutationResult, change *models.Change) {
	if err := s.changes.AppendChange(ctx, change); err != nil {
		logrus.WithError(err).Warn("Failed to append change record")
		result.Warnings = append(result.Warnings, fmt.Sprintf("change record was not stored: %v", err))
	}
}
