package services

import (
	"context"
	"fmt"

	"github.com/adilzhanb/shiftdesk/internal/apperrors"
	"github.com/adilzhanb/shiftdesk/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ShiftService runs the mutation-fanout workflow for shifts: validate every
// reference and field before any write, apply the primary mutation, then
// append the audit record and fan out notifications best-effort.
type ShiftService struct {
	shifts  ShiftStore
	users   UserStore
	changes ChangeStore
	fanout  *Fanout
}

func NewShiftService(shifts ShiftStore, users UserStore, changes ChangeStore, fanout *Fanout) *ShiftService {
	return &ShiftService{
		shifts:  shifts,
		users:   users,
		changes: changes,
		fanout:  fanout,
	}
}

// ShiftRequest carries the fields of a shift mutation or request.
type ShiftRequest struct {
	EmployeeID string `json:"employee"`
	Date       string `json:"date"`
	Time       string `json:"time"`
}

func (r ShiftRequest) validate() error {
	if !ValidDate(r.Date) {
		return apperrors.InvalidFormat("shift date must be a valid YYYY-MM-DD date")
	}
	if !ValidShiftTime(r.Time) {
		return apperrors.InvalidFormat("shift time must be morning or evening")
	}
	return nil
}

func (s *ShiftService) requireAdmin(ctx context.Context, actorID string) (*models.User, error) {
	id, err := primitive.ObjectIDFromHex(actorID)
	if err != nil {
		return nil, apperrors.InvalidFormat("invalid actor id")
	}
	actor, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin {
		return nil, apperrors.InvalidActor("only administrators can manage shifts")
	}
	return actor, nil
}

func (s *ShiftService) requireUser(ctx context.Context, actorID string) (*models.User, error) {
	id, err := primitive.ObjectIDFromHex(actorID)
	if err != nil {
		return nil, apperrors.InvalidFormat("invalid actor id")
	}
	return s.users.GetUserByID(ctx, id)
}

// AddShift creates a shift for an employee and notifies all administrators
// plus the employee.
func (s *ShiftService) AddShift(ctx context.Context, actorID string, req ShiftRequest) (*models.Shift, *MutationResult, error) {
	admin, err := s.requireAdmin(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}

	employeeID, err := primitive.ObjectIDFromHex(req.EmployeeID)
	if err != nil {
		return nil, nil, apperrors.InvalidFormat("invalid employee id")
	}
	employee, err := s.users.GetUserByID(ctx, employeeID)
	if err != nil {
		return nil, nil, err
	}
	if err := req.validate(); err != nil {
		return nil, nil, err
	}

	shift, err := s.shifts.CreateShift(ctx, &models.Shift{
		EmployeeID: employee.ID,
		Date:       req.Date,
		Time:       req.Time,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to add shift: %v", err)
	}

	result := &MutationResult{Message: "Shift added"}
	s.appendChange(ctx, result, &models.Change{
		Type:      models.ChangePut,
		Entity:    models.EntityShift,
		ActorID:   admin.ID,
		SubjectID: employee.ID,
		After:     bson.M{"date": req.Date, "time": req.Time, "employee_id": employee.ID},
	})

	adminBody := fmt.Sprintf(
		"Employee %s (Name: %s, Email: %s) has had %s shift added at %s by administrator %s",
		employee.ID.Hex(), employee.Name, employee.Email,
		shiftPhrase(req.Time), displayDate(req.Date), admin.Name)
	s.notifyAdmins(ctx, result, admin.ID, "Shift addition", adminBody)

	employeeBody := fmt.Sprintf(
		"You've been added to %s shift by an administrator on %s.",
		shiftPhrase(req.Time), displayDate(req.Date))
	result.addWarnings(s.fanout.Deliver(ctx, admin.ID, []models.User{*employee}, "Shift addition", employeeBody))

	if len(result.Warnings) > 0 {
		result.Message = "Shift added, some notifications failed"
	}
	return shift, result, nil
}

// UpdateShift reschedules an existing shift. The employee cannot be
// changed; the whole document is rewritten with previous values merged
// forward so a partial payload can never blank fields.
func (s *ShiftService) UpdateShift(ctx context.Context, actorID, shiftID string, req ShiftRequest) (*models.Shift, *MutationResult, error) {
	admin, err := s.requireAdmin(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}

	id, err := primitive.ObjectIDFromHex(shiftID)
	if err != nil {
		return nil, nil, apperrors.InvalidFormat("invalid shift id")
	}
	oldShift, err := s.shifts.GetShiftByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	employeeID, err := primitive.ObjectIDFromHex(req.EmployeeID)
	if err != nil {
		return nil, nil, apperrors.InvalidFormat("invalid employee id")
	}
	employee, err := s.users.GetUserByID(ctx, employeeID)
	if err != nil {
		return nil, nil, err
	}
	if employee.ID != oldShift.EmployeeID {
		return nil, nil, apperrors.InvalidFormat("shift employee cannot be changed")
	}
	if err := req.validate(); err != nil {
		return nil, nil, err
	}

	updated := &models.Shift{
		ID:         oldShift.ID,
		EmployeeID: oldShift.EmployeeID,
		Date:       req.Date,
		Time:       req.Time,
		CreatedAt:  oldShift.CreatedAt,
	}
	if err := s.shifts.ReplaceShift(ctx, oldShift.ID, updated); err != nil {
		return nil, nil, fmt.Errorf("failed to update shift: %v", err)
	}

	result := &MutationResult{Message: "Shift rescheduled"}
	s.appendChange(ctx, result, &models.Change{
		Type:      models.ChangePatch,
		Entity:    models.EntityShift,
		ActorID:   admin.ID,
		SubjectID: employee.ID,
		Before:    bson.M{"date": oldShift.Date, "time": oldShift.Time},
		After:     bson.M{"date": req.Date, "time": req.Time},
	})

	adminBody := fmt.Sprintf(
		"Employee %s (Name: %s, Email: %s) has had %s shift at %s rescheduled to %s shift by administrator %s",
		employee.ID.Hex(), employee.Name, employee.Email,
		shiftPhrase(oldShift.Time), displayDate(oldShift.Date), shiftPhrase(req.Time), admin.Name)
	s.notifyAdmins(ctx, result, admin.ID, "Shift rescheduling", adminBody)

	employeeBody := fmt.Sprintf(
		"Your %s shift on %s has been rescheduled to %s shift on %s by an administrator.",
		oldShift.Time, displayDate(oldShift.Date), shiftPhrase(req.Time), displayDate(req.Date))
	result.addWarnings(s.fanout.Deliver(ctx, admin.ID, []models.User{*employee}, "Shift rescheduling", employeeBody))

	if len(result.Warnings) > 0 {
		result.Message = "Shift rescheduled, some notifications failed"
	}
	return updated, result, nil
}

// DeleteShift removes a shift and notifies all administrators plus the
// employee. The before-state is captured before the delete so the audit
// record and notification text can reference it.
func (s *ShiftService) DeleteShift(ctx context.Context, actorID, shiftID string) (*MutationResult, error) {
	admin, err := s.requireAdmin(ctx, actorID)
	if err != nil {
		return nil, err
	}

	id, err := primitive.ObjectIDFromHex(shiftID)
	if err != nil {
		return nil, apperrors.InvalidFormat("invalid shift id")
	}
	shift, err := s.shifts.GetShiftByID(ctx, id)
	if err != nil {
		return nil, err
	}
	employee, err := s.users.GetUserByID(ctx, shift.EmployeeID)
	if err != nil {
		return nil, apperrors.NotFound("employee of shift does not exist")
	}

	if err := s.shifts.DeleteShift(ctx, shift.ID); err != nil {
		return nil, fmt.Errorf("failed to delete shift: %v", err)
	}

	result := &MutationResult{Message: "Shift deleted"}
	s.appendChange(ctx, result, &models.Change{
		Type:      models.ChangeDelete,
		Entity:    models.EntityShift,
		ActorID:   admin.ID,
		SubjectID: employee.ID,
		Before:    bson.M{"date": shift.Date, "time": shift.Time, "employee_id": employee.ID},
	})

	adminBody := fmt.Sprintf(
		"Shift of employee %s (Name: %s, Email: %s) at %s in the %s has been deleted by administrator %s",
		employee.ID.Hex(), employee.Name, employee.Email,
		displayDate(shift.Date), shift.Time, admin.Name)
	s.notifyAdmins(ctx, result, admin.ID, "Shift deletion", adminBody)

	employeeBody := fmt.Sprintf(
		"Your shift in the %s at %s has been deleted by an administrator. Enjoy one less shift of work!",
		shift.Time, displayDate(shift.Date))
	result.addWarnings(s.fanout.Deliver(ctx, admin.ID, []models.User{*employee}, "Shift deletion", employeeBody))

	if len(result.Warnings) > 0 {
		result.Message = "Shift deleted, some notifications failed"
	}
	return result, nil
}

// RequestAddShift lets an employee ask administrators for a new shift.
// Nothing is mutated; only the admins are notified.
func (s *ShiftService) RequestAddShift(ctx context.Context, actorID string, req ShiftRequest) (*MutationResult, error) {
	employee, err := s.requireUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := req.validate(); err != nil {
		return nil, err
	}

	result := &MutationResult{Message: "Shift request sent"}
	body := fmt.Sprintf(
		"Employee %s (Name: %s, Email: %s) has requested a new %s shift on %s",
		employee.ID.Hex(), employee.Name, employee.Email, req.Time, displayDate(req.Date))
	s.notifyAdmins(ctx, result, employee.ID, "Shift addition request", body)
	return result, nil
}

// RequestUpdateShift lets the shift's employee ask for a reschedule.
func (s *ShiftService) RequestUpdateShift(ctx context.Context, actorID, shiftID string, req ShiftRequest) (*MutationResult, error) {
	employee, err := s.requireUser(ctx, actorID)
	if err != nil {
		return nil, err
	}

	id, err := primitive.ObjectIDFromHex(shiftID)
	if err != nil {
		return nil, apperrors.InvalidFormat("invalid shift id")
	}
	shift, err := s.shifts.GetShiftByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if shift.EmployeeID != employee.ID {
		return nil, apperrors.InvalidActor("only the shift employee can request changes")
	}
	if err := req.validate(); err != nil {
		return nil, err
	}

	result := &MutationResult{Message: "Shift request sent"}
	body := fmt.Sprintf(
		"Employee %s (Name: %s, Email: %s) has requested to have their %s shift on %s rescheduled to be in the %s on %s",
		employee.ID.Hex(), employee.Name, employee.Email,
		shift.Time, displayDate(shift.Date), req.Time, displayDate(req.Date))
	s.notifyAdmins(ctx, result, employee.ID, "Shift reschedule request", body)
	return result, nil
}

// RequestDeleteShift lets the shift's employee ask for a deletion.
func (s *ShiftService) RequestDeleteShift(ctx context.Context, actorID, shiftID string) (*MutationResult, error) {
	employee, err := s.requireUser(ctx, actorID)
	if err != nil {
		return nil, err
	}

	id, err := primitive.ObjectIDFromHex(shiftID)
	if err != nil {
		return nil, apperrors.InvalidFormat("invalid shift id")
	}
	shift, err := s.shifts.GetShiftByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if shift.EmployeeID != employee.ID {
		return nil, apperrors.InvalidActor("only the shift employee can request changes")
	}

	result := &MutationResult{Message: "Shift request sent"}
	body := fmt.Sprintf(
		"Employee %s (Name: %s, Email: %s) has requested to delete their %s shift on %s",
		employee.ID.Hex(), employee.Name, employee.Email, shift.Time, displayDate(shift.Date))
	s.notifyAdmins(ctx, result, employee.ID, "Shift deletion request", body)
	return result, nil
}

// GetShifts lists all shifts, or one employee's when employeeID is set.
func (s *ShiftService) GetShifts(ctx context.Context, employeeID string) ([]models.Shift, error) {
	if employeeID == "" {
		return s.shifts.ListShifts(ctx)
	}
	id, err := primitive.ObjectIDFromHex(employeeID)
	if err != nil {
		return nil, apperrors.InvalidFormat("invalid employee id")
	}
	return s.shifts.ListShiftsByEmployee(ctx, id)
}

// appendChange writes the audit record best-effort: the primary mutation
// already happened, so a failed append becomes a warning, not an error.
func (s *ShiftService) appendChange(ctx context.Context, result *MutationResult, change *models.Change) {
	if err := s.changes.AppendChange(ctx, change); err != nil {
		logrus.WithError(err).Warn("Failed to append change record")
		result.Warnings = append(result.Warnings, fmt.Sprintf("change record was not stored: %v", err))
	}
}

func (s *ShiftService) notifyAdmins(ctx context.Context, result *MutationResult, actorID primitive.ObjectID, title, body string) {
	admins, err := s.users.GetAdmins(ctx)
	if err != nil {
		logrus.WithError(err).Warn("Failed to resolve administrators for fanout")
		result.Warnings = append(result.Warnings, fmt.Sprintf("administrators were not notified: %v", err))
		return
	}
	result.addWarnings(s.fanout.Deliver(ctx, actorID, admins, title, body))
}
