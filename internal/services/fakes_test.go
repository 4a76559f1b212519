package services_test

import (
	"context"
	"sort"

	"github.com/adilzhanb/shiftdesk/internal/apperrors"
	"github.com/adilzhanb/shiftdesk/internal/models"
	"github.com/adilzhanb/shiftdesk/pkg/push"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory fakes for the store interfaces. Each mirrors the observable
// behavior of its Mongo-backed counterpart closely enough for workflow
// tests: missing documents come back as not-found errors, membership
// updates behave like $addToSet / $pull.

type fakeUserStore struct {
	users map[primitive.ObjectID]*models.User
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[primitive.ObjectID]*models.User)}
	for _, u := range users {
		cp := *u
		s.users[u.ID] = &cp
	}
	return s
}

func (s *fakeUserStore) CreateUser(_ context.Context, user *models.User) (*models.User, error) {
	cp := *user
	cp.ID = primitive.NewObjectID()
	s.users[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (s *fakeUserStore) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, apperrors.NotFound("user does not exist")
	}
	cp := *u
	return &cp, nil
}

func (s *fakeUserStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.NotFound("user does not exist")
}

func (s *fakeUserStore) GetAdmins(_ context.Context) ([]models.User, error) {
	var out []models.User
	for _, u := range s.users {
		if u.IsAdmin {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return out, nil
}

func (s *fakeUserStore) GetAdminsByDepartment(_ context.Context, department string) ([]models.User, error) {
	var out []models.User
	for _, u := range s.users {
		if u.IsAdmin && u.Department == department {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return out, nil
}

func (s *fakeUserStore) GetUsersByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	var out []models.User
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (s *fakeUserStore) UpdateUser(_ context.Context, id primitive.ObjectID, update bson.M) error {
	u, ok := s.users[id]
	if !ok {
		return apperrors.NotFound("user does not exist")
	}
	if v, ok := update["name"].(string); ok {
		u.Name = v
	}
	if v, ok := update["email"].(string); ok {
		u.Email = v
	}
	if v, ok := update["department"].(string); ok {
		u.Department = v
	}
	return nil
}

func (s *fakeUserStore) DeleteUser(_ context.Context, id primitive.ObjectID) error {
	if _, ok := s.users[id]; !ok {
		return apperrors.NotFound("user does not exist")
	}
	delete(s.users, id)
	return nil
}

func (s *fakeUserStore) AddDeviceToken(_ context.Context, userID primitive.ObjectID, token string) error {
	u, ok := s.users[userID]
	if !ok {
		return apperrors.NotFound("user does not exist")
	}
	for _, t := range u.Tokens {
		if t == token {
			return nil
		}
	}
	u.Tokens = append(u.Tokens, token)
	return nil
}

func (s *fakeUserStore) RemoveDeviceToken(_ context.Context, userID primitive.ObjectID, token string) error {
	u, ok := s.users[userID]
	if !ok {
		return apperrors.NotFound("user does not exist")
	}
	kept := u.Tokens[:0]
	for _, t := range u.Tokens {
		if t != token {
			kept = append(kept, t)
		}
	}
	u.Tokens = kept
	return nil
}

type fakeShiftStore struct {
	shifts map[primitive.ObjectID]*models.Shift
}

func newFakeShiftStore(shifts ...*models.Shift) *fakeShiftStore {
	s := &fakeShiftStore{shifts: make(map[primitive.ObjectID]*models.Shift)}
	for _, sh := range shifts {
		cp := *sh
		s.shifts[sh.ID] = &cp
	}
	return s
}

func (s *fakeShiftStore) CreateShift(_ context.Context, shift *models.Shift) (*models.Shift, error) {
	cp := *shift
	cp.ID = primitive.NewObjectID()
	s.shifts[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (s *fakeShiftStore) GetShiftByID(_ context.Context, id primitive.ObjectID) (*models.Shift, error) {
	sh, ok := s.shifts[id]
	if !ok {
		return nil, apperrors.NotFound("shift does not exist")
	}
	cp := *sh
	return &cp, nil
}

func (s *fakeShiftStore) ReplaceShift(_ context.Context, id primitive.ObjectID, shift *models.Shift) error {
	if _, ok := s.shifts[id]; !ok {
		return apperrors.NotFound("shift does not exist")
	}
	cp := *shift
	cp.ID = id
	s.shifts[id] = &cp
	return nil
}

func (s *fakeShiftStore) DeleteShift(_ context.Context, id primitive.ObjectID) error {
	if _, ok := s.shifts[id]; !ok {
		return apperrors.NotFound("shift does not exist")
	}
	delete(s.shifts, id)
	return nil
}

func (s *fakeShiftStore) ListShifts(_ context.Context) ([]models.Shift, error) {
	var out []models.Shift
	for _, sh := range s.shifts {
		out = append(out, *sh)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (s *fakeShiftStore) ListShiftsByEmployee(_ context.Context, employeeID primitive.ObjectID) ([]models.Shift, error) {
	var out []models.Shift
	for _, sh := range s.shifts {
		if sh.EmployeeID == employeeID {
			out = append(out, *sh)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

type fakeGroupStore struct {
	groups map[primitive.ObjectID]*models.Group
}

func newFakeGroupStore(groups ...*models.Group) *fakeGroupStore {
	s := &fakeGroupStore{groups: make(map[primitive.ObjectID]*models.Group)}
	for _, g := range groups {
		cp := *g
		cp.Members = append([]primitive.ObjectID(nil), g.Members...)
		s.groups[g.ID] = &cp
	}
	return s
}

func (s *fakeGroupStore) CreateGroup(_ context.Context, group *models.Group) (*models.Group, error) {
	cp := *group
	cp.ID = primitive.NewObjectID()
	cp.Members = append([]primitive.ObjectID(nil), group.Members...)
	s.groups[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (s *fakeGroupStore) GetGroupByID(_ context.Context, id primitive.ObjectID) (*models.Group, error) {
	g, ok := s.groups[id]
	if !ok {
		return nil, apperrors.NotFound("group does not exist")
	}
	cp := *g
	cp.Members = append([]primitive.ObjectID(nil), g.Members...)
	return &cp, nil
}

func (s *fakeGroupStore) UpdateGroupInfo(_ context.Context, id primitive.ObjectID, name, description string) error {
	g, ok := s.groups[id]
	if !ok {
		return apperrors.NotFound("group does not exist")
	}
	g.Name = name
	g.Description = description
	return nil
}

func (s *fakeGroupStore) AddMember(_ context.Context, groupID, userID primitive.ObjectID) error {
	g, ok := s.groups[groupID]
	if !ok {
		return apperrors.NotFound("group does not exist")
	}
	if !g.HasMember(userID) {
		g.Members = append(g.Members, userID)
	}
	return nil
}

func (s *fakeGroupStore) RemoveMember(_ context.Context, groupID, userID primitive.ObjectID) error {
	g, ok := s.groups[groupID]
	if !ok {
		return apperrors.NotFound("group does not exist")
	}
	kept := g.Members[:0]
	for _, m := range g.Members {
		if m != userID {
			kept = append(kept, m)
		}
	}
	g.Members = kept
	return nil
}

func (s *fakeGroupStore) DeleteGroup(_ context.Context, id primitive.ObjectID) error {
	if _, ok := s.groups[id]; !ok {
		return apperrors.NotFound("group does not exist")
	}
	delete(s.groups, id)
	return nil
}

type fakeMessageStore struct {
	messages []models.Message
}

func (s *fakeMessageStore) InsertMessage(_ context.Context, msg *models.Message) (*models.Message, error) {
	cp := *msg
	cp.ID = primitive.NewObjectID()
	s.messages = append(s.messages, cp)
	out := cp
	return &out, nil
}

func (s *fakeMessageStore) GetThreadMessages(_ context.Context, threadID string) ([]models.Message, error) {
	var out []models.Message
	for _, m := range s.messages {
		if m.ThreadID == threadID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *fakeMessageStore) GetGroupMessages(_ context.Context, groupID primitive.ObjectID) ([]models.Message, error) {
	var out []models.Message
	for _, m := range s.messages {
		if m.GroupID != nil && *m.GroupID == groupID {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeChangeStore struct {
	changes []models.Change
	err     error
}

func (s *fakeChangeStore) AppendChange(_ context.Context, change *models.Change) error {
	if s.err != nil {
		return s.err
	}
	s.changes = append(s.changes, *change)
	return nil
}

func (s *fakeChangeStore) GetChangesBySubject(_ context.Context, subjectID primitive.ObjectID) ([]models.Change, error) {
	var out []models.Change
	for i := len(s.changes) - 1; i >= 0; i-- {
		if s.changes[i].SubjectID == subjectID {
			out = append(out, s.changes[i])
		}
	}
	return out, nil
}

type fakeNotificationStore struct {
	notifications []models.Notification
	err           error
}

func (s *fakeNotificationStore) CreateNotification(_ context.Context, notif *models.Notification) error {
	if s.err != nil {
		return s.err
	}
	s.notifications = append(s.notifications, *notif)
	return nil
}

func (s *fakeNotificationStore) GetUserNotifications(_ context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	var out []models.Notification
	for _, n := range s.notifications {
		for _, u := range n.Users {
			if u == userID {
				out = append(out, n)
				break
			}
		}
	}
	return out, nil
}

func (s *fakeNotificationStore) MarkAsRead(_ context.Context, id, userID primitive.ObjectID) error {
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications[i].ReadBy = append(s.notifications[i].ReadBy, userID)
			return nil
		}
	}
	return apperrors.NotFound("notification does not exist")
}

func (s *fakeNotificationStore) DeleteNotification(_ context.Context, id, _ primitive.ObjectID) error {
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return nil
		}
	}
	return apperrors.NotFound("notification does not exist")
}

func (s *fakeNotificationStore) DeleteExpiredNotifications(_ context.Context) error {
	return nil
}

type sentPush struct {
	tokens []string
	notif  push.Notification
}

type fakeSender struct {
	sent   []sentPush
	err    error
	report *push.Report
}

func (s *fakeSender) SendMulticast(_ context.Context, tokens []string, n push.Notification) (*push.Report, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.sent = append(s.sent, sentPush{tokens: tokens, notif: n})
	if s.report != nil {
		return s.report, nil
	}
	return &push.Report{SuccessCount: len(tokens)}, nil
}
