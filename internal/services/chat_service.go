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

const (
	MemberAdd    = "add"
	MemberRemove = "remove"
)

// ChatService covers group lifecycle, group membership and messaging, all
// through the same validate-mutate-audit-fanout workflow as shifts.
type ChatService struct {
	groups   GroupStore
	messages MessageStore
	users    UserStore
	changes  ChangeStore
	fanout   *Fanout
}

func NewChatService(groups GroupStore, messages MessageStore, users UserStore, changes ChangeStore, fanout *Fanout) *ChatService {
	return &ChatService{
		groups:   groups,
		messages: messages,
		users:    users,
		changes:  changes,
		fanout:   fanout,
	}
}

func (s *ChatService) requireUser(ctx context.Context, actorID string) (*models.User, error) {
	id, err := primitive.ObjectIDFromHex(actorID)
	if err != nil {
		return nil, apperrors.InvalidFormat("invalid actor id")
	}
	return s.users.GetUserByID(ctx, id)
}

// CreateGroup creates a chat group. Every member must exist; duplicates are
// collapsed and the creator is always part of the group.
func (s *ChatService) CreateGroup(ctx context.Context, actorID, name, description string, memberIDs []string) (*models.Group, *MutationResult, error) {
	actor, err := s.requireUser(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}
	if name == "" {
		return nil, nil, apperrors.InvalidFormat("group name is required")
	}

	seen := map[primitive.ObjectID]bool{actor.ID: true}
	ids := []primitive.ObjectID{actor.ID}
	for _, m := range memberIDs {
		id, err := primitive.ObjectIDFromHex(m)
		if err != nil {
			return nil, nil, apperrors.InvalidFormat("invalid member id")
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}

	members, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve group members: %v", err)
	}
	if len(members) != len(ids) {
		return nil, nil, apperrors.NotFound("one of the members does not exist")
	}

	group, err := s.groups.CreateGroup(ctx, &models.Group{
		Name:        name,
		Description: description,
		Members:     ids,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create group: %v", err)
	}

	result := &MutationResult{Message: "Group created"}
	s.appendChange(ctx, result, &models.Change{
		Type:      models.ChangePut,
		Entity:    models.EntityGroup,
		ActorID:   actor.ID,
		SubjectID: group.ID,
		After:     bson.M{"name": name, "description": description, "members": ids},
	})

	body := fmt.Sprintf("You have been added to a new group called %s (Description: %s)", name, description)
	result.addWarnings(s.fanout.Deliver(ctx, actor.ID, members, "Addition into new group", body))

	if len(result.Warnings) > 0 {
		result.Message = "Group created, some notifications failed"
	}
	return group, result, nil
}

// ChangeGroupMembers adds or removes one user. A repeated add or an absent
// remove is rejected before any write; the update itself is an atomic
// array mutation.
func (s *ChatService) ChangeGroupMembers(ctx context.Context, actorID, groupID, userID, changeType string) (*MutationResult, error) {
	gid, err := primitive.ObjectIDFromHex(groupID)
	if err != nil {
		return nil, apperrors.InvalidFormat("invalid group id")
	}
	group, err := s.groups.GetGroupByID(ctx, gid)
	if err != nil {
		return nil, err
	}

	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, apperrors.InvalidFormat("invalid user id")
	}
	target, err := s.users.GetUserByID(ctx, uid)
	if err != nil {
		return nil, err
	}

	switch changeType {
	case MemberAdd:
		if group.HasMember(target.ID) {
			return nil, apperrors.InvalidMembership("user is already a member of the group")
		}
	case MemberRemove:
		if !group.HasMember(target.ID) {
			return nil, apperrors.InvalidMembership("user is not a member of the group")
		}
	default:
		return nil, apperrors.InvalidFormat("membership change type must be add or remove")
	}

	actor, err := s.requireUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(actor.ID) {
		return nil, apperrors.InvalidActor("only group members can change membership")
	}

	if changeType == MemberAdd {
		err = s.groups.AddMember(ctx, group.ID, target.ID)
	} else {
		err = s.groups.RemoveMember(ctx, group.ID, target.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to change group membership: %v", err)
	}

	after := make([]primitive.ObjectID, 0, len(group.Members)+1)
	for _, m := range group.Members {
		if m != target.ID {
			after = append(after, m)
		}
	}
	if changeType == MemberAdd {
		after = append(after, target.ID)
	}

	result := &MutationResult{Message: "Group membership updated"}
	s.appendChange(ctx, result, &models.Change{
		Type:      models.ChangePatch,
		Entity:    models.EntityGroup,
		ActorID:   actor.ID,
		SubjectID: group.ID,
		Before:    bson.M{"members": group.Members},
		After:     bson.M{"members": after},
	})

	// Existing members minus the affected user get the group-facing text.
	var othersIDs []primitive.ObjectID
	for _, m := range group.Members {
		if m != target.ID {
			othersIDs = append(othersIDs, m)
		}
	}
	others, err := s.users.GetUsersByIDs(ctx, othersIDs)
	if err != nil {
		logrus.WithError(err).Warn("Failed to resolve group members for fanout")
		result.Warnings = append(result.Warnings, fmt.Sprintf("group members were not notified: %v", err))
	} else {
		var title, body string
		if changeType == MemberAdd {
			title = "Addition of user to group"
			body = fmt.Sprintf("Welcome %s to the group %s", target.Name, group.Name)
		} else {
			title = "Removal of user from group"
			body = fmt.Sprintf("%s was removed from the group %s", target.Name, group.Name)
		}
		result.addWarnings(s.fanout.Deliver(ctx, actor.ID, others, title, body))
	}

	if changeType == MemberAdd {
		body := fmt.Sprintf("You have been added to group %s", group.Name)
		result.addWarnings(s.fanout.Deliver(ctx, actor.ID, []models.User{*target}, "Addition to group", body))
	} else {
		body := fmt.Sprintf("You have been removed from group %s", group.Name)
		result.addWarnings(s.fanout.Deliver(ctx, actor.ID, []models.User{*target}, "Removal from group", body))
	}

	if len(result.Warnings) > 0 {
		result.Message = "Group membership updated, some notifications failed"
	}
	return result, nil
}

// EditGroup rewrites the group's name and description, merging unspecified
// fields forward from the stored document.
func (s *ChatService) EditGroup(ctx context.Context, actorID, groupID string, name, description *string) (*MutationResult, error) {
	gid, err := primitive.ObjectIDFromHex(groupID)
	if err != nil {
		return nil, apperrors.InvalidFormat("invalid group id")
	}
	group, err := s.groups.GetGroupByID(ctx, gid)
	if err != nil {
		return nil, err
	}
	actor, err := s.requireUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(actor.ID) {
		return nil, apperrors.InvalidActor("only group members can edit the group")
	}

	newName := group.Name
	if name != nil {
		if *name == "" {
			return nil, apperrors.InvalidFormat("group name is required")
		}
		newName = *name
	}
	newDescription := group.Description
	if description != nil {
		newDescription = *description
	}

	if err := s.groups.UpdateGroupInfo(ctx, group.ID, newName, newDescription); err != nil {
		return nil, fmt.Errorf("failed to edit group: %v", err)
	}

	result := &MutationResult{Message: "Group updated"}
	s.appendChange(ctx, result, &models.Change{
		Type:      models.ChangePatch,
		Entity:    models.EntityGroup,
		ActorID:   actor.ID,
		SubjectID: group.ID,
		Before:    bson.M{"name": group.Name, "description": group.Description},
		After:     bson.M{"name": newName, "description": newDescription},
	})

	members, err := s.users.GetUsersByIDs(ctx, group.Members)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("group members were not notified: %v", err))
	} else {
		body := fmt.Sprintf("The group %s has been renamed to %s (Description: %s) by %s",
			group.Name, newName, newDescription, actor.Name)
		if group.Name == newName {
			body = fmt.Sprintf("The group %s has been updated by %s (Description: %s)",
				newName, actor.Name, newDescription)
		}
		result.addWarnings(s.fanout.Deliver(ctx, actor.ID, members, "Group details changed", body))
	}

	if len(result.Warnings) > 0 {
		result.Message = "Group updated, some notifications failed"
	}
	return result, nil
}

// DeleteGroup removes a group and notifies its former members.
func (s *ChatService) DeleteGroup(ctx context.Context, actorID, groupID string) (*MutationResult, error) {
	gid, err := primitive.ObjectIDFromHex(groupID)
	if err != nil {
		return nil, apperrors.InvalidFormat("invalid group id")
	}
	group, err := s.groups.GetGroupByID(ctx, gid)
	if err != nil {
		return nil, err
	}
	actor, err := s.requireUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(actor.ID) {
		return nil, apperrors.InvalidActor("only group members can delete the group")
	}

	if err := s.groups.DeleteGroup(ctx, group.ID); err != nil {
		return nil, fmt.Errorf("failed to delete group: %v", err)
	}

	result := &MutationResult{Message: "Group deleted"}
	s.appendChange(ctx, result, &models.Change{
		Type:      models.ChangeDelete,
		Entity:    models.EntityGroup,
		ActorID:   actor.ID,
		SubjectID: group.ID,
		Before:    bson.M{"name": group.Name, "description": group.Description, "members": group.Members},
	})

	members, err := s.users.GetUsersByIDs(ctx, group.Members)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("group members were not notified: %v", err))
	} else {
		body := fmt.Sprintf("The group %s has been deleted by %s", group.Name, actor.Name)
		result.addWarnings(s.fanout.Deliver(ctx, actor.ID, members, "Deletion of group", body))
	}

	if len(result.Warnings) > 0 {
		result.Message = "Group deleted, some notifications failed"
	}
	return result, nil
}

// SendGroupMessage appends a message to a group and notifies its members.
// Messages are not audited; the message collection is its own record.
func (s *ChatService) SendGroupMessage(ctx context.Context, actorID, groupID, text string) (*models.Message, *MutationResult, error) {
	if text == "" {
		return nil, nil, apperrors.InvalidFormat("message text is required")
	}

	gid, err := primitive.ObjectIDFromHex(groupID)
	if err != nil {
		return nil, nil, apperrors.InvalidFormat("invalid group id")
	}
	group, err := s.groups.GetGroupByID(ctx, gid)
	if err != nil {
		return nil, nil, err
	}
	actor, err := s.requireUser(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}
	if !group.HasMember(actor.ID) {
		return nil, nil, apperrors.InvalidActor("only group members can send messages")
	}

	msg, err := s.messages.InsertMessage(ctx, &models.Message{
		SenderID: actor.ID,
		GroupID:  &group.ID,
		Text:     text,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to send group message: %v", err)
	}

	result := &MutationResult{Message: "Message sent"}
	members, err := s.users.GetUsersByIDs(ctx, group.Members)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("group members were not notified: %v", err))
	} else {
		title := fmt.Sprintf("%s@%s", actor.Name, group.Name)
		result.addWarnings(s.fanout.Deliver(ctx, actor.ID, members, title, text))
	}

	if len(result.Warnings) > 0 {
		result.Message = "Message sent, some notifications failed"
	}
	return msg, result, nil
}

// SendDirectMessage appends a 1:1 message. Both directions of a
// conversation share one thread keyed by the sorted participant pair.
func (s *ChatService) SendDirectMessage(ctx context.Context, actorID, toID, text string) (*models.Message, *MutationResult, error) {
	if text == "" {
		return nil, nil, apperrors.InvalidFormat("message text is required")
	}

	sender, err := s.requireUser(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}
	rid, err := primitive.ObjectIDFromHex(toID)
	if err != nil {
		return nil, nil, apperrors.InvalidFormat("invalid recipient id")
	}
	receiver, err := s.users.GetUserByID(ctx, rid)
	if err != nil {
		return nil, nil, err
	}

	msg, err := s.messages.InsertMessage(ctx, &models.Message{
		SenderID:   sender.ID,
		ReceiverID: &receiver.ID,
		ThreadID:   models.ThreadID(sender.ID, receiver.ID),
		Text:       text,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to send message: %v", err)
	}

	result := &MutationResult{Message: "Message sent"}
	title := fmt.Sprintf("New message from %s", sender.Name)
	result.addWarnings(s.fanout.Deliver(ctx, sender.ID, []models.User{*receiver}, title, text))

	if len(result.Warnings) > 0 {
		result.Message = "Message sent, notification failed"
	}
	return msg, result, nil
}

// GetThread returns the 1:1 conversation between the actor and another user.
func (s *ChatService) GetThread(ctx context.Context, actorID, otherID string) ([]models.Message, error) {
	actor, err := s.requireUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	oid, err := primitive.ObjectIDFromHex(otherID)
	if err != nil {
		return nil, apperrors.InvalidFormat("invalid user id")
	}
	return s.messages.GetThreadMessages(ctx, models.ThreadID(actor.ID, oid))
}

// GetGroupMessages returns a group's history; only members may read it.
func (s *ChatService) GetGroupMessages(ctx context.Context, actorID, groupID string) ([]models.Message, error) {
	gid, err := primitive.ObjectIDFromHex(groupID)
	if err != nil {
		return nil, apperrors.InvalidFormat("invalid group id")
	}
	group, err := s.groups.GetGroupByID(ctx, gid)
	if err != nil {
		return nil, err
	}
	actor, err := s.requireUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(actor.ID) {
		return nil, apperrors.InvalidActor("only group members can read messages")
	}
	return s.messages.GetGroupMessages(ctx, group.ID)
}

func (s *ChatService) appendChange(ctx context.Context, result *MutationResult, change *models.Change) {
	if err := s.changes.AppendChange(ctx, change); err != nil {
		logrus.WithError(err).Warn("Failed to append change record")
		result.Warnings = append(result.Warnings, fmt.Sprintf("change record was not stored: %v", err))
	}
}
