package services

import (
	"context"
	"fmt"

	"github.com/anonto42/newsflash/backend/internal/apperr"
	"github.com/anonto42/newsflash/backend/internal/models"
	"github.com/anonto42/newsflash/backend/internal/notify"
	"github.com/anonto42/newsflash/backend/internal/repositories"
	"github.com/anonto42/newsflash/backend/pkg/logger"
)

// FriendshipService runs the request/accept model. The single edge per pair
// moves none -> pending -> accepted and back to none; every transition is a
// compare-and-swap in the repository.
type FriendshipService struct {
	users       repositories.UserRepository
	friendships repositories.FriendshipRepository
	notifier    notify.Enqueuer
}

var _ Graph = (*FriendshipService)(nil)

func NewFriendshipService(users repositories.UserRepository, friendships repositories.FriendshipRepository, notifier notify.Enqueuer) *FriendshipService {
	return &FriendshipService{users: users, friendships: friendships, notifier: notifier}
}

// SendRequest records a pending request from fromID to toID.
func (s *FriendshipService) SendRequest(ctx context.Context, fromID, toID string) (*models.FriendshipStatus, error) {
	if fromID == toID {
		return nil, apperr.SelfReference("cannot send a friend request to yourself")
	}
	from, to, err := s.pair(ctx, fromID, toID)
	if err != nil {
		return nil, err
	}

	edge, err := s.friendships.GetFriendship(ctx, fromID, toID)
	if err != nil {
		return nil, apperr.Wrap(err, "failed to load friendship")
	}
	if edge != nil {
		return nil, existingEdgeConflict(edge, fromID)
	}

	edge, err = s.friendships.CreateFriendRequest(ctx, fromID, toID)
	if err != nil {
		if current, getErr := s.friendships.GetFriendship(ctx, fromID, toID); getErr == nil && current != nil {
			return nil, existingEdgeConflict(current, fromID)
		}
		return nil, edgeErr(err, "friend request already sent", "failed to send friend request")
	}

	logger.Ctx(ctx).Info().Str("from_id", fromID).Str("to_id", toID).Msg("friend request sent")
	s.notifier.Enqueue(notify.Task{
		Type:       models.NotificationFriendRequest,
		ActorID:    fromID,
		Title:      "New friend request",
		Body:       fmt.Sprintf("%s sent you a friend request", from.FullName),
		Data:       map[string]string{"type": models.NotificationFriendRequest, "userId": fromID},
		Recipients: notify.RecipientsOf(*to),
		Options:    notify.Options{HighPriority: true},
	})
	return friendshipStatus(edge, fromID), nil
}

func existingEdgeConflict(edge *models.Friendship, fromID string) error {
	switch {
	case edge.Status == models.FriendshipAccepted:
		return apperr.Conflict("already friends")
	case edge.RequesterID == fromID:
		return apperr.Conflict("friend request already sent")
	default:
		return apperr.Conflict("this user already sent you a friend request, accept it instead")
	}
}

// Accept turns requesterID's pending request to accepterID into a friendship.
func (s *FriendshipService) Accept(ctx context.Context, requesterID, accepterID string) (*models.FriendshipStatus, error) {
	if requesterID == accepterID {
		return nil, apperr.SelfReference("cannot accept a friend request from yourself")
	}
	requester, accepter, err := s.pair(ctx, requesterID, accepterID)
	if err != nil {
		return nil, err
	}

	edge, err := s.friendships.AcceptFriendRequest(ctx, requesterID, accepterID)
	if err != nil {
		return nil, edgeErr(err, "no pending friend request", "failed to accept friend request")
	}

	logger.Ctx(ctx).Info().Str("requester_id", requesterID).Str("accepter_id", accepterID).Msg("friend request accepted")
	s.notifier.Enqueue(notify.Task{
		Type:       models.NotificationFriendAccept,
		ActorID:    accepterID,
		Title:      "Friend request accepted",
		Body:       fmt.Sprintf("%s accepted your friend request", accepter.FullName),
		Data:       map[string]string{"type": models.NotificationFriendAccept, "userId": accepterID},
		Recipients: notify.RecipientsOf(*requester),
	})
	return friendshipStatus(edge, accepterID), nil
}

// Reject drops requesterID's pending request to rejecterID.
func (s *FriendshipService) Reject(ctx context.Context, requesterID, rejecterID string) error {
	if requesterID == rejecterID {
		return apperr.SelfReference("cannot reject a friend request from yourself")
	}
	if _, _, err := s.pair(ctx, requesterID, rejecterID); err != nil {
		return err
	}
	if err := s.friendships.DeleteFriendRequest(ctx, requesterID, rejecterID); err != nil {
		return edgeErr(err, "no pending friend request", "failed to reject friend request")
	}
	return nil
}

// Cancel withdraws cancelerID's own pending request to targetID.
func (s *FriendshipService) Cancel(ctx context.Context, targetID, cancelerID string) error {
	if targetID == cancelerID {
		return apperr.SelfReference("cannot cancel a friend request to yourself")
	}
	if _, _, err := s.pair(ctx, cancelerID, targetID); err != nil {
		return err
	}
	if err := s.friendships.DeleteFriendRequest(ctx, cancelerID, targetID); err != nil {
		return edgeErr(err, "no pending friend request", "failed to cancel friend request")
	}
	return nil
}

// Remove ends an accepted friendship.
func (s *FriendshipService) Remove(ctx context.Context, userID, friendID string) error {
	if userID == friendID {
		return apperr.SelfReference("cannot unfriend yourself")
	}
	if _, _, err := s.pair(ctx, userID, friendID); err != nil {
		return err
	}
	if err := s.friendships.DeleteFriendship(ctx, userID, friendID); err != nil {
		return edgeErr(err, "not friends", "failed to remove friend")
	}
	logger.Ctx(ctx).Info().Str("user_id", userID).Str("friend_id", friendID).Msg("friendship removed")
	return nil
}

// Status describes the pair as seen by viewerID.
func (s *FriendshipService) Status(ctx context.Context, viewerID, otherID string) (*models.FriendshipStatus, error) {
	if viewerID == otherID {
		return nil, apperr.SelfReference("cannot check friendship status with yourself")
	}
	if _, _, err := s.pair(ctx, viewerID, otherID); err != nil {
		return nil, err
	}
	edge, err := s.friendships.GetFriendship(ctx, viewerID, otherID)
	if err != nil {
		return nil, apperr.Wrap(err, "failed to load friendship")
	}
	return friendshipStatus(edge, viewerID), nil
}

// friendshipStatus derives every flag from the one edge, so both endpoints
// always agree.
func friendshipStatus(edge *models.Friendship, viewerID string) *models.FriendshipStatus {
	if edge == nil {
		return &models.FriendshipStatus{Status: models.FriendshipNone, CanSendRequest: true}
	}
	st := &models.FriendshipStatus{Status: edge.Status, RequesterID: edge.RequesterID}
	switch edge.Status {
	case models.FriendshipAccepted:
		st.AreFriends = true
	case models.FriendshipPending:
		sent := edge.RequesterID == viewerID
		st.RequestSent = sent
		st.CanCancel = sent
		st.RequestReceived = !sent
		st.CanAccept = !sent
	}
	return st
}

func (s *FriendshipService) Friends(ctx context.Context, userID string, page repositories.Page) ([]models.User, int64, error) {
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		return nil, 0, apperr.Wrap(err, "failed to load user")
	}
	users, total, err := s.friendships.GetFriends(ctx, userID, page)
	if err != nil {
		return nil, 0, apperr.Wrap(err, "failed to list friends")
	}
	return usersOrEmpty(users), total, nil
}

// PendingRequests lists the users who asked userID to be friends.
func (s *FriendshipService) PendingRequests(ctx context.Context, userID string, page repositories.Page) ([]models.User, int64, error) {
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		return nil, 0, apperr.Wrap(err, "failed to load user")
	}
	users, total, err := s.friendships.GetIncomingRequests(ctx, userID, page)
	if err != nil {
		return nil, 0, apperr.Wrap(err, "failed to list friend requests")
	}
	return usersOrEmpty(users), total, nil
}

// SentRequests lists the users userID is waiting on.
func (s *FriendshipService) SentRequests(ctx context.Context, userID string, page repositories.Page) ([]models.User, int64, error) {
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		return nil, 0, apperr.Wrap(err, "failed to load user")
	}
	users, total, err := s.friendships.GetSentRequests(ctx, userID, page)
	if err != nil {
		return nil, 0, apperr.Wrap(err, "failed to list sent friend requests")
	}
	return usersOrEmpty(users), total, nil
}

func (s *FriendshipService) Audience(ctx context.Context, userID string) ([]models.User, error) {
	friendIDs, err := s.friendships.GetFriendIDs(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(err, "failed to list friends")
	}
	if len(friendIDs) == 0 {
		return nil, nil
	}
	users, err := s.users.GetUsersByIDs(ctx, friendIDs)
	return users, apperr.Wrap(err, "failed to load friends")
}

func (s *FriendshipService) IsConnected(ctx context.Context, authorID, targetID string) (bool, error) {
	edge, err := s.friendships.GetFriendship(ctx, authorID, targetID)
	if err != nil {
		return false, apperr.Wrap(err, "failed to load friendship")
	}
	return edge != nil && edge.Status == models.FriendshipAccepted, nil
}

func (s *FriendshipService) ConnectionIDs(ctx context.Context, viewerID string) ([]string, error) {
	friendIDs, err := s.friendships.GetFriendIDs(ctx, viewerID)
	return friendIDs, apperr.Wrap(err, "failed to list friends")
}

// pair loads both endpoints of an operation.
func (s *FriendshipService) pair(ctx context.Context, aID, bID string) (*models.User, *models.User, error) {
	a, err := s.users.GetUserByID(ctx, aID)
	if err != nil {
		return nil, nil, apperr.Wrap(err, "failed to load user")
	}
	b, err := s.users.GetUserByID(ctx, bID)
	if err != nil {
		return nil, nil, apperr.Wrap(err, "failed to load user")
	}
	return a, b, nil
}
