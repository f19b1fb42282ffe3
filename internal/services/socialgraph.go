package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/connectly/backend/internal/apperrors"
	"github.com/connectly/backend/internal/models"
	"github.com/connectly/backend/internal/repositories"
	"github.com/connectly/backend/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SearchResultLimit caps account search results.
const SearchResultLimit = 20

// SocialGraphService maintains the bidirectional follow relation and
// computes the personalized feed.
type SocialGraphService struct {
	users    repositories.UserRepository
	posts    repositories.PostRepository
	notifier *Notifier
	events   EventPublisher
}

// NewSocialGraphService creates a new SocialGraphService
func NewSocialGraphService(userRepo repositories.UserRepository, postRepo repositories.PostRepository, notifier *Notifier, events EventPublisher) *SocialGraphService {
	if events == nil {
		events = NopPublisher{}
	}
	return &SocialGraphService{users: userRepo, posts: postRepo, notifier: notifier, events: events}
}

// Follow toggles the follow relation from actor to target and reports the
// resulting state (true when now following). Both account documents are
// updated; when the second write fails the first is compensated so no
// observer sees a half-applied relation.
func (s *SocialGraphService) Follow(ctx context.Context, actorID, targetID primitive.ObjectID) (bool, error) {
	if actorID == targetID {
		return false, fmt.Errorf("cannot follow yourself: %w", apperrors.ErrInvalidOperation)
	}

	target, err := s.users.GetUserByID(ctx, targetID)
	if err != nil {
		return false, err
	}
	actor, err := s.users.GetUserByID(ctx, actorID)
	if err != nil {
		return false, err
	}

	if containsID(actor.Following, targetID) {
		// Unfollow
		if err := s.users.RemoveFollowing(ctx, actorID, targetID); err != nil {
			return false, err
		}
		if err := s.users.RemoveFollower(ctx, targetID, actorID); err != nil {
			// Compensate: restore the first side of the relation.
			if rollbackErr := s.users.AddFollowing(ctx, actorID, targetID); rollbackErr != nil {
				logger.L().Error().Err(rollbackErr).
					Str("actor", actorID.Hex()).Str("target", targetID.Hex()).
					Msg("unfollow rollback failed, relation inconsistent")
			}
			return false, err
		}
		logger.L().Info().Str("actor", actor.Username).Str("target", target.Username).Msg("user unfollowed")
		return false, nil
	}

	// Follow
	if err := s.users.AddFollowing(ctx, actorID, targetID); err != nil {
		return false, err
	}
	if err := s.users.AddFollower(ctx, targetID, actorID); err != nil {
		if rollbackErr := s.users.RemoveFollowing(ctx, actorID, targetID); rollbackErr != nil {
			logger.L().Error().Err(rollbackErr).
				Str("actor", actorID.Hex()).Str("target", targetID.Hex()).
				Msg("follow rollback failed, relation inconsistent")
		}
		return false, err
	}
	logger.L().Info().Str("actor", actor.Username).Str("target", target.Username).Msg("user followed")

	s.notifier.Dispatch(ctx, targetID, models.NotificationFollow, actorID,
		actor.Username+" started following you", NotificationRefs{})
	s.events.PublishTo(targetID.Hex(), EventUserFollowed, map[string]string{
		"follower_id": actorID.Hex(),
		"username":    actor.Username,
	})
	return true, nil
}

// Feed returns a page of the non-deleted posts authored by the account or
// anyone it follows, newest first with a stable id tiebreak.
func (s *SocialGraphService) Feed(ctx context.Context, accountID primitive.ObjectID, page, pageSize int) ([]models.Post, models.Pagination, error) {
	user, err := s.users.GetUserByID(ctx, accountID)
	if err != nil {
		return nil, models.Pagination{}, err
	}

	authors := append(append([]primitive.ObjectID{}, user.Following...), accountID)
	skip := int64((page - 1) * pageSize)

	posts, total, err := s.posts.GetFeedPosts(ctx, authors, skip, int64(pageSize))
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return posts, models.NewPagination(page, pageSize, total), nil
}

// Followers returns the compact profiles of the account's followers
func (s *SocialGraphService) Followers(ctx context.Context, accountID primitive.ObjectID) ([]models.UserCompact, error) {
	user, err := s.users.GetUserByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return s.compactByIDs(ctx, user.Followers)
}

// Following returns the compact profiles of the accounts this one follows
func (s *SocialGraphService) Following(ctx context.Context, accountID primitive.ObjectID) ([]models.UserCompact, error) {
	user, err := s.users.GetUserByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return s.compactByIDs(ctx, user.Following)
}

// SearchAccounts matches the query case-insensitively against username and
// full name, excluding blocked accounts, capped at SearchResultLimit.
func (s *SocialGraphService) SearchAccounts(ctx context.Context, query string) ([]models.UserCompact, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("search query is required: %w", apperrors.ErrInvalidArgument)
	}

	users, err := s.users.SearchUsers(ctx, query, SearchResultLimit)
	if err != nil {
		return nil, err
	}

	results := make([]models.UserCompact, len(users))
	for i, u := range users {
		results[i] = u.ToCompact()
	}
	return results, nil
}

func (s *SocialGraphService) compactByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.UserCompact, error) {
	users, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	compacts := make([]models.UserCompact, len(users))
	for i, u := range users {
		compacts[i] = u.ToCompact()
	}
	return compacts, nil
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
