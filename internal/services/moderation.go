package services

import (
	"context"
	"fmt"
	"time"

	"github.com/connectly/backend/internal/apperrors"
	"github.com/connectly/backend/internal/models"
	"github.com/connectly/backend/internal/repositories"
	"github.com/connectly/backend/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Entity kind discriminators for moderation actions.
const (
	KindPost    = "post"
	KindComment = "comment"
)

// ModerationService is the thin administrative layer over the same
// entities: reported listings, removal, report dismissal, account blocking
// and windowed analytics.
type ModerationService struct {
	users    repositories.UserRepository
	posts    repositories.PostRepository
	comments repositories.CommentRepository
}

// NewModerationService creates a new ModerationService
func NewModerationService(userRepo repositories.UserRepository, postRepo repositories.PostRepository, commentRepo repositories.CommentRepository) *ModerationService {
	return &ModerationService{users: userRepo, posts: postRepo, comments: commentRepo}
}

// ListReportedPosts returns a page of reported posts, most reported first
func (s *ModerationService) ListReportedPosts(ctx context.Context, page, pageSize int) ([]models.Post, models.Pagination, error) {
	skip := int64((page - 1) * pageSize)
	posts, total, err := s.posts.GetReportedPosts(ctx, skip, int64(pageSize))
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return posts, models.NewPagination(page, pageSize, total), nil
}

// ListReportedComments returns a page of reported comments, most reported first
func (s *ModerationService) ListReportedComments(ctx context.Context, page, pageSize int) ([]models.Comment, models.Pagination, error) {
	skip := int64((page - 1) * pageSize)
	comments, total, err := s.comments.GetReportedComments(ctx, skip, int64(pageSize))
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return comments, models.NewPagination(page, pageSize, total), nil
}

// RemovePost soft-deletes any post and detaches it from its author's list
func (s *ModerationService) RemovePost(ctx context.Context, postID primitive.ObjectID) error {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.IsDeleted {
		return fmt.Errorf("post: %w", apperrors.ErrNotFound)
	}

	if err := s.posts.SoftDeletePost(ctx, postID); err != nil {
		return err
	}
	if err := s.users.RemovePostRef(ctx, post.Author, postID); err != nil {
		return err
	}

	logger.L().Info().Str("post", postID.Hex()).Msg("post removed by moderator")
	return nil
}

// RemoveComment soft-deletes any comment and detaches it from its parent's list
func (s *ModerationService) RemoveComment(ctx context.Context, commentID primitive.ObjectID) error {
	comment, err := s.comments.GetCommentByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.IsDeleted {
		return fmt.Errorf("comment: %w", apperrors.ErrNotFound)
	}

	if err := s.comments.SoftDeleteComment(ctx, commentID); err != nil {
		return err
	}
	if comment.ParentComment != nil {
		if err := s.comments.RemoveReplyRef(ctx, *comment.ParentComment, commentID); err != nil {
			return err
		}
	} else if err := s.posts.RemoveCommentRef(ctx, comment.Post, commentID); err != nil {
		return err
	}

	logger.L().Info().Str("comment", commentID.Hex()).Msg("comment removed by moderator")
	return nil
}

// DismissReport clears the reported flag and resets the counter on the
// given entity kind.
func (s *ModerationService) DismissReport(ctx context.Context, kind string, id primitive.ObjectID) error {
	switch kind {
	case KindPost:
		return s.posts.DismissReport(ctx, id)
	case KindComment:
		return s.comments.DismissReport(ctx, id)
	default:
		return fmt.Errorf("unknown entity kind %q: %w", kind, apperrors.ErrInvalidOperation)
	}
}

// BlockAccount sets the account's blocked flag
func (s *ModerationService) BlockAccount(ctx context.Context, id primitive.ObjectID) error {
	if err := s.users.SetBlocked(ctx, id, true); err != nil {
		return err
	}
	logger.L().Info().Str("user", id.Hex()).Msg("account blocked")
	return nil
}

// UnblockAccount clears the account's blocked flag
func (s *ModerationService) UnblockAccount(ctx context.Context, id primitive.ObjectID) error {
	if err := s.users.SetBlocked(ctx, id, false); err != nil {
		return err
	}
	logger.L().Info().Str("user", id.Hex()).Msg("account unblocked")
	return nil
}

// ListAccounts returns a page of accounts matching the admin filter
func (s *ModerationService) ListAccounts(ctx context.Context, filter repositories.UserFilter, page, pageSize int) ([]models.User, models.Pagination, error) {
	skip := int64((page - 1) * pageSize)
	users, total, err := s.users.ListUsers(ctx, filter, skip, int64(pageSize))
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return users, models.NewPagination(page, pageSize, total), nil
}

// periodWindow maps a period token to its start time; unknown tokens fall
// back to seven days.
func periodWindow(period string, now time.Time) (string, time.Time) {
	switch period {
	case "1d":
		return period, now.AddDate(0, 0, -1)
	case "7d":
		return period, now.AddDate(0, 0, -7)
	case "30d":
		return period, now.AddDate(0, 0, -30)
	case "90d":
		return period, now.AddDate(0, 0, -90)
	default:
		return "7d", now.AddDate(0, 0, -7)
	}
}

// Analytics computes the platform counts over the requested window. A pure
// function of the window over the persisted collections; nothing is cached.
func (s *ModerationService) Analytics(ctx context.Context, period string) (*models.AnalyticsReport, error) {
	period, since := periodWindow(period, time.Now())

	report := &models.AnalyticsReport{Period: period}
	var err error

	if report.Users.Total, err = s.users.CountUsers(ctx); err != nil {
		return nil, err
	}
	if report.Users.New, err = s.users.CountUsersSince(ctx, since); err != nil {
		return nil, err
	}
	if report.Users.Blocked, err = s.users.CountBlockedUsers(ctx); err != nil {
		return nil, err
	}
	if report.Users.Active, err = s.posts.CountActiveAuthorsSince(ctx, since); err != nil {
		return nil, err
	}

	if report.Posts.Total, err = s.posts.CountPosts(ctx); err != nil {
		return nil, err
	}
	if report.Posts.New, err = s.posts.CountPostsSince(ctx, since); err != nil {
		return nil, err
	}
	if report.Posts.Reported, err = s.posts.CountReportedPosts(ctx); err != nil {
		return nil, err
	}
	if report.Posts.WithLikes, err = s.posts.CountPostsWithLikes(ctx); err != nil {
		return nil, err
	}

	if report.Comments.Total, err = s.comments.CountComments(ctx); err != nil {
		return nil, err
	}
	if report.Comments.New, err = s.comments.CountCommentsSince(ctx, since); err != nil {
		return nil, err
	}
	if report.Comments.Reported, err = s.comments.CountReportedComments(ctx); err != nil {
		return nil, err
	}

	if report.Engagement.TotalLikes, err = s.posts.TotalLikes(ctx); err != nil {
		return nil, err
	}
	if report.Posts.Total > 0 {
		report.Engagement.AverageLikesPerPost = float64(report.Engagement.TotalLikes) / float64(report.Posts.Total)
	}
	return report, nil
}
