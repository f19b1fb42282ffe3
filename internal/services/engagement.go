package services

import (
	"context"
	"fmt"

	"github.com/connectly/backend/internal/apperrors"
	"github.com/connectly/backend/internal/models"
	"github.com/connectly/backend/internal/repositories"
	"github.com/connectly/backend/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EngagementService owns post and comment lifecycle and the toggle
// semantics of likes, shares and reports. Every create/delete path also
// maintains the denormalized back-references (user.posts, post.comments,
// comment.replies) so they never drift from the entity graph.
type EngagementService struct {
	posts    repositories.PostRepository
	comments repositories.CommentRepository
	users    repositories.UserRepository
	notifier *Notifier
	events   EventPublisher
}

// NewEngagementService creates a new EngagementService
func NewEngagementService(postRepo repositories.PostRepository, commentRepo repositories.CommentRepository, userRepo repositories.UserRepository, notifier *Notifier, events EventPublisher) *EngagementService {
	if events == nil {
		events = NopPublisher{}
	}
	return &EngagementService{
		posts:    postRepo,
		comments: commentRepo,
		users:    userRepo,
		notifier: notifier,
		events:   events,
	}
}

// visiblePost loads a post and hides soft-deleted ones behind ErrNotFound.
func (s *EngagementService) visiblePost(ctx context.Context, postID primitive.ObjectID) (*models.Post, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.IsDeleted {
		return nil, fmt.Errorf("post: %w", apperrors.ErrNotFound)
	}
	return post, nil
}

func (s *EngagementService) visibleComment(ctx context.Context, commentID primitive.ObjectID) (*models.Comment, error) {
	comment, err := s.comments.GetCommentByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.IsDeleted {
		return nil, fmt.Errorf("comment: %w", apperrors.ErrNotFound)
	}
	return comment, nil
}

// CreatePost persists a new post and appends its id to the author's posts list
func (s *EngagementService) CreatePost(ctx context.Context, authorID primitive.ObjectID, req models.CreatePostRequest) (*models.Post, error) {
	post := &models.Post{
		Author:   authorID,
		Content:  req.Content,
		Images:   req.Images,
		Videos:   req.Videos,
		Tags:     req.Tags,
		Location: req.Location,
	}

	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	if err := s.users.AddPostRef(ctx, authorID, post.ID); err != nil {
		return nil, err
	}

	logger.L().Info().Str("post", post.ID.Hex()).Str("author", authorID.Hex()).Msg("post created")
	return post, nil
}

// GetPost retrieves a single visible post
func (s *EngagementService) GetPost(ctx context.Context, postID primitive.ObjectID) (*models.Post, error) {
	return s.visiblePost(ctx, postID)
}

// ListPosts returns a page of all visible posts, newest first
func (s *EngagementService) ListPosts(ctx context.Context, page, pageSize int) ([]models.Post, models.Pagination, error) {
	skip := int64((page - 1) * pageSize)
	posts, total, err := s.posts.GetVisiblePosts(ctx, skip, int64(pageSize))
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return posts, models.NewPagination(page, pageSize, total), nil
}

// UpdatePost applies a partial update to a post owned by the actor. A
// missing, deleted or foreign post is reported as not found.
func (s *EngagementService) UpdatePost(ctx context.Context, actorID, postID primitive.ObjectID, req models.UpdatePostRequest) (*models.Post, error) {
	post, err := s.visiblePost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.Author != actorID {
		return nil, fmt.Errorf("post: %w", apperrors.ErrNotFound)
	}

	if req.Content != "" {
		post.Content = req.Content
	}
	if req.Images != nil {
		post.Images = req.Images
	}
	if req.Videos != nil {
		post.Videos = req.Videos
	}
	if req.Tags != nil {
		post.Tags = req.Tags
	}
	if req.Location != "" {
		post.Location = req.Location
	}

	if err := s.posts.UpdatePost(ctx, postID, post); err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost soft-deletes a post owned by the actor and removes it from the
// author's posts list. Comments stay in place but become unreachable
// through listings.
func (s *EngagementService) DeletePost(ctx context.Context, actorID, postID primitive.ObjectID) error {
	post, err := s.visiblePost(ctx, postID)
	if err != nil {
		return err
	}
	if post.Author != actorID {
		return fmt.Errorf("post: %w", apperrors.ErrNotFound)
	}

	if err := s.posts.SoftDeletePost(ctx, postID); err != nil {
		return err
	}
	if err := s.users.RemovePostRef(ctx, actorID, postID); err != nil {
		return err
	}

	logger.L().Info().Str("post", postID.Hex()).Str("author", actorID.Hex()).Msg("post deleted")
	return nil
}

// ToggleLike flips the actor's membership in the post's like set and
// returns the updated post and whether the post is now liked. A new like
// notifies the author; an unlike notifies nobody.
func (s *EngagementService) ToggleLike(ctx context.Context, actorID, postID primitive.ObjectID) (*models.Post, bool, error) {
	post, err := s.visiblePost(ctx, postID)
	if err != nil {
		return nil, false, err
	}

	if containsID(post.Likes, actorID) {
		updated, err := s.posts.RemoveLike(ctx, postID, actorID)
		if err != nil {
			return nil, false, err
		}
		logger.L().Info().Str("post", postID.Hex()).Str("actor", actorID.Hex()).Msg("post unliked")
		return updated, false, nil
	}

	updated, err := s.posts.AddLike(ctx, postID, actorID)
	if err != nil {
		return nil, false, err
	}
	logger.L().Info().Str("post", postID.Hex()).Str("actor", actorID.Hex()).Msg("post liked")

	if post.Author != actorID {
		actorName := s.username(ctx, actorID)
		s.notifier.Dispatch(ctx, post.Author, models.NotificationLike, actorID,
			actorName+" liked your post", NotificationRefs{Post: &postID})
	}
	s.events.Broadcast(EventPostLiked, map[string]string{
		"post_id": postID.Hex(),
		"user_id": actorID.Hex(),
	})
	return updated, true, nil
}

// SharePost records the actor in the post's share set. Unlike likes this is
// one-directional: a repeat call is a no-op, never a removal.
func (s *EngagementService) SharePost(ctx context.Context, actorID, postID primitive.ObjectID) (*models.Post, error) {
	if _, err := s.visiblePost(ctx, postID); err != nil {
		return nil, err
	}
	return s.posts.AddShare(ctx, postID, actorID)
}

// ReportPost marks the post reported. Only the very first transition
// increments the counter; later reports from any actor are no-ops that
// still return the stored count.
func (s *EngagementService) ReportPost(ctx context.Context, actorID, postID primitive.ObjectID) (int, error) {
	post, err := s.visiblePost(ctx, postID)
	if err != nil {
		return 0, err
	}

	counted, err := s.posts.MarkReported(ctx, postID)
	if err != nil {
		return 0, err
	}
	if counted {
		logger.L().Info().Str("post", postID.Hex()).Str("actor", actorID.Hex()).Msg("post reported")
		return post.ReportCount + 1, nil
	}
	return post.ReportCount, nil
}

// AddComment creates a comment on a post, either top-level or as a reply
// to an existing comment on the same post. The new id is appended to the
// post's comment list (top-level) or the parent's reply list (reply), and
// exactly one notification goes to the parent comment's author (reply) or
// the post's author (top-level), suppressed when the actor is the target.
func (s *EngagementService) AddComment(ctx context.Context, actorID, postID primitive.ObjectID, content string, parentCommentID *primitive.ObjectID) (*models.Comment, error) {
	post, err := s.visiblePost(ctx, postID)
	if err != nil {
		return nil, err
	}

	var parent *models.Comment
	if parentCommentID != nil {
		parent, err = s.visibleComment(ctx, *parentCommentID)
		if err != nil {
			return nil, err
		}
		if parent.Post != postID {
			return nil, fmt.Errorf("parent comment belongs to a different post: %w", apperrors.ErrNotFound)
		}
	}

	comment := &models.Comment{
		Post:          postID,
		Author:        actorID,
		Content:       content,
		ParentComment: parentCommentID,
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	actorName := s.username(ctx, actorID)
	if parent != nil {
		if err := s.comments.AddReplyRef(ctx, parent.ID, comment.ID); err != nil {
			return nil, err
		}
		s.notifier.Dispatch(ctx, parent.Author, models.NotificationComment, actorID,
			actorName+" replied to your comment", NotificationRefs{Post: &postID, Comment: &comment.ID})
	} else {
		if err := s.posts.AddCommentRef(ctx, postID, comment.ID); err != nil {
			return nil, err
		}
		s.notifier.Dispatch(ctx, post.Author, models.NotificationComment, actorID,
			actorName+" commented on your post", NotificationRefs{Post: &postID, Comment: &comment.ID})
	}

	s.events.Broadcast(EventPostCommented, map[string]string{
		"post_id": postID.Hex(),
		"user_id": actorID.Hex(),
	})
	logger.L().Info().Str("comment", comment.ID.Hex()).Str("post", postID.Hex()).Msg("comment added")
	return comment, nil
}

// ListComments returns a page of the post's top-level comments, newest first
func (s *EngagementService) ListComments(ctx context.Context, postID primitive.ObjectID, page, pageSize int) ([]models.Comment, models.Pagination, error) {
	if _, err := s.visiblePost(ctx, postID); err != nil {
		return nil, models.Pagination{}, err
	}

	skip := int64((page - 1) * pageSize)
	comments, total, err := s.comments.GetTopLevelByPost(ctx, postID, skip, int64(pageSize))
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return comments, models.NewPagination(page, pageSize, total), nil
}

// Replies returns the visible replies of a comment in display order
func (s *EngagementService) Replies(ctx context.Context, comment *models.Comment) ([]models.Comment, error) {
	return s.comments.GetCommentsByIDs(ctx, comment.Replies)
}

// UpdateComment replaces the body of a comment owned by the actor
func (s *EngagementService) UpdateComment(ctx context.Context, actorID, commentID primitive.ObjectID, content string) (*models.Comment, error) {
	comment, err := s.visibleComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.Author != actorID {
		return nil, fmt.Errorf("comment: %w", apperrors.ErrNotFound)
	}

	if err := s.comments.UpdateContent(ctx, commentID, content); err != nil {
		return nil, err
	}
	comment.Content = content
	return comment, nil
}

// DeleteComment soft-deletes a comment owned by the actor and detaches it
// from its parent's list: the post's top-level list for a top-level
// comment, the parent comment's reply list for a reply.
func (s *EngagementService) DeleteComment(ctx context.Context, actorID, commentID primitive.ObjectID) error {
	comment, err := s.visibleComment(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.Author != actorID {
		return fmt.Errorf("comment: %w", apperrors.ErrNotFound)
	}

	if err := s.comments.SoftDeleteComment(ctx, commentID); err != nil {
		return err
	}
	if comment.ParentComment != nil {
		return s.comments.RemoveReplyRef(ctx, *comment.ParentComment, commentID)
	}
	return s.posts.RemoveCommentRef(ctx, comment.Post, commentID)
}

// ToggleCommentLike flips the actor's membership in the comment's like set.
// Deliberately emits no notification, unlike post likes.
func (s *EngagementService) ToggleCommentLike(ctx context.Context, actorID, commentID primitive.ObjectID) (*models.Comment, bool, error) {
	comment, err := s.visibleComment(ctx, commentID)
	if err != nil {
		return nil, false, err
	}

	if containsID(comment.Likes, actorID) {
		updated, err := s.comments.RemoveLike(ctx, commentID, actorID)
		if err != nil {
			return nil, false, err
		}
		return updated, false, nil
	}

	updated, err := s.comments.AddLike(ctx, commentID, actorID)
	if err != nil {
		return nil, false, err
	}
	return updated, true, nil
}

// ReportComment mirrors ReportPost's first-transition-only counter
func (s *EngagementService) ReportComment(ctx context.Context, actorID, commentID primitive.ObjectID) (int, error) {
	comment, err := s.visibleComment(ctx, commentID)
	if err != nil {
		return 0, err
	}

	counted, err := s.comments.MarkReported(ctx, commentID)
	if err != nil {
		return 0, err
	}
	if counted {
		logger.L().Info().Str("comment", commentID.Hex()).Str("actor", actorID.Hex()).Msg("comment reported")
		return comment.ReportCount + 1, nil
	}
	return comment.ReportCount, nil
}

// username resolves an actor's display handle for notification text. An
// unresolvable actor degrades to "Someone" rather than failing the action.
func (s *EngagementService) username(ctx context.Context, id primitive.ObjectID) string {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return "Someone"
	}
	return user.Username
}
