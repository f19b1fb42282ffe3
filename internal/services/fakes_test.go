package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/connectly/backend/internal/apperrors"
	"github.com/connectly/backend/internal/models"
	"github.com/connectly/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes. They reproduce the store's observable
// behavior (set semantics, soft-delete filtering, newest-first ordering)
// without a running database.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User

	addFollowerErr    error
	removeFollowerErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*models.User)}
}

func (r *fakeUserRepo) CreateUser(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user: %w", apperrors.ErrNotFound)
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("user: %w", apperrors.ErrNotFound)
}

func (r *fakeUserRepo) GetUserByUsernameOrEmail(_ context.Context, username, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username || u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("user: %w", apperrors.ErrNotFound)
}

func (r *fakeUserRepo) GetUserByFirebaseUID(_ context.Context, uid string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.FirebaseUID == uid {
			copied := *u
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("user: %w", apperrors.ErrNotFound)
}

func (r *fakeUserRepo) GetUsersByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, id primitive.ObjectID, update repositories.ProfileUpdate) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user: %w", apperrors.ErrNotFound)
	}
	if update.FullName != "" {
		user.FullName = update.FullName
	}
	if update.Bio != "" {
		user.Bio = update.Bio
	}
	if update.ProfilePicture != "" {
		user.ProfilePicture = update.ProfilePicture
	}
	if update.CoverPicture != "" {
		user.CoverPicture = update.CoverPicture
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) SetLastActive(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[id]; ok {
		user.LastActive = time.Now()
	}
	return nil
}

func addToSet(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

func pull(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := ids[:0]
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}

func (r *fakeUserRepo) AddFollower(_ context.Context, userID, followerID primitive.ObjectID) error {
	if r.addFollowerErr != nil {
		return r.addFollowerErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("user: %w", apperrors.ErrNotFound)
	}
	user.Followers = addToSet(user.Followers, followerID)
	return nil
}

func (r *fakeUserRepo) RemoveFollower(_ context.Context, userID, followerID primitive.ObjectID) error {
	if r.removeFollowerErr != nil {
		return r.removeFollowerErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("user: %w", apperrors.ErrNotFound)
	}
	user.Followers = pull(user.Followers, followerID)
	return nil
}

func (r *fakeUserRepo) AddFollowing(_ context.Context, userID, followingID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("user: %w", apperrors.ErrNotFound)
	}
	user.Following = addToSet(user.Following, followingID)
	return nil
}

func (r *fakeUserRepo) RemoveFollowing(_ context.Context, userID, followingID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("user: %w", apperrors.ErrNotFound)
	}
	user.Following = pull(user.Following, followingID)
	return nil
}

func (r *fakeUserRepo) AddPostRef(_ context.Context, userID, postID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("user: %w", apperrors.ErrNotFound)
	}
	user.Posts = append(user.Posts, postID)
	return nil
}

func (r *fakeUserRepo) RemovePostRef(_ context.Context, userID, postID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("user: %w", apperrors.ErrNotFound)
	}
	user.Posts = pull(user.Posts, postID)
	return nil
}

func (r *fakeUserRepo) SetBlocked(_ context.Context, id primitive.ObjectID, blocked bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return fmt.Errorf("user: %w", apperrors.ErrNotFound)
	}
	user.IsBlocked = blocked
	return nil
}

func (r *fakeUserRepo) SearchUsers(_ context.Context, query string, limit int64) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	query = strings.ToLower(query)
	var out []models.User
	for _, u := range r.users {
		if u.IsBlocked {
			continue
		}
		if strings.Contains(strings.ToLower(u.Username), query) || strings.Contains(strings.ToLower(u.FullName), query) {
			out = append(out, *u)
		}
		if int64(len(out)) >= limit {
			break
		}
	}
	return out, nil
}

func (r *fakeUserRepo) ListUsers(_ context.Context, filter repositories.UserFilter, skip, limit int64) ([]models.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.User
	for _, u := range r.users {
		if filter.Blocked != nil && u.IsBlocked != *filter.Blocked {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(u.Username), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, *u)
	}
	total := int64(len(out))
	if skip >= total {
		return nil, total, nil
	}
	out = out[skip:]
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, total, nil
}

func (r *fakeUserRepo) CountUsers(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

func (r *fakeUserRepo) CountUsersSince(_ context.Context, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, u := range r.users {
		if u.CreatedAt.After(since) {
			n++
		}
	}
	return n, nil
}

func (r *fakeUserRepo) CountBlockedUsers(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, u := range r.users {
		if u.IsBlocked {
			n++
		}
	}
	return n, nil
}

type fakePostRepo struct {
	mu    sync.Mutex
	posts map[primitive.ObjectID]*models.Post
	seq   int
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: make(map[primitive.ObjectID]*models.Post)}
}

func (r *fakePostRepo) CreatePost(_ context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	r.seq++
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().Add(time.Duration(r.seq) * time.Millisecond)
	}
	if post.Likes == nil {
		post.Likes = []primitive.ObjectID{}
	}
	if post.Shares == nil {
		post.Shares = []primitive.ObjectID{}
	}
	if post.Comments == nil {
		post.Comments = []primitive.ObjectID{}
	}
	r.posts[post.ID] = post
	return nil
}

func (r *fakePostRepo) GetPostByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok {
		return nil, fmt.Errorf("post: %w", apperrors.ErrNotFound)
	}
	copied := *post
	return &copied, nil
}

func (r *fakePostRepo) GetPostsByAuthor(_ context.Context, author primitive.ObjectID) ([]models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Post
	for _, p := range r.posts {
		if p.Author == author && !p.IsDeleted {
			out = append(out, *p)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func sortNewestFirst(posts []models.Post) {
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID.Hex() > posts[j].ID.Hex()
	})
}

func (r *fakePostRepo) GetVisiblePosts(_ context.Context, skip, limit int64) ([]models.Post, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Post
	for _, p := range r.posts {
		if !p.IsDeleted {
			out = append(out, *p)
		}
	}
	sortNewestFirst(out)
	return paginatePosts(out, skip, limit)
}

func (r *fakePostRepo) GetFeedPosts(_ context.Context, authors []primitive.ObjectID, skip, limit int64) ([]models.Post, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	allowed := make(map[primitive.ObjectID]struct{}, len(authors))
	for _, a := range authors {
		allowed[a] = struct{}{}
	}
	var out []models.Post
	for _, p := range r.posts {
		if _, ok := allowed[p.Author]; ok && !p.IsDeleted {
			out = append(out, *p)
		}
	}
	sortNewestFirst(out)
	return paginatePosts(out, skip, limit)
}

func paginatePosts(posts []models.Post, skip, limit int64) ([]models.Post, int64, error) {
	total := int64(len(posts))
	if skip >= total {
		return nil, total, nil
	}
	posts = posts[skip:]
	if int64(len(posts)) > limit {
		posts = posts[:limit]
	}
	return posts, total, nil
}

func (r *fakePostRepo) UpdatePost(_ context.Context, id primitive.ObjectID, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return fmt.Errorf("post: %w", apperrors.ErrNotFound)
	}
	copied := *post
	copied.ID = id
	r.posts[id] = &copied
	return nil
}

func (r *fakePostRepo) SoftDeletePost(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok {
		return fmt.Errorf("post: %w", apperrors.ErrNotFound)
	}
	post.IsDeleted = true
	return nil
}

func (r *fakePostRepo) AddLike(_ context.Context, postID, userID primitive.ObjectID) (*models.Post, error) {
	return r.mutateVisible(postID, func(p *models.Post) { p.Likes = addToSet(p.Likes, userID) })
}

func (r *fakePostRepo) RemoveLike(_ context.Context, postID, userID primitive.ObjectID) (*models.Post, error) {
	return r.mutateVisible(postID, func(p *models.Post) { p.Likes = pull(p.Likes, userID) })
}

func (r *fakePostRepo) AddShare(_ context.Context, postID, userID primitive.ObjectID) (*models.Post, error) {
	return r.mutateVisible(postID, func(p *models.Post) { p.Shares = addToSet(p.Shares, userID) })
}

func (r *fakePostRepo) mutateVisible(postID primitive.ObjectID, mutate func(*models.Post)) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[postID]
	if !ok || post.IsDeleted {
		return nil, fmt.Errorf("post: %w", apperrors.ErrNotFound)
	}
	mutate(post)
	copied := *post
	return &copied, nil
}

func (r *fakePostRepo) AddCommentRef(_ context.Context, postID, commentID primitive.ObjectID) error {
	_, err := r.mutateVisible(postID, func(p *models.Post) { p.Comments = append(p.Comments, commentID) })
	return err
}

func (r *fakePostRepo) RemoveCommentRef(_ context.Context, postID, commentID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[postID]
	if !ok {
		return fmt.Errorf("post: %w", apperrors.ErrNotFound)
	}
	post.Comments = pull(post.Comments, commentID)
	return nil
}

func (r *fakePostRepo) MarkReported(_ context.Context, id primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok {
		return false, fmt.Errorf("post: %w", apperrors.ErrNotFound)
	}
	if post.IsReported {
		return false, nil
	}
	post.IsReported = true
	post.ReportCount++
	return true, nil
}

func (r *fakePostRepo) DismissReport(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok {
		return fmt.Errorf("post: %w", apperrors.ErrNotFound)
	}
	post.IsReported = false
	post.ReportCount = 0
	return nil
}

func (r *fakePostRepo) GetReportedPosts(_ context.Context, skip, limit int64) ([]models.Post, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Post
	for _, p := range r.posts {
		if p.IsReported && !p.IsDeleted {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReportCount > out[j].ReportCount })
	return paginatePosts(out, skip, limit)
}

func (r *fakePostRepo) CountPosts(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, p := range r.posts {
		if !p.IsDeleted {
			n++
		}
	}
	return n, nil
}

func (r *fakePostRepo) CountPostsSince(_ context.Context, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, p := range r.posts {
		if !p.IsDeleted && p.CreatedAt.After(since) {
			n++
		}
	}
	return n, nil
}

func (r *fakePostRepo) CountReportedPosts(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, p := range r.posts {
		if p.IsReported && !p.IsDeleted {
			n++
		}
	}
	return n, nil
}

func (r *fakePostRepo) CountPostsWithLikes(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, p := range r.posts {
		if !p.IsDeleted && len(p.Likes) > 0 {
			n++
		}
	}
	return n, nil
}

func (r *fakePostRepo) TotalLikes(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, p := range r.posts {
		if !p.IsDeleted {
			n += int64(len(p.Likes))
		}
	}
	return n, nil
}

func (r *fakePostRepo) CountActiveAuthorsSince(_ context.Context, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	authors := make(map[primitive.ObjectID]struct{})
	for _, p := range r.posts {
		if !p.IsDeleted && p.CreatedAt.After(since) {
			authors[p.Author] = struct{}{}
		}
	}
	return int64(len(authors)), nil
}

type fakeCommentRepo struct {
	mu       sync.Mutex
	comments map[primitive.ObjectID]*models.Comment
	seq      int
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: make(map[primitive.ObjectID]*models.Comment)}
}

func (r *fakeCommentRepo) CreateComment(_ context.Context, comment *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}
	r.seq++
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().Add(time.Duration(r.seq) * time.Millisecond)
	}
	if comment.Likes == nil {
		comment.Likes = []primitive.ObjectID{}
	}
	if comment.Replies == nil {
		comment.Replies = []primitive.ObjectID{}
	}
	r.comments[comment.ID] = comment
	return nil
}

func (r *fakeCommentRepo) GetCommentByID(_ context.Context, id primitive.ObjectID) (*models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	comment, ok := r.comments[id]
	if !ok {
		return nil, fmt.Errorf("comment: %w", apperrors.ErrNotFound)
	}
	copied := *comment
	return &copied, nil
}

func (r *fakeCommentRepo) GetCommentsByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Comment
	for _, id := range ids {
		if c, ok := r.comments[id]; ok && !c.IsDeleted {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeCommentRepo) GetTopLevelByPost(_ context.Context, postID primitive.ObjectID, skip, limit int64) ([]models.Comment, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Comment
	for _, c := range r.comments {
		if c.Post == postID && c.ParentComment == nil && !c.IsDeleted {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := int64(len(out))
	if skip >= total {
		return nil, total, nil
	}
	out = out[skip:]
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, total, nil
}

func (r *fakeCommentRepo) UpdateContent(_ context.Context, id primitive.ObjectID, content string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	comment, ok := r.comments[id]
	if !ok {
		return fmt.Errorf("comment: %w", apperrors.ErrNotFound)
	}
	comment.Content = content
	return nil
}

func (r *fakeCommentRepo) SoftDeleteComment(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	comment, ok := r.comments[id]
	if !ok {
		return fmt.Errorf("comment: %w", apperrors.ErrNotFound)
	}
	comment.IsDeleted = true
	return nil
}

func (r *fakeCommentRepo) AddLike(_ context.Context, commentID, userID primitive.ObjectID) (*models.Comment, error) {
	return r.mutate(commentID, func(c *models.Comment) { c.Likes = addToSet(c.Likes, userID) })
}

func (r *fakeCommentRepo) RemoveLike(_ context.Context, commentID, userID primitive.ObjectID) (*models.Comment, error) {
	return r.mutate(commentID, func(c *models.Comment) { c.Likes = pull(c.Likes, userID) })
}

func (r *fakeCommentRepo) mutate(commentID primitive.ObjectID, mutate func(*models.Comment)) (*models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	comment, ok := r.comments[commentID]
	if !ok || comment.IsDeleted {
		return nil, fmt.Errorf("comment: %w", apperrors.ErrNotFound)
	}
	mutate(comment)
	copied := *comment
	return &copied, nil
}

func (r *fakeCommentRepo) AddReplyRef(_ context.Context, parentID, replyID primitive.ObjectID) error {
	_, err := r.mutate(parentID, func(c *models.Comment) { c.Replies = append(c.Replies, replyID) })
	return err
}

func (r *fakeCommentRepo) RemoveReplyRef(_ context.Context, parentID, replyID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	comment, ok := r.comments[parentID]
	if !ok {
		return fmt.Errorf("comment: %w", apperrors.ErrNotFound)
	}
	comment.Replies = pull(comment.Replies, replyID)
	return nil
}

func (r *fakeCommentRepo) MarkReported(_ context.Context, id primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	comment, ok := r.comments[id]
	if !ok {
		return false, fmt.Errorf("comment: %w", apperrors.ErrNotFound)
	}
	if comment.IsReported {
		return false, nil
	}
	comment.IsReported = true
	comment.ReportCount++
	return true, nil
}

func (r *fakeCommentRepo) DismissReport(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	comment, ok := r.comments[id]
	if !ok {
		return fmt.Errorf("comment: %w", apperrors.ErrNotFound)
	}
	comment.IsReported = false
	comment.ReportCount = 0
	return nil
}

func (r *fakeCommentRepo) GetReportedComments(_ context.Context, skip, limit int64) ([]models.Comment, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Comment
	for _, c := range r.comments {
		if c.IsReported && !c.IsDeleted {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReportCount > out[j].ReportCount })
	total := int64(len(out))
	if skip >= total {
		return nil, total, nil
	}
	out = out[skip:]
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, total, nil
}

func (r *fakeCommentRepo) CountComments(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, c := range r.comments {
		if !c.IsDeleted {
			n++
		}
	}
	return n, nil
}

func (r *fakeCommentRepo) CountCommentsSince(_ context.Context, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, c := range r.comments {
		if !c.IsDeleted && c.CreatedAt.After(since) {
			n++
		}
	}
	return n, nil
}

func (r *fakeCommentRepo) CountReportedComments(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, c := range r.comments {
		if c.IsReported && !c.IsDeleted {
			n++
		}
	}
	return n, nil
}

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications []*models.Notification
	createErr     error
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{}
}

func (r *fakeNotificationRepo) CreateNotification(_ context.Context, notification *models.Notification) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if notification.ID.IsZero() {
		notification.ID = primitive.NewObjectID()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}
	r.notifications = append(r.notifications, notification)
	return nil
}

func (r *fakeNotificationRepo) GetByRecipient(_ context.Context, userID primitive.ObjectID, skip, limit int64) ([]models.Notification, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Notification
	for _, n := range r.notifications {
		if n.User == userID {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := int64(len(out))
	if skip >= total {
		return nil, total, nil
	}
	out = out[skip:]
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, total, nil
}

func (r *fakeNotificationRepo) CountUnread(_ context.Context, userID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, notification := range r.notifications {
		if notification.User == userID && !notification.IsRead {
			n++
		}
	}
	return n, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, id, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.ID == id && n.User == userID {
			n.IsRead = true
			now := time.Now()
			n.ReadAt = &now
			return nil
		}
	}
	return fmt.Errorf("notification: %w", apperrors.ErrNotFound)
}

func (r *fakeNotificationRepo) MarkAllRead(_ context.Context, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.User == userID && !n.IsRead {
			n.IsRead = true
			now := time.Now()
			n.ReadAt = &now
		}
	}
	return nil
}

func (r *fakeNotificationRepo) DeleteNotification(_ context.Context, id, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, n := range r.notifications {
		if n.ID == id && n.User == userID {
			r.notifications = append(r.notifications[:i], r.notifications[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("notification: %w", apperrors.ErrNotFound)
}

func (r *fakeNotificationRepo) forRecipient(userID primitive.ObjectID) []*models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Notification
	for _, n := range r.notifications {
		if n.User == userID {
			out = append(out, n)
		}
	}
	return out
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages []*models.Message
	seq      int
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{}
}

func (r *fakeMessageRepo) CreateMessage(_ context.Context, message *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if message.ID.IsZero() {
		message.ID = primitive.NewObjectID()
	}
	r.seq++
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().Add(time.Duration(r.seq) * time.Millisecond)
	}
	if message.MessageType == "" {
		message.MessageType = models.MessageTypeText
	}
	r.messages = append(r.messages, message)
	return nil
}

func (r *fakeMessageRepo) GetConversation(_ context.Context, a, b primitive.ObjectID, skip, limit int64) ([]models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Message
	for _, m := range r.messages {
		if m.IsDeleted {
			continue
		}
		if (m.Sender == a && m.Receiver == b) || (m.Sender == b && m.Receiver == a) {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if skip >= int64(len(out)) {
		return nil, nil
	}
	out = out[skip:]
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeMessageRepo) MarkConversationRead(_ context.Context, sender, receiver primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.Sender == sender && m.Receiver == receiver && !m.IsRead {
			m.IsRead = true
			now := time.Now()
			m.ReadAt = &now
		}
	}
	return nil
}

func (r *fakeMessageRepo) SoftDeleteMessage(_ context.Context, id, sender primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.ID == id && m.Sender == sender {
			m.IsDeleted = true
			return nil
		}
	}
	return fmt.Errorf("message: %w", apperrors.ErrNotFound)
}

func (r *fakeMessageRepo) GetConversations(_ context.Context, userID primitive.ObjectID) ([]models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	latest := make(map[primitive.ObjectID]*models.Message)
	unread := make(map[primitive.ObjectID]int)
	for _, m := range r.messages {
		if m.IsDeleted {
			continue
		}
		var peer primitive.ObjectID
		switch {
		case m.Sender == userID:
			peer = m.Receiver
		case m.Receiver == userID:
			peer = m.Sender
		default:
			continue
		}
		if current, ok := latest[peer]; !ok || m.CreatedAt.After(current.CreatedAt) {
			latest[peer] = m
		}
		if m.Receiver == userID && !m.IsRead {
			unread[peer]++
		}
	}
	var out []models.Conversation
	for peer, m := range latest {
		out = append(out, models.Conversation{
			Peer:        models.UserCompact{ID: peer},
			LastMessage: *m,
			UnreadCount: unread[peer],
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastMessage.CreatedAt.After(out[j].LastMessage.CreatedAt)
	})
	return out, nil
}

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	direct []publishedEvent
	global []publishedEvent
}

type publishedEvent struct {
	AccountID string
	Event     string
	Payload   any
}

func (p *recordingPublisher) PublishTo(accountID, event string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.direct = append(p.direct, publishedEvent{AccountID: accountID, Event: event, Payload: payload})
}

func (p *recordingPublisher) Broadcast(event string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.global = append(p.global, publishedEvent{Event: event, Payload: payload})
}

func (p *recordingPublisher) directEvents(event string) []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []publishedEvent
	for _, e := range p.direct {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}
