package post

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/dultive/dultive-api/internal/domain"
	"github.com/dultive/dultive-api/internal/infrastructure/sns"
	"github.com/dultive/dultive-api/internal/pkg/id"
	"github.com/dultive/dultive-api/internal/pkg/validate"
	"github.com/microcosm-cc/bluemonday"
)

// completionPoints is awarded to the donor when a hand-off completes.
const completionPoints = 10

// sanitizer strips all markup from user-authored text before it is persisted.
var sanitizer = bluemonday.StrictPolicy()

type Service interface {
	// CreatePost validates, sanitizes and persists a new post. Company
	// accounts may only create donation posts.
	CreatePost(ctx context.Context, authorID, userType string, req domain.CreatePostRequest) (*domain.Post, error)
	// Feed lists active posts newest first, hydrated with author snippets and
	// the viewer's like state. viewerID may be empty for anonymous browsing.
	Feed(ctx context.Context, viewerID string, filter domain.PostFilter) ([]domain.Post, error)
	// MyPosts lists every post by the author, including soft-deleted ones.
	MyPosts(ctx context.Context, authorID string) ([]domain.Post, error)
	GetPost(ctx context.Context, postID, viewerID string) (*domain.Post, error)
	// DeletePost soft-deletes. Only the author may delete.
	DeletePost(ctx context.Context, postID, userID string) error
	// ToggleLike flips the viewer's like on a post and returns the new state
	// plus the updated counter.
	ToggleLike(ctx context.Context, postID, userID string) (bool, int, error)

	// CreateInteraction opens a pending hand-off between the caller and the
	// post's author.
	CreateInteraction(ctx context.Context, postID, userID string) (*domain.Interaction, error)
	// UpdateInteractionStatus advances a hand-off. Only its participants may,
	// and only forward: pending -> confirmed -> completed. Completion awards
	// points to the donor.
	UpdateInteractionStatus(ctx context.Context, interactionID, userID, status string) (*domain.Interaction, error)
	// PostInteractions lists the hand-offs on a post. Author only.
	PostInteractions(ctx context.Context, postID, userID string) ([]domain.Interaction, error)
}

type postStore interface {
	Put(ctx context.Context, p *domain.Post) error
	Get(ctx context.Context, postID string) (*domain.Post, error)
	Update(ctx context.Context, postID string, updates map[string]interface{}) error
	AddLikes(ctx context.Context, postID string, delta int) (int, error)
	ScanActive(ctx context.Context) ([]domain.Post, error)
	QueryByAuthor(ctx context.Context, authorID string) ([]domain.Post, error)
}

type likeStore interface {
	Put(ctx context.Context, l *domain.Like) error
	Get(ctx context.Context, postID, userID string) (*domain.Like, error)
	Delete(ctx context.Context, postID, userID string) error
}

type interactionStore interface {
	Put(ctx context.Context, i *domain.Interaction) error
	Get(ctx context.Context, interactionID string) (*domain.Interaction, error)
	Update(ctx context.Context, interactionID string, updates map[string]interface{}) error
	QueryByPost(ctx context.Context, postID string) ([]domain.Interaction, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	AddPoints(ctx context.Context, userID string, delta int) error
}

type imageStore interface {
	UploadBase64(ctx context.Context, key, payload string) (string, error)
}

type service struct {
	postRepo        postStore
	likeRepo        likeStore
	interactionRepo interactionStore
	userRepo        userStore
	images          imageStore
	events          sns.Publisher
}

type ServiceDeps struct {
	PostRepo        postStore
	LikeRepo        likeStore
	InteractionRepo interactionStore
	UserRepo        userStore
	ImageStore      imageStore
	Events          sns.Publisher
}

func NewService(deps ServiceDeps) Service {
	return &service{
		postRepo:        deps.PostRepo,
		likeRepo:        deps.LikeRepo,
		interactionRepo: deps.InteractionRepo,
		userRepo:        deps.UserRepo,
		images:          deps.ImageStore,
		events:          deps.Events,
	}
}

func (s *service) CreatePost(ctx context.Context, authorID, userType string, req domain.CreatePostRequest) (*domain.Post, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}
	if req.PostType != domain.PostTypeDonation && req.PostType != domain.PostTypeHelpRequest {
		return nil, fmt.Errorf("invalid post type: %w", domain.ErrBadRequest)
	}
	if userType == domain.UserTypeCompany && req.PostType != domain.PostTypeDonation {
		return nil, fmt.Errorf("companies can only create donation posts: %w", domain.ErrForbidden)
	}
	if !slices.Contains(domain.PostCategories, req.Category) {
		return nil, fmt.Errorf("invalid category: %w", domain.ErrBadRequest)
	}

	now := time.Now().UTC()
	p := &domain.Post{
		PostID:      id.New(),
		AuthorID:    authorID,
		PostType:    req.PostType,
		Title:       sanitizer.Sanitize(strings.TrimSpace(req.Title)),
		Description: sanitizer.Sanitize(strings.TrimSpace(req.Description)),
		Category:    req.Category,
		Location:    req.Location,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, tag := range req.Tags {
		if clean := sanitizer.Sanitize(strings.TrimSpace(tag)); clean != "" {
			p.Tags = append(p.Tags, clean)
		}
	}
	for i, img := range req.Images {
		key := fmt.Sprintf("posts/%s/%d", p.PostID, i)
		url, err := s.images.UploadBase64(ctx, key, img)
		if err != nil {
			return nil, fmt.Errorf("upload post image: %w", err)
		}
		p.Images = append(p.Images, url)
	}

	if err := s.postRepo.Put(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) Feed(ctx context.Context, viewerID string, filter domain.PostFilter) ([]domain.Post, error) {
	posts, err := s.postRepo.ScanActive(ctx)
	if err != nil {
		return nil, err
	}

	filtered := posts[:0]
	for _, p := range posts {
		if matchesFilter(&p, filter) {
			filtered = append(filtered, p)
		}
	}
	posts = filtered

	authors := map[string]*domain.PostAuthor{}
	for i := range posts {
		p := &posts[i]
		author, ok := authors[p.AuthorID]
		if !ok {
			author = s.authorSnippet(ctx, p.AuthorID)
			authors[p.AuthorID] = author
		}
		p.Author = author
		if viewerID != "" {
			if _, err := s.likeRepo.Get(ctx, p.PostID, viewerID); err == nil {
				p.IsLiked = true
			}
		}
	}
	return posts, nil
}

func (s *service) MyPosts(ctx context.Context, authorID string) ([]domain.Post, error) {
	return s.postRepo.QueryByAuthor(ctx, authorID)
}

func (s *service) GetPost(ctx context.Context, postID, viewerID string) (*domain.Post, error) {
	p, err := s.postRepo.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	p.Author = s.authorSnippet(ctx, p.AuthorID)
	if viewerID != "" {
		if _, err := s.likeRepo.Get(ctx, p.PostID, viewerID); err == nil {
			p.IsLiked = true
		}
	}
	return p, nil
}

func (s *service) DeletePost(ctx context.Context, postID, userID string) error {
	p, err := s.postRepo.Get(ctx, postID)
	if err != nil {
		return err
	}
	if p.AuthorID != userID {
		return fmt.Errorf("only the author can delete a post: %w", domain.ErrForbidden)
	}
	return s.postRepo.Update(ctx, postID, map[string]interface{}{"is_active": false})
}

func (s *service) ToggleLike(ctx context.Context, postID, userID string) (bool, int, error) {
	p, err := s.postRepo.Get(ctx, postID)
	if err != nil {
		return false, 0, err
	}
	if !p.IsActive {
		return false, 0, fmt.Errorf("post not found: %w", domain.ErrNotFound)
	}

	if _, err := s.likeRepo.Get(ctx, postID, userID); err == nil {
		if err := s.likeRepo.Delete(ctx, postID, userID); err != nil {
			return false, 0, err
		}
		count, err := s.postRepo.AddLikes(ctx, postID, -1)
		if err != nil {
			return false, 0, err
		}
		return false, count, nil
	}

	if err := s.likeRepo.Put(ctx, &domain.Like{
		PostID:    postID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		return false, 0, err
	}
	count, err := s.postRepo.AddLikes(ctx, postID, 1)
	if err != nil {
		return false, 0, err
	}
	if p.AuthorID != userID {
		s.publish(ctx, sns.Event{
			Type:        sns.EventPostLiked,
			RecipientID: p.AuthorID,
			PostID:      postID,
			Message:     "Someone liked your post",
		})
	}
	return true, count, nil
}

func (s *service) CreateInteraction(ctx context.Context, postID, userID string) (*domain.Interaction, error) {
	p, err := s.postRepo.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, fmt.Errorf("post not found: %w", domain.ErrNotFound)
	}
	if p.AuthorID == userID {
		return nil, fmt.Errorf("cannot open a hand-off on your own post: %w", domain.ErrBadRequest)
	}

	// On a donation post the author gives and the caller receives. On a help
	// request it is the other way around.
	donorID, recipientID := p.AuthorID, userID
	if p.PostType == domain.PostTypeHelpRequest {
		donorID, recipientID = userID, p.AuthorID
	}

	now := time.Now().UTC()
	i := &domain.Interaction{
		InteractionID: id.New(),
		PostID:        postID,
		DonorID:       donorID,
		RecipientID:   recipientID,
		Status:        domain.InteractionPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.interactionRepo.Put(ctx, i); err != nil {
		return nil, err
	}
	s.publish(ctx, sns.Event{
		Type:        sns.EventInteractionUpdated,
		RecipientID: p.AuthorID,
		PostID:      postID,
		Message:     "New hand-off request on your post",
	})
	return i, nil
}

func (s *service) UpdateInteractionStatus(ctx context.Context, interactionID, userID, status string) (*domain.Interaction, error) {
	i, err := s.interactionRepo.Get(ctx, interactionID)
	if err != nil {
		return nil, err
	}
	if userID != i.DonorID && userID != i.RecipientID {
		return nil, fmt.Errorf("only participants can update a hand-off: %w", domain.ErrForbidden)
	}
	if !validTransition(i.Status, status) {
		return nil, fmt.Errorf("cannot move a hand-off from %s to %s: %w", i.Status, status, domain.ErrBadRequest)
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": now.Format(time.RFC3339Nano),
	}
	if status == domain.InteractionConfirmed {
		updates["confirmed_at"] = now.Format(time.RFC3339Nano)
		i.ConfirmedAt = &now
	}
	if err := s.interactionRepo.Update(ctx, interactionID, updates); err != nil {
		return nil, err
	}
	i.Status = status
	i.UpdatedAt = now

	if status == domain.InteractionCompleted {
		if err := s.userRepo.AddPoints(ctx, i.DonorID, completionPoints); err != nil {
			slog.Warn("could not award completion points", "userId", i.DonorID, "err", err)
		}
	}

	notify := i.DonorID
	if userID == i.DonorID {
		notify = i.RecipientID
	}
	s.publish(ctx, sns.Event{
		Type:        sns.EventInteractionUpdated,
		RecipientID: notify,
		PostID:      i.PostID,
		Message:     fmt.Sprintf("Hand-off is now %s", status),
	})
	return i, nil
}

func (s *service) PostInteractions(ctx context.Context, postID, userID string) ([]domain.Interaction, error) {
	p, err := s.postRepo.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	if p.AuthorID != userID {
		return nil, fmt.Errorf("only the author can list a post's hand-offs: %w", domain.ErrForbidden)
	}
	return s.interactionRepo.QueryByPost(ctx, postID)
}

// authorSnippet loads the public slice of an author. A missing author is
// tolerated so the feed survives a deleted account.
func (s *service) authorSnippet(ctx context.Context, authorID string) *domain.PostAuthor {
	u, err := s.userRepo.Get(ctx, authorID)
	if err != nil {
		return nil
	}
	return &domain.PostAuthor{
		UserID:       u.UserID,
		Name:         u.Name,
		UserType:     u.UserType,
		Phone:        u.Phone,
		ProfileImage: u.ProfileImage,
		IsVerified:   u.IsVerified,
	}
}

func (s *service) publish(ctx context.Context, event sns.Event) {
	if err := s.events.Publish(ctx, event); err != nil {
		slog.Warn("could not publish notification event", "type", event.Type, "err", err)
	}
}

func matchesFilter(p *domain.Post, f domain.PostFilter) bool {
	if f.PostType != "" && p.PostType != f.PostType {
		return false
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(p.Title), q) &&
			!strings.Contains(strings.ToLower(p.Description), q) &&
			!tagsContain(p.Tags, q) {
			return false
		}
	}
	return true
}

func tagsContain(tags []string, q string) bool {
	for _, t := range tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}

func validTransition(from, to string) bool {
	switch from {
	case domain.InteractionPending:
		return to == domain.InteractionConfirmed
	case domain.InteractionConfirmed:
		return to == domain.InteractionCompleted
	default:
		return false
	}
}
