package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/dultive/dultive-api/internal/domain"
	"github.com/dultive/dultive-api/internal/pkg/id"
	"github.com/dultive/dultive-api/internal/pkg/validate"
)

type Service interface {
	// GetProfile returns the full profile of the authenticated user.
	GetProfile(ctx context.Context, userID string) (*domain.User, error)
	// UpdateProfile applies the mutable profile fields and returns the
	// refreshed profile. A base64 profile image is uploaded to object storage
	// and replaced by its public URL.
	UpdateProfile(ctx context.Context, userID string, req domain.UpdateProfileRequest) (*domain.User, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type imageStore interface {
	UploadBase64(ctx context.Context, key, payload string) (string, error)
}

type service struct {
	userRepo userStore
	images   imageStore
}

type ServiceDeps struct {
	UserRepo   userStore
	ImageStore imageStore
}

func NewService(deps ServiceDeps) Service {
	return &service{
		userRepo: deps.UserRepo,
		images:   deps.ImageStore,
	}
}

func (s *service) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.Get(ctx, userID)
}

func (s *service) UpdateProfile(ctx context.Context, userID string, req domain.UpdateProfileRequest) (*domain.User, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("name cannot be blank: %w", domain.ErrBadRequest)
	}

	updates := map[string]interface{}{"name": name}
	if req.Phone != nil {
		updates["phone"] = strings.TrimSpace(*req.Phone)
	}
	if req.Location != nil {
		updates["location"] = req.Location
	}
	if req.ProfileImage != nil {
		img := strings.TrimSpace(*req.ProfileImage)
		switch {
		case img == "":
			updates["profile_image"] = nil
		case strings.HasPrefix(img, "http://"), strings.HasPrefix(img, "https://"):
			updates["profile_image"] = img
		default:
			key := fmt.Sprintf("profiles/%s/%s", userID, id.New())
			url, err := s.images.UploadBase64(ctx, key, img)
			if err != nil {
				return nil, fmt.Errorf("upload profile image: %w", err)
			}
			updates["profile_image"] = url
		}
	}

	if err := s.userRepo.Update(ctx, userID, updates); err != nil {
		return nil, err
	}
	return s.userRepo.Get(ctx, userID)
}
