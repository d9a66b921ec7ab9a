package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/dmitrijs2005/fleetconsole/internal/client/models"
	"github.com/dmitrijs2005/fleetconsole/internal/netx"
)

// MaxAvatarSize caps avatar uploads.
const MaxAvatarSize = 5 << 20

var (
	ErrAvatarTooLarge   = errors.New("avatar exceeds 5 MiB")
	ErrAvatarNotAnImage = errors.New("avatar must be a PNG, JPEG, GIF or WebP image")
)

// UploadSlotIssuer hands out presigned storage slots for avatars.
type UploadSlotIssuer interface {
	AvatarUploadURL(ctx context.Context, contentType string) (*models.AvatarUpload, error)
}

// ProfileUpdater applies a profile change through the session.
type ProfileUpdater interface {
	UpdateProfile(ctx context.Context, upd models.ProfileUpdate) bool
}

type AvatarService struct {
	slots   UploadSlotIssuer
	profile ProfileUpdater
	storage *http.Client
}

// NewAvatarService uploads through storage, which must not carry the API
// credential. A nil storage uses http.DefaultClient.
func NewAvatarService(slots UploadSlotIssuer, profile ProfileUpdater, storage *http.Client) *AvatarService {
	return &AvatarService{slots: slots, profile: profile, storage: storage}
}

// Upload stores data as the user's avatar: it reserves a slot, PUTs the bytes
// there and points the profile at the stored key. It returns false when the
// profile update was refused; the session has already told the user why.
func (s *AvatarService) Upload(ctx context.Context, data []byte) (bool, error) {
	if len(data) > MaxAvatarSize {
		return false, ErrAvatarTooLarge
	}
	contentType := http.DetectContentType(data)
	switch contentType {
	case "image/png", "image/jpeg", "image/gif", "image/webp":
	default:
		return false, ErrAvatarNotAnImage
	}

	slot, err := s.slots.AvatarUploadURL(ctx, contentType)
	if err != nil {
		return false, fmt.Errorf("reserve upload: %w", err)
	}

	if err := netx.UploadToPresignedURL(ctx, s.storage, slot.URL, contentType, data); err != nil {
		return false, err
	}

	return s.profile.UpdateProfile(ctx, models.ProfileUpdate{Avatar: models.StringPtr(slot.Key)}), nil
}

// UploadFile reads path and uploads it with Upload.
func (s *AvatarService) UploadFile(ctx context.Context, path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	if info.Size() > MaxAvatarSize {
		return false, ErrAvatarTooLarge
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	return s.Upload(ctx, data)
}
