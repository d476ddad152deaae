// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/penward/marketplace/internal/auth"
	"github.com/penward/marketplace/internal/blob"
	"github.com/penward/marketplace/internal/core"
)

type Service struct {
	repo  Repository
	blobs blob.Store
}

func NewService(repo Repository, blobs blob.Store) *Service {
	return &Service{repo: repo, blobs: blobs}
}

// Create registers a new user. Name and email are normalized to lowercase
// before storage so the unique index on name is case-insensitive.
func (s *Service) Create(
	ctx context.Context,
	name, email, passwordHash string,
) (*auth.UserInfo, error) {
	u := &User{
		ID:           uuid.New().String(),
		Name:         strings.ToLower(name),
		Email:        strings.ToLower(email),
		PasswordHash: passwordHash,
		Picture:      PictureDefault,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	return toUserInfo(u), nil
}

func (s *Service) GetByName(
	ctx context.Context,
	name string,
) (*auth.UserInfo, error) {
	u, err := s.repo.GetByName(ctx, strings.ToLower(name))
	if err != nil {
		return nil, err
	}

	return toUserInfo(u), nil
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	userID, passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

func (s *Service) GetMe(ctx context.Context, userID string) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("get me: %w", core.ErrUnauthorized)
	}

	return s.repo.GetByID(ctx, userID)
}

// List pages through registered users. The search term is lowercased to
// match stored names and emails.
func (s *Service) List(
	ctx context.Context,
	params ListParams,
) ([]User, int, error) {
	params.Search = strings.ToLower(params.Search)
	return s.repo.List(ctx, params)
}

// UpdateProfile applies a name and/or picture change. A new picture is
// stored before the user row is touched, and the previous blob is removed
// only after the row update succeeds, so a failure mid-way can orphan a
// blob but never leave the row pointing at nothing.
func (s *Service) UpdateProfile(
	ctx context.Context,
	userID string,
	req UpdateProfileRequest,
) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("update profile: %w", core.ErrUnauthorized)
	}

	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	previousPicture := u.Picture

	if req.Name != nil {
		u.Name = strings.ToLower(*req.Name)
	}

	if req.Picture != nil {
		data, decErr := base64.StdEncoding.DecodeString(*req.Picture)
		if decErr != nil {
			return nil, fmt.Errorf(
				"update profile: decode picture: %w",
				core.ErrInvalidInput,
			)
		}

		pictureID, storeErr := s.blobs.Store(ctx, data, blob.KindImage)
		if storeErr != nil {
			return nil, fmt.Errorf("update profile: %w", storeErr)
		}
		u.Picture = pictureID
	}

	if err := s.repo.Update(ctx, u); err != nil {
		if req.Picture != nil {
			// Roll back the freshly stored blob; the row was not changed.
			if delErr := s.blobs.Delete(ctx, u.Picture); delErr != nil {
				slog.Warn("orphaned picture blob",
					"blob_id", u.Picture,
					"error", delErr,
				)
			}
		}
		return nil, err
	}

	if req.Picture != nil && previousPicture != PictureDefault {
		if delErr := s.blobs.Delete(ctx, previousPicture); delErr != nil {
			slog.Warn("failed to delete replaced picture blob",
				"blob_id", previousPicture,
				"error", delErr,
			)
		}
	}

	return u, nil
}

// VerifyPassword re-authenticates the caller before destructive operations.
func (s *Service) VerifyPassword(
	ctx context.Context,
	userID, password string,
) error {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	valid, newHash, err := core.VerifyPasswordTimingSafe(
		password,
		&u.PasswordHash,
	)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return fmt.Errorf("verify password: %w", core.ErrUnauthorized)
	}

	if newHash != "" {
		//nolint:errcheck // best-effort rehash upgrade
		_ = s.repo.UpdatePassword(ctx, userID, newHash)
	}

	return nil
}

// DeleteAccount removes the user after password re-authentication. Claims
// and submissions cascade in the schema; the profile picture blob is
// deleted best-effort afterwards.
func (s *Service) DeleteAccount(
	ctx context.Context,
	userID, password string,
) error {
	if userID == "" {
		return fmt.Errorf("delete account: %w", core.ErrUnauthorized)
	}

	if err := s.VerifyPassword(ctx, userID, password); err != nil {
		return err
	}

	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, userID); err != nil {
		return err
	}

	if u.HasCustomPicture() {
		if delErr := s.blobs.Delete(ctx, u.Picture); delErr != nil {
			slog.Warn("failed to delete picture of removed account",
				"blob_id", u.Picture,
				"error", delErr,
			)
		}
	}

	return nil
}

func (s *Service) NameExists(ctx context.Context, name string) (bool, error) {
	return s.repo.ExistsByName(ctx, strings.ToLower(name))
}

// Username is the public id-to-name lookup used when rendering orders.
func (s *Service) Username(ctx context.Context, id string) (string, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return u.Name, nil
}

func (s *Service) Picture(ctx context.Context, id string) ([]byte, error) {
	return s.blobs.Retrieve(ctx, id)
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
	}
}

var _ auth.UserProvider = (*Service)(nil)
