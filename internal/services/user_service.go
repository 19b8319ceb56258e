package services

import (
	"context"
	"fmt"
	"time"

	"omnioracle/internal/models"
	"omnioracle/internal/repository"
)

// UserService handles the session profile: wallet connection, profile
// reads and the notification center.
type UserService struct {
	repo      *repository.Repository
	portfolio *PortfolioService
	publisher Publisher
}

func NewUserService(repo *repository.Repository, portfolio *PortfolioService, publisher Publisher) *UserService {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &UserService{repo: repo, portfolio: portfolio, publisher: publisher}
}

// GetProfile retrieves a user with a freshly computed portfolio value.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, wrapNotFound(err, "user %s", userID)
	}
	value, err := s.portfolio.ValueForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.PortfolioValue = value
	return user, nil
}

// ConnectWallet marks the profile connected and records the address. No
// signature verification happens here; the wallet flow is a demo stub.
func (s *UserService) ConnectWallet(ctx context.Context, userID, walletAddress string) (*models.User, error) {
	if walletAddress == "" {
		return nil, fmt.Errorf("%w: wallet_address is required", ErrValidation)
	}
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, wrapNotFound(err, "user %s", userID)
	}
	user.WalletAddress = &walletAddress
	user.IsConnected = true
	user.UpdatedAt = time.Now()
	if err := s.repo.SaveUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to connect wallet: %w", err)
	}

	notifyUser(ctx, s.repo, s.publisher, userID, "Wallet Connected",
		fmt.Sprintf("Connected as %s", walletAddress), models.NotifySuccess)
	return user, nil
}

// ListNotifications retrieves a user's notifications, newest first.
func (s *UserService) ListNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	return s.repo.ListNotifications(ctx, userID)
}

// MarkNotificationRead flags one notification as read.
func (s *UserService) MarkNotificationRead(ctx context.Context, id string) error {
	return s.repo.MarkNotificationRead(ctx, id)
}
