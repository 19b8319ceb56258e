package services

import (
	"context"
	"errors"
	"testing"
)

func newUserService(t *testing.T) *UserService {
	t.Helper()
	repo := newTestRepo(t)
	return NewUserService(repo, NewPortfolioService(repo), nil)
}

func TestConnectWallet(t *testing.T) {
	svc := newUserService(t)
	seedUser(t, svc.repo, "u1", 2500)
	ctx := context.Background()

	user, err := svc.ConnectWallet(ctx, "u1", "DemoWa11etAddr")
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	if !user.IsConnected {
		t.Error("user not marked connected")
	}
	if user.WalletAddress == nil || *user.WalletAddress != "DemoWa11etAddr" {
		t.Errorf("wallet address not recorded: %v", user.WalletAddress)
	}

	notifications, err := svc.ListNotifications(ctx, "u1")
	if err != nil {
		t.Fatalf("failed to list notifications: %v", err)
	}
	if len(notifications) != 1 || notifications[0].Title != "Wallet Connected" {
		t.Errorf("expected a wallet-connected notification, got %+v", notifications)
	}
}

func TestConnectWalletRejectsEmptyAddress(t *testing.T) {
	svc := newUserService(t)
	seedUser(t, svc.repo, "u1", 2500)

	if _, err := svc.ConnectWallet(context.Background(), "u1", ""); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestConnectWalletUnknownUser(t *testing.T) {
	svc := newUserService(t)

	if _, err := svc.ConnectWallet(context.Background(), "ghost", "DemoWa11etAddr"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
