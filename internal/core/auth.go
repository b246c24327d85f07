package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/JonMunkholm/leopold/internal/adminauth"
	"github.com/JonMunkholm/leopold/internal/logging"
)

// ErrSessionEnded is returned for a well-formed token whose session was
// logged out or has expired from the store.
var ErrSessionEnded = errors.New("admin session has ended")

// Login checks the admin credentials and opens a session.
func (s *Service) Login(ctx context.Context, login, password string) (string, adminauth.Session, error) {
	log := logging.FromContext(ctx)
	if err := s.auth.Check(login, password); err != nil {
		log.Warn("admin login failed", clientAttrs(ctx)...)
		return "", adminauth.Session{}, err
	}

	token, sess, err := s.sessions.Issue()
	if err != nil {
		return "", adminauth.Session{}, err
	}
	if err := s.shop.RecordSession(ctx, sess.ID, s.sessions.TTL()); err != nil {
		return "", adminauth.Session{}, err
	}

	log.Info("admin logged in", append([]any{"session_id", sess.ID}, clientAttrs(ctx)...)...)
	return token, sess, nil
}

// Authorize verifies token and checks that its session is still open.
func (s *Service) Authorize(ctx context.Context, token string) (adminauth.Session, error) {
	sess, err := s.sessions.Parse(token)
	if err != nil {
		return adminauth.Session{}, err
	}
	open, err := s.shop.HasSession(ctx, sess.ID)
	if err != nil {
		return adminauth.Session{}, err
	}
	if !open {
		return adminauth.Session{}, fmt.Errorf("%w: %s", ErrSessionEnded, sess.ID)
	}
	return sess, nil
}

// Logout ends the session of token.
func (s *Service) Logout(ctx context.Context, token string) error {
	sess, err := s.sessions.Parse(token)
	if err != nil {
		return err
	}
	if err := s.shop.EndSession(ctx, sess.ID); err != nil {
		return err
	}
	logging.FromContext(ctx).Info("admin logged out", "session_id", sess.ID)
	return nil
}
