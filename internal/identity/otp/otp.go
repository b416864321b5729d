// Package otp issues and checks the one-time codes used for phone
// verification. Delivery is an injected capability so the transport (SMS
// provider, console in development) stays out of the domain.
package otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"time"
)

// Store persists codes with a TTL. Codes are single-use: a successful Verify
// consumes the code.
type Store interface {
	Save(ctx context.Context, phone, code string, ttl time.Duration) error
	// Consume returns true and deletes the code when phone/code match an
	// unexpired entry.
	Consume(ctx context.Context, phone, code string) (bool, error)
}

// Sender delivers a code to a phone number. Implementations must not block
// the request on slow providers longer than the context allows.
type Sender interface {
	Send(ctx context.Context, phone, code string) error
}

// LogSender writes codes to the log instead of sending SMS. This is the
// development fallback; production wires a real provider.
type LogSender struct {
	Logger *slog.Logger
}

func (s *LogSender) Send(ctx context.Context, phone, code string) error {
	s.Logger.InfoContext(ctx, "otp code issued", "phone", phone, "code", code)
	return nil
}

// Service issues and verifies registration codes.
type Service struct {
	store  Store
	sender Sender
	ttl    time.Duration
}

func NewService(store Store, sender Sender, ttl time.Duration) *Service {
	return &Service{store: store, sender: sender, ttl: ttl}
}

// Issue generates a six-digit code, stores it with the configured TTL, and
// hands it to the sender.
func (s *Service) Issue(ctx context.Context, phone string) error {
	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("generate otp code: %w", err)
	}
	if err := s.store.Save(ctx, phone, code, s.ttl); err != nil {
		return fmt.Errorf("store otp code: %w", err)
	}
	if err := s.sender.Send(ctx, phone, code); err != nil {
		return fmt.Errorf("send otp code: %w", err)
	}
	return nil
}

// Verify consumes the code for phone if it matches and has not expired.
func (s *Service) Verify(ctx context.Context, phone, code string) (bool, error) {
	return s.store.Consume(ctx, phone, code)
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
