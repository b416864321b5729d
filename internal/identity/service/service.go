// Package service implements identity lifecycle: registration, phone
// verification, admin approval, login, and admin user management.
//
// Login is where the voting eligibility gate lives: a token is issued only to
// users with both verification flags set, so downstream services never see an
// unverified identity. This is a deliberate cross-component contract with the
// voting engine, which does not re-check the flags.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	id "ballotbox/pkg/domain"
	dErrors "ballotbox/pkg/domain-errors"
	"ballotbox/pkg/platform/sentinel"
	"ballotbox/pkg/requestcontext"

	"ballotbox/internal/identity/models"
	"ballotbox/internal/identity/otp"
	"ballotbox/internal/identity/store"
)

// TokenIssuer signs access tokens for fully verified users.
type TokenIssuer interface {
	GenerateToken(userID id.UserID, role id.Role) (string, error)
}

// VoteCounter reports whether a user still holds votes; deletion is blocked
// while they do. Owned by the voting module and injected here to keep the
// dependency direction one-way.
type VoteCounter interface {
	CountByVoter(ctx context.Context, voterID id.UserID) (int, error)
	CountAll(ctx context.Context) (int, error)
}

// ElectionCounter reports the number of currently active elections.
type ElectionCounter interface {
	CountActive(ctx context.Context) (int, error)
}

// CandidacyCounter reports the number of approved candidacies.
type CandidacyCounter interface {
	CountApproved(ctx context.Context) (int, error)
}

// Service orchestrates identity operations.
type Service struct {
	users       store.UserStore
	otp         *otp.Service
	tokens      TokenIssuer
	votes       VoteCounter
	elections   ElectionCounter
	candidacies CandidacyCounter
	logger      *slog.Logger
}

func New(users store.UserStore, otpSvc *otp.Service, tokens TokenIssuer, votes VoteCounter,
	elections ElectionCounter, candidacies CandidacyCounter, logger *slog.Logger) *Service {
	return &Service{
		users:       users,
		otp:         otpSvc,
		tokens:      tokens,
		votes:       votes,
		elections:   elections,
		candidacies: candidacies,
		logger:      logger,
	}
}

// RegisterInput carries validated registration fields.
type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
	Role     id.Role
}

// Register creates a new unverified user and issues an OTP. A user who
// registered earlier but never completed verification may re-register with
// fresh details; a verified phone or email is a hard Conflict.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	phone := models.NormalizePhone(input.Phone)
	email := strings.ToLower(strings.TrimSpace(input.Email))

	existing, err := s.findByPhoneOrEmail(ctx, phone, email)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	now := requestcontext.Now(ctx)

	if existing != nil {
		if existing.IsPhoneVerified || existing.IsVerified {
			return nil, dErrors.New(dErrors.CodeConflict, "email or phone already in use")
		}
		// Unverified re-registration: refresh details and resend the code.
		existing.Name = strings.TrimSpace(input.Name)
		existing.Email = email
		existing.Phone = phone
		existing.PasswordHash = string(hash)
		existing.Role = input.Role
		existing.UpdatedAt = now
		if err := s.users.Update(ctx, existing); err != nil {
			return nil, s.wrapUserErr(err)
		}
		if err := s.otp.Issue(ctx, phone); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue verification code")
		}
		return existing, nil
	}

	user, err := models.NewUser(id.NewUserID(), input.Name, email, phone, string(hash), input.Role, now)
	if err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "email or phone already in use")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}
	if err := s.otp.Issue(ctx, phone); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue verification code")
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// VerifyOTP confirms a phone verification code and sets isPhoneVerified.
// The flag is set once; verifying an already verified phone is InvalidState.
func (s *Service) VerifyOTP(ctx context.Context, phone, code string) error {
	phone = models.NormalizePhone(phone)
	user, err := s.users.FindByPhone(ctx, phone)
	if err != nil {
		return s.wrapUserErr(err)
	}
	if user.IsPhoneVerified {
		return dErrors.New(dErrors.CodeInvalidState, "phone already verified")
	}

	ok, err := s.otp.Verify(ctx, phone, code)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify code")
	}
	if !ok {
		return dErrors.New(dErrors.CodeInvalidState, "invalid or expired code")
	}

	user.IsPhoneVerified = true
	user.UpdatedAt = requestcontext.Now(ctx)
	if err := s.users.Update(ctx, user); err != nil {
		return s.wrapUserErr(err)
	}
	return nil
}

// ResendOTP issues a fresh code for an unverified phone.
func (s *Service) ResendOTP(ctx context.Context, phone string) error {
	phone = models.NormalizePhone(phone)
	user, err := s.users.FindByPhone(ctx, phone)
	if err != nil {
		return s.wrapUserErr(err)
	}
	if user.IsPhoneVerified {
		return dErrors.New(dErrors.CodeInvalidState, "phone already verified")
	}
	if err := s.otp.Issue(ctx, phone); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue verification code")
	}
	return nil
}

// LoginResult is a signed token plus the authenticated user.
type LoginResult struct {
	Token string
	User  *models.User
}

// Login authenticates by phone and password. Tokens are issued only to fully
// verified users; this is the gate the rest of the system relies on.
func (s *Service) Login(ctx context.Context, phone, password string) (*LoginResult, error) {
	phone = models.NormalizePhone(phone)
	user, err := s.users.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}
	if user.Role != id.RoleAdmin {
		if !user.IsPhoneVerified {
			return nil, dErrors.New(dErrors.CodeForbidden, "phone not verified")
		}
		if !user.IsVerified {
			return nil, dErrors.New(dErrors.CodeForbidden, "account pending admin approval")
		}
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign token")
	}

	s.logger.InfoContext(ctx, "user logged in", "user_id", user.ID, "role", user.Role)
	return &LoginResult{Token: token, User: user}, nil
}

// GetUser fetches a single user by ID.
func (s *Service) GetUser(ctx context.Context, userID id.UserID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, s.wrapUserErr(err)
	}
	return user, nil
}

// ListUsers returns all users, newest first. Admin surface.
func (s *Service) ListUsers(ctx context.Context) ([]*models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list users")
	}
	return users, nil
}

// ListPendingApproval returns phone-verified users awaiting admin approval.
func (s *Service) ListPendingApproval(ctx context.Context) ([]*models.User, error) {
	users, err := s.users.ListPendingApproval(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list pending users")
	}
	return users, nil
}

// ApproveUser sets the admin approval flag.
func (s *Service) ApproveUser(ctx context.Context, userID id.UserID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, s.wrapUserErr(err)
	}
	if !user.IsVerified {
		user.IsVerified = true
		user.UpdatedAt = requestcontext.Now(ctx)
		if err := s.users.Update(ctx, user); err != nil {
			return nil, s.wrapUserErr(err)
		}
	}
	return user, nil
}

// RemoveUser deletes a non-admin user who holds no votes.
func (s *Service) RemoveUser(ctx context.Context, userID id.UserID) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return s.wrapUserErr(err)
	}
	if user.Role == id.RoleAdmin {
		return dErrors.New(dErrors.CodeForbidden, "cannot delete admin users")
	}
	votes, err := s.votes.CountByVoter(ctx, userID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to count user votes")
	}
	if votes > 0 {
		return dErrors.New(dErrors.CodeInvalidState, "cannot delete user with recorded votes")
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return s.wrapUserErr(err)
	}
	s.logger.InfoContext(ctx, "user removed", "user_id", userID)
	return nil
}

// Stats aggregates admin dashboard counters.
type Stats struct {
	TotalVoters        int `json:"totalVoters"`
	TotalCandidates    int `json:"totalCandidates"`
	PendingApprovals   int `json:"pendingApprovals"`
	TotalVotes         int `json:"totalVotes"`
	ActiveElections    int `json:"activeElections"`
	ApprovedCandidates int `json:"approvedCandidates"`
}

// GetStats gathers the counters concurrently; each is an independent read.
func (s *Service) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.TotalVoters, err = s.users.CountByRole(gctx, id.RoleVoter)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalCandidates, err = s.users.CountByRole(gctx, id.RoleCandidate)
		return err
	})
	g.Go(func() (err error) {
		stats.PendingApprovals, err = s.users.CountPendingApproval(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalVotes, err = s.votes.CountAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.ActiveElections, err = s.elections.CountActive(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.ApprovedCandidates, err = s.candidacies.CountApproved(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to gather stats")
	}
	return stats, nil
}

func (s *Service) findByPhoneOrEmail(ctx context.Context, phone, email string) (*models.User, error) {
	user, err := s.users.FindByPhone(ctx, phone)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
	}
	user, err = s.users.FindByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
	}
	return nil, nil
}

func (s *Service) wrapUserErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "user not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "email or phone already in use")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "user store failure")
	}
}
