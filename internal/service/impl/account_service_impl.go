package impl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"asafe-api/internal/authz"
	"asafe-api/internal/domain"
	"asafe-api/internal/dto"
	"asafe-api/internal/jwtsigner"
	"asafe-api/internal/observability/metrics"
	"asafe-api/internal/service"
	"asafe-api/internal/store"

	"github.com/google/uuid"
)

type tokenIssuer interface {
	Sign(claim jwtsigner.Claim) (string, error)
}

type AccountServiceImpl struct {
	Store           dataStore
	PasswordService service.PasswordService
	Tokens          tokenIssuer
	Email           service.EmailService
	Reporter        errorReporter
	// AppURL prefixes the links embedded in verification and reset emails.
	AppURL string

	Now      func() time.Time
	NewToken func() string
}

func NewAccountServiceImpl(
	st *store.Store,
	passwordService service.PasswordService,
	tokens tokenIssuer,
	email service.EmailService,
	reporter errorReporter,
	appURL string,
) *AccountServiceImpl {
	return &AccountServiceImpl{
		Store:           newDataStore(st),
		PasswordService: passwordService,
		Tokens:          tokens,
		Email:           email,
		Reporter:        reporter,
		AppURL:          appURL,
	}
}

func (a *AccountServiceImpl) Register(ctx context.Context, r dto.RegisterRequest) (*dto.UserProjection, error) {
	result := "success"
	defer func() {
		metrics.RegistrationsTotal.WithLabelValues(result).Inc()
	}()

	if err := r.Validate(); err != nil {
		result = "invalid"
		return nil, err
	}
	if _, err := a.Store.Users().GetByEmail(ctx, r.Email); err == nil {
		result = "duplicate"
		return nil, domain.ErrDuplicateEmail
	} else if !errors.Is(err, store.ErrRecordNotFound) {
		result = "failure"
		return nil, err
	}

	hash, err := a.PasswordService.Hash(r.Password)
	if err != nil {
		result = "failure"
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := a.now()
	token := a.newToken()
	u := &domain.User{
		ID:                     uuid.New(),
		Email:                  r.Email,
		Name:                   r.Name,
		PasswordHash:           hash,
		Role:                   domain.RoleUser,
		EmailVerified:          false,
		EmailVerificationToken: &token,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	if err := a.Store.Users().Create(ctx, u); err != nil {
		err = duplicateAsEmail(err)
		if errors.Is(err, domain.ErrDuplicateEmail) {
			result = "duplicate"
		} else {
			result = "failure"
		}
		return nil, err
	}

	logInfo(ctx, "user registered", "user_id", u.ID)
	a.deliver(ctx, "verification", func() error {
		return a.Email.SendVerification(ctx, u.Email, a.link("verify-email", token))
	})
	return dto.NewUserProjection(u), nil
}

func (a *AccountServiceImpl) Authenticate(ctx context.Context, email, password string) (*dto.LoginResult, error) {
	result := "success"
	defer func() {
		metrics.LoginsTotal.WithLabelValues(result).Inc()
	}()

	u, err := a.Store.Users().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			result = "user_not_found"
			return &dto.LoginResult{Message: MsgUserNotFound}, nil
		}
		result = "failure"
		return nil, err
	}
	if !u.EmailVerified {
		result = "unverified"
		return &dto.LoginResult{Message: MsgEmailNotVerified}, nil
	}

	ok, err := a.PasswordService.Compare(u.PasswordHash, password)
	if err != nil {
		result = "failure"
		logError(ctx, "password comparison failed", err, "user_id", u.ID)
		a.report(ctx, err, "login")
		return &dto.LoginResult{Message: MsgInternal}, nil
	}
	if !ok {
		result = "invalid_password"
		return &dto.LoginResult{Message: MsgInvalidPassword}, nil
	}

	tok, err := a.Tokens.Sign(jwtsigner.Claim{ID: u.ID.String(), Email: u.Email, Role: u.Role})
	if err != nil {
		result = "failure"
		return nil, fmt.Errorf("sign token: %w", err)
	}
	logInfo(ctx, "user logged in", "user_id", u.ID)
	return &dto.LoginResult{Token: &tok, User: dto.NewUserProjection(u)}, nil
}

func (a *AccountServiceImpl) GetAll(ctx context.Context) ([]dto.UserProjection, error) {
	users, err := a.Store.Users().List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserProjection, 0, len(users))
	for i := range users {
		out = append(out, *dto.NewUserProjection(&users[i]))
	}
	return out, nil
}

func (a *AccountServiceImpl) GetOne(ctx context.Context, id domain.UserID) (*dto.UserProjection, error) {
	u, err := a.Store.Users().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return dto.NewUserProjection(u), nil
}

func (a *AccountServiceImpl) Update(
	ctx context.Context,
	id domain.UserID,
	patch dto.UpdateUserRequest,
	requesterID domain.UserID,
	requesterRole domain.Role,
) (*dto.UserProjection, error) {
	requester := authz.Principal{ID: requesterID, Role: requesterRole}
	if err := authz.Check(requester, authz.SelfOrAdmin(id)); err != nil {
		return nil, err
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if patch.Name != nil {
		fields["name"] = *patch.Name
	}
	if patch.Email != nil {
		fields["email"] = *patch.Email
	}
	if patch.Password != nil {
		hash, err := a.PasswordService.Hash(*patch.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		fields["password_hash"] = hash
	}

	var updated *domain.User
	err := a.Store.WithTx(ctx, func(tx storeTx) error {
		if patch.Email != nil {
			other, err := tx.Users().GetByEmail(ctx, *patch.Email)
			switch {
			case err == nil && other.ID != id:
				return domain.ErrDuplicateEmail
			case err != nil && !errors.Is(err, store.ErrRecordNotFound):
				return err
			}
		}
		if len(fields) > 0 {
			if err := tx.Users().Update(ctx, id, fields); err != nil {
				return duplicateAsEmail(notFoundAs(err, domain.ErrUserNotFound))
			}
		}
		u, err := tx.Users().GetByID(ctx, id)
		if err != nil {
			return notFoundAs(err, domain.ErrUserNotFound)
		}
		updated = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	logInfo(ctx, "user updated", "user_id", id, "by", requesterID)
	return dto.NewUserProjection(updated), nil
}

func (a *AccountServiceImpl) Delete(ctx context.Context, id domain.UserID, requesterRole domain.Role) (*dto.UserProjection, error) {
	if err := authz.Check(authz.Principal{Role: requesterRole}, authz.AdminOnly()); err != nil {
		return nil, err
	}
	u, err := a.Store.Users().GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, domain.ErrUserNotFound)
	}
	counts, err := a.Store.DeleteUserData(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, domain.ErrUserNotFound)
	}
	logInfo(ctx, "user deleted", "user_id", id, "posts", counts["posts"], "notifications", counts["notifications"])
	return dto.NewUserProjection(u), nil
}

func (a *AccountServiceImpl) ResetPassword(ctx context.Context, email string) error {
	u, err := a.Store.Users().GetByEmail(ctx, email)
	if err != nil {
		return notFoundAs(err, domain.ErrUserNotFound)
	}
	token := a.newToken()
	if err := a.Store.Users().SetResetToken(ctx, u.ID, &token); err != nil {
		return notFoundAs(err, domain.ErrUserNotFound)
	}
	logInfo(ctx, "password reset requested", "user_id", u.ID)
	a.deliver(ctx, "password_reset", func() error {
		return a.Email.SendPasswordReset(ctx, u.Email, a.link("reset-password", token))
	})
	return nil
}

// ConfirmPasswordReset consumes a reset token. It reports false when no user
// holds the token.
func (a *AccountServiceImpl) ConfirmPasswordReset(ctx context.Context, token, newPassword string) (bool, error) {
	u, err := a.Store.Users().GetByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	hash, err := a.PasswordService.Hash(newPassword)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	err = a.Store.Users().Update(ctx, u.ID, map[string]any{
		"password_hash":        hash,
		"reset_password_token": nil,
	})
	if err != nil {
		return false, notFoundAs(err, domain.ErrUserNotFound)
	}
	logInfo(ctx, "password reset completed", "user_id", u.ID)
	return true, nil
}

func (a *AccountServiceImpl) VerifyEmail(ctx context.Context, token string) (bool, error) {
	u, err := a.Store.Users().GetByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := a.Store.Users().SetEmailVerified(ctx, u.ID); err != nil {
		return false, notFoundAs(err, domain.ErrUserNotFound)
	}
	logInfo(ctx, "email verified", "user_id", u.ID)
	return true, nil
}

// deliver runs an email send. Failures are logged and reported, never returned.
func (a *AccountServiceImpl) deliver(ctx context.Context, kind string, send func() error) {
	if a.Email == nil {
		return
	}
	if err := send(); err != nil {
		logError(ctx, "email delivery failed", err, "kind", kind)
		a.report(ctx, err, "email_"+kind)
	}
}

func (a *AccountServiceImpl) link(path, token string) string {
	return a.AppURL + "/" + path + "/" + token
}

func (a *AccountServiceImpl) now() time.Time {
	if a.Now != nil {
		return a.Now().UTC()
	}
	return time.Now().UTC()
}

func (a *AccountServiceImpl) newToken() string {
	if a.NewToken != nil {
		return a.NewToken()
	}
	return uuid.NewString()
}

func (a *AccountServiceImpl) report(ctx context.Context, err error, op string) {
	if a.Reporter != nil {
		a.Reporter.Capture(ctx, err, map[string]string{"operation": op})
	}
}
