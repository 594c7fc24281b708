package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/Maiolini/sitecafe/internal/domain"
	"github.com/Maiolini/sitecafe/internal/infra/sqlite"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	resetTokenLen     = 32
	resetTokenCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	resetTokenTTL     = time.Hour
)

// forgotPasswordMessage is returned whether or not the e-mail exists, so
// the endpoint cannot be used to enumerate accounts.
const forgotPasswordMessage = "Se o email existir em nossa base, você receberá instruções para redefinir sua senha."

// ============================================================
// ForgotPassword — POST /v1/auth/forgot-password
// ============================================================

func (s *AuthService) ForgotPassword(ctx context.Context, req *domain.ForgotPasswordRequest) (*domain.SuccessResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.ForgotPassword")
	defer span.End()

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" {
		return nil, &domain.ErrValidation{Field: "email", Message: "Email é obrigatório"}
	}

	// Expired tokens are purged lazily, on the next reset request.
	if err := s.users.PurgeExpiredResetTokens(ctx, time.Now().UTC()); err != nil {
		s.logger.Warn("purge de tokens expirados falhou", zap.Error(err))
	}

	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			return &domain.SuccessResponse{Message: forgotPasswordMessage}, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	token, err := generateResetToken()
	if err != nil {
		return nil, fmt.Errorf("generate reset token: %w", err)
	}
	expiresAt := time.Now().UTC().Add(resetTokenTTL)
	if err := s.users.StoreResetToken(ctx, user.ID, hashToken(token), expiresAt); err != nil {
		return nil, fmt.Errorf("store reset token: %w", err)
	}

	s.logger.Info("token de recuperação emitido", zap.String("user_id", user.ID))
	s.sendMailAsync(ctx, "recuperacao-senha", func(mailCtx context.Context) error {
		return s.mailer.SendRecuperacaoSenha(mailCtx, user.Email, user.Nome, token)
	})

	return &domain.SuccessResponse{Message: forgotPasswordMessage}, nil
}

// ============================================================
// ResetPassword — POST /v1/auth/reset-password
// ============================================================

func (s *AuthService) ResetPassword(ctx context.Context, req *domain.ResetPasswordRequest) (*domain.SuccessResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.ResetPassword")
	defer span.End()

	if req.Token == "" || req.Password == "" {
		return nil, &domain.ErrValidation{Message: "Token e nova senha são obrigatórios"}
	}
	if len(req.Password) < minPasswordLen {
		return nil, &domain.ErrValidation{Field: "password", Message: "A senha deve ter pelo menos 6 caracteres"}
	}

	user, err := s.lookupResetToken(ctx, req.Token)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePasswordHash(ctx, user.ID, string(hash)); err != nil {
		return nil, fmt.Errorf("update password: %w", err)
	}
	if err := s.users.ClearResetToken(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("clear reset token: %w", err)
	}

	s.logger.Info("senha redefinida via token", zap.String("user_id", user.ID))
	return &domain.SuccessResponse{Message: "Senha redefinida com sucesso"}, nil
}

// ============================================================
// ValidateResetToken — POST /v1/auth/validate-reset-token
// ============================================================

func (s *AuthService) ValidateResetToken(ctx context.Context, req *domain.ValidateResetTokenRequest) (*domain.ValidateResetTokenResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.ValidateResetToken")
	defer span.End()

	if req.Token == "" {
		return nil, &domain.ErrValidation{Field: "token", Message: "Token é obrigatório"}
	}

	user, err := s.lookupResetToken(ctx, req.Token)
	if err != nil {
		var tokenErr *domain.ErrTokenInvalido
		if errors.As(err, &tokenErr) {
			return &domain.ValidateResetTokenResponse{Valid: false, Message: tokenErr.Error()}, nil
		}
		return nil, err
	}

	return &domain.ValidateResetTokenResponse{
		Valid:   true,
		Message: "Token válido",
		Email:   user.Email,
	}, nil
}

// lookupResetToken resolves a raw token to its user, clearing it when it
// turned out to be expired.
func (s *AuthService) lookupResetToken(ctx context.Context, token string) (*domain.User, error) {
	user, err := s.users.GetUserByResetTokenHash(ctx, hashToken(token))
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			return nil, &domain.ErrTokenInvalido{}
		}
		return nil, fmt.Errorf("get user by token: %w", err)
	}

	if user.ResetTokenExpira == nil || user.ResetTokenExpira.Before(time.Now().UTC()) {
		if err := s.users.ClearResetToken(ctx, user.ID); err != nil {
			s.logger.Warn("falha ao limpar token expirado", zap.Error(err))
		}
		return nil, &domain.ErrTokenInvalido{}
	}
	return user, nil
}

func generateResetToken() (string, error) {
	b := make([]byte, resetTokenLen)
	max := big.NewInt(int64(len(resetTokenCharset)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = resetTokenCharset[n.Int64()]
	}
	return string(b), nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}
