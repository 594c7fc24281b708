package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Maiolini/sitecafe/internal/domain"
	"github.com/Maiolini/sitecafe/internal/infra/sqlite"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ============================================================
// Me — GET /v1/auth/me
// ============================================================

func (s *AuthService) Me(ctx context.Context, userID string) (*domain.UserPerfil, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Me")
	defer span.End()

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			return nil, &domain.ErrNotFound{Resource: "usuário", ID: userID}
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return s.loadPerfil(ctx, user)
}

// ============================================================
// UpdateProfile — PUT /v1/auth/profile
// ============================================================

func (s *AuthService) UpdateProfile(ctx context.Context, userID string, req *domain.UpdateProfileRequest) (*domain.UserPerfil, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.UpdateProfile")
	defer span.End()

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			return nil, &domain.ErrNotFound{Resource: "usuário", ID: userID}
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if req.Nome != nil {
		if *req.Nome == "" {
			return nil, &domain.ErrValidation{Field: "nome", Message: "Nome não pode ser vazio"}
		}
		user.Nome = *req.Nome
	}
	if req.Telefone != nil {
		user.Telefone = *req.Telefone
	}
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	switch user.TipoUsuario {
	case domain.TipoCliente:
		if err := s.updateClienteProfile(ctx, userID, req); err != nil {
			return nil, err
		}
	case domain.TipoFornecedor:
		if err := s.updateFornecedorProfile(ctx, userID, req); err != nil {
			return nil, err
		}
	}

	s.logger.Info("perfil atualizado", zap.String("user_id", userID))
	return s.loadPerfil(ctx, user)
}

func (s *AuthService) updateClienteProfile(ctx context.Context, userID string, req *domain.UpdateProfileRequest) error {
	cliente, err := s.clientes.GetClienteByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("get cliente: %w", err)
	}

	setString(&cliente.Empresa, req.Empresa)
	setString(&cliente.CNPJ, req.CNPJ)
	setString(&cliente.Endereco, req.Endereco)
	setString(&cliente.Cidade, req.Cidade)
	setString(&cliente.Estado, req.Estado)
	setString(&cliente.CEP, req.CEP)

	if err := s.clientes.UpdateCliente(ctx, cliente); err != nil {
		return fmt.Errorf("update cliente: %w", err)
	}
	return nil
}

func (s *AuthService) updateFornecedorProfile(ctx context.Context, userID string, req *domain.UpdateProfileRequest) error {
	fornecedor, err := s.fornecedores.GetFornecedorByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("get fornecedor: %w", err)
	}

	if req.NomeEmpresa != nil {
		if *req.NomeEmpresa == "" {
			return &domain.ErrValidation{Field: "nome_empresa", Message: "Nome da empresa não pode ser vazio"}
		}
		fornecedor.NomeEmpresa = *req.NomeEmpresa
	}
	setString(&fornecedor.CNPJ, req.CNPJ)
	setString(&fornecedor.Categoria, req.Categoria)
	setString(&fornecedor.Descricao, req.Descricao)
	setString(&fornecedor.Endereco, req.Endereco)
	setString(&fornecedor.Cidade, req.Cidade)
	setString(&fornecedor.Estado, req.Estado)
	setString(&fornecedor.CEP, req.CEP)
	setString(&fornecedor.Instagram, req.Instagram)
	setString(&fornecedor.Site, req.Site)

	if err := s.fornecedores.UpdateFornecedor(ctx, fornecedor); err != nil {
		return fmt.Errorf("update fornecedor: %w", err)
	}
	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// ============================================================
// ChangePassword — PUT /v1/auth/password
// ============================================================

func (s *AuthService) ChangePassword(ctx context.Context, userID string, req *domain.ChangePasswordRequest) error {
	ctx, span := authTracer.Start(ctx, "AuthService.ChangePassword")
	defer span.End()

	if req.CurrentPassword == "" || req.NewPassword == "" {
		return &domain.ErrValidation{Message: "Senha atual e nova senha são obrigatórias"}
	}
	if len(req.NewPassword) < minPasswordLen {
		return &domain.ErrValidation{Field: "new_password", Message: "A senha deve ter pelo menos 6 caracteres"}
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			return &domain.ErrNotFound{Resource: "usuário", ID: userID}
		}
		return fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return &domain.ErrValidation{Field: "current_password", Message: "Senha atual incorreta"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePasswordHash(ctx, userID, string(hash)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.logger.Info("senha alterada", zap.String("user_id", userID))
	return nil
}
