// Package service — AuthService handles authentication, registration,
// JWT token management, password reset and profile updates.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Maiolini/sitecafe/internal/domain"
	"github.com/Maiolini/sitecafe/internal/infra/sqlite"
	"github.com/Maiolini/sitecafe/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var authTracer = otel.Tracer("service/auth")

const (
	bcryptCost     = 12
	minPasswordLen = 6
)

// AuthService orchestrates authentication flows.
type AuthService struct {
	users        port.UserStore
	clientes     port.ClienteStore
	fornecedores port.FornecedorStore
	mailer       port.Mailer
	jwtSecret    []byte
	accessTTL    time.Duration
	logger       *zap.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(users port.UserStore, clientes port.ClienteStore, fornecedores port.FornecedorStore, mailer port.Mailer, jwtSecret string, accessTTL time.Duration, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:        users,
		clientes:     clientes,
		fornecedores: fornecedores,
		mailer:       mailer,
		jwtSecret:    []byte(jwtSecret),
		accessTTL:    accessTTL,
		logger:       logger,
	}
}

// ============================================================
// Register — POST /v1/auth/register
// ============================================================

func (s *AuthService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.RegisterResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Register")
	defer span.End()

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	span.SetAttributes(attribute.String("tipo_usuario", string(req.TipoUsuario)))

	if req.Email == "" {
		return nil, &domain.ErrValidation{Field: "email", Message: "Campo email é obrigatório"}
	}
	if req.Nome == "" {
		return nil, &domain.ErrValidation{Field: "nome", Message: "Campo nome é obrigatório"}
	}
	if len(req.Password) < minPasswordLen {
		return nil, &domain.ErrValidation{Field: "password", Message: "A senha deve ter pelo menos 6 caracteres"}
	}
	// Only the two self-service roles can register. Admin accounts come
	// from seeding or from POST /v1/admin/admins.
	if req.TipoUsuario != domain.TipoCliente && req.TipoUsuario != domain.TipoFornecedor {
		return nil, &domain.ErrValidation{Field: "tipo_usuario", Message: "Tipo de usuário inválido"}
	}
	if req.TipoUsuario == domain.TipoFornecedor {
		if req.NomeEmpresa == "" {
			return nil, &domain.ErrValidation{Field: "nome_empresa", Message: "Campo nome_empresa é obrigatório"}
		}
		if req.Categoria == "" {
			return nil, &domain.ErrValidation{Field: "categoria", Message: "Campo categoria é obrigatório"}
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: string(hash),
		Nome:         req.Nome,
		Telefone:     req.Telefone,
		TipoUsuario:  req.TipoUsuario,
		Ativo:        true,
		// Fornecedores wait for admin approval before they can log in.
		Aprovado:    req.TipoUsuario == domain.TipoCliente,
		DataCriacao: time.Now().UTC(),
	}
	// User row and role profile land in one store transaction, so a
	// failed profile cannot leave an orphaned login behind.
	perfil := &domain.UserPerfil{User: *user}
	switch req.TipoUsuario {
	case domain.TipoCliente:
		cliente := &domain.Cliente{
			ID:            uuid.NewString(),
			UserID:        user.ID,
			Empresa:       req.Empresa,
			CNPJ:          req.CNPJ,
			Endereco:      req.Endereco,
			Cidade:        req.Cidade,
			Estado:        req.Estado,
			CEP:           req.CEP,
			NivelParceria: domain.NivelInicial,
		}
		if err := s.users.RegistrarCliente(ctx, user, cliente); err != nil {
			if errors.Is(err, sqlite.ErrDuplicate) {
				return nil, &domain.ErrConflict{Message: "Email já cadastrado"}
			}
			return nil, fmt.Errorf("registrar cliente: %w", err)
		}
		perfil.Cliente = cliente
	case domain.TipoFornecedor:
		fornecedor := &domain.Fornecedor{
			ID:          uuid.NewString(),
			UserID:      user.ID,
			NomeEmpresa: req.NomeEmpresa,
			CNPJ:        req.CNPJ,
			Categoria:   req.Categoria,
			Descricao:   req.Descricao,
			Endereco:    req.Endereco,
			Cidade:      req.Cidade,
			Estado:      req.Estado,
			CEP:         req.CEP,
			Instagram:   req.Instagram,
			Site:        req.Site,
		}
		if err := s.users.RegistrarFornecedor(ctx, user, fornecedor); err != nil {
			if errors.Is(err, sqlite.ErrDuplicate) {
				return nil, &domain.ErrConflict{Message: "Email já cadastrado"}
			}
			return nil, fmt.Errorf("registrar fornecedor: %w", err)
		}
		perfil.Fornecedor = fornecedor
	}

	s.logger.Info("usuário registrado",
		zap.String("user_id", user.ID),
		zap.String("tipo_usuario", string(user.TipoUsuario)),
	)
	s.sendMailAsync(ctx, "boas-vindas", func(mailCtx context.Context) error {
		return s.mailer.SendBoasVindas(mailCtx, user.Email, user.Nome, user.TipoUsuario)
	})

	if user.TipoUsuario == domain.TipoFornecedor {
		return &domain.RegisterResponse{
			Message: "Cadastro realizado com sucesso. Aguarde aprovação do administrador.",
			User:    perfil,
		}, nil
	}

	token, err := s.generateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &domain.RegisterResponse{
		Message: "Usuário criado com sucesso",
		Token:   token,
		User:    perfil,
	}, nil
}

// sendMailAsync dispatches mail off the request path. The delivery
// inherits trace context but not the request's cancellation.
func (s *AuthService) sendMailAsync(ctx context.Context, kind string, send func(context.Context) error) {
	mailCtx := context.WithoutCancel(ctx)
	go func() {
		sendCtx, cancel := context.WithTimeout(mailCtx, 30*time.Second)
		defer cancel()
		if err := send(sendCtx); err != nil {
			s.logger.Warn("envio de e-mail falhou", zap.String("kind", kind), zap.Error(err))
		}
	}()
}

// loadPerfil attaches the role-specific profile to a user.
func (s *AuthService) loadPerfil(ctx context.Context, user *domain.User) (*domain.UserPerfil, error) {
	perfil := &domain.UserPerfil{User: *user}
	switch user.TipoUsuario {
	case domain.TipoCliente:
		cliente, err := s.clientes.GetClienteByUserID(ctx, user.ID)
		if err != nil && !errors.Is(err, sqlite.ErrNotFound) {
			return nil, fmt.Errorf("get cliente: %w", err)
		}
		perfil.Cliente = cliente
	case domain.TipoFornecedor:
		fornecedor, err := s.fornecedores.GetFornecedorByUserID(ctx, user.ID)
		if err != nil && !errors.Is(err, sqlite.ErrNotFound) {
			return nil, fmt.Errorf("get fornecedor: %w", err)
		}
		perfil.Fornecedor = fornecedor
	}
	return perfil, nil
}
