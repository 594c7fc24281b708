package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Maiolini/sitecafe/internal/domain"
)

const userColumns = `id, email, password_hash, nome, telefone, tipo_usuario,
	ativo, aprovado, data_criacao, reset_token_hash, reset_token_expira`

// UserStore implements port.UserStore using SQLite.
type UserStore struct {
	db *DB
}

// NewUserStore creates a new SQLite user store.
func NewUserStore(db *DB) *UserStore {
	return &UserStore{db: db}
}

// CreateUser stores a new user.
func (s *UserStore) CreateUser(ctx context.Context, u *domain.User) error {
	if u.DataCriacao.IsZero() {
		u.DataCriacao = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, nome, telefone, tipo_usuario,
			ativo, aprovado, data_criacao)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, u.ID, u.Email, u.PasswordHash, u.Nome, nullString(u.Telefone), u.TipoUsuario,
		u.Ativo, u.Aprovado, u.DataCriacao)

	if err != nil && isUniqueConstraintError(err) {
		return ErrDuplicate
	}
	return err
}

// RegistrarCliente creates the user row and its cliente profile in a
// single transaction.
func (s *UserStore) RegistrarCliente(ctx context.Context, u *domain.User, c *domain.Cliente) error {
	if c.NivelParceria == "" {
		c.NivelParceria = domain.NivelInicial
	}
	return s.registrar(ctx, u, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO clientes (id, user_id, empresa, cnpj, endereco, cidade, estado, cep,
				nivel_parceria, cashback_acumulado, total_compras_mes)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, c.ID, c.UserID, c.Empresa, c.CNPJ, c.Endereco, c.Cidade, c.Estado, c.CEP,
			c.NivelParceria, c.CashbackAcumulado, c.TotalComprasMes)
		return err
	})
}

// RegistrarFornecedor creates the user row and its fornecedor profile in
// a single transaction.
func (s *UserStore) RegistrarFornecedor(ctx context.Context, u *domain.User, f *domain.Fornecedor) error {
	return s.registrar(ctx, u, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO fornecedores (id, user_id, nome_empresa, cnpj, categoria, descricao,
				endereco, cidade, estado, cep, instagram, site)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, f.ID, f.UserID, f.NomeEmpresa, f.CNPJ, f.Categoria, f.Descricao,
			f.Endereco, f.Cidade, f.Estado, f.CEP, f.Instagram, f.Site)
		return err
	})
}

func (s *UserStore) registrar(ctx context.Context, u *domain.User, perfil func(*sql.Tx) error) error {
	if u.DataCriacao.IsZero() {
		u.DataCriacao = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, nome, telefone, tipo_usuario,
			ativo, aprovado, data_criacao)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, u.ID, u.Email, u.PasswordHash, u.Nome, nullString(u.Telefone), u.TipoUsuario,
		u.Ativo, u.Aprovado, u.DataCriacao)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}

	if err := perfil(tx); err != nil {
		if isUniqueConstraintError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert perfil: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user by ID.
func (s *UserStore) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByEmail retrieves a user by email.
func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

// UpdateUser modifies an existing user's mutable fields.
func (s *UserStore) UpdateUser(ctx context.Context, u *domain.User) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET email = ?, nome = ?, telefone = ?, ativo = ?, aprovado = ?
		WHERE id = ?
	`, u.Email, u.Nome, nullString(u.Telefone), u.Ativo, u.Aprovado, u.ID)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrDuplicate
		}
		return err
	}
	return requireRow(result)
}

// UpdatePasswordHash replaces the stored password hash.
func (s *UserStore) UpdatePasswordHash(ctx context.Context, userID, hash string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ?`, hash, userID)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// DeleteUser removes a user. Role profiles, orders and ledger entries go
// with it via ON DELETE CASCADE.
func (s *UserStore) DeleteUser(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// StoreResetToken saves a password reset token hash with its expiry,
// replacing any previous one.
func (s *UserStore) StoreResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE users SET reset_token_hash = ?, reset_token_expira = ? WHERE id = ?
	`, tokenHash, expiresAt, userID)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// GetUserByResetTokenHash finds the user holding a non-expired reset token.
func (s *UserStore) GetUserByResetTokenHash(ctx context.Context, tokenHash string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE reset_token_hash = ?`, tokenHash)
	return scanUser(row)
}

// ClearResetToken invalidates the user's reset token.
func (s *UserStore) ClearResetToken(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET reset_token_hash = NULL, reset_token_expira = NULL WHERE id = ?`,
		userID)
	return err
}

// PurgeExpiredResetTokens clears every token past its expiry.
func (s *UserStore) PurgeExpiredResetTokens(ctx context.Context, now time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users SET reset_token_hash = NULL, reset_token_expira = NULL
		WHERE reset_token_expira IS NOT NULL AND reset_token_expira < ?
	`, now)
	return err
}

// ListUsers returns a page of users matching the filter, newest first,
// plus the total match count.
func (s *UserStore) ListUsers(ctx context.Context, filtro domain.UsuarioFiltro, page, perPage int) ([]domain.User, int, error) {
	where := []string{"1=1"}
	var args []any

	if filtro.Tipo != "" {
		where = append(where, "tipo_usuario = ?")
		args = append(args, filtro.Tipo)
	}
	if filtro.Ativo != nil {
		where = append(where, "ativo = ?")
		args = append(args, *filtro.Ativo)
	}
	if filtro.Busca != "" {
		where = append(where, "(nome LIKE ? OR email LIKE ?)")
		like := "%" + filtro.Busca + "%"
		args = append(args, like, like)
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE ` + cond +
		` ORDER BY data_criacao DESC LIMIT ? OFFSET ?`
	rows, err := s.db.QueryContext(ctx, query, append(args, perPage, (page-1)*perPage)...)
	if err != nil {
		return nil, 0, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUserRows(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *u)
	}
	return users, total, rows.Err()
}

// CountUsers counts users of one type.
func (s *UserStore) CountUsers(ctx context.Context, tipo domain.TipoUsuario) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE tipo_usuario = ?`, tipo).Scan(&n)
	return n, err
}

// CountFornecedoresPendentes counts fornecedores awaiting approval.
func (s *UserStore) CountFornecedoresPendentes(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE tipo_usuario = 'fornecedor' AND aprovado = 0`).Scan(&n)
	return n, err
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var u domain.User
	var telefone, resetHash sql.NullString
	var resetExpira sql.NullTime

	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Nome, &telefone,
		&u.TipoUsuario, &u.Ativo, &u.Aprovado, &u.DataCriacao, &resetHash, &resetExpira)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}

	u.Telefone = telefone.String
	u.ResetTokenHash = resetHash.String
	u.ResetTokenExpira = timePtr(resetExpira)
	return &u, nil
}

func scanUserRows(rows *sql.Rows) (*domain.User, error) {
	var u domain.User
	var telefone, resetHash sql.NullString
	var resetExpira sql.NullTime

	err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Nome, &telefone,
		&u.TipoUsuario, &u.Ativo, &u.Aprovado, &u.DataCriacao, &resetHash, &resetExpira)
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}

	u.Telefone = telefone.String
	u.ResetTokenHash = resetHash.String
	u.ResetTokenExpira = timePtr(resetExpira)
	return &u, nil
}

func requireRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
