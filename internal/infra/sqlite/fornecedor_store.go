package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Maiolini/sitecafe/internal/domain"
)

const fornecedorColumns = `id, user_id, nome_empresa, cnpj, categoria, descricao,
	endereco, cidade, estado, cep, instagram, site`

// FornecedorStore implements port.FornecedorStore using SQLite.
type FornecedorStore struct {
	db *DB
}

// NewFornecedorStore creates a new SQLite fornecedor store.
func NewFornecedorStore(db *DB) *FornecedorStore {
	return &FornecedorStore{db: db}
}

// CreateFornecedor stores a new fornecedor profile.
func (s *FornecedorStore) CreateFornecedor(ctx context.Context, f *domain.Fornecedor) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fornecedores (id, user_id, nome_empresa, cnpj, categoria, descricao,
			endereco, cidade, estado, cep, instagram, site)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, f.ID, f.UserID, f.NomeEmpresa, f.CNPJ, f.Categoria, f.Descricao,
		f.Endereco, f.Cidade, f.Estado, f.CEP, f.Instagram, f.Site)

	if err != nil && isUniqueConstraintError(err) {
		return ErrDuplicate
	}
	return err
}

// GetFornecedorByUserID retrieves the fornecedor profile owned by a user.
func (s *FornecedorStore) GetFornecedorByUserID(ctx context.Context, userID string) (*domain.Fornecedor, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+fornecedorColumns+` FROM fornecedores WHERE user_id = ?`, userID)
	return scanFornecedor(row)
}

// GetFornecedorByID retrieves a fornecedor by ID.
func (s *FornecedorStore) GetFornecedorByID(ctx context.Context, id string) (*domain.Fornecedor, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+fornecedorColumns+` FROM fornecedores WHERE id = ?`, id)
	return scanFornecedor(row)
}

// UpdateFornecedor modifies the profile fields of a fornecedor.
func (s *FornecedorStore) UpdateFornecedor(ctx context.Context, f *domain.Fornecedor) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE fornecedores
		SET nome_empresa = ?, cnpj = ?, categoria = ?, descricao = ?, endereco = ?,
			cidade = ?, estado = ?, cep = ?, instagram = ?, site = ?
		WHERE id = ?
	`, f.NomeEmpresa, f.CNPJ, f.Categoria, f.Descricao, f.Endereco,
		f.Cidade, f.Estado, f.CEP, f.Instagram, f.Site, f.ID)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// CreateBeneficio stores a new benefit.
func (s *FornecedorStore) CreateBeneficio(ctx context.Context, b *domain.Beneficio) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO beneficios (id, fornecedor_id, descricao, nivel_minimo, ativo)
		VALUES (?, ?, ?, ?, ?)
	`, b.ID, b.FornecedorID, b.Descricao, b.NivelMinimo, b.Ativo)
	return err
}

// GetBeneficio retrieves a benefit by ID.
func (s *FornecedorStore) GetBeneficio(ctx context.Context, id string) (*domain.Beneficio, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, fornecedor_id, descricao, nivel_minimo, ativo
		FROM beneficios WHERE id = ?
	`, id)

	var b domain.Beneficio
	err := row.Scan(&b.ID, &b.FornecedorID, &b.Descricao, &b.NivelMinimo, &b.Ativo)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan beneficio: %w", err)
	}
	return &b, nil
}

// UpdateBeneficio modifies an existing benefit.
func (s *FornecedorStore) UpdateBeneficio(ctx context.Context, b *domain.Beneficio) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE beneficios SET descricao = ?, nivel_minimo = ?, ativo = ? WHERE id = ?
	`, b.Descricao, b.NivelMinimo, b.Ativo, b.ID)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// DeleteBeneficio removes a benefit.
func (s *FornecedorStore) DeleteBeneficio(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM beneficios WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// ListBeneficiosByFornecedor returns all benefits owned by a fornecedor,
// active or not.
func (s *FornecedorStore) ListBeneficiosByFornecedor(ctx context.Context, fornecedorID string) ([]domain.Beneficio, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, fornecedor_id, descricao, nivel_minimo, ativo
		FROM beneficios WHERE fornecedor_id = ?
		ORDER BY descricao
	`, fornecedorID)
	if err != nil {
		return nil, fmt.Errorf("query beneficios: %w", err)
	}
	defer rows.Close()

	var beneficios []domain.Beneficio
	for rows.Next() {
		var b domain.Beneficio
		if err := rows.Scan(&b.ID, &b.FornecedorID, &b.Descricao, &b.NivelMinimo, &b.Ativo); err != nil {
			return nil, fmt.Errorf("scan beneficio: %w", err)
		}
		beneficios = append(beneficios, b)
	}
	return beneficios, rows.Err()
}

// nivelCase ranks tiers inside SQL so the cumulative visibility rule can
// be expressed as a comparison.
const nivelCase = `CASE %s WHEN 'inicial' THEN 0 WHEN 'avancado' THEN 1 WHEN 'elite' THEN 2 END`

// ListBeneficiosDisponiveis returns active benefits reachable at the given
// tier, offered by active and approved fornecedores.
func (s *FornecedorStore) ListBeneficiosDisponiveis(ctx context.Context, nivel domain.NivelParceria) ([]domain.BeneficioDisponivel, error) {
	query := fmt.Sprintf(`
		SELECT b.id, b.fornecedor_id, b.descricao, b.nivel_minimo, b.ativo,
			f.id, f.nome_empresa, f.categoria, u.telefone, f.instagram, f.site
		FROM beneficios b
		JOIN fornecedores f ON f.id = b.fornecedor_id
		JOIN users u ON u.id = f.user_id
		WHERE b.ativo = 1 AND u.ativo = 1 AND u.aprovado = 1
			AND `+nivelCase+` <= ?
		ORDER BY f.nome_empresa, b.descricao
	`, "b.nivel_minimo")

	rows, err := s.db.QueryContext(ctx, query, nivel.Rank())
	if err != nil {
		return nil, fmt.Errorf("query beneficios disponiveis: %w", err)
	}
	defer rows.Close()

	var disponiveis []domain.BeneficioDisponivel
	for rows.Next() {
		var d domain.BeneficioDisponivel
		var telefone sql.NullString
		if err := rows.Scan(&d.Beneficio.ID, &d.Beneficio.FornecedorID,
			&d.Beneficio.Descricao, &d.Beneficio.NivelMinimo, &d.Beneficio.Ativo,
			&d.Fornecedor.ID, &d.Fornecedor.NomeEmpresa, &d.Fornecedor.Categoria,
			&telefone, &d.Fornecedor.Instagram, &d.Fornecedor.Site); err != nil {
			return nil, fmt.Errorf("scan beneficio disponivel: %w", err)
		}
		d.Fornecedor.Telefone = telefone.String
		disponiveis = append(disponiveis, d)
	}
	return disponiveis, rows.Err()
}

// CountBeneficiosAtivos counts the active benefits of a fornecedor.
func (s *FornecedorStore) CountBeneficiosAtivos(ctx context.Context, fornecedorID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM beneficios WHERE fornecedor_id = ? AND ativo = 1`,
		fornecedorID).Scan(&n)
	return n, err
}

func scanFornecedor(row *sql.Row) (*domain.Fornecedor, error) {
	var f domain.Fornecedor
	err := row.Scan(&f.ID, &f.UserID, &f.NomeEmpresa, &f.CNPJ, &f.Categoria,
		&f.Descricao, &f.Endereco, &f.Cidade, &f.Estado, &f.CEP, &f.Instagram, &f.Site)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan fornecedor: %w", err)
	}
	return &f, nil
}
