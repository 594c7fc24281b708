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

const clienteColumns = `id, user_id, empresa, cnpj, endereco, cidade, estado, cep,
	nivel_parceria, cashback_acumulado, total_compras_mes, data_ultima_compra`

// ClienteStore implements port.ClienteStore using SQLite.
type ClienteStore struct {
	db *DB
}

// NewClienteStore creates a new SQLite cliente store.
func NewClienteStore(db *DB) *ClienteStore {
	return &ClienteStore{db: db}
}

// CreateCliente stores a new cliente profile.
func (s *ClienteStore) CreateCliente(ctx context.Context, c *domain.Cliente) error {
	if c.NivelParceria == "" {
		c.NivelParceria = domain.NivelInicial
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO clientes (id, user_id, empresa, cnpj, endereco, cidade, estado, cep,
			nivel_parceria, cashback_acumulado, total_compras_mes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.UserID, c.Empresa, c.CNPJ, c.Endereco, c.Cidade, c.Estado, c.CEP,
		c.NivelParceria, c.CashbackAcumulado, c.TotalComprasMes)

	if err != nil && isUniqueConstraintError(err) {
		return ErrDuplicate
	}
	return err
}

// GetClienteByUserID retrieves the cliente profile owned by a user.
func (s *ClienteStore) GetClienteByUserID(ctx context.Context, userID string) (*domain.Cliente, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+clienteColumns+` FROM clientes WHERE user_id = ?`, userID)
	return scanCliente(row)
}

// GetClienteByID retrieves a cliente by ID.
func (s *ClienteStore) GetClienteByID(ctx context.Context, id string) (*domain.Cliente, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+clienteColumns+` FROM clientes WHERE id = ?`, id)
	return scanCliente(row)
}

// UpdateCliente modifies the profile fields of a cliente. Balance, volume
// and tier are owned by the transactional write paths and not touched here.
func (s *ClienteStore) UpdateCliente(ctx context.Context, c *domain.Cliente) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE clientes
		SET empresa = ?, cnpj = ?, endereco = ?, cidade = ?, estado = ?, cep = ?
		WHERE id = ?
	`, c.Empresa, c.CNPJ, c.Endereco, c.Cidade, c.Estado, c.CEP, c.ID)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// ListClientes returns a page of redacted cliente profiles for the
// fornecedor browse view, newest purchase first.
func (s *ClienteStore) ListClientes(ctx context.Context, filtro domain.ClienteFiltro, page, perPage int) ([]domain.ClienteResumo, int, error) {
	where := []string{"u.ativo = 1"}
	var args []any

	if filtro.Nivel != "" {
		where = append(where, "c.nivel_parceria = ?")
		args = append(args, filtro.Nivel)
	}
	if filtro.Cidade != "" {
		where = append(where, "c.cidade LIKE ?")
		args = append(args, "%"+filtro.Cidade+"%")
	}
	if filtro.Busca != "" {
		where = append(where, "(u.nome LIKE ? OR c.empresa LIKE ?)")
		like := "%" + filtro.Busca + "%"
		args = append(args, like, like)
	}
	cond := strings.Join(where, " AND ")

	var total int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM clientes c JOIN users u ON u.id = c.user_id WHERE `+cond,
		args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count clientes: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, u.nome, c.empresa, c.cidade, c.estado, c.nivel_parceria,
			u.telefone, c.data_ultima_compra
		FROM clientes c
		JOIN users u ON u.id = c.user_id
		WHERE `+cond+`
		ORDER BY c.data_ultima_compra DESC
		LIMIT ? OFFSET ?
	`, append(args, perPage, (page-1)*perPage)...)
	if err != nil {
		return nil, 0, fmt.Errorf("query clientes: %w", err)
	}
	defer rows.Close()

	var clientes []domain.ClienteResumo
	for rows.Next() {
		var c domain.ClienteResumo
		var telefone sql.NullString
		var ultimaCompra sql.NullTime
		if err := rows.Scan(&c.ID, &c.Nome, &c.Empresa, &c.Cidade, &c.Estado,
			&c.NivelParceria, &telefone, &ultimaCompra); err != nil {
			return nil, 0, fmt.Errorf("scan cliente: %w", err)
		}
		c.Telefone = telefone.String
		c.DataUltimaCompra = timePtr(ultimaCompra)
		clientes = append(clientes, c)
	}
	return clientes, total, rows.Err()
}

// RecalcularVolumeMes re-derives the monthly purchase volume for ref's
// calendar month from delivered and in-flight orders, derives the tier
// from it and persists both.
func (s *ClienteStore) RecalcularVolumeMes(ctx context.Context, clienteID string, ref time.Time) (*domain.Cliente, error) {
	inicio, fim := monthBounds(ref)

	var volume float64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(quantidade_kg), 0)
		FROM pedidos
		WHERE cliente_id = ? AND status != 'cancelado'
			AND data_pedido >= ? AND data_pedido < ?
	`, clienteID, inicio, fim).Scan(&volume)
	if err != nil {
		return nil, fmt.Errorf("sum monthly volume: %w", err)
	}

	nivel := domain.CalcularNivelParceria(volume)
	result, err := s.db.ExecContext(ctx, `
		UPDATE clientes SET total_compras_mes = ?, nivel_parceria = ? WHERE id = ?
	`, volume, nivel, clienteID)
	if err != nil {
		return nil, fmt.Errorf("update monthly volume: %w", err)
	}
	if err := requireRow(result); err != nil {
		return nil, err
	}

	return s.GetClienteByID(ctx, clienteID)
}

// ContarClientesPorNivel returns the tier distribution of the client base.
func (s *ClienteStore) ContarClientesPorNivel(ctx context.Context) (map[domain.NivelParceria]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT nivel_parceria, COUNT(*) FROM clientes GROUP BY nivel_parceria`)
	if err != nil {
		return nil, fmt.Errorf("count by tier: %w", err)
	}
	defer rows.Close()

	dist := map[domain.NivelParceria]int{
		domain.NivelInicial:  0,
		domain.NivelAvancado: 0,
		domain.NivelElite:    0,
	}
	for rows.Next() {
		var nivel domain.NivelParceria
		var n int
		if err := rows.Scan(&nivel, &n); err != nil {
			return nil, fmt.Errorf("scan tier count: %w", err)
		}
		dist[nivel] = n
	}
	return dist, rows.Err()
}

// EstatisticasClientes aggregates the active, approved client base: the
// ten biggest cities, the tier distribution, and up to twenty clients
// with a purchase since ativosDesde, most recent first.
func (s *ClienteStore) EstatisticasClientes(ctx context.Context, ativosDesde time.Time) (*domain.EstatisticasClientes, error) {
	stats := &domain.EstatisticasClientes{}

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.cidade, COUNT(c.id)
		FROM clientes c
		JOIN users u ON u.id = c.user_id
		WHERE u.ativo = 1 AND u.aprovado = 1 AND c.cidade != ''
		GROUP BY c.cidade
		ORDER BY COUNT(c.id) DESC
		LIMIT 10
	`)
	if err != nil {
		return nil, fmt.Errorf("count by city: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var b domain.ContagemCidade
		if err := rows.Scan(&b.Cidade, &b.Count); err != nil {
			return nil, fmt.Errorf("scan city count: %w", err)
		}
		stats.ClientesPorCidade = append(stats.ClientesPorCidade, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT c.nivel_parceria, COUNT(c.id)
		FROM clientes c
		JOIN users u ON u.id = c.user_id
		WHERE u.ativo = 1 AND u.aprovado = 1
		GROUP BY c.nivel_parceria
	`)
	if err != nil {
		return nil, fmt.Errorf("count by tier: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var b domain.ContagemNivel
		if err := rows.Scan(&b.Nivel, &b.Count); err != nil {
			return nil, fmt.Errorf("scan tier count: %w", err)
		}
		stats.ClientesPorNivel = append(stats.ClientesPorNivel, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT u.nome, c.empresa, c.cidade, c.nivel_parceria, c.data_ultima_compra
		FROM clientes c
		JOIN users u ON u.id = c.user_id
		WHERE u.ativo = 1 AND u.aprovado = 1 AND c.data_ultima_compra >= ?
		ORDER BY c.data_ultima_compra DESC
		LIMIT 20
	`, ativosDesde)
	if err != nil {
		return nil, fmt.Errorf("query active clients: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var a domain.ClienteAtivo
		var ultimaCompra sql.NullTime
		if err := rows.Scan(&a.Nome, &a.Empresa, &a.Cidade, &a.NivelParceria, &ultimaCompra); err != nil {
			return nil, fmt.Errorf("scan active client: %w", err)
		}
		a.DataUltimaCompra = timePtr(ultimaCompra)
		stats.ClientesAtivosRecentes = append(stats.ClientesAtivosRecentes, a)
	}
	return stats, rows.Err()
}

// SomaCashbackAcumulado returns the total outstanding cashback balance.
func (s *ClienteStore) SomaCashbackAcumulado(ctx context.Context) (float64, error) {
	var total float64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(cashback_acumulado), 0) FROM clientes`).Scan(&total)
	return total, err
}

func scanCliente(row *sql.Row) (*domain.Cliente, error) {
	var c domain.Cliente
	var ultimaCompra sql.NullTime

	err := row.Scan(&c.ID, &c.UserID, &c.Empresa, &c.CNPJ, &c.Endereco, &c.Cidade,
		&c.Estado, &c.CEP, &c.NivelParceria, &c.CashbackAcumulado, &c.TotalComprasMes,
		&ultimaCompra)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan cliente: %w", err)
	}

	c.DataUltimaCompra = timePtr(ultimaCompra)
	return &c, nil
}
