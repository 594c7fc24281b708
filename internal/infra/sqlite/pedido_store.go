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

const pedidoColumns = `id, cliente_id, quantidade_kg, tipo_cafe, tipo_torra, valor_total,
	status, data_pedido, data_entrega, endereco_entrega, observacoes, automatico,
	dia_entrega_automatica`

// PedidoStore implements port.PedidoStore using SQLite.
type PedidoStore struct {
	db *DB
}

// NewPedidoStore creates a new SQLite pedido store.
func NewPedidoStore(db *DB) *PedidoStore {
	return &PedidoStore{db: db}
}

// RegistrarCompra posts an order in a single transaction: inserts the
// pedido and its ganho ledger entry, credits the balance, stamps the last
// purchase date, then re-derives the monthly volume and tier for the
// calendar month the order lands in. Returns the refreshed cliente.
func (s *PedidoStore) RegistrarCompra(ctx context.Context, pedido *domain.Pedido, cashback *domain.TransacaoCashback) (*domain.Cliente, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO pedidos (id, cliente_id, quantidade_kg, tipo_cafe, tipo_torra,
			valor_total, status, data_pedido, data_entrega, endereco_entrega,
			observacoes, automatico, dia_entrega_automatica)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, pedido.ID, pedido.ClienteID, pedido.QuantidadeKg, pedido.TipoCafe, pedido.TipoTorra,
		pedido.ValorTotal, pedido.Status, pedido.DataPedido, nullTime(pedido.DataEntrega),
		nullString(pedido.EnderecoEntrega), nullString(pedido.Observacoes),
		pedido.Automatico, nullInt(pedido.DiaEntregaAutomatica))
	if err != nil {
		return nil, fmt.Errorf("insert pedido: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO transacoes_cashback (id, cliente_id, pedido_id, tipo, valor,
			descricao, data_transacao)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, cashback.ID, cashback.ClienteID, nullString(cashback.PedidoID), cashback.Tipo,
		cashback.Valor, cashback.Descricao, cashback.DataTransacao)
	if err != nil {
		return nil, fmt.Errorf("insert transacao: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE clientes
		SET cashback_acumulado = cashback_acumulado + ?, data_ultima_compra = ?
		WHERE id = ?
	`, cashback.Valor, pedido.DataPedido, pedido.ClienteID)
	if err != nil {
		return nil, fmt.Errorf("credit cashback: %w", err)
	}
	if err := requireRow(result); err != nil {
		return nil, err
	}

	// Volume for the order's month, including the row just inserted.
	inicio, fim := monthBounds(pedido.DataPedido)
	var volume float64
	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(quantidade_kg), 0)
		FROM pedidos
		WHERE cliente_id = ? AND status != 'cancelado'
			AND data_pedido >= ? AND data_pedido < ?
	`, pedido.ClienteID, inicio, fim).Scan(&volume)
	if err != nil {
		return nil, fmt.Errorf("sum monthly volume: %w", err)
	}

	nivel := domain.CalcularNivelParceria(volume)
	_, err = tx.ExecContext(ctx, `
		UPDATE clientes SET total_compras_mes = ?, nivel_parceria = ? WHERE id = ?
	`, volume, nivel, pedido.ClienteID)
	if err != nil {
		return nil, fmt.Errorf("update tier: %w", err)
	}

	row := tx.QueryRowContext(ctx,
		`SELECT `+clienteColumns+` FROM clientes WHERE id = ?`, pedido.ClienteID)
	cliente, err := scanCliente(row)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return cliente, nil
}

// GetPedido retrieves an order by ID.
func (s *PedidoStore) GetPedido(ctx context.Context, id string) (*domain.Pedido, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+pedidoColumns+` FROM pedidos WHERE id = ?`, id)
	return scanPedido(row)
}

// UpdateStatusPedido moves an order to a new status. dataEntrega is only
// written when non-nil.
func (s *PedidoStore) UpdateStatusPedido(ctx context.Context, id string, status domain.StatusPedido, dataEntrega *time.Time) error {
	var result sql.Result
	var err error
	if dataEntrega != nil {
		result, err = s.db.ExecContext(ctx,
			`UPDATE pedidos SET status = ?, data_entrega = ? WHERE id = ?`,
			status, *dataEntrega, id)
	} else {
		result, err = s.db.ExecContext(ctx,
			`UPDATE pedidos SET status = ? WHERE id = ?`, status, id)
	}
	if err != nil {
		return err
	}
	return requireRow(result)
}

// ListPedidosByCliente returns a page of one client's orders, newest
// first. Status and month/year filters are optional.
func (s *PedidoStore) ListPedidosByCliente(ctx context.Context, clienteID string, filtro domain.PedidoFiltro, page, perPage int) ([]domain.Pedido, int, error) {
	where := []string{"cliente_id = ?"}
	args := []any{clienteID}

	if filtro.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filtro.Status)
	}
	if filtro.Ano != 0 {
		where = append(where, "CAST(strftime('%Y', data_pedido) AS INTEGER) = ?")
		args = append(args, filtro.Ano)
	}
	if filtro.Mes != 0 {
		where = append(where, "CAST(strftime('%m', data_pedido) AS INTEGER) = ?")
		args = append(args, filtro.Mes)
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pedidos WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count pedidos: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+pedidoColumns+` FROM pedidos WHERE `+cond+
			` ORDER BY data_pedido DESC LIMIT ? OFFSET ?`,
		append(args, perPage, (page-1)*perPage)...)
	if err != nil {
		return nil, 0, fmt.Errorf("query pedidos: %w", err)
	}
	defer rows.Close()

	pedidos, err := collectPedidos(rows)
	if err != nil {
		return nil, 0, err
	}
	return pedidos, total, nil
}

// ProximasEntregas returns the pending recurring orders with a future
// delivery date, soonest first.
func (s *PedidoStore) ProximasEntregas(ctx context.Context, clienteID string) ([]domain.Pedido, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+pedidoColumns+` FROM pedidos
		WHERE cliente_id = ? AND automatico = 1 AND status = 'pendente'
			AND data_entrega IS NOT NULL AND data_entrega >= ?
		ORDER BY data_entrega`,
		clienteID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("query proximas entregas: %w", err)
	}
	defer rows.Close()
	return collectPedidos(rows)
}

// CountPedidosMes counts a client's non-cancelled orders in ref's month.
func (s *PedidoStore) CountPedidosMes(ctx context.Context, clienteID string, ref time.Time) (int, error) {
	inicio, fim := monthBounds(ref)
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM pedidos
		WHERE cliente_id = ? AND status != 'cancelado'
			AND data_pedido >= ? AND data_pedido < ?
	`, clienteID, inicio, fim).Scan(&n)
	return n, err
}

// ListPedidos returns a page of orders across all clients for the admin
// view, newest first.
func (s *PedidoStore) ListPedidos(ctx context.Context, filtro domain.PedidoFiltro, page, perPage int) ([]domain.PedidoComCliente, int, error) {
	where := []string{"1=1"}
	var args []any

	if filtro.Status != "" {
		where = append(where, "p.status = ?")
		args = append(args, filtro.Status)
	}
	if filtro.ClienteID != "" {
		where = append(where, "p.cliente_id = ?")
		args = append(args, filtro.ClienteID)
	}
	if filtro.DataInicio != nil {
		where = append(where, "p.data_pedido >= ?")
		args = append(args, *filtro.DataInicio)
	}
	if filtro.DataFim != nil {
		where = append(where, "p.data_pedido < ?")
		args = append(args, *filtro.DataFim)
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pedidos p WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count pedidos: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, pedidoComClienteQuery+` WHERE `+cond+
		` ORDER BY p.data_pedido DESC LIMIT ? OFFSET ?`,
		append(args, perPage, (page-1)*perPage)...)
	if err != nil {
		return nil, 0, fmt.Errorf("query pedidos: %w", err)
	}
	defer rows.Close()

	pedidos, err := collectPedidosComCliente(rows)
	if err != nil {
		return nil, 0, err
	}
	return pedidos, total, nil
}

// PedidosRecentes returns the newest orders across all clients.
func (s *PedidoStore) PedidosRecentes(ctx context.Context, limit int) ([]domain.PedidoComCliente, error) {
	rows, err := s.db.QueryContext(ctx,
		pedidoComClienteQuery+` ORDER BY p.data_pedido DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query pedidos recentes: %w", err)
	}
	defer rows.Close()
	return collectPedidosComCliente(rows)
}

// CountPedidos counts orders, optionally by status.
func (s *PedidoStore) CountPedidos(ctx context.Context, status domain.StatusPedido) (int, error) {
	var n int
	var err error
	if status != "" {
		err = s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM pedidos WHERE status = ?`, status).Scan(&n)
	} else {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pedidos`).Scan(&n)
	}
	return n, err
}

// RelatorioVendas aggregates delivered and in-flight sales over a closed
// date range: overall totals, per-month buckets and the top ten clients
// by revenue.
func (s *PedidoStore) RelatorioVendas(ctx context.Context, inicio, fim time.Time) (*domain.RelatorioVendas, error) {
	const vendido = `p.status IN ('entregue', 'processando')`

	rel := &domain.RelatorioVendas{
		Inicio: inicio.Format("2006-01-02"),
		Fim:    fim.Format("2006-01-02"),
	}

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(p.quantidade_kg), 0), COALESCE(SUM(p.valor_total), 0)
		FROM pedidos p
		WHERE `+vendido+` AND p.data_pedido >= ? AND p.data_pedido < ?
	`, inicio, fim).Scan(&rel.TotalPedidos, &rel.VolumeTotalKg, &rel.FaturamentoTotal)
	if err != nil {
		return nil, fmt.Errorf("sum vendas: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(t.valor), 0)
		FROM transacoes_cashback t
		JOIN pedidos p ON p.id = t.pedido_id
		WHERE t.tipo = 'ganho' AND `+vendido+` AND p.data_pedido >= ? AND p.data_pedido < ?
	`, inicio, fim).Scan(&rel.CashbackGerado)
	if err != nil {
		return nil, fmt.Errorf("sum cashback gerado: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT strftime('%Y-%m', p.data_pedido), COUNT(*),
			COALESCE(SUM(p.quantidade_kg), 0), COALESCE(SUM(p.valor_total), 0)
		FROM pedidos p
		WHERE `+vendido+` AND p.data_pedido >= ? AND p.data_pedido < ?
		GROUP BY strftime('%Y-%m', p.data_pedido)
		ORDER BY strftime('%Y-%m', p.data_pedido)
	`, inicio, fim)
	if err != nil {
		return nil, fmt.Errorf("query vendas por mes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var m domain.VendasMes
		if err := rows.Scan(&m.Mes, &m.TotalPedidos, &m.VolumeKg, &m.FaturamentoTotal); err != nil {
			return nil, fmt.Errorf("scan vendas mes: %w", err)
		}
		rel.PorMes = append(rel.PorMes, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	topRows, err := s.db.QueryContext(ctx, `
		SELECT p.cliente_id, c.empresa, COUNT(*),
			COALESCE(SUM(p.quantidade_kg), 0), COALESCE(SUM(p.valor_total), 0)
		FROM pedidos p
		JOIN clientes c ON c.id = p.cliente_id
		WHERE `+vendido+` AND p.data_pedido >= ? AND p.data_pedido < ?
		GROUP BY p.cliente_id, c.empresa
		ORDER BY SUM(p.valor_total) DESC
		LIMIT 10
	`, inicio, fim)
	if err != nil {
		return nil, fmt.Errorf("query top clientes: %w", err)
	}
	defer topRows.Close()
	for topRows.Next() {
		var v domain.VendasCliente
		if err := topRows.Scan(&v.ClienteID, &v.Empresa, &v.TotalPedidos,
			&v.VolumeKg, &v.FaturamentoTotal); err != nil {
			return nil, fmt.Errorf("scan top cliente: %w", err)
		}
		rel.TopClientes = append(rel.TopClientes, v)
	}
	return rel, topRows.Err()
}

// ResumoMes returns global order count, volume and revenue for ref's
// calendar month, excluding cancelled orders.
func (s *PedidoStore) ResumoMes(ctx context.Context, ref time.Time) (int, float64, float64, error) {
	inicio, fim := monthBounds(ref)
	var pedidos int
	var volume, faturamento float64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(quantidade_kg), 0), COALESCE(SUM(valor_total), 0)
		FROM pedidos
		WHERE status != 'cancelado' AND data_pedido >= ? AND data_pedido < ?
	`, inicio, fim).Scan(&pedidos, &volume, &faturamento)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("sum resumo mes: %w", err)
	}
	return pedidos, volume, faturamento, nil
}

const pedidoComClienteQuery = `
	SELECT p.id, p.cliente_id, p.quantidade_kg, p.tipo_cafe, p.tipo_torra, p.valor_total,
		p.status, p.data_pedido, p.data_entrega, p.endereco_entrega, p.observacoes,
		p.automatico, p.dia_entrega_automatica,
		c.id, u.nome, u.email, c.empresa, c.nivel_parceria
	FROM pedidos p
	JOIN clientes c ON c.id = p.cliente_id
	JOIN users u ON u.id = c.user_id`

func scanPedido(row *sql.Row) (*domain.Pedido, error) {
	var p domain.Pedido
	var dataEntrega sql.NullTime
	var endereco, obs sql.NullString
	var dia sql.NullInt64

	err := row.Scan(&p.ID, &p.ClienteID, &p.QuantidadeKg, &p.TipoCafe, &p.TipoTorra,
		&p.ValorTotal, &p.Status, &p.DataPedido, &dataEntrega, &endereco, &obs,
		&p.Automatico, &dia)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan pedido: %w", err)
	}

	p.DataEntrega = timePtr(dataEntrega)
	p.EnderecoEntrega = endereco.String
	p.Observacoes = obs.String
	p.DiaEntregaAutomatica = int(dia.Int64)
	return &p, nil
}

func collectPedidos(rows *sql.Rows) ([]domain.Pedido, error) {
	var pedidos []domain.Pedido
	for rows.Next() {
		var p domain.Pedido
		var dataEntrega sql.NullTime
		var endereco, obs sql.NullString
		var dia sql.NullInt64

		err := rows.Scan(&p.ID, &p.ClienteID, &p.QuantidadeKg, &p.TipoCafe, &p.TipoTorra,
			&p.ValorTotal, &p.Status, &p.DataPedido, &dataEntrega, &endereco, &obs,
			&p.Automatico, &dia)
		if err != nil {
			return nil, fmt.Errorf("scan pedido: %w", err)
		}

		p.DataEntrega = timePtr(dataEntrega)
		p.EnderecoEntrega = endereco.String
		p.Observacoes = obs.String
		p.DiaEntregaAutomatica = int(dia.Int64)
		pedidos = append(pedidos, p)
	}
	return pedidos, rows.Err()
}

func collectPedidosComCliente(rows *sql.Rows) ([]domain.PedidoComCliente, error) {
	var pedidos []domain.PedidoComCliente
	for rows.Next() {
		var pc domain.PedidoComCliente
		p := &pc.Pedido
		var dataEntrega sql.NullTime
		var endereco, obs sql.NullString
		var dia sql.NullInt64

		err := rows.Scan(&p.ID, &p.ClienteID, &p.QuantidadeKg, &p.TipoCafe, &p.TipoTorra,
			&p.ValorTotal, &p.Status, &p.DataPedido, &dataEntrega, &endereco, &obs,
			&p.Automatico, &dia,
			&pc.Cliente.ID, &pc.Cliente.Nome, &pc.Cliente.Email, &pc.Cliente.Empresa,
			&pc.Cliente.NivelParceria)
		if err != nil {
			return nil, fmt.Errorf("scan pedido: %w", err)
		}

		p.DataEntrega = timePtr(dataEntrega)
		p.EnderecoEntrega = endereco.String
		p.Observacoes = obs.String
		p.DiaEntregaAutomatica = int(dia.Int64)
		pedidos = append(pedidos, pc)
	}
	return pedidos, rows.Err()
}
