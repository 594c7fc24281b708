package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Maiolini/sitecafe/internal/domain"

	"github.com/google/uuid"
)

// CashbackStore implements port.CashbackStore using SQLite.
type CashbackStore struct {
	db *DB
}

// NewCashbackStore creates a new SQLite cashback store.
func NewCashbackStore(db *DB) *CashbackStore {
	return &CashbackStore{db: db}
}

// UsarCashback debits valor from the client's balance and appends the
// matching uso ledger entry, atomically. The conditional UPDATE also
// serializes concurrent debits: two requests racing over the same balance
// cannot both pass the >= guard.
func (s *CashbackStore) UsarCashback(ctx context.Context, clienteID string, valor float64, descricao string) (*domain.TransacaoCashback, float64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE clientes
		SET cashback_acumulado = cashback_acumulado - ?
		WHERE id = ? AND cashback_acumulado >= ?
	`, valor, clienteID, valor)
	if err != nil {
		return nil, 0, fmt.Errorf("debit cashback: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, 0, err
	}
	if rows == 0 {
		// Either the client does not exist or the balance is short.
		var saldo float64
		err := tx.QueryRowContext(ctx,
			`SELECT cashback_acumulado FROM clientes WHERE id = ?`, clienteID).Scan(&saldo)
		if err == sql.ErrNoRows {
			return nil, 0, ErrNotFound
		}
		if err != nil {
			return nil, 0, fmt.Errorf("check saldo: %w", err)
		}
		return nil, 0, &domain.ErrSaldoInsuficiente{Saldo: saldo, Solicitado: valor}
	}

	transacao := &domain.TransacaoCashback{
		ID:            uuid.NewString(),
		ClienteID:     clienteID,
		Tipo:          domain.TransacaoUso,
		Valor:         valor,
		Descricao:     descricao,
		DataTransacao: time.Now().UTC(),
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO transacoes_cashback (id, cliente_id, tipo, valor, descricao, data_transacao)
		VALUES (?, ?, ?, ?, ?, ?)
	`, transacao.ID, transacao.ClienteID, transacao.Tipo, transacao.Valor,
		transacao.Descricao, transacao.DataTransacao)
	if err != nil {
		return nil, 0, fmt.Errorf("insert transacao: %w", err)
	}

	var saldo float64
	err = tx.QueryRowContext(ctx,
		`SELECT cashback_acumulado FROM clientes WHERE id = ?`, clienteID).Scan(&saldo)
	if err != nil {
		return nil, 0, fmt.Errorf("read saldo: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, fmt.Errorf("commit transaction: %w", err)
	}
	return transacao, saldo, nil
}

// ListTransacoes returns a page of a client's ledger, newest first,
// optionally filtered by direction.
func (s *CashbackStore) ListTransacoes(ctx context.Context, clienteID string, tipo domain.TipoTransacao, page, perPage int) ([]domain.TransacaoCashback, int, error) {
	where := []string{"cliente_id = ?"}
	args := []any{clienteID}
	if tipo != "" {
		where = append(where, "tipo = ?")
		args = append(args, tipo)
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transacoes_cashback WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transacoes: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, cliente_id, pedido_id, tipo, valor, descricao, data_transacao
		FROM transacoes_cashback WHERE `+cond+`
		ORDER BY data_transacao DESC LIMIT ? OFFSET ?
	`, append(args, perPage, (page-1)*perPage)...)
	if err != nil {
		return nil, 0, fmt.Errorf("query transacoes: %w", err)
	}
	defer rows.Close()

	transacoes, err := collectTransacoes(rows)
	if err != nil {
		return nil, 0, err
	}
	return transacoes, total, nil
}

// UltimasTransacoes returns the newest ledger entries of a client.
func (s *CashbackStore) UltimasTransacoes(ctx context.Context, clienteID string, limit int) ([]domain.TransacaoCashback, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, cliente_id, pedido_id, tipo, valor, descricao, data_transacao
		FROM transacoes_cashback WHERE cliente_id = ?
		ORDER BY data_transacao DESC LIMIT ?
	`, clienteID, limit)
	if err != nil {
		return nil, fmt.Errorf("query transacoes: %w", err)
	}
	defer rows.Close()
	return collectTransacoes(rows)
}

// ResumoCashback totals a client's ledger by direction.
func (s *CashbackStore) ResumoCashback(ctx context.Context, clienteID string) (*domain.ResumoCashback, error) {
	var resumo domain.ResumoCashback
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN tipo = 'ganho' THEN valor END), 0),
			COALESCE(SUM(CASE WHEN tipo = 'uso' THEN valor END), 0)
		FROM transacoes_cashback WHERE cliente_id = ?
	`, clienteID).Scan(&resumo.TotalGanho, &resumo.TotalUsado)
	if err != nil {
		return nil, fmt.Errorf("sum transacoes: %w", err)
	}
	resumo.SaldoAtual = resumo.TotalGanho - resumo.TotalUsado
	return &resumo, nil
}

func collectTransacoes(rows *sql.Rows) ([]domain.TransacaoCashback, error) {
	var transacoes []domain.TransacaoCashback
	for rows.Next() {
		var t domain.TransacaoCashback
		var pedidoID sql.NullString
		if err := rows.Scan(&t.ID, &t.ClienteID, &pedidoID, &t.Tipo, &t.Valor,
			&t.Descricao, &t.DataTransacao); err != nil {
			return nil, fmt.Errorf("scan transacao: %w", err)
		}
		t.PedidoID = pedidoID.String
		transacoes = append(transacoes, t)
	}
	return transacoes, rows.Err()
}
