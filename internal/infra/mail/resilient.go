package mail

import (
	"context"

	"github.com/Maiolini/sitecafe/internal/domain"
	"github.com/Maiolini/sitecafe/internal/infra/observability"
	"github.com/Maiolini/sitecafe/internal/infra/resilience"
	"github.com/Maiolini/sitecafe/internal/port"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Resilient decorates a Mailer with retry, circuit breaking and metrics.
// Delivery failures never bubble up to the request path; they are logged
// and counted.
type Resilient struct {
	next    port.Mailer
	cfg     resilience.Config
	cb      *gobreaker.CircuitBreaker
	bh      *resilience.Bulkhead
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewResilient wraps next with the resilience stack. MaxConcurrency caps
// how many deliveries run at once; password reset bursts wait instead of
// piling up goroutines.
func NewResilient(next port.Mailer, cfg resilience.Config, cb *gobreaker.CircuitBreaker, metrics *observability.Metrics, logger *zap.Logger) *Resilient {
	return &Resilient{
		next:    next,
		cfg:     cfg,
		cb:      cb,
		bh:      resilience.NewBulkhead(cfg.MaxConcurrency),
		metrics: metrics,
		logger:  logger,
	}
}

func (r *Resilient) SendBoasVindas(ctx context.Context, to, nome string, tipo domain.TipoUsuario) error {
	return r.send(ctx, "boas_vindas", func() error {
		return r.next.SendBoasVindas(ctx, to, nome, tipo)
	})
}

func (r *Resilient) SendRecuperacaoSenha(ctx context.Context, to, nome, token string) error {
	return r.send(ctx, "recuperacao_senha", func() error {
		return r.next.SendRecuperacaoSenha(ctx, to, nome, token)
	})
}

func (r *Resilient) send(ctx context.Context, template string, fn func() error) error {
	if err := r.bh.Acquire(ctx); err != nil {
		r.metrics.IncrEmail(template, "error")
		return err
	}
	defer r.bh.Release()

	_, err := r.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, r.cfg, fn)
	})
	if err != nil {
		r.metrics.IncrEmail(template, "error")
		r.logger.Error("falha ao enviar e-mail", zap.String("template", template), zap.Error(err))
		return err
	}
	r.metrics.IncrEmail(template, "success")
	return nil
}
