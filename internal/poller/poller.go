// Package poller реализует периодическую синхронизацию ресурса с бэкендом.
package poller

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Poller периодически выполняет fetch и передаёт результат в deliver.
//
// Тики не исключают друг друга: зависший запрос не задерживает следующий
// цикл. Каждому запросу присваивается порядковый номер, и результат
// доставляется только если опрос не остановлен и более новый результат ещё
// не был доставлен. Ответ, пришедший после Stop или после более свежего
// успешного запроса, отбрасывается.
type Poller[T any] struct {
	name     string
	interval time.Duration
	fetch    func(ctx context.Context) (T, error)
	deliver  func(T)
	logger   *zap.Logger

	mu            sync.Mutex
	running       bool
	cancel        context.CancelFunc
	seq           uint64
	lastDelivered uint64
}

// New создаёт опрос ресурса name с указанной периодичностью.
func New[T any](name string, interval time.Duration, fetch func(ctx context.Context) (T, error), deliver func(T), logger *zap.Logger) *Poller[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller[T]{
		name:     name,
		interval: interval,
		fetch:    fetch,
		deliver:  deliver,
		logger:   logger,
	}
}

// Start выполняет немедленный запрос и запускает периодические. Повторный
// вызов на работающем опросе игнорируется.
func (p *Poller[T]) Start(ctx context.Context) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	ctx, p.cancel = context.WithCancel(ctx)
	p.running = true
	p.mu.Unlock()

	go p.fetchOnce(ctx, p.nextSeq())

	go func() {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				go p.fetchOnce(ctx, p.nextSeq())
			}
		}
	}()
}

// Stop останавливает планирование и запрещает доставку результатов запросов,
// находившихся в полёте.
func (p *Poller[T]) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	cancel := p.cancel
	p.mu.Unlock()

	cancel()
}

// Неудачный запрос логируется и пропускается: предыдущее значение остаётся
// в силе, опрос продолжается с той же периодичностью.
func (p *Poller[T]) fetchOnce(ctx context.Context, seq uint64) {
	value, err := p.fetch(ctx)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Warn("poll failed", zap.String("poller", p.name), zap.Error(err))
		}
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running || seq <= p.lastDelivered {
		return
	}
	p.lastDelivered = seq

	p.deliver(value)
}

func (p *Poller[T]) nextSeq() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seq++
	return p.seq
}
