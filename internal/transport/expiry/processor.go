// Package expiry возвращает в оборот просроченные pending погашения: остаток награды и баллы пользователя.
package expiry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fsdevblog/groph-rewards/internal/domain"
	"github.com/sirupsen/logrus"
)

const (
	defaultServiceTimeout         = 3 * time.Second
	defaultInterval               = time.Minute
	defaultLimitPerIteration uint = 50
	defaultWorkers           uint = 4
)

// Processor периодически отменяет погашения, срок действия которых истек.
type Processor struct {
	svs               Servicer
	l                 *logrus.Entry
	interval          time.Duration
	limitPerIteration uint
	workers           uint
}

// New создает новый экземпляр процессора.
func New(svs Servicer, l *logrus.Logger) *Processor {
	return &Processor{
		svs: svs,
		l: l.WithFields(logrus.Fields{
			"component": "expiry",
			"module":    "processor",
		}),
		interval:          defaultInterval,
		limitPerIteration: defaultLimitPerIteration,
		workers:           defaultWorkers,
	}
}

// SetInterval устанавливает паузу между итерациями, когда просроченных погашений нет.
func (p *Processor) SetInterval(interval time.Duration) *Processor {
	if interval > 0 {
		p.interval = interval
	}
	return p
}

// SetLimitPerIteration устанавливает кол-во погашений, обрабатываемых в одной итерации.
func (p *Processor) SetLimitPerIteration(limit uint) *Processor {
	if limit > 0 {
		p.limitPerIteration = limit
	}
	return p
}

// SetWorkers устанавливает кол-во воркеров. Каждое погашение отменяется в своей транзакции.
func (p *Processor) SetWorkers(workers uint) *Processor {
	if workers > 0 {
		p.workers = workers
	}
	return p
}

// Run обрабатывает просроченные погашения до отмены контекста.
//
// Если итерация обработала полную пачку, следующая запускается сразу, иначе процессор ждет interval.
func (p *Processor) Run(ctx context.Context) {
	p.l.WithFields(logrus.Fields{
		"interval":          p.interval,
		"limitPerIteration": p.limitPerIteration,
		"workers":           p.workers,
	}).Info("Starting")

	for {
		wait := p.interval
		processed, err := p.process(ctx)
		switch {
		case err != nil && !errors.Is(err, ErrNoRedemptions):
			p.l.WithError(err).Error("process error")
		case err == nil && uint(processed) >= p.limitPerIteration:
			wait = 0
		}

		select {
		case <-ctx.Done():
			p.l.Info("Got stop signal, exiting...")
			return
		case <-time.After(wait):
		}
	}
}

// process забирает пачку просроченных погашений и отменяет их воркерами. Возвращает размер пачки или
// ErrNoRedemptions.
func (p *Processor) process(ctx context.Context) (int, error) {
	redemptions, err := p.produce(ctx)
	if err != nil {
		return 0, fmt.Errorf("process: %w", err)
	}

	results := p.runWorkers(ctx, redemptions)

	var expired, failed int
	for _, result := range results {
		l := p.l.WithFields(logrus.Fields{
			"worker":       result.WorkerID,
			"redemptionID": result.RedemptionID,
		})
		switch {
		case result.Error != nil:
			failed++
			l.WithError(result.Error).Error("expire redemption")
		case result.Expired:
			expired++
			l.Debug("redemption expired")
		}
	}
	p.l.WithFields(logrus.Fields{
		"total":   len(redemptions),
		"expired": expired,
		"failed":  failed,
	}).Info("iteration done")

	return len(redemptions), nil
}

type workerResult struct {
	WorkerID     uint
	RedemptionID int64
	Expired      bool
	Error        error
}

// runWorkers раздает погашения воркерам и ждет окончания их работы.
func (p *Processor) runWorkers(ctx context.Context, redemptions []domain.Redemption) []workerResult {
	taskCh := make(chan int64, len(redemptions))
	for _, redemption := range redemptions {
		taskCh <- redemption.ID
	}
	close(taskCh)

	resultCh := make(chan workerResult, len(redemptions))
	wg := new(sync.WaitGroup)
	wg.Add(int(p.workers)) // nolint:gosec
	for i := range p.workers {
		go p.worker(ctx, wg, i+1, taskCh, resultCh)
	}
	wg.Wait()
	close(resultCh)

	results := make([]workerResult, 0, len(redemptions))
	for result := range resultCh {
		results = append(results, result)
	}
	return results
}

func (p *Processor) worker(
	ctx context.Context,
	wg *sync.WaitGroup,
	workerID uint,
	taskCh <-chan int64,
	resultCh chan<- workerResult,
) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case id, ok := <-taskCh:
			if !ok {
				return
			}
			reqCtx, cancel := context.WithTimeout(ctx, defaultServiceTimeout)
			expired, err := p.svs.Expire(reqCtx, id)
			cancel()
			resultCh <- workerResult{
				WorkerID:     workerID,
				RedemptionID: id,
				Expired:      expired,
				Error:        err,
			}
		}
	}
}

// produce получает пачку просроченных погашений. Возвращает ErrNoRedemptions, если их нет.
func (p *Processor) produce(ctx context.Context) ([]domain.Redemption, error) {
	produceCtx, cancel := context.WithTimeout(ctx, defaultServiceTimeout)
	defer cancel()

	redemptions, err := p.svs.PendingForExpiry(produceCtx, p.limitPerIteration)
	if err != nil {
		return nil, fmt.Errorf("produce: %w", err)
	}
	if len(redemptions) == 0 {
		return nil, ErrNoRedemptions
	}
	return redemptions, nil
}
