// Package shutdown предоставляет корректное завершение приложения
// по сигналам SIGINT и SIGTERM или по отмене контекста.
package shutdown

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"notekeeper/pkg/logger"
)

const (
	msgShutdownSignal  = "shutdown signal received"
	msgShutdownContext = "parent context done, shutting down"
	msgHookFailed      = "shutdown hook failed"
	msgHooksTimedOut   = "shutdown hooks did not finish in time"
)

// Hook - функция освобождения ресурса.
type Hook func(context.Context) error

// Wait блокируется до сигнала или отмены ctx, затем параллельно выполняет hooks
// в пределах timeout. Возвращает объединенную ошибку хуков.
func Wait(ctx context.Context, timeout time.Duration, hooks ...Hook) error {
	log := logger.Log(ctx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		log.Info(ctx, msgShutdownSignal, zap.String("signal", sig.String()))
	case <-ctx.Done():
		log.Info(ctx, msgShutdownContext)
	}

	return Run(context.WithoutCancel(ctx), timeout, hooks...)
}

// Run выполняет hooks параллельно с общим таймаутом.
func Run(ctx context.Context, timeout time.Duration, hooks ...Hook) error {
	log := logger.Log(ctx)

	hookCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, hook := range hooks {
		wg.Add(1)
		go func(fn Hook) {
			defer wg.Done()
			if err := fn(hookCtx); err != nil {
				log.Error(hookCtx, msgHookFailed, zap.Error(err))
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}(hook)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-hookCtx.Done():
		log.Warn(ctx, msgHooksTimedOut, zap.Duration("timeout", timeout))
		return hookCtx.Err()
	}

	mu.Lock()
	defer mu.Unlock()
	return errors.Join(errs...)
}
