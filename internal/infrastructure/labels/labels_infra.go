package labels

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/skladtech/inventory-backend/internal/cfg"
	"github.com/skladtech/inventory-backend/internal/domain"
	"github.com/skladtech/inventory-backend/internal/usecase"
	"github.com/skladtech/inventory-backend/pkg/e"
	"github.com/skladtech/inventory-backend/pkg/jitter"
	"github.com/skladtech/inventory-backend/pkg/logger"
)

const labelContentType = "image/png"

// LabelsInfrastructure управляет генерацией, хранением и фоновой очисткой этикеток в MinIO.
type LabelsInfrastructure struct {
	labelRepo   usecase.LabelRepository
	renderer    usecase.LabelRenderer
	cfg         *cfg.MinIOCfg
	logger      logger.Logger
	shutdownCtx context.Context
	wg          sync.WaitGroup
}

func NewLabelsInfrastructure(
	labelRepo usecase.LabelRepository,
	renderer usecase.LabelRenderer,
	cfg *cfg.MinIOCfg,
	logger logger.Logger,
	shutdownCtx context.Context,
) *LabelsInfrastructure {
	return &LabelsInfrastructure{
		labelRepo:   labelRepo,
		renderer:    renderer,
		cfg:         cfg,
		logger:      logger,
		shutdownCtx: shutdownCtx,
	}
}

// ObjectKey возвращает детерминированный ключ этикетки товара.
// Ключ предсказуем: повторная генерация перезаписывает прежний артефакт.
func ObjectKey(productID int64) string {
	return fmt.Sprintf("labels/label_%d.png", productID)
}

// Store рендерит полезную нагрузку в изображение и сохраняет его под ключом товара.
func (l *LabelsInfrastructure) Store(ctx context.Context, productID int64, payload string) (string, error) {
	const op = "LabelsInfrastructure.Store"

	data, err := l.renderer.Render(payload)
	if err != nil {
		return "", e.Wrap(op, err)
	}

	label := domain.NewLabel(productID, l.cfg.BucketName, ObjectKey(productID), data, labelContentType)

	key, err := l.labelRepo.Upload(ctx, label)
	if err != nil {
		return "", e.Wrap(op, err)
	}

	return key, nil
}

// Fetch возвращает содержимое ранее сгенерированной этикетки товара.
func (l *LabelsInfrastructure) Fetch(ctx context.Context, productID int64) (*usecase.LabelContent, error) {
	const op = "LabelsInfrastructure.Fetch"

	content, err := l.labelRepo.Download(ctx, ObjectKey(productID))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return content, nil
}

// CleanupLabel запускает фоновое удаление этикетки удалённого товара.
func (l *LabelsInfrastructure) CleanupLabel(productID int64) {
	l.wg.Add(1)
	go l.cleanupKey(ObjectKey(productID))
}

// cleanupKey удаляет объект из MinIO с экспоненциальной задержкой и джиттером.
func (l *LabelsInfrastructure) cleanupKey(key string) {
	defer l.wg.Done()
	const (
		op          = "LabelsInfrastructure.cleanupKey"
		maxAttempts = 3
	)

	ctx, cancel := context.WithTimeout(l.shutdownCtx, 30*time.Second)
	defer cancel()

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := l.labelRepo.Delete(ctx, key); err == nil {
			return
		}

		select {
		case <-ctx.Done():
			l.logger.Warnf("%s: cleanup interrupted by shutdown, key=%v", op, key)
			return
		case <-time.After(jitter.ExponentialBackoff(time.Second, 10*time.Second, attempt, jitter.DefaultJitter)):
		}
	}

	l.logger.Warnf("%s: giving up after %d attempts, key=%v", op, maxAttempts, key)
}

// WaitForCleanup ожидает завершения всех фоновых задач очистки с учётом таймаута завершения приложения.
func (l *LabelsInfrastructure) WaitForCleanup(shutdownTimeoutCtx context.Context) error {
	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-shutdownTimeoutCtx.Done():
		return fmt.Errorf("label cleanup timeout during shutdown: %w", shutdownTimeoutCtx.Err())
	}
}
