package minio

import (
	"bytes"
	"context"
	"io"

	"github.com/jimlawless/whereami"
	"github.com/minio/minio-go/v7"
	"github.com/skladtech/inventory-backend/internal/cfg"
	"github.com/skladtech/inventory-backend/internal/domain"
	"github.com/skladtech/inventory-backend/internal/usecase"
	"github.com/skladtech/inventory-backend/pkg/e"
)

// LabelRepo реализует хранилище этикеток поверх MinIO.
type LabelRepo struct {
	mc  *minio.Client
	cfg *cfg.MinIOCfg
}

func NewLabelRepo(mc *minio.Client, cfg *cfg.MinIOCfg) *LabelRepo {
	return &LabelRepo{
		mc:  mc,
		cfg: cfg,
	}
}

// Upload сохраняет этикетку в MinIO и возвращает ключ объекта.
// Повторная загрузка по тому же ключу перезаписывает прежний артефакт.
func (l *LabelRepo) Upload(ctx context.Context, label *domain.Label) (string, error) {
	reader := bytes.NewReader(label.Bytes)

	info, err := l.mc.PutObject(ctx, l.cfg.BucketName, label.ObjectKey, reader, label.Size, minio.PutObjectOptions{
		ContentType: label.ContentType,
	})
	if err != nil {
		return "", e.Wrap(whereami.WhereAmI(), err)
	}

	return info.Key, nil
}

// Download возвращает содержимое этикетки по ключу объекта.
func (l *LabelRepo) Download(ctx context.Context, key string) (*usecase.LabelContent, error) {
	obj, err := l.mc.GetObject(ctx, l.cfg.BucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrLabelNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	stat, err := obj.Stat()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &usecase.LabelContent{Data: data, ContentType: stat.ContentType}, nil
}

// Delete удаляет объект из MinIO по указанному ключу.
func (l *LabelRepo) Delete(ctx context.Context, key string) error {
	if err := l.mc.RemoveObject(ctx, l.cfg.BucketName, key, minio.RemoveObjectOptions{}); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}
