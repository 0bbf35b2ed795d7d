package usecase

import "context"

// LabelRenderer превращает полезную нагрузку этикетки в готовое изображение.
type LabelRenderer interface {
	Render(payload string) ([]byte, error)
}

// LabelsInfra управляет хранением этикеток и их фоновой очисткой.
type LabelsInfra interface {
	Store(ctx context.Context, productID int64, payload string) (string, error)
	Fetch(ctx context.Context, productID int64) (*LabelContent, error)
	CleanupLabel(productID int64)
}

type MessageProducer interface {
	WriteRawMessage(ctx context.Context, req *WriteRawMessageReq) error
}
