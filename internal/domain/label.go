package domain

// Label описывает сканируемую этикетку товара, которая хранится в S3
type Label struct {
	ProductID   int64
	Bucket      string
	ObjectKey   string
	Bytes       []byte
	Size        int64
	ContentType string // Example: "image/png"
}

func NewLabel(productID int64, bucket string, objectKey string, bytes []byte, contentType string) *Label {
	return &Label{
		ProductID:   productID,
		Bucket:      bucket,
		ObjectKey:   objectKey,
		Bytes:       bytes,
		Size:        int64(len(bytes)),
		ContentType: contentType,
	}
}
