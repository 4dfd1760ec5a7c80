package gateway

import "context"

// ObjectStore 对象存储：存在性检查与 JSON 读写
type ObjectStore interface {
	Exists(ctx context.Context, path string) (bool, error)
	// ReadJSON 对象不存在时返回 ErrObjectNotFound
	ReadJSON(ctx context.Context, path string, out interface{}) error
	WriteJSON(ctx context.Context, path string, v interface{}) error
}
