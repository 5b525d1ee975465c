// Package provider 定义远端存储的元数据接口，并提供按类型注册 provider
// 工厂的统一入口。
//
// provider 作者需要：
//  1. 在 internal/provider/<type>/ 目录下实现 StorageProvider；
//  2. 在 init() 中通过 MustRegister 注册工厂；
//  3. 将远端错误转换为 *ErrorEnvelope，code 取值参考 errcodes.go。
package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/any-index/any-index/internal/drive"
)

// StorageProvider 是核心依赖的远端元数据 API。path 为去掉首尾斜杠的绝对路径，
// 空串表示驱动器根目录。
type StorageProvider interface {
	FetchItem(ctx context.Context, path string) (drive.Item, error)
	FetchList(ctx context.Context, path string) ([]drive.Item, error)
}

// ErrorEnvelope 表示 provider 返回的业务错误（区别于网络等瞬时错误）。
type ErrorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
	Status  int    `json:"-"`
}

func (e *ErrorEnvelope) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("provider error %s", e.Code)
	}
	return fmt.Sprintf("provider error %s: %s", e.Code, e.Message)
}

// AsEnvelope 从错误链中提取 ErrorEnvelope。
func AsEnvelope(err error) (*ErrorEnvelope, bool) {
	var env *ErrorEnvelope
	if errors.As(err, &env) {
		return env, true
	}
	return nil, false
}

// Options 汇总构造单个账号 provider 所需的参数，由 config 层填充。
type Options struct {
	AccountID      int
	Name           string
	Endpoint       string
	DrivePath      string
	AccessToken    string
	Bucket         string
	Region         string
	AccessKey      string
	SecretKey      string
	PresignExpires time.Duration
	HTTPClient     *http.Client
	Logger         *logrus.Logger
}

// Factory 为一个账号创建 provider 实例。
type Factory func(ctx context.Context, opts Options) (StorageProvider, error)
