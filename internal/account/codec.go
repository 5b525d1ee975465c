// Package account 维护账号目录，并负责账号 ID 与 URL 中 hash 的互相转换。
package account

import (
	"fmt"

	"github.com/speps/go-hashids/v2"
)

// Codec 使用 hashids 在账号 ID 与短 hash 之间转换。
type Codec struct {
	h *hashids.HashID
}

// NewCodec 按 salt 与最小长度构造编解码器。
func NewCodec(salt string, minLength int) (*Codec, error) {
	data := hashids.NewData()
	data.Salt = salt
	data.MinLength = minLength
	h, err := hashids.NewWithData(data)
	if err != nil {
		return nil, fmt.Errorf("init hashids: %w", err)
	}
	return &Codec{h: h}, nil
}

// Encode 返回账号 ID 对应的 hash。
func (c *Codec) Encode(id int) (string, error) {
	return c.h.Encode([]int{id})
}

// Decode 解析 hash，只接受恰好编码一个非负整数的值。
func (c *Codec) Decode(hash string) (int, bool) {
	ids, err := c.h.DecodeWithError(hash)
	if err != nil || len(ids) != 1 {
		return 0, false
	}
	return ids[0], true
}
