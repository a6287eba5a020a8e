package room

import (
	"context"
	"fmt"
	"math/rand"
)

// CodeAlphabet 去掉了易混淆的 0/O/1/I，共 32 个字符
const CodeAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

// CodeLength 房间码长度
const CodeLength = 6

const maxCodeAttempts = 100

// CodeGenerator 生成便于分享的房间码。
// 不具备密码学安全性，不能当作密钥或令牌使用。
type CodeGenerator struct {
	intn func(n int) int
}

// NewCodeGenerator 创建房间码生成器
func NewCodeGenerator() *CodeGenerator {
	return &CodeGenerator{intn: rand.Intn}
}

// Generate 生成一个房间码，不检查是否冲突
func (g *CodeGenerator) Generate() string {
	code := make([]byte, CodeLength)
	for i := range code {
		code[i] = CodeAlphabet[g.intn(len(CodeAlphabet))]
	}
	return string(code)
}

// GenerateUnique 反复生成直到 exists 返回 false，最多尝试 100 次
func (g *CodeGenerator) GenerateUnique(ctx context.Context, exists func(ctx context.Context, code string) bool) (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		code := g.Generate()
		if !exists(ctx, code) {
			return code, nil
		}
	}
	return "", fmt.Errorf("无法生成唯一房间码: %d 次尝试均冲突", maxCodeAttempts)
}
