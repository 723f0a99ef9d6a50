package envelope

import (
	"fmt"
	"math/rand/v2"
)

const (
	fileIDPrefix    = "file_"
	fileIDSliceLen  = 16
	fileIDRandMin   = 1000
	fileIDRandRange = 9000
)

// IdentifierGenerator 根据内容指纹生成 file_id，不做存储侧唯一性检查.
type IdentifierGenerator struct {
	intn func(n int) int
}

// NewIdentifierGenerator 创建生成器，intn 为 nil 时使用 math/rand/v2.
func NewIdentifierGenerator(intn func(n int) int) *IdentifierGenerator {
	if intn == nil {
		intn = rand.IntN
	}

	return &IdentifierGenerator{intn: intn}
}

// FileID 返回 file_<指纹前16字节>_<1000..9999>. 按长度截取，不关心字符集.
func (g *IdentifierGenerator) FileID(fingerprint string) (string, error) {
	if len(fingerprint) < fileIDSliceLen {
		return "", fmt.Errorf("fingerprint %q shorter than %d characters", fingerprint, fileIDSliceLen)
	}

	n := fileIDRandMin + g.intn(fileIDRandRange)

	return fmt.Sprintf("%s%s_%d", fileIDPrefix, fingerprint[:fileIDSliceLen], n), nil
}
