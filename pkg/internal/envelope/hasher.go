package envelope

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	nlog "github.com/yeisme/storeclient/pkg/log"
	"github.com/yeisme/storeclient/pkg/metrics"
)

const (
	// SyntheticPrefix 摘要不可用时生成的替代指纹前缀.
	SyntheticPrefix = "simulated"
	// 替代指纹的随机后缀固定为四位数 1000..9999.
	syntheticRandMin   = 1000
	syntheticRandRange = 9000
)

// DigestFunc 对内容计算摘要，可能失败.
type DigestFunc func(r io.Reader) ([]byte, error)

// SHA256Digest 流式计算 sha256.
func SHA256Digest(r io.Reader) ([]byte, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}

	return h.Sum(nil), nil
}

// Fingerprint 内容指纹. Synthetic 为 true 时表示摘要失败后生成的替代值.
type Fingerprint struct {
	Value     string
	Synthetic bool
}

func (f Fingerprint) String() string {
	return f.Value
}

// Hasher 计算内容指纹，摘要失败时降级为替代指纹，从不返回错误.
type Hasher struct {
	digest DigestFunc
	now    func() time.Time
	intn   func(n int) int
}

// HasherOption 配置 Hasher.
type HasherOption func(*Hasher)

// WithDigest 替换摘要函数.
func WithDigest(fn DigestFunc) HasherOption {
	return func(h *Hasher) { h.digest = fn }
}

// WithClock 替换时钟.
func WithClock(fn func() time.Time) HasherOption {
	return func(h *Hasher) { h.now = fn }
}

// WithRand 替换随机数来源，fn(n) 返回 [0, n).
func WithRand(fn func(n int) int) HasherOption {
	return func(h *Hasher) { h.intn = fn }
}

// NewHasher 创建默认使用 sha256 的 Hasher.
func NewHasher(opts ...HasherOption) *Hasher {
	h := &Hasher{
		digest: SHA256Digest,
		now:    time.Now,
		intn:   rand.IntN,
	}
	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Fingerprint 计算 r 的十六进制小写摘要.
func (h *Hasher) Fingerprint(r io.Reader) Fingerprint {
	sum, err := h.safeDigest(r)
	if err != nil || len(sum) == 0 {
		if err == nil {
			err = fmt.Errorf("empty digest")
		}

		fp := SyntheticFingerprint(SyntheticPrefix, h.now(), syntheticSuffix(h.intn))

		metrics.FingerprintFallbacks.Inc()
		nlog.Logger().Warn().Err(err).Str("fingerprint", fp).Msg("content digest unavailable, using synthetic fingerprint")

		return Fingerprint{Value: fp, Synthetic: true}
	}

	return Fingerprint{Value: hex.EncodeToString(sum)}
}

// FingerprintBytes 计算字节切片的指纹.
func (h *Hasher) FingerprintBytes(b []byte) Fingerprint {
	return h.Fingerprint(bytes.NewReader(b))
}

// safeDigest 把摘要函数的 panic 也视为失败.
func (h *Hasher) safeDigest(r io.Reader) (sum []byte, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("digest panic: %v", p)
		}
	}()

	return h.digest(r)
}

func syntheticSuffix(intn func(n int) int) int {
	return syntheticRandMin + intn(syntheticRandRange)
}

// SyntheticFingerprint 生成 <prefix>_<毫秒时间戳>_<随机数> 形式的替代指纹.
func SyntheticFingerprint(prefix string, now time.Time, n int) string {
	return fmt.Sprintf("%s_%d_%d", prefix, now.UnixMilli(), n)
}
