package envelope_test

import (
	"errors"
	"io"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/storeclient/pkg/internal/envelope"
)

var (
	fixedNow    = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	fileIDRegex = regexp.MustCompile(`^file_[0-9a-f]{16}_\d{4}$`)
)

func TestFingerprint_KnownVectors(t *testing.T) {
	h := envelope.NewHasher()

	fp := h.FingerprintBytes([]byte("abc"))
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", fp.Value)
	assert.False(t, fp.Synthetic)

	empty := h.FingerprintBytes(nil)
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", empty.Value)
}

func TestFingerprint_Deterministic(t *testing.T) {
	h := envelope.NewHasher()
	content := strings.Repeat("image-bytes", 1000)

	a := h.Fingerprint(strings.NewReader(content))
	b := h.FingerprintBytes([]byte(content))

	assert.Equal(t, a, b)
	assert.Len(t, a.Value, 64)
}

func TestFingerprint_SyntheticFallback(t *testing.T) {
	h := envelope.NewHasher(
		envelope.WithDigest(func(io.Reader) ([]byte, error) { return nil, errors.New("digest unavailable") }),
		envelope.WithClock(func() time.Time { return fixedNow }),
		envelope.WithRand(func(int) int { return 42 }),
	)

	fp := h.FingerprintBytes([]byte("abc"))
	assert.True(t, fp.Synthetic)
	assert.Equal(t, "simulated_1714564800000_1042", fp.Value)
}

func TestFingerprint_PanicIsFallback(t *testing.T) {
	h := envelope.NewHasher(
		envelope.WithDigest(func(io.Reader) ([]byte, error) { panic("no crypto") }),
	)

	fp := h.FingerprintBytes([]byte("abc"))
	assert.True(t, fp.Synthetic)
	assert.Regexp(t, `^simulated_\d+_[1-9]\d{3}$`, fp.Value)
}

func TestFingerprint_SyntheticSuffixBounds(t *testing.T) {
	failing := envelope.WithDigest(func(io.Reader) ([]byte, error) { return nil, errors.New("digest unavailable") })
	clock := envelope.WithClock(func() time.Time { return fixedNow })

	low := envelope.NewHasher(failing, clock, envelope.WithRand(func(int) int { return 0 })).FingerprintBytes(nil)
	assert.Equal(t, "simulated_1714564800000_1000", low.Value)

	high := envelope.NewHasher(failing, clock, envelope.WithRand(func(n int) int { return n - 1 })).FingerprintBytes(nil)
	assert.Equal(t, "simulated_1714564800000_9999", high.Value)
}

func TestFileID(t *testing.T) {
	ids := envelope.NewIdentifierGenerator(nil)
	fp := envelope.NewHasher().FingerprintBytes([]byte("abc")).Value

	for range 50 {
		id, err := ids.FileID(fp)
		require.NoError(t, err)
		assert.Regexp(t, fileIDRegex, id)
		assert.True(t, strings.HasPrefix(id, "file_ba7816bf8f01cfea_"))
	}
}

func TestFileID_Bounds(t *testing.T) {
	fp := strings.Repeat("a", 64)

	low, err := envelope.NewIdentifierGenerator(func(int) int { return 0 }).FileID(fp)
	require.NoError(t, err)
	assert.Equal(t, "file_aaaaaaaaaaaaaaaa_1000", low)

	high, err := envelope.NewIdentifierGenerator(func(n int) int { return n - 1 }).FileID(fp)
	require.NoError(t, err)
	assert.Equal(t, "file_aaaaaaaaaaaaaaaa_9999", high)
}

func TestFileID_SyntheticSlicing(t *testing.T) {
	ids := envelope.NewIdentifierGenerator(func(int) int { return 234 })

	id, err := ids.FileID("simulated_1714564800000_42")
	require.NoError(t, err)
	assert.Equal(t, "file_simulated_171456_1234", id)

	_, err = ids.FileID("short")
	assert.Error(t, err)
}
