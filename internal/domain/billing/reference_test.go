package billing

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentReferenceCandidate_Format(t *testing.T) {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	pattern := regexp.MustCompile(`^PAY202608[A-Z0-9]{6}$`)

	for i := 0; i < 50; i++ {
		ref := PaymentReferenceCandidate(now)
		assert.Regexp(t, pattern, ref)
	}
}

func TestReceiptNumberCandidate_Format(t *testing.T) {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	pattern := regexp.MustCompile(`^RCP2026\d{5}$`)

	for i := 0; i < 50; i++ {
		num := ReceiptNumberCandidate(now)
		assert.Regexp(t, pattern, num)
		assert.NotEqual(t, "RCP202600000", num)
	}
}

func TestGenerateUniqueCode_FirstCandidateFree(t *testing.T) {
	code, err := GenerateUniqueCode(context.Background(),
		func() string { return "PAY202608ABC123" },
		func() string { return "FALLBACK" },
		func(ctx context.Context, c string) (bool, error) { return false, nil })

	require.NoError(t, err)
	assert.Equal(t, "PAY202608ABC123", code)
}

func TestGenerateUniqueCode_RetriesOnCollision(t *testing.T) {
	candidates := []string{"TAKEN1", "TAKEN2", "FREE"}
	i := 0
	code, err := GenerateUniqueCode(context.Background(),
		func() string { c := candidates[i]; i++; return c },
		func() string { return "FALLBACK" },
		func(ctx context.Context, c string) (bool, error) { return c != "FREE", nil })

	require.NoError(t, err)
	assert.Equal(t, "FREE", code)
	assert.Equal(t, 3, i)
}

func TestGenerateUniqueCode_FallsBackAfterMaxAttempts(t *testing.T) {
	probes := 0
	code, err := GenerateUniqueCode(context.Background(),
		func() string { return "ALWAYS_TAKEN" },
		func() string { return "FALLBACK" },
		func(ctx context.Context, c string) (bool, error) {
			probes++
			return c == "ALWAYS_TAKEN", nil
		})

	require.NoError(t, err)
	assert.Equal(t, "FALLBACK", code)
	assert.Equal(t, maxCodeAttempts+1, probes)
}

func TestGenerateUniqueCode_ExhaustedSpace(t *testing.T) {
	_, err := GenerateUniqueCode(context.Background(),
		func() string { return "TAKEN" },
		func() string { return "ALSO_TAKEN" },
		func(ctx context.Context, c string) (bool, error) { return true, nil })

	assert.Error(t, err)
}

func TestGenerateUniqueCode_PropagatesProbeError(t *testing.T) {
	probeErr := errors.New("connection reset")
	_, err := GenerateUniqueCode(context.Background(),
		func() string { return "X" },
		func() string { return "Y" },
		func(ctx context.Context, c string) (bool, error) { return false, probeErr })

	assert.ErrorIs(t, err, probeErr)
}

func TestGenerateUniqueCode_NoDuplicatesAcrossMany(t *testing.T) {
	seen := map[string]bool{}
	exists := func(ctx context.Context, c string) (bool, error) { return seen[c], nil }
	now := time.Now()

	for i := 0; i < 200; i++ {
		code, err := GenerateUniqueCode(context.Background(),
			func() string { return PaymentReferenceCandidate(now) },
			func() string { return PaymentReferenceFallback(now) },
			exists)
		require.NoError(t, err)
		require.False(t, seen[code], "generated duplicate %s", code)
		seen[code] = true
	}
}
