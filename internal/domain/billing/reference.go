package billing

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hotel/backoffice/internal/domain/shared"
)

const (
	paymentReferencePrefix = "PAY"
	receiptNumberPrefix    = "RCP"

	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// maxCodeAttempts bounds the generate-and-probe loop before the
	// generator falls back to a UUID-derived candidate.
	maxCodeAttempts = 10
)

// ExistsFunc probes the store for a candidate code
type ExistsFunc func(ctx context.Context, code string) (bool, error)

// GenerateUniqueCode produces a code not currently present in the store.
// It tries candidate() up to maxCodeAttempts times, then falls back to a
// single higher-entropy fallback() candidate. Uniqueness is only
// guaranteed at the instant of the probe; the storage layer keeps a
// unique constraint as a backstop and the caller retries once on a
// duplicate-key insert.
func GenerateUniqueCode(ctx context.Context, candidate, fallback func() string, exists ExistsFunc) (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code := candidate()
		taken, err := exists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	code := fallback()
	taken, err := exists(ctx, code)
	if err != nil {
		return "", err
	}
	if taken {
		return "", shared.NewDomainError(shared.ErrCodeStorage, "Could not generate a unique code")
	}
	return code, nil
}

// PaymentReferenceCandidate builds a candidate payment reference:
// PAY + YYYYMM + six random uppercase base-36 characters.
func PaymentReferenceCandidate(now time.Time) string {
	return paymentReferencePrefix + now.Format("200601") + randomCode(6)
}

// PaymentReferenceFallback builds a UUID-derived payment reference used
// after repeated candidate collisions.
func PaymentReferenceFallback(now time.Time) string {
	return paymentReferencePrefix + now.Format("200601") + uuidSuffix(12)
}

// ReceiptNumberCandidate builds a candidate receipt number:
// RCP + YYYY + a five-digit zero-padded number in 1..99999.
func ReceiptNumberCandidate(now time.Time) string {
	return fmt.Sprintf("%s%s%05d", receiptNumberPrefix, now.Format("2006"), 1+rand.Intn(99999))
}

// ReceiptNumberFallback builds a UUID-derived receipt number used after
// repeated candidate collisions.
func ReceiptNumberFallback(now time.Time) string {
	return receiptNumberPrefix + now.Format("2006") + uuidSuffix(10)
}

func randomCode(n int) string {
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(codeAlphabet[rand.Intn(len(codeAlphabet))])
	}
	return b.String()
}

func uuidSuffix(n int) string {
	s := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	if n > len(s) {
		n = len(s)
	}
	return s[:n]
}
