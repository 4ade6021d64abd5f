package finance

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/school-fees-api/internal/models"
)

func TestPaymentStatusFor(t *testing.T) {
	cases := []struct {
		name     string
		due      int64
		paid     int64
		expected models.PaymentStatus
	}{
		{"zero due is never paid", 0, 500, models.PaymentStatusUnpaid},
		{"negative due is never paid", -100, 100, models.PaymentStatusUnpaid},
		{"nothing paid", 1000, 0, models.PaymentStatusUnpaid},
		{"partial", 1000, 400, models.PaymentStatusPartial},
		{"exact", 1000, 1000, models.PaymentStatusPaid},
		{"overpaid", 1000, 1200, models.PaymentStatusPaid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, PaymentStatusFor(tc.due, tc.paid))
		})
	}
}

func TestPendingAmount(t *testing.T) {
	assert.Equal(t, int64(600), PendingAmount(1000, 400))
	assert.Equal(t, int64(0), PendingAmount(1000, 1000))
	assert.Equal(t, int64(0), PendingAmount(1000, 1500))
	assert.Equal(t, int64(0), PendingAmount(0, 0))
	assert.Equal(t, int64(0), PendingAmount(-200, 0))
}

func TestCollectionRate(t *testing.T) {
	assert.Equal(t, 0, CollectionRate(0, 500))
	assert.Equal(t, 0, CollectionRate(-10, 500))
	assert.Equal(t, 50, CollectionRate(1000, 500))
	assert.Equal(t, 33, CollectionRate(3000, 1000))
	assert.Equal(t, 100, CollectionRate(1000, 1000))
	assert.Equal(t, 100, CollectionRate(1000, 2500))
}

func TestCollectionRateMonotonic(t *testing.T) {
	prev := 0
	for collected := int64(0); collected <= 2000; collected += 50 {
		rate := CollectionRate(1000, collected)
		assert.GreaterOrEqual(t, rate, prev)
		assert.GreaterOrEqual(t, rate, 0)
		assert.LessOrEqual(t, rate, 100)
		prev = rate
	}
}

func TestReceiptNumber(t *testing.T) {
	assert.Equal(t, "REC000001", ReceiptNumber("REC", 0))
	assert.Equal(t, "REC000100", ReceiptNumber("REC", 99))
	// Width grows past six digits instead of truncating.
	assert.Equal(t, "SLP1000000", ReceiptNumber("SLP", 999999))
}

func TestNextClass(t *testing.T) {
	next, ok := NextClass("Nursery")
	assert.True(t, ok)
	assert.Equal(t, "LKG", next)

	next, ok = NextClass("9th")
	assert.True(t, ok)
	assert.Equal(t, "10th", next)

	_, ok = NextClass("10th")
	assert.False(t, ok)

	_, ok = NextClass("Unknown")
	assert.False(t, ok)
}

func TestIsGraduatingClass(t *testing.T) {
	for _, cls := range ClassOrder {
		if cls == "10th" {
			assert.True(t, IsGraduatingClass(cls))
			continue
		}
		assert.False(t, IsGraduatingClass(cls), cls)
	}
}

func TestClassRank(t *testing.T) {
	assert.Equal(t, 0, ClassRank("Nursery"))
	assert.Equal(t, len(ClassOrder)-1, ClassRank("10th"))
	assert.Equal(t, -1, ClassRank("Kindergarten"))
}
