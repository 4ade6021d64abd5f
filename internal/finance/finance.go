// Package finance holds the pure fee arithmetic shared by the ledger,
// reporting, and promotion services. All functions are total: they never
// fail and have no side effects.
package finance

import (
	"fmt"
	"math"

	"github.com/noah-isme/school-fees-api/internal/models"
)

// ClassOrder is the promotion succession for the school, from the entry
// class to the terminal (graduating) class.
var ClassOrder = []string{
	"Nursery", "LKG", "UKG",
	"1st", "2nd", "3rd", "4th", "5th",
	"6th", "7th", "8th", "9th", "10th",
}

// Sections available when placing a student.
var Sections = []string{"A", "B", "C", "D"}

// PaymentStatusFor derives paid/partial/unpaid from a student's dues and
// the summed ledger amount. A zero or negative due is always unpaid, even
// when payments exist against it: that surfaces a misconfigured fee
// structure instead of masking it as settled.
func PaymentStatusFor(totalDue, totalPaid int64) models.PaymentStatus {
	if totalDue <= 0 {
		return models.PaymentStatusUnpaid
	}
	if totalPaid >= totalDue {
		return models.PaymentStatusPaid
	}
	if totalPaid > 0 {
		return models.PaymentStatusPartial
	}
	return models.PaymentStatusUnpaid
}

// PendingAmount returns the outstanding balance, never negative.
// Overpayment is absorbed; there is no credit or refund concept.
func PendingAmount(totalDue, totalPaid int64) int64 {
	if pending := totalDue - totalPaid; pending > 0 {
		return pending
	}
	return 0
}

// CollectionRate returns the collected percentage in [0,100]. A
// non-positive due yields 0 and overcollection is capped at 100 so
// dashboard percentages stay meaningful.
func CollectionRate(totalDue, totalCollected int64) int {
	if totalDue <= 0 {
		return 0
	}
	rate := int(math.Round(float64(totalCollected) / float64(totalDue) * 100))
	if rate > 100 {
		return 100
	}
	if rate < 0 {
		return 0
	}
	return rate
}

// ReceiptNumber formats the next receipt or slip identifier from the
// previous counter value. The sequence is zero-padded to six digits and
// grows wider past 999999 rather than truncating.
func ReceiptNumber(prefix string, lastSeq int64) string {
	return fmt.Sprintf("%s%06d", prefix, lastSeq+1)
}

// NextClass returns the class following the given one in ClassOrder.
// ok is false for the terminal class and for unknown class labels.
func NextClass(class string) (string, bool) {
	for i, c := range ClassOrder {
		if c == class {
			if i == len(ClassOrder)-1 {
				return "", false
			}
			return ClassOrder[i+1], true
		}
	}
	return "", false
}

// IsGraduatingClass reports whether the class is the final one in order.
func IsGraduatingClass(class string) bool {
	return class == ClassOrder[len(ClassOrder)-1]
}

// ClassRank returns the position of a class within ClassOrder, or -1 for
// unknown labels. Reports use it to sort summaries in promotion order.
func ClassRank(class string) int {
	for i, c := range ClassOrder {
		if c == class {
			return i
		}
	}
	return -1
}
