package ledger

import (
	"context"
	"fmt"
	"time"
)

// BillNumber formats the seq-th bill of t's month as BILL-YYYYMM-NNNN.
func BillNumber(t time.Time, seq int64) string {
	return fmt.Sprintf("BILL-%s-%04d", t.Format("200601"), seq)
}

// ReceiptNumber formats the seq-th receipt of t's day as RCPT-YYYYMMDD-NNNNNN.
func ReceiptNumber(t time.Time, seq int64) string {
	return fmt.Sprintf("RCPT-%s-%06d", t.Format("20060102"), seq)
}

func (s *DefaultLedgerService) nextBillNumber(ctx context.Context, now time.Time) (string, error) {
	seq, err := s.Sequences.Next(ctx, "bill:"+now.Format("200601"))
	if err != nil {
		return "", err
	}
	return BillNumber(now, seq), nil
}

func (s *DefaultLedgerService) nextReceiptNumber(ctx context.Context, now time.Time) (string, error) {
	seq, err := s.Sequences.Next(ctx, "receipt:"+now.Format("20060102"))
	if err != nil {
		return "", err
	}
	return ReceiptNumber(now, seq), nil
}
