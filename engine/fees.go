/*
fees.go - Advance fee calculation

PURPOSE:
  Converts a requested advance amount and an employer fee policy into a
  fee: fee = min(flat + amount * percentage, max).

CONTRACT:
  - amount must be > 0; zero or negative amounts fail with ErrInvalidAmount,
    not a zero fee.
  - The result is always >= 0 and <= FeeStructure.Max.
  - Pure, total function otherwise.
*/
package engine

// ComputeFee returns the fee for a requested advance amount under the
// given fee structure.
func ComputeFee(amount Money, fs FeeStructure) (Money, error) {
	if !amount.IsPositive() {
		return ZeroMoney(), ErrInvalidAmount
	}

	fee := fs.Flat.Add(amount.Mul(fs.Percentage))
	return fee.Min(fs.Max), nil
}
