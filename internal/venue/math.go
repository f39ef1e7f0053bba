package venue

import (
	"fmt"
	"math/big"
)

// constProductOutput computes the output of a constant-product (x*y=k) pool
// with the fee applied to the input side. big.Int throughout to avoid u64
// overflow on the intermediate products.
func constProductOutput(amountIn, reserveIn, reserveOut, feeNumerator, feeDenominator uint64) (uint64, error) {
	if amountIn == 0 || reserveIn == 0 || reserveOut == 0 {
		return 0, fmt.Errorf("amounts must be > 0")
	}
	if feeDenominator == 0 || feeNumerator >= feeDenominator {
		return 0, fmt.Errorf("invalid fee %d/%d", feeNumerator, feeDenominator)
	}

	// amountInAfterFee = amountIn * (feeDenominator - feeNumerator) / feeDenominator
	inAfterFee := new(big.Int).SetUint64(amountIn)
	inAfterFee.Mul(inAfterFee, new(big.Int).SetUint64(feeDenominator-feeNumerator))
	inAfterFee.Div(inAfterFee, new(big.Int).SetUint64(feeDenominator))

	// out = inAfterFee * reserveOut / (reserveIn + inAfterFee)
	numerator := new(big.Int).Mul(inAfterFee, new(big.Int).SetUint64(reserveOut))
	denominator := new(big.Int).Add(new(big.Int).SetUint64(reserveIn), inAfterFee)

	out := new(big.Int).Div(numerator, denominator)
	if !out.IsUint64() {
		return 0, fmt.Errorf("output amount overflow")
	}
	return out.Uint64(), nil
}

// rateDeskOutput converts amountIn at a fixed num/den rate, then takes the
// desk fee in basis points off the output.
func rateDeskOutput(amountIn, rateNumerator, rateDenominator uint64, feeBps uint16) (uint64, error) {
	if amountIn == 0 {
		return 0, fmt.Errorf("amount must be > 0")
	}
	if rateNumerator == 0 || rateDenominator == 0 {
		return 0, fmt.Errorf("invalid rate %d/%d", rateNumerator, rateDenominator)
	}
	if feeBps >= 10000 {
		return 0, fmt.Errorf("fee %d bps consumes entire output", feeBps)
	}

	out := new(big.Int).SetUint64(amountIn)
	out.Mul(out, new(big.Int).SetUint64(rateNumerator))
	out.Div(out, new(big.Int).SetUint64(rateDenominator))

	out.Mul(out, new(big.Int).SetUint64(uint64(10000-feeBps)))
	out.Div(out, new(big.Int).SetUint64(10000))

	if !out.IsUint64() {
		return 0, fmt.Errorf("output amount overflow")
	}
	return out.Uint64(), nil
}
