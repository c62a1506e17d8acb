// Package fees computes the platform fee split for a reading request.
// All amounts are integer minor currency units; the percentage is carried
// as basis points so no floating point ever touches a currency value.
package fees

// ComputeFees splits price into the platform fee and the reader payout.
// The percentage part is floored, so the platform never takes more than
// the configured rate; the remainder stays with the payout.
// Invariant: platformFee + readerPayout == price.
func ComputeFees(price, feePercentBps, feeFixed int64) (platformFee, readerPayout int64) {
	platformFee = price*feePercentBps/10000 + feeFixed
	if platformFee > price {
		platformFee = price
	}
	if platformFee < 0 {
		platformFee = 0
	}
	readerPayout = price - platformFee
	return platformFee, readerPayout
}
