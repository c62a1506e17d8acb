package readings

import "errors"

// Business-rule failures. Handlers map these onto the mutation envelope
// with Success=false rather than a transport error.
var (
	ErrInvalidSpread            = errors.New("unknown spread type")
	ErrPaymentSetupFailed       = errors.New("payment setup failed")
	ErrPaymentMethodMismatch    = errors.New("payment method does not belong to this customer")
	ErrInvalidStateTransition   = errors.New("request is not awaiting payment")
	ErrPaymentNotConfirmed      = errors.New("payment setup has not completed")
	ErrNotClaimable             = errors.New("request is not available to claim")
	ErrReaderNotPayable         = errors.New("reader has no payable connected account")
	ErrNoPaymentMethod          = errors.New("request has no usable payment method")
	ErrNotFulfillable           = errors.New("request is not claimed by this reader")
	ErrPaymentMethodUnavailable = errors.New("payment method could not be resolved")
	ErrPaymentCloneFailed       = errors.New("payment method could not be cloned to the reader account")
	ErrPaymentFailed            = errors.New("payment was not captured")
	ErrNotCancellable           = errors.New("request can no longer be cancelled")
	ErrNotReleasable            = errors.New("request is not claimed by this reader")
	ErrInvalidRating            = errors.New("rating must be between 1 and 5")
	ErrNotReviewable            = errors.New("request is not reviewable")
)

// IsBusinessError reports whether err is an expected business-rule
// rejection as opposed to an unexpected failure.
func IsBusinessError(err error) bool {
	for _, target := range []error{
		ErrInvalidSpread, ErrPaymentSetupFailed, ErrPaymentMethodMismatch,
		ErrInvalidStateTransition, ErrPaymentNotConfirmed, ErrNotClaimable, ErrReaderNotPayable,
		ErrNoPaymentMethod, ErrNotFulfillable, ErrPaymentMethodUnavailable,
		ErrPaymentCloneFailed, ErrPaymentFailed, ErrNotCancellable,
		ErrNotReleasable, ErrInvalidRating, ErrNotReviewable,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
