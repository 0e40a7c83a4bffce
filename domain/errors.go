package domain

import "errors"

var (
	// ErrNotFound will throw if the requested item is not exists
	ErrNotFound = errors.New("Your requested Item is not found")
	// ErrConflict will throw if the current action already exists
	ErrConflict = errors.New("Your Item already exist")
	// ErrBadParamInput will throw if the given request-body or params is not valid
	ErrBadParamInput       = errors.New("Given Param is not valid")
	ErrInvalidNumberFormat = errors.New("invalid number format")
	ErrInvalidAddress      = errors.New("Invalid address")
	ErrInvalidSignature    = errors.New("Invalid signature")

	// listing state machine
	ErrNotOwnerOrApproved     = errors.New("caller is not owner nor approved")
	ErrIdentityCheckFailed    = errors.New("identity check failed")
	ErrListingAlreadyExists   = errors.New("listing already exists")
	ErrListingNotFound        = errors.New("listing not found")
	ErrInvalidWindow          = errors.New("invalid listing window")
	ErrNotActive              = errors.New("listing is not active")
	ErrBidTooLow              = errors.New("bid too low")
	ErrWrongListingKind       = errors.New("wrong listing kind")
	ErrIncorrectPaymentAmount = errors.New("incorrect payment amount")
	ErrAlreadyFinalized       = errors.New("listing already finalized")
	ErrNotSuccessful          = errors.New("listing is not successful")
	ErrBelowMinimalValue      = errors.New("value below minimal listing value")
	ErrInvalidRoyalty         = errors.New("invalid royalty")
	ErrNotSeller              = errors.New("caller is not the seller")
	ErrHasBids                = errors.New("listing already has a bid")
	ErrNotRejected            = errors.New("listing is not rejected")
	ErrNotProject             = errors.New("collection is not a first party project")

	// settlement
	ErrTransferFailed = errors.New("transfer failed")

	// collection registry
	ErrDuplicateImport            = errors.New("collection already imported")
	ErrCollectionNotRecognized    = errors.New("collection not recognized")
	ErrErc721InterfaceUnsupported = errors.New("erc721 interface unsupported")
)
