package policy

import "errors"

var (
	// ErrUnknownCourse indicates no purchase policy exists for the course.
	// Policy absence is always a hard failure, never a free purchase.
	ErrUnknownCourse = errors.New("policy: no purchase policy for course")

	// ErrWrongAsset indicates the offered asset differs from the required one.
	ErrWrongAsset = errors.New("policy: wrong payment asset")

	// ErrInsufficientAmount indicates the offered amount is below the required price.
	ErrInsufficientAmount = errors.New("policy: insufficient payment amount")

	// ErrOverpayment indicates the offered amount exceeds the required price
	// while the registry rejects overpayment.
	ErrOverpayment = errors.New("policy: overpayment not allowed")

	// ErrInvalidPolicy indicates a policy has a zero amount or empty payee.
	ErrInvalidPolicy = errors.New("policy: invalid purchase policy")

	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("policy: required parameter is nil")
)
