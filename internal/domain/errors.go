package domain

import "errors"

var (
	ErrNoLiquidity    = errors.New("no liquidity on required book side")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidOrder   = errors.New("invalid order parameters")
	ErrMessageTooLong = errors.New("message exceeds push length limit")
)
