package util

import (
	"math/big"
	"strconv"
	"strings"
)

var (
	// MaxUint128 is 2^128-1, the ceiling for wei amounts carried in payloads.
	MaxUint128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

	weiPerEth = 1e18
)

// SaturateUint128 clamps v into [0, 2^128-1]. A nil input stays nil.
func SaturateUint128(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	if v.Sign() < 0 {
		return new(big.Int)
	}
	if v.BitLen() > 128 {
		return new(big.Int).Set(MaxUint128)
	}
	return new(big.Int).Set(v)
}

// WeiToEth converts wei to ether in double precision. Amounts above 2^128-1 saturate.
func WeiToEth(wei *big.Int) float64 {
	if wei == nil || wei.Sign() <= 0 {
		return 0
	}
	f, _ := new(big.Float).SetInt(SaturateUint128(wei)).Float64()
	return f / weiPerEth
}

// SplitByComma splits str by comma and drops empty items
func SplitByComma(str string) []string {
	str = strings.TrimSpace(str)
	strArr := strings.Split(str, ",")
	var trimStr []string
	for _, item := range strArr {
		if len(strings.TrimSpace(item)) > 0 {
			trimStr = append(trimStr, strings.TrimSpace(item))
		}
	}
	return trimStr
}

// StringToUint64 converts string to uint64
func StringToUint64(str string) (uint64, error) {
	ui64, err := strconv.ParseUint(str, 10, 64)
	if err != nil {
		return 0, err
	}
	return ui64, nil
}

// BigToUint64Saturating returns v as uint64, clamped to the uint64 range. nil maps to nil.
func BigToUint64Saturating(v *big.Int) *uint64 {
	if v == nil {
		return nil
	}
	var out uint64
	switch {
	case v.Sign() <= 0:
		out = 0
	case v.IsUint64():
		out = v.Uint64()
	default:
		out = ^uint64(0)
	}
	return &out
}
