package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"app/internal/domain/model"
)

var errInvalidQuantity = errors.New("invalid quantity")

// 数量はフォーム由来で文字列のこともあるので数値/文字列の両方を受ける。
// 未指定(null, "")は0。小数は切り捨て。絶対値がMaxLineQuantityを超えたらエラー。
type Quantity int64

func (q *Quantity) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*q = 0
		return nil
	}

	raw := string(b)
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return errInvalidQuantity
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			*q = 0
			return nil
		}
	}

	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n > model.MaxLineQuantity || n < -model.MaxLineQuantity {
			return errInvalidQuantity
		}
		*q = Quantity(n)
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > float64(model.MaxLineQuantity) {
		return errInvalidQuantity
	}
	*q = Quantity(int64(f))
	return nil
}

func (q Quantity) Int64() int64 {
	return int64(q)
}
