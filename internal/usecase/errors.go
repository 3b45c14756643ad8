package usecase

import (
	"errors"
	"fmt"
)

// checkoutまわりの失敗シグナル（Handlerがリダイレクト先に変換する）
var (
	//ログインが必要
	ErrUnauthenticated = errors.New("unauthenticated")
	//カートが空
	ErrEmptyCart = errors.New("cart empty")
	//今すぐ購入の選択が無い
	ErrNoBuyNowSelection = errors.New("no buy-now selection")
	//商品がカタログに無い
	ErrProductNotFound = errors.New("product not found")
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}
