package common

import "errors"

var (
	// ErrInvalidInput 无效输入错误
	ErrInvalidInput = errors.New("invalid input")

	// ErrValidationFailed 验证失败错误
	ErrValidationFailed = errors.New("validation failed")

	// ErrStorageFailed 存储失败错误
	ErrStorageFailed = errors.New("storage failed")

	// ErrBridgeFailed ML 桥接失败错误
	ErrBridgeFailed = errors.New("bridge failed")

	// ErrRateLimitExceeded 速率限制错误
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)
