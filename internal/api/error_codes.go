// internal/api/error_codes.go
package api

// API错误代码常量，只用于标准响应包装；生成接口使用自己的错误体
const (
	ErrorNotFound         = "NOT_FOUND"
	ErrorMethodNotAllowed = "METHOD_NOT_ALLOWED"
	ErrorInternalError    = "INTERNAL_ERROR"
)
