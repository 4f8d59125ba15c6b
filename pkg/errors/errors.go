// Package errors provides structured error handling for the application.
// It defines AppError type with error codes for consistent API responses.
package errors

import (
	"errors"
	"fmt"
)

// Error codes organized by category
const (
	// General errors (1000-1099)
	CodeSuccess       = 0
	CodeUnknown       = 1000
	CodeInvalidParams = 1001
	CodeNotFound      = 1002
	CodeUnauthorized  = 1003
	CodeQueueFull     = 1004

	// Video info / download errors (1100-1199)
	CodeVideoInfoFailed = 1100
	CodeVideoDownload   = 1101
	CodeUnsupportedURL  = 1102
	CodeCookiesExpired  = 1103
	CodeRateLimited     = 1104

	// Clip generation errors (1200-1299)
	CodeTrendUnavailable   = 1200
	CodeSessionNotFound    = 1201
	CodeClipNotFound       = 1202
	CodeClipAnalysisFailed = 1203

	// Clip extraction errors (1300-1399)
	CodeProbeFailed     = 1300
	CodeClipSplitFailed = 1301

	// Publish errors (1400-1499)
	CodePublishFailed       = 1400
	CodeUnsupportedPlatform = 1401
	CodeNotConnected        = 1402

	// Storage errors (1500-1599)
	CodeDBError        = 1500
	CodeFileNotFound   = 1501
	CodeFileWriteError = 1502
)

// AppError represents a structured application error
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
	Cause   error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an AppError
func Wrap(code int, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapWithDetail wraps an error with additional detail
func WrapWithDetail(code int, message string, detail string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Detail:  detail,
		Cause:   cause,
	}
}

// Is checks if the target error is an AppError with the specified code
func Is(err error, code int) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode extracts error code from error, returns CodeUnknown if not AppError
func GetCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetMessage extracts message from error
func GetMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// Predefined common errors
var (
	ErrInvalidParams = New(CodeInvalidParams, "参数错误 Invalid parameters")
	ErrNotFound      = New(CodeNotFound, "资源不存在 Resource not found")
	ErrUnauthorized  = New(CodeUnauthorized, "未授权 Unauthorized")
	ErrQueueFull     = New(CodeQueueFull, "任务队列已满 Job queue is full")

	// Video info / download
	ErrVideoInfoFailed = New(CodeVideoInfoFailed, "视频信息获取失败 Video info lookup failed")
	ErrVideoDownload   = New(CodeVideoDownload, "视频下载失败 Video download failed")
	ErrUnsupportedURL  = New(CodeUnsupportedURL, "不支持的链接 Unsupported URL")
	ErrCookiesExpired  = New(CodeCookiesExpired, "Cookies已过期 Cookies expired")
	ErrRateLimited     = New(CodeRateLimited, "请求频率限制 Rate limited")

	// Clip generation
	ErrTrendUnavailable = New(CodeTrendUnavailable, "趋势数据不可用 Trend data unavailable")
	ErrSessionNotFound  = New(CodeSessionNotFound, "切片会话不存在或已过期 Clip session not found or expired")
	ErrClipNotFound     = New(CodeClipNotFound, "切片不存在 Clip not found")

	// Clip extraction
	ErrProbeFailed     = New(CodeProbeFailed, "读取视频时长失败 Probe failed")
	ErrClipSplitFailed = New(CodeClipSplitFailed, "切片导出失败 Clip extraction failed")

	// Publish
	ErrPublishFailed       = New(CodePublishFailed, "发布失败 Publish failed")
	ErrUnsupportedPlatform = New(CodeUnsupportedPlatform, "不支持的平台 Unsupported platform")
	ErrNotConnected        = New(CodeNotConnected, "平台账号未连接 Platform account not connected")

	// Storage
	ErrDBError      = New(CodeDBError, "数据库错误 Database error")
	ErrFileNotFound = New(CodeFileNotFound, "文件不存在 File not found")
)
