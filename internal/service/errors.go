package service

import (
	"errors"
	"net/http"
)

// Kind 业务错误类别，handler 据此映射HTTP状态码
type Kind int

const (
	KindUnexpected Kind = iota
	KindValidation
	KindDomain
	KindAuth
	KindForbidden
	KindNotFound
	KindConflict
	KindRateLimited
	KindUnavailable
)

var kindStatus = map[Kind]int{
	KindUnexpected:  http.StatusInternalServerError,
	KindValidation:  http.StatusBadRequest,
	KindDomain:      http.StatusForbidden,
	KindAuth:        http.StatusUnauthorized,
	KindForbidden:   http.StatusForbidden,
	KindNotFound:    http.StatusNotFound,
	KindConflict:    http.StatusBadRequest,
	KindRateLimited: http.StatusTooManyRequests,
	KindUnavailable: http.StatusServiceUnavailable,
}

// AppError 带类别与客户端可见信息的业务错误
type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// HTTPStatus 对应的HTTP状态码
func (e *AppError) HTTPStatus() int {
	if s, ok := kindStatus[e.Kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// PublicMessage 返回给客户端的信息
func (e *AppError) PublicMessage() string { return e.Message }

// Is 同类别同信息视为同一错误，便于 errors.Is 比较哨兵值
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Kind == e.Kind && t.Message == e.Message
}

func newError(kind Kind, msg string) *AppError {
	return &AppError{Kind: kind, Message: msg}
}

// Invalid 构造参数校验错误
func Invalid(msg string) *AppError { return newError(KindValidation, msg) }

// DomainRejected 邮箱后缀不在允许范围内
func DomainRejected(domain string) *AppError {
	return newError(KindDomain, "Only "+domain+" email addresses are allowed")
}

// KindOf 返回错误类别，非 AppError 视为意外错误
func KindOf(err error) Kind {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnexpected
}

// 业务层通用错误
var (
	ErrOtpInvalid         = newError(KindValidation, "Invalid or expired OTP")
	ErrUserExists         = newError(KindConflict, "User already exists")
	ErrInvalidCredentials = newError(KindAuth, "Invalid credentials")
	ErrNotVerified        = newError(KindForbidden, "Please verify your email first")
	ErrUserNotFound       = newError(KindNotFound, "User not found")
	ErrNoAccount          = newError(KindNotFound, "No account found with this email")
	ErrOtpCooldown        = newError(KindRateLimited, "Please wait before requesting another code")
	ErrOtpSendFailed      = newError(KindUnexpected, "Failed to send OTP email")

	ErrUsernameTaken  = newError(KindConflict, "Username is already taken")
	ErrUsernameLength = newError(KindValidation, "Username must be between 3 and 50 characters")
	ErrNoProfileField = newError(KindValidation, "No fields to update")

	ErrSelfFollow     = newError(KindValidation, "You cannot follow yourself")
	ErrUserIDRequired = newError(KindValidation, "User ID is required")

	ErrPostEmpty        = newError(KindValidation, "Caption or image is required")
	ErrPostIDRequired   = newError(KindValidation, "Post ID is required")
	ErrPostNotOwned     = newError(KindNotFound, "Post not found or unauthorized")
	ErrPostNotFound     = newError(KindNotFound, "Post not found")
	ErrCommentEmpty     = newError(KindValidation, "Content is required")
	ErrMessageEmpty     = newError(KindValidation, "Content or image is required")
	ErrSelfConversation = newError(KindValidation, "You cannot message yourself")
	ErrConversationGone = newError(KindNotFound, "Conversation not found")
	ErrNotParticipant   = newError(KindForbidden, "Unauthorized")

	ErrNotificationIDs = newError(KindValidation, "Notification IDs are required")

	ErrUploadsDisabled   = newError(KindUnavailable, "Image uploads are not configured")
	ErrUnsupportedUpload = newError(KindValidation, "Only JPEG, PNG, GIF or WebP images are allowed")
)
