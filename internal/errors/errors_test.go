package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_MessageAndCode(t *testing.T) {
	cause := errors.New("disk full")
	err := NewStorageError("写入失败", cause)

	assert.Equal(t, "写入失败: disk full", err.Error())
	assert.Equal(t, "STORAGE_ERROR", err.Code)
	assert.ErrorIs(t, err, cause)

	upstream := NewUpstreamError(`{"error":"rate"}`, cause)
	assert.Equal(t, ErrorTypeUpstream, upstream.Type)
	assert.Equal(t, "upstream_error", upstream.Code)

	gen := NewGenerationFailedError("生成失败", nil)
	assert.Equal(t, "generation_failed", gen.Code)
	assert.Equal(t, "生成失败", gen.Error())
}

func TestPredicates_FollowWrapping(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", NewNotFoundError("帖子不存在", nil))

	assert.True(t, IsNotFoundError(wrapped))
	assert.False(t, IsValidationError(wrapped))
	assert.False(t, IsStorageError(errors.New("plain")))
	assert.True(t, IsValidationError(NewValidationError("bad", nil)))
}

func TestWrapError(t *testing.T) {
	assert.Nil(t, WrapError(nil, "ignored", ErrorTypeError))

	plain := WrapError(errors.New("boom"), "处理失败", ErrorTypeError)
	var appErr *AppError
	assert.True(t, errors.As(plain, &appErr))
	assert.Equal(t, ErrorTypeError, appErr.Type)
	assert.Equal(t, "PROCESSING_ERROR", appErr.Code)

	again := WrapError(NewStorageError("读取失败", nil), "加载草稿", ErrorTypeError)
	assert.True(t, IsStorageError(again))
	assert.Contains(t, again.Error(), "加载草稿: 读取失败")
}
