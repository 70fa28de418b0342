package models

import "errors"

var (
	// ErrJobNotFound 翻译任务不存在错误
	ErrJobNotFound = errors.New("translation job not found")

	// ErrInvalidJobStatus 无效的任务状态错误
	ErrInvalidJobStatus = errors.New("invalid job status")
)
