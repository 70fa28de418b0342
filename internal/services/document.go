package services

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/sirupsen/logrus"

	"github.com/mcjkurz/step-translate/internal/document"
	"github.com/mcjkurz/step-translate/pkg/storage"
)

// defaultMaxUploadMB 默认的上传文件大小上限(MB)
const defaultMaxUploadMB = 50

// pdfMagic PDF文件的魔数前缀
var pdfMagic = []byte("%PDF")

// UploadError 上传校验错误，消息直接面向客户端返回
type UploadError struct {
	msg string
}

func (e *UploadError) Error() string {
	return e.msg
}

func newUploadError(format string, args ...interface{}) *UploadError {
	return &UploadError{msg: fmt.Sprintf(format, args...)}
}

// IsUploadError 判断错误是否为上传校验错误
func IsUploadError(err error) bool {
	var ue *UploadError
	return errors.As(err, &ue)
}

// UploadResult 文档上传结果
type UploadResult struct {
	FileID    string             // 存储分配的文件ID
	FileName  string             // 原始文件名
	FileType  document.FileType  // 检测到的文档格式
	Passages  []document.Passage // 提取出的段落序列
	StoredExt string             // 存储时使用的扩展名
	PageCount int                // PDF页数，其他格式为0
}

// DocumentService 文档上传与解析服务
// 负责校验上传文件、持久化原始文件并提取段落
type DocumentService struct {
	storage     storage.Storage
	logger      *logrus.Logger
	maxUploadMB int
}

// DocumentOption 文档服务配置选项
type DocumentOption func(*DocumentService)

// WithDocumentLogger 设置日志记录器
func WithDocumentLogger(logger *logrus.Logger) DocumentOption {
	return func(s *DocumentService) {
		s.logger = logger
	}
}

// WithMaxUploadMB 设置上传文件大小上限(MB)
func WithMaxUploadMB(mb int) DocumentOption {
	return func(s *DocumentService) {
		if mb > 0 {
			s.maxUploadMB = mb
		}
	}
}

// NewDocumentService 创建文档服务
func NewDocumentService(store storage.Storage, opts ...DocumentOption) *DocumentService {
	s := &DocumentService{
		storage:     store,
		logger:      logrus.New(),
		maxUploadMB: defaultMaxUploadMB,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upload 校验并保存上传的文档，返回提取出的段落
// 解析失败或没有提取到内容时回滚已保存的文件
func (s *DocumentService) Upload(filename, contentType string, data []byte) (*UploadResult, error) {
	if filename == "" {
		return nil, newUploadError("Missing filename.")
	}

	fileType, ok := document.DetectFileType(filename, contentType)
	if !ok {
		return nil, newUploadError("Unsupported file type. Please upload PDF, TXT, or DOCX.")
	}

	if len(data) == 0 {
		return nil, newUploadError("Empty file.")
	}
	if len(data) > s.maxUploadMB<<20 {
		return nil, newUploadError("File too large (max %dMB).", s.maxUploadMB)
	}

	pageCount := 0
	if fileType == document.PDF {
		if !bytes.HasPrefix(data, pdfMagic) {
			return nil, newUploadError("Invalid PDF file.")
		}
		// 页数仅用于展示，统计失败不影响上传
		if n, err := pdfapi.PageCount(bytes.NewReader(data), nil); err != nil {
			s.logger.WithError(err).WithField("filename", filename).Warn("Failed to count PDF pages")
		} else {
			pageCount = n
		}
	}

	info, err := s.storage.Save(bytes.NewReader(data), filename)
	if err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	passages, err := document.ParseReader(bytes.NewReader(data), fileType)
	if err != nil {
		s.rollback(info.ID)
		s.logger.WithError(err).WithField("filename", filename).Error("Failed to parse document")
		return nil, newUploadError("Failed to parse document: %v", err)
	}

	if len(passages) == 0 {
		s.rollback(info.ID)
		return nil, newUploadError("No text content found in document.")
	}

	s.logger.WithFields(logrus.Fields{
		"file_id":   info.ID,
		"filename":  filename,
		"file_type": fileType,
		"passages":  len(passages),
	}).Info("Document uploaded and parsed successfully")

	return &UploadResult{
		FileID:    info.ID,
		FileName:  filename,
		FileType:  fileType,
		Passages:  passages,
		StoredExt: storedExt(filename, fileType),
		PageCount: pageCount,
	}, nil
}

// GetFile 获取已上传文件的内容和元数据
func (s *DocumentService) GetFile(id string) (storage.FileInfo, []byte, error) {
	info, err := s.storage.Stat(id)
	if err != nil {
		return storage.FileInfo{}, nil, err
	}

	reader, err := s.storage.Get(id)
	if err != nil {
		return storage.FileInfo{}, nil, err
	}
	defer reader.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return storage.FileInfo{}, nil, fmt.Errorf("failed to read file: %w", err)
	}

	return info, buf.Bytes(), nil
}

// storedExt 返回存储时使用的扩展名，文件名没有扩展名时按格式补全
func storedExt(filename string, fileType document.FileType) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = "." + string(fileType)
	}
	return ext
}

// rollback 删除解析失败的已保存文件
func (s *DocumentService) rollback(fileID string) {
	if err := s.storage.Delete(fileID); err != nil {
		s.logger.WithError(err).WithField("file_id", fileID).Warn("Failed to remove file after parse failure")
	}
}
