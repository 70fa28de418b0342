package model

// PriorTranslation 之前完成的一条译文
// 作为上下文传入，保证术语和风格连贯
type PriorTranslation struct {
	Translation string `json:"translation"` // 译文文本
}

// TranslateRequest 翻译请求
// api_key等字段为请求级覆盖，为空时使用服务端环境配置
type TranslateRequest struct {
	SelectedText      string             `json:"selected_text" binding:"required"` // 待翻译文本
	TargetLanguage    string             `json:"target_language"`                  // 目标语言(代码或名称)
	PriorTranslations []PriorTranslation `json:"prior_translations"`               // 之前的译文上下文
	APIKey            string             `json:"api_key"`                          // API密钥覆盖
	APIEndpoint       string             `json:"api_endpoint"`                     // API端点覆盖
	Model             string             `json:"model"`                            // 模型名称覆盖
	Temperature       *float32           `json:"temperature"`                      // 采样温度覆盖
	SystemPrompt      string             `json:"system_prompt"`                    // 系统提示词覆盖
	UserPrompt        string             `json:"user_prompt"`                      // 用户提示词覆盖
}

// AdaptRequest 译文润色请求
type AdaptRequest struct {
	SelectedText           string   `json:"selected_text" binding:"required"` // 待润色的译文
	TargetLanguage         string   `json:"target_language"`                  // 目标语言
	AdditionalInstructions string   `json:"additional_instructions"`          // 附加润色要求
	APIKey                 string   `json:"api_key"`
	APIEndpoint            string   `json:"api_endpoint"`
	Model                  string   `json:"model"`
	Temperature            *float32 `json:"temperature"`
	AdaptSystemPrompt      string   `json:"adapt_system_prompt"` // 润色系统提示词覆盖
	AdaptUserPrompt        string   `json:"adapt_user_prompt"`   // 润色用户提示词覆盖
}

// ExportRequest 译文导出请求
type ExportRequest struct {
	Text     string `json:"text" binding:"required"`                      // 导出文本
	Format   string `json:"format" binding:"required,oneof=txt docx pdf"` // 导出格式
	Filename string `json:"filename"`                                     // 文件名(不含扩展名)
}

// CreateJobRequest 创建批量翻译任务请求
type CreateJobRequest struct {
	FileID         string `json:"file_id" binding:"required"`         // 已上传文件的ID
	FileName       string `json:"file_name"`                          // 原始文件名
	FileType       string `json:"file_type" binding:"required"`       // 文档格式(pdf/txt/docx)
	TargetLanguage string `json:"target_language" binding:"required"` // 目标语言
	Model          string `json:"model"`                              // 模型名称(可选)
}

// ListJobsRequest 任务列表查询参数
type ListJobsRequest struct {
	Page     int `form:"page,default=1"`       // 页码，从1开始
	PageSize int `form:"page_size,default=20"` // 每页数量
}
