package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// BindErrorMessage 将请求绑定错误转换为用户可读的提示
// 非校验类错误(如JSON语法错误)返回通用提示
func BindErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request parameters."
	}

	fe := verrs[0]
	field := snakeCase(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Missing required field: %s.", field)
	case "oneof":
		return fmt.Sprintf("Invalid value for %s. Allowed: %s.", field, fe.Param())
	default:
		return fmt.Sprintf("Invalid value for %s.", field)
	}
}

// snakeCase 将结构体字段名转换为JSON风格的下划线命名
func snakeCase(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && runes[i-1] >= 'a' && runes[i-1] <= 'z' {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
