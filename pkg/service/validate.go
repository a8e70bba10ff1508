package service

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/shouni/visionary-gallery/pkg/domain"
)

// NewValidator はギャラリー用のカスタムルールを登録した validator を返します。
//
//	category    : 既知のカテゴリで、かつ All ではない
//	aspectratio : 画面に提示している縦横比のいずれか
//	notblank    : 前後の空白を除いて空でない
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		c := domain.Category(fl.Field().String())
		return c.Valid() && c != domain.CategoryAll
	})
	_ = v.RegisterValidation("aspectratio", func(fl validator.FieldLevel) bool {
		return domain.AspectRatio(fl.Field().String()).Offered()
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// AsValidationError は validator のエラーを利用者向けの ValidationError に変換します。
// それ以外のエラーはそのまま返します。
func AsValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	switch fe.Field() {
	case "Prompt":
		return &domain.ValidationError{Field: "prompt", Message: domain.MsgPromptRequired}
	case "Category":
		return &domain.ValidationError{Field: "category", Message: "请选择作品分类"}
	case "AspectRatio":
		return &domain.ValidationError{Field: "aspectRatio", Message: "不支持的图片比例"}
	default:
		return &domain.ValidationError{Field: strings.ToLower(fe.Field()), Message: fe.Error()}
	}
}
