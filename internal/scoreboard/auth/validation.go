package auth

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/common/messageprovider"
	sberrors "github.com/park285/llm-kakao-bots/scoreboard-go/internal/scoreboard/errors"
)

// SignUpInput: 가입 요청
type SignUpInput struct {
	Username string `json:"username" validate:"required,min=3,max=24,username_chars"`
	Email    string `json:"email" validate:"required,email"`
	// bcrypt 는 72 바이트까지만 본다.
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// Validator 는 go-playground/validator 결과를 사용자용 문구로 바꾼다.
type Validator struct {
	v        *validator.Validate
	messages *messageprovider.Provider
}

// NewValidator: JSON 필드명을 쓰는 Validator 를 만든다.
func NewValidator(messages *messageprovider.Provider) (*Validator, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	if err := v.RegisterValidation("username_chars", usernameChars); err != nil {
		return nil, fmt.Errorf("register username_chars validation failed: %w", err)
	}
	return &Validator{v: v, messages: messages}, nil
}

// '@' 와 공백은 사용자명에 쓸 수 없다.
func usernameChars(fl validator.FieldLevel) bool {
	return !strings.ContainsFunc(fl.Field().String(), func(r rune) bool {
		return r == '@' || unicode.IsSpace(r)
	})
}

// Validate: 실패하면 필드 순서대로 문구를 이어 붙인 InvalidArgumentError 를 돌려준다.
func (v *Validator) Validate(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, v.message(fe))
	}
	return sberrors.InvalidArgumentError{Message: strings.Join(msgs, "; ")}
}

func (v *Validator) message(fe validator.FieldError) string {
	key := "validation." + fe.Tag()
	if !v.messages.Has(key) {
		key = "validation.default"
	}
	return v.messages.Get(key,
		messageprovider.P("field", fe.Field()),
		messageprovider.P("param", fe.Param()),
	)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
