package assets

import _ "embed" // 에셋 임베드용

// LocalesYAML 는 점수 기록 날짜/시각 표기용 로캘 레이아웃 YAML이다.
//
//go:embed locales/locales.yml
var LocalesYAML string

// MessagesYAML 는 사용자에게 노출되는 API 문구 YAML이다.
//
//go:embed messages/messages.yml
var MessagesYAML string
