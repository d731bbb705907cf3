package scores

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// FallbackLocale: 일치하는 로캘이 없을 때 쓰는 태그
const FallbackLocale = "en-US"

type localeLayout struct {
	Date     string            `yaml:"date"`
	Time     string            `yaml:"time"`
	Meridiem map[string]string `yaml:"meridiem"`
}

type localeCatalog struct {
	Default string                  `yaml:"default"`
	Locales map[string]localeLayout `yaml:"locales"`
}

// LocaleFormatter 는 시각을 로캘별 날짜/시각 문자열로 바꾼다.
type LocaleFormatter struct {
	tag      string
	layout   localeLayout
	location *time.Location
}

// NewLocaleFormatter: 레이아웃 YAML 에서 locale 과 가장 가까운 항목을 고른다.
// 일치 항목이 없으면 카탈로그 기본값(없으면 en-US)을 쓴다. loc 이 nil 이면 UTC.
func NewLocaleFormatter(catalogYAML, locale string, loc *time.Location) (*LocaleFormatter, error) {
	var catalog localeCatalog
	if err := yaml.Unmarshal([]byte(catalogYAML), &catalog); err != nil {
		return nil, fmt.Errorf("parse locale catalog failed: %w", err)
	}
	if catalog.Default == "" {
		catalog.Default = FallbackLocale
	}
	defaultLayout, ok := catalog.Locales[catalog.Default]
	if !ok {
		return nil, fmt.Errorf("default locale %q missing from catalog", catalog.Default)
	}

	// Matcher 는 일치하지 않으면 첫 태그를 고르므로 기본 로캘을 맨 앞에 둔다.
	names := []string{catalog.Default}
	tags := []language.Tag{language.Make(catalog.Default)}
	for name := range catalog.Locales {
		if name == catalog.Default {
			continue
		}
		names = append(names, name)
		tags = append(tags, language.Make(name))
	}

	chosen := catalog.Default
	if strings.TrimSpace(locale) != "" {
		desired, _, err := language.ParseAcceptLanguage(locale)
		if err == nil && len(desired) > 0 {
			_, idx, conf := language.NewMatcher(tags).Match(desired...)
			if conf != language.No {
				chosen = names[idx]
			}
		}
	}

	layout := catalog.Locales[chosen]
	if layout.Date == "" {
		layout.Date = defaultLayout.Date
	}
	if layout.Time == "" {
		layout.Time = defaultLayout.Time
	}
	if loc == nil {
		loc = time.UTC
	}
	return &LocaleFormatter{tag: chosen, layout: layout, location: loc}, nil
}

// Tag: 선택된 로캘 태그
func (f *LocaleFormatter) Tag() string { return f.tag }

// Format: t 를 설정된 시간대로 옮겨 (날짜, 시각) 문자열을 만든다.
func (f *LocaleFormatter) Format(t time.Time) (date, clock string) {
	local := t.In(f.location)
	date = local.Format(f.layout.Date)
	clock = local.Format(f.layout.Time)
	// 정의된 표기만 바꾼다.
	var pairs []string
	if am, ok := f.layout.Meridiem["am"]; ok {
		pairs = append(pairs, "AM", am)
	}
	if pm, ok := f.layout.Meridiem["pm"]; ok {
		pairs = append(pairs, "PM", pm)
	}
	if len(pairs) > 0 {
		clock = strings.NewReplacer(pairs...).Replace(clock)
	}
	return date, clock
}

// FormatISO: 밀리초 단위 UTC ISO-8601 문자열 (예: 2025-01-02T03:04:05.678Z)
func FormatISO(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
