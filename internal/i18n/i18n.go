package i18n

import (
	"fmt"
	"strings"
)

// Language represents a supported locale.
type Language string

const (
	LangEN Language = "en"
	LangKO Language = "ko"
)

var catalogs = map[Language]map[string]string{
	LangEN: en,
	LangKO: ko,
}

// Parse maps a user setting (en, ko, ko_KR.UTF-8, ...) to a supported
// language. Unrecognized values fall back to English.
func Parse(lang string) Language {
	l := strings.ToLower(strings.TrimSpace(lang))
	if i := strings.IndexAny(l, "-_."); i > 0 {
		l = l[:i]
	}
	if _, ok := catalogs[Language(l)]; ok {
		return Language(l)
	}
	return LangEN
}

// Catalog translates message keys for one language.
type Catalog struct {
	lang Language
}

func For(lang string) Catalog {
	return Catalog{lang: Parse(lang)}
}

func (c Catalog) Language() Language {
	return c.lang
}

// T returns the translated string for key, falling back to English and
// then to the key itself.
func (c Catalog) T(key string) string {
	if v, ok := catalogs[c.lang][key]; ok {
		return v
	}
	if v, ok := en[key]; ok {
		return v
	}
	return key
}

// Tf returns a formatted translated string.
func (c Catalog) Tf(key string, args ...any) string {
	return fmt.Sprintf(c.T(key), args...)
}

var en = map[string]string{
	"gate_prefix":       "[Usage Gate]",
	"block_retry":       "[Usage Gate] %s: usage limit reached. Retry this Task with model: \"%s\".",
	"rewrite_reason":    "[Usage Gate] %s → auto-switched to %s",
	"advisory_exceeded": "[Usage Gate] 5h:%s 7d:%s | Sub-agent: %s auto-applied",
	"advisory_blocking": "[Usage Gate] 5h:%s 7d:%s | Sub-agents must use %s",
	"advisory_warning":  "[Usage Gate] 5h:%s 7d:%s | Approaching threshold (%d%%/%d%%)",
	"no_data":           "no data",
	"gate_off":          "Gate OFF",
	"gate_active":       "ACTIVE",
	"gate_standby":      "standby",
	"gate":              "Gate",
	"watch_cached":      "cached %s ago",
	"watch_never":       "no snapshot yet",
	"watch_refreshing":  "refreshing…",
	"watch_next":        "next refresh in %s",
	"key_refresh":       "refresh",
	"key_quit":          "quit",
	"watch_outcome":     "last refresh: %s",
}

var ko = map[string]string{
	"block_retry":       "[Usage Gate] %s: 사용량 한도에 도달했습니다. model: \"%s\" 로 Task를 다시 실행하세요.",
	"rewrite_reason":    "[Usage Gate] %s → %s 모델로 자동 전환",
	"advisory_exceeded": "[Usage Gate] 5h:%s 7d:%s | 서브에이전트: %s 자동 적용",
	"advisory_blocking": "[Usage Gate] 5h:%s 7d:%s | 서브에이전트는 %s 모델을 사용해야 합니다",
	"advisory_warning":  "[Usage Gate] 5h:%s 7d:%s | 한도 임박 (%d%%/%d%%)",
	"no_data":           "데이터 없음",
	"gate_off":          "Gate 꺼짐",
	"gate_active":       "작동",
	"gate_standby":      "대기",
	"watch_cached":      "%s 전 갱신",
	"watch_never":       "아직 스냅샷 없음",
	"watch_refreshing":  "갱신 중…",
	"watch_next":        "다음 갱신까지 %s",
	"key_refresh":       "새로고침",
	"key_quit":          "종료",
	"watch_outcome":     "마지막 갱신: %s",
}
