package i18n

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func initLang(t *testing.T, lang string) context.Context {
	t.Helper()
	if err := Init(lang); err != nil {
		t.Fatalf("Init(%q): %v", lang, err)
	}
	return WithLocalizer(context.Background(), NewLocalizer(lang))
}

func TestTranslateKorean(t *testing.T) {
	ctx := initLang(t, "ko")

	if got := T(ctx, "HintLevel9"); got != "고급 기본" {
		t.Errorf("T(HintLevel9) = %q, want '고급 기본'", got)
	}
	if got := T(ctx, "HintLevel1"); got != "초급 COH3" {
		t.Errorf("T(HintLevel1) = %q, want '초급 COH3'", got)
	}
}

func TestTranslateEnglish(t *testing.T) {
	ctx := initLang(t, "en")

	if got := T(ctx, "HintLevel8"); got != "Advanced COH1" {
		t.Errorf("T(HintLevel8) = %q, want 'Advanced COH1'", got)
	}
}

func TestTemplateDataTranslation(t *testing.T) {
	ctx := initLang(t, "en")

	got := Td(ctx, "NextLevelAvailable", map[string]any{"Name": "Advanced COH1", "Level": 8})
	want := "Ask again to get a more detailed 'Advanced COH1' (level 8) hint."
	if got != want {
		t.Errorf("Td(NextLevelAvailable) = %q, want %q", got, want)
	}
}

func TestMissingKey(t *testing.T) {
	ctx := initLang(t, "ko")

	if got := T(ctx, "NonExistentKey"); got != "NonExistentKey" {
		t.Errorf("T(NonExistentKey) = %q, want 'NonExistentKey'", got)
	}
	if got := TOr(ctx, "NonExistentKey", "기본값"); got != "기본값" {
		t.Errorf("TOr(NonExistentKey) = %q, want fallback", got)
	}
}

func TestMiddlewareUsesAcceptLanguage(t *testing.T) {
	initLang(t, "ko")

	var got string
	h := Middleware("ko")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = T(r.Context(), "HintLevel4")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if got != "Beginner base" {
		t.Errorf("with Accept-Language en: got %q, want 'Beginner base'", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)
	if got != "초급 기본" {
		t.Errorf("without Accept-Language: got %q, want '초급 기본'", got)
	}
}
