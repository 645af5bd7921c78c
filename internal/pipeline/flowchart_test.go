package pipeline

import (
	"fmt"
	"testing"
)

func TestBuildFlowchartFromSteps(t *testing.T) {
	payload, encoding := BuildFlowchart([]string{"boil water", "add pasta"}, "ignored")
	if payload != `{"steps":["boil water","add pasta"]}` {
		t.Errorf("unexpected payload: %s", payload)
	}
	if encoding != FlowchartTypeJSON {
		t.Errorf("unexpected encoding: %s", encoding)
	}
}

func TestBuildFlowchartFromSummary(t *testing.T) {
	payload, _ := BuildFlowchart(nil, "Unpack the box. Plug it in. Press power. Wait for the light. Then celebrate.")
	if n := countFlowchartSteps(payload); n != 4 {
		t.Errorf("expected summary capped at 4 segments, got %d (%s)", n, payload)
	}
}

func TestBuildFlowchartDefault(t *testing.T) {
	payload, _ := BuildFlowchart(nil, "")
	if payload != `{"steps":["Review the email"]}` {
		t.Errorf("unexpected default payload: %s", payload)
	}
}

func TestThemeImageForSubject(t *testing.T) {
	if ThemeImageForSubject("Big tech news") == DefaultThemeImage {
		t.Error("expected tech keyword match")
	}
	if ThemeImageForSubject("Entirely unrelated subject") != DefaultThemeImage {
		t.Error("expected default image")
	}
}

func TestImageCacheBounded(t *testing.T) {
	cache := NewImageCache(3)
	for i := 0; i < 5; i++ {
		cache.Put(fmt.Sprintf("subject %d", i), fmt.Sprintf("url-%d", i))
	}
	if cache.Len() != 3 {
		t.Errorf("expected 3 entries, got %d", cache.Len())
	}
	if _, ok := cache.Get("subject 0"); ok {
		t.Error("oldest entry should have been evicted")
	}
	if url, ok := cache.Get("subject 4"); !ok || url != "url-4" {
		t.Errorf("expected newest entry present, got %q %v", url, ok)
	}
	// Key normalization: whitespace and case are irrelevant.
	cache.Put("  Mixed   Case ", "url-x")
	if url, ok := cache.Get("mixed case"); !ok || url != "url-x" {
		t.Error("expected normalized key hit")
	}
}
