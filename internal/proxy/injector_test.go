package proxy

import (
	"bytes"
	"strings"
	"testing"
)

const scriptTag = "<script data-uisel>"

func TestShouldInject(t *testing.T) {
	tests := []struct {
		contentType string
		expected    bool
	}{
		{"text/html", true},
		{"text/html; charset=utf-8", true},
		{"TEXT/HTML", true},
		{"application/json", false},
		{"text/plain", false},
		{"application/javascript", false},
		{"image/png", false},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			result := ShouldInject(tt.contentType)
			if result != tt.expected {
				t.Errorf("ShouldInject(%q) = %v, expected %v", tt.contentType, result, tt.expected)
			}
		})
	}
}

func TestInjectScript_Placement(t *testing.T) {
	tests := []struct {
		name   string
		html   string
		anchor string // script must come after this marker
		before string // and before this one, when set
	}{
		{
			name:   "before head close",
			html:   "<!DOCTYPE html>\n<html>\n<head>\n<title>Test</title>\n</head>\n<body><h1>Hi</h1></body>\n</html>",
			anchor: "<title>Test</title>",
			before: "</head>",
		},
		{
			name:   "after head open",
			html:   "<!DOCTYPE html>\n<html>\n<head><title>Test</title>\n<body>\n<h1>Hi</h1>\n</body>\n</html>",
			anchor: "<head>",
			before: "<title>",
		},
		{
			name:   "after body open",
			html:   "<!DOCTYPE html>\n<html>\n<body>\n<h1>Hi</h1>\n</body>\n</html>",
			anchor: "<body>",
			before: "<h1>",
		},
		{
			name:   "after body with attributes",
			html:   `<html><body class="page" id="main"><h1>Hi</h1></body></html>`,
			anchor: `<body class="page" id="main">`,
			before: "<h1>",
		},
		{
			name:   "after html open",
			html:   `<html lang="en"><p>bare</p></html>`,
			anchor: `<html lang="en">`,
			before: "<p>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := InjectScript([]byte(tt.html))

			scriptIdx := bytes.Index(result, []byte(scriptTag))
			if scriptIdx == -1 {
				t.Fatal("Script not injected")
			}
			anchorIdx := bytes.Index(result, []byte(tt.anchor))
			if anchorIdx == -1 || scriptIdx < anchorIdx+len(tt.anchor) {
				t.Errorf("Script should be injected after %q", tt.anchor)
			}
			if tt.before != "" {
				if beforeIdx := bytes.Index(result, []byte(tt.before)); beforeIdx < scriptIdx {
					t.Errorf("Script should be injected before %q", tt.before)
				}
			}
		})
	}
}

func TestInjectScript_NoHTML(t *testing.T) {
	result := InjectScript([]byte(`Hello World`))

	scriptIdx := bytes.Index(result, []byte("<script"))
	if scriptIdx == -1 {
		t.Fatal("Script tag not found")
	}
	if scriptIdx > 10 {
		t.Error("Script should be prepended when no HTML tags found")
	}
	if !bytes.HasSuffix(result, []byte("Hello World")) {
		t.Error("Original content missing")
	}
}

func TestInjectScript_Idempotent(t *testing.T) {
	once := InjectScript([]byte(`<html><head></head><body></body></html>`))
	twice := InjectScript(once)
	if !bytes.Equal(once, twice) {
		t.Error("script injected twice")
	}
	if n := bytes.Count(twice, []byte(scriptTag)); n != 1 {
		t.Errorf("script tags = %d, want 1", n)
	}
}

func TestInjectScript_ScriptContent(t *testing.T) {
	result := string(InjectScript([]byte(`<html><head></head><body></body></html>`)))

	expectedFeatures := []string{
		"WebSocket",
		"window.location.host + '" + WebSocketPath + "'",
		"prompt-panel-floating",
		"preventDefault",
		"getBoundingClientRect",
		"__reactFiber",
		"'hello'",
		"uiselPulse",
		"a.name === config.annotation",
	}

	for _, feature := range expectedFeatures {
		if !strings.Contains(result, feature) {
			t.Errorf("Injected script missing feature: %s", feature)
		}
	}
}

func TestInjectScript_PreservesOriginalContent(t *testing.T) {
	html := []byte(`<!DOCTYPE html>
<html>
<head>
<title>Test Page</title>
<meta charset="utf-8">
</head>
<body>
<h1>Hello World</h1>
<p>This is a test.</p>
</body>
</html>`)

	result := InjectScript(html)

	expectedContent := []string{
		"<!DOCTYPE html>",
		"<title>Test Page</title>",
		"<meta charset=\"utf-8\">",
		"<h1>Hello World</h1>",
		"<p>This is a test.</p>",
	}

	resultStr := string(result)
	for _, content := range expectedContent {
		if !strings.Contains(resultStr, content) {
			t.Errorf("Original content missing: %s", content)
		}
	}
	if len(result) != len(html)+len(PickerScript()) {
		t.Errorf("result length = %d, want %d", len(result), len(html)+len(PickerScript()))
	}
}
