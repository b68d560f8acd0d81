package report

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"visionreporter/internal/logger"
)

func newTestServer(t *testing.T, status int, body string, inspect func(r *http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if inspect != nil {
			inspect(r)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// ========================================
// OpenAIDrafter Tests
// ========================================

func TestOpenAIDrafter_MissingKey(t *testing.T) {
	called := false
	srv := newTestServer(t, http.StatusOK, `{}`, func(r *http.Request) { called = true })

	d := NewOpenAIDrafter("", srv.URL, "gpt-4o-mini", time.Second, logger.Discard())

	if got := d.Draft(context.Background(), "pothole"); got != ConfigMissingPlaceholder {
		t.Errorf("Expected config placeholder, got %q", got)
	}
	if called {
		t.Error("No request should be sent without credentials")
	}
}

func TestOpenAIDrafter_ResponsesShape(t *testing.T) {
	var gotAuth string
	var gotReq responsesRequest
	srv := newTestServer(t, http.StatusOK,
		`{"output":[{"content":[{"type":"output_text","text":"A pothole was observed on Main Road."}]}]}`,
		func(r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			json.NewDecoder(r.Body).Decode(&gotReq)
		})

	d := NewOpenAIDrafter("sk-test", srv.URL, "gpt-4o-mini", time.Second, logger.Discard())
	got := d.Draft(context.Background(), "pothole")

	if got != "A pothole was observed on Main Road." {
		t.Errorf("Unexpected report %q", got)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("Expected bearer token, got %q", gotAuth)
	}
	if gotReq.Model != "gpt-4o-mini" || !strings.Contains(gotReq.Input, `"pothole"`) {
		t.Errorf("Unexpected request %+v", gotReq)
	}
}

func TestOpenAIDrafter_ChatMessageFallback(t *testing.T) {
	srv := newTestServer(t, http.StatusOK,
		`{"choices":[{"message":{"role":"assistant","content":"Sewage leak reported."}}]}`, nil)

	d := NewOpenAIDrafter("sk-test", srv.URL, "gpt-4o-mini", time.Second, logger.Discard())

	if got := d.Draft(context.Background(), "leak"); got != "Sewage leak reported." {
		t.Errorf("Expected chat message fallback, got %q", got)
	}
}

func TestOpenAIDrafter_ReplyNotFound(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{"output":[]}`, nil)

	d := NewOpenAIDrafter("sk-test", srv.URL, "gpt-4o-mini", time.Second, logger.Discard())

	if got := d.Draft(context.Background(), "leak"); got != ReplyNotFound {
		t.Errorf("Expected sentinel, got %q", got)
	}
}

func TestOpenAIDrafter_ServiceFailure(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"error":"boom"}`},
		{"unauthorized", http.StatusUnauthorized, `{"error":{"message":"bad key"}}`},
		{"invalid json", http.StatusOK, `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.status, tt.body, nil)
			d := NewOpenAIDrafter("sk-test", srv.URL, "gpt-4o-mini", time.Second, logger.Discard())

			if got := d.Draft(context.Background(), "pothole"); got != ServiceErrorPlaceholder {
				t.Errorf("Expected service placeholder, got %q", got)
			}
		})
	}
}

func TestOpenAIDrafter_Unreachable(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{}`, nil)
	url := srv.URL
	srv.Close()

	d := NewOpenAIDrafter("sk-test", url, "gpt-4o-mini", time.Second, logger.Discard())

	if got := d.Draft(context.Background(), "pothole"); got != ServiceErrorPlaceholder {
		t.Errorf("Expected service placeholder, got %q", got)
	}
}

// ========================================
// EndpointDrafter Tests
// ========================================

func TestEndpointDrafter_SendsObjectName(t *testing.T) {
	var got map[string]string
	srv := newTestServer(t, http.StatusOK, `{"report":"Formal report."}`, func(r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
	})

	d := NewEndpointDrafter(srv.URL, time.Second, logger.Discard())

	if report := d.Draft(context.Background(), ""); report != "Formal report." {
		t.Errorf("Unexpected report %q", report)
	}
	if got["objectName"] != UnknownObject {
		t.Errorf("Expected objectName %q, got %q", UnknownObject, got["objectName"])
	}
}

func TestEndpointDrafter_Failure(t *testing.T) {
	srv := newTestServer(t, http.StatusBadGateway, ``, nil)

	d := NewEndpointDrafter(srv.URL, time.Second, logger.Discard())

	if got := d.Draft(context.Background(), "pothole"); got != EndpointErrorPlaceholder {
		t.Errorf("Expected endpoint placeholder, got %q", got)
	}
}

// ========================================
// Extractor Tests
// ========================================

func TestExtract_Order(t *testing.T) {
	var body interface{}
	json.Unmarshal([]byte(`{
		"output":[{"content":[{"text":"structured"}]}],
		"choices":[{"message":{"content":"chat"}}]
	}`), &body)

	if got := Extract(body, ResponsesText, ChatMessage); got != "structured" {
		t.Errorf("Expected first extractor to win, got %q", got)
	}
	if got := Extract(body, ChatMessage, ResponsesText); got != "chat" {
		t.Errorf("Expected order to be respected, got %q", got)
	}
}

func TestPath_Mismatches(t *testing.T) {
	var body interface{}
	json.Unmarshal([]byte(`{"output":{"content":"x"},"choices":[],"report":"   ","n":5}`), &body)

	for name, extract := range map[string]Extractor{
		"object where array expected": ResponsesText,
		"empty array":                 ChatMessage,
		"blank text":                  ReportField,
		"non string leaf":             Path("n"),
		"unsupported step":            Path(1.5),
	} {
		if text, ok := extract(body); ok {
			t.Errorf("%s: expected no match, got %q", name, text)
		}
	}
}

func TestPrompt_UnknownObject(t *testing.T) {
	if !strings.Contains(Prompt(""), `"unknown object"`) {
		t.Error("Expected unknown object in prompt for empty label")
	}
}
