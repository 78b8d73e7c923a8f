package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dartlens/dartlens/internal/provider"
	"github.com/dartlens/dartlens/internal/tools"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	tr := tools.NewToolRegistry()
	tools.RegisterLookupTools(tr, provider.NewRegistry())

	tr.Register(&tools.Tool{
		Name:        "echo",
		Description: "echo arguments back",
		Parameters:  tools.ObjectSchema(map[string]*tools.JSONSchema{"msg": tools.StringProp("message")}),
		Handler: func(ctx context.Context, args json.RawMessage) (string, error) {
			var a struct {
				Msg string `json:"msg"`
			}
			if err := json.Unmarshal(args, &a); err != nil {
				return "", err
			}
			if a.Msg == "fail" {
				return "", errors.New("echo failed on purpose")
			}
			out, _ := json.Marshal(map[string]string{"echo": a.Msg})
			return string(out), nil
		},
	})
	return NewServer(tr)
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestListTools(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/tools", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Tools []struct {
			Name       string          `json:"name"`
			Parameters json.RawMessage `json:"parameters"`
		} `json:"tools"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	names := make(map[string]bool, len(resp.Tools))
	for _, tool := range resp.Tools {
		names[tool.Name] = true
		if len(tool.Parameters) == 0 {
			t.Errorf("tool %s missing parameter schema", tool.Name)
		}
	}
	for _, want := range []string{"search_company", "get_financial_statement", "health", "echo"} {
		if !names[want] {
			t.Errorf("expected tool %s in listing", want)
		}
	}
}

func TestCallTool(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(t, s, http.MethodPost, "/tools/echo", `{"msg":"hi"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"echo":"hi"`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestCallToolEmptyBody(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(t, s, http.MethodPost, "/tools/echo", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("empty body should behave like {}: %d %s", rec.Code, rec.Body.String())
	}
}

func TestCallToolFailureIsPayloadNotTransport(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(t, s, http.MethodPost, "/tools/echo", `{"msg":"fail"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("tool failures ride a 200, got %d", rec.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["error"] != "echo failed on purpose" {
		t.Errorf("unexpected error payload: %v", resp)
	}
}

func TestCallUnknownTool(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(t, s, http.MethodPost, "/tools/no_such_tool", `{}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "tool not found") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestCallToolRejectsMalformedJSON(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(t, s, http.MethodPost, "/tools/echo", `{"msg":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)
	for _, method := range []string{http.MethodGet, http.MethodPost} {
		rec := doRequest(t, s, method, "/health", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s /health: expected 200, got %d", method, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
			t.Errorf("unexpected health body: %s", rec.Body.String())
		}
	}
}
