package main

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
)

func event(method, path, body string) events.APIGatewayV2HTTPRequest {
	return events.APIGatewayV2HTTPRequest{
		RawPath: path,
		Body:    body,
		RequestContext: events.APIGatewayV2HTTPRequestContext{
			DomainName: "relay.example.com",
			RequestID:  "req-1",
			HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{
				Method:   method,
				Path:     path,
				SourceIP: "203.0.113.7",
			},
		},
	}
}

func TestHandleForwardsRequestToRouter(t *testing.T) {
	var gotBody, gotCT, gotIP, gotQuery, gotReqID string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotCT = r.Header.Get("Content-Type")
		gotIP = r.RemoteAddr
		gotQuery = r.URL.Query().Get("limit")
		gotReqID = r.Header.Get("X-Request-Id")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true}`))
	})

	evt := event(http.MethodPost, "/webhook/cf7", "your-name=Jane")
	evt.RawQueryString = "limit=5"
	evt.Headers = map[string]string{"content-type": "application/x-www-form-urlencoded"}

	resp, err := handle(context.Background(), h, evt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, resp.StatusCode)
	}
	if resp.Body != `{"success":true}` || resp.IsBase64Encoded {
		t.Fatalf("unexpected body %q (base64=%v)", resp.Body, resp.IsBase64Encoded)
	}
	if resp.Headers["content-type"] != "application/json" {
		t.Fatalf("expected content-type header, got %v", resp.Headers)
	}
	if gotBody != "your-name=Jane" || gotCT != "application/x-www-form-urlencoded" {
		t.Fatalf("unexpected forwarded body=%q ct=%q", gotBody, gotCT)
	}
	if gotIP != "203.0.113.7" || gotQuery != "5" || gotReqID != "req-1" {
		t.Fatalf("unexpected ip=%q query=%q request id=%q", gotIP, gotQuery, gotReqID)
	}
}

func TestHandleDecodesBase64Body(t *testing.T) {
	var gotBody string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
	})

	evt := event(http.MethodPost, "/webhook/cf7", base64.StdEncoding.EncodeToString([]byte(`{"your-name":"Jane"}`)))
	evt.IsBase64Encoded = true

	resp, err := handle(context.Background(), h, evt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	if gotBody != `{"your-name":"Jane"}` {
		t.Fatalf("unexpected decoded body %q", gotBody)
	}
}

func TestHandleRejectsInvalidBase64(t *testing.T) {
	evt := event(http.MethodPost, "/webhook/cf7", "%%%")
	evt.IsBase64Encoded = true

	resp, err := handle(context.Background(), http.NotFoundHandler(), evt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
}

func TestHandleEncodesCompressedResponse(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Add("Set-Cookie", "a=1")
		_, _ = w.Write([]byte{0x1f, 0x8b})
	})

	resp, err := handle(context.Background(), h, event(http.MethodGet, "/health", ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.IsBase64Encoded || resp.Body != base64.StdEncoding.EncodeToString([]byte{0x1f, 0x8b}) {
		t.Fatalf("expected base64 body, got %q", resp.Body)
	}
	if len(resp.Cookies) != 1 || resp.Cookies[0] != "a=1" {
		t.Fatalf("expected cookie passthrough, got %v", resp.Cookies)
	}
}

func TestHandleDefaultsPath(t *testing.T) {
	var gotPath string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { gotPath = r.URL.Path })

	if _, err := handle(context.Background(), h, events.APIGatewayV2HTTPRequest{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/" {
		t.Fatalf("expected root path, got %q", gotPath)
	}
}

func TestHandleUsesSourceIPOverClientHeaders(t *testing.T) {
	var gotAddr, gotRealIP, gotForwarded string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAddr = r.RemoteAddr
		gotRealIP = r.Header.Get("X-Real-Ip")
		gotForwarded = r.Header.Get("X-Forwarded-For")
		w.WriteHeader(http.StatusNoContent)
	})

	evt := event(http.MethodPost, "/webhook/cf7", "")
	evt.Headers = map[string]string{
		"x-real-ip":       "198.51.100.1",
		"x-forwarded-for": "198.51.100.2, 203.0.113.7",
	}

	if _, err := handle(context.Background(), h, evt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAddr != "203.0.113.7" {
		t.Fatalf("expected remote addr from source ip, got %q", gotAddr)
	}
	if gotRealIP != "" || gotForwarded != "" {
		t.Fatalf("expected client ip headers to be dropped, got real=%q forwarded=%q", gotRealIP, gotForwarded)
	}
}
