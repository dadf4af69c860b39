package circleci

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTriggerJob(t *testing.T) {
	var gotPath, gotToken string
	var gotPayload map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.URL.Query().Get("circle-token")
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &gotPayload)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"build_num": 42, "status": "queued"}`))
	}))
	defer srv.Close()

	c := &Client{APIToken: "tok", Organization: "acme", BaseURL: srv.URL}
	resp, err := c.TriggerJob(context.Background(), "pipeline", "main", "deploy", "", "")
	if err != nil {
		t.Fatalf("TriggerJob() error: %v", err)
	}

	if gotPath != "/project/github/acme/pipeline/tree/main" {
		t.Errorf("path = %q", gotPath)
	}
	if gotToken != "tok" {
		t.Errorf("token = %q", gotToken)
	}
	params, ok := gotPayload["build_parameters"].(map[string]interface{})
	if !ok || params["CIRCLE_JOB"] != "deploy" {
		t.Errorf("build_parameters = %v", gotPayload["build_parameters"])
	}
	if _, hasRev := gotPayload["revision"]; hasRev {
		t.Error("empty revision sent in payload")
	}
	if resp["build_num"] != float64(42) {
		t.Errorf("response = %v", resp)
	}
}

func TestTriggerJobWithRevision(t *testing.T) {
	var gotPayload map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &gotPayload)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := &Client{APIToken: "tok", BaseURL: srv.URL}
	if _, err := c.TriggerJob(context.Background(), "p", "main", "test", "abc123", ""); err != nil {
		t.Fatalf("TriggerJob() error: %v", err)
	}
	if gotPayload["revision"] != "abc123" {
		t.Errorf("revision = %v", gotPayload["revision"])
	}
}

func TestTriggerJobRevisionAndTagConflict(t *testing.T) {
	c := New("tok")
	if _, err := c.TriggerJob(context.Background(), "p", "main", "j", "rev", "v1.0"); err == nil {
		t.Error("TriggerJob() accepted both revision and tag")
	}
}

func TestTriggerJobMissingToken(t *testing.T) {
	c := New("")
	if _, err := c.TriggerJob(context.Background(), "p", "main", "j", "", ""); err == nil {
		t.Error("TriggerJob() accepted an empty token")
	}
}

func TestTriggerJobServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "project not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := &Client{APIToken: "tok", BaseURL: srv.URL}
	if _, err := c.TriggerJob(context.Background(), "missing", "main", "j", "", ""); err == nil {
		t.Error("TriggerJob() swallowed an HTTP error status")
	}
}
