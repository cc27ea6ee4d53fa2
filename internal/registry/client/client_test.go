package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"matter_intake_backend/internal/registry/transport"
	"matter_intake_backend/platform/logger"
)

func testLogger() *logger.Logger { return logger.New("test") }

func TestExchangeToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/oauth/token" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.PostForm.Get("grant_type") != "refresh_token" {
			t.Errorf("grant_type = %q", r.PostForm.Get("grant_type"))
		}
		if r.PostForm.Get("refresh_token") != "rt-1" {
			t.Errorf("refresh_token = %q", r.PostForm.Get("refresh_token"))
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "at-1",
			"token_type":   "bearer",
			"expires_in":   3600,
		})
	}))
	defer srv.Close()

	c := New(srv.URL, testLogger())
	token, err := c.ExchangeToken(context.Background(), "cid", "secret", "rt-1")
	if err != nil {
		t.Fatalf("ExchangeToken: %v", err)
	}
	if token != "at-1" {
		t.Fatalf("token = %q", token)
	}
}

func TestExchangeTokenFailureIncludesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, testLogger())
	_, err := c.ExchangeToken(context.Background(), "cid", "secret", "stale")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "invalid_grant") {
		t.Fatalf("error %q does not carry response body", err)
	}
}

func TestSearchContacts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v4/contacts.json" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("authorization = %q", got)
		}
		q := r.URL.Query()
		if q.Get("query") != "ada@example.com" || q.Get("type") != "Person" {
			t.Errorf("query params = %v", q)
		}
		_, _ = w.Write([]byte(`{"data":[{"id":42,"type":"Person","first_name":"Ada"}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, testLogger())
	contacts, err := c.SearchContacts(context.Background(), "tok", "ada@example.com", "Person")
	if err != nil {
		t.Fatalf("SearchContacts: %v", err)
	}
	if len(contacts) != 1 || contacts[0].ID != 42 {
		t.Fatalf("contacts = %+v", contacts)
	}
}

func TestCreateContactSendsEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %q", r.Method)
		}
		var body struct {
			Data transport.ContactPayload `json:"data"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body.Data.FirstName != "Ada" {
			t.Errorf("payload = %+v", body.Data)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":9001,"type":"Person"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, testLogger())
	contact, raw, err := c.CreateContact(context.Background(), "tok", transport.ContactPayload{
		Type:      "Person",
		FirstName: "Ada",
	})
	if err != nil {
		t.Fatalf("CreateContact: %v", err)
	}
	if contact.ID != 9001 {
		t.Fatalf("contact = %+v", contact)
	}
	if len(raw) == 0 {
		t.Fatal("raw body not returned")
	}
}

func TestUpdateContactUsesPatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("method = %q", r.Method)
		}
		if r.URL.Path != "/api/v4/contacts/42.json" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"data":{"id":42,"type":"Person"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, testLogger())
	contact, _, err := c.UpdateContact(context.Background(), "tok", 42, transport.ContactPayload{Type: "Person"})
	if err != nil {
		t.Fatalf("UpdateContact: %v", err)
	}
	if contact.ID != 42 {
		t.Fatalf("contact = %+v", contact)
	}
}

func TestCreateMatterErrorCarriesStatusAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":{"message":"practice area invalid"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, testLogger())
	_, _, err := c.CreateMatter(context.Background(), "tok", transport.MatterPayload{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "422") || !strings.Contains(err.Error(), "practice area invalid") {
		t.Fatalf("error = %q", err)
	}
}

func TestListCustomFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v4/custom_fields.json" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"data":[{"id":380728,"name":"Instruction Ref","parent_type":"Contact"}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, testLogger())
	defs, err := c.ListCustomFields(context.Background(), "tok")
	if err != nil {
		t.Fatalf("ListCustomFields: %v", err)
	}
	if len(defs) != 1 || defs[0].ID != 380728 || defs[0].ParentType != "Contact" {
		t.Fatalf("defs = %+v", defs)
	}
}
