package tools

import (
	"context"
	"strings"
	"testing"

	"github.com/lexandro/copyrighter/audit"
)

func newTestAudit(t *testing.T) *audit.Index {
	t.Helper()
	ix, err := audit.NewIndex()
	if err != nil {
		t.Fatalf("NewIndex() error: %v", err)
	}
	t.Cleanup(func() { ix.Close() })

	entries := []audit.Entry{
		{Path: "src/main/java/A.java", Language: "java", Header: "/*\n * Copyright 1999 Acme Corp\n */\n"},
		{Path: "src/main/clojure/foo.clj", Language: "clojure", Header: ";; Copyright 2001 Acme Corp\n"},
		{Path: "pom.xml", Language: "xml", Header: "<!-- GPL licensed -->\n"},
	}
	for _, e := range entries {
		if err := ix.Record(e); err != nil {
			t.Fatalf("Record() error: %v", err)
		}
	}
	return ix
}

func Test_ReplacedHandler_Query(t *testing.T) {
	handler := &ReplacedHandler{Audit: newTestAudit(t), Logger: discardLogger()}

	result, _, err := handler.Handle(context.Background(), nil, ReplacedArgs{Query: "acme"})
	if err != nil {
		t.Fatalf("Handle() error: %v", err)
	}
	text := resultText(t, result)
	if !strings.Contains(text, "Found 2 replaced headers") {
		t.Errorf("unexpected text: %q", text)
	}
	if strings.Contains(text, "pom.xml") {
		t.Errorf("unrelated entry in results: %q", text)
	}
}

func Test_ReplacedHandler_LanguageFilter(t *testing.T) {
	handler := &ReplacedHandler{Audit: newTestAudit(t), Logger: discardLogger()}

	result, _, _ := handler.Handle(context.Background(), nil, ReplacedArgs{Query: "acme", Language: "clojure"})
	text := resultText(t, result)
	if !strings.Contains(text, "src/main/clojure/foo.clj") || strings.Contains(text, "A.java") {
		t.Errorf("unexpected text: %q", text)
	}
}

func Test_ReplacedHandler_NoMatch(t *testing.T) {
	handler := &ReplacedHandler{Audit: newTestAudit(t), Logger: discardLogger()}

	result, _, _ := handler.Handle(context.Background(), nil, ReplacedArgs{Query: "nonexistentword"})
	if text := resultText(t, result); text != "No replaced headers matched." {
		t.Errorf("unexpected text: %q", text)
	}
}
