package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"golang.org/x/text/encoding/japanese"
)

func TestEchoMockEmitsRecords(t *testing.T) {
	cmd := newEchoMockCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--count", "3", "--interval-ms", "1"})
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("echo-mock: %v", err)
	}
	text := out.String()
	if got := strings.Count(text, "---\n"); got != 3 {
		t.Fatalf("expected 3 record delimiters, got %d in %q", got, text)
	}
	if !strings.Contains(text, "header:") || !strings.Contains(text, "    sec: ") {
		t.Fatalf("expected stamped header, got %q", text)
	}
	if !strings.Contains(text, "data: ") {
		t.Fatalf("expected data field, got %q", text)
	}
}

func TestEchoMockCustomField(t *testing.T) {
	cmd := newEchoMockCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--count", "1", "--interval-ms", "1", "--field", "temperature"})
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("echo-mock: %v", err)
	}
	if !strings.Contains(out.String(), "temperature: ") {
		t.Fatalf("expected custom field name, got %q", out.String())
	}
}

func TestEchoMockShiftJIS(t *testing.T) {
	cmd := newEchoMockCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--count", "1", "--interval-ms", "1", "--encoding", "shiftjis"})
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("echo-mock: %v", err)
	}
	raw := out.Bytes()
	if bytes.Contains(raw, []byte("稼働中")) {
		t.Fatal("output should not be valid UTF-8 for the status field")
	}
	decoded, err := japanese.ShiftJIS.NewDecoder().Bytes(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(string(decoded), "status: 稼働中") {
		t.Fatalf("expected Shift-JIS status, got %q", decoded)
	}
}

func TestEchoMockRejectsUnknownEncoding(t *testing.T) {
	cmd := newEchoMockCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--count", "1", "--encoding", "ebcdic"})
	if err := cmd.ExecuteContext(context.Background()); err == nil {
		t.Fatal("expected encoding error")
	}
}
