package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "state error",
			code:    "E001",
			wantMsg: "Stores accessed outside provider",
			wantCat: CategoryState,
		},
		{
			name:    "storage error",
			code:    "E080",
			wantMsg: "Unknown storage driver",
			wantCat: CategoryStorage,
		},
		{
			name:    "config error",
			code:    "E121",
			wantMsg: "Invalid base URL",
			wantCat: CategoryConfig,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryCLI, "flag %q is required", "--token")
	if err.Message != `flag "--token" is required` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Code != "" {
		t.Errorf("Code = %q, want empty", err.Code)
	}
	if err.Error() != err.Message {
		t.Errorf("Error() = %q, want %q", err.Error(), err.Message)
	}
}

func TestWrapAndUnwrap(t *testing.T) {
	cause := stderrors.New("disk full")
	err := New("E081").Wrap(cause)

	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if !strings.Contains(err.Error(), "disk full") {
		t.Errorf("Error() = %q, want cause included", err.Error())
	}
	if !stderrors.Is(err, New("E081")) {
		t.Error("errors.Is should match by code")
	}
	if stderrors.Is(err, New("E080")) {
		t.Error("errors.Is should not match a different code")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E120") != nil {
		t.Error("FromError(nil) should be nil")
	}

	original := New("E122")
	wrapped := fmt.Errorf("loading: %w", original)
	if got := FromError(wrapped, "E120"); got != original {
		t.Error("FromError should return the existing ShellError")
	}

	plain := stderrors.New("boom")
	got := FromError(plain, "E120")
	if got.Code != "E120" || got.Wrapped != plain {
		t.Errorf("FromError(plain) = %+v", got)
	}
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", New("E120").Wrap(New("E141")))
	if !HasCode(err, "E120") {
		t.Error("expected E120")
	}
	if !HasCode(err, "E141") {
		t.Error("expected nested E141")
	}
	if HasCode(err, "E001") {
		t.Error("did not expect E001")
	}
	if HasCode(stderrors.New("plain"), "E120") {
		t.Error("plain errors carry no code")
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("E141").
		WithDetail("No usershell.json found in /tmp").
		WithSuggestion("Pass --config")

	out := err.Format()
	for _, want := range []string{"ERROR E141: Config not found", "No usershell.json found in /tmp", "Hint: Pass --config"} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q:\n%s", want, out)
		}
	}

	compact := err.FormatCompact()
	if compact != "E141: Config not found (No usershell.json found in /tmp)" {
		t.Errorf("FormatCompact() = %q", compact)
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("one two three four five six seven", 10)
	for _, line := range lines {
		if len(line) > 10 {
			t.Errorf("line %q exceeds width", line)
		}
	}
	if wrapText("", 10) != nil {
		t.Error("empty text should produce no lines")
	}
}

func TestRegistry(t *testing.T) {
	for _, code := range GetAllCodes() {
		tmpl, ok := GetTemplate(code)
		if !ok {
			t.Fatalf("GetTemplate(%s) missing", code)
		}
		if tmpl.Message == "" || tmpl.Category == "" {
			t.Errorf("template %s incomplete: %+v", code, tmpl)
		}
	}

	Register("E900", ErrorTemplate{Category: CategoryCLI, Message: "custom"})
	defer delete(registry, "E900")
	if New("E900").Message != "custom" {
		t.Error("Register did not add template")
	}
}
