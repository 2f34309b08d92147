package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dave/dst/decorator"
)

func TestGenConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  genConfig
		want error
	}{
		{"default", genConfig{Package: "xcalltarget", MaxArity: MaxSupportedArity}, nil},
		{"zero_arity", genConfig{Package: "p", MaxArity: 0}, nil},
		{"negative_arity", genConfig{Package: "p", MaxArity: -1}, errInvalidArity},
		{"too_large", genConfig{Package: "p", MaxArity: MaxSupportedArity + 1}, errInvalidArity},
		{"empty_package", genConfig{MaxArity: 1}, errInvalidPackage},
		{"dotted_package", genConfig{Package: "a.b", MaxArity: 1}, errInvalidPackage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.validate()
			if !errors.Is(err, tt.want) {
				t.Fatalf("validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestIsIdent(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"xcalltarget", true},
		{"_x1", true},
		{"X", true},
		{"", false},
		{"1x", false},
		{"x-y", false},
		{"包", false},
	}
	for _, tt := range tests {
		if got := isIdent(tt.in); got != tt.want {
			t.Errorf("isIdent(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestExpandBegin(t *testing.T) {
	got := expandBegin(2)
	for _, want := range []string{
		"type BeginHandler2[I, T, A1, A2 any] struct",
		"Invoke(instance T, arg1 A1, arg2 A2) State",
		"fn(instance, arg1, arg2)",
		"reflect.TypeFor[A1](), reflect.TypeFor[A2]()",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("expandBegin(2) missing %q", want)
		}
	}
	if strings.Contains(got, "{{") {
		t.Errorf("expandBegin(2) left unexpanded placeholders")
	}
}

func TestGenerate(t *testing.T) {
	src, err := generate(genConfig{Package: "handlers", MaxArity: 3})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	text := string(src)
	if !strings.HasPrefix(text, "// Code generated by xhandlergen. DO NOT EDIT.") {
		t.Errorf("missing generated-code header")
	}
	if !strings.Contains(text, "package handlers") {
		t.Errorf("package name not applied")
	}
	for _, name := range []string{"NewBeginHandler0", "NewBeginHandler3", "NewEndHandler", "NewEndReturnHandler"} {
		if !strings.Contains(text, "func "+name+"[") {
			t.Errorf("missing %s", name)
		}
	}
	if strings.Contains(text, "BeginHandler4") {
		t.Errorf("generated beyond max arity")
	}

	// 输出可以再次解析，且再次打印不变
	f, err := decorator.Parse(src)
	if err != nil {
		t.Fatalf("re-parse: %v", err)
	}
	var again bytes.Buffer
	if err := decorator.Fprint(&again, f); err != nil {
		t.Fatalf("re-print: %v", err)
	}
	if !bytes.Equal(src, again.Bytes()) {
		t.Errorf("generated source is not stable under re-formatting")
	}
}

func TestGenerate_InvalidConfig(t *testing.T) {
	if _, err := generate(genConfig{Package: "p", MaxArity: 99}); !errors.Is(err, errInvalidArity) {
		t.Fatalf("generate() = %v, want %v", err, errInvalidArity)
	}
}

func TestVerify(t *testing.T) {
	f, err := decorator.Parse("package p\n\ntype EndHandler struct{}\n\nfunc NewEndHandler() {}\n")
	if err != nil {
		t.Fatal(err)
	}
	err = verify(f, 0)
	if !errors.Is(err, errIncomplete) {
		t.Fatalf("verify() = %v, want %v", err, errIncomplete)
	}
	for _, name := range []string{"EndReturnHandler", "BeginHandler0"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q does not name %s", err, name)
		}
	}
}

func TestCLI(t *testing.T) {
	ctx := context.Background()

	t.Run("stdout", func(t *testing.T) {
		var buf bytes.Buffer
		if err := createApp(&buf).Run(ctx, []string{"xhandlergen", "-n", "1", "-o", "-"}); err != nil {
			t.Fatalf("run: %v", err)
		}
		if !strings.Contains(buf.String(), "func NewBeginHandler1[") {
			t.Errorf("stdout output missing BeginHandler1")
		}
	})

	t.Run("write_then_check", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "handlers_gen.go")
		app := func() error {
			return createApp(&bytes.Buffer{}).Run(ctx, []string{"xhandlergen", "-o", out})
		}
		if err := app(); err != nil {
			t.Fatalf("write: %v", err)
		}
		check := []string{"xhandlergen", "--check", "-o", out}
		if err := createApp(&bytes.Buffer{}).Run(ctx, check); err != nil {
			t.Fatalf("check fresh output: %v", err)
		}

		if err := os.WriteFile(out, []byte("package xcalltarget\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		err := createApp(&bytes.Buffer{}).Run(ctx, check)
		if !errors.Is(err, errStale) {
			t.Fatalf("check stale output = %v, want %v", err, errStale)
		}
	})

	t.Run("check_missing_file", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "missing.go")
		err := createApp(&bytes.Buffer{}).Run(ctx, []string{"xhandlergen", "--check", "-o", out})
		if !errors.Is(err, os.ErrNotExist) {
			t.Fatalf("check missing = %v, want not-exist", err)
		}
	})

	t.Run("invalid_package", func(t *testing.T) {
		err := createApp(&bytes.Buffer{}).Run(ctx, []string{"xhandlergen", "-p", "bad-name", "-o", "-"})
		if !errors.Is(err, errInvalidPackage) {
			t.Fatalf("run = %v, want %v", err, errInvalidPackage)
		}
	})
}
