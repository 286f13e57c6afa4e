package vfs

import (
	"errors"
	"testing"
)

func TestClean(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "/"},
		{"/", "/"},
		{"blog", "/blog"},
		{"/blog/../projects", "/projects"},
		{`\BLOG\.\x`, "/BLOG/x"},
		{"/../../..", "/"},
		{"//a//b/", "/a/b"},
		{`C:\PROJECTS\..\BLOG`, "/BLOG"},
		{"c:", "/"},
	}
	for _, tt := range tests {
		if got := Clean(tt.in); got != tt.want {
			t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExt(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"/blog/hello.mdx", ".mdx"},
		{`C:\BLOG\HELLO.MD`, ".MD"},
		{"/blog", ""},
		{"notes.v2.mdx", ".mdx"},
	}
	for _, tt := range tests {
		if got := Ext(tt.in); got != tt.want {
			t.Errorf("Ext(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsAbs(t *testing.T) {
	for _, p := range []string{"/blog", `\blog`, `C:\BLOG`, "c:"} {
		if !IsAbs(p) {
			t.Errorf("expected %q to be absolute", p)
		}
	}
	for _, p := range []string{"blog", "..", "hello.mdx"} {
		if IsAbs(p) {
			t.Errorf("expected %q to be relative", p)
		}
	}
}

func TestResolveCd(t *testing.T) {
	tests := []struct {
		arg     string
		cwd     string
		want    string
		wantErr error
	}{
		{"", Blog, Root, nil},
		{".", Blog, Blog, nil},
		{".", "/bogus", Root, nil},
		{"..", Projects, Root, nil},
		{"/", Blog, Root, nil},
		{`C:\`, Blog, Root, nil},
		{"c:", Blog, Root, nil},
		{`\`, Blog, Root, nil},
		{"blog", Root, Blog, nil},
		{"/blog", Projects, Blog, nil},
		{"BLOG", Root, Blog, nil},
		{`C:\BLOG`, Root, Blog, nil},
		{"projects", Root, Projects, nil},
		{`c:\projects`, Blog, Projects, nil},
		{"blog/hello", Root, "", ErrAccessDenied},
		{"blog/", Root, "", ErrAccessDenied},
		{`PROJECTS\`, Root, "", ErrAccessDenied},
		{`C:\PROJECTS\retro`, Root, "", ErrAccessDenied},
		{"windows", Root, "", ErrDirNotFound},
		{"../etc", Blog, "", ErrDirNotFound},
	}

	for _, tt := range tests {
		got, err := ResolveCd(tt.arg, tt.cwd)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("ResolveCd(%q, %q) error = %v, want %v", tt.arg, tt.cwd, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ResolveCd(%q, %q) = %q, want %q", tt.arg, tt.cwd, got, tt.want)
		}
	}
}

func TestResolvePath(t *testing.T) {
	tests := []struct {
		p, cwd, want string
	}{
		{"", Blog, Blog},
		{".", Projects, Projects},
		{"..", Blog, Root},
		{"/", Blog, Root},
		{"blog", Root, Blog},
		{"BLOG", Root, Blog},
		{"hello.mdx", Blog, "/blog/hello.mdx"},
		{"/projects/retro/deeper", Root, "/projects/retro"},
		{`C:\BLOG\HELLO.MDX`, Root, "/blog/HELLO.MDX"},
		{"nowhere", Root, Root},
		{"../projects/x", Blog, "/projects/x"},
	}
	for _, tt := range tests {
		if got := ResolvePath(tt.p, tt.cwd); got != tt.want {
			t.Errorf("ResolvePath(%q, %q) = %q, want %q", tt.p, tt.cwd, got, tt.want)
		}
	}
}

func TestParseFile(t *testing.T) {
	tests := []struct {
		p        string
		dir      string
		slug     string
		expected bool
	}{
		{"/blog/hello", Blog, "hello", true},
		{"/blog/HELLO.MDX", Blog, "HELLO", true},
		{"/projects/retro.md", Projects, "retro", true},
		{"/blog", "", "", false},
		{"/blog/", "", "", false},
		{"/", "", "", false},
		{"/blog/.mdx", "", "", false},
	}
	for _, tt := range tests {
		dir, slug, ok := ParseFile(tt.p)
		if ok != tt.expected || dir != tt.dir || slug != tt.slug {
			t.Errorf("ParseFile(%q) = %q, %q, %v", tt.p, dir, slug, ok)
		}
	}
}

func TestToDOS(t *testing.T) {
	tests := map[string]string{
		Root:     `C:\`,
		Blog:     `C:\BLOG`,
		Projects: `C:\PROJECTS`,
	}
	for in, want := range tests {
		if got := ToDOS(in); got != want {
			t.Errorf("ToDOS(%q) = %q, want %q", in, got, want)
		}
	}
	if DisplayName("hello-world") != "HELLO-WORLD.MDX" {
		t.Errorf("unexpected display name %q", DisplayName("hello-world"))
	}
}
