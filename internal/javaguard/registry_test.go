package javaguard

import (
	"context"
	"testing"
)

func fakeJavaRoot(t *testing.T, version string) string {
	t.Helper()
	root := t.TempDir()
	script := "#!/bin/sh\ncat <<EOF >&2\n" +
		"    java.version = " + version + "\n" +
		"    java.vendor = Eclipse Adoptium\n" +
		"    sun.arch.data.model = 64\n" +
		"    os.arch = amd64\n" +
		"EOF\n"
	mkFakeJavaScript(t, root, script)
	return root
}

func TestRegistry_Find_FiltersAndRanksAcrossRealSubprocesses(t *testing.T) {
	java8 := fakeJavaRoot(t, "1.8.0_351")
	java17 := fakeJavaRoot(t, "17.0.9")
	java21 := fakeJavaRoot(t, "21.0.1")

	r := &Registry{Strategies: []Strategy{
		PathStrategy{Paths: []string{java8, java17, java21}},
	}}

	found, err := r.Find(context.Background(), ">=17.x")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("Find() = %v, want 2 candidates (java 17 and 21)", found)
	}
	if found[0].Path != java21 {
		t.Errorf("Find()[0] = %s, want %s ranked first (highest major)", found[0].Path, java21)
	}
	if found[1].Path != java17 {
		t.Errorf("Find()[1] = %s, want %s ranked second", found[1].Path, java17)
	}
}

func TestRegistry_Find_NoCandidatesSatisfyRange(t *testing.T) {
	java8 := fakeJavaRoot(t, "1.8.0_351")

	r := &Registry{Strategies: []Strategy{
		PathStrategy{Paths: []string{java8}},
	}}

	found, err := r.Find(context.Background(), ">=17.x")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if len(found) != 0 {
		t.Errorf("Find() = %v, want no candidates", found)
	}
}

func TestRegistry_Find_UnusableCandidateSkipped(t *testing.T) {
	broken := t.TempDir()
	mkFakeJavaScript(t, broken, "#!/bin/sh\nexit 1\n")
	java17 := fakeJavaRoot(t, "17.0.9")

	r := &Registry{Strategies: []Strategy{
		PathStrategy{Paths: []string{broken, java17}},
	}}

	found, err := r.Find(context.Background(), ">=17.x")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if len(found) != 1 || found[0].Path != java17 {
		t.Errorf("Find() = %v, want only %s", found, java17)
	}
}
