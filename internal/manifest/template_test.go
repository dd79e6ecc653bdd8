package manifest

import (
	"strconv"
	"testing"

	"github.com/axion-sh/axion/internal/errs"
)

func TestResolveAllInlineInterpolation(t *testing.T) {
	overlay := VarMap{
		"HOST": "example.com",
		"URL":  "https://{{HOST}}/path",
	}
	got, err := resolveAll(overlay)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got["URL"] != "https://example.com/path" {
		t.Fatalf("got %q", got["URL"])
	}
}

func TestResolveAllLegacyRefForm(t *testing.T) {
	overlay := VarMap{
		"BASE": "value",
		"COPY": "@ref:BASE",
	}
	got, err := resolveAll(overlay)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got["COPY"] != "value" {
		t.Fatalf("got %q", got["COPY"])
	}
}

func TestResolveAllEscapedBraces(t *testing.T) {
	overlay := VarMap{
		"TEMPLATE": `literal \{{not a ref}}`,
	}
	got, err := resolveAll(overlay)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got["TEMPLATE"] != "literal {{not a ref}}" {
		t.Fatalf("got %q", got["TEMPLATE"])
	}
}

func TestResolveAllMissingReference(t *testing.T) {
	overlay := VarMap{"A": "{{B}}"}
	_, err := resolveAll(overlay)
	if err == nil {
		t.Fatal("expected missing-reference error")
	}
	if kind, ok := errs.KindOf(err); !ok || kind != errs.KindMissingReference {
		t.Fatalf("expected KindMissingReference, got %v (ok=%v)", kind, ok)
	}
}

func TestResolveAllCircularReference(t *testing.T) {
	overlay := VarMap{"A": "{{B}}", "B": "{{A}}"}
	_, err := resolveAll(overlay)
	if err == nil {
		t.Fatal("expected circular-reference error")
	}
	if kind, ok := errs.KindOf(err); !ok || kind != errs.KindCircularReference {
		t.Fatalf("expected KindCircularReference, got %v (ok=%v)", kind, ok)
	}
}

func TestResolveAllDeepChain(t *testing.T) {
	overlay := VarMap{}
	overlay["L0"] = "base"
	for i := 1; i <= 8; i++ {
		overlay[keyAt(i)] = "{{" + keyAt(i-1) + "}}"
	}
	got, err := resolveAll(overlay)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got[keyAt(8)] != "base" {
		t.Fatalf("got %q", got[keyAt(8)])
	}
}

func keyAt(i int) string {
	return "L" + strconv.Itoa(i)
}
