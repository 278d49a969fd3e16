package paginate

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestNormalize_DatesZeroedLengthKept(t *testing.T) {
	a := []byte("%PDF-1.4\n1 0 obj <</CreationDate (D:20250101120000+00'00') /ModDate (D:20250101120001+00'00')>>\n")
	b := []byte("%PDF-1.4\n1 0 obj <</CreationDate (D:20261019083015+00'00') /ModDate (D:20261019083016+00'00')>>\n")

	na, nb := Normalize(a), Normalize(b)
	if len(na) != len(a) {
		t.Fatalf("length changed: %d -> %d", len(a), len(na))
	}
	if !bytes.Equal(na, nb) {
		t.Errorf("normalized artifacts differ:\n%s\n%s", na, nb)
	}
	if !bytes.Contains(na, []byte("/CreationDate (D:00000000000000+00'00')")) {
		t.Errorf("creation date not zeroed: %s", na)
	}
	if !bytes.HasPrefix(na, []byte("%PDF-1.4")) {
		t.Error("header digits must not change")
	}
}

func TestFooterTemplate(t *testing.T) {
	f := footerTemplate(Geometry{FooterFont: "Times New Roman", FooterFontSize: "8pt"})
	for _, want := range []string{`class="pageNumber"`, `class="totalPages"`, "font-size:8pt", "color:#555555"} {
		if !strings.Contains(f, want) {
			t.Errorf("footer missing %q: %s", want, f)
		}
	}
}

func TestPrintParams(t *testing.T) {
	p := printParams(Geometry{PaperWidth: 8.27, PaperHeight: 11.69, MarginTop: 1, PrintBackground: true})
	if p.PaperWidth != 8.27 || p.MarginTop != 1 || !p.PrintBackground {
		t.Errorf("params = %+v", p)
	}
	if p.DisplayHeaderFooter {
		t.Error("header/footer only shown with page numbers")
	}
	p = printParams(Geometry{PageNumbers: true})
	if !p.DisplayHeaderFooter || p.FooterTemplate == "" {
		t.Errorf("page numbers not configured: %+v", p)
	}
}

func TestChrome_ClosedPoolRefuses(t *testing.T) {
	c := NewChrome(ChromeConfig{PoolSize: 1}, zap.NewNop())
	c.Close()
	_, err := c.Paginate(context.Background(), "<html><body></body></html>", Geometry{})
	if !errors.Is(err, ErrClosed) {
		t.Fatalf("err = %v, want ErrClosed", err)
	}
}

func TestChrome_AcquireHonorsContext(t *testing.T) {
	c := NewChrome(ChromeConfig{PoolSize: 1}, zap.NewNop())
	// Hold the only slot.
	if err := c.sem.Acquire(context.Background(), 1); err != nil {
		t.Fatal(err)
	}
	defer c.sem.Release(1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := c.Paginate(ctx, "<html></html>", Geometry{}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}
