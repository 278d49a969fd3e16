package validate_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/dalemusser/chapterhub/internal/app/documents/docerr"
	"github.com/dalemusser/chapterhub/internal/app/documents/generator"
	errorsfeature "github.com/dalemusser/chapterhub/internal/app/features/errors"
	"github.com/dalemusser/chapterhub/internal/app/features/validate"
)

type fakeValidator struct {
	known map[string]generator.Validation
	asked []string
}

func (f *fakeValidator) Validate(_ context.Context, hash string) (generator.Validation, error) {
	f.asked = append(f.asked, hash)
	v, ok := f.known[hash]
	if !ok {
		return generator.Validation{}, fmt.Errorf("signature %s: %w", hash, docerr.ErrNotFound)
	}
	return v, nil
}

func TestServe(t *testing.T) {
	hash := strings.Repeat("ab", 32)
	fv := &fakeValidator{known: map[string]generator.Validation{
		hash: {DocumentID: "d1", Hash: hash, Chapter: "ARLS Estrela do Sul nº 33", Signer: "João da Silva", Verified: true},
	}}
	logger := zap.NewNop()
	r := validate.Routes(validate.NewHandler(fv, errorsfeature.NewErrorLogger(logger), logger))

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"known", "/" + hash, http.StatusOK},
		{"uppercase", "/" + strings.ToUpper(hash), http.StatusOK},
		{"unknown", "/" + strings.Repeat("0", 64), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.status != http.StatusOK {
				return
			}
			var got generator.Validation
			if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatal(err)
			}
			if got.Signer != "João da Silva" || !got.Verified {
				t.Errorf("validation = %+v", got)
			}
		})
	}
	if fv.asked[1] != hash {
		t.Errorf("hash not normalized: %q", fv.asked[1])
	}
}
