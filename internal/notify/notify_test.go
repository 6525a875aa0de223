package notify

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/financepro/financepro/internal/logger"
)

func TestPushGatewaySendsTitleBodyAndTag(t *testing.T) {
	type received struct {
		title, tag, body string
	}
	got := make(chan received, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got <- received{
			title: r.Header.Get("Title"),
			tag:   r.Header.Get("Tags"),
			body:  string(body),
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	g := NewPushWithEndpoint(srv.URL, logger.New())
	if !g.RequestPermission(context.Background()) {
		t.Fatal("configured gateway must grant permission")
	}
	if g.PermissionStatus() != PermissionGranted {
		t.Fatalf("permission = %s, want granted", g.PermissionStatus())
	}

	g.Send(context.Background(), "Lembrete de Pagamento", "Hoje vence: Aluguel (R$ 150,50)")

	select {
	case r := <-got:
		if r.title != "Lembrete de Pagamento" {
			t.Errorf("title = %q", r.title)
		}
		if r.tag != Tag {
			t.Errorf("tag = %q, want %q", r.tag, Tag)
		}
		if r.body != "Hoje vence: Aluguel (R$ 150,50)" {
			t.Errorf("body = %q", r.body)
		}
	default:
		t.Fatal("notification never reached the endpoint")
	}
}

func TestUnconfiguredGatewayIsSilentNoop(t *testing.T) {
	g := NewPushWithEndpoint("", logger.New())

	if g.RequestPermission(context.Background()) {
		t.Error("unconfigured gateway must not grant permission")
	}
	if g.PermissionStatus() != PermissionDenied {
		t.Errorf("permission = %s, want denied", g.PermissionStatus())
	}

	// Must not panic or block.
	g.Send(context.Background(), "t", "b")
}

func TestSendSwallowsServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := NewPushWithEndpoint(srv.URL, logger.New())
	// Failure is silent by contract.
	g.Send(context.Background(), "t", "b")
}
