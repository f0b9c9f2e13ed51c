package certgen

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/atinyakov/GophTube/internal/client/api"
)

func TestWriteBundle(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "certs")
	if err := WriteBundle(dir, []string{"localhost", "127.0.0.1"}, time.Hour); err != nil {
		t.Fatalf("WriteBundle: %v", err)
	}

	pair, err := tls.LoadX509KeyPair(filepath.Join(dir, ServerCertFile), filepath.Join(dir, ServerKeyFile))
	if err != nil {
		t.Fatalf("server key pair: %v", err)
	}
	leaf, err := x509.ParseCertificate(pair.Certificate[0])
	if err != nil {
		t.Fatal(err)
	}

	caPEM, err := os.ReadFile(filepath.Join(dir, CAFile))
	if err != nil {
		t.Fatal(err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caPEM) {
		t.Fatal("ca.crt is not a PEM certificate")
	}
	for _, host := range []string{"localhost", "127.0.0.1"} {
		if _, err := leaf.Verify(x509.VerifyOptions{Roots: pool, DNSName: host}); err != nil {
			t.Errorf("verify for %s: %v", host, err)
		}
	}
	if len(leaf.IPAddresses) != 1 || !leaf.IPAddresses[0].Equal(net.ParseIP("127.0.0.1")) {
		t.Errorf("ip SANs = %v", leaf.IPAddresses)
	}

	for _, name := range []string{CAKeyFile, ServerKeyFile} {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Fatal(err)
		}
		if perm := info.Mode().Perm(); perm != 0o600 {
			t.Errorf("%s mode = %o, want 600", name, perm)
		}
	}
}

func TestIssueServer_NoHosts(t *testing.T) {
	ca, err := NewAuthority("Test CA", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := ca.IssueServer(nil, time.Hour); err == nil {
		t.Fatal("expected an error without hosts")
	}
}

func TestBundle_TrustedByClient(t *testing.T) {
	ca, err := NewAuthority("Test CA", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	certPEM, keyPEM, err := ca.IssueServer([]string{"127.0.0.1"}, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	pair, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		t.Fatal(err)
	}
	caPath := filepath.Join(t.TempDir(), CAFile)
	if err := os.WriteFile(caPath, ca.CertPEM(), 0o644); err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"statusCode":200,"data":{"_id":"u1","username":"alice"},"message":"ok","success":true}`))
	}))
	srv.TLS = &tls.Config{Certificates: []tls.Certificate{pair}, MinVersion: tls.VersionTLS12}
	srv.StartTLS()
	defer srv.Close()

	trusted, err := api.New(srv.URL, api.WithCAFile(caPath))
	if err != nil {
		t.Fatal(err)
	}
	env, err := trusted.CurrentUser(context.Background())
	if err != nil {
		t.Fatalf("request with dev CA: %v", err)
	}
	if env.Data.Username != "alice" {
		t.Errorf("user = %+v", env.Data)
	}

	untrusted, err := api.New(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := untrusted.CurrentUser(context.Background()); err == nil {
		t.Error("expected a certificate error without the dev CA")
	}
}
