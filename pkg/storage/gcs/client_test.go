package gcs

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"google.golang.org/api/option"
	storage "google.golang.org/api/storage/v1"
)

func newTestSigner(t *testing.T) (*urlSigner, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}
	pemKey := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	signer, err := newURLSigner("signer@example.iam.gserviceaccount.com", pemKey)
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}
	return signer, key
}

func TestSignedURLVerifiesAgainstPublicKey(t *testing.T) {
	signer, key := newTestSigner(t)
	fixed := time.Unix(1_700_000_000, 0)
	client := &Client{bucket: "road-files", signer: signer, now: func() time.Time { return fixed }}

	urlStr, err := client.SignedURL("reports/1700000000000-site photo.jpg", time.Hour)
	if err != nil {
		t.Fatalf("SignedURL returned error: %v", err)
	}

	parsed, err := url.Parse(urlStr)
	if err != nil {
		t.Fatalf("parse signed url: %v", err)
	}
	if parsed.Host != signedURLHost {
		t.Fatalf("unexpected host %s", parsed.Host)
	}
	if parsed.EscapedPath() != "/road-files/reports/1700000000000-site%20photo.jpg" {
		t.Fatalf("unexpected path %s", parsed.EscapedPath())
	}

	values := parsed.Query()
	if got := values.Get("GoogleAccessId"); got != "signer@example.iam.gserviceaccount.com" {
		t.Fatalf("unexpected GoogleAccessId %q", got)
	}
	expires, err := strconv.ParseInt(values.Get("Expires"), 10, 64)
	if err != nil {
		t.Fatalf("parse expires: %v", err)
	}
	if expires != fixed.Add(time.Hour).Unix() {
		t.Fatalf("unexpected expiry %d", expires)
	}

	sig, err := base64.StdEncoding.DecodeString(values.Get("Signature"))
	if err != nil {
		t.Fatalf("decode signature: %v", err)
	}
	payload := "GET\n\n\n" + values.Get("Expires") + "\n" + parsed.EscapedPath()
	digest := sha256.Sum256([]byte(payload))
	if err := rsa.VerifyPKCS1v15(&key.PublicKey, crypto.SHA256, digest[:], sig); err != nil {
		t.Fatalf("signature does not verify: %v", err)
	}
}

func TestSignedURLRequiresSignerAndTTL(t *testing.T) {
	client := &Client{bucket: "b", now: time.Now}
	if _, err := client.SignedURL("a.txt", time.Hour); !errors.Is(err, ErrSigningUnavailable) {
		t.Fatalf("expected ErrSigningUnavailable, got %v", err)
	}
	signer, _ := newTestSigner(t)
	client.signer = signer
	if _, err := client.SignedURL("a.txt", 0); err == nil {
		t.Fatal("expected non-positive ttl to fail")
	}
	if _, err := client.SignedURL("", time.Hour); err == nil {
		t.Fatal("expected empty object to fail")
	}
}

func TestParsePrivateKeyRejectsGarbage(t *testing.T) {
	if _, err := parsePrivateKey([]byte("nope")); err == nil {
		t.Fatal("expected invalid pem to fail")
	}
	if _, err := newURLSigner("", nil); err == nil {
		t.Fatal("expected missing email to fail")
	}
}

type fakeGCS struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (f *fakeGCS) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	path := r.URL.Path
	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(path, "/b/road-files/o"):
		body, _ := io.ReadAll(r.Body)
		f.objects["uploaded"] = body
		_, _ = io.WriteString(w, `{"bucket":"road-files","name":"general/1-a.txt","contentType":"text/plain"}`)
	case r.Method == http.MethodGet && strings.HasSuffix(path, "/b/road-files/o"):
		_, _ = io.WriteString(w, `{"kind":"storage#objects","items":[]}`)
	case strings.Contains(path, "/b/road-files/o/"):
		name, _ := url.PathUnescape(path[strings.Index(path, "/o/")+3:])
		if _, ok := f.objects[name]; !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"error":{"code":404,"message":"No such object"}}`)
			return
		}
		_, _ = io.WriteString(w, `{"bucket":"road-files","name":"`+name+`"}`)
	default:
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"code":400,"message":"unexpected `+r.Method+` `+path+`"}}`)
	}
}

func newFakeClient(t *testing.T) (*Client, *fakeGCS) {
	t.Helper()
	fake := &fakeGCS{objects: map[string][]byte{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	svc, err := storage.NewService(context.Background(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/storage/v1/"),
	)
	if err != nil {
		t.Fatalf("new storage service: %v", err)
	}
	return newClient(svc, "road-files", nil), fake
}

func TestUploadStatPingAgainstFakeAPI(t *testing.T) {
	client, fake := newFakeClient(t)
	ctx := context.Background()

	obj, err := client.Upload(ctx, "general/1-a.txt", "text/plain", strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if obj.Name != "general/1-a.txt" {
		t.Fatalf("unexpected object %+v", obj)
	}
	if !strings.Contains(string(fake.objects["uploaded"]), "hello") {
		t.Fatalf("expected media bytes in upload body")
	}

	fake.objects["general/1-a.txt"] = []byte("hello")
	if _, err := client.Stat(ctx, "general/1-a.txt"); err != nil {
		t.Fatalf("stat existing: %v", err)
	}
	if _, err := client.Stat(ctx, "general/missing.txt"); !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("expected ErrObjectNotFound, got %v", err)
	}

	if err := client.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestNilClientErrors(t *testing.T) {
	var c *Client
	if err := c.Ping(context.Background()); err == nil {
		t.Fatal("expected nil client ping to fail")
	}
	if _, err := c.Stat(context.Background(), "x"); err == nil {
		t.Fatal("expected nil client stat to fail")
	}
}
