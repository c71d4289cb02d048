package gcs

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const signedURLHost = "storage.googleapis.com"

type urlSigner struct {
	email string
	key   *rsa.PrivateKey
}

func newURLSigner(email string, pemKey []byte) (*urlSigner, error) {
	if email == "" {
		return nil, errors.New("service account email is required for url signing")
	}
	key, err := parsePrivateKey(pemKey)
	if err != nil {
		return nil, err
	}
	return &urlSigner{email: email, key: key}, nil
}

// sign builds a V2 signed GET URL. The string to sign is
// "GET\n\n\n<expires>\n/<bucket>/<escaped object>".
func (s *urlSigner) sign(bucket, object string, expires time.Time) (string, error) {
	resource := "/" + bucket + "/" + escapeObject(object)
	exp := strconv.FormatInt(expires.Unix(), 10)

	payload := strings.Join([]string{"GET", "", "", exp, resource}, "\n")
	digest := sha256.Sum256([]byte(payload))
	sig, err := rsa.SignPKCS1v15(rand.Reader, s.key, crypto.SHA256, digest[:])
	if err != nil {
		return "", fmt.Errorf("signing url: %w", err)
	}

	q := url.Values{}
	q.Set("GoogleAccessId", s.email)
	q.Set("Expires", exp)
	q.Set("Signature", base64.StdEncoding.EncodeToString(sig))

	return "https://" + signedURLHost + resource + "?" + q.Encode(), nil
}

func escapeObject(object string) string {
	parts := strings.Split(object, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

func parsePrivateKey(pemData []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemData)
	if block == nil {
		return nil, errors.New("invalid private key")
	}
	if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		if priv, ok := key.(*rsa.PrivateKey); ok {
			return priv, nil
		}
	}
	priv, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, errors.New("unsupported private key format")
	}
	return priv, nil
}
