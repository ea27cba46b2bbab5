package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/idna"

	"github.com/kbukum/cloudkit/errors"
)

// Protocol parameter names.
const (
	ParamAccessKeyID      = "AWSAccessKeyId"
	ParamSignatureMethod  = "SignatureMethod"
	ParamSignatureVersion = "SignatureVersion"
	ParamTimestamp        = "Timestamp"
	ParamExpires          = "Expires"
	ParamVersion          = "Version"
	ParamAction           = "Action"
	ParamSignature        = "Signature"
)

const (
	// SignatureMethod is the keyed-hash algorithm identifier sent to the provider.
	SignatureMethod = "HmacSHA256"
	// SignatureVersion is the signing protocol version sent to the provider.
	SignatureVersion = "2"
	// TimestampFormat is the ISO 8601 UTC layout of the Timestamp parameter.
	TimestampFormat = "2006-01-02T15:04:05Z"
)

// Credentials identify the caller. The secret is only ever used as the HMAC key.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
}

// String redacts the secret so credentials can never leak through formatting.
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{AccessKeyID: %s, SecretAccessKey: <redacted>}", c.AccessKeyID)
}

// Validate checks both halves of the key pair are present.
func (c Credentials) Validate() error {
	if c.AccessKeyID == "" {
		return errors.Configuration("access key id is required")
	}
	if c.SecretAccessKey == "" {
		return errors.Configuration("secret access key is required")
	}
	return nil
}

// Params is the protocol parameter mapping of one request. Values must be
// scalars: strings, booleans, integers, floats, time.Time or fmt.Stringer.
type Params map[string]any

// Context holds the per-client inputs of the signature.
type Context struct {
	// Method is the HTTP method. Defaults to POST.
	Method string
	// Host is the endpoint host name.
	Host string
	// Path is the request path. Defaults to "/".
	Path string
	// Scheme is http or https. Defaults to https.
	Scheme string
	// Port is the endpoint port; 0 and the scheme's default port are left
	// out of the signed host.
	Port int
	// Version is the provider API version.
	Version string
	// Credentials sign the request.
	Credentials Credentials
}

// Signer signs parameter mappings for one endpoint. It holds no per-request
// state and is safe for concurrent use.
type Signer struct {
	ctx    Context
	host   string
	secret []byte
	now    func() time.Time
}

// Option configures a Signer.
type Option func(*Signer)

// WithClock replaces the wall clock used for the Timestamp parameter.
func WithClock(now func() time.Time) Option {
	return func(s *Signer) { s.now = now }
}

// New creates a Signer for the given context.
func New(ctx Context, opts ...Option) (*Signer, error) {
	if err := ctx.Credentials.Validate(); err != nil {
		return nil, err
	}
	if ctx.Host == "" {
		return nil, errors.Configuration("signing host is required")
	}
	if ctx.Method == "" {
		ctx.Method = http.MethodPost
	}
	if ctx.Path == "" {
		ctx.Path = "/"
	}
	ctx.Scheme = strings.ToLower(ctx.Scheme)
	if ctx.Scheme == "" {
		ctx.Scheme = "https"
	}

	host, err := idna.Punycode.ToASCII(strings.ToLower(ctx.Host))
	if err != nil {
		return nil, errors.Configuration("invalid host %q: %v", ctx.Host, err)
	}
	if ctx.Port != 0 && ctx.Port != defaultPort(ctx.Scheme) {
		host += ":" + strconv.Itoa(ctx.Port)
	}

	s := &Signer{
		ctx:    ctx,
		host:   host,
		secret: []byte(ctx.Credentials.SecretAccessKey),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func defaultPort(scheme string) int {
	if scheme == "http" {
		return 80
	}
	return 443
}

// Sign returns the form-encoded body: the canonical query string followed by
// the Signature parameter.
func (s *Signer) Sign(params Params) (string, error) {
	canonical, err := s.Canonicalize(params)
	if err != nil {
		return "", err
	}
	signature := s.signature(s.stringToSign(canonical))
	return canonical + "&" + ParamSignature + "=" + Escape(signature), nil
}

// StringToSign returns the exact input of the keyed hash for params.
func (s *Signer) StringToSign(params Params) (string, error) {
	canonical, err := s.Canonicalize(params)
	if err != nil {
		return "", err
	}
	return s.stringToSign(canonical), nil
}

// Canonicalize merges the protocol parameters into params and returns the
// sorted, percent-encoded query string, without the signature.
func (s *Signer) Canonicalize(params Params) (string, error) {
	if _, ok := params[ParamSignature]; ok {
		return "", errors.InvalidInput(ParamSignature, "reserved for the computed signature")
	}

	encoded := make(map[string]string, len(params)+5)
	for k, v := range params {
		value, err := FormatValue(k, v)
		if err != nil {
			return "", err
		}
		encoded[Escape(k)] = Escape(value)
	}

	encoded[ParamAccessKeyID] = Escape(s.ctx.Credentials.AccessKeyID)
	encoded[ParamSignatureMethod] = SignatureMethod
	encoded[ParamSignatureVersion] = SignatureVersion
	if s.ctx.Version != "" {
		encoded[ParamVersion] = Escape(s.ctx.Version)
	}
	_, hasTimestamp := params[ParamTimestamp]
	_, hasExpires := params[ParamExpires]
	if !hasTimestamp && !hasExpires {
		encoded[ParamTimestamp] = Escape(s.now().UTC().Format(TimestampFormat))
	}

	keys := make([]string, 0, len(encoded))
	for k := range encoded {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(encoded[k])
	}
	return b.String(), nil
}

// Host returns the host[:port] value covered by the signature.
func (s *Signer) Host() string {
	return s.host
}

func (s *Signer) stringToSign(canonical string) string {
	return strings.Join([]string{s.ctx.Method, s.host, s.ctx.Path, canonical}, "\n")
}

func (s *Signer) signature(stringToSign string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(stringToSign))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
