package dispatch

import (
	"bytes"
	"context"
	stderrors "errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kbukum/cloudkit/classifier"
	"github.com/kbukum/cloudkit/errors"
	"github.com/kbukum/cloudkit/logger"
	"github.com/kbukum/cloudkit/parser"
	"github.com/kbukum/cloudkit/resilience"
	"github.com/kbukum/cloudkit/signer"
	"github.com/kbukum/cloudkit/testutil"
	"github.com/kbukum/cloudkit/transport"
)

const secret = "wJalrXUtnFEMI/K7MDENG/bPxRfiCYEXAMPLEKEY"

var fixedClock = func() time.Time { return time.Date(2011, 5, 1, 12, 0, 0, 0, time.UTC) }

var instanceSchema = parser.Schema{
	Lists: map[string]parser.List{
		"DBInstances": {Item: "DBInstance", Schema: &parser.Schema{
			Fields: map[string]parser.Kind{
				"DBInstanceIdentifier": parser.String,
				"AllocatedStorage":     parser.Integer,
			},
		}},
	},
	Fields: map[string]parser.Kind{"RequestId": parser.String},
}

const describeBody = `<DescribeDBInstancesResponse>
  <DescribeDBInstancesResult>
    <DBInstances>
      <DBInstance><DBInstanceIdentifier>db1</DBInstanceIdentifier><AllocatedStorage>5</AllocatedStorage></DBInstance>
    </DBInstances>
  </DescribeDBInstancesResult>
  <ResponseMetadata><RequestId>req-1</RequestId></ResponseMetadata>
</DescribeDBInstancesResponse>`

type fixture struct {
	srv  *testutil.ProviderServer
	conn *transport.Connection
	d    *Dispatcher
	logs *bytes.Buffer
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	return newFixtureWithTimeout(t, 2*time.Second, opts...)
}

func newFixtureWithTimeout(t *testing.T, timeout time.Duration, opts ...Option) *fixture {
	t.Helper()
	srv := testutil.NewProviderServer("rds")
	testutil.T(t).Setup(srv)

	scheme, host, port := srv.Endpoint()
	conn, err := transport.New(transport.Config{
		Scheme: scheme, Host: host, Port: port,
		Persistent: true, Timeout: timeout,
	})
	if err != nil {
		t.Fatalf("transport: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	sig, err := signer.New(signer.Context{
		Scheme: scheme, Host: host, Port: port, Version: "2010-07-28",
		Credentials: signer.Credentials{AccessKeyID: "AKIDEXAMPLE", SecretAccessKey: secret},
	}, signer.WithClock(fixedClock))
	if err != nil {
		t.Fatalf("signer: %v", err)
	}

	cls := classifier.New("rds", classifier.Table{
		"DBInstanceNotFound":            errors.KindNotFound,
		"DBParameterGroupAlreadyExists": errors.KindIdentifierTaken,
	})

	logs := &bytes.Buffer{}
	base := []Option{
		WithLogger(logger.NewWithWriter(logs, &logger.Config{Level: "debug", Format: logger.FormatJSON}, "test")),
		WithRetry(resilience.RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond}),
		WithUserAgent("cloudkit-test/1.0"),
	}
	d := New(conn, sig, cls, append(base, opts...)...)
	return &fixture{srv: srv, conn: conn, d: d, logs: logs}
}

func describe() signer.Params {
	return signer.Params{"Action": "DescribeDBInstances", "MaxRecords": 20}
}

func TestDispatch_Success(t *testing.T) {
	f := newFixture(t)
	f.srv.Respond(http.StatusOK, describeBody)

	result, err := f.d.Dispatch(context.Background(), describe(), Options{Parser: parser.New(instanceSchema), Idempotent: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	instances := result.Records("DBInstances")
	if len(instances) != 1 {
		t.Fatalf("expected 1 instance, got %d", len(instances))
	}
	if id, _ := instances[0].String("DBInstanceIdentifier"); id != "db1" {
		t.Errorf("unexpected identifier %q", id)
	}
	if size, _ := instances[0].Int("AllocatedStorage"); size != 5 {
		t.Errorf("unexpected storage %d", size)
	}
	if rid, _ := result.String("RequestId"); rid != "req-1" {
		t.Errorf("unexpected request id %q", rid)
	}

	req := f.srv.Last()
	if req.Header.Get("Content-Type") != ContentType {
		t.Errorf("unexpected content type %q", req.Header.Get("Content-Type"))
	}
	if req.Header.Get("User-Agent") != "cloudkit-test/1.0" {
		t.Errorf("unexpected user agent %q", req.Header.Get("User-Agent"))
	}
	if req.Form.Get("Action") != "DescribeDBInstances" || req.Form.Get("MaxRecords") != "20" {
		t.Errorf("unexpected form %v", req.Form)
	}
	if req.Form.Get("Signature") == "" || req.Form.Get("Version") != "2010-07-28" {
		t.Errorf("expected signed protocol parameters, got %v", req.Form)
	}
	if !strings.HasSuffix(req.Body, "&Signature="+signer.Escape(req.Form.Get("Signature"))) {
		t.Errorf("signature must be the final pair: %s", req.Body)
	}
}

func TestDispatch_IdempotentRetriesTransientFailure(t *testing.T) {
	f := newFixture(t)
	f.srv.DropConnection().Respond(http.StatusOK, describeBody)

	result, err := f.d.Dispatch(context.Background(), describe(), Options{Parser: parser.New(instanceSchema), Idempotent: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.srv.Hits() != 2 {
		t.Errorf("expected exactly 2 hits, got %d", f.srv.Hits())
	}
	if len(result.Records("DBInstances")) != 1 {
		t.Error("expected the result of the second attempt")
	}

	reqs := f.srv.Requests()
	if reqs[0].Body != reqs[1].Body {
		t.Error("retries must resend the same signed body")
	}
	if !strings.Contains(f.logs.String(), "retrying request") {
		t.Error("expected a retry warning in the logs")
	}
}

func TestDispatch_IdempotentRetriesGatewayError(t *testing.T) {
	f := newFixture(t)
	f.srv.Respond(http.StatusBadGateway, "<html><body>Bad Gateway</body></html>").
		Respond(http.StatusOK, describeBody)

	if _, err := f.d.Dispatch(context.Background(), describe(), Options{Parser: parser.New(instanceSchema), Idempotent: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.srv.Hits() != 2 {
		t.Errorf("expected exactly 2 hits, got %d", f.srv.Hits())
	}
}

func TestDispatch_RetriesExhausted(t *testing.T) {
	f := newFixture(t)
	f.srv.SetFallback(testutil.Reply{Status: http.StatusServiceUnavailable, Body: "unavailable"})

	_, err := f.d.Dispatch(context.Background(), describe(), Options{Parser: parser.New(instanceSchema), Idempotent: true})
	e, ok := errors.As(err)
	if !ok || e.Kind != errors.KindTransport {
		t.Fatalf("expected transport error, got %v", err)
	}
	if e.StatusCode != http.StatusServiceUnavailable || string(e.Body) != "unavailable" {
		t.Errorf("expected the last failure, got %+v", e)
	}
	if f.srv.Hits() != 3 {
		t.Errorf("expected 3 attempts, got %d", f.srv.Hits())
	}
}

func TestDispatch_NonIdempotentSingleAttempt(t *testing.T) {
	f := newFixture(t)
	f.srv.DropConnection().Respond(http.StatusOK, describeBody)

	params := signer.Params{"Action": "DeleteDBInstance", "DBInstanceIdentifier": "db1"}
	_, err := f.d.Dispatch(context.Background(), params, Options{Parser: parser.New(instanceSchema)})
	if !errors.IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if f.srv.Hits() != 1 {
		t.Errorf("expected exactly 1 hit, got %d", f.srv.Hits())
	}
}

func TestDispatch_ClassifiedErrorNotRetried(t *testing.T) {
	f := newFixture(t)
	f.srv.Respond(http.StatusNotFound, `<ErrorResponse><Error><Type>Sender</Type>
<Code>Client.DBInstanceNotFound</Code>
<Message>db1 not found</Message></Error></ErrorResponse>`)

	_, err := f.d.Dispatch(context.Background(), describe(), Options{Parser: parser.New(instanceSchema), Idempotent: true})
	if !errors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	e, _ := errors.As(err)
	if e.Message != "db1 not found" || e.Service != "rds" || e.StatusCode != http.StatusNotFound {
		t.Errorf("unexpected error %+v", e)
	}
	if f.srv.Hits() != 1 {
		t.Errorf("classified errors must not be retried, got %d hits", f.srv.Hits())
	}
	if !strings.Contains(f.logs.String(), `"code":"Client.DBInstanceNotFound"`) {
		t.Errorf("expected the provider code in the failure log: %s", f.logs.String())
	}
}

func TestDispatch_Unclassified(t *testing.T) {
	f := newFixture(t)
	f.srv.Respond(http.StatusBadRequest, `<Code>InvalidParameterValue</Code><Message>bad value</Message>`)

	_, err := f.d.Dispatch(context.Background(), describe(), Options{Idempotent: true})
	if !errors.IsUnclassified(err) {
		t.Fatalf("expected unclassified, got %v", err)
	}
	e, _ := errors.As(err)
	if e.Code != "InvalidParameterValue" || e.Message != "bad value" {
		t.Errorf("unexpected error %+v", e)
	}
}

func TestDispatch_Reload(t *testing.T) {
	f := newFixture(t)
	opts := Options{Parser: parser.New(instanceSchema), Idempotent: true}

	if _, err := f.d.Dispatch(context.Background(), describe(), opts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.d.Dispatch(context.Background(), describe(), opts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.conn.Generation() != 1 || f.srv.Connections() != 1 {
		t.Fatalf("expected one persistent connection, got generation %d, %d connections", f.conn.Generation(), f.srv.Connections())
	}

	f.d.Reload()
	if _, err := f.d.Dispatch(context.Background(), describe(), opts); err != nil {
		t.Fatalf("unexpected error after reload: %v", err)
	}
	if f.conn.Generation() != 2 {
		t.Errorf("expected a new connection after reload, got generation %d", f.conn.Generation())
	}
	if f.srv.Connections() != 2 {
		t.Errorf("expected the server to see a second connection, got %d", f.srv.Connections())
	}
}

func TestDispatch_Expects(t *testing.T) {
	f := newFixture(t)
	f.srv.Respond(http.StatusAccepted, "<Accepted/>").
		Respond(http.StatusOK, "<Ok/>")

	if _, err := f.d.Dispatch(context.Background(), describe(), Options{Expects: []int{200, 202}}); err != nil {
		t.Fatalf("expected 202 to be accepted: %v", err)
	}
	_, err := f.d.Dispatch(context.Background(), describe(), Options{Expects: []int{http.StatusNoContent}})
	if !errors.IsTransport(err) {
		t.Fatalf("expected unexpected-status error, got %v", err)
	}
}

func TestDispatch_NilParser(t *testing.T) {
	f := newFixture(t)
	f.srv.Respond(http.StatusOK, describeBody)

	result, err := f.d.Dispatch(context.Background(), describe(), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result == nil || len(result) != 0 {
		t.Errorf("expected an empty result, got %v", result)
	}
}

func TestDispatch_ParseErrorNotRetried(t *testing.T) {
	f := newFixture(t)
	f.srv.Respond(http.StatusOK, `<Response><AllocatedStorage>five</AllocatedStorage></Response>`)

	schema := parser.Schema{Fields: map[string]parser.Kind{"AllocatedStorage": parser.Integer}}
	_, err := f.d.Dispatch(context.Background(), describe(), Options{Parser: parser.New(schema), Idempotent: true})
	if !errors.IsParse(err) {
		t.Fatalf("expected parse error, got %v", err)
	}
	if f.srv.Hits() != 1 {
		t.Errorf("parse errors must not be retried, got %d hits", f.srv.Hits())
	}
}

func TestDispatch_InvalidParamsFailBeforeIO(t *testing.T) {
	f := newFixture(t)

	_, err := f.d.Dispatch(context.Background(), signer.Params{"Action": "X", "Ids": []string{"a"}}, Options{})
	if !errors.IsInvalidInput(err) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if f.srv.Hits() != 0 {
		t.Errorf("expected no request, got %d hits", f.srv.Hits())
	}
}

func TestDispatch_TimeoutUnderDefaultPolicy(t *testing.T) {
	policy := resilience.DefaultRetryConfig()
	policy.InitialBackoff = time.Millisecond
	policy.MaxBackoff = 5 * time.Millisecond

	tests := []struct {
		name       string
		idempotent bool
		wantHits   int
		wantErr    bool
	}{
		{"idempotent retried", true, 2, false},
		{"non-idempotent single attempt", false, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixtureWithTimeout(t, 50*time.Millisecond, WithRetry(policy))
			f.srv.Enqueue(testutil.Reply{Status: http.StatusOK, Body: describeBody, Delay: 300 * time.Millisecond})
			f.srv.Respond(http.StatusOK, describeBody)

			_, err := f.d.Dispatch(context.Background(), describe(), Options{Parser: parser.New(instanceSchema), Idempotent: tt.idempotent})
			if tt.wantErr {
				if !errors.IsTransport(err) {
					t.Fatalf("expected TRANSPORT error, got %v", err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if f.srv.Hits() != tt.wantHits {
				t.Errorf("expected %d hits, got %d", tt.wantHits, f.srv.Hits())
			}
		})
	}
}

func TestDispatch_CancelledContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.d.Dispatch(ctx, describe(), Options{Idempotent: true})
	if !errors.IsTransport(err) || errors.IsRetryable(err) {
		t.Fatalf("expected non-retryable TRANSPORT error, got %v", err)
	}
	if !stderrors.Is(err, context.Canceled) {
		t.Errorf("expected cancellation kept as cause, got %v", err)
	}
	if f.srv.Hits() != 0 {
		t.Errorf("expected no request, got %d hits", f.srv.Hits())
	}
}

func TestDispatch_Serialised(t *testing.T) {
	f := newFixture(t)
	f.srv.SetFallback(testutil.Reply{Status: http.StatusOK, Body: describeBody, Delay: 5 * time.Millisecond})

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.d.Dispatch(context.Background(), describe(), Options{Parser: parser.New(instanceSchema)})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if f.srv.Hits() != 8 {
		t.Errorf("expected 8 hits, got %d", f.srv.Hits())
	}
	if f.srv.Connections() != 1 {
		t.Errorf("serialised requests must share one connection, got %d", f.srv.Connections())
	}
}

func TestDispatch_LogsNeverCarrySecret(t *testing.T) {
	f := newFixture(t)
	f.srv.Respond(http.StatusNotFound, `<Code>DBInstanceNotFound</Code><Message>gone</Message>`)

	_, _ = f.d.Dispatch(context.Background(), describe(), Options{})

	out := f.logs.String()
	if strings.Contains(out, secret) {
		t.Fatal("secret access key leaked into logs")
	}
	for _, want := range []string{`"request_id"`, `"action":"DescribeDBInstances"`, `"component":"dispatch"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in logs: %s", want, out)
		}
	}
}

func TestDispatch_RateLimited(t *testing.T) {
	f := newFixture(t, WithRateLimiter(resilience.NewRateLimiter(resilience.RateLimiterConfig{Rate: 50, Burst: 1})))

	start := time.Now()
	for i := 0; i < 2; i++ {
		if _, err := f.d.Dispatch(context.Background(), describe(), Options{Idempotent: true}); err != nil {
			t.Fatalf("dispatch %d: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed < 10*time.Millisecond {
		t.Errorf("expected the second request to wait for a token, took %v", elapsed)
	}
	if f.srv.Hits() != 2 {
		t.Errorf("expected 2 hits, got %d", f.srv.Hits())
	}
}

func TestDispatch_RateLimitWaitCancelled(t *testing.T) {
	rl := resilience.NewRateLimiter(resilience.RateLimiterConfig{Rate: 0.1, Burst: 1})
	rl.Allow()
	f := newFixture(t, WithRateLimiter(rl))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := f.d.Dispatch(ctx, describe(), Options{Idempotent: true})
	if !errors.IsTransport(err) || errors.IsRetryable(err) {
		t.Fatalf("expected non-retryable transport error, got %v", err)
	}
	if f.srv.Hits() != 0 {
		t.Errorf("expected no request sent, got %d hits", f.srv.Hits())
	}
}
