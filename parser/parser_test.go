package parser

import (
	"reflect"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/kbukum/cloudkit/errors"
)

var hostSchema = Schema{
	Fields: map[string]Kind{"id": Integer, "hostname": String, "ttl": Integer},
}

var zoneSchema = Schema{
	Fields: map[string]Kind{"id": Integer, "domain": String, "default-ttl": Integer},
	Lists:  map[string]List{"hosts": {Item: "host", Schema: &hostSchema}},
}

func TestDecode_ScalarsAndEmptyList(t *testing.T) {
	body := `<?xml version="1.0" encoding="UTF-8"?>
<zone>
  <id type="integer">5</id>
  <domain>example.com</domain>
  <hosts type="array"></hosts>
  <unknown-tag>ignored</unknown-tag>
</zone>`

	got, err := Decode(strings.NewReader(body), New(zoneSchema))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := Result{"id": int64(5), "domain": "example.com", "hosts": []any{}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %#v, want %#v", got, want)
	}
	if _, ok := got["unknown-tag"]; ok {
		t.Error("unknown tags must not appear in the result")
	}
	hosts, ok := got.List("hosts")
	if !ok || hosts == nil || len(hosts) != 0 {
		t.Errorf("expected empty non-nil hosts list, got %#v", got["hosts"])
	}
}

func TestDecode_RepeatedChildren(t *testing.T) {
	body := `<zone>
  <id>7</id>
  <hosts>
    <host><id>1</id><hostname>www</hostname><ttl>300</ttl></host>
    <host><id>2</id><hostname>mail</hostname><extra>x</extra></host>
  </hosts>
  <domain>example.org</domain>
</zone>`

	got, err := Decode(strings.NewReader(body), New(zoneSchema))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	hosts := got.Records("hosts")
	if len(hosts) != 2 {
		t.Fatalf("expected 2 hosts, got %d", len(hosts))
	}
	if name, _ := hosts[0].String("hostname"); name != "www" {
		t.Errorf("expected first host 'www', got %q", name)
	}
	if ttl, _ := hosts[0].Int("ttl"); ttl != 300 {
		t.Errorf("expected ttl 300, got %d", ttl)
	}
	if id, _ := hosts[1].Int("id"); id != 2 {
		t.Errorf("expected second host id 2, got %d", id)
	}
	if _, ok := hosts[1]["extra"]; ok {
		t.Error("unknown item tags must be ignored")
	}
	// item ids must not leak into the enclosing record
	if id, _ := got.Int("id"); id != 7 {
		t.Errorf("expected zone id 7, got %d", id)
	}
	if d, _ := got.String("domain"); d != "example.org" {
		t.Errorf("expected domain after list, got %q", d)
	}
}

func TestDecode_NestedListsAndTransparentWrappers(t *testing.T) {
	groupSchema := Schema{Fields: map[string]Kind{"DBSecurityGroupName": String, "Status": String}}
	instanceSchema := Schema{
		Fields: map[string]Kind{"DBInstanceIdentifier": String, "AllocatedStorage": Integer, "MultiAZ": Bool, "Port": Integer},
		Lists:  map[string]List{"DBSecurityGroups": {Item: "DBSecurityGroup", Schema: &groupSchema}},
	}
	schema := Schema{
		Fields: map[string]Kind{"Marker": String, "RequestId": String},
		Lists:  map[string]List{"DBInstances": {Item: "DBInstance", Schema: &instanceSchema}},
	}

	body := `<DescribeDBInstancesResponse xmlns="http://rds.amazonaws.com/doc/2010-07-28/">
  <DescribeDBInstancesResult>
    <DBInstances>
      <DBInstance>
        <DBInstanceIdentifier>db1</DBInstanceIdentifier>
        <AllocatedStorage>10</AllocatedStorage>
        <MultiAZ>false</MultiAZ>
        <Endpoint><Address>db1.example.com</Address><Port>3306</Port></Endpoint>
        <DBSecurityGroups>
          <DBSecurityGroup><DBSecurityGroupName>default</DBSecurityGroupName><Status>active</Status></DBSecurityGroup>
          <DBSecurityGroup><DBSecurityGroupName>web</DBSecurityGroupName><Status>authorizing</Status></DBSecurityGroup>
        </DBSecurityGroups>
      </DBInstance>
      <DBInstance>
        <DBInstanceIdentifier>db2</DBInstanceIdentifier>
        <AllocatedStorage>20</AllocatedStorage>
        <MultiAZ>true</MultiAZ>
        <DBSecurityGroups/>
      </DBInstance>
    </DBInstances>
    <Marker>next-page</Marker>
  </DescribeDBInstancesResult>
  <ResponseMetadata><RequestId>req-1</RequestId></ResponseMetadata>
</DescribeDBInstancesResponse>`

	got, err := Decode(strings.NewReader(body), New(schema))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if m, _ := got.String("Marker"); m != "next-page" {
		t.Errorf("expected marker, got %q", m)
	}
	if r, _ := got.String("RequestId"); r != "req-1" {
		t.Errorf("expected request id through transparent wrapper, got %q", r)
	}

	instances := got.Records("DBInstances")
	if len(instances) != 2 {
		t.Fatalf("expected 2 instances, got %d", len(instances))
	}
	first := instances[0]
	if port, _ := first.Int("Port"); port != 3306 {
		t.Errorf("expected port 3306, got %d", port)
	}
	groups := first.Records("DBSecurityGroups")
	if len(groups) != 2 {
		t.Fatalf("expected 2 security groups, got %d", len(groups))
	}
	if s, _ := groups[1].String("Status"); s != "authorizing" {
		t.Errorf("expected 'authorizing', got %q", s)
	}
	if multi, _ := instances[1].Bool("MultiAZ"); !multi {
		t.Error("expected MultiAZ true on second instance")
	}
	if g, ok := instances[1].List("DBSecurityGroups"); !ok || len(g) != 0 {
		t.Errorf("expected empty group list on second instance, got %#v", instances[1]["DBSecurityGroups"])
	}
}

func TestDecode_ScalarListItems(t *testing.T) {
	schema := Schema{
		Lists: map[string]List{
			"nameservers": {Item: "ns"},
			"ports":       {Item: "port", Kind: Integer},
		},
	}
	body := `<r><nameservers><ns>a.ns</ns><ns>b.ns</ns></nameservers><ports><port>53</port><port>5353</port></ports></r>`

	got, err := Decode(strings.NewReader(body), New(schema))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got["nameservers"], []any{"a.ns", "b.ns"}) {
		t.Errorf("unexpected nameservers %#v", got["nameservers"])
	}
	if !reflect.DeepEqual(got["ports"], []any{int64(53), int64(5353)}) {
		t.Errorf("unexpected ports %#v", got["ports"])
	}
}

func TestParser_TextSplitAcrossEvents(t *testing.T) {
	p := New(zoneSchema)
	p.StartElement("zone")
	p.StartElement("domain")
	p.Characters([]byte("exam"))
	p.Characters([]byte("ple"))
	p.Characters([]byte(".com"))
	if err := p.EndElement("domain"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p.StartElement("id")
	p.Characters([]byte("1"))
	p.Characters([]byte("2"))
	if err := p.EndElement("id"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.EndElement("zone"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := p.Result()
	if d, _ := got.String("domain"); d != "example.com" {
		t.Errorf("expected concatenated text, got %q", d)
	}
	if id, _ := got.Int("id"); id != 12 {
		t.Errorf("expected 12, got %d", id)
	}
}

func TestDecode_OneByteReader(t *testing.T) {
	body := `<zone><id>42</id><domain>streamed.example.com</domain><hosts><host><id>9</id></host></hosts></zone>`
	got, err := Decode(iotest.OneByteReader(strings.NewReader(body)), New(zoneSchema))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d, _ := got.String("domain"); d != "streamed.example.com" {
		t.Errorf("unexpected domain %q", d)
	}
	if len(got.Records("hosts")) != 1 {
		t.Errorf("expected one host, got %#v", got["hosts"])
	}
}

func TestParser_ReuseAfterReset(t *testing.T) {
	p := New(zoneSchema)

	first, err := Decode(strings.NewReader(`<zone><id>1</id><domain>a.com</domain></zone>`), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Decode(strings.NewReader(`<zone><id>2</id></zone>`), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := second["domain"]; ok {
		t.Error("state leaked from the previous parse")
	}
	if id, _ := second.Int("id"); id != 2 {
		t.Errorf("expected id 2, got %d", id)
	}
	if id, _ := first.Int("id"); id != 1 {
		t.Errorf("first result was mutated, id %d", id)
	}
}

func TestDecode_Coercions(t *testing.T) {
	schema := Schema{Fields: map[string]Kind{"n": Integer, "b": Bool, "t": Time, "s": String}}
	body := `<r><n> 15 </n><b>TRUE</b><t>2010-11-01T12:30:00.123Z</t><s>  padded  </s></r>`

	got, err := Decode(strings.NewReader(body), New(schema))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n, _ := got.Int("n"); n != 15 {
		t.Errorf("expected 15, got %d", n)
	}
	if b, _ := got.Bool("b"); !b {
		t.Error("expected true")
	}
	want := time.Date(2010, 11, 1, 12, 30, 0, 123000000, time.UTC)
	if ts, _ := got.Time("t"); !ts.Equal(want) {
		t.Errorf("expected %v, got %v", want, ts)
	}
	if s, _ := got.String("s"); s != "  padded  " {
		t.Errorf("strings must be stored verbatim, got %q", s)
	}
}

func TestDecode_EmptyIntegerIsZero(t *testing.T) {
	got, err := Decode(strings.NewReader(`<zone><id></id></zone>`), New(zoneSchema))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id, ok := got.Int("id"); !ok || id != 0 {
		t.Errorf("expected 0, got %#v", got["id"])
	}
}

func TestDecode_ParseErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad integer", `<zone><id>five</id></zone>`},
		{"bad bool", `<r><b>maybe</b></r>`},
		{"bad time", `<r><t>yesterday</t></r>`},
		{"truncated", `<zone><id>5</id><domain>exa`},
		{"mismatched", `<zone><id>5</domain></zone>`},
	}
	schema := Schema{Fields: map[string]Kind{"id": Integer, "b": Bool, "t": Time, "domain": String}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.body), New(schema))
			if !errors.IsParse(err) {
				t.Errorf("expected parse error, got %v", err)
			}
		})
	}
}

func TestDecode_EmptyBody(t *testing.T) {
	got, err := Decode(strings.NewReader(""), New(zoneSchema))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty result, got %#v", got)
	}
}

func TestKind_String(t *testing.T) {
	for k, want := range map[Kind]string{String: "string", Integer: "integer", Bool: "bool", Time: "time", Kind(99): "unknown"} {
		if k.String() != want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(k), k.String(), want)
		}
	}
}
