package rpc

import (
	"strings"
	"testing"

	"github.com/antchfx/xmlquery"
	"github.com/stretchr/testify/assert"

	"github.com/ncforge/ncengine/datastore"
	"github.com/ncforge/ncengine/edit"
)

// body parses an <rpc> document and returns the operation element
func body(t *testing.T, s string) *xmlquery.Node {
	t.Helper()
	doc, err := xmlquery.Parse(strings.NewReader(
		`<rpc message-id="1" xmlns="urn:ietf:params:xml:ns:netconf:base:1.0">` + s + `</rpc>`))
	if err != nil {
		t.Fatalf("parse rpc: %v", err)
	}
	rpc := doc.SelectElement("rpc")
	if rpc == nil {
		t.Fatal("no <rpc> element")
	}
	for child := rpc.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			return child
		}
	}
	t.Fatal("no operation element")
	return nil
}

func TestClassify(t *testing.T) {
	for _, tc := range []struct {
		input    string
		op       Op
		category Category
	}{
		{`<get/>`, OpGet, CategoryDatastoreRead},
		{`<get-config><source><running/></source></get-config>`, OpGetConfig, CategoryDatastoreRead},
		{`<get-schema><identifier>m</identifier></get-schema>`, OpGetSchema, CategoryDatastoreRead},
		{`<edit-config><target><running/></target><config/></edit-config>`, OpEditConfig, CategoryDatastoreWrite},
		{`<copy-config><target><startup/></target><source><running/></source></copy-config>`, OpCopyConfig, CategoryDatastoreWrite},
		{`<delete-config><target><startup/></target></delete-config>`, OpDeleteConfig, CategoryDatastoreWrite},
		{`<commit/>`, OpCommit, CategoryDatastoreWrite},
		{`<discard-changes/>`, OpDiscardChanges, CategoryDatastoreWrite},
		{`<close-session/>`, OpCloseSession, CategorySession},
		{`<kill-session><session-id>4</session-id></kill-session>`, OpKillSession, CategorySession},
		{`<lock><target><running/></target></lock>`, OpLock, CategorySession},
		{`<unlock><target><running/></target></unlock>`, OpUnlock, CategorySession},
		{`<create-subscription/>`, OpCreateSubscription, CategorySession},
		{`<frobnicate/>`, OpUnknown, CategoryUnknown},
		{`<rpc/>`, OpUnknown, CategoryUnknown},
	} {
		t.Run(tc.input, func(t *testing.T) {
			check := assert.New(t)
			op, category := Classify(body(t, tc.input))
			check.Equal(tc.op, op)
			check.Equal(tc.category, category)
		})
	}
}

func TestClassifyTotal(t *testing.T) {
	check := assert.New(t)
	// nil and non-element input classify, never crash
	op, category := Classify(nil)
	check.Equal(OpUnknown, op)
	check.Equal(CategoryUnknown, category)

	// every known operation has a name and a non-unknown category
	for op := OpGetConfig; op <= OpGetSchema; op++ {
		check.NotEqual("unknown", op.String())
		check.NotEqual(CategoryUnknown, op.Category())
	}
}

func TestParseRequestGetConfig(t *testing.T) {
	check := assert.New(t)
	req, err := ParseRequest(body(t, `<get-config>
		<source><candidate/></source>
		<filter type="subtree"><top><users/></top></filter>
	</get-config>`))
	check.Nil(err)
	check.Equal(OpGetConfig, req.Op)
	check.Equal(datastore.Candidate, req.Source)
	if check.NotNil(req.Filter) {
		check.Equal(FilterSubtree, req.Filter.Type)
		check.NotNil(req.Filter.Content.SelectElement("top"))
	}
}

func TestParseRequestGetConfigMissingSource(t *testing.T) {
	check := assert.New(t)
	_, err := ParseRequest(body(t, `<get-config/>`))
	if check.NotNil(err) {
		check.Equal("missing-element", err.Tag)
	}
}

func TestParseRequestFilterTypes(t *testing.T) {
	check := assert.New(t)
	req, err := ParseRequest(body(t, `<get><filter type="xpath" select="/t:top"/></get>`))
	check.Nil(err)
	if check.NotNil(req.Filter) {
		check.Equal(FilterUnknown, req.Filter.Type)
	}

	req, err = ParseRequest(body(t, `<get/>`))
	check.Nil(err)
	check.Nil(req.Filter)
}

func TestParseRequestEditConfig(t *testing.T) {
	check := assert.New(t)
	req, err := ParseRequest(body(t, `<edit-config>
		<target><candidate/></target>
		<default-operation>none</default-operation>
		<test-option>test-only</test-option>
		<error-option>rollback-on-error</error-option>
		<config><top><a operation="create"/></top></config>
	</edit-config>`))
	check.Nil(err)
	check.Equal(OpEditConfig, req.Op)
	if !check.NotNil(req.Edit) {
		return
	}
	check.Equal(datastore.Candidate, req.Edit.Target)
	check.Equal(edit.DefaultNone, req.Edit.DefaultOp)
	check.Equal(edit.TestOptionTestOnly, req.Edit.TestOption)
	check.Equal(edit.ErrorOptionRollback, req.Edit.ErrorOption)
	check.NotNil(req.Edit.Config)

	// the parsed request feeds straight into the resolver
	plan, perr := edit.Resolve(req.Edit)
	check.Nil(perr)
	if check.Len(plan.Steps, 1) {
		check.Equal("/top/a", plan.Steps[0].Path)
		check.Equal(edit.OpCreate, plan.Steps[0].Op)
	}
}

func TestParseRequestEditConfigBadOptions(t *testing.T) {
	for _, tc := range []struct {
		input   string
		wantTag string
		wantBad string
	}{
		{
			input:   `<edit-config><config/></edit-config>`,
			wantTag: "missing-element",
			wantBad: "target",
		},
		{
			input: `<edit-config><target><running/></target>
				<default-operation>overwrite</default-operation><config/></edit-config>`,
			wantTag: "bad-element",
			wantBad: "default-operation",
		},
		{
			input: `<edit-config><target><running/></target>
				<error-option>ignore</error-option><config/></edit-config>`,
			wantTag: "bad-element",
			wantBad: "error-option",
		},
		{
			input: `<edit-config><target><running/></target>
				<test-option>maybe</test-option><config/></edit-config>`,
			wantTag: "bad-element",
			wantBad: "test-option",
		},
	} {
		t.Run(tc.wantBad, func(t *testing.T) {
			check := assert.New(t)
			_, err := ParseRequest(body(t, tc.input))
			if check.NotNil(err) {
				check.Equal(tc.wantTag, err.Tag)
				check.Contains(err.Error(), tc.wantBad)
			}
		})
	}
}

func TestParseRequestCopyConfig(t *testing.T) {
	check := assert.New(t)
	req, err := ParseRequest(body(t, `<copy-config>
		<target><url>file:///backup.cfg</url></target>
		<source><config><top/></config></source>
	</copy-config>`))
	check.Nil(err)
	check.Equal(datastore.URL, req.Target)
	check.Equal("file:///backup.cfg", req.TargetURL)
	check.Equal(datastore.Config, req.Source)
	check.NotNil(req.SourceConfig)

	// inline config is only a legal source for copy-config
	_, err = ParseRequest(body(t, `<get-config><source><config/></source></get-config>`))
	if check.NotNil(err) {
		check.Equal("bad-element", err.Tag)
	}
}

func TestParseRequestKillSession(t *testing.T) {
	check := assert.New(t)
	req, err := ParseRequest(body(t, `<kill-session><session-id>42</session-id></kill-session>`))
	check.Nil(err)
	check.Equal(uint32(42), req.KillSessionID)

	_, err = ParseRequest(body(t, `<kill-session/>`))
	if check.NotNil(err) {
		check.Equal("missing-element", err.Tag)
	}

	_, err = ParseRequest(body(t, `<kill-session><session-id>0</session-id></kill-session>`))
	if check.NotNil(err) {
		check.Equal("invalid-value", err.Tag)
	}
}

func TestParseRequestUnknownOp(t *testing.T) {
	check := assert.New(t)
	req, err := ParseRequest(body(t, `<frobnicate><arg/></frobnicate>`))
	// unknown operations are the caller's problem, not a parse error
	check.Nil(err)
	check.Equal(OpUnknown, req.Op)
	check.Equal(CategoryUnknown, req.Category)
}
