package auth

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"c6t/credentials"
	"c6t/prompt"
	"c6t/teamserver"
)

const (
	baseURL  = "https://ts.example.com"
	username = "alice@example.com"
	password = "s3cret-pa55"

	keyInit           = "GET /api/ng/agent/feature"
	keySSO            = "GET /api/public/ng/saml/email/alice@example.com"
	keyLicense        = "HEAD /api/ng/contrast/license/active"
	keyLogin          = "POST /authenticate.html"
	keyTwoStep        = "POST /api/ng/tsv/authorize"
	keyRoles          = "GET /api/ng/profile/roles"
	keyToggle         = "GET /api/ng/profile/toggle"
	keySuperRoles     = "GET /api/ng/superadmin/users/roles"
	keySuperOrgs      = "GET /api/ng/superadmin/users/alice@example.com/organizations"
	keyOrganizations  = "GET /api/ng/profile/organizations"
	keyAPIKeyOrg1     = "GET /api/ng/org-1/users/keys/apikey"
	keyAPIKeyOrg2     = "GET /api/ng/org-2/users/keys/apikey"
	keyAPIKeyOrgSuper = "GET /api/ng/org-sa/users/keys/apikey"
	keyServiceKey     = "GET /api/ng/profile/servicekey"
)

type fakeServer struct {
	t        *testing.T
	routes   map[string]*teamserver.Response
	errs     map[string]error
	cookies  []*http.Cookie
	requests []teamserver.Request
}

func (f *fakeServer) Do(_ context.Context, req teamserver.Request) (*teamserver.Response, error) {
	f.requests = append(f.requests, req)
	key := req.Method + " " + req.Path
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	resp, ok := f.routes[key]
	if !ok {
		f.t.Errorf("unexpected request %s", key)
		return reply(http.StatusInternalServerError, ""), nil
	}
	return resp, nil
}

func (f *fakeServer) Cookies() []*http.Cookie {
	return f.cookies
}

func (f *fakeServer) keys() []string {
	keys := make([]string, 0, len(f.requests))
	for _, req := range f.requests {
		keys = append(keys, req.Method+" "+req.Path)
	}
	return keys
}

func (f *fakeServer) requested(key string) bool {
	for _, k := range f.keys() {
		if k == key {
			return true
		}
	}
	return false
}

func reply(status int, body string) *teamserver.Response {
	return &teamserver.Response{StatusCode: status, Header: make(http.Header), Body: []byte(body)}
}

func newFakeServer(t *testing.T) *fakeServer {
	return &fakeServer{
		t:    t,
		errs: map[string]error{},
		routes: map[string]*teamserver.Response{
			keyInit:       reply(http.StatusFound, ""),
			keySSO:        reply(http.StatusNotFound, `{"success":true,"messages":["SSO is not configured for this user"]}`),
			keyLicense:    reply(http.StatusOK, ""),
			keyLogin:      reply(http.StatusOK, `{"success":true,"messages":["Login successful"],"toggle_enabled":false}`),
			keyTwoStep:    reply(http.StatusOK, `{"success":true,"messages":["Verified"]}`),
			keyRoles:      reply(http.StatusOK, `{"success":true,"messages":["Roles loaded"],"adminRole":"USER"}`),
			keyToggle:     reply(http.StatusOK, ""),
			keySuperRoles: reply(http.StatusOK, `{"roles":["SUPERADMIN"]}`),
			keySuperOrgs: reply(http.StatusOK, `{"success":true,"messages":["ok"],"organizations":[
				{"organization_uuid":"org-1","name":"Acme","is_superadmin":false},
				{"organization_uuid":"org-sa","name":"SuperAdmin","is_superadmin":true}
			]}`),
			keyOrganizations:  reply(http.StatusOK, `{"count":1,"organizations":[{"organization_uuid":"org-1","name":"Acme"}]}`),
			keyAPIKeyOrg1:     reply(http.StatusOK, `{"api_key":"AK-1"}`),
			keyAPIKeyOrg2:     reply(http.StatusOK, `{"api_key":"AK-2"}`),
			keyAPIKeyOrgSuper: reply(http.StatusOK, `{"api_key":"AK-SA"}`),
			keyServiceKey:     reply(http.StatusOK, `{"service_key":"SK"}`),
		},
	}
}

type fakePrompter struct {
	inputs        []string
	secrets       []string
	inputTitles   []string
	secretTitles  []string
	selectChoice  string
	selectCalls   int
	selectOptions []prompt.Option
}

func (p *fakePrompter) Input(_ context.Context, title string) (string, error) {
	p.inputTitles = append(p.inputTitles, title)
	if len(p.inputs) == 0 {
		return "", prompt.ErrAborted
	}
	value := p.inputs[0]
	p.inputs = p.inputs[1:]
	return value, nil
}

func (p *fakePrompter) Secret(_ context.Context, title string) (string, error) {
	p.secretTitles = append(p.secretTitles, title)
	if len(p.secrets) == 0 {
		return "", prompt.ErrAborted
	}
	value := p.secrets[0]
	p.secrets = p.secrets[1:]
	return value, nil
}

func (p *fakePrompter) Confirm(context.Context, string) (bool, error) {
	return false, errors.New("confirm is not used by login")
}

func (p *fakePrompter) Select(_ context.Context, _ string, options []prompt.Option) (string, error) {
	p.selectCalls++
	p.selectOptions = options
	return p.selectChoice, nil
}

type countingSaver struct {
	saves   int
	records []credentials.Record
	err     error
}

func (s *countingSaver) Save(record credentials.Record) error {
	s.saves++
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, record)
	return nil
}

type harness struct {
	server   *fakeServer
	prompter *fakePrompter
	store    *countingSaver
	out      *bytes.Buffer
	logs     *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	return &harness{
		server:   newFakeServer(t),
		prompter: &fakePrompter{inputs: []string{username}, secrets: []string{password}},
		store:    &countingSaver{},
		out:      &bytes.Buffer{},
		logs:     &bytes.Buffer{},
	}
}

func (h *harness) run(t *testing.T, ctx context.Context) (credentials.Record, error) {
	t.Helper()

	o, err := New(Config{
		BaseURL:   baseURL + "/",
		Transport: h.server,
		Prompter:  h.prompter,
		Store:     h.store,
		Logger:    log.NewWithOptions(h.logs, log.Options{Level: log.DebugLevel}),
		Out:       h.out,
	})
	require.NoError(t, err)
	return o.Run(ctx, "")
}

func TestRun_SingleOrganizationEndToEnd(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	record, err := h.run(t, context.Background())
	require.NoError(t, err)

	want := credentials.Record{
		Profile:        credentials.DefaultProfile,
		BaseURL:        baseURL,
		Username:       username,
		APIKey:         "AK-1",
		ServiceKey:     "SK",
		OrganizationID: "org-1",
		Superadmin:     false,
	}
	assert.Equal(t, want, record)
	require.Equal(t, 1, h.store.saves)
	assert.Equal(t, want, h.store.records[0])

	assert.Equal(t, []string{
		keyInit, keySSO, keyLicense, keyLogin, keyRoles, keyOrganizations, keyAPIKeyOrg1, keyServiceKey,
	}, h.server.keys())
	assert.False(t, h.server.requests[0].FollowRedirects, "session init must not follow redirects")

	assert.Equal(t, []string{"Email address"}, h.prompter.inputTitles, "no superadmin prompt expected")
	assert.Equal(t, []string{"Password"}, h.prompter.secretTitles, "no verification code prompt expected")
	assert.Zero(t, h.prompter.selectCalls, "single organization must not open the picker")

	for _, req := range h.server.requests {
		assert.Empty(t, req.Header.Get(teamserver.XSRFHeaderName), "no XSRF cookie means no XSRF header")
	}
	assert.Contains(t, h.out.String(), "Login successful")
}

func TestRun_PasswordSentAsEntered(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.prompter.inputs = []string{"  " + username + " "}
	h.prompter.secrets = []string{"  pass word  "}

	record, err := h.run(t, context.Background())
	require.NoError(t, err)
	assert.Equal(t, username, record.Username)

	var login *teamserver.Request
	for i := range h.server.requests {
		if h.server.requests[i].Path == teamserver.PathAuthenticate {
			login = &h.server.requests[i]
		}
	}
	require.NotNil(t, login)
	assert.Equal(t, "  pass word  ", login.Form.Get("password"))
	assert.Equal(t, username, login.Form.Get("username"))
}

func TestRun_BlankPasswordAskedAgain(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.prompter.secrets = []string{"   ", password}

	_, err := h.run(t, context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Password", "Password"}, h.prompter.secretTitles)
	assert.Contains(t, h.out.String(), "Value must not be empty.")
}

func TestRun_SSOAccountStopsBeforeLogin(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.server.routes[keySSO] = reply(http.StatusOK, `{"success":true,"messages":["SAML configured"]}`)

	_, err := h.run(t, context.Background())
	require.Error(t, err)

	var authErr *Error
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, KindSSOAccountDetected, authErr.Kind)
	assert.Equal(t, StageCheckSSO, authErr.Stage)

	assert.Equal(t, []string{keyInit, keySSO}, h.server.keys())
	assert.False(t, h.server.requested(keyLogin), "login must never be posted for SSO accounts")
	assert.Empty(t, h.prompter.secretTitles, "password must not be requested")
	assert.Zero(t, h.store.saves)
}

func TestRun_SSONotFoundContinuesToLicenseCheck(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.server.routes[keyLicense] = reply(http.StatusForbidden, "")

	_, err := h.run(t, context.Background())
	kind, ok := KindOf(err)
	require.True(t, ok, "unexpected error: %v", err)
	assert.Equal(t, KindLicenseInactive, kind)
	assert.Equal(t, []string{keyInit, keySSO, keyLicense}, h.server.keys())
}

func TestRun_FailuresNeverPersist(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		setup     func(h *harness)
		wantKind  Kind
		wantStage Stage
		wantMsg   string
	}{
		{
			name:      "session init without redirect",
			setup:     func(h *harness) { h.server.routes[keyInit] = reply(http.StatusOK, "") },
			wantKind:  KindTransport,
			wantStage: StageInitSession,
		},
		{
			name:      "network failure",
			setup:     func(h *harness) { h.server.errs[keyInit] = errors.New("dial tcp: connection refused") },
			wantKind:  KindTransport,
			wantStage: StageInitSession,
			wantMsg:   "dial tcp: connection refused",
		},
		{
			name:      "sso lookup server error",
			setup:     func(h *harness) { h.server.routes[keySSO] = reply(http.StatusInternalServerError, "") },
			wantKind:  KindTransport,
			wantStage: StageCheckSSO,
		},
		{
			name:      "license inactive",
			setup:     func(h *harness) { h.server.routes[keyLicense] = reply(http.StatusPaymentRequired, "") },
			wantKind:  KindLicenseInactive,
			wantStage: StageCheckLicense,
		},
		{
			name: "login rejected in envelope",
			setup: func(h *harness) {
				h.server.routes[keyLogin] = reply(http.StatusOK, `{"success":false,"messages":["Invalid username or password"]}`)
			},
			wantKind:  KindAuthRejected,
			wantStage: StageAuthenticate,
			wantMsg:   "Invalid username or password",
		},
		{
			name: "login rejected with status",
			setup: func(h *harness) {
				h.server.routes[keyLogin] = reply(http.StatusUnauthorized, `{"success":false,"messages":["Account locked"]}`)
			},
			wantKind:  KindAuthRejected,
			wantStage: StageAuthenticate,
			wantMsg:   "Account locked",
		},
		{
			name: "two-step code rejected",
			setup: func(h *harness) {
				h.server.routes[keyLogin] = reply(http.StatusOK, `{"success":true,"messages":["ok"],"toggle_enabled":true}`)
				h.server.routes[keyTwoStep] = reply(http.StatusOK, `{"success":false,"messages":["Invalid code"]}`)
				h.prompter.secrets = append(h.prompter.secrets, "000000")
			},
			wantKind:  KindAuthRejected,
			wantStage: StageTwoFactor,
			wantMsg:   "Invalid code",
		},
		{
			name: "roles rejected",
			setup: func(h *harness) {
				h.server.routes[keyRoles] = reply(http.StatusOK, `{"success":false,"messages":["Session expired"]}`)
			},
			wantKind:  KindAuthRejected,
			wantStage: StageRoleCheck,
			wantMsg:   "Session expired",
		},
		{
			name: "no organizations",
			setup: func(h *harness) {
				h.server.routes[keyOrganizations] = reply(http.StatusOK, `{"count":0,"organizations":[]}`)
			},
			wantKind:  KindNoOrganizations,
			wantStage: StageSelectOrganization,
			wantMsg:   "No organizations found",
		},
		{
			name: "superadmin without superadmin organization",
			setup: func(h *harness) {
				h.server.routes[keyRoles] = reply(http.StatusOK, `{"success":true,"messages":["ok"],"adminRole":"SUPERADMIN"}`)
				h.server.routes[keySuperOrgs] = reply(http.StatusOK, `{"success":true,"organizations":[{"organization_uuid":"org-1","name":"Acme"}]}`)
				h.prompter.inputs = append(h.prompter.inputs, "y")
			},
			wantKind:  KindNoOrganizations,
			wantStage: StageSuperadmin,
		},
		{
			name:      "api key request fails",
			setup:     func(h *harness) { h.server.routes[keyAPIKeyOrg1] = reply(http.StatusForbidden, "") },
			wantKind:  KindTransport,
			wantStage: StageMintCredentials,
		},
		{
			name:      "service key missing",
			setup:     func(h *harness) { h.server.routes[keyServiceKey] = reply(http.StatusOK, `{}`) },
			wantKind:  KindTransport,
			wantStage: StageMintCredentials,
		},
		{
			name:      "username prompt aborted",
			setup:     func(h *harness) { h.prompter.inputs = nil },
			wantKind:  KindCancelled,
			wantStage: StageCollectUsername,
		},
		{
			name:      "password prompt aborted",
			setup:     func(h *harness) { h.prompter.secrets = nil },
			wantKind:  KindCancelled,
			wantStage: StageCollectPassword,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t)
			tc.setup(h)

			record, err := h.run(t, context.Background())
			require.Error(t, err)
			assert.Equal(t, credentials.Record{}, record)
			assert.Zero(t, h.store.saves, "store must not be written on failure")

			var authErr *Error
			require.ErrorAs(t, err, &authErr)
			assert.Equal(t, tc.wantKind, authErr.Kind, "error: %v", err)
			assert.Equal(t, tc.wantStage, authErr.Stage)
			if tc.wantMsg != "" {
				assert.Equal(t, tc.wantMsg, authErr.Error())
			}
		})
	}
}

func TestRun_PersistenceFailure(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.store.err = errors.New("disk full")

	_, err := h.run(t, context.Background())
	var authErr *Error
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, KindPersistence, authErr.Kind)
	assert.Equal(t, StagePersist, authErr.Stage)
	assert.Equal(t, 1, h.store.saves, "save is attempted exactly once")
	assert.Contains(t, authErr.Error(), "disk full")
}

func TestRun_MultipleOrganizationsOpenPickerOnce(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.server.routes[keyOrganizations] = reply(http.StatusOK, `{"count":2,"organizations":[
		{"organization_uuid":"org-1","name":"Acme"},
		{"organization_uuid":"org-2","name":"Globex"}
	]}`)
	h.prompter.selectChoice = "org-2"

	record, err := h.run(t, context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, h.prompter.selectCalls)
	assert.Equal(t, []prompt.Option{
		{Label: "Acme", Value: "org-1"},
		{Label: "Globex", Value: "org-2"},
	}, h.prompter.selectOptions)
	assert.Equal(t, "org-2", record.OrganizationID)
	assert.Equal(t, "AK-2", record.APIKey)
}

func TestRun_SuperadminToggleYes(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.server.routes[keyRoles] = reply(http.StatusOK, `{"success":true,"messages":["ok"],"adminRole":"SUPERADMIN"}`)
	h.prompter.inputs = append(h.prompter.inputs, "y")

	record, err := h.run(t, context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		keyInit, keySSO, keyLicense, keyLogin, keyRoles,
		keyToggle, keySuperRoles, keySuperOrgs,
		keyAPIKeyOrgSuper, keyServiceKey,
	}, h.server.keys())
	assert.False(t, h.server.requested(keyOrganizations), "superadmin selection replaces the organization list")
	assert.Zero(t, h.prompter.selectCalls)

	assert.Equal(t, "org-sa", record.OrganizationID)
	assert.True(t, record.Superadmin)
	assert.Equal(t, "true", h.server.requests[7].Query.Get("includeDefaultOrgs"))
}

func TestRun_SuperadminToggleNo(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.server.routes[keyRoles] = reply(http.StatusOK, `{"success":true,"messages":["ok"],"adminRole":"SUPERADMIN"}`)
	h.prompter.inputs = append(h.prompter.inputs, "n")

	record, err := h.run(t, context.Background())
	require.NoError(t, err)

	assert.False(t, h.server.requested(keyToggle))
	assert.False(t, h.server.requested(keySuperRoles))
	assert.True(t, h.server.requested(keyOrganizations))
	assert.Equal(t, "org-1", record.OrganizationID)
	assert.True(t, record.Superadmin)
	assert.Contains(t, h.out.String(), "Not using Superadmin.")
}

func TestRun_SuperadminInvalidAnswerReprompts(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.server.routes[keyRoles] = reply(http.StatusOK, `{"success":true,"messages":["ok"],"adminRole":"SUPERADMIN"}`)
	h.prompter.inputs = append(h.prompter.inputs, "maybe", "", "N")

	record, err := h.run(t, context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Email address",
		"Toggle Superadmin? (y/n)",
		"Toggle Superadmin? (y/n)",
		"Toggle Superadmin? (y/n)",
	}, h.prompter.inputTitles)
	assert.Equal(t, 2, strings.Count(h.out.String(), "Invalid input."))
	assert.False(t, h.server.requested(keyToggle))
	assert.Equal(t, "org-1", record.OrganizationID)
}

func TestRun_SuperadminPromptAbortedIsCancelled(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.server.routes[keyRoles] = reply(http.StatusOK, `{"success":true,"messages":["ok"],"adminRole":"SUPERADMIN"}`)
	h.prompter.inputs = append(h.prompter.inputs, "what")

	_, err := h.run(t, context.Background())
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindCancelled, kind)
	assert.Zero(t, h.store.saves)
}

func TestRun_TwoFactorWithXSRFHeader(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.server.cookies = []*http.Cookie{
		{Name: "JSESSIONID", Value: "session"},
		{Name: teamserver.XSRFCookieName, Value: "xsrf-token"},
	}
	h.server.routes[keyLogin] = reply(http.StatusOK, `{"success":true,"messages":["ok"],"toggle_enabled":true}`)
	h.prompter.secrets = append(h.prompter.secrets, " 123456 ")

	_, err := h.run(t, context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Password", "Two-step verification code"}, h.prompter.secretTitles)

	loginSeen := false
	for _, req := range h.server.requests {
		key := req.Method + " " + req.Path
		if !loginSeen {
			assert.Empty(t, req.Header.Get(teamserver.XSRFHeaderName), "%s sent before the token was captured", key)
		} else {
			assert.Equal(t, "xsrf-token", req.Header.Get(teamserver.XSRFHeaderName), "%s is missing the XSRF header", key)
		}
		if key == keyLogin {
			loginSeen = true
		}
		if key == keyTwoStep {
			assert.Equal(t, map[string]string{"code": "123456"}, req.JSON)
		}
	}
	assert.True(t, h.server.requested(keyTwoStep))
}

func TestRun_CancelledContext(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.run(t, ctx)
	var authErr *Error
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, KindCancelled, authErr.Kind)
	assert.Equal(t, StageInitSession, authErr.Stage)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, h.server.requests)
	assert.Zero(t, h.store.saves)
}

func TestRun_LogsStagesWithoutSecrets(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.server.cookies = []*http.Cookie{{Name: teamserver.XSRFCookieName, Value: "xsrf-token"}}

	_, err := h.run(t, context.Background())
	require.NoError(t, err)

	logs := h.logs.String()
	for _, stage := range []string{"InitSession", "CheckSSO", "Authenticate", "CaptureXSRF", "Persist"} {
		assert.Contains(t, logs, stage)
	}
	for _, secret := range []string{password, "xsrf-token", "AK-1"} {
		assert.NotContains(t, logs, secret)
	}
}

func TestNew_RequiresCollaborators(t *testing.T) {
	t.Parallel()

	server := newFakeServer(t)
	p := &fakePrompter{}
	store := &countingSaver{}

	_, err := New(Config{BaseURL: "ts.example.com", Transport: server, Prompter: p, Store: store})
	require.Error(t, err)

	_, err = New(Config{BaseURL: baseURL, Prompter: p, Store: store})
	require.Error(t, err)

	_, err = New(Config{BaseURL: baseURL, Transport: server, Store: store})
	require.Error(t, err)

	_, err = New(Config{BaseURL: baseURL, Transport: server, Prompter: p})
	require.Error(t, err)
}

func TestStageString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "CaptureXSRF", StageCaptureXSRF.String())
	assert.Equal(t, "Unknown", Stage(99).String())
	assert.Equal(t, "SSO account detected", KindSSOAccountDetected.String())
}
