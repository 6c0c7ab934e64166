package uitree

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/autopair-dev/wadb-agent/pkg/uiautomator2"
)

type fakeHost struct {
	shellOut string
	removed  []int
}

func (f *fakeHost) Shell(string) (string, error) { return f.shellOut, nil }
func (f *fakeHost) RemoveForward(port int) error {
	f.removed = append(f.removed, port)
	return nil
}

// serverClient points a real client at a local test server.
func serverClient(t *testing.T, handler http.Handler) *uiautomator2.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatal(err)
	}
	return uiautomator2.NewClientTCP(port)
}

func TestCloseRemovesForward(t *testing.T) {
	deleted := false
	client := serverClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/session":
			json.NewEncoder(w).Encode(map[string]interface{}{"sessionId": "s1", "value": nil})
		case r.Method == http.MethodDelete:
			deleted = true
			json.NewEncoder(w).Encode(map[string]interface{}{"value": nil})
		default:
			http.NotFound(w, r)
		}
	}))
	if err := client.CreateSession(uiautomator2.Capabilities{}); err != nil {
		t.Fatal(err)
	}

	host := &fakeHost{}
	acc := &UIA2Accessor{client: client, dev: host, localPort: 6790}
	if err := acc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !deleted {
		t.Error("session was not deleted")
	}
	if len(host.removed) != 1 || host.removed[0] != 6790 {
		t.Errorf("removed forwards = %v, want [6790]", host.removed)
	}
}

func TestForegroundPackageParsesFocus(t *testing.T) {
	host := &fakeHost{shellOut: "mCurrentFocus=Window{8ab2f31 u0 com.android.settings/.SubSettings}\n"}
	acc := &UIA2Accessor{dev: host}

	pkg, err := acc.ForegroundPackage()
	if err != nil {
		t.Fatal(err)
	}
	if pkg != "com.android.settings" {
		t.Errorf("package = %q, want com.android.settings", pkg)
	}
}
