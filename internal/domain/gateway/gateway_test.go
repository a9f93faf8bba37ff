package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"tixgate/internal/domain/session/model"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(Config{BaseURL: server.URL}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client, server
}

func organizerCredential() model.Credential {
	return model.Credential{AccessToken: "opaque-test-token", Role: model.RoleOrganizer}
}

func TestLoginSuccess(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		w.Write([]byte(`{"code":200,"result":{"accessToken":"at","refreshToken":"rt","roleName":"ORGANIZER","status":"ACTIVE"}}`))
	}))

	cred, err := client.Login(context.Background(), "organizer1", "secret")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if cred.AccessToken != "at" || cred.RefreshToken != "rt" {
		t.Fatalf("unexpected credential: %+v", cred)
	}
	if cred.Role != model.RoleOrganizer || cred.UserName != "organizer1" {
		t.Fatalf("unexpected credential identity: %+v", cred)
	}
}

func TestLoginRoleAllowList(t *testing.T) {
	// The HTTP call succeeds, but a STAFF role must still be rejected.
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":200,"result":{"accessToken":"at","refreshToken":"rt","roleName":"STAFF","status":"ACTIVE"}}`))
	}))

	_, err := client.Login(context.Background(), "staff1", "secret")
	if err == nil {
		t.Fatalf("expected role rejection")
	}
	if class, ok := ClassOf(err); !ok || class != ServerRejected {
		t.Fatalf("expected ServerRejected, got %v", err)
	}
	if Reason(err) != "insufficient role" {
		t.Fatalf("unexpected reason: %q", Reason(err))
	}
}

func TestLoginServerRejected(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":401,"message":"Sai tên đăng nhập hoặc mật khẩu"}`))
	}))

	_, err := client.Login(context.Background(), "organizer1", "wrong")
	if class, ok := ClassOf(err); !ok || class != ServerRejected {
		t.Fatalf("expected ServerRejected, got %v", err)
	}
	if Reason(err) != "Sai tên đăng nhập hoặc mật khẩu" {
		t.Fatalf("expected envelope message to surface, got %q", Reason(err))
	}
}

func TestDecryptQRSuccess(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ticket-purchase/decrypt_qr_code" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer opaque-test-token" {
			t.Errorf("missing bearer header, got %q", got)
		}
		w.Write([]byte(`{"code":200,"result":{"eventName":"Concert A","fullName":"Nguyen Van A","orderCode":"OC123","ticketDetails":[{"ticketPurchaseId":1,"ticketType":"VIP","zoneName":"Zone 1","seatName":"A1"}]}}`))
	}))

	record, err := client.DecryptQR(context.Background(), "payload-1", organizerCredential())
	if err != nil {
		t.Fatalf("DecryptQR error: %v", err)
	}
	if record.EventName != "Concert A" || record.FullName != "Nguyen Van A" || record.OrderCode != "OC123" {
		t.Fatalf("unexpected record: %+v", record)
	}
	if len(record.TicketDetails) != 1 {
		t.Fatalf("expected one ticket detail, got %d", len(record.TicketDetails))
	}
	detail := record.TicketDetails[0]
	if detail.TicketPurchaseID != 1 || detail.TicketType != "VIP" ||
		detail.ZoneName != "Zone 1" || detail.SeatName != "A1" {
		t.Fatalf("unexpected detail: %+v", detail)
	}
}

func TestDecryptQRServerRejected(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":403,"message":"Invalid QR"}`))
	}))

	_, err := client.DecryptQR(context.Background(), "bad-payload", organizerCredential())
	if class, ok := ClassOf(err); !ok || class != ServerRejected {
		t.Fatalf("expected ServerRejected, got %v", err)
	}
	if Reason(err) != "Invalid QR" {
		t.Fatalf("unexpected reason: %q", Reason(err))
	}
}

func TestDecryptQRMalformedBody(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))

	_, err := client.DecryptQR(context.Background(), "payload", organizerCredential())
	if err == nil {
		t.Fatalf("expected error for non-JSON body")
	}
	if class, ok := ClassOf(err); !ok || class != MalformedResponse {
		t.Fatalf("expected MalformedResponse, got %v", err)
	}
}

func TestDecryptQRUnauthenticatedSkipsNetwork(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))

	_, err := client.DecryptQR(context.Background(), "any-payload", model.Credential{})
	if class, ok := ClassOf(err); !ok || class != Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", err)
	}
	if calls.Load() != 0 {
		t.Fatalf("expected zero backend calls, got %d", calls.Load())
	}
}

func TestDecryptQRNetworkUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client, err := New(Config{BaseURL: server.URL}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	server.Close() // connection refused from now on

	_, err = client.DecryptQR(context.Background(), "payload", organizerCredential())
	if class, ok := ClassOf(err); !ok || class != NetworkUnavailable {
		t.Fatalf("expected NetworkUnavailable, got %v", err)
	}
}

func TestCheckinStats(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/event/checkin/event-activity/42" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"code":200,"result":{"totalCheckin":120,"checkedIn":45,"notCheckedIn":75}}`))
	}))

	got, err := client.CheckinStats(context.Background(), 42)
	if err != nil {
		t.Fatalf("CheckinStats error: %v", err)
	}
	if got.TotalCheckin != 120 || got.CheckedIn != 45 || got.NotCheckedIn != 75 {
		t.Fatalf("unexpected stats: %+v", got)
	}
}

func TestMyEventActivities(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/member-activity/my-event-activities" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer opaque-test-token" {
			t.Errorf("missing bearer header, got %q", got)
		}
		w.Write([]byte(`{"code":200,"result":[{"eventId":7,"eventName":"Concert A","eventActivities":[{"eventActivityId":42,"eventActivityName":"Day 1","date":"2026-09-01","startTime":"18:00:00","endTime":"22:00:00"}]}]}`))
	}))

	events, err := client.MyEventActivities(context.Background(), organizerCredential())
	if err != nil {
		t.Fatalf("MyEventActivities error: %v", err)
	}
	if len(events) != 1 || events[0].EventID != 7 {
		t.Fatalf("unexpected events: %+v", events)
	}
	if len(events[0].Activities) != 1 || events[0].Activities[0].EventActivityID != 42 {
		t.Fatalf("unexpected activities: %+v", events[0].Activities)
	}
}

func TestMyEventActivitiesUnauthenticated(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))

	_, err := client.MyEventActivities(context.Background(), model.Credential{})
	if class, ok := ClassOf(err); !ok || class != Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", err)
	}
	if calls.Load() != 0 {
		t.Fatalf("expected zero backend calls, got %d", calls.Load())
	}
}

func TestCompaniesByUserEscapesName(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.EscapedPath() != "/company/get-companys-by-user-name/organizer%20one" {
			t.Errorf("unexpected path %s", r.URL.EscapedPath())
		}
		w.Write([]byte(`{"code":200,"result":[{"companyId":3,"companyName":"TixCo"}]}`))
	}))

	companies, err := client.CompaniesByUser(context.Background(), "organizer one")
	if err != nil {
		t.Fatalf("CompaniesByUser error: %v", err)
	}
	if len(companies) != 1 || companies[0].CompanyName != "TixCo" {
		t.Fatalf("unexpected companies: %+v", companies)
	}
}
