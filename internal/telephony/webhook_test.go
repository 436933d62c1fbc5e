package telephony

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func postForm(t *testing.T, target, body string) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func TestParseVoiceForm(t *testing.T) {
	r := postForm(t, "/call/start", "CallSid=CA123&From=%2B15551234567&To=%2B15557654321")

	f, err := ParseVoiceForm(r)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if f.CallSid != "CA123" || f.SID() != "CA123" {
		t.Fatalf("expected CallSid CA123, got %+v", f)
	}
	if f.From != "+15551234567" || f.To != "+15557654321" {
		t.Fatalf("unexpected from/to: %q %q", f.From, f.To)
	}
}

func TestParseVoiceFormParentSidWins(t *testing.T) {
	// Callbacks on a dialed party carry their own CallSid; parent_sid
	// names the call the log lines belong to.
	r := postForm(t, "/call/human/5/0/pickup?parent_sid=CA-parent", "CallSid=CA-child")

	f, err := ParseVoiceForm(r)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if f.SID() != "CA-parent" {
		t.Fatalf("expected parent sid to win, got %q", f.SID())
	}
}

func TestParseVoiceFormRejectsMissingSid(t *testing.T) {
	r := postForm(t, "/call/start", "From=%2B15551234567")
	if _, err := ParseVoiceForm(r); err == nil {
		t.Fatalf("expected error for missing sid")
	}
}

func TestValidPhone(t *testing.T) {
	if !ValidPhone("+441223000000") {
		t.Fatalf("plain E.164 should pass")
	}
	for _, s := range []string{"", "anonymous", "+44 1223", "441223", "+44;rm"} {
		if ValidPhone(s) {
			t.Fatalf("%q should fail", s)
		}
	}
}

func TestValidateSignature(t *testing.T) {
	token := "secret-token"
	fullURL := "https://line.example.org/call/start"
	form := url.Values{}
	form.Set("CallSid", "CA123")
	form.Set("From", "+15551234567")

	// Expected input per Twilio: URL then key-sorted key+value pairs.
	mac := hmac.New(sha1.New, []byte(token))
	mac.Write([]byte(fullURL + "CallSid" + "CA123" + "From" + "+15551234567"))
	sig := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	if !ValidateSignature(token, fullURL, form, sig) {
		t.Fatalf("valid signature rejected")
	}
	if ValidateSignature(token, fullURL, form, "bogus") {
		t.Fatalf("bogus signature accepted")
	}
	if ValidateSignature("other-token", fullURL, form, sig) {
		t.Fatalf("signature from another token accepted")
	}
	if ValidateSignature(token, fullURL, form, "") {
		t.Fatalf("empty signature accepted")
	}
}
