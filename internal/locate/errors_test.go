package locate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestClassifyPassesThroughClassified(t *testing.T) {
	in := &Error{Kind: KindPermissionDenied, Message: "denied"}
	out := Classify(fmt.Errorf("wrapped: %w", in))
	if out.Kind != KindPermissionDenied {
		t.Fatalf("unexpected kind: %v", out.Kind)
	}
}

func TestClassifyDeadline(t *testing.T) {
	out := Classify(context.DeadlineExceeded)
	if out.Kind != KindTimeout {
		t.Fatalf("unexpected kind: %v", out.Kind)
	}
}

func TestClassifyUnknown(t *testing.T) {
	out := Classify(errors.New("socket melted"))
	if out.Kind != KindUnknown || !strings.Contains(out.Message, "socket melted") {
		t.Fatalf("unexpected classification: %+v", out)
	}
}

func TestRemediationIOS(t *testing.T) {
	for _, ua := range []string{
		"Mozilla/5.0 (iPhone; CPU iPhone OS 16_0 like Mac OS X)",
		"Mozilla/5.0 (iPad; CPU OS 15_0 like Mac OS X)",
		"Mozilla/5.0 (iPod touch; CPU iPhone OS 14_0 like Mac OS X)",
	} {
		text := Remediation(ua)
		if !strings.Contains(text, "Location Services") {
			t.Fatalf("expected iOS wording for %q, got %q", ua, text)
		}
		if !strings.Contains(text, "\n") {
			t.Fatalf("expected multi-line remediation")
		}
	}
}

func TestRemediationAndroid(t *testing.T) {
	text := Remediation("Mozilla/5.0 (Linux; Android 13; Pixel 7)")
	if !strings.Contains(text, "Site settings") {
		t.Fatalf("expected Android wording, got %q", text)
	}
}

func TestRemediationOther(t *testing.T) {
	text := Remediation("Mozilla/5.0 (X11; Linux x86_64)")
	if !strings.Contains(text, "browser settings") {
		t.Fatalf("expected generic wording, got %q", text)
	}
}

func TestWithRemediationOnlyForPermissionDenied(t *testing.T) {
	denied := &Error{Kind: KindPermissionDenied, Message: "denied"}
	withText := denied.WithRemediation("Mozilla/5.0 (iPhone)")
	if withText.Remediation == "" {
		t.Fatalf("expected remediation text")
	}
	if denied.Remediation != "" {
		t.Fatalf("expected original untouched")
	}

	timeout := &Error{Kind: KindTimeout, Message: "slow"}
	if timeout.WithRemediation("Mozilla/5.0 (iPhone)").Remediation != "" {
		t.Fatalf("expected no remediation for timeout")
	}
}

func TestErrorString(t *testing.T) {
	e := &Error{Kind: KindUnsupported, Message: "no gps"}
	if e.Error() != "unsupported: no gps" {
		t.Fatalf("unexpected error string: %q", e.Error())
	}
}
