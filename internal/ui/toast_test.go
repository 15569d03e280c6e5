package ui

import (
	"strings"
	"testing"
	"time"
)

func TestToastDuration(t *testing.T) {
	if ToastDuration != 1500*time.Millisecond {
		t.Fatalf("expected 1.5s toast, got %v", ToastDuration)
	}
}

func TestToastClearsAfterExpiry(t *testing.T) {
	ts := newToast()
	ts.Show("✅ Audio deleted", toastSuccess)
	if !ts.Visible() {
		t.Fatal("expected toast to be visible")
	}

	if cmd := ts.Update(toastExpiredMsg{gen: ts.gen}); cmd == nil {
		t.Fatal("expected fade command on expiry")
	}
	if !ts.fade.Closing() {
		t.Fatal("expected toast to fade out")
	}
	if !settle(t, &ts.fade) {
		t.Fatal("expected fade to finish")
	}
	if ts.Visible() {
		t.Fatal("expected toast to be cleared")
	}
}

func TestToastClearsMessageWhenFadeFinishes(t *testing.T) {
	ts := newToast()
	ts.Show("hello", toastSuccess)
	ts.Update(toastExpiredMsg{gen: ts.gen})

	for range 1000 {
		cmd := ts.Update(transitionFrameMsg{id: ts.fade.id, gen: ts.fade.gen})
		if cmd == nil {
			break
		}
	}
	if ts.message != "" || ts.Visible() {
		t.Fatalf("expected empty toast, got %q", ts.message)
	}
}

func TestToastNewerMessageIgnoresOldTimer(t *testing.T) {
	ts := newToast()
	ts.Show("first", toastSuccess)
	old := ts.gen
	ts.Show("❌ second", toastError)

	if cmd := ts.Update(toastExpiredMsg{gen: old}); cmd != nil {
		t.Fatal("expected stale expiry to be ignored")
	}
	if ts.fade.Closing() || ts.message != "❌ second" {
		t.Fatalf("expected second toast to stay, got %q closing=%v", ts.message, ts.fade.Closing())
	}
	if ts.kind != toastError {
		t.Fatal("expected error kind")
	}
}

func TestToastRendersEveryKind(t *testing.T) {
	for _, kind := range []toastKind{toastSuccess, toastError, toastInfo, toastWarning} {
		ts := newToast()
		ts.Show("note", kind)
		if !strings.Contains(ts.View(), "note") {
			t.Fatalf("kind %d: expected message in view, got %q", kind, ts.View())
		}
	}
}
